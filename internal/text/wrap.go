// Package text wraps text to a column width and assembles multi-line
// output segment by segment.
package text

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultWidth is the wrap width used when Options.Width is not positive.
const DefaultWidth = 78

// Options controls wrapping.
type Options struct {
	// Width is the maximum display width of a line, indentation included.
	Width int
	// Indent is the number of spaces prefixed to wrapped lines.
	Indent int
	// IndentAfter leaves the first line unindented, producing a hanging
	// indent for the lines after it.
	IndentAfter bool
}

func (o Options) width() int {
	if o.Width <= 0 {
		return DefaultWidth
	}
	return o.Width
}

// WrapSegments joins segments with single spaces into lines that stay
// within o.Width display cells. Segments are never split; a segment that
// is wider than the width on its own gets a line to itself.
func WrapSegments(segments []string, o Options) string {
	width := o.width()
	pad := strings.Repeat(" ", max(o.Indent, 0))

	var lines []string
	var line strings.Builder
	lineWidth := 0

	for _, seg := range segments {
		segWidth := runewidth.StringWidth(seg)

		switch {
		case line.Len() > 0 && lineWidth+segWidth >= width:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(pad)
			line.WriteString(seg)
			lineWidth = len(pad) + segWidth
		case line.Len() == 0:
			indent := pad
			if len(lines) == 0 && o.IndentAfter {
				indent = ""
			}
			line.WriteString(indent)
			line.WriteString(seg)
			lineWidth = len(indent) + segWidth
		default:
			line.WriteByte(' ')
			line.WriteString(seg)
			lineWidth += 1 + segWidth
		}
	}
	lines = append(lines, line.String())

	return strings.Join(lines, "\n")
}

// Wrap splits text on whitespace and wraps the resulting words with
// WrapSegments.
func Wrap(text string, o Options) string {
	return WrapSegments(strings.Fields(text), o)
}
