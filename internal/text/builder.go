package text

import "strings"

// Builder assembles text line by line. Each line is a list of segments
// that are joined with single spaces when the text is rendered.
type Builder struct {
	lines [][]string
	cur   int
}

// NewBuilder returns an empty Builder positioned on its first line.
func NewBuilder() *Builder {
	return &Builder{lines: [][]string{nil}}
}

// Push appends segments to the current line. Empty strings are dropped.
func (b *Builder) Push(segs ...string) *Builder {
	for _, s := range segs {
		if s == "" {
			continue
		}
		b.lines[b.cur] = append(b.lines[b.cur], s)
	}
	return b
}

// Add concatenates strs and appends the result to the last segment of the
// current line, without any separating space. On an empty line the result
// becomes the first segment.
func (b *Builder) Add(strs ...string) *Builder {
	joined := strings.Join(strs, "")
	if joined == "" {
		return b
	}
	line := b.lines[b.cur]
	if len(line) == 0 {
		b.lines[b.cur] = append(line, joined)
		return b
	}
	line[len(line)-1] += joined
	return b
}

// Wrap replaces the current line with its wrapped form. With segments set,
// each segment is kept whole (WrapSegments); otherwise the line is split
// into words first (Wrap). The last wrapped line becomes current.
func (b *Builder) Wrap(o Options, segments bool) *Builder {
	var wrapped string
	if segments {
		wrapped = WrapSegments(b.lines[b.cur], o)
	} else {
		wrapped = Wrap(strings.Join(b.lines[b.cur], " "), o)
	}

	b.lines = append(b.lines[:b.cur], b.lines[b.cur+1:]...)
	b.cur--
	for _, l := range strings.Split(wrapped, "\n") {
		b.Next(l)
	}
	return b
}

// Indent prefixes the current line with count columns of space.
func (b *Builder) Indent(count int) *Builder {
	if count <= 0 {
		return b
	}
	// Joining adds one space after the prefix segment.
	prefix := strings.Repeat(" ", count-1)
	b.lines[b.cur] = append([]string{prefix}, b.lines[b.cur]...)
	return b
}

// Next starts a new line and pushes segs onto it.
func (b *Builder) Next(segs ...string) *Builder {
	b.lines = append(b.lines, nil)
	b.cur = len(b.lines) - 1
	return b.Push(segs...)
}

// Skip inserts a blank line and starts the line after it.
func (b *Builder) Skip(segs ...string) *Builder {
	b.Next()
	return b.Next(segs...)
}

// String renders the built text.
func (b *Builder) String() string {
	out := make([]string, len(b.lines))
	for i, l := range b.lines {
		out[i] = strings.Join(l, " ")
	}
	return strings.Join(out, "\n")
}
