package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/blackwell-systems/ark/internal/timer"
)

// Line symbols written between the timestamp and the message.
const (
	SymMsg = ">>>"
	SymDbg = "..."
	SymWrn = "???"
)

// LogConfig controls what a Logger writes and how.
type LogConfig struct {
	// Quiet suppresses all messages.
	Quiet bool
	// Verbose allows loud (debug and warning) messages through.
	Verbose bool
	// Timed prefixes each line with the elapsed time from Timer.
	Timed bool
	// Timer supplies the elapsed time. A nil Timer starts a new one.
	Timer *timer.Timer
	// Writer receives the output. Defaults to os.Stdout.
	Writer io.Writer
}

// Logger writes formatted, optionally timestamped lines to a console.
// It is safe for concurrent use.
type Logger struct {
	mu    sync.Mutex
	cfg   LogConfig
	color bool
}

// NewLogger creates a Logger from cfg.
func NewLogger(cfg LogConfig) *Logger {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.Timer == nil {
		cfg.Timer = timer.New(timer.DefaultRound)
	}
	return &Logger{
		cfg:   cfg,
		color: writerIsTTY(cfg.Writer) && os.Getenv("NO_COLOR") == "",
	}
}

// Discard returns a Logger that never writes anything.
func Discard() *Logger {
	return NewLogger(LogConfig{Quiet: true, Writer: io.Discard})
}

// Timer returns the timer used for line timestamps.
func (l *Logger) Timer() *timer.Timer {
	return l.cfg.Timer
}

// Color reports whether the Logger's writer gets ANSI colour codes.
func (l *Logger) Color() bool {
	return l.color
}

// Say writes msg with the given symbol at the given indent level. Loud
// messages are only written in verbose mode. An empty msg writes a blank
// line. It reports whether anything was written.
func (l *Logger) Say(msg, sym string, loud bool, indent int) bool {
	if l.cfg.Quiet {
		return false
	}
	if loud && !l.cfg.Verbose {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if msg == "" {
		fmt.Fprintln(l.cfg.Writer)
		return true
	}
	fmt.Fprintln(l.cfg.Writer, l.format(msg, sym, indent))
	return true
}

func (l *Logger) format(msg, sym string, indent int) string {
	var sb strings.Builder
	if l.cfg.Timed {
		sb.WriteString(l.cfg.Timer.String())
		sb.WriteByte(' ')
	}
	if l.color {
		sb.WriteString(symColor(sym) + sym + colorReset)
	} else {
		sb.WriteString(sym)
	}
	if indent > 0 {
		sb.WriteString(strings.Repeat("    ", indent))
	} else {
		sb.WriteByte(' ')
	}
	sb.WriteString(msg)
	return sb.String()
}

// Msg writes a normal message.
func (l *Logger) Msg(msg string, indent int) bool {
	return l.Say(msg, SymMsg, false, indent)
}

// Dbg writes a debug message, shown only in verbose mode.
func (l *Logger) Dbg(msg string, indent int) bool {
	return l.Say(msg, SymDbg, true, indent)
}

// Wrn writes a warning, shown only in verbose mode.
func (l *Logger) Wrn(msg string, indent int) bool {
	return l.Say(msg, SymWrn, true, indent)
}

func symColor(sym string) string {
	switch sym {
	case SymMsg:
		return colorGreen
	case SymWrn:
		return colorYellow
	default:
		return colorGray
	}
}
