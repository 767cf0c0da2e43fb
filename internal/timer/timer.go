// Package timer provides a stopwatch used to stamp console log lines with
// the time elapsed since the last reset.
package timer

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultRound is the number of decimal places String rounds to.
const DefaultRound = 2

// Timer reports the time elapsed since it was created or last reset.
// It is safe for concurrent use.
type Timer struct {
	mu    sync.Mutex
	start time.Time
	round int
	now   func() time.Time
}

// New creates a started Timer that rounds to the given number of places.
// A negative round uses DefaultRound.
func New(round int) *Timer {
	if round < 0 {
		round = DefaultRound
	}
	t := &Timer{round: round, now: time.Now}
	t.start = t.now()
	return t
}

// Reset restarts the timer from now.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.start = t.now()
}

// Elapsed returns the time since the last reset.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now().Sub(t.start)
}

// String formats the elapsed seconds, rounded to the configured number of
// places and right-padded with zeros to five characters (e.g. "1.500").
func (t *Timer) String() string {
	return FormatSeconds(t.Elapsed(), t.round)
}

// FormatSeconds renders d in seconds the way String does.
func FormatSeconds(d time.Duration, round int) string {
	pow := math.Pow(10, float64(round))
	secs := math.Round(d.Seconds()*pow) / pow

	s := strconv.FormatFloat(secs, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	if len(s) < 5 {
		s += strings.Repeat("0", 5-len(s))
	}
	return s
}
