package app

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blackwell-systems/ark/internal/config"
	"github.com/blackwell-systems/ark/internal/output"
)

// syncBuffer is a bytes.Buffer safe for a command writing from another
// goroutine while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// resetFlags restores every package-level flag variable to its default and
// isolates HOME and XDG_CONFIG_HOME in temp dirs.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")

	configPath, quiet, verbose, noTime = "", false, false, false
	cfg, logger = config.Default(), output.Discard()

	versionProject, versionDefault, versionNoDev, versionLine = "", "", false, false
	watchOn, watchJournal = nil, ""
	watchDaemon, watchDaemonChild, watchStop = false, false, false
	watchPIDFile, watchLogFile = "", ""
	historyJournal, historyLimit, historyPrune, historyPath = "", 20, 0, ""
	statusPIDFile, statusJournal = "", ""
	wrapWidth, wrapIndent, wrapHanging = 0, 0, false
	clearContexts()
}

// clearContexts drops the contexts cobra kept on subcommands from earlier
// runs; a subcommand only inherits the root context when it has none.
func clearContexts() {
	for _, c := range RootCmd.Commands() {
		c.SetContext(nil)
	}
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return executeCommandContext(t, context.Background(), stdin, args...)
}

func executeCommandContext(t *testing.T, ctx context.Context, stdin string, args ...string) (string, error) {
	t.Helper()
	var out syncBuffer
	err := executeInto(ctx, &out, stdin, args...)
	return out.String(), err
}

func executeInto(ctx context.Context, out io.Writer, stdin string, args ...string) error {
	clearContexts()
	RootCmd.SetOut(out)
	RootCmd.SetErr(out)
	RootCmd.SetIn(strings.NewReader(stdin))
	RootCmd.SetArgs(args)
	defer func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetIn(nil)
		RootCmd.SetArgs(nil)
	}()
	return RootCmd.ExecuteContext(ctx)
}

// waitForOutput polls out until it contains want.
func waitForOutput(t *testing.T, out *syncBuffer, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !strings.Contains(out.String(), want) {
		if time.Now().After(deadline) {
			t.Fatalf("output does not contain %q after %v:\n%s", want, timeout, out.String())
		}
		time.Sleep(20 * time.Millisecond)
	}
}
