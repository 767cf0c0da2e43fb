package watcher

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"
)

// Begin runs the poll loop in a background goroutine and blocks until it
// ends. The loop scans, then waits one poll interval, until Stop is called,
// ctx is cancelled or (unless disabled) SIGINT is received. Cancellation is
// observed between scans, never during one.
//
// Begin returns nil when the loop was stopped and the scan or hook error
// that ended it otherwise. Calling Begin while the watcher is already
// running is a no-op. Hooks registered after Begin are not seen by the
// running loop.
func (w *Watcher) Begin(ctx context.Context) error {
	w.mu.Lock()
	if w.stopCh != nil {
		w.mu.Unlock()
		return nil
	}
	stopCh := make(chan struct{})
	w.stopCh = stopCh
	w.mu.Unlock()

	hooks := w.hooks.Clone()
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.run(hooks, stopCh)
	}()

	var sigCh chan os.Signal
	if w.handleSignals {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		defer signal.Stop(sigCh)
	}

	done := ctx.Done()
	for {
		select {
		case err := <-errCh:
			w.release(stopCh)
			return err
		case <-done:
			done = nil
			w.Stop()
		case sig := <-sigCh:
			sigCh = nil
			w.logger.Dbg(fmt.Sprintf("received %v, stopping", sig), 0)
			w.Stop()
		}
	}
}

// Stop signals the poll loop to end after its current scan. It returns
// once the signal is sent, without waiting for the loop to exit. Stop is a
// no-op when the watcher is not running.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopCh == nil {
		return
	}
	close(w.stopCh)
	w.stopCh = nil
}

// Running reports whether the poll loop is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopCh != nil
}

// release clears the running state after the loop exited on its own.
func (w *Watcher) release(stopCh chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh == stopCh {
		w.stopCh = nil
	}
}

func (w *Watcher) run(hooks *Registry, stopCh <-chan struct{}) error {
	for {
		w.scanMu.Lock()
		err := w.scan(false, hooks)
		w.scanMu.Unlock()
		if err != nil {
			w.logger.Wrn(fmt.Sprintf("poll loop stopped: %v", err), 0)
			return err
		}

		select {
		case <-stopCh:
			return nil
		case <-time.After(w.interval):
		}
	}
}
