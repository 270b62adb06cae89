//go:build unix

package launcher

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// exitCode maps a finished process to a shell-style exit status.
func exitCode(ps *os.ProcessState) int {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return ps.ExitCode()
}

// forwardSignals relays termination signals to the child while it runs.
// SIGINT and SIGQUIT are only absorbed: the terminal already delivers them
// to the whole foreground process group.
func forwardSignals(p *os.Process, log *slog.Logger) (stop func()) {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, unix.SIGTERM, unix.SIGHUP, unix.SIGINT, unix.SIGQUIT)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case s := <-ch:
				if s == unix.SIGINT || s == unix.SIGQUIT {
					continue
				}
				log.Debug("forwarding signal", "signal", s)
				_ = p.Signal(s)
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
