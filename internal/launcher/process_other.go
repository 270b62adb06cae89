//go:build !unix

package launcher

import (
	"log/slog"
	"os"
	"os/signal"
)

func exitCode(ps *os.ProcessState) int { return ps.ExitCode() }

func forwardSignals(_ *os.Process, _ *slog.Logger) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return func() { signal.Stop(ch) }
}
