package appcompat

import (
	"context"
	"io"

	"github.com/appcompat/appcompat/internal/config"
	"github.com/appcompat/appcompat/internal/history"
	"github.com/appcompat/appcompat/internal/launcher"
)

// launch runs veridex once with args and returns its exit status.
func launch(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	fc, err := loadConfig(config.FileConfig{}, "")
	if err != nil {
		return 2, err
	}
	log := newLogger(fc, stderr)

	b, err := openBundle(fc)
	if err != nil {
		return 2, err
	}
	log.Debug("resource bundle", "origin", b.Origin())

	opts := launcherOptions(fc, stdout, log)
	opts.Stdin = stdin
	opts.Stderr = stderr
	res, runErr := launcher.New(b, opts).Run(ctx, args)

	if config.Bool(fc.History, false) {
		if p := history.DefaultPath(); p != "" {
			rec := history.NewRecord(args, res.ExitCode, res.Duration, b.Origin(), runErr)
			if err := history.New(p).Append(rec); err != nil {
				log.Warn("recording history failed", "error", err)
			}
		}
	}

	if runErr != nil {
		return 2, runErr
	}
	return res.ExitCode, nil
}
