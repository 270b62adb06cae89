package appcompat

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/appcompat/appcompat/internal/assets"
	"github.com/appcompat/appcompat/internal/config"
	"github.com/appcompat/appcompat/internal/launcher"
	"github.com/appcompat/appcompat/internal/logging"
	"github.com/appcompat/appcompat/internal/materialize"
	"golang.org/x/term"
)

// loadConfig merges the configuration layers: flags, environment, an
// explicit file (--config or APPCOMPAT_CONFIG), the repo-local file and the
// global file. A layer that exists but does not parse is an error.
func loadConfig(flags config.FileConfig, explicit string) (config.FileConfig, error) {
	layers := []config.FileConfig{flags, config.FromEnv()}

	if explicit == "" {
		explicit = config.ConfigPath()
	}
	if explicit != "" {
		fc, err := config.LoadFile(explicit)
		if err != nil {
			return config.FileConfig{}, fmt.Errorf("loading config: %w", err)
		}
		layers = append(layers, fc)
	}

	wd, err := os.Getwd()
	if err != nil {
		return config.FileConfig{}, err
	}
	local, err := config.LoadLocal(wd)
	switch {
	case err == nil:
		layers = append(layers, local)
	case !errors.Is(err, os.ErrNotExist):
		return config.FileConfig{}, fmt.Errorf("loading local config: %w", err)
	}

	global, err := config.LoadGlobal()
	switch {
	case err == nil:
		layers = append(layers, global)
	case !errors.Is(err, os.ErrNotExist):
		return config.FileConfig{}, fmt.Errorf("loading global config: %w", err)
	}
	return config.Merge(layers...), nil
}

func newLogger(fc config.FileConfig, w io.Writer) *slog.Logger {
	return logging.New(config.String(fc.LogLevel, ""), config.String(fc.LogFormat, ""), w)
}

func openBundle(fc config.FileConfig) (*assets.Bundle, error) {
	return assets.Open(assets.SourceOptions{Dir: config.String(fc.AssetsDir, "")})
}

// launcherOptions translates merged configuration into launcher options.
func launcherOptions(fc config.FileConfig, stdout io.Writer, log *slog.Logger) launcher.Options {
	cacheDir := ""
	if config.Bool(fc.ExtractCache, false) {
		cacheDir = config.String(fc.CacheDir, materialize.DefaultCacheDir())
	}
	vx := fc.GetVeridex()
	return launcher.Options{
		Stdout:          stdout,
		Banner:          !config.Bool(fc.NoBanner, false),
		Color:           useColor(fc, stdout),
		BinaryPath:      vx.GetBinary(),
		ExtraStubs:      vx.ExtraCoreStubs,
		ExcludeAPILists: vx.GetExcludeAPILists(),
		Materialize: materialize.Options{
			TempDir:  config.String(fc.TempDir, ""),
			Keep:     config.Bool(fc.KeepTemp, false),
			CacheDir: cacheDir,
			Logger:   log,
		},
		Logger: log,
	}
}

func useColor(fc config.FileConfig, w io.Writer) bool {
	return !config.Bool(fc.NoColor, false) && isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
