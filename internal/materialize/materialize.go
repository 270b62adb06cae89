// Package materialize writes bundled resources to disk so that an external
// process can use them. Every invocation gets its own workspace directory;
// resources are written to uniquely named files inside it and their
// permission bits are set explicitly, independent of the process umask.
package materialize

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/appcompat/appcompat/internal/assets"
)

const (
	// DefaultMode is used for data files and when no mode is requested.
	DefaultMode fs.FileMode = 0o644
	// ExecMode is used for executables.
	ExecMode fs.FileMode = 0o755
)

// ErrNoExec is returned when an executable would be written to a
// filesystem mounted noexec.
var ErrNoExec = errors.New("temporary directory does not allow executables")

// Source provides resource content. *assets.Bundle implements it.
type Source interface {
	ReadFile(name string) ([]byte, error)
}

// File is a resource written to disk.
type File struct {
	Name string
	Mode fs.FileMode
	// Path is absolute.
	Path string
}

// Options configures a Materializer.
type Options struct {
	// TempDir is the parent of the workspace directory. Empty means
	// os.TempDir.
	TempDir string

	// Keep leaves the workspace on disk after Close.
	Keep bool

	// CacheDir enables the extraction cache rooted at this directory.
	// Cached resources are shared: concurrent launches see the same paths
	// for identical content, and Close leaves them in place.
	CacheDir string

	Logger *slog.Logger
}

// Materializer writes resources from a Source into a private workspace.
type Materializer struct {
	src   Source
	dir   string
	keep  bool
	cache *Cache
	log   *slog.Logger
}

// New creates the workspace directory and returns a Materializer writing
// into it. Callers must Close it.
func New(src Source, opts Options) (*Materializer, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	dir, err := os.MkdirTemp(opts.TempDir, "appcompat-*")
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("securing workspace: %w", err)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	m := &Materializer{src: src, dir: dir, keep: opts.Keep, log: log}
	if opts.CacheDir != "" {
		m.cache = NewCache(opts.CacheDir)
	}
	log.Debug("workspace created", "dir", dir, "keep", opts.Keep, "cache", opts.CacheDir)
	return m, nil
}

// Dir returns the workspace directory.
func (m *Materializer) Dir() string { return m.dir }

// Materialize writes the named resource and sets its mode. A zero mode
// means DefaultMode.
func (m *Materializer) Materialize(name string, mode fs.FileMode) (File, error) {
	if mode == 0 {
		mode = DefaultMode
	}
	mode = mode.Perm()

	data, err := m.src.ReadFile(name)
	if err != nil {
		return File{}, err
	}
	if len(data) == 0 {
		return File{}, fmt.Errorf("%w: %s", assets.ErrNotFound, name)
	}

	var path string
	if m.cache != nil {
		path, err = m.cache.Store(name, mode, data)
	} else {
		path, err = m.writeTemp(name, mode, data)
	}
	if err != nil {
		return File{}, err
	}
	if mode&0o111 != 0 {
		if err := CheckExecutable(filepath.Dir(path)); err != nil {
			return File{}, err
		}
	}
	m.log.Debug("resource materialized", "name", name, "path", path, "mode", fmt.Sprintf("%#o", mode), "bytes", len(data))
	return File{Name: name, Mode: mode, Path: path}, nil
}

func (m *Materializer) writeTemp(name string, mode fs.FileMode, data []byte) (string, error) {
	f, err := os.CreateTemp(m.dir, "*-"+filepath.Base(name))
	if err != nil {
		return "", fmt.Errorf("creating file for %s: %w", name, err)
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		return "", fmt.Errorf("setting mode on %s: %w", path, err)
	}
	return filepath.Abs(path)
}

// Close removes the workspace unless it is kept. Cached files live outside
// the workspace and are never removed.
func (m *Materializer) Close() error {
	if m.keep {
		m.log.Debug("workspace kept", "dir", m.dir)
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("removing workspace: %w", err)
	}
	return nil
}
