package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SiblingDirName is the directory next to the executable that is used as
// the bundle when present.
const SiblingDirName = "appcompat-assets"

// EmbeddedOrigin is the Origin of the bundle compiled into the binary.
const EmbeddedOrigin = "embedded"

//go:embed payload
var payload embed.FS

// Embedded returns the payload compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(payload, "payload")
	if err != nil {
		panic("assets: embedded payload: " + err.Error())
	}
	return sub
}

// SourceOptions selects where a bundle is read from.
type SourceOptions struct {
	// Dir is an explicit assets directory. It must exist.
	Dir string

	// Executable overrides the path used to locate SiblingDirName.
	// Defaults to os.Executable.
	Executable string
}

// Open resolves the bundle: an explicit directory, then the sibling
// directory of the executable, then the embedded payload.
func Open(opts SourceOptions) (*Bundle, error) {
	if opts.Dir != "" {
		dir, err := filepath.Abs(opts.Dir)
		if err != nil {
			return nil, fmt.Errorf("resolving assets dir: %w", err)
		}
		st, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("assets dir: %w", err)
		}
		if !st.IsDir() {
			return nil, fmt.Errorf("assets dir %s is not a directory", dir)
		}
		return New(os.DirFS(dir), dir)
	}

	exe := opts.Executable
	if exe == "" {
		if p, err := os.Executable(); err == nil {
			exe = p
		}
	}
	if exe != "" {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		sibling := filepath.Join(filepath.Dir(exe), SiblingDirName)
		if st, err := os.Stat(sibling); err == nil && st.IsDir() {
			return New(os.DirFS(sibling), sibling)
		}
	}

	return New(Embedded(), EmbeddedOrigin)
}
