package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/appcompat/appcompat/internal/materialize"
)

// Options configures a Launcher. Zero values give the stock behaviour:
// bundled veridex, the two bundled stub archives and DefaultExcludeAPILists.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Banner prints Banner to Stdout before anything else happens.
	Banner bool
	Color  bool

	// BinaryPath runs an on-disk veridex instead of the bundled one.
	BinaryPath string

	// ExtraStubs are doublestar patterns for additional stub archives.
	ExtraStubs []string

	ExcludeAPILists string

	Materialize materialize.Options
	Logger      *slog.Logger
}

// Launcher materializes the bundled resources and runs veridex.
type Launcher struct {
	src  materialize.Source
	opts Options
	log  *slog.Logger
}

// New returns a Launcher reading resources from src.
func New(src materialize.Source, opts Options) *Launcher {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Materialize.Logger == nil {
		opts.Materialize.Logger = opts.Logger
	}
	return &Launcher{src: src, opts: opts, log: opts.Logger}
}

// Prepared is a materialized, assembled but not yet started invocation.
type Prepared struct {
	Invocation Invocation
	Files      []materialize.File
	m          *materialize.Materializer
}

// Workspace returns the directory holding the materialized files.
func (p *Prepared) Workspace() string { return p.m.Dir() }

// Close releases the workspace.
func (p *Prepared) Close() error { return p.m.Close() }

// Prepare materializes every resource and assembles the command line.
// The caller must Close the result.
func (l *Launcher) Prepare(callerArgs []string) (*Prepared, error) {
	m, err := materialize.New(l.src, l.opts.Materialize)
	if err != nil {
		return nil, err
	}
	p := &Prepared{m: m}

	var paths Paths
	for _, r := range Resources() {
		if r.Name == BinaryName && l.opts.BinaryPath != "" {
			paths.Binary = l.opts.BinaryPath
			l.log.Debug("using veridex override", "path", l.opts.BinaryPath)
			continue
		}
		f, err := m.Materialize(r.Name, r.Mode)
		if err != nil {
			_ = m.Close()
			return nil, err
		}
		p.Files = append(p.Files, f)
		switch r.Name {
		case BinaryName:
			paths.Binary = f.Path
		case APIFlagsName:
			paths.APIFlags = f.Path
		case SystemStubsName:
			paths.SystemStubs = f.Path
		case LegacyStubsName:
			paths.LegacyStubs = f.Path
		}
	}

	// --core-stubs is a ':' separated list
	for _, stub := range []string{paths.SystemStubs, paths.LegacyStubs} {
		if strings.Contains(stub, ":") {
			_ = m.Close()
			return nil, fmt.Errorf("core stubs path %q contains ':'; set APPCOMPAT_TMPDIR to a directory without one", stub)
		}
	}

	if len(l.opts.ExtraStubs) > 0 {
		extra, err := ExpandStubGlobs(l.opts.ExtraStubs)
		if err != nil {
			_ = m.Close()
			return nil, err
		}
		paths.ExtraStubs = extra
	}

	p.Invocation = BuildInvocation(paths, l.opts.ExcludeAPILists, callerArgs)
	return p, nil
}

// Result describes a finished veridex run.
type Result struct {
	ExitCode   int
	Invocation Invocation
	Duration   time.Duration
}

// Run prints the banner, prepares the invocation and runs veridex with the
// launcher's standard streams, blocking until it exits. A non-zero exit of
// veridex is reported through Result.ExitCode, not as an error; a process
// killed by a signal reports 128+signal.
func (l *Launcher) Run(ctx context.Context, callerArgs []string) (Result, error) {
	if l.opts.Banner {
		PrintBanner(l.opts.Stdout, l.opts.Color)
	}

	p, err := l.Prepare(callerArgs)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := p.Close(); err != nil {
			l.log.Warn("workspace cleanup failed", "dir", p.Workspace(), "error", err)
		}
	}()

	inv := p.Invocation
	res := Result{ExitCode: -1, Invocation: inv}

	cmd := exec.CommandContext(ctx, inv.Binary)
	cmd.Args = inv.Args
	cmd.Stdin = l.opts.Stdin
	cmd.Stdout = l.opts.Stdout
	cmd.Stderr = l.opts.Stderr

	l.log.Debug("starting veridex", "argv", inv.Args)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return res, fmt.Errorf("starting %s: %w", inv.Binary, err)
	}
	stop := forwardSignals(cmd.Process, l.log)
	err = cmd.Wait()
	stop()
	res.Duration = time.Since(start)

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return res, fmt.Errorf("waiting for %s: %w", inv.Binary, err)
		}
	}
	res.ExitCode = exitCode(cmd.ProcessState)
	l.log.Debug("veridex exited", "code", res.ExitCode, "duration", res.Duration)
	return res, nil
}
