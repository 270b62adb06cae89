package launcher

import (
	"fmt"
	"sort"
	"strings"

	"al.essio.dev/pkg/shellescape"
	doublestar "github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludeAPILists is passed to --exclude-api-lists unless
// configured otherwise.
const DefaultExcludeAPILists = "sdk,invalid"

// Paths holds the on-disk locations of the materialized resources.
type Paths struct {
	Binary      string
	APIFlags    string
	SystemStubs string
	LegacyStubs string

	// ExtraStubs are appended to --core-stubs after the two bundled
	// archives.
	ExtraStubs []string
}

// Invocation is a fully assembled command line. Args[0] is Binary.
type Invocation struct {
	Binary string
	Args   []string
}

// CoreStubsFlag returns the --core-stubs value: system stubs first, legacy
// stubs second, colon separated.
func (p Paths) CoreStubsFlag() string {
	stubs := append([]string{p.SystemStubs, p.LegacyStubs}, p.ExtraStubs...)
	return "--core-stubs=" + strings.Join(stubs, ":")
}

// BuildInvocation assembles the veridex command line. callerArgs are
// appended verbatim and in order. An empty excludeLists selects
// DefaultExcludeAPILists.
func BuildInvocation(p Paths, excludeLists string, callerArgs []string) Invocation {
	if excludeLists == "" {
		excludeLists = DefaultExcludeAPILists
	}
	args := make([]string, 0, 4+len(callerArgs))
	args = append(args,
		p.Binary,
		p.CoreStubsFlag(),
		"--api-flags="+p.APIFlags,
		"--exclude-api-lists="+excludeLists,
	)
	args = append(args, callerArgs...)
	return Invocation{Binary: p.Binary, Args: args}
}

// String renders the invocation as a POSIX shell command line.
func (inv Invocation) String() string {
	return shellescape.QuoteCommand(inv.Args)
}

// ExpandStubGlobs resolves extra stub archive patterns. Patterns follow
// doublestar syntax; a pattern without meta characters must name an
// existing file. Results keep pattern order and are sorted within a
// pattern.
func ExpandStubGlobs(patterns []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, pat := range patterns {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		matches, err := doublestar.FilepathGlob(pat, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("extra core stubs pattern %q: %w", pat, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("extra core stubs pattern %q matched no files", pat)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if strings.Contains(m, ":") {
				return nil, fmt.Errorf("extra core stubs path %q contains ':'", m)
			}
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}
