package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a resource is missing from the bundle
	// or has no content.
	ErrNotFound = errors.New("resource not found")

	// ErrDigestMismatch is returned by Verify when a resource does not
	// match its manifest entry.
	ErrDigestMismatch = errors.New("digest mismatch")

	// ErrNoManifest is returned by Verify for bundles without a manifest.
	ErrNoManifest = errors.New("bundle has no " + ManifestName)
)

// skipped files are part of a payload directory but never resources.
var skipped = map[string]bool{
	ManifestName: true,
	"README.md":  true,
}

// Bundle is a read-only set of resources.
type Bundle struct {
	fsys     fs.FS
	origin   string
	manifest *Manifest
}

// Entry describes one resource found in a bundle.
type Entry struct {
	Name        string
	Stored      string
	StoredSize  int64
	Compression Codec
	// Digest is the manifest digest, empty when the bundle has no
	// manifest entry for the resource.
	Digest string
}

// New returns a bundle reading from fsys. origin names the source in
// messages ("embedded" or a directory path). A manifest.yml at the root of
// fsys is loaded when present.
func New(fsys fs.FS, origin string) (*Bundle, error) {
	b := &Bundle{fsys: fsys, origin: origin}
	raw, err := fs.ReadFile(fsys, ManifestName)
	switch {
	case err == nil:
		m, err := ParseManifest(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", origin, err)
		}
		b.manifest = m
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading %s from %s: %w", ManifestName, origin, err)
	}
	return b, nil
}

// Origin reports where the bundle was loaded from.
func (b *Bundle) Origin() string { return b.origin }

// Manifest returns the bundle manifest, or nil.
func (b *Bundle) Manifest() *Manifest { return b.manifest }

// ReadFile returns the decoded content of the named resource. A resource
// stored as name.zst or name.lz4 is decompressed. Missing and zero-length
// resources yield an error wrapping ErrNotFound.
func (b *Bundle) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) || skipped[name] {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	data, err := fs.ReadFile(b.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		data, err = b.readCompressed(name)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("reading resource %s from %s: %w", name, b.origin, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, nil
}

func (b *Bundle) readCompressed(name string) ([]byte, error) {
	for _, c := range codecs {
		raw, err := fs.ReadFile(b.fsys, name+c.Ext())
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return Decompress(raw, c)
	}
	return nil, fs.ErrNotExist
}

// List returns the resources stored at the top level of the bundle, sorted
// by name.
func (b *Bundle) List() ([]Entry, error) {
	dirents, err := fs.ReadDir(b.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", b.origin, err)
	}
	var entries []Entry
	for _, d := range dirents {
		if d.IsDir() || skipped[d.Name()] || strings.HasPrefix(d.Name(), ".") {
			continue
		}
		info, err := d.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", d.Name(), err)
		}
		name, codec := splitCodec(d.Name())
		e := Entry{
			Name:        name,
			Stored:      d.Name(),
			StoredSize:  info.Size(),
			Compression: codec,
		}
		if me, ok := b.manifest.Lookup(name); ok {
			e.Digest = me.BLAKE3
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// VerifyResult is the outcome of checking one manifest entry.
type VerifyResult struct {
	Name string
	Want string
	Got  string
	Err  error
}

// OK reports whether the resource matched its manifest entry.
func (r VerifyResult) OK() bool { return r.Err == nil && r.Want == r.Got }

// Verify checks every manifest entry against the bundle content. The
// returned error wraps ErrDigestMismatch when at least one resource is
// missing or differs; the per-resource results are returned either way.
func (b *Bundle) Verify() ([]VerifyResult, error) {
	if b.manifest == nil {
		return nil, ErrNoManifest
	}
	results := make([]VerifyResult, 0, len(b.manifest.Assets))
	bad := 0
	for _, me := range b.manifest.Assets {
		r := VerifyResult{Name: me.Name, Want: me.BLAKE3}
		data, err := b.ReadFile(me.Name)
		if err != nil {
			r.Err = err
		} else {
			r.Got = Digest(data)
			if me.Size != 0 && me.Size != int64(len(data)) {
				r.Err = fmt.Errorf("size %d, manifest says %d", len(data), me.Size)
			}
		}
		if !r.OK() {
			bad++
		}
		results = append(results, r)
	}
	if bad > 0 {
		return results, fmt.Errorf("%w: %d of %d resources in %s", ErrDigestMismatch, bad, len(results), b.origin)
	}
	return results, nil
}
