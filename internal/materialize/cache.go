package materialize

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	xxhash "github.com/cespare/xxhash/v2"
)

// Cache is a content-addressed store of extracted resources. An entry lives
// at <root>/<xxhash64 of content>/<name>, so an unchanged resource is
// written once and reused by every later invocation.
type Cache struct {
	root string
}

// NewCache returns a cache rooted at root. The directory is created lazily.
func NewCache(root string) *Cache {
	return &Cache{root: root}
}

// DefaultCacheDir returns the per-user cache directory for extracted
// resources.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		return ""
	}
	return filepath.Join(base, "appcompat", "resources")
}

// Path returns where data for name is stored.
func (c *Cache) Path(name string, data []byte) string {
	return filepath.Join(c.root, fmt.Sprintf("%016x", xxhash.Sum64(data)), filepath.Base(name))
}

// Store returns the cache path for the resource, writing it first when no
// matching entry exists. Entries are published with a rename so concurrent
// launchers never see partial files.
func (c *Cache) Store(name string, mode fs.FileMode, data []byte) (string, error) {
	dst := c.Path(name, data)
	if abs, err := filepath.Abs(dst); err == nil {
		dst = abs
	}
	if c.valid(dst, mode, data) {
		return dst, nil
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating cache entry: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing cache entry: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return "", fmt.Errorf("setting mode on cache entry: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return "", fmt.Errorf("publishing cache entry: %w", err)
	}
	return dst, nil
}

// valid reports whether dst already holds data with the given mode.
func (c *Cache) valid(dst string, mode fs.FileMode, data []byte) bool {
	st, err := os.Stat(dst)
	if err != nil || !st.Mode().IsRegular() || st.Size() != int64(len(data)) || st.Mode().Perm() != mode {
		return false
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		return false
	}
	return xxhash.Sum64(got) == xxhash.Sum64(data)
}
