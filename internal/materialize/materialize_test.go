package materialize

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/appcompat/appcompat/internal/assets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testResources = map[string][]byte{
	"veridex":                          []byte("#!/bin/sh\nexit 0\n"),
	"hiddenapi-flags.csv":              []byte("Landroid/app/Activity;->mWindow:Landroid/view/Window;,unsupported\n"),
	"system-stubs.zip":                 []byte("PK\x03\x04system"),
	"org.apache.http.legacy-stubs.zip": []byte("PK\x03\x04legacy"),
}

func testBundle(t *testing.T) *assets.Bundle {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, data := range testResources {
		fsys[name] = &fstest.MapFile{Data: data}
	}
	b, err := assets.New(fsys, "test")
	require.NoError(t, err)
	return b
}

func TestMaterialize_ContentAndMode(t *testing.T) {
	m, err := New(testBundle(t), Options{TempDir: t.TempDir()})
	require.NoError(t, err)
	defer m.Close()

	modes := map[string]os.FileMode{
		"veridex":                          ExecMode,
		"hiddenapi-flags.csv":              DefaultMode,
		"system-stubs.zip":                 DefaultMode,
		"org.apache.http.legacy-stubs.zip": 0,
	}
	for name, mode := range modes {
		f, err := m.Materialize(name, mode)
		require.NoError(t, err, name)
		assert.True(t, filepath.IsAbs(f.Path), f.Path)
		assert.Equal(t, m.Dir(), filepath.Dir(f.Path))

		got, err := os.ReadFile(f.Path)
		require.NoError(t, err)
		assert.Equal(t, testResources[name], got, name)

		st, err := os.Stat(f.Path)
		require.NoError(t, err)
		want := mode
		if want == 0 {
			want = DefaultMode
		}
		assert.Equal(t, want, st.Mode().Perm(), name)
		assert.Equal(t, want, f.Mode)
	}
}

func TestMaterialize_NotFound(t *testing.T) {
	m, err := New(testBundle(t), Options{TempDir: t.TempDir()})
	require.NoError(t, err)
	defer m.Close()

	f, err := m.Materialize("framework-stubs.zip", DefaultMode)
	assert.ErrorIs(t, err, assets.ErrNotFound)
	assert.Empty(t, f.Path)
}

type emptySource struct{}

func (emptySource) ReadFile(string) ([]byte, error) { return []byte{}, nil }

func TestMaterialize_EmptySourceIsNotFound(t *testing.T) {
	m, err := New(emptySource{}, Options{TempDir: t.TempDir()})
	require.NoError(t, err)
	defer m.Close()

	_, err = m.Materialize("veridex", ExecMode)
	assert.ErrorIs(t, err, assets.ErrNotFound)
}

func TestClose_RemovesWorkspace(t *testing.T) {
	m, err := New(testBundle(t), Options{TempDir: t.TempDir()})
	require.NoError(t, err)
	f, err := m.Materialize("system-stubs.zip", DefaultMode)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	assert.NoFileExists(t, f.Path)
	assert.NoDirExists(t, m.Dir())
}

func TestClose_KeepLeavesFiles(t *testing.T) {
	m, err := New(testBundle(t), Options{TempDir: t.TempDir(), Keep: true})
	require.NoError(t, err)
	f, err := m.Materialize("system-stubs.zip", DefaultMode)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	assert.FileExists(t, f.Path)
}

func TestWorkspaces_DoNotCollide(t *testing.T) {
	parent := t.TempDir()
	bundle := testBundle(t)

	const n = 8
	paths := make([][]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := New(bundle, Options{TempDir: parent, Keep: true})
			if !assert.NoError(t, err) {
				return
			}
			for name := range testResources {
				f, err := m.Materialize(name, DefaultMode)
				if assert.NoError(t, err) {
					paths[i] = append(paths[i], f.Path)
				}
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, set := range paths {
		require.Len(t, set, len(testResources))
		for _, p := range set {
			assert.False(t, seen[p], "path reused: %s", p)
			seen[p] = true
		}
	}
}

func TestMaterialize_Cache(t *testing.T) {
	cacheDir := t.TempDir()
	bundle := testBundle(t)

	first, err := New(bundle, Options{TempDir: t.TempDir(), CacheDir: cacheDir})
	require.NoError(t, err)
	a, err := first.Materialize("veridex", ExecMode)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// cached entries outlive the workspace
	assert.FileExists(t, a.Path)
	st1, err := os.Stat(a.Path)
	require.NoError(t, err)

	second, err := New(bundle, Options{TempDir: t.TempDir(), CacheDir: cacheDir})
	require.NoError(t, err)
	defer second.Close()
	b, err := second.Materialize("veridex", ExecMode)
	require.NoError(t, err)
	assert.Equal(t, a.Path, b.Path)

	st2, err := os.Stat(b.Path)
	require.NoError(t, err)
	assert.True(t, os.SameFile(st1, st2))
	assert.Equal(t, ExecMode, st2.Mode().Perm())
}

func TestCache_RewritesOnModeChange(t *testing.T) {
	c := NewCache(t.TempDir())
	data := []byte("flags")
	p, err := c.Store("hiddenapi-flags.csv", DefaultMode, data)
	require.NoError(t, err)
	require.NoError(t, os.Chmod(p, 0o600))

	p2, err := c.Store("hiddenapi-flags.csv", DefaultMode, data)
	require.NoError(t, err)
	assert.Equal(t, p, p2)
	st, err := os.Stat(p2)
	require.NoError(t, err)
	assert.Equal(t, DefaultMode, st.Mode().Perm())
}

func TestCache_PathDependsOnContent(t *testing.T) {
	c := NewCache("/cache")
	assert.NotEqual(t, c.Path("veridex", []byte("a")), c.Path("veridex", []byte("b")))
	assert.Equal(t, c.Path("veridex", []byte("a")), c.Path("veridex", []byte("a")))
	assert.Equal(t, "veridex", filepath.Base(c.Path("veridex", []byte("a"))))
}

func TestCache_RewritesCorruptedEntry(t *testing.T) {
	c := NewCache(t.TempDir())
	data := []byte("flags")
	p, err := c.Store("hiddenapi-flags.csv", DefaultMode, data)
	require.NoError(t, err)

	// same size and mode, different bytes
	require.NoError(t, os.WriteFile(p, []byte("flagz"), DefaultMode))
	require.NoError(t, os.Chmod(p, DefaultMode))

	p2, err := c.Store("hiddenapi-flags.csv", DefaultMode, data)
	require.NoError(t, err)
	assert.Equal(t, p, p2)
	got, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
