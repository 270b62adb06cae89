package assets

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompress(t *testing.T, data []byte, c Codec) []byte {
	t.Helper()
	out, err := Compress(data, c)
	require.NoError(t, err)
	return out
}

func TestBundle_ReadFile(t *testing.T) {
	b, err := New(fstest.MapFS{
		"hiddenapi-flags.csv": {Data: []byte("Ljava/lang/Object;->hashCode()I,sdk\n")},
	}, "test")
	require.NoError(t, err)

	data, err := b.ReadFile("hiddenapi-flags.csv")
	require.NoError(t, err)
	assert.Equal(t, "Ljava/lang/Object;->hashCode()I,sdk\n", string(data))
}

func TestBundle_ReadFile_NotFound(t *testing.T) {
	b, err := New(fstest.MapFS{
		"empty.zip": {Data: nil},
		"README.md": {Data: []byte("docs")},
	}, "test")
	require.NoError(t, err)

	for _, name := range []string{"veridex", "empty.zip", "README.md", "../veridex", ""} {
		_, err := b.ReadFile(name)
		assert.ErrorIs(t, err, ErrNotFound, name)
	}
	_, err = b.ReadFile("veridex")
	assert.EqualError(t, err, "resource not found: veridex")
}

func TestBundle_ReadFile_Compressed(t *testing.T) {
	stubs := bytes.Repeat([]byte("PK\x03\x04stub"), 512)
	b, err := New(fstest.MapFS{
		"system-stubs.zip.zst":                 {Data: mustCompress(t, stubs, CodecZstd)},
		"org.apache.http.legacy-stubs.zip.lz4": {Data: mustCompress(t, stubs[:100], CodecLZ4)},
	}, "test")
	require.NoError(t, err)

	got, err := b.ReadFile("system-stubs.zip")
	require.NoError(t, err)
	assert.Equal(t, stubs, got)

	got, err = b.ReadFile("org.apache.http.legacy-stubs.zip")
	require.NoError(t, err)
	assert.Equal(t, stubs[:100], got)
}

func TestBundle_PlainWinsOverCompressed(t *testing.T) {
	b, err := New(fstest.MapFS{
		"veridex":     {Data: []byte("plain")},
		"veridex.zst": {Data: mustCompress(t, []byte("compressed"), CodecZstd)},
	}, "test")
	require.NoError(t, err)
	got, err := b.ReadFile("veridex")
	require.NoError(t, err)
	assert.Equal(t, "plain", string(got))
}

func TestBundle_List(t *testing.T) {
	flags := []byte("a,b\n")
	m := Manifest{Assets: []ManifestEntry{{Name: "hiddenapi-flags.csv", Size: 4, BLAKE3: Digest(flags)}}}
	raw, err := m.Marshal()
	require.NoError(t, err)

	b, err := New(fstest.MapFS{
		"hiddenapi-flags.csv": {Data: flags},
		"veridex.lz4":         {Data: mustCompress(t, []byte("elf"), CodecLZ4)},
		ManifestName:          {Data: raw},
		"README.md":           {Data: []byte("x")},
		".keep":               {Data: []byte("x")},
		"sub/inner":           {Data: []byte("x")},
	}, "test")
	require.NoError(t, err)

	entries, err := b.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "hiddenapi-flags.csv", entries[0].Name)
	assert.Equal(t, CodecNone, entries[0].Compression)
	assert.Equal(t, Digest(flags), entries[0].Digest)
	assert.Equal(t, "veridex", entries[1].Name)
	assert.Equal(t, "veridex.lz4", entries[1].Stored)
	assert.Equal(t, CodecLZ4, entries[1].Compression)
	assert.Empty(t, entries[1].Digest)
}

func TestBundle_Verify(t *testing.T) {
	flags := []byte("flags")
	stubs := []byte("stubs")
	m := Manifest{Assets: []ManifestEntry{
		{Name: "hiddenapi-flags.csv", Size: int64(len(flags)), BLAKE3: Digest(flags)},
		{Name: "system-stubs.zip", Size: int64(len(stubs)), BLAKE3: Digest(stubs)},
	}}
	raw, err := m.Marshal()
	require.NoError(t, err)

	good, err := New(fstest.MapFS{
		ManifestName:          {Data: raw},
		"hiddenapi-flags.csv": {Data: flags},
		"system-stubs.zip":    {Data: stubs},
	}, "good")
	require.NoError(t, err)
	results, err := good.Verify()
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.OK(), r.Name)
	}

	bad, err := New(fstest.MapFS{
		ManifestName:          {Data: raw},
		"hiddenapi-flags.csv": {Data: []byte("flagz")},
	}, "bad")
	require.NoError(t, err)
	results, err = bad.Verify()
	assert.ErrorIs(t, err, ErrDigestMismatch)
	require.Len(t, results, 2)
	assert.False(t, results[0].OK())
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrNotFound)
}

func TestBundle_VerifyWithoutManifest(t *testing.T) {
	b, err := New(fstest.MapFS{"veridex": {Data: []byte("x")}}, "test")
	require.NoError(t, err)
	_, err = b.Verify()
	assert.ErrorIs(t, err, ErrNoManifest)
}

func TestNew_BadManifest(t *testing.T) {
	_, err := New(fstest.MapFS{
		ManifestName: {Data: []byte("assets:\n  - name: a\n  - name: a\n")},
	}, "test")
	assert.ErrorContains(t, err, "duplicate entry")
}

func TestCodecs_RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("Landroid/app/Activity;->getWindow()"), 100)
	for _, c := range []Codec{CodecNone, CodecZstd, CodecLZ4} {
		enc, err := Compress(data, c)
		require.NoError(t, err, c)
		dec, err := Decompress(enc, c)
		require.NoError(t, err, c)
		assert.Equal(t, data, dec, c)
	}
	_, err := ParseCodec("brotli")
	assert.Error(t, err)
	c, err := ParseCodec("ZST")
	require.NoError(t, err)
	assert.Equal(t, CodecZstd, c)
}

func TestOpen_Precedence(t *testing.T) {
	exeDir := t.TempDir()
	exe := filepath.Join(exeDir, "appcompat")
	require.NoError(t, os.WriteFile(exe, []byte("bin"), 0o755))

	// no sibling dir: embedded payload
	b, err := Open(SourceOptions{Executable: exe})
	require.NoError(t, err)
	assert.Equal(t, EmbeddedOrigin, b.Origin())

	sibling := filepath.Join(exeDir, SiblingDirName)
	require.NoError(t, os.Mkdir(sibling, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sibling, "veridex"), []byte("sibling"), 0o755))
	b, err = Open(SourceOptions{Executable: exe})
	require.NoError(t, err)
	got, err := b.ReadFile("veridex")
	require.NoError(t, err)
	assert.Equal(t, "sibling", string(got))

	explicit := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(explicit, "veridex"), []byte("explicit"), 0o755))
	b, err = Open(SourceOptions{Dir: explicit, Executable: exe})
	require.NoError(t, err)
	got, err = b.ReadFile("veridex")
	require.NoError(t, err)
	assert.Equal(t, "explicit", string(got))

	_, err = Open(SourceOptions{Dir: filepath.Join(explicit, "missing")})
	assert.Error(t, err)
}

func TestEmbedded_HasNoResourcesInDevBuilds(t *testing.T) {
	b, err := New(Embedded(), EmbeddedOrigin)
	require.NoError(t, err)
	_, err = b.ReadFile("README.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPack(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "veridex"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.Chmod(filepath.Join(src, "veridex"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "system-stubs.zip"), []byte("stubs"), 0o644))

	m, err := Pack(src, dst, CodecZstd, []string{"veridex", "system-stubs.zip"}, "test-build")
	require.NoError(t, err)
	require.Len(t, m.Assets, 2)

	st, err := os.Stat(filepath.Join(dst, "veridex.zst"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), st.Mode().Perm())

	b, err := Open(SourceOptions{Dir: dst})
	require.NoError(t, err)
	assert.Equal(t, "test-build", b.Manifest().Version)
	_, err = b.Verify()
	require.NoError(t, err)

	_, err = Pack(src, dst, CodecNone, []string{"missing"}, "")
	assert.Error(t, err)
}

func TestExtractTar(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	add := func(name string, mode int64, body string) {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: mode, Size: int64(len(body)), Typeflag: tar.TypeReg}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	add("opt/veridex/veridex", 0o755, "elf")
	add("opt/veridex/system-stubs.zip.zst", 0o644, "zst")
	add("opt/veridex/manifest.yml", 0o644, "assets: []\n")
	add("etc/passwd", 0o644, "root")
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "opt/veridex/", Typeflag: tar.TypeDir, Mode: 0o755}))
	require.NoError(t, tw.Close())

	dir := t.TempDir()
	written, err := extractTar(&buf, dir, []string{"veridex", "system-stubs.zip"})
	require.NoError(t, err)
	assert.Equal(t, []string{"manifest.yml", "system-stubs.zip.zst", "veridex"}, written)

	st, err := os.Stat(filepath.Join(dir, "veridex"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), st.Mode().Perm())
	assert.NoFileExists(t, filepath.Join(dir, "passwd"))
}
