package assets

import (
	"fmt"
	"os"
	"path/filepath"
)

// Pack copies the named resources from srcDir into dstDir, encoding each
// with codec, and writes a manifest describing them. Modes are preserved so
// a packed directory can be used directly as an assets directory.
func Pack(srcDir, dstDir string, codec Codec, names []string, version string) (*Manifest, error) {
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dstDir, err)
	}
	m := &Manifest{Version: version}
	for _, name := range names {
		src := filepath.Join(srcDir, name)
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", src, err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("%w: %s is empty", ErrNotFound, src)
		}
		st, err := os.Stat(src)
		if err != nil {
			return nil, err
		}
		stored, err := Compress(data, codec)
		if err != nil {
			return nil, fmt.Errorf("compressing %s: %w", name, err)
		}
		dst := filepath.Join(dstDir, name+codec.Ext())
		if err := os.WriteFile(dst, stored, st.Mode().Perm()); err != nil {
			return nil, fmt.Errorf("writing %s: %w", dst, err)
		}
		if err := os.Chmod(dst, st.Mode().Perm()); err != nil {
			return nil, err
		}
		entry := ManifestEntry{Name: name, Size: int64(len(data)), BLAKE3: Digest(data)}
		if codec != CodecNone {
			entry.Compression = codec
		}
		m.Assets = append(m.Assets, entry)
	}
	b, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dstDir, ManifestName), b, 0o644); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}
	return m, nil
}
