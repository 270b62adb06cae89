package assets

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/mutate"
	"github.com/google/go-containerregistry/pkg/v1/remote"
)

// Pull fetches an OCI image and copies the wanted resources found anywhere
// in its flattened filesystem into dir. A manifest.yml in the image is
// copied as well. The stored file names are returned, sorted.
func Pull(ctx context.Context, ref string, dir string, wanted []string) ([]string, error) {
	r, err := name.ParseReference(ref)
	if err != nil {
		return nil, fmt.Errorf("parsing image reference %q: %w", ref, err)
	}
	img, err := remote.Image(r,
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(authn.DefaultKeychain),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", r, err)
	}
	rc := mutate.Extract(img)
	defer rc.Close()
	return extractTar(rc, dir, wanted)
}

// extractTar copies regular files whose base name is a wanted resource
// (optionally with a codec extension) or the manifest into dir. Later
// layers win because mutate.Extract already flattened them.
func extractTar(r io.Reader, dir string, wanted []string) ([]string, error) {
	want := make(map[string]bool, len(wanted)+1)
	for _, w := range wanted {
		want[w] = true
	}
	want[ManifestName] = true

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	var written []string
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading image filesystem: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		base := path.Base(hdr.Name)
		logical, _ := splitCodec(base)
		if !want[logical] && !want[base] {
			continue
		}
		dst := filepath.Join(dir, base)
		if err := writeFrom(tr, dst, hdr.FileInfo().Mode().Perm()); err != nil {
			return nil, err
		}
		written = append(written, base)
	}
	sort.Strings(written)
	return written, nil
}

func writeFrom(r io.Reader, dst string, mode os.FileMode) error {
	if mode == 0 {
		mode = 0o644
	}
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, mode)
}
