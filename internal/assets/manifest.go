package assets

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// ManifestName is the file name of the manifest inside a bundle.
const ManifestName = "manifest.yml"

// Manifest describes the resources of a bundle.
type Manifest struct {
	// Version is a free-form label for the veridex build, e.g. the
	// platform build ID the stubs were generated from.
	Version string          `yaml:"version,omitempty"`
	Assets  []ManifestEntry `yaml:"assets"`
}

// ManifestEntry records one resource. Size and BLAKE3 describe the decoded
// bytes, not the stored blob.
type ManifestEntry struct {
	Name        string `yaml:"name"`
	Size        int64  `yaml:"size"`
	BLAKE3      string `yaml:"blake3"`
	Compression Codec  `yaml:"compression,omitempty"`
}

// ParseManifest decodes a YAML manifest.
func ParseManifest(b []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestName, err)
	}
	seen := make(map[string]bool, len(m.Assets))
	for _, e := range m.Assets {
		if e.Name == "" {
			return nil, fmt.Errorf("parsing %s: entry without name", ManifestName)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("parsing %s: duplicate entry %q", ManifestName, e.Name)
		}
		seen[e.Name] = true
	}
	return &m, nil
}

// Marshal encodes the manifest with entries sorted by name.
func (m *Manifest) Marshal() ([]byte, error) {
	sorted := *m
	sorted.Assets = append([]ManifestEntry(nil), m.Assets...)
	sort.Slice(sorted.Assets, func(i, j int) bool { return sorted.Assets[i].Name < sorted.Assets[j].Name })
	return yaml.Marshal(&sorted)
}

// Lookup returns the entry for a resource name.
func (m *Manifest) Lookup(name string) (ManifestEntry, bool) {
	if m == nil {
		return ManifestEntry{}, false
	}
	for _, e := range m.Assets {
		if e.Name == name {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

// Digest returns the hex-encoded BLAKE3-256 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
