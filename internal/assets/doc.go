// Package assets resolves the resources appcompat ships with: the veridex
// binary, the hidden-API flags file and the two stub archives.
//
// A Bundle reads resources from an fs.FS. The FS is either the payload
// embedded at build time, an appcompat-assets directory next to the
// executable, or a directory named explicitly by configuration. Blobs may be
// stored compressed (zstd or lz4); ReadFile returns the decoded bytes.
//
// An optional manifest.yml records the BLAKE3 digest of every resource so a
// bundle can be verified before it is trusted.
package assets
