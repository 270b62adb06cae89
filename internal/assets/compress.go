package assets

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies how a blob is stored in a bundle. The codec is encoded
// in the file extension, so a resource named "veridex" may be stored as
// "veridex", "veridex.zst" or "veridex.lz4".
type Codec string

const (
	CodecNone Codec = "none"
	CodecZstd Codec = "zstd"
	CodecLZ4  Codec = "lz4"
)

// codecs lists the compressed codecs in lookup order.
var codecs = []Codec{CodecZstd, CodecLZ4}

// Ext returns the file extension for the codec, including the dot.
func (c Codec) Ext() string {
	switch c {
	case CodecZstd:
		return ".zst"
	case CodecLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// ParseCodec parses a codec name as used on the command line.
func ParseCodec(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CodecNone, nil
	case "zstd", "zst":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	default:
		return "", fmt.Errorf("unknown compression codec: %q", name)
	}
}

// splitCodec returns the logical resource name and codec for a stored
// file name.
func splitCodec(stored string) (string, Codec) {
	for _, c := range codecs {
		if strings.HasSuffix(stored, c.Ext()) {
			return strings.TrimSuffix(stored, c.Ext()), c
		}
	}
	return stored, CodecNone
}

// zstd encoder and decoder are safe for concurrent use and reused across
// calls.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		panic("assets: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("assets: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress encodes data with the codec. CodecNone returns data unchanged.
func Compress(data []byte, c Codec) ([]byte, error) {
	switch c {
	case CodecNone:
		return data, nil
	case CodecZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	case CodecLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported codec: %q", c)
	}
}

// Decompress decodes data stored with the codec.
func Decompress(data []byte, c Codec) ([]byte, error) {
	switch c {
	case CodecNone:
		return data, nil
	case CodecZstd:
		out, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return out, nil
	case CodecLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported codec: %q", c)
	}
}
