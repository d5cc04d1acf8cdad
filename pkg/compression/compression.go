package compression

import (
	"bytes"
	"compress/gzip"
	"io"
)

// Threshold is the payload size from which data gets compressed
const Threshold = 1024 // 1KB

var gzipMagic = []byte{0x1f, 0x8b}

// Compress gzips data at or above Threshold and returns smaller data unchanged
func Compress(data []byte) ([]byte, error) {
	if len(data) < Threshold {
		return data, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IsCompressed reports whether data carries a gzip header
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// Decompress reverses Compress. Uncompressed data is returned as is.
func Decompress(data []byte) ([]byte, error) {
	if !IsCompressed(data) {
		return data, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return io.ReadAll(zr)
}
