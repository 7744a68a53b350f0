package db

import (
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

const (
	extGZ   = ".gz"
	extBZ2  = ".bz2"
	extXZ   = ".xz"
	extZSTD = ".zst"
)

var compressionExtensions = []string{extGZ, extBZ2, extXZ, extZSTD}

// trimCompressionExtension strips a known compression suffix from path.
func trimCompressionExtension(path string) (string, string) {
	lower := strings.ToLower(path)
	for _, ext := range compressionExtensions {
		if strings.HasSuffix(lower, ext) {
			return path[:len(path)-len(ext)], ext
		}
	}
	return path, ""
}

// openDecompressed opens path and wraps it in a decompressing reader chosen
// by its suffix. The returned cleanup closes everything that was opened.
func openDecompressed(path string) (io.Reader, func() error, error) {
	file, err := os.Open(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, nil, fmt.Errorf("open %q: %w", path, err)
	}

	_, ext := trimCompressionExtension(path)

	var reader io.Reader
	closeReader := func() error { return nil }

	switch ext {
	case extGZ:
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, nil, fmt.Errorf("create gzip reader: %w", err)
		}
		reader, closeReader = gzReader, gzReader.Close
	case extBZ2:
		reader = bzip2.NewReader(file)
	case extXZ:
		xzReader, err := xz.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, nil, fmt.Errorf("create xz reader: %w", err)
		}
		reader = xzReader
	case extZSTD:
		decoder, err := zstd.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, nil, fmt.Errorf("create zstd reader: %w", err)
		}
		reader = decoder
		closeReader = func() error {
			decoder.Close()
			return nil
		}
	default:
		reader = file
	}

	cleanup := func() error {
		closeErr := closeReader()
		if err := file.Close(); err != nil && closeErr == nil {
			closeErr = err
		}
		return closeErr
	}
	return reader, cleanup, nil
}
