// open.go opens plain, gzip and bzip2 compressed dump files.
package dump

import (
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

type readCloser struct {
	io.Reader
	close func() error
}

func (rc readCloser) Close() error { return rc.close() }

// Open opens a dump by path. "-" reads standard input. The compression is
// chosen by file extension: .bz2 or .gz.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump: %w", err)
	}

	switch {
	case strings.HasSuffix(path, ".bz2"):
		return readCloser{Reader: bzip2.NewReader(f), close: f.Close}, nil

	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to open gzip dump: %w", err)
		}
		return readCloser{Reader: zr, close: func() error {
			_ = zr.Close()
			return f.Close()
		}}, nil
	}
	return f, nil
}
