// splitter.go implements size-bounded output file rotation.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"
)

// filesPerDir is the number of wiki_NN files in one directory.
const filesPerDir = 100

// FileName returns the path of the n-th output file below dir: AA/wiki_00
// through AA/wiki_99, then AB/wiki_00 and so on.
func FileName(dir string, n int) string {
	d := n / filesPerDir
	sub := string([]byte{byte('A' + d/26%26), byte('A' + d%26)})
	return filepath.Join(dir, sub, fmt.Sprintf("wiki_%02d", n%filesPerDir))
}

// Splitter writes records to a sequence of files, starting a new one when
// the next record would push the current file past MaxBytes. Records are
// never split. Sizes count uncompressed bytes.
type Splitter struct {
	dir      string
	maxBytes int64
	compress bool

	n       int
	size    int64
	file    *os.File
	zw      *gzip.Writer
	w       *bufio.Writer
	stdout  io.Writer
	written int64
}

// NewSplitter creates a splitter below dir. maxBytes <= 0 disables
// rotation. With compress set, files are gzipped and get a .gz suffix.
func NewSplitter(dir string, maxBytes int64, compress bool) (*Splitter, error) {
	s := &Splitter{dir: dir, maxBytes: maxBytes, compress: compress}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStdoutSplitter writes all records to w without rotation.
func NewStdoutSplitter(w io.Writer) *Splitter {
	return &Splitter{stdout: w, w: bufio.NewWriter(w)}
}

func (s *Splitter) open() error {
	name := FileName(s.dir, s.n)
	if s.compress {
		name += ".gz"
	}
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	log.Debug("opened output file", "path", name)
	s.file = f
	s.size = 0
	if s.compress {
		s.zw = gzip.NewWriter(f)
		s.w = bufio.NewWriter(s.zw)
	} else {
		s.w = bufio.NewWriter(f)
	}
	return nil
}

func (s *Splitter) closeFile() error {
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if s.file == nil {
		return nil
	}
	if s.zw != nil {
		if err := s.zw.Close(); err != nil {
			return fmt.Errorf("failed to finish compressed output: %w", err)
		}
		s.zw = nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// WriteRecord writes one record, rotating first when needed.
func (s *Splitter) WriteRecord(b []byte) error {
	if s.file != nil && s.maxBytes > 0 && s.size > 0 && s.size+int64(len(b)) > s.maxBytes {
		if err := s.closeFile(); err != nil {
			return err
		}
		s.n++
		if err := s.open(); err != nil {
			return err
		}
	}
	n, err := s.w.Write(b)
	s.size += int64(n)
	s.written += int64(n)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Files returns the number of files opened so far.
func (s *Splitter) Files() int {
	if s.stdout != nil {
		return 0
	}
	return s.n + 1
}

// BytesWritten is the total uncompressed size of all records.
func (s *Splitter) BytesWritten() int64 {
	return s.written
}

// Close flushes and closes the current file.
func (s *Splitter) Close() error {
	return s.closeFile()
}
