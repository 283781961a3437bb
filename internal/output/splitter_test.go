package output

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "AA/wiki_00"},
		{7, "AA/wiki_07"},
		{99, "AA/wiki_99"},
		{100, "AB/wiki_00"},
		{2600, "BA/wiki_00"},
		{2799, "BB/wiki_99"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, filepath.Join("out", filepath.FromSlash(tt.want)), FileName("out", tt.n))
		})
	}
}

func TestSplitter_Rotates(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSplitter(dir, 10, false)
	require.NoError(t, err)

	for _, rec := range []string{"aaaa\n", "bbbb\n", "cccc\n", "0123456789ABC\n"} {
		require.NoError(t, s.WriteRecord([]byte(rec)))
	}
	require.NoError(t, s.Close())

	assert.Equal(t, 3, s.Files())
	assert.Equal(t, int64(29), s.BytesWritten())

	read := func(n int) string {
		b, err := os.ReadFile(FileName(dir, n))
		require.NoError(t, err)
		return string(b)
	}
	assert.Equal(t, "aaaa\nbbbb\n", read(0))
	assert.Equal(t, "cccc\n", read(1))
	// an oversized record gets a file of its own
	assert.Equal(t, "0123456789ABC\n", read(2))
}

func TestSplitter_NoLimit(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSplitter(dir, 0, false)
	require.NoError(t, err)
	for range 100 {
		require.NoError(t, s.WriteRecord([]byte("record\n")))
	}
	require.NoError(t, s.Close())
	assert.Equal(t, 1, s.Files())
}

func TestSplitter_Compressed(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSplitter(dir, 0, true)
	require.NoError(t, err)
	require.NoError(t, s.WriteRecord([]byte("hello\n")))
	require.NoError(t, s.Close())

	f, err := os.Open(FileName(dir, 0) + ".gz")
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	b, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(b))
}

func TestDocumentWriter_Stdout(t *testing.T) {
	var buf bytes.Buffer
	w := NewDocumentWriter(FormatJSON, NewStdoutSplitter(&buf))
	require.NoError(t, w.Write(&wikitext.Document{ID: "1", Title: "A", Text: "x"}))
	require.NoError(t, w.Write(&wikitext.Document{ID: "2", Title: "B", Text: "y"}))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"id":"1"`)
	assert.Contains(t, lines[1], `"id":"2"`)
}
