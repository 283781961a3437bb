package page

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/wiki-extractor/api"
	"github.com/open-cli-collective/wiki-extractor/internal/config"
	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

const siteInfoResponse = `{
	"query": {
		"general": {"sitename": "Wikipedia", "base": "https://en.wikipedia.org/wiki/Main_Page"},
		"namespaces": {"10": {"id": 10, "name": "Template"}}
	}
}`

// wikiServer serves siteinfo and the given pages. Page ids follow the order
// of titles.
type wikiServer struct {
	*httptest.Server
	siteinfo atomic.Int32
}

func newWikiServer(t *testing.T, titles []string, pages map[string]string) *wikiServer {
	t.Helper()
	ws := &wikiServer{}
	ws.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("meta") == "siteinfo" {
			ws.siteinfo.Add(1)
			w.Write([]byte(siteInfoResponse))
			return
		}

		title := q.Get("titles")
		content, ok := pages[title]
		if !ok {
			w.Write([]byte(`{"query": {"pages": [{"title": "` + title + `", "missing": true}]}}`))
			return
		}
		id := 100
		for i, name := range titles {
			if name == title {
				id = i + 1
			}
		}
		resp := map[string]any{
			"query": map[string]any{
				"pages": []map[string]any{{
					"pageid": id,
					"title":  title,
					"revisions": []map[string]any{{
						"revid": id * 10,
						"slots": map[string]any{"main": map[string]string{"content": content}},
					}},
				}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(ws.Close)
	return ws
}

var testPages = map[string]string{
	"Go":            "'''Go''' is a {{Lang|compiled}} language.",
	"Rust":          "'''Rust''' is a systems language.",
	"Template:Lang": "{{{1}}}",
}

func decodeDocs(t *testing.T, out string) []wikitext.Document {
	t.Helper()
	var docs []wikitext.Document
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var doc wikitext.Document
		require.NoError(t, json.Unmarshal([]byte(line), &doc))
		docs = append(docs, doc)
	}
	return docs
}

func TestRunPages_Success(t *testing.T) {
	titles := []string{"Go", "Rust"}
	server := newWikiServer(t, titles, testPages)

	var buf bytes.Buffer
	cfg := &config.Config{OutputFormat: "json"}
	err := runPages(context.Background(), titles, &pageOptions{}, cfg, api.NewClient(server.URL), &buf)
	require.NoError(t, err)

	docs := decodeDocs(t, buf.String())
	require.Len(t, docs, 2)

	assert.Equal(t, "1", docs[0].ID)
	assert.Equal(t, "Go", docs[0].Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki?curid=1", docs[0].URL)
	assert.Contains(t, docs[0].Text, "Go is a compiled language.")

	assert.Equal(t, "Rust", docs[1].Title)
	assert.Contains(t, docs[1].Text, "Rust is a systems language.")
	assert.Equal(t, int32(1), server.siteinfo.Load())
}

func TestRunPages_KeepsArgumentOrder(t *testing.T) {
	titles := []string{"Rust", "Go", "Rust", "Go", "Rust", "Go"}
	server := newWikiServer(t, titles, testPages)

	var buf bytes.Buffer
	err := runPages(context.Background(), titles, &pageOptions{}, &config.Config{}, api.NewClient(server.URL), &buf)
	require.NoError(t, err)

	docs := decodeDocs(t, buf.String())
	require.Len(t, docs, len(titles))
	for i, doc := range docs {
		assert.Equal(t, titles[i], doc.Title)
	}
}

func TestRunPages_MissingPage(t *testing.T) {
	titles := []string{"Go", "Nope"}
	server := newWikiServer(t, titles, testPages)

	var buf bytes.Buffer
	err := runPages(context.Background(), titles, &pageOptions{}, &config.Config{}, api.NewClient(server.URL), &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to extract 1 page(s): Nope")

	docs := decodeDocs(t, buf.String())
	require.Len(t, docs, 1)
	assert.Equal(t, "Go", docs[0].Title)
}

func TestRunPages_Raw(t *testing.T) {
	server := newWikiServer(t, []string{"Go"}, testPages)

	var buf bytes.Buffer
	err := runPages(context.Background(), []string{"Go"}, &pageOptions{raw: true}, &config.Config{}, api.NewClient(server.URL), &buf)
	require.NoError(t, err)

	assert.Equal(t, "'''Go''' is a {{Lang|compiled}} language.\n", buf.String())
	assert.Equal(t, int32(0), server.siteinfo.Load())
}

func TestRunPages_DocFormat(t *testing.T) {
	server := newWikiServer(t, []string{"Go"}, testPages)

	var buf bytes.Buffer
	cfg := &config.Config{OutputFormat: "doc", PrintRevision: true}
	err := runPages(context.Background(), []string{"Go"}, &pageOptions{}, cfg, api.NewClient(server.URL), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<doc id="1" revid="10" url="https://en.wikipedia.org/wiki?curid=1" title="Go">`))
	assert.True(t, strings.HasSuffix(out, "</doc>\n"))
}

func TestRunPages_SiteInfoError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	err := runPages(context.Background(), []string{"Go"}, &pageOptions{}, &config.Config{}, api.NewClient(server.URL), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get site info")
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	article := filepath.Join(dir, "Hello.wiki")
	require.NoError(t, os.WriteFile(article, []byte("'''Hello''' world, {{Greeting}}."), 0600))

	templates := filepath.Join(dir, "templates.xml")
	require.NoError(t, os.WriteFile(templates, []byte(`<page>
   <title>Template:Greeting</title>
   <ns>10</ns>
   <id>5</id>
   <text>
from a template
   </text>
</page>
`), 0600))

	tests := []struct {
		name     string
		opts     pageOptions
		cfg      config.Config
		contains string
		title    string
	}{
		{
			name:     "expands from templates file",
			opts:     pageOptions{file: article},
			cfg:      config.Config{OutputFormat: "json", Templates: templates},
			contains: "Hello world, from a template.",
			title:    "Hello",
		},
		{
			name:     "explicit title",
			opts:     pageOptions{file: article, title: "Greeting page"},
			cfg:      config.Config{OutputFormat: "json"},
			contains: "Hello world",
			title:    "Greeting page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, runFile(&tt.opts, &tt.cfg, &buf))

			docs := decodeDocs(t, buf.String())
			require.Len(t, docs, 1)
			assert.Equal(t, tt.title, docs[0].Title)
			assert.Contains(t, docs[0].Text, tt.contains)
		})
	}
}

func TestRunFile_Raw(t *testing.T) {
	article := filepath.Join(t.TempDir(), "a.wiki")
	require.NoError(t, os.WriteFile(article, []byte("{{raw}}"), 0600))

	var buf bytes.Buffer
	require.NoError(t, runFile(&pageOptions{file: article, raw: true}, &config.Config{}, &buf))
	assert.Equal(t, "{{raw}}", buf.String())
}

func TestRunFile_Missing(t *testing.T) {
	err := runFile(&pageOptions{file: filepath.Join(t.TempDir(), "missing.wiki")}, &config.Config{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read page file")
}

func TestNewCmdPage_RequiresTitle(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("WIKX_API_URL", "")
	t.Setenv("MEDIAWIKI_API_URL", "")

	cmd := NewCmdPage()
	cmd.Flags().String("config", "", "")
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a page title or --file is required")
}

func TestNewCmdPage_Completions(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("WIKX_API_URL", "")
	t.Setenv("MEDIAWIKI_API_URL", "")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Go", r.URL.Query().Get("pssearch"))
		w.Write([]byte(`{"query": {"prefixsearch": [{"ns": 0, "title": "Go"}, {"ns": 0, "title": "Go (game)"}]}}`))
	}))
	defer server.Close()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"titles", []string{"page", "--api-url", server.URL, "Go"}, []string{"Go", "Go (game)", ":4"}},
		{"format", []string{"page", "--format", ""}, []string{"json", "doc", "markdown", ":4"}},
		{"file", []string{"page", "--file", ""}, []string{"wiki", "txt", ":8"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := &cobra.Command{Use: "wikx"}
			root.AddCommand(NewCmdPage())

			var out bytes.Buffer
			root.SetOut(&out)
			root.SetErr(&bytes.Buffer{})
			root.SetArgs(append([]string{cobra.ShellCompRequestCmd}, tt.args...))
			require.NoError(t, root.Execute())

			assert.Equal(t, tt.want, strings.Split(strings.TrimSpace(out.String()), "\n"))
		})
	}
}
