package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

const goPageResponse = `{
	"query": {
		"redirects": [{"from": "Golang", "to": "Go"}],
		"pages": [{
			"pageid": 12,
			"ns": 0,
			"title": "Go",
			"revisions": [{
				"revid": 99,
				"parentid": 98,
				"timestamp": "2024-03-05T07:08:09Z",
				"slots": {"main": {"contentmodel": "wikitext", "content": "'''Go''' is {{Lang}}."}}
			}]
		}]
	}
}`

func TestGetPage_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "revisions", q.Get("prop"))
		assert.Equal(t, "Golang", q.Get("titles"))
		assert.Equal(t, "1", q.Get("redirects"))
		assert.Equal(t, "main", q.Get("rvslots"))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(goPageResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	page, err := client.GetPage(context.Background(), "Golang")
	require.NoError(t, err)

	assert.Equal(t, 12, page.PageID)
	assert.Equal(t, "Go", page.Title)
	assert.Equal(t, 99, page.RevID())
	assert.Equal(t, "'''Go''' is {{Lang}}.", page.Content())
	assert.Equal(t, 2024, page.Revisions[0].Timestamp.Year())

	assert.Equal(t, wikitext.Page{ID: "12", RevID: "99", Title: "Go", Text: "'''Go''' is {{Lang}}."}, page.WikitextPage())
}

func TestGetRawPage_DoesNotFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("redirects"))
		w.Write([]byte(goPageResponse))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).GetRawPage(context.Background(), "Go")
	require.NoError(t, err)
}

func TestGetPage_NotFound(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"missing", `{"query": {"pages": [{"ns": 0, "title": "Nope", "missing": true}]}}`},
		{"invalid", `{"query": {"pages": [{"title": "<>", "invalid": true}]}}`},
		{"no pages", `{"query": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.response))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).GetPage(context.Background(), "Nope")
			assert.ErrorIs(t, err, ErrPageNotFound)
		})
	}
}

func TestGetSiteInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "siteinfo", r.URL.Query().Get("meta"))
		w.Write([]byte(`{
			"query": {
				"general": {"sitename": "Wikipedia", "base": "https://de.wikipedia.org/wiki/Wikipedia:Hauptseite", "lang": "de"},
				"namespaces": {
					"0": {"id": 0, "name": ""},
					"10": {"id": 10, "name": "Vorlage", "canonical": "Template"},
					"828": {"id": 828, "name": "Modul", "canonical": "Module"}
				}
			}
		}`))
	}))
	defer server.Close()

	info, err := NewClient(server.URL).GetSiteInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Wikipedia", info.General.SiteName)

	opts := wikitext.DefaultOptions()
	info.Apply(opts)
	assert.Equal(t, "https://de.wikipedia.org/wiki", opts.URLBase)
	assert.Equal(t, "Vorlage:", opts.TemplatePrefix())
	assert.Equal(t, "Modul:", opts.ModulePrefix())
}

func TestGetSiteInfo_MissingGeneral(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query": {}}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).GetSiteInfo(context.Background())
	assert.Error(t, err)
}

// templateServer serves raw template pages and counts requests per title.
func templateServer(t *testing.T, pages map[string]string, requests *sync.Map) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title := r.URL.Query().Get("titles")
		n, _ := requests.LoadOrStore(title, new(atomic.Int32))
		n.(*atomic.Int32).Add(1)

		content, ok := pages[title]
		if !ok {
			w.Write([]byte(`{"query": {"pages": [{"title": "` + title + `", "missing": true}]}}`))
			return
		}
		w.Write([]byte(`{"query": {"pages": [{"pageid": 1, "title": "` + title + `", "revisions": [{"revid": 2, "slots": {"main": {"content": "` + content + `"}}}]}]}}`))
	}))
}

func TestRemoteRegistry_Expands(t *testing.T) {
	var requests sync.Map
	server := templateServer(t, map[string]string{
		"Template:Lang":  "a {{{1|programming}}} language",
		"Template:Alias": "#REDIRECT [[Template:Lang]]",
	}, &requests)
	defer server.Close()

	reg := NewRemoteRegistry(context.Background(), NewClient(server.URL))
	opts := wikitext.DefaultOptions().Prepare()

	x := wikitext.NewExtractor(wikitext.Page{ID: "1", Title: "Go"}, opts, reg)
	assert.Equal(t, "a programming language, a systems language, ", x.Expand("{{Lang}}, {{Alias|systems}}, {{Nope}}"))
	assert.True(t, x.Diagnostics().Has(wikitext.ErrTemplateNotFound))

	n, ok := requests.Load("Template:Lang")
	require.True(t, ok)
	assert.Equal(t, int32(1), n.(*atomic.Int32).Load())
	assert.Equal(t, 3, reg.Fetched())
}

func TestRemoteRegistry_ConcurrentLookupsShareFetch(t *testing.T) {
	var requests sync.Map
	server := templateServer(t, map[string]string{"Template:T": "x"}, &requests)
	defer server.Close()

	reg := NewRemoteRegistry(context.Background(), NewClient(server.URL))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tpl, ok := reg.Template("Template:T", func(src string) *wikitext.Template {
				return wikitext.PlaceholderCompiler{}.Compile(src)
			})
			assert.True(t, ok)
			assert.NotNil(t, tpl)
		}()
	}
	wg.Wait()

	n, ok := requests.Load("Template:T")
	require.True(t, ok)
	assert.Equal(t, int32(1), n.(*atomic.Int32).Load())
}
