package wikitext

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegistry_Define(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{"plain", "Hello", "Hello"},
		{"comment removed", "a<!-- note -->b", "ab"},
		{"noinclude removed", "a<noinclude>[[Category:T]]</noinclude>b", "ab"},
		{"unterminated noinclude", "body<noinclude>docs", "body"},
		{"noinclude marker", "a<noinclude/>b", "ab"},
		{"includeonly unwrapped", "<includeonly>shown</includeonly>", "shown"},
		{"onlyinclude wins", "x<onlyinclude>a</onlyinclude>y<onlyinclude>b</onlyinclude>z", "ab"},
		{"entities kept", "&lt;b&gt;", "&lt;b&gt;"},
		{"escaped entity not decoded twice", "a &amp;lt; b", "a &amp;lt; b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewMemoryRegistry()
			r.Define("Template:T", tt.page)
			got, ok := r.RawSource("Template:T")
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemoryRegistry_DefineSkipsEmpty(t *testing.T) {
	r := NewMemoryRegistry()
	r.Define("Template:Empty", "")
	r.Define("Template:Docs", "<noinclude>only docs</noinclude>")
	assert.Equal(t, 0, r.Len())
}

func TestMemoryRegistry_Redirect(t *testing.T) {
	r := NewMemoryRegistry()
	r.Define("Template:Old", "#REDIRECT [[Template:New]]\n{{R from move}}")
	r.Define("Template:Lower", "#redirect[[Template:New]]")

	target, ok := r.RedirectTarget("Template:Old")
	require.True(t, ok)
	assert.Equal(t, "Template:New", target)
	_, ok = r.RedirectTarget("Template:Lower")
	assert.True(t, ok)

	assert.Equal(t, 2, r.Redirects())
	assert.Equal(t, 0, r.Len())
}

func TestMemoryRegistry_TemplateCompilesOnce(t *testing.T) {
	r := NewMemoryRegistry()
	r.Define("Template:T", "x{{{1}}}")

	var calls atomic.Int32
	compile := func(src string) *Template {
		calls.Add(1)
		return compileTemplate(src)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tpl, ok := r.Template("Template:T", compile)
			assert.True(t, ok)
			assert.NotNil(t, tpl)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	_, ok := r.RawSource("Template:T")
	assert.False(t, ok, "raw source is discarded once compiled")
	_, ok = r.Compiled("Template:T")
	assert.True(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestMemoryRegistry_TemplateMissing(t *testing.T) {
	r := NewMemoryRegistry()
	_, ok := r.Template("Template:None", compileTemplate)
	assert.False(t, ok)
}

func TestMemoryRegistry_SetRawInvalidatesCompiled(t *testing.T) {
	r := NewMemoryRegistry()
	r.InsertCompiled("Template:T", compileTemplate("old"))
	r.SetRaw("Template:T", "new")

	_, ok := r.Compiled("Template:T")
	assert.False(t, ok)
	tpl, ok := r.Template("Template:T", compileTemplate)
	require.True(t, ok)
	assert.Equal(t, "new", tpl.String())
}
