package extract

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/wiki-extractor/internal/config"
	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

const testDump = `<mediawiki>
  <siteinfo>
    <sitename>Wikipedia</sitename>
    <base>https://en.wikipedia.org/wiki/Main_Page</base>
    <namespaces>
      <namespace key="0" />
      <namespace key="1">Talk</namespace>
      <namespace key="10">Template</namespace>
    </namespaces>
  </siteinfo>
  <page>
    <title>Go</title>
    <ns>0</ns>
    <id>1</id>
    <revision><id>11</id><text>'''Go''' is a {{Lang|compiled}} language.</text></revision>
  </page>
  <page>
    <title>Golang</title>
    <ns>0</ns>
    <id>2</id>
    <redirect title="Go" />
    <revision><id>12</id><text>#REDIRECT [[Go]]</text></revision>
  </page>
  <page>
    <title>Template:Lang</title>
    <ns>10</ns>
    <id>3</id>
    <revision><id>13</id><text>{{{1}}}&lt;noinclude&gt;usage&lt;/noinclude&gt;</text></revision>
  </page>
  <page>
    <title>Talk:Go</title>
    <ns>1</ns>
    <id>4</id>
    <revision><id>14</id><text>Chat about Go.</text></revision>
  </page>
</mediawiki>`

const articleOnlyDump = `<mediawiki>
  <siteinfo>
    <base>https://en.wikipedia.org/wiki/Main_Page</base>
  </siteinfo>
  <page>
    <title>Go</title>
    <ns>0</ns>
    <id>1</id>
    <revision><id>11</id><text>'''Go''' is a {{Lang|compiled}} language.</text></revision>
  </page>
</mediawiki>`

func writeDump(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testOptions() (*extractOptions, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &extractOptions{summary: "plain", noColor: true, stdout: &stdout, stderr: &stderr}, &stdout, &stderr
}

func decodeDocs(t *testing.T, b []byte) []wikitext.Document {
	t.Helper()
	var docs []wikitext.Document
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		var doc wikitext.Document
		require.NoError(t, json.Unmarshal(sc.Bytes(), &doc))
		docs = append(docs, doc)
	}
	return docs
}

func TestRunExtract_Stdout(t *testing.T) {
	opts, stdout, stderr := testOptions()
	cfg := &config.Config{OutputDir: "-", Processes: 2}

	err := runExtract(context.Background(), writeDump(t, testDump), cfg, opts)
	require.NoError(t, err)

	docs := decodeDocs(t, stdout.Bytes())
	require.Len(t, docs, 1)
	assert.Equal(t, "1", docs[0].ID)
	assert.Equal(t, "Go", docs[0].Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki?curid=1", docs[0].URL)
	assert.Empty(t, docs[0].RevID)
	assert.Contains(t, docs[0].Text, "Go is a compiled language.")

	summary := stderr.String()
	assert.Contains(t, summary, "Pages\t1")
	assert.Contains(t, summary, "Emitted\t1")
	assert.Contains(t, summary, "Templates\t1")
}

func TestRunExtract_AllNamespaces(t *testing.T) {
	opts, stdout, _ := testOptions()
	opts.allNamespaces = true
	cfg := &config.Config{OutputDir: "-", PrintRevision: true}

	err := runExtract(context.Background(), writeDump(t, testDump), cfg, opts)
	require.NoError(t, err)

	docs := decodeDocs(t, stdout.Bytes())
	require.Len(t, docs, 2)
	assert.Equal(t, "Go", docs[0].Title)
	assert.Equal(t, "11", docs[0].RevID)
	assert.Equal(t, "Talk:Go", docs[1].Title)
	assert.Contains(t, docs[1].Text, "Chat about Go.")
}

func TestRunExtract_MinTextLength(t *testing.T) {
	opts, stdout, stderr := testOptions()
	cfg := &config.Config{OutputDir: "-", MinTextLength: 1000}

	err := runExtract(context.Background(), writeDump(t, testDump), cfg, opts)
	require.NoError(t, err)

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Filtered\t1")
}

func TestRunExtract_TemplatesFile(t *testing.T) {
	templates := filepath.Join(t.TempDir(), "templates.xml")

	// first run saves the templates
	opts, _, _ := testOptions()
	cfg := &config.Config{OutputDir: "-", Templates: templates}
	require.NoError(t, runExtract(context.Background(), writeDump(t, testDump), cfg, opts))

	saved, err := os.ReadFile(templates)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "<title>Template:Lang</title>")
	assert.NotContains(t, string(saved), "Talk:Go")

	// second run loads them for a dump without template pages
	opts, stdout, _ := testOptions()
	require.NoError(t, runExtract(context.Background(), writeDump(t, articleOnlyDump), cfg, opts))

	docs := decodeDocs(t, stdout.Bytes())
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Text, "Go is a compiled language.")
}

func TestRunExtract_Files(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "text")
	opts, stdout, stderr := testOptions()
	cfg := &config.Config{OutputDir: dir, OutputFormat: "doc"}

	err := runExtract(context.Background(), writeDump(t, testDump), cfg, opts)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	content, err := os.ReadFile(filepath.Join(dir, "AA", "wiki_00"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), `<doc id="1" url="https://en.wikipedia.org/wiki?curid=1" title="Go">`))
	assert.Contains(t, stderr.String(), "in 1 file(s)")
}

func TestRunExtract_MissingDump(t *testing.T) {
	opts, _, _ := testOptions()
	err := runExtract(context.Background(), filepath.Join(t.TempDir(), "missing.xml"), &config.Config{OutputDir: "-"}, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open dump")
}

func TestRunExtract_InvalidSummary(t *testing.T) {
	opts, _, _ := testOptions()
	opts.summary = "xml"
	err := runExtract(context.Background(), writeDump(t, testDump), &config.Config{OutputDir: "-"}, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestRunExtract_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts, _, _ := testOptions()
	err := runExtract(ctx, writeDump(t, testDump), &config.Config{OutputDir: "-"}, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extraction interrupted")
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]string
		check   func(t *testing.T, cfg *config.Config)
		wantErr string
	}{
		{
			name: "defaults keep config values",
			args: map[string]string{},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "out", cfg.OutputDir)
				assert.Equal(t, "doc", cfg.OutputFormat)
				assert.Nil(t, cfg.ExpandTemplates)
			},
		},
		{
			name: "flags override config",
			args: map[string]string{
				"output":       "-",
				"format":       "markdown",
				"bytes":        "5M",
				"no-templates": "true",
				"links":        "true",
				"namespaces":   "w,Category",
			},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "-", cfg.OutputDir)
				assert.Equal(t, "markdown", cfg.OutputFormat)
				assert.Equal(t, "5M", cfg.Bytes)
				require.NotNil(t, cfg.ExpandTemplates)
				assert.False(t, *cfg.ExpandTemplates)
				assert.True(t, cfg.KeepLinks)
				assert.Equal(t, []string{"w", "Category"}, cfg.AcceptedNamespaces)
			},
		},
		{
			name:    "invalid format",
			args:    map[string]string{"format": "xml"},
			wantErr: "invalid output format",
		},
		{
			name:    "invalid bytes",
			args:    map[string]string{"bytes": "huge"},
			wantErr: "invalid bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewCmdExtract()
			for name, value := range tt.args {
				require.NoError(t, cmd.Flags().Set(name, value))
			}
			cfg := &config.Config{OutputDir: "out", OutputFormat: "doc"}

			err := applyFlags(cmd.Flags(), cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestNewCmdExtract_Completions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"dump argument", []string{"extract", ""}, []string{"xml", "bz2", "gz", ":8"}},
		{"format", []string{"extract", "--format", ""}, []string{"json", "doc", "markdown", ":4"}},
		{"summary", []string{"extract", "--summary", ""}, []string{"table", "json", "plain", ":4"}},
		{"templates", []string{"extract", "--templates", ""}, []string{"xml", "gz", ":8"}},
		{"namespaces", []string{"extract", "--namespaces", "w,"}, []string{"w,wiktionary", "w,wikt", ":6"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := &cobra.Command{Use: "wikx"}
			root.AddCommand(NewCmdExtract())

			var out bytes.Buffer
			root.SetOut(&out)
			root.SetErr(&bytes.Buffer{})
			root.SetArgs(append([]string{cobra.ShellCompRequestCmd}, tt.args...))
			require.NoError(t, root.Execute())

			assert.Equal(t, tt.want, strings.Split(strings.TrimSpace(out.String()), "\n"))
		})
	}
}
