package configcmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/wiki-extractor/internal/config"
)

func TestRunShow_WithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg := &config.Config{
		OutputDir:          "text",
		OutputFormat:       "doc",
		Bytes:              "5M",
		Processes:          4,
		KeepLinks:          true,
		AcceptedNamespaces: []string{"w", "wikt"},
		APIURL:             "https://en.wikipedia.org/w/api.php",
	}
	require.NoError(t, cfg.Save(filepath.Join(tmpDir, "wikx", "config.yml")))

	t.Setenv("WIKX_BYTES", "10M")

	err := runShow(true)
	require.NoError(t, err)
}

func TestRunShow_NoConfigFile(t *testing.T) {
	for _, v := range envKeys {
		t.Setenv(v.name, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	err := runShow(true)
	require.NoError(t, err)
}
