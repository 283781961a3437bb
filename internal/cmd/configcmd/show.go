package configcmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wiki-extractor/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the current wikx configuration with value source indicators.`,
		Example: `  # Show current config
  wikx config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runShow(noColor)
		},
	}

	return cmd
}

func runShow(noColor bool) error {
	if noColor {
		color.NoColor = true
	}

	configPath := config.DefaultConfigPath()

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(configPath)
	if fileErr != nil {
		fileCfg = &config.Config{}
	}

	// Load full config with env overrides
	cfg, _ := config.LoadWithEnv(configPath)

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	printField := func(label, value, fileValue string, envVars ...string) {
		_, _ = bold.Printf("%-18s", label+":")
		if value == "" {
			_, _ = dim.Println("-")
			return
		}

		fmt.Print(value)

		// Determine source
		source := "config"
		if fileErr != nil {
			source = "-"
		}
		for _, envVar := range envVars {
			if v := os.Getenv(envVar); v != "" && v == value {
				source = envVar
				break
			}
		}
		if fileValue != value && source == "config" {
			source = "-"
		}

		_, _ = dim.Printf("  (source: %s)\n", source)
	}

	itoa := func(n int) string {
		if n == 0 {
			return ""
		}
		return strconv.Itoa(n)
	}
	onOff := func(b bool) string {
		if b {
			return "yes"
		}
		return ""
	}

	printField("Output dir", cfg.OutputDir, fileCfg.OutputDir, "WIKX_OUTPUT_DIR")
	printField("Output format", cfg.OutputFormat, fileCfg.OutputFormat, "WIKX_OUTPUT_FORMAT")
	printField("Bytes per file", cfg.Bytes, fileCfg.Bytes, "WIKX_BYTES")
	printField("Processes", itoa(cfg.Processes), itoa(fileCfg.Processes), "WIKX_PROCESSES")
	printField("Compress", onOff(cfg.Compress), onOff(fileCfg.Compress))
	printField("Min text length", itoa(cfg.MinTextLength), itoa(fileCfg.MinTextLength))
	printField("Keep links", onOff(cfg.KeepLinks), onOff(fileCfg.KeepLinks))
	printField("Keep lists", onOff(cfg.KeepLists), onOff(fileCfg.KeepLists))
	printField("Namespaces", strings.Join(cfg.AcceptedNamespaces, ","), strings.Join(fileCfg.AcceptedNamespaces, ","))
	printField("API URL", cfg.APIURL, fileCfg.APIURL, "WIKX_API_URL", "MEDIAWIKI_API_URL")
	printField("Templates file", cfg.Templates, fileCfg.Templates, "WIKX_TEMPLATES")

	fmt.Println()
	_, _ = dim.Printf("Config file: %s\n", configPath)
	if fileErr != nil {
		_, _ = dim.Println("(file not found)")
	}

	return nil
}
