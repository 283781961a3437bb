// Package init provides the init command for wikx.
package init

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wiki-extractor/api"
	"github.com/open-cli-collective/wiki-extractor/internal/config"
	"github.com/open-cli-collective/wiki-extractor/internal/output"
)

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	var (
		apiURL   string
		noVerify bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize wikx configuration",
		Long: `Initialize wikx with your extraction defaults.

This command will guide you through choosing an output directory, format
and file size, and optionally a MediaWiki API endpoint used by 'wikx page'
to fetch live pages and templates. The configuration will be saved to
~/.config/wikx/config.yml.`,
		Example: `  # Interactive setup
  wikx init

  # Pre-populate the API endpoint
  wikx init --api-url https://en.wikipedia.org/w/api.php`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(apiURL, noVerify)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "MediaWiki API endpoint (e.g., https://en.wikipedia.org/w/api.php)")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip API verification")

	return cmd
}

func runInit(prefillURL string, noVerify bool) error {
	configPath := config.DefaultConfigPath()

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Initialization cancelled.")
			return nil
		}
	}

	cfg := &config.Config{
		OutputDir:    "text",
		Bytes:        config.DefaultBytes,
		OutputFormat: string(output.FormatJSON),
		APIURL:       prefillURL,
	}
	minLength := "0"

	formatOptions := make([]huh.Option[string], 0, len(output.Formats))
	for _, f := range output.Formats {
		formatOptions = append(formatOptions, huh.NewOption(string(f), string(f)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output directory").
				Description("Where extracted files are written ('-' for stdout)").
				Value(&cfg.OutputDir),

			huh.NewSelect[string]().
				Title("Output format").
				Options(formatOptions...).
				Value(&cfg.OutputFormat),

			huh.NewInput().
				Title("Bytes per file").
				Description("Rotate output files at this size, e.g. 1M or 500K (0 for one file)").
				Value(&cfg.Bytes).
				Validate(func(s string) error {
					_, err := (&config.Config{Bytes: s}).MaxBytes()
					return err
				}),

			huh.NewInput().
				Title("Minimum text length").
				Description("Articles with fewer characters are skipped").
				Value(&minLength).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 0 {
						return fmt.Errorf("must be a non-negative number")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Keep links?").
				Value(&cfg.KeepLinks),

			huh.NewConfirm().
				Title("Keep lists?").
				Value(&cfg.KeepLists),

			huh.NewConfirm().
				Title("Skip disambiguation pages?").
				Value(&cfg.FilterDisambig),

			huh.NewConfirm().
				Title("Compress output?").
				Value(&cfg.Compress),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("MediaWiki API URL (optional)").
				Description("Used by 'wikx page' to fetch live pages and templates").
				Placeholder("https://en.wikipedia.org/w/api.php").
				Value(&cfg.APIURL),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg.MinTextLength, _ = strconv.Atoi(minLength)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Verify the API unless skipped
	if cfg.APIURL != "" && !noVerify {
		fmt.Print("Verifying API... ")
		site, err := verifyConnection(cfg)
		if err != nil {
			fmt.Println("failed!")
			return fmt.Errorf("API verification failed: %w", err)
		}
		fmt.Printf("found %s\n", site)
	}

	if err := cfg.Save(configPath); err != nil {
		return err
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	fmt.Println("\nYou're all set! Try running:")
	fmt.Println("  wikx extract enwiki-latest-pages-articles.xml.bz2")
	if cfg.APIURL != "" {
		fmt.Println("  wikx page \"Go (programming language)\"")
	}

	return nil
}

// verifyConnection fetches siteinfo and returns the site name.
func verifyConnection(cfg *config.Config) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info, err := api.NewClient(cfg.APIURL).GetSiteInfo(ctx)
	if err != nil {
		return "", err
	}
	return info.General.SiteName, nil
}
