package configcmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wiki-extractor/api"
	"github.com/open-cli-collective/wiki-extractor/internal/config"
)

// NewCmdTest creates the config test command.
func NewCmdTest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test connectivity with the configured MediaWiki API",
		Long:  `Test that wikx can reach the configured MediaWiki API and read its site information.`,
		Example: `  # Test connection
  wikx config test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runTest(noColor)
		},
	}

	return cmd
}

func runTest(noColor bool, cfgs ...*config.Config) error {
	if noColor {
		color.NoColor = true
	}

	var cfg *config.Config
	if len(cfgs) > 0 && cfgs[0] != nil {
		cfg = cfgs[0]
	} else {
		var err error
		cfg, err = config.LoadWithEnv(config.DefaultConfigPath())
		if err != nil {
			return fmt.Errorf("failed to load config: %w (run 'wikx init' to configure)", err)
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w (run 'wikx init' to configure)", err)
		}
	}

	if cfg.APIURL == "" {
		return errors.New("no api_url configured (run 'wikx init' or set WIKX_API_URL)")
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Printf("Testing connection to %s...\n", cfg.APIURL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info, err := api.NewClient(cfg.APIURL).GetSiteInfo(ctx)
	if err != nil {
		var apiErr *api.ErrorResponse
		if errors.As(err, &apiErr) {
			red.Printf("✗ API error: %s\n", apiErr)
			fmt.Println("\nCheck your URL with: wikx config show")
			return fmt.Errorf("api error: %w", err)
		}
		red.Println("✗ Connection failed:", err)
		fmt.Println("\nCheck your URL with: wikx config show")
		fmt.Println("Reconfigure with: wikx init")
		return fmt.Errorf("connection failed: %w", err)
	}

	green.Println("✓ Connection successful")
	green.Printf("✓ Site information read (%d namespaces)\n", len(info.Namespaces))
	fmt.Printf("\nSite: %s\n", info.General.SiteName)

	return nil
}
