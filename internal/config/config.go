// Package config provides configuration management for wikx.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/wiki-extractor/internal/output"
	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

// DefaultBytes is the default size of one output file.
const DefaultBytes = "1M"

// Config holds the wikx configuration. Pointer booleans distinguish "unset"
// from false so that defaults survive a partial file.
type Config struct {
	OutputDir    string `yaml:"output_dir,omitempty"`
	Bytes        string `yaml:"bytes,omitempty"`
	Compress     bool   `yaml:"compress,omitempty"`
	OutputFormat string `yaml:"output_format,omitempty"`
	Processes    int    `yaml:"processes,omitempty"`

	KeepLinks       bool  `yaml:"keep_links,omitempty"`
	KeepSections    *bool `yaml:"keep_sections,omitempty"`
	KeepLists       bool  `yaml:"keep_lists,omitempty"`
	KeepTables      bool  `yaml:"keep_tables,omitempty"`
	HTML            bool  `yaml:"html,omitempty"`
	ExpandTemplates *bool `yaml:"expand_templates,omitempty"`
	FilterDisambig  bool  `yaml:"filter_disambig,omitempty"`
	PrintRevision   bool  `yaml:"print_revision,omitempty"`
	MinTextLength   int   `yaml:"min_text_length,omitempty"`

	AcceptedNamespaces []string `yaml:"accepted_namespaces,omitempty"`
	IgnoredTags        []string `yaml:"ignored_tags,omitempty"`
	DiscardElements    []string `yaml:"discard_elements,omitempty"`

	APIURL    string `yaml:"api_url,omitempty"`
	Templates string `yaml:"templates,omitempty"`
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.OutputFormat != "" {
		if _, err := output.ParseFormat(c.OutputFormat); err != nil {
			return err
		}
	}
	if _, err := c.MaxBytes(); err != nil {
		return err
	}
	if c.Processes < 0 {
		return errors.New("processes must not be negative")
	}
	if c.MinTextLength < 0 {
		return errors.New("min_text_length must not be negative")
	}
	if c.APIURL != "" && !strings.HasPrefix(c.APIURL, "https://") && !strings.HasPrefix(c.APIURL, "http://") {
		return errors.New("api_url must use http or https")
	}
	return nil
}

// MaxBytes parses Bytes ("1M", "500K", "0"). Zero means a single output
// file.
func (c *Config) MaxBytes() (int64, error) {
	s := strings.TrimSpace(c.Bytes)
	if s == "" {
		s = DefaultBytes
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("bytes must not be negative: %s", c.Bytes)
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid bytes %q: %w", c.Bytes, err)
	}
	return int64(n), nil
}

// Format returns the configured output format, json by default.
func (c *Config) Format() output.Format {
	if c.OutputFormat == "" {
		return output.FormatJSON
	}
	f, err := output.ParseFormat(c.OutputFormat)
	if err != nil {
		return output.FormatJSON
	}
	return f
}

// Options builds the extraction options. The result still needs
// Prepare once namespaces from the input are applied.
func (c *Config) Options() *wikitext.Options {
	opts := wikitext.DefaultOptions()
	opts.KeepLinks = c.KeepLinks
	opts.KeepLists = c.KeepLists
	opts.KeepTables = c.KeepTables
	opts.ToHTML = c.HTML || c.Format().NeedsHTML()
	opts.FilterDisambig = c.FilterDisambig
	opts.PrintRevision = c.PrintRevision
	opts.MinTextLength = c.MinTextLength
	if c.KeepSections != nil {
		opts.KeepSections = *c.KeepSections
	}
	if c.ExpandTemplates != nil {
		opts.ExpandTemplates = *c.ExpandTemplates
	}
	if len(c.AcceptedNamespaces) > 0 {
		opts.AcceptedNamespaces = append([]string(nil), c.AcceptedNamespaces...)
	}
	if len(c.IgnoredTags) > 0 {
		opts.IgnoredTags = append(opts.IgnoredTags, c.IgnoredTags...)
	}
	if len(c.DiscardElements) > 0 {
		opts.DiscardElements = append(opts.DiscardElements, c.DiscardElements...)
	}
	return opts
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
func (c *Config) LoadFromEnv() {
	if dir := os.Getenv("WIKX_OUTPUT_DIR"); dir != "" {
		c.OutputDir = dir
	}
	if b := os.Getenv("WIKX_BYTES"); b != "" {
		c.Bytes = b
	}
	if f := os.Getenv("WIKX_OUTPUT_FORMAT"); f != "" {
		c.OutputFormat = f
	}
	if p := os.Getenv("WIKX_PROCESSES"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			c.Processes = n
		}
	}
	if u := getEnvWithFallback("WIKX_API_URL", "MEDIAWIKI_API_URL"); u != "" {
		c.APIURL = u
	}
	if t := os.Getenv("WIKX_TEMPLATES"); t != "" {
		c.Templates = t
	}
}

// getEnvWithFallback returns the value of the primary env var, or the fallback if primary is empty.
func getEnvWithFallback(primary, fallback string) string {
	if v := os.Getenv(primary); v != "" {
		return v
	}
	return os.Getenv(fallback)
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "wikx", "config.yml")
	}

	// Fall back to ~/.config/wikx/config.yml
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".wikx", "config.yml")
	}

	return filepath.Join(home, ".config", "wikx", "config.yml")
}

// ResolvePath returns path, or DefaultConfigPath when it is empty.
func ResolvePath(path string) string {
	if path == "" {
		return DefaultConfigPath()
	}
	return path
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		// If file doesn't exist, start with empty config
		cfg = &Config{}
	}

	cfg.LoadFromEnv()
	return cfg, nil
}

// Bool returns a pointer to b, for the optional fields of Config.
func Bool(b bool) *bool {
	return &b
}
