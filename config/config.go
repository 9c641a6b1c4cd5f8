// Package config loads hcsync.yaml, the run configuration naming the two
// collaborator endpoints, the locale mapping, and the article transfer
// filters.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the default configuration file name.
const ConfigFileName = "hcsync.yaml"

// DefaultSourceLocale is the help-center locale all source content is
// authored in. Kept fixed unless the config overrides it; a misconfigured
// source locale corrupts every derived filename and link.
const DefaultSourceLocale = "en-us"

// HelpCenter names the source-system endpoint and account.
type HelpCenter struct {
	URL   string `yaml:"url"`
	User  string `yaml:"user"`
	Token string `yaml:"token"`
}

// TMS names the translation-system endpoint and project.
type TMS struct {
	URL       string `yaml:"url"`
	APIKey    string `yaml:"api_key"`
	ProjectID string `yaml:"project_id"`
	// Authorize controls whether uploaded content is immediately approved
	// for translation. Defaults to true.
	Authorize *bool `yaml:"authorize"`
}

// Config is the parsed hcsync.yaml.
type Config struct {
	SourceLocale string     `yaml:"source_locale"`
	LogFile      string     `yaml:"log_file"`
	HelpCenter   HelpCenter `yaml:"help_center"`
	TMS          TMS        `yaml:"tms"`

	// Locales maps help-center locale codes to translation-system codes.
	Locales map[string]string `yaml:"locales"`

	// IncludeArticles restricts article transfers to these ids when
	// non-empty; inclusion overrides the draft filter.
	IncludeArticles []int64 `yaml:"include_articles"`
	// ExcludeArticles are article ids never transferred.
	ExcludeArticles []int64 `yaml:"exclude_articles"`

	// Debug artifact directories, recreated at the start of each run.
	SourceDir      string `yaml:"source_dir"`
	TranslationDir string `yaml:"translation_dir"`
}

// AuthorizeUploads reports whether uploads should be approved for
// translation immediately.
func (c *Config) AuthorizeUploads() bool {
	return c.TMS.Authorize == nil || *c.TMS.Authorize
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.SourceLocale == "" {
		c.SourceLocale = DefaultSourceLocale
	}
	if c.SourceDir == "" {
		c.SourceDir = "sourcefromhc"
	}
	if c.TranslationDir == "" {
		c.TranslationDir = "translationsfromtms"
	}
}

func (c *Config) validate() error {
	var missing []string
	if c.HelpCenter.URL == "" {
		missing = append(missing, "help_center.url")
	}
	if c.HelpCenter.User == "" {
		missing = append(missing, "help_center.user")
	}
	if c.TMS.URL == "" {
		missing = append(missing, "tms.url")
	}
	if c.TMS.ProjectID == "" {
		missing = append(missing, "tms.project_id")
	}
	if len(c.Locales) == 0 {
		missing = append(missing, "locales")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required keys: %s", strings.Join(missing, ", "))
	}
	return nil
}
