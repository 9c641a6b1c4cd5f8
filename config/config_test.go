package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const validConfig = `
help_center:
  url: https://example.zendesk.com
  user: agent@example.com
  token: hc-secret
tms:
  url: https://api.smartling.com/v1
  api_key: tms-secret
  project_id: abc123
locales:
  de: de-DE
  fr: fr-FR
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HelpCenter.URL != "https://example.zendesk.com" {
		t.Fatalf("help center url = %q", cfg.HelpCenter.URL)
	}
	if cfg.TMS.ProjectID != "abc123" {
		t.Fatalf("project id = %q", cfg.TMS.ProjectID)
	}
	if cfg.Locales["de"] != "de-DE" {
		t.Fatalf("locales = %v", cfg.Locales)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SourceLocale != DefaultSourceLocale {
		t.Fatalf("source locale = %q, want %q", cfg.SourceLocale, DefaultSourceLocale)
	}
	if cfg.SourceDir != "sourcefromhc" || cfg.TranslationDir != "translationsfromtms" {
		t.Fatalf("dirs = %q, %q", cfg.SourceDir, cfg.TranslationDir)
	}
	if !cfg.AuthorizeUploads() {
		t.Fatal("uploads should be authorized by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig+`
source_locale: en-gb
source_dir: dumps/out
translation_dir: dumps/in
include_articles: [1, 2]
exclude_articles: [3]
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SourceLocale != "en-gb" {
		t.Fatalf("source locale = %q", cfg.SourceLocale)
	}
	if cfg.SourceDir != "dumps/out" || cfg.TranslationDir != "dumps/in" {
		t.Fatalf("dirs = %q, %q", cfg.SourceDir, cfg.TranslationDir)
	}
	if len(cfg.IncludeArticles) != 2 || len(cfg.ExcludeArticles) != 1 {
		t.Fatalf("filters = %v, %v", cfg.IncludeArticles, cfg.ExcludeArticles)
	}
}

func TestAuthorizeDisabled(t *testing.T) {
	cfg, err := Load(writeConfig(t, strings.Replace(validConfig,
		"project_id: abc123", "project_id: abc123\n  authorize: false", 1)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AuthorizeUploads() {
		t.Fatal("authorize: false should disable upload approval")
	}
}

func TestLoadMissingKeys(t *testing.T) {
	_, err := Load(writeConfig(t, `
help_center:
  url: https://example.zendesk.com
tms:
  url: https://api.smartling.com/v1
`))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, key := range []string{"help_center.user", "tms.project_id", "locales"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error %q should name missing key %s", err, key)
		}
	}
}

func TestLoadUnknownKeys(t *testing.T) {
	if _, err := Load(writeConfig(t, validConfig+"unknown_key: 1\n")); err == nil {
		t.Fatal("unknown keys should be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), ConfigFileName)); err == nil {
		t.Fatal("missing file should fail")
	}
}
