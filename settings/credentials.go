// Package settings provides storage for hcsync user credentials: the
// help-center API token and the translation-system API key.
//
// Credentials are stored in the XDG data directory:
//
//	$XDG_DATA_HOME/hcsync/auth.json  (default: ~/.local/share/hcsync/auth.json)
//
// File permissions are 0600 (owner read/write only).
//
// Lookup order for each credential:
//  1. Environment variable (HCSYNC_HC_TOKEN / HCSYNC_TMS_KEY)
//  2. hcsync.yaml (if set there)
//  3. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dataDirName = "hcsync"
	fileName    = "auth.json"
)

// Environment variable overrides.
const (
	EnvHelpCenterToken = "HCSYNC_HC_TOKEN"
	EnvTMSKey          = "HCSYNC_TMS_KEY"
)

// Credentials holds the secrets for both collaborator APIs.
type Credentials struct {
	// HelpCenterToken is the help-center API token used with basic auth.
	HelpCenterToken string `json:"help_center_token,omitempty"`
	// TMSKey is the translation-system API key.
	TMSKey string `json:"tms_key,omitempty"`
}

// dataDir returns the XDG data directory for hcsync.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json file path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// Load reads the credential store from disk and applies environment
// overrides. Returns an empty store if the file doesn't exist or is invalid.
func Load() *Credentials {
	creds := &Credentials{}

	if path, err := filePath(); err == nil {
		if data, err := os.ReadFile(path); err == nil {
			_ = json.Unmarshal(data, creds)
		}
	}

	if v := os.Getenv(EnvHelpCenterToken); v != "" {
		creds.HelpCenterToken = v
	}
	if v := os.Getenv(EnvTMSKey); v != "" {
		creds.TMSKey = v
	}

	return creds
}

// Save writes the credential store to disk with 0600 permissions.
// Environment overrides are not persisted; callers pass what to store.
func Save(creds *Credentials) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}

	return nil
}

// RemoveAll removes all stored credentials.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// MaskKey returns a masked version of a key/token for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
