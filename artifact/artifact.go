// Package artifact writes debug copies of the documents moving through the
// transfer pipelines. The copies are non-authoritative: nothing reads them
// back, they exist purely for inspection after a run.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/localehub/hcsync/content"
)

// Store holds the dump directories for one run. A nil *Store disables
// dumping entirely.
type Store struct {
	SourceDir      string
	TranslationDir string
}

// CleanSource recreates the source dump directory, discarding artifacts
// from previous runs.
func (s *Store) CleanSource() error {
	if s == nil {
		return nil
	}
	return clean(s.SourceDir)
}

// CleanTranslations recreates the translation dump directory.
func (s *Store) CleanTranslations() error {
	if s == nil {
		return nil
	}
	return clean(s.TranslationDir)
}

func clean(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("cleaning %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

// WriteSource stores the serialized source document for an item, named by
// its translation-system URI.
func (s *Store) WriteSource(t content.ItemType, id int64, doc []byte) error {
	if s == nil || s.SourceDir == "" {
		return nil
	}
	return write(filepath.Join(s.SourceDir, content.URI(t, id)), doc)
}

// WriteTranslation stores a downloaded translation document, named by item
// and translation-system locale.
func (s *Store) WriteTranslation(t content.ItemType, id int64, locale string, doc []byte) error {
	if s == nil || s.TranslationDir == "" {
		return nil
	}
	name := fmt.Sprintf("%s_%d_%s.json", t, id, locale)
	return write(filepath.Join(s.TranslationDir, name), doc)
}

func write(path string, doc []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}
	if err := os.WriteFile(path, doc, 0644); err != nil {
		return fmt.Errorf("writing artifact %s: %w", path, err)
	}
	return nil
}
