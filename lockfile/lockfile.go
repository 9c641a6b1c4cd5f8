// Package lockfile implements hcsync.lock, a lock file that tracks MD5
// checksums of the source documents last uploaded to the translation system.
// This enables incremental pushes: an item whose serialized JSON is unchanged
// since the previous push can be skipped, avoiding needless re-ingestion on
// the translation side.
//
// The lock file is stored alongside hcsync.yaml as hcsync.lock.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = "hcsync.lock"

// Version is the lock file format version.
const Version = 1

// LockFile represents the hcsync.lock file structure. Checksums are keyed by
// the item's translation-system URI ("article_901922090.json").
type LockFile struct {
	Version   int               `yaml:"version"`
	Checksums map[string]string `yaml:"checksums"`

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// Hash computes the MD5 hex digest of a document.
func Hash(doc []byte) string {
	return fmt.Sprintf("%x", md5.Sum(doc))
}

// IsChanged checks if a source document has changed since its last upload.
// Returns true if the URI is new or the document content differs.
func (lf *LockFile) IsChanged(uri string, doc []byte) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	oldHash, ok := lf.Checksums[uri]
	if !ok {
		return true
	}
	return oldHash != Hash(doc)
}

// Update records the checksum of a source document after successful upload.
func (lf *LockFile) Update(uri string, doc []byte) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	lf.Checksums[uri] = Hash(doc)
}

// Remove deletes the checksum for a URI, forcing the next push to upload.
func (lf *LockFile) Remove(uri string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	delete(lf.Checksums, uri)
}

// URIs returns the tracked URIs in sorted order.
func (lf *LockFile) URIs() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	uris := make([]string, 0, len(lf.Checksums))
	for u := range lf.Checksums {
		uris = append(uris, u)
	}
	sort.Strings(uris)
	return uris
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if len(lf.Checksums) == 0 {
		return "empty"
	}
	return fmt.Sprintf("%d tracked documents", len(lf.Checksums))
}
