// Package backup persists the pre-change DNS configuration so a later
// restore can undo everything this tool applied. The format is a flat
// JSON object mapping service name to the previously configured DNS
// servers as one space-separated string, with "" meaning the service
// had no override. The file is written atomically and deleted once a
// restore succeeds.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dnsforge/dnsmgr/internal/dns/common/log"
)

// Store reads and writes the DNS backup file.
type Store struct {
	path   string
	logger log.Logger
}

// NewStore creates a store for the backup file at path.
func NewStore(path string, logger log.Logger) *Store {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the backup file location.
func (s *Store) Path() string { return s.path }

// Exists reports whether a backup file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save writes the backup atomically: the JSON is written to a temporary
// file in the same directory and renamed into place, so a crash never
// leaves a half-written backup.
func (s *Store) Save(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling backup: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp backup: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp backup: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing backup: %w", err)
	}

	s.logger.Info(map[string]any{
		"path":     s.path,
		"services": len(entries),
	}, "Saved DNS backup")
	return nil
}

// Load reads the backup file.
func (s *Store) Load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading backup: %w", err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing backup: %w", err)
	}
	return entries, nil
}

// Delete removes the backup file. Deleting a missing file is not an
// error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting backup: %w", err)
	}
	return nil
}
