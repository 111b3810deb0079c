package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"nyc-apartments/models"
)

// JSONStore saves and loads full result snapshots as indented JSON files.
type JSONStore struct{}

// NewJSONStore creates a JSONStore.
func NewJSONStore() *JSONStore { return &JSONStore{} }

// Save serializes listings to a JSON file, creating intermediate
// directories as needed.
func (s *JSONStore) Save(path string, listings []*models.Listing) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("json store: create output dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return fmt.Errorf("json store: marshal: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("json store: write %q: %w", path, err)
	}
	return nil
}

// Load reads listings back from a snapshot file. A missing file or a file
// that does not hold a list yields an empty result, not an error.
func (s *JSONStore) Load(path string) ([]*models.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("json store: read %q: %w", path, err)
	}

	var listings []*models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, nil
	}
	return listings, nil
}
