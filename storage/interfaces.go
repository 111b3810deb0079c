package storage

import "nyc-apartments/models"

// SnapshotStore persists a full result set and reads it back.
type SnapshotStore interface {
	Save(path string, listings []*models.Listing) error
	Load(path string) ([]*models.Listing, error)
}

// SeenStore records which (provider, id) keys previous runs have produced.
// It is a best-effort side effect: failures never abort a search.
type SeenStore interface {
	MarkSeen(listings []*models.Listing) error
	FilterNew(listings []*models.Listing) ([]*models.Listing, error)
	Close() error
}
