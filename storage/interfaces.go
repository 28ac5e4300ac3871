package storage

import "price-scout/models"

// QueryCache maps a normalized query string to its most recent ranked
// result list. A hit is authoritative: there is no expiry, entries live
// until overwritten by a fresh non-empty write for the same key.
type QueryCache interface {
	Get(query string) ([]*models.Listing, bool)
	Put(query string, results []*models.Listing) error
}

// HistoryStore persists the tracked-item map wholesale. The tracker does
// read-modify-write under its own lock; concurrent writers from other
// processes are last-writer-wins.
type HistoryStore interface {
	Load() (map[string]*models.TrackedItem, error)
	Save(items map[string]*models.TrackedItem) error
}

// InteractionLog is the append-only store of conversational turns.
type InteractionLog interface {
	Append(userID, role, text string) error
	Recent(userID string, limit int) ([]models.InteractionRecord, error)
}

// ProfileStore exposes the user profile, read-only for the core. Only the
// agent's feedback loop writes preferences back.
type ProfileStore interface {
	Profile() (models.UserProfile, error)
	UpdatePreference(key, value string) error
}
