// Package kvstore is the local persistence adapter: a thin key-value
// layer over the SQLite kv_store table. It performs no schema
// validation and no transactions; callers own JSON encoding and key
// namespaces. Persisted keys in use:
//
//	bible_dataset_v1      -> serialized models.BibleDataset
//	bible_preferences_v1  -> serialized models.ReadingPreferences
//	notes_cache_v1        -> serialized []models.Note
//	notes_pending_queue_v1 -> serialized []models.PendingOp
package kvstore

import (
	"database/sql"
	"errors"
	"time"
)

const (
	KeyBibleDataset      = "bible_dataset_v1"
	KeyBiblePreferences  = "bible_preferences_v1"
	KeyNotesCache        = "notes_cache_v1"
	KeyNotesPendingQueue = "notes_pending_queue_v1"
)

// Store provides Get/Set/Remove over the kv_store table.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the value for key. The second return value is false when
// the key is absent. Callers are expected to treat a read error the
// same as a missing key.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;
	`
	_, err := s.db.Exec(query, key, value, time.Now())
	return err
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Store) Remove(key string) error {
	_, err := s.db.Exec("DELETE FROM kv_store WHERE key = ?", key)
	return err
}

// Has reports whether key is present. Read errors count as absent,
// matching the adapter's degrade-to-missing contract.
func (s *Store) Has(key string) bool {
	_, ok, err := s.Get(key)
	return err == nil && ok
}
