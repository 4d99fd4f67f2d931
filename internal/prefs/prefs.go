// Package prefs tracks reading state: last-read position, font size
// and theme. Every save is an independent, immediately-persisted write;
// writes are user-driven and infrequent, so there is no batching.
package prefs

import (
	"encoding/json"
	"log"

	"github.com/tobiakanji/logos-go/internal/kvstore"
	"github.com/tobiakanji/logos-go/internal/models"
)

const (
	MinFontSize     = 12
	MaxFontSize     = 30
	DefaultFontSize = 16
	DefaultThemeID  = "light"
)

// Service persists ReadingPreferences as a single JSON value.
//
// The store does not validate font size; callers are expected to clamp
// with ClampFontSize before saving. The API boundary does this. Saving
// a raw out-of-range value round-trips unchanged.
type Service struct {
	kv *kvstore.Store
}

func New(kv *kvstore.Store) *Service {
	return &Service{kv: kv}
}

// ClampFontSize bounds n to [MinFontSize, MaxFontSize].
func ClampFontSize(n int) int {
	if n < MinFontSize {
		return MinFontSize
	}
	if n > MaxFontSize {
		return MaxFontSize
	}
	return n
}

// Preferences returns the persisted preferences, falling back to
// defaults when nothing is stored or the stored value is unreadable.
func (s *Service) Preferences() *models.ReadingPreferences {
	defaults := &models.ReadingPreferences{
		ThemeID:  DefaultThemeID,
		FontSize: DefaultFontSize,
	}

	raw, ok, err := s.kv.Get(kvstore.KeyBiblePreferences)
	if err != nil {
		log.Printf("Failed to read preferences, using defaults: %v", err)
		return defaults
	}
	if !ok {
		return defaults
	}

	var prefs models.ReadingPreferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		log.Printf("Stored preferences are corrupt, using defaults: %v", err)
		return defaults
	}
	return &prefs
}

// SaveTheme persists a new theme selection.
func (s *Service) SaveTheme(themeID string) error {
	prefs := s.Preferences()
	prefs.ThemeID = themeID
	return s.save(prefs)
}

// SaveFontSize persists a font size as given, without re-validating.
func (s *Service) SaveFontSize(n int) error {
	prefs := s.Preferences()
	prefs.FontSize = n
	return s.save(prefs)
}

// SaveLastRead records a successful chapter navigation.
func (s *Service) SaveLastRead(bookID string, chapterNumber int) error {
	prefs := s.Preferences()
	prefs.LastRead = &models.LastRead{BookID: bookID, ChapterNumber: chapterNumber}
	return s.save(prefs)
}

func (s *Service) save(prefs *models.ReadingPreferences) error {
	encoded, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	if err := s.kv.Set(kvstore.KeyBiblePreferences, string(encoded)); err != nil {
		// Best effort: a lost preference write degrades the next session,
		// it never blocks the current one.
		log.Printf("Failed to persist preferences: %v", err)
		return err
	}
	return nil
}
