package api

import (
	"encoding/json"
	"net/http"

	"github.com/tobiakanji/logos-go/internal/prefs"
)

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.prefs.Preferences())
}

func (s *Server) handleSaveTheme(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ThemeID string `json:"theme_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ThemeID == "" {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := s.prefs.SaveTheme(payload.ThemeID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save theme")
		return
	}
	writeJSON(w, http.StatusOK, s.prefs.Preferences())
}

// handleSaveFontSize clamps at this boundary; the store itself persists
// whatever it is given.
func (s *Server) handleSaveFontSize(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FontSize int `json:"font_size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := s.prefs.SaveFontSize(prefs.ClampFontSize(payload.FontSize)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save font size")
		return
	}
	writeJSON(w, http.StatusOK, s.prefs.Preferences())
}

func (s *Server) handleSaveLastRead(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		BookID        string `json:"book_id"`
		ChapterNumber int    `json:"chapter_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.BookID == "" || payload.ChapterNumber < 1 {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := s.prefs.SaveLastRead(payload.BookID, payload.ChapterNumber); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save last-read position")
		return
	}
	writeJSON(w, http.StatusOK, s.prefs.Preferences())
}
