package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	// FetchNotes never fails outright: a remote failure falls back to
	// the last-cached list.
	notes, _ := s.notes.FetchNotes(r.Context())
	if notes == nil {
		notes = s.notes.CachedNotes()
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		BookID  string `json:"book_id"`
		Chapter int    `json:"chapter"`
		Verses  []int  `json:"verses"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.BookID == "" || payload.Chapter < 1 {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	note, err := s.notes.CreateNote(r.Context(), payload.BookID, payload.Chapter, payload.Verses, payload.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create note")
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "noteID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid note ID")
		return
	}
	var payload struct {
		Verses  []int  `json:"verses"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	note, err := s.notes.UpdateNote(r.Context(), id, payload.Verses, payload.Content)
	if err != nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "noteID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid note ID")
		return
	}
	if err := s.notes.DeleteNote(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleNoteVerseText resolves the verse preview for a note. It runs
// the documented two-step sequence: ensure the chapter's verses are
// cached, then look the text up.
func (s *Server) handleNoteVerseText(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "noteID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid note ID")
		return
	}

	var target *struct {
		BookID  string
		Chapter int
	}
	for _, n := range s.notes.CachedNotes() {
		if n.ID == id {
			target = &struct {
				BookID  string
				Chapter int
			}{n.BookID, n.Chapter}
			break
		}
	}
	if target == nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}

	if err := s.notes.EnsureChapterVerses(r.Context(), target.BookID, target.Chapter); err != nil {
		// Preview text degrades to empty rather than erroring the list.
		writeJSON(w, http.StatusOK, map[string]string{"verse_text": ""})
		return
	}
	for _, n := range s.notes.CachedNotes() {
		if n.ID == id {
			writeJSON(w, http.StatusOK, map[string]string{"verse_text": s.notes.VerseTextForNote(n)})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Note not found")
}

func (s *Server) handleNotesSyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"pending": s.notes.PendingCount()})
}
