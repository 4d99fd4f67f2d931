package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tobiakanji/logos-go/internal/repository"
)

func (s *Server) handleListTestaments(w http.ResponseWriter, r *http.Request) {
	testaments, err := s.repo.FetchTestaments(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Testaments unavailable")
		return
	}
	writeJSON(w, http.StatusOK, testaments)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	testamentID, err := strconv.ParseInt(chi.URLParam(r, "testamentID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid testament ID")
		return
	}
	books, err := s.repo.FetchBooks(r.Context(), testamentID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Books unavailable")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// handleGetChapter is the primary read path. A successful fetch also
// records the last-read position.
func (s *Server) handleGetChapter(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	number, err := strconv.Atoi(chi.URLParam(r, "chapterNumber"))
	if err != nil || number < 1 {
		writeError(w, http.StatusBadRequest, "Invalid chapter number")
		return
	}

	chapter, err := s.repo.FetchChapter(r.Context(), bookID, number)
	if err != nil {
		if errors.Is(err, repository.ErrContentUnavailable) {
			// The UI renders a "select a chapter" / retry state for this.
			writeError(w, http.StatusNotFound, "Chapter unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch chapter")
		return
	}

	if err := s.prefs.SaveLastRead(bookID, number); err != nil {
		log.Printf("Failed to record last-read position: %v", err)
	}
	writeJSON(w, http.StatusOK, chapter)
}

func (s *Server) handleClearCurrentChapter(w http.ResponseWriter, r *http.Request) {
	s.repo.ClearCurrentChapter()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBibleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"has_bible_data": s.dl.HasBibleData(),
		"has_local_data": s.repo.HasLocalData(),
	})
}

// handleDownloadFullDataset starts the bulk download in the background;
// progress is observable on /ws/progress. The download has no retry
// policy; if it fails, the client may POST here again.
func (s *Server) handleDownloadFullDataset(w http.ResponseWriter, r *http.Request) {
	if s.dl.Active() {
		writeError(w, http.StatusConflict, "A download is already in progress")
		return
	}
	go func() {
		// Detached from the request context on purpose: navigating away
		// does not abort an in-flight download.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		dataset, err := s.dl.DownloadFullDataset(ctx, nil)
		if err != nil {
			log.Printf("Full dataset download failed: %v", err)
			return
		}
		s.repo.InstallDataset(dataset)
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// handleDownloadBook performs the lazy per-book fetch synchronously;
// single books are small enough that the caller can wait.
func (s *Server) handleDownloadBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	book, err := s.dl.DownloadBook(r.Context(), bookID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Book download failed")
		return
	}
	s.repo.MergeBook(book)
	writeJSON(w, http.StatusOK, book)
}
