package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tobiakanji/logos-go/internal/models"
	"github.com/tobiakanji/logos-go/internal/testutil"
)

func TestNotesHandlers(t *testing.T) {
	content := testutil.NewFakeScriptureServer(t)
	notesServer := testutil.NewFakeNotesServer(t)
	server, _ := testutil.SetupTestServer(t, content.URL, notesServer.URL)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "scribe", "password", "user")

	var noteID int64

	t.Run("Create Note", func(t *testing.T) {
		payload := `{"book_id":"genesis","chapter":1,"verses":[1,2],"content":"creation"}`
		rr := postJSON(t, router, cookie, "/api/notes", payload)
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
		}
		var note models.Note
		if err := json.Unmarshal(rr.Body.Bytes(), &note); err != nil {
			t.Fatalf("could not unmarshal note: %v", err)
		}
		if note.ID <= 0 {
			t.Errorf("expected server-assigned id, got %d", note.ID)
		}
		if note.SyncState != models.SyncStateSynced {
			t.Errorf("expected synced note, got %q", note.SyncState)
		}
		noteID = note.ID
	})

	t.Run("Create Note Invalid Payload", func(t *testing.T) {
		rr := postJSON(t, router, cookie, "/api/notes", `{"chapter":0}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("List Notes", func(t *testing.T) {
		rr := doAuthedRequest(t, router, cookie, "GET", "/api/notes")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var notes []*models.Note
		if err := json.Unmarshal(rr.Body.Bytes(), &notes); err != nil {
			t.Fatalf("could not unmarshal notes: %v", err)
		}
		if len(notes) != 1 {
			t.Errorf("expected 1 note, got %d", len(notes))
		}
	})

	t.Run("Update Note", func(t *testing.T) {
		payload := `{"verses":[3],"content":"revised"}`
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/notes/%d", noteID), bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var note models.Note
		if err := json.Unmarshal(rr.Body.Bytes(), &note); err != nil {
			t.Fatalf("could not unmarshal note: %v", err)
		}
		if note.Content != "revised" {
			t.Errorf("expected revised content, got %q", note.Content)
		}
		if got := notesServer.Note(noteID); got == nil || got.Content != "revised" {
			t.Errorf("server copy not updated: %+v", got)
		}
	})

	t.Run("Update Unknown Note", func(t *testing.T) {
		req, _ := http.NewRequest("PUT", "/api/notes/9999", bytes.NewBufferString(`{"content":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("Verse Text", func(t *testing.T) {
		rr := doAuthedRequest(t, router, cookie, "GET", fmt.Sprintf("/api/notes/%d/verse-text", noteID))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var got map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
			t.Fatalf("could not unmarshal response: %v", err)
		}
		// The note now references verse 3 of genesis 1.
		if got["verse_text"] != "Genesis 1:3 text" {
			t.Errorf("unexpected verse text: %q", got["verse_text"])
		}
	})

	t.Run("Verse Text Degrades When Chapter Unresolvable", func(t *testing.T) {
		// A note pointing at a chapter neither cached nor fetchable.
		notesServer.Seed(&models.Note{ID: 77, BookID: "revelation", Chapter: 4, Verses: []int{1}, Content: "throne"})
		doAuthedRequest(t, router, cookie, "GET", "/api/notes") // refresh the cache
		content.FailAll(true)
		defer content.FailAll(false)

		rr := doAuthedRequest(t, router, cookie, "GET", "/api/notes/77/verse-text")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var got map[string]string
		json.Unmarshal(rr.Body.Bytes(), &got)
		if got["verse_text"] != "" {
			t.Errorf("expected empty preview, got %q", got["verse_text"])
		}
	})

	t.Run("Sync Status", func(t *testing.T) {
		rr := doAuthedRequest(t, router, cookie, "GET", "/api/notes/sync/status")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var got map[string]int
		json.Unmarshal(rr.Body.Bytes(), &got)
		if got["pending"] != 0 {
			t.Errorf("expected no pending writes, got %d", got["pending"])
		}
	})

	t.Run("Offline Create Reports Pending", func(t *testing.T) {
		notesServer.SetOffline(true)
		defer notesServer.SetOffline(false)

		payload := `{"book_id":"exodus","chapter":1,"verses":[1],"content":"offline"}`
		rr := postJSON(t, router, cookie, "/api/notes", payload)
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201 while offline, got %d", rr.Code)
		}
		var note models.Note
		if err := json.Unmarshal(rr.Body.Bytes(), &note); err != nil {
			t.Fatalf("could not unmarshal note: %v", err)
		}
		if !note.IsLocal() {
			t.Errorf("expected a temporary local id, got %d", note.ID)
		}

		rr = doAuthedRequest(t, router, cookie, "GET", "/api/notes/sync/status")
		var got map[string]int
		json.Unmarshal(rr.Body.Bytes(), &got)
		if got["pending"] != 1 {
			t.Errorf("expected 1 pending write, got %d", got["pending"])
		}
	})

	t.Run("Delete Note", func(t *testing.T) {
		req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/notes/%d", noteID), nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rr.Code)
		}
		if notesServer.Note(noteID) != nil {
			t.Error("expected note deleted on the server")
		}
	})
}
