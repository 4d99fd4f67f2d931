package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tobiakanji/logos-go/internal/models"
	"github.com/tobiakanji/logos-go/internal/testutil"
)

func postJSON(t *testing.T, router http.Handler, cookie *http.Cookie, path, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest("POST", path, bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestPreferencesHandlers(t *testing.T) {
	server, _ := testutil.SetupTestServer(t, "http://127.0.0.1:0", "http://127.0.0.1:0")
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "prefsuser", "password", "user")

	decodePrefs := func(rr *httptest.ResponseRecorder) *models.ReadingPreferences {
		t.Helper()
		var p models.ReadingPreferences
		if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
			t.Fatalf("could not unmarshal preferences: %v", err)
		}
		return &p
	}

	t.Run("Defaults", func(t *testing.T) {
		rr := doAuthedRequest(t, router, cookie, "GET", "/api/preferences")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		p := decodePrefs(rr)
		if p.ThemeID != "light" || p.FontSize != 16 {
			t.Errorf("unexpected defaults: %+v", p)
		}
	})

	t.Run("Save Theme", func(t *testing.T) {
		rr := postJSON(t, router, cookie, "/api/preferences/theme", `{"theme_id":"dark"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if p := decodePrefs(rr); p.ThemeID != "dark" {
			t.Errorf("expected theme dark, got %q", p.ThemeID)
		}
	})

	t.Run("Save Theme Invalid Payload", func(t *testing.T) {
		rr := postJSON(t, router, cookie, "/api/preferences/theme", `{}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("Font Size Is Clamped", func(t *testing.T) {
		rr := postJSON(t, router, cookie, "/api/preferences/font-size", `{"font_size":99}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if p := decodePrefs(rr); p.FontSize != 30 {
			t.Errorf("expected font size clamped to 30, got %d", p.FontSize)
		}

		rr = postJSON(t, router, cookie, "/api/preferences/font-size", `{"font_size":2}`)
		if p := decodePrefs(rr); p.FontSize != 12 {
			t.Errorf("expected font size clamped to 12, got %d", p.FontSize)
		}

		rr = postJSON(t, router, cookie, "/api/preferences/font-size", `{"font_size":21}`)
		if p := decodePrefs(rr); p.FontSize != 21 {
			t.Errorf("expected in-range font size 21 kept, got %d", p.FontSize)
		}
	})

	t.Run("Save Last Read", func(t *testing.T) {
		rr := postJSON(t, router, cookie, "/api/preferences/last-read", `{"book_id":"genesis","chapter_number":2}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		p := decodePrefs(rr)
		if p.LastRead == nil || p.LastRead.BookID != "genesis" || p.LastRead.ChapterNumber != 2 {
			t.Errorf("unexpected last read: %+v", p.LastRead)
		}
	})

	t.Run("Save Last Read Invalid Payload", func(t *testing.T) {
		rr := postJSON(t, router, cookie, "/api/preferences/last-read", `{"book_id":"","chapter_number":0}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})
}
