// A shared test server setup utility, which simplifies all API tests.

package testutil

import (
	"database/sql"
	"testing"

	"github.com/tobiakanji/logos-go/internal/api"
	"github.com/tobiakanji/logos-go/internal/config"
	"github.com/tobiakanji/logos-go/internal/core"
	"github.com/tobiakanji/logos-go/internal/websocket"
)

// SetupTestApp builds a core.App backed by an in-memory database and a
// running websocket hub. Base URLs point at nothing; tests that need a
// remote wire up a FakeScriptureServer / FakeNotesServer instead.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	database := SetupTestDB(t)

	cfg := &config.Config{}
	hub := websocket.NewHub()
	go hub.Run()
	return &core.App{
		Config:  cfg,
		DB:      database,
		WsHub:   hub,
		Version: "test",
	}
}

// SetupTestServer initializes a full core.App and api.Server for
// integration testing against the chi router.
func SetupTestServer(t *testing.T, sourceURL, notesURL string) (*api.Server, *sql.DB) {
	t.Helper()
	app := SetupTestApp(t)
	app.Config.Source.BaseURL = sourceURL
	app.Config.Notes.BaseURL = notesURL

	server := api.NewServer(app)
	return server, app.DB
}
