// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tobiakanji/logos-go/internal/core"
	"github.com/tobiakanji/logos-go/internal/downloader"
	"github.com/tobiakanji/logos-go/internal/kvstore"
	"github.com/tobiakanji/logos-go/internal/notes"
	"github.com/tobiakanji/logos-go/internal/prefs"
	"github.com/tobiakanji/logos-go/internal/remote"
	"github.com/tobiakanji/logos-go/internal/repository"
	"github.com/tobiakanji/logos-go/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app   *core.App
	db    *sql.DB
	store *store.Store
	repo  *repository.Repository
	dl    *downloader.Manager
	prefs *prefs.Service
	notes *notes.Service
}

// NewServer creates a new Server instance and wires the content
// service components together. The repository's local data is loaded
// eagerly so the first chapter request is already offline if possible.
func NewServer(app *core.App) *Server {
	kv := kvstore.New(app.DB)
	client := remote.New(app.Config.Source.BaseURL, app.Config.Notes.BaseURL)
	repo := repository.New(kv, client)
	if err := repo.LoadLocalData(); err != nil {
		// Degraded start: reads fall back to the network.
		// LoadLocalData only errors on programmer mistakes today, but
		// keep the seam for future strict variants.
		_ = err
	}

	return &Server{
		app:   app,
		db:    app.DB,
		store: store.New(app.DB),
		repo:  repo,
		dl:    downloader.New(kv, client, app.WsHub),
		prefs: prefs.New(kv),
		notes: notes.New(kv, client, repo),
	}
}

// Notes exposes the notes service so main can start its scheduler.
func (s *Server) Notes() *notes.Service { return s.notes }

// Store returns the store instance.
func (s *Server) Store() *store.Store { return s.store }

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API routes
	r.Post("/api/users/login", s.handleLogin)
	r.Get("/api/version", s.handleGetVersion)

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Post("/api/users/logout", s.handleLogout)
		r.Get("/api/users/me", s.handleMe)

		r.Route("/api", func(r chi.Router) {
			// Scripture read path
			r.Get("/testaments", s.handleListTestaments)
			r.Get("/testaments/{testamentID}/books", s.handleListBooks)
			r.Get("/books/{bookID}/chapters/{chapterNumber}", s.handleGetChapter)
			r.Post("/books/{bookID}/download", s.handleDownloadBook)
			r.Post("/reader/clear", s.handleClearCurrentChapter)

			// Offline dataset management
			r.Get("/bible/status", s.handleBibleStatus)
			r.Post("/bible/download", s.handleDownloadFullDataset)

			// Reading preferences
			r.Get("/preferences", s.handleGetPreferences)
			r.Post("/preferences/theme", s.handleSaveTheme)
			r.Post("/preferences/font-size", s.handleSaveFontSize)
			r.Post("/preferences/last-read", s.handleSaveLastRead)

			// Notes
			r.Get("/notes", s.handleListNotes)
			r.Post("/notes", s.handleCreateNote)
			r.Put("/notes/{noteID}", s.handleUpdateNote)
			r.Delete("/notes/{noteID}", s.handleDeleteNote)
			r.Get("/notes/{noteID}/verse-text", s.handleNoteVerseText)
			r.Get("/notes/sync/status", s.handleNotesSyncStatus)
		})
	})

	// WebSocket route for live download progress
	r.Get("/ws/progress", func(w http.ResponseWriter, r *http.Request) {
		s.app.WsHub.ServeWs(w, r)
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.app.Version})
}
