package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/tobiakanji/logos-go/internal/models"
)

// FakeScriptureServer is an httptest stand-in for the upstream content
// API, with fault-injection knobs for download tests.
type FakeScriptureServer struct {
	*httptest.Server

	mu           sync.Mutex
	dataset      *models.BibleDataset
	hits         map[string]int
	failBulk     bool
	truncateBulk bool
	failAll      bool
	bulkGate     chan struct{}
}

// NewFakeScriptureServer serves FixtureDataset over the upstream API
// surface. The server is closed automatically when the test ends.
func NewFakeScriptureServer(t *testing.T) *FakeScriptureServer {
	t.Helper()
	f := &FakeScriptureServer{
		dataset: FixtureDataset(),
		hits:    make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// FailBulk makes the bulk endpoint return 500.
func (f *FakeScriptureServer) FailBulk(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failBulk = fail
}

// TruncateBulk makes the bulk endpoint promise a full body but cut the
// stream short, simulating connectivity loss mid-download.
func (f *FakeScriptureServer) TruncateBulk(truncate bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.truncateBulk = truncate
}

// HoldBulk makes the bulk endpoint block until the returned release
// function is called, keeping a download in flight for the duration.
func (f *FakeScriptureServer) HoldBulk() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.bulkGate = gate
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// FailAll makes every endpoint return 500, simulating the network
// being unreachable.
func (f *FakeScriptureServer) FailAll(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAll = fail
}

// Hits reports how many requests reached the given path.
func (f *FakeScriptureServer) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

// TotalHits reports how many requests reached the server at all.
func (f *FakeScriptureServer) TotalHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.hits {
		total += n
	}
	return total
}

func (f *FakeScriptureServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[r.URL.Path]++
	failAll, failBulk, truncateBulk := f.failAll, f.failBulk, f.truncateBulk
	dataset := f.dataset
	gate := f.bulkGate
	f.mu.Unlock()

	if failAll {
		http.Error(w, "unreachable", http.StatusInternalServerError)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/")
	parts := strings.Split(path, "/")

	switch {
	case path == "bible/full":
		if failBulk {
			http.Error(w, "bulk failure", http.StatusInternalServerError)
			return
		}
		if gate != nil {
			<-gate
		}
		body, _ := json.Marshal(dataset)
		if truncateBulk {
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
			w.WriteHeader(http.StatusOK)
			w.Write(body[:len(body)/2])
			if fl, ok := w.(http.Flusher); ok {
				fl.Flush()
			}
			// Abort the connection so the client sees a short read.
			panic(http.ErrAbortHandler)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)

	case path == "testaments":
		writeJSON(w, FixtureTestaments())

	case len(parts) == 3 && parts[0] == "testaments" && parts[2] == "books":
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		var books []*models.Book
		for _, b := range dataset.Books {
			if b.TestamentID == id {
				books = append(books, &models.Book{
					ID: b.ID, TestamentID: b.TestamentID, Name: b.Name,
					Order: b.Order, ChaptersCount: b.ChaptersCount,
				})
			}
		}
		writeJSON(w, books)

	case len(parts) == 2 && parts[0] == "books":
		for _, b := range dataset.Books {
			if b.ID == parts[1] {
				writeJSON(w, b)
				return
			}
		}
		http.NotFound(w, r)

	case len(parts) == 4 && parts[0] == "books" && parts[2] == "chapters":
		number, _ := strconv.Atoi(parts[3])
		for _, b := range dataset.Books {
			if b.ID != parts[1] {
				continue
			}
			for _, ch := range b.Chapters {
				if ch.Number == number {
					writeJSON(w, ch)
					return
				}
			}
		}
		http.NotFound(w, r)

	default:
		http.NotFound(w, r)
	}
}

// FakeNotesServer is an httptest stand-in for the remote notes API. It
// records the order of mutating requests so replay-ordering tests can
// assert on it.
type FakeNotesServer struct {
	*httptest.Server

	mu       sync.Mutex
	notes    map[int64]*models.Note
	nextID   int64
	offline  bool
	requests []string
}

func NewFakeNotesServer(t *testing.T) *FakeNotesServer {
	t.Helper()
	f := &FakeNotesServer{
		notes:  make(map[int64]*models.Note),
		nextID: 1,
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// SetOffline toggles simulated connectivity loss: every request fails.
func (f *FakeNotesServer) SetOffline(offline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = offline
}

// Requests returns the mutating requests seen so far, e.g. "PUT /notes/1".
func (f *FakeNotesServer) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// Note returns the server-side copy of a note, or nil.
func (f *FakeNotesServer) Note(id int64) *models.Note {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notes[id]
}

// Seed installs a note directly, bypassing the API.
func (f *FakeNotesServer) Seed(note *models.Note) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes[note.ID] = note
	if note.ID >= f.nextID {
		f.nextID = note.ID + 1
	}
}

func (f *FakeNotesServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	if f.offline {
		f.mu.Unlock()
		http.Error(w, "offline", http.StatusInternalServerError)
		return
	}
	if r.Method != http.MethodGet {
		f.requests = append(f.requests, fmt.Sprintf("%s %s", r.Method, r.URL.Path))
	}
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/notes":
		f.mu.Lock()
		var notes []*models.Note
		for _, n := range f.notes {
			notes = append(notes, n)
		}
		f.mu.Unlock()
		writeJSON(w, notes)

	case r.Method == http.MethodPost && r.URL.Path == "/notes":
		var note models.Note
		if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		note.ID = f.nextID
		f.nextID++
		f.notes[note.ID] = &note
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(&note)

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/notes/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/notes/"), 10, 64)
		var note models.Note
		if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		if _, ok := f.notes[id]; !ok {
			f.mu.Unlock()
			http.NotFound(w, r)
			return
		}
		note.ID = id
		f.notes[id] = &note
		f.mu.Unlock()
		writeJSON(w, &note)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/notes/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/notes/"), 10, 64)
		f.mu.Lock()
		delete(f.notes, id)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)

	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
