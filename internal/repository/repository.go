// Package repository owns the in-memory view of the scripture corpus
// and answers chapter lookups, falling back to the network only when
// the offline dataset does not cover the request.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/tobiakanji/logos-go/internal/kvstore"
	"github.com/tobiakanji/logos-go/internal/models"
	"github.com/tobiakanji/logos-go/internal/remote"
)

// ErrContentUnavailable means the chapter is absent locally and the
// remote fetch also failed. The UI shows a retry/placeholder state for
// this, never a hard error.
var ErrContentUnavailable = errors.New("content unavailable")

// The testament set is small and fixed; names are not carried in the
// bulk dataset, so offline reads resolve them from this table.
var testamentNames = map[int64]string{
	1: "Old Testament",
	2: "New Testament",
}

// Repository serves testaments, books and chapters from memory when the
// offline dataset is loaded, and from the upstream API otherwise.
type Repository struct {
	kv     *kvstore.Store
	client *remote.Client

	mu           sync.Mutex
	books        map[string]*models.Book // full dataset plus lazily merged books
	order        []string                // book ids in canonical order
	hasLocalData bool
	current      *models.Chapter // currently displayed selection, UI state only
}

// New creates a Repository. Call LoadLocalData before serving reads.
func New(kv *kvstore.Store, client *remote.Client) *Repository {
	return &Repository{
		kv:     kv,
		client: client,
		books:  make(map[string]*models.Book),
	}
}

// LoadLocalData reads the persisted dataset (if any) into memory. It is
// idempotent: once local data is loaded, subsequent calls short-circuit.
// A missing dataset is not an error; a corrupt one is treated as absent
// and logged, per the adapter's degrade-to-missing contract.
func (r *Repository) LoadLocalData() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasLocalData {
		return nil
	}

	raw, ok, err := r.kv.Get(kvstore.KeyBibleDataset)
	if err != nil {
		log.Printf("Failed to read local dataset, treating as absent: %v", err)
		return nil
	}
	if !ok {
		return nil
	}

	var dataset models.BibleDataset
	if err := json.Unmarshal([]byte(raw), &dataset); err != nil {
		log.Printf("Local dataset is corrupt, treating as absent: %v", err)
		return nil
	}

	r.installDataset(&dataset)
	log.Printf("Loaded offline dataset: %d books", len(r.books))
	return nil
}

// InstallDataset replaces the in-memory view with a freshly downloaded
// dataset, so a completed download is readable without a reload.
func (r *Repository) InstallDataset(dataset *models.BibleDataset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.installDataset(dataset)
}

func (r *Repository) installDataset(dataset *models.BibleDataset) {
	r.books = make(map[string]*models.Book, len(dataset.Books))
	r.order = r.order[:0]
	for _, book := range dataset.Books {
		r.books[book.ID] = book
		r.order = append(r.order, book.ID)
	}
	r.hasLocalData = true
}

// HasLocalData reports whether the full offline dataset is in memory.
func (r *Repository) HasLocalData() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasLocalData
}

// FetchTestaments returns the testament list, from memory when the
// dataset is loaded and from the upstream API otherwise.
func (r *Repository) FetchTestaments(ctx context.Context) ([]*models.Testament, error) {
	r.mu.Lock()
	local := r.hasLocalData
	seen := make(map[int64]bool)
	if local {
		for _, id := range r.order {
			seen[r.books[id].TestamentID] = true
		}
	}
	r.mu.Unlock()

	if local {
		var testaments []*models.Testament
		for id := range seen {
			testaments = append(testaments, &models.Testament{
				ID:    id,
				Name:  testamentNames[id],
				Order: int(id),
			})
		}
		sort.Slice(testaments, func(i, j int) bool { return testaments[i].Order < testaments[j].Order })
		return testaments, nil
	}

	testaments, err := r.client.Testaments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}
	return testaments, nil
}

// FetchBooks returns the books of a testament, offline when possible.
func (r *Repository) FetchBooks(ctx context.Context, testamentID int64) ([]*models.Book, error) {
	r.mu.Lock()
	local := r.hasLocalData
	var books []*models.Book
	if local {
		for _, id := range r.order {
			if b := r.books[id]; b.TestamentID == testamentID {
				// Strip chapters so book listings stay small.
				books = append(books, &models.Book{
					ID:            b.ID,
					TestamentID:   b.TestamentID,
					Name:          b.Name,
					Order:         b.Order,
					ChaptersCount: b.ChaptersCount,
				})
			}
		}
	}
	r.mu.Unlock()

	if local {
		return books, nil
	}

	books, err := r.client.Books(ctx, testamentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}
	return books, nil
}

// FetchChapter is the primary read path. Lookup order: in-memory
// dataset, then remote fetch. Once local data is loaded, no network
// call is ever made for a chapter the dataset covers; that is the
// entire point of offline mode. The returned chapter also becomes the
// current selection.
func (r *Repository) FetchChapter(ctx context.Context, bookID string, number int) (*models.Chapter, error) {
	if chapter := r.lookupLocal(bookID, number); chapter != nil {
		r.setCurrent(chapter)
		return chapter, nil
	}

	chapter, err := r.client.Chapter(ctx, bookID, number)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}
	r.setCurrent(chapter)
	return chapter, nil
}

func (r *Repository) lookupLocal(bookID string, number int) *models.Chapter {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[bookID]
	if !ok {
		return nil
	}
	if number < 1 || number > book.ChaptersCount {
		return nil
	}
	for _, ch := range book.Chapters {
		if ch.Number == number {
			return ch
		}
	}
	return nil
}

// MergeBook adds a lazily downloaded book to the in-memory index. It
// does not mark the dataset as complete and persists nothing.
func (r *Repository) MergeBook(book *models.Book) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[book.ID]; !ok {
		r.order = append(r.order, book.ID)
	}
	r.books[book.ID] = book
}

// CurrentChapter returns the currently displayed selection, or nil.
func (r *Repository) CurrentChapter() *models.Chapter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// ClearCurrentChapter resets the displayed selection without touching
// persisted data. It is purely a UI-state reset signal.
func (r *Repository) ClearCurrentChapter() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = nil
}

func (r *Repository) setCurrent(chapter *models.Chapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = chapter
}
