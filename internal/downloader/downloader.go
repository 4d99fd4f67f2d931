// Package downloader fetches the scripture corpus from the upstream
// content API and persists it into the local store. The full-dataset
// download is all-or-nothing: a failed or interrupted download leaves
// no trace in the local store.
package downloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tobiakanji/logos-go/internal/kvstore"
	"github.com/tobiakanji/logos-go/internal/models"
	"github.com/tobiakanji/logos-go/internal/remote"
	"github.com/tobiakanji/logos-go/internal/websocket"
)

// ErrDownloadInProgress is returned when a full-dataset download is
// already running. There is one corpus; two downloads make no sense.
var ErrDownloadInProgress = errors.New("a download is already in progress")

// ProgressFunc receives coarse progress at network-chunk boundaries.
type ProgressFunc func(p models.DownloadProgress)

// Manager coordinates bulk and per-book downloads.
type Manager struct {
	kv     *kvstore.Store
	client *remote.Client
	hub    *websocket.Hub

	mu     sync.Mutex
	active bool
}

// New creates a Manager. hub may be nil (CLI use).
func New(kv *kvstore.Store, client *remote.Client, hub *websocket.Hub) *Manager {
	return &Manager{kv: kv, client: client, hub: hub}
}

// Active reports whether a full-dataset download is currently running.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// HasBibleData reports whether the full offline dataset is persisted.
func (m *Manager) HasBibleData() bool {
	return m.kv.Has(kvstore.KeyBibleDataset)
}

// DownloadFullDataset retrieves the complete corpus, reporting progress
// via onProgress (may be nil) and over the websocket hub. On success the
// assembled dataset is written under a single key and returned. On any
// network, parse or cancellation failure nothing is persisted. There is
// no retry policy here; callers decide whether to offer one.
func (m *Manager) DownloadFullDataset(ctx context.Context, onProgress ProgressFunc) (*models.BibleDataset, error) {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return nil, ErrDownloadInProgress
	}
	m.active = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.active = false
		m.mu.Unlock()
	}()

	m.broadcast("Starting scripture download...", 0, "in_progress", false)

	dataset, err := m.client.FullDataset(ctx, func(written, total int64) {
		p := models.DownloadProgress{TotalBytes: total, WrittenBytes: written}
		if total > 0 {
			p.ProgressPercent = float64(written) / float64(total) * 100
		}
		if onProgress != nil {
			onProgress(p)
		}
		m.broadcast(fmt.Sprintf("Downloaded %d bytes", written), p.ProgressPercent, "in_progress", false)
	})
	if err != nil {
		m.broadcast(fmt.Sprintf("Download failed: %v", err), 0, "failed", true)
		return nil, err
	}

	dataset.DownloadedAt = time.Now()
	encoded, err := json.Marshal(dataset)
	if err != nil {
		m.broadcast("Download failed: could not encode dataset", 0, "failed", true)
		return nil, fmt.Errorf("failed to encode dataset: %w", err)
	}
	if err := m.kv.Set(kvstore.KeyBibleDataset, string(encoded)); err != nil {
		m.broadcast("Download failed: could not persist dataset", 0, "failed", true)
		return nil, fmt.Errorf("failed to persist dataset: %w", err)
	}

	log.Printf("Scripture dataset downloaded: %d books", len(dataset.Books))
	m.broadcast("Download finished successfully.", 100, "completed", true)
	return dataset, nil
}

// DownloadBook fetches a single book's chapters on demand, for users
// who declined the full download. The result is returned for the
// repository to merge in memory; it makes no claim of dataset-level
// completeness and does not touch the dataset key.
func (m *Manager) DownloadBook(ctx context.Context, bookID string) (*models.Book, error) {
	book, err := m.client.Book(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("could not download book %s: %w", bookID, err)
	}
	return book, nil
}

func (m *Manager) broadcast(message string, progress float64, status string, done bool) {
	if m.hub == nil {
		return
	}
	m.hub.BroadcastJSON(models.ProgressUpdate{
		JobID:    "bible-download",
		Message:  message,
		Progress: progress,
		Status:   status,
		Done:     done,
	})
}
