// Package notes manages verse annotations: optimistic local mutation
// first, remote call second. Every mutation flows through a persisted
// pending queue that is drained strictly in insertion order, so an
// update-then-delete on one note can never replay as delete-then-update.
package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tobiakanji/logos-go/internal/kvstore"
	"github.com/tobiakanji/logos-go/internal/models"
	"github.com/tobiakanji/logos-go/internal/remote"
	"github.com/tobiakanji/logos-go/internal/repository"
)

// Service owns the Note lifecycle and is the sole writer to the notes
// cache key and the pending queue key.
type Service struct {
	kv     *kvstore.Store
	client *remote.Client
	repo   *repository.Repository

	mu          sync.Mutex
	nextLocalID int64                     // temporary ids for offline-created notes, always negative
	verseCache  map[string]map[int]string // "bookID/chapter" -> verse number -> text
}

func New(kv *kvstore.Store, client *remote.Client, repo *repository.Repository) *Service {
	return &Service{
		kv:          kv,
		client:      client,
		repo:        repo,
		nextLocalID: -1,
		verseCache:  make(map[string]map[int]string),
	}
}

// FetchNotes loads the list from the remote API and refreshes the local
// cache. On failure it falls back to the last-cached list: stale but
// available beats an empty error state.
func (s *Service) FetchNotes(ctx context.Context) ([]*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remoteNotes, err := s.client.Notes(ctx)
	if err != nil {
		log.Printf("Notes fetch failed, serving cached list: %v", err)
		return s.loadCache(), nil
	}

	cache := s.loadCache()
	queued := make(map[int64]bool)
	for _, op := range s.loadQueue() {
		queued[op.NoteID] = true
	}

	merged := make([]*models.Note, 0, len(remoteNotes))
	for _, n := range remoteNotes {
		// An unreplayed local mutation outranks the server copy. A
		// queued update keeps the cached edit; a queued delete keeps
		// the note gone. The queue reconciles on the next drain.
		if queued[n.ID] {
			if pending := findNote(cache, n.ID); pending != nil {
				merged = append(merged, pending)
			}
			continue
		}
		n.SyncState = models.SyncStateSynced
		merged = append(merged, n)
	}
	// Keep not-yet-synced local notes; the server does not know them.
	for _, n := range cache {
		if n.IsLocal() {
			merged = append(merged, n)
		}
	}
	s.saveCache(merged)
	return merged, nil
}

// CachedNotes returns the local list without touching the network.
func (s *Service) CachedNotes() []*models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCache()
}

// CreateNote applies the mutation locally with a temporary negative id,
// queues it, and attempts an immediate replay. The returned note
// carries the server id if the replay succeeded, the local id if not.
func (s *Service) CreateNote(ctx context.Context, bookID string, chapter int, verses []int, content string) (*models.Note, error) {
	s.mu.Lock()
	now := time.Now()
	note := &models.Note{
		ID:        s.nextLocalID,
		BookID:    bookID,
		Chapter:   chapter,
		Verses:    verses,
		Content:   content,
		SyncState: models.SyncStateLocal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextLocalID--

	cache := s.loadCache()
	cache = append(cache, note)
	s.saveCache(cache)
	s.enqueue(&models.PendingOp{
		ID:        uuid.New().String(),
		Type:      models.PendingCreate,
		NoteID:    note.ID,
		Note:      cloneNote(note),
		CreatedAt: now,
	})
	id := note.ID
	s.mu.Unlock()

	s.ProcessPending(ctx)
	return s.noteByIDOrLatest(id), nil
}

// UpdateNote applies changes locally and queues the sync.
func (s *Service) UpdateNote(ctx context.Context, id int64, verses []int, content string) (*models.Note, error) {
	s.mu.Lock()
	cache := s.loadCache()
	note := findNote(cache, id)
	if note == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("note %d not found", id)
	}
	note.Verses = verses
	note.Content = content
	note.UpdatedAt = time.Now()
	if note.SyncState == models.SyncStateSynced {
		note.SyncState = models.SyncStateLocal
	}
	s.saveCache(cache)
	s.enqueue(&models.PendingOp{
		ID:        uuid.New().String(),
		Type:      models.PendingUpdate,
		NoteID:    note.ID,
		Note:      cloneNote(note),
		CreatedAt: note.UpdatedAt,
	})
	s.mu.Unlock()

	s.ProcessPending(ctx)
	return s.noteByIDOrLatest(id), nil
}

// DeleteNote removes the note locally right away; the remote deletion
// is queued and fired best-effort. Deleting a note that never reached
// the server just cancels its queued operations.
func (s *Service) DeleteNote(ctx context.Context, id int64) error {
	s.mu.Lock()
	cache := s.loadCache()
	if findNote(cache, id) == nil {
		s.mu.Unlock()
		return fmt.Errorf("note %d not found", id)
	}
	s.saveCache(removeNote(cache, id))

	if id < 0 {
		// The server never saw this note; drop its pending ops instead
		// of replaying a create that would immediately be deleted.
		queue := s.loadQueue()
		kept := queue[:0]
		for _, op := range queue {
			if op.NoteID != id {
				kept = append(kept, op)
			}
		}
		s.saveQueue(kept)
		s.mu.Unlock()
		return nil
	}

	s.enqueue(&models.PendingOp{
		ID:        uuid.New().String(),
		Type:      models.PendingDelete,
		NoteID:    id,
		CreatedAt: time.Now(),
	})
	s.mu.Unlock()

	s.ProcessPending(ctx)
	return nil
}

// PendingCount reports how many operations await replay.
func (s *Service) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loadQueue())
}

// ProcessPending drains the queue in FIFO order. Each entry is removed
// only after a confirmed remote success; the first failure stops the
// drain and leaves the remainder queued for the next connectivity
// event. There is no backoff; retry is level-triggered on reconnect.
func (s *Service) ProcessPending(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.loadQueue()
	if len(queue) == 0 {
		return
	}

	for len(queue) > 0 {
		op := queue[0]
		if err := s.replay(ctx, op, &queue); err != nil {
			log.Printf("Pending %s for note %d left queued: %v", op.Type, op.NoteID, err)
			s.markFailed(op.NoteID)
			s.saveQueue(queue)
			return
		}
		queue = queue[1:]
		s.saveQueue(queue)
	}
}

// replay executes one queued operation. For a successful create, later
// queued ops that still reference the temporary id are rewritten to the
// server-assigned id so FIFO replay stays coherent.
func (s *Service) replay(ctx context.Context, op *models.PendingOp, queue *[]*models.PendingOp) error {
	switch op.Type {
	case models.PendingCreate:
		s.markSyncing(op.NoteID)
		snapshot := cloneNote(op.Note)
		snapshot.ID = 0 // the server assigns the real id
		saved, err := s.client.CreateNote(ctx, snapshot)
		if err != nil {
			return err
		}
		s.adoptServerID(op.NoteID, saved.ID)
		for _, later := range (*queue)[1:] {
			if later.NoteID == op.NoteID {
				later.NoteID = saved.ID
				if later.Note != nil {
					later.Note.ID = saved.ID
				}
			}
		}
		return nil

	case models.PendingUpdate:
		s.markSyncing(op.NoteID)
		saved, err := s.client.UpdateNote(ctx, op.Note)
		if err != nil {
			return err
		}
		s.markSynced(saved)
		return nil

	case models.PendingDelete:
		return s.client.DeleteNote(ctx, op.NoteID)

	default:
		// Unknown op type: drop it rather than wedge the queue forever.
		log.Printf("Dropping unknown pending op type %q", op.Type)
		return nil
	}
}

// --- cache / queue persistence -------------------------------------

// loadCache reads the cached note list; read failures degrade to an
// empty list. Callers must hold s.mu.
func (s *Service) loadCache() []*models.Note {
	raw, ok, err := s.kv.Get(kvstore.KeyNotesCache)
	if err != nil || !ok {
		if err != nil {
			log.Printf("Failed to read notes cache: %v", err)
		}
		return nil
	}
	var cache []*models.Note
	if err := json.Unmarshal([]byte(raw), &cache); err != nil {
		log.Printf("Notes cache is corrupt, starting empty: %v", err)
		return nil
	}
	return cache
}

func (s *Service) saveCache(cache []*models.Note) {
	encoded, err := json.Marshal(cache)
	if err != nil {
		log.Printf("Failed to encode notes cache: %v", err)
		return
	}
	if err := s.kv.Set(kvstore.KeyNotesCache, string(encoded)); err != nil {
		log.Printf("Failed to persist notes cache: %v", err)
	}
}

func (s *Service) loadQueue() []*models.PendingOp {
	raw, ok, err := s.kv.Get(kvstore.KeyNotesPendingQueue)
	if err != nil || !ok {
		if err != nil {
			log.Printf("Failed to read pending queue: %v", err)
		}
		return nil
	}
	var queue []*models.PendingOp
	if err := json.Unmarshal([]byte(raw), &queue); err != nil {
		log.Printf("Pending queue is corrupt, starting empty: %v", err)
		return nil
	}
	return queue
}

func (s *Service) saveQueue(queue []*models.PendingOp) {
	encoded, err := json.Marshal(queue)
	if err != nil {
		log.Printf("Failed to encode pending queue: %v", err)
		return
	}
	if err := s.kv.Set(kvstore.KeyNotesPendingQueue, string(encoded)); err != nil {
		log.Printf("Failed to persist pending queue: %v", err)
	}
}

func (s *Service) enqueue(op *models.PendingOp) {
	queue := s.loadQueue()
	queue = append(queue, op)
	s.saveQueue(queue)
}

// --- sync-state bookkeeping ----------------------------------------

func (s *Service) markSyncing(id int64) { s.setState(id, models.SyncStateSyncing) }
func (s *Service) markFailed(id int64)  { s.setState(id, models.SyncStateFailed) }

func (s *Service) setState(id int64, state models.SyncState) {
	cache := s.loadCache()
	if note := findNote(cache, id); note != nil {
		note.SyncState = state
		s.saveCache(cache)
	}
}

// adoptServerID swaps a temporary local id for the server-assigned one.
func (s *Service) adoptServerID(localID, serverID int64) {
	cache := s.loadCache()
	if note := findNote(cache, localID); note != nil {
		note.ID = serverID
		note.SyncState = models.SyncStateSynced
		s.saveCache(cache)
	}
}

func (s *Service) markSynced(saved *models.Note) {
	cache := s.loadCache()
	if note := findNote(cache, saved.ID); note != nil {
		note.SyncState = models.SyncStateSynced
		note.UpdatedAt = saved.UpdatedAt
		s.saveCache(cache)
	}
}

func (s *Service) noteByIDOrLatest(id int64) *models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	cache := s.loadCache()
	if note := findNote(cache, id); note != nil {
		return note
	}
	// A successful immediate replay replaced the local id; the adopted
	// note is the most recently appended one.
	if len(cache) > 0 {
		return cache[len(cache)-1]
	}
	return nil
}

func findNote(cache []*models.Note, id int64) *models.Note {
	for _, n := range cache {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func removeNote(cache []*models.Note, id int64) []*models.Note {
	kept := cache[:0]
	for _, n := range cache {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	return kept
}

func cloneNote(n *models.Note) *models.Note {
	c := *n
	c.Verses = append([]int(nil), n.Verses...)
	return &c
}

// --- verse preview cache -------------------------------------------

// EnsureChapterVerses lazily resolves and caches verse text for a
// chapter referenced by a note, so the note list can render previews
// without re-fetching the chapter on every render.
func (s *Service) EnsureChapterVerses(ctx context.Context, bookID string, chapter int) error {
	key := chapterKey(bookID, chapter)
	s.mu.Lock()
	_, ok := s.verseCache[key]
	s.mu.Unlock()
	if ok {
		return nil
	}

	ch, err := s.repo.FetchChapter(ctx, bookID, chapter)
	if err != nil {
		return err
	}

	verses := make(map[int]string, len(ch.Verses))
	for _, v := range ch.Verses {
		verses[v.Number] = v.Text
	}
	s.mu.Lock()
	s.verseCache[key] = verses
	s.mu.Unlock()
	return nil
}

// VerseTextForNote is a pure lookup against the chapter-verse cache. It
// returns "" when the chapter has not been resolved yet; callers must
// call EnsureChapterVerses first. There is deliberately no auto-trigger
// here, to avoid unbounded fetch fan-out from a list render.
func (s *Service) VerseTextForNote(note *models.Note) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	verses, ok := s.verseCache[chapterKey(note.BookID, note.Chapter)]
	if !ok {
		return ""
	}
	var parts []string
	for _, num := range note.Verses {
		if text, ok := verses[num]; ok {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func chapterKey(bookID string, chapter int) string {
	return fmt.Sprintf("%s/%d", bookID, chapter)
}
