package models

import "time"

// SyncState tags where a note stands relative to the remote notes API.
type SyncState string

const (
	SyncStateLocal   SyncState = "local"   // created or changed while offline, not yet pushed
	SyncStateSyncing SyncState = "syncing" // replay in flight
	SyncStateSynced  SyncState = "synced"  // server-confirmed id assigned
	SyncStateFailed  SyncState = "failed"  // last replay attempt failed, still queued
)

// Note is an annotation tied to (book, chapter, verse set). Verses may
// be empty for devotional notes. Notes created offline carry a
// temporary negative id until the server assigns a real one.
type Note struct {
	ID        int64     `json:"id"`
	BookID    string    `json:"book_id"`
	Chapter   int       `json:"chapter"`
	Verses    []int     `json:"verses"`
	Content   string    `json:"content,omitempty"`
	SyncState SyncState `json:"sync_state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsLocal reports whether the note still carries a temporary id.
func (n *Note) IsLocal() bool { return n.ID < 0 }

// PendingOpType enumerates the mutations that can wait in the queue.
type PendingOpType string

const (
	PendingCreate PendingOpType = "create"
	PendingUpdate PendingOpType = "update"
	PendingDelete PendingOpType = "delete"
)

// PendingOp is one queued mutation awaiting network availability. Ops
// are replayed strictly in insertion order and removed only after a
// confirmed remote success.
type PendingOp struct {
	ID        string        `json:"id"` // uuid, assigned at enqueue time
	Type      PendingOpType `json:"type"`
	NoteID    int64         `json:"note_id"`
	Note      *Note         `json:"note,omitempty"` // snapshot for create/update
	CreatedAt time.Time     `json:"created_at"`
}
