// This file defines the core data structures (models) for the scripture
// corpus: testaments, books, chapters and verses.

package models

import "time"

// Testament is a top-level grouping of books. The set is small and
// fixed; testaments never change once downloaded.
type Testament struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// Book belongs to exactly one testament. ChaptersCount is authoritative
// for bounds-checking chapter navigation.
type Book struct {
	ID            string     `json:"id"`
	TestamentID   int64      `json:"testament_id"`
	Name          string     `json:"name"`
	Order         int        `json:"order"`
	ChaptersCount int        `json:"chapters_count"`
	Chapters      []*Chapter `json:"chapters,omitempty"` // omitempty hides it when not loaded
}

// Chapter is addressed by (book id, chapter number); it is not
// persisted as a separate entity.
type Chapter struct {
	BookID string   `json:"book_id"`
	Number int      `json:"number"`
	Verses []*Verse `json:"verses"`
}

// Verse numbers are unique within a chapter but not necessarily
// contiguous. Do not assume verse N exists.
type Verse struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// BibleDataset is the full offline snapshot. Its presence in the local
// store implies every chapter of every book is available offline;
// partial datasets are never persisted.
type BibleDataset struct {
	Books        []*Book   `json:"books"`
	DownloadedAt time.Time `json:"downloaded_at"`
}
