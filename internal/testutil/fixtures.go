package testutil

import (
	"fmt"
	"time"

	"github.com/tobiakanji/logos-go/internal/models"
)

// FixtureDataset builds a small but complete corpus: every book's every
// chapter has verses, matching the completeness invariant of a
// persisted dataset.
func FixtureDataset() *models.BibleDataset {
	return &models.BibleDataset{
		Books: []*models.Book{
			FixtureBook("genesis", 1, "Genesis", 1, 2),
			FixtureBook("exodus", 1, "Exodus", 2, 1),
			FixtureBook("matthew", 2, "Matthew", 1, 1),
		},
		DownloadedAt: time.Now(),
	}
}

// FixtureBook builds a book with the given number of chapters. Genesis
// chapter 1 carries 31 verses; every other chapter carries 5.
func FixtureBook(id string, testamentID int64, name string, order, chapters int) *models.Book {
	book := &models.Book{
		ID:            id,
		TestamentID:   testamentID,
		Name:          name,
		Order:         order,
		ChaptersCount: chapters,
	}
	for n := 1; n <= chapters; n++ {
		verseCount := 5
		if id == "genesis" && n == 1 {
			verseCount = 31
		}
		chapter := &models.Chapter{BookID: id, Number: n}
		for v := 1; v <= verseCount; v++ {
			chapter.Verses = append(chapter.Verses, &models.Verse{
				Number: v,
				Text:   fmt.Sprintf("%s %d:%d text", name, n, v),
			})
		}
		book.Chapters = append(book.Chapters, chapter)
	}
	return book
}

// FixtureTestaments matches the testaments referenced by FixtureDataset.
func FixtureTestaments() []*models.Testament {
	return []*models.Testament{
		{ID: 1, Name: "Old Testament", Order: 1},
		{ID: 2, Name: "New Testament", Order: 2},
	}
}
