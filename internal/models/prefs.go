package models

// LastRead records the most recently opened chapter.
type LastRead struct {
	BookID        string `json:"book_id"`
	ChapterNumber int    `json:"chapter_number"`
}

// ReadingPreferences is a singleton per installation, mutated by theme
// and font controls and by every successful chapter navigation.
// FontSize is stored as given; clamping to [12, 30] is the caller's
// contract, enforced at the API boundary and not re-validated here.
type ReadingPreferences struct {
	ThemeID  string    `json:"theme_id"`
	FontSize int       `json:"font_size"`
	LastRead *LastRead `json:"last_read,omitempty"`
}
