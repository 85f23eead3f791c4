package storage

import "time"

// Document is a markdown file the checklist has read at least once.
type Document struct {
	ID            string
	Path          string
	CheckboxCount int
	OpenCount     int
	ScannedAt     time.Time
}

// Completion records one checkbox toggled to a done status.
type Completion struct {
	ID           string
	DocumentID   string
	Line         int
	Description  string
	StatusSymbol string
	Rule         string
	DoneAt       time.Time
	NextDueAt    *time.Time
	CreatedAt    time.Time
}

type DocumentListFilter struct {
	Limit  int
	Offset int
}

type CompletionListFilter struct {
	DocumentID string
	Since      *time.Time
	Recurring  *bool
	Limit      int
	Offset     int
}
