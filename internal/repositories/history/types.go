package history

import (
	"github.com/rustweek/royale/internal/models"
)

// AppendEntryInput contains the tournament result to record
type AppendEntryInput struct {
	// Entry is the finished tournament. A missing ID is generated.
	Entry *models.HistoryEntry
}

// AppendEntryOutput contains the stored entry id
type AppendEntryOutput struct {
	EntryID string
}

// ListEntriesInput bounds the listing
type ListEntriesInput struct {
	// Limit caps the number of entries returned; 0 means all
	Limit int
}

// ListEntriesOutput contains the entries, newest first
type ListEntriesOutput struct {
	Entries []*models.HistoryEntry
}
