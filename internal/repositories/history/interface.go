package history

import "context"

// Repository is the append-only store of finished tournament results
type Repository interface {
	// AppendEntry records one finished tournament
	AppendEntry(ctx context.Context, input *AppendEntryInput) (*AppendEntryOutput, error)

	// ListEntries returns the most recent entries, newest first
	ListEntries(ctx context.Context, input *ListEntriesInput) (*ListEntriesOutput, error)
}
