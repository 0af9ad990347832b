package core

import "context"

// Store defines the contract for durable note storage.
// Adhering to this interface keeps the core independent of the underlying
// medium (memory, SQLite, plain files).
//
// Observe methods return live streams: the current snapshot is delivered
// first, then a new one after every mutation that affects the query. A stream
// is closed once ctx is cancelled, which is the only way to unsubscribe.
// Slow readers never block writers; they see the latest snapshot when they
// next receive.
type Store interface {
	// ObserveAll streams every note, ordered by identifier descending.
	ObserveAll(ctx context.Context) (<-chan []Record, error)

	// ObserveOne streams the note with the given id, or nil while it does not exist.
	ObserveOne(ctx context.Context, id ID) (<-chan *Record, error)

	// Insert persists a new row and returns its assigned id. r.ID is ignored.
	Insert(ctx context.Context, r Record) (ID, error)

	// Update replaces the row with r.ID. A missing row is not an error.
	Update(ctx context.Context, r Record) error

	// Delete removes the row with r.ID. Deleting an absent row is not an error.
	Delete(ctx context.Context, r Record) error

	// Initialize ensures the medium is ready (directories, schema).
	Initialize(ctx context.Context) error

	// Close releases the medium. Open streams are closed.
	Close() error
}
