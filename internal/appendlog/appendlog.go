// Package appendlog defines the external append-only log contract the WAL
// reads and writes through, plus two concrete collaborators: an in-memory
// log for tests and a local-file log standing in for the real remote log
// transport (out of scope for this module; see SPEC_FULL.md §1).
package appendlog

import "context"

// Log is the contract a remote append-only log blob exposes: atomic
// per-call appends, a full-read stream, and delete+create for truncation.
type Log interface {
	// AppendBlock appends data as a single atomic unit.
	AppendBlock(ctx context.Context, data []byte) error

	// ReadAll returns the concatenation of every block appended so far,
	// in append order.
	ReadAll(ctx context.Context) ([]byte, error)

	// Delete removes the log. Must be followed by Create before further
	// use.
	Delete(ctx context.Context) error

	// Create (re)creates an empty log.
	Create(ctx context.Context) error
}
