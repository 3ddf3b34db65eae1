// Package pagestore defines the external page-addressable block-device
// contract the Pager reads and writes through, plus two concrete
// collaborators: an in-memory store for tests and a local-file store that
// stands in for the real remote blob transport (out of scope for this
// module; see SPEC_FULL.md §1).
package pagestore

import "context"

// PageSize is the fixed size of every page region, P in SPEC_FULL.md §3.
const PageSize = 4096

// Store is the contract a remote page-addressable blob exposes: fixed-size,
// overwritable 4 KiB regions addressed by a dense page ID.
type Store interface {
	// ReadPage returns the PageSize bytes at pageID. Reading a page never
	// written returns a zero-filled page, matching a freshly allocated
	// blob region.
	ReadPage(ctx context.Context, pageID uint64) ([]byte, error)

	// WritePage overwrites the PageSize bytes at pageID. len(data) must
	// equal PageSize.
	WritePage(ctx context.Context, pageID uint64, data []byte) error

	// Flush ensures all prior WritePage calls are durable.
	Flush(ctx context.Context) error

	// PageSize reports the fixed page size this store was opened with.
	PageSize() int
}
