// Package db provides the chunked, file-backed heap that a symbol index is
// stored in.
//
// # Overview
//
// A database is a single binary file made of fixed-size chunks
// (format.ChunkSize, 16 KiB). Every persisted record is addressed by a RecPtr:
// an absolute byte offset into the file, with 0 reserved as null.
//
//	[Chunk 0: version | free-list heads | reserved] [Chunk 1] ... [Chunk N]
//
// Chunk 0 is the header chunk. Bytes [0,4) hold the database version and
// bytes [4,4100) hold one free-list head pointer per block-size class; those
// are maintained by the alloc package.
//
// # Chunks
//
// Chunks are materialized lazily. The first access to an offset inside a
// chunk performs exactly one file access to bring it in: a single mmap of
// that chunk on Linux and macOS, or a single ReadAt into a private buffer
// elsewhere (or when SYMDB_NO_MMAP is set). Once materialized a chunk stays
// cached until Close; there is no eviction.
//
//	d, err := db.Open("/tmp/index.pdom", nil)
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
//
//	v, err := d.Int(ptr)
//
// # Persistence
//
// Save flushes every dirty chunk (msync for mapped chunks, WriteAt for
// buffered ones) and then syncs the file descriptor. Close saves implicitly.
//
// # Thread Safety
//
// Database instances are not thread-safe. Callers must serialize access
// externally; pkg/symdb does so with a single owner mutex.
//
// # Related Packages
//
//   - github.com/joshuapare/symdb/db/alloc: block allocation and free lists
//   - github.com/joshuapare/symdb/db/strstore: string records
//   - github.com/joshuapare/symdb/db/typecodec: type marshalling
//   - github.com/joshuapare/symdb/db/ringlist: intrusive record lists
//   - github.com/joshuapare/symdb/db/verify: structural validation
package db
