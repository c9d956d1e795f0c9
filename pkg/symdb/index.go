package symdb

import (
	"errors"
	"fmt"
	"sync"

	"github.com/joshuapare/symdb/db"
	"github.com/joshuapare/symdb/db/alloc"
	"github.com/joshuapare/symdb/db/ringlist"
	"github.com/joshuapare/symdb/db/strstore"
	"github.com/joshuapare/symdb/db/typecodec"
	"github.com/joshuapare/symdb/db/verify"
	"github.com/joshuapare/symdb/metrics"
)

// Index is an open symbol database.
type Index struct {
	mu sync.Mutex
	d  *db.Database
	a  *alloc.BlockAllocator
	s  *strstore.Store
}

// Open opens or creates the database at path.
func Open(path string, opts *Options) (*Index, error) {
	if opts == nil {
		opts = &Options{}
	}
	d, err := db.Open(path, &db.Options{
		Version:     opts.Version,
		DisableMmap: opts.DisableMmap,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	a := alloc.New(d)
	ix := &Index{d: d, a: a, s: strstore.New(d, a)}

	if opts.VerifyOnOpen {
		if _, err := verify.All(d); err != nil {
			return nil, errors.Join(fmt.Errorf("symdb: %s failed verification: %w", path, err), d.Close())
		}
	}
	return ix, nil
}

// DB returns the underlying database.
func (ix *Index) DB() *db.Database { return ix.d }

// Allocator returns the block allocator.
func (ix *Index) Allocator() *alloc.BlockAllocator { return ix.a }

// Strings returns the string store.
func (ix *Index) Strings() *strstore.Store { return ix.s }

// Types returns a type slot store that resolves entities through r.
func (ix *Index) Types(r typecodec.Resolver) *typecodec.Store {
	return typecodec.NewStore(ix.d, ix.a, r)
}

// List returns the member list anchored at anchor.
func (ix *Index) List(anchor db.RecPtr) *ringlist.List {
	return ringlist.New(ix.d, ix.a, anchor)
}

// Do runs fn while holding the index lock.
func (ix *Index) Do(fn func() error) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return fn()
}

// Save flushes dirty chunks to disk.
func (ix *Index) Save() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.d.Save()
}

// Clear frees every record; the file keeps its size and version.
func (ix *Index) Clear() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.a.Clear()
}

// Stats returns the heap summary.
func (ix *Index) Stats() (alloc.Stats, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.a.Stats()
}

// Verify checks every heap invariant.
func (ix *Index) Verify() (verify.Report, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return verify.All(ix.d)
}

// Collector returns a Prometheus collector over the index.
func (ix *Index) Collector(namespace string) *metrics.Collector {
	return metrics.NewCollector(ix, namespace)
}

// Close saves and closes the database.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.d.Close()
}
