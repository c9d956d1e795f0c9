/*
Package symdb opens a symbol database file and hands out the layers built on
it: the block allocator, the string store, type slots and member lists.

# Quick Start

	ix, err := symdb.Open("index.pdom", nil)
	if err != nil {
	    log.Fatal(err)
	}
	defer ix.Close()

	name, err := ix.Strings().New("std::vector")
	...
	err = ix.Save()

# Sharing an Index

The layers underneath do no locking. An Index shared between goroutines
serializes work through Do:

	err := ix.Do(func() error {
	    rec, err := ix.Allocator().Malloc(64)
	    ...
	})

Save, Clear, Stats, Verify and Close take the same lock themselves, and so
does the Prometheus collector returned by Collector.
*/
package symdb
