package db

import (
	"errors"
	"fmt"
)

var (
	// ErrIO wraps every file open/grow/read/write/sync failure. It is fatal to
	// the database instance.
	ErrIO = errors.New("db: i/o failure")

	// ErrClosed indicates use of a database after Close.
	ErrClosed = errors.New("db: database closed")

	// ErrBadOffset indicates an offset outside the current chunk table.
	ErrBadOffset = errors.New("db: offset outside database")

	// ErrCorrupt indicates a file whose size or header cannot be a database.
	ErrCorrupt = errors.New("db: corrupt database file")

	// ErrDatabaseFull indicates the 32-bit record pointer space is exhausted.
	ErrDatabaseFull = errors.New("db: address space exhausted")
)

func ioErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
