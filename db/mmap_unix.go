//go:build linux || darwin

package db

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/symdb/internal/format"
)

const mmapSupported = true

// mapChunk maps one chunk of f read-write and shared, so stores land in the
// page cache and Save only has to msync.
func mapChunk(f *os.File, off int64) ([]byte, error) {
	return unix.Mmap(
		int(f.Fd()),
		off,
		format.ChunkSize,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED,
	)
}

func unmapChunk(b []byte) error {
	return unix.Munmap(b)
}

// syncMapped flushes a mapped chunk to disk.
func syncMapped(b []byte) error {
	return unix.Msync(b, unix.MS_SYNC)
}
