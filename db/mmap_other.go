//go:build !linux && !darwin

package db

import (
	"errors"
	"os"
)

const mmapSupported = false

var errNoMmap = errors.New("db: mmap not supported on this platform")

func mapChunk(*os.File, int64) ([]byte, error) { return nil, errNoMmap }

func unmapChunk([]byte) error { return nil }

func syncMapped([]byte) error { return errNoMmap }
