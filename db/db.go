package db

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/symdb/internal/format"
	"github.com/joshuapare/symdb/internal/logger"
)

// EnvNoMmap forces the buffered chunk fallback when set to a non-empty value.
const EnvNoMmap = "SYMDB_NO_MMAP"

// Options configures Open. A nil *Options means defaults.
type Options struct {
	// Version is written to offset 0 when a new file is created.
	// Existing files keep their stored version.
	Version int32

	// DisableMmap reads chunks into private buffers instead of mapping them.
	DisableMmap bool

	// Logger overrides the module logger for this database.
	Logger *slog.Logger
}

// Database is an open database file.
type Database struct {
	path   string
	f      *os.File
	chunks []*Chunk // nil entries are not yet materialized
	mmap   bool
	log    *slog.Logger
	loads  int // chunk materializations that touched the file
	closed bool
}

// Open opens the database at path, creating it with one zeroed header chunk
// when the file is absent or empty.
func Open(path string, opts *Options) (*Database, error) {
	if opts == nil {
		opts = &Options{}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, ioErr("open", err)
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ioErr("stat", err)
	}
	sz := st.Size()
	if sz%format.ChunkSize != 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: size %d is not a multiple of %d", ErrCorrupt, sz, format.ChunkSize)
	}
	if sz/format.ChunkSize > format.MaxChunks {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %d chunks exceeds address space", ErrCorrupt, sz/format.ChunkSize)
	}

	d := &Database{
		path: path,
		f:    f,
		mmap: mmapSupported && !opts.DisableMmap && os.Getenv(EnvNoMmap) == "",
		log:  logger.Or(opts.Logger).With("db", path),
	}

	if sz == 0 {
		if err := f.Truncate(format.ChunkSize); err != nil {
			_ = f.Close()
			return nil, ioErr("create header chunk", err)
		}
		d.chunks = make([]*Chunk, 1)
		header, err := d.load(0, true)
		if err != nil {
			_ = d.Close()
			return nil, err
		}
		header.PutInt(format.VersionOffset, opts.Version)
		d.log.Debug("created database", "version", opts.Version, "mmap", d.mmap)
		return d, nil
	}

	d.chunks = make([]*Chunk, sz/format.ChunkSize)
	d.log.Debug("opened database", "chunks", len(d.chunks), "mmap", d.mmap)
	return d, nil
}

// Path returns the file path the database was opened with.
func (d *Database) Path() string { return d.path }

// ChunkCount returns the number of chunks in the chunk table, header included.
func (d *Database) ChunkCount() int { return len(d.chunks) }

// Size returns the file size implied by the chunk table.
func (d *Database) Size() int64 { return int64(len(d.chunks)) * format.ChunkSize }

// Mapped reports whether new chunks are materialized with mmap.
func (d *Database) Mapped() bool { return d.mmap }

// Logger returns the database's logger.
func (d *Database) Logger() *slog.Logger { return d.log }

// Loads returns how many chunk materializations read or mapped the file.
func (d *Database) Loads() int { return d.loads }

// Version returns the version stored in the header chunk.
func (d *Database) Version() (int32, error) {
	return d.Int(format.VersionOffset)
}

// SetVersion stores v in the header chunk.
func (d *Database) SetVersion(v int32) error {
	return d.PutInt(format.VersionOffset, v)
}

// Chunk returns the chunk covering off, materializing it on first use.
func (d *Database) Chunk(off RecPtr) (*Chunk, error) {
	if d.closed {
		return nil, ErrClosed
	}
	i := format.ChunkIndex(uint32(off))
	if i >= len(d.chunks) {
		return nil, fmt.Errorf("%w: %s (chunks=%d)", ErrBadOffset, off, len(d.chunks))
	}
	return d.load(i, false)
}

// Header returns chunk 0.
func (d *Database) Header() (*Chunk, error) {
	return d.Chunk(0)
}

// GrowChunk appends one zeroed chunk, extends the chunk table and returns the
// offset of the new chunk's first byte.
func (d *Database) GrowChunk() (RecPtr, error) {
	if d.closed {
		return Null, ErrClosed
	}
	n := len(d.chunks)
	if n >= format.MaxChunks {
		return Null, ErrDatabaseFull
	}
	if err := d.f.Truncate(int64(n+1) * format.ChunkSize); err != nil {
		return Null, ioErr("grow", err)
	}
	d.chunks = append(d.chunks, nil)
	c, err := d.load(n, true)
	if err != nil {
		d.chunks = d.chunks[:n]
		_ = d.f.Truncate(int64(n) * format.ChunkSize)
		return Null, err
	}
	d.log.Debug("grew chunk", "index", n, "start", c.start)
	return c.start, nil
}

// load materializes chunk i. fresh marks a chunk that was just appended and
// is known to be all zeros, so a buffered load does not need to read it.
func (d *Database) load(i int, fresh bool) (*Chunk, error) {
	if c := d.chunks[i]; c != nil {
		return c, nil
	}
	c := &Chunk{index: i, start: RecPtr(format.ChunkStart(i))}
	off := int64(c.start)

	if d.mmap {
		buf, err := mapChunk(d.f, off)
		if err == nil {
			c.buf = buf
			c.mapped = true
			d.loads++
			d.chunks[i] = c
			return c, nil
		}
		d.log.Warn("mmap failed, falling back to buffered chunks", "index", i, "err", err)
		d.mmap = false
	}

	c.buf = make([]byte, format.ChunkSize)
	if fresh {
		c.dirty = true
	} else {
		if _, err := d.f.ReadAt(c.buf, off); err != nil && !errors.Is(err, io.EOF) {
			return nil, ioErr(fmt.Sprintf("read chunk %d", i), err)
		}
		d.loads++
	}
	d.chunks[i] = c
	return c, nil
}

// Save flushes every dirty cached chunk back to the file and syncs it.
func (d *Database) Save() error {
	if d.closed {
		return ErrClosed
	}
	flushed := 0
	for _, c := range d.chunks {
		if c == nil || !c.dirty {
			continue
		}
		if c.mapped {
			if err := syncMapped(c.buf); err != nil {
				return ioErr(fmt.Sprintf("msync chunk %d", c.index), err)
			}
		} else if _, err := d.f.WriteAt(c.buf, int64(c.start)); err != nil {
			return ioErr(fmt.Sprintf("write chunk %d", c.index), err)
		}
		c.dirty = false
		flushed++
	}
	if flushed == 0 {
		return nil
	}
	if err := datasync(d.f); err != nil {
		return ioErr("sync", err)
	}
	d.log.Debug("saved", "chunks", flushed)
	return nil
}

// Close saves, unmaps every chunk and closes the file.
func (d *Database) Close() error {
	if d.closed {
		return nil
	}
	errs := []error{d.Save()}
	for _, c := range d.chunks {
		if c != nil && c.mapped {
			if err := unmapChunk(c.buf); err != nil {
				errs = append(errs, ioErr(fmt.Sprintf("munmap chunk %d", c.index), err))
			}
			c.buf = nil
		}
	}
	if err := d.f.Close(); err != nil {
		errs = append(errs, ioErr("close", err))
	}
	d.chunks = nil
	d.closed = true
	return errors.Join(errs...)
}

// span resolves [off, off+n) to the chunk holding it.
func (d *Database) span(off RecPtr, n int) (*Chunk, error) {
	c, err := d.Chunk(off)
	if err != nil {
		return nil, err
	}
	if !c.Contains(off, n) {
		return nil, fmt.Errorf("%w: %d bytes at %s", format.ErrCrossesChunk, n, off)
	}
	return c, nil
}

func (d *Database) Byte(off RecPtr) (byte, error) {
	c, err := d.span(off, 1)
	if err != nil {
		return 0, err
	}
	return c.Byte(off), nil
}

func (d *Database) PutByte(off RecPtr, v byte) error {
	c, err := d.span(off, 1)
	if err != nil {
		return err
	}
	c.PutByte(off, v)
	return nil
}

// Char reads one UTF-16 code unit.
func (d *Database) Char(off RecPtr) (uint16, error) {
	c, err := d.span(off, format.ShortSize)
	if err != nil {
		return 0, err
	}
	return c.Char(off), nil
}

func (d *Database) PutChar(off RecPtr, v uint16) error {
	c, err := d.span(off, format.ShortSize)
	if err != nil {
		return err
	}
	c.PutChar(off, v)
	return nil
}

func (d *Database) Short(off RecPtr) (int16, error) {
	c, err := d.span(off, format.ShortSize)
	if err != nil {
		return 0, err
	}
	return c.Short(off), nil
}

func (d *Database) PutShort(off RecPtr, v int16) error {
	c, err := d.span(off, format.ShortSize)
	if err != nil {
		return err
	}
	c.PutShort(off, v)
	return nil
}

func (d *Database) Int(off RecPtr) (int32, error) {
	c, err := d.span(off, format.IntSize)
	if err != nil {
		return 0, err
	}
	return c.Int(off), nil
}

func (d *Database) PutInt(off RecPtr, v int32) error {
	c, err := d.span(off, format.IntSize)
	if err != nil {
		return err
	}
	c.PutInt(off, v)
	return nil
}

func (d *Database) RecPtr(off RecPtr) (RecPtr, error) {
	c, err := d.span(off, format.PtrSize)
	if err != nil {
		return Null, err
	}
	return c.RecPtr(off), nil
}

func (d *Database) PutRecPtr(off RecPtr, v RecPtr) error {
	c, err := d.span(off, format.PtrSize)
	if err != nil {
		return err
	}
	c.PutRecPtr(off, v)
	return nil
}

// Bytes returns a copy of n bytes at off.
func (d *Database) Bytes(off RecPtr, n int) ([]byte, error) {
	c, err := d.span(off, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, c.Slice(off, n))
	return out, nil
}

func (d *Database) PutBytes(off RecPtr, b []byte) error {
	c, err := d.span(off, len(b))
	if err != nil {
		return err
	}
	c.PutBytes(off, b)
	return nil
}

// Zero clears n bytes at off.
func (d *Database) Zero(off RecPtr, n int) error {
	c, err := d.span(off, n)
	if err != nil {
		return err
	}
	c.Zero(off, n)
	return nil
}
