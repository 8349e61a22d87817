package libewf

import (
	"io"
	"os"
)

// FilePool is a small pool of positioned, randomly-accessed file
// handles. Segment files reference their entry by integer index
// (spec.md §9: "keep this as an integer handle, never a back-pointer"),
// never by holding a direct reference back into the writer.
type FilePool struct {
	entries []*os.File
}

// NewFilePool returns an empty pool.
func NewFilePool() *FilePool {
	return &FilePool{}
}

// Create opens a new file for read/write, truncating any existing
// content, and returns its pool entry index.
func (p *FilePool) Create(path string) (int, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	p.entries = append(p.entries, f)
	return len(p.entries) - 1, nil
}

// Open opens an existing file for read/write without truncating it.
func (p *FilePool) Open(path string) (int, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return 0, err
	}
	p.entries = append(p.entries, f)
	return len(p.entries) - 1, nil
}

func (p *FilePool) file(entry int) (*os.File, error) {
	if entry < 0 || entry >= len(p.entries) || p.entries[entry] == nil {
		return nil, os.ErrClosed
	}
	return p.entries[entry], nil
}

// WriteAt writes p.entries[entry] at the given offset.
func (p *FilePool) WriteAt(entry int, data []byte, offset int64) (int, error) {
	f, err := p.file(entry)
	if err != nil {
		return 0, err
	}
	return f.WriteAt(data, offset)
}

// ReadAt reads from p.entries[entry] at the given offset.
func (p *FilePool) ReadAt(entry int, data []byte, offset int64) (int, error) {
	f, err := p.file(entry)
	if err != nil {
		return 0, err
	}
	return f.ReadAt(data, offset)
}

// Size returns the current size of the file backing entry.
func (p *FilePool) Size(entry int) (int64, error) {
	f, err := p.file(entry)
	if err != nil {
		return 0, err
	}
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Truncate resizes the file backing entry.
func (p *FilePool) Truncate(entry int, size int64) error {
	f, err := p.file(entry)
	if err != nil {
		return err
	}
	return f.Truncate(size)
}

// Close closes the file backing entry and frees its slot. Subsequent
// calls against that entry fail with os.ErrClosed.
func (p *FilePool) Close(entry int) error {
	f, err := p.file(entry)
	if err != nil {
		return err
	}
	p.entries[entry] = nil
	return f.Close()
}

// CloseAll closes every still-open entry in the pool, returning the
// first error encountered, if any.
func (p *FilePool) CloseAll() error {
	var first error
	for i, f := range p.entries {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
		p.entries[i] = nil
	}
	return first
}

var _ io.WriterAt = (*os.File)(nil)
