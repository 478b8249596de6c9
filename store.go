package pfxtable

import (
	"io"
	"os"
	"sync"
)

// Store is a backing byte store. Writes are sequential, reads are positional.
type Store interface {
	io.ReaderAt
	io.Writer
	io.Closer

	// Size returns the current size of the store in bytes.
	Size() (int64, error)
	// Sync commits written data to stable storage.
	Sync() error
}

// FS opens backing stores by name.
type FS interface {
	// Open opens an existing store for reading. It must return an error
	// satisfying errors.Is(err, os.ErrNotExist) if the store is missing.
	Open(name string) (Store, error)
	// Create creates or truncates a store for writing.
	Create(name string) (Store, error)
}

// OSFS opens stores on the local file system.
type OSFS struct{}

// Open implements FS.
func (OSFS) Open(name string) (Store, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return osFile{File: f}, nil
}

// Create implements FS.
func (OSFS) Create(name string) (Store, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return osFile{File: f}, nil
}

type osFile struct{ *os.File }

func (f osFile) Size() (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// --------------------------------------------------------------------

// MemFS is an in-memory FS, useful for tests and ephemeral tables.
type MemFS struct {
	mu    sync.Mutex
	files map[string]*memFile
}

// NewMemFS inits a new in-memory FS.
func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string]*memFile)}
}

// Open implements FS.
func (m *MemFS) Open(name string) (Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[name]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}
	return f, nil
}

// Create implements FS.
func (m *MemFS) Create(name string) (Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f := new(memFile)
	m.files[name] = f
	return f, nil
}

// Bytes returns a copy of a store's contents.
func (m *MemFS) Bytes(name string) ([]byte, bool) {
	m.mu.Lock()
	f, ok := m.files[name]
	m.mu.Unlock()

	if !ok {
		return nil, false
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]byte(nil), f.data...), true
}

// WriteFile stores raw data under name.
func (m *MemFS) WriteFile(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[name] = &memFile{data: append([]byte(nil), data...)}
}

type memFile struct {
	mu   sync.RWMutex
	data []byte
}

func (f *memFile) ReadAt(p []byte, off int64) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if off >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *memFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data = append(f.data, p...)
	return len(p), nil
}

func (f *memFile) Size() (int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return int64(len(f.data)), nil
}

func (f *memFile) Sync() error  { return nil }
func (f *memFile) Close() error { return nil }
