package pfxtable

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// Table is a single immutable, sorted key/value table. A table is first
// written and committed, after which it is frozen and can be queried.
//
// Tables are not safe for concurrent use. Scanners and cursors obtained from
// a frozen table may be used concurrently with one another.
type Table struct {
	path string
	o    *Options

	flags       Flags
	readOnly    bool
	lazy        bool
	compressMin uint32
	numEntries  uint64
	root        int64
	rev         Revision

	store Store         // nil if lazily opened and missing
	buf   *bufio.Writer // buffered writes, nil when frozen
	pos   int64         // write position
	last  []byte        // last written key
	tmp   []byte        // scratch buffer
	cbuf  []byte        // compression buffer
	scan  *Scanner      // sequential replay state for ReadItem
}

// NewTable inits a table stored under path. The table must be opened
// via CreateAndOpen or Open before use.
func NewTable(path string, o *Options) *Table {
	o = o.norm()
	return &Table{
		path:     path,
		o:        o,
		readOnly: o.ReadOnly,
		lazy:     o.Lazy,
		root:     -1,
	}
}

// CreateAndOpen opens the table for the first time. When the table is
// read-only, entry count and root are loaded from ri. A failure to open the
// backing store is returned regardless of laziness.
func (t *Table) CreateAndOpen(flags Flags, ri *RootInfo) error {
	t.flags = flags
	t.compressMin = ri.CompressMin
	if !t.readOnly {
		return t.create()
	}

	t.numEntries = ri.NumEntries
	t.root = ri.Root

	store, err := t.o.FS.Open(t.path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOpenFailure, t.path, err)
	}
	return t.attach(store)
}

// Open reopens the table at a specific revision, loading entry count and
// root from ri. A missing backing store is tolerated for lazy tables.
func (t *Table) Open(flags Flags, ri *RootInfo, rev Revision) error {
	t.flags = flags
	t.compressMin = ri.CompressMin
	t.numEntries = ri.NumEntries
	t.root = ri.Root
	t.rev = rev

	store, err := t.o.FS.Open(t.path)
	if err != nil {
		if t.lazy && errors.Is(err, os.ErrNotExist) {
			if t.readOnly {
				t.o.Logger.Warn("table missing, opened lazily as empty", "path", t.path, "revision", rev)
				return t.attach(nil)
			}
			return t.create()
		}
		return fmt.Errorf("%w: %s: %w", ErrOpenFailure, t.path, err)
	}
	if t.readOnly {
		return t.attach(store)
	}

	// Writers may only reopen stores without committed data.
	size, err := store.Size()
	_ = store.Close()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOpenFailure, t.path, err)
	} else if size != 0 {
		return fmt.Errorf("%w: cannot append to %s, it holds %d bytes of data", ErrInvalidState, t.path, size)
	}
	return t.create()
}

// create opens a new, empty store for writing. Any previously loaded root
// cannot point into it, the first Add records the real one.
func (t *Table) create() error {
	t.root = -1

	store, err := t.o.FS.Create(t.path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOpenFailure, t.path, err)
	}
	return t.attach(store)
}

func (t *Table) attach(store Store) error {
	t.store = store
	t.pos = 0
	t.last = t.last[:0]

	if t.readOnly {
		t.scan = newScanner(t)
	} else if store != nil {
		t.buf = bufio.NewWriterSize(store, scratchSz)
	}

	t.o.Logger.Debug("table opened",
		"path", t.path,
		"read_only", t.readOnly,
		"entries", t.numEntries,
		"root", t.root,
	)
	return nil
}

// Commit freezes the table and populates ri. The table must have a root.
// After commit, the table is read-only and ReadItem replays from the start.
func (t *Table) Commit(rev Revision, ri *RootInfo) error {
	if t.root < 0 {
		return fmt.Errorf("%w: root not set", ErrInvalidState)
	}

	if t.buf != nil {
		if err := t.buf.Flush(); err != nil {
			return err
		}
		if !t.flags.Has(FlagNoSync) {
			if err := t.store.Sync(); err != nil {
				return err
			}
		}
	}

	ri.Level = rootLevel
	ri.NumEntries = t.numEntries
	ri.RootIsFake = false
	ri.Sequential = true
	ri.Root = t.root
	ri.BlockSize = rootBlockSize
	ri.CompressMin = t.compressMin

	t.readOnly = true
	t.rev = rev
	t.buf = nil
	t.last = t.last[:0]
	t.scan = newScanner(t)

	t.o.Logger.Info("table committed",
		"path", t.path,
		"revision", rev,
		"entries", t.numEntries,
		"root", t.root,
	)
	return nil
}

// ReadOnly returns true if the table is frozen.
func (t *Table) ReadOnly() bool { return t.readOnly }

// NumEntries returns the number of entries.
func (t *Table) NumEntries() uint64 { return t.numEntries }

// Root returns the root offset, negative if unset.
func (t *Table) Root() int64 { return t.root }

// SetRoot sets the root offset explicitly.
func (t *Table) SetRoot(off int64) { t.root = off }

// CompressMin returns the compression threshold.
func (t *Table) CompressMin() uint32 { return t.compressMin }

// Revision returns the revision the table was opened at or committed as.
func (t *Table) Revision() Revision { return t.rev }

// Close closes the table, flushing pending writes.
func (t *Table) Close() error {
	if t.scan != nil {
		t.scan.Release()
		t.scan = nil
	}
	if t.store == nil {
		return nil
	}

	var err error
	if t.buf != nil {
		err = t.buf.Flush()
		t.buf = nil
	}
	if e := t.store.Close(); e != nil && err == nil {
		err = e
	}
	t.store = nil
	return err
}
