package pfxtable

import (
	"errors"
	"io"
	"log/slog"
)

const (
	maxKeyLen = 255     // keys are prefixed by a single length byte
	maxTagLen = 8       // maximum encoded length of a value tag
	scratchSz = 1 << 12 // chunk size used when reading values

	// rootInfo constants, nominal for a single-level sequential table.
	rootLevel     = 1
	rootBlockSize = 2048
)

// ErrNotFound is returned by the table when a key cannot be found.
var ErrNotFound = errors.New("pfxtable: not found")

// Error kinds. Returned errors wrap one of these, use errors.Is to test.
var (
	ErrOpenFailure     = errors.New("pfxtable: open failure")
	ErrInvalidState    = errors.New("pfxtable: invalid state")
	ErrInvalidArgument = errors.New("pfxtable: invalid argument")
	ErrCorruptData     = errors.New("pfxtable: corrupt data")
)

var errReleased = errors.New("pfxtable: iterator was released")

// Revision identifies a committed revision of the enclosing database.
type Revision uint32

// Flags are open-time policy bits.
type Flags uint32

// FlagNoSync skips syncing the backing store on commit.
const FlagNoSync Flags = 1 << iota

// Has returns true if all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// RootInfo is the metadata record exchanged with the persistence layer.
// It is shared with sibling table formats and therefore independent of Table.
type RootInfo struct {
	Level       uint32 // number of index levels
	NumEntries  uint64 // number of entries in the table
	RootIsFake  bool   // true if Root is a placeholder
	Sequential  bool   // true if data was written sequentially
	Root        int64  // offset where readable data begins
	BlockSize   uint32 // nominal, kept for format compatibility
	CompressMin uint32 // values longer than this are compressed by Put
}

// Entry is a decoded key/value pair.
type Entry struct {
	Key        []byte
	Value      []byte
	Compressed bool
}

// --------------------------------------------------------------------

// Options define table specific options.
type Options struct {
	// ReadOnly opens an existing, committed table for queries only.
	ReadOnly bool

	// Lazy tolerates a missing backing store on Open, the table
	// then behaves as a valid, empty table.
	Lazy bool

	// FS opens backing stores.
	// Default: OSFS.
	FS FS

	// Index receives candidate entries during writes and is consulted
	// by cursors when seeking.
	// Default: a SparseIndex with an interval of 16.
	Index Index

	// The compression codec used by Put and to decode compressed values.
	// Default: SnappyCompression.
	Compression Compression

	// Codec overrides the codec selected by Compression.
	Codec Codec

	// Logger for lifecycle events.
	// Default: discards all output.
	Logger *slog.Logger
}

func (o *Options) norm() *Options {
	var oo Options
	if o != nil {
		oo = *o
	}

	if oo.FS == nil {
		oo.FS = OSFS{}
	}
	if oo.Index == nil {
		oo.Index = NewSparseIndex(defaultIndexInterval)
	}
	if !oo.Compression.isValid() {
		oo.Compression = SnappyCompression
	}
	if oo.Codec == nil {
		oo.Codec = oo.Compression.codec()
	}
	if oo.Logger == nil {
		oo.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &oo
}
