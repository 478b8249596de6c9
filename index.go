package pfxtable

import (
	"bytes"

	"github.com/google/btree"
)

const defaultIndexInterval = 16

// IndexEntry points at the start of an entry within the table.
type IndexEntry struct {
	Key    []byte
	Offset int64
}

// Index is a secondary structure which accelerates seeks.
type Index interface {
	// MaybeAdd offers an entry as a candidate. Implementations decide
	// whether to record it. Key must not be retained without copying.
	MaybeAdd(key []byte, offset int64)
	// Floor returns the recorded entry with the greatest key <= key.
	Floor(key []byte) (IndexEntry, bool)
}

// SparseIndex records every n-th candidate entry.
type SparseIndex struct {
	interval int
	seen     int
	tree     *btree.BTreeG[IndexEntry]
}

// NewSparseIndex inits a new index, recording every n-th entry.
func NewSparseIndex(n int) *SparseIndex {
	if n < 1 {
		n = defaultIndexInterval
	}
	return &SparseIndex{
		interval: n,
		tree: btree.NewG(2, func(a, b IndexEntry) bool {
			return bytes.Compare(a.Key, b.Key) < 0
		}),
	}
}

// Len returns the number of recorded entries.
func (x *SparseIndex) Len() int { return x.tree.Len() }

// MaybeAdd implements Index.
func (x *SparseIndex) MaybeAdd(key []byte, offset int64) {
	if x.seen%x.interval == 0 {
		x.tree.ReplaceOrInsert(IndexEntry{
			Key:    append([]byte(nil), key...),
			Offset: offset,
		})
	}
	x.seen++
}

// Floor implements Index.
func (x *SparseIndex) Floor(key []byte) (ent IndexEntry, ok bool) {
	x.tree.DescendLessOrEqual(IndexEntry{Key: key}, func(e IndexEntry) bool {
		ent, ok = e, true
		return false
	})
	return
}
