package pfxtable

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"sync"
)

// Iterator is implemented by types which can (forward-) iterate over
// the entries of a frozen table.
type Iterator interface {
	// First positions the iterator at the first entry.
	First() bool
	// SeekGE positions the iterator at the first entry with a key >= key.
	SeekGE(key []byte) bool
	// Next advances the iterator to the next entry.
	Next() bool
	// Key returns the key of the current entry.
	Key() []byte
	// Value returns the value of the current entry, as stored.
	Value() []byte
	// Compressed returns true if the current value is compressed.
	Compressed() bool
	// Err exposes iteration errors, if any.
	Err() error
}

// ReadItem reads the next entry of a frozen table into ent. It returns
// false at the end of the data and when the table is not frozen. Successive
// calls replay the table from the start, as positioned by Commit.
func (t *Table) ReadItem(ent *Entry) (bool, error) {
	if !t.readOnly || t.scan == nil {
		return false, nil
	}
	return t.scan.read(ent)
}

// Scan returns a new scanner, positioned before the first entry.
func (t *Table) Scan() (*Scanner, error) {
	if !t.readOnly {
		return nil, fmt.Errorf("%w: scan on writable table", ErrInvalidState)
	}
	return newScanner(t), nil
}

// Append retrieves a single value for a key, decompressing it if necessary.
// Unlike Get it appends it to dst instead of allocating a new byte slice.
// It may return an ErrNotFound error.
func (t *Table) Append(dst, key []byte) ([]byte, error) {
	s, err := t.Scan()
	if err != nil {
		return dst, err
	}
	defer s.Release()

	if ok, err := s.seekExact(key); err != nil {
		return dst, err
	} else if !ok {
		return dst, ErrNotFound
	}
	return s.Decode(dst), nil
}

// Get is a shortcut for Append(nil, key).
// It may return an ErrNotFound error.
func (t *Table) Get(key []byte) ([]byte, error) {
	return t.Append(nil, key)
}

// Has returns true if key exists. Values are never decompressed.
func (t *Table) Has(key []byte) (bool, error) {
	s, err := t.Scan()
	if err != nil {
		return false, err
	}
	defer s.Release()

	return s.seekExact(key)
}

// --------------------------------------------------------------------

// Scanner decodes entries sequentially, starting at the table root.
// Each scanner keeps its own position and key context.
type Scanner struct {
	store Store
	root  int64
	codec Codec

	br      *bufio.Reader
	last    []byte // the previously decoded key
	scratch []byte

	ent     Entry
	valid   bool
	resumed bool // key context is the next entry's own key
	err     error
}

func newScanner(t *Table) *Scanner {
	s := &Scanner{
		store:   t.store,
		root:    t.root,
		codec:   t.o.Codec,
		scratch: fetchBuffer(scratchSz),
	}
	s.reset(s.root, nil)
	return s
}

// reset positions the scanner at off, using ctx as the key context.
func (s *Scanner) reset(off int64, ctx []byte) {
	s.last = append(s.last[:0], ctx...)
	s.valid = false
	s.resumed = len(ctx) != 0
	if s.err != errReleased {
		s.err = nil
	}

	if s.store == nil || off < 0 {
		s.br = nil
		return
	}

	sr := io.NewSectionReader(s.store, off, math.MaxInt64-off)
	if s.br == nil {
		s.br = bufio.NewReaderSize(sr, scratchSz)
	} else {
		s.br.Reset(sr)
	}
}

// read reads the next entry into ent. Errors are sticky until the
// scanner is repositioned.
func (s *Scanner) read(ent *Entry) (bool, error) {
	if s.err != nil {
		return false, s.Err()
	}

	ok, err := s.readItem(ent)
	s.err = err
	return ok, err
}

func (s *Scanner) readItem(ent *Entry) (bool, error) {
	if s.br == nil {
		return false, nil
	}

	c, err := s.br.ReadByte()
	if err == io.EOF {
		return false, nil
	} else if err != nil {
		return false, err
	}

	reuse := 0
	if len(s.last) != 0 {
		reuse = int(c)
		if c, err = s.br.ReadByte(); err != nil {
			return false, fmt.Errorf("%w: reading key length: %w", ErrCorruptData, unexpected(err))
		}
		if reuse > len(s.last) {
			return false, fmt.Errorf("%w: key reuses %d bytes of a %d byte key", ErrCorruptData, reuse, len(s.last))
		}
	}

	size := int(c)
	if n := reuse + size; n == 0 || n > maxKeyLen {
		return false, fmt.Errorf("%w: invalid key size %d", ErrCorruptData, n)
	}
	if _, err := io.ReadFull(s.br, s.scratch[:size]); err != nil {
		return false, fmt.Errorf("%w: reading %d bytes of key data: %w", ErrCorruptData, size, unexpected(err))
	}
	if len(s.last) != 0 && !s.resumed && bytes.Compare(s.scratch[:size], s.last[reuse:]) <= 0 {
		return false, fmt.Errorf("%w: key %q is not greater than %q", ErrCorruptData, append(s.last[:reuse:reuse], s.scratch[:size]...), s.last)
	}
	s.last = append(s.last[:reuse], s.scratch[:size]...)
	s.resumed = false

	tag, err := readTag(s.br)
	if err != nil {
		return false, err
	}

	ent.Key = append(ent.Key[:0], s.last...)
	ent.Compressed = tag.Compressed
	ent.Value = ent.Value[:0]
	for rem := tag.Length; rem != 0; {
		n := uint64(len(s.scratch))
		if rem < n {
			n = rem
		}
		if _, err := io.ReadFull(s.br, s.scratch[:n]); err != nil {
			return false, fmt.Errorf("%w: reading %d/%d bytes of value data: %w", ErrCorruptData, n, rem, unexpected(err))
		}
		ent.Value = append(ent.Value, s.scratch[:n]...)
		rem -= n
	}
	return true, nil
}

// seekExact positions the scanner at key and reports whether it exists.
func (s *Scanner) seekExact(key []byte) (bool, error) {
	if !s.SeekGE(key) {
		return false, s.Err()
	}
	return bytes.Equal(s.ent.Key, key), nil
}

// First implements Iterator.
func (s *Scanner) First() bool {
	s.reset(s.root, nil)
	return s.Next()
}

// SeekGE implements Iterator by scanning from the first entry. Keys are
// sorted so the scan stops at the first key >= key.
func (s *Scanner) SeekGE(key []byte) bool {
	for ok := s.First(); ok; ok = s.Next() {
		if bytes.Compare(s.ent.Key, key) >= 0 {
			return true
		}
	}
	return false
}

// Next implements Iterator.
func (s *Scanner) Next() bool {
	s.valid, _ = s.read(&s.ent)
	return s.valid
}

// Key implements Iterator.
func (s *Scanner) Key() []byte { return s.ent.Key }

// Value implements Iterator. Please note that values are temporary buffers
// and must be copied if used beyond the next move.
func (s *Scanner) Value() []byte { return s.ent.Value }

// Compressed implements Iterator.
func (s *Scanner) Compressed() bool { return s.ent.Compressed }

// Err implements Iterator.
func (s *Scanner) Err() error {
	if s.err == errReleased {
		return nil
	}
	return s.err
}

// Decode appends the current value to dst, decompressing it if necessary.
// Values written as compressed must decompress in one go, it panics otherwise.
func (s *Scanner) Decode(dst []byte) []byte {
	if !s.ent.Compressed {
		return append(dst, s.ent.Value...)
	}

	out, err := s.codec.Decode(dst, s.ent.Value)
	if err != nil {
		panic(fmt.Sprintf("pfxtable: incomplete decompression of value for %q: %v", s.ent.Key, err))
	}
	return out
}

// Release releases the scanner and frees up resources. The scanner must not be used
// after this method is called.
func (s *Scanner) Release() {
	releaseBuffer(s.scratch)
	s.scratch = nil
	s.br = nil
	s.valid = false
	s.err = errReleased
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// --------------------------------------------------------------------

var bufPool sync.Pool

func fetchBuffer(sz int) []byte {
	if v := bufPool.Get(); v != nil {
		if p := v.([]byte); sz <= cap(p) {
			return p[:sz]
		}
	}
	return make([]byte, sz)
}

func releaseBuffer(p []byte) {
	if cap(p) != 0 {
		bufPool.Put(p)
	}
}
