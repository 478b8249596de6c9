package pfxtable

import (
	"bytes"
	"fmt"
)

// Add appends an entry. Keys must be added in strictly increasing order
// and be between 1 and 255 bytes long. The compressed flag is recorded
// as given, value must already be compressed if set.
func (t *Table) Add(key, value []byte, compressed bool) error {
	if t.readOnly {
		return fmt.Errorf("%w: add on read-only table", ErrInvalidState)
	}
	if t.buf == nil {
		return fmt.Errorf("%w: table is not open", ErrInvalidState)
	}
	if n := len(key); n == 0 || n > maxKeyLen {
		return fmt.Errorf("%w: invalid key size %d", ErrInvalidArgument, n)
	}
	if uint64(len(value)) > maxValueLen {
		return fmt.Errorf("%w: invalid value size %d", ErrInvalidArgument, len(value))
	}
	if len(t.last) != 0 && bytes.Compare(key, t.last) <= 0 {
		return fmt.Errorf("%w: attempted an out-of-order add, %q must be > %q", ErrInvalidState, key, t.last)
	}

	if t.root < 0 {
		t.root = t.pos
	}
	offset := t.pos

	t.tmp = appendKey(t.tmp[:0], t.last, key)
	if err := t.writeRaw(t.tmp); err != nil {
		return err
	}
	t.o.Index.MaybeAdd(key, offset)
	t.numEntries++

	t.tmp = appendTag(t.tmp[:0], Tag{Length: uint64(len(value)), Compressed: compressed})
	if err := t.writeRaw(t.tmp); err != nil {
		return err
	}
	if err := t.writeRaw(value); err != nil {
		return err
	}

	t.last = append(t.last[:0], key...)
	return nil
}

// Put appends an entry, compressing values longer than the table's
// compression threshold when this makes them smaller. A zero threshold
// disables compression.
func (t *Table) Put(key, value []byte) error {
	if t.compressMin != 0 && len(value) > int(t.compressMin) {
		t.cbuf = t.o.Codec.Encode(t.cbuf[:0], value)
		if len(t.cbuf) < len(value) {
			return t.Add(key, t.cbuf, true)
		}
	}
	return t.Add(key, value, false)
}

func (t *Table) writeRaw(p []byte) error {
	n, err := t.buf.Write(p)
	t.pos += int64(n)
	return err
}

// appendKey appends the front-coded key header and suffix to dst.
func appendKey(dst, last, key []byte) []byte {
	if len(last) == 0 {
		dst = append(dst, byte(len(key)))
		return append(dst, key...)
	}

	i := commonPrefix(last, key)
	dst = append(dst, byte(i), byte(len(key)-i))
	return append(dst, key[i:]...)
}

func commonPrefix(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
