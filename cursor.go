package pfxtable

import (
	"bytes"
	"fmt"
)

// Cursor is an Iterator which consults the table's index to skip ahead
// when seeking. Cursors are only valid while the table is open.
type Cursor struct {
	*Scanner
	index Index
}

// Cursor returns a new cursor bound to the table's store and root. The
// table does not track outstanding cursors.
func (t *Table) Cursor() (*Cursor, error) {
	s, err := t.Scan()
	if err != nil {
		return nil, fmt.Errorf("%w: cursor on writable table", ErrInvalidState)
	}
	return &Cursor{Scanner: s, index: t.o.Index}, nil
}

// SeekGE implements Iterator. It resumes decoding at the closest indexed
// entry at or before key, using that entry's key as decode context.
func (c *Cursor) SeekGE(key []byte) bool {
	if ent, ok := c.index.Floor(key); ok && ent.Offset > c.root {
		c.reset(ent.Offset, ent.Key)
	} else {
		c.reset(c.root, nil)
	}

	for c.Next() {
		if bytes.Compare(c.ent.Key, key) >= 0 {
			return true
		}
	}
	return false
}
