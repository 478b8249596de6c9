package pfxtable

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxValueLen is the largest value length whose tag fits into maxTagLen bytes.
const maxValueLen = 1<<(7*maxTagLen-1) - 1

// Tag combines a value's stored length and its compressed flag.
// It is encoded as uvarint(Length<<1 | compressed).
type Tag struct {
	Length     uint64
	Compressed bool
}

func (t Tag) pack() uint64 {
	u := t.Length << 1
	if t.Compressed {
		u |= 1
	}
	return u
}

func unpackTag(u uint64) Tag {
	return Tag{Length: u >> 1, Compressed: u&1 == 1}
}

// appendTag appends the encoded tag to dst.
func appendTag(dst []byte, t Tag) []byte {
	return binary.AppendUvarint(dst, t.pack())
}

// readTag reads an encoded tag, one byte at a time, stopping at the first
// byte without a continuation bit or after maxTagLen bytes.
func readTag(r io.ByteReader) (Tag, error) {
	var buf [maxTagLen]byte

	n := 0
	for n < maxTagLen {
		c, err := r.ReadByte()
		if err == io.EOF {
			break
		} else if err != nil {
			return Tag{}, err
		}
		buf[n] = c
		n++
		if c < 0x80 {
			break
		}
	}

	u, m := binary.Uvarint(buf[:n])
	if m <= 0 || m != n {
		return Tag{}, fmt.Errorf("%w: bad value tag (%d bytes)", ErrCorruptData, n)
	}
	return unpackTag(u), nil
}
