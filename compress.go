package pfxtable

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec compresses and decompresses values.
type Codec interface {
	// Encode appends the compressed form of src to dst.
	Encode(dst, src []byte) []byte
	// Decode appends the decompressed form of src to dst.
	Decode(dst, src []byte) ([]byte, error)
}

// Compression is the compression codec
type Compression byte

func (c Compression) isValid() bool {
	return c >= SnappyCompression && c < unknownCompression
}

func (c Compression) codec() Codec {
	switch c {
	case NoCompression:
		return noCodec{}
	case ZstdCompression:
		return zstdCodec{}
	case LZ4Compression:
		return lz4Codec{}
	case ZlibCompression:
		return zlibCodec{}
	default:
		return snappyCodec{}
	}
}

// Supported compression codecs
const (
	SnappyCompression Compression = iota
	NoCompression
	ZstdCompression
	LZ4Compression
	ZlibCompression
	unknownCompression
)

// --------------------------------------------------------------------

type noCodec struct{}

func (noCodec) Encode(dst, src []byte) []byte          { return append(dst, src...) }
func (noCodec) Decode(dst, src []byte) ([]byte, error) { return append(dst, src...), nil }

// --------------------------------------------------------------------

type snappyCodec struct{}

func (snappyCodec) Encode(dst, src []byte) []byte {
	return append(dst, snappy.Encode(nil, src)...)
}

func (snappyCodec) Decode(dst, src []byte) ([]byte, error) {
	plain, err := snappy.Decode(nil, src)
	if err != nil {
		return dst, err
	}
	return append(dst, plain...), nil
}

// --------------------------------------------------------------------

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

type zstdCodec struct{}

func (zstdCodec) Encode(dst, src []byte) []byte {
	enc := getZstdEncoder()
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(src, dst)
}

func (zstdCodec) Decode(dst, src []byte) ([]byte, error) {
	dec := getZstdDecoder()
	defer zstdDecoderPool.Put(dec)

	return dec.DecodeAll(src, dst)
}

// --------------------------------------------------------------------

// lz4Codec stores uvarint(plain length) followed by an LZ4 block. Input that
// does not compress is stored verbatim after the length prefix.
type lz4Codec struct{}

func (lz4Codec) Encode(dst, src []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(src)))

	block := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, block, nil)
	if err != nil || n == 0 || n >= len(src) {
		return append(dst, src...)
	}
	return append(dst, block[:n]...)
}

func (lz4Codec) Decode(dst, src []byte) ([]byte, error) {
	sz, n := binary.Uvarint(src)
	if n <= 0 {
		return dst, fmt.Errorf("pfxtable: bad lz4 length prefix")
	}
	src = src[n:]

	if uint64(len(src)) == sz {
		return append(dst, src...), nil
	}

	plain := make([]byte, sz)
	m, err := lz4.UncompressBlock(src, plain)
	if err != nil {
		return dst, err
	} else if uint64(m) != sz {
		return dst, fmt.Errorf("pfxtable: lz4 size mismatch, %d != %d", m, sz)
	}
	return append(dst, plain...), nil
}

// --------------------------------------------------------------------

type zlibCodec struct{}

func (zlibCodec) Encode(dst, src []byte) []byte {
	buf := bytes.NewBuffer(dst)
	zw := zlib.NewWriter(buf)
	_, _ = zw.Write(src)
	_ = zw.Close()
	return buf.Bytes()
}

func (zlibCodec) Decode(dst, src []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return dst, err
	}
	defer zr.Close()

	buf := bytes.NewBuffer(dst)
	if _, err := io.Copy(buf, zr); err != nil {
		return dst, err
	}
	return buf.Bytes(), nil
}
