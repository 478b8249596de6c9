package pfxtable_test

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing/iotest"

	"github.com/bsm/pfxtable"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tag", func() {
	decode := func(p []byte) (pfxtable.Tag, error) {
		return pfxtable.ReadTag(bufio.NewReader(bytes.NewReader(p)))
	}

	It("should encode", func() {
		Expect(pfxtable.AppendTag(nil, pfxtable.Tag{Length: 0})).To(Equal([]byte{0x00}))
		Expect(pfxtable.AppendTag(nil, pfxtable.Tag{Length: 3})).To(Equal([]byte{0x06}))
		Expect(pfxtable.AppendTag(nil, pfxtable.Tag{Length: 3, Compressed: true})).To(Equal([]byte{0x07}))
		Expect(pfxtable.AppendTag(nil, pfxtable.Tag{Length: 64})).To(Equal([]byte{0x80, 0x01}))
		Expect(pfxtable.AppendTag([]byte{0xff}, pfxtable.Tag{Length: 300, Compressed: true})).To(Equal([]byte{0xff, 0xd9, 0x04}))
	})

	It("should decode", func() {
		Expect(decode([]byte{0x07, 0xff})).To(Equal(pfxtable.Tag{Length: 3, Compressed: true}))
		Expect(decode([]byte{0x80, 0x01})).To(Equal(pfxtable.Tag{Length: 64}))
		Expect(decode([]byte{0xd9, 0x04})).To(Equal(pfxtable.Tag{Length: 300, Compressed: true}))

		max := pfxtable.AppendTag(nil, pfxtable.Tag{Length: pfxtable.MaxValueLen, Compressed: true})
		Expect(max).To(HaveLen(8))
		Expect(decode(max)).To(Equal(pfxtable.Tag{Length: pfxtable.MaxValueLen, Compressed: true}))
	})

	It("should reject bad input", func() {
		_, err := decode(nil)
		Expect(err).To(MatchError(pfxtable.ErrCorruptData))
		_, err = decode([]byte{0x80})
		Expect(err).To(MatchError(pfxtable.ErrCorruptData))
		_, err = decode(bytes.Repeat([]byte{0xff}, 9))
		Expect(err).To(MatchError(pfxtable.ErrCorruptData))
	})

	It("should pass through read errors", func() {
		errBoom := errors.New("boom")
		r := bufio.NewReader(io.MultiReader(bytes.NewReader([]byte{0x80}), iotest.ErrReader(errBoom)))

		_, err := pfxtable.ReadTag(r)
		Expect(err).To(MatchError(errBoom))
		Expect(err).NotTo(MatchError(pfxtable.ErrCorruptData))
	})
})
