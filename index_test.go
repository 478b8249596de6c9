package pfxtable_test

import (
	"github.com/bsm/pfxtable"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("SparseIndex", func() {
	var subject *pfxtable.SparseIndex

	BeforeEach(func() {
		subject = pfxtable.NewSparseIndex(3)
		for i := 0; i < 10; i++ {
			subject.MaybeAdd(seedKey(i), int64(i*100))
		}
	})

	It("should record every n-th entry", func() {
		Expect(subject.Len()).To(Equal(4))
		Expect(pfxtable.NewSparseIndex(0).Len()).To(Equal(0))
	})

	It("should find floor entries", func() {
		floor := func(key []byte) pfxtable.IndexEntry {
			ent, ok := subject.Floor(key)
			Expect(ok).To(BeTrue())
			return ent
		}

		_, ok := subject.Floor([]byte("a"))
		Expect(ok).To(BeFalse())

		Expect(floor(seedKey(0))).To(Equal(pfxtable.IndexEntry{Key: seedKey(0), Offset: 0}))
		Expect(floor(seedKey(2))).To(Equal(pfxtable.IndexEntry{Key: seedKey(0), Offset: 0}))
		Expect(floor(seedKey(3))).To(Equal(pfxtable.IndexEntry{Key: seedKey(3), Offset: 300}))
		Expect(floor(seedKey(8))).To(Equal(pfxtable.IndexEntry{Key: seedKey(6), Offset: 600}))
		Expect(floor([]byte("zzz"))).To(Equal(pfxtable.IndexEntry{Key: seedKey(9), Offset: 900}))
	})

	It("should copy keys", func() {
		key := []byte("key.999999")
		index := pfxtable.NewSparseIndex(1)
		index.MaybeAdd(key, 1)
		key[0] = 'X'

		ent, ok := index.Floor([]byte("zzz"))
		Expect(ok).To(BeTrue())
		Expect(ent.Key).To(Equal([]byte("key.999999")))
	})
})
