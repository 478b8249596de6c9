package pfxtable_test

import (
	"io"
	"os"
	"path/filepath"

	"github.com/bsm/pfxtable"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("FS", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "pfxtable-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	for _, tc := range []struct {
		desc string
		fs   func() pfxtable.FS
	}{
		{"OSFS", func() pfxtable.FS { return pfxtable.OSFS{} }},
		{"MemFS", func() pfxtable.FS { return pfxtable.NewMemFS() }},
	} {
		tc := tc

		It("should create, write and read ("+tc.desc+")", func() {
			fs := tc.fs()
			name := filepath.Join(dir, "store")

			_, err := fs.Open(name)
			Expect(err).To(MatchError(os.ErrNotExist))

			st, err := fs.Create(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Write([]byte("hello"))).To(Equal(5))
			Expect(st.Write([]byte(" world"))).To(Equal(6))
			Expect(st.Size()).To(Equal(int64(11)))
			Expect(st.Sync()).To(Succeed())
			Expect(st.Close()).To(Succeed())

			st, err = fs.Open(name)
			Expect(err).NotTo(HaveOccurred())
			defer st.Close()

			buf := make([]byte, 5)
			Expect(st.ReadAt(buf, 6)).To(Equal(5))
			Expect(string(buf)).To(Equal("world"))

			n, err := st.ReadAt(buf, 8)
			Expect(n).To(Equal(3))
			Expect(err).To(MatchError(io.EOF))

			n, err = st.ReadAt(buf, 20)
			Expect(n).To(Equal(0))
			Expect(err).To(MatchError(io.EOF))
		})

		It("should truncate on create ("+tc.desc+")", func() {
			fs := tc.fs()
			name := filepath.Join(dir, "store")

			st, err := fs.Create(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Write([]byte("hello"))).To(Equal(5))
			Expect(st.Close()).To(Succeed())

			st, err = fs.Create(name)
			Expect(err).NotTo(HaveOccurred())
			defer st.Close()
			Expect(st.Size()).To(Equal(int64(0)))
		})
	}

	It("should expose MemFS contents", func() {
		fs := pfxtable.NewMemFS()
		_, ok := fs.Bytes("missing")
		Expect(ok).To(BeFalse())

		fs.WriteFile("raw", []byte("data"))
		data, ok := fs.Bytes("raw")
		Expect(ok).To(BeTrue())
		Expect(data).To(Equal([]byte("data")))
	})
})
