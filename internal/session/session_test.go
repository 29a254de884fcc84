package session_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gcint/internal/discover"
	"github.com/san-kum/gcint/internal/logging"
	"github.com/san-kum/gcint/internal/namespace"
	"github.com/san-kum/gcint/internal/republish"
	"github.com/san-kum/gcint/internal/runopt"
	"github.com/san-kum/gcint/internal/session"
)

var _ = Describe("DataFiles", func() {
	It("keeps data files in argument order", func() {
		Expect(session.DataFiles([]string{"a.txt", "b.root", "c.root"}, ".root")).
			To(Equal([]string{"b.root", "c.root"}))
	})

	It("returns nothing when no argument matches", func() {
		Expect(session.DataFiles([]string{"-i", "notes.md"}, ".root")).To(BeEmpty())
	})
})

var _ = Describe("Bootstrapper", func() {
	var (
		opener    *fakeOpener
		ro        *runopt.RunOpt
		sourceDir string
		scope     *namespace.Lazy
		logs      *bytes.Buffer
		b         *session.Bootstrapper
	)

	BeforeEach(func() {
		var err error
		opener = newFakeOpener()
		ro, err = runopt.New("Default", true)
		Expect(err).NotTo(HaveOccurred())

		sourceDir, err = os.MkdirTemp("", "gcint-src-")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, sourceDir)
		for _, f := range []string{"Base/GHepRecord.cxx", "Decay/Unknown.cxx"} {
			path := filepath.Join(sourceDir, f)
			Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
			Expect(os.WriteFile(path, nil, 0644)).To(Succeed())
		}

		scope = namespace.NewLazy("genie", namespace.ResolverFunc(func(q string) (any, error) {
			if q == "genie::GHepRecord" {
				return "class GHepRecord", nil
			}
			return nil, errors.New("unknown class")
		}))

		logs = &bytes.Buffer{}
		b = &session.Bootstrapper{
			Opener:     opener,
			RunOpt:     ro,
			Root:       namespace.NewLazy("", nil),
			Scope:      scope,
			SourceRoot: sourceDir,
			Logger:     logging.New("info", logs),
		}
	})

	It("refuses to run without run options", func() {
		b.RunOpt = nil
		_, err := b.Run(context.Background(), nil)
		Expect(err).To(MatchError(session.ErrNoRunOpt))
	})

	Context("with several data files", func() {
		It("attaches only data files, numbered in order", func() {
			b1 := opener.add("b.root")
			c1 := opener.add("c.root")

			s, err := b.Run(context.Background(), []string{"a.txt", "b.root", "c.root"})
			Expect(err).NotTo(HaveOccurred())

			Expect(opener.opened).To(Equal([]string{"b.root", "c.root"}))
			Expect(s.Files).To(HaveLen(2))
			Expect(s.Bindings).To(HaveKeyWithValue("_file0", b1))
			Expect(s.Bindings).To(HaveKeyWithValue("_file1", c1))
			Expect(s.Bindings).NotTo(HaveKey("_file2"))
		})

		It("reports each attachment", func() {
			opener.add("b.root")
			opener.add("c.root")

			_, err := b.Run(context.Background(), []string{"b.root", "c.root"})
			Expect(err).NotTo(HaveOccurred())
			Expect(logs.String()).To(ContainSubstring("attaching file b.root as _file0"))
			Expect(logs.String()).To(ContainSubstring("attaching file c.root as _file1"))
		})

		It("does not flatten entries", func() {
			opener.add("b.root", fakeKey{name: "tree1", obj: &fakeTree{rows: 3}})
			opener.add("c.root", fakeKey{name: "hist1", obj: &fakeHist{}})

			s, err := b.Run(context.Background(), []string{"b.root", "c.root"})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Bindings).NotTo(HaveKey("tree1"))
			Expect(s.Bindings).NotTo(HaveKey("hist1"))
		})
	})

	Context("with exactly one data file", func() {
		var tree *fakeTree
		var hist *fakeHist

		BeforeEach(func() {
			tree = &fakeTree{rows: 5}
			hist = &fakeHist{title: "Enu"}
			opener.add("events.ghep.root",
				fakeKey{name: "tree1", obj: tree},
				fakeKey{name: "hist1", obj: hist},
			)
		})

		It("binds every entry and loads the first tree row", func() {
			s, err := b.Run(context.Background(), []string{"events.ghep.root"})
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Bindings).To(HaveKeyWithValue("tree1", tree))
			Expect(s.Bindings).To(HaveKeyWithValue("hist1", hist))
			Expect(tree.loaded).To(Equal([]int64{0}))
		})

		It("skips empty trees", func() {
			tree.rows = 0
			_, err := b.Run(context.Background(), []string{"events.ghep.root"})
			Expect(err).NotTo(HaveOccurred())
			Expect(tree.loaded).To(BeEmpty())
		})

		It("tolerates a failing row load", func() {
			tree.loadErr = errors.New("basket corrupt")
			s, err := b.Run(context.Background(), []string{"events.ghep.root"})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Bindings).To(HaveKey("tree1"))
			Expect(logs.String()).To(ContainSubstring("could not load first entry"))
		})

		It("lets entries overwrite bootstrap bindings", func() {
			opener.add("clash.root", fakeKey{name: "G", obj: hist})
			s, err := b.Run(context.Background(), []string{"clash.root"})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Bindings).To(HaveKeyWithValue("G", hist))
			Expect(s.Bindings).To(HaveKeyWithValue("genie", scope))
		})

		It("fails when an entry cannot be read", func() {
			f := opener.add("broken.root", fakeKey{name: "tree1", err: errors.New("bad key")})
			_, err := b.Run(context.Background(), []string{"broken.root"})
			Expect(err).To(MatchError(ContainSubstring("read tree1 from broken.root")))
			Expect(f.closed).To(BeTrue())
		})
	})

	Context("with no data files", func() {
		It("binds only the session aliases", func() {
			s, err := b.Run(context.Background(), []string{"macro.C"})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Files).To(BeEmpty())
			Expect(s.Bindings.Names()).To(ConsistOf("G", "R", "RunOpt", "genie"))
			Expect(s.Bindings).To(HaveKeyWithValue("RunOpt", ro))
		})

		It("does not need an opener", func() {
			b.Opener = nil
			_, err := b.Run(context.Background(), nil)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	It("propagates open failures and closes what was opened", func() {
		first := opener.add("good.root")
		_, err := b.Run(context.Background(), []string{"good.root", "missing.root"})
		Expect(err).To(MatchError(ContainSubstring("open missing.root")))
		Expect(first.closed).To(BeTrue())
	})

	It("fails when files are given without an opener", func() {
		b.Opener = nil
		_, err := b.Run(context.Background(), []string{"x.root"})
		Expect(err).To(MatchError(session.ErrNoOpener))
	})

	Describe("strategies", func() {
		It("only warms the toolkit scope by default", func() {
			s, err := b.Run(context.Background(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(scope.Members()).To(Equal([]string{"GHepRecord"}))
			Expect(s.Bindings).NotTo(HaveKey("GHepRecord"))
			Expect(s.Exported).To(BeEmpty())
		})

		It("exports warmed classes with WarmAndExport", func() {
			b.Strategy = republish.WarmAndExport
			b.Discover = discover.Options{Workers: 2}
			s, err := b.Run(context.Background(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Bindings).To(HaveKeyWithValue("GHepRecord", "class GHepRecord"))
			Expect(s.Bindings).NotTo(HaveKey("Unknown"))
			Expect(s.Exported).To(Equal(namespace.Table{"GHepRecord": "class GHepRecord"}))
		})

		It("survives a missing source tree", func() {
			b.SourceRoot = filepath.Join(sourceDir, "does-not-exist")
			s, err := b.Run(context.Background(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(scope.Members()).To(BeEmpty())
			Expect(s.Bindings).To(HaveKey("genie"))
		})
	})

	It("closes every file on Close", func() {
		a := opener.add("a.root")
		c := opener.add("c.root")
		s, err := b.Run(context.Background(), []string{"a.root", "c.root"})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Close()).To(Succeed())
		Expect(a.closed).To(BeTrue())
		Expect(c.closed).To(BeTrue())
	})
})
