package tree

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/prose/pkg/object"
	"github.com/odvcencio/prose/pkg/parser"
)

// lineParser understands a toy language, one declaration per line:
//
//	// doc          a comment attached to the next declaration
//	class Name      the class
//	  method name   a method of the class
//	!bad            a syntax error
//
// Files end in ".src". Tests go next to their source as Test<name>, or
// anywhere under a "test" directory.
type lineParser struct{}

func sum(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func (lineParser) Match(name string) bool {
	return strings.HasSuffix(name, ".src")
}

func (lineParser) IsTest(path string) bool {
	return strings.Contains("/"+filepath.ToSlash(filepath.Dir(path))+"/", "/test/")
}

func (lineParser) EndOfCode() string { return "}" }

func (lineParser) TestPath(path string) string {
	return filepath.Join(filepath.Dir(path), "Test"+filepath.Base(path))
}

func (lineParser) TestStub(f *parser.File) []string {
	return []string{"class Test" + f.Class.Name + " {", "}"}
}

func (lineParser) Parse(path string, src []byte) (*parser.File, error) {
	f := &parser.File{Name: filepath.Base(path), Path: path}
	var doc []string
	for row, line := range strings.Split(string(src), "\n") {
		trimmed := strings.TrimSpace(line)
		start := parser.Point{Row: row, Column: len(line) - len(strings.TrimLeft(line, " "))}
		switch {
		case trimmed == "!bad":
			return nil, errors.New("syntax error")
		case strings.HasPrefix(trimmed, "//"):
			doc = append(doc, trimmed)
			continue
		case strings.HasPrefix(trimmed, "class "):
			f.Class = &parser.Class{
				Name:      strings.TrimPrefix(trimmed, "class "),
				Signature: trimmed,
				Digest:    sum(string(src)),
				Start:     start,
				Comment:   doc,
			}
		case strings.HasPrefix(trimmed, "method ") && f.Class != nil:
			f.Class.Methods = append(f.Class.Methods, &parser.Method{
				Name:      strings.TrimPrefix(trimmed, "method "),
				Signature: trimmed,
				Digest:    sum(trimmed),
				Start:     start,
				Code:      []string{line},
				Comment:   doc,
			})
		}
		doc = nil
	}
	return f, nil
}

// countingGenerator answers every request deterministically and counts them.
type countingGenerator struct {
	classes, comments, tests int
	failOn                   string
}

func (g *countingGenerator) CommentClass(_ context.Context, c *parser.Class) error {
	g.classes++
	c.Comment = []string{"// class " + c.Name}
	c.HasGeneratedComment = true
	return nil
}

func (g *countingGenerator) CommentMethod(_ context.Context, m *parser.Method) error {
	if m.Name == g.failOn {
		return errors.New("service unavailable")
	}
	g.comments++
	m.Comment = []string{"// does " + m.Name}
	m.HasGeneratedComment = true
	return nil
}

func (g *countingGenerator) TestMethod(_ context.Context, m *parser.Method) error {
	g.tests++
	m.Tests = []parser.Test{{
		Signature: "test_" + m.Name + "()",
		Code:      []string{"test_" + m.Name + "() {", "}"},
	}}
	m.HasGeneratedTests = true
	return nil
}

func (g *countingGenerator) calls() int { return g.classes + g.comments + g.tests }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	root  string
	store *object.Store
	gen   *countingGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		root:  t.TempDir(),
		store: object.NewStore(t.TempDir()),
		gen:   &countingGenerator{},
	}
}

func (fx *fixture) builder(ignore Ignorer) *Builder {
	return NewBuilder(fx.store, lineParser{}, fx.gen, Options{Root: fx.root, Ignore: ignore, Logger: quietLogger()})
}

func (fx *fixture) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(fx.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (fx *fixture) build(t *testing.T, src string) object.Hash {
	t.Helper()
	h, err := fx.builder(nil).Build(context.Background(), src)
	if err != nil {
		t.Fatalf("Build(%q): %v", src, err)
	}
	return h
}

func (fx *fixture) entries(t *testing.T, h object.Hash) map[string]object.TreeEntry {
	t.Helper()
	tr, err := fx.store.ReadTree(h)
	if err != nil {
		t.Fatalf("ReadTree(%s): %v", h.Short(), err)
	}
	out := make(map[string]object.TreeEntry, len(tr.Entries))
	for _, e := range tr.Entries {
		out[string(e.Kind)+":"+e.Name] = e
	}
	return out
}

func (fx *fixture) blob(t *testing.T, h object.Hash) string {
	t.Helper()
	b, err := fx.store.ReadBlob(h)
	if err != nil {
		t.Fatalf("ReadBlob(%s): %v", h.Short(), err)
	}
	return string(b.Data)
}
