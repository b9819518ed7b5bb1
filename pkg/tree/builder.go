// Package tree projects a source directory into the object store and walks
// stored trees back out.
//
// Build produces one tree per directory and one composite tree per source
// file. A file tree holds two leaves, the file as it should read once
// documented (comment) and its test file once tests are added (test),
// followed by one composite per class and method unit carrying the
// generated text for that unit. Files whose content digest is already
// stored are not parsed again, and units whose digest is already stored
// reuse their generated text instead of calling the generator.
package tree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/prose/pkg/merger"
	"github.com/odvcencio/prose/pkg/object"
	"github.com/odvcencio/prose/pkg/parser"
)

// testIndent is the column generated tests are inserted at.
const testIndent = 4

// Generator fills in missing comments and tests on parsed units.
type Generator interface {
	CommentClass(ctx context.Context, c *parser.Class) error
	CommentMethod(ctx context.Context, m *parser.Method) error
	TestMethod(ctx context.Context, m *parser.Method) error
}

// Ignorer reports whether a path relative to the build root is excluded.
type Ignorer interface {
	IsIgnored(path string, isDir bool) bool
}

// Options configures a Builder.
type Options struct {
	// Root is the directory source paths are resolved against.
	Root   string
	Ignore Ignorer
	Logger *slog.Logger
}

// Builder writes source trees into an object store.
type Builder struct {
	store  *object.Store
	parser parser.Parser
	gen    Generator
	root   string
	ignore Ignorer
	logger *slog.Logger
}

// NewBuilder returns a Builder.
func NewBuilder(store *object.Store, p parser.Parser, gen Generator, opts Options) *Builder {
	b := &Builder{
		store:  store,
		parser: p,
		gen:    gen,
		root:   opts.Root,
		ignore: opts.Ignore,
		logger: opts.Logger,
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Build walks root/src bottom-up and returns the digest of its tree. The
// digest is empty when nothing under src qualifies. Generator failures
// abort the build; unreadable or unparsable files are logged and left out.
func (b *Builder) Build(ctx context.Context, src string) (object.Hash, error) {
	src = filepath.Clean(src)
	info, err := os.Stat(filepath.Join(b.root, src))
	if err != nil {
		return "", fmt.Errorf("build %s: %w", src, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("build %s: not a directory", src)
	}
	return b.buildDir(ctx, src)
}

func (b *Builder) ignored(rel string, isDir bool) bool {
	return b.ignore != nil && rel != "." && b.ignore.IsIgnored(filepath.ToSlash(rel), isDir)
}

// withoutTests drops the files that are the test file of a sibling source.
// Without this a merged test file would be documented and tested in turn.
func (b *Builder) withoutTests(rel string, files []string) []string {
	tests := make(map[string]bool)
	for _, name := range files {
		testRel := b.parser.TestPath(filepath.Join(rel, name))
		if filepath.Dir(testRel) == filepath.Clean(rel) {
			tests[filepath.Base(testRel)] = true
		}
	}
	kept := files[:0]
	for _, name := range files {
		if tests[name] {
			b.logger.Debug("skipping test file", "file", filepath.Join(rel, name))
			continue
		}
		kept = append(kept, name)
	}
	return kept
}

// buildDir processes subdirectories before files so every tree entry refers
// to an already stored child.
func (b *Builder) buildDir(ctx context.Context, rel string) (object.Hash, error) {
	dirents, err := os.ReadDir(filepath.Join(b.root, rel))
	if err != nil {
		b.logger.Warn("skipping unreadable directory", "dir", rel, "error", err)
		return "", nil
	}

	var dirs, files []string
	for _, de := range dirents {
		childRel := filepath.Join(rel, de.Name())
		if b.ignored(childRel, de.IsDir()) {
			continue
		}
		switch {
		case de.IsDir():
			dirs = append(dirs, de.Name())
		case de.Type().IsRegular() && b.parser.Match(de.Name()) && !b.parser.IsTest(childRel):
			files = append(files, de.Name())
		}
	}
	files = b.withoutTests(rel, files)

	var entries []object.TreeEntry
	for _, name := range dirs {
		h, err := b.buildDir(ctx, filepath.Join(rel, name))
		if err != nil {
			return "", err
		}
		if h != "" {
			entries = append(entries, object.TreeEntry{Kind: object.KindTree, Digest: h, Name: name})
		}
	}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		e, ok, err := b.buildFile(ctx, filepath.Join(rel, name))
		if err != nil {
			return "", err
		}
		if ok {
			entries = append(entries, e)
		}
	}

	if len(entries) == 0 {
		return "", nil
	}
	h, err := b.store.WriteTree(&object.TreeObj{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("write tree %s: %w", rel, err)
	}
	return h, nil
}

func (b *Builder) buildFile(ctx context.Context, rel string) (object.TreeEntry, bool, error) {
	name := filepath.Base(rel)
	src, err := os.ReadFile(filepath.Join(b.root, rel))
	if err != nil {
		b.logger.Warn("skipping unreadable file", "file", rel, "error", err)
		return object.TreeEntry{}, false, nil
	}

	raw := object.HashBytes(src)
	if b.store.Has(raw) {
		return object.TreeEntry{Kind: object.KindFile, Digest: b.documentedDigest(raw), Name: name}, true, nil
	}

	f, err := b.parser.Parse(rel, src)
	if err != nil {
		b.logger.Warn("skipping unparsable file", "file", rel, "error", err)
		return object.TreeEntry{}, false, nil
	}
	b.logger.Info("parsed", "file", rel, "class", f.Class != nil)

	if f.Class == nil {
		if _, err := b.store.WriteTreeAs(raw, &object.TreeObj{}); err != nil {
			return object.TreeEntry{}, false, fmt.Errorf("write file tree %s: %w", rel, err)
		}
		return object.TreeEntry{Kind: object.KindFile, Digest: raw, Name: name}, true, nil
	}

	if err := b.fill(ctx, f); err != nil {
		return object.TreeEntry{}, false, fmt.Errorf("generate %s: %w", rel, err)
	}

	ft, documented, err := b.fileTree(rel, string(src), f)
	if err != nil {
		return object.TreeEntry{}, false, err
	}

	// The tree is reachable from the original source and from the source
	// as it reads after the comments are merged in.
	key := object.HashBytes([]byte(documented))
	for _, h := range []object.Hash{raw, key} {
		if _, err := b.store.WriteTreeAs(h, ft); err != nil {
			return object.TreeEntry{}, false, fmt.Errorf("write file tree %s: %w", rel, err)
		}
	}
	return object.TreeEntry{Kind: object.KindFile, Digest: key, Name: name}, true, nil
}

// documentedDigest returns the digest a cached file tree is addressed by in
// its directory: the digest of its commented text when it has one.
func (b *Builder) documentedDigest(raw object.Hash) object.Hash {
	ft, err := b.store.ReadTree(raw)
	if err != nil {
		return raw
	}
	for _, e := range ft.Entries {
		if e.Kind != object.KindComment {
			continue
		}
		blob, err := b.store.ReadBlob(e.Digest)
		if err != nil {
			return raw
		}
		return object.HashBytes(blob.Data)
	}
	return raw
}

// fill restores or generates the comment and tests of every unit. Methods
// go first so the class prompt can summarize their comments.
func (b *Builder) fill(ctx context.Context, f *parser.File) error {
	c := f.Class
	for _, m := range c.Methods {
		if b.restoreMethod(m) {
			continue
		}
		if m.Comment == nil {
			if err := b.gen.CommentMethod(ctx, m); err != nil {
				return err
			}
			b.logger.Debug("commented", "method", m.Name)
		}
		if m.Tests == nil && !c.IsInterface {
			if err := b.gen.TestMethod(ctx, m); err != nil {
				return err
			}
			b.logger.Debug("tested", "method", m.Name, "tests", len(m.Tests))
		}
	}
	if b.restoreClass(c) {
		return nil
	}
	if c.Comment == nil {
		if err := b.gen.CommentClass(ctx, c); err != nil {
			return err
		}
		b.logger.Debug("commented", "class", c.Name)
	}
	return nil
}

// restoreMethod loads the generated text stored for an unchanged method.
func (b *Builder) restoreMethod(m *parser.Method) bool {
	ut, ok := b.unitTree(object.KindMethod, m.Digest)
	if !ok {
		return false
	}
	for _, e := range ut.Entries {
		text, ok := b.leafText(e)
		if !ok {
			continue
		}
		switch e.Kind {
		case object.KindComment:
			if m.Comment == nil {
				m.Comment = strings.Split(text, "\n")
				m.HasGeneratedComment = true
			}
		case object.KindTest:
			m.Tests = append(m.Tests, parser.Test{Signature: e.Name, Code: strings.Split(text, "\n")})
			m.HasGeneratedTests = true
		}
	}
	return true
}

// restoreClass loads the generated comment stored for an unchanged class.
func (b *Builder) restoreClass(c *parser.Class) bool {
	ut, ok := b.unitTree(object.KindClass, c.Digest)
	if !ok {
		return false
	}
	for _, e := range ut.Entries {
		if e.Kind != object.KindComment || c.Comment != nil {
			continue
		}
		if text, ok := b.leafText(e); ok {
			c.Comment = strings.Split(text, "\n")
			c.HasGeneratedComment = true
		}
	}
	return true
}

// unitKey addresses a unit composite. It is derived from the parser's unit
// digest so it cannot coincide with the raw digest of a source file.
func unitKey(kind object.EntryKind, digest string) object.Hash {
	return object.HashBytes([]byte(string(kind) + " " + digest))
}

func (b *Builder) unitTree(kind object.EntryKind, digest string) (*object.TreeObj, bool) {
	if digest == "" {
		return nil, false
	}
	h := unitKey(kind, digest)
	if !b.store.Has(h) {
		return nil, false
	}
	ut, err := b.store.ReadTree(h)
	if err != nil {
		b.logger.Warn("ignoring unreadable unit", "digest", h.Short(), "error", err)
		return nil, false
	}
	return ut, true
}

func (b *Builder) leafText(e object.TreeEntry) (string, bool) {
	blob, err := b.store.ReadBlob(e.Digest)
	if err != nil {
		return "", false
	}
	return string(blob.Data), true
}

// fileTree stores the leaves and unit composites of a parsed file and
// returns the file tree together with the commented source text.
func (b *Builder) fileTree(rel, src string, f *parser.File) (*object.TreeObj, string, error) {
	documented, err := b.commentText(src, f)
	if err != nil {
		return nil, "", fmt.Errorf("merge comments %s: %w", rel, err)
	}
	testRel := b.parser.TestPath(rel)
	tests, err := b.testText(testRel, f)
	if err != nil {
		return nil, "", fmt.Errorf("merge tests %s: %w", rel, err)
	}

	commentLeaf, err := b.leaf(object.KindComment, documented, f.Name)
	if err != nil {
		return nil, "", err
	}
	testLeaf, err := b.leaf(object.KindTest, tests, filepath.Base(testRel))
	if err != nil {
		return nil, "", err
	}
	entries := []object.TreeEntry{commentLeaf, testLeaf}

	unit, err := b.classUnit(f.Class)
	if err != nil {
		return nil, "", err
	}
	entries = append(entries, unit)
	for _, m := range f.Class.Methods {
		unit, err := b.methodUnit(m)
		if err != nil {
			return nil, "", err
		}
		entries = append(entries, unit)
	}
	return &object.TreeObj{Entries: entries}, documented, nil
}

// commentText merges generated comments into the source. Comments already
// present in the source are left alone.
func (b *Builder) commentText(src string, f *parser.File) (string, error) {
	mg := merger.FromText(src)
	c := f.Class
	if c.HasGeneratedComment {
		if err := mg.Merge(c.Start.Row, c.Start.Column, c.Comment); err != nil {
			return "", err
		}
	}
	for _, m := range c.Methods {
		if !m.HasGeneratedComment {
			continue
		}
		if err := mg.Merge(m.Start.Row, m.Start.Column, m.Comment); err != nil {
			return "", err
		}
	}
	return mg.Text(), nil
}

// testText appends generated tests to the existing test file, or to a new
// stub, before its final end-of-code marker. Tests whose declaration is
// already present are skipped.
func (b *Builder) testText(testRel string, f *parser.File) (string, error) {
	var mg *merger.Merger
	existing, err := os.ReadFile(filepath.Join(b.root, testRel))
	switch {
	case err == nil:
		mg = merger.FromText(string(existing))
	case errors.Is(err, os.ErrNotExist):
		mg = merger.New(b.parser.TestStub(f))
	default:
		return "", err
	}

	for _, m := range f.Class.Methods {
		if !m.HasGeneratedTests {
			continue
		}
		for _, t := range m.Tests {
			if decl := declLine(t.Signature); decl != "" {
				if _, found := mg.Find(decl); found {
					continue
				}
			}
			end, ok := mg.FindLast(b.parser.EndOfCode())
			if !ok {
				b.logger.Warn("no end of code in test file", "file", testRel)
				return mg.Text(), nil
			}
			row, ok := mg.Origin(end.Line)
			if !ok {
				b.logger.Warn("end of code is not an original line", "file", testRel, "line", end.Line)
				return mg.Text(), nil
			}
			if err := mg.Merge(row, testIndent, append([]string{""}, t.Code...)); err != nil {
				return "", err
			}
		}
	}
	return mg.Text(), nil
}

// declLine returns the first line of a test declaration. Merger searches
// one line at a time.
func declLine(signature string) string {
	first, _, _ := strings.Cut(signature, "\n")
	return strings.TrimSpace(first)
}

func (b *Builder) leaf(kind object.EntryKind, text, name string) (object.TreeEntry, error) {
	h, err := b.store.WriteBlob(&object.Blob{Data: []byte(text)})
	if err != nil {
		return object.TreeEntry{}, fmt.Errorf("write %s leaf %s: %w", kind, name, err)
	}
	return object.TreeEntry{Kind: kind, Digest: h, Name: name}, nil
}

func (b *Builder) classUnit(c *parser.Class) (object.TreeEntry, error) {
	var entries []object.TreeEntry
	if c.HasGeneratedComment {
		e, err := b.leaf(object.KindComment, strings.Join(c.Comment, "\n"), c.Name)
		if err != nil {
			return object.TreeEntry{}, err
		}
		entries = append(entries, e)
	}
	return b.unit(object.KindClass, c.Digest, c.Signature, entries)
}

func (b *Builder) methodUnit(m *parser.Method) (object.TreeEntry, error) {
	var entries []object.TreeEntry
	if m.HasGeneratedComment {
		e, err := b.leaf(object.KindComment, strings.Join(m.Comment, "\n"), m.Signature)
		if err != nil {
			return object.TreeEntry{}, err
		}
		entries = append(entries, e)
	}
	if m.HasGeneratedTests {
		for _, t := range m.Tests {
			e, err := b.leaf(object.KindTest, strings.Join(t.Code, "\n"), t.Signature)
			if err != nil {
				return object.TreeEntry{}, err
			}
			entries = append(entries, e)
		}
	}
	return b.unit(object.KindMethod, m.Digest, m.Signature, entries)
}

// unit stores a composite keyed by the unit's digest. An existing composite
// is kept as is.
func (b *Builder) unit(kind object.EntryKind, digest, signature string, entries []object.TreeEntry) (object.TreeEntry, error) {
	h := unitKey(kind, digest)
	if _, err := b.store.WriteTreeAs(h, &object.TreeObj{Entries: entries}); err != nil {
		return object.TreeEntry{}, fmt.Errorf("write %s unit %q: %w", kind, signature, err)
	}
	return object.TreeEntry{Kind: kind, Digest: h, Name: signature}, nil
}
