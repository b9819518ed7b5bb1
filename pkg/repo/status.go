package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/odvcencio/prose/pkg/object"
	"github.com/odvcencio/prose/pkg/tree"
)

// LeafDiff compares one staged comment or test leaf with the file on disk it
// would be merged into.
type LeafDiff struct {
	Kind   object.EntryKind
	Digest object.Hash
	// Path is the target file, relative to the repository root.
	Path string
	// Diff is a unified diff from the disk content to the stored content.
	// It is empty when both agree.
	Diff string
}

// Changed reports whether merging the leaf would modify the disk.
func (d LeafDiff) Changed() bool { return d.Diff != "" }

// Status diffs every staged leaf against the working tree, in stage order.
func (r *Repo) Status() (object.Hash, []LeafDiff, error) {
	return r.diffLeaves("status", nil)
}

// Diff diffs the staged leaves whose digest starts with prefix. It is an
// error when no leaf matches.
func (r *Repo) Diff(prefix string) (object.Hash, []LeafDiff, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", nil, errors.New("diff: digest is required")
	}
	root, diffs, err := r.diffLeaves("diff", func(e object.TreeEntry) bool {
		return strings.HasPrefix(string(e.Digest), prefix)
	})
	if err != nil {
		return "", nil, err
	}
	if len(diffs) == 0 {
		return "", nil, fmt.Errorf("diff: no staged leaf %s", prefix)
	}
	return root, diffs, nil
}

func (r *Repo) diffLeaves(op string, keep func(object.TreeEntry) bool) (object.Hash, []LeafDiff, error) {
	stage, err := r.requireStage()
	if err != nil {
		return "", nil, err
	}
	cfg, err := r.ReadConfig()
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	var diffs []LeafDiff
	err = tree.Walk(r.Store, stage.Tree, func(l tree.Leaf) error {
		if keep != nil && !keep(l.Entry) {
			return nil
		}
		d, err := r.diffLeaf(cfg, stage, l)
		if err != nil {
			return err
		}
		diffs = append(diffs, d)
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return stage.Tree, diffs, nil
}

func (r *Repo) diffLeaf(cfg *Config, stage *Stage, l tree.Leaf) (LeafDiff, error) {
	target := r.leafPath(cfg, stage, l)
	rel, err := filepath.Rel(r.RootDir, target)
	if err != nil {
		rel = target
	}
	d := LeafDiff{Kind: l.Entry.Kind, Digest: l.Entry.Digest, Path: filepath.ToSlash(rel)}

	stored, err := r.leafContent(l.Entry.Digest)
	if err != nil {
		return d, err
	}
	disk, err := os.ReadFile(target)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return d, fmt.Errorf("read %s: %w", d.Path, err)
	}

	d.Diff, err = difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(disk)),
		B:        difflib.SplitLines(string(stored)),
		FromFile: d.Path,
		ToFile:   string(l.Entry.Digest),
		Context:  3,
	})
	if err != nil {
		return d, fmt.Errorf("diff %s: %w", d.Path, err)
	}
	return d, nil
}

// leafPath returns the file on disk a leaf belongs to. Comment leaves map to
// the source file; test leaves map to the test file of that source.
func (r *Repo) leafPath(cfg *Config, stage *Stage, l tree.Leaf) string {
	src := filepath.Join(filepath.FromSlash(stage.BasePath), l.Path())
	if l.Entry.Kind == object.KindTest {
		src = r.Parser.TestPath(src)
	}
	return filepath.Join(r.baseDir(cfg), src)
}

// leafContent returns the stored text of a leaf. A missing blob reads as
// empty.
func (r *Repo) leafContent(h object.Hash) ([]byte, error) {
	b, err := r.Store.ReadBlob(h)
	if errors.Is(err, object.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b.Data, nil
}
