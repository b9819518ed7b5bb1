package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/prose/pkg/object"
	"github.com/odvcencio/prose/pkg/tree"
)

// MergeToDisk writes every staged comment and test leaf over the file it
// belongs to, creating test files and their directories as needed. Files
// that already hold the stored content are left untouched. Returns the
// written paths relative to the repository root.
func (r *Repo) MergeToDisk() ([]string, error) {
	stage, err := r.requireStage()
	if err != nil {
		return nil, err
	}
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	written, err := r.mergeStage(cfg, stage)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return written, nil
}

func (r *Repo) mergeStage(cfg *Config, stage *Stage) ([]string, error) {
	var written []string
	err := tree.Walk(r.Store, stage.Tree, func(l tree.Leaf) error {
		b, err := r.Store.ReadBlob(l.Entry.Digest)
		if errors.Is(err, object.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		target := r.leafPath(cfg, stage, l)
		if cur, err := os.ReadFile(target); err == nil && bytes.Equal(cur, b.Data) {
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		if err := os.WriteFile(target, b.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}

		rel, err := filepath.Rel(r.RootDir, target)
		if err != nil {
			rel = target
		}
		rel = filepath.ToSlash(rel)
		r.logger().Info("merged", "kind", l.Entry.Kind, "path", rel)
		written = append(written, rel)
		return nil
	})
	return written, err
}
