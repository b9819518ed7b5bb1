package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/odvcencio/prose/pkg/object"
	"github.com/odvcencio/prose/pkg/tree"
)

// AddResult describes the outcome of Add.
type AddResult struct {
	// Tree is the digest built from the source path.
	Tree object.Hash
	// Staged is set when Tree carries generated leaves and replaced the stage.
	Staged bool
	// Pending is set when the stage differs from the tip of the current
	// branch: some generated documentation or tests are not committed yet.
	Pending bool
}

// Add builds the tree for src, a directory relative to the configured base
// path, generating missing comments and tests with gen. The stage is
// replaced when the built tree has at least one comment or test leaf.
// Returns ErrNothingToAdd when nothing under src qualifies.
func (r *Repo) Add(ctx context.Context, src string, gen tree.Generator) (*AddResult, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, err
	}
	src, err = r.sourcePath(cfg, src)
	if err != nil {
		return nil, fmt.Errorf("add: %w", err)
	}

	base := r.baseDir(cfg)
	b := tree.NewBuilder(r.Store, r.Parser, gen, tree.Options{
		Root:   base,
		Ignore: NewIgnoreChecker(base),
		Logger: r.logger(),
	})
	root, err := b.Build(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("add: %w", err)
	}
	if root == "" {
		return nil, ErrNothingToAdd
	}

	leaves := 0
	if err := tree.Walk(r.Store, root, func(tree.Leaf) error {
		leaves++
		return nil
	}); err != nil {
		return nil, fmt.Errorf("add: %w", err)
	}

	res := &AddResult{Tree: root}
	stage := &Stage{Tree: root, BasePath: filepath.ToSlash(src)}
	if leaves > 0 {
		if err := r.WriteStage(stage); err != nil {
			return nil, fmt.Errorf("add: %w", err)
		}
		res.Staged = true
	} else {
		cur, err := r.ReadStage()
		if err != nil {
			return nil, fmt.Errorf("add: %w", err)
		}
		if cur != nil {
			stage = cur
		}
	}

	_, commit, err := r.tip(cfg.Branch)
	if err != nil {
		return nil, fmt.Errorf("add: %w", err)
	}
	res.Pending = commit == nil || commit.TreeHash != stage.Tree
	r.logger().Info("added", "src", src, "tree", root.Short(), "leaves", leaves, "pending", res.Pending)
	return res, nil
}

// sourcePath cleans src and makes it relative to the base path. Absolute
// paths are accepted when they lie under the base path.
func (r *Repo) sourcePath(cfg *Config, src string) (string, error) {
	if src == "" {
		src = "."
	}
	if filepath.IsAbs(src) {
		rel, err := filepath.Rel(r.baseDir(cfg), src)
		if err != nil {
			return "", err
		}
		src = rel
	}
	src = filepath.Clean(src)
	if src == ".." || strings.HasPrefix(src, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the base path %s", src, cfg.BasePath)
	}
	return src, nil
}
