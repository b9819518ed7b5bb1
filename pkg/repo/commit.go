package repo

import (
	"errors"
	"fmt"

	"github.com/odvcencio/prose/pkg/object"
)

// Commit records the stage on the current branch.
//
//  1. Read the stage; nothing staged is ErrNothingStaged
//  2. Resolve the branch tip; a tip with the staged tree is ErrNothingToCommit
//  3. Optionally merge the staged leaves into the working tree
//  4. Write a commit {stage tree, stage base path, tip} and move the branch
func (r *Repo) Commit(merge bool) (object.Hash, error) {
	stage, err := r.requireStage()
	if err != nil {
		return "", err
	}
	cfg, err := r.ReadConfig()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	parent, tip, err := r.tip(cfg.Branch)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if tip != nil && tip.TreeHash == stage.Tree {
		return "", ErrNothingToCommit
	}

	if merge {
		if _, err := r.mergeStage(cfg, stage); err != nil {
			return "", fmt.Errorf("commit: %w", err)
		}
	}

	h, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash: stage.Tree,
		BasePath: stage.BasePath,
		Parent:   parent,
	})
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}
	if err := r.SaveRef(cfg.Branch, h); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	r.logger().Info("committed", "branch", cfg.Branch, "commit", h.Short(), "tree", stage.Tree.Short())
	return h, nil
}

// LogEntry is one commit in a branch history.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Log walks the current branch from its tip following parent links,
// returning up to limit commits newest first. A limit of zero or less means
// no limit. A missing commit ends the history.
func (r *Repo) Log(limit int) ([]LogEntry, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	current, err := r.LoadRef(cfg.Branch)
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}

	var entries []LogEntry
	seen := make(map[object.Hash]bool)
	for current != "" && (limit <= 0 || len(entries) < limit) {
		if seen[current] {
			return nil, fmt.Errorf("log: parent cycle at %s", current.Short())
		}
		seen[current] = true

		c, err := r.Store.ReadCommit(current)
		if err != nil {
			if errors.Is(err, object.ErrNotFound) {
				break
			}
			return nil, fmt.Errorf("log: read commit %s: %w", current.Short(), err)
		}
		entries = append(entries, LogEntry{Hash: current, Commit: c})
		current = c.Parent
	}
	return entries, nil
}
