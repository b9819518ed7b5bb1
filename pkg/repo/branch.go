package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CurrentBranch returns the branch named in the config.
func (r *Repo) CurrentBranch() (string, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	return cfg.Branch, nil
}

// ListBranches reads .prose/refs/heads/ and returns the branch names sorted
// alphabetically. The current branch is included even before its first
// commit.
func (r *Repo) ListBranches() ([]string, error) {
	current, err := r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	entries, err := os.ReadDir(filepath.Join(r.ProseDir, "refs", "heads"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	names := []string{current}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || e.Name() == current {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// DeleteBranch removes the ref of the named branch. Deleting the current
// branch is refused with ErrCurrentBranch.
func (r *Repo) DeleteBranch(name string) error {
	if err := validateRefName(name); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if current == name {
		return ErrCurrentBranch
	}

	if err := os.Remove(r.refPath(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete branch: branch %q does not exist", name)
		}
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	return nil
}
