package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/prose/pkg/object"
)

func (r *Repo) refPath(name string) string {
	return filepath.Join(r.ProseDir, "refs", "heads", name)
}

// validateRefName rejects names that would escape refs/heads/ or collide
// with temp files.
func validateRefName(name string) error {
	switch {
	case name == "":
		return errors.New("branch name is required")
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("branch name %q contains a path separator", name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("branch name %q starts with a dot", name)
	case strings.TrimSpace(name) != name:
		return fmt.Errorf("branch name %q has surrounding whitespace", name)
	}
	return nil
}

// LoadRef returns the commit the named branch points at, or "" when the
// branch has no ref yet.
func (r *Repo) LoadRef(name string) (object.Hash, error) {
	if err := validateRefName(name); err != nil {
		return "", fmt.Errorf("load ref: %w", err)
	}
	data, err := os.ReadFile(r.refPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("load ref %q: %w", name, err)
	}
	h := object.Hash(strings.TrimSpace(string(data)))
	if !h.Valid() {
		return "", fmt.Errorf("load ref %q: malformed hash %q", name, h)
	}
	return h, nil
}

// SaveRef points the named branch at h. The last writer wins.
func (r *Repo) SaveRef(name string, h object.Hash) error {
	if err := validateRefName(name); err != nil {
		return fmt.Errorf("save ref: %w", err)
	}
	if !h.Valid() {
		return fmt.Errorf("save ref %q: invalid hash %q", name, h)
	}
	if err := writeFileAtomic(r.refPath(name), []byte(string(h)+"\n")); err != nil {
		return fmt.Errorf("save ref %q: %w", name, err)
	}
	return nil
}

// tip returns the commit at the tip of the named branch, or nil when the
// branch has no ref or its commit is missing from the store.
func (r *Repo) tip(branch string) (object.Hash, *object.CommitObj, error) {
	ref, err := r.LoadRef(branch)
	if err != nil || ref == "" {
		return "", nil, err
	}
	c, err := r.Store.ReadCommit(ref)
	if errors.Is(err, object.ErrNotFound) {
		r.logger().Warn("branch points at a missing commit", "branch", branch, "commit", ref.Short())
		return ref, nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	return ref, c, nil
}
