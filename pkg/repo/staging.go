package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/prose/pkg/object"
)

// Stage is the tree that would be committed right now, with the source path
// it was built from, relative to the base path.
type Stage struct {
	Tree     object.Hash `json:"tree"`
	BasePath string      `json:"base_path"`
}

func (r *Repo) indexPath() string {
	return filepath.Join(r.ProseDir, "index")
}

// ReadStage loads .prose/index. It returns nil when nothing is staged.
func (r *Repo) ReadStage() (*Stage, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read stage: %w", err)
	}
	var s Stage
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("read stage: unmarshal: %w", err)
	}
	if !s.Tree.Valid() {
		return nil, fmt.Errorf("read stage: malformed tree hash %q", s.Tree)
	}
	return &s, nil
}

// WriteStage atomically replaces .prose/index.
func (r *Repo) WriteStage(s *Stage) error {
	if s == nil || !s.Tree.Valid() {
		return errors.New("write stage: no tree")
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("write stage: marshal: %w", err)
	}
	if err := writeFileAtomic(r.indexPath(), append(data, '\n')); err != nil {
		return fmt.Errorf("write stage: %w", err)
	}
	return nil
}

// requireStage returns the current stage or ErrNothingStaged.
func (r *Repo) requireStage() (*Stage, error) {
	s, err := r.ReadStage()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNothingStaged
	}
	return s, nil
}
