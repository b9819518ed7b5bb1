// Package repo implements the prose repository: the object store under
// .prose/, the branch refs, the single stage record and the operations the
// command line drives (add, commit, checkout, status, merge).
package repo

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/odvcencio/prose/pkg/object"
	"github.com/odvcencio/prose/pkg/parser"
)

// DirName is the name of the repository metadata directory.
const DirName = ".prose"

// Repo represents an opened prose repository.
type Repo struct {
	RootDir  string        // working directory root
	ProseDir string        // .prose/ directory
	Store    *object.Store // content-addressed object store
	Parser   parser.Parser // source language support
	Logger   *slog.Logger
}

func (r *Repo) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// writeFileAtomic replaces path with data via a temp file in the same
// directory and a rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-tmp-*")
	if err != nil {
		return fmt.Errorf("tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
