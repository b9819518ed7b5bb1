package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/prose/pkg/object"
	"github.com/odvcencio/prose/pkg/parser/java"
)

// Init creates a new prose repository at path. It creates the .prose/
// directory structure (objects/, refs/heads/) and a default config on the
// "main" branch with the base path set to the repository root. Returns an
// error if a .prose/ directory already exists.
func Init(path string) (*Repo, error) {
	proseDir := filepath.Join(path, DirName)

	if _, err := os.Stat(proseDir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", proseDir)
	}

	dirs := []string{
		filepath.Join(proseDir, "objects"),
		filepath.Join(proseDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	r := newRepo(path, proseDir)
	if err := r.WriteConfig(DefaultConfig()); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return r, nil
}

// Open searches upward from path for a .prose/ directory and opens the
// repository. Returns an error if no .prose/ directory is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		proseDir := filepath.Join(cur, DirName)
		info, err := os.Stat(proseDir)
		if err == nil && info.IsDir() {
			return newRepo(cur, proseDir), nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: not a prose repository (or any parent up to /)")
		}
		cur = parent
	}
}

func newRepo(root, proseDir string) *Repo {
	return &Repo{
		RootDir:  root,
		ProseDir: proseDir,
		Store:    object.NewStore(proseDir),
		Parser:   java.New(),
	}
}
