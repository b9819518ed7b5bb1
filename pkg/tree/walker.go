package tree

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/odvcencio/prose/pkg/object"
)

// TreeReader is the part of the object store the walker needs.
type TreeReader interface {
	ReadTree(h object.Hash) (*object.TreeObj, error)
}

// Leaf is a comment or test entry reached by a walk.
type Leaf struct {
	Entry object.TreeEntry
	// Dir is the directory of the source file, relative to the walk root.
	Dir string
	// File is the name of the source file the leaf belongs to.
	File string
	// Unit is the class or method composite holding the leaf. It is nil for
	// file-level leaves.
	Unit *object.TreeEntry
}

// Path returns the source file path relative to the walk root.
func (l Leaf) Path() string {
	return filepath.Join(l.Dir, l.File)
}

// Visitor is called for every leaf. A non-nil error stops the walk and is
// returned by it.
type Visitor func(Leaf) error

// Walk visits the file-level comment and test leaves under root, depth first
// in stored entry order. Objects missing from the store are treated as empty.
func Walk(store TreeReader, root object.Hash, visit Visitor) error {
	return walk(store, root, ".", false, visit)
}

// WalkUnits visits the generated comment and test leaves of every class and
// method unit under root.
func WalkUnits(store TreeReader, root object.Hash, visit Visitor) error {
	return walk(store, root, ".", true, visit)
}

func walk(store TreeReader, h object.Hash, dir string, units bool, visit Visitor) error {
	t, ok, err := readTree(store, h)
	if err != nil || !ok {
		return err
	}
	for _, e := range t.Entries {
		switch e.Kind {
		case object.KindTree:
			if err := walk(store, e.Digest, filepath.Join(dir, e.Name), units, visit); err != nil {
				return err
			}
		case object.KindFile:
			if err := walkFile(store, e, dir, units, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

func walkFile(store TreeReader, file object.TreeEntry, dir string, units bool, visit Visitor) error {
	ft, ok, err := readTree(store, file.Digest)
	if err != nil || !ok {
		return err
	}
	for _, e := range ft.Entries {
		switch {
		case e.Kind.IsLeaf() && !units:
			if err := visit(Leaf{Entry: e, Dir: dir, File: file.Name}); err != nil {
				return err
			}
		case e.Kind.IsUnit() && units:
			ut, ok, err := readTree(store, e.Digest)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			unit := e
			for _, le := range ut.Entries {
				if !le.Kind.IsLeaf() {
					continue
				}
				if err := visit(Leaf{Entry: le, Dir: dir, File: file.Name, Unit: &unit}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func readTree(store TreeReader, h object.Hash) (*object.TreeObj, bool, error) {
	t, err := store.ReadTree(h)
	if errors.Is(err, object.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("walk %s: %w", h.Short(), err)
	}
	return t, true, nil
}
