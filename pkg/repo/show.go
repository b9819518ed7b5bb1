package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/prose/pkg/object"
	"github.com/odvcencio/prose/pkg/tree"
)

// Cat reads any stored object, decoded by its stored type.
func (r *Repo) Cat(digest string) (object.Object, error) {
	h := object.Hash(strings.TrimSpace(digest))
	if !h.Valid() {
		return nil, fmt.Errorf("cat: invalid digest %q", digest)
	}
	obj, err := r.Store.ReadObject(h)
	if err != nil {
		return nil, fmt.Errorf("cat: %w", err)
	}
	return obj, nil
}

// UnitText is a generated comment or test of one class or method unit.
type UnitText struct {
	tree.Leaf
	Text string
}

// Show lists the generated text of every unit in the stage.
func (r *Repo) Show() (object.Hash, []UnitText, error) {
	stage, err := r.requireStage()
	if err != nil {
		return "", nil, err
	}
	var units []UnitText
	err = tree.WalkUnits(r.Store, stage.Tree, func(l tree.Leaf) error {
		text, err := r.leafContent(l.Entry.Digest)
		if err != nil {
			return err
		}
		units = append(units, UnitText{Leaf: l, Text: string(text)})
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("show: %w", err)
	}
	return stage.Tree, units, nil
}
