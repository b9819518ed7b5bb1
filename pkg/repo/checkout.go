package repo

import (
	"fmt"
)

// Checkout switches the current branch to name.
//
// When name already has a ref, the stage is replaced by the tree of the
// commit it points at. Otherwise the branch is created from the current
// branch by copying its ref, and the stage is left alone. The config is
// updated last, after the ref and stage bookkeeping succeeded.
func (r *Repo) Checkout(name string) error {
	if err := validateRefName(name); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	cfg, err := r.ReadConfig()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	ref, err := r.LoadRef(name)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if ref != "" {
		_, c, err := r.tip(name)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		if c != nil {
			if err := r.WriteStage(&Stage{Tree: c.TreeHash, BasePath: c.BasePath}); err != nil {
				return fmt.Errorf("checkout: %w", err)
			}
		}
	} else {
		cur, err := r.LoadRef(cfg.Branch)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		if cur != "" {
			if err := r.SaveRef(name, cur); err != nil {
				return fmt.Errorf("checkout: %w", err)
			}
		}
	}

	cfg.Branch = name
	if err := r.WriteConfig(cfg); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	r.logger().Info("switched branch", "branch", name, "commit", ref.Short())
	return nil
}
