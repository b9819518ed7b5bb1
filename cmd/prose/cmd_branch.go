package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBranchCmd(a *app) *cobra.Command {
	var deleteBranch string
	var list bool

	cmd := &cobra.Command{
		Use:   "branch",
		Short: "Show, list, or delete branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if deleteBranch != "" {
				if err := r.DeleteBranch(deleteBranch); err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted branch '%s'\n", deleteBranch)
				return nil
			}

			current, err := r.CurrentBranch()
			if err != nil {
				return err
			}
			if !list {
				fmt.Fprintln(out, current)
				return nil
			}

			branches, err := r.ListBranches()
			if err != nil {
				return err
			}
			pal := newPalette(out)
			for _, b := range branches {
				if b == current {
					pal.added.Fprintf(out, "* %s\n", b)
				} else {
					fmt.Fprintf(out, "  %s\n", b)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&deleteBranch, "delete", "d", "", "delete the named branch")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list all branches")
	return cmd
}

func newCheckoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch>",
		Short: "Switch branches, creating the branch from the current one if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			if err := r.Checkout(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "switched to branch '%s'\n", args[0])
			return nil
		},
	}
}
