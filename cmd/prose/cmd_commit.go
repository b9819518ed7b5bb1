package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCommitCmd(a *app) *cobra.Command {
	var merge bool

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record the stage on the current branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}

			h, err := r.Commit(merge)
			if err != nil {
				return err
			}
			branch, err := r.CurrentBranch()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s]\n", branch, h.Short())
			return nil
		},
	}
	cmd.Flags().BoolVar(&merge, "merge", false, "write the staged comments and tests into the working tree first")
	return cmd
}

func newMergeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Write the staged comments and tests into the working tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			written, err := r.MergeToDisk()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range written {
				fmt.Fprintf(out, "merged %s\n", p)
			}
			if len(written) == 0 {
				fmt.Fprintln(out, "already up to date")
			}
			return nil
		},
	}
}

func newLogCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the commits of the current branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			entries, err := r.Log(limit)
			if err != nil {
				return err
			}

			pal := newPalette(cmd.OutOrStdout())
			out := cmd.OutOrStdout()
			for _, e := range entries {
				pal.title.Fprintf(out, "commit %s\n", e.Hash)
				fmt.Fprintf(out, "tree      %s\n", e.Commit.TreeHash)
				fmt.Fprintf(out, "base_path %s\n", e.Commit.BasePath)
				if e.Commit.Parent != "" {
					fmt.Fprintf(out, "parent    %s\n", e.Commit.Parent)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "limit the number of commits shown (0 shows all)")
	return cmd
}
