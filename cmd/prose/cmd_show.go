package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/odvcencio/prose/pkg/object"
)

func newCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <digest>",
		Short: "Print a stored object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			obj, err := r.Cat(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch o := obj.(type) {
			case *object.Blob:
				out.Write(o.Data)
				if n := len(o.Data); n > 0 && o.Data[n-1] != '\n' {
					fmt.Fprintln(out)
				}
			case *object.TreeObj:
				for _, e := range o.Entries {
					fmt.Fprintf(out, "%-7s %s %s\n", e.Kind, e.Digest, strconv.Quote(e.Name))
				}
			case *object.CommitObj:
				fmt.Fprintf(out, "tree      %s\n", o.TreeHash)
				fmt.Fprintf(out, "base_path %s\n", o.BasePath)
				if o.Parent != "" {
					fmt.Fprintf(out, "parent    %s\n", o.Parent)
				}
			default:
				return fmt.Errorf("cat: unexpected object %T", obj)
			}
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the generated comment and tests of every staged unit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			root, units, err := r.Show()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			pal := newPalette(out)
			pal.title.Fprintf(out, "stage %s\n\n", root)
			for _, u := range units {
				pal.title.Fprintf(out, "%s %s\n", u.Entry.Kind, u.Entry.Digest)
				fmt.Fprintf(out, "Path: %s\n", u.Path())
				fmt.Fprintf(out, "Signature: %s\n\n", u.Entry.Name)
				fmt.Fprintln(out, u.Text)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
