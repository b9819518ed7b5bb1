package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/odvcencio/prose/pkg/object"
	"github.com/odvcencio/prose/pkg/repo"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Diff every staged comment and test against the working tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			root, diffs, err := r.Status()
			if err != nil {
				return err
			}
			printDiffs(cmd.OutOrStdout(), root, diffs)
			return nil
		},
	}
}

func newDiffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <digest>",
		Short: "Diff the staged leaf with the given digest (or digest prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			root, diffs, err := r.Diff(args[0])
			if err != nil {
				return err
			}
			printDiffs(cmd.OutOrStdout(), root, diffs)
			return nil
		},
	}
}

func printDiffs(out io.Writer, root object.Hash, diffs []repo.LeafDiff) {
	pal := newPalette(out)
	pal.title.Fprintf(out, "stage %s\n\n", root)
	for _, d := range diffs {
		pal.title.Fprintf(out, "%s %s\n", d.Kind, d.Digest)
		fmt.Fprintf(out, "Path: %s\n\n", d.Path)
		if !d.Changed() {
			fmt.Fprintln(out, "up to date")
			fmt.Fprintln(out)
			continue
		}
		pal.diff(out, d.Diff)
		fmt.Fprintln(out)
	}
}

// palette colours output written to a terminal.
type palette struct {
	title, added, removed, hunk *color.Color
}

func newPalette(w io.Writer) palette {
	enabled := false
	if f, ok := w.(*os.File); ok && os.Getenv("NO_COLOR") == "" {
		enabled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		title:   mk(color.FgYellow),
		added:   mk(color.FgGreen),
		removed: mk(color.FgRed),
		hunk:    mk(color.FgCyan),
	}
}

func (p palette) diff(out io.Writer, text string) {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			p.title.Fprintln(out, line)
		case strings.HasPrefix(line, "@@"):
			p.hunk.Fprintln(out, line)
		case strings.HasPrefix(line, "+"):
			p.added.Fprintln(out, line)
		case strings.HasPrefix(line, "-"):
			p.removed.Fprintln(out, line)
		default:
			fmt.Fprintln(out, line)
		}
	}
}
