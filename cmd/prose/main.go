package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/prose/pkg/repo"
)

const version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries state shared by every command.
type app struct {
	logLevel string
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "prose",
		Short: "Document and test a source tree with generated Javadoc and JUnit",
		Long: `prose parses a source tree, asks a language model for the comments and
tests that are missing, and tracks the result in a content-addressed store
under .prose/. Unchanged files and units are never sent to the model twice.

"prose add" exits non-zero while generated documentation or tests are not
committed, so it can gate a CI pipeline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(a.logLevel)
			if err != nil {
				return err
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newCommitCmd(a))
	root.AddCommand(newStatusCmd(a))
	root.AddCommand(newDiffCmd(a))
	root.AddCommand(newMergeCmd(a))
	root.AddCommand(newCheckoutCmd(a))
	root.AddCommand(newBranchCmd(a))
	root.AddCommand(newLogCmd(a))
	root.AddCommand(newCatCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newConfigCmd(a))
	return root
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return exitCode(root.ExecuteContext(ctx), stderr)
}

// exitCode reports err and maps it to an exit status. Outcomes that leave
// nothing to do exit cleanly; pending generated content fails so CI stops.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, repo.ErrNothingStaged),
		errors.Is(err, repo.ErrNothingToCommit),
		errors.Is(err, repo.ErrNothingToAdd),
		errors.Is(err, repo.ErrCurrentBranch):
		fmt.Fprintln(stderr, err)
		return 0
	default:
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q", s)
	}
	return level, nil
}

func (a *app) openRepo() (*repo.Repo, error) {
	r, err := repo.Open(".")
	if err != nil {
		return nil, err
	}
	r.Logger = a.logger
	return r, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "prose %s\n", version)
		},
	}
}
