package main

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"

	"github.com/odvcencio/prose/pkg/llm"
	"github.com/odvcencio/prose/pkg/parser"
	"github.com/odvcencio/prose/pkg/repo"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <src>",
		Short: "Generate missing documentation and tests and stage the result",
		Long: `add builds the tree of <src>, a directory relative to the base path,
generating the comments and tests that are missing. It exits with status 1
while the staged tree differs from the tip of the current branch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			gen, err := a.generator(r)
			if err != nil {
				return err
			}

			res, err := r.Add(cmd.Context(), args[0], gen)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Staged {
				fmt.Fprintf(out, "staged %s\n", res.Tree)
			} else {
				fmt.Fprintf(out, "built %s (nothing generated)\n", res.Tree)
			}
			if res.Pending {
				return repo.ErrPending
			}
			return nil
		},
	}
}

// generator wires the configured chat endpoint to the repository's language.
// A missing API key only fails once a request is actually needed, so fully
// cached trees build offline. That failure is permanent and not retried.
func (a *app) generator(r *repo.Repo) (*llm.Generator, error) {
	prompter, ok := r.Parser.(parser.Prompter)
	if !ok {
		return nil, fmt.Errorf("parser %T cannot build prompts", r.Parser)
	}
	settings, err := r.ReadSettings()
	if err != nil {
		return nil, err
	}

	var completer llm.Completer
	client, err := llm.NewOpenAI(settings.OpenAIConfig())
	if err != nil {
		unavailable := err
		completer = llm.CompleterFunc(func(context.Context, string) (string, error) {
			return "", backoff.Permanent(unavailable)
		})
		a.logger.Debug("language model unavailable", "error", err)
	} else {
		completer = client
	}
	return llm.NewGenerator(completer, prompter, settings.GeneratorOptions(a.logger)), nil
}
