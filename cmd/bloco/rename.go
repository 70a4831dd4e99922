package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/bloco/pkg/core"
)

func newRenameCmd(a *app) *cobra.Command {
	var prompt bool

	cmd := &cobra.Command{
		Use:   "rename [title]",
		Short: "Rename the active note",
		Long: `Rename the active note. Without a title argument (or with --prompt) the
title is read from stdin; end of input without a line aborts. An empty
title falls back to the placeholder.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			active, ok := store.Active()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No active note")
				return nil
			}

			answer := core.Submitted(strings.Join(args, " "))
			if prompt || len(args) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "New title for %q: ", active.Title)
				answer, err = readAnswer(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			renamed, err := store.RenameActive(ctx, answer)
			if err != nil {
				return fmt.Errorf("rename note: %w", err)
			}
			if !renamed {
				fmt.Fprintln(cmd.OutOrStdout(), "Rename cancelled")
				return nil
			}
			active, _ = store.Active()
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", active.ID, active.Title)
			return nil
		},
	}
	cmd.Flags().BoolVar(&prompt, "prompt", false, "Read the title from stdin")
	return cmd
}

// readAnswer reads one line. End of input before any text is an abort.
func readAnswer(r io.Reader) (core.Answer, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return core.Answer{}, fmt.Errorf("read input: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return core.Aborted, nil
	}
	return core.Submitted(strings.TrimRight(line, "\r\n")), nil
}
