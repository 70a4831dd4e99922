package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the active note",
		Long:  `Delete permanently removes the active note. The most recently updated remaining note becomes active.`,
		Args:  cobra.NoArgs,
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

			confirmed := yes
			if !yes {
				fmt.Fprintf(cmd.ErrOrStderr(), "Delete %q? [y/N] ", active.Title)
				answer, err := readAnswer(cmd.InOrStdin())
				if err != nil {
					return err
				}
				reply := strings.ToLower(strings.TrimSpace(answer.Value))
				confirmed = !answer.Aborted && (reply == "y" || reply == "yes")
			}

			deleted, err := store.DeleteActive(ctx, confirmed)
			if err != nil {
				return fmt.Errorf("delete note: %w", err)
			}
			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "Delete cancelled")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", active.ID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
