package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/bloco/pkg/core"
)

func newSelectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Make a note the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			ok, err := store.SetActive(ctx, args[0])
			if err != nil {
				return fmt.Errorf("select note: %w", err)
			}
			if !ok {
				return fmt.Errorf("%w: %s", core.ErrNotFound, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active note: %s\n", args[0])
			return nil
		},
	}
}
