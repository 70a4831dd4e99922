package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/bloco/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "tui",
		Short:       "Open the terminal editor",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{quietLogs: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			return tui.Run(ctx, store,
				tui.WithInterval(a.cfg.Autosave.Interval),
				tui.WithLogger(a.logger),
			)
		},
	}
}
