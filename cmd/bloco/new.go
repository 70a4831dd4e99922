package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNewCmd(a *app) *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a note and make it active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			note, err := store.CreateNote(ctx)
			if err != nil {
				return fmt.Errorf("create note: %w", err)
			}
			if changed(cmd, "title") || changed(cmd, "content") {
				if _, err := store.SaveActiveContent(ctx, title, content); err != nil {
					return fmt.Errorf("save note: %w", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created note %s\n", note.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Note title")
	cmd.Flags().StringVar(&content, "content", "", "Note content")
	return cmd
}
