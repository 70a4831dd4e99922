package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/bloco/pkg/core"
	"github.com/aretw0/bloco/pkg/export"
	"github.com/aretw0/bloco/pkg/view"
)

func newShowCmd(a *app) *cobra.Command {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print a note (the active one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			snap := store.Snapshot()
			var (
				note core.Note
				ok   bool
			)
			if len(args) == 1 {
				note, ok = snap.Find(args[0])
				if !ok {
					return fmt.Errorf("%w: %s", core.ErrNotFound, args[0])
				}
			} else if note, ok = snap.Active(); !ok {
				return fmt.Errorf("no active note")
			}

			out := cmd.OutOrStdout()
			if asHTML {
				page, err := export.New(export.WithLogger(a.logger)).HTML(note)
				if err != nil {
					return err
				}
				_, err = out.Write(page)
				return err
			}

			fmt.Fprintf(out, "# %s\n", note.Title)
			fmt.Fprintf(out, "%s · %s\n\n", view.FormatUpdated(note.UpdatedAt), view.Meta(note.Content))
			fmt.Fprintln(out, note.Content)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render the content from Markdown to an HTML page")
	return cmd
}
