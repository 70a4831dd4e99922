package main

import (
	"bufio"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/aretw0/bloco/pkg/autosave"
	"github.com/aretw0/bloco/pkg/view"
)

func newEditCmd(a *app) *cobra.Command {
	var (
		title   string
		content string
		follow  bool
	)

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change the title or content of the active note",
		Long: `Edit replaces the title and/or content of the active note.

With --follow, lines read from stdin are appended to the content as they
arrive and saved by the autosave scheduler after each pause in input;
end of input saves immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			active, ok := store.Active()
			if !ok {
				return fmt.Errorf("no active note")
			}
			if changed(cmd, "title") {
				active.Title = title
			}
			if changed(cmd, "content") {
				active.Content = content
			}

			if !follow {
				if _, err := store.SaveActiveContent(ctx, active.Title, active.Content); err != nil {
					return fmt.Errorf("save note: %w", err)
				}
			} else {
				var mu sync.Mutex
				fields := func() (string, string) {
					mu.Lock()
					defer mu.Unlock()
					return active.Title, active.Content
				}
				sched := autosave.New(store, fields,
					autosave.WithInterval(a.cfg.Autosave.Interval),
					autosave.WithLogger(a.logger),
					autosave.WithOnCommit(func(saved bool, err error) {
						if err == nil && saved {
							a.logger.Info("autosaved", "id", active.ID)
						}
					}),
				)

				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					mu.Lock()
					active.Content += scanner.Text() + "\n"
					mu.Unlock()
					sched.OnEdit()
				}
				sched.FlushNow()
				sched.Stop()
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				a.logger.Debug("follow finished", "commits", sched.Commits())
			}

			saved, _ := store.Active()
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", saved.ID, view.Meta(saved.Content))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New content")
	cmd.Flags().BoolVar(&follow, "follow", false, "Append stdin lines to the content with autosave")
	return cmd
}
