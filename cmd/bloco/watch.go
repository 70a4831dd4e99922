package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	bridge "github.com/aretw0/bloco/pkg/adapters/lifecycle"
	"github.com/aretw0/bloco/pkg/core"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload and print the notes whenever another process changes them",
		Long:  `Watch follows the storage of the fs adapter and reloads when another process writes it. Stop with Ctrl+C.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			store, err := a.openStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			watchable, ok := store.KV().(core.Watchable)
			if !ok {
				return fmt.Errorf("adapter %s does not support watch", a.cfg.Storage.Adapter)
			}
			keyEvents, err := watchable.Watch(ctx, store.Key())
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}

			notes := bridge.NewSource(store.Watch(ctx))
			keys := bridge.NewKeySource(keyEvents)
			if err := notes.Start(ctx); err != nil {
				return err
			}
			if err := keys.Start(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", store.Key())
			for {
				select {
				case e, ok := <-keys.Events():
					if !ok {
						return nil
					}
					if ke, isKey := e.(core.KeyEvent); isKey && ke.Type != core.KeyWritten {
						continue
					}
					a.logger.Debug("storage changed", "event", e.String())
					if err := store.Reload(ctx); err != nil {
						a.logger.Warn("reload failed", "error", err)
					}
				case e, ok := <-notes.Events():
					if !ok {
						return nil
					}
					fmt.Fprintln(out, e.String())
					if ev, isNote := e.(core.Event); isNote {
						if active, ok := ev.Snapshot.Active(); ok {
							fmt.Fprintf(out, "  active: %s %q\n", active.ID, active.Title)
						}
					}
				}
			}
		},
	}
}
