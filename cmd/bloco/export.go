package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/bloco/pkg/export"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all notes to a directory as Markdown, HTML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			paths, err := export.New(export.WithLogger(a.logger)).WriteDir(ctx, out, f, store.Snapshot())
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "md", "Output format: md, html or json")
	cmd.Flags().StringVarP(&out, "out", "o", "export", "Output directory")
	return cmd
}
