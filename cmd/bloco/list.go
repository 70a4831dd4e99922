package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/bloco/pkg/view"
)

func newListCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		term   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printList(cmd, term, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().StringVar(&term, "search", "", "Only notes whose title or content contains this text")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "List notes matching a term (case-insensitive)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printList(cmd, strings.Join(args, " "), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func (a *app) printList(cmd *cobra.Command, term string, asJSON bool) error {
	ctx := cmd.Context()
	store, err := a.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	snap := store.Snapshot()
	summaries := view.List(snap.Notes, snap.ActiveID, term)
	out := cmd.OutOrStdout()

	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summaries)
	}
	printSummaries(out, summaries)
	return nil
}

func printSummaries(out io.Writer, summaries []view.Summary) {
	if len(summaries) == 0 {
		fmt.Fprintln(out, view.EmptyMessage)
		return
	}
	for _, s := range summaries {
		marker := " "
		if s.Active {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s  %s  %s\n", marker, s.ID, s.Title, s.Updated)
		fmt.Fprintf(out, "    %s\n", s.Snippet)
	}
}
