package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ironsheep/layout-tools-mcp/internal/books"
)

func newBooksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List the books below the resource path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := books.NewStore(a.mgr.Get().ResourcePath).List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPAGES\tDIR")
			for _, e := range entries {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", e.Book.ID, e.Book.Name, len(e.Book.Pages), e.Dir)
			}
			return w.Flush()
		},
	}
}
