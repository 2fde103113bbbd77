package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tgienger/ptn/internal/store"
	"github.com/tgienger/ptn/internal/ui/views"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [query]",
		Short: "Print tasks matching query with their notes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return writeList(cmd.OutOrStdout(), s.store, query)
		},
	}
}

func writeList(w io.Writer, st *store.Store, query string) error {
	tasks := st.Search(query)
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "no tasks")
		return err
	}

	var b strings.Builder
	for _, t := range tasks {
		mark := " "
		if t.Approved {
			mark = "✓"
		}
		notes := st.Notes(t.ID)
		fmt.Fprintf(&b, "[%s] %s (%.0f%%)\n", mark, views.Plain(t.Text), st.Progress(t.ID)*100)
		for i, n := range notes {
			box := " "
			if n.Completed {
				box = "x"
			}
			fmt.Fprintf(&b, "    %d. [%s] %s\n", i+1, box, views.Plain(n.Text))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
