package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/tgienger/ptn/internal/models"
	"github.com/tgienger/ptn/internal/store"
)

// exportDoc is the shape printed by the export command
type exportDoc struct {
	Tasks []models.Task           `json:"tasks"`
	Notes map[int64][]models.Note `json:"notes"`
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the saved tasks and notes as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			return writeExport(cmd.OutOrStdout(), s.store)
		},
	}
}

func writeExport(w io.Writer, st *store.Store) error {
	snap := st.Snapshot()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportDoc{Tasks: snap.Tasks, Notes: snap.Notes})
}
