package main

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/neo-explorer/internal/database"
	"github.com/ajitpratap0/neo-explorer/internal/models"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show statistics about the loaded database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := loadDatabase(newLogger())
			if err != nil {
				return err
			}

			return pterm.DefaultTable.
				WithHasHeader().
				WithWriter(cmd.OutOrStdout()).
				WithData(statsTable(db.Stats())).
				Render()
		},
	}
}

func statsTable(st database.Stats) pterm.TableData {
	data := pterm.TableData{
		{"Metric", "Value"},
		{"Near-Earth objects", strconv.Itoa(st.NEOs)},
		{"Named objects", strconv.Itoa(st.NamedNEOs)},
		{"Potentially hazardous", strconv.Itoa(st.HazardousNEOs)},
		{"Duplicate designations", strconv.Itoa(st.DuplicateDesignations)},
		{"Close approaches", strconv.Itoa(st.Approaches)},
		{"Linked approaches", strconv.Itoa(st.LinkedApproaches)},
		{"Unlinked approaches", strconv.Itoa(st.UnlinkedApproaches)},
	}
	if st.Approaches > 0 {
		data = append(data,
			[]string{"Earliest approach", st.Earliest.Format(models.TimeLayout)},
			[]string{"Latest approach", st.Latest.Format(models.TimeLayout)},
		)
	}
	return data
}
