package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/neo-explorer/internal/models"
)

func inspectCmd(load dbLoader) *cobra.Command {
	var (
		pdes    string
		name    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show a near-Earth object by primary designation or name",
		Example: `  neo-explorer inspect --pdes 433
  neo-explorer inspect --name Halley --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := load(newLogger())
			if err != nil {
				return err
			}

			var neo *models.NearEarthObject
			if cmd.Flags().Changed("pdes") {
				neo = db.GetByDesignation(pdes)
			} else {
				neo = db.GetByName(name)
			}

			out := cmd.OutOrStdout()
			if neo == nil {
				_, _ = fmt.Fprintln(out, "No matching NEOs exist in the database.")
				return nil
			}

			_, _ = fmt.Fprintln(out, neo)
			if verbose {
				for _, ca := range db.ApproachesOf(neo) {
					_, _ = fmt.Fprintf(out, "- %s\n", models.Record{Approach: ca, NEO: neo})
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pdes, "pdes", "", "primary designation to look up")
	cmd.Flags().StringVar(&name, "name", "", "name to look up")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also list every close approach")
	cmd.MarkFlagsMutuallyExclusive("pdes", "name")
	cmd.MarkFlagsOneRequired("pdes", "name")

	return cmd
}
