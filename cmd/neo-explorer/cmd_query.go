package main

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ajitpratap0/neo-explorer/internal/filters"
	"github.com/ajitpratap0/neo-explorer/internal/write"
)

func queryCmd(load dbLoader) *cobra.Command {
	var (
		limit   int
		outfile string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Find close approaches matching all given criteria",
		Long: `Prints close approaches, in load order, that satisfy every criterion given.

Without --outfile at most --limit results are printed (default from
query.default_limit). With --outfile every match is written unless --limit
is set; the file extension (.csv or .json) selects the format.`,
		Example: `  neo-explorer query --date 2020-01-01
  neo-explorer query --start-date 2020-01-01 --end-date 2020-12-31 --max-distance 0.1 --hazardous
  neo-explorer query --min-diameter 1 --outfile big.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			criteria, err := criteriaFromFlags(cmd.Flags())
			if err != nil {
				return err
			}

			n := limit
			if !cmd.Flags().Changed("limit") {
				n = 0
				if outfile == "" {
					n = defaultLimit()
				}
			}

			runID := uuid.NewString()
			logger := newLogger().With("run_id", runID)

			db, err := load(logger)
			if err != nil {
				return err
			}

			fs := filters.Create(criteria)
			logger.Debug("query: running", "filters", fmt.Sprint(fs), "limit", n, "outfile", outfile)
			results := filters.Limit(db.Query(fs), n)

			if outfile != "" {
				written, writeErr := write.Write(outfile, results)
				if writeErr != nil {
					return errors.Wrap(writeErr, "query")
				}
				logger.Info("query: results written", "path", outfile, "count", written)
				pterm.Info.Printf("Wrote %d close approaches to %s\n", written, outfile)
				return nil
			}

			out := cmd.OutOrStdout()
			count := 0
			for r := range results {
				_, _ = fmt.Fprintln(out, r)
				count++
			}
			if count == 0 {
				_, _ = fmt.Fprintln(out, "No matching close approaches.")
			}
			logger.Debug("query: done", "count", count)
			return nil
		},
	}

	f := cmd.Flags()
	f.String("date", "", "only approaches on this date (YYYY-MM-DD)")
	f.String("start-date", "", "only approaches on or after this date (YYYY-MM-DD)")
	f.String("end-date", "", "only approaches on or before this date (YYYY-MM-DD)")
	f.Float64("min-distance", 0, "minimum approach distance in au")
	f.Float64("max-distance", 0, "maximum approach distance in au")
	f.Float64("min-velocity", 0, "minimum relative velocity in km/s")
	f.Float64("max-velocity", 0, "maximum relative velocity in km/s")
	f.Float64("min-diameter", 0, "minimum object diameter in km")
	f.Float64("max-diameter", 0, "maximum object diameter in km")
	f.Bool("hazardous", false, "only potentially hazardous objects")
	f.Bool("not-hazardous", false, "only objects that are not potentially hazardous")
	f.IntVarP(&limit, "limit", "n", 0, "maximum number of results (0 = no limit)")
	f.StringVarP(&outfile, "outfile", "o", "", "write results to this .csv or .json file")
	cmd.MarkFlagsMutuallyExclusive("hazardous", "not-hazardous")

	return cmd
}

// criteriaFromFlags turns explicitly set flags into query criteria. A flag
// left at its default sets nothing, so --max-distance 0 is still a real bound.
func criteriaFromFlags(flags *pflag.FlagSet) (filters.Criteria, error) {
	var c filters.Criteria

	dates := []struct {
		flag string
		dst  **time.Time
	}{
		{"date", &c.Date},
		{"start-date", &c.StartDate},
		{"end-date", &c.EndDate},
	}
	for _, d := range dates {
		if !flags.Changed(d.flag) {
			continue
		}
		raw, err := flags.GetString(d.flag)
		if err != nil {
			return c, err
		}
		parsed, err := filters.ParseDate(raw)
		if err != nil {
			return c, errors.Wrapf(err, "--%s", d.flag)
		}
		*d.dst = &parsed
	}

	bounds := []struct {
		flag string
		dst  **float64
	}{
		{"min-distance", &c.DistanceMin},
		{"max-distance", &c.DistanceMax},
		{"min-velocity", &c.VelocityMin},
		{"max-velocity", &c.VelocityMax},
		{"min-diameter", &c.DiameterMin},
		{"max-diameter", &c.DiameterMax},
	}
	for _, b := range bounds {
		if !flags.Changed(b.flag) {
			continue
		}
		v, err := flags.GetFloat64(b.flag)
		if err != nil {
			return c, err
		}
		*b.dst = &v
	}

	switch {
	case flags.Changed("hazardous"):
		h, err := flags.GetBool("hazardous")
		if err != nil {
			return c, err
		}
		c.Hazardous = &h
	case flags.Changed("not-hazardous"):
		nh, err := flags.GetBool("not-hazardous")
		if err != nil {
			return c, err
		}
		h := !nh
		c.Hazardous = &h
	}

	return c, nil
}
