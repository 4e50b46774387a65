package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/neo-explorer/internal/database"
)

const sessionPrompt = "neo> "

func interactiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Load the data once and run inspect and query commands at a prompt",
		Long: `Loads both extracts once, then reads commands from stdin until quit, exit or EOF.

Each line is split like a shell command line and run as "inspect" or "query"
with the same flags as the top-level commands. An error on one line is
printed and the session continues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := loadDatabase(newLogger())
			if err != nil {
				return err
			}
			return runSession(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), db)
		},
	}
}

// runSession reads command lines from in and runs them against db until
// quit, exit, EOF or ctx is done.
func runSession(ctx context.Context, in io.Reader, out io.Writer, db *database.Database) error {
	preloaded := func(*slog.Logger) (*database.Database, error) { return db, nil }

	scanner := bufio.NewScanner(in)
	for {
		_, _ = fmt.Fprint(out, sessionPrompt)
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		args, err := shellquote.Split(scanner.Text())
		if err != nil {
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		var sub *cobra.Command
		switch args[0] {
		case "quit", "exit":
			return nil
		case "help":
			printSessionHelp(out)
			continue
		case "inspect":
			sub = inspectCmd(preloaded)
		case "query":
			sub = queryCmd(preloaded)
		default:
			_, _ = fmt.Fprintf(out, "unknown command %q (try help)\n", args[0])
			continue
		}

		sub.SetArgs(args[1:])
		sub.SetOut(out)
		sub.SetErr(out)
		sub.SilenceUsage = true
		sub.SilenceErrors = true
		if err := sub.ExecuteContext(ctx); err != nil {
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
			printHints(out, err)
		}
	}
}

func printSessionHelp(out io.Writer) {
	_, _ = fmt.Fprint(out, `Commands:
  inspect (--pdes DES | --name NAME) [--verbose]
  query [--date D] [--start-date D] [--end-date D]
        [--min-distance X] [--max-distance X] [--min-velocity X] [--max-velocity X]
        [--min-diameter X] [--max-diameter X] [--hazardous | --not-hazardous]
        [--limit N] [--outfile PATH]
  help
  quit | exit
`)
}
