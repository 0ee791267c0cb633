package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cloudvtl/tapekeeper/pkg/audit"
	"github.com/cloudvtl/tapekeeper/pkg/cli"
	"github.com/cloudvtl/tapekeeper/pkg/config"
)

var historyFlags struct {
	limit  int
	format string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs from the local audit store",
	Long: `Show the most recent tapekeeper runs recorded in the local audit
database: when they ran, what mode, and what they deleted. Purely
local; no AWS calls are made.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "maximum number of runs to show")
	historyCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format (text, json)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	// History never talks to AWS, so config validation (which requires a
	// region) is skipped.
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if !cfg.Audit.Enabled {
		return fmt.Errorf("audit store is disabled in configuration")
	}

	store, err := audit.Open(audit.Config{
		Path:        cfg.Audit.Path,
		BusyTimeout: cfg.Audit.BusyTimeout,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cli.SetupSignalHandler()
	runs, err := store.RecentRuns(ctx, historyFlags.limit)
	if err != nil {
		return &cli.CommandError{Command: "history", Err: err}
	}

	if cli.OutputFormat(historyFlags.format) == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tMODE\tREGION\tEXECUTE\tFOUND\tDELETED\tPLANNED\tFAILED\tRUN ID")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%d\t%d\t%d\t%d\t%s\n",
			r.Started.Local().Format("2006-01-02 15:04:05"),
			r.Mode, r.Region, r.Execute,
			r.Found, r.Deleted, r.WouldDelete, r.Failed, r.RunID)
	}
	return tw.Flush()
}
