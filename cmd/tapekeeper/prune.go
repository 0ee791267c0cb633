package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudvtl/tapekeeper/pkg/cli"
)

var pruneFlags struct {
	days    int
	execute bool
	format  string
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete tapes older than a threshold",
	Long: `Identify tapes older than the threshold and delete them. Without
--execute this is a dry run: the deletion plan is printed and nothing
is touched.

Archived tapes without a creation date are assumed to predate any
reasonable threshold and are included in the plan; active tapes without
a creation date are left alone.

Examples:
  # Show what a 90-day prune would delete
  tapekeeper prune --region us-east-1 --days 90

  # Delete them
  tapekeeper prune --region us-east-1 --days 90 --execute`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().IntVar(&pruneFlags.days, "days", 0, "age threshold in days (default from config)")
	pruneCmd.Flags().BoolVar(&pruneFlags.execute, "execute", false, "actually delete; omit for a dry run")
	pruneCmd.Flags().StringVar(&pruneFlags.format, "format", "text", "output format (text, json)")
}

func runPrune(cmd *cobra.Command, args []string) error {
	if pruneFlags.days < 0 {
		return cli.NewUsageError("--days must be positive, got %d", pruneFlags.days)
	}

	ctx := cli.SetupSignalHandler()
	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	days := resolveDays(app.cfg, pruneFlags.days)

	result, err := app.engine.DeleteExpired(ctx, days, pruneFlags.execute)
	if err != nil {
		return &cli.CommandError{Command: "prune", Err: err}
	}
	app.recordRun(ctx, result)

	if cli.OutputFormat(pruneFlags.format) == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, result)
	}
	renderResult(os.Stdout, result)
	return nil
}
