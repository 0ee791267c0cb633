package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudvtl/tapekeeper/pkg/cli"
	"github.com/cloudvtl/tapekeeper/pkg/config"
	"github.com/cloudvtl/tapekeeper/pkg/tapefile"
)

var listFlags struct {
	statuses []string
	output   string
	format   string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Inventory virtual tapes in a region",
	Long: `List every virtual tape visible in the region, optionally filtered
by status, with best-effort detail enrichment (creation date, used
bytes) for tapes attached to a gateway.

Examples:
  # All tapes
  tapekeeper list --region us-east-1

  # Only archived tapes
  tapekeeper list --region us-east-1 --status ARCHIVED

  # Save barcodes for a later targeted delete
  tapekeeper list --region us-east-1 --status ARCHIVED --output tapes.txt`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringSliceVar(&listFlags.statuses, "status", nil, "filter by tape status (repeatable or comma-separated)")
	listCmd.Flags().StringVarP(&listFlags.output, "output", "o", "", "write matched tape barcodes to a file")
	listCmd.Flags().StringVar(&listFlags.format, "format", "text", "output format (text, json)")
}

func runList(cmd *cobra.Command, args []string) error {
	statusFilter, err := config.ValidateStatusFilter(listFlags.statuses)
	if err != nil {
		return cli.NewUsageError("%v", err)
	}

	ctx := cli.SetupSignalHandler()
	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	inv, err := app.engine.ListAll(ctx, statusFilter)
	if err != nil {
		return &cli.CommandError{Command: "list", Err: err}
	}
	app.recordRun(ctx, inv.Result)

	if listFlags.output != "" {
		hdr := tapefile.Header{
			GeneratedAt:  time.Now(),
			Region:       app.cfg.AWS.Region,
			StatusFilter: statusFilter,
			TotalAll:     inv.TotalAll,
			Matched:      len(inv.Tapes),
		}
		if err := tapefile.WriteFile(listFlags.output, hdr, inv.Tapes); err != nil {
			return &cli.CommandError{Command: "list", Err: err}
		}
		fmt.Fprintf(os.Stderr, "Wrote %d tape(s) to %s\n", len(inv.Tapes), listFlags.output)
	}

	if cli.OutputFormat(listFlags.format) == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, inv)
	}
	renderInventory(os.Stdout, inv, statusFilter)
	return nil
}
