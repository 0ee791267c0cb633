package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudvtl/tapekeeper/pkg/cli"
	"github.com/cloudvtl/tapekeeper/pkg/tapefile"
)

var deleteFlags struct {
	tapes    []string
	tapeFile string
	execute  bool
	format   string
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete specific tapes by barcode or ARN",
	Long: `Delete the named tapes regardless of age. Tapes come from --tapes,
from a file written by 'list --output', or both. Identifiers may be
barcodes or full tape ARNs. Identifiers matching no tape are reported
and do not stop the rest.

Without --execute this is a dry run.

Examples:
  tapekeeper delete --region us-east-1 --tapes VTL001,VTL002
  tapekeeper delete --region us-east-1 --tape-file tapes.txt --execute`,
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().StringSliceVar(&deleteFlags.tapes, "tapes", nil, "tape barcodes or ARNs (repeatable or comma-separated)")
	deleteCmd.Flags().StringVar(&deleteFlags.tapeFile, "tape-file", "", "file of tape identifiers, one per line")
	deleteCmd.Flags().BoolVar(&deleteFlags.execute, "execute", false, "actually delete; omit for a dry run")
	deleteCmd.Flags().StringVar(&deleteFlags.format, "format", "text", "output format (text, json)")
}

func runDelete(cmd *cobra.Command, args []string) error {
	if len(deleteFlags.tapes) == 0 && deleteFlags.tapeFile == "" {
		return cli.NewUsageError("provide tapes with --tapes or --tape-file")
	}

	identifiers := append([]string(nil), deleteFlags.tapes...)
	if deleteFlags.tapeFile != "" {
		fromFile, err := tapefile.ReadFile(deleteFlags.tapeFile)
		if err != nil {
			return err
		}
		identifiers = append(identifiers, fromFile...)
	}
	if len(identifiers) == 0 {
		return cli.NewUsageError("tape list is empty; nothing to delete")
	}

	ctx := cli.SetupSignalHandler()
	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.engine.DeleteByIdentifier(ctx, identifiers, deleteFlags.execute)
	if err != nil {
		return &cli.CommandError{Command: "delete", Err: err}
	}
	app.recordRun(ctx, result)

	if cli.OutputFormat(deleteFlags.format) == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, result)
	}
	renderResult(os.Stdout, result)
	return nil
}
