package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudvtl/tapekeeper/pkg/cli"
	"github.com/cloudvtl/tapekeeper/pkg/config"
)

var (
	// Global flags
	cfgFile string
	region  string
	profile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tapekeeper",
	Short: "Virtual tape lifecycle management for AWS Storage Gateway",
	Long: `Tapekeeper manages virtual tapes held by AWS Storage Gateway's
Virtual Tape Library: it inventories tapes, identifies tapes past their
retention window, and deletes them safely.

Every mutating operation is a dry run unless --execute is given: the
tool prints the deletion plan (what it would delete) so the operator can
review intent before committing.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Exit status reflects only top-level
// failures (permission, validation, connectivity); individual tape
// failures are reported in the result, not the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var usage *cli.UsageError
		if errors.As(err, &usage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "tapekeeper.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&region, "region", "", "AWS region (overrides config)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "AWS profile (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig builds the immutable per-run configuration from the config
// file, environment, and global flags. Flags win.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if region != "" {
		cfg.AWS.Region = region
	}
	if profile != "" {
		cfg.AWS.Profile = profile
	}
	if verbose {
		cfg.Telemetry.LogLevel = "debug"
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
