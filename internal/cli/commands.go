package cli

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yclin/bondwatch/config"
	"github.com/yclin/bondwatch/internal/app"
)

const version = "0.3.0"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	// Initialize configuration early
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "bondwatch",
		Short: "bondwatch - FSC convertible bond filing monitor",
		Long: `bondwatch scans the FSC daily case-disclosure table for convertible
bond filings, enriches each filing with TWSE/TPEX market prices from
Yahoo Finance, writes report artifacts and pushes a text summary.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug || cfg.Debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

			// Ensure directories exist
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
	}

	// Add subcommands
	rootCmd.AddCommand(newRunCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	return rootCmd
}

// newRunCmd creates the run command
func newRunCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one scan of the FSC daily disclosure table",
		Long: `Download today's disclosure table, filter convertible bond filings,
enrich them with market observations and emit the report artifacts.
Example: bondwatch run --date=2026-08-21`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dateStr, _ := cmd.Flags().GetString("date")

			var runDate time.Time
			if dateStr != "" {
				parsed, err := time.Parse("2006-01-02", dateStr)
				if err != nil {
					return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", dateStr)
				}
				runDate = parsed
			}

			runner := app.NewRunner(cfg)
			return runner.RunOnce(cmd.Context(), runDate)
		},
	}

	// Run command flags
	cmd.Flags().String("date", "", "Run date in YYYY-MM-DD format (today if not provided)")

	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bondwatch %s\n", version)
		},
	}
}
