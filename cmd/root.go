// Package cmd holds the portal's command line entry points.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"athmageeth-portal/config"
	"athmageeth-portal/logger"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "athmageeth-portal",
	Short:   "Registration portal for the Athmageeth competition",
	Long:    `Serves the public registration form API and the admin dashboard, and exports registrations to CSV or Google Sheets.`,
	Version: version,
	// Running the bare binary serves the portal.
	RunE:              runServe,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: environment and .env only)")
	rootCmd.PersistentFlags().String("log-dir", "",
		"directory for log files (overrides LOG_DIR)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("log-dir"); dir != "" {
		loaded.Log.Dir = dir
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logger.InitLogger(loaded.Log.Dir); err != nil {
		return fmt.Errorf("initialising logger: %w", err)
	}
	logger.SetLogLevel(loaded.Env)

	cfg = loaded
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
