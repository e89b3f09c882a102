package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View scarepick configuration",
	Long: `Show the configuration scarepick runs with: built-in defaults, then the
YAML file given by --config (default ./scarepick.yaml), then flags.

Examples:
  # Print the effective configuration
  scarepick config view

  # Start a config file from the defaults
  scarepick config view > scarepick.yaml

  # Show which file is read
  scarepick config path
`,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Display the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigView,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigView(cmd *cobra.Command, args []string) error {
	data, err := settings.YAML()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(cfgFile)
	if err != nil {
		path = cfgFile
	}

	status := "found"
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		status = "not found, using defaults"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", path, status)
	return nil
}
