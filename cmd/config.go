package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jywlabs/skync/internal/config"
	"github.com/jywlabs/skync/internal/template"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Long: `Show the current skync configuration.

Displays the config file if present, otherwise shows the file
'skync init' would write.`,
	RunE: runConfig,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stdout, configPath())
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	return runConfigFn(configPath(), os.Stdout)
}

func runConfigFn(path string, w io.Writer) error {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		fmt.Fprintf(w, "No config found at %s (using defaults)\n", path)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Run 'skync init' to create a configuration file.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Default settings:")
		fmt.Fprint(w, template.RenderConfig(config.DefaultLibraryDir(), nil))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	fmt.Fprintf(w, "Current configuration (%s):\n", path)
	fmt.Fprintln(w)
	fmt.Fprintln(w, string(content))

	if _, err := config.Load(path); err != nil {
		fmt.Fprintf(w, "Warning: %v\n", err)
	}

	return nil
}
