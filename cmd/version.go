package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information - set via ldflags at build time
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	Long:  `Show skync version, commit hash, and build information.`,
	Run: func(cmd *cobra.Command, args []string) {
		runVersionFn(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersionFn(w io.Writer) {
	fmt.Fprintf(w, "skync %s\n", Version)
	fmt.Fprintf(w, "  commit:  %s\n", Commit)
	fmt.Fprintf(w, "  built:   %s\n", BuildDate)
	fmt.Fprintf(w, "  go:      %s\n", runtime.Version())
	fmt.Fprintf(w, "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
