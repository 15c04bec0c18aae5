package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jywlabs/skync/internal/config"
	"github.com/jywlabs/skync/internal/template"
	"github.com/spf13/cobra"
)

var (
	initForceFlag   bool
	initLibraryFlag string
	initSourceFlags []string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the skync config file",
	Long: `Create ~/.skync/config.yaml and the library directory.

Creates:
  ~/.skync/
    config.yaml    # Sources, library_dir and targets
    library/       # One link per consolidated skill

Sources are scanned in the order given. Targets for claude, codex and pi
are listed in the file; only claude is enabled by default.

Examples:
  skync init --source ~/skills --source ~/work/agent-skills
  skync init --library ~/skills-library --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForceFlag, "force", "f", false, "Overwrite an existing config file")
	initCmd.Flags().StringVar(&initLibraryFlag, "library", "", "Library directory (default ~/.skync/library)")
	initCmd.Flags().StringSliceVarP(&initSourceFlags, "source", "s", nil, "Source directory to scan (repeatable)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	return runInitFn(configPath(), initLibraryFlag, initSourceFlags, initForceFlag, os.Stdout)
}

func runInitFn(path, libraryDir string, sources []string, force bool, w io.Writer) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	// Flag paths are relative to the working directory, not the config file.
	cwd, _ := os.Getwd()
	if libraryDir == "" {
		libraryDir = config.DefaultLibraryDir()
	}
	libraryDir = config.ExpandPath(libraryDir, cwd)
	resolved := make([]string, 0, len(sources))
	for _, src := range sources {
		resolved = append(resolved, config.ExpandPath(src, cwd))
	}
	content := template.RenderConfig(libraryDir, resolved)

	// Validate before touching the filesystem so a bad flag leaves nothing behind.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	cfg, err := config.Parse([]byte(content), filepath.Dir(absPath))
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", template.ConfigFile, err)
	}
	if err := os.MkdirAll(cfg.LibraryDir, 0755); err != nil {
		return fmt.Errorf("failed to create library: %w", err)
	}

	fmt.Fprintf(w, "Initialized skync\n")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Created:")
	fmt.Fprintf(w, "  %s   - Sources, library and targets\n", absPath)
	fmt.Fprintf(w, "  %s   - Consolidated skills\n", cfg.LibraryDir)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next steps:")
	if len(cfg.Sources) == 0 {
		fmt.Fprintf(w, "  1. Add your skill directories under sources: in %s\n", absPath)
	} else {
		fmt.Fprintf(w, "  1. Review sources and targets in %s\n", absPath)
	}
	fmt.Fprintln(w, "  2. Run: skync sync")

	return nil
}
