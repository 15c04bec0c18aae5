package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jywlabs/skync/internal/config"
	"github.com/jywlabs/skync/internal/logger"
	"github.com/jywlabs/skync/internal/template"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "skync",
	Short: "skync - Keep agent skills in sync across coding tools",
	Long: `skync collects skills (directories containing a SKILL.md) from the
source directories you configure, links each one into a single library,
and mirrors the library into the skill directories of your coding agents.

Workflow:
  skync init --source ~/skills     Write ~/.skync/config.yaml
  skync sync                       Consolidate and propagate skills
  skync status                     Show library, sources and targets
  skync serve                      Expose skills over MCP (stdio)

Commands:
  init        Create the config file and library directory
  config      Show current configuration
  sync        Link skills into the library and every enabled target
  status      Summarize library, sources, targets and health
  list        List discovered skills
  show        Print a skill's SKILL.md
  check       Report broken links in the library and targets
  unlink      Remove skync links from a target
  serve       Run the MCP server on stdin/stdout
  version     Show version info`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetLogFormat(viper.GetString("log_format"))
		return logger.SetLogLevel(viper.GetString("log_level"))
	},
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.skync/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt or json)")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initEnv loads .env from the working directory and then ~/.skync/.env, and
// makes SKYNC_* variables visible to viper. Variables already set win.
func initEnv() {
	_ = godotenv.Load(template.EnvFile)
	if home, err := os.UserHomeDir(); err == nil {
		_ = godotenv.Load(filepath.Join(home, template.SkyncDir, template.EnvFile))
	}

	viper.SetEnvPrefix("SKYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// configPath returns the config file selected by flag, SKYNC_CONFIG, or the default.
func configPath() string {
	if p := viper.GetString("config"); p != "" {
		return config.ExpandPath(p, "")
	}
	return config.DefaultPath()
}

// loadConfig loads the selected config file.
func loadConfig() (*config.Config, error) {
	path := configPath()
	cfg, err := config.Load(path)
	if errors.Is(err, config.ErrNotFound) {
		return nil, fmt.Errorf("%w - run 'skync init' first", err)
	}
	return cfg, err
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
