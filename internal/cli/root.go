// Package cli implements the fantasycache maintenance commands. The cache
// is a library consumed in-process; this CLI exists for operating on a
// cache root from the outside: inspecting it, sweeping it, or wiping it.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/fantasycache"
	"github.com/rshade/fantasycache/internal/config"
	"github.com/rshade/fantasycache/internal/logging"
)

// NewRootCmd creates the root cobra command with the stats, sweep, and
// clear subcommands.
func NewRootCmd(version string) *cobra.Command {
	var (
		dir        string
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "fantasycache",
		Short:         "Inspect and maintain a fantasycache cache root",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&dir, "dir", "", "cache root directory (default: FANTASYCACHE_DIR or ~/.fantasycache/cache)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.fantasycache/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	cmd.AddCommand(
		newStatsCmd(),
		newSweepCmd(),
		newClearCmd(),
	)

	return cmd
}

// loadEnvironment resolves config and logger from the root command's
// persistent flags and opens a client over the cache root. The background
// sweep is disabled: every command here is one-shot.
func loadEnvironment(cmd *cobra.Command) (zerolog.Logger, *fantasycache.Client, error) {
	var (
		cfg config.Config
		err error
	)

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Dir = dir
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	cfg.SweepInterval = 0

	logger := logging.New(cfg.LogLevel)

	client, err := fantasycache.New(cfg, logger)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	return logger, client, nil
}
