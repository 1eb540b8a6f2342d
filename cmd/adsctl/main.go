// Command adsctl drives the ad channels declared in a config file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"adsmanager/internal/config"
	"adsmanager/internal/logging"
	"adsmanager/internal/manager"
)

var (
	// Global flags
	configPath string
	envFiles   []string
	verbose    bool
	timeout    time.Duration

	logger   *zap.Logger
	registry *manager.Manager
)

var rootCmd = &cobra.Command{
	Use:   "adsctl",
	Short: "Create and manage ad campaigns across ad networks",
	Long: `adsctl creates campaigns, ads and audiences on the channels declared
in its config file. Each channel is one account on Facebook, Google Ads or
Twitter.

Inputs are YAML or JSON files whose shape depends on the channel type.

Examples:
  adsctl channels
  adsctl campaign create fb-main -f spring.yaml
  adsctl campaign status google 12345 PAUSED
  adsctl audience add-users fb-main 238491 -f users.json`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// setup loads .env files and the config, then registers every channel.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(envFiles...); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.Enabled = true
		cfg.Logging.Verbose = true
	}

	logger, err = logging.New(logging.Options{
		Enabled: cfg.Logging.Enabled,
		Verbose: cfg.Logging.Verbose,
		JSON:    cfg.Logging.JSON,
	})
	if err != nil {
		return err
	}
	logger = logger.With(zap.String("invocation_id", uuid.NewString()))

	chs, err := cfg.Build()
	if err != nil {
		return err
	}
	registry = manager.New(logger, chs...)
	logger.Debug("Channels loaded", zap.String("config", configPath), zap.Strings("channels", registry.IDs()))
	return nil
}

// commandContext bounds a command by --timeout and cancels it on SIGINT/SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "adsmanager.yaml", "Config file")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "Env files to load before the config (default: .env when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")

	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(campaignCmd)
	rootCmd.AddCommand(audienceCmd)
	rootCmd.AddCommand(adCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
