// Command trustbot runs the trust-report Telegram bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/m3rciful/trustbot/core/buildinfo"
	corecmd "github.com/m3rciful/trustbot/core/cmd"
	"github.com/m3rciful/trustbot/core/logger"
	"github.com/m3rciful/trustbot/internal/app"
	"github.com/m3rciful/trustbot/internal/config"
)

var cfgFile string

func runnerOptions() corecmd.Options {
	return corecmd.Options{
		ConfigPath:        cfgFile,
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := config.Load(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			c, ok := cfg.(*config.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			a, err := app.Bootstrap(ctx, c)
			if err != nil {
				return nil, err
			}
			return a, nil
		},
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trustbot",
		Short:         "Telegram bot for crowdsourced trader trust reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return corecmd.Run(runnerOptions())
		},
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config.yaml (default $CONFIG_PATH or ./config.yaml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the bot until interrupted",
			RunE: func(cmd *cobra.Command, args []string) error {
				return corecmd.Run(runnerOptions())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and seed super operators",
			RunE:  runMigrate,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
			},
		},
	)
	return root
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	path, err := runnerOptions().ResolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer func() { _ = logger.Shutdown() }()
	return app.Migrate(ctx, cfg)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
