// Package main is the entry point for the wrapview daemon.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/wrapview/internal/config"
	"github.com/Faultbox/wrapview/internal/logger"
	"github.com/Faultbox/wrapview/internal/viewer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		once       bool
		saveConfig bool
	)
	cmd := &cobra.Command{
		Use:           "viewerd",
		Short:         "Product customization viewer daemon",
		Long:          `viewerd loads product meshes, wraps user textures around them, and serves the scene to browser clients over a websocket.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := config.BindFlags(cmd.Flags())
	cmd.Flags().BoolVar(&once, "once", false, "Load the active product, print the scene as JSON, and exit")
	cmd.Flags().BoolVar(&saveConfig, "save-config", false, "Write the effective config to the user config directory and exit")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		// Load configuration
		cfg, err := config.Load(flags)
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if saveConfig {
			return cfg.Save()
		}

		// Initialize logger
		if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
			return fmt.Errorf("logger error: %w", err)
		}
		defer logger.Sync()

		logger.Log.Info("=== wrapview ===")
		logger.Sugar.Debugf("Config: %+v", cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		v, err := viewer.New(cfg)
		if err != nil {
			logger.Log.Error("failed to create viewer", zap.Error(err))
			return err
		}
		defer v.Close()

		if once {
			snap, err := v.Once(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}

		if err := v.Run(ctx); err != nil {
			logger.Log.Error("viewer error", zap.Error(err))
			return err
		}
		logger.Log.Info("viewer stopped normally")
		return nil
	}
	cmd.SetContext(context.Background())
	return cmd
}
