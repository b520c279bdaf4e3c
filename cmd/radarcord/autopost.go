package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keepmind9/radarcord/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var autopostCmd = &cobra.Command{
	Use:   "autopost",
	Short: "Post bot stats to Radarcord on an interval",
	Long: `Connect to Discord, post stats once and keep posting every configured
interval until interrupted (SIGINT or SIGTERM).

The interval is radarcord.interval: a preset (default, safe, super_safe,
extra_safe, super_omega_safe) or a duration such as "10m".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Starting radarcord autopost with config: %s\n", path)
		fmt.Fprintf(cmd.OutOrStdout(), "Discord library: %s\n", config.Discord.Library)
		fmt.Fprintf(cmd.OutOrStdout(), "Interval: %v (overlap: %s)\n", config.IntervalDuration(), config.OverlapPolicy())

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, cancel := context.WithCancel(parent)
		defer cancel()

		engine, err := startEngine(ctx, config)
		if err != nil {
			return err
		}

		// Setup signal handling for graceful shutdown
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		engineErrChan := make(chan error, 1)
		go func() {
			fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")
			engineErrChan <- engine.Run(ctx)
		}()

		var runErr error
		select {
		case sig := <-sigChan:
			logger.WithField("signal", sig.String()).Info("received-signal-shutting-down")
			cancel()
			runErr = <-engineErrChan
		case runErr = <-engineErrChan:
		}

		if err := engine.Stop(); err != nil {
			logger.WithFields(logrus.Fields{"error": err}).Error("error-during-shutdown")
		}
		if runErr != nil {
			return fmt.Errorf("autopost failed: %w", runErr)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "radarcord stopped")
		return nil
	},
}
