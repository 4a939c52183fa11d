package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/BioHazard786/relayroom/internal/config"
	"github.com/BioHazard786/relayroom/internal/directory"
	"github.com/BioHazard786/relayroom/internal/logging"
	"github.com/BioHazard786/relayroom/internal/server"
	"github.com/BioHazard786/relayroom/internal/version"
)

var (
	flagConfig   string
	flagAddr     string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:     "relayroom-server",
	Short:   "Two-peer WebSocket relay server",
	Long:    `relayroom-server pairs two WebSocket clients per named room and forwards every message one sends to the other.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to a config file (default ./relayroom.yaml)")
	rootCmd.Flags().StringVar(&flagAddr, "addr", config.DefaultAddress, "listen address")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
}

func run(cmd *cobra.Command) error {
	cfg, err := config.LoadAndValidate(logging.New(os.Stderr, flagLogLevel, "text"), flagConfig, cmd.Flags())
	if err != nil {
		return err
	}
	logger := logging.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := directory.New(cfg.Directory(), logger)
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           server.New(cfg, dir, logger).Handler(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting relay server", "addr", cfg.Server.Address, "version", version.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return dir.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down relay server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func main() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		slog.Error("relay server failed", "error", err)
		os.Exit(1)
	}
}
