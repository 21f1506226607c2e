package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kwhitfield/jobradar/internal/server"
	"github.com/kwhitfield/jobradar/internal/task"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := setupLogger(debug)

		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}

		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		scoring, err := buildScoring(ctx, cfg, st, logger)
		if err != nil {
			return err
		}
		discovery := buildDiscovery(cfg, st, logger)

		discover := func(ctx context.Context, rep *task.Reporter) (string, error) {
			summary, err := discovery.Run(ctx, rep)
			if err != nil {
				return "", err
			}
			return summary.String(), nil
		}
		score := func(ctx context.Context, rep *task.Reporter) (string, error) {
			summary, err := scoring.Run(ctx, rep)
			if err != nil {
				return "", err
			}
			return summary.String(), nil
		}

		addr := cfg.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := &http.Server{
			Addr:    addr,
			Handler: server.NewServer(st, task.NewTracker(logger), discover, score, logger).Handler(),
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("http server listening", "addr", addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr from config)")
	rootCmd.AddCommand(serveCmd)
}
