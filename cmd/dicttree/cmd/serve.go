package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/dicttree/internal/api"
	"github.com/dbsmedya/dicttree/internal/database"
	"github.com/dbsmedya/dicttree/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the type forest over HTTP",
	Long: `Serve exposes the forest, its projections and the edit operations as a JSON
API under /api/types, and Prometheus metrics under /metrics.

The server shuts down gracefully on SIGINT or SIGTERM.

Example:
  dicttree serve --addr :8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"Override listen address")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx := database.SetupSignalHandler()
	env, err := openEnvironment(ctx, metrics.New(reg))
	if err != nil {
		return err
	}
	defer env.Close()

	addr := env.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	log := env.log.WithSource("api")
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.New(env.session, log, reg).Router(),
		ReadHeaderTimeout: env.cfg.Server.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
