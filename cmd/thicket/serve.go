package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/thicket/internal/cli"
	thickethttp "github.com/aretw0/thicket/pkg/adapters/http"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/observability"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the trees of --dir over a JSON API with server-sent events for
session changes and Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := configFrom(cmd)
		port, _ := cmd.Flags().GetString("port")
		watch, _ := cmd.Flags().GetBool("watch")
		logger := serverLogger(c)

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		hooks := domain.ChainHooks(metrics.Hooks(), observability.LogHooks(logger))
		svc, loader, err := cli.NewService(c, logger, hooks)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := []thickethttp.Option{
			thickethttp.WithLogger(logger),
			thickethttp.WithMetrics(reg),
		}
		if w, ok := loader.(ports.Watchable); ok && watch {
			if err := svc.Watch(ctx); err != nil {
				return err
			}
			opts = append(opts, thickethttp.WithTreeEvents(w))
		}

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           thickethttp.NewHandler(svc, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting thicket server", "addr", srv.Addr, "dir", c.Dir, "store", c.Store)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			logger.Info("shutting down")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("thicket server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().BoolP("watch", "w", true, "Reload trees when their documents change")
}
