package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tendant/simple-song-sync/pkg/songsync/api"
	"github.com/tendant/simple-song-sync/pkg/songsync/config"
	"github.com/tendant/simple-song-sync/pkg/songsync/metrics"
)

func NewServeCommand(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a webhook endpoint for MinIO bucket notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var overrides []config.Option
			if port != "" {
				overrides = append(overrides, config.WithPort(port))
			}
			cfg, logger, err := loadConfig(cmd, opts, overrides...)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			sink, err := metrics.New(reg)
			if err != nil {
				return err
			}

			handler, err := cfg.BuildHandler(cmd.Context(), logger, sink)
			if err != nil {
				return err
			}

			router := api.NewEventsHandler(handler, api.Options{
				Token:    cfg.Server.Token,
				Gatherer: reg,
				Logger:   logger,
			}).Router()

			httpServer := &http.Server{
				Addr:              ":" + cfg.Server.Port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("Webhook server starting", "port", cfg.Server.Port, "storage", cfg.Storage.Type)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}
