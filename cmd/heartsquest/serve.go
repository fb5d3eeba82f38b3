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
	"time"

	"github.com/aretw0/heartsquest"
	"github.com/aretw0/heartsquest/internal/cli"
	httpAdapter "github.com/aretw0/heartsquest/pkg/adapters/http"
	"github.com/aretw0/heartsquest/pkg/observability"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var (
	servePort    string
	serveMetrics string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves sessions over a JSON API with a server-sent event stream of progress
diffs. Prometheus metrics are exposed on a separate listener with --metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := cli.NewLogger(opts.LogLevel, opts.LogFormat, "info")
		if err != nil {
			return err
		}

		var extra []heartsquest.Option
		var metrics *observability.Metrics
		if serveMetrics != "" {
			metrics = observability.NewMetrics()
			extra = append(extra, heartsquest.WithLifecycleHooks(metrics.Hooks()))
		}

		engine, closeStore, err := cli.NewEngine(opts, logger, extra...)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		servers := []*http.Server{{
			Addr:    ":" + servePort,
			Handler: httpAdapter.NewHandler(engine, httpAdapter.WithLogger(logger)),
		}}
		if metrics != nil {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			servers = append(servers, &http.Server{Addr: serveMetrics, Handler: mux})
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, srv := range servers {
			g.Go(func() error {
				logger.Info("Listening", "address", srv.Addr)
				if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					_ = srv.Close()
					return fmt.Errorf("graceful shutdown of %s did not complete: %w", srv.Addr, err)
				}
				return nil
			})
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on :%s\n", engine.Name, servePort)
		serveErr := g.Wait()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := engine.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to save sessions on shutdown", "err", err)
		}
		logger.Info("Server stopped", slog.Bool("clean", serveErr == nil))
		return serveErr
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "8080", "Port to listen on")
	serveCmd.Flags().StringVar(&serveMetrics, "metrics", "", "Address of the Prometheus /metrics listener, e.g. :2112")
}
