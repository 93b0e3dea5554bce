// Command worker consumes notification intents from the asynq queue and
// delivers them through FCM.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"catchUpAPI/internal/config"
	"catchUpAPI/internal/metrics"
	"catchUpAPI/internal/notification"
	"catchUpAPI/internal/queue"
	"catchUpAPI/internal/store/postgres"
	"catchUpAPI/middleware"
)

var (
	concurrencyFlag int
	metricsAddrFlag string
)

var rootCmd = &cobra.Command{
	Use:          "worker",
	Short:        "Deliver queued push notifications",
	SilenceUsage: true,
	RunE:         runWorker,
}

func init() {
	rootCmd.Flags().IntVar(&concurrencyFlag, "concurrency", 0, "parallel deliveries (defaults to NOTIFICATION_WORKERS)")
	rootCmd.Flags().StringVar(&metricsAddrFlag, "metrics-addr", "", "serve /metrics on this address, e.g. :9100")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	if cfg.RedisURL == "" {
		return errors.New("REDIS_URL environment variable is not set")
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	fcmService, err := notification.NewFCMService(ctx, cfg.FCMCredentialsFile)
	if err != nil {
		return err
	}
	log.Println("FCM Push Provider initialized successfully")

	concurrency := concurrencyFlag
	if concurrency <= 0 {
		concurrency = cfg.NotificationWorkers
	}
	srv, err := queue.NewServer(cfg.RedisURL, concurrency, notification.NewDeliverer(postgres.New(pool), fcmService))
	if err != nil {
		return err
	}

	if metricsAddrFlag != "" {
		metrics.Register()
		mux := http.NewServeMux()
		mux.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
		metricsServer := &http.Server{Addr: metricsAddrFlag, Handler: mux, ReadTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server error: %v", err)
			}
		}()
		defer metricsServer.Close()
	}

	log.Printf("Worker consuming %q with concurrency %d", queue.NotificationQueue, concurrency)
	return srv.Run(ctx)
}
