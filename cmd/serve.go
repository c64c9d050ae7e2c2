package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/broker"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/config"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/device"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/handlers"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/history"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/logger"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository/db"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/server"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/service"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/transport"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background loops",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// init logger
	log := logger.Get(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	// open DB
	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Errorw("failed to init sqlite", "path", cfg.DB.Path, "err", err)
		return err
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	link := transport.NewMQTT(cfg.MQTT, log)
	defer link.Close()

	deps := service.Dependencies{
		Transport: link,
		Link:      link,
		Device:    device.NewClient(cfg.Device.BaseURL, cfg.Device.StatusTimeout, cfg.Device.SyncTimeout),
		Log:       log,
	}
	if len(cfg.Kafka.Brokers) > 0 {
		pub, err := broker.NewAlertPublisher(cfg.Kafka)
		if err != nil {
			return err
		}
		defer func() { _ = pub.Close() }()
		deps.Sinks = append(deps.Sinks, pub)
	}
	if cfg.Influx.URL != "" {
		hist := history.NewSensorHistory(cfg.Influx)
		defer hist.Close()
		deps.History = hist
	}

	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, deps, service.Options{
		DeviceID: cfg.Device.ID,
		Queue: service.QueueOptions{
			MaxAttempts:  cfg.Queue.MaxAttempts,
			FlushDelay:   cfg.Queue.FlushDelay,
			SendTimeout:  cfg.Queue.SendTimeout,
			DedupActions: cfg.Queue.DedupActions,
		},
		SigningKey: cfg.Auth.SigningKey,
		TokenTTL:   cfg.Auth.TokenTTL,
	})

	// context for background goroutines
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := services.Load(ctx); err != nil {
		log.Errorw("failed to restore state", "err", err)
		return err
	}

	link.OnSensor(func(snap models.SensorSnapshot) {
		if _, err := services.Sensors.Ingest(ctx, snap); err != nil {
			log.Warnw("sensor_ingest_failed", "device_id", snap.DeviceID, "err", err)
		}
	})
	if cfg.MQTT.BrokerURL != "" {
		link.Start(ctx)
	} else {
		log.Warnw("mqtt.broker_url not set; commands stay queued until ONLINE mode is chosen")
	}

	var wg sync.WaitGroup
	startLoops(ctx, &wg, services, cfg, link.Reconnects())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, handlers.NewHandler(services, log), log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
	wg.Wait()
	return nil
}

// startLoops runs the connection poller, the schedule emitter and the queue flusher.
func startLoops(ctx context.Context, wg *sync.WaitGroup, s *service.Service, cfg *config.Config, reconnects <-chan struct{}) {
	wg.Add(3)
	go func() {
		defer wg.Done()
		s.Connection.Run(ctx, cfg.Device.PollInterval)
	}()
	go func() {
		defer wg.Done()
		s.Schedule.Run(ctx, cfg.Schedule.Tick)
	}()
	go func() {
		defer wg.Done()
		s.Commands.Run(ctx, reconnects)
	}()
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
