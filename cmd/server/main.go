package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"showroom/internal/api"
	"showroom/internal/config"
	"showroom/internal/domain"
	"showroom/internal/events"
	"showroom/internal/google"
	"showroom/internal/logging"
	"showroom/internal/metrics"
	"showroom/internal/repository"
	"showroom/internal/service"
	"showroom/internal/tools"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bookings, err := initBookings(ctx, cfg, &logger)
	if err != nil {
		return err
	}

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}
	state := initStateStore(cfg, redisClient, &logger)

	bus := events.NewEventBus()
	events.SubscribeMetrics(bus)
	events.SubscribeAudit(bus, state, &logger)

	svc := service.NewBookingService(bookings, bus, &logger)
	registry := tools.NewRegistry(svc, &logger)

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, nothing to serve")
		return nil
	}

	guard := api.NewGuard(cfg.API, state, &logger)

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(cfg.API, registry, guard, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}

	var httpServer *api.HTTPServer
	if cfg.API.HTTP.Enabled {
		httpServer = api.NewHTTPServer(cfg.API, registry, svc, state, guard, &logger)
	}

	startMetrics(ctx, cfg, &logger)

	return startServers(ctx, grpcServer, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "main").Logger()

	return cfg, logger, closer, nil
}

func initBookings(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*repository.SheetBookingRepository, error) {
	client, err := google.NewClient(ctx, cfg.Google, logger)
	if err != nil {
		return nil, fmt.Errorf("google client: %w", err)
	}
	logger.Info().Str("service_account", client.Email()).Msg("google credentials loaded")

	sheet, err := client.OpenWorksheet(ctx, cfg.Google.SpreadsheetID, cfg.Google.SpreadsheetName, cfg.Google.WorksheetName)
	if err != nil {
		return nil, fmt.Errorf("open worksheet: %w", err)
	}

	repo, err := repository.NewSheetBookingRepository(ctx, sheet, cfg.App.Location(), logger)
	if err != nil {
		return nil, fmt.Errorf("booking repository: %w", err)
	}

	logger.Info().
		Str("spreadsheet_id", sheet.SpreadsheetID()).
		Str("worksheet", sheet.Title()).
		Msg("google sheets connected")
	return repo, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis ping failed, will retry through failover")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return redisClient
}

func initStateStore(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.StateStore {
	memory := repository.NewMemoryStateStore(int(cfg.Redis.AuditLimit))
	if redisClient == nil {
		return memory
	}

	primary := repository.NewRedisStateStore(redisClient, cfg.Redis.AuditKey, cfg.Redis.AuditLimit)
	return repository.NewFailoverStateStore(primary, memory, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	logger *zerolog.Logger,
) error {
	if grpcServer == nil && httpServer == nil {
		logger.Warn().Msg("both http and grpc are disabled, nothing to serve")
		return nil
	}

	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	if httpServer != nil {
		go func() {
			if err := httpServer.Start(); err != nil {
				logger.Error().Err(err).Msg("http server stopped")
			}
		}()
	}

	logger.Info().Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
