package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/config"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-timetravel/transport/rest"
	"github.com/rocketscienceinc/tictactoe-timetravel/transport/websocket"
)

var (
	ErrAddrNotFound       = errors.New("redis host is empty")
	ErrUnknownStorageType = errors.New("unknown storage driver")
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(conf.Metrics.Namespace, registry)

	sessionRepo, closeStorage, err := newSessionRepository(ctx, logger, conf, appMetrics.SessionsExpired)
	if err != nil {
		return err
	}

	defer func() {
		if err = closeStorage(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	gameUseCase := usecase.NewGameUseCase(logger, appMetrics, sessionRepo)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, gameUseCase, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameUseCase)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// newSessionRepository builds the configured store. Memory sessions with a TTL are swept
// until ctx is done and onExpired receives each sweep's count; redis expires keys itself.
func newSessionRepository(
	ctx context.Context,
	logger *slog.Logger,
	conf *config.Config,
	onExpired func(int),
) (repository.SessionRepository, func() error, error) {
	switch conf.Storage.Driver {
	case config.StorageMemory:
		memRepo := repository.NewMemorySessionRepository(conf.Storage.SessionTTL)
		if conf.Storage.SessionTTL > 0 && conf.Storage.SweepInterval > 0 {
			go repository.RunSweeper(ctx, logger, memRepo, conf.Storage.SweepInterval, onExpired)
		}

		return memRepo, func() error { return nil }, nil
	case config.StorageRedis:
		if conf.Redis.Host == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewSessionRepository(redisStorage.Connection, conf.Storage.SessionTTL), redisStorage.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStorageType, conf.Storage.Driver)
	}
}
