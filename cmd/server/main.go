package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/api"
	"github.com/yourusername/mediagrab-go/api/middleware"
	"github.com/yourusername/mediagrab-go/internal/app"
	"github.com/yourusername/mediagrab-go/internal/domain"
	"github.com/yourusername/mediagrab-go/internal/infrastructure"
	"github.com/yourusername/mediagrab-go/pkg/logger"
)

const (
	version       = "1.0.0"
	shutdownGrace = 30 * time.Second
	shutdownDrain = 10 * time.Second
)

var configPath = flag.String("config", "", "Path to config file (default: ./configs, $HOME/.mediagrab, /etc/mediagrab)")

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	for _, dir := range []string{config.Download.OutputDir, config.Download.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Download.LogsDir,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize event logs: %w", err)
	}
	defer multiLog.Close()

	repo, closeRepo, err := openHistory(config)
	if err != nil {
		return err
	}
	defer closeRepo.Close()

	verifier := infrastructure.NewCredentialVerifier(config.Auth)
	if len(config.Auth.Tokens) == 0 {
		log.Warn("No auth tokens configured, accepting any bearer token")
	}

	extractor := infrastructure.NewYTDLPExtractor(&config.Extractor, config.Download.LogsDir, log)

	downloadManager := app.NewDownloadManager(extractor, repo, config, log, multiLog)
	if n, err := downloadManager.FailInterrupted(); err != nil {
		log.Warn("Failed to close out interrupted downloads", zap.Error(err))
	} else if n > 0 {
		log.Info("Marked interrupted downloads as failed", zap.Int("count", n))
	}

	deps := api.Deps{
		FormatService:   app.NewFormatService(extractor, config, log),
		DownloadManager: downloadManager,
		Verifier:        verifier,
		Logger:          log,
		MultiLogger:     multiLog,
		Admins:          config.Auth.Admins,
	}
	if config.Server.RateLimit > 0 {
		deps.RateLimiter = middleware.NewRateLimiter(config.Server.RateLimit, config.Server.RateBurst)
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.SetupRouter(deps)

	// cancelled when shutdown gives up waiting, so running engines are killed
	requestCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return requestCtx },
	}

	log.Info("Starting mediagrab server",
		zap.String("version", version),
		zap.String("addr", addr),
		zap.String("output_dir", config.Download.OutputDir),
		zap.String("history", config.History.Driver),
		zap.String("engine", config.Extractor.Binary))

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	log.Info("Shutting down server...")

	if err := shutdownServer(server, cancelRequests, shutdownGrace, shutdownDrain); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}

// shutdownServer stops accepting requests and waits up to grace for the
// in-flight ones. Requests still running after that are cancelled and get
// up to drain to record their outcome before the history store is closed.
func shutdownServer(server *http.Server, cancelRequests context.CancelFunc, grace, drain time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	err := server.Shutdown(ctx)
	if err == nil {
		return nil
	}

	cancelRequests()
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), drain)
	defer cancelDrain()
	if drainErr := server.Shutdown(drainCtx); errors.Is(drainErr, context.DeadlineExceeded) {
		server.Close()
	}
	return fmt.Errorf("cancelled in-flight requests after %v: %w", grace, err)
}

// openHistory builds the history store named by history.driver
func openHistory(config *domain.Config) (domain.DownloadRepository, io.Closer, error) {
	switch config.History.Driver {
	case domain.HistoryDriverSQLite:
		if err := os.MkdirAll(filepath.Dir(config.History.DatabasePath), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		repo, err := infrastructure.NewSQLiteDownloadRepository(config.History.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize history: %w", err)
		}
		return repo, repo, nil
	default:
		return infrastructure.NewMemoryDownloadRepository(config.History.MaxPerUser), noopCloser{}, nil
	}
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }
