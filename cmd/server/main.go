/*
main.go - Application entry point

PURPOSE:
  Starts the leave registry server: loads configuration, opens the row
  store, provisions the tables, wires the leave service and serves the
  HTTP API until interrupted.

STARTUP SEQUENCE:
  1. Load .env + environment, apply command-line flags
  2. Build the zap logger
  3. Open the row store (sqlite | xlsx | memory) and provision tables
  4. Watch the workbook for external edits (xlsx only)
  5. Pick the per-employee lock (Redis if REDIS_ADDR is set)
  6. Create service, handler and router
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port           HTTP server port (overrides PORT)
  -store          Store driver (overrides STORE_DRIVER)
  -demo           Seed demo accounts and leaves into empty tables
  -hash-password  Print the bcrypt hash of a password and exit

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Run against the department workbook
  STORE_DRIVER=xlsx XLSX_PATH=./DangKyNghi.xlsx JWT_SECRET=... ./server

  # Try it out in memory
  ./server -store=memory -demo

SEE ALSO:
  - config/config.go: Environment keys
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/warp/leave-registry/api"
	"github.com/warp/leave-registry/config"
	"github.com/warp/leave-registry/directory"
	"github.com/warp/leave-registry/leave"
	"github.com/warp/leave-registry/lock"
	"github.com/warp/leave-registry/sheet"
	"github.com/warp/leave-registry/store/memory"
	"github.com/warp/leave-registry/store/sqlite"
	"github.com/warp/leave-registry/store/xlsx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// rowStore is what the server needs from a backend.
type rowStore interface {
	sheet.RowStore
	sheet.Provisioner
}

func main() {
	// Flags
	port := flag.Int("port", 0, "HTTP server port (overrides PORT)")
	driver := flag.String("store", "", "row store driver: sqlite, xlsx or memory (overrides STORE_DRIVER)")
	demo := flag.Bool("demo", false, "seed demo accounts and leaves into empty tables")
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of a password and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := directory.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *driver != "" {
		cfg.StoreDriver = *driver
	}
	if cfg.JWTSecret == "" && cfg.StoreDriver == "memory" {
		cfg.JWTSecret = uuid.NewString()
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, *demo, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg config.Config, demo bool, logger *zap.Logger) error {
	ctx := context.Background()

	// Initialize store
	store, closer, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}
	defer closer.Close()

	if err := store.EnsureTable(ctx, cfg.LeaveTable, leave.Header); err != nil {
		return fmt.Errorf("failed to provision %s: %w", cfg.LeaveTable, err)
	}
	if err := store.EnsureTable(ctx, cfg.DirectoryTable, directory.Header); err != nil {
		return fmt.Errorf("failed to provision %s: %w", cfg.DirectoryTable, err)
	}
	if demo {
		if err := seedDemo(ctx, store, cfg.LeaveTable, cfg.DirectoryTable, time.Now()); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		logger.Info("demo data ready")
	}

	// Reload the workbook when someone saves it from Excel
	if book, ok := store.(*xlsx.Store); ok {
		watcher := xlsx.NewWatcher(book, cfg.XLSXReload, logger.Named("xlsx"))
		watcher.Start()
		defer watcher.Stop()
	}

	// Per-employee lock
	locker, err := openLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Wire service and handler
	service := leave.NewService(leave.NewBook(store, cfg.LeaveTable),
		leave.WithLocker(locker),
		leave.WithLogger(logger.Named("leave.service")),
	)
	messages, err := api.NewMessages(cfg.DefaultLocale)
	if err != nil {
		return err
	}
	handler := api.NewHandler(
		service,
		directory.New(store, cfg.DirectoryTable),
		api.NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		messages,
		logger.Named("api"),
	)
	router := api.NewRouter(handler, api.RouterOptions{AllowedOrigins: cfg.CORSOrigins})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("store", cfg.StoreDriver),
			zap.String("leave_table", cfg.LeaveTable),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func openStore(cfg config.Config) (rowStore, io.Closer, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		s, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "xlsx":
		s, err := xlsx.Open(cfg.XLSXPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "memory":
		return memory.NewMemory(), io.NopCloser(nil), nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openLocker(ctx context.Context, cfg config.Config, logger *zap.Logger) (lock.Locker, error) {
	if cfg.RedisAddr == "" {
		return lock.NewKeyed(), nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}

	logger.Info("using redis lock", zap.String("addr", cfg.RedisAddr))
	return lock.NewRedis(client,
		lock.WithTTL(cfg.LockTTL),
		lock.WithLogger(logger.Named("lock")),
	), nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}
