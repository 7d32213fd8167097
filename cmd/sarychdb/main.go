// Command sarychdb runs the SarychDB HTTP server. Grounded on the teacher's
// cmd/mddb/main.go (flag parsing, signal.NotifyContext, graceful shutdown),
// extended with the `run benchmark` subcommand from the original source's
// run_benchmark_mode and config/rate-limiter/logging wiring per
// SPEC_FULL.md §2.1/§6.1.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sarychdb/sarychdb/internal/config"
	"github.com/sarychdb/sarychdb/internal/crud"
	"github.com/sarychdb/sarychdb/internal/logging"
	"github.com/sarychdb/sarychdb/internal/server"
	"github.com/sarychdb/sarychdb/internal/server/handlers"
	"github.com/sarychdb/sarychdb/internal/server/ratelimit"
	"github.com/sarychdb/sarychdb/internal/storage"
	"github.com/sarychdb/sarychdb/internal/users"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "sarychdb: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	args := os.Args[1:]
	if len(args) == 0 {
		return fmt.Errorf("usage: sarychdb <run|run benchmark> [flags]")
	}

	switch args[0] {
	case "run":
		if len(args) > 1 && args[1] == "benchmark" {
			return runBenchmark(args[2:])
		}
		return runServer(args[1:])
	default:
		return fmt.Errorf("unknown command %q, expected \"run\"", args[0])
	}
}

func runServer(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	port := fs.Int("port", 0, "Port to listen on (overrides config and PORT env var)")
	configPath := fs.String("config", "", "Path to YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if envPort := os.Getenv("PORT"); envPort != "" {
		if n, err := strconv.Atoi(envPort); err == nil {
			cfg.Server.Port = n
		}
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger := logging.New(os.Stderr, cfg.Server.LogLevel)
	slog.SetDefault(logger)

	store := storage.NewFileStore()
	fileCache := storage.NewFileCache(store, time.Duration(cfg.FileCache.TTLSeconds)*time.Second)
	searchCache := storage.NewSearchCache(time.Duration(cfg.SearchCache.TTLSeconds)*time.Second, cfg.SearchCache.MaxEntries)
	engine := crud.New(store, fileCache, searchCache)

	registry, err := users.NewRegistry(cfg.Server.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open user registry: %w", err)
	}

	limiter := ratelimit.NewLimiter(cfg.RateLimit.RequestsPerWindow, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second, cfg.RateLimit.Burst)
	defer limiter.Close()

	deps := &handlers.Deps{
		Users:   registry,
		Engine:  engine,
		Store:   store,
		DataDir: cfg.Server.DataDir,
	}

	stopWatch, err := watchConfig(*configPath, searchCache, logger)
	if err != nil {
		return fmt.Errorf("failed to start config watcher: %w", err)
	}
	defer stopWatch()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     server.NewRouter(deps, limiter, logger),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", addr)
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownSecs)*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		logger.Info("server stopped")
	}
	return nil
}
