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

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"campus-chat/auth"
	"campus-chat/command"
	"campus-chat/internal"
	"campus-chat/moderation"
	"campus-chat/observability"
	"campus-chat/runtime"
	"campus-chat/runtime/workers"
	"campus-chat/spider"
	"campus-chat/transport/httpapi"
	"campus-chat/transport/ws"
	"campus-chat/warehouse"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for HTTP and background workers.
func run(ctx context.Context) (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeCfg := bluge.DefaultConfig(config.BlugeFilepath)
	blugeWriter, err := bluge.OpenWriter(blugeCfg)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	monitoring := observability.NewMonitoringManager(logger)

	if config.DebugPort != nil && logger.Enabled(ctx, slog.LevelDebug) {
		url := fmt.Sprintf("http://localhost:%d/inspect", *config.DebugPort)
		logger.Info("Debug store inspector available", "url", url)
		internal.StartDebugServer(db, *config.DebugPort, internal.DefaultMapper, func() map[string]any {
			stats := monitoring.GetLatest()
			return map[string]any{
				"Online":    stats.OnlineCount,
				"Messages":  stats.MessagesIn,
				"Delivered": stats.EventsDelivered,
				"Dropped":   stats.EventsDropped,
			}
		})
	}

	// 3. Moderation
	wordlists, err := moderation.LoadWordlists()
	if err != nil {
		return exitConfig, fmt.Errorf("wordlists loading failed: %w", err)
	}
	moderator, err := moderation.NewModerator(wordlists.Words, charReplacement)
	if err != nil {
		return exitConfig, fmt.Errorf("moderator build failed: %w", err)
	}
	logger.Info("Moderation ready",
		"words", len(wordlists.Words),
		"languages", wordlists.Languages)

	// 4. Chat core
	registry := runtime.NewRegistry()
	rooms := runtime.NewRooms()
	dispatcher := runtime.NewDispatcher(logger, monitoring, config.BufferSize, config.SinkTimeout)
	classifier := command.NewClassifier(command.DefaultHandlers()...)
	coordinator := runtime.NewCoordinator(logger, registry, rooms, dispatcher, classifier,
		func(text string) string {
			censored, _ := moderator.Censor(text)
			return censored
		}, monitoring)

	// 5. Accounts, warehouse, scraper
	tokens := auth.NewTokenManager(config.AuthTokenSecret, config.AuthTokenDuration)
	accounts := auth.NewService(auth.NewUserRepository(db, logger), tokens, logger)
	results := warehouse.NewResultRepository(db, blugeWriter, logger, config.LimitResults, config.SearchPageSize)
	scraper := spider.New(logger, config.SpiderBaseURL)

	// 6. Supervision
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(dispatcher)
	sup.Add(workers.NewHeartbeatWorker(logger, monitoring, config.HeartbeatInterval))

	// 7. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 8. Start the Engine (Fanout and Heartbeat)
	// Run blocks until the workers drain, so it gets its own goroutine;
	// supDone lets the shutdown path wait for that drain.
	supDone := make(chan struct{})
	go func() {
		logger.Info("Starting workers...")
		sup.Run(ctx)
		close(supDone)
	}()

	// 9. HTTP surface: websocket endpoint + JSON API
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewHandler(coordinator, logger, config.ConnectionBufferSize))
	api := httpapi.New(logger, accounts, tokens, scraper, results, []httpapi.ServerInfo{
		{Name: config.ServerName, Address: fmt.Sprintf("ws://%s/ws", address)},
	})
	api.Register(mux)

	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 10. Wait for Stop or Error
	// The execution blocks here until either a signal is received or the server crashes.
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 11. Final Cleanup (Graceful Shutdown)
	// We allow in-flight requests to finish and workers to drain their channels.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown did not finish cleanly", "error", err)
	}
	sup.Stop()
	select {
	case <-supDone:
	case <-shutdownCtx.Done():
		logger.Warn("Workers did not drain before the shutdown deadline")
	}
	if err := results.Flush(); err != nil {
		logger.Warn("Final index flush failed", "error", err)
	}
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
