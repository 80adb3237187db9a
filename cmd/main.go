package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lobby-lab/contract"
	"lobby-lab/domain"
	"lobby-lab/infrastructure/websocket"
	"lobby-lab/internal"
	"lobby-lab/observability"
	"lobby-lab/repositories"
	"lobby-lab/runtime"
	"lobby-lab/runtime/workers"
	"lobby-lab/sink"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Every defer (journal cleanup) runs before the program exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	storeOptions, err := config.StoreOptions()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// 2. Optional journal (BadgerDB)
	var journal repositories.IJournalRepository
	var permanentSinks []contract.EventSink
	if config.JournalEnabled() {
		db, err := badger.Open(badger.DefaultOptions(config.JournalPath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return fmt.Errorf("journal opening failed: %w", err)
		}
		//  Defer will be executed before run() returned anything to main()
		defer func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}()
		repository := repositories.NewJournalRepository(db, log, config.JournalLimit)
		journal = repository
		permanentSinks = append(permanentSinks, sink.NewJournalSink(repository, log))
		log.Info("Journal enabled", "path", config.JournalPath)
	}

	// 3. Setup Supervision & Orchestration
	monitoring := observability.NewMonitoringManager(log)
	registry := runtime.NewRegistry()
	store := domain.NewStore(storeOptions)
	router := runtime.NewRouter(log, store, registry, monitoring, config.SinkTimeout).Add(permanentSinks...)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	orchestrator := runtime.NewOrchestrator(log, sup, registry, router, monitoring, config.CommandBufferSize).
		WithStatsInterval(config.StatsInterval).
		WithDisconnectTimeout(config.DisconnectTimeout)

	// 4. HTTP & WebSocket server
	ws := websocket.NewHandler(log, orchestrator, websocket.Options{
		BufferSize:   config.ConnectionBufferSize,
		WriteTimeout: config.WriteTimeout,
		PingInterval: config.PingInterval,
	})
	server := &http.Server{
		Addr:              config.Address(),
		Handler:           internal.NewServerMux(log, ws, orchestrator.Stats, journal),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	// 6. Start the Engine
	g.Go(func() error {
		return orchestrator.Start(gCtx)
	})

	g.Go(func() error {
		log.Info("Starting lobby server", "address", server.Addr, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	// 7. Wait for Stop or Error, then final cleanup
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		orchestrator.Stop()
		orchestrator.Wait()
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Program stopped cleanly")
	return nil
}
