package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"lobby-lab/internal"
	"lobby-lab/observability"
	"lobby-lab/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

type Config struct {
	JournalPath string `env:"JOURNAL_PATH,required=true"`
	ViewerPort  int    `env:"VIEWER_PORT,default=5001"`
	LogLevel    string `env:"LOG_LEVEL,default=INFO"`
}

// The viewer serves the journal of a lobby server, without running any room.
func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if another process (lobby server) holds the lock
	opts := badger.DefaultOptions(config.JournalPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Debug routes only, the orchestrator isn't running here
	startedAt := time.Now()
	emptyStats := func() observability.MonitoringStats {
		return observability.MonitoringStats{Uptime: time.Since(startedAt).Round(time.Second).String()}
	}
	journal := repositories.NewJournalRepository(db, logger, nil)
	mux := internal.NewServerMux(logger, http.NotFoundHandler(), emptyStats, journal)

	fmt.Printf("🌐 Viewer started at http://localhost:%d/debug/journal\n", config.ViewerPort)
	if err := http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", config.ViewerPort), mux); err != nil {
		log.Fatalf("Viewer stopped: %v", err)
	}
}
