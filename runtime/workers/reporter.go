package workers

import (
	"context"
	"log/slog"
	"time"

	"lobby-lab/contract"
	"lobby-lab/observability"
)

var _ contract.Worker = (*ReporterWorker)(nil)

// ReporterWorker periodically logs a snapshot of the lobby metrics.
type ReporterWorker struct {
	log      *slog.Logger
	stats    func() observability.MonitoringStats
	interval time.Duration
}

func NewReporterWorker(log *slog.Logger, stats func() observability.MonitoringStats, interval time.Duration) *ReporterWorker {
	return &ReporterWorker{log: log, stats: stats, interval: interval}
}

// Run starts the reporting loop until context cancellation
func (w *ReporterWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.printStats()
			return ctx.Err()
		case <-ticker.C:
			w.printStats()
		}
	}
}

func (w *ReporterWorker) printStats() {
	stats := w.stats()
	w.log.Info("📊 Lobby stats",
		"uptime", stats.Uptime,
		"rooms", stats.Rooms,
		"connections", stats.Connections,
		"queue", stats.QueueSize,
		"commands", stats.Commands,
		"broadcasts", stats.Broadcasts,
		"dropped_sends", stats.DroppedSends,
		"ram_mb", stats.AllocMemMb,
	)
}
