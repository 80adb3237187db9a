package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// MonitoringStats aggregates every metric exposed on the stats endpoint
type MonitoringStats struct {
	// --- LOBBY METRICS ---
	Commands     uint64 `json:"commands"`
	Broadcasts   uint64 `json:"broadcasts"`
	Failures     uint64 `json:"failures"`
	DroppedSends uint64 `json:"dropped_sends"`
	RoomsCreated uint64 `json:"rooms_created"`
	RoomsDeleted uint64 `json:"rooms_deleted"`
	Rooms        int    `json:"rooms"`
	Connections  int    `json:"connections"`
	QueueSize    int    `json:"queue_size"`
	QueueCap     int    `json:"queue_capacity"`

	// --- SYSTEM METRICS ---
	Uptime     string  `json:"uptime"`
	AllocMemMb uint64  `json:"alloc_mem_mb"`
	NumGC      uint32  `json:"num_gc"`
	Goroutines int     `json:"goroutines"`
	RssBytes   uint64  `json:"rss_bytes"`
	CpuPercent float64 `json:"cpu_percent"`
}

// MonitoringManager holds lock-free counters updated on the hot path.
// A nil *MonitoringManager is valid and records nothing.
type MonitoringManager struct {
	log       *slog.Logger
	startedAt time.Time
	proc      *process.Process

	commands     atomic.Uint64
	broadcasts   atomic.Uint64
	failures     atomic.Uint64
	droppedSends atomic.Uint64
	roomsCreated atomic.Uint64
	roomsDeleted atomic.Uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Process stats unavailable", "error", err)
	}
	return &MonitoringManager{log: log, startedAt: time.Now(), proc: p}
}

func (mm *MonitoringManager) IncrCommands() {
	if mm != nil {
		mm.commands.Add(1)
	}
}

func (mm *MonitoringManager) IncrBroadcasts() {
	if mm != nil {
		mm.broadcasts.Add(1)
	}
}

func (mm *MonitoringManager) IncrFailures() {
	if mm != nil {
		mm.failures.Add(1)
	}
}

func (mm *MonitoringManager) IncrDroppedSends() {
	if mm != nil {
		mm.droppedSends.Add(1)
	}
}

func (mm *MonitoringManager) IncrRoomsCreated() {
	if mm != nil {
		mm.roomsCreated.Add(1)
	}
}

func (mm *MonitoringManager) IncrRoomsDeleted() {
	if mm != nil {
		mm.roomsDeleted.Add(1)
	}
}

// Snapshot reads the counters and samples Go runtime and process metrics.
func (mm *MonitoringManager) Snapshot() MonitoringStats {
	if mm == nil {
		return MonitoringStats{}
	}
	stats := MonitoringStats{
		Commands:     mm.commands.Load(),
		Broadcasts:   mm.broadcasts.Load(),
		Failures:     mm.failures.Load(),
		DroppedSends: mm.droppedSends.Load(),
		RoomsCreated: mm.roomsCreated.Load(),
		RoomsDeleted: mm.roomsDeleted.Load(),
		Uptime:       time.Since(mm.startedAt).Round(time.Second).String(),
		Goroutines:   runtime.NumGoroutine(),
	}
	stats.Rooms = int(stats.RoomsCreated - stats.RoomsDeleted)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.AllocMemMb = m.Alloc / 1024 / 1024
	stats.NumGC = m.NumGC

	if mm.proc != nil {
		if memInfo, err := mm.proc.MemoryInfo(); err == nil {
			stats.RssBytes = memInfo.RSS
		}
		if cpu, err := mm.proc.CPUPercent(); err == nil {
			stats.CpuPercent = cpu
		}
	}
	return stats
}
