package observability

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonitoringManager_Snapshot(t *testing.T) {
	req := require.New(t)
	mm := NewMonitoringManager(slog.Default())

	// Given two rooms created and one deleted
	mm.IncrRoomsCreated()
	mm.IncrRoomsCreated()
	mm.IncrRoomsDeleted()
	mm.IncrCommands()
	mm.IncrBroadcasts()
	mm.IncrFailures()
	mm.IncrDroppedSends()

	stats := mm.Snapshot()

	req.Equal(1, stats.Rooms)
	req.Equal(uint64(2), stats.RoomsCreated)
	req.Equal(uint64(1), stats.Commands)
	req.Equal(uint64(1), stats.Broadcasts)
	req.Equal(uint64(1), stats.Failures)
	req.Equal(uint64(1), stats.DroppedSends)
	req.Positive(stats.Goroutines)
	req.NotEmpty(stats.Uptime)
}

func TestMonitoringManager_Nil_Is_Usable(t *testing.T) {
	var mm *MonitoringManager
	mm.IncrCommands()
	mm.IncrRoomsCreated()
	require.Equal(t, MonitoringStats{}, mm.Snapshot())
}
