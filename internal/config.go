package internal

import (
	"fmt"
	"time"

	"lobby-lab/domain"
)

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=5000"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	CommandBufferSize    int           `env:"COMMAND_BUFFER_SIZE,default=1024"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	MaxCapacity          int           `env:"MAX_CAPACITY,default=10"`
	CapacityPolicy       string        `env:"CAPACITY_POLICY,default=spectate"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	PingInterval         time.Duration `env:"PING_INTERVAL,default=30s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	DisconnectTimeout    time.Duration `env:"DISCONNECT_TIMEOUT,default=5s"`
	StatsInterval        time.Duration `env:"STATS_INTERVAL,default=0s"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	JournalPath          string        `env:"JOURNAL_PATH"`
	JournalLimit         *int          `env:"JOURNAL_LIMIT"`
}

// Address is the listen address of the HTTP server.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreOptions checks the room settings and turns them into store options.
func (c Config) StoreOptions() (domain.StoreOptions, error) {
	if c.MaxCapacity <= 0 {
		return domain.StoreOptions{}, fmt.Errorf("MAX_CAPACITY must be positive, got %d", c.MaxCapacity)
	}
	policy := domain.CapacityPolicy(c.CapacityPolicy)
	switch policy {
	case domain.CapacitySpectate, domain.CapacityReject:
	default:
		return domain.StoreOptions{}, fmt.Errorf(
			"CAPACITY_POLICY must be %q or %q, got %q",
			domain.CapacitySpectate, domain.CapacityReject, c.CapacityPolicy,
		)
	}
	return domain.StoreOptions{MaxCapacity: c.MaxCapacity, CapacityPolicy: policy}, nil
}

// JournalEnabled reports whether lobby events are written to disk.
func (c Config) JournalEnabled() bool {
	return c.JournalPath != ""
}
