// Package runtime owns the lobby state machine and the plumbing around it.
// Commands from every connection are queued and applied one at a time by a
// single supervised worker, which then fans results out to the registry.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"lobby-lab/contract"
	"lobby-lab/domain"
	"lobby-lab/errors"
	"lobby-lab/observability"
	"lobby-lab/runtime/workers"
)

const defaultDisconnectTimeout = 5 * time.Second

var _ contract.IOrchestrator = (*Orchestrator)(nil)

type Orchestrator struct {
	mu                sync.Mutex
	log               *slog.Logger
	supervisor        contract.ISupervisor
	registry          contract.IRegistry
	router            contract.ICommandHandler
	monitoring        *observability.MonitoringManager
	commands          chan domain.Command
	disconnectTimeout time.Duration
	statsInterval     time.Duration
	started           bool
	done              chan struct{}
	closeOnce         sync.Once
	pending           sync.WaitGroup
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, router contract.ICommandHandler,
	monitoring *observability.MonitoringManager, bufferSize int) *Orchestrator {
	return &Orchestrator{
		log:               log,
		supervisor:        supervisor,
		registry:          registry,
		router:            router,
		monitoring:        monitoring,
		commands:          make(chan domain.Command, bufferSize),
		disconnectTimeout: defaultDisconnectTimeout,
		done:              make(chan struct{}),
	}
}

// WithStatsInterval enables a worker logging the lobby metrics at the given pace.
func (o *Orchestrator) WithStatsInterval(interval time.Duration) *Orchestrator {
	o.statsInterval = interval
	return o
}

// WithDisconnectTimeout sets how long a disconnect waits for the queue before it is reported.
func (o *Orchestrator) WithDisconnectTimeout(timeout time.Duration) *Orchestrator {
	if timeout > 0 {
		o.disconnectTimeout = timeout
	}
	return o
}

// Dispatch queues a command without blocking the caller.
func (o *Orchestrator) Dispatch(cmd domain.Command) error {
	select {
	case o.commands <- cmd:
		return nil
	default:
		o.log.Warn("Command queue full, dropping command", "connection_id", cmd.Connection())
		return errors.ErrCommandQueueFull
	}
}

// Connect makes a connection addressable for direct replies.
func (o *Orchestrator) Connect(connectionID domain.ConnectionID, sink contract.EventSink) {
	o.registry.Register(connectionID, sink)
}

// Disconnect queues the removal of the connection from its room without blocking the caller.
// A disconnect is never dropped: when the queue is full it waits behind the commands the
// connection already queued, and is only abandoned when the orchestrator shuts down.
func (o *Orchestrator) Disconnect(connectionID domain.ConnectionID) {
	cmd := domain.DisconnectCommand{ConnectionID: connectionID}
	select {
	case o.commands <- cmd:
		return
	default:
	}

	o.pending.Add(1)
	go func() {
		defer o.pending.Done()
		timer := time.NewTimer(o.disconnectTimeout)
		defer timer.Stop()
		for {
			select {
			case o.commands <- cmd:
				return
			case <-timer.C:
				o.log.Warn("Disconnect still waiting for the command queue", "connection_id", connectionID,
					"waited", o.disconnectTimeout)
			case <-o.done:
				o.log.Debug("Orchestrator stopped, releasing connection", "connection_id", connectionID)
				o.registry.Unregister(connectionID)
				return
			}
		}
	}()
}

// Stats completes the monitoring counters with the registry and queue gauges.
func (o *Orchestrator) Stats() observability.MonitoringStats {
	stats := o.monitoring.Snapshot()
	stats.Connections, _ = o.registry.Count()
	stats.QueueSize = len(o.commands)
	stats.QueueCap = cap(o.commands)
	return stats
}

// Start registers the router worker to the supervisor and blocks until it stops.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		o.log.Warn("Orchestrator already started")
		return nil
	}
	o.started = true
	o.supervisor.Add(workers.NewRouterWorker(o.router, o.commands, o.log))
	if o.statsInterval > 0 {
		o.supervisor.Add(workers.NewReporterWorker(o.log, o.Stats, o.statsInterval))
	}
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	o.shutdown()
	return nil
}

// Stop initiates a graceful shutdown of the orchestrator.
// Commands still queued are abandoned, the process is going away with its rooms.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
	o.shutdown()
}

// Wait blocks until every disconnect handed to a background sender is settled.
func (o *Orchestrator) Wait() {
	o.pending.Wait()
}

func (o *Orchestrator) shutdown() {
	o.closeOnce.Do(func() { close(o.done) })
}
