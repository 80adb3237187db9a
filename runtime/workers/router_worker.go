package workers

import (
	"context"
	"log/slog"

	"lobby-lab/contract"
	"lobby-lab/domain"
)

// Ensure *RouterWorker implements the contract.Worker interface at compile time.
// This prevents "type mismatch" errors from appearing late in other packages
// and acts as a static assertion of our architectural rules.
var _ contract.Worker = (*RouterWorker)(nil)

// RouterWorker is the only consumer of the command queue.
// Commands are handled one after the other in arrival order, so the handler
// never sees two mutations at the same time.
type RouterWorker struct {
	handler  contract.ICommandHandler
	commands <-chan domain.Command
	log      *slog.Logger
}

func NewRouterWorker(handler contract.ICommandHandler, commands <-chan domain.Command, log *slog.Logger) *RouterWorker {
	return &RouterWorker{handler: handler, commands: commands, log: log}
}

func (w *RouterWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping router worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Command channel is closed")
				return nil
			}
			w.handler.Handle(ctx, cmd)
		}
	}
}
