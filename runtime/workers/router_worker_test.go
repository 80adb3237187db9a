package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"lobby-lab/domain"
	"lobby-lab/mocks"
	"lobby-lab/observability"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRouterWorker_Handles_Commands_In_Order(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	handler := mocks.NewMockICommandHandler(ctrl)

	// Given three commands queued before the worker starts
	commands := make(chan domain.Command, 3)
	first := domain.CreateRoomCommand{ConnectionID: "c1", Room: "R1", Player: domain.Participant{Name: "Alice"}}
	second := domain.JoinRoomCommand{ConnectionID: "c2", Room: "R1", Player: domain.Participant{Name: "Bob"}}
	third := domain.StartGameCommand{ConnectionID: "c1", Room: "R1"}
	commands <- first
	commands <- second
	commands <- third
	close(commands)

	gomock.InOrder(
		handler.EXPECT().Handle(gomock.Any(), first),
		handler.EXPECT().Handle(gomock.Any(), second),
		handler.EXPECT().Handle(gomock.Any(), third),
	)

	// When the worker drains the channel
	err := NewRouterWorker(handler, commands, slog.Default()).Run(context.Background())

	// Then a closed channel ends the worker without error
	req.NoError(err)
}

func TestRouterWorker_Stops_On_Context_Cancel(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	handler := mocks.NewMockICommandHandler(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewRouterWorker(handler, make(chan domain.Command), slog.Default()).Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		req.Fail("Worker should have stopped")
	}
}

func TestReporterWorker_Samples_Stats_Until_Cancel(t *testing.T) {
	req := require.New(t)

	calls := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	worker := NewReporterWorker(slog.Default(), func() observability.MonitoringStats {
		select {
		case calls <- struct{}{}:
		default:
		}
		return observability.MonitoringStats{Rooms: 1}
	}, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	<-calls
	cancel()

	req.ErrorIs(<-done, context.Canceled)
}
