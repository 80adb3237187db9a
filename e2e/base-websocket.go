package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lobby-lab/client"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseWebsocketSuite struct {
	suite.Suite
	Config Config
	log    *slog.Logger
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseWebsocketSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.LobbyAddr == "" {
		s.T().Skip("LOBBY_ADDR not set, skipping e2e suite")
	}
	s.log = logs.GetLoggerFromLevel(slog.LevelWarn)
}

// Connect opens a named client connection, closed at the end of the test.
func (s *BaseWebsocketSuite) Connect(name string) *client.Client {
	// Print a colorized header for the connection step in logs
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c, err := client.Dial(ctx, s.log, s.Config.LobbyAddr)
	s.Require().NoError(err, "Failed to connect to lobby server at "+s.Config.LobbyAddr)
	s.T().Cleanup(func() { _ = c.Close() })
	return c
}

// Expect waits for an event on the client and fails the test otherwise.
func (s *BaseWebsocketSuite) Expect(c *client.Client, event string) client.Frame {
	start := time.Now()
	frame, err := c.Expect(event, s.Config.Timeout)
	s.Require().NoError(err)
	s.T().Logf("WS %s in %v", event, time.Since(start))
	return frame
}
