package internal

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"lobby-lab/mocks"
	"lobby-lab/observability"
	"lobby-lab/repositories"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestServer(t *testing.T, journal repositories.IJournalRepository) *httptest.Server {
	t.Helper()
	ws := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	stats := func() observability.MonitoringStats {
		return observability.MonitoringStats{Rooms: 2, Connections: 3}
	}
	server := httptest.NewServer(NewServerMux(slog.Default(), ws, stats, journal))
	t.Cleanup(server.Close)
	return server
}

func TestServer_Health(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/")
	req.NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	req.NoError(err)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal("Real-Time Tournament Room Manager is Running", string(body))
	req.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_Routes_Websocket_And_Preflight(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/ws")
	req.NoError(err)
	_ = resp.Body.Close()
	req.Equal(http.StatusTeapot, resp.StatusCode)

	preflight, err := http.NewRequest(http.MethodOptions, server.URL+"/debug/stats", nil)
	req.NoError(err)
	resp, err = http.DefaultClient.Do(preflight)
	req.NoError(err)
	_ = resp.Body.Close()
	req.Equal(http.StatusNoContent, resp.StatusCode)
	req.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_Stats(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/debug/stats")
	req.NoError(err)
	defer resp.Body.Close()

	var stats observability.MonitoringStats
	req.NoError(json.NewDecoder(resp.Body).Decode(&stats))
	req.Equal(2, stats.Rooms)
	req.Equal(3, stats.Connections)
}

func TestServer_Journal(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Given a journal holding one entry for R1
	journal := mocks.NewMockIJournalRepository(ctrl)
	cursor := "cursor"
	journal.EXPECT().List("R1", nil).
		Return([]repositories.JournalEntry{{Room: "R1", Type: "room-update"}}, &cursor, nil)

	server := newTestServer(t, journal)
	resp, err := http.Get(server.URL + "/debug/journal?room=R1")
	req.NoError(err)
	defer resp.Body.Close()

	var body struct {
		Entries []repositories.JournalEntry `json:"entries"`
		Cursor  string                      `json:"cursor"`
	}
	req.NoError(json.NewDecoder(resp.Body).Decode(&body))
	req.Len(body.Entries, 1)
	req.Equal("room-update", body.Entries[0].Type)
	req.Equal("cursor", body.Cursor)
}

func TestServer_Journal_Disabled(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/debug/journal")
	req.NoError(err)
	_ = resp.Body.Close()
	req.Equal(http.StatusNotFound, resp.StatusCode)
}
