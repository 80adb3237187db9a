package internal

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"lobby-lab/observability"
	"lobby-lab/repositories"
)

const healthMessage = "Real-Time Tournament Room Manager is Running"

type StatsProvider func() observability.MonitoringStats

// NewServerMux exposes the health check, the websocket endpoint and the debug routes.
// journal may be nil when the journal is disabled.
func NewServerMux(log *slog.Logger, ws http.Handler, stats StatsProvider,
	journal repositories.IJournalRepository) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(healthMessage))
	})

	mux.Handle("/ws", ws)

	mux.HandleFunc("GET /debug/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, stats())
	})

	mux.HandleFunc("GET /debug/journal", func(w http.ResponseWriter, r *http.Request) {
		if journal == nil {
			http.Error(w, "journal disabled", http.StatusNotFound)
			return
		}
		room := r.URL.Query().Get("room")
		if room == "" {
			entries, err := journal.ListAll()
			if err != nil {
				log.Error("Unable to read journal", "error", err)
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, log, map[string]any{"entries": entries})
			return
		}
		var cursor *string
		if c := r.URL.Query().Get("cursor"); c != "" {
			cursor = &c
		}
		entries, next, err := journal.List(room, cursor)
		if err != nil {
			log.Error("Unable to read journal", "room_id", room, "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, log, map[string]any{"entries": entries, "cursor": next})
	})

	return cors(mux)
}

// cors opens every route to any origin.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("Unable to write response", "error", err)
	}
}
