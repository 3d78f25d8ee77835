package server

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"Broadside/internal/defs"
	"Broadside/internal/game"
)

// StartApp loads definitions, builds the session hub, and serves the
// websocket command surface until the process exits.
func StartApp(cfg AppConfig) error {
	logger := newLogger(cfg.LogLevel)

	table, err := defs.Load(cfg.DefsPath)
	if err != nil {
		return err
	}
	hub := game.NewHub(table, logger)

	// Periodic teardown of ended and abandoned rooms.
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			hub.CleanupFinishedRooms()
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, logger, w, r)
	})

	logger.Info().
		Str("addr", cfg.Addr).
		Int("board_w", table.Tun.BoardW).
		Int("board_h", table.Tun.BoardH).
		Int("units", len(table.Units)).
		Int("items", len(table.Items)).
		Msg("starting battle server")
	return http.ListenAndServe(cfg.Addr, mux)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
