package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"Broadside/internal/defs"
)

// Hub is the session manager: explicit create/lookup/teardown of rooms,
// owned by the transport layer and passed by reference into command
// handlers. Rooms are independent units of mutable state; the only thing
// they share is the read-only definitions table.
type Hub struct {
	Mu    sync.Mutex
	Rooms map[string]*Room

	table  *defs.Table
	logger zerolog.Logger
}

func NewHub(table *defs.Table, logger zerolog.Logger) *Hub {
	return &Hub{
		Rooms:  map[string]*Room{},
		table:  table,
		logger: logger,
	}
}

// CreateRoom makes a new room under the given id (random when empty).
// Creating over an existing id fails; joining is a separate operation.
func (h *Hub) CreateRoom(id string) (*Room, error) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	if id == "" {
		id = RandId("r")
	}
	if _, exists := h.Rooms[id]; exists {
		return nil, ErrRoomExists
	}
	r := newRoom(id, h.table, time.Now().UnixNano(), h.logger)
	h.Rooms[id] = r
	h.logger.Info().Str("room", id).Msg("room created")
	return r, nil
}

// GetRoom looks a room up; nil when absent. Creation is a separate, explicit
// command so a typo in a room id cannot silently open a fresh room.
func (h *Hub) GetRoom(id string) *Room {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	return h.Rooms[id]
}

func (h *Hub) RemoveRoom(id string) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	delete(h.Rooms, id)
}

// CleanupFinishedRooms tears down ended and abandoned rooms. Called
// periodically from the app loop.
func (h *Hub) CleanupFinishedRooms() {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	for id, r := range h.Rooms {
		r.Mu.Lock()
		dead := r.Phase == PhaseEnded || len(r.Players) == 0
		if dead {
			r.stopRevealTimers()
		}
		r.Mu.Unlock()
		if dead {
			delete(h.Rooms, id)
			h.logger.Info().Str("room", id).Msg("room torn down")
		}
	}
}
