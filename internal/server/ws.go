package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"Broadside/internal/game"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// sendRateHz paces the per-connection send loop. State frames only go out
// when the room's state version actually changed, so the tick is just how
// quickly a change reaches the client.
const sendRateHz = 10.0

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type createRoomPayload struct {
	Name   string `json:"name"`
	RoomID string `json:"room_id"`
}

type joinRoomPayload struct {
	Name   string `json:"name"`
	RoomID string `json:"room_id"`
}

type selectCommanderPayload struct {
	CommanderID string `json:"commander_id"`
}

type buyItemPayload struct {
	ItemID string `json:"item_id"`
}

type deployFleetPayload struct {
	Ships []game.ShipPlacement `json:"ships"`
}

type fireShotPayload struct {
	X               int    `json:"x"`
	Y               int    `json:"y"`
	PreferredUnitID string `json:"preferred_unit_id,omitempty"`
}

type moveUnitPayload struct {
	UnitID string `json:"unit_id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type useItemPayload struct {
	ItemID string            `json:"item_id"`
	Params game.EffectParams `json:"params"`
}

// session is one live connection. room and playerID are nil/"" until the
// first successful create_room or join_room; after that every write goes
// through the send loop, so the read goroutine never races it on the socket.
type session struct {
	conn   *websocket.Conn
	hub    *game.Hub
	logger zerolog.Logger

	mu       sync.Mutex
	room     *game.Room
	playerID string

	lastVersion uint64
}

func (s *session) current() (*game.Room, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room, s.playerID
}

func (s *session) attach(room *game.Room, playerID string) {
	s.mu.Lock()
	s.room = room
	s.playerID = playerID
	s.mu.Unlock()
}

func serveWS(hub *game.Hub, logger zerolog.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	s := &session{conn: conn, hub: hub, logger: logger}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer cancel()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var inbound inboundMessage
			if err := json.Unmarshal(data, &inbound); err != nil {
				s.logger.Warn().Err(err).Msg("invalid message")
				continue
			}
			s.dispatch(inbound)
		}
	}()

	go func() {
		ticker := time.NewTicker(time.Duration(1000.0/sendRateHz) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.flush(); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	<-ctx.Done()
	conn.Close()

	if room, playerID := s.current(); room != nil {
		room.Mu.Lock()
		empty := room.HandleDisconnect(playerID)
		room.Mu.Unlock()
		if empty {
			hub.RemoveRoom(room.ID)
		}
	}
}

// flush sends at most one game_state frame (when the room state advanced)
// plus any queued event frames for this participant.
func (s *session) flush() error {
	room, playerID := s.current()
	if room == nil {
		return nil
	}

	var view *game.View
	var outbound []game.OutboundMessage

	room.Mu.Lock()
	if p := room.Players[playerID]; p != nil {
		if room.StateVersion != s.lastVersion {
			view = game.Project(room, playerID, p.FullReveal)
			s.lastVersion = room.StateVersion
		}
		outbound = p.ConsumePendingMessages()
	}
	room.Mu.Unlock()

	if view != nil {
		if err := s.writeFrame("game_state", viewToDTO(view)); err != nil {
			return err
		}
	}
	for _, msg := range outbound {
		if err := s.writeFrame(msg.Type, msg.Payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) writeFrame(msgType string, payload any) error {
	return s.conn.WriteJSON(map[string]any{"type": msgType, "payload": payload})
}

func (s *session) dispatch(inbound inboundMessage) {
	room, playerID := s.current()

	if room == nil {
		switch inbound.Type {
		case "create_room":
			var p createRoomPayload
			if json.Unmarshal(inbound.Payload, &p) == nil {
				s.handleCreateRoom(p)
			} else {
				// Not in a room yet; the socket is still ours to write on.
				_ = s.writeFrame("error", map[string]any{"message": "malformed create_room payload"})
			}
		case "join_room":
			var p joinRoomPayload
			if json.Unmarshal(inbound.Payload, &p) == nil {
				s.handleJoinRoom(p)
			} else {
				_ = s.writeFrame("error", map[string]any{"message": "malformed join_room payload"})
			}
		default:
			_ = s.writeFrame("error", map[string]any{"message": "join a room first"})
		}
		return
	}

	switch inbound.Type {
	case "create_room", "join_room":
		queueError(room, playerID, "already in a room")
	case "select_commander":
		var p selectCommanderPayload
		if json.Unmarshal(inbound.Payload, &p) == nil {
			handleSelectCommander(room, playerID, p)
		} else {
			queueError(room, playerID, "malformed select_commander payload")
		}
	case "buy_item":
		var p buyItemPayload
		if json.Unmarshal(inbound.Payload, &p) == nil {
			handleBuyItem(room, playerID, p)
		} else {
			queueError(room, playerID, "malformed buy_item payload")
		}
	case "deploy_fleet":
		var p deployFleetPayload
		if json.Unmarshal(inbound.Payload, &p) == nil {
			handleDeployFleet(room, playerID, p)
		} else {
			queueError(room, playerID, "malformed deploy_fleet payload")
		}
	case "fire_shot":
		var p fireShotPayload
		if json.Unmarshal(inbound.Payload, &p) == nil {
			handleFireShot(room, playerID, p)
		} else {
			queueError(room, playerID, "malformed fire_shot payload")
		}
	case "move_unit":
		var p moveUnitPayload
		if json.Unmarshal(inbound.Payload, &p) == nil {
			handleMoveUnit(room, playerID, p)
		} else {
			queueError(room, playerID, "malformed move_unit payload")
		}
	case "use_item":
		var p useItemPayload
		if json.Unmarshal(inbound.Payload, &p) == nil {
			handleUseItem(room, playerID, p)
		} else {
			queueError(room, playerID, "malformed use_item payload")
		}
	case "activate_skill":
		handleActivateSkill(room, playerID)
	default:
		s.logger.Warn().Str("type", inbound.Type).Msg("unknown message type")
	}
}

// queueError queues an error frame for one player; the send loop delivers it.
func queueError(room *game.Room, playerID, message string) {
	room.Mu.Lock()
	if p := room.Players[playerID]; p != nil {
		p.SendMessage("error", map[string]any{"message": message})
	}
	room.Mu.Unlock()
}

func (s *session) handleCreateRoom(p createRoomPayload) {
	room, err := s.hub.CreateRoom(p.RoomID)
	if err != nil {
		_ = s.writeFrame("error", map[string]any{"message": err.Error()})
		return
	}
	s.joinAs(room, p.Name, "room_created")
}

func (s *session) handleJoinRoom(p joinRoomPayload) {
	room := s.hub.GetRoom(p.RoomID)
	if room == nil {
		_ = s.writeFrame("error", map[string]any{"message": "no such room"})
		return
	}
	s.joinAs(room, p.Name, "room_info")
}

func (s *session) joinAs(room *game.Room, name string, frameType string) {
	room.Mu.Lock()
	player, err := room.AddPlayer(name)
	var info roomInfoDTO
	if err == nil {
		info = roomInfoDTO{
			RoomID:   room.ID,
			PlayerID: player.ID,
			W:        room.Terrain.W,
			H:        room.Terrain.H,
			Terrain:  room.Terrain.Rows(),
		}
	}
	room.Mu.Unlock()

	if err != nil {
		_ = s.writeFrame("error", map[string]any{"message": err.Error()})
		return
	}
	// Reply before attaching: once attached, the send loop owns the socket.
	_ = s.writeFrame(frameType, info)
	s.attach(room, player.ID)
}

// sendError queues a caller-correctable rejection for the originating
// participant only; room state is unchanged.
func sendError(room *game.Room, playerID string, err error) {
	if p := room.Players[playerID]; p != nil {
		p.SendMessage("error", map[string]any{"message": err.Error()})
	}
}

func handleSelectCommander(room *game.Room, playerID string, msg selectCommanderPayload) {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if err := room.SelectCommander(playerID, msg.CommanderID); err != nil {
		sendError(room, playerID, err)
	}
}

func handleBuyItem(room *game.Room, playerID string, msg buyItemPayload) {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if err := room.BuyItem(playerID, msg.ItemID); err != nil {
		sendError(room, playerID, err)
	}
}

func handleDeployFleet(room *game.Room, playerID string, msg deployFleetPayload) {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if err := room.DeployFleet(playerID, msg.Ships); err != nil {
		sendError(room, playerID, err)
	}
}

func handleFireShot(room *game.Room, playerID string, msg fireShotPayload) {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if _, err := room.FireShot(playerID, msg.X, msg.Y, msg.PreferredUnitID); err != nil {
		sendError(room, playerID, err)
	}
}

func handleMoveUnit(room *game.Room, playerID string, msg moveUnitPayload) {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if err := room.MoveUnit(playerID, msg.UnitID, msg.X, msg.Y); err != nil {
		sendError(room, playerID, err)
	}
}

func handleUseItem(room *game.Room, playerID string, msg useItemPayload) {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if _, err := room.UseItem(playerID, msg.ItemID, msg.Params); err != nil {
		sendError(room, playerID, err)
	}
}

func handleActivateSkill(room *game.Room, playerID string) {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if _, err := room.ActivateSkill(playerID); err != nil {
		sendError(room, playerID, err)
	}
}
