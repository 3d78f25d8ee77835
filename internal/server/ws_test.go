package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"Broadside/internal/defs"
	"Broadside/internal/game"
)

type testFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) (*httptest.Server, *game.Hub) {
	t.Helper()
	hub := game.NewHub(defs.Default(), zerolog.Nop())
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, zerolog.Nop(), w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, hub
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendCommand(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": msgType, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// readFrameOfType drains frames until one of the wanted type arrives,
// skipping interleaved state broadcasts.
func readFrameOfType(t *testing.T, conn *websocket.Conn, want string) testFrame {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	conn.SetReadDeadline(deadline)
	for {
		var f testFrame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("waiting for %s frame: %v", want, err)
		}
		if f.Type == want {
			return f
		}
		if time.Now().After(deadline) {
			t.Fatalf("no %s frame before the deadline", want)
		}
	}
}

func TestCreateAndJoinHandshake(t *testing.T) {
	srv, hub := newTestServer(t)

	host := dialWS(t, srv)
	sendCommand(t, host, "create_room", map[string]any{"name": "alice", "room_id": "duel-1"})
	created := readFrameOfType(t, host, "room_created")

	var info roomInfoDTO
	if err := json.Unmarshal(created.Payload, &info); err != nil {
		t.Fatalf("decode room_created: %v", err)
	}
	if info.RoomID != "duel-1" || info.PlayerID == "" {
		t.Fatalf("bad room info: %+v", info)
	}
	if len(info.Terrain) != info.H || len(info.Terrain[0]) != info.W {
		t.Fatalf("terrain grid mismatch: %dx%d", len(info.Terrain), len(info.Terrain[0]))
	}
	if hub.GetRoom("duel-1") == nil {
		t.Fatalf("room missing from the hub")
	}

	guest := dialWS(t, srv)
	sendCommand(t, guest, "join_room", map[string]any{"name": "bob", "room_id": "duel-1"})
	joined := readFrameOfType(t, guest, "room_info")
	var guestInfo roomInfoDTO
	if err := json.Unmarshal(joined.Payload, &guestInfo); err != nil {
		t.Fatalf("decode room_info: %v", err)
	}
	if guestInfo.PlayerID == "" || guestInfo.PlayerID == info.PlayerID {
		t.Fatalf("guest must get a distinct player id")
	}

	// Both connections converge on a SETUP-phase state broadcast.
	for _, conn := range []*websocket.Conn{host, guest} {
		deadline := time.Now().Add(3 * time.Second)
		for {
			frame := readFrameOfType(t, conn, "game_state")
			var state gameStateDTO
			if err := json.Unmarshal(frame.Payload, &state); err != nil {
				t.Fatalf("decode game_state: %v", err)
			}
			if state.Phase == string(game.PhaseSetup) {
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("never reached setup phase, last %q", state.Phase)
			}
		}
	}
}

func TestJoinUnknownRoomFails(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dialWS(t, srv)
	sendCommand(t, conn, "join_room", map[string]any{"name": "alice", "room_id": "nope"})
	readFrameOfType(t, conn, "error")
}

func TestCommandsRequireARoom(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dialWS(t, srv)
	sendCommand(t, conn, "fire_shot", map[string]any{"x": 0, "y": 0})
	readFrameOfType(t, conn, "error")
}

func TestThirdJoinRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	host := dialWS(t, srv)
	sendCommand(t, host, "create_room", map[string]any{"name": "alice", "room_id": "full-room"})
	readFrameOfType(t, host, "room_created")

	guest := dialWS(t, srv)
	sendCommand(t, guest, "join_room", map[string]any{"name": "bob", "room_id": "full-room"})
	readFrameOfType(t, guest, "room_info")

	third := dialWS(t, srv)
	sendCommand(t, third, "join_room", map[string]any{"name": "carol", "room_id": "full-room"})
	readFrameOfType(t, third, "error")
}

func TestDisconnectDuringSetupFreesSlot(t *testing.T) {
	srv, hub := newTestServer(t)

	host := dialWS(t, srv)
	sendCommand(t, host, "create_room", map[string]any{"name": "alice", "room_id": "drop"})
	readFrameOfType(t, host, "room_created")

	guest := dialWS(t, srv)
	sendCommand(t, guest, "join_room", map[string]any{"name": "bob", "room_id": "drop"})
	readFrameOfType(t, guest, "room_info")
	guest.Close()

	room := hub.GetRoom("drop")
	if room == nil {
		t.Fatalf("room missing")
	}
	deadline := time.Now().Add(3 * time.Second)
	for {
		room.Mu.Lock()
		players := len(room.Players)
		phase := room.Phase
		room.Mu.Unlock()
		if players == 1 && phase == game.PhaseLobby {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("slot not freed: players=%d phase=%s", players, phase)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMalformedPayloadsGetErrorFrames(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dialWS(t, srv)

	// Wrong field type before joining a room: the error comes straight back
	// on the socket.
	sendCommand(t, conn, "create_room", map[string]any{"name": "alice", "room_id": 7})
	frame := readFrameOfType(t, conn, "error")
	var errPayload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(frame.Payload, &errPayload); err != nil {
		t.Fatalf("decode error frame: %v", err)
	}
	if !strings.Contains(errPayload.Message, "create_room") {
		t.Fatalf("error must name the rejected command, got %q", errPayload.Message)
	}

	sendCommand(t, conn, "create_room", map[string]any{"name": "alice", "room_id": "duel-err"})
	readFrameOfType(t, conn, "room_created")

	// In-room decode failures are queued and delivered by the send loop.
	sendCommand(t, conn, "fire_shot", map[string]any{"x": "seven", "y": 0})
	frame = readFrameOfType(t, conn, "error")
	if err := json.Unmarshal(frame.Payload, &errPayload); err != nil {
		t.Fatalf("decode error frame: %v", err)
	}
	if !strings.Contains(errPayload.Message, "fire_shot") {
		t.Fatalf("error must name the rejected command, got %q", errPayload.Message)
	}
}
