package ws

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"skyrunner/internal/protocol"
	"skyrunner/internal/sim/game"
	"skyrunner/internal/sim/session"
	"skyrunner/internal/sim/tuning"
)

type nullSink struct{}

func (nullSink) Finalize(string, game.FinalStats) error { return nil }

func newTestServer(t *testing.T) (*httptest.Server, *session.Registry) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	tune := tuning.Defaults()
	registry := session.NewRegistry(tune, nullSink{}, logger)
	t.Cleanup(registry.Shutdown)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", NewServer(registry, tune, logger).Handler())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, registry
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func writeMsg(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func sayHello(t *testing.T, conn *websocket.Conn) protocol.WelcomeMsg {
	t.Helper()
	writeMsg(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(raw, &welcome); err != nil {
		t.Fatalf("decode welcome: %v", err)
	}
	if welcome.Type != protocol.TypeWelcome {
		t.Fatalf("first message type = %q, want WELCOME", welcome.Type)
	}
	return welcome
}

func waitState(t *testing.T, conn *websocket.Conn, want game.State) game.Snapshot {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg protocol.SnapshotMsg
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != protocol.TypeSnapshot {
			continue
		}
		if msg.Snapshot.State == want {
			return msg.Snapshot
		}
	}
	t.Fatalf("never saw state %q", want)
	return game.Snapshot{}
}

func TestHandler_HandshakeAndLifecycle(t *testing.T) {
	srv, registry := newTestServer(t)
	conn := dial(t, srv)

	welcome := sayHello(t, conn)
	if welcome.SessionID == "" {
		t.Fatalf("welcome must carry a session id")
	}
	if welcome.WorldParams.TickRateHz != 60 {
		t.Fatalf("tick rate = %d", welcome.WorldParams.TickRateHz)
	}
	if registry.Len() != 1 {
		t.Fatalf("registry len = %d, want 1", registry.Len())
	}

	waitState(t, conn, game.StateStart)

	writeMsg(t, conn, protocol.CommandMsg{Type: protocol.TypeCommand, ProtocolVersion: protocol.Version, Command: protocol.CmdStart})
	waitState(t, conn, game.StatePlaying)

	writeMsg(t, conn, protocol.CommandMsg{Type: protocol.TypeCommand, ProtocolVersion: protocol.Version, Command: protocol.CmdPause})
	waitState(t, conn, game.StatePaused)
}

func TestHandler_InputMovesPlayer(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)
	sayHello(t, conn)

	writeMsg(t, conn, protocol.CommandMsg{Type: protocol.TypeCommand, ProtocolVersion: protocol.Version, Command: protocol.CmdStart})
	waitState(t, conn, game.StatePlaying)

	writeMsg(t, conn, protocol.InputMsg{Type: protocol.TypeInput, ProtocolVersion: protocol.Version, Event: "keydown", Code: "Space"})

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg protocol.SnapshotMsg
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != protocol.TypeSnapshot {
			continue
		}
		if !msg.Snapshot.Player.Grounded {
			return
		}
	}
	t.Fatalf("jump never reflected in snapshots")
}

func TestHandler_RejectsBadProtocolVersion(t *testing.T) {
	srv, registry := newTestServer(t)
	conn := dial(t, srv)

	writeMsg(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: "0.1"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("connection should close on version mismatch")
	}
	if registry.Len() != 0 {
		t.Fatalf("no session may be created on a failed handshake")
	}
}

func TestHandler_DisconnectTearsDownSession(t *testing.T) {
	srv, registry := newTestServer(t)
	conn := dial(t, srv)
	sayHello(t, conn)

	if registry.Len() != 1 {
		t.Fatalf("registry len = %d, want 1", registry.Len())
	}
	_ = conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if registry.Len() == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("session not released after disconnect")
}
