// Package ws is the websocket transport: one connection maps to one session
// for the connection's lifetime. The simulation never touches the socket; it
// only sees the inbox and the outbound snapshot channel.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"skyrunner/internal/protocol"
	"skyrunner/internal/sim/session"
	"skyrunner/internal/sim/tuning"
)

type Server struct {
	registry *session.Registry
	cfg      tuning.Tuning
	log      *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(registry *session.Registry, cfg tuning.Tuning, logger *log.Logger) *Server {
	return &Server{
		registry: registry,
		cfg:      cfg,
		log:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		out, ok := s.handshake(conn)
		if !ok {
			return
		}

		sess := s.registry.Create(out)
		defer s.registry.Remove(sess.ID)

		if err := s.writeWelcome(conn, sess.ID); err != nil {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine: snapshots out.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop: inputs and lifecycle commands in. Malformed messages
		// are dropped, never fatal.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			switch base.Type {
			case protocol.TypeInput:
				var in protocol.InputMsg
				if err := json.Unmarshal(msg, &in); err != nil {
					continue
				}
				s.deliver(sess, session.Input{Event: in.Event, Code: in.Code})
			case protocol.TypeCommand:
				var cmd protocol.CommandMsg
				if err := json.Unmarshal(msg, &cmd); err != nil {
					continue
				}
				if !protocol.ValidCommand(cmd.Command) {
					continue
				}
				s.deliver(sess, session.Command(cmd.Command))
			}
		}
	}
}

// deliver drops the event when the session inbox is full; input is
// last-writer-wins per tick anyway.
func (s *Server) deliver(sess *session.Session, ev any) {
	select {
	case sess.Inbox <- ev:
	default:
	}
}

func (s *Server) handshake(conn *websocket.Conn) (chan []byte, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		s.closePolicy(conn, "expected HELLO")
		return nil, false
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil, false
	}
	if hello.ProtocolVersion != protocol.Version {
		s.closePolicy(conn, "bad protocol_version")
		return nil, false
	}

	maxQ := hello.Capabilities.MaxQueue
	if maxQ <= 0 {
		maxQ = 8
	}
	if maxQ > 64 {
		maxQ = 64
	}
	return make(chan []byte, maxQ), true
}

func (s *Server) writeWelcome(conn *websocket.Conn, sessionID string) error {
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		WorldParams: protocol.WorldParams{
			TickRateHz: s.cfg.TickRateHz,
			Width:      s.cfg.World.Width,
			GroundY:    s.cfg.World.GroundY,
			PlayerX:    s.cfg.World.PlayerX,
		},
	}
	b, err := json.Marshal(welcome)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) closePolicy(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(time.Second),
	)
}
