package protocol

import "skyrunner/internal/sim/game"

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	PlayerName      string            `json:"player_name,omitempty"`
	Capabilities    HelloCapabilities `json:"capabilities,omitempty"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	WorldParams     WorldParams `json:"world_params"`
}

// WorldParams give the renderer everything static about the world.
type WorldParams struct {
	TickRateHz int     `json:"tick_rate_hz"`
	Width      float64 `json:"width"`
	GroundY    float64 `json:"ground_y"`
	PlayerX    float64 `json:"player_x"`
}

// INPUT (client -> server): one key transition.
type InputMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Event           string `json:"event"` // keydown | keyup
	Code            string `json:"code"`
}

// CMD (client -> server): lifecycle command.
type CommandMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Command         string `json:"command"`
}

// SNAPSHOT (server -> client): one full simulation frame.
type SnapshotMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	Snapshot        game.Snapshot `json:"snapshot"`
}

func NewSnapshotMsg(snap game.Snapshot) SnapshotMsg {
	return SnapshotMsg{Type: TypeSnapshot, ProtocolVersion: Version, Snapshot: snap}
}
