package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello    = "HELLO"
	TypeWelcome  = "WELCOME"
	TypeInput    = "INPUT"
	TypeCommand  = "CMD"
	TypeSnapshot = "SNAPSHOT"
)

// Lifecycle commands carried by CMD messages.
const (
	CmdStart   = "start"
	CmdPause   = "pause"
	CmdResume  = "resume"
	CmdRestart = "restart"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

func ValidCommand(cmd string) bool {
	switch cmd {
	case CmdStart, CmdPause, CmdResume, CmdRestart:
		return true
	}
	return false
}
