package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"skyrunner/internal/protocol"
	"skyrunner/internal/sim/game"
	"skyrunner/internal/sim/tuning"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var decoded any
		if err := json.Unmarshal(b, &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if err := s.Validate(decoded); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	inputSchema := compile("input.schema.json")
	cmdSchema := compile("cmd.schema.json")
	snapshotSchema := compile("snapshot.schema.json")

	validate(helloSchema, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      "runner1",
		Capabilities:    protocol.HelloCapabilities{MaxQueue: 8},
	})

	validate(welcomeSchema, protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       "b2f9dc1e-0000-4000-8000-000000000000",
		WorldParams: protocol.WorldParams{
			TickRateHz: 60,
			Width:      800,
			GroundY:    300,
			PlayerX:    120,
		},
	})

	validate(inputSchema, protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		Event:           "keydown",
		Code:            "Space",
	})

	validate(cmdSchema, protocol.CommandMsg{
		Type:            protocol.TypeCommand,
		ProtocolVersion: protocol.Version,
		Command:         protocol.CmdStart,
	})

	// A real frame from a live simulation.
	sim := game.New(tuning.Defaults(), 7)
	sim.Start()
	var snap game.Snapshot
	for i := 0; i < 180; i++ {
		snap = sim.Tick()
	}
	validate(snapshotSchema, protocol.NewSnapshotMsg(snap))
}

func TestDecodeBase_RoutesByType(t *testing.T) {
	base, err := protocol.DecodeBase([]byte(`{"type":"INPUT","protocol_version":"1.0","event":"keyup","code":"ArrowDown"}`))
	if err != nil {
		t.Fatalf("DecodeBase: %v", err)
	}
	if base.Type != protocol.TypeInput {
		t.Fatalf("type = %q", base.Type)
	}

	if _, err := protocol.DecodeBase([]byte(`{not json`)); err == nil {
		t.Fatalf("malformed payload must error")
	}
}

func TestValidCommand(t *testing.T) {
	for _, cmd := range []string{protocol.CmdStart, protocol.CmdPause, protocol.CmdResume, protocol.CmdRestart} {
		if !protocol.ValidCommand(cmd) {
			t.Fatalf("%q should be valid", cmd)
		}
	}
	if protocol.ValidCommand("reboot") {
		t.Fatalf("unknown command accepted")
	}
}
