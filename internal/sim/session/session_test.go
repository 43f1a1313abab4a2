package session

import (
	"encoding/json"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"skyrunner/internal/protocol"
	"skyrunner/internal/sim/game"
	"skyrunner/internal/sim/tuning"
)

type fakeSink struct {
	mu    sync.Mutex
	calls []finalCall
}

type finalCall struct {
	sessionID string
	stats     game.FinalStats
}

func (f *fakeSink) Finalize(sessionID string, stats game.FinalStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, finalCall{sessionID: sessionID, stats: stats})
	return nil
}

func (f *fakeSink) snapshot() []finalCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]finalCall(nil), f.calls...)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func waitSnapshot(t *testing.T, out chan []byte, want game.State, timeout time.Duration) protocol.SnapshotMsg {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case <-deadline:
			t.Fatalf("no snapshot with state %q within %v", want, timeout)
		case b := <-out:
			var msg protocol.SnapshotMsg
			if err := json.Unmarshal(b, &msg); err != nil {
				t.Fatalf("bad snapshot payload: %v", err)
			}
			if msg.Type != protocol.TypeSnapshot {
				t.Fatalf("message type = %q", msg.Type)
			}
			if msg.Snapshot.State == want {
				return msg
			}
		}
	}
}

func TestRegistry_CreateLookupRemove(t *testing.T) {
	reg := NewRegistry(tuning.Defaults(), &fakeSink{}, quietLogger())
	defer reg.Shutdown()

	out := make(chan []byte, 8)
	s := reg.Create(out)
	if s.ID == "" {
		t.Fatalf("session id must be assigned")
	}
	if got, ok := reg.Get(s.ID); !ok || got != s {
		t.Fatalf("lookup failed for %s", s.ID)
	}
	if reg.Len() != 1 {
		t.Fatalf("registry len = %d, want 1", reg.Len())
	}

	reg.Remove(s.ID)
	if _, ok := reg.Get(s.ID); ok {
		t.Fatalf("session still resolvable after removal")
	}
	if reg.Len() != 0 {
		t.Fatalf("registry len after removal = %d", reg.Len())
	}
	reg.Remove(s.ID) // second removal is a no-op
}

func TestSession_StartCommandBeginsTicking(t *testing.T) {
	reg := NewRegistry(tuning.Defaults(), &fakeSink{}, quietLogger())
	defer reg.Shutdown()

	out := make(chan []byte, 8)
	s := reg.Create(out)
	defer reg.Remove(s.ID)

	first := waitSnapshot(t, out, game.StateStart, 2*time.Second)
	if first.Snapshot.Tick != 0 {
		t.Fatalf("pre-start snapshot tick = %d, want 0", first.Snapshot.Tick)
	}

	s.Inbox <- Command(protocol.CmdStart)
	playing := waitSnapshot(t, out, game.StatePlaying, 2*time.Second)
	if playing.Snapshot.Tick == 0 {
		t.Fatalf("playing snapshot should have advanced past tick 0")
	}
}

func TestSession_InputReachesSimulation(t *testing.T) {
	reg := NewRegistry(tuning.Defaults(), &fakeSink{}, quietLogger())
	defer reg.Shutdown()

	out := make(chan []byte, 8)
	s := reg.Create(out)
	defer reg.Remove(s.ID)

	s.Inbox <- Command(protocol.CmdStart)
	waitSnapshot(t, out, game.StatePlaying, 2*time.Second)

	s.Inbox <- Input{Event: "keydown", Code: "Space"}
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("jump input never reflected in a snapshot")
		case b := <-out:
			var msg protocol.SnapshotMsg
			if err := json.Unmarshal(b, &msg); err != nil {
				t.Fatalf("bad snapshot payload: %v", err)
			}
			if !msg.Snapshot.Player.Grounded {
				return // airborne: the jump landed in the sim
			}
		}
	}
}

func TestRemove_FinalizesInProgressRunAsQuit(t *testing.T) {
	sink := &fakeSink{}
	reg := NewRegistry(tuning.Defaults(), sink, quietLogger())
	defer reg.Shutdown()

	out := make(chan []byte, 8)
	s := reg.Create(out)
	s.Inbox <- Command(protocol.CmdStart)
	waitSnapshot(t, out, game.StatePlaying, 2*time.Second)

	reg.Remove(s.ID)

	calls := sink.snapshot()
	if len(calls) != 1 {
		t.Fatalf("finalize calls = %d, want 1", len(calls))
	}
	if calls[0].sessionID != s.ID {
		t.Fatalf("finalized session = %s, want %s", calls[0].sessionID, s.ID)
	}
	if calls[0].stats.Result != game.ResultQuit {
		t.Fatalf("result = %s, want quit", calls[0].stats.Result)
	}
}

func TestRemove_NoFinalizeBeforeStart(t *testing.T) {
	sink := &fakeSink{}
	reg := NewRegistry(tuning.Defaults(), sink, quietLogger())
	defer reg.Shutdown()

	out := make(chan []byte, 8)
	s := reg.Create(out)
	waitSnapshot(t, out, game.StateStart, 2*time.Second)
	reg.Remove(s.ID)

	if n := len(sink.snapshot()); n != 0 {
		t.Fatalf("a session that never started must not finalize, got %d calls", n)
	}
}
