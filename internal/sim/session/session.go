// Package session owns the connection-to-simulation mapping: a registry of
// independent sessions, each driven by its own fixed-rate scheduler
// goroutine. Sessions never observe one another.
package session

import (
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"skyrunner/internal/protocol"
	"skyrunner/internal/sim/game"
	"skyrunner/internal/sim/tuning"
)

// Sink receives final statistics exactly once per finished run. The durable
// side (storage, leaderboards, tamper checks) lives behind this interface.
type Sink interface {
	Finalize(sessionID string, stats game.FinalStats) error
}

// Input is an inbox command carrying one key transition.
type Input struct {
	Event string
	Code  string
}

// Command is an inbox lifecycle command (start/pause/resume/restart).
type Command string

// Session drives one Simulation at a fixed tick rate. The loop goroutine is
// the sole mutator; the inbox serializes all external events onto tick
// boundaries.
type Session struct {
	ID string

	Inbox chan any

	sim    *game.Simulation
	tickHz int
	out    chan []byte
	quit   chan struct{}
	done   chan struct{}
	sink   Sink
	log    *log.Logger

	// state mirrors the simulation's state tag for readers outside the
	// loop goroutine.
	state atomic.Value
}

// State is the last published state tag; safe from any goroutine.
func (s *Session) State() game.State {
	v, _ := s.state.Load().(game.State)
	return v
}

func newSession(id string, cfg tuning.Tuning, out chan []byte, sink Sink, logger *log.Logger) *Session {
	hz := cfg.TickRateHz
	if hz <= 0 {
		hz = 60
	}
	s := &Session{
		ID:     id,
		Inbox:  make(chan any, 64),
		sim:    game.New(cfg, time.Now().UnixNano()),
		tickHz: hz,
		out:    out,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		sink:   sink,
		log:    logger,
	}
	s.state.Store(s.sim.State())
	return s
}

// Run is the session scheduler: consume queued events, perform exactly one
// tick per interval, forward the snapshot. It returns when the session is
// stopped.
func (s *Session) Run() {
	defer close(s.done)

	ticker := time.NewTicker(time.Second / time.Duration(s.tickHz))
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case ev := <-s.Inbox:
			s.handle(ev)
			s.state.Store(s.sim.State())
		case <-ticker.C:
			snap := s.sim.Tick()
			s.state.Store(snap.State)
			if stats, ok := s.sim.ConsumeFinal(); ok {
				s.finalize(stats)
			}
			b, err := json.Marshal(protocol.NewSnapshotMsg(snap))
			if err != nil {
				continue
			}
			sendLatest(s.out, b)
		}
	}
}

func (s *Session) handle(ev any) {
	switch e := ev.(type) {
	case Input:
		s.sim.ProcessInput(game.InputEvent{Type: e.Event, Code: e.Code})
	case Command:
		switch string(e) {
		case protocol.CmdStart:
			s.sim.Start()
		case protocol.CmdPause:
			s.sim.Pause()
		case protocol.CmdResume:
			s.sim.Resume()
		case protocol.CmdRestart:
			s.sim.Restart()
		}
	}
}

func (s *Session) finalize(stats game.FinalStats) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Finalize(s.ID, stats); err != nil {
		s.log.Printf("session %s: finalize rejected: %v", s.ID, err)
	}
}

// stop halts the scheduler and, when a run was still in progress, finalizes
// it as a quit.
func (s *Session) stop() {
	close(s.quit)
	<-s.done

	switch s.sim.State() {
	case game.StatePlaying, game.StatePaused, game.StateCatching:
		s.finalize(s.sim.AbortStats(game.ResultQuit))
	}
}

// sendLatest delivers b without blocking the tick loop: when the client is
// slow, the oldest queued snapshot is dropped in its favor.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
