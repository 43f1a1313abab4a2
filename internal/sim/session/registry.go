package session

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"skyrunner/internal/sim/game"
	"skyrunner/internal/sim/tuning"
)

// Info is the read-model row served by the debug endpoint.
type Info struct {
	ID    string     `json:"id"`
	State game.State `json:"state"`
}

// Registry maps session IDs to running sessions. Create starts the session's
// scheduler; Remove stops it and releases the Simulation, so a disconnected
// session never lingers.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg  tuning.Tuning
	sink Sink
	log  *log.Logger
}

func NewRegistry(cfg tuning.Tuning, sink Sink, logger *log.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		sink:     sink,
		log:      logger,
	}
}

// Create registers a new session writing snapshots to out and starts its
// scheduler goroutine.
func (r *Registry) Create(out chan []byte) *Session {
	id := uuid.NewString()
	s := newSession(id, r.cfg, out, r.sink, r.log)

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	go s.Run()
	r.log.Printf("session %s: created (%d live)", id, r.Len())
	return s
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove stops the session's scheduler and drops it from the registry. It is
// a no-op for unknown IDs.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	s.stop()
	r.log.Printf("session %s: removed (%d live)", id, r.Len())
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Infos lists live sessions with their current state tag.
func (r *Registry) Infos() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.sessions))
	for id, s := range r.sessions {
		out = append(out, Info{ID: id, State: s.State()})
	}
	return out
}

// Shutdown stops every live session.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	live := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		live = append(live, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	for _, s := range live {
		s.stop()
	}
}
