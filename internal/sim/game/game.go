// Package game is the authoritative endless-runner simulation. One
// Simulation per session, advanced only by Tick; it performs no I/O and
// holds no cross-session state.
package game

import (
	"math/rand"

	"skyrunner/internal/sim/tuning"
)

type State string

const (
	StateStart    State = "start"
	StatePlaying  State = "playing"
	StatePaused   State = "paused"
	StateCatching State = "catching"
	StateGameOver State = "game_over"
)

// Result classifies how a run ended. The core only produces fell, caught and
// died; quit and timeout are stamped by the collaborators that detect them.
type Result string

const (
	ResultNone    Result = ""
	ResultFell    Result = "fell"
	ResultCaught  Result = "caught"
	ResultDied    Result = "died"
	ResultQuit    Result = "quit"
	ResultTimeout Result = "timeout"
)

// Stats are the running session counters reported in every snapshot.
type Stats struct {
	Coins    int     `json:"coins"`
	Hits     int     `json:"hits"`
	Powerups int     `json:"powerups"`
	Distance float64 `json:"distance"`
}

// FinalStats is the payload handed to the persistence collaborator exactly
// once per finished run.
type FinalStats struct {
	Score         int     `json:"score"`
	Distance      float64 `json:"distance"`
	DurationTicks uint64  `json:"durationTicks"`
	Coins         int     `json:"coins"`
	Hits          int     `json:"hits"`
	Powerups      int     `json:"powerups"`
	Result        Result  `json:"result"`
}

type InputEvent struct {
	Type string `json:"type"` // keydown | keyup
	Code string `json:"code"`
}

type intents struct {
	jump      bool
	slide     bool
	slideHeld bool
}

// Simulation is the per-session world. Not safe for concurrent use; the
// session loop is its sole driver.
type Simulation struct {
	cfg tuning.Tuning
	rng *rand.Rand

	state  State
	result Result
	tick   uint64

	player  Player
	pursuer PursuerState
	capture captureState

	obstacles []Obstacle
	flyers    []Flyer
	fires     []FireTrap
	gaps      []Gap
	platforms []Platform
	coins     []Coin
	powerups  []Powerup
	particles []Particle
	scenery   []Decoration

	intents intents
	effects Effects
	stats   Stats

	score        int
	travel       float64 // distance since the last passive score point
	speed        float64
	slowdownLeft int

	hitTicks    []uint64
	lastHitTick uint64
	hasHit      bool

	obstacleTimer int
	collectTimer  int
	sceneryTimer  int

	nextID uint64
	faults uint64

	final        FinalStats
	finalPending bool
}

func New(cfg tuning.Tuning, seed int64) *Simulation {
	s := &Simulation{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
	s.reset()
	s.state = StateStart
	return s
}

// reset reinitializes every run-scoped field in place. Restart reuses the
// instance rather than building a new one.
func (s *Simulation) reset() {
	s.state = StatePlaying
	s.result = ResultNone
	s.tick = 0

	s.resetPlayer()
	s.resetPursuer()

	s.obstacles = nil
	s.flyers = nil
	s.fires = nil
	s.gaps = nil
	s.platforms = nil
	s.coins = nil
	s.powerups = nil
	s.particles = nil
	s.scenery = nil

	s.intents = intents{}
	s.effects = Effects{}
	s.stats = Stats{}

	s.score = 0
	s.travel = 0
	s.speed = s.cfg.Speed.Base
	s.slowdownLeft = 0
	s.hitTicks = nil
	s.hasHit = false

	s.obstacleTimer = s.obstacleReload()
	s.collectTimer = s.randRange(s.cfg.Spawn.CollectMinTicks, s.cfg.Spawn.CollectMaxTicks)
	s.sceneryTimer = s.randRange(10, 60)

	s.final = FinalStats{}
	s.finalPending = false
}

func (s *Simulation) State() State { return s.state }

// ProcessInput folds one key event into the intent flags. Only honored while
// Playing; unknown codes are ignored. Repeated presses within a tick collapse
// to last-writer-wins.
func (s *Simulation) ProcessInput(ev InputEvent) {
	if s.state != StatePlaying {
		return
	}
	switch ev.Type {
	case "keydown":
		switch ev.Code {
		case "Space", "ArrowUp", "KeyW":
			s.intents.jump = true
		case "ArrowDown", "KeyS":
			s.intents.slide = true
			s.intents.slideHeld = true
		}
	case "keyup":
		switch ev.Code {
		case "ArrowDown", "KeyS":
			s.intents.slideHeld = false
		}
	}
}

// Lifecycle commands. Invalid transitions are no-ops, never errors.

func (s *Simulation) Start() {
	if s.state == StateStart {
		s.reset()
	}
}

func (s *Simulation) Pause() {
	if s.state == StatePlaying {
		s.state = StatePaused
	}
}

func (s *Simulation) Resume() {
	if s.state == StatePaused {
		s.state = StatePlaying
	}
}

func (s *Simulation) Restart() {
	if s.state == StateGameOver {
		s.reset()
	}
}

// Tick advances the world by one fixed step and returns the full snapshot.
// Paused, Start and GameOver states mutate nothing, so repeated ticks yield
// identical snapshots.
func (s *Simulation) Tick() Snapshot {
	switch s.state {
	case StatePlaying:
		s.tick++
		s.safeRun(s.stepPhysics)
		s.safeRun(s.stepSpawner)
		s.safeRun(s.stepScroll)
		s.safeRun(s.stepCollision)
		if s.state == StatePlaying {
			s.safeRun(s.stepPursuer)
		}
		if s.state == StatePlaying {
			s.safeRun(s.stepPowerups)
		}
		s.pruneHits()
		s.advanceRun()
		s.cleanup()
	case StateCatching:
		s.tick++
		s.safeRun(s.stepCapture)
		s.safeRun(s.stepParticles)
		s.cleanup()
	}
	return s.snapshot()
}

// safeRun keeps a panicking subsystem from taking the scheduler down; the
// subsystem degrades to a no-op for this tick.
func (s *Simulation) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.faults++
		}
	}()
	fn()
}

// stepScroll moves every scrolling entity left at current game speed and
// advances per-entity behavior (platform oscillation, fire cycles, flyer bob,
// particle motion). Scenery moves at the parallax fraction.
func (s *Simulation) stepScroll() {
	v := s.speed
	for i := range s.obstacles {
		s.obstacles[i].X -= v
	}
	for i := range s.flyers {
		f := &s.flyers[i]
		f.X -= v
		f.Bob += 0.12
	}
	for i := range s.fires {
		f := &s.fires[i]
		f.X -= v
		f.CycleTicks--
		if f.CycleTicks <= 0 {
			f.Active = !f.Active
			if f.Active {
				f.CycleTicks = s.cfg.Spawn.FireActiveTicks
			} else {
				f.CycleTicks = s.cfg.Spawn.FireIdleTicks
			}
		}
	}
	for i := range s.gaps {
		s.gaps[i].X -= v
	}
	for i := range s.platforms {
		p := &s.platforms[i]
		p.X -= v
		p.Y += p.VY
		if p.Y < p.MinY || p.Y > p.MaxY {
			p.VY = -p.VY
		}
	}
	for i := range s.coins {
		s.coins[i].X -= v
	}
	for i := range s.powerups {
		s.powerups[i].X -= v
	}
	for i := range s.scenery {
		s.scenery[i].X -= v * s.cfg.World.ParallaxFactor
	}
	s.stepParticles()
}

func (s *Simulation) stepParticles() {
	for i := range s.particles {
		p := &s.particles[i]
		p.X += p.VX
		p.Y += p.VY
		p.VY += 0.08
		p.Life--
	}
}

// advanceRun updates speed, distance and the passive score drip, and burns
// down the post-hit slowdown window.
func (s *Simulation) advanceRun() {
	if s.slowdownLeft > 0 {
		s.slowdownLeft--
	}
	s.speed = s.currentSpeed()
	s.stats.Distance += s.speed
	s.travel += s.speed
	// One passive point per 72 units traveled keeps the difficulty curve
	// moving even for players who skip coins.
	for s.travel >= 72 {
		s.travel -= 72
		s.score++
	}
}

// cleanup is the end-of-tick filtering pass: anything past the trailing
// boundary, collected, or expired is gone before the snapshot is built.
func (s *Simulation) cleanup() {
	gone := func(b Box) bool { return b.right() < s.cfg.World.DiscardX }

	s.obstacles = filterSlice(s.obstacles, func(o Obstacle) bool { return gone(o.Box) })
	s.flyers = filterSlice(s.flyers, func(f Flyer) bool { return gone(f.Box) })
	s.fires = filterSlice(s.fires, func(f FireTrap) bool { return gone(f.Box) })
	s.gaps = filterSlice(s.gaps, func(g Gap) bool { return gone(g.Box) })
	s.platforms = filterSlice(s.platforms, func(p Platform) bool { return gone(p.Box) })
	s.coins = filterSlice(s.coins, func(c Coin) bool { return c.Collected || gone(c.Box) })
	s.powerups = filterSlice(s.powerups, func(p Powerup) bool { return p.Collected || gone(p.Box) })
	s.particles = filterSlice(s.particles, func(p Particle) bool { return p.Life <= 0 })
	s.scenery = filterSlice(s.scenery, func(d Decoration) bool { return gone(d.Box) })
}

func filterSlice[T any](in []T, drop func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if !drop(v) {
			out = append(out, v)
		}
	}
	return out
}

func (s *Simulation) gameOver(result Result) {
	if s.state == StateGameOver {
		return
	}
	s.state = StateGameOver
	s.result = result
	s.pursuer.Phase = 0
	s.final = s.clampedFinal(result)
	s.finalPending = true
}

// clampedFinal applies the advisory anti-cheat bounds: reported statistics
// are clamped, never aborted mid-simulation.
func (s *Simulation) clampedFinal(result Result) FinalStats {
	hz := s.cfg.TickRateHz
	if hz <= 0 {
		hz = 60
	}
	seconds := int(s.tick) / hz
	if seconds < 1 {
		seconds = 1
	}

	coins := s.stats.Coins
	if lim := s.cfg.Cheat.MaxCoinsPerSecond * seconds; coins > lim {
		coins = lim
	}
	score := s.score
	if lim := s.cfg.Cheat.ScorePerSecondCap*seconds + s.cfg.Cheat.ScoreGrace; score > lim {
		score = lim
	}

	return FinalStats{
		Score:         score,
		Distance:      s.stats.Distance,
		DurationTicks: s.tick,
		Coins:         coins,
		Hits:          s.stats.Hits,
		Powerups:      s.stats.Powerups,
		Result:        result,
	}
}

// ConsumeFinal returns the final statistics exactly once per finished run.
func (s *Simulation) ConsumeFinal() (FinalStats, bool) {
	if !s.finalPending {
		return FinalStats{}, false
	}
	s.finalPending = false
	return s.final, true
}

// AbortStats classifies an externally triggered teardown (disconnect) of a
// run still in progress.
func (s *Simulation) AbortStats(result Result) FinalStats {
	return s.clampedFinal(result)
}

func (s *Simulation) Level() int {
	per := s.cfg.World.ScorePerLevel
	if per <= 0 {
		per = 75
	}
	return s.score/per + 1
}
