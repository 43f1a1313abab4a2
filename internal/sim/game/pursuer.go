package game

import "math"

// PursuerState trails the player at a standoff distance that shrinks as the
// player takes hits, and runs the scripted capture once the hit count turns
// lethal.
type PursuerState struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	W         float64 `json:"w"`
	H         float64 `json:"h"`
	BaseSpeed float64 `json:"-"`
	Phase     int     `json:"phase"` // capture phase, 0 while trailing
}

type captureState struct {
	phase     int // 1 approach, 2 struggle, 3 fade
	left      int // ticks left in current phase
	fromX     float64
	fromY     float64
	totalTick int
}

func (s *Simulation) resetPursuer() {
	w := s.cfg.World
	s.pursuer = PursuerState{
		X:         w.PlayerX - s.cfg.Pursuer.StandoffBase,
		Y:         w.GroundY - 52,
		W:         40,
		H:         52,
		BaseSpeed: s.cfg.Pursuer.BaseSpeed,
	}
	s.capture = captureState{}
}

// standoff returns the target trailing distance for the current hit count;
// non-increasing in hits, floored.
func (s *Simulation) standoff(hits int) float64 {
	p := s.cfg.Pursuer
	d := p.StandoffBase - p.StandoffStep*float64(hits)
	if d < p.StandoffFloor {
		d = p.StandoffFloor
	}
	return d
}

// pursuerSpeedMult grows with the hit count and spikes while the player is in
// the post-hit slowdown window.
func (s *Simulation) pursuerSpeedMult(hits int) float64 {
	p := s.cfg.Pursuer
	m := 1 + p.SpeedStep*float64(hits)
	if s.slowdownLeft > 0 {
		m *= p.SlowdownMult
	}
	return m
}

func (s *Simulation) stepPursuer() {
	p := s.cfg.Pursuer
	pur := &s.pursuer
	hits := len(s.hitTicks)

	idealX := s.player.X - s.standoff(hits)
	idealY := s.player.Y + s.player.H - pur.H

	step := pur.BaseSpeed * s.pursuerSpeedMult(hits)

	// Dead zones on both axes: no correction while within tolerance of the
	// ideal offset, so the pursuer does not oscillate.
	if dx := idealX - pur.X; math.Abs(dx) > p.DeadZoneX {
		pur.X += clamp(dx, -step, step)
	}
	if dy := idealY - pur.Y; math.Abs(dy) > p.DeadZoneY {
		pur.Y += clamp(dy, -step*0.6, step*0.6)
	}

	// Proximity catch is only armed at the lethal hit count; below that the
	// pursuer trails harmlessly.
	if hits >= s.cfg.Hits.Lethal && s.withinCatchRadius() {
		s.gameOver(ResultCaught)
	}
}

func (s *Simulation) withinCatchRadius() bool {
	pur := s.pursuer
	pbox := s.player.box()
	if !pbox.overlaps(Box{X: pur.X, Y: pur.Y, W: pur.W, H: pur.H}) {
		return false
	}
	pcx, pcy := pur.X+pur.W/2, pur.Y+pur.H/2
	ccx, ccy := pbox.X+pbox.W/2, pbox.Y+pbox.H/2
	return math.Hypot(pcx-ccx, pcy-ccy) <= s.cfg.Pursuer.CatchRadius
}

func (s *Simulation) enterCatching() {
	if s.state != StatePlaying {
		return
	}
	s.state = StateCatching
	s.capture = captureState{
		phase: 1,
		left:  s.cfg.Pursuer.ApproachTicks,
		fromX: s.pursuer.X,
		fromY: s.pursuer.Y,
	}
	s.pursuer.Phase = 1
}

// stepCapture runs the three fixed-length capture phases: interpolate onto
// the player, struggle, fade out. The world is otherwise frozen.
func (s *Simulation) stepCapture() {
	c := &s.capture
	p := s.cfg.Pursuer
	c.totalTick++

	switch c.phase {
	case 1:
		total := p.ApproachTicks
		done := float64(total-c.left) / float64(total)
		targetX := s.player.X
		targetY := s.player.Y + s.player.H - s.pursuer.H
		s.pursuer.X = c.fromX + (targetX-c.fromX)*done
		s.pursuer.Y = c.fromY + (targetY-c.fromY)*done
	case 2:
		// Struggle shake, visual only.
		s.pursuer.X = s.player.X + math.Sin(float64(c.totalTick)*0.9)*3
		if c.totalTick%12 == 0 {
			s.burstParticles(s.player.X+s.player.W/2, s.player.Y, 3, "red")
		}
	case 3:
		// Terminal fade; renderer keys off Phase 3 and the countdown.
	}

	c.left--
	if c.left > 0 {
		return
	}
	switch c.phase {
	case 1:
		c.phase = 2
		c.left = p.StruggleTicks
	case 2:
		c.phase = 3
		c.left = p.FadeTicks
	case 3:
		s.gameOver(ResultCaught)
	}
	s.pursuer.Phase = c.phase
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
