package game

// Player kinematics. X stays anchored; the world scrolls past.
type Player struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"` // top edge
	VY float64 `json:"vy"`
	W  float64 `json:"w"`
	H  float64 `json:"h"`

	Grounded       bool `json:"grounded"`
	Jumping        bool `json:"jumping"`
	Sliding        bool `json:"sliding"`
	DoubleJumpUsed bool `json:"doubleJumpUsed"`

	SlideLeft int `json:"-"`

	// AnimPhase is a wrapping frame counter for the renderer; it never
	// feeds back into gameplay.
	AnimPhase int `json:"animPhase"`
}

func (s *Simulation) resetPlayer() {
	w := s.cfg.World
	s.player = Player{
		X:        w.PlayerX,
		Y:        w.GroundY - w.PlayerH,
		W:        w.PlayerW,
		H:        w.PlayerH,
		Grounded: true,
	}
}

func (p *Player) box() Box {
	return Box{X: p.X, Y: p.Y, W: p.W, H: p.H}
}

// stepPhysics integrates one tick of player motion: honor queued intents,
// apply gravity, then resolve landings against platform tops and the ground
// plane.
func (s *Simulation) stepPhysics() {
	p := &s.player
	ph := s.cfg.Physics
	groundY := s.cfg.World.GroundY

	if s.intents.jump {
		s.intents.jump = false
		switch {
		case p.Grounded && !p.Sliding:
			p.VY = ph.JumpImpulse
			p.Grounded = false
			p.Jumping = true
		case !p.Grounded && !p.DoubleJumpUsed:
			p.VY = ph.DoubleJumpImpulse
			p.DoubleJumpUsed = true
		}
	}

	if s.intents.slide && p.Grounded && !p.Jumping {
		s.intents.slide = false
		if !p.Sliding {
			p.Sliding = true
			p.SlideLeft = ph.SlideTicks
			bottom := p.Y + p.H
			p.H = s.cfg.World.SlideH
			p.Y = bottom - p.H
		}
	}
	if p.Sliding {
		p.SlideLeft--
		if p.SlideLeft <= 0 || !s.intents.slideHeld {
			s.endSlide()
		}
	}

	// Keep riding a supporting platform, or start falling once it has
	// scrolled out from under the player.
	if p.Grounded {
		bottom := p.Y + p.H
		supported := bottom >= groundY-0.5
		for i := range s.platforms {
			pl := &s.platforms[i]
			if p.X+p.W > pl.X && p.X < pl.right() && bottom >= pl.Y-8 && bottom <= pl.Y+8 {
				p.Y = pl.Y - p.H
				supported = true
				break
			}
		}
		if !supported {
			p.Grounded = false
		}
	}

	// Gravity is suspended only while sliding on the ground; the fall side
	// is steeper than the rise for a snappier arc.
	if !(p.Grounded && p.Sliding) {
		if p.VY < 0 {
			p.VY += ph.GravityRise
		} else {
			p.VY += ph.GravityFall
		}
	}

	prevBottom := p.Y + p.H
	p.Y += p.VY
	newBottom := p.Y + p.H

	if p.VY >= 0 {
		// Platform tops first, then the ground plane.
		for i := range s.platforms {
			pl := &s.platforms[i]
			if p.X+p.W <= pl.X || p.X >= pl.right() {
				continue
			}
			if prevBottom <= pl.Y+6 && newBottom >= pl.Y {
				s.landAt(pl.Y)
				return
			}
		}
		if newBottom >= groundY {
			s.landAt(groundY)
		}
	}

	p.AnimPhase = (p.AnimPhase + 1) % 60
}

func (s *Simulation) landAt(surfaceY float64) {
	p := &s.player
	p.Y = surfaceY - p.H
	p.VY = 0
	p.Grounded = true
	p.Jumping = false
	p.DoubleJumpUsed = false
	p.AnimPhase = (p.AnimPhase + 1) % 60
}

func (s *Simulation) endSlide() {
	p := &s.player
	if !p.Sliding {
		return
	}
	p.Sliding = false
	p.SlideLeft = 0
	bottom := p.Y + p.H
	p.H = s.cfg.World.PlayerH
	p.Y = bottom - p.H
}
