package game

import "math"

// Effects tracks the four timed power-ups. Timers are independent and never
// go negative; recollecting a kind refreshes its timer instead of stacking.
type Effects struct {
	ShieldTicks     int `json:"shieldTicks"`
	ShieldCharges   int `json:"shieldCharges"`
	MagnetTicks     int `json:"magnetTicks"`
	BoostTicks      int `json:"boostTicks"`
	MultiplierTicks int `json:"multiplierTicks"`
}

func (s *Simulation) activatePowerup(kind PowerupKind) {
	d := s.cfg.Powerup.DurationTicks
	switch kind {
	case PowerShield:
		s.effects.ShieldTicks = d
		s.effects.ShieldCharges = s.cfg.Powerup.ShieldCharges
	case PowerMagnet:
		s.effects.MagnetTicks = d
	case PowerBoost:
		s.effects.BoostTicks = d
	case PowerMultiplier:
		s.effects.MultiplierTicks = d
	}
}

// stepPowerups counts each active timer down by one and clears the effect on
// the tick its timer reaches zero. Boost expiry falls back to whatever the
// difficulty-scaled baseline is now, not the pre-boost speed.
func (s *Simulation) stepPowerups() {
	e := &s.effects

	if e.ShieldTicks > 0 {
		e.ShieldTicks--
		if e.ShieldTicks == 0 {
			e.ShieldCharges = 0
		}
	}
	if e.MagnetTicks > 0 {
		e.MagnetTicks--
		if e.MagnetTicks > 0 {
			s.attractCoins()
		}
	}
	if e.BoostTicks > 0 {
		e.BoostTicks--
		if e.BoostTicks == 0 {
			s.speed = s.baselineSpeed()
		}
	}
	if e.MultiplierTicks > 0 {
		e.MultiplierTicks--
	}
}

// attractCoins pulls nearby coins toward the player, harder the closer they
// are.
func (s *Simulation) attractCoins() {
	p := s.cfg.Powerup
	cx := s.player.X + s.player.W/2
	cy := s.player.Y + s.player.H/2
	for i := range s.coins {
		c := &s.coins[i]
		if c.Collected {
			continue
		}
		dx := cx - (c.X + c.W/2)
		dy := cy - (c.Y + c.H/2)
		dist := math.Hypot(dx, dy)
		if dist == 0 || dist > p.MagnetRadius {
			continue
		}
		pull := p.MagnetPull / dist
		if pull > p.MagnetMaxStep {
			pull = p.MagnetMaxStep
		}
		c.X += dx / dist * pull
		c.Y += dy / dist * pull
	}
}

// baselineSpeed is the difficulty-scaled base speed before boost or hit
// slowdown multipliers.
func (s *Simulation) baselineSpeed() float64 {
	sp := s.cfg.Speed
	v := sp.Base
	if sp.StepPerScore > 0 {
		v += sp.Step * float64(s.score/sp.StepPerScore)
	}
	if v > sp.Max {
		v = sp.Max
	}
	return v
}

// currentSpeed folds the boost and post-hit slowdown multipliers into the
// baseline.
func (s *Simulation) currentSpeed() float64 {
	v := s.baselineSpeed()
	if s.effects.BoostTicks > 0 {
		v *= s.cfg.Speed.BoostMult
	}
	if s.slowdownLeft > 0 {
		v *= s.cfg.Speed.SlowdownMult
	}
	return v
}
