package game

import "math"

// stepCollision resolves player-vs-collectible and player-vs-hazard overlaps
// for this tick. Collected/hit entities are flagged here and swept by the
// end-of-tick cleanup pass.
func (s *Simulation) stepCollision() {
	pbox := s.player.box().inset(s.cfg.World.HitboxInset)

	s.collectCoins(pbox)
	s.collectPowerups(pbox)

	if s.checkGapFall() {
		return
	}

	if s.hazardOverlap(pbox) {
		s.recordHit()
	}
}

func (s *Simulation) collectCoins(pbox Box) {
	for i := range s.coins {
		c := &s.coins[i]
		if c.Collected || !pbox.overlaps(c.Box.inset(2)) {
			continue
		}
		c.Collected = true
		value := 1
		if s.effects.MultiplierTicks > 0 {
			value *= s.cfg.Powerup.ScoreMult
		}
		s.score += value
		s.stats.Coins++
		s.burstParticles(c.X, c.Y, 4, "gold")
	}
}

func (s *Simulation) collectPowerups(pbox Box) {
	for i := range s.powerups {
		p := &s.powerups[i]
		if p.Collected || !pbox.overlaps(p.Box.inset(2)) {
			continue
		}
		p.Collected = true
		s.stats.Powerups++
		s.activatePowerup(p.Kind)
		s.burstParticles(p.X, p.Y, 6, "violet")
	}
}

// checkGapFall ends the run when the player's feet reach ground level while
// horizontally inside a gap. Shields do not help here.
func (s *Simulation) checkGapFall() bool {
	bottom := s.player.Y + s.player.H
	if bottom < s.cfg.World.GroundY-0.5 {
		return false
	}
	cx := s.player.X + s.player.W/2
	for i := range s.gaps {
		g := &s.gaps[i]
		if cx > g.X && cx < g.right() {
			s.gameOver(ResultFell)
			return true
		}
	}
	return false
}

func (s *Simulation) hazardOverlap(pbox Box) bool {
	inset := s.cfg.World.HitboxInset
	for i := range s.obstacles {
		if pbox.overlaps(s.obstacles[i].Box.inset(inset)) {
			return true
		}
	}
	for i := range s.flyers {
		if pbox.overlaps(s.flyers[i].Box.inset(inset)) {
			return true
		}
	}
	for i := range s.fires {
		f := &s.fires[i]
		if f.Active && pbox.overlaps(f.Box.inset(inset)) {
			return true
		}
	}
	return false
}

// recordHit applies one unshielded or shield-absorbed obstacle hit, subject
// to the hit cooldown.
func (s *Simulation) recordHit() {
	h := s.cfg.Hits
	if s.hasHit && s.tick-s.lastHitTick < uint64(h.CooldownTicks) {
		return
	}

	if s.effects.ShieldTicks > 0 && s.effects.ShieldCharges > 0 {
		s.effects.ShieldCharges--
		if s.effects.ShieldCharges == 0 {
			s.effects.ShieldTicks = 0
		}
		s.hasHit = true
		s.lastHitTick = s.tick
		s.burstParticles(s.player.X, s.player.Y, 8, "cyan")
		return
	}

	s.hasHit = true
	s.lastHitTick = s.tick
	s.hitTicks = append(s.hitTicks, s.tick)
	s.stats.Hits++
	s.slowdownLeft = s.cfg.Speed.SlowdownTicks
	s.burstParticles(s.player.X, s.player.Y+s.player.H/2, 10, "red")

	if len(s.hitTicks) >= h.Lethal {
		s.enterCatching()
	}
}

// pruneHits drops hit timestamps older than the rolling window.
func (s *Simulation) pruneHits() {
	window := uint64(s.cfg.Hits.WindowTicks)
	keep := s.hitTicks[:0]
	for _, t := range s.hitTicks {
		if s.tick-t < window {
			keep = append(keep, t)
		}
	}
	s.hitTicks = keep
}

func (s *Simulation) burstParticles(x, y float64, n int, tint string) {
	for i := 0; i < n; i++ {
		angle := s.rng.Float64() * 2 * math.Pi
		speed := s.randFloat(0.8, 2.6)
		s.particles = append(s.particles, Particle{
			X:    x,
			Y:    y,
			VX:   math.Cos(angle) * speed,
			VY:   math.Sin(angle)*speed - 1,
			Life: s.randRange(18, 40),
			Tint: tint,
		})
	}
}
