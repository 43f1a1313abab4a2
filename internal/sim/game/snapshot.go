package game

// Snapshot is the full per-tick state handed to the transport. It is a value
// copy; the transport may serialize it after the tick returns.
type Snapshot struct {
	State    State   `json:"state"`
	Result   Result  `json:"result,omitempty"`
	Tick     uint64  `json:"tick"`
	Score    int     `json:"score"`
	Level    int     `json:"level"`
	Speed    float64 `json:"speed"`
	Distance float64 `json:"distance"`

	Player  Player       `json:"player"`
	Pursuer PursuerState `json:"pursuer"`

	Obstacles []Obstacle   `json:"obstacles"`
	Flyers    []Flyer      `json:"flyers"`
	Fires     []FireTrap   `json:"fires"`
	Gaps      []Gap        `json:"gaps"`
	Platforms []Platform   `json:"platforms"`
	Coins     []Coin       `json:"coins"`
	Powerups  []Powerup    `json:"powerups"`
	Particles []Particle   `json:"particles"`
	Scenery   []Decoration `json:"scenery"`

	Effects  Effects  `json:"effects"`
	Active   Active   `json:"active"`
	HitTicks []uint64 `json:"hitTicks"`
	Stats    Stats    `json:"stats"`
}

// Active are the derived power-up flags so renderers need no timer logic.
type Active struct {
	Shield     bool `json:"shield"`
	Magnet     bool `json:"magnet"`
	Boost      bool `json:"boost"`
	Multiplier bool `json:"multiplier"`
}

func (s *Simulation) snapshot() Snapshot {
	snap := Snapshot{
		State:    s.state,
		Result:   s.result,
		Tick:     s.tick,
		Score:    s.score,
		Level:    s.Level(),
		Speed:    s.speed,
		Distance: s.stats.Distance,
		Player:   s.player,
		Pursuer:  s.pursuer,
		Effects:  s.effects,
		Active: Active{
			Shield:     s.effects.ShieldTicks > 0 && s.effects.ShieldCharges > 0,
			Magnet:     s.effects.MagnetTicks > 0,
			Boost:      s.effects.BoostTicks > 0,
			Multiplier: s.effects.MultiplierTicks > 0,
		},
		Stats: s.stats,
	}

	snap.Obstacles = append([]Obstacle(nil), s.obstacles...)
	snap.Flyers = append([]Flyer(nil), s.flyers...)
	snap.Fires = append([]FireTrap(nil), s.fires...)
	snap.Gaps = append([]Gap(nil), s.gaps...)
	snap.Platforms = append([]Platform(nil), s.platforms...)
	snap.Coins = append([]Coin(nil), s.coins...)
	snap.Powerups = append([]Powerup(nil), s.powerups...)
	snap.Particles = append([]Particle(nil), s.particles...)
	snap.Scenery = append([]Decoration(nil), s.scenery...)
	snap.HitTicks = append([]uint64(nil), s.hitTicks...)

	return snap
}
