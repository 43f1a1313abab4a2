package game

// Spawner: independent randomized timers for obstacles, collectibles and
// scenery. Reload ranges narrow past the hard-score threshold.

type obstacleKind int

const (
	spawnGround obstacleKind = iota
	spawnFlyer
	spawnGap
	spawnFire
)

func (s *Simulation) stepSpawner() {
	s.obstacleTimer--
	if s.obstacleTimer <= 0 {
		s.spawnObstacle()
		s.obstacleTimer = s.obstacleReload()
	}

	s.collectTimer--
	if s.collectTimer <= 0 {
		s.spawnCollectible()
		s.collectTimer = s.randRange(s.cfg.Spawn.CollectMinTicks, s.cfg.Spawn.CollectMaxTicks)
	}

	s.sceneryTimer--
	if s.sceneryTimer <= 0 {
		s.spawnDecoration()
		s.sceneryTimer = s.randRange(90, 220)
	}
}

func (s *Simulation) obstacleReload() int {
	sp := s.cfg.Spawn
	if s.score >= sp.HardScore {
		return s.randRange(sp.ObstacleMinTicksHard, sp.ObstacleMaxTicksHard)
	}
	return s.randRange(sp.ObstacleMinTicks, sp.ObstacleMaxTicks)
}

func (s *Simulation) spawnObstacle() {
	sp := s.cfg.Spawn
	weights := sp.Weights
	if s.score >= sp.HardScore {
		weights = sp.WeightsHard
	}

	switch s.weightedDraw(weights[:]) {
	case int(spawnGround):
		s.spawnGroundHazard()
	case int(spawnFlyer):
		s.spawnFlyerHazard()
	case int(spawnGap):
		s.spawnGapHazard()
	case int(spawnFire):
		s.spawnFireTrap()
	}
}

func (s *Simulation) spawnGroundHazard() {
	w := s.randFloat(26, 44)
	h := s.randFloat(32, 58)
	box := Box{
		ID: s.newID(),
		X:  s.spawnEdge(),
		Y:  s.cfg.World.GroundY - h,
		W:  w,
		H:  h,
	}
	if s.overlapsGap(box.X, box.right()) {
		return
	}
	s.obstacles = append(s.obstacles, Obstacle{Box: box})
}

func (s *Simulation) spawnFlyerHazard() {
	// Flyers sit at head height so only a slide clears them.
	h := s.randFloat(22, 30)
	y := s.cfg.World.GroundY - s.cfg.World.PlayerH + s.randFloat(-14, 2)
	s.flyers = append(s.flyers, Flyer{Box: Box{
		ID: s.newID(),
		X:  s.spawnEdge(),
		Y:  y - h,
		W:  s.randFloat(30, 42),
		H:  h,
	}})
}

func (s *Simulation) spawnFireTrap() {
	h := 36.0
	box := Box{
		ID: s.newID(),
		X:  s.spawnEdge(),
		Y:  s.cfg.World.GroundY - h,
		W:  s.randFloat(34, 52),
		H:  h,
	}
	if s.overlapsGap(box.X, box.right()) {
		return
	}
	s.fires = append(s.fires, FireTrap{
		Box:        box,
		Active:     s.rng.Intn(2) == 0,
		CycleTicks: s.randRange(1, s.cfg.Spawn.FireActiveTicks),
	})
}

func (s *Simulation) spawnGapHazard() {
	sp := s.cfg.Spawn
	width := s.randFloat(sp.GapMinWidth, sp.GapMaxWidth)
	gap := Gap{Box: Box{
		ID: s.newID(),
		X:  s.spawnEdge(),
		Y:  s.cfg.World.GroundY,
		W:  width,
		H:  40,
	}}
	s.gaps = append(s.gaps, gap)
	s.placeHelperPlatforms(gap)
}

// placeHelperPlatforms drops 1-4 moving platforms spanning and preceding a
// fresh gap so it stays clearable. The count scales with gap width; clusters
// of non-gap hazards deliberately get no help.
func (s *Simulation) placeHelperPlatforms(g Gap) {
	sp := s.cfg.Spawn
	count := 4
	for i, step := range sp.PlatformWidthSteps {
		if g.W < step {
			count = i + 1
			break
		}
	}

	span := g.W + 80
	startX := g.X - 60
	existing := len(s.platforms)
	for i := 0; i < count; i++ {
		x := startX + span*float64(i)/float64(count)
		if s.tooCloseToPlatform(x, existing) {
			continue
		}
		y := s.cfg.World.GroundY - s.randFloat(70, 120)
		s.platforms = append(s.platforms, Platform{
			Box:  Box{ID: s.newID(), X: x, Y: y, W: s.randFloat(60, 90), H: 14},
			VY:   s.randFloat(0.2, 0.6) * float64(1-2*s.rng.Intn(2)),
			MinY: y - 24,
			MaxY: y + 24,
		})
	}
}

// tooCloseToPlatform checks x against the platforms that existed before the
// current cluster started placing; a cluster's own members never block each
// other.
func (s *Simulation) tooCloseToPlatform(x float64, upto int) bool {
	for i := 0; i < upto && i < len(s.platforms); i++ {
		d := s.platforms[i].X - x
		if d < 0 {
			d = -d
		}
		if d < s.cfg.Spawn.PlatformMinSpacing {
			return true
		}
	}
	return false
}

func (s *Simulation) overlapsGap(left, right float64) bool {
	const clearance = 20
	for i := range s.gaps {
		g := &s.gaps[i]
		if left < g.right()+clearance && right > g.X-clearance {
			return true
		}
	}
	return false
}

func (s *Simulation) spawnCollectible() {
	// coin / coin group / one of four power-ups
	weights := []int{40, 28, 8, 8, 8, 8}
	y := s.cfg.World.GroundY - s.randFloat(36, 130)
	x := s.spawnEdge()

	switch s.weightedDraw(weights) {
	case 0:
		s.coins = append(s.coins, s.newCoin(x, y))
	case 1:
		n := s.randRange(3, 5)
		for i := 0; i < n; i++ {
			s.coins = append(s.coins, s.newCoin(x+float64(i)*28, y))
		}
	case 2:
		s.powerups = append(s.powerups, s.newPowerup(x, y, PowerShield))
	case 3:
		s.powerups = append(s.powerups, s.newPowerup(x, y, PowerMagnet))
	case 4:
		s.powerups = append(s.powerups, s.newPowerup(x, y, PowerBoost))
	case 5:
		s.powerups = append(s.powerups, s.newPowerup(x, y, PowerMultiplier))
	}
}

func (s *Simulation) newCoin(x, y float64) Coin {
	return Coin{Box: Box{ID: s.newID(), X: x, Y: y, W: 18, H: 18}}
}

func (s *Simulation) newPowerup(x, y float64, kind PowerupKind) Powerup {
	return Powerup{Box: Box{ID: s.newID(), X: x, Y: y, W: 24, H: 24}, Kind: kind}
}

func (s *Simulation) spawnDecoration() {
	layer := s.rng.Intn(2)
	y := s.randFloat(30, 140)
	if layer == 1 {
		y = s.cfg.World.GroundY - s.randFloat(40, 90)
	}
	s.scenery = append(s.scenery, Decoration{
		Box:   Box{ID: s.newID(), X: s.spawnEdge(), Y: y, W: s.randFloat(40, 110), H: s.randFloat(20, 50)},
		Layer: layer,
	})
}

func (s *Simulation) spawnEdge() float64 {
	return s.cfg.World.Width + s.randFloat(10, 60)
}

func (s *Simulation) weightedDraw(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}
	roll := s.rng.Intn(total)
	for i, w := range weights {
		roll -= w
		if roll < 0 {
			return i
		}
	}
	return len(weights) - 1
}

func (s *Simulation) randRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.rng.Intn(max-min+1)
}

func (s *Simulation) randFloat(min, max float64) float64 {
	return min + s.rng.Float64()*(max-min)
}

func (s *Simulation) newID() uint64 {
	s.nextID++
	return s.nextID
}
