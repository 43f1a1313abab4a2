package game

import (
	"math"
	"testing"
)

func TestPowerups_TimersTickDownAndFreezeWhilePaused(t *testing.T) {
	s := newTestSim(t)
	calm(s)
	s.activatePowerup(PowerMagnet)
	want := s.cfg.Powerup.DurationTicks

	s.Tick()
	if s.effects.MagnetTicks != want-1 {
		t.Fatalf("magnet timer = %d, want %d", s.effects.MagnetTicks, want-1)
	}

	s.Pause()
	s.Tick()
	s.Tick()
	if s.effects.MagnetTicks != want-1 {
		t.Fatalf("timer must freeze while paused, got %d", s.effects.MagnetTicks)
	}
}

func TestPowerups_EffectClearsOnZero(t *testing.T) {
	s := newTestSim(t)
	calm(s)
	s.effects.MagnetTicks = 1

	snap := s.Tick()
	if snap.Effects.MagnetTicks != 0 {
		t.Fatalf("magnet timer = %d, want 0", snap.Effects.MagnetTicks)
	}
	if snap.Active.Magnet {
		t.Fatalf("effect flag must clear on the tick the timer hits zero")
	}
}

func TestPowerups_RecollectRefreshesInsteadOfStacking(t *testing.T) {
	s := newTestSim(t)
	s.effects.BoostTicks = 123
	s.activatePowerup(PowerBoost)
	if s.effects.BoostTicks != s.cfg.Powerup.DurationTicks {
		t.Fatalf("boost ticks = %d, want refresh to %d", s.effects.BoostTicks, s.cfg.Powerup.DurationTicks)
	}
}

func TestPowerups_ConcurrentlyActiveKinds(t *testing.T) {
	s := newTestSim(t)
	calm(s)
	s.activatePowerup(PowerShield)
	s.activatePowerup(PowerMagnet)
	s.activatePowerup(PowerBoost)
	s.activatePowerup(PowerMultiplier)

	snap := s.Tick()
	if !snap.Active.Shield || !snap.Active.Magnet || !snap.Active.Boost || !snap.Active.Multiplier {
		t.Fatalf("all four power-ups should be active: %+v", snap.Active)
	}
}

func TestBoost_MultipliesAndRevertsToCurrentBaseline(t *testing.T) {
	s := newTestSim(t)
	s.score = 0
	s.activatePowerup(PowerBoost)
	if got := s.currentSpeed(); got != s.cfg.Speed.Base*s.cfg.Speed.BoostMult {
		t.Fatalf("boosted speed = %v, want %v", got, s.cfg.Speed.Base*s.cfg.Speed.BoostMult)
	}

	// Difficulty rises during the boost window; expiry must settle on the
	// new baseline, not the pre-boost speed.
	s.score = 150
	s.effects.BoostTicks = 1
	s.stepPowerups()
	if s.effects.BoostTicks != 0 {
		t.Fatalf("boost should have expired")
	}
	if s.speed != 6.25 {
		t.Fatalf("post-boost speed = %v, want the risen baseline 6.25", s.speed)
	}
}

func TestMagnet_PullsCoinsInverselyToDistance(t *testing.T) {
	s := newTestSim(t)
	calm(s)
	s.effects.MagnetTicks = 100

	near := s.newCoin(s.player.X+60, s.player.Y)
	far := s.newCoin(s.player.X+120, s.player.Y)
	outside := s.newCoin(s.player.X+500, s.player.Y)
	s.coins = []Coin{near, far, outside}

	cx := s.player.X + s.player.W/2
	cy := s.player.Y + s.player.H/2
	distBefore := func(c Coin) float64 {
		return math.Hypot(cx-(c.X+c.W/2), cy-(c.Y+c.H/2))
	}
	nearBefore := distBefore(s.coins[0])
	farBefore := distBefore(s.coins[1])

	s.attractCoins()

	nearPull := nearBefore - distBefore(s.coins[0])
	farPull := farBefore - distBefore(s.coins[1])
	if nearPull <= 0 || farPull <= 0 {
		t.Fatalf("coins in radius must move toward the player: near=%v far=%v", nearPull, farPull)
	}
	if nearPull <= farPull {
		t.Fatalf("attraction must weaken with distance: near=%v far=%v", nearPull, farPull)
	}
	if s.coins[2].X != outside.X {
		t.Fatalf("coins outside the radius must not move")
	}
}
