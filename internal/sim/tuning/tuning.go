package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds every empirical gameplay constant. Values were tuned by play,
// not derived; treat the defaults as authoritative.
type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int `yaml:"tick_rate_hz"`

	World   World   `yaml:"world"`
	Physics Physics `yaml:"physics"`
	Speed   Speed   `yaml:"speed"`
	Spawn   Spawn   `yaml:"spawn"`
	Hits    Hits    `yaml:"hits"`
	Pursuer Pursuer `yaml:"pursuer"`
	Powerup Powerup `yaml:"powerup"`
	Cheat   Cheat   `yaml:"anti_cheat"`
}

type World struct {
	Width          float64 `yaml:"width"`
	GroundY        float64 `yaml:"ground_y"`
	PlayerX        float64 `yaml:"player_x"`
	PlayerW        float64 `yaml:"player_w"`
	PlayerH        float64 `yaml:"player_h"`
	SlideH         float64 `yaml:"slide_h"`
	DiscardX       float64 `yaml:"discard_x"`
	ScorePerLevel  int     `yaml:"score_per_level"`
	HitboxInset    float64 `yaml:"hitbox_inset"`
	ParallaxFactor float64 `yaml:"parallax_factor"`
}

type Physics struct {
	JumpImpulse       float64 `yaml:"jump_impulse"`
	DoubleJumpImpulse float64 `yaml:"double_jump_impulse"`
	GravityRise       float64 `yaml:"gravity_rise"`
	GravityFall       float64 `yaml:"gravity_fall"`
	SlideTicks        int     `yaml:"slide_ticks"`
}

type Speed struct {
	Base          float64 `yaml:"base"`
	Max           float64 `yaml:"max"`
	StepPerScore  int     `yaml:"step_per_score"`
	Step          float64 `yaml:"step"`
	SlowdownMult  float64 `yaml:"slowdown_mult"`
	SlowdownTicks int     `yaml:"slowdown_ticks"`
	BoostMult     float64 `yaml:"boost_mult"`
}

type Spawn struct {
	HardScore int `yaml:"hard_score"`

	ObstacleMinTicks     int `yaml:"obstacle_min_ticks"`
	ObstacleMaxTicks     int `yaml:"obstacle_max_ticks"`
	ObstacleMinTicksHard int `yaml:"obstacle_min_ticks_hard"`
	ObstacleMaxTicksHard int `yaml:"obstacle_max_ticks_hard"`

	CollectMinTicks int `yaml:"collect_min_ticks"`
	CollectMaxTicks int `yaml:"collect_max_ticks"`

	// Weighted draw over ground hazard / flyer / gap / fire trap.
	Weights     [4]int `yaml:"weights"`
	WeightsHard [4]int `yaml:"weights_hard"`

	GapMinWidth float64 `yaml:"gap_min_width"`
	GapMaxWidth float64 `yaml:"gap_max_width"`

	// Helper platform count by gap width: count i+1 applies while
	// width < PlatformWidthSteps[i]; past the last step the count is 4.
	PlatformWidthSteps [3]float64 `yaml:"platform_width_steps"`
	PlatformMinSpacing float64    `yaml:"platform_min_spacing"`

	FireActiveTicks int `yaml:"fire_active_ticks"`
	FireIdleTicks   int `yaml:"fire_idle_ticks"`
}

type Hits struct {
	WindowTicks   int `yaml:"window_ticks"`
	CooldownTicks int `yaml:"cooldown_ticks"`
	Lethal        int `yaml:"lethal"`
}

type Pursuer struct {
	StandoffBase  float64 `yaml:"standoff_base"`
	StandoffStep  float64 `yaml:"standoff_step"`
	StandoffFloor float64 `yaml:"standoff_floor"`
	SpeedStep     float64 `yaml:"speed_step"`
	SlowdownMult  float64 `yaml:"slowdown_mult"`
	DeadZoneX     float64 `yaml:"dead_zone_x"`
	DeadZoneY     float64 `yaml:"dead_zone_y"`
	CatchRadius   float64 `yaml:"catch_radius"`
	BaseSpeed     float64 `yaml:"base_speed"`

	ApproachTicks int `yaml:"approach_ticks"`
	StruggleTicks int `yaml:"struggle_ticks"`
	FadeTicks     int `yaml:"fade_ticks"`
}

type Powerup struct {
	DurationTicks int     `yaml:"duration_ticks"`
	MagnetRadius  float64 `yaml:"magnet_radius"`
	MagnetPull    float64 `yaml:"magnet_pull"`
	MagnetMaxStep float64 `yaml:"magnet_max_step"`
	ScoreMult     int     `yaml:"score_mult"`
	ShieldCharges int     `yaml:"shield_charges"`
}

type Cheat struct {
	MaxCoinsPerSecond int `yaml:"max_coins_per_second"`
	ScorePerSecondCap int `yaml:"score_per_second_cap"`
	ScoreGrace        int `yaml:"score_grace"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      60,
		World: World{
			Width:          800,
			GroundY:        300,
			PlayerX:        120,
			PlayerW:        34,
			PlayerH:        48,
			SlideH:         24,
			DiscardX:       -60,
			ScorePerLevel:  75,
			HitboxInset:    4,
			ParallaxFactor: 0.35,
		},
		Physics: Physics{
			JumpImpulse:       -11.5,
			DoubleJumpImpulse: -9,
			GravityRise:       0.55,
			GravityFall:       0.95,
			SlideTicks:        45,
		},
		Speed: Speed{
			Base:          6,
			Max:           12,
			StepPerScore:  150,
			Step:          0.25,
			SlowdownMult:  0.55,
			SlowdownTicks: 90,
			BoostMult:     1.6,
		},
		Spawn: Spawn{
			HardScore:            300,
			ObstacleMinTicks:     50,
			ObstacleMaxTicks:     110,
			ObstacleMinTicksHard: 35,
			ObstacleMaxTicksHard: 80,
			CollectMinTicks:      60,
			CollectMaxTicks:      140,
			Weights:              [4]int{45, 25, 18, 12},
			WeightsHard:          [4]int{30, 22, 26, 22},
			GapMinWidth:          70,
			GapMaxWidth:          140,
			PlatformWidthSteps:   [3]float64{80, 105, 125},
			PlatformMinSpacing:   90,
			FireActiveTicks:      90,
			FireIdleTicks:        90,
		},
		Hits: Hits{
			WindowTicks:   600,
			CooldownTicks: 60,
			Lethal:        3,
		},
		Pursuer: Pursuer{
			StandoffBase:  220,
			StandoffStep:  60,
			StandoffFloor: 60,
			SpeedStep:     0.25,
			SlowdownMult:  1.5,
			DeadZoneX:     8,
			DeadZoneY:     6,
			CatchRadius:   30,
			BaseSpeed:     6,
			ApproachTicks: 90,
			StruggleTicks: 120,
			FadeTicks:     60,
		},
		Powerup: Powerup{
			DurationTicks: 600,
			MagnetRadius:  140,
			MagnetPull:    220,
			MagnetMaxStep: 9,
			ScoreMult:     2,
			ShieldCharges: 1,
		},
		Cheat: Cheat{
			MaxCoinsPerSecond: 8,
			ScorePerSecondCap: 40,
			ScoreGrace:        100,
		},
	}
}
