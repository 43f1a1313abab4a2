package game

// Box is the shared placement rectangle for everything the world scrolls.
// X/Y is the top-left corner.
type Box struct {
	ID uint64  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	W  float64 `json:"w"`
	H  float64 `json:"h"`
}

func (b Box) right() float64  { return b.X + b.W }
func (b Box) bottom() float64 { return b.Y + b.H }

// inset shrinks the box on all sides; collision tests use inset boxes so
// near-misses read as misses.
func (b Box) inset(d float64) Box {
	b.X += d
	b.Y += d
	b.W -= 2 * d
	b.H -= 2 * d
	if b.W < 0 {
		b.W = 0
	}
	if b.H < 0 {
		b.H = 0
	}
	return b
}

func (b Box) overlaps(o Box) bool {
	return b.X < o.right() && b.right() > o.X && b.Y < o.bottom() && b.bottom() > o.Y
}

// Obstacle is a ground-level hazard.
type Obstacle struct {
	Box
}

// Flyer is an airborne hazard at slide height.
type Flyer struct {
	Box
	Bob float64 `json:"bob"` // vertical bobbing phase, visual only
}

// FireTrap alternates between an active (harmful) and idle window.
type FireTrap struct {
	Box
	Active     bool `json:"active"`
	CycleTicks int  `json:"cycleTicks"` // ticks remaining in the current window
}

// Gap is a hole in the ground plane. Touching ground level over it is lethal.
type Gap struct {
	Box
}

// Platform moves vertically and carries the player; it never damages.
type Platform struct {
	Box
	VY   float64 `json:"vy"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
}

// Coin is worth one point times the active score multiplier.
type Coin struct {
	Box
	Collected bool `json:"-"`
}

// PowerupKind enumerates the four pickups.
type PowerupKind string

const (
	PowerShield     PowerupKind = "shield"
	PowerMagnet     PowerupKind = "magnet"
	PowerBoost      PowerupKind = "boost"
	PowerMultiplier PowerupKind = "multiplier"
)

// Powerup is a collectible pickup.
type Powerup struct {
	Box
	Kind      PowerupKind `json:"kind"`
	Collected bool        `json:"-"`
}

// Particle is transient and visual only.
type Particle struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VX   float64 `json:"vx"`
	VY   float64 `json:"vy"`
	Life int     `json:"life"`
	Tint string  `json:"tint"`
}

// Decoration scrolls at a parallax fraction of game speed, visual only.
type Decoration struct {
	Box
	Layer int `json:"layer"`
}
