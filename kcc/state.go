package kcc

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-cc/stride/fmath"
)

// ModeKind enumerates the mutually exclusive drive modes of a character.
type ModeKind uint8

const (
	ModeAirborne ModeKind = iota
	ModeGrounded
	ModeVaulting
	ModeMantling
)

// MantleProgress tracks an in-progress mantle across ticks.
type MantleProgress struct {
	HeightLeft float32
	WallNormal mgl32.Vec3
	LedgePoint mgl32.Vec3
	WallEntity EntityID
}

// Mode is a tagged movement mode. Exactly one of grounded, airborne, vaulting
// and mantling holds at any time; the payload accessors return false for the
// other variants.
type Mode struct {
	kind      ModeKind
	ground    Hit
	vaultLeft float32
	mantle    MantleProgress
}

// Airborne returns the airborne mode.
func Airborne() Mode {
	return Mode{kind: ModeAirborne}
}

// GroundedOn returns the grounded mode with the given supporting contact.
func GroundedOn(ground Hit) Mode {
	return Mode{kind: ModeGrounded, ground: ground}
}

// Vaulting returns the vaulting ("crane") mode with the given climb height
// remaining.
func Vaulting(heightLeft float32) Mode {
	return Mode{kind: ModeVaulting, vaultLeft: heightLeft}
}

// Mantling returns the mantling mode with the given progress.
func Mantling(p MantleProgress) Mode {
	return Mode{kind: ModeMantling, mantle: p}
}

// Kind returns the mode tag.
func (m Mode) Kind() ModeKind {
	return m.kind
}

// Ground returns the supporting contact while grounded.
func (m Mode) Ground() (Hit, bool) {
	return m.ground, m.kind == ModeGrounded
}

// IsGrounded reports whether the character is grounded.
func (m Mode) IsGrounded() bool {
	return m.kind == ModeGrounded
}

// Vault returns the remaining vault height while vaulting.
func (m Mode) Vault() (float32, bool) {
	return m.vaultLeft, m.kind == ModeVaulting
}

// Mantle returns the mantle progress while mantling.
func (m Mode) Mantle() (MantleProgress, bool) {
	return m.mantle, m.kind == ModeMantling
}

// DerivedColliders are the collider shapes computed once at attach time from
// the character dimensions. Shapes are feet-origin axis-aligned boxes. Exactly
// one of Standing and Crouching is active per tick, selected by the crouch
// flag; Hand is a small probe shape used only for ledge-reach queries.
type DerivedColliders struct {
	Standing  cube.BBox
	Crouching cube.BBox
	Hand      cube.BBox
}

// DeriveColliders builds the collider set for a character of the configured
// dimensions.
func DeriveColliders(cfg *Config) DerivedColliders {
	standing := fmath.BoxFromDimensions(cfg.Width, cfg.Height)
	grab := cfg.MinLedgeGrabSpace
	return DerivedColliders{
		Standing:  standing,
		Crouching: fmath.BoxWithHeight(standing, cfg.CrouchHeight),
		Hand:      fmath.BoxFromDimensions(grab.X(), grab.Y()),
	}
}

// Active returns the collider selected by the crouch flag.
func (c DerivedColliders) Active(crouching bool) cube.BBox {
	if crouching {
		return c.Crouching
	}
	return c.Standing
}

// Radius returns the horizontal half-extent of the active collider.
func (c DerivedColliders) Radius(crouching bool) float32 {
	return c.Active(crouching).Width() / 2
}

// PosToHeadDist returns the distance from the character position to the top
// of the active collider.
func (c DerivedColliders) PosToHeadDist(crouching bool) float32 {
	return c.Active(crouching).Max().Y()
}

// State is the mutable per-character record carried across ticks. It is
// mutated only by Simulator.Simulate.
type State struct {
	Pos, LastPos mgl32.Vec3
	Vel, LastVel mgl32.Vec3

	// Rotation is the character body rotation; Orientation is the look
	// rotation refreshed each tick from Camera, falling back to Rotation.
	Rotation    mgl32.Quat
	Orientation mgl32.Quat
	Camera      OrientationSource

	PlatformVel    mgl32.Vec3
	PlatformAngVel mgl32.Vec3

	Mode      Mode
	Crouching bool

	// TacEnergy accumulates collision-lost momentum spent by wall-jumps.
	TacEnergy float32

	// Ages in seconds, advanced every tick.
	SinceGrounded float32
	SinceTac      float32
	SinceStepUp   float32
	SinceStepDown float32

	Colliders DerivedColliders
}

// NewState returns a character state at the given position. Ages start large
// so grace windows are not granted at spawn.
func NewState(pos mgl32.Vec3, colliders DerivedColliders) *State {
	const stale = 3600
	return &State{
		Pos:           pos,
		LastPos:       pos,
		Rotation:      mgl32.QuatIdent(),
		Orientation:   mgl32.QuatIdent(),
		Mode:          Airborne(),
		SinceGrounded: stale,
		SinceTac:      stale,
		SinceStepUp:   stale,
		SinceStepDown: stale,
		Colliders:     colliders,
	}
}

// SetPos updates the position, keeping the previous one.
func (s *State) SetPos(pos mgl32.Vec3) {
	s.LastPos = s.Pos
	s.Pos = pos
}

// SetVel updates the velocity, keeping the previous one.
func (s *State) SetVel(vel mgl32.Vec3) {
	s.LastVel = s.Vel
	s.Vel = vel
}

// ActiveCollider returns the collider selected by the crouch flag.
func (s *State) ActiveCollider() cube.BBox {
	return s.Colliders.Active(s.Crouching)
}
