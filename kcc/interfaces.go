package kcc

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// EntityID identifies a body in the collision world. Zero is never assigned.
type EntityID uint64

// Filter excludes bodies from sweep queries.
type Filter struct {
	Excluded []EntityID
}

// Excludes reports whether the given entity is filtered out.
func (f Filter) Excludes(id EntityID) bool {
	for _, e := range f.Excluded {
		if e == id {
			return true
		}
	}
	return false
}

// Hit describes the first contact found by a directional cast.
type Hit struct {
	Entity   EntityID
	Distance float32
	Point    mgl32.Vec3
	Normal   mgl32.Vec3

	// TOI is the raw time-of-impact fraction of the cast displacement.
	TOI float32

	// StartPenetrating is set when the cast shape already overlapped the hit
	// body before moving.
	StartPenetrating bool
}

// MoveHit is passed to the per-hit callback of MoveAndSlide.
type MoveHit struct {
	Hit

	// Allowed is the travel distance the sweep permitted before this contact.
	Allowed float32

	// Position and Velocity are the character's pose and velocity at contact.
	Position mgl32.Vec3
	Velocity mgl32.Vec3
}

// SlideConfig tunes a combined move-and-slide sweep.
type SlideConfig struct {
	SkinWidth     float32
	MaxIterations int

	// ExtraPlanes are additional clip planes applied on top of contact planes,
	// such as the current ground plane of a grounded character.
	ExtraPlanes []mgl32.Vec3
}

// MoveOut is the result of a move-and-slide sweep.
type MoveOut struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
}

// Sweeper is the collision-sweep service the controller runs on. Shapes are
// axis-aligned boxes positioned by translating them to the given pos.
type Sweeper interface {
	// Depenetrate returns an offset that pushes the shape out of any body it
	// currently overlaps.
	Depenetrate(shape cube.BBox, pos mgl32.Vec3, skin float32, filter Filter) mgl32.Vec3

	// CastMove sweeps the shape along delta and returns the first hit, if any.
	// The reported distance stops the shape a skin width before the surface.
	CastMove(shape cube.BBox, pos, delta mgl32.Vec3, skin float32, filter Filter) (Hit, bool)

	// MoveAndSlide advances the shape by vel over dt, redirecting along contact
	// planes. onHit may be nil; returning false from it stops hit reporting.
	MoveAndSlide(shape cube.BBox, pos, vel mgl32.Vec3, dt float32, cfg SlideConfig, filter Filter, onHit func(MoveHit) bool) MoveOut

	// Intersections reports every body the shape grown by grow overlaps.
	// Returning false from onHit stops iteration.
	Intersections(shape cube.BBox, pos mgl32.Vec3, grow float32, filter Filter, onHit func(entity EntityID, point, normal mgl32.Vec3, penetration float32) bool)
}

// PlatformBody is a rigid-body sample used for platform velocity inheritance.
type PlatformBody struct {
	Center   mgl32.Vec3
	LinVel   mgl32.Vec3
	AngVel   mgl32.Vec3
	Friction float32
}

// BodyProvider resolves entity references from sweep hits to body samples.
type BodyProvider interface {
	PlatformBody(id EntityID) (PlatformBody, bool)
}

// WaterLevel describes how deeply a character is submerged.
type WaterLevel uint8

const (
	WaterNone WaterLevel = iota
	WaterFeet
	WaterWaist
	WaterHead
)

// WaterState is the per-tick water classification for a character.
type WaterState struct {
	Level WaterLevel

	// Speed is the swim speed cap of the deepest volume touched, or 0 when the
	// volume imposes no cap.
	Speed float32
}

// WaterProvider classifies how submerged a shape at the given position is.
type WaterProvider interface {
	WaterAt(shape cube.BBox, pos mgl32.Vec3) WaterState
}

// OrientationSource supplies the look orientation used for wish-direction
// computation, typically a camera.
type OrientationSource interface {
	Orientation() mgl32.Quat
}
