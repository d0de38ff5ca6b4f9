package kcc

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeebo/xxh3"
)

// TouchingEntity is a single contact reported during the tick's sweeps. The
// contact list is rebuilt every tick and never persisted; a downstream force
// applier consumes it to push dynamic bodies the character ran into.
type TouchingEntity struct {
	Entity  EntityID
	Allowed float32
	Point   mgl32.Vec3
	Normal  mgl32.Vec3

	// Character pose and velocity at the moment of contact.
	CharacterPos mgl32.Vec3
	CharacterVel mgl32.Vec3

	TOI float32
}

// MantleOutput describes the wall being mantled this tick, for camera-lag
// smoothing and debug display.
type MantleOutput struct {
	WallNormal mgl32.Vec3
	LedgePoint mgl32.Vec3
	WallEntity EntityID
}

// TickResult is the per-tick output of the simulator.
type TickResult struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3

	Grounded     bool
	GroundEntity EntityID

	Mode ModeKind

	Touching []TouchingEntity
	Mantle   *MantleOutput
}

// Checksum returns a hash of the committed pose, usable for lockstep or
// replay verification across runs.
func (r TickResult) Checksum() uint64 {
	var buf [25]byte
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(r.Position[i]))
		binary.LittleEndian.PutUint32(buf[12+i*4:], math.Float32bits(r.Velocity[i]))
	}
	if r.Grounded {
		buf[24] = 1
	}
	return xxh3.Hash(buf[:])
}
