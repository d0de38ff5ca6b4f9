package sweep

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// Body is a single axis-aligned box in the collision world. The box is kept
// in local space and positioned by Pos, so kinematic bodies move by updating
// Pos alone.
type Body struct {
	Box cube.BBox
	Pos mgl32.Vec3

	// LinVel and AngVel drive kinematic motion and platform-velocity
	// inheritance. AngVel is sampled but never integrated; a carousel spins
	// in place.
	LinVel mgl32.Vec3
	AngVel mgl32.Vec3

	// Friction scales ground friction for characters standing on this body.
	// Zero means the default coefficient.
	Friction float32

	// Sensor bodies never collide. Water volumes are sensors.
	Sensor bool

	// SwimSpeed caps swim speed inside this volume. Zero means no cap.
	SwimSpeed float32
}

func (b *Body) worldBox() cube.BBox {
	return b.Box.Translate(b.Pos)
}
