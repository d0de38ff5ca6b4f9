// Package sweep provides an axis-aligned collision world implementing the
// sweep, body and water services the character controller consumes.
package sweep

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sasha-s/go-deadlock"

	"github.com/stride-cc/stride/kcc"
)

// World is a registry of box bodies. Iteration order is insertion order so
// ties between overlapping bodies resolve deterministically, which keeps
// simulation checksums stable across runs.
type World struct {
	bodies *orderedmap.OrderedMap[kcc.EntityID, *Body]
	lastID kcc.EntityID

	deadlock.RWMutex
}

func NewWorld() *World {
	return &World{
		bodies: orderedmap.NewOrderedMap[kcc.EntityID, *Body](),
	}
}

// AddBody registers a body and returns its assigned entity id.
func (w *World) AddBody(b Body) kcc.EntityID {
	w.Lock()
	defer w.Unlock()

	w.lastID++
	body := b
	w.bodies.Set(w.lastID, &body)
	return w.lastID
}

// AddBox registers a static solid from a world-space box.
func (w *World) AddBox(box cube.BBox, friction float32) kcc.EntityID {
	return w.AddBody(Body{Box: box, Friction: friction})
}

// AddWater registers a swimmable sensor volume from a world-space box.
func (w *World) AddWater(box cube.BBox, swimSpeed float32) kcc.EntityID {
	return w.AddBody(Body{Box: box, Sensor: true, SwimSpeed: swimSpeed})
}

// Body returns a copy of the body with the given id.
func (w *World) Body(id kcc.EntityID) (Body, bool) {
	w.RLock()
	defer w.RUnlock()

	b, ok := w.bodies.Get(id)
	if !ok {
		return Body{}, false
	}
	return *b, true
}

// RemoveBody deletes the body with the given id.
func (w *World) RemoveBody(id kcc.EntityID) {
	w.Lock()
	defer w.Unlock()

	w.bodies.Delete(id)
}

// SetBodyMotion updates a kinematic body's velocities.
func (w *World) SetBodyMotion(id kcc.EntityID, linVel, angVel mgl32.Vec3) {
	w.Lock()
	defer w.Unlock()

	if b, ok := w.bodies.Get(id); ok {
		b.LinVel = linVel
		b.AngVel = angVel
	}
}

// Advance integrates kinematic body positions by one step.
func (w *World) Advance(dt float32) {
	w.Lock()
	defer w.Unlock()

	for el := w.bodies.Front(); el != nil; el = el.Next() {
		if v := el.Value.LinVel; v != (mgl32.Vec3{}) {
			el.Value.Pos = el.Value.Pos.Add(v.Mul(dt))
		}
	}
}

// PlatformBody implements kcc.BodyProvider.
func (w *World) PlatformBody(id kcc.EntityID) (kcc.PlatformBody, bool) {
	w.RLock()
	defer w.RUnlock()

	b, ok := w.bodies.Get(id)
	if !ok {
		return kcc.PlatformBody{}, false
	}
	box := b.worldBox()
	return kcc.PlatformBody{
		Center:   box.Min().Add(box.Max()).Mul(0.5),
		LinVel:   b.LinVel,
		AngVel:   b.AngVel,
		Friction: b.Friction,
	}, true
}

// WaterAt implements kcc.WaterProvider. The shape is sampled at foot, waist
// and head height against every water volume; the deepest submerged sample
// decides the level.
func (w *World) WaterAt(shape cube.BBox, pos mgl32.Vec3) kcc.WaterState {
	w.RLock()
	defer w.RUnlock()

	height := shape.Height()
	samples := [3]mgl32.Vec3{
		pos,
		pos.Add(mgl32.Vec3{0, height * 0.5, 0}),
		pos.Add(mgl32.Vec3{0, height, 0}),
	}
	levels := [3]kcc.WaterLevel{kcc.WaterFeet, kcc.WaterWaist, kcc.WaterHead}

	var state kcc.WaterState
	for el := w.bodies.Front(); el != nil; el = el.Next() {
		b := el.Value
		if !b.Sensor {
			continue
		}
		box := b.worldBox()
		for i, sample := range samples {
			if !boxContains(box, sample) {
				continue
			}
			if levels[i] > state.Level {
				state.Level = levels[i]
				state.Speed = b.SwimSpeed
			}
		}
	}
	return state
}

func boxContains(box cube.BBox, p mgl32.Vec3) bool {
	min, max := box.Min(), box.Max()
	for i := 0; i < 3; i++ {
		if p[i] < min[i] || p[i] > max[i] {
			return false
		}
	}
	return true
}
