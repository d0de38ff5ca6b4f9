package sweep

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-cc/stride/fmath"
	"github.com/stride-cc/stride/kcc"
)

const (
	// castEpsilon absorbs float error when two faces touch exactly.
	castEpsilon = 1e-5

	// slideEpsilon ends a slide once the residual motion is negligible.
	slideEpsilon = 1e-10

	maxDepenetratePasses = 4
)

// CastMove implements kcc.Sweeper. It sweeps the shape along delta and
// returns the earliest contact, stopping a skin width short of the surface.
// A body already overlapped at the start wins with distance zero.
func (w *World) CastMove(shape cube.BBox, pos, delta mgl32.Vec3, skin float32, filter kcc.Filter) (kcc.Hit, bool) {
	w.RLock()
	defer w.RUnlock()

	moving := shape.Translate(pos)
	length := delta.Len()

	var best kcc.Hit
	found := false
	for el := w.bodies.Front(); el != nil; el = el.Next() {
		if el.Value.Sensor || filter.Excludes(el.Key) {
			continue
		}
		hit, ok := sweepBox(moving, delta, length, skin, el.Value.worldBox())
		if !ok {
			continue
		}
		hit.Entity = el.Key
		if !found || hit.TOI < best.TOI {
			best, found = hit, true
		}
	}
	return best, found
}

// Depenetrate implements kcc.Sweeper. Overlaps are resolved one at a time
// along their axis of least penetration, re-checking after every push, with
// a bounded number of passes so interlocking geometry cannot hang the tick.
func (w *World) Depenetrate(shape cube.BBox, pos mgl32.Vec3, skin float32, filter kcc.Filter) mgl32.Vec3 {
	w.RLock()
	defer w.RUnlock()

	var offset mgl32.Vec3
	for pass := 0; pass < maxDepenetratePasses; pass++ {
		moved := shape.Translate(pos.Add(offset))
		resolved := true
		for el := w.bodies.Front(); el != nil; el = el.Next() {
			if el.Value.Sensor || filter.Excludes(el.Key) {
				continue
			}
			depths, dirs, overlapping := overlapDepths(moved, el.Value.worldBox())
			if !overlapping {
				continue
			}
			axis := minAxis(depths)
			offset[axis] += (depths[axis] + skin) * dirs[axis]
			moved = shape.Translate(pos.Add(offset))
			resolved = false
		}
		if resolved {
			break
		}
	}
	return offset
}

// MoveAndSlide implements kcc.Sweeper. Motion is advanced cast by cast; each
// contact clips both the residual motion and the velocity against its plane
// and every plane hit earlier in the slide, so corners do not jitter.
func (w *World) MoveAndSlide(shape cube.BBox, pos, vel mgl32.Vec3, dt float32, cfg kcc.SlideConfig, filter kcc.Filter, onHit func(kcc.MoveHit) bool) kcc.MoveOut {
	planes := append([]mgl32.Vec3(nil), cfg.ExtraPlanes...)
	remaining := vel.Mul(dt)
	outVel := vel
	report := onHit != nil

	for i := 0; i < cfg.MaxIterations; i++ {
		if remaining.LenSqr() < slideEpsilon {
			break
		}
		hit, found := w.CastMove(shape, pos, remaining, cfg.SkinWidth, filter)
		if !found {
			pos = pos.Add(remaining)
			break
		}

		dir := fmath.NormalizeOrZero(remaining)
		pos = pos.Add(dir.Mul(hit.Distance))
		remaining = dir.Mul(remaining.Len() - hit.Distance)

		// Velocity as it was at the moment of impact, before this plane
		// clips it; force appliers need the into-surface component.
		impactVel := outVel

		remaining = clipPlane(remaining, hit.Normal)
		outVel = clipPlane(outVel, hit.Normal)
		for _, p := range planes {
			remaining = clipPlane(remaining, p)
			outVel = clipPlane(outVel, p)
		}
		planes = append(planes, hit.Normal)

		if report && !onHit(kcc.MoveHit{
			Hit:      hit,
			Allowed:  hit.Distance,
			Position: pos,
			Velocity: impactVel,
		}) {
			report = false
		}
	}
	return kcc.MoveOut{Position: pos, Velocity: outVel}
}

// Intersections implements kcc.Sweeper. The shape is grown symmetrically, so
// penetration depths against the grown shape order bodies by proximity.
func (w *World) Intersections(shape cube.BBox, pos mgl32.Vec3, grow float32, filter kcc.Filter, onHit func(entity kcc.EntityID, point, normal mgl32.Vec3, penetration float32) bool) {
	w.RLock()
	defer w.RUnlock()

	grown := shape.Grow(grow).Translate(pos)
	for el := w.bodies.Front(); el != nil; el = el.Next() {
		if el.Value.Sensor || filter.Excludes(el.Key) {
			continue
		}
		box := el.Value.worldBox()
		depths, dirs, overlapping := overlapDepths(grown, box)
		if !overlapping {
			continue
		}
		axis := minAxis(depths)
		var normal mgl32.Vec3
		normal[axis] = dirs[axis]
		point := contactPoint(grown, box, axis, dirs[axis])
		if !onHit(el.Key, point, normal, depths[axis]) {
			return
		}
	}
}

func clipPlane(v, normal mgl32.Vec3) mgl32.Vec3 {
	if d := v.Dot(normal); d < 0 {
		return v.Sub(normal.Mul(d))
	}
	return v
}

// sweepBox casts a moving box against a stationary one. The hit normal lies
// on the latest-entry axis, the standard slab test result.
func sweepBox(moving cube.BBox, delta mgl32.Vec3, length, skin float32, target cube.BBox) (kcc.Hit, bool) {
	if depths, dirs, overlapping := overlapDepths(moving, target); overlapping {
		axis := minAxis(depths)
		var normal mgl32.Vec3
		normal[axis] = dirs[axis]
		return kcc.Hit{
			Point:            contactPoint(moving, target, axis, dirs[axis]),
			Normal:           normal,
			StartPenetrating: true,
		}, true
	}
	if length <= castEpsilon {
		return kcc.Hit{}, false
	}

	entry, exit := float32(-math32.MaxFloat32), float32(math32.MaxFloat32)
	axis := -1
	for i := 0; i < 3; i++ {
		d := delta[i]
		if d == 0 {
			if moving.Max()[i] <= target.Min()[i] || target.Max()[i] <= moving.Min()[i] {
				return kcc.Hit{}, false
			}
			continue
		}
		var tEntry, tExit float32
		if d > 0 {
			tEntry = (target.Min()[i] - moving.Max()[i]) / d
			tExit = (target.Max()[i] - moving.Min()[i]) / d
		} else {
			tEntry = (target.Max()[i] - moving.Min()[i]) / d
			tExit = (target.Min()[i] - moving.Max()[i]) / d
		}
		if tEntry > entry {
			entry, axis = tEntry, i
		}
		if tExit < exit {
			exit = tExit
		}
	}
	if axis < 0 || entry > exit || exit <= 0 || entry > 1 {
		return kcc.Hit{}, false
	}
	if entry < 0 {
		if entry < -castEpsilon {
			return kcc.Hit{}, false
		}
		entry = 0
	}

	var normal mgl32.Vec3
	if delta[axis] > 0 {
		normal[axis] = -1
	} else {
		normal[axis] = 1
	}
	impact := moving.Translate(delta.Mul(entry))
	return kcc.Hit{
		Distance: math32.Max(entry*length-skin, 0),
		Point:    contactPoint(impact, target, axis, normal[axis]),
		Normal:   normal,
		TOI:      entry,
	}, true
}

// overlapDepths returns the per-axis penetration of a into b and the push
// direction for a on each axis. All depths positive means the boxes overlap.
func overlapDepths(a, b cube.BBox) (depths [3]float32, dirs [3]float32, overlapping bool) {
	for i := 0; i < 3; i++ {
		lo := a.Max()[i] - b.Min()[i]
		hi := b.Max()[i] - a.Min()[i]
		if lo <= castEpsilon || hi <= castEpsilon {
			return depths, dirs, false
		}
		if lo < hi {
			depths[i], dirs[i] = lo, -1
		} else {
			depths[i], dirs[i] = hi, 1
		}
	}
	return depths, dirs, true
}

func minAxis(depths [3]float32) int {
	axis := 0
	for i := 1; i < 3; i++ {
		if depths[i] < depths[axis] {
			axis = i
		}
	}
	return axis
}

// contactPoint is the centre of the overlapped face region, projected onto
// the hit body's surface.
func contactPoint(a, b cube.BBox, axis int, dir float32) mgl32.Vec3 {
	var p mgl32.Vec3
	for i := 0; i < 3; i++ {
		lo := math32.Max(a.Min()[i], b.Min()[i])
		hi := math32.Min(a.Max()[i], b.Max()[i])
		p[i] = (lo + hi) / 2
	}
	if dir > 0 {
		p[axis] = b.Max()[axis]
	} else {
		p[axis] = b.Min()[axis]
	}
	return p
}
