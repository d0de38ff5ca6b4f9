package kcc

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-cc/stride/fmath"
)

// accelerate pushes the velocity towards wishVel. The gain per tick is
// proportional to hz but never exceeds the remaining deficit along the wish
// direction, so holding a key cannot accelerate past the wish speed while
// external momentum above it is left untouched.
func (c *tickCtx) accelerate(wishVel mgl32.Vec3, hz float32) {
	wishSpeed := wishVel.Len()
	if wishSpeed <= 1e-8 {
		return
	}
	wishDir := wishVel.Mul(1 / wishSpeed)
	add := wishSpeed - c.st.Vel.Dot(wishDir)
	if add <= 0 {
		return
	}
	gain := math32.Min(wishSpeed*hz*c.dt, add)
	c.st.Vel = c.st.Vel.Add(wishDir.Mul(gain))
}

// airAccelerate caps the deficit target at AirSpeed, which preserves the
// classic air-strafing behaviour: tiny direct gain, large gain from turning.
func (c *tickCtx) airAccelerate(wishVel mgl32.Vec3) {
	wishSpeed := wishVel.Len()
	if wishSpeed <= 1e-8 {
		return
	}
	wishDir := wishVel.Mul(1 / wishSpeed)
	add := math32.Min(wishSpeed, c.cfg.AirSpeed) - c.st.Vel.Dot(wishDir)
	if add <= 0 {
		return
	}
	gain := math32.Min(wishSpeed*c.cfg.AirAccelerationHz*c.dt, add)
	c.st.Vel = c.st.Vel.Add(wishDir.Mul(gain))
}

func (c *tickCtx) groundMove(wishVel mgl32.Vec3) {
	c.st.Vel[1] = 0
	c.accelerate(wishVel, c.cfg.AccelerationHz)
	c.st.Vel[1] = 0
	c.st.Vel = c.st.Vel.Add(c.st.PlatformVel)

	// Standing still: park on the platform and let the commit at the end of
	// the tick cancel the inherited velocity exactly.
	if c.st.Vel.Len() < 0.01 {
		c.st.Vel = c.st.PlatformVel.Mul(-1)
		return
	}

	movement := fmath.Flatten(c.st.Vel.Mul(c.dt))
	if _, blocked := c.castMove(movement); !blocked {
		c.st.Pos = c.st.Pos.Add(movement)
		c.st.Vel = c.st.Vel.Sub(c.st.PlatformVel)
		c.depenetrate()
		c.snapToGround()
		return
	}
	c.stepMove()
	c.st.Vel = c.st.Vel.Sub(c.st.PlatformVel)
	c.snapToGround()
}

func (c *tickCtx) airMove(wishVel mgl32.Vec3) {
	c.airAccelerate(wishVel)
	c.st.Vel = c.st.Vel.Add(c.st.PlatformVel)
	c.stepMove()
	c.st.Vel = c.st.Vel.Sub(c.st.PlatformVel)
}

func (c *tickCtx) waterMove(wishVel mgl32.Vec3) {
	wish := wishVel
	if c.in.SwimUp {
		c.in.SwimUp = false
		wish = wish.Add(up.Mul(c.cfg.Speed))
	}
	limit := c.cfg.Speed
	if c.water.Speed > 0 {
		limit = math32.Min(limit, c.water.Speed)
	}
	wish = fmath.ClampLen(wish, limit)
	if wish == (mgl32.Vec3{}) {
		// No input: sink slowly instead of hanging in place.
		wish = mgl32.Vec3{0, -c.cfg.WaterGravity, 0}
	}
	wish = wish.Mul(c.cfg.WaterSlowdown)
	c.accelerate(wish, c.cfg.WaterAccelerationHz)

	c.st.Vel = c.st.Vel.Add(c.st.PlatformVel)
	c.stepMove()
	c.st.Vel = c.st.Vel.Sub(c.st.PlatformVel)
}

// friction damps movement while grounded or submerged. Ground friction is
// horizontal only and scaled by the surface's friction coefficient; water
// friction acts on the full 3D velocity.
func (c *tickCtx) friction() {
	var speed float32
	switch {
	case c.st.Mode.IsGrounded():
		speed = math32.Sqrt(fmath.HzLenSqr(c.st.Vel))
	case c.water.Level > WaterFeet:
		speed = c.st.Vel.Len()
	default:
		return
	}
	if speed < 0.001 {
		return
	}
	surface := float32(1)
	if ground, ok := c.st.Mode.Ground(); ok {
		if body, found := c.platformBody(ground.Entity); found && body.Friction > 0 {
			surface = body.Friction
		}
	}
	drop := math32.Max(speed, c.cfg.StopSpeed) * c.cfg.FrictionHz * surface * c.dt
	next := math32.Max(speed-drop, 0)
	if next != speed {
		c.st.Vel = c.st.Vel.Mul(next / speed)
	}
}

// moveCharacter performs one collide-and-slide pass over the current
// velocity, records every surface touched and accumulates the momentum lost
// to collision as tac energy.
func (c *tickCtx) moveCharacter() {
	slide := SlideConfig{
		SkinWidth:     c.cfg.SkinWidth,
		MaxIterations: c.cfg.MaxSlideIterations,
	}
	if ground, ok := c.st.Mode.Ground(); ok {
		slide.ExtraPlanes = append(slide.ExtraPlanes, ground.Normal)
	}
	out := c.sim.Sweeper.MoveAndSlide(c.st.ActiveCollider(), c.st.Pos, c.st.Vel, c.dt, slide, c.cfg.Filter, func(h MoveHit) bool {
		c.touching = append(c.touching, TouchingEntity{
			Entity:       h.Entity,
			Allowed:      h.Allowed,
			Point:        h.Point,
			Normal:       h.Normal,
			CharacterPos: h.Position,
			CharacterVel: h.Velocity,
			TOI:          h.TOI,
		})
		return true
	})
	lost := c.st.Vel.Sub(out.Velocity).Len()
	c.st.TacEnergy = c.st.TacEnergy*0.99 + lost
	c.st.Pos = out.Position
	c.st.Vel = out.Velocity
}
