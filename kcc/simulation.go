package kcc

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-cc/stride/fmath"
)

var up = mgl32.Vec3{0, 1, 0}

// Simulate advances the character by one fixed tick. The pipeline runs
// depenetration, grounding, crouch resolution, the first gravity half-step,
// ledge-climb state updates, one movement branch (vault, mantle, water,
// ground or air), a grounding re-check with climb-down, and the second
// gravity half-step. It mutates st and the trigger fields of in.
func (s *Simulator) Simulate(cfg *Config, st *State, in *InputState, dt float32) TickResult {
	c := &tickCtx{sim: s, cfg: cfg, st: st, in: in, dt: dt}
	if dt <= 0 {
		return c.result()
	}

	st.LastPos, st.LastVel = st.Pos, st.Vel
	st.SinceGrounded += dt
	st.SinceTac += dt
	st.SinceStepUp += dt
	st.SinceStepDown += dt
	in.tick(dt)

	if s.Water != nil {
		c.water = s.Water.WaterAt(st.ActiveCollider(), st.Pos)
	}

	c.depenetrate()
	c.updateGrounded()
	c.handleCrouch()

	if c.water.Level <= WaterFeet {
		c.startGravity()
	}

	if st.Camera != nil {
		st.Orientation = st.Camera.Orientation()
	} else {
		st.Orientation = st.Rotation
	}

	wishVel := c.wishVelocity(true)
	wishVel3D := c.wishVelocity(false)

	c.updateCraneState(wishVel)
	c.updateMantleState(wishVel)

	if _, vaulting := st.Mode.Vault(); vaulting {
		c.craneStep(wishVel)
	} else if _, mantling := st.Mode.Mantle(); mantling {
		c.handleJump(wishVel)
		c.mantleStep(wishVel3D)
	} else {
		c.handleJump(wishVel)
		c.friction()
		c.validateVelocity()
		switch {
		case c.water.Level > WaterFeet:
			c.waterMove(wishVel3D)
		case st.Mode.IsGrounded():
			c.groundMove(wishVel)
		default:
			c.airMove(wishVel)
		}
	}

	wasGrounded := st.Mode.IsGrounded()
	c.updateGrounded()
	if wasGrounded {
		c.handleClimbDown(wishVel)
	}
	c.validateVelocity()

	if c.water.Level <= WaterFeet {
		c.finishGravity()
	}

	if st.Mode.IsGrounded() {
		st.Vel[1] = st.PlatformVel.Y()
		st.SinceGrounded = 0
		if yaw := st.PlatformAngVel.Y(); yaw != 0 {
			st.Rotation = mgl32.QuatRotate(yaw*dt, up).Mul(st.Rotation)
		}
	}

	return c.result()
}

// startGravity applies the first gravity half-step and folds in the vertical
// platform velocity inherited from the previous tick so launches off rising
// platforms carry their momentum.
func (c *tickCtx) startGravity() {
	c.st.Vel[1] += (c.st.PlatformVel.Y() - 0.5*c.cfg.Gravity) * c.dt
	c.st.PlatformVel[1] = 0
	c.validateVelocity()
}

func (c *tickCtx) finishGravity() {
	c.st.Vel[1] -= 0.5 * c.cfg.Gravity * c.dt
	c.validateVelocity()
}

// wishVelocity maps the movement input onto the view orientation. With flat
// set, forward and right are projected onto the horizontal plane, which is
// what every land-movement branch wants; swimming uses the full 3D basis.
func (c *tickCtx) wishVelocity(flat bool) mgl32.Vec3 {
	var move mgl32.Vec2
	if c.in.HasMove {
		move = c.in.Move
	}
	fwd := fmath.Forward(c.st.Orientation)
	right := fmath.Right(c.st.Orientation)
	if flat {
		fwd = fmath.NormalizeOrZero(fmath.Flatten(fwd))
		right = fmath.NormalizeOrZero(fmath.Flatten(right))
	}
	dir := fmath.NormalizeOrZero(fwd.Mul(move.Y()).Add(right.Mul(move.X())))
	speed := c.cfg.Speed
	if c.st.Crouching {
		speed *= c.cfg.CrouchSpeedScale
	}
	return dir.Mul(speed)
}

// validateVelocity zeroes non-finite components and clamps the speed so a
// single bad collision response cannot poison every following tick.
func (c *tickCtx) validateVelocity() {
	for i := 0; i < 3; i++ {
		if !fmath.IsFinite(c.st.Vel[i]) {
			if c.sim.Log != nil {
				c.sim.Log.Warn("discarding non-finite velocity component", "axis", i)
			}
			c.st.Vel[i] = 0
		}
	}
	c.st.Vel = fmath.ClampLen(c.st.Vel, c.cfg.MaxSpeed)
}
