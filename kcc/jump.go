package kcc

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-cc/stride/fmath"
)

// handleJump resolves one buffered jump. Grounded (or coyote-time) jumps go
// straight up; past coyote time the impulse direction instead comes from a
// wall rebound (tac) or a ledge release, and the whole jump is skipped when
// neither applies. The impulse magnitude is the ballistic speed for
// JumpHeight, plus the platform's vertical velocity so jumps off a rising
// elevator stack instead of cancel.
func (c *tickCtx) handleJump(wishVel mgl32.Vec3) {
	var jumpDir mgl32.Vec3
	if !c.st.Mode.IsGrounded() && c.st.SinceGrounded > c.cfg.CoyoteTime {
		var ok bool
		if jumpDir, ok = c.tacDir(wishVel); !ok {
			if jumpDir, ok = c.ledgeJumpDir(); !ok {
				return
			}
		}
	} else {
		if !c.in.Jump.Within(c.cfg.JumpInputBuffer) {
			return
		}
		c.setGrounded(nil)
		c.st.SinceGrounded = c.cfg.CoyoteTime
		jumpDir = up
	}

	c.st.SinceTac = 0
	c.in.Jump.Consume()
	c.in.Tac.Consume()

	impulse := math32.Sqrt(2 * c.cfg.Gravity * c.cfg.JumpHeight)
	c.st.Vel = c.st.Vel.Add(jumpDir.Mul(impulse))
	c.st.Vel[1] += c.st.PlatformVel.Y()

	// Pre-age the vault buffer so a jump immediately chains into a vault
	// for a short window without a second key press.
	c.in.Crane.AgeTo(math32.Max(c.cfg.CraneInputBuffer-c.cfg.JumpCraneChainTime, 0))
}

// tacDir checks for a wall rebound and, when one applies, cancels the
// into-wall velocity and returns the rebound direction scaled by the tac
// energy accumulated from recent collision losses.
func (c *tickCtx) tacDir(wishVel mgl32.Vec3) (mgl32.Vec3, bool) {
	if _, mantling := c.st.Mode.Mantle(); mantling {
		return mgl32.Vec3{}, false
	}
	if !c.in.Tac.Within(c.cfg.TacInputBuffer) {
		return mgl32.Vec3{}, false
	}
	if wishVel.LenSqr() < 0.1 {
		return mgl32.Vec3{}, false
	}
	if c.st.SinceTac < c.cfg.TacCooldown {
		return mgl32.Vec3{}, false
	}

	hit, found := c.castMove(c.st.Vel.Mul(c.dt))
	if !found {
		hit, found = c.castMove(wishVel.Mul(c.dt))
	}
	if !found {
		return mgl32.Vec3{}, false
	}
	normal := hit.Normal
	if normal.Y() < -0.01 {
		return mgl32.Vec3{}, false
	}

	wishUnit := wishVel.Normalize()
	wishDot := wishUnit.Dot(normal)
	if -wishDot > c.cfg.MaxTacCos {
		// Pushing straight into the wall: no rebound.
		return mgl32.Vec3{}, false
	}

	velDot := math32.Min(c.st.Vel.Dot(normal), 0)
	c.st.Vel = c.st.Vel.Sub(normal.Mul(velDot))

	groundedness := math32.Min(math32.Max(c.st.TacEnergy, velDot), 1)
	c.st.TacEnergy = 0

	flat := fmath.Flatten(normal)
	tacWish := wishUnit.Sub(flat.Mul(math32.Min(wishDot, 0) - 1))
	dir := fmath.NormalizeOrZero(up.Mul(c.cfg.TacJumpFactor).Add(tacWish))
	if dir == (mgl32.Vec3{}) {
		return mgl32.Vec3{}, false
	}
	return dir.Mul(groundedness * c.cfg.TacPower), true
}

// ledgeJumpDir releases a held mantle into a jump. Climbing input pointing
// down turns the release into a plain drop.
func (c *tickCtx) ledgeJumpDir() (mgl32.Vec3, bool) {
	if _, mantling := c.st.Mode.Mantle(); !mantling {
		return mgl32.Vec3{}, false
	}
	// A freshly buffered mantle press means the player is re-grabbing, not
	// releasing.
	if c.in.Mantle.Within(c.cfg.MantleInputBuffer) {
		return mgl32.Vec3{}, false
	}
	if !c.in.Jump.Armed() {
		return mgl32.Vec3{}, false
	}

	flatFwd := fmath.NormalizeOrZero(fmath.Flatten(fmath.Forward(c.st.Orientation)))
	if flatFwd == (mgl32.Vec3{}) {
		return mgl32.Vec3{}, false
	}

	var moveY float32
	if c.in.HasMove {
		moveY = c.in.Move.Y()
	}
	var dir mgl32.Vec3
	if moveY >= 0 {
		dir = fmath.NormalizeOrZero(up.Mul(c.cfg.LedgeJumpFactor).Add(flatFwd))
		if dir == (mgl32.Vec3{}) {
			return mgl32.Vec3{}, false
		}
	} else {
		dir = down
	}
	c.st.Mode = Airborne()
	return dir.Mul(c.cfg.LedgeJumpPower), true
}
