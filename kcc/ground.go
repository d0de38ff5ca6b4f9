package kcc

import (
	"github.com/go-gl/mathgl/mgl32"
)

// updateGrounded reclassifies ground contact from a short downward probe.
// Being submerged past the feet or moving upward faster than UngroundSpeed
// always ungrounds; while grounded the upward speed is measured relative to
// the platform so riding an elevator does not count as launching off it.
func (c *tickCtx) updateGrounded() {
	if c.water.Level > WaterFeet {
		c.setGrounded(nil)
		return
	}

	upSpeed := c.st.Vel.Y()
	if c.st.Mode.IsGrounded() {
		upSpeed -= c.st.PlatformVel.Y()
	}
	if upSpeed > c.cfg.UngroundSpeed {
		c.setGrounded(nil)
		return
	}

	probe := c.cfg.GroundDistance
	if sink := -c.st.PlatformVel.Y() * c.dt; c.st.Mode.IsGrounded() && sink > 0 {
		// Chase a descending platform for one tick's worth of travel.
		probe += sink
	}

	hit, found := c.castMove(down.Mul(probe))
	if found && hit.Normal.Y() >= c.cfg.MinWalkCos {
		c.setGrounded(&hit)
		return
	}
	c.setGrounded(nil)
}

// setGrounded applies a ground transition. Gaining ground cancels any climb
// in progress and zeroes vertical velocity; losing ground while vaulting or
// mantling leaves that mode untouched. In both directions the platform
// velocity is resampled from the body being stood on or stepped off, so the
// momentum carried into the air is the platform's current one.
func (c *tickCtx) setGrounded(ground *Hit) {
	old, wasGrounded := c.st.Mode.Ground()

	if ground != nil {
		if body, found := c.platformBody(ground.Entity); found {
			c.platformMovement(ground.Point, body)
		}
		c.st.Mode = GroundedOn(*ground)
		c.st.Vel[1] = 0
		return
	}

	if !wasGrounded {
		return
	}
	if body, found := c.platformBody(old.Entity); found {
		c.platformMovement(old.Point, body)
	}
	c.st.Mode = Airborne()
}

// platformMovement derives the carried velocity from a body's motion at the
// character's standing point. The lever arm is taken at the character's
// horizontal position projected to the contact height, which keeps spinning
// carousels from flinging riders standing near their centre.
func (c *tickCtx) platformMovement(contact mgl32.Vec3, body PlatformBody) {
	touch := c.st.Pos
	touch[1] = contact.Y()
	r := touch.Sub(body.Center)
	c.st.PlatformVel = body.LinVel.Add(body.AngVel.Cross(r))
	c.st.PlatformAngVel = body.AngVel
}
