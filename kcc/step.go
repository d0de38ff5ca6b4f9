package kcc

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-cc/stride/fmath"
)

var down = mgl32.Vec3{0, -1, 0}

// stepMove runs the slide twice, once directly and once from StepSize above,
// and keeps whichever attempt travelled further horizontally. The raised
// attempt only counts when it lands on walkable ground and has room for the
// character in front of the step lip.
func (c *tickCtx) stepMove() {
	origPos, origVel := c.st.Pos, c.st.Vel
	origTouching := append([]TouchingEntity(nil), c.touching...)

	c.moveCharacter()
	downPos, downVel := c.st.Pos, c.st.Vel
	downTouching := c.touching

	c.st.Pos, c.st.Vel = origPos, origVel
	c.touching = origTouching

	rise := c.cfg.StepSize
	if hit, blocked := c.castMove(up.Mul(c.cfg.StepSize)); blocked {
		rise = hit.Distance
	}
	c.st.Pos = c.st.Pos.Add(up.Mul(rise))

	if _, blocked := c.castMove(fmath.NormalizeOrZero(c.st.Vel).Mul(c.cfg.MinStepLedgeSpace)); blocked {
		c.st.Pos, c.st.Vel = downPos, downVel
		c.touching = downTouching
		return
	}

	c.moveCharacter()

	hit, landed := c.castMove(down.Mul(c.cfg.StepSize))
	if !landed || hit.Normal.Y() < c.cfg.MinWalkCos {
		c.st.Pos, c.st.Vel = downPos, downVel
		c.touching = downTouching
		return
	}
	c.st.Pos = c.st.Pos.Add(down.Mul(hit.Distance))
	c.depenetrate()

	if fmath.HzDistSqr(downPos, origPos) >= fmath.HzDistSqr(c.st.Pos, origPos) {
		c.st.Pos, c.st.Vel = downPos, downVel
		c.touching = downTouching
		return
	}
	// Stepping must not convert forward momentum into vertical momentum.
	c.st.Vel[1] = downVel.Y()
	c.st.SinceStepUp = 0
}

// snapToGround pulls the character down onto ground within StepSize below,
// so walking off a stair edge follows the steps instead of going ballistic.
// The probe starts from slightly above the current position to stay robust
// against resting exactly on the surface.
func (c *tickCtx) snapToGround() {
	lift := c.cfg.GroundDistance
	if hit, blocked := c.castMove(up.Mul(c.cfg.GroundDistance)); blocked {
		lift = hit.Distance
	}
	start := c.st.Pos.Add(up.Mul(lift))

	origPos := c.st.Pos
	c.st.Pos = start
	hit, found := c.castMove(down.Mul(lift + c.cfg.StepSize))
	c.st.Pos = origPos
	if !found || hit.StartPenetrating {
		return
	}
	if hit.Normal.Y() < c.cfg.MinWalkCos || hit.Distance <= c.cfg.GroundDistance {
		return
	}
	c.st.Pos = start.Add(down.Mul(hit.Distance))
	if origPos.Y()-c.st.Pos.Y() > c.cfg.StepDownDetectionDistance {
		c.st.SinceStepDown = 0
	}
	c.depenetrate()
}
