package kcc

import (
	"github.com/go-gl/mathgl/mgl32"
)

// handleCrouch applies the crouch input. Standing back up only happens when
// the full standing collider fits; otherwise the character stays crouched
// until there is headroom.
func (c *tickCtx) handleCrouch() {
	if c.in.CrouchHeld {
		c.st.Crouching = true
		return
	}
	if !c.st.Crouching {
		return
	}
	c.st.Crouching = false
	if c.isIntersecting() {
		c.st.Crouching = true
	}
}

// isIntersecting reports whether the active collider overlaps any solid
// geometry. No skin width is added: with it, standing up would fail whenever
// the character rests closer than skin width to the ground, which is the
// normal case under a slope.
func (c *tickCtx) isIntersecting() bool {
	intersecting := false
	c.sim.Sweeper.Intersections(c.st.ActiveCollider(), c.st.Pos, 0, c.cfg.Filter, func(_ EntityID, _, _ mgl32.Vec3, _ float32) bool {
		intersecting = true
		return false
	})
	return intersecting
}
