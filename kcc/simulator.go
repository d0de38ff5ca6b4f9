// Package kcc implements a kinematic character-movement controller: one fixed
// simulation step takes an input snapshot and a collision world and produces
// the character's new position, velocity and surface-contact state.
//
// The controller is built purely from discrete collision-sweep primitives
// supplied by a Sweeper; it owns no geometry of its own and never mutates
// other bodies.
package kcc

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
)

// Simulator orchestrates per-tick character movement using the provided
// services. All fields except Sweeper are optional.
type Simulator struct {
	Sweeper Sweeper
	Bodies  BodyProvider
	Water   WaterProvider
	Log     *slog.Logger
}

// tickCtx bundles everything a single simulation tick operates on.
type tickCtx struct {
	sim *Simulator
	cfg *Config
	st  *State
	in  *InputState
	dt  float32

	water WaterState

	touching  []TouchingEntity
	mantleOut *MantleOutput
}

func (c *tickCtx) castMove(delta mgl32.Vec3) (Hit, bool) {
	return c.sim.Sweeper.CastMove(c.st.ActiveCollider(), c.st.Pos, delta, c.cfg.SkinWidth, c.cfg.Filter)
}

func (c *tickCtx) castHands(delta mgl32.Vec3) (Hit, bool) {
	return c.sim.Sweeper.CastMove(c.st.Colliders.Hand, c.st.Pos, delta, c.cfg.SkinWidth, c.cfg.Filter)
}

func (c *tickCtx) depenetrate() {
	offset := c.sim.Sweeper.Depenetrate(c.st.ActiveCollider(), c.st.Pos, c.cfg.SkinWidth, c.cfg.Filter)
	c.st.Pos = c.st.Pos.Add(offset)
}

func (c *tickCtx) platformBody(id EntityID) (PlatformBody, bool) {
	if c.sim.Bodies == nil || id == 0 {
		return PlatformBody{}, false
	}
	return c.sim.Bodies.PlatformBody(id)
}

func (c *tickCtx) result() TickResult {
	r := TickResult{
		Position: c.st.Pos,
		Velocity: c.st.Vel,
		Mode:     c.st.Mode.Kind(),
		Touching: c.touching,
		Mantle:   c.mantleOut,
	}
	if ground, ok := c.st.Mode.Ground(); ok {
		r.Grounded = true
		r.GroundEntity = ground.Entity
	}
	return r
}
