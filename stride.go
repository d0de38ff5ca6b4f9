// Package stride wraps the character controller into a ready-to-tick
// character: configuration, state, input accumulation and the simulator
// behind one handle.
package stride

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-cc/stride/kcc"
)

// Character is one simulated character. It is not safe for concurrent use;
// tick each character from a single goroutine.
type Character struct {
	Config *kcc.Config
	State  *kcc.State
	Input  *kcc.InputState

	sim *kcc.Simulator
}

// NewCharacter creates a character standing at pos.
func NewCharacter(sim *kcc.Simulator, cfg *kcc.Config, pos mgl32.Vec3) *Character {
	st := kcc.NewState(pos, kcc.DeriveColliders(cfg))
	return &Character{
		Config: cfg,
		State:  st,
		Input:  &kcc.InputState{},
		sim:    sim,
	}
}

// NewSimulator builds a simulator where one service object provides sweeps,
// bodies and water, the common case.
func NewSimulator[S interface {
	kcc.Sweeper
	kcc.BodyProvider
	kcc.WaterProvider
}](svc S, log *slog.Logger) *kcc.Simulator {
	return &kcc.Simulator{Sweeper: svc, Bodies: svc, Water: svc, Log: log}
}

// Tick advances the character by dt and clears the transient input fields so
// the next accumulation window starts fresh.
func (c *Character) Tick(dt float32) kcc.TickResult {
	res := c.sim.Simulate(c.Config, c.State, c.Input, dt)
	c.Input.ClearTransient()
	return res
}

// LinkCamera makes the character take its wish direction from cam instead of
// its own rotation.
func (c *Character) LinkCamera(cam kcc.OrientationSource) {
	c.State.Camera = cam
}

// EyePosition returns the camera anchor for the current stance.
func (c *Character) EyePosition() mgl32.Vec3 {
	h := c.Config.StandingViewHeight
	if c.State.Crouching {
		h = c.Config.CrouchViewHeight
	}
	return c.State.Pos.Add(mgl32.Vec3{0, h, 0})
}
