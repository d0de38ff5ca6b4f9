package kcc

import "github.com/go-gl/mathgl/mgl32"

// Trigger is a buffered single-shot input. It keeps its age since the press so
// the simulator can honor it within a configured buffer window, and is
// consumed at most once.
type Trigger struct {
	age   float32
	armed bool
}

// Press arms the trigger and resets its age.
func (t *Trigger) Press() {
	t.armed = true
	t.age = 0
}

// Tick advances the trigger's age by dt seconds.
func (t *Trigger) Tick(dt float32) {
	if t.armed {
		t.age += dt
	}
}

// Armed reports whether the trigger is still pending.
func (t *Trigger) Armed() bool {
	return t.armed
}

// Within reports whether the trigger is pending and no older than window.
func (t *Trigger) Within(window float32) bool {
	return t.armed && t.age <= window
}

// Consume disarms the trigger.
func (t *Trigger) Consume() {
	t.armed = false
}

// AgeTo advances the trigger's age to at least age, shrinking the remaining
// buffer window without consuming the trigger.
func (t *Trigger) AgeTo(age float32) {
	if t.armed && t.age < age {
		t.age = age
	}
}

// InputState is the per-tick input snapshot consumed by the simulator. The
// input-accumulation collaborator owns it: movement and held flags are
// re-latched every tick, buffered triggers persist until consumed or expired.
type InputState struct {
	// Move is the last non-zero movement input, x right and y forward,
	// normalized by the accumulator. HasMove is false when no movement input
	// arrived since the last tick.
	Move    mgl32.Vec2
	HasMove bool

	Jump      Trigger
	Tac       Trigger
	Mantle    Trigger
	Crane     Trigger
	ClimbDown Trigger

	CrouchHeld bool
	SwimUp     bool
}

// ClearTransient resets the per-tick latched values, leaving buffered
// triggers pending. The accumulation collaborator calls this once per tick.
func (in *InputState) ClearTransient() {
	in.Move = mgl32.Vec2{}
	in.HasMove = false
	in.CrouchHeld = false
	in.SwimUp = false
}

func (in *InputState) tick(dt float32) {
	in.Jump.Tick(dt)
	in.Tac.Tick(dt)
	in.Mantle.Tick(dt)
	in.Crane.Tick(dt)
	in.ClimbDown.Tick(dt)
}
