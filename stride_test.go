package stride

import (
	"testing"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-cc/stride/kcc"
	"github.com/stride-cc/stride/sweep"
)

type fixedCamera struct {
	q mgl32.Quat
}

func (c fixedCamera) Orientation() mgl32.Quat {
	return c.q
}

func newTickedCharacter(t *testing.T) (*sweep.World, *Character) {
	t.Helper()
	w := sweep.NewWorld()
	w.AddBox(cube.Box(-20, -1, -20, 20, 0, 20), 1)
	cfg := kcc.DefaultConfig()
	return w, NewCharacter(NewSimulator(w, nil), &cfg, mgl32.Vec3{0, 0.5, 0})
}

func TestCharacterWalks(t *testing.T) {
	_, ch := newTickedCharacter(t)

	var res kcc.TickResult
	for i := 0; i < 64; i++ {
		ch.Input.HasMove = true
		ch.Input.Move = mgl32.Vec2{0, 1}
		res = ch.Tick(1.0 / 64)
	}
	if !res.Grounded {
		t.Fatal("expected to be walking on the floor")
	}
	if res.Position.Z() >= -1 {
		t.Fatalf("expected a second of forward travel, got %v", res.Position)
	}
	if ch.Input.HasMove {
		t.Fatal("transient input must be cleared after each tick")
	}
}

func TestCameraSteersWishDirection(t *testing.T) {
	_, ch := newTickedCharacter(t)
	// Look down -x instead of -z.
	ch.LinkCamera(fixedCamera{q: mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})})

	var res kcc.TickResult
	for i := 0; i < 64; i++ {
		ch.Input.HasMove = true
		ch.Input.Move = mgl32.Vec2{0, 1}
		res = ch.Tick(1.0 / 64)
	}
	if res.Position.X() >= -1 {
		t.Fatalf("expected travel along the camera forward, got %v", res.Position)
	}
	if res.Position.Z() < -1 || res.Position.Z() > 1 {
		t.Fatalf("expected no travel along -z, got %v", res.Position)
	}
}

func TestEyePositionFollowsStance(t *testing.T) {
	_, ch := newTickedCharacter(t)
	for i := 0; i < 16; i++ {
		ch.Tick(1.0 / 64)
	}

	standing := ch.EyePosition().Y() - ch.State.Pos.Y()
	if standing != ch.Config.StandingViewHeight {
		t.Fatalf("standing eye height %v, want %v", standing, ch.Config.StandingViewHeight)
	}

	ch.Input.CrouchHeld = true
	ch.Tick(1.0 / 64)
	crouched := ch.EyePosition().Y() - ch.State.Pos.Y()
	if crouched != ch.Config.CrouchViewHeight {
		t.Fatalf("crouched eye height %v, want %v", crouched, ch.Config.CrouchViewHeight)
	}
}
