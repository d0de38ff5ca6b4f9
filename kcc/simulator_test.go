package kcc_test

import (
	"math"
	"testing"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-cc/stride/kcc"
	"github.com/stride-cc/stride/sweep"
)

const dt = float32(1) / 64

type rig struct {
	world *sweep.World
	sim   *kcc.Simulator
	cfg   kcc.Config
	st    *kcc.State
	in    *kcc.InputState
}

func newRig(pos mgl32.Vec3) *rig {
	w := sweep.NewWorld()
	cfg := kcc.DefaultConfig()
	return &rig{
		world: w,
		sim:   &kcc.Simulator{Sweeper: w, Bodies: w, Water: w},
		cfg:   cfg,
		st:    kcc.NewState(pos, kcc.DeriveColliders(&cfg)),
		in:    &kcc.InputState{},
	}
}

func (r *rig) floor() kcc.EntityID {
	return r.world.AddBox(cube.Box(-50, -1, -50, 50, 0, 50), 1)
}

func (r *rig) tick() kcc.TickResult {
	return r.sim.Simulate(&r.cfg, r.st, r.in, dt)
}

func (r *rig) run(n int) kcc.TickResult {
	var res kcc.TickResult
	for i := 0; i < n; i++ {
		res = r.tick()
	}
	return res
}

func TestFallAndLand(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 1, 0})
	r.floor()

	first := r.tick()
	if first.Grounded {
		t.Fatal("should still be falling")
	}
	if first.Velocity.Y() >= 0 {
		t.Fatalf("expected gravity to apply, got %v", first.Velocity)
	}

	res := r.run(128)
	if !res.Grounded {
		t.Fatal("expected to land within two seconds")
	}
	if res.Velocity.Y() != 0 {
		t.Fatalf("grounded vertical velocity should match the static floor, got %v", res.Velocity)
	}
	if res.Position.Y() > 0.05 || res.Position.Y() < -0.01 {
		t.Fatalf("expected to rest on the floor, got y=%v", res.Position.Y())
	}
}

func TestRestStaysPut(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 0, 0})
	r.floor()

	start := r.tick().Position
	res := r.run(64)
	if d := res.Position.Sub(start).Len(); d > 0.01 {
		t.Fatalf("drifted %v while idle", d)
	}
}

func TestGroundAcceleration(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 0, 0})
	r.floor()
	r.in.HasMove = true
	r.in.Move = mgl32.Vec2{0, 1}

	var last float32
	for i := 0; i < 32; i++ {
		res := r.tick()
		speed := mgl32.Vec2{res.Velocity.X(), res.Velocity.Z()}.Len()
		if speed < last-1e-4 {
			t.Fatalf("speed not monotone while accelerating: %v after %v", speed, last)
		}
		last = speed
	}
	if last < 1 {
		t.Fatalf("expected to pick up speed, got %v", last)
	}
	res := r.run(128)
	speed := mgl32.Vec2{res.Velocity.X(), res.Velocity.Z()}.Len()
	if speed > r.cfg.Speed+0.1 {
		t.Fatalf("input alone should not exceed the wish speed, got %v", speed)
	}
	// Default orientation looks down -z, so forward input moves -z.
	if res.Position.Z() >= 0 {
		t.Fatalf("expected forward travel, got %v", res.Position)
	}
}

func TestJumpImpulse(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 0, 0})
	r.floor()
	r.run(4)

	r.in.Jump.Press()
	res := r.tick()
	if res.Grounded {
		t.Fatal("expected to leave the ground")
	}
	want := float32(math.Sqrt(float64(2 * r.cfg.Gravity * r.cfg.JumpHeight)))
	if res.Velocity.Y() < want-1 || res.Velocity.Y() > want {
		t.Fatalf("expected takeoff speed near %v, got %v", want, res.Velocity.Y())
	}

	// The press is consumed: falling back down must not jump again.
	land := r.run(256)
	if !land.Grounded {
		t.Fatal("expected to land again")
	}
}

func TestCoyoteJump(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 0.3, 0})
	r.floor()
	r.st.SinceGrounded = 0.05

	r.in.Jump.Press()
	res := r.tick()
	if res.Velocity.Y() <= 0 {
		t.Fatalf("expected a coyote jump, got %v", res.Velocity)
	}
}

func TestNoAirJumpPastCoyote(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 10, 0})
	r.floor()

	r.in.Jump.Press()
	res := r.tick()
	if res.Velocity.Y() > 0 {
		t.Fatalf("mid-air jump should be denied, got %v", res.Velocity)
	}
	if !r.in.Jump.Armed() {
		t.Fatal("denied jump should stay buffered")
	}
}

func TestJumpBufferExpires(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 20, 0})
	r.floor()

	r.in.Jump.Press()
	r.run(32) // half a second, well past the buffer window
	if r.in.Jump.Within(r.cfg.JumpInputBuffer) {
		t.Fatal("buffer should have expired")
	}
}

func TestStepUpPreservesSpeed(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 0, 0})
	r.floor()
	// Long riser in the walking path, low enough to step onto.
	r.world.AddBox(cube.Box(-2, 0, -50, 2, 0.4, -3), 1)

	r.in.HasMove = true
	r.in.Move = mgl32.Vec2{0, 1}
	res := r.run(96)

	if !res.Grounded {
		t.Fatal("expected to stay grounded over the step")
	}
	if res.Position.Y() < 0.3 {
		t.Fatalf("expected to be standing on the riser, got y=%v", res.Position.Y())
	}
	if res.Position.Z() > -3 {
		t.Fatalf("expected to keep moving past the step, got %v", res.Position)
	}
}

func TestTallWallBlocks(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 0, 0})
	r.floor()
	r.world.AddBox(cube.Box(-5, 0, -5, 5, 3, -4), 1)

	r.in.HasMove = true
	r.in.Move = mgl32.Vec2{0, 1}
	res := r.run(96)

	if res.Position.Z() < -4 {
		t.Fatalf("walked through the wall: %v", res.Position)
	}
	if res.Position.Y() > 0.5 {
		t.Fatalf("climbed a wall three times the step size: %v", res.Position)
	}
}

func TestWallContactReported(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 0, 0})
	r.floor()
	wall := r.world.AddBox(cube.Box(-5, 0, -5, 5, 3, -4), 1)

	r.in.HasMove = true
	r.in.Move = mgl32.Vec2{0, 1}

	var contact *kcc.TouchingEntity
	for i := 0; i < 96 && contact == nil; i++ {
		res := r.tick()
		for j := range res.Touching {
			if res.Touching[j].Entity == wall {
				contact = &res.Touching[j]
			}
		}
	}
	if contact == nil {
		t.Fatal("never touched the wall")
	}
	if contact.Normal.Z() < 0.9 {
		t.Fatalf("wall normal should face the character, got %v", contact.Normal)
	}
	if contact.CharacterVel.Z() >= 0 {
		t.Fatalf("contact velocity should point into the wall, got %v", contact.CharacterVel)
	}
	if contact.Point.Z() > -3.9 || contact.Point.Z() < -4.1 {
		t.Fatalf("contact point should sit on the wall face, got %v", contact.Point)
	}
}

func TestCrouchShrinksAndBlockedStandStaysCrouched(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 0, 0})
	r.floor()

	r.in.CrouchHeld = true
	r.tick()
	if !r.st.Crouching {
		t.Fatal("expected to crouch")
	}

	// Ceiling leaves room for the crouch height only.
	r.world.AddBox(cube.Box(-5, 1.4, -5, 5, 2, 5), 1)
	r.in.CrouchHeld = false
	r.tick()
	if !r.st.Crouching {
		t.Fatal("must stay crouched under a low ceiling")
	}
}

func TestCrouchStandsBackUp(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 0, 0})
	r.floor()

	r.in.CrouchHeld = true
	r.tick()
	r.in.CrouchHeld = false
	r.tick()
	if r.st.Crouching {
		t.Fatal("expected to stand with free headroom")
	}
}

func TestVaultStartsOnLowWall(t *testing.T) {
	r := newRig(mgl32.Vec3{0.58, 0, 0})
	r.floor()
	r.world.AddBox(cube.Box(1, 0, -4, 30, 1.2, 4), 1)

	r.in.HasMove = true
	r.in.Move = mgl32.Vec2{1, 0} // strafe right, towards +x
	r.in.Crane.Press()
	res := r.tick()
	if res.Mode != kcc.ModeVaulting {
		t.Fatalf("expected a vault to start, got mode %v", res.Mode)
	}
	if r.in.Crane.Armed() {
		t.Fatal("vault press should be consumed")
	}
	vault := r.run(96)
	if vault.Mode == kcc.ModeVaulting {
		t.Fatal("vault should complete in under 1.5 seconds")
	}
	if vault.Position.Y() < 1 {
		t.Fatalf("expected to end on top of the wall, got %v", vault.Position)
	}
}

func TestVaultDeniedWithoutWall(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 0, 0})
	r.floor()

	r.in.HasMove = true
	r.in.Move = mgl32.Vec2{1, 0}
	r.in.Crane.Press()
	res := r.tick()
	if res.Mode == kcc.ModeVaulting {
		t.Fatal("vault should require a wall")
	}
}

func TestMantleGrabsTallWall(t *testing.T) {
	r := newRig(mgl32.Vec3{0.58, 0, 0})
	r.floor()
	r.world.AddBox(cube.Box(1, 0, -4, 3, 2, 4), 1)

	r.in.HasMove = true
	r.in.Move = mgl32.Vec2{1, 0}
	r.in.Mantle.Press()
	res := r.tick()
	if res.Mode != kcc.ModeMantling {
		t.Fatalf("expected a mantle to start, got mode %v", res.Mode)
	}
	if res.Mantle == nil {
		t.Fatal("expected mantle output")
	}
	if res.Mantle.WallNormal.X() >= 0 {
		t.Fatalf("expected the wall to face -x, got %v", res.Mantle.WallNormal)
	}

	// Hanging without input holds position, no free fall.
	r.in.HasMove = false
	before := r.st.Pos
	hang := r.run(16)
	if hang.Mode != kcc.ModeMantling {
		t.Fatalf("expected to keep hanging, got mode %v", hang.Mode)
	}
	if d := hang.Position.Sub(before).Len(); d > 0.1 {
		t.Fatalf("hanging character moved %v", d)
	}
}

func TestModesMutuallyExclusive(t *testing.T) {
	r := newRig(mgl32.Vec3{0.58, 0, 0})
	r.floor()
	r.world.AddBox(cube.Box(1, 0, -4, 2, 1.2, 4), 1)

	r.in.HasMove = true
	r.in.Move = mgl32.Vec2{1, 0}
	r.in.Crane.Press()
	r.in.Mantle.Press()
	res := r.tick()
	if res.Mode != kcc.ModeVaulting {
		t.Fatalf("vault should win over mantle on the same press, got %v", res.Mode)
	}
}

func TestTacWallJump(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 5, 0})
	r.floor()
	r.world.AddBox(cube.Box(0.45, 0, -5, 2, 10, 5), 1)

	r.st.SetVel(mgl32.Vec3{3, 0, 0})
	r.st.TacEnergy = 0.9
	r.in.HasMove = true
	r.in.Move = mgl32.Vec2{0.4, 0.9}
	r.in.Tac.Press()

	res := r.tick()
	if res.Velocity.Y() <= 0 {
		t.Fatalf("expected an upward rebound, got %v", res.Velocity)
	}
	if res.Velocity.X() > 0 {
		t.Fatalf("into-wall velocity should be cancelled, got %v", res.Velocity)
	}
}

func TestTacRejectsHeadOnWish(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 5, 0})
	r.floor()
	r.world.AddBox(cube.Box(0.45, 0, -5, 2, 10, 5), 1)

	r.st.SetVel(mgl32.Vec3{3, 0, 0})
	r.st.TacEnergy = 0.9
	r.in.HasMove = true
	r.in.Move = mgl32.Vec2{1, 0} // pushing straight into the wall
	r.in.Tac.Press()

	res := r.tick()
	if res.Velocity.Y() > 0 {
		t.Fatalf("head-on tac should be rejected, got %v", res.Velocity)
	}
}

func TestSwimCountersGravity(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 0, 0})
	r.floor()
	r.world.AddWater(cube.Box(-5, 0, -5, 5, 3, 5), 6)

	r.in.SwimUp = true
	res := r.tick()
	if res.Grounded {
		t.Fatal("submerged characters are never grounded")
	}
	if res.Velocity.Y() <= 0 {
		t.Fatalf("expected to paddle upwards, got %v", res.Velocity)
	}
}

func TestSinkWithoutInput(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 4, 0})
	r.world.AddWater(cube.Box(-5, 0, -5, 5, 8, 5), 6)

	res := r.run(32)
	if res.Velocity.Y() >= 0 {
		t.Fatalf("expected a slow sink, got %v", res.Velocity)
	}
	if res.Velocity.Y() < -r.cfg.WaterGravity {
		t.Fatalf("sinking should be capped near the water gravity, got %v", res.Velocity.Y())
	}
}

func TestPlatformCarriesRider(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 0.5, 0})
	r.world.AddBody(sweep.Body{
		Box:    cube.Box(-3, -1, -3, 3, 0, 3),
		LinVel: mgl32.Vec3{1, 0, 0},
	})

	r.run(24) // settle onto the platform
	startX := r.st.Pos.X()
	res := r.run(64)
	if !res.Grounded {
		t.Fatal("expected to ride the platform")
	}
	carried := res.Position.X() - startX
	if carried < 0.5 {
		t.Fatalf("expected to be carried roughly a meter, got %v", carried)
	}
}

func TestVelocityValidation(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 5, 0})
	r.floor()

	r.st.SetVel(mgl32.Vec3{float32(math.NaN()), 0, 0})
	res := r.tick()
	for i := 0; i < 3; i++ {
		if math.IsNaN(float64(res.Velocity[i])) {
			t.Fatalf("NaN survived validation: %v", res.Velocity)
		}
	}

	r.st.SetVel(mgl32.Vec3{1000, 0, 0})
	res = r.tick()
	if res.Velocity.Len() > r.cfg.MaxSpeed+0.01 {
		t.Fatalf("speed cap not applied: %v", res.Velocity)
	}
}

func TestSpeedCapHoldsAfterGravity(t *testing.T) {
	r := newRig(mgl32.Vec3{0, 50, 0})

	r.st.SetVel(mgl32.Vec3{0, -r.cfg.MaxSpeed, 0})
	res := r.tick()
	if res.Velocity.Len() > r.cfg.MaxSpeed {
		t.Fatalf("committed speed %v exceeds cap %v", res.Velocity.Len(), r.cfg.MaxSpeed)
	}
}

func TestDeterministicChecksums(t *testing.T) {
	build := func() *rig {
		r := newRig(mgl32.Vec3{0, 2, 0})
		r.floor()
		r.world.AddBox(cube.Box(-2, 0, -6, 2, 0.4, -3), 1)
		r.in.HasMove = true
		r.in.Move = mgl32.Vec2{0, 1}
		return r
	}
	a, b := build(), build()
	for i := 0; i < 128; i++ {
		if i == 40 {
			a.in.Jump.Press()
			b.in.Jump.Press()
		}
		ra, rb := a.tick(), b.tick()
		if ra.Checksum() != rb.Checksum() {
			t.Fatalf("checksums diverged at tick %d: %v vs %v", i, ra.Position, rb.Position)
		}
	}
}
