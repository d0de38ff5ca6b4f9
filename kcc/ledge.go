package kcc

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/stride-cc/stride/fmath"
)

// updateCraneState arms or cancels a vault from a buffered vault press.
// Arming consumes the jump, mantle and tac buffers as well so sharing a key
// binding between them does not double-fire on the same press.
func (c *tickCtx) updateCraneState(wishVel mgl32.Vec3) {
	if !c.in.Crane.Within(c.cfg.CraneInputBuffer) {
		return
	}

	height, ok := c.availableLedgeHeight(wishVel, c.cfg.MinCraneLedgeSpace, c.cfg.MinCraneCos, c.cfg.CraneHeight)
	if !ok {
		if _, vaulting := c.st.Mode.Vault(); vaulting {
			c.st.Mode = Airborne()
		}
		return
	}

	c.in.Crane.Consume()
	c.in.Jump.Consume()
	c.in.Mantle.Consume()
	c.in.Tac.Consume()
	c.st.Mode = Vaulting(height)
}

// availableLedgeHeight probes whether a ledge at most maxHeight above can be
// climbed: a wall facing the wish direction within minDepth, free space above,
// and a walkable landing verified by replaying the full climb. The probe is
// speculative and leaves position and velocity untouched.
func (c *tickCtx) availableLedgeHeight(wishVel mgl32.Vec3, minDepth, minCos, maxHeight float32) (float32, bool) {
	origPos, origVel := c.st.Pos, c.st.Vel

	wishDir := fmath.NormalizeOrZero(wishVel)
	if wishDir == (mgl32.Vec3{}) {
		wishDir = fmath.NormalizeOrZero(fmath.Flatten(c.st.Vel))
	}
	if wishDir == (mgl32.Vec3{}) {
		return 0, false
	}

	c.st.Vel[1] = 0
	c.accelerate(wishVel, c.cfg.AccelerationHz)
	c.st.Vel[1] = 0
	c.st.Vel = c.st.Vel.Add(c.st.PlatformVel)

	wallHit, found := c.castMove(wishDir.Mul(minDepth))
	if !found {
		c.st.Vel = origVel
		return 0, false
	}
	wallNormal := fmath.NormalizeOrZero(fmath.Flatten(wallHit.Normal))
	if wallNormal.Mul(-1).Dot(wishDir) < minCos {
		c.st.Vel = origVel
		return 0, false
	}

	upDist := maxHeight
	if hit, blocked := c.castMove(up.Mul(maxHeight)); blocked {
		upDist = hit.Distance
	}
	c.st.Pos = c.st.Pos.Add(up.Mul(upDist))

	// Move onto the ledge. Penetration is fine here, the ledge may sit below
	// an overhanging wall.
	c.st.Pos = c.st.Pos.Add(wallNormal.Mul(-minDepth))

	downHit, found := c.castMove(down.Mul(upDist))
	if !found {
		c.st.Pos, c.st.Vel = origPos, origVel
		return 0, false
	}
	ledgeHeight := upDist - downHit.Distance

	// Replay the climb from the start to verify the landing.
	c.st.Pos = origPos
	c.st.Pos[1] += ledgeHeight

	if _, blocked := c.castMove(wallNormal.Mul(-minDepth)); blocked {
		c.st.Pos, c.st.Vel = origPos, origVel
		return 0, false
	}
	c.st.Pos = c.st.Pos.Add(wallNormal.Mul(-minDepth))

	hit, landed := c.castMove(down.Mul(ledgeHeight))
	c.st.Pos, c.st.Vel = origPos, origVel

	// A miss means the climb would pass through geometry.
	if !landed || hit.Normal.Y() < c.cfg.MinWalkCos {
		return 0, false
	}
	return ledgeHeight, true
}

// craneStep advances a vault by one tick: climb at CraneSpeed while a wall
// in the wish direction remains, then pull over the lip with the preserved
// horizontal speed.
func (c *tickCtx) craneStep(wishVel mgl32.Vec3) {
	craneHeight, ok := c.st.Mode.Vault()
	if !ok {
		return
	}

	c.st.Vel[1] = 0
	c.accelerate(wishVel, c.cfg.AccelerationHz)
	c.st.Vel[1] = 0
	c.st.Vel = c.st.Vel.Add(c.st.PlatformVel)

	speed := c.st.Vel.Len()
	velDir := fmath.NormalizeOrZero(c.st.Vel)
	if velDir == (mgl32.Vec3{}) {
		c.st.Mode = Airborne()
		c.st.Vel = c.st.Vel.Sub(c.st.PlatformVel)
		return
	}
	wishDir := fmath.NormalizeOrZero(wishVel)
	if wishDir == (mgl32.Vec3{}) {
		wishDir = velDir
	}
	c.st.Vel = c.st.Vel.Sub(c.st.PlatformVel)

	wallHit, found := c.castMove(wishDir.Mul(c.cfg.MinCraneLedgeSpace))
	if !found {
		// Nothing left to climb onto.
		c.st.Mode = Airborne()
		return
	}
	wallNormal := fmath.NormalizeOrZero(fmath.Flatten(wallHit.Normal))
	if wallNormal.Mul(-1).Dot(wishDir) < c.cfg.MinCraneCos {
		c.st.Mode = Airborne()
		return
	}

	castLen := math32.Min(c.cfg.CraneSpeed*c.dt, craneHeight)
	topHit, topBlocked := c.castMove(up.Mul(castLen))
	travel := castLen
	if topBlocked {
		travel = topHit.Distance
	}
	c.st.Pos = c.st.Pos.Add(up.Mul(travel))

	stash := c.st.Vel
	c.st.Vel = c.st.PlatformVel
	c.moveCharacter()
	c.st.Vel = stash

	if topBlocked {
		craneHeight = 0
	} else {
		craneHeight = math32.Max(craneHeight-travel, 0)
	}
	c.st.Mode = Vaulting(craneHeight)
	c.st.SinceStepUp = 0

	if craneHeight != 0 {
		// Mid-climb: if the space ahead cleared early, pull over now.
		if _, blocked := c.castMove(velDir.Mul(c.cfg.MinCraneLedgeSpace)); !blocked {
			c.st.Pos = c.st.Pos.Add(velDir.Mul(speed * c.dt))
			c.depenetrate()
			c.st.Mode = Airborne()
		}
		return
	}

	if _, blocked := c.castMove(velDir.Mul(c.cfg.MinCraneLedgeSpace)); blocked {
		c.st.Mode = Airborne()
		return
	}
	c.st.Pos = c.st.Pos.Add(velDir.Mul(speed * c.dt))
	c.depenetrate()
	c.st.Mode = Airborne()
}

// updateMantleState arms a mantle from a buffered grab press. An active
// vault takes priority and an active mantle is left running.
func (c *tickCtx) updateMantleState(wishVel mgl32.Vec3) {
	if _, vaulting := c.st.Mode.Vault(); vaulting {
		return
	}
	if _, mantling := c.st.Mode.Mantle(); mantling {
		return
	}
	if !c.in.Mantle.Within(c.cfg.MantleInputBuffer) {
		return
	}

	progress, out, ok := c.availableMantleHeight(wishVel)
	if !ok {
		return
	}

	c.in.Crane.Consume()
	c.in.Mantle.Consume()
	c.in.Jump.Consume()
	c.st.Mode = Mantling(progress)
	c.mantleOut = &out
}

// availableMantleHeight probes for a grabbable ledge with the hand collider:
// a wall within MaxLedgeGrabDistance facing the wish direction (or the view
// direction when there is no input), room above it, and a walkable landing
// reachable within MantleHeight. Like the vault probe it is speculative.
func (c *tickCtx) availableMantleHeight(wishVel mgl32.Vec3) (MantleProgress, MantleOutput, bool) {
	origPos, origVel := c.st.Pos, c.st.Vel

	wishDir := fmath.NormalizeOrZero(wishVel)
	if wishDir == (mgl32.Vec3{}) {
		wishDir = fmath.NormalizeOrZero(fmath.Flatten(fmath.Forward(c.st.Orientation)))
	}
	if wishDir == (mgl32.Vec3{}) {
		return MantleProgress{}, MantleOutput{}, false
	}

	c.st.Vel[1] = 0
	c.accelerate(wishVel, c.cfg.AccelerationHz)
	c.st.Vel[1] = 0
	c.st.Vel = c.st.Vel.Add(c.st.PlatformVel)

	wallHit, found := c.castMove(wishDir.Mul(c.cfg.MaxLedgeGrabDistance))
	if !found {
		c.st.Vel = origVel
		return MantleProgress{}, MantleOutput{}, false
	}
	wallNormal := wallHit.Normal
	if wallNormal.Mul(-1).Dot(wishDir) < c.cfg.MinMantleCos {
		c.st.Vel = origVel
		return MantleProgress{}, MantleOutput{}, false
	}

	c.st.Pos = c.st.Pos.Add(wishDir.Mul(wallHit.Distance))
	c.depenetrate()
	wallPos := c.st.Pos

	upDist := c.cfg.MantleHeight
	if hit, blocked := c.castHands(up.Mul(c.cfg.MantleHeight)); blocked {
		upDist = hit.Distance
	}
	c.st.Pos = c.st.Pos.Add(up.Mul(upDist))

	handToWall := c.st.Colliders.Radius(c.st.Crouching) + c.cfg.SkinWidth + c.cfg.MinLedgeGrabSpace.Z()/2
	// Move onto the ledge. Penetration is fine here, the ledge may sit below
	// an overhanging wall.
	c.st.Pos = c.st.Pos.Add(wallNormal.Mul(-handToWall))

	downHit, found := c.castHands(down.Mul(upDist))
	if !found {
		c.st.Pos, c.st.Vel = origPos, origVel
		return MantleProgress{}, MantleOutput{}, false
	}
	ledgeHeight := upDist - downHit.Distance

	// Replay the climb from the wall to verify the landing.
	c.st.Pos = wallPos
	c.st.Pos[1] += ledgeHeight

	if _, blocked := c.castHands(wallNormal.Mul(-handToWall)); blocked {
		c.st.Pos, c.st.Vel = origPos, origVel
		return MantleProgress{}, MantleOutput{}, false
	}
	c.st.Pos = c.st.Pos.Add(wallNormal.Mul(-handToWall))

	hit, landed := c.castHands(down.Mul(ledgeHeight))
	c.st.Pos, c.st.Vel = origPos, origVel

	// A miss means the climb would pass through geometry.
	if !landed || hit.Normal.Y() < c.cfg.MinWalkCos {
		return MantleProgress{}, MantleOutput{}, false
	}

	height := ledgeHeight - c.st.Colliders.PosToHeadDist(c.st.Crouching) + c.cfg.ClimbPullUpHeight
	if height < 0 {
		return MantleProgress{}, MantleOutput{}, false
	}

	progress := MantleProgress{
		HeightLeft: height,
		WallNormal: wallNormal,
		LedgePoint: hit.Point,
		WallEntity: hit.Entity,
	}
	out := MantleOutput{
		WallNormal: wallNormal,
		LedgePoint: hit.Point,
		WallEntity: hit.Entity,
	}
	return progress, out, true
}

// mantleStep advances a hanging climb by one tick. Free movement is
// suppressed entirely; the climb rate follows the view direction through
// climbFactor and the character is kept hanging below the ledge until
// enough height has been climbed off.
func (c *tickCtx) mantleStep(wishVel mgl32.Vec3) {
	progress, ok := c.st.Mode.Mantle()
	if !ok {
		return
	}
	c.st.Mode = Airborne()

	c.st.Vel = mgl32.Vec3{}

	_, wallNormal, found := c.closestWallNormal(c.cfg.MaxLedgeGrabDistance)
	if !found {
		// No wall close enough to hang from.
		return
	}
	hit, found := c.castMove(wallNormal.Mul(-c.cfg.MaxLedgeGrabDistance))
	if !found {
		// The nearest wall slipped out of grab range.
		return
	}

	out := MantleOutput{
		WallNormal: wallNormal,
		LedgePoint: hit.Point,
		WallEntity: hit.Entity,
	}
	c.mantleOut = &out
	if body, okBody := c.platformBody(hit.Entity); okBody {
		c.platformMovement(out.LedgePoint, body)
	}

	wishY := c.climbFactor(wishVel)
	climbDist := math32.Min(c.cfg.MantleSpeed*c.dt*wishY, progress.HeightLeft)
	if progress.HeightLeft-climbDist > c.cfg.MantleHeight-c.cfg.MinLedgeGrabSpace.Y() {
		// Never climb down past where the hands could still reach the ledge.
		climbDist = progress.HeightLeft - c.cfg.MantleHeight + c.cfg.MinLedgeGrabSpace.Y()
	}

	topHit, topBlocked := c.castMove(up.Mul(climbDist))
	travel := math32.Abs(climbDist)
	if topBlocked {
		travel = topHit.Distance
	}
	travel *= fmath.Sign(climbDist)

	c.st.Vel = up.Mul(travel / c.dt).Add(c.st.PlatformVel)
	c.moveCharacter()
	c.st.Vel = c.st.Vel.Sub(c.st.PlatformVel)

	progress.HeightLeft -= travel
	progress.WallNormal = out.WallNormal
	progress.LedgePoint = out.LedgePoint
	progress.WallEntity = out.WallEntity
	if climbDist > 0 {
		c.st.SinceStepUp = 0
	} else {
		c.st.SinceStepDown = 0
	}
	c.st.Mode = Mantling(progress)
}

// climbFactor maps view pitch to a climb rate in [-1, 1]: looking at the
// wall or above it climbs up, looking down climbs down, no movement input
// hangs in place.
func (c *tickCtx) climbFactor(wishVel mgl32.Vec3) float32 {
	if wishVel.LenSqr() < 0.01 {
		return 0
	}
	var moveY float32
	if c.in.HasMove {
		moveY = c.in.Move.Y()
	}
	cos := fmath.Forward(c.st.Orientation).Mul(math32.Abs(moveY)).Y()
	factor := fmath.Clamp((cos+c.cfg.ClimbReverseSin)*c.cfg.ClimbSensitivity, -1, 1)
	if moveY < 0 {
		return -factor
	}
	return factor
}

// closestWallNormal finds the nearest wall surface within dist of the
// character, ignoring floors and ceilings.
func (c *tickCtx) closestWallNormal(dist float32) (mgl32.Vec3, mgl32.Vec3, bool) {
	var (
		bestPoint, bestNormal mgl32.Vec3
		bestPen               float32
		foundWall             bool
	)
	c.sim.Sweeper.Intersections(c.st.ActiveCollider(), c.st.Pos, dist+c.cfg.SkinWidth, c.cfg.Filter, func(_ EntityID, point, normal mgl32.Vec3, penetration float32) bool {
		// Penetration here is the overlap with the grown query box, so the
		// deepest overlap is the wall nearest the character surface.
		if math32.Abs(normal.Y()) < c.cfg.MinWalkCos && (!foundWall || penetration > bestPen) {
			bestPoint, bestNormal, bestPen = point, normal, penetration
			foundWall = true
		}
		return true
	})
	return bestPoint, bestNormal, foundWall
}

// handleClimbDown lets a grounded character back off a ledge into a hanging
// mantle: walking backwards over an edge with the grab input buffered drops
// down the face and regrabs it from below.
func (c *tickCtx) handleClimbDown(wishVel mgl32.Vec3) {
	if c.st.Mode.IsGrounded() {
		return
	}
	if !c.in.HasMove || c.in.Move.Y() >= 0 {
		return
	}
	if !c.in.ClimbDown.Within(c.cfg.MantleInputBuffer) {
		return
	}
	if _, blocked := c.castMove(down.Mul(c.cfg.CraneHeight)); blocked {
		return
	}
	origPos := c.st.Pos
	c.st.Pos = c.st.Pos.Add(down.Mul(c.cfg.CraneHeight))

	progress, out, ok := c.availableMantleHeight(wishVel.Mul(-1))
	if !ok {
		c.st.Pos = origPos
		return
	}

	c.in.Crane.Consume()
	c.in.Mantle.Consume()
	c.in.Jump.Consume()
	c.in.ClimbDown.Consume()
	c.st.Mode = Mantling(progress)
	c.mantleOut = &out
}
