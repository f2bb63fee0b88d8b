package world

import "math"

// AdvanceNav advances one player's navigation state machine by one tick.
// It is pure with respect to everything except the player itself and the
// (read-only) lookup of a chase target; callers hold the world lock.
func AdvanceNav(gs *GameState, p *Player) {
	switch p.NavState {
	case NavIdle:
		// nothing to do
	case NavAlign:
		advanceAlign(p, NavWarp)
	case NavAlignImpulse:
		advanceAlign(p, NavImpulse)
	case NavWarp:
		advanceWarp(p)
	case NavRealign:
		advanceRealign(p)
	case NavImpulse:
		advanceImpulse(p)
	case NavChase:
		advanceChase(gs, p)
	case NavWormhole:
		advanceWormhole(p)
	}
}

// advanceAlign linearly interpolates heading/mark toward the target over
// AlignTicks, then hands off to nextState (WARP for a plain nav, IMPULSE
// for an impulse-preceded align).
func advanceAlign(p *Player, nextState NavState) {
	if p.NavTimer <= 0 {
		p.NavTimer = AlignTicks
	}
	t := 1 - float64(p.NavTimer)/float64(AlignTicks)
	p.Heading = p.StartHeading + (p.TargetHeading-p.StartHeading)*t
	p.Mark = p.StartMark + (p.TargetMark-p.StartMark)*t
	p.NavTimer--
	if p.NavTimer <= 0 {
		p.Heading, p.Mark = p.TargetHeading, p.TargetMark
		p.Dir = UnitVector3(p.Heading, p.Mark)
		if nextState == NavWarp {
			dist := Distance3(p.Pos, p.TargetPos)
			timer := int(math.Round(dist / 10 * 90))
			if timer < 30 {
				timer = 30
			}
			p.NavTimer = timer
			p.WarpSpeed = dist / float64(timer)
			p.NavState = NavWarp
		} else {
			p.NavState = NavImpulse
		}
	}
}

func advanceWarp(p *Player) {
	p.Pos.X += p.Dir.X * p.WarpSpeed
	p.Pos.Y += p.Dir.Y * p.WarpSpeed
	p.Pos.Z += p.Dir.Z * p.WarpSpeed
	recomputeQuadSec(p)
	p.NavTimer--
	if p.NavTimer <= 0 {
		p.StartHeading, p.StartMark = p.Heading, p.Mark
		p.TargetHeading, p.TargetMark = p.Heading, 0
		p.NavTimer = RealignTicks
		p.NavState = NavRealign
	}
}

func advanceRealign(p *Player) {
	if p.NavTimer <= 0 {
		p.NavTimer = RealignTicks
	}
	t := 1 - float64(p.NavTimer)/float64(RealignTicks)
	p.Mark = p.StartMark * (1 - t)
	p.NavTimer--
	if p.NavTimer <= 0 {
		p.Mark = 0
		p.WarpSpeed = 0
		p.NavState = NavIdle
	}
}

func advanceImpulse(p *Player) {
	if p.Energy <= 0 {
		p.NavState = NavIdle
		return
	}
	p.Energy--
	p.Pos.X += p.Dir.X * p.WarpSpeed * 10
	p.Pos.Y += p.Dir.Y * p.WarpSpeed * 10
	p.Pos.Z += p.Dir.Z * p.WarpSpeed * 10
	recomputeQuadSec(p)
}

// advanceChase drives predictive pursuit of a locked target: a 15%-per-
// tick heading correction toward the target and a speed blend toward
// closing the approach distance.
func advanceChase(gs *GameState, p *Player) {
	targetPos, targetSpeed, ok := resolveChaseTarget(gs, p.ChaseTarget)
	if !ok {
		p.NavState = NavIdle
		return
	}

	dx := targetPos.X - p.Pos.X
	dy := targetPos.Y - p.Pos.Y
	dz := targetPos.Z - p.Pos.Z
	dist := math.Sqrt(dx*dx + dy*dy + dz*dz)

	desiredHeading := math.Atan2(dy, dx) * 180 / math.Pi
	desiredMark := math.Atan2(dz, math.Sqrt(dx*dx+dy*dy)) * 180 / math.Pi
	for desiredHeading < 0 {
		desiredHeading += 360
	}

	p.Heading = turnToward(p.Heading, desiredHeading, 0.15)
	p.Mark = p.Mark + (desiredMark-p.Mark)*0.15
	p.Heading, p.Mark = NormalizeHeadingMark(p.Heading, p.Mark)
	p.Dir = UnitVector3(p.Heading, p.Mark)

	base := 0.8
	if dist <= 10 {
		base = 0.4
	}
	desiredSpeed := (dist-p.ApproachDist)*base + targetSpeed
	desiredSpeed = clampf(desiredSpeed, -0.1, 0.8)
	p.WarpSpeed = p.WarpSpeed*0.3 + desiredSpeed*0.7

	p.Pos.X += p.Dir.X * p.WarpSpeed
	p.Pos.Y += p.Dir.Y * p.WarpSpeed
	p.Pos.Z += p.Dir.Z * p.WarpSpeed
	recomputeQuadSec(p)

	drain := 10 + 20*math.Abs(p.WarpSpeed)
	p.Energy -= int(math.Round(drain))
	if p.Energy <= 5000 {
		p.NavState = NavIdle
	}
}

// turnToward moves `from` toward `to` by fraction of the shortest angular
// distance between them, both in degrees.
func turnToward(from, to, fraction float64) float64 {
	diff := to - from
	for diff > 180 {
		diff -= 360
	}
	for diff < -180 {
		diff += 360
	}
	return from + diff*fraction
}

// resolveChaseTarget looks up a chase target's position and speed by
// universal id; players, NPCs, and comets are valid chase targets.
func resolveChaseTarget(gs *GameState, target int) (Point3, float64, bool) {
	class, slot := ResolveUniversalID(target)
	switch class {
	case ClassPlayer:
		if slot < 0 || slot >= MaxPlayers {
			return Point3{}, 0, false
		}
		tp := gs.Players[slot]
		if !tp.Active {
			return Point3{}, 0, false
		}
		return tp.Pos, tp.WarpSpeed, true
	case ClassNPC:
		if slot < 0 || slot >= MaxNPCShips {
			return Point3{}, 0, false
		}
		tn := gs.NPCs[slot]
		if !tn.Active {
			return Point3{}, 0, false
		}
		return tn.Pos, 0, true
	case ClassComet:
		if slot < 0 || slot >= MaxComets {
			return Point3{}, 0, false
		}
		tc := gs.Comets[slot]
		if !tc.Active {
			return Point3{}, 0, false
		}
		return tc.Pos, tc.OrbitSpeed, true
	default:
		return Point3{}, 0, false
	}
}

func advanceWormhole(p *Player) {
	if p.NavTimer > WormholeFinalApproach {
		p.NavTimer--
		return
	}
	t := 1 - float64(p.NavTimer)/float64(WormholeFinalApproach)
	p.Pos.X += (p.Wormhole.Mouth.X - p.Pos.X) * t * 0.2
	p.Pos.Y += (p.Wormhole.Mouth.Y - p.Pos.Y) * t * 0.2
	p.Pos.Z += (p.Wormhole.Mouth.Z - p.Pos.Z) * t * 0.2
	recomputeQuadSec(p)
	p.NavTimer--
	if p.NavTimer <= 0 {
		p.Pos = p.Wormhole.Target
		recomputeQuadSec(p)
		p.Effects.Wormhole.Active = false
		p.Effects.JumpArrival.Active = true
		p.Effects.JumpArrival.X, p.Effects.JumpArrival.Y, p.Effects.JumpArrival.Z = p.Sec.S1, p.Sec.S2, p.Sec.S3
		p.NavState = NavIdle
	}
}

// recomputeQuadSec re-derives (quadrant, sector) from the authoritative
// absolute position, applying the Galactic Barrier clamp. If clamping
// occurs while in a moving nav-state, the ship is forced to idle with
// zero warp speed.
func recomputeQuadSec(p *Player) {
	var clamped bool
	var c bool
	p.Pos.X, c = ClampBarrier(p.Pos.X)
	clamped = clamped || c
	p.Pos.Y, c = ClampBarrier(p.Pos.Y)
	clamped = clamped || c
	p.Pos.Z, c = ClampBarrier(p.Pos.Z)
	clamped = clamped || c

	p.Quad = DeriveQuadrant(p.Pos)
	p.Sec = DeriveSector(p.Pos, p.Quad)

	if clamped && p.NavState != NavIdle {
		p.NavState = NavIdle
		p.WarpSpeed = 0
	}
}

// StartNav begins a plain ALIGN-then-WARP sequence toward a target
// heading, mark, and warp factor, per the `nav` command.
func StartNav(p *Player, heading, mark, warp float64) {
	heading, mark = NormalizeHeadingMark(heading, mark)
	dir := UnitVector3(heading, mark)
	p.TargetPos = Point3{
		X: p.Pos.X + dir.X*warp*10,
		Y: p.Pos.Y + dir.Y*warp*10,
		Z: p.Pos.Z + dir.Z*warp*10,
	}
	p.StartHeading, p.StartMark = p.Heading, p.Mark
	p.TargetHeading, p.TargetMark = heading, mark
	p.NavTimer = AlignTicks
	p.NavState = NavAlign
}

// StartImpulse begins an ALIGN_IMPULSE→IMPULSE sequence. `imp 0` stops
// the ship (handled by the caller by setting speed 0 and leaving state
// idle rather than calling this).
func StartImpulse(p *Player, heading, mark, speedFactor float64) {
	heading, mark = NormalizeHeadingMark(heading, mark)
	if speedFactor > 1 {
		speedFactor = 1
	}
	p.WarpSpeed = speedFactor * 0.5
	p.StartHeading, p.StartMark = p.Heading, p.Mark
	p.TargetHeading, p.TargetMark = heading, mark
	p.NavTimer = AlignTicks
	p.NavState = NavAlignImpulse
}

// StartApproach begins an ALIGN to a position short of a target by dist
// units, per the `apr` command.
func StartApproach(p *Player, targetPos Point3, dist float64) {
	dx := targetPos.X - p.Pos.X
	dy := targetPos.Y - p.Pos.Y
	dz := targetPos.Z - p.Pos.Z
	d := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if d < 1e-9 {
		return
	}
	heading := math.Atan2(dy, dx) * 180 / math.Pi
	mark := math.Atan2(dz, math.Sqrt(dx*dx+dy*dy)) * 180 / math.Pi
	approachDist := d - dist
	if approachDist < 0 {
		approachDist = 0
	}
	StartNav(p, heading, mark, approachDist/10)
}

// StartChase enters CHASE toward the player's currently locked target.
func StartChase(p *Player) bool {
	if p.LockTarget <= 0 {
		return false
	}
	p.ChaseTarget = p.LockTarget
	p.ApproachDist = 1.0
	p.NavState = NavChase
	return true
}

// StartWormhole begins the 450-tick scripted wormhole sequence toward a
// target absolute position, displaying the wormhole mouth at `mouth`.
func StartWormhole(p *Player, mouth, target Point3) {
	p.Wormhole.Mouth = mouth
	p.Wormhole.Target = target
	p.Effects.Wormhole.Active = true
	p.Effects.Wormhole.X, p.Effects.Wormhole.Y, p.Effects.Wormhole.Z = mouth.X, mouth.Y, mouth.Z
	p.NavTimer = WormholeTicks
	p.NavState = NavWormhole
}
