package world

import "math"

// Tick runs one full 30Hz simulation step: map cleanup, AI, the
// supernova countdown, per-player environment and navigation, torpedo
// physics, then the index rebuild. Callers (the server's scheduler
// goroutine) hold gs.Mu for the whole call; nothing here re-enters the
// lock.
func Tick(gs *GameState) {
	gs.TickCount++
	gs.Frame++

	if gs.TickCount%MapCleanupInterval == 0 {
		MapCleanup(gs)
	}

	AdvanceNPCs(gs)
	AdvancePlatforms(gs)
	AdvanceComets(gs)
	AdvanceSupernova(gs)
	AdvanceMonsters(gs)

	for _, p := range gs.Players {
		if !p.Active {
			continue
		}
		AdvancePlayerEnvironment(gs, p)
		if !p.Active {
			continue
		}
		AdvanceNav(gs, p)
		SolidBodyCollision(gs, p)
		RevalidateLock(gs, p)
	}

	AdvanceTorpedoes(gs)

	Rebuild(gs)

	if gs.TickCount%SnapshotInterval == 0 {
		gs.PendingSnapshot = true
	}
}

// AdvanceComets moves every active comet one step along its orbit, a
// simple circular parametrization around OrbitCenter.
func AdvanceComets(gs *GameState) {
	for _, c := range gs.Comets {
		if !c.Active {
			continue
		}
		c.OrbitAngle += c.OrbitSpeed
		c.Pos.X = c.OrbitCenter.X + c.OrbitRadius*math.Cos(c.OrbitAngle)
		c.Pos.Y = c.OrbitCenter.Y + c.OrbitRadius*math.Sin(c.OrbitAngle)
		c.Quad = DeriveQuadrant(c.Pos)
	}
}
