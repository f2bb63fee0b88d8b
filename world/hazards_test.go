package world

import "testing"

// TestSupernovaAnnihilation forces a supernova in a populated quadrant
// and walks the countdown to expiry.
func TestSupernovaAnnihilation(t *testing.T) {
	gs := NewGameState()
	q := Quad{5, 5, 5}

	star := gs.Stars[42]
	placeAt(&star.baseEntity, 45, 45, 45)
	planet := gs.Planets[7]
	placeAt(&planet.baseEntity, 44, 44, 44)
	npc := gs.NPCs[100]
	placeAt(&npc.baseEntity, 46, 46, 46)
	npc.Energy = 1000
	base := gs.Starbases[3]
	placeAt(&base.baseEntity, 43, 47, 45)

	p := gs.Players[0]
	InitPlayer(p, "doomed", 0, 0)
	p.Pos = Point3{X: 45, Y: 46, Z: 45}
	p.Quad = DeriveQuadrant(p.Pos)

	// An entity outside the quadrant must survive.
	survivor := gs.Stars[43]
	placeAt(&survivor.baseEntity, 15, 15, 15)

	gs.Supernova = Supernova{
		Active:    true,
		Quad:      q,
		Timer:     3,
		Epicenter: star.Pos,
		StarID:    42,
	}
	Rebuild(gs)

	if gs.Census[5][5][5] >= 0 {
		t.Errorf("census during countdown = %d, want negated timer", gs.Census[5][5][5])
	}

	for i := 0; i < 3; i++ {
		AdvanceSupernova(gs)
	}
	Rebuild(gs)

	if gs.Supernova.Active {
		t.Error("supernova still active after expiry")
	}
	for _, e := range []bool{star.Active, planet.Active, npc.Active, base.Active, p.Active} {
		if e {
			t.Error("entity in annihilated quadrant still active")
		}
	}
	if !p.Effects.Boom.Active {
		t.Error("killed player has no explosion transient")
	}
	if !survivor.Active {
		t.Error("star outside the quadrant was annihilated")
	}

	var hole *BlackHole
	for _, bh := range gs.BlackHoles {
		if bh.Active {
			hole = bh
			break
		}
	}
	if hole == nil {
		t.Fatal("no black hole spawned at the epicenter")
	}
	if hole.Pos != star.Pos {
		t.Errorf("black hole at %+v, want epicenter %+v", hole.Pos, star.Pos)
	}
	if got := gs.Census[5][5][5]; got != 10000 {
		t.Errorf("aftermath census = %d, want 10000", got)
	}
	if !gs.PendingSnapshot {
		t.Error("annihilation did not request an immediate snapshot")
	}
}

// TestMineDetonation drives a player within trigger range of a mine.
func TestMineDetonation(t *testing.T) {
	gs := NewGameState()
	mine := gs.Mines[0]
	placeAt(&mine.baseEntity, 45, 45, 45)

	p := gs.Players[0]
	InitPlayer(p, "sweeper", 0, 0)
	p.Pos = Point3{X: 45.35, Y: 45, Z: 45}
	p.Quad = DeriveQuadrant(p.Pos)
	energyBefore := p.Energy

	gs.TickCount = 1 // off the periodic-roll boundaries
	Rebuild(gs)
	AdvancePlayerEnvironment(gs, p)

	if mine.Active {
		t.Error("mine still active after detonation")
	}

	absorbed := 0
	for _, s := range p.Shields {
		absorbed += MaxShieldUnit - s
	}
	absorbed += energyBefore - p.Energy
	if absorbed != MineDamage {
		t.Errorf("damage accounted = %d, want %d", absorbed, MineDamage)
	}
	if !p.Effects.Boom.Active {
		t.Error("no boom transient at the mine")
	}
	if p.Effects.Boom.X != mine.Pos.X {
		t.Errorf("boom at x=%v, want mine x=%v", p.Effects.Boom.X, mine.Pos.X)
	}
}

func TestBlackHoleKillRadius(t *testing.T) {
	gs := NewGameState()
	bh := gs.BlackHoles[0]
	placeAt(&bh.baseEntity, 45, 45, 45)

	p := gs.Players[0]
	InitPlayer(p, "icarus", 0, 0)
	p.Pos = Point3{X: 45.5, Y: 45, Z: 45}
	p.Quad = DeriveQuadrant(p.Pos)

	gs.TickCount = 1 // off the periodic-roll boundaries
	Rebuild(gs)
	AdvancePlayerEnvironment(gs, p)

	if p.Active {
		t.Error("player survived inside the kill radius")
	}
	if !p.Effects.Boom.Active {
		t.Error("no explosion transient on black hole death")
	}
}

func TestBlackHoleGravityPullsInward(t *testing.T) {
	gs := NewGameState()
	bh := gs.BlackHoles[0]
	placeAt(&bh.baseEntity, 45, 45, 45)

	p := gs.Players[0]
	InitPlayer(p, "orbiter", 0, 0)
	p.Pos = Point3{X: 47, Y: 45, Z: 45}
	p.Quad = DeriveQuadrant(p.Pos)

	gs.TickCount = 1
	Rebuild(gs)
	before := Distance3(p.Pos, bh.Pos)
	AdvancePlayerEnvironment(gs, p)
	after := Distance3(p.Pos, bh.Pos)

	if !p.Active {
		t.Fatal("player died outside the kill radius")
	}
	if after >= before {
		t.Errorf("distance %v -> %v, want pulled inward", before, after)
	}
}

func TestRiftTeleportClearsNav(t *testing.T) {
	gs := NewGameState()
	r := gs.Rifts[0]
	placeAt(&r.baseEntity, 45, 45, 45)

	p := gs.Players[0]
	InitPlayer(p, "wanderer", 0, 0)
	p.Pos = Point3{X: 45.2, Y: 45, Z: 45}
	p.Quad = DeriveQuadrant(p.Pos)
	p.NavState = NavWarp
	p.WarpSpeed = 0.5

	gs.TickCount = 1 // off the periodic-roll boundaries
	Rebuild(gs)
	AdvancePlayerEnvironment(gs, p)

	if p.NavState != NavIdle || p.WarpSpeed != 0 {
		t.Errorf("nav state %v speed %v after rift, want idle and 0", p.NavState, p.WarpSpeed)
	}
	if p.Quad != DeriveQuadrant(p.Pos) {
		t.Errorf("quad %+v inconsistent with pos %+v", p.Quad, p.Pos)
	}
}

func TestNebulaDrainInhibitsShields(t *testing.T) {
	gs := NewGameState()
	n := gs.Nebulas[0]
	placeAt(&n.baseEntity, 45, 45, 45)

	p := gs.Players[0]
	InitPlayer(p, "drifter", 0, 0)
	p.Pos = Point3{X: 46, Y: 45, Z: 45}
	p.Quad = DeriveQuadrant(p.Pos)

	gs.TickCount = 1
	Rebuild(gs)
	before := p.Shields[0]
	AdvancePlayerEnvironment(gs, p)
	if p.Shields[0] != before-NebulaShieldDrainPerTick {
		t.Errorf("front shield = %d, want %d", p.Shields[0], before-NebulaShieldDrainPerTick)
	}
}

func TestMapCleanupClearsIonStorms(t *testing.T) {
	gs := NewGameState()
	gs.Census[3][3][3] = SetIonStorm(0, true)
	gs.Census[4][4][4] = 5 // untouched

	MapCleanup(gs)

	if HasIonStorm(gs.Census[3][3][3]) {
		t.Error("ion storm survived map cleanup")
	}
	if gs.Census[4][4][4] != 5 {
		t.Errorf("unrelated census changed: %d", gs.Census[4][4][4])
	}
}

func TestNPCFleeTimerPinsState(t *testing.T) {
	gs := NewGameState()
	n := gs.NPCs[0]
	placeAt(&n.baseEntity, 45, 45, 45)
	n.Energy = 50000
	n.EngineHealth = 100
	n.FleeTimer = 5
	Rebuild(gs)

	AdvanceNPCs(gs)
	if n.State != NPCFlee {
		t.Errorf("state = %v, want NPCFlee while flee timer runs", n.State)
	}
	for i := 0; i < 5; i++ {
		AdvanceNPCs(gs)
	}
	if n.State == NPCFlee {
		t.Error("state still NPCFlee after the timer expired")
	}
}
