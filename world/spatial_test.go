package world

import "testing"

func placeAt(b *baseEntity, x, y, z float64) {
	b.Active = true
	b.Pos = Point3{X: x, Y: y, Z: z}
	b.Quad = DeriveQuadrant(b.Pos)
}

func TestRebuildBucketsAndCensus(t *testing.T) {
	gs := NewGameState()

	placeAt(&gs.Stars[0].baseEntity, 45, 45, 45)
	placeAt(&gs.Stars[1].baseEntity, 45.5, 45, 45)
	placeAt(&gs.Planets[0].baseEntity, 44, 44, 44)
	placeAt(&gs.Starbases[0].baseEntity, 46, 46, 46)
	placeAt(&gs.NPCs[7].baseEntity, 45, 46, 45)
	gs.NPCs[7].Energy = 1000

	p := gs.Players[0]
	p.Active = true
	p.Pos = Point3{X: 45, Y: 45, Z: 46}
	p.Quad = DeriveQuadrant(p.Pos)

	// An inactive entity in the same quadrant must not appear.
	gs.Stars[2].Pos = Point3{X: 45, Y: 45, Z: 45}
	gs.Stars[2].Quad = DeriveQuadrant(gs.Stars[2].Pos)

	Rebuild(gs)

	q := Quad{5, 5, 5}
	b := gs.Index.At(q)
	if b == nil {
		t.Fatal("bucket for 5-5-5 missing")
	}
	if len(b.Stars) != 2 {
		t.Errorf("stars in bucket = %d, want 2", len(b.Stars))
	}
	if len(b.Planets) != 1 || len(b.Starbases) != 1 || len(b.NPCs) != 1 || len(b.Players) != 1 {
		t.Errorf("bucket counts = planets %d bases %d npcs %d players %d, want 1 each",
			len(b.Planets), len(b.Starbases), len(b.NPCs), len(b.Players))
	}

	want := EncodeCensus(QuadrantCounts{Star: 2, Planet: 1, Base: 1, NPC: 1})
	if got := gs.Census[5][5][5]; got != want {
		t.Errorf("census = %d, want %d", got, want)
	}
	if gs.Census[1][1][1] != 0 {
		t.Errorf("empty quadrant census = %d, want 0", gs.Census[1][1][1])
	}
}

func TestRebuildTruncatesAtQuadrantCap(t *testing.T) {
	gs := NewGameState()
	for i := 0; i < QuadCapRifts+3; i++ {
		placeAt(&gs.Rifts[i].baseEntity, 15+float64(i)*0.1, 15, 15)
	}
	Rebuild(gs)

	b := gs.Index.At(Quad{2, 2, 2})
	if len(b.Rifts) != QuadCapRifts {
		t.Errorf("rifts in bucket = %d, want truncated to %d", len(b.Rifts), QuadCapRifts)
	}
	// The census still counts (saturated), independent of truncation.
	digit := (gs.Census[2][2][2] / pow10(censusRift)) % 10
	if digit != int64(QuadCapRifts+3) {
		// QuadCapRifts+3 = 7 < 9, so the digit must carry the true count.
		t.Errorf("rift census digit = %d, want %d", digit, QuadCapRifts+3)
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	gs := NewGameState()
	placeAt(&gs.Stars[0].baseEntity, 5, 5, 5)
	placeAt(&gs.Mines[0].baseEntity, 5, 5, 6)

	Rebuild(gs)
	first := gs.Census[1][1][1]
	Rebuild(gs)
	if gs.Census[1][1][1] != first {
		t.Errorf("census changed across rebuilds: %d then %d", first, gs.Census[1][1][1])
	}
	b := gs.Index.At(Quad{1, 1, 1})
	if len(b.Stars) != 1 || len(b.Mines) != 1 {
		t.Errorf("bucket lists grew across rebuilds: stars %d mines %d", len(b.Stars), len(b.Mines))
	}
}

func TestSeedStaticRecordsCounts(t *testing.T) {
	gs := NewGameState()
	placeAt(&gs.Stars[0].baseEntity, 45, 45, 45)
	placeAt(&gs.Asteroids[0].baseEntity, 45, 45, 44)
	placeAt(&gs.Asteroids[1].baseEntity, 45, 44, 45)

	SeedStatic(gs)

	counts := gs.Index.StaticCounts[5][5][5]
	if counts.Star != 1 {
		t.Errorf("static star count = %d, want 1", counts.Star)
	}
	if counts.Asteroid != 2 {
		t.Errorf("static asteroid count = %d, want 2", counts.Asteroid)
	}
}

// TestQuadrantPositionInvariant runs whole ticks and verifies every
// active mover's quadrant stays derived from its absolute position.
func TestQuadrantPositionInvariant(t *testing.T) {
	gs := NewGameState()
	GenerateGalaxy(gs)
	p := gs.Players[0]
	InitPlayer(p, "invariant", 0, 0)
	StartNav(p, 45, 20, 3)
	SeedStatic(gs)
	Rebuild(gs)

	for tick := 0; tick < 200; tick++ {
		Tick(gs)
		for _, pl := range gs.Players {
			if pl.Active && pl.Quad != DeriveQuadrant(pl.Pos) {
				t.Fatalf("tick %d: player quad %+v != derived %+v", tick, pl.Quad, DeriveQuadrant(pl.Pos))
			}
		}
		for _, n := range gs.NPCs {
			if n.Active && n.Quad != DeriveQuadrant(n.Pos) {
				t.Fatalf("tick %d: npc quad %+v != derived %+v", tick, n.Quad, DeriveQuadrant(n.Pos))
			}
		}
	}
}
