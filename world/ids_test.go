package world

import "testing"

func TestUniversalIDRoundTrip(t *testing.T) {
	tests := []struct {
		class EntityClass
		slot  int
		want  int
	}{
		{ClassPlayer, 0, 1},
		{ClassPlayer, 31, 32},
		{ClassNPC, 0, 1000},
		{ClassNPC, 999, 1999},
		{ClassStarbase, 0, 2000},
		{ClassPlanet, 7, 3007},
		{ClassStar, 42, 4042},
		{ClassBlackHole, 0, 7000},
		{ClassNebula, 0, 8000},
		{ClassPulsar, 0, 9000},
		{ClassComet, 0, 10000},
		{ClassDerelict, 0, 11000},
		{ClassAsteroid, 0, 12000},
		{ClassMine, 0, 14000},
		{ClassBuoy, 0, 15000},
		{ClassPlatform, 0, 16000},
		{ClassRift, 0, 17000},
		{ClassMonster, 29, 18029},
	}
	for _, tt := range tests {
		id := UniversalID(tt.class, tt.slot)
		if id != tt.want {
			t.Errorf("UniversalID(%v, %d) = %d, want %d", tt.class, tt.slot, id, tt.want)
		}
		class, slot := ResolveUniversalID(id)
		if class != tt.class || slot != tt.slot {
			t.Errorf("ResolveUniversalID(%d) = (%v, %d), want (%v, %d)", id, class, slot, tt.class, tt.slot)
		}
	}
}

func TestResolveUniversalIDUnknown(t *testing.T) {
	for _, id := range []int{0, -5, 33, 999, 2200, 19000, 1 << 20} {
		if class, _ := ResolveUniversalID(id); class != ClassUnknown {
			t.Errorf("ResolveUniversalID(%d) = %v, want ClassUnknown", id, class)
		}
	}
}

func TestGenerateGalaxyConsistency(t *testing.T) {
	gs := NewGameState()
	GenerateGalaxy(gs)

	stars := 0
	for _, s := range gs.Stars {
		if !s.Active {
			continue
		}
		stars++
		if s.Quad != DeriveQuadrant(s.Pos) {
			t.Fatalf("star %d quad %+v != derived from %+v", s.ID, s.Quad, s.Pos)
		}
	}
	if stars == 0 {
		t.Fatal("generation produced no stars")
	}

	for _, p := range gs.Planets {
		if p.Active && (p.Resource < InvDilithium || p.Resource > InvGases) {
			t.Fatalf("planet %d resource slot %d out of range", p.ID, p.Resource)
		}
	}
}

func TestInitPlayerSpawnsAtSectorCenter(t *testing.T) {
	p := &Player{Slot: 3}
	InitPlayer(p, "Sulu", 2, 1)

	if p.Slot != 3 {
		t.Errorf("slot = %d, want preserved 3", p.Slot)
	}
	if !p.Active || p.Name != "Sulu" || p.Faction != 2 || p.ShipClass != 1 {
		t.Errorf("identity fields wrong: %+v", p)
	}
	if p.Sec != (Sector{5, 5, 5}) {
		t.Errorf("spawn sector = %+v, want center (5,5,5)", p.Sec)
	}
	if p.Quad != DeriveQuadrant(p.Pos) {
		t.Errorf("quad %+v != derived from %+v", p.Quad, p.Pos)
	}
	if p.Inventory[InvDilithium] != 10 {
		t.Errorf("dilithium = %d, want 10", p.Inventory[InvDilithium])
	}
	if !p.IsAlive() {
		t.Error("fresh player not alive")
	}
}

func TestFindAndFreeSlots(t *testing.T) {
	gs := NewGameState()
	if got := FindPlayerByName(gs, "nobody"); got != -1 {
		t.Errorf("FindPlayerByName on empty world = %d, want -1", got)
	}
	if got := FreePlayerSlot(gs); got != 0 {
		t.Errorf("first free slot = %d, want 0", got)
	}
	InitPlayer(gs.Players[0], "Uhura", 0, 0)
	if got := FindPlayerByName(gs, "Uhura"); got != 0 {
		t.Errorf("FindPlayerByName = %d, want 0", got)
	}
	if got := FreePlayerSlot(gs); got != 1 {
		t.Errorf("next free slot = %d, want 1", got)
	}
}
