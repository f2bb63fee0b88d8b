package world

import (
	"math"
	"testing"
)

func TestApplyShieldedDamageConservation(t *testing.T) {
	tests := []struct {
		name       string
		shields    [ShieldCount]int
		energy     int
		damage     int
		wantShields [ShieldCount]int
		wantEnergy int
	}{
		{"front shield absorbs all", [ShieldCount]int{5000, 0, 0, 0, 0, 0}, 1000, 3000, [ShieldCount]int{2000, 0, 0, 0, 0, 0}, 1000},
		{"spills across facings", [ShieldCount]int{100, 100, 100, 0, 0, 0}, 1000, 250, [ShieldCount]int{0, 0, 50, 0, 0, 0}, 1000},
		{"spills into hull", [ShieldCount]int{100, 0, 0, 0, 0, 0}, 1000, 500, [ShieldCount]int{0, 0, 0, 0, 0, 0}, 600},
		{"hull floor at zero", [ShieldCount]int{0, 0, 0, 0, 0, 0}, 100, 500, [ShieldCount]int{0, 0, 0, 0, 0, 0}, 0},
		{"zero damage no-op", [ShieldCount]int{10, 0, 0, 0, 0, 0}, 50, 0, [ShieldCount]int{10, 0, 0, 0, 0, 0}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Player{Shields: tt.shields, Energy: tt.energy}
			before := tt.energy
			for _, s := range tt.shields {
				before += s
			}
			absorbed := ApplyShieldedDamage(p, tt.damage)

			if p.Shields != tt.wantShields {
				t.Errorf("shields = %v, want %v", p.Shields, tt.wantShields)
			}
			if p.Energy != tt.wantEnergy {
				t.Errorf("energy = %d, want %d", p.Energy, tt.wantEnergy)
			}

			// Conservation: shield deltas + energy delta account for
			// everything absorbed (energy bottoms out at zero, so the
			// floor case absorbs the overkill by definition).
			after := p.Energy
			for _, s := range p.Shields {
				after += s
			}
			if tt.energy >= tt.damage && before-after != absorbed {
				t.Errorf("state delta %d != absorbed %d", before-after, absorbed)
			}
		})
	}
}

func TestPhaserHitFormula(t *testing.T) {
	tests := []struct {
		name                       string
		energy, dist, power, integ float64
		want                       int
	}{
		{"point blank clamps distance", 100, 0.01, 0.5, 100, 10000},
		{"unit distance", 1000, 1, 0.5, 100, 10000},
		{"integrity scales", 1000, 1, 0.5, 50, 5000},
		{"distance divides", 1000, 10, 0.5, 100, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PhaserHit(tt.energy, tt.dist, tt.power, tt.integ); got != tt.want {
				t.Errorf("PhaserHit = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestPhaserKill is the two-player duel: a bare-hulled target with 100
// energy dies to a single 1000-unit shot from one sector away.
func TestPhaserKill(t *testing.T) {
	gs := NewGameState()
	a := gs.Players[0]
	InitPlayer(a, "attacker", 0, 0)
	a.Pos = Point3{X: 45, Y: 45, Z: 45}
	a.Quad = DeriveQuadrant(a.Pos)

	b := gs.Players[1]
	InitPlayer(b, "victim", 1, 0)
	b.Pos = Point3{X: 46, Y: 45, Z: 45}
	b.Quad = DeriveQuadrant(b.Pos)
	b.Shields = [ShieldCount]int{}
	b.Energy = 100

	a.LockTarget = UniversalID(ClassPlayer, 1)
	hit := FirePhaser(gs, a, 1000)
	if hit < 1 {
		t.Fatalf("hit = %d, want >= 1", hit)
	}
	if b.Active {
		t.Error("victim still active after lethal phaser hit")
	}
	if !b.Effects.Boom.Active {
		t.Error("no explosion transient queued on kill")
	}
	if a.Energy >= MaxEnergy-1 {
		t.Error("attacker energy not spent")
	}
}

func TestFirePhaserRefusals(t *testing.T) {
	gs := NewGameState()
	p := gs.Players[0]
	InitPlayer(p, "gunner", 0, 0)

	if FirePhaser(gs, p, 100) != 0 {
		t.Error("fired with no lock")
	}

	p.LockTarget = UniversalID(ClassPlayer, 1) // inactive target
	if FirePhaser(gs, p, 100) != 0 {
		t.Error("fired at an inactive target")
	}

	target := gs.Players[1]
	InitPlayer(target, "target", 1, 0)
	target.Pos = p.Pos
	target.Quad = p.Quad

	p.SystemHealth[SysPhasers] = 5
	if FirePhaser(gs, p, 100) != 0 {
		t.Error("fired with phaser integrity below 10")
	}
	p.SystemHealth[SysPhasers] = 100

	p.Energy = 50
	if FirePhaser(gs, p, 100) != 0 {
		t.Error("fired with insufficient energy")
	}
}

func TestTorpedoHitsPlayer(t *testing.T) {
	gs := NewGameState()
	shooter := gs.Players[0]
	InitPlayer(shooter, "shooter", 0, 0)
	shooter.Pos = Point3{X: 45, Y: 45, Z: 45}
	shooter.Quad = DeriveQuadrant(shooter.Pos)

	victim := gs.Players[1]
	InitPlayer(victim, "victim", 1, 0)
	victim.Pos = Point3{X: 46, Y: 45, Z: 45}
	victim.Quad = DeriveQuadrant(victim.Pos)
	victimEnergyBefore := victim.Energy

	Rebuild(gs)

	shooter.LockTarget = UniversalID(ClassPlayer, 1)
	if !FireTorpedo(gs, shooter, true, 0, 0) {
		t.Fatal("torpedo launch refused")
	}
	if shooter.Torpedoes != 999 {
		t.Errorf("torpedoes = %d, want 999", shooter.Torpedoes)
	}

	for i := 0; i < 20 && shooter.Torpedo.Active; i++ {
		AdvanceTorpedoes(gs)
	}
	if shooter.Torpedo.Active {
		t.Fatal("torpedo never resolved")
	}

	absorbed := 0
	for _, s := range victim.Shields {
		absorbed += MaxShieldUnit - s
	}
	absorbed += victimEnergyBefore - victim.Energy
	if absorbed != TorpedoPlayerDamage {
		t.Errorf("damage accounted = %d, want %d", absorbed, TorpedoPlayerDamage)
	}
	if !victim.Effects.Boom.Active {
		t.Error("no boom transient on torpedo hit")
	}
	if !shooter.Effects.Boom.Active {
		t.Error("shooter has no boom transient at the impact point")
	}
	boomAt := Point3{X: shooter.Effects.Boom.X, Y: shooter.Effects.Boom.Y, Z: shooter.Effects.Boom.Z}
	if d := Distance3(boomAt, victim.Pos); d > TorpedoPlayerRadius {
		t.Errorf("shooter boom %v from the victim, want within the impact radius", d)
	}
}

func TestTorpedoExpiresAtSectorBoundary(t *testing.T) {
	gs := NewGameState()
	p := gs.Players[0]
	InitPlayer(p, "shooter", 0, 0)
	p.Pos = Point3{X: 49.5, Y: 45, Z: 45}
	p.Quad = DeriveQuadrant(p.Pos)
	Rebuild(gs)

	if !FireTorpedo(gs, p, false, 0, 0) { // heading 0: straight +x
		t.Fatal("torpedo launch refused")
	}
	for i := 0; i < 400 && p.Torpedo.Active; i++ {
		AdvanceTorpedoes(gs)
	}
	if p.Torpedo.Active {
		t.Error("unguided torpedo never expired")
	}
}

func TestGuidedTorpedoHoming(t *testing.T) {
	gs := NewGameState()
	shooter := gs.Players[0]
	InitPlayer(shooter, "shooter", 0, 0)
	shooter.Pos = Point3{X: 45, Y: 45, Z: 45}
	shooter.Quad = DeriveQuadrant(shooter.Pos)

	victim := gs.Players[1]
	InitPlayer(victim, "victim", 1, 0)
	victim.Pos = Point3{X: 45, Y: 47, Z: 45} // off-axis from the initial heading
	victim.Quad = DeriveQuadrant(victim.Pos)
	Rebuild(gs)

	shooter.LockTarget = UniversalID(ClassPlayer, 1)
	if !FireTorpedo(gs, shooter, true, 0, 0) {
		t.Fatal("torpedo launch refused")
	}

	prev := Distance3(shooter.Torpedo.Pos, victim.Pos)
	for i := 0; i < 30 && shooter.Torpedo.Active; i++ {
		AdvanceTorpedoes(gs)
		if !shooter.Torpedo.Active {
			break
		}
		d := Distance3(shooter.Torpedo.Pos, victim.Pos)
		if d > prev+1e-9 {
			t.Fatalf("guided torpedo moving away from target: %v then %v", prev, d)
		}
		prev = d
	}
	if shooter.Torpedo.Active {
		t.Error("guided torpedo failed to connect")
	}
}

func TestUnitVector3(t *testing.T) {
	v := UnitVector3(0, 0)
	if math.Abs(v.X-1) > 1e-9 || math.Abs(v.Y) > 1e-9 || math.Abs(v.Z) > 1e-9 {
		t.Errorf("UnitVector3(0,0) = %+v, want +x", v)
	}
	v = UnitVector3(90, 0)
	if math.Abs(v.Y-1) > 1e-9 {
		t.Errorf("UnitVector3(90,0) = %+v, want +y", v)
	}
	v = UnitVector3(0, 90)
	if math.Abs(v.Z-1) > 1e-9 {
		t.Errorf("UnitVector3(0,90) = %+v, want +z", v)
	}
}
