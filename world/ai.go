package world

import (
	"math"
	"math/rand"
)

// AdvanceNPCs runs one tick of NPC AI for every active NPC ship.
func AdvanceNPCs(gs *GameState) {
	for i, n := range gs.NPCs {
		if !n.Active {
			continue
		}
		advanceOneNPC(gs, n, i)
	}
}

func advanceOneNPC(gs *GameState, n *NPCShip, slot int) {
	if n.Pos.X == 0 && n.Pos.Y == 0 && n.Pos.Z == 0 {
		n.Pos = Point3{
			X: float64(n.Quad.Q1-1)*SectorDim + n.Sec1Seed(),
			Y: float64(n.Quad.Q2-1) * SectorDim,
			Z: float64(n.Quad.Q3-1) * SectorDim,
		}
	}

	bucket := gs.Index.At(n.Quad)
	targetID, targetPos, found := nearestNonCloakedPlayerFrom(gs, bucket, n.Pos)

	switch {
	case n.FleeTimer > 0:
		n.FleeTimer--
		n.State = NPCFlee
	case n.Energy < 200:
		n.State = NPCFlee
	case found:
		n.State = NPCChase
	default:
		n.State = NPCPatrol
	}

	var dir Point3
	switch n.State {
	case NPCChase:
		dx := targetPos.X - n.Pos.X
		dy := targetPos.Y - n.Pos.Y
		dz := targetPos.Z - n.Pos.Z
		dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if dist > NPCChaseRange {
			dir = normalize(dx, dy, dz)
		}
		if n.FireCooldown == 0 && dist < NPCFireRange {
			fireNPCBeam(gs, n, slot, targetID, targetPos)
		}
	case NPCFlee:
		if found {
			dx := n.Pos.X - targetPos.X
			dy := n.Pos.Y - targetPos.Y
			dz := n.Pos.Z - targetPos.Z
			dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
			dir = scale(normalize(dx, dy, dz), 1.8)
			if dist > NPCFleeExitRange {
				n.State = NPCPatrol
			}
		}
	case NPCPatrol:
		if n.PatrolTimer <= 0 {
			n.Dir = randomUnitVector()
			n.PatrolTimer = 100 + rand.Intn(200)
		}
		dir = n.Dir
		n.PatrolTimer--
	}

	if n.FireCooldown > 0 {
		n.FireCooldown--
	}

	speed := 0.03 * (n.EngineHealth / 100)
	if n.EngineHealth < 10 {
		speed = 0
	}

	n.Pos.X += dir.X * speed
	n.Pos.Y += dir.Y * speed
	n.Pos.Z += dir.Z * speed
	n.Pos.X = clampf(n.Pos.X, GalacticBarrierMin, GalacticBarrierMax)
	n.Pos.Y = clampf(n.Pos.Y, GalacticBarrierMin, GalacticBarrierMax)
	n.Pos.Z = clampf(n.Pos.Z, GalacticBarrierMin, GalacticBarrierMax)
	n.Quad = DeriveQuadrant(n.Pos)

	if bucket != nil {
		for _, bhSlot := range bucket.BlackHoles {
			bh := gs.BlackHoles[bhSlot]
			if bh.Active && Distance3(n.Pos, bh.Pos) < BlackHoleKillDist {
				n.Active = false
				return
			}
		}
	}
}

// Sec1Seed is the fixed sector offset freshly-seeded NPCs spawn at so
// they don't all stack on the quadrant corner; deterministic so tests
// are reproducible.
func (n *NPCShip) Sec1Seed() float64 { return 5.0 }

func normalize(x, y, z float64) Point3 {
	d := math.Sqrt(x*x + y*y + z*z)
	if d < 1e-9 {
		return Point3{}
	}
	return Point3{X: x / d, Y: y / d, Z: z / d}
}

func scale(p Point3, f float64) Point3 {
	return Point3{X: p.X * f, Y: p.Y * f, Z: p.Z * f}
}

func randomUnitVector() Point3 {
	theta := rand.Float64() * 2 * math.Pi
	phi := rand.Float64()*math.Pi - math.Pi/2
	return Point3{
		X: math.Cos(phi) * math.Cos(theta),
		Y: math.Cos(phi) * math.Sin(theta),
		Z: math.Sin(phi),
	}
}

// nearestNonCloakedPlayerFrom scans a quadrant bucket's player list for the
// closest non-cloaked player within NPCScanRangeSq of pos.
func nearestNonCloakedPlayerFrom(gs *GameState, bucket *QuadrantBucket, pos Point3) (int, Point3, bool) {
	if bucket == nil {
		return 0, Point3{}, false
	}
	best := math.MaxFloat64
	var bestID int
	var bestPos Point3
	found := false
	for _, slot := range bucket.Players {
		p := gs.Players[slot]
		if !p.Active || p.Cloaked {
			continue
		}
		dx := p.Pos.X - pos.X
		dy := p.Pos.Y - pos.Y
		dz := p.Pos.Z - pos.Z
		d2 := dx*dx + dy*dy + dz*dz
		if d2 <= NPCScanRangeSq && d2 < best {
			best = d2
			bestID = UniversalID(ClassPlayer, slot)
			bestPos = p.Pos
			found = true
		}
	}
	return bestID, bestPos, found
}

func fireNPCBeam(gs *GameState, n *NPCShip, slot, targetID int, targetPos Point3) {
	class, tslot := ResolveUniversalID(targetID)
	if class != ClassPlayer {
		return
	}
	target := gs.Players[tslot]

	damage := DefaultBeamDamage
	cooldown := KlingonFireCooldown
	switch n.Type {
	case NPCTypeBorg:
		damage = BorgBeamDamage
		cooldown = BorgFireCooldown
	case NPCTypeKlingon:
		damage = KlingonBeamDamage
		cooldown = KlingonFireCooldown
	}

	ApplyShieldedDamage(target, damage)
	target.Effects.Beam.Active = true
	target.Effects.Beam.TX, target.Effects.Beam.TY, target.Effects.Beam.TZ = n.Pos.X, n.Pos.Y, n.Pos.Z
	n.FireCooldown = cooldown
}

// AdvancePlatforms runs one tick of defense platform AI.
func AdvancePlatforms(gs *GameState) {
	for _, pl := range gs.Platforms {
		if !pl.Active {
			continue
		}
		if pl.FireCooldown > 0 {
			pl.FireCooldown--
			continue
		}
		bucket := gs.Index.At(pl.Quad)
		if bucket == nil {
			continue
		}
		for _, slot := range bucket.Players {
			target := gs.Players[slot]
			if !target.Active || target.Cloaked {
				continue
			}
			if Distance3(pl.Pos, target.Pos) <= PlatformFireRange {
				ApplyShieldedDamage(target, PlatformFireDamage)
				target.Effects.Beam.Active = true
				target.Effects.Beam.TX, target.Effects.Beam.TY, target.Effects.Beam.TZ = pl.Pos.X, pl.Pos.Y, pl.Pos.Z
				pl.FireCooldown = PlatformFireCooldown
				break
			}
		}
	}
}

// AdvanceMonsters runs one tick of monster AI for both subtypes.
func AdvanceMonsters(gs *GameState) {
	for _, m := range gs.Monsters {
		if !m.Active {
			continue
		}
		bucket := gs.Index.At(m.Quad)
		switch m.Type {
		case MonsterCrystalline:
			advanceCrystalline(gs, m, bucket)
		case MonsterAmoeba:
			advanceAmoeba(gs, m, bucket)
		}
	}
}

func advanceCrystalline(gs *GameState, m *Monster, bucket *QuadrantBucket) {
	targetID, targetPos, found := nearestNonCloakedPlayerFrom(gs, bucket, m.Pos)
	if found {
		dir := normalize(targetPos.X-m.Pos.X, targetPos.Y-m.Pos.Y, targetPos.Z-m.Pos.Z)
		m.Pos.X += dir.X * 0.05
		m.Pos.Y += dir.Y * 0.05
		m.Pos.Z += dir.Z * 0.05
		m.Quad = DeriveQuadrant(m.Pos)

		if gs.TickCount%CrystallineInterval == 0 && Distance3(m.Pos, targetPos) <= CrystallineRange {
			class, slot := ResolveUniversalID(targetID)
			if class == ClassPlayer {
				target := gs.Players[slot]
				target.Energy -= CrystallineDamage
				if target.Energy < 0 {
					target.Energy = 0
				}
				target.Effects.Beam.Active = true
				target.Effects.Beam.TX, target.Effects.Beam.TY, target.Effects.Beam.TZ = m.Pos.X, m.Pos.Y, m.Pos.Z
			}
		}
	}
}

// advanceAmoeba doesn't move; any player within AmoebaDrainRange loses
// AmoebaDamagePerTick energy every tick.
func advanceAmoeba(gs *GameState, m *Monster, bucket *QuadrantBucket) {
	if bucket == nil {
		return
	}
	for _, slot := range bucket.Players {
		p := gs.Players[slot]
		if !p.Active {
			continue
		}
		if Distance3(p.Pos, m.Pos) <= AmoebaDrainRange {
			p.Energy -= AmoebaDamagePerTick
			if p.Energy < 0 {
				p.Energy = 0
			}
		}
	}
}
