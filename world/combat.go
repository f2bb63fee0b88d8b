package world

// Shield facing indices, in absorption order: damage starts at the front
// facing and spills into the next facing once one is exhausted.
const (
	ShieldFront = iota
	ShieldRear
	ShieldTop
	ShieldBottom
	ShieldLeft
	ShieldRight
)

// ApplyShieldedDamage drains a player's six shields front-to-back before
// spilling into energy (NPCs/monsters hit energy directly via their own
// callers). It returns the whole hit for any positive damage: the shield
// deltas plus the energy delta account for it, except that once energy
// bottoms out at zero the overkill is counted as absorbed as well.
func ApplyShieldedDamage(p *Player, damage int) int {
	if damage <= 0 {
		return 0
	}
	remaining := damage
	absorbed := 0
	for i := 0; i < ShieldCount && remaining > 0; i++ {
		if p.Shields[i] <= 0 {
			continue
		}
		take := p.Shields[i]
		if take > remaining {
			take = remaining
		}
		p.Shields[i] -= take
		remaining -= take
		absorbed += take
	}
	if remaining > 0 {
		p.Energy -= remaining
		if p.Energy < 0 {
			p.Energy = 0
		}
		absorbed += remaining
	}
	p.ShieldRegenDelay = ShieldRegenDelayTicks
	return absorbed
}

// PhaserHit computes phaser damage:
// (E / max(dist,0.1)) * (0.5 + power_weapons) * (integrity/100) * 10.
func PhaserHit(energySpent float64, dist, powerWeapons, integrityPct float64) int {
	if dist < 0.1 {
		dist = 0.1
	}
	hit := (energySpent / dist) * (0.5 + powerWeapons) * (integrityPct / 100) * 10
	return int(hit)
}

const phaserIntegrityIndex = SysPhasers

// FirePhaser resolves a `pha E` command against the locked target,
// returning the computed hit amount or 0 if the shot could not be fired.
func FirePhaser(gs *GameState, p *Player, energy float64) int {
	if p.LockTarget <= 0 {
		return 0
	}
	if float64(p.Energy) < energy {
		return 0
	}
	integrity := p.SystemHealth[phaserIntegrityIndex]
	if integrity < 10 {
		return 0
	}

	targetPos, ok := resolveTargetPos(gs, p.LockTarget)
	if !ok {
		return 0
	}
	dist := Distance3(p.Pos, targetPos)
	hit := PhaserHit(energy, dist, p.PowerDist[1], integrity)
	if hit <= 0 {
		return 0
	}
	p.Energy -= int(energy)

	class, slot := ResolveUniversalID(p.LockTarget)
	switch class {
	case ClassPlayer:
		target := gs.Players[slot]
		ApplyShieldedDamage(target, hit)
		if !target.IsAlive() {
			target.Active = false
			target.Effects.Boom.Active = true
			target.Effects.Boom.X, target.Effects.Boom.Y, target.Effects.Boom.Z = target.Pos.X, target.Pos.Y, target.Pos.Z
		}
	case ClassNPC:
		target := gs.NPCs[slot]
		target.Energy -= hit
		if target.Energy < 0 {
			target.Energy = 0
		}
		target.EngineHealth -= float64(hit) / 1000
		if target.EngineHealth < 0 {
			target.EngineHealth = 0
		}
		if target.Energy <= 0 {
			target.Active = false
		}
	}
	return hit
}

// TargetPosition resolves a universal id to its current position,
// reporting false for inactive or unresolvable targets.
func TargetPosition(gs *GameState, id int) (Point3, bool) {
	return resolveTargetPos(gs, id)
}

func resolveTargetPos(gs *GameState, id int) (Point3, bool) {
	class, slot := ResolveUniversalID(id)
	switch class {
	case ClassPlayer:
		if slot < 0 || slot >= MaxPlayers || !gs.Players[slot].Active {
			return Point3{}, false
		}
		return gs.Players[slot].Pos, true
	case ClassNPC:
		if slot < 0 || slot >= MaxNPCShips || !gs.NPCs[slot].Active {
			return Point3{}, false
		}
		return gs.NPCs[slot].Pos, true
	case ClassStarbase:
		if slot < 0 || slot >= MaxStarbases || !gs.Starbases[slot].Active {
			return Point3{}, false
		}
		return gs.Starbases[slot].Pos, true
	case ClassPlanet:
		if slot < 0 || slot >= MaxPlanets || !gs.Planets[slot].Active {
			return Point3{}, false
		}
		return gs.Planets[slot].Pos, true
	case ClassStar:
		if slot < 0 || slot >= MaxStars || !gs.Stars[slot].Active {
			return Point3{}, false
		}
		return gs.Stars[slot].Pos, true
	case ClassBlackHole:
		if slot < 0 || slot >= MaxBlackHoles || !gs.BlackHoles[slot].Active {
			return Point3{}, false
		}
		return gs.BlackHoles[slot].Pos, true
	default:
		return Point3{}, false
	}
}

// FireTorpedo activates a player's single torpedo slot, guided toward
// the locked target if one is held, else along an explicit heading/mark.
func FireTorpedo(gs *GameState, p *Player, guided bool, heading, mark float64) bool {
	if p.Torpedo.Active || p.Torpedo.Load > 0 || p.Torpedoes <= 0 {
		return false
	}
	var dir Point3
	var target int
	if guided && p.LockTarget > 0 {
		target = p.LockTarget
		if targetPos, ok := resolveTargetPos(gs, target); ok {
			dir = normalize(targetPos.X-p.Pos.X, targetPos.Y-p.Pos.Y, targetPos.Z-p.Pos.Z)
		} else {
			dir = UnitVector3(p.Heading, p.Mark)
		}
	} else {
		heading, mark = NormalizeHeadingMark(heading, mark)
		dir = UnitVector3(heading, mark)
	}
	p.Torpedo = TorpedoState{
		Active:  true,
		Pos:     p.Pos,
		Dir:     dir,
		Target:  target,
		Load:    TorpedoLoadTicks,
		Timeout: TorpedoTimeoutTicks,
	}
	p.Torpedoes--
	return true
}

// AdvanceTorpedoes advances every active player torpedo by one tick:
// homing (if guided), motion, then collision tests in a fixed category
// order.
func AdvanceTorpedoes(gs *GameState) {
	for ownerSlot, p := range gs.Players {
		if p.Torpedo.Load > 0 {
			p.Torpedo.Load--
		}
		if !p.Torpedo.Active {
			continue
		}
		advanceOneTorpedo(gs, p, ownerSlot)
	}
}

func advanceOneTorpedo(gs *GameState, p *Player, ownerSlot int) {
	t := &p.Torpedo
	t.Timeout--
	if t.Timeout <= 0 {
		t.Active = false
		return
	}
	if t.Target > 0 {
		if targetPos, ok := resolveTargetPos(gs, t.Target); ok {
			toTarget := normalize(targetPos.X-t.Pos.X, targetPos.Y-t.Pos.Y, targetPos.Z-t.Pos.Z)
			blended := Point3{
				X: t.Dir.X*0.5 + toTarget.X*0.5,
				Y: t.Dir.Y*0.5 + toTarget.Y*0.5,
				Z: t.Dir.Z*0.5 + toTarget.Z*0.5,
			}
			t.Dir = normalize(blended.X, blended.Y, blended.Z)
		}
	}

	// Sectors are measured against the quadrant the torpedo flew from, so
	// crossing into a neighbouring quadrant leaves [0, SectorDim) and ends it.
	quad := DeriveQuadrant(t.Pos)
	t.Pos.X += t.Dir.X * TorpedoAdvancePerTick
	t.Pos.Y += t.Dir.Y * TorpedoAdvancePerTick
	t.Pos.Z += t.Dir.Z * TorpedoAdvancePerTick
	sec := DeriveSector(t.Pos, quad)

	if sec.S1 < 0 || sec.S1 >= SectorDim || sec.S2 < 0 || sec.S2 >= SectorDim || sec.S3 < 0 || sec.S3 >= SectorDim {
		t.Active = false
		return
	}

	bucket := gs.Index.At(quad)
	if bucket == nil {
		t.Active = false
		return
	}

	if hitTorpedoPlayers(gs, p, t, ownerSlot, bucket) {
		ownerTorpedoBoom(p, t.Pos)
		return
	}
	if hitTorpedoNPCs(gs, t, bucket) {
		ownerTorpedoBoom(p, t.Pos)
		return
	}
	if absorbTorpedoPlanets(gs, bucket, t.Pos) {
		t.Active = false
		return
	}
	if absorbTorpedoStars(gs, bucket, t.Pos) {
		t.Active = false
		return
	}
	if absorbTorpedoBases(gs, bucket, t.Pos) {
		t.Active = false
		return
	}
	if hitTorpedoPlatforms(gs, t, bucket) {
		ownerTorpedoBoom(p, t.Pos)
		return
	}
	if hitTorpedoMonsters(gs, t, bucket) {
		ownerTorpedoBoom(p, t.Pos)
		return
	}
}

// ownerTorpedoBoom raises the shooter's own explosion transient at the
// impact point, so the firing client sees the detonation regardless of
// what was struck.
func ownerTorpedoBoom(owner *Player, at Point3) {
	owner.Effects.Boom.Active = true
	owner.Effects.Boom.X, owner.Effects.Boom.Y, owner.Effects.Boom.Z = at.X, at.Y, at.Z
}

func hitTorpedoPlayers(gs *GameState, owner *Player, t *TorpedoState, ownerSlot int, bucket *QuadrantBucket) bool {
	for _, slot := range bucket.Players {
		if slot == ownerSlot {
			continue
		}
		target := gs.Players[slot]
		if !target.Active {
			continue
		}
		if Distance3(t.Pos, target.Pos) <= TorpedoPlayerRadius {
			ApplyShieldedDamage(target, TorpedoPlayerDamage)
			target.Effects.Boom.Active = true
			target.Effects.Boom.X, target.Effects.Boom.Y, target.Effects.Boom.Z = target.Pos.X, target.Pos.Y, target.Pos.Z
			if !target.IsAlive() {
				target.Active = false
			}
			t.Active = false
			return true
		}
	}
	return false
}

func hitTorpedoNPCs(gs *GameState, t *TorpedoState, bucket *QuadrantBucket) bool {
	for _, slot := range bucket.NPCs {
		n := gs.NPCs[slot]
		if !n.Active {
			continue
		}
		if Distance3(t.Pos, n.Pos) <= TorpedoNPCRadius {
			n.Energy -= TorpedoNPCDamage
			if n.Energy <= 0 {
				n.Active = false
			}
			t.Active = false
			return true
		}
	}
	return false
}

func hitTorpedoPlatforms(gs *GameState, t *TorpedoState, bucket *QuadrantBucket) bool {
	for _, slot := range bucket.Platforms {
		pl := gs.Platforms[slot]
		if !pl.Active {
			continue
		}
		if Distance3(t.Pos, pl.Pos) <= TorpedoPlatformRadius {
			pl.Active = false
			t.Active = false
			return true
		}
	}
	return false
}

func hitTorpedoMonsters(gs *GameState, t *TorpedoState, bucket *QuadrantBucket) bool {
	for _, slot := range bucket.Monsters {
		m := gs.Monsters[slot]
		if !m.Active {
			continue
		}
		if Distance3(t.Pos, m.Pos) <= TorpedoMonsterRadius {
			m.Energy -= TorpedoMonsterDamage
			if m.Energy <= 0 {
				m.Active = false
			}
			t.Active = false
			return true
		}
	}
	return false
}

func absorbTorpedoPlanets(gs *GameState, bucket *QuadrantBucket, pos Point3) bool {
	for _, slot := range bucket.Planets {
		pl := gs.Planets[slot]
		if pl.Active && Distance3(pos, pl.Pos) <= TorpedoPlanetRadius {
			return true
		}
	}
	return false
}

func absorbTorpedoStars(gs *GameState, bucket *QuadrantBucket, pos Point3) bool {
	for _, slot := range bucket.Stars {
		s := gs.Stars[slot]
		if s.Active && Distance3(pos, s.Pos) <= TorpedoStarRadius {
			return true
		}
	}
	return false
}

func absorbTorpedoBases(gs *GameState, bucket *QuadrantBucket, pos Point3) bool {
	for _, slot := range bucket.Starbases {
		b := gs.Starbases[slot]
		if b.Active && Distance3(pos, b.Pos) <= TorpedoBaseRadius {
			return true
		}
	}
	return false
}
