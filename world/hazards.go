package world

import "math/rand"

// MapCleanup runs every MapCleanupInterval ticks (phase 0 of the tick
// scheduler): it decays the ion storm digit off any quadrant census that
// still carries it.
func MapCleanup(gs *GameState) {
	for q1 := 1; q1 <= QuadrantDim; q1++ {
		for q2 := 1; q2 <= QuadrantDim; q2++ {
			for q3 := 1; q3 <= QuadrantDim; q3++ {
				gs.Census[q1][q2][q3] = SetIonStorm(gs.Census[q1][q2][q3], false)
			}
		}
	}
}

// AdvanceSupernova runs the singleton supernova lifecycle: roll for a new
// event if none is active, or advance the countdown and, on expiry,
// annihilate the quadrant.
func AdvanceSupernova(gs *GameState) {
	if !gs.Supernova.Active {
		if rand.Float64() < SupernovaRollChance {
			if q, starID, epicenter, ok := pickSupernovaQuadrant(gs); ok {
				gs.Supernova = Supernova{
					Active:    true,
					Quad:      q,
					Timer:     SupernovaTimer,
					Epicenter: epicenter,
					StarID:    starID,
				}
			}
		}
		return
	}

	// Warning chat lines on the timer boundaries are the server
	// package's job; the world only owns the countdown.
	gs.Supernova.Timer--
	if gs.Supernova.Timer > 0 {
		return
	}

	annihilateQuadrant(gs)
	gs.Supernova = Supernova{}
}

func pickSupernovaQuadrant(gs *GameState) (Quad, int, Point3, bool) {
	var candidates []Quad
	var starOf = map[Quad]int{}
	var posOf = map[Quad]Point3{}
	for i, s := range gs.Stars {
		if !s.Active {
			continue
		}
		if _, seen := starOf[s.Quad]; !seen {
			candidates = append(candidates, s.Quad)
			starOf[s.Quad] = i
			posOf[s.Quad] = s.Pos
		}
	}
	if len(candidates) == 0 {
		return Quad{}, 0, Point3{}, false
	}
	q := candidates[rand.Intn(len(candidates))]
	return q, starOf[q], posOf[q], true
}

func annihilateQuadrant(gs *GameState) {
	q := gs.Supernova.Quad
	for _, s := range gs.Stars {
		if s.Active && s.Quad == q {
			s.Active = false
		}
	}
	for _, p := range gs.Planets {
		if p.Active && p.Quad == q {
			p.Active = false
		}
	}
	for _, n := range gs.NPCs {
		if n.Active && n.Quad == q {
			n.Active = false
		}
	}
	for _, b := range gs.Starbases {
		if b.Active && b.Quad == q {
			b.Active = false
		}
	}
	for _, p := range gs.Players {
		if p.Active && p.Quad == q {
			p.Active = false
			p.Effects.Boom.Active = true
			p.Effects.Boom.X, p.Effects.Boom.Y, p.Effects.Boom.Z = p.Pos.X, p.Pos.Y, p.Pos.Z
		}
	}

	for _, bh := range gs.BlackHoles {
		if !bh.Active {
			bh.Active = true
			bh.Pos = gs.Supernova.Epicenter
			bh.Quad = q
			break
		}
	}

	gs.Census[q.Q1][q.Q2][q.Q3] = SupernovaAftermathCensus()
	gs.PendingSnapshot = true
}

// AdvancePlayerEnvironment runs all per-tick, per-player environmental
// and life-support effects in a fixed order (everything except
// nav-state advance, which the caller drives separately via
// AdvanceNav).
func AdvancePlayerEnvironment(gs *GameState, p *Player) {
	if gs.TickCount%LifeSupportInterval == 0 {
		p.LifeSupport -= 1
		if p.LifeSupport < 0 {
			p.LifeSupport = 0
			p.Crew--
			if p.Crew < 0 {
				p.Crew = 0
			}
		}
	}

	if gs.TickCount%EnvironmentRollInterval == 0 && rand.Float64() < 0.2 {
		applyRandomEnvironmentEvent(gs, p)
	}

	bucket := gs.Index.At(p.Quad)
	if bucket == nil {
		return
	}

	inNebula := applyNebulaDrain(gs, p, bucket)
	applyPulsarRadiation(p, bucket, gs)
	applyCometInterception(gs, p, bucket)
	applyAsteroidCollision(gs, p, bucket)
	applyBlackHoleGravity(gs, p, bucket)
	applyMineDetonation(gs, p, bucket)
	applyRiftTeleport(gs, p, bucket)
	regenShields(p, inNebula)
}

// regenShields trickles shield strength back once the post-hit delay
// has elapsed. Nebulas inhibit regeneration entirely (the drain in
// applyNebulaDrain runs instead).
func regenShields(p *Player, inNebula bool) {
	if inNebula {
		return
	}
	if p.ShieldRegenDelay > 0 {
		p.ShieldRegenDelay--
		return
	}
	for i := range p.Shields {
		if p.Shields[i] < MaxShieldUnit {
			p.Shields[i] += ShieldRegenPerTick
			if p.Shields[i] > MaxShieldUnit {
				p.Shields[i] = MaxShieldUnit
			}
		}
	}
}

// applyCometInterception is a light collision check: a comet passing
// within torpedo-collision range of a player scrapes its hull. Comets are
// cosmetic hazards, not weapons, so the damage is small and shield-first.
func applyCometInterception(gs *GameState, p *Player, bucket *QuadrantBucket) {
	for _, slot := range bucket.Comets {
		c := gs.Comets[slot]
		if c.Active && Distance3(p.Pos, c.Pos) <= TorpedoStarRadius {
			ApplyShieldedDamage(p, 500)
			return
		}
	}
}

// applyAsteroidCollision scrapes hull on contact with an asteroid field
// member, the same shape as comet interception but for a static hazard.
func applyAsteroidCollision(gs *GameState, p *Player, bucket *QuadrantBucket) {
	for _, slot := range bucket.Asteroids {
		a := gs.Asteroids[slot]
		if a.Active && Distance3(p.Pos, a.Pos) <= TorpedoPlanetRadius {
			ApplyShieldedDamage(p, 1000)
			return
		}
	}
}

// SolidBodyCollision stops a player dead (zeroes warp speed, returns to
// idle) on contact with a star or planet — the non-lethal analogue of
// black hole gravity's kill radius, for bodies that don't pull but do
// block. Black holes are not checked here; only applyBlackHoleGravity's
// kill radius acts on them.
func SolidBodyCollision(gs *GameState, p *Player) {
	bucket := gs.Index.At(p.Quad)
	if bucket == nil {
		return
	}
	for _, slot := range bucket.Stars {
		s := gs.Stars[slot]
		if s.Active && Distance3(p.Pos, s.Pos) <= TorpedoStarRadius {
			p.NavState = NavIdle
			p.WarpSpeed = 0
			return
		}
	}
	for _, slot := range bucket.Planets {
		pl := gs.Planets[slot]
		if pl.Active && Distance3(p.Pos, pl.Pos) <= TorpedoPlanetRadius {
			p.NavState = NavIdle
			p.WarpSpeed = 0
			return
		}
	}
}

// RevalidateLock clears a player's lock/chase target if it is no longer
// active: a lock references either zero or an entity that was active at
// the start of the tick in which it was set.
func RevalidateLock(gs *GameState, p *Player) {
	if p.LockTarget <= 0 {
		return
	}
	if _, ok := resolveTargetPos(gs, p.LockTarget); !ok {
		p.LockTarget = 0
		if p.NavState == NavChase {
			p.NavState = NavIdle
		}
	}
}

func applyRandomEnvironmentEvent(gs *GameState, p *Player) {
	switch rand.Intn(3) {
	case 0: // ion storm
		gs.Census[p.Quad.Q1][p.Quad.Q2][p.Quad.Q3] = SetIonStorm(gs.Census[p.Quad.Q1][p.Quad.Q2][p.Quad.Q3], true)
	case 1: // spatial shear
		p.Pos.X += float64(randSign())
		p.Pos.Y += float64(randSign())
		p.Pos.Z += float64(randSign())
		p.Pos.X, _ = ClampBarrier(p.Pos.X)
		p.Pos.Y, _ = ClampBarrier(p.Pos.Y)
		p.Pos.Z, _ = ClampBarrier(p.Pos.Z)
		p.Quad = DeriveQuadrant(p.Pos)
		p.Sec = DeriveSector(p.Pos, p.Quad)
	case 2: // subspace surge
		p.Energy += rand.Intn(10001) - 5000
		if p.Energy < 0 {
			p.Energy = 0
		}
	}
}

func randSign() int {
	if rand.Intn(2) == 0 {
		return -1
	}
	return 1
}

func applyNebulaDrain(gs *GameState, p *Player, bucket *QuadrantBucket) bool {
	for _, slot := range bucket.Nebulas {
		n := gs.Nebulas[slot]
		if n.Active && Distance3(p.Pos, n.Pos) <= NebulaDrainDist {
			if gs.TickCount%NebulaDrainInterval == 0 {
				p.Energy -= NebulaDrainPerInterval
				if p.Energy < 0 {
					p.Energy = 0
				}
			}
			for i := range p.Shields {
				p.Shields[i] -= NebulaShieldDrainPerTick
				if p.Shields[i] < 0 {
					p.Shields[i] = 0
				}
			}
			return true
		}
	}
	return false
}

func applyPulsarRadiation(p *Player, bucket *QuadrantBucket, gs *GameState) {
	for _, slot := range bucket.Pulsars {
		pu := gs.Pulsars[slot]
		if !pu.Active {
			continue
		}
		d := Distance3(p.Pos, pu.Pos)
		if d <= PulsarShieldDist {
			dmg := int((PulsarShieldDist - d) * PulsarShieldFactor)
			shieldsBefore := 0
			for _, s := range p.Shields {
				shieldsBefore += s
			}
			ApplyShieldedDamage(p, dmg)
			shieldsAfter := 0
			for _, s := range p.Shields {
				shieldsAfter += s
			}
			unabsorbed := dmg - (shieldsBefore - shieldsAfter)
			if unabsorbed > 0 {
				p.Crew -= unabsorbed / 100
				if p.Crew < 0 {
					p.Crew = 0
				}
			}
		}
		if d <= PulsarCrewDist {
			if rand.Intn(2) == 0 {
				p.Crew--
				if p.Crew < 0 {
					p.Crew = 0
				}
			}
			p.Energy -= PulsarEnergyDrain
			if p.Energy < 0 {
				p.Energy = 0
			}
		}
	}
}

// applyBlackHoleGravity accelerates a player toward any in-range black
// hole by force=0.05/d², and instant-kills within BlackHoleKillDist.
func applyBlackHoleGravity(gs *GameState, p *Player, bucket *QuadrantBucket) {
	for _, slot := range bucket.BlackHoles {
		bh := gs.BlackHoles[slot]
		if !bh.Active {
			continue
		}
		d := Distance3(p.Pos, bh.Pos)
		if d > BlackHoleGravityDist {
			continue
		}
		if d <= BlackHoleKillDist {
			p.Active = false
			p.Effects.Boom.Active = true
			p.Effects.Boom.X, p.Effects.Boom.Y, p.Effects.Boom.Z = p.Pos.X, p.Pos.Y, p.Pos.Z
			return
		}
		if d < 1e-6 {
			continue
		}
		force := 0.05 / (d * d)
		dir := normalize(bh.Pos.X-p.Pos.X, bh.Pos.Y-p.Pos.Y, bh.Pos.Z-p.Pos.Z)
		p.Pos.X += dir.X * force
		p.Pos.Y += dir.Y * force
		p.Pos.Z += dir.Z * force
		p.Pos.X, _ = ClampBarrier(p.Pos.X)
		p.Pos.Y, _ = ClampBarrier(p.Pos.Y)
		p.Pos.Z, _ = ClampBarrier(p.Pos.Z)
		p.Quad = DeriveQuadrant(p.Pos)
		p.Sec = DeriveSector(p.Pos, p.Quad)
	}
}

// applyMineDetonation deactivates and detonates any mine within
// MineDetonateDist, distributing MineDamage over the player's shields
// then hull.
func applyMineDetonation(gs *GameState, p *Player, bucket *QuadrantBucket) {
	for _, slot := range bucket.Mines {
		m := gs.Mines[slot]
		if !m.Active {
			continue
		}
		if Distance3(p.Pos, m.Pos) <= MineDetonateDist {
			m.Active = false
			ApplyShieldedDamage(p, MineDamage)
			p.Effects.Boom.Active = true
			p.Effects.Boom.X, p.Effects.Boom.Y, p.Effects.Boom.Z = m.Pos.X, m.Pos.Y, m.Pos.Z
			return
		}
	}
}

// applyRiftTeleport teleports a player within RiftTeleportDist of a
// spatial rift to a uniformly random quadrant/sector and clears nav
// state.
func applyRiftTeleport(gs *GameState, p *Player, bucket *QuadrantBucket) {
	for _, slot := range bucket.Rifts {
		r := gs.Rifts[slot]
		if !r.Active {
			continue
		}
		if Distance3(p.Pos, r.Pos) <= RiftTeleportDist {
			p.Pos = Point3{
				X: float64(rand.Intn(QuadrantDim))*SectorDim + rand.Float64()*SectorDim,
				Y: float64(rand.Intn(QuadrantDim))*SectorDim + rand.Float64()*SectorDim,
				Z: float64(rand.Intn(QuadrantDim))*SectorDim + rand.Float64()*SectorDim,
			}
			p.Quad = DeriveQuadrant(p.Pos)
			p.Sec = DeriveSector(p.Pos, p.Quad)
			p.NavState = NavIdle
			p.WarpSpeed = 0
			return
		}
	}
}
