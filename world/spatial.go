package world

// SpatialIndex is a dense 3D array, indexed by quadrant, of fixed-capacity
// slot-index lists per entity category. It is a pure derived cache: every
// entry is a slot index into the corresponding GameState table, never a
// pointer, so the whole index can be thrown away and rebuilt from the
// master tables at any time. Axes are 1-based; index 0 in each dimension
// is unused filler so quadrant coordinates can be used directly.
type SpatialIndex struct {
	Quadrants [QuadrantDim + 1][QuadrantDim + 1][QuadrantDim + 1]QuadrantBucket

	// StaticCounts mirrors the per-category counts captured at the static
	// seed, before any dynamic entity or player ever moved through a
	// quadrant; it is the baseline incremental rebuilds are compared
	// against when reasoning about churn (never mutated after seeding).
	StaticCounts [QuadrantDim + 1][QuadrantDim + 1][QuadrantDim + 1]QuadrantCounts
}

// QuadrantBucket holds the borrowed slot-index lists for one quadrant.
// Capacities are the fixed per-quadrant caps; appendCapped truncates
// silently once a bucket is full.
type QuadrantBucket struct {
	Stars      []int
	Planets    []int
	Starbases  []int
	BlackHoles []int
	Nebulas    []int
	Pulsars    []int
	Comets     []int
	Asteroids  []int
	Derelicts  []int
	Mines      []int
	Buoys      []int
	Platforms  []int
	Rifts      []int
	Monsters   []int
	NPCs       []int
	Players    []int
}

func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{}
}

func (b *QuadrantBucket) reset() {
	b.Stars = b.Stars[:0]
	b.Planets = b.Planets[:0]
	b.Starbases = b.Starbases[:0]
	b.BlackHoles = b.BlackHoles[:0]
	b.Nebulas = b.Nebulas[:0]
	b.Pulsars = b.Pulsars[:0]
	b.Comets = b.Comets[:0]
	b.Asteroids = b.Asteroids[:0]
	b.Derelicts = b.Derelicts[:0]
	b.Mines = b.Mines[:0]
	b.Buoys = b.Buoys[:0]
	b.Platforms = b.Platforms[:0]
	b.Rifts = b.Rifts[:0]
	b.Monsters = b.Monsters[:0]
	b.NPCs = b.NPCs[:0]
	b.Players = b.Players[:0]
}

func appendCapped(slice []int, slot, cap int) []int {
	if len(slice) >= cap {
		return slice
	}
	return append(slice, slot)
}

// At returns the bucket for a quadrant, or nil if out of range.
func (idx *SpatialIndex) At(q Quad) *QuadrantBucket {
	if q.Q1 < 1 || q.Q1 > QuadrantDim || q.Q2 < 1 || q.Q2 > QuadrantDim || q.Q3 < 1 || q.Q3 > QuadrantDim {
		return nil
	}
	return &idx.Quadrants[q.Q1][q.Q2][q.Q3]
}

// SeedStatic populates the index with only the entity categories that
// never change quadrant (stars, planets, bases, black holes, nebulas,
// pulsars, asteroids, derelicts, mines, buoys, platforms, rifts,
// monsters), and records each quadrant's static counts. Called once at
// boot, before the first full rebuild.
func SeedStatic(gs *GameState) {
	idx := gs.Index
	for q1 := 1; q1 <= QuadrantDim; q1++ {
		for q2 := 1; q2 <= QuadrantDim; q2++ {
			for q3 := 1; q3 <= QuadrantDim; q3++ {
				idx.Quadrants[q1][q2][q3].reset()
			}
		}
	}

	insertStatic := func(q Quad, cat *[]int, slot, cap int) {
		b := idx.At(q)
		if b == nil {
			return
		}
		*cat = appendCapped(*cat, slot, cap)
	}

	for i, s := range gs.Stars {
		if s.Active {
			insertStatic(s.Quad, &idx.Quadrants[s.Quad.Q1][s.Quad.Q2][s.Quad.Q3].Stars, i, QuadCapStars)
		}
	}
	for i, p := range gs.Planets {
		if p.Active {
			insertStatic(p.Quad, &idx.Quadrants[p.Quad.Q1][p.Quad.Q2][p.Quad.Q3].Planets, i, QuadCapPlanets)
		}
	}
	for i, b := range gs.Starbases {
		if b.Active {
			insertStatic(b.Quad, &idx.Quadrants[b.Quad.Q1][b.Quad.Q2][b.Quad.Q3].Starbases, i, QuadCapStarbases)
		}
	}
	for i, b := range gs.BlackHoles {
		if b.Active {
			insertStatic(b.Quad, &idx.Quadrants[b.Quad.Q1][b.Quad.Q2][b.Quad.Q3].BlackHoles, i, QuadCapBlackHoles)
		}
	}
	for i, n := range gs.Nebulas {
		if n.Active {
			insertStatic(n.Quad, &idx.Quadrants[n.Quad.Q1][n.Quad.Q2][n.Quad.Q3].Nebulas, i, QuadCapNebulas)
		}
	}
	for i, p := range gs.Pulsars {
		if p.Active {
			insertStatic(p.Quad, &idx.Quadrants[p.Quad.Q1][p.Quad.Q2][p.Quad.Q3].Pulsars, i, QuadCapPulsars)
		}
	}
	for i, a := range gs.Asteroids {
		if a.Active {
			insertStatic(a.Quad, &idx.Quadrants[a.Quad.Q1][a.Quad.Q2][a.Quad.Q3].Asteroids, i, QuadCapAsteroids)
		}
	}
	for i, d := range gs.Derelicts {
		if d.Active {
			insertStatic(d.Quad, &idx.Quadrants[d.Quad.Q1][d.Quad.Q2][d.Quad.Q3].Derelicts, i, QuadCapDerelicts)
		}
	}
	for i, m := range gs.Mines {
		if m.Active {
			insertStatic(m.Quad, &idx.Quadrants[m.Quad.Q1][m.Quad.Q2][m.Quad.Q3].Mines, i, QuadCapMines)
		}
	}
	for i, b := range gs.Buoys {
		if b.Active {
			insertStatic(b.Quad, &idx.Quadrants[b.Quad.Q1][b.Quad.Q2][b.Quad.Q3].Buoys, i, QuadCapBuoys)
		}
	}
	for i, p := range gs.Platforms {
		if p.Active {
			insertStatic(p.Quad, &idx.Quadrants[p.Quad.Q1][p.Quad.Q2][p.Quad.Q3].Platforms, i, QuadCapPlatforms)
		}
	}
	for i, r := range gs.Rifts {
		if r.Active {
			insertStatic(r.Quad, &idx.Quadrants[r.Quad.Q1][r.Quad.Q2][r.Quad.Q3].Rifts, i, QuadCapRifts)
		}
	}
	for i, m := range gs.Monsters {
		if m.Active {
			insertStatic(m.Quad, &idx.Quadrants[m.Quad.Q1][m.Quad.Q2][m.Quad.Q3].Monsters, i, QuadCapMonsters)
		}
	}

	for q1 := 1; q1 <= QuadrantDim; q1++ {
		for q2 := 1; q2 <= QuadrantDim; q2++ {
			for q3 := 1; q3 <= QuadrantDim; q3++ {
				b := &idx.Quadrants[q1][q2][q3]
				idx.StaticCounts[q1][q2][q3] = QuadrantCounts{
					Star: len(b.Stars), Planet: len(b.Planets), Base: len(b.Starbases),
					BlackHole: len(b.BlackHoles), Nebula: len(b.Nebulas), Pulsar: len(b.Pulsars),
					Asteroid: len(b.Asteroids), Derelict: len(b.Derelicts), Mine: len(b.Mines),
					Buoy: len(b.Buoys), Platform: len(b.Platforms), Rift: len(b.Rifts),
					Monster: len(b.Monsters),
				}
			}
		}
	}
}

// Rebuild zeroes every quadrant bucket and re-inserts every active entity
// across all categories (static + dynamic + players + NPCs + comets),
// then recomputes the per-quadrant census scalar. Called once per tick,
// after all state mutation for that tick has completed, so reads between
// rebuilds always see a consistent snapshot of the prior tick's outcome.
func Rebuild(gs *GameState) {
	idx := gs.Index
	for q1 := 1; q1 <= QuadrantDim; q1++ {
		for q2 := 1; q2 <= QuadrantDim; q2++ {
			for q3 := 1; q3 <= QuadrantDim; q3++ {
				idx.Quadrants[q1][q2][q3].reset()
			}
		}
	}

	var counts [QuadrantDim + 1][QuadrantDim + 1][QuadrantDim + 1]QuadrantCounts
	countFor := func(q Quad) *QuadrantCounts {
		return &counts[q.Q1][q.Q2][q.Q3]
	}

	for i, s := range gs.Stars {
		if !s.Active {
			continue
		}
		b := idx.At(s.Quad)
		if b == nil {
			continue
		}
		b.Stars = appendCapped(b.Stars, i, QuadCapStars)
		countFor(s.Quad).Star++
	}
	for i, p := range gs.Planets {
		if !p.Active {
			continue
		}
		b := idx.At(p.Quad)
		if b == nil {
			continue
		}
		b.Planets = appendCapped(b.Planets, i, QuadCapPlanets)
		countFor(p.Quad).Planet++
	}
	for i, s := range gs.Starbases {
		if !s.Active {
			continue
		}
		b := idx.At(s.Quad)
		if b == nil {
			continue
		}
		b.Starbases = appendCapped(b.Starbases, i, QuadCapStarbases)
		countFor(s.Quad).Base++
	}
	for i, h := range gs.BlackHoles {
		if !h.Active {
			continue
		}
		b := idx.At(h.Quad)
		if b == nil {
			continue
		}
		b.BlackHoles = appendCapped(b.BlackHoles, i, QuadCapBlackHoles)
		countFor(h.Quad).BlackHole++
	}
	for i, n := range gs.Nebulas {
		if !n.Active {
			continue
		}
		b := idx.At(n.Quad)
		if b == nil {
			continue
		}
		b.Nebulas = appendCapped(b.Nebulas, i, QuadCapNebulas)
		countFor(n.Quad).Nebula++
	}
	for i, p := range gs.Pulsars {
		if !p.Active {
			continue
		}
		b := idx.At(p.Quad)
		if b == nil {
			continue
		}
		b.Pulsars = appendCapped(b.Pulsars, i, QuadCapPulsars)
		countFor(p.Quad).Pulsar++
	}
	for i, c := range gs.Comets {
		if !c.Active {
			continue
		}
		b := idx.At(c.Quad)
		if b == nil {
			continue
		}
		b.Comets = appendCapped(b.Comets, i, QuadCapComets)
		countFor(c.Quad).Comet++
	}
	for i, a := range gs.Asteroids {
		if !a.Active {
			continue
		}
		b := idx.At(a.Quad)
		if b == nil {
			continue
		}
		b.Asteroids = appendCapped(b.Asteroids, i, QuadCapAsteroids)
		countFor(a.Quad).Asteroid++
	}
	for i, d := range gs.Derelicts {
		if !d.Active {
			continue
		}
		b := idx.At(d.Quad)
		if b == nil {
			continue
		}
		b.Derelicts = appendCapped(b.Derelicts, i, QuadCapDerelicts)
		countFor(d.Quad).Derelict++
	}
	for i, m := range gs.Mines {
		if !m.Active {
			continue
		}
		b := idx.At(m.Quad)
		if b == nil {
			continue
		}
		b.Mines = appendCapped(b.Mines, i, QuadCapMines)
		countFor(m.Quad).Mine++
	}
	for i, bu := range gs.Buoys {
		if !bu.Active {
			continue
		}
		b := idx.At(bu.Quad)
		if b == nil {
			continue
		}
		b.Buoys = appendCapped(b.Buoys, i, QuadCapBuoys)
		countFor(bu.Quad).Buoy++
	}
	for i, p := range gs.Platforms {
		if !p.Active {
			continue
		}
		b := idx.At(p.Quad)
		if b == nil {
			continue
		}
		b.Platforms = appendCapped(b.Platforms, i, QuadCapPlatforms)
		countFor(p.Quad).Platform++
	}
	for i, r := range gs.Rifts {
		if !r.Active {
			continue
		}
		b := idx.At(r.Quad)
		if b == nil {
			continue
		}
		b.Rifts = appendCapped(b.Rifts, i, QuadCapRifts)
		countFor(r.Quad).Rift++
	}
	for i, m := range gs.Monsters {
		if !m.Active {
			continue
		}
		b := idx.At(m.Quad)
		if b == nil {
			continue
		}
		b.Monsters = appendCapped(b.Monsters, i, QuadCapMonsters)
		countFor(m.Quad).Monster++
	}
	for i, n := range gs.NPCs {
		if !n.Active {
			continue
		}
		b := idx.At(n.Quad)
		if b == nil {
			continue
		}
		b.NPCs = appendCapped(b.NPCs, i, QuadCapNPCShips)
		countFor(n.Quad).NPC++
	}
	for i, p := range gs.Players {
		if !p.Active {
			continue
		}
		b := idx.At(p.Quad)
		if b == nil {
			continue
		}
		b.Players = appendCapped(b.Players, i, QuadCapPlayers)
	}

	for q1 := 1; q1 <= QuadrantDim; q1++ {
		for q2 := 1; q2 <= QuadrantDim; q2++ {
			for q3 := 1; q3 <= QuadrantDim; q3++ {
				q := Quad{q1, q2, q3}
				c := counts[q1][q2][q3]
				c.IonStorm = HasIonStorm(gs.Census[q1][q2][q3])
				if gs.Supernova.Active && gs.Supernova.Quad == q {
					gs.Census[q1][q2][q3] = SupernovaOverrideCensus(gs.Supernova.Timer)
				} else {
					gs.Census[q1][q2][q3] = EncodeCensus(c)
				}
			}
		}
	}
}
