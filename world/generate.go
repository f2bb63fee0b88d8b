package world

import (
	"fmt"
	"math/rand"
)

// Generation densities: how much of each master table a fresh galaxy
// actually populates. Global caps bound the tables; these bound the
// starting world.
const (
	genStars     = 400
	genPlanets   = 150
	genStarbases = 60
	genBlackHoles = 40
	genNebulas   = 80
	genPulsars   = 30
	genComets    = 40
	genAsteroids = 300
	genDerelicts = 25
	genMines     = 120
	genBuoys     = 30
	genPlatforms = 50
	genRifts     = 15
	genMonsters  = 6
	genNPCs      = 150
)

// GenerateGalaxy populates an empty GameState with a fresh random world.
// Every entity gets a position uniform over the barrier-clamped galaxy
// and a quadrant derived from it; callers SeedStatic and Rebuild after.
func GenerateGalaxy(gs *GameState) {
	place := func(b *baseEntity) {
		b.Active = true
		b.Pos = randomGalaxyPoint()
		b.Quad = DeriveQuadrant(b.Pos)
	}

	for i := 0; i < genStars; i++ {
		s := gs.Stars[i]
		place(&s.baseEntity)
		s.Name = fmt.Sprintf("Star-%04d", i)
	}
	for i := 0; i < genPlanets; i++ {
		p := gs.Planets[i]
		place(&p.baseEntity)
		p.Name = fmt.Sprintf("Planet-%03d", i)
		p.Resource = InvDilithium + rand.Intn(InvGases-InvDilithium+1)
		p.Amount = 500 + rand.Intn(1500)
	}
	for i := 0; i < genStarbases; i++ {
		b := gs.Starbases[i]
		place(&b.baseEntity)
		b.Owner = rand.Intn(3)
	}
	for i := 0; i < genBlackHoles; i++ {
		place(&gs.BlackHoles[i].baseEntity)
	}
	for i := 0; i < genNebulas; i++ {
		place(&gs.Nebulas[i].baseEntity)
	}
	for i := 0; i < genPulsars; i++ {
		place(&gs.Pulsars[i].baseEntity)
	}
	for i := 0; i < genComets; i++ {
		c := gs.Comets[i]
		place(&c.baseEntity)
		c.OrbitCenter = c.Pos
		c.OrbitRadius = 2 + rand.Float64()*6
		c.OrbitSpeed = 0.002 + rand.Float64()*0.004
		c.OrbitAngle = rand.Float64() * 6.28318
	}
	for i := 0; i < genAsteroids; i++ {
		place(&gs.Asteroids[i].baseEntity)
	}
	for i := 0; i < genDerelicts; i++ {
		place(&gs.Derelicts[i].baseEntity)
	}
	for i := 0; i < genMines; i++ {
		place(&gs.Mines[i].baseEntity)
	}
	for i := 0; i < genBuoys; i++ {
		place(&gs.Buoys[i].baseEntity)
	}
	for i := 0; i < genPlatforms; i++ {
		pl := gs.Platforms[i]
		place(&pl.baseEntity)
		pl.Owner = rand.Intn(3)
	}
	for i := 0; i < genRifts; i++ {
		place(&gs.Rifts[i].baseEntity)
	}
	for i := 0; i < genMonsters; i++ {
		m := gs.Monsters[i]
		place(&m.baseEntity)
		if i%2 == 0 {
			m.Type = MonsterCrystalline
		} else {
			m.Type = MonsterAmoeba
		}
		m.Energy = 100000
	}
	for i := 0; i < genNPCs; i++ {
		n := gs.NPCs[i]
		place(&n.baseEntity)
		n.Type = npcTypeFor(i)
		n.Energy = 50000
		n.EngineHealth = 100
		n.State = NPCPatrol
	}
}

func npcTypeFor(i int) int {
	switch i % 5 {
	case 0:
		return NPCTypeBorg
	case 1, 2:
		return NPCTypeKlingon
	default:
		return NPCTypeGeneric
	}
}

func randomGalaxyPoint() Point3 {
	span := GalacticBarrierMax - GalacticBarrierMin
	return Point3{
		X: GalacticBarrierMin + rand.Float64()*span,
		Y: GalacticBarrierMin + rand.Float64()*span,
		Z: GalacticBarrierMin + rand.Float64()*span,
	}
}

// crewByClass maps a ship class to its starting crew complement.
var crewByClass = map[int]int{
	0: 430, // heavy cruiser
	1: 200, // destroyer
	2: 100, // escort
	3: 50,  // scout
	4: 800, // carrier
}

// InitPlayer zeroes a slot and gives it a fresh ship: class-determined
// crew, a random spawn quadrant centered at sector (5,5,5), full energy
// and stores, and full system health. Used on a name's first-ever login;
// returning players keep their persisted state instead.
func InitPlayer(p *Player, name string, faction, shipClass int) {
	slot := p.Slot
	*p = Player{Slot: slot}

	p.Name = name
	p.Faction = faction
	p.ShipClass = shipClass
	p.Active = true

	q := Quad{
		Q1: 1 + rand.Intn(QuadrantDim),
		Q2: 1 + rand.Intn(QuadrantDim),
		Q3: 1 + rand.Intn(QuadrantDim),
	}
	p.Pos = Point3{
		X: float64(q.Q1-1)*SectorDim + 5,
		Y: float64(q.Q2-1)*SectorDim + 5,
		Z: float64(q.Q3-1)*SectorDim + 5,
	}
	p.Quad = q
	p.Sec = DeriveSector(p.Pos, q)

	crew, ok := crewByClass[shipClass]
	if !ok {
		crew = crewByClass[0]
	}
	p.Crew = crew
	p.Energy = MaxEnergy - 1
	p.Torpedoes = 1000
	p.Inventory[InvDilithium] = 10
	for i := range p.SystemHealth {
		p.SystemHealth[i] = 100
	}
	for i := range p.Shields {
		p.Shields[i] = MaxShieldUnit
	}
	p.PowerDist = [3]float64{0.33, 0.33, 0.34}
	p.LifeSupport = 100
}

// FindPlayerByName returns the slot whose persisted name matches, or -1.
func FindPlayerByName(gs *GameState, name string) int {
	for i, p := range gs.Players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// FreePlayerSlot returns the first never-claimed slot, or -1 if the
// server is full.
func FreePlayerSlot(gs *GameState) int {
	for i, p := range gs.Players {
		if p.Name == "" {
			return i
		}
	}
	return -1
}
