package world

// Universal target id offsets. Every entity is addressable on the wire by
// a single flat 32-bit id: its class offset plus its slot index within
// that class's master table. This mapping is part of the external
// contract and must not change without a protocol version bump.
const (
	IDOffsetPlayer     = 1
	IDOffsetNPC        = 1000
	IDOffsetStarbase   = 2000
	IDOffsetPlanet     = 3000
	IDOffsetStar       = 4000
	IDOffsetBlackHole  = 7000
	IDOffsetNebula     = 8000
	IDOffsetPulsar     = 9000
	IDOffsetComet      = 10000
	IDOffsetDerelict   = 11000
	IDOffsetAsteroid   = 12000
	IDOffsetMine       = 14000
	IDOffsetBuoy       = 15000
	IDOffsetPlatform   = 16000
	IDOffsetRift       = 17000
	IDOffsetMonster    = 18000
)

// EntityClass identifies which master table a universal id resolves into.
type EntityClass int

const (
	ClassUnknown EntityClass = iota
	ClassPlayer
	ClassNPC
	ClassStarbase
	ClassPlanet
	ClassStar
	ClassBlackHole
	ClassNebula
	ClassPulsar
	ClassComet
	ClassDerelict
	ClassAsteroid
	ClassMine
	ClassBuoy
	ClassPlatform
	ClassRift
	ClassMonster
)

// idRange pairs a class with the half-open [lo, hi) universal-id window
// it owns; the windows are disjoint, so a single linear scan resolves
// any id unambiguously.
type idRange struct {
	class  EntityClass
	lo, hi int
}

var idRanges = []idRange{
	{ClassPlayer, IDOffsetPlayer, IDOffsetPlayer + MaxPlayers},
	{ClassNPC, IDOffsetNPC, IDOffsetNPC + MaxNPCShips},
	{ClassStarbase, IDOffsetStarbase, IDOffsetStarbase + MaxStarbases},
	{ClassPlanet, IDOffsetPlanet, IDOffsetPlanet + MaxPlanets},
	{ClassStar, IDOffsetStar, IDOffsetStar + MaxStars},
	{ClassBlackHole, IDOffsetBlackHole, IDOffsetBlackHole + MaxBlackHoles},
	{ClassNebula, IDOffsetNebula, IDOffsetNebula + MaxNebulas},
	{ClassPulsar, IDOffsetPulsar, IDOffsetPulsar + MaxPulsars},
	{ClassComet, IDOffsetComet, IDOffsetComet + MaxComets},
	{ClassDerelict, IDOffsetDerelict, IDOffsetDerelict + MaxDerelicts},
	{ClassAsteroid, IDOffsetAsteroid, IDOffsetAsteroid + MaxAsteroids},
	{ClassMine, IDOffsetMine, IDOffsetMine + MaxMines},
	{ClassBuoy, IDOffsetBuoy, IDOffsetBuoy + MaxBuoys},
	{ClassPlatform, IDOffsetPlatform, IDOffsetPlatform + MaxPlatforms},
	{ClassRift, IDOffsetRift, IDOffsetRift + MaxRifts},
	{ClassMonster, IDOffsetMonster, IDOffsetMonster + MaxMonsters},
}

// UniversalID returns the flat wire id for a slot in the given class.
func UniversalID(class EntityClass, slot int) int {
	for _, r := range idRanges {
		if r.class == class {
			return r.lo + slot
		}
	}
	return 0
}

// ResolveUniversalID maps a flat wire id back to its class and slot index.
// It returns ClassUnknown if the id falls in no known range. NPC ids use
// this single 1000+ window everywhere; the legacy 100..499 window some
// older clients used is not honored.
func ResolveUniversalID(id int) (EntityClass, int) {
	for _, r := range idRanges {
		if id >= r.lo && id < r.hi {
			return r.class, id - r.lo
		}
	}
	return ClassUnknown, -1
}
