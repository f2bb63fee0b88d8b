package world

import (
	"math"
	"sync"
)

// NavState is the discrete ship motion mode, advanced once per tick.
type NavState int

const (
	NavIdle NavState = iota
	NavAlign
	NavWarp
	NavRealign
	NavImpulse
	NavAlignImpulse
	NavChase
	NavWormhole
)

// NPCState is the NPC AI behavior mode.
type NPCState int

const (
	NPCPatrol NPCState = iota
	NPCChase
	NPCFlee
	// NPCAttackRun and NPCAttackPosition are reserved: the source declares
	// them but never transitions into either behaviorally.
	NPCAttackRun
	NPCAttackPosition
)

// NPC type codes (ship classes); Borg and Klingon get distinguished combat
// behavior (§4.5), everything else is generic.
const (
	NPCTypeGeneric = 0
	NPCTypeKlingon = 1
	NPCTypeBorg    = 2
)

// Monster subtypes.
const (
	MonsterCrystalline = 30
	MonsterAmoeba      = 31
)

// Quad is a quadrant coordinate triple, axes in [1,10].
type Quad struct {
	Q1, Q2, Q3 int
}

// Sector is a sector coordinate triple, axes in [0,10).
type Sector struct {
	S1, S2, S3 float64
}

// Point3 is an absolute galactic coordinate triple, axes in [0,100).
type Point3 struct {
	X, Y, Z float64
}

// DeriveQuadrantAxis computes the 1-indexed quadrant coordinate for one
// absolute axis: qi = floor(gi/10) + 1.
func DeriveQuadrantAxis(g float64) int {
	q := int(math.Floor(g/float64(SectorDim))) + 1
	if q < 1 {
		q = 1
	} else if q > QuadrantDim {
		q = QuadrantDim
	}
	return q
}

// DeriveSectorAxis computes the sector coordinate for one absolute axis
// given its already-derived quadrant index: si = gi - (qi-1)*10.
func DeriveSectorAxis(g float64, q int) float64 {
	return g - float64(q-1)*float64(SectorDim)
}

// DeriveQuadrant and DeriveSector recompute the (quadrant, sector) pair
// from an absolute position; this pair is always a derived view, never an
// independent source of truth, for any entity that moves continuously.
func DeriveQuadrant(p Point3) Quad {
	return Quad{
		Q1: DeriveQuadrantAxis(p.X),
		Q2: DeriveQuadrantAxis(p.Y),
		Q3: DeriveQuadrantAxis(p.Z),
	}
}

func DeriveSector(p Point3, q Quad) Sector {
	return Sector{
		S1: DeriveSectorAxis(p.X, q.Q1),
		S2: DeriveSectorAxis(p.Y, q.Q2),
		S3: DeriveSectorAxis(p.Z, q.Q3),
	}
}

// ClampBarrier clamps one absolute axis to the Galactic Barrier and
// reports whether clamping occurred.
func ClampBarrier(g float64) (float64, bool) {
	if g < GalacticBarrierMin {
		return GalacticBarrierMin, true
	}
	if g > GalacticBarrierMax {
		return GalacticBarrierMax, true
	}
	return g, false
}

// NormalizeHeadingMark applies the fold rule: |m|>90 folds m to
// ±(180-|m|) and flips heading by 180°, then wraps heading into [0,360).
func NormalizeHeadingMark(h, m float64) (float64, float64) {
	if m > 90 {
		m = 180 - m
		h += 180
	} else if m < -90 {
		m = -180 - m
		h += 180
	}
	for h < 0 {
		h += 360
	}
	for h >= 360 {
		h -= 360
	}
	return h, m
}

// UnitVector3 returns the unit direction vector for a heading/mark pair.
// Heading is measured in the XY plane from +X, mark is elevation above it.
func UnitVector3(h, m float64) Point3 {
	hr := h * math.Pi / 180
	mr := m * math.Pi / 180
	return Point3{
		X: math.Cos(mr) * math.Cos(hr),
		Y: math.Cos(mr) * math.Sin(hr),
		Z: math.Sin(mr),
	}
}

// TorpedoState is a player's single outstanding torpedo.
type TorpedoState struct {
	Active  bool
	Pos     Point3
	Dir     Point3 // unit vector
	Target  int    // universal id, 0 = unguided
	Load    int    // tube reload ticks remaining; 0 = ready to fire
	Timeout int    // ticks until forced expiry
}

// TransientEffects are visual events flattened onto the player record.
// The broadcaster clears the Beam, Boom, JumpArrival and Dismantle flags
// right after copying them into an outbound packet, so each fires once.
// The Wormhole marker stays raised for the whole jump sequence and is
// cleared by the navigation code on arrival. The broadcaster takes the
// torpedo marker from Player.Torpedo and does not read Torp or SupernovaPos.
type TransientEffects struct {
	Beam struct {
		Active          bool
		TX, TY, TZ      float64
	}
	Boom struct {
		Active     bool
		X, Y, Z    float64
	}
	Torp struct {
		Active  bool
		X, Y, Z float64
	}
	Wormhole struct {
		Active  bool
		X, Y, Z float64
	}
	JumpArrival struct {
		Active  bool
		X, Y, Z float64
	}
	Dismantle struct {
		Active  bool
		X, Y, Z float64
		Species int
	}
	SupernovaPos struct {
		Active bool
		X, Y, Z float64
		Q      Quad
	}
}

// BoardingRecord is a slot for a pending boarding action. The `bor`
// handler resolves boarding immediately and neither reads nor writes it.
type BoardingRecord struct {
	Pending bool
	Target  int
}

// Player is a per-session record: persistent ship state plus live
// connection/navigation/combat scratch fields. It outlives disconnects —
// only an operator zeroing or a fresh name claims a blank slot.
type Player struct {
	Slot   int
	Active bool
	Name   string
	Faction int
	ShipClass int
	Cipher  int

	// Position: absolute coordinates are the single source of truth;
	// quadrant/sector are recomputed from them every tick.
	Pos  Point3
	Quad Quad
	Sec  Sector

	// Motion vector (unit direction the ship is currently advancing along).
	Dir Point3

	Heading, Mark             float64
	TargetHeading, TargetMark float64
	StartHeading, StartMark   float64

	NavState    NavState
	NavTimer    int
	WarpSpeed   float64
	TargetPos   Point3
	ApproachDist float64
	ChaseTarget int

	Wormhole struct {
		Target Point3
		Mouth  Point3
	}

	Torpedo TorpedoState

	ShieldRegenDelay int
	RenegadeTimer    int
	Boarding         BoardingRecord

	// Ship systems snapshot.
	Energy       int
	Torpedoes    int
	Shields      [ShieldCount]int
	Inventory    [InventorySlots]int
	SystemHealth [SystemHealthSlots]float64
	PowerDist    [3]float64
	LifeSupport  float64
	Crew         int
	CargoEnergy  int
	CargoTorps   int
	Corbomite    int
	LockTarget   int

	Cloaked bool

	Effects TransientEffects

	// Connection-layer fields, owned by the server package but stored
	// here so the world lock also protects them while the tick reads the
	// player's cloak/active state during broadcast filtering.
	Connected bool
}

// IsAlive reports whether the ship still fights: active with energy
// and crew remaining.
func (p *Player) IsAlive() bool {
	return p.Active && p.Energy > 0 && p.Crew > 0
}

// baseEntity fields shared by every static/dynamic non-player entity:
// an id within its class, a position, and an active flag.
type baseEntity struct {
	ID     int
	Active bool
	Pos    Point3
	Quad   Quad
}

type Star struct {
	baseEntity
	Name string
}

type Planet struct {
	baseEntity
	Name  string
	Owner int

	// Resource is the inventory slot mining extracts into; Amount is
	// how much is left in the crust.
	Resource int
	Amount   int
}

type Starbase struct {
	baseEntity
	Owner int
}

type BlackHole struct {
	baseEntity
}

type Nebula struct {
	baseEntity
}

type Pulsar struct {
	baseEntity
}

type Comet struct {
	baseEntity
	OrbitAngle  float64
	OrbitRadius float64
	OrbitCenter Point3
	OrbitSpeed  float64
}

type Asteroid struct {
	baseEntity
}

type Derelict struct {
	baseEntity
}

type Mine struct {
	baseEntity
	Owner int
}

type Buoy struct {
	baseEntity
}

type Platform struct {
	baseEntity
	Owner        int
	FireCooldown int
}

type Rift struct {
	baseEntity
}

type Monster struct {
	baseEntity
	Type   int // MonsterCrystalline or MonsterAmoeba
	Energy int
	Target int
}

// NPCShip is a patrol/combat AI-controlled ship, structurally similar to a
// Player's ship systems but without a connection.
type NPCShip struct {
	baseEntity
	Type   int // NPCTypeGeneric/Klingon/Borg
	Energy int
	EngineHealth float64

	Dir          Point3
	PatrolTimer  int
	FireCooldown int

	// FleeTimer, while positive, pins the AI in FLEE regardless of the
	// normal energy/scan selection; set by a successful corbomite bluff.
	FleeTimer int

	State NPCState
}

// Supernova is the singleton in-flight supernova event; at most one at
// a time.
type Supernova struct {
	Active    bool
	Quad      Quad
	Timer     int
	Epicenter Point3
	StarID    int
}

// GameState is the global singleton: every entity table, the supernova
// record, and the frame counter. The world lock (Mu) guards all of it.
type GameState struct {
	Mu sync.Mutex

	Frame     int64
	TickCount int64

	Players   [MaxPlayers]*Player
	NPCs      [MaxNPCShips]*NPCShip
	Stars     [MaxStars]*Star
	Planets   [MaxPlanets]*Planet
	Starbases [MaxStarbases]*Starbase
	BlackHoles [MaxBlackHoles]*BlackHole
	Nebulas   [MaxNebulas]*Nebula
	Pulsars   [MaxPulsars]*Pulsar
	Comets    [MaxComets]*Comet
	Asteroids [MaxAsteroids]*Asteroid
	Derelicts [MaxDerelicts]*Derelict
	Mines     [MaxMines]*Mine
	Buoys     [MaxBuoys]*Buoy
	Platforms [MaxPlatforms]*Platform
	Rifts     [MaxRifts]*Rift
	Monsters  [MaxMonsters]*Monster

	Supernova Supernova

	// Census is the per-quadrant 17-digit packed decimal summary read
	// by long-range sensors and the map. Indexed [q1][q2][q3], 1-based
	// with index 0 unused, so axis i spans [1, QuadrantDim].
	Census [QuadrantDim + 1][QuadrantDim + 1][QuadrantDim + 1]int64

	Index *SpatialIndex

	// PendingSnapshot is set by Tick every SnapshotInterval ticks and by a
	// supernova's annihilation. The server's tick loop clears it before
	// releasing the world lock after the tick, then writes the checkpoint
	// under a separate hold of the lock.
	PendingSnapshot bool
}

// NewGameState allocates an empty world with all slots initialized to
// their at-rest state (inactive, sentinel targets) but does not populate
// any entity; callers generate or load a galaxy separately.
func NewGameState() *GameState {
	gs := &GameState{}
	for i := range gs.Players {
		gs.Players[i] = &Player{Slot: i, LockTarget: 0, ChaseTarget: 0, Boarding: BoardingRecord{}}
	}
	for i := range gs.NPCs {
		gs.NPCs[i] = &NPCShip{baseEntity: baseEntity{ID: i}}
	}
	for i := range gs.Stars {
		gs.Stars[i] = &Star{baseEntity: baseEntity{ID: i}}
	}
	for i := range gs.Planets {
		gs.Planets[i] = &Planet{baseEntity: baseEntity{ID: i}}
	}
	for i := range gs.Starbases {
		gs.Starbases[i] = &Starbase{baseEntity: baseEntity{ID: i}}
	}
	for i := range gs.BlackHoles {
		gs.BlackHoles[i] = &BlackHole{baseEntity: baseEntity{ID: i}}
	}
	for i := range gs.Nebulas {
		gs.Nebulas[i] = &Nebula{baseEntity: baseEntity{ID: i}}
	}
	for i := range gs.Pulsars {
		gs.Pulsars[i] = &Pulsar{baseEntity: baseEntity{ID: i}}
	}
	for i := range gs.Comets {
		gs.Comets[i] = &Comet{baseEntity: baseEntity{ID: i}}
	}
	for i := range gs.Asteroids {
		gs.Asteroids[i] = &Asteroid{baseEntity: baseEntity{ID: i}}
	}
	for i := range gs.Derelicts {
		gs.Derelicts[i] = &Derelict{baseEntity: baseEntity{ID: i}}
	}
	for i := range gs.Mines {
		gs.Mines[i] = &Mine{baseEntity: baseEntity{ID: i}}
	}
	for i := range gs.Buoys {
		gs.Buoys[i] = &Buoy{baseEntity: baseEntity{ID: i}}
	}
	for i := range gs.Platforms {
		gs.Platforms[i] = &Platform{baseEntity: baseEntity{ID: i}}
	}
	for i := range gs.Rifts {
		gs.Rifts[i] = &Rift{baseEntity: baseEntity{ID: i}}
	}
	for i := range gs.Monsters {
		gs.Monsters[i] = &Monster{baseEntity: baseEntity{ID: i}}
	}
	gs.Index = NewSpatialIndex()
	return gs
}

// Distance3 is the Euclidean distance between two absolute points.
func Distance3(a, b Point3) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
