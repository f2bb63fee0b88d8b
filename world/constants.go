// Package world holds the authoritative simulation state: the entity
// tables, the spatial index, the tick scheduler, and the pure game logic
// (navigation, AI, hazards, combat) that mutates them. Nothing in this
// package touches a socket or a wire format.
package world

import "time"

// Grid geometry. The galaxy is a discrete QuadrantDim^3 grid of quadrants,
// each a continuous SectorDim^3 unit of sector space. Quadrant axes are
// 1-indexed; sector axes are 0-indexed.
const (
	QuadrantDim = 10
	SectorDim   = 10
	GalaxyDim   = QuadrantDim * SectorDim // 100, the absolute coordinate span

	// GalacticBarrierMin/Max are the clamp bounds on every absolute axis.
	GalacticBarrierMin = 0.05
	GalacticBarrierMax = 99.95
)

// Tick scheduling. The simulation advances at a fixed 30Hz rate on an
// absolute-time schedule; a single tick is one TickInterval.
const (
	TickRate     = 30
	TickInterval = time.Second / TickRate // 33.333ms
)

// Periodic phase cadences, expressed in ticks.
const (
	MapCleanupInterval     = 500  // ion storm digit decay
	LifeSupportInterval    = 100  // attrition roll
	EnvironmentRollInterval = 1000 // ion storm / shear / surge roll
	SnapshotInterval       = 1800 // ~60s checkpoint
)

// Combat timers, in ticks.
const (
	TorpedoLoadTicks      = 150 // tube reload after a launch
	TorpedoTimeoutTicks   = 300 // forced expiry of a wandering torpedo
	ShieldRegenDelayTicks = 150 // no regeneration this long after a hit
	ShieldRegenPerTick    = 1
)

// Navigation timers, in ticks.
const (
	AlignTicks    = 60
	RealignTicks  = 60
	WormholeTicks = 450
	WormholeFinalApproach = 60
)

// Combat and environment distances, in sector units (continuous space).
const (
	BlackHoleGravityDist = 3.0
	BlackHoleKillDist    = 0.6
	MineDetonateDist     = 0.4
	NebulaDrainDist      = 2.0
	PulsarCrewDist       = 2.0
	PulsarShieldDist     = 2.5
	RiftTeleportDist     = 0.5

	TorpedoAdvancePerTick = 0.25
	TorpedoPlayerRadius   = 0.8
	TorpedoNPCRadius      = 0.8
	TorpedoPlanetRadius   = 1.2
	TorpedoStarRadius     = 1.5
	TorpedoBaseRadius     = 1.0
	TorpedoPlatformRadius = 0.8
	TorpedoMonsterRadius  = 1.0

	BoardingRange   = 1.0
	DismantleRange  = 1.5
	ProximityRange  = 2.0 // min/sco/har/doc

	NPCChaseRange    = 2.1
	NPCFireRange     = 6.0
	NPCFleeExitRange = 8.5
	NPCScanRangeSq   = 100.0

	PlatformFireRange = 5.0

	CrystallineRange = 4.0
	AmoebaDrainRange = 1.5
)

// Combat and environment damage, in the same units as Energy/Shields.
const (
	MineDamage           = 25000
	TorpedoPlayerDamage  = 75000
	TorpedoNPCDamage     = 75000
	TorpedoPlatformDamage = 50000
	TorpedoMonsterDamage = 100000

	NebulaDrainPerInterval  = 50
	NebulaShieldDrainPerTick = 2
	NebulaDrainInterval     = 60

	PulsarEnergyDrain  = 50
	PulsarShieldFactor = 400.0

	CrystallineDamage = 500
	CrystallineInterval = 60
	AmoebaDamagePerTick = 200

	PlatformFireDamage = 100
	BorgBeamDamage     = 50
	KlingonBeamDamage  = 25
	DefaultBeamDamage  = 10

	BorgFireCooldown    = 100
	KlingonFireCooldown = 150
	PlatformFireCooldown = 100
)

// Ship system caps.
const (
	MaxEnergy     = 1_000_000
	MaxShieldUnit = 10000
	ShieldCount   = 6
	InventorySlots = 8
	SystemHealthSlots = 8

	CargoEnergyCap   = 100000
	CargoTorpedoCap  = 100

	BoardingEnergyCost = 5000
	BoardingSuccessPct = 0.80

	CorbomitePsyPct = 0.60
)

// Inventory slot assignments. Slot 0 is reserved; mining pulls a
// planet's resource type directly into the matching slot.
const (
	InvDilithium  = 1
	InvTritanium  = 2
	InvVerterium  = 3
	InvMonotanium = 4
	InvIsolinear  = 5
	InvGases      = 6
)

// System health slot assignments.
const (
	SysWarp = iota
	SysImpulse
	SysSensors
	SysTransporters
	SysPhasers
	SysTorpedoes
	SysComputer
	SysLife
)

// Entity category caps: global and per-quadrant. Per-quadrant caps bound
// the spatial index's fixed-capacity bucket sizes, not the master tables.
const (
	MaxStars       = 3000
	MaxPlanets     = 1000
	MaxStarbases   = 200
	MaxBlackHoles  = 200
	MaxNebulas     = 500
	MaxPulsars     = 200
	MaxComets      = 300
	MaxAsteroids   = 2000
	MaxDerelicts   = 150
	MaxMines       = 1000
	MaxBuoys       = 100
	MaxPlatforms   = 200
	MaxRifts       = 50
	MaxMonsters    = 30
	MaxNPCShips    = 1000
	MaxPlayers     = 32

	QuadCapStars      = 64
	QuadCapPlanets    = 32
	QuadCapStarbases  = 16
	QuadCapBlackHoles = 8
	QuadCapNebulas    = 16
	QuadCapPulsars    = 8
	QuadCapComets     = 8
	QuadCapAsteroids  = 40
	QuadCapDerelicts  = 8
	QuadCapMines      = 32
	QuadCapBuoys      = 8
	QuadCapPlatforms  = 16
	QuadCapRifts      = 4
	QuadCapMonsters   = 4
	QuadCapNPCShips   = 32
	QuadCapPlayers    = 32
)

// Broadcast limits.
const (
	MaxBroadcastObjects = 128
)

// Supernova.
const (
	SupernovaRollChance = 0.0005 // 0.05% per tick
	SupernovaTimer      = 1800
	SupernovaWarnMajorEvery = 300
	SupernovaWarnMinorLastSeconds = 10
	SupernovaWarnMinorEvery = 30
)

// Snapshot format.
const (
	SnapshotVersion = 20260210
	DefaultSnapshotPath = "galaxy.dat"
)

// Network.
const (
	DefaultPort = 5000
)
