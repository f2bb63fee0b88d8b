package server

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/arcturus-sim/startrek/world"
)

// nearestInQuadrant scans one bucket category for the closest active
// entity within ProximityRange of the player, returning its slot or -1.
func nearestInQuadrant(p *world.Player, slots []int, pos func(int) (world.Point3, bool)) int {
	best := -1
	bestDist := world.ProximityRange
	for _, slot := range slots {
		pt, active := pos(slot)
		if !active {
			continue
		}
		if d := world.Distance3(p.Pos, pt); d <= bestDist {
			best = slot
			bestDist = d
		}
	}
	return best
}

// cmdMine handles `min`: extract up to 100 units of a nearby planet's
// resource into the matching inventory slot, depleting the crust.
func (c *Client) cmdMine(args string) {
	p := c.player()
	gs := c.server.gs
	bucket := gs.Index.At(p.Quad)
	if bucket == nil {
		c.sendServerMsg("Sensors offline.")
		return
	}
	slot := nearestInQuadrant(p, bucket.Planets, func(i int) (world.Point3, bool) {
		pl := gs.Planets[i]
		return pl.Pos, pl.Active
	})
	if slot < 0 {
		c.sendServerMsg("No planet in range.")
		return
	}
	pl := gs.Planets[slot]
	extracted := pl.Amount
	if extracted > 100 {
		extracted = 100
	}
	if extracted <= 0 {
		c.sendServerMsg(fmt.Sprintf("%s is mined out.", pl.Name))
		return
	}
	pl.Amount -= extracted
	if pl.Resource >= 0 && pl.Resource < world.InventorySlots {
		p.Inventory[pl.Resource] += extracted
	}
	c.sendServerMsg("Mining successful.")
}

// cmdScoop handles `sco`: store solar energy in the cargo bay at the
// cost of corona damage to a random shield facing.
func (c *Client) cmdScoop(args string) {
	p := c.player()
	gs := c.server.gs
	bucket := gs.Index.At(p.Quad)
	if bucket == nil {
		c.sendServerMsg("Sensors offline.")
		return
	}
	slot := nearestInQuadrant(p, bucket.Stars, func(i int) (world.Point3, bool) {
		s := gs.Stars[i]
		return s.Pos, s.Active
	})
	if slot < 0 {
		c.sendServerMsg("No star in range.")
		return
	}
	p.CargoEnergy += 5000
	if p.CargoEnergy > world.CargoEnergyCap {
		p.CargoEnergy = world.CargoEnergyCap
	}
	scorchShield(p, 500)
	c.sendServerMsg("Solar energy stored.")
}

// cmdHarvest handles `har`: antimatter harvest off a black hole's
// accretion disk; richer than scooping, and rougher on the shields.
func (c *Client) cmdHarvest(args string) {
	p := c.player()
	gs := c.server.gs
	bucket := gs.Index.At(p.Quad)
	if bucket == nil {
		c.sendServerMsg("Sensors offline.")
		return
	}
	slot := nearestInQuadrant(p, bucket.BlackHoles, func(i int) (world.Point3, bool) {
		bh := gs.BlackHoles[i]
		return bh.Pos, bh.Active
	})
	if slot < 0 {
		c.sendServerMsg("No black hole in range.")
		return
	}
	p.CargoEnergy += 10000
	if p.CargoEnergy > world.CargoEnergyCap {
		p.CargoEnergy = world.CargoEnergyCap
	}
	p.Inventory[world.InvDilithium] += 100
	scorchShield(p, 1000)
	c.sendServerMsg("Antimatter stored.")
}

func scorchShield(p *world.Player, amount int) {
	i := rand.Intn(world.ShieldCount)
	p.Shields[i] -= amount
	if p.Shields[i] < 0 {
		p.Shields[i] = 0
	}
}

// cmdDock handles `doc`: full resupply and repair at a starbase.
func (c *Client) cmdDock(args string) {
	p := c.player()
	gs := c.server.gs
	bucket := gs.Index.At(p.Quad)
	if bucket == nil {
		c.sendServerMsg("Sensors offline.")
		return
	}
	slot := nearestInQuadrant(p, bucket.Starbases, func(i int) (world.Point3, bool) {
		b := gs.Starbases[i]
		return b.Pos, b.Active
	})
	if slot < 0 {
		c.sendServerMsg("No starbase in range.")
		return
	}

	p.Energy = world.MaxEnergy
	p.Torpedoes = 1000
	for i := range p.SystemHealth {
		p.SystemHealth[i] = 100
	}
	p.LifeSupport = 100
	c.sendServerMsg("Docking complete.")
}

// conversionRate maps an inventory slot to its cargo yield: what one
// unit converts into, and whether it becomes energy or torpedoes.
var conversionRate = map[int]struct {
	energy, torps int
}{
	world.InvDilithium: {energy: 10},
	world.InvTritanium: {energy: 2},
	world.InvVerterium: {torps: 1}, // per 20 units, handled below
	world.InvGases:     {energy: 5},
}

// cmdConvert handles `con slot amount`: run raw minerals through the
// cargo-bay converter. Dilithium, tritanium, and gases become cargo
// energy; verterium becomes cargo torpedoes at 20:1.
func (c *Client) cmdConvert(args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		c.sendServerMsg("Usage: con <slot> <amount>")
		return
	}
	slot, err1 := strconv.Atoi(fields[0])
	amount, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || slot < world.InvDilithium || slot > world.InvGases || amount <= 0 {
		c.sendServerMsg("Usage: con <slot> <amount>")
		return
	}
	p := c.player()
	if p.Inventory[slot] < amount {
		c.sendServerMsg("Insufficient materials in that slot.")
		return
	}
	rate, ok := conversionRate[slot]
	if !ok {
		c.sendServerMsg("That material cannot be converted.")
		return
	}

	p.Inventory[slot] -= amount
	if rate.energy > 0 {
		p.CargoEnergy += amount * rate.energy
		if p.CargoEnergy > world.CargoEnergyCap {
			p.CargoEnergy = world.CargoEnergyCap
		}
	} else {
		p.CargoTorps += amount / 20
		if p.CargoTorps > world.CargoTorpedoCap {
			p.CargoTorps = world.CargoTorpedoCap
		}
	}
	c.sendServerMsg("Assets stored in cargo bay.")
}

// cmdLoad handles `load type amount`: transfer cargo into the ship.
// Type 1 is energy, type 2 is torpedoes.
func (c *Client) cmdLoad(args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		c.sendServerMsg("Usage: load <1|2> <amount>")
		return
	}
	kind, err1 := strconv.Atoi(fields[0])
	amount, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || amount <= 0 {
		c.sendServerMsg("Usage: load <1|2> <amount>")
		return
	}
	p := c.player()
	switch kind {
	case 1:
		if amount > p.CargoEnergy {
			amount = p.CargoEnergy
		}
		p.CargoEnergy -= amount
		p.Energy += amount
		if p.Energy > world.MaxEnergy {
			p.Energy = world.MaxEnergy
		}
		c.sendServerMsg("Energy loaded.")
	case 2:
		if amount > p.CargoTorps {
			amount = p.CargoTorps
		}
		p.CargoTorps -= amount
		p.Torpedoes += amount
		if p.Torpedoes > 1000 {
			p.Torpedoes = 1000
		}
		c.sendServerMsg("Torpedoes loaded.")
	default:
		c.sendServerMsg("Usage: load <1|2> <amount>")
	}
}

// repairCost returns the material slot and amount one system repair
// consumes: structural systems take monotanium, electronics take
// isolinear chips.
func repairCost(sys int) (slot, amount int) {
	switch sys {
	case world.SysWarp, world.SysImpulse, world.SysTorpedoes, world.SysLife:
		return world.InvMonotanium, 50
	default:
		return world.InvIsolinear, 30
	}
}

// cmdRepair handles `rep sid`: restore one system to full health by
// spending repair materials.
func (c *Client) cmdRepair(args string) {
	sid, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || sid < 0 || sid >= world.SystemHealthSlots {
		c.sendServerMsg("Usage: rep <system 0-7>")
		return
	}
	p := c.player()
	slot, amount := repairCost(sid)
	if p.Inventory[slot] < amount {
		c.sendServerMsg("Insufficient materials.")
		return
	}
	p.Inventory[slot] -= amount
	p.SystemHealth[sid] = 100
	c.sendServerMsg("Repairs complete.")
}
