package server

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/arcturus-sim/startrek/world"
)

// cmdPhaser handles `pha E`: fire phasers at the locked target with E
// units of energy behind the beam.
func (c *Client) cmdPhaser(args string) {
	energy, err := strconv.ParseFloat(args, 64)
	if err != nil || energy <= 0 {
		c.sendServerMsg("Usage: pha <energy>")
		return
	}
	p := c.player()
	if p.LockTarget <= 0 {
		c.sendServerMsg("No target locked.")
		return
	}
	if float64(p.Energy) < energy {
		c.sendServerMsg("Insufficient energy for phasers.")
		return
	}
	if p.SystemHealth[world.SysPhasers] < 10 {
		c.sendServerMsg("Phaser banks are too damaged to fire.")
		return
	}

	hit := world.FirePhaser(c.server.gs, p, energy)
	if hit <= 0 {
		c.sendServerMsg("Phasers failed to connect.")
		return
	}
	p.Effects.Beam.Active = true
	if pos, ok := world.TargetPosition(c.server.gs, p.LockTarget); ok {
		p.Effects.Beam.TX, p.Effects.Beam.TY, p.Effects.Beam.TZ = pos.X, pos.Y, pos.Z
	}
	c.sendServerMsg(fmt.Sprintf("Phasers fired: %d units on target %d.", hit, p.LockTarget))
}

// cmdTorpedo handles `tor [H M]`: guided when a lock is held, manual
// along an explicit heading/mark otherwise.
func (c *Client) cmdTorpedo(args string) {
	p := c.player()
	if p.Torpedo.Active {
		c.sendServerMsg("Torpedo tube is still tracking.")
		return
	}
	if p.Torpedo.Load > 0 {
		c.sendServerMsg("Torpedo tube is still reloading.")
		return
	}
	if p.Torpedoes <= 0 {
		c.sendServerMsg("Torpedo magazine is empty.")
		return
	}

	if p.LockTarget > 0 {
		if !world.FireTorpedo(c.server.gs, p, true, 0, 0) {
			c.sendServerMsg("Torpedo launch failed.")
			return
		}
		c.sendServerMsg(fmt.Sprintf("Torpedo away, tracking target %d.", p.LockTarget))
		return
	}

	v, ok := parseFloats(args, 2)
	if !ok {
		c.sendServerMsg("Usage: tor <heading> <mark> (or lock a target first)")
		return
	}
	if !world.FireTorpedo(c.server.gs, p, false, v[0], v[1]) {
		c.sendServerMsg("Torpedo launch failed.")
		return
	}
	c.sendServerMsg("Torpedo away.")
}

// cmdShields handles `she F R T B L RI`: overwrite all six shield
// facings, clamped to their unit cap.
func (c *Client) cmdShields(args string) {
	fields := strings.Fields(args)
	if len(fields) != world.ShieldCount {
		c.sendServerMsg("Usage: she <front> <rear> <top> <bottom> <left> <right>")
		return
	}
	var vals [world.ShieldCount]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			c.sendServerMsg("Shield values must be non-negative integers.")
			return
		}
		if v > world.MaxShieldUnit {
			v = world.MaxShieldUnit
		}
		vals[i] = v
	}
	p := c.player()
	p.Shields = vals
	c.sendServerMsg("Shield configuration set.")
}

// cmdLock handles `lock id`. Zero clears. Players and NPCs may be
// locked from anywhere; static classes only while in the same quadrant.
func (c *Client) cmdLock(args string) {
	id, err := strconv.Atoi(args)
	if err != nil || id < 0 {
		c.sendServerMsg("Usage: lock <target-id> (0 to clear)")
		return
	}
	p := c.player()
	if id == 0 {
		p.LockTarget = 0
		c.sendServerMsg("Target lock released.")
		return
	}

	gs := c.server.gs
	pos, ok := world.TargetPosition(gs, id)
	if !ok {
		c.sendServerMsg("No such target.")
		return
	}
	class, _ := world.ResolveUniversalID(id)
	if class != world.ClassPlayer && class != world.ClassNPC {
		if world.DeriveQuadrant(pos) != p.Quad {
			c.sendServerMsg("Target is not in this quadrant.")
			return
		}
	}
	p.LockTarget = id
	c.sendServerMsg(fmt.Sprintf("Target %d locked.", id))
}

// cmdCloak handles `clo`: toggle the cloaking device.
func (c *Client) cmdCloak(args string) {
	p := c.player()
	p.Cloaked = !p.Cloaked
	if p.Cloaked {
		c.sendServerMsg("Cloaking device engaged.")
	} else {
		c.sendServerMsg("Cloaking device disengaged.")
	}
}

// cmdBoard handles `bor`: attempt to board the locked target at close
// range. Success cripples the victim; failure just burns the energy.
func (c *Client) cmdBoard(args string) {
	p := c.player()
	gs := c.server.gs
	if p.LockTarget <= 0 {
		c.sendServerMsg("No target locked.")
		return
	}
	pos, ok := world.TargetPosition(gs, p.LockTarget)
	if !ok {
		c.sendServerMsg("Target lost.")
		return
	}
	if world.Distance3(p.Pos, pos) >= world.BoardingRange {
		c.sendServerMsg("Too far away to board.")
		return
	}
	if p.Energy < world.BoardingEnergyCost {
		c.sendServerMsg("Insufficient energy to run transporters.")
		return
	}
	p.Energy -= world.BoardingEnergyCost

	if rand.Float64() >= world.BoardingSuccessPct {
		c.sendServerMsg("Boarding party repelled.")
		return
	}

	class, slot := world.ResolveUniversalID(p.LockTarget)
	switch class {
	case world.ClassPlayer:
		target := gs.Players[slot]
		for i := range target.SystemHealth {
			target.SystemHealth[i] /= 2
		}
		c.sendServerMsg("Boarding party successful: enemy systems sabotaged.")
	case world.ClassNPC:
		target := gs.NPCs[slot]
		target.EngineHealth = 0
		target.Energy -= target.Energy * 30 / 100
		c.sendServerMsg("Boarding party successful: enemy engines disabled.")
	default:
		c.sendServerMsg("That target cannot be boarded.")
	}
}

// cmdDismantle handles `dis`: strip a disabled NPC hulk for materials.
func (c *Client) cmdDismantle(args string) {
	p := c.player()
	gs := c.server.gs
	class, slot := world.ResolveUniversalID(p.LockTarget)
	if class != world.ClassNPC {
		c.sendServerMsg("Lock a derelict enemy ship first.")
		return
	}
	target := gs.NPCs[slot]
	if !target.Active {
		c.sendServerMsg("Target lost.")
		return
	}
	if world.Distance3(p.Pos, target.Pos) >= world.DismantleRange {
		c.sendServerMsg("Too far away to dismantle.")
		return
	}
	if target.EngineHealth > 10 {
		c.sendServerMsg("Target is still under power.")
		return
	}

	tritanium := target.Energy / 100
	p.Inventory[world.InvTritanium] += tritanium
	p.Inventory[world.InvIsolinear] += tritanium / 5
	target.Active = false

	p.Effects.Dismantle.Active = true
	p.Effects.Dismantle.X, p.Effects.Dismantle.Y, p.Effects.Dismantle.Z = target.Pos.X, target.Pos.Y, target.Pos.Z
	p.Effects.Dismantle.Species = target.Type
	c.sendServerMsg(fmt.Sprintf("Hulk dismantled: %d Tritanium, %d Isolinear chips recovered.", tritanium, tritanium/5))
}

// cmdPsy handles `psy`: the corbomite bluff. One corbomite is consumed
// either way; 60% of the time every NPC in the quadrant breaks and runs.
func (c *Client) cmdPsy(args string) {
	p := c.player()
	if p.Corbomite <= 0 {
		c.sendServerMsg("No corbomite devices aboard.")
		return
	}
	p.Corbomite--

	if rand.Float64() >= world.CorbomitePsyPct {
		c.sendServerMsg("The enemy is ignoring our broadcast. Bluff failed.")
		return
	}

	gs := c.server.gs
	bucket := gs.Index.At(p.Quad)
	if bucket != nil {
		for _, slot := range bucket.NPCs {
			n := gs.NPCs[slot]
			if n.Active {
				n.State = world.NPCFlee
				n.FleeTimer = 300
				n.Energy += 5000 // panic boost so the rout outruns pursuit
			}
		}
	}
	c.sendServerMsg("Bluff successful. Hostile vessels are breaking formation!")
}

// cmdSelfDestruct handles `xxx`.
func (c *Client) cmdSelfDestruct(args string) {
	p := c.player()
	p.Active = false
	p.Effects.Boom.Active = true
	p.Effects.Boom.X, p.Effects.Boom.Y, p.Effects.Boom.Z = p.Pos.X, p.Pos.Y, p.Pos.Z
	c.sendServerMsg("Self-destruct sequence complete.")
}
