package server

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arcturus-sim/startrek/world"
)

// navStateName maps a nav state to its HUD label.
var navStateName = map[world.NavState]string{
	world.NavIdle:         "IDLE",
	world.NavAlign:        "ALIGN",
	world.NavWarp:         "WARP",
	world.NavRealign:      "REALIGN",
	world.NavImpulse:      "IMPULSE",
	world.NavAlignImpulse: "ALIGN-IMPULSE",
	world.NavChase:        "CHASE",
	world.NavWormhole:     "WORMHOLE",
}

// cmdShortRangeScan handles `srs`: a text summary of the current
// quadrant's contents.
func (c *Client) cmdShortRangeScan(args string) {
	p := c.player()
	gs := c.server.gs
	b := gs.Index.At(p.Quad)
	if b == nil {
		c.sendServerMsg("Sensors offline.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Short range scan, quadrant %d-%d-%d:\n", p.Quad.Q1, p.Quad.Q2, p.Quad.Q3)
	fmt.Fprintf(&sb, "  stars %d  planets %d  bases %d  black holes %d\n",
		len(b.Stars), len(b.Planets), len(b.Starbases), len(b.BlackHoles))
	fmt.Fprintf(&sb, "  nebulas %d  pulsars %d  comets %d  asteroids %d\n",
		len(b.Nebulas), len(b.Pulsars), len(b.Comets), len(b.Asteroids))
	fmt.Fprintf(&sb, "  mines %d  platforms %d  rifts %d  monsters %d\n",
		len(b.Mines), len(b.Platforms), len(b.Rifts), len(b.Monsters))
	fmt.Fprintf(&sb, "  hostiles %d  ships %d", len(b.NPCs), len(b.Players))
	c.sendServerMsg(sb.String())
}

// cmdLongRangeScan handles `lrs`: the census scalars of the 3x3x3
// neighborhood around the player's quadrant.
func (c *Client) cmdLongRangeScan(args string) {
	p := c.player()
	gs := c.server.gs

	var sb strings.Builder
	sb.WriteString("Long range scan:\n")
	for dq3 := -1; dq3 <= 1; dq3++ {
		for dq2 := -1; dq2 <= 1; dq2++ {
			for dq1 := -1; dq1 <= 1; dq1++ {
				q1, q2, q3 := p.Quad.Q1+dq1, p.Quad.Q2+dq2, p.Quad.Q3+dq3
				if q1 < 1 || q1 > world.QuadrantDim || q2 < 1 || q2 > world.QuadrantDim || q3 < 1 || q3 > world.QuadrantDim {
					continue
				}
				fmt.Fprintf(&sb, "  %d-%d-%d: %d\n", q1, q2, q3, gs.Census[q1][q2][q3])
			}
		}
	}
	c.sendServerMsg(strings.TrimRight(sb.String(), "\n"))
}

// cmdStatus handles `sta`: ship position, heading, and vitals.
func (c *Client) cmdStatus(args string) {
	p := c.player()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Status: %s\n", navStateName[p.NavState])
	fmt.Fprintf(&sb, "  quadrant %d-%d-%d  sector %.2f %.2f %.2f\n",
		p.Quad.Q1, p.Quad.Q2, p.Quad.Q3, p.Sec.S1, p.Sec.S2, p.Sec.S3)
	fmt.Fprintf(&sb, "  heading %.1f mark %.1f  warp %.2f\n", p.Heading, p.Mark, p.WarpSpeed)
	fmt.Fprintf(&sb, "  energy %d  torpedoes %d  crew %d  life support %.0f%%",
		p.Energy, p.Torpedoes, p.Crew, p.LifeSupport)
	c.sendServerMsg(sb.String())
}

var inventoryName = [world.InventorySlots]string{
	"Reserved", "Dilithium", "Tritanium", "Verterium", "Monotanium", "Isolinear", "Gases", "Rations",
}

// cmdInventory handles `inv`.
func (c *Client) cmdInventory(args string) {
	p := c.player()
	var sb strings.Builder
	sb.WriteString("Inventory:\n")
	for i, n := range p.Inventory {
		fmt.Fprintf(&sb, "  %-16s %d\n", inventoryName[i], n)
	}
	fmt.Fprintf(&sb, "  cargo energy %d  cargo torpedoes %d  corbomite %d", p.CargoEnergy, p.CargoTorps, p.Corbomite)
	c.sendServerMsg(sb.String())
}

var systemName = [world.SystemHealthSlots]string{
	"Warp", "Impulse", "Sensors", "Transporters", "Phasers", "Torpedoes", "Computer", "Life support",
}

// cmdDamageReport handles `dam`.
func (c *Client) cmdDamageReport(args string) {
	p := c.player()
	var sb strings.Builder
	sb.WriteString("Damage report:\n")
	for i, h := range p.SystemHealth {
		fmt.Fprintf(&sb, "  %-14s %3.0f%%\n", systemName[i], h)
	}
	c.sendServerMsg(strings.TrimRight(sb.String(), "\n"))
}

// cmdCalc handles `cal qx qy qz`: the navigation calculator, solving
// heading, mark, and warp factor for a course to another quadrant.
func (c *Client) cmdCalc(args string) {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		c.sendServerMsg("Usage: cal <q1> <q2> <q3>")
		return
	}
	var q [3]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 1 || v > world.QuadrantDim {
			c.sendServerMsg("Usage: cal <q1> <q2> <q3>")
			return
		}
		q[i] = v
	}

	p := c.player()
	dx := float64(q[0]-p.Quad.Q1) * world.SectorDim
	dy := float64(q[1]-p.Quad.Q2) * world.SectorDim
	dz := float64(q[2]-p.Quad.Q3) * world.SectorDim
	d := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if d < 0.001 {
		c.sendServerMsg(fmt.Sprintf("Navigation: ship is already in quadrant %d-%d-%d.", q[0], q[1], q[2]))
		return
	}
	h := math.Atan2(dy, dx) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	m := math.Asin(dz/d) * 180 / math.Pi
	c.sendServerMsg(fmt.Sprintf("Course to %d-%d-%d: heading %.1f mark %.1f warp %.2f.", q[0], q[1], q[2], h, m, d/10))
}

// cmdWho handles `who`: every connected player and their quadrant.
func (c *Client) cmdWho(args string) {
	gs := c.server.gs
	var sb strings.Builder
	sb.WriteString("Connected:\n")
	for i, p := range gs.Players {
		if !p.Connected {
			continue
		}
		fmt.Fprintf(&sb, "  [%d] %-20s faction %d  quadrant %d-%d-%d\n",
			world.UniversalID(world.ClassPlayer, i), p.Name, p.Faction, p.Quad.Q1, p.Quad.Q2, p.Quad.Q3)
	}
	c.sendServerMsg(strings.TrimRight(sb.String(), "\n"))
}

// cmdAux handles the auxiliary systems: `aux probe q1 q2 q3` reports a
// remote quadrant's census, `aux computer` a strategic summary, and
// `aux jettison` dumps the warp core — which destroys the ship.
func (c *Client) cmdAux(args string) {
	p := c.player()
	gs := c.server.gs
	arg := strings.ToLower(strings.TrimSpace(args))
	switch {
	case strings.HasPrefix(arg, "probe "):
		fields := strings.Fields(arg[len("probe "):])
		if len(fields) != 3 {
			c.sendServerMsg("Usage: aux probe <q1> <q2> <q3>")
			return
		}
		var q [3]int
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil || v < 1 || v > world.QuadrantDim {
				c.sendServerMsg("Usage: aux probe <q1> <q2> <q3>")
				return
			}
			q[i] = v
		}
		c.sendServerMsg(fmt.Sprintf("Probe %d-%d-%d: %d", q[0], q[1], q[2], gs.Census[q[0]][q[1]][q[2]]))
	case arg == "computer":
		hostiles, bases := 0, 0
		for _, n := range gs.NPCs {
			if n.Active {
				hostiles++
			}
		}
		for _, b := range gs.Starbases {
			if b.Active {
				bases++
			}
		}
		c.sendServerMsg(fmt.Sprintf("Strategic analysis: hostiles %d, bases %d, frame %d.", hostiles, bases, gs.Frame))
	case arg == "jettison":
		p.Active = false
		p.Effects.Boom.Active = true
		p.Effects.Boom.X, p.Effects.Boom.Y, p.Effects.Boom.Z = p.Pos.X, p.Pos.Y, p.Pos.Z
		c.sendServerMsg("CORE JETTISONED!")
	default:
		c.sendServerMsg("Usage: aux probe|computer|jettison")
	}
}
