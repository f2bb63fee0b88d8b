package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arcturus-sim/startrek/world"
)

// parseFloats splits args into exactly want float fields.
func parseFloats(args string, want int) ([]float64, bool) {
	fields := strings.Fields(args)
	if len(fields) != want {
		return nil, false
	}
	out := make([]float64, want)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// cmdNav handles `nav H M W`: align to the given heading/mark, then warp
// W*10 units along it.
func (c *Client) cmdNav(args string) {
	v, ok := parseFloats(args, 3)
	if !ok {
		c.sendServerMsg("Usage: nav <heading> <mark> <warp>")
		return
	}
	if v[2] <= 0 {
		c.sendServerMsg("Warp factor must be positive.")
		return
	}
	p := c.player()
	world.StartNav(p, v[0], v[1], v[2])
	c.sendServerMsg(fmt.Sprintf("Course laid in: heading %.1f mark %.1f, warp %.1f.", p.TargetHeading, p.TargetMark, v[2]))
}

// cmdImpulse handles `imp H M S` and the `imp 0` full stop.
func (c *Client) cmdImpulse(args string) {
	fields := strings.Fields(args)
	p := c.player()
	if len(fields) == 1 && fields[0] == "0" {
		p.WarpSpeed = 0
		p.NavState = world.NavIdle
		c.sendServerMsg("Impulse engines answering all stop.")
		return
	}
	v, ok := parseFloats(args, 3)
	if !ok {
		c.sendServerMsg("Usage: imp <heading> <mark> <speed> | imp 0")
		return
	}
	world.StartImpulse(p, v[0], v[1], v[2])
	c.sendServerMsg("Impulse engines engaged.")
}

// cmdApproach handles `apr id dist`: align toward a target in the
// current quadrant, stopping dist units short.
func (c *Client) cmdApproach(args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		c.sendServerMsg("Usage: apr <target-id> <distance>")
		return
	}
	id, err1 := strconv.Atoi(fields[0])
	dist, err2 := strconv.ParseFloat(fields[1], 64)
	if err1 != nil || err2 != nil {
		c.sendServerMsg("Usage: apr <target-id> <distance>")
		return
	}

	gs := c.server.gs
	p := c.player()
	pos, ok := world.TargetPosition(gs, id)
	if !ok {
		c.sendServerMsg("No such target.")
		return
	}
	if world.DeriveQuadrant(pos) != p.Quad {
		c.sendServerMsg("Target is not in this quadrant.")
		return
	}
	world.StartApproach(p, pos, dist)
	c.sendServerMsg(fmt.Sprintf("Approaching target %d to %.1f units.", id, dist))
}

// Wormhole jump costs.
const (
	jumpEnergyCost    = 5000
	jumpDilithiumCost = 1
)

// cmdJump handles `jum q1 q2 q3`: open a wormhole to another quadrant.
// The 450-tick scripted sequence carries the ship into the mouth and
// drops it at the destination's center sector.
func (c *Client) cmdJump(args string) {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		c.sendServerMsg("Usage: jum <q1> <q2> <q3>")
		return
	}
	var q [3]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 1 || v > world.QuadrantDim {
			c.sendServerMsg("Usage: jum <q1> <q2> <q3>")
			return
		}
		q[i] = v
	}

	p := c.player()
	if p.Energy < jumpEnergyCost {
		c.sendServerMsg("Insufficient energy to open a wormhole.")
		return
	}
	if p.Inventory[world.InvDilithium] < jumpDilithiumCost {
		c.sendServerMsg("A wormhole jump requires dilithium.")
		return
	}
	p.Energy -= jumpEnergyCost
	p.Inventory[world.InvDilithium] -= jumpDilithiumCost

	dir := world.UnitVector3(p.Heading, p.Mark)
	mouth := world.Point3{X: p.Pos.X + dir.X*2, Y: p.Pos.Y + dir.Y*2, Z: p.Pos.Z + dir.Z*2}
	target := world.Point3{
		X: float64(q[0]-1)*world.SectorDim + 5,
		Y: float64(q[1]-1)*world.SectorDim + 5,
		Z: float64(q[2]-1)*world.SectorDim + 5,
	}
	world.StartWormhole(p, mouth, target)
	c.sendServerMsg(fmt.Sprintf("Wormhole mouth opening; destination quadrant %d-%d-%d.", q[0], q[1], q[2]))
}

// cmdChase handles `cha`: pursue the locked target.
func (c *Client) cmdChase(args string) {
	p := c.player()
	if !world.StartChase(p) {
		c.sendServerMsg("No target locked.")
		return
	}
	c.sendServerMsg(fmt.Sprintf("Pursuit course on target %d.", p.ChaseTarget))
}
