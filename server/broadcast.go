package server

import (
	"bytes"

	"github.com/arcturus-sim/startrek/protocol"
	"github.com/arcturus-sim/startrek/world"
)

// broadcastAll assembles and writes one Update packet per connected,
// logged-in client. Called from the tick loop while holding the world
// lock; clients are written one after another, each write under that
// client's write lock, so a client whose socket blocks delays the
// packets of the clients after it.
func (s *Server) broadcastAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		if c.slot < 0 {
			continue
		}
		u := s.buildUpdate(c.slot)
		c.sendUpdate(u)
	}
}

// buildUpdate snapshots one player's view: own state, the visible
// entities of the current quadrant (truncated at the trailer cap), one
// map-cell update, and the transient effects, of which the one-shot
// ones are cleared here after copying.
func (s *Server) buildUpdate(slot int) *protocol.Update {
	gs := s.gs
	p := gs.Players[slot]
	u := &protocol.Update{}
	h := &u.Header

	h.FrameID = gs.Frame
	h.Q1, h.Q2, h.Q3 = int32(p.Quad.Q1), int32(p.Quad.Q2), int32(p.Quad.Q3)
	h.S1, h.S2, h.S3 = float32(p.Sec.S1), float32(p.Sec.S2), float32(p.Sec.S3)
	h.EntH, h.EntM = float32(p.Heading), float32(p.Mark)

	h.Energy = int32(p.Energy)
	h.Torpedoes = int32(p.Torpedoes)
	h.CargoEnergy = int32(p.CargoEnergy)
	h.CargoTorpedoes = int32(p.CargoTorps)
	h.CrewCount = int32(p.Crew)
	for i, v := range p.Shields {
		h.Shields[i] = int32(v)
	}
	for i, v := range p.Inventory {
		h.Inventory[i] = int32(v)
	}
	for i, v := range p.SystemHealth {
		h.SystemHealth[i] = float32(v)
	}
	for i, v := range p.PowerDist {
		h.PowerDist[i] = float32(v)
	}
	h.LifeSupport = float32(p.LifeSupport)
	h.CorbomiteCount = int32(p.Corbomite)
	h.LockTarget = int32(p.LockTarget)
	if p.Torpedo.Active {
		h.TubeState = 1
	}
	h.PhaserCharge = float32(p.SystemHealth[world.SysPhasers])
	if p.Cloaked {
		h.IsCloaked = 1
	}
	if c := s.clientForSlot(slot); c != nil && c.sess != nil && c.sess.Cipher != 0 {
		h.EncryptionEnabled = 1
	}

	s.copyEffects(p, h)

	if gs.Supernova.Active {
		h.MapUpdateVal = world.SupernovaOverrideCensus(gs.Supernova.Timer)
		h.MapUpdateQ = [3]int32{int32(gs.Supernova.Quad.Q1), int32(gs.Supernova.Quad.Q2), int32(gs.Supernova.Quad.Q3)}
	} else {
		h.MapUpdateVal = gs.Census[p.Quad.Q1][p.Quad.Q2][p.Quad.Q3]
		h.MapUpdateQ = [3]int32{h.Q1, h.Q2, h.Q3}
	}

	s.fillObjects(u, p, slot)
	return u
}

// copyEffects copies the transient effects into the packet. Boom,
// JumpArrival, Dismantle and the beam are edge triggers cleared here, so
// each fires in exactly one outbound snapshot; the torpedo and wormhole
// markers repeat every tick while their source is active.
func (s *Server) copyEffects(p *world.Player, h *protocol.UpdateHeader) {
	fx := &p.Effects

	if p.Torpedo.Active {
		h.Torp = protocol.NetPoint{
			X: float32(p.Torpedo.Pos.X), Y: float32(p.Torpedo.Pos.Y), Z: float32(p.Torpedo.Pos.Z),
			Active: 1,
		}
	}
	if fx.Boom.Active {
		h.Boom = protocol.NetPoint{X: float32(fx.Boom.X), Y: float32(fx.Boom.Y), Z: float32(fx.Boom.Z), Active: 1}
		fx.Boom.Active = false
	}
	if fx.Wormhole.Active {
		h.Wormhole = protocol.NetPoint{X: float32(fx.Wormhole.X), Y: float32(fx.Wormhole.Y), Z: float32(fx.Wormhole.Z), Active: 1}
	}
	if fx.JumpArrival.Active {
		h.JumpArrival = protocol.NetPoint{X: float32(fx.JumpArrival.X), Y: float32(fx.JumpArrival.Y), Z: float32(fx.JumpArrival.Z), Active: 1}
		fx.JumpArrival.Active = false
	}
	if fx.Dismantle.Active {
		h.Dismantle = protocol.NetDismantle{
			X: float32(fx.Dismantle.X), Y: float32(fx.Dismantle.Y), Z: float32(fx.Dismantle.Z),
			Species: int32(fx.Dismantle.Species), Active: 1,
		}
		fx.Dismantle.Active = false
	}
	if fx.Beam.Active {
		h.Beams[0] = protocol.NetBeam{TX: float32(fx.Beam.TX), TY: float32(fx.Beam.TY), TZ: float32(fx.Beam.TZ), Active: 1}
		h.BeamCount = 1
		fx.Beam.Active = false
	}

	if s.gs.Supernova.Active {
		ep := s.gs.Supernova.Epicenter
		h.SupernovaPos = protocol.NetPoint{X: float32(ep.X), Y: float32(ep.Y), Z: float32(ep.Z), Active: 1}
		h.SupernovaQ = [3]int32{int32(s.gs.Supernova.Quad.Q1), int32(s.gs.Supernova.Quad.Q2), int32(s.gs.Supernova.Quad.Q3)}
	}
}

// fillObjects walks the viewer's current-quadrant index buckets in the
// fixed category order, starting with the viewer's own ship at slot 0,
// until the trailer cap is hit.
func (s *Server) fillObjects(u *protocol.Update, p *world.Player, viewerSlot int) {
	gs := s.gs

	add := func(o protocol.NetObject) bool {
		if len(u.Objects) >= world.MaxBroadcastObjects {
			return false
		}
		u.Objects = append(u.Objects, o)
		return true
	}

	sectorOf := func(pos world.Point3) (float32, float32, float32) {
		sec := world.DeriveSector(pos, p.Quad)
		return float32(sec.S1), float32(sec.S2), float32(sec.S3)
	}

	// Slot 0 is always the player's own ship.
	ownX, ownY, ownZ := sectorOf(p.Pos)
	add(protocol.NetObject{
		X: ownX, Y: ownY, Z: ownZ,
		H: float32(p.Heading), M: float32(p.Mark),
		Type:      int32(world.ClassPlayer),
		ShipClass: int32(p.ShipClass),
		Active:    1,
		HealthPct: int32(p.Energy * 100 / world.MaxEnergy),
		ID:        int32(world.UniversalID(world.ClassPlayer, viewerSlot)),
		Name:      protocol.PutName(p.Name),
	})

	b := gs.Index.At(p.Quad)
	if b == nil {
		return
	}

	for _, slot := range b.Players {
		if slot == viewerSlot {
			continue
		}
		o := gs.Players[slot]
		if !o.Active {
			continue
		}
		// Cloaked ships are invisible to other factions.
		if o.Cloaked && o.Faction != p.Faction {
			continue
		}
		x, y, z := sectorOf(o.Pos)
		if !add(protocol.NetObject{
			X: x, Y: y, Z: z,
			H: float32(o.Heading), M: float32(o.Mark),
			Type:      int32(world.ClassPlayer),
			ShipClass: int32(o.ShipClass),
			Active:    1,
			HealthPct: int32(o.Energy * 100 / world.MaxEnergy),
			ID:        int32(world.UniversalID(world.ClassPlayer, slot)),
			Name:      protocol.PutName(o.Name),
		}) {
			return
		}
	}

	for _, slot := range b.NPCs {
		n := gs.NPCs[slot]
		x, y, z := sectorOf(n.Pos)
		if !add(protocol.NetObject{
			X: x, Y: y, Z: z,
			Type:      int32(world.ClassNPC),
			ShipClass: int32(n.Type),
			Active:    1,
			HealthPct: npcHealthPct(n),
			ID:        int32(world.UniversalID(world.ClassNPC, slot)),
		}) {
			return
		}
	}

	type staticCat struct {
		class world.EntityClass
		slots []int
		pos   func(int) world.Point3
	}
	cats := []staticCat{
		{world.ClassPlanet, b.Planets, func(i int) world.Point3 { return gs.Planets[i].Pos }},
		{world.ClassStar, b.Stars, func(i int) world.Point3 { return gs.Stars[i].Pos }},
		{world.ClassBlackHole, b.BlackHoles, func(i int) world.Point3 { return gs.BlackHoles[i].Pos }},
		{world.ClassStarbase, b.Starbases, func(i int) world.Point3 { return gs.Starbases[i].Pos }},
		{world.ClassNebula, b.Nebulas, func(i int) world.Point3 { return gs.Nebulas[i].Pos }},
		{world.ClassPulsar, b.Pulsars, func(i int) world.Point3 { return gs.Pulsars[i].Pos }},
		{world.ClassComet, b.Comets, func(i int) world.Point3 { return gs.Comets[i].Pos }},
		{world.ClassAsteroid, b.Asteroids, func(i int) world.Point3 { return gs.Asteroids[i].Pos }},
		{world.ClassDerelict, b.Derelicts, func(i int) world.Point3 { return gs.Derelicts[i].Pos }},
		{world.ClassPlatform, b.Platforms, func(i int) world.Point3 { return gs.Platforms[i].Pos }},
		{world.ClassMonster, b.Monsters, func(i int) world.Point3 { return gs.Monsters[i].Pos }},
	}
	for _, cat := range cats {
		for _, slot := range cat.slots {
			x, y, z := sectorOf(cat.pos(slot))
			o := protocol.NetObject{
				X: x, Y: y, Z: z,
				Type:      int32(cat.class),
				Active:    1,
				HealthPct: 100,
				ID:        int32(world.UniversalID(cat.class, slot)),
			}
			switch cat.class {
			case world.ClassPlanet:
				o.Name = protocol.PutName(gs.Planets[slot].Name)
			case world.ClassStar:
				o.Name = protocol.PutName(gs.Stars[slot].Name)
			case world.ClassMonster:
				o.ShipClass = int32(gs.Monsters[slot].Type)
				o.HealthPct = int32(gs.Monsters[slot].Energy / 1000)
			}
			if !add(o) {
				return
			}
		}
	}
}

func npcHealthPct(n *world.NPCShip) int32 {
	pct := int32(n.Energy / 500)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// sendUpdate encodes and writes one Update packet under the per-client
// write lock. A write error is treated as a disconnect: the read loop
// will notice the dead socket on its next read.
func (c *Client) sendUpdate(u *protocol.Update) {
	var buf bytes.Buffer
	if err := protocol.EncodeUpdate(&buf, u); err != nil {
		c.server.log.Warn().Str("conn", c.connID.String()).Err(err).Msg("update encode failed")
		return
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(buf.Bytes()); err != nil {
		c.conn.Close()
	}
}

func (s *Server) clientForSlot(slot int) *Client {
	for _, c := range s.clients {
		if c.slot == slot {
			return c
		}
	}
	return nil
}
