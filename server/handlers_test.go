package server

import (
	"bufio"
	"net"
	"testing"

	"github.com/arcturus-sim/startrek/protocol"
	"github.com/arcturus-sim/startrek/session"
	"github.com/arcturus-sim/startrek/world"
)

// loggedInClient binds a client to a fresh player without going through
// the network login, pinned to a known position.
func loggedInClient(t *testing.T, s *Server) (*Client, net.Conn, *world.Player) {
	t.Helper()
	c, far := newTestClient(t, s)
	c.sess = &session.Session{}

	s.gs.Mu.Lock()
	slot := world.FreePlayerSlot(s.gs)
	p := s.gs.Players[slot]
	world.InitPlayer(p, "tester", 0, 0)
	p.Pos = world.Point3{X: 45, Y: 45, Z: 45}
	p.Quad = world.DeriveQuadrant(p.Pos)
	p.Sec = world.DeriveSector(p.Pos, p.Quad)
	p.Connected = true
	s.gs.Mu.Unlock()

	c.slot = slot
	c.name = "tester"
	return c, far, p
}

// readMessage decodes the next chat packet off the client side of the
// pipe.
func readMessage(t *testing.T, conn net.Conn) *protocol.Message {
	t.Helper()
	br := bufio.NewReader(conn)
	tag, pkt, err := protocol.ReadPacket(br)
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if tag != protocol.TagMessage {
		t.Fatalf("reply tag = %d, want message", tag)
	}
	return pkt.(*protocol.Message)
}

func TestDispatchUnknownCommand(t *testing.T) {
	s := newTestServer()
	c, far, _ := loggedInClient(t, s)

	got := make(chan *protocol.Message, 1)
	go func() { got <- readMessage(t, far) }()

	c.handleCommand("frobnicate")

	m := <-got
	if protocol.NameString(m.Header.From) != "SERVER" {
		t.Errorf("reply from %q, want SERVER", protocol.NameString(m.Header.From))
	}
	if string(m.Text) != "Unknown command: frobnicate" {
		t.Errorf("reply = %q", m.Text)
	}
}

func TestCmdShieldsOverwritesAndClamps(t *testing.T) {
	s := newTestServer()
	c, far, p := loggedInClient(t, s)
	drain(far)

	c.handleCommand("she 100 200 300 400 500 99999")

	want := [world.ShieldCount]int{100, 200, 300, 400, 500, world.MaxShieldUnit}
	if p.Shields != want {
		t.Errorf("shields = %v, want %v", p.Shields, want)
	}
}

func TestCmdNavEntersAlign(t *testing.T) {
	s := newTestServer()
	c, far, p := loggedInClient(t, s)
	drain(far)

	c.handleCommand("nav 90 0 2")

	if p.NavState != world.NavAlign {
		t.Errorf("state = %v, want NavAlign", p.NavState)
	}
	if p.NavTimer != world.AlignTicks {
		t.Errorf("align timer = %d, want %d", p.NavTimer, world.AlignTicks)
	}
}

func TestCmdImpulseStop(t *testing.T) {
	s := newTestServer()
	c, far, p := loggedInClient(t, s)
	drain(far)

	p.NavState = world.NavImpulse
	p.WarpSpeed = 0.5
	c.handleCommand("imp 0")

	if p.NavState != world.NavIdle || p.WarpSpeed != 0 {
		t.Errorf("state %v speed %v after imp 0", p.NavState, p.WarpSpeed)
	}
}

func TestCmdLockValidation(t *testing.T) {
	s := newTestServer()
	c, far, p := loggedInClient(t, s)
	drain(far)

	s.gs.Mu.Lock()
	// An NPC in a distant quadrant: lockable from anywhere.
	npc := s.gs.NPCs[4]
	npc.Active = true
	npc.Pos = world.Point3{X: 15, Y: 15, Z: 15}
	npc.Quad = world.DeriveQuadrant(npc.Pos)
	// A star in that same distant quadrant: only lockable locally.
	star := s.gs.Stars[9]
	star.Active = true
	star.Pos = world.Point3{X: 16, Y: 15, Z: 15}
	star.Quad = world.DeriveQuadrant(star.Pos)
	s.gs.Mu.Unlock()

	c.handleCommand("lock 1004")
	if want := world.UniversalID(world.ClassNPC, 4); p.LockTarget != want {
		t.Errorf("lock target = %d, want %d (remote NPC lock allowed)", p.LockTarget, want)
	}

	c.handleCommand("lock 4009")
	if want := world.UniversalID(world.ClassNPC, 4); p.LockTarget != want {
		t.Errorf("lock target = %d after out-of-quadrant star lock, want unchanged %d", p.LockTarget, want)
	}

	c.handleCommand("lock 0")
	if p.LockTarget != 0 {
		t.Errorf("lock target = %d after clear, want 0", p.LockTarget)
	}
}

func TestCmdJumpStartsWormhole(t *testing.T) {
	s := newTestServer()
	c, far, p := loggedInClient(t, s)
	drain(far)

	energyBefore := p.Energy
	dilithiumBefore := p.Inventory[world.InvDilithium]

	c.handleCommand("jum 2 8 4")

	if p.NavState != world.NavWormhole {
		t.Fatalf("state = %v, want NavWormhole", p.NavState)
	}
	if p.NavTimer != world.WormholeTicks {
		t.Errorf("timer = %d, want %d", p.NavTimer, world.WormholeTicks)
	}
	if !p.Effects.Wormhole.Active {
		t.Error("wormhole visual not raised")
	}
	if p.Energy != energyBefore-5000 {
		t.Errorf("energy = %d, want %d", p.Energy, energyBefore-5000)
	}
	if p.Inventory[world.InvDilithium] != dilithiumBefore-1 {
		t.Errorf("dilithium = %d, want %d", p.Inventory[world.InvDilithium], dilithiumBefore-1)
	}
	if want := (world.Point3{X: 15, Y: 75, Z: 35}); p.Wormhole.Target != want {
		t.Errorf("wormhole target = %+v, want %+v", p.Wormhole.Target, want)
	}
}

func TestCmdCloakToggles(t *testing.T) {
	s := newTestServer()
	c, far, p := loggedInClient(t, s)
	drain(far)

	c.handleCommand("clo")
	if !p.Cloaked {
		t.Error("not cloaked after first toggle")
	}
	c.handleCommand("clo")
	if p.Cloaked {
		t.Error("still cloaked after second toggle")
	}
}

func TestCmdPhaserInsufficientEnergyIsRefused(t *testing.T) {
	s := newTestServer()
	c, far, p := loggedInClient(t, s)
	drain(far)

	s.gs.Mu.Lock()
	victim := s.gs.Players[5]
	world.InitPlayer(victim, "victim", 1, 0)
	victim.Pos = p.Pos
	victim.Quad = p.Quad
	s.gs.Mu.Unlock()

	p.LockTarget = world.UniversalID(world.ClassPlayer, 5)
	p.Energy = 50
	victimEnergy := victim.Energy

	c.handleCommand("pha 1000")

	if p.Energy != 50 {
		t.Errorf("attacker energy changed to %d on a refused shot", p.Energy)
	}
	if victim.Energy != victimEnergy {
		t.Error("victim damaged by a refused shot")
	}
}

func TestCmdDismantleRequiresDisabledTarget(t *testing.T) {
	s := newTestServer()
	c, far, p := loggedInClient(t, s)
	drain(far)

	s.gs.Mu.Lock()
	npc := s.gs.NPCs[0]
	npc.Active = true
	npc.Pos = world.Point3{X: 45.5, Y: 45, Z: 45}
	npc.Quad = world.DeriveQuadrant(npc.Pos)
	npc.Energy = 3000
	npc.EngineHealth = 50
	s.gs.Mu.Unlock()
	p.LockTarget = world.UniversalID(world.ClassNPC, 0)

	c.handleCommand("dis")
	if !npc.Active {
		t.Fatal("powered NPC was dismantled")
	}

	npc.EngineHealth = 5
	c.handleCommand("dis")
	if npc.Active {
		t.Fatal("disabled NPC survived dismantling")
	}
	if p.Inventory[world.InvTritanium] != 30 {
		t.Errorf("tritanium = %d, want 30", p.Inventory[world.InvTritanium])
	}
	if p.Inventory[world.InvIsolinear] != 6 {
		t.Errorf("isolinear = %d, want 6", p.Inventory[world.InvIsolinear])
	}
	if !p.Effects.Dismantle.Active {
		t.Error("no dismantle transient queued")
	}
}

func TestCmdEncryptSelectsCipher(t *testing.T) {
	s := newTestServer()
	c, far, _ := loggedInClient(t, s)
	drain(far)

	c.handleCommand("enc chacha")
	if c.sess.Cipher != session.CipherChaCha20Poly1305 {
		t.Errorf("cipher = %d, want chacha20-poly1305", c.sess.Cipher)
	}

	c.handleCommand("enc aria")
	if c.sess.Cipher != session.CipherChaCha20Poly1305 {
		t.Error("unimplemented cipher replaced the previous selection")
	}

	c.handleCommand("enc none")
	if c.sess.Cipher != session.CipherNone {
		t.Errorf("cipher = %d, want none", c.sess.Cipher)
	}
}

func TestEncryptedServerReplyRoundTrips(t *testing.T) {
	s := newTestServer()
	c, far, _ := loggedInClient(t, s)
	c.sess.Cipher = session.CipherAES256GCM

	got := make(chan *protocol.Message, 1)
	go func() { got <- readMessage(t, far) }()

	c.handleCommand("frobnicate")

	m := <-got
	if m.Header.IsEncrypted != 1 {
		t.Fatal("reply not encrypted despite a selected cipher")
	}
	pt, err := session.Open(c.sess.Key, m.Header.CryptoAlgo, m.Header.OriginFrame, m.Header.IV, m.Header.Tag, m.Text)
	if err != nil {
		t.Fatalf("decrypt reply: %v", err)
	}
	if string(pt) != "Unknown command: frobnicate" {
		t.Errorf("decrypted reply = %q", pt)
	}
}

// TestBuildUpdate covers the broadcast assembly: own ship at slot 0,
// one-shot effects cleared after copying, and the map-cell update.
func TestBuildUpdate(t *testing.T) {
	s := newTestServer()
	c, far, p := loggedInClient(t, s)
	drain(far)
	_ = c

	s.gs.Mu.Lock()
	defer s.gs.Mu.Unlock()

	star := s.gs.Stars[0]
	star.Active = true
	star.Pos = world.Point3{X: 46, Y: 45, Z: 45}
	star.Quad = world.DeriveQuadrant(star.Pos)
	world.Rebuild(s.gs)

	p.Effects.Boom.Active = true
	p.Effects.Boom.X, p.Effects.Boom.Y, p.Effects.Boom.Z = 1, 2, 3

	u := s.buildUpdate(p.Slot)

	if len(u.Objects) < 2 {
		t.Fatalf("objects = %d, want own ship + star", len(u.Objects))
	}
	own := u.Objects[0]
	if own.ID != int32(world.UniversalID(world.ClassPlayer, p.Slot)) {
		t.Errorf("slot 0 id = %d, want own ship", own.ID)
	}
	if protocol.NameString(own.Name) != "tester" {
		t.Errorf("slot 0 name = %q", protocol.NameString(own.Name))
	}

	foundStar := false
	for _, o := range u.Objects[1:] {
		if o.Type == int32(world.ClassStar) {
			foundStar = true
		}
	}
	if !foundStar {
		t.Error("in-quadrant star missing from the trailer")
	}

	if u.Header.Boom.Active != 1 || u.Header.Boom.X != 1 {
		t.Errorf("boom effect not copied: %+v", u.Header.Boom)
	}
	if p.Effects.Boom.Active {
		t.Error("boom effect not cleared after the copy (one-shot edge)")
	}

	wantCensus := s.gs.Census[p.Quad.Q1][p.Quad.Q2][p.Quad.Q3]
	if u.Header.MapUpdateVal != wantCensus {
		t.Errorf("map update = %d, want census %d", u.Header.MapUpdateVal, wantCensus)
	}
}

// TestBuildUpdateCloakFilter: a cloaked enemy is invisible, a cloaked
// friend is not.
func TestBuildUpdateCloakFilter(t *testing.T) {
	s := newTestServer()
	_, far, p := loggedInClient(t, s)
	drain(far)

	s.gs.Mu.Lock()
	defer s.gs.Mu.Unlock()

	enemy := s.gs.Players[10]
	world.InitPlayer(enemy, "enemy", p.Faction+1, 0)
	enemy.Pos = world.Point3{X: 45.5, Y: 45, Z: 45}
	enemy.Quad = p.Quad
	enemy.Cloaked = true

	friend := s.gs.Players[11]
	world.InitPlayer(friend, "friend", p.Faction, 0)
	friend.Pos = world.Point3{X: 45, Y: 45.5, Z: 45}
	friend.Quad = p.Quad
	friend.Cloaked = true

	world.Rebuild(s.gs)

	u := s.buildUpdate(p.Slot)

	sawEnemy, sawFriend := false, false
	for _, o := range u.Objects {
		switch protocol.NameString(o.Name) {
		case "enemy":
			sawEnemy = true
		case "friend":
			sawFriend = true
		}
	}
	if sawEnemy {
		t.Error("cloaked enemy visible in the trailer")
	}
	if !sawFriend {
		t.Error("cloaked same-faction ship hidden from the trailer")
	}
}
