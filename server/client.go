package server

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/arcturus-sim/startrek/protocol"
	"github.com/arcturus-sim/startrek/session"
	"github.com/arcturus-sim/startrek/world"
)

// Inbound command/message rate limit per session. Exceeding it is a
// protocol violation: the connection is closed and the slot freed.
const (
	cmdRateLimit = 20
	cmdRateBurst = 40
)

// Client is one TCP connection: its handshake-derived session, the
// player slot it is bound to after login, and a write lock so the tick
// broadcaster and chat replies can interleave safely.
type Client struct {
	id     int
	connID uuid.UUID
	server *Server

	conn net.Conn
	br   *bufio.Reader

	writeMu sync.Mutex

	sess    *session.Session
	slot    int // player slot, -1 before login
	name    string
	limiter *rate.Limiter
}

func newClient(s *Server, conn net.Conn, id int) *Client {
	return &Client{
		id:      id,
		connID:  uuid.New(),
		server:  s,
		conn:    conn,
		br:      bufio.NewReader(conn),
		slot:    -1,
		limiter: rate.NewLimiter(cmdRateLimit, cmdRateBurst),
	}
}

// serve runs the connection lifecycle: handshake first, then the packet
// loop until a read error. Any protocol violation tears the connection
// down; the player's persistent state survives for the next login.
func (c *Client) serve() {
	defer func() {
		c.conn.Close()
		c.server.unregister(c)
	}()

	if err := c.handshake(); err != nil {
		c.server.log.Warn().Str("conn", c.connID.String()).Err(err).Msg("handshake failed")
		return
	}

	for {
		tag, pkt, err := protocol.ReadPacket(c.br)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.server.log.Warn().Str("conn", c.connID.String()).Err(err).Msg("read failed")
			}
			return
		}

		switch tag {
		case protocol.TagQuery:
			c.handleQuery(pkt.(*protocol.Query))
		case protocol.TagLogin:
			if err := c.handleLogin(pkt.(*protocol.Login)); err != nil {
				c.server.log.Warn().Str("conn", c.connID.String()).Err(err).Msg("login failed")
				return
			}
		case protocol.TagCommand:
			if !c.limiter.Allow() {
				c.server.log.Warn().Str("conn", c.connID.String()).Msg("command rate limit exceeded")
				return
			}
			c.handleCommand(protocol.CommandString(pkt.(*protocol.Command).Cmd))
		case protocol.TagMessage:
			if !c.limiter.Allow() {
				c.server.log.Warn().Str("conn", c.connID.String()).Msg("message rate limit exceeded")
				return
			}
			c.handleChat(pkt.(*protocol.Message))
		default:
			c.server.log.Warn().Str("conn", c.connID.String()).Int32("tag", tag).Msg("unexpected packet")
			return
		}
	}
}

// handshake reads the mandatory first packet, de-XORs the 64-byte body
// against the master key, validates the magic half, and ACKs with a bare
// int32(6). A magic mismatch closes the connection before any slot is
// touched.
func (c *Client) handshake() error {
	tag, pkt, err := protocol.ReadPacket(c.br)
	if err != nil {
		return err
	}
	if tag != protocol.TagHandshake {
		return errors.New("server: first packet is not a handshake")
	}
	hs := pkt.(*protocol.Handshake)
	if hs.PubkeyLen != 64 {
		return errors.New("server: handshake body length mismatch")
	}

	var body [64]byte
	copy(body[:], hs.Pubkey[:64])
	sess, err := session.ServerHandshake(body, c.server.masterKey)
	if err != nil {
		return err
	}
	c.sess = sess

	return c.writeInt32(int32(protocol.TagHandshake))
}

// handleQuery answers a by-name slot probe with a bare int32 0/1.
func (c *Client) handleQuery(q *protocol.Query) {
	name := protocol.NameString(q.Name)
	gs := c.server.gs
	gs.Mu.Lock()
	found := world.FindPlayerByName(gs, name) >= 0
	gs.Mu.Unlock()

	var answer int32
	if found {
		answer = 1
	}
	if err := c.writeInt32(answer); err != nil {
		c.server.log.Warn().Str("conn", c.connID.String()).Err(err).Msg("query reply failed")
	}
}

// handleLogin binds the connection to a persistent-by-name slot (or the
// first free slot for a new name), initializes a fresh ship on first
// use, and streams the full world snapshot as the client's bootstrap.
func (c *Client) handleLogin(l *protocol.Login) error {
	name := protocol.NameString(l.Name)
	if name == "" {
		return errors.New("server: login with empty name")
	}

	gs := c.server.gs
	gs.Mu.Lock()
	slot := world.FindPlayerByName(gs, name)
	if slot < 0 {
		slot = world.FreePlayerSlot(gs)
		if slot < 0 {
			gs.Mu.Unlock()
			return errors.New("server: no free player slots")
		}
		world.InitPlayer(gs.Players[slot], name, int(l.Faction), int(l.ShipClass))
	} else {
		gs.Players[slot].Active = true
	}
	p := gs.Players[slot]
	p.Connected = true
	c.slot = slot
	c.name = name

	var bootstrap bytes.Buffer
	err := world.EncodeTo(gs, &bootstrap)
	gs.Mu.Unlock()
	if err != nil {
		return err
	}

	c.server.log.Info().Str("conn", c.connID.String()).Str("player", name).Int("slot", slot).Msg("player logged in")

	// Bootstrap blob: int32 byte length, then the raw snapshot body in
	// the galaxy.dat layout.
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := binary.Write(c.conn, binary.LittleEndian, int32(bootstrap.Len())); err != nil {
		return err
	}
	_, err = c.conn.Write(bootstrap.Bytes())
	return err
}

func (c *Client) writeInt32(v int32) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return binary.Write(c.conn, binary.LittleEndian, v)
}

// player returns the bound player record, or nil pre-login. Callers
// hold the world lock.
func (c *Client) player() *world.Player {
	if c.slot < 0 {
		return nil
	}
	return c.server.gs.Players[c.slot]
}
