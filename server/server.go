// Package server owns everything between a TCP socket and the world:
// connection lifecycle, the encrypted handshake, command dispatch, chat
// routing, and the per-tick broadcast. The simulation itself lives in
// the world package; this package only calls it under the world lock.
package server

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arcturus-sim/startrek/session"
	"github.com/arcturus-sim/startrek/world"
)

// Server manages the game state and client connections.
type Server struct {
	mu      sync.RWMutex
	clients map[int]*Client
	nextID  int

	gs        *world.GameState
	masterKey [session.KeyLen]byte

	snapshotPath string
	log          zerolog.Logger

	done chan struct{}
}

// NewServer wraps an already loaded-or-generated world.
func NewServer(gs *world.GameState, masterKey [session.KeyLen]byte, snapshotPath string, logger zerolog.Logger) *Server {
	return &Server{
		clients:      make(map[int]*Client),
		gs:           gs,
		masterKey:    masterKey,
		snapshotPath: snapshotPath,
		log:          logger,
		done:         make(chan struct{}),
	}
}

// ListenAndServe binds the TCP port and accepts connections. Each
// connection gets its own goroutine; all state access from those
// goroutines goes through the world lock. Shutdown does not close the
// listener: the loop returns nil on the first accept error after it.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: bind %s: %w", addr, err)
	}
	s.log.Info().Str("addr", addr).Msg("listening")

	go s.tickLoop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}
		c := s.register(conn)
		go c.serve()
	}
}

// Shutdown stops the tick loop; in-flight connections drain on their
// own read errors once the process exits.
func (s *Server) Shutdown() {
	close(s.done)
}

func (s *Server) register(conn net.Conn) *Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c := newClient(s, conn, s.nextID)
	s.clients[c.id] = c
	return c
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()

	if c.slot >= 0 {
		s.gs.Mu.Lock()
		p := s.gs.Players[c.slot]
		p.Active = false
		p.Connected = false
		s.gs.Mu.Unlock()
		s.log.Info().Str("conn", c.connID.String()).Str("player", c.name).Msg("client disconnected")
	}
}

// tickLoop advances the simulation at 30Hz on an absolute-time schedule:
// each tick is scheduled at the previous deadline plus one interval, so
// jitter in one tick doesn't accumulate. Missed ticks are not replayed.
func (s *Server) tickLoop() {
	next := time.Now()
	for {
		next = next.Add(world.TickInterval)
		if d := time.Until(next); d > 0 {
			select {
			case <-time.After(d):
			case <-s.done:
				return
			}
		} else {
			// Fell behind; re-anchor rather than catching up.
			next = time.Now()
		}

		s.gs.Mu.Lock()
		world.Tick(s.gs)
		s.emitSupernovaWarnings()
		s.broadcastAll()
		pending := s.gs.PendingSnapshot
		s.gs.PendingSnapshot = false
		s.gs.Mu.Unlock()

		if pending {
			s.saveSnapshot()
		}
	}
}

func (s *Server) saveSnapshot() {
	if s.snapshotPath == "" {
		return
	}
	s.gs.Mu.Lock()
	err := world.SaveSnapshot(s.gs, s.snapshotPath)
	s.gs.Mu.Unlock()
	if err != nil {
		// Not fatal: the next checkpoint boundary retries.
		s.log.Error().Err(err).Msg("snapshot write failed")
		return
	}
	s.log.Info().Str("path", s.snapshotPath).Msg("snapshot written")
}

// emitSupernovaWarnings sends the supernova countdown chat lines: one
// at every 300-tick boundary, and one every 30 ticks over the final ten
// seconds. Called under the world lock.
func (s *Server) emitSupernovaWarnings() {
	sn := &s.gs.Supernova
	if !sn.Active || sn.Timer <= 0 {
		return
	}
	major := sn.Timer%300 == 0
	minor := sn.Timer <= 300 && sn.Timer%30 == 0
	if !major && !minor {
		return
	}
	secs := sn.Timer / world.TickRate
	text := fmt.Sprintf("*** WARNING: stellar collapse in quadrant %d-%d-%d, detonation in %ds ***",
		sn.Quad.Q1, sn.Quad.Q2, sn.Quad.Q3, secs)
	s.broadcastServerMessage(text)
}
