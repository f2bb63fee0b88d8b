package server

import (
	"strconv"
	"strings"

	"github.com/arcturus-sim/startrek/protocol"
	"github.com/arcturus-sim/startrek/session"
	"github.com/arcturus-sim/startrek/world"
)

// serverFrom is the From name on server-originated chat lines.
const serverFrom = "SERVER"

// signatureInfo carries an Ed25519 signature through a chat relay
// untouched; the signature covers the plaintext, so re-encrypting per
// recipient doesn't invalidate it.
type signatureInfo struct {
	Signature [64]byte
	Pubkey    [32]byte
}

// sendServerMsg sends one chat line from the server to this client.
// Callers hold the world lock.
func (c *Client) sendServerMsg(text string) {
	target := int32(0)
	if c.slot >= 0 {
		target = int32(world.UniversalID(world.ClassPlayer, c.slot))
	}
	c.deliverChat(serverFrom, -1, protocol.ScopeTarget, target, []byte(text), nil)
}

// broadcastServerMessage sends one chat line to every connected client.
// Callers hold the world lock.
func (s *Server) broadcastServerMessage(text string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		if c.slot >= 0 {
			c.deliverChat(serverFrom, -1, protocol.ScopeAll, 0, []byte(text), nil)
		}
	}
}

// deliverChat encrypts (if this client selected a cipher) and writes one
// Message packet. Callers hold the world lock; the socket write itself
// is under the per-client write lock only.
func (c *Client) deliverChat(from string, faction, scope, targetID int32, plaintext []byte, sig *signatureInfo) {
	m := &protocol.Message{
		Header: protocol.MessageHeader{
			From:        protocol.PutName(from),
			Faction:     faction,
			Scope:       scope,
			TargetID:    targetID,
			OriginFrame: c.server.gs.Frame,
		},
		Text: plaintext,
	}

	if c.sess != nil && c.sess.Cipher != session.CipherNone {
		sealed, err := session.Seal(c.sess.Key, c.sess.Cipher, m.Header.OriginFrame, plaintext)
		if err != nil {
			c.server.log.Warn().Str("conn", c.connID.String()).Err(err).Msg("chat encrypt failed")
			return
		}
		m.Header.IsEncrypted = 1
		m.Header.CryptoAlgo = sealed.Algo
		m.Header.IV = sealed.IV
		m.Header.Tag = sealed.Tag
		m.Text = sealed.Ciphertext
		m.Header.Length = int32(len(sealed.Ciphertext))
	}

	if sig != nil {
		m.Header.HasSignature = 1
		m.Header.Signature = sig.Signature
		m.Header.SenderPubkey = sig.Pubkey
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := protocol.EncodeMessage(c.conn, m); err != nil {
		c.server.log.Warn().Str("conn", c.connID.String()).Err(err).Msg("chat write failed")
	}
}

// handleChat routes one inbound chat packet by scope: everyone, same
// faction, or private-by-id. A failed decrypt still delivers — the
// recipients just see a garbled-transmission marker.
func (c *Client) handleChat(m *protocol.Message) {
	gs := c.server.gs
	gs.Mu.Lock()
	defer gs.Mu.Unlock()

	p := c.player()
	if p == nil {
		return
	}

	plaintext := m.Text
	if m.Header.IsEncrypted != 0 && c.sess != nil {
		pt, err := session.Open(c.sess.Key, m.Header.CryptoAlgo, m.Header.OriginFrame, m.Header.IV, m.Header.Tag, m.Text)
		if err != nil {
			plaintext = []byte("*** garbled transmission ***")
		} else {
			plaintext = pt
		}
	}

	var sig *signatureInfo
	if m.Header.HasSignature != 0 {
		sig = &signatureInfo{Signature: m.Header.Signature, Pubkey: m.Header.SenderPubkey}
	}

	from := p.Name
	faction := int32(p.Faction)
	scope := m.Header.Scope
	target := m.Header.TargetID

	c.server.mu.RLock()
	defer c.server.mu.RUnlock()
	for _, rc := range c.server.clients {
		if rc.slot < 0 {
			continue
		}
		rp := gs.Players[rc.slot]
		switch scope {
		case protocol.ScopeAll:
		case protocol.ScopeFaction:
			if rp.Faction != p.Faction {
				continue
			}
		case protocol.ScopeQuadrant:
			if rp.Quad != p.Quad {
				continue
			}
		case protocol.ScopeTarget:
			if int32(world.UniversalID(world.ClassPlayer, rc.slot)) != target {
				continue
			}
		default:
			continue
		}
		rc.deliverChat(from, faction, scope, target, plaintext, sig)
	}
}

// cipherAlias maps the `enc` command's argument to an algorithm tag.
var cipherAlias = map[string]uint8{
	"none":     session.CipherNone,
	"aes":      session.CipherAES256GCM,
	"gcm":      session.CipherAES256GCM,
	"chacha":   session.CipherChaCha20Poly1305,
	"chacha20": session.CipherChaCha20Poly1305,
	"aria":     session.CipherARIA256GCM,
	"camellia": session.CipherCamellia256CTR,
	"seed":     session.CipherSEEDCBC,
	"cast5":    session.CipherCAST5CBC,
	"idea":     session.CipherIDEACBC,
	"3des":     session.Cipher3DESCBC,
	"blowfish": session.CipherBlowfishCBC,
	"rc4":      session.CipherRC4,
	"des":      session.CipherDESCBC,
	"pqc":      session.CipherPQCMarker,
}

// supportedCipher reports whether the session layer can actually seal
// under this tag; the table includes interop-only entries with no
// available implementation, which cannot be selected.
func supportedCipher(algo uint8) bool {
	switch algo {
	case session.CipherARIA256GCM, session.CipherCamellia256CTR, session.CipherSEEDCBC, session.CipherIDEACBC:
		return false
	}
	return true
}

// cmdEncrypt handles `enc <algo>`: select this session's chat cipher by
// name or numeric tag.
func (c *Client) cmdEncrypt(args string) {
	arg := strings.ToLower(strings.TrimSpace(args))
	algo, ok := cipherAlias[arg]
	if !ok {
		if n, err := strconv.Atoi(arg); err == nil && n >= 0 && n <= int(session.CipherPQCMarker) {
			algo = uint8(n)
			ok = true
		}
	}
	if !ok {
		c.sendServerMsg("Unknown cipher: " + arg)
		return
	}
	if !supportedCipher(algo) {
		c.sendServerMsg("Cipher not available on this server.")
		return
	}
	c.sess.Cipher = algo
	if algo == session.CipherNone {
		c.sendServerMsg("Chat encryption disabled.")
	} else {
		c.sendServerMsg("Chat encryption enabled.")
	}
}
