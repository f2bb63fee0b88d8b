package world

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
	"lukechampine.com/blake3"
)

// snapshotChecksumSize matches blake3.Sum256's 32-byte digest.
const snapshotChecksumSize = 32

// Snapshot persists the full world to a single packed binary file: a
// version header, then every entity table in the fixed contract order
// (NPC ships through monsters, players last), field-by-field
// little-endian, wrapped in LZ4 framing with a trailing BLAKE3
// checksum over the uncompressed payload.
//
// A version mismatch on load is fatal to that file; SaveSnapshot never
// rewrites an on-disk file the loader would refuse, so a partial write is
// the only way to corrupt a checkpoint, and that is guarded by the
// write-to-temp-then-rename sequence in SaveSnapshot.
func SaveSnapshot(gs *GameState, path string) error {
	var raw bytes.Buffer
	if err := encodeGameState(gs, &raw); err != nil {
		return fmt.Errorf("world: encode snapshot: %w", err)
	}

	sum := blake3.Sum256(raw.Bytes())

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("world: create snapshot temp file: %w", err)
	}

	zw := lz4.NewWriter(f)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		zw.Close()
		f.Close()
		return fmt.Errorf("world: compress snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("world: close lz4 writer: %w", err)
	}
	if _, err := f.Write(sum[:]); err != nil {
		f.Close()
		return fmt.Errorf("world: write snapshot checksum: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("world: close snapshot file: %w", err)
	}
	return os.Rename(tmp, path)
}

// LoadSnapshot reads a file written by SaveSnapshot, verifying the BLAKE3
// trailer before trusting any of the decoded state and refusing to load a
// payload stamped with a different SnapshotVersion.
func LoadSnapshot(path string) (*GameState, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("world: read snapshot: %w", err)
	}
	if len(compressed) < snapshotChecksumSize {
		return nil, fmt.Errorf("world: snapshot truncated")
	}
	body, wantSum := compressed[:len(compressed)-snapshotChecksumSize], compressed[len(compressed)-snapshotChecksumSize:]

	zr := lz4.NewReader(bytes.NewReader(body))
	var raw bytes.Buffer
	if _, err := io.Copy(&raw, zr); err != nil {
		return nil, fmt.Errorf("world: decompress snapshot: %w", err)
	}

	gotSum := blake3.Sum256(raw.Bytes())
	if !bytes.Equal(gotSum[:], wantSum) {
		return nil, fmt.Errorf("world: snapshot checksum mismatch")
	}

	gs := NewGameState()
	if err := decodeGameState(gs, &raw); err != nil {
		return nil, fmt.Errorf("world: decode snapshot: %w", err)
	}
	return gs, nil
}

// EncodeTo writes the raw (uncompressed) snapshot body to w; the server
// streams this to a freshly logged-in client as its bootstrap state.
func EncodeTo(gs *GameState, w io.Writer) error {
	return encodeGameState(gs, w)
}

// DecodeFrom reads a raw snapshot body produced by EncodeTo.
func DecodeFrom(gs *GameState, r io.Reader) error {
	return decodeGameState(gs, r)
}

func encodeGameState(gs *GameState, w io.Writer) error {
	bw := bufio.NewWriter(w)
	enc := &snapEncoder{w: bw}

	enc.int32(SnapshotVersion)
	enc.int64(gs.Frame)
	enc.int64(gs.TickCount)

	// Table order is the on-disk contract: NPC ships, stars, black
	// holes, planets, bases, nebulas, pulsars, comets, asteroids,
	// derelicts, mines, buoys, platforms, rifts, monsters, players.
	for _, n := range gs.NPCs {
		enc.npc(n)
	}
	for _, s := range gs.Stars {
		enc.body(&s.baseEntity)
	}
	for _, bh := range gs.BlackHoles {
		enc.body(&bh.baseEntity)
	}
	for _, pl := range gs.Planets {
		enc.body(&pl.baseEntity)
		enc.int32(int32(pl.Resource))
		enc.int32(int32(pl.Amount))
	}
	for _, b := range gs.Starbases {
		enc.body(&b.baseEntity)
	}
	for _, n := range gs.Nebulas {
		enc.body(&n.baseEntity)
	}
	for _, pu := range gs.Pulsars {
		enc.body(&pu.baseEntity)
	}
	for _, c := range gs.Comets {
		enc.body(&c.baseEntity)
		enc.float64(c.OrbitAngle)
		enc.float64(c.OrbitRadius)
		enc.point3(c.OrbitCenter)
		enc.float64(c.OrbitSpeed)
	}
	for _, a := range gs.Asteroids {
		enc.body(&a.baseEntity)
	}
	for _, d := range gs.Derelicts {
		enc.body(&d.baseEntity)
	}
	for _, m := range gs.Mines {
		enc.body(&m.baseEntity)
		enc.int32(int32(m.Owner))
	}
	for _, b := range gs.Buoys {
		enc.body(&b.baseEntity)
	}
	for _, pl := range gs.Platforms {
		enc.body(&pl.baseEntity)
		enc.int32(int32(pl.FireCooldown))
	}
	for _, r := range gs.Rifts {
		enc.body(&r.baseEntity)
	}
	for _, m := range gs.Monsters {
		enc.body(&m.baseEntity)
		enc.int32(int32(m.Type))
		enc.int32(int32(m.Energy))
	}
	for _, p := range gs.Players {
		enc.player(p)
	}

	enc.supernova(gs.Supernova)

	for q1 := 1; q1 <= QuadrantDim; q1++ {
		for q2 := 1; q2 <= QuadrantDim; q2++ {
			for q3 := 1; q3 <= QuadrantDim; q3++ {
				enc.int64(gs.Census[q1][q2][q3])
			}
		}
	}

	if enc.err != nil {
		return enc.err
	}
	return bw.Flush()
}

func decodeGameState(gs *GameState, r io.Reader) error {
	dec := &snapDecoder{r: r}

	version := dec.int32()
	if dec.err == nil && version != SnapshotVersion {
		return fmt.Errorf("world: snapshot version %d, want %d", version, SnapshotVersion)
	}
	gs.Frame = dec.int64()
	gs.TickCount = dec.int64()

	for _, n := range gs.NPCs {
		dec.npc(n)
	}
	for _, s := range gs.Stars {
		dec.body(&s.baseEntity)
	}
	for _, bh := range gs.BlackHoles {
		dec.body(&bh.baseEntity)
	}
	for _, pl := range gs.Planets {
		dec.body(&pl.baseEntity)
		pl.Resource = int(dec.int32())
		pl.Amount = int(dec.int32())
	}
	for _, b := range gs.Starbases {
		dec.body(&b.baseEntity)
	}
	for _, n := range gs.Nebulas {
		dec.body(&n.baseEntity)
	}
	for _, pu := range gs.Pulsars {
		dec.body(&pu.baseEntity)
	}
	for _, c := range gs.Comets {
		dec.body(&c.baseEntity)
		c.OrbitAngle = dec.float64()
		c.OrbitRadius = dec.float64()
		c.OrbitCenter = dec.point3()
		c.OrbitSpeed = dec.float64()
	}
	for _, a := range gs.Asteroids {
		dec.body(&a.baseEntity)
	}
	for _, d := range gs.Derelicts {
		dec.body(&d.baseEntity)
	}
	for _, m := range gs.Mines {
		dec.body(&m.baseEntity)
		m.Owner = int(dec.int32())
	}
	for _, b := range gs.Buoys {
		dec.body(&b.baseEntity)
	}
	for _, pl := range gs.Platforms {
		dec.body(&pl.baseEntity)
		pl.FireCooldown = int(dec.int32())
	}
	for _, r := range gs.Rifts {
		dec.body(&r.baseEntity)
	}
	for _, m := range gs.Monsters {
		dec.body(&m.baseEntity)
		m.Type = int(dec.int32())
		m.Energy = int(dec.int32())
	}
	for _, p := range gs.Players {
		dec.player(p)
	}

	gs.Supernova = dec.supernova()

	for q1 := 1; q1 <= QuadrantDim; q1++ {
		for q2 := 1; q2 <= QuadrantDim; q2++ {
			for q3 := 1; q3 <= QuadrantDim; q3++ {
				gs.Census[q1][q2][q3] = dec.int64()
			}
		}
	}

	return dec.err
}

// snapEncoder/snapDecoder write explicit little-endian fields one at a
// time rather than reinterpreting struct memory, per the packed-struct
// design note: field order here is the wire contract, not Go's layout.
type snapEncoder struct {
	w   io.Writer
	err error
}

func (e *snapEncoder) int32(v int32) {
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, binary.LittleEndian, v)
}

func (e *snapEncoder) int64(v int64) {
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, binary.LittleEndian, v)
}

func (e *snapEncoder) float64(v float64) {
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, binary.LittleEndian, v)
}

func (e *snapEncoder) bool(v bool) {
	var b int32
	if v {
		b = 1
	}
	e.int32(b)
}

func (e *snapEncoder) point3(p Point3) {
	e.float64(p.X)
	e.float64(p.Y)
	e.float64(p.Z)
}

func (e *snapEncoder) quad(q Quad) {
	e.int32(int32(q.Q1))
	e.int32(int32(q.Q2))
	e.int32(int32(q.Q3))
}

func (e *snapEncoder) body(b *baseEntity) {
	e.int32(int32(b.ID))
	e.bool(b.Active)
	e.point3(b.Pos)
	e.quad(b.Quad)
}

func (e *snapEncoder) supernova(s Supernova) {
	e.bool(s.Active)
	e.quad(s.Quad)
	e.int32(int32(s.Timer))
	e.point3(s.Epicenter)
	e.int32(int32(s.StarID))
}

func (e *snapEncoder) npc(n *NPCShip) {
	e.body(&n.baseEntity)
	e.int32(int32(n.Type))
	e.int32(int32(n.Energy))
	e.float64(n.EngineHealth)
	e.point3(n.Dir)
	e.int32(int32(n.PatrolTimer))
	e.int32(int32(n.FireCooldown))
	e.int32(int32(n.FleeTimer))
	e.int32(int32(n.State))
}

func (e *snapEncoder) name64(s string) {
	var buf [64]byte
	copy(buf[:], s)
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(buf[:])
}

func (e *snapEncoder) player(p *Player) {
	e.int32(int32(p.Slot))
	e.bool(p.Active)
	e.name64(p.Name)
	e.int32(int32(p.Faction))
	e.int32(int32(p.ShipClass))
	e.point3(p.Pos)
	e.quad(p.Quad)
	e.float64(p.Heading)
	e.float64(p.Mark)
	e.float64(p.WarpSpeed)
	e.int32(int32(p.Energy))
	e.int32(int32(p.Crew))
	e.float64(p.LifeSupport)
	e.int32(int32(p.Torpedoes))
	for _, s := range p.Shields {
		e.int32(int32(s))
	}
	for _, v := range p.Inventory {
		e.int32(int32(v))
	}
	for _, h := range p.SystemHealth {
		e.float64(h)
	}
	for _, d := range p.PowerDist {
		e.float64(d)
	}
	e.int32(int32(p.CargoEnergy))
	e.int32(int32(p.CargoTorps))
	e.int32(int32(p.Corbomite))
	e.bool(p.Cloaked)
	e.int32(int32(p.NavState))
	e.int32(int32(p.LockTarget))
	e.int32(int32(p.ChaseTarget))
}

type snapDecoder struct {
	r   io.Reader
	err error
}

func (d *snapDecoder) int32() int32 {
	var v int32
	if d.err != nil {
		return 0
	}
	d.err = binary.Read(d.r, binary.LittleEndian, &v)
	return v
}

func (d *snapDecoder) int64() int64 {
	var v int64
	if d.err != nil {
		return 0
	}
	d.err = binary.Read(d.r, binary.LittleEndian, &v)
	return v
}

func (d *snapDecoder) float64() float64 {
	var v float64
	if d.err != nil {
		return 0
	}
	d.err = binary.Read(d.r, binary.LittleEndian, &v)
	return v
}

func (d *snapDecoder) bool() bool {
	return d.int32() != 0
}

func (d *snapDecoder) point3() Point3 {
	return Point3{X: d.float64(), Y: d.float64(), Z: d.float64()}
}

func (d *snapDecoder) quad() Quad {
	return Quad{Q1: int(d.int32()), Q2: int(d.int32()), Q3: int(d.int32())}
}

func (d *snapDecoder) body(b *baseEntity) {
	b.ID = int(d.int32())
	b.Active = d.bool()
	b.Pos = d.point3()
	b.Quad = d.quad()
}

func (d *snapDecoder) supernova() Supernova {
	var s Supernova
	s.Active = d.bool()
	s.Quad = d.quad()
	s.Timer = int(d.int32())
	s.Epicenter = d.point3()
	s.StarID = int(d.int32())
	return s
}

func (d *snapDecoder) npc(n *NPCShip) {
	d.body(&n.baseEntity)
	n.Type = int(d.int32())
	n.Energy = int(d.int32())
	n.EngineHealth = d.float64()
	n.Dir = d.point3()
	n.PatrolTimer = int(d.int32())
	n.FireCooldown = int(d.int32())
	n.FleeTimer = int(d.int32())
	n.State = NPCState(d.int32())
}

func (d *snapDecoder) name64() string {
	var buf [64]byte
	if d.err != nil {
		return ""
	}
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		d.err = err
		return ""
	}
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n])
}

func (d *snapDecoder) player(p *Player) {
	p.Slot = int(d.int32())
	p.Active = d.bool()
	p.Name = d.name64()
	p.Faction = int(d.int32())
	p.ShipClass = int(d.int32())
	p.Pos = d.point3()
	p.Quad = d.quad()
	p.Heading = d.float64()
	p.Mark = d.float64()
	p.WarpSpeed = d.float64()
	p.Energy = int(d.int32())
	p.Crew = int(d.int32())
	p.LifeSupport = d.float64()
	p.Torpedoes = int(d.int32())
	for i := range p.Shields {
		p.Shields[i] = int(d.int32())
	}
	for i := range p.Inventory {
		p.Inventory[i] = int(d.int32())
	}
	for i := range p.SystemHealth {
		p.SystemHealth[i] = d.float64()
	}
	for i := range p.PowerDist {
		p.PowerDist[i] = d.float64()
	}
	p.CargoEnergy = int(d.int32())
	p.CargoTorps = int(d.int32())
	p.Corbomite = int(d.int32())
	p.Cloaked = d.bool()
	p.NavState = NavState(d.int32())
	p.LockTarget = int(d.int32())
	p.ChaseTarget = int(d.int32())
	p.Sec = DeriveSector(p.Pos, p.Quad)
}
