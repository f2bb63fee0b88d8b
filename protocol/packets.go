// Package protocol defines the wire records exchanged between a client
// and the simulation server, and their packed little-endian encoding.
// Every record here is a fixed-layout struct matched field-by-field
// against the byte stream: nothing is read by reinterpreting memory.
package protocol

// Packet type tags, embedded as the leading int32 of every record.
const (
	TagLogin     int32 = 1
	TagCommand   int32 = 2
	TagUpdate    int32 = 3
	TagMessage   int32 = 4
	TagQuery     int32 = 5
	TagHandshake int32 = 6
)

const (
	NameLen    = 64
	CommandLen = 256
	ShieldN    = 6
	InventoryN = 8
	SystemN    = 10
	PowerN     = 3
	BeamN      = 8
)

// Login binds a connection to a persistent-by-name player slot.
type Login struct {
	Type      int32
	Name      [NameLen]byte
	Faction   int32
	ShipClass int32
}

// Query asks whether a name already has a persisted slot; only Name is
// meaningful, the rest of the Login-shaped record is ignored.
type Query struct {
	Type      int32
	Name      [NameLen]byte
	Faction   int32
	ShipClass int32
}

// Command carries one textual command line, null-padded to CommandLen.
type Command struct {
	Type int32
	Cmd  [CommandLen]byte
}

// Handshake is the first packet on every connection: a 64-byte body of
// the session key and magic signature, each XORed with the shared
// master key.
type Handshake struct {
	Type      int32
	PubkeyLen int32
	Pubkey    [256]byte
}

// NetObject is one broadcast-visible entity in an Update packet.
type NetObject struct {
	X, Y, Z    float32
	H, M       float32
	Type       int32
	ShipClass  int32
	Active     int32
	HealthPct  int32
	ID         int32
	Name       [NameLen]byte
}

// NetBeam is one active phaser/tractor beam effect.
type NetBeam struct {
	TX, TY, TZ float32
	Active     int32
}

// NetPoint is a single effect marker (torpedo flash, explosion, wormhole
// mouth, jump-arrival ring).
type NetPoint struct {
	X, Y, Z float32
	Active  int32
}

// NetDismantle marks an in-progress hull dismantling effect.
type NetDismantle struct {
	X, Y, Z float32
	Species int32
	Active  int32
}

// UpdateHeader is the fixed-layout prefix of a PacketUpdate, everything
// before the NetObject trailer.
type UpdateHeader struct {
	Type     int32
	FrameID  int64
	Q1, Q2, Q3 int32
	S1, S2, S3 float32
	EntH, EntM float32

	Energy         int32
	Torpedoes      int32
	CargoEnergy    int32
	CargoTorpedoes int32
	CrewCount      int32

	Shields      [ShieldN]int32
	Inventory    [InventoryN]int32
	SystemHealth [SystemN]float32
	PowerDist    [PowerN]float32
	LifeSupport  float32
	CorbomiteCount int32
	LockTarget     int32
	TubeState      int32
	PhaserCharge   float32
	IsCloaked      uint8
	EncryptionEnabled uint8

	Torp         NetPoint
	Boom         NetPoint
	Wormhole     NetPoint
	JumpArrival  NetPoint
	Dismantle    NetDismantle

	SupernovaPos NetPoint
	SupernovaQ   [3]int32

	BeamCount int32
	Beams     [BeamN]NetBeam

	MapUpdateVal int64
	MapUpdateQ   [3]int32

	ObjectCount int32
}

// Update is the full per-tick snapshot sent to one client: the fixed
// header plus ObjectCount trailing NetObject records.
type Update struct {
	Header  UpdateHeader
	Objects []NetObject
}

// MessageHeader is the fixed-layout prefix of a PacketMessage, before the
// variable-length text payload.
type MessageHeader struct {
	Type         int32
	From         [NameLen]byte
	Faction      int32
	Scope        int32
	TargetID     int32
	Length       int32
	OriginFrame  int64
	IsEncrypted  uint8
	CryptoAlgo   uint8
	IV           [12]byte
	Tag          [16]byte
	HasSignature uint8
	Signature    [64]byte
	SenderPubkey [32]byte
}

// Message is a chat packet: the fixed header plus Length bytes of text
// (ciphertext if IsEncrypted is set).
type Message struct {
	Header MessageHeader
	Text   []byte
}

// Chat scope values for MessageHeader.Scope.
const (
	ScopeAll int32 = iota
	ScopeFaction
	ScopeQuadrant
	ScopeTarget
)

// Cipher algorithm tags for MessageHeader.CryptoAlgo.
const (
	CipherNone          uint8 = 0
	CipherAES256GCM     uint8 = 1
	CipherChaCha20Poly1305 uint8 = 2
	CipherARIA256GCM    uint8 = 3
	CipherCamellia256CTR uint8 = 4
	CipherSEEDCBC       uint8 = 5
	CipherCAST5CBC      uint8 = 6
	CipherIDEACBC       uint8 = 7
	Cipher3DESCBC       uint8 = 8
	CipherBlowfishCBC   uint8 = 9
	CipherRC4           uint8 = 10
	CipherDESCBC        uint8 = 11
	CipherPQCMarker     uint8 = 12
)
