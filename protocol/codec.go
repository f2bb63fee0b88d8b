package protocol

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFrameLen bounds the variable-length payloads below; anything
// larger is a protocol violation, not a legitimate packet.
const MaxFrameLen = 1 << 20

var byteOrder = binary.LittleEndian

// writer/reader wrap the field-by-field encode/decode loop every packet
// goes through: one sticky error, checked once at the end, rather than a
// chain of individually-handled returns.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) write(v any) {
	if w.err != nil {
		return
	}
	w.err = binary.Write(w.w, byteOrder, v)
}

type reader struct {
	r   io.Reader
	err error
}

func (r *reader) read(v any) {
	if r.err != nil {
		return
	}
	r.err = binary.Read(r.r, byteOrder, v)
}

// EncodeLogin writes a Login record.
func EncodeLogin(w io.Writer, l *Login) error {
	wr := &writer{w: w}
	wr.write(TagLogin)
	wr.write(l.Name)
	wr.write(l.Faction)
	wr.write(l.ShipClass)
	return wr.err
}

// DecodeLogin reads a Login record whose type tag has already been
// consumed by the dispatcher.
func DecodeLogin(r io.Reader) (*Login, error) {
	rd := &reader{r: r}
	l := &Login{Type: TagLogin}
	rd.read(&l.Name)
	rd.read(&l.Faction)
	rd.read(&l.ShipClass)
	return l, rd.err
}

// EncodeQuery/DecodeQuery mirror Login's layout exactly; only the name
// is meaningful.
func EncodeQuery(w io.Writer, q *Query) error {
	wr := &writer{w: w}
	wr.write(TagQuery)
	wr.write(q.Name)
	wr.write(q.Faction)
	wr.write(q.ShipClass)
	return wr.err
}

func DecodeQuery(r io.Reader) (*Query, error) {
	rd := &reader{r: r}
	q := &Query{Type: TagQuery}
	rd.read(&q.Name)
	rd.read(&q.Faction)
	rd.read(&q.ShipClass)
	return q, rd.err
}

// EncodeCommand writes a Command record, null-padding Cmd to CommandLen.
func EncodeCommand(w io.Writer, c *Command) error {
	wr := &writer{w: w}
	wr.write(TagCommand)
	wr.write(c.Cmd)
	return wr.err
}

func DecodeCommand(r io.Reader) (*Command, error) {
	rd := &reader{r: r}
	c := &Command{Type: TagCommand}
	rd.read(&c.Cmd)
	return c, rd.err
}

// CommandString trims the trailing NUL padding from a fixed Cmd buffer.
func CommandString(cmd [CommandLen]byte) string {
	n := 0
	for n < len(cmd) && cmd[n] != 0 {
		n++
	}
	return string(cmd[:n])
}

// NameString trims the trailing NUL padding from a fixed name buffer.
func NameString(name [NameLen]byte) string {
	n := 0
	for n < len(name) && name[n] != 0 {
		n++
	}
	return string(name[:n])
}

// PutName copies s into a fixed NameLen buffer, truncating if necessary.
func PutName(s string) [NameLen]byte {
	var b [NameLen]byte
	copy(b[:], s)
	return b
}

// PutCommand copies s into a fixed CommandLen buffer, truncating if
// necessary.
func PutCommand(s string) [CommandLen]byte {
	var b [CommandLen]byte
	copy(b[:], s)
	return b
}

// EncodeHandshake writes a Handshake record.
func EncodeHandshake(w io.Writer, h *Handshake) error {
	wr := &writer{w: w}
	wr.write(TagHandshake)
	wr.write(h.PubkeyLen)
	wr.write(h.Pubkey)
	return wr.err
}

func DecodeHandshake(r io.Reader) (*Handshake, error) {
	rd := &reader{r: r}
	h := &Handshake{Type: TagHandshake}
	rd.read(&h.PubkeyLen)
	rd.read(&h.Pubkey)
	return h, rd.err
}

// EncodeUpdate writes an Update packet: the fixed header, then exactly
// ObjectCount NetObject records.
func EncodeUpdate(w io.Writer, u *Update) error {
	u.Header.Type = TagUpdate
	u.Header.ObjectCount = int32(len(u.Objects))
	wr := &writer{w: w}
	wr.write(u.Header)
	for i := range u.Objects {
		wr.write(u.Objects[i])
	}
	return wr.err
}

// DecodeUpdate reads an Update packet. Servers only ever encode these;
// decoding exists for client-side tooling and tests.
func DecodeUpdate(r io.Reader) (*Update, error) {
	rd := &reader{r: r}
	u := &Update{}
	rd.read(&u.Header)
	if rd.err != nil {
		return nil, rd.err
	}
	if u.Header.ObjectCount < 0 || u.Header.ObjectCount > MaxBroadcastObjects {
		return nil, fmt.Errorf("protocol: object_count %d out of range", u.Header.ObjectCount)
	}
	u.Objects = make([]NetObject, u.Header.ObjectCount)
	for i := range u.Objects {
		rd.read(&u.Objects[i])
	}
	return u, rd.err
}

// MaxBroadcastObjects mirrors world.MaxBroadcastObjects; duplicated here
// (rather than imported) to keep protocol free of a dependency on world.
const MaxBroadcastObjects = 128

// EncodeMessage writes a Message packet: fixed header then Length bytes
// of text/ciphertext.
func EncodeMessage(w io.Writer, m *Message) error {
	m.Header.Type = TagMessage
	m.Header.Length = int32(len(m.Text))
	wr := &writer{w: w}
	wr.write(m.Header)
	if wr.err == nil {
		_, wr.err = w.Write(m.Text)
	}
	return wr.err
}

func DecodeMessage(r io.Reader) (*Message, error) {
	rd := &reader{r: r}
	m := &Message{Header: MessageHeader{Type: TagMessage}}
	rd.read(&m.Header.From)
	rd.read(&m.Header.Faction)
	rd.read(&m.Header.Scope)
	rd.read(&m.Header.TargetID)
	rd.read(&m.Header.Length)
	rd.read(&m.Header.OriginFrame)
	rd.read(&m.Header.IsEncrypted)
	rd.read(&m.Header.CryptoAlgo)
	rd.read(&m.Header.IV)
	rd.read(&m.Header.Tag)
	rd.read(&m.Header.HasSignature)
	rd.read(&m.Header.Signature)
	rd.read(&m.Header.SenderPubkey)
	if rd.err != nil {
		return nil, rd.err
	}
	if m.Header.Length < 0 || m.Header.Length > MaxFrameLen {
		return nil, fmt.Errorf("protocol: message length %d out of range", m.Header.Length)
	}
	m.Text = make([]byte, m.Header.Length)
	if _, err := io.ReadFull(r, m.Text); err != nil {
		return nil, err
	}
	return m, nil
}

// PeekTag reads the leading int32 type tag without consuming the rest of
// the packet body; callers use it to pick which Decode* function to call
// next on the same buffered reader.
func PeekTag(r *bufio.Reader) (int32, error) {
	b, err := r.Peek(4)
	if err != nil {
		return 0, err
	}
	return int32(byteOrder.Uint32(b)), nil
}

// discardTag consumes the 4 already-peeked tag bytes so a Decode* call
// can read its own fields starting from the body.
func discardTag(r *bufio.Reader) error {
	_, err := r.Discard(4)
	return err
}

// ReadPacket peeks the tag on br and dispatches to the matching decoder,
// returning the tag and the decoded record as `any`.
func ReadPacket(br *bufio.Reader) (int32, any, error) {
	tag, err := PeekTag(br)
	if err != nil {
		return 0, nil, err
	}
	if err := discardTag(br); err != nil {
		return 0, nil, err
	}
	switch tag {
	case TagLogin:
		v, err := DecodeLogin(br)
		return tag, v, err
	case TagCommand:
		v, err := DecodeCommand(br)
		return tag, v, err
	case TagQuery:
		v, err := DecodeQuery(br)
		return tag, v, err
	case TagHandshake:
		v, err := DecodeHandshake(br)
		return tag, v, err
	case TagMessage:
		v, err := DecodeMessage(br)
		return tag, v, err
	default:
		return tag, nil, fmt.Errorf("protocol: unknown packet tag %d", tag)
	}
}
