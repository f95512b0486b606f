package wire

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// compressThreshold is the payload size above which Packet.MaybeCompress
// wraps the serialized packet in a zlib-compressed envelope.
const compressThreshold = 160

// Packet is a single protocol message: an opcode, two header fields
// whose meaning is opcode-dependent, and an ordered list of variables.
type Packet struct {
	Opcode  Opcode
	Header0 uint16
	Header1 uint16
	Vars    []Var
}

// NewPacket builds a packet with the conventional default headers
// (Header0 = 0, Header1 = 2).
func NewPacket(opcode Opcode) *Packet {
	return &Packet{Opcode: opcode, Header0: 0, Header1: 2}
}

func (p *Packet) Add(v Var) { p.Vars = append(p.Vars, v) }

func (p *Packet) AddByte(id VarID, v uint8)    { p.Add(ByteVar(id, v)) }
func (p *Packet) AddInt(id VarID, v int32)     { p.Add(IntVar(id, v)) }
func (p *Packet) AddUint(id VarID, v uint32)   { p.Add(UintVar(id, v)) }
func (p *Packet) AddFloat(id VarID, v float32) { p.Add(FloatVar(id, v)) }
func (p *Packet) AddString(id VarID, v string) { p.Add(StringVar(id, v)) }
func (p *Packet) AddData(id VarID, v []byte)   { p.Add(DataVar(id, v)) }

// Get returns the first variable with the given id.
func (p *Packet) Get(id VarID) (Var, bool) {
	for _, v := range p.Vars {
		if v.ID == id {
			return v, true
		}
	}
	return Var{}, false
}

func (p *Packet) GetByte(id VarID) uint8 {
	v, _ := p.Get(id)
	return v.Byte
}

func (p *Packet) GetInt(id VarID) int32 {
	v, _ := p.Get(id)
	return v.Int
}

func (p *Packet) GetUint(id VarID) uint32 {
	v, _ := p.Get(id)
	return v.AsUint()
}

func (p *Packet) GetFloat(id VarID) float32 {
	v, _ := p.Get(id)
	return v.Float
}

func (p *Packet) GetString(id VarID) string {
	v, _ := p.Get(id)
	return v.String
}

func (p *Packet) GetData(id VarID) []byte {
	v, _ := p.Get(id)
	return v.Data
}

// SerializeLen returns the exact byte length Serialize will produce,
// header included.
func (p *Packet) SerializeLen() (int, error) {
	total := tagHeaderLen
	for _, v := range p.Vars {
		n, err := v.SerializeLen()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// Serialize encodes the tag header followed by every variable in order.
func (p *Packet) Serialize() ([]byte, error) {
	length, err := p.SerializeLen()
	if err != nil {
		return nil, err
	}
	if len(p.Vars) > 1024 {
		return nil, fmt.Errorf("wire: too many vars: %d", len(p.Vars))
	}

	hdr := TagHeader{
		SerializedLength: uint16(length),
		Header0:          p.Header0,
		Opcode:           p.Opcode,
		Header1:          p.Header1,
		VarCount:         uint16(len(p.Vars)),
	}

	out := make([]byte, 0, length)
	out = append(out, hdr.Serialize()...)
	for _, v := range p.Vars {
		enc, err := v.Serialize()
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	return out, nil
}

// DeserializeError distinguishes the ways a packet can fail to parse
// from a byte buffer that may not yet hold an entire packet.
type DeserializeError struct {
	Kind           DeserializeErrorKind
	CompressedLen  int
}

type DeserializeErrorKind int

const (
	ErrShort DeserializeErrorKind = iota
	ErrInvalidHeader
	ErrCompressed
)

func (e *DeserializeError) Error() string {
	switch e.Kind {
	case ErrShort:
		return "wire: buffer too short"
	case ErrInvalidHeader:
		return "wire: invalid tag header"
	case ErrCompressed:
		return fmt.Sprintf("wire: packet is compressed, length %d", e.CompressedLen)
	default:
		return "wire: deserialize error"
	}
}

// DeserializeCheck inspects a buffer without fully decoding it,
// reporting whether enough bytes are buffered and whether the packet is
// a compressed envelope that must be inflated first.
func DeserializeCheck(data []byte) (TagHeader, error) {
	if len(data) < tagHeaderLen {
		return TagHeader{}, &DeserializeError{Kind: ErrShort}
	}
	hdr, err := DeserializeTagHeader(data)
	if err != nil {
		return TagHeader{}, &DeserializeError{Kind: ErrShort}
	}
	if !hdr.IsValid() {
		return TagHeader{}, &DeserializeError{Kind: ErrInvalidHeader}
	}
	if hdr.Opcode == OpCompressed && hdr.Header1 != 0 {
		return hdr, &DeserializeError{Kind: ErrCompressed, CompressedLen: int(hdr.SerializedLength)}
	}
	if len(data) < int(hdr.SerializedLength) {
		return hdr, &DeserializeError{Kind: ErrShort}
	}
	return hdr, nil
}

// Deserialize parses a complete packet from data, which must hold at
// least hdr.SerializedLength bytes. It returns the packet and the
// number of bytes consumed.
func Deserialize(data []byte) (*Packet, int, error) {
	hdr, err := DeserializeTagHeader(data)
	if err != nil {
		return nil, 0, err
	}
	if !hdr.IsValid() {
		return nil, 0, &DeserializeError{Kind: ErrInvalidHeader}
	}
	if len(data) < int(hdr.SerializedLength) {
		return nil, 0, &DeserializeError{Kind: ErrShort}
	}

	p := &Packet{Opcode: hdr.Opcode, Header0: hdr.Header0, Header1: hdr.Header1}
	cursor := tagHeaderLen
	for i := uint16(0); i < hdr.VarCount; i++ {
		v, n, err := DeserializeVar(data[cursor:hdr.SerializedLength])
		if err != nil {
			return nil, 0, err
		}
		p.Vars = append(p.Vars, v)
		cursor += n
	}
	if cursor != int(hdr.SerializedLength) {
		return nil, 0, fmt.Errorf("wire: packet length mismatch: consumed %d, declared %d", cursor, hdr.SerializedLength)
	}
	return p, cursor, nil
}

// MaybeCompress serializes the packet, returning a zlib-compressed
// envelope when the serialized form exceeds compressThreshold bytes and
// the raw serialized form otherwise.
func MaybeCompress(p *Packet) ([]byte, error) {
	raw, err := p.Serialize()
	if err != nil {
		return nil, err
	}
	return CompressBytes(raw)
}

// CompressBytes wraps an already-serialized run of one or more packets
// in a zlib-compressed envelope when it exceeds compressThreshold
// bytes, and returns it unchanged otherwise. This is the same framing
// MaybeCompress applies to a single packet, factored out so a
// PacketGroup's concatenated bytes can be compressed the same way.
func CompressBytes(raw []byte) ([]byte, error) {
	if len(raw) <= compressThreshold {
		return raw, nil
	}

	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	hdr := TagHeader{
		SerializedLength: uint16(tagHeaderLen + buf.Len()),
		Header0:          0,
		Opcode:           OpCompressed,
		Header1:          1,
		VarCount:         0,
	}
	out := make([]byte, 0, tagHeaderLen+buf.Len())
	out = append(out, hdr.Serialize()...)
	out = append(out, buf.Bytes()...)
	return out, nil
}

// Decompress strips the 10-byte compression envelope header from data
// and inflates the remainder.
func Decompress(data []byte) ([]byte, error) {
	if len(data) < tagHeaderLen {
		return nil, fmt.Errorf("wire: compressed envelope too short")
	}
	r, err := zlib.NewReader(bytes.NewReader(data[tagHeaderLen:]))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
