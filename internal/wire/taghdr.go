package wire

import (
	"encoding/binary"
	"fmt"
)

// tagHeaderLen is the fixed size of the tag header in bytes.
const tagHeaderLen = 10

// TagHeader is the 10-byte big-endian header that precedes every
// packet's variables on the wire.
type TagHeader struct {
	SerializedLength uint16
	Header0          uint16
	Opcode           Opcode
	Header1          uint16
	VarCount         uint16
}

func (h TagHeader) Serialize() []byte {
	out := make([]byte, tagHeaderLen)
	binary.BigEndian.PutUint16(out[0:2], h.SerializedLength)
	binary.BigEndian.PutUint16(out[2:4], h.Header0)
	binary.BigEndian.PutUint16(out[4:6], uint16(h.Opcode))
	binary.BigEndian.PutUint16(out[6:8], h.Header1)
	binary.BigEndian.PutUint16(out[8:10], h.VarCount)
	return out
}

func DeserializeTagHeader(data []byte) (TagHeader, error) {
	if len(data) < tagHeaderLen {
		return TagHeader{}, fmt.Errorf("wire: not enough data for tag header")
	}
	return TagHeader{
		SerializedLength: binary.BigEndian.Uint16(data[0:2]),
		Header0:          binary.BigEndian.Uint16(data[2:4]),
		Opcode:           Opcode(int16(binary.BigEndian.Uint16(data[4:6]))),
		Header1:          binary.BigEndian.Uint16(data[6:8]),
		VarCount:         binary.BigEndian.Uint16(data[8:10]),
	}, nil
}

// IsValid reports whether the header's framing fields are in range.
// Header1 is normally at most 3; the Tunnel opcode is exempt from that
// bound, and Header1 == 0 is only legal alongside Tunnel.
func (h TagHeader) IsValid() bool {
	if h.VarCount > 1024 {
		return false
	}
	if h.Header1 > 3 && h.Opcode != OpTunnel {
		return false
	}
	if h.Header1 == 0 && h.Opcode != OpTunnel {
		return false
	}
	return true
}
