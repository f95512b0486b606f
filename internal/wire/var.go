package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DataType is the 4-bit type tag packed into a variable's size field.
type DataType uint16

const (
	TypeUnknown DataType = 0
	TypeByte    DataType = 1
	TypeInt     DataType = 2
	TypeFloat   DataType = 3
	TypeString  DataType = 4
	TypeData    DataType = 5
)

// Var is a single (var_id, typed value) packet variable. Exactly one of
// the payload fields is meaningful, selected by Type.
type Var struct {
	ID   VarID
	Type DataType

	Byte   uint8
	Int    int32
	Float  float32
	String string
	Data   []byte // also holds Unknown payloads
}

func ByteVar(id VarID, v uint8) Var     { return Var{ID: id, Type: TypeByte, Byte: v} }
func IntVar(id VarID, v int32) Var      { return Var{ID: id, Type: TypeInt, Int: v} }
func UintVar(id VarID, v uint32) Var    { return Var{ID: id, Type: TypeInt, Int: int32(v)} }
func FloatVar(id VarID, v float32) Var  { return Var{ID: id, Type: TypeFloat, Float: v} }
func StringVar(id VarID, v string) Var  { return Var{ID: id, Type: TypeString, String: v} }
func DataVar(id VarID, v []byte) Var    { return Var{ID: id, Type: TypeData, Data: v} }
func UnknownVar(id VarID, v []byte) Var { return Var{ID: id, Type: TypeUnknown, Data: v} }

// AsUint reinterprets an Int-typed variable's payload as unsigned; the
// protocol stores both signed and unsigned 32-bit quantities under the
// same on-wire Int type.
func (v Var) AsUint() uint32 { return uint32(v.Int) }

func (v Var) dataSize() (int, error) {
	switch v.Type {
	case TypeByte:
		return 1, nil
	case TypeInt, TypeFloat:
		return 4, nil
	case TypeString:
		return len(latin1Encode(v.String)) + 1, nil
	case TypeData, TypeUnknown:
		return len(v.Data), nil
	default:
		return 0, fmt.Errorf("wire: unknown var type %d", v.Type)
	}
}

// SerializeLen returns the exact number of bytes Serialize will produce.
func (v Var) SerializeLen() (int, error) {
	size, err := v.dataSize()
	if err != nil {
		return 0, err
	}
	return 4 + size, nil
}

// Serialize encodes the variable: big-endian var_id and packed
// type/size header, followed by a little-endian scalar payload (or raw
// bytes for String/Data/Unknown).
func (v Var) Serialize() ([]byte, error) {
	size, err := v.dataSize()
	if err != nil {
		return nil, err
	}
	if size > 0xFFF {
		return nil, fmt.Errorf("wire: var %d payload too large: %d bytes", v.ID, size)
	}

	out := make([]byte, 4, 4+size)
	binary.BigEndian.PutUint16(out[0:2], uint16(v.ID))
	binary.BigEndian.PutUint16(out[2:4], uint16(v.Type)<<12|uint16(size))

	switch v.Type {
	case TypeByte:
		out = append(out, v.Byte)
	case TypeInt:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v.Int))
		out = append(out, b[:]...)
	case TypeFloat:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(v.Float))
		out = append(out, b[:]...)
	case TypeString:
		out = append(out, latin1Encode(v.String)...)
		out = append(out, 0)
	case TypeData, TypeUnknown:
		out = append(out, v.Data...)
	}

	return out, nil
}

// DeserializeVar parses a single variable from the front of data,
// returning the variable and the number of bytes consumed.
func DeserializeVar(data []byte) (Var, int, error) {
	if len(data) < 4 {
		return Var{}, 0, fmt.Errorf("wire: not enough data for var header")
	}

	id := VarID(binary.BigEndian.Uint16(data[0:2]))
	packed := binary.BigEndian.Uint16(data[2:4])
	size := int(packed & 0xFFF)
	dataType := DataType((packed & 0xF000) >> 12)

	payload := data[4:]
	if len(payload) < size {
		return Var{}, 0, fmt.Errorf("wire: not enough data for var payload")
	}
	payload = payload[:size]
	consumed := 4 + size

	switch dataType {
	case TypeByte:
		if size != 1 {
			return Var{}, 0, fmt.Errorf("wire: byte var wrong size %d", size)
		}
		return Var{ID: id, Type: TypeByte, Byte: payload[0]}, consumed, nil
	case TypeInt:
		if size != 4 {
			return Var{}, 0, fmt.Errorf("wire: int var wrong size %d", size)
		}
		return Var{ID: id, Type: TypeInt, Int: int32(binary.LittleEndian.Uint32(payload))}, consumed, nil
	case TypeFloat:
		if size != 4 {
			return Var{}, 0, fmt.Errorf("wire: float var wrong size %d", size)
		}
		bits := binary.LittleEndian.Uint32(payload)
		return Var{ID: id, Type: TypeFloat, Float: math.Float32frombits(bits)}, consumed, nil
	case TypeString:
		return Var{ID: id, Type: TypeString, String: latin1Decode(payload)}, consumed, nil
	case TypeData:
		buf := make([]byte, len(payload))
		copy(buf, payload)
		return Var{ID: id, Type: TypeData, Data: buf}, consumed, nil
	case TypeUnknown:
		buf := make([]byte, len(payload))
		copy(buf, payload)
		return Var{ID: id, Type: TypeUnknown, Data: buf}, consumed, nil
	default:
		return Var{}, 0, fmt.Errorf("wire: invalid data type %d", dataType)
	}
}
