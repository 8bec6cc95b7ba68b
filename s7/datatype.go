package s7

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DataType identifies one of the supported primitive process-value types.
type DataType uint8

// Supported primitive types. All multi-byte types use big-endian byte order on
// the wire; the codec registry never accepts or produces little-endian encodings.
const (
	// TypeBool is a single bit within a byte.
	TypeBool DataType = iota
	// TypeByte is an unsigned 8-bit integer.
	TypeByte
	// TypeWord is an unsigned 16-bit integer.
	TypeWord
	// TypeDWord is an unsigned 32-bit integer.
	TypeDWord
	// TypeChar is a single-byte ASCII character.
	TypeChar
	// TypeInt is a signed 16-bit integer.
	TypeInt
	// TypeDInt is a signed 32-bit integer.
	TypeDInt
	// TypeReal is an IEEE-754 32-bit float.
	TypeReal

	numDataTypes // keep last
)

// Transport word-length codes indicating the addressing granularity of a
// batch item.
const (
	WordLenBit     = 0x01
	WordLenByte    = 0x02
	WordLenWord    = 0x04
	WordLenDWord   = 0x06
	WordLenCounter = 0x1C
	WordLenTimer   = 0x1D
)

// codec describes the fixed wire layout of one primitive type: its byte width,
// its transport word-length code, and its decode/encode functions.
// Codec instances are immutable after registry initialization.
type codec struct {
	size    int
	wordLen int
	decode  func(buf []byte, pos int, bit uint8) any
	encode  func(v any) ([]byte, error)
}

var codecs = [numDataTypes]codec{
	TypeBool: {
		size:    1,
		wordLen: WordLenByte,
		decode: func(buf []byte, pos int, bit uint8) any {
			return (buf[pos]>>bit)&0x01 == 0x01
		},
		encode: encodeBool,
	},
	TypeByte: {
		size:    1,
		wordLen: WordLenByte,
		decode: func(buf []byte, pos int, _ uint8) any {
			return buf[pos]
		},
		encode: encodeByte,
	},
	TypeWord: {
		size:    2,
		wordLen: WordLenWord,
		decode: func(buf []byte, pos int, _ uint8) any {
			return binary.BigEndian.Uint16(buf[pos:])
		},
		encode: encodeWord,
	},
	TypeDWord: {
		size:    4,
		wordLen: WordLenDWord,
		decode: func(buf []byte, pos int, _ uint8) any {
			return binary.BigEndian.Uint32(buf[pos:])
		},
		encode: encodeDWord,
	},
	TypeChar: {
		size:    1,
		wordLen: WordLenByte,
		decode: func(buf []byte, pos int, _ uint8) any {
			return string(buf[pos : pos+1])
		},
		encode: encodeChar,
	},
	TypeInt: {
		size:    2,
		wordLen: WordLenWord,
		decode: func(buf []byte, pos int, _ uint8) any {
			return int16(binary.BigEndian.Uint16(buf[pos:])) //nolint:gosec
		},
		encode: encodeInt,
	},
	TypeDInt: {
		size:    4,
		wordLen: WordLenDWord,
		decode: func(buf []byte, pos int, _ uint8) any {
			return int32(binary.BigEndian.Uint32(buf[pos:])) //nolint:gosec
		},
		encode: encodeDInt,
	},
	TypeReal: {
		size:    4,
		wordLen: WordLenDWord,
		decode: func(buf []byte, pos int, _ uint8) any {
			return math.Float32frombits(binary.BigEndian.Uint32(buf[pos:]))
		},
		encode: encodeReal,
	},
}

var dataTypeNames = [numDataTypes]string{
	TypeBool:  "bool",
	TypeByte:  "byte",
	TypeWord:  "word",
	TypeDWord: "dword",
	TypeChar:  "char",
	TypeInt:   "int",
	TypeDInt:  "dint",
	TypeReal:  "real",
}

// Valid returns if the data type is one of the registered primitives.
func (t DataType) Valid() bool { return t < numDataTypes }

// Size returns the byte width of the data type on the wire.
// It returns 0 for an unregistered type.
func (t DataType) Size() int {
	if !t.Valid() {
		return 0
	}
	return codecs[t].size
}

// WordLen returns the byte-granular transport word-length code of the data type.
// The bit-granular code for TypeBool is applied by the batch planner, not here.
func (t DataType) WordLen() int {
	if !t.Valid() {
		return 0
	}
	return codecs[t].wordLen
}

// String returns the string representation of the data type.
func (t DataType) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return dataTypeNames[t]
}

// ParseDataType resolves a primitive type name as used in configuration files.
// The accepted names are the same strings produced by DataType.String.
func ParseDataType(name string) (DataType, error) {
	for dt, n := range dataTypeNames {
		if n == name {
			return DataType(dt), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
}

// Decode interprets the value of type t located at byte offset pos in buf.
//
// For TypeBool, bit selects the bit within the addressed byte (0-7, default 0);
// it is ignored for every other type. Decode returns ErrUnsupportedType for an
// unregistered type and ErrShortBuffer when buf does not cover pos plus the
// type's width.
func Decode(t DataType, buf []byte, pos int, bit uint8) (any, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedType, t)
	}

	c := &codecs[t]
	if pos < 0 || pos+c.size > len(buf) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, c.size, pos, len(buf))
	}

	return c.decode(buf, pos, bit), nil
}

// Encode renders v as the wire bytes of type t.
//
// A TypeBool value always encodes to a full byte of 0x00 or 0x01; sibling bits of
// the addressed byte are not preserved at the wire layer. This mirrors controller
// write semantics and is a documented limitation, not a read-modify-write bug.
func Encode(t DataType, v any) ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedType, t)
	}

	return codecs[t].encode(v)
}

func encodeBool(v any) ([]byte, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, encodeTypeError(TypeBool, v)
	}
	if b {
		return []byte{0x01}, nil
	}

	return []byte{0x00}, nil
}

func encodeByte(v any) ([]byte, error) {
	switch val := v.(type) {
	case byte:
		return []byte{val}, nil
	case int:
		if val < 0 || val > math.MaxUint8 {
			return nil, encodeRangeError(TypeByte, v)
		}
		return []byte{byte(val)}, nil
	default:
		return nil, encodeTypeError(TypeByte, v)
	}
}

func encodeWord(v any) ([]byte, error) {
	buf := make([]byte, 2)
	switch val := v.(type) {
	case uint16:
		binary.BigEndian.PutUint16(buf, val)
	case int:
		if val < 0 || val > math.MaxUint16 {
			return nil, encodeRangeError(TypeWord, v)
		}
		binary.BigEndian.PutUint16(buf, uint16(val))
	default:
		return nil, encodeTypeError(TypeWord, v)
	}

	return buf, nil
}

func encodeDWord(v any) ([]byte, error) {
	buf := make([]byte, 4)
	switch val := v.(type) {
	case uint32:
		binary.BigEndian.PutUint32(buf, val)
	case uint:
		if val > math.MaxUint32 {
			return nil, encodeRangeError(TypeDWord, v)
		}
		binary.BigEndian.PutUint32(buf, uint32(val))
	case int:
		if val < 0 || val > math.MaxUint32 {
			return nil, encodeRangeError(TypeDWord, v)
		}
		binary.BigEndian.PutUint32(buf, uint32(val))
	default:
		return nil, encodeTypeError(TypeDWord, v)
	}

	return buf, nil
}

func encodeChar(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		if len(val) != 1 || val[0] > 0x7F {
			return nil, fmt.Errorf("%w: char value must be a single ASCII character", ErrInvalidValue)
		}
		return []byte{val[0]}, nil
	case byte:
		if val > 0x7F {
			return nil, encodeRangeError(TypeChar, v)
		}
		return []byte{val}, nil
	default:
		return nil, encodeTypeError(TypeChar, v)
	}
}

func encodeInt(v any) ([]byte, error) {
	buf := make([]byte, 2)
	switch val := v.(type) {
	case int16:
		binary.BigEndian.PutUint16(buf, uint16(val)) //nolint:gosec
	case int:
		if val < math.MinInt16 || val > math.MaxInt16 {
			return nil, encodeRangeError(TypeInt, v)
		}
		binary.BigEndian.PutUint16(buf, uint16(int16(val))) //nolint:gosec
	default:
		return nil, encodeTypeError(TypeInt, v)
	}

	return buf, nil
}

func encodeDInt(v any) ([]byte, error) {
	buf := make([]byte, 4)
	switch val := v.(type) {
	case int32:
		binary.BigEndian.PutUint32(buf, uint32(val)) //nolint:gosec
	case int:
		if val < math.MinInt32 || val > math.MaxInt32 {
			return nil, encodeRangeError(TypeDInt, v)
		}
		binary.BigEndian.PutUint32(buf, uint32(int32(val))) //nolint:gosec
	default:
		return nil, encodeTypeError(TypeDInt, v)
	}

	return buf, nil
}

func encodeReal(v any) ([]byte, error) {
	buf := make([]byte, 4)
	switch val := v.(type) {
	case float32:
		binary.BigEndian.PutUint32(buf, math.Float32bits(val))
	case float64:
		binary.BigEndian.PutUint32(buf, math.Float32bits(float32(val)))
	default:
		return nil, encodeTypeError(TypeReal, v)
	}

	return buf, nil
}

func encodeTypeError(t DataType, v any) error {
	return fmt.Errorf("%w: cannot encode %T as %s", ErrInvalidValue, v, t)
}

func encodeRangeError(t DataType, v any) error {
	return fmt.Errorf("%w: value %v out of range for %s", ErrInvalidValue, v, t)
}
