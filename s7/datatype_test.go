package s7

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	tests := []struct {
		description string
		dataType    DataType
		value       any
		wireBytes   []byte
	}{
		{
			description: "bool true",
			dataType:    TypeBool,
			value:       true,
			wireBytes:   []byte{0x01},
		},
		{
			description: "bool false",
			dataType:    TypeBool,
			value:       false,
			wireBytes:   []byte{0x00},
		},
		{
			description: "byte",
			dataType:    TypeByte,
			value:       byte(0xAB),
			wireBytes:   []byte{0xAB},
		},
		{
			description: "word big-endian",
			dataType:    TypeWord,
			value:       uint16(0x1234),
			wireBytes:   []byte{0x12, 0x34},
		},
		{
			description: "dword big-endian",
			dataType:    TypeDWord,
			value:       uint32(0xDEADBEEF),
			wireBytes:   []byte{0xDE, 0xAD, 0xBE, 0xEF},
		},
		{
			description: "char ascii",
			dataType:    TypeChar,
			value:       "A",
			wireBytes:   []byte{0x41},
		},
		{
			description: "int negative",
			dataType:    TypeInt,
			value:       int16(-2),
			wireBytes:   []byte{0xFF, 0xFE},
		},
		{
			description: "dint negative",
			dataType:    TypeDInt,
			value:       int32(-100000),
			wireBytes:   []byte{0xFF, 0xFE, 0x79, 0x60},
		},
		{
			description: "real ieee-754",
			dataType:    TypeReal,
			value:       float32(3.14),
			wireBytes:   []byte{0x40, 0x48, 0xF5, 0xC3},
		},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			encoded, err := Encode(test.dataType, test.value)
			require.NoError(t, err)
			require.Equal(t, test.wireBytes, encoded)
			require.Len(t, encoded, test.dataType.Size())

			decoded, err := Decode(test.dataType, encoded, 0, 0)
			require.NoError(t, err)
			require.Equal(t, test.value, decoded)
		})
	}
}

func TestDecodeBoolBitOffset(t *testing.T) {
	require := require.New(t)

	// 0b0010_0100: bits 2 and 5 set
	buf := []byte{0x00, 0x24}

	for bit := uint8(0); bit < 8; bit++ {
		val, err := Decode(TypeBool, buf, 1, bit)
		require.NoError(err)
		require.Equal(bit == 2 || bit == 5, val, "bit %d", bit)
	}
}

func TestDecodeByteOffsetIntoBuffer(t *testing.T) {
	require := require.New(t)

	buf := []byte{0xFF, 0xFF, 0x00, 0x2A, 0xFF}
	val, err := Decode(TypeWord, buf, 2, 0)
	require.NoError(err)
	require.Equal(uint16(42), val)
}

func TestDecodeErrors(t *testing.T) {
	require := require.New(t)

	t.Run("unsupported type", func(t *testing.T) {
		_, err := Decode(DataType(0xEE), []byte{0x00}, 0, 0)
		require.ErrorIs(err, ErrUnsupportedType)
	})

	t.Run("short buffer", func(t *testing.T) {
		_, err := Decode(TypeDWord, []byte{0x00, 0x01}, 0, 0)
		require.ErrorIs(err, ErrShortBuffer)

		_, err = Decode(TypeInt, []byte{0x00, 0x01, 0x02}, 2, 0)
		require.ErrorIs(err, ErrShortBuffer)
	})

	t.Run("negative offset", func(t *testing.T) {
		_, err := Decode(TypeByte, []byte{0x00}, -1, 0)
		require.ErrorIs(err, ErrShortBuffer)
	})
}

func TestEncodeErrors(t *testing.T) {
	require := require.New(t)

	t.Run("unsupported type", func(t *testing.T) {
		_, err := Encode(DataType(0xEE), 1)
		require.ErrorIs(err, ErrUnsupportedType)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := Encode(TypeBool, 1)
		require.ErrorIs(err, ErrInvalidValue)

		_, err = Encode(TypeReal, "not a float")
		require.ErrorIs(err, ErrInvalidValue)
	})

	t.Run("value out of range", func(t *testing.T) {
		_, err := Encode(TypeByte, 256)
		require.ErrorIs(err, ErrInvalidValue)

		_, err = Encode(TypeWord, -1)
		require.ErrorIs(err, ErrInvalidValue)

		_, err = Encode(TypeInt, 40000)
		require.ErrorIs(err, ErrInvalidValue)
	})

	t.Run("char must be single ascii", func(t *testing.T) {
		_, err := Encode(TypeChar, "ab")
		require.ErrorIs(err, ErrInvalidValue)

		_, err = Encode(TypeChar, "")
		require.ErrorIs(err, ErrInvalidValue)
	})
}

func TestEncodeIntConvenience(t *testing.T) {
	require := require.New(t)

	// plain ints are accepted for the integer types when in range
	encoded, err := Encode(TypeInt, -2)
	require.NoError(err)
	require.Equal([]byte{0xFF, 0xFE}, encoded)

	encoded, err = Encode(TypeWord, 0x1234)
	require.NoError(err)
	require.Equal([]byte{0x12, 0x34}, encoded)

	encoded, err = Encode(TypeDInt, 1)
	require.NoError(err)
	require.Equal([]byte{0x00, 0x00, 0x00, 0x01}, encoded)

	// float64 literals are accepted for real
	encoded, err = Encode(TypeReal, 1.0)
	require.NoError(err)
	require.Equal([]byte{0x3F, 0x80, 0x00, 0x00}, encoded)
}

func TestDataTypeProperties(t *testing.T) {
	require := require.New(t)

	sizes := map[DataType]int{
		TypeBool:  1,
		TypeByte:  1,
		TypeChar:  1,
		TypeWord:  2,
		TypeInt:   2,
		TypeDWord: 4,
		TypeDInt:  4,
		TypeReal:  4,
	}
	for dt, size := range sizes {
		require.Equal(size, dt.Size(), "size of %s", dt)
	}

	wordLens := map[DataType]int{
		TypeBool:  WordLenByte,
		TypeByte:  WordLenByte,
		TypeChar:  WordLenByte,
		TypeWord:  WordLenWord,
		TypeInt:   WordLenWord,
		TypeDWord: WordLenDWord,
		TypeDInt:  WordLenDWord,
		TypeReal:  WordLenDWord,
	}
	for dt, wl := range wordLens {
		require.Equal(wl, dt.WordLen(), "word length of %s", dt)
	}
}

func TestParseDataType(t *testing.T) {
	require := require.New(t)

	for dt := DataType(0); dt.Valid(); dt++ {
		parsed, err := ParseDataType(dt.String())
		require.NoError(err)
		require.Equal(dt, parsed)
	}

	_, err := ParseDataType("float")
	require.ErrorIs(err, ErrUnsupportedType)
}
