package s7

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVariableValidate(t *testing.T) {
	tests := []struct {
		description string
		variable    *Variable
		wantErr     error
	}{
		{
			description: "valid data-block bool",
			variable:    &Variable{Type: TypeBool, Area: AreaDataBlock, DBNumber: 1, Start: 4, Bit: 2},
		},
		{
			description: "valid merker byte",
			variable:    &Variable{Type: TypeByte, Area: AreaMerker, Start: 0},
		},
		{
			description: "nil variable",
			variable:    nil,
			wantErr:     ErrInvalidVariable,
		},
		{
			description: "unregistered type",
			variable:    &Variable{Type: DataType(0xEE), Area: AreaDataBlock, DBNumber: 1},
			wantErr:     ErrUnsupportedType,
		},
		{
			description: "unknown area",
			variable:    &Variable{Type: TypeInt, Area: Area(0xEE)},
			wantErr:     ErrInvalidVariable,
		},
		{
			description: "negative byte offset",
			variable:    &Variable{Type: TypeInt, Area: AreaDataBlock, DBNumber: 1, Start: -1},
			wantErr:     ErrInvalidVariable,
		},
		{
			description: "bit offset above seven",
			variable:    &Variable{Type: TypeBool, Area: AreaDataBlock, DBNumber: 1, Bit: 8},
			wantErr:     ErrInvalidVariable,
		},
		{
			description: "bit offset on non-bool",
			variable:    &Variable{Type: TypeInt, Area: AreaDataBlock, DBNumber: 1, Bit: 1},
			wantErr:     ErrInvalidVariable,
		},
		{
			description: "data-block variable without block number",
			variable:    &Variable{Type: TypeInt, Area: AreaDataBlock},
			wantErr:     ErrInvalidVariable,
		},
		{
			description: "block number outside data-block area",
			variable:    &Variable{Type: TypeInt, Area: AreaMerker, DBNumber: 3},
			wantErr:     ErrInvalidVariable,
		},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			err := test.variable.Validate()
			if test.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, test.wantErr)
			}
		})
	}
}

func TestVariableString(t *testing.T) {
	require := require.New(t)

	v := &Variable{Type: TypeBool, Area: AreaDataBlock, DBNumber: 12, Start: 4, Bit: 2}
	require.Equal("DB12.4.2 (bool)", v.String())

	v = &Variable{Type: TypeReal, Area: AreaDataBlock, DBNumber: 3, Start: 16}
	require.Equal("DB3.16 (real)", v.String())

	v = &Variable{Type: TypeBool, Area: AreaMerker, Start: 1, Bit: 7}
	require.Equal("merker.1.7 (bool)", v.String())

	v = &Variable{Type: TypeWord, Area: AreaCounter, Start: 2}
	require.Equal("counter.2 (word)", v.String())
}

func TestAreaCodes(t *testing.T) {
	require := require.New(t)

	codes := map[Area]int{
		AreaPeripheralInput:  0x81,
		AreaPeripheralOutput: 0x82,
		AreaMerker:           0x83,
		AreaDataBlock:        0x84,
		AreaCounter:          0x1C,
		AreaTimer:            0x1D,
	}
	for area, code := range codes {
		require.Equal(code, area.TransportCode(), "code of %s", area)
	}

	require.Equal(0, Area(0xEE).TransportCode())
	require.Equal("unknown", Area(0xEE).String())
}

func TestParseArea(t *testing.T) {
	require := require.New(t)

	for area := Area(0); area.Valid(); area++ {
		parsed, err := ParseArea(area.String())
		require.NoError(err)
		require.Equal(area, parsed)
	}

	_, err := ParseArea("flag")
	require.ErrorIs(err, ErrInvalidVariable)
}
