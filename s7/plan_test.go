package s7

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRangeSpan(t *testing.T) {
	tests := []struct {
		description string
		vars        []*Variable
		offset      int
		length      int
	}{
		{
			description: "bool and int with a gap",
			vars: []*Variable{
				{Type: TypeBool, Area: AreaDataBlock, DBNumber: 1, Start: 4, Bit: 2},
				{Type: TypeInt, Area: AreaDataBlock, DBNumber: 1, Start: 13},
			},
			offset: 4,
			length: 11,
		},
		{
			description: "single variable",
			vars: []*Variable{
				{Type: TypeReal, Area: AreaDataBlock, DBNumber: 1, Start: 20},
			},
			offset: 20,
			length: 4,
		},
		{
			description: "unordered variables",
			vars: []*Variable{
				{Type: TypeWord, Area: AreaDataBlock, DBNumber: 1, Start: 10},
				{Type: TypeByte, Area: AreaDataBlock, DBNumber: 1, Start: 2},
			},
			offset: 2,
			length: 10,
		},
		{
			description: "overlapping variables",
			vars: []*Variable{
				{Type: TypeDWord, Area: AreaDataBlock, DBNumber: 1, Start: 0},
				{Type: TypeWord, Area: AreaDataBlock, DBNumber: 1, Start: 2},
			},
			offset: 0,
			length: 4,
		},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			offset, length, err := RangeSpan(test.vars)
			require.NoError(t, err)
			require.Equal(t, test.offset, offset)
			require.Equal(t, test.length, length)
		})
	}

	t.Run("empty request", func(t *testing.T) {
		_, _, err := RangeSpan(nil)
		require.ErrorIs(t, err, ErrEmptyRequest)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, _, err := RangeSpan([]*Variable{{Type: DataType(0xEE)}})
		require.ErrorIs(t, err, ErrUnsupportedType)
	})
}

func TestBatchItems(t *testing.T) {
	require := require.New(t)

	t.Run("bool uses bit-granular addressing", func(t *testing.T) {
		items, err := BatchItems([]*Variable{
			{Type: TypeBool, Area: AreaDataBlock, DBNumber: 7, Start: 5, Bit: 2},
		})
		require.NoError(err)
		require.Len(items, 1)
		require.Equal(WordLenBit, items[0].WordLen)
		require.Equal(42, items[0].Start)
		require.Equal(7, items[0].DBNumber)
		require.Equal(AreaDataBlock.TransportCode(), items[0].Area)
		require.Equal(1, items[0].Amount)
	})

	t.Run("int keeps byte-granular addressing", func(t *testing.T) {
		items, err := BatchItems([]*Variable{
			{Type: TypeInt, Area: AreaDataBlock, DBNumber: 7, Start: 13},
		})
		require.NoError(err)
		require.Equal(WordLenWord, items[0].WordLen)
		require.Equal(13, items[0].Start)
	})

	t.Run("counter and timer areas override the word length", func(t *testing.T) {
		items, err := BatchItems([]*Variable{
			{Type: TypeWord, Area: AreaCounter, Start: 0},
			{Type: TypeWord, Area: AreaTimer, Start: 1},
		})
		require.NoError(err)
		require.Equal(WordLenCounter, items[0].WordLen)
		require.Equal(WordLenTimer, items[1].WordLen)
	})

	t.Run("item order matches variable order", func(t *testing.T) {
		vars := []*Variable{
			{Type: TypeInt, Area: AreaDataBlock, DBNumber: 1, Start: 30},
			{Type: TypeBool, Area: AreaMerker, Start: 0, Bit: 7},
			{Type: TypeReal, Area: AreaDataBlock, DBNumber: 2, Start: 0},
		}
		items, err := BatchItems(vars)
		require.NoError(err)
		require.Len(items, 3)
		require.Equal(30, items[0].Start)
		require.Equal(7, items[1].Start)
		require.Equal(0, items[2].Start)
	})

	t.Run("empty request", func(t *testing.T) {
		_, err := BatchItems(nil)
		require.ErrorIs(err, ErrEmptyRequest)
	})

	t.Run("invalid variable rejected before planning", func(t *testing.T) {
		_, err := BatchItems([]*Variable{
			{Type: TypeInt, Area: AreaDataBlock, DBNumber: 0, Start: 0},
		})
		require.ErrorIs(err, ErrInvalidVariable)
	})
}
