package s7

import "fmt"

// RangeSpan computes the minimal contiguous byte range covering every variable,
// for reading one data block's variables in a single transaction.
//
// It returns offset = min(start) and length = max(start+width) - offset across
// all variables. Gaps between variables are covered by the range; they are read
// from the wire but never interpreted. RangeSpan returns ErrEmptyRequest when
// given zero variables.
func RangeSpan(vars []*Variable) (offset int, length int, err error) {
	if len(vars) == 0 {
		return 0, 0, ErrEmptyRequest
	}

	offset = vars[0].Start
	end := 0
	for _, v := range vars {
		if !v.Type.Valid() {
			return 0, 0, fmt.Errorf("%w: %d", ErrUnsupportedType, v.Type)
		}
		if v.Start < offset {
			offset = v.Start
		}
		if e := v.Start + v.Type.Size(); e > end {
			end = e
		}
	}

	return offset, end - offset, nil
}

// BatchItems plans one transport item per variable for a multi-item round trip.
//
// Bool items are addressed bit-granularly: start = byteStart*8 + bitOffset with
// the bit word-length code. Every other type keeps its byte-granular start and
// word-length code. Items in the counter and timer areas carry those areas'
// dedicated word-length codes, which the transport requires regardless of the
// variable's primitive type.
//
// The order of the planned items exactly matches the order of vars; the executor
// demultiplexes per-item results positionally.
func BatchItems(vars []*Variable) ([]BatchItem, error) {
	if len(vars) == 0 {
		return nil, ErrEmptyRequest
	}

	items := make([]BatchItem, 0, len(vars))
	for _, v := range vars {
		if err := v.Validate(); err != nil {
			return nil, err
		}

		item := BatchItem{
			Area:     v.Area.TransportCode(),
			WordLen:  v.Type.WordLen(),
			DBNumber: v.DBNumber,
			Start:    v.Start,
			Amount:   1,
		}

		switch {
		case v.Area == AreaCounter:
			item.WordLen = WordLenCounter
		case v.Area == AreaTimer:
			item.WordLen = WordLenTimer
		case v.Type == TypeBool:
			item.WordLen = WordLenBit
			item.Start = v.Start*8 + int(v.Bit)
		}

		items = append(items, item)
	}

	return items, nil
}
