package s7

import "fmt"

// Variable describes one addressable process value on the controller.
//
// A Variable is the request/result unit of every read and write operation: the
// caller constructs it with an address (area, byte offset, bit offset, type), the
// executor fills Value on a successful read, and for writes the caller sets Value
// before the call. Variables have no persistent identity; they are plain data.
type Variable struct {
	// Name is an optional symbolic name, used by the configuration variable table.
	Name string
	// Type is the primitive type of the value.
	Type DataType
	// Area is the controller memory region the variable lives in.
	Area Area
	// DBNumber is the data block number. It is required when Area is
	// AreaDataBlock and must be zero otherwise.
	DBNumber int
	// Start is the non-negative byte offset within the area.
	Start int
	// Bit is the bit offset within the addressed byte (0-7). It is only
	// meaningful for TypeBool and must be zero for every other type.
	Bit uint8
	// Value holds the process value: set by the caller for writes, populated by
	// the executor on successful reads.
	Value any
}

// Validate checks the structural invariants of the variable descriptor.
// It is called before any transport I/O so that malformed requests never reach
// the wire.
func (v *Variable) Validate() error {
	if v == nil {
		return fmt.Errorf("%w: nil variable", ErrInvalidVariable)
	}
	if !v.Type.Valid() {
		return fmt.Errorf("%w: %d", ErrUnsupportedType, v.Type)
	}
	if !v.Area.Valid() {
		return fmt.Errorf("%w: unknown area %d", ErrInvalidVariable, v.Area)
	}
	if v.Start < 0 {
		return fmt.Errorf("%w: negative byte offset %d", ErrInvalidVariable, v.Start)
	}
	if v.Bit > 7 {
		return fmt.Errorf("%w: bit offset %d out of range [0, 7]", ErrInvalidVariable, v.Bit)
	}
	if v.Type != TypeBool && v.Bit != 0 {
		return fmt.Errorf("%w: bit offset is only meaningful for bool variables", ErrInvalidVariable)
	}

	if v.Area == AreaDataBlock {
		if v.DBNumber <= 0 {
			return fmt.Errorf("%w: data-block variable requires a data block number", ErrInvalidVariable)
		}
	} else if v.DBNumber != 0 {
		return fmt.Errorf("%w: data block number is only valid for data-block variables", ErrInvalidVariable)
	}

	return nil
}

// String returns a short address representation, e.g. "DB12.4.2 (bool)".
func (v *Variable) String() string {
	if v.Area == AreaDataBlock {
		if v.Type == TypeBool {
			return fmt.Sprintf("DB%d.%d.%d (%s)", v.DBNumber, v.Start, v.Bit, v.Type)
		}
		return fmt.Sprintf("DB%d.%d (%s)", v.DBNumber, v.Start, v.Type)
	}
	if v.Type == TypeBool {
		return fmt.Sprintf("%s.%d.%d (%s)", v.Area, v.Start, v.Bit, v.Type)
	}

	return fmt.Sprintf("%s.%d (%s)", v.Area, v.Start, v.Type)
}
