package s7

import "fmt"

// Area identifies one of the controller's memory regions.
type Area uint8

// Controller memory regions addressable by a Variable.
const (
	// AreaPeripheralInput addresses the process-input image (PE).
	AreaPeripheralInput Area = iota
	// AreaPeripheralOutput addresses the process-output image (PA).
	AreaPeripheralOutput
	// AreaMerker addresses flag memory (M).
	AreaMerker
	// AreaDataBlock addresses a numbered data block (DB); a Variable in this area
	// must carry a data block number.
	AreaDataBlock
	// AreaCounter addresses controller counters (C).
	AreaCounter
	// AreaTimer addresses controller timers (T).
	AreaTimer

	numAreas // keep last
)

// areaTransportCodes maps each area to its transport-level area code.
// The table is fixed at compile time; area codes are never derived from
// strings at runtime.
var areaTransportCodes = [numAreas]int{
	AreaPeripheralInput:  0x81,
	AreaPeripheralOutput: 0x82,
	AreaMerker:           0x83,
	AreaDataBlock:        0x84,
	AreaCounter:          0x1C,
	AreaTimer:            0x1D,
}

var areaNames = [numAreas]string{
	AreaPeripheralInput:  "peripheral-input",
	AreaPeripheralOutput: "peripheral-output",
	AreaMerker:           "merker",
	AreaDataBlock:        "data-block",
	AreaCounter:          "counter",
	AreaTimer:            "timer",
}

// Valid returns if the area is one of the defined memory regions.
func (a Area) Valid() bool { return a < numAreas }

// TransportCode returns the transport-level area code for the area.
// It returns 0 for an undefined area.
func (a Area) TransportCode() int {
	if !a.Valid() {
		return 0
	}
	return areaTransportCodes[a]
}

// String returns the string representation of the area.
func (a Area) String() string {
	if !a.Valid() {
		return "unknown"
	}
	return areaNames[a]
}

// ParseArea resolves an area name as used in configuration files.
// The accepted names are the same strings produced by Area.String.
func ParseArea(name string) (Area, error) {
	for area, n := range areaNames {
		if n == name {
			return Area(area), nil
		}
	}

	return 0, fmt.Errorf("%w: unknown area %q", ErrInvalidVariable, name)
}
