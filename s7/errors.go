package s7

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedType indicates a codec lookup miss: the data type is not one
	// of the registered primitives.
	ErrUnsupportedType = errors.New("unsupported data type")

	// ErrInvalidVariable indicates a malformed variable descriptor, caught before
	// any transport call.
	ErrInvalidVariable = errors.New("invalid variable descriptor")

	// ErrInvalidValue indicates that a value cannot be encoded as the requested
	// data type.
	ErrInvalidValue = errors.New("invalid value")

	// ErrShortBuffer indicates that a decode buffer does not cover the requested
	// offset and type width.
	ErrShortBuffer = errors.New("buffer too short")

	// ErrEmptyRequest indicates that a planner was given zero descriptors.
	// Callers translate it into a successful empty result with no transport call.
	ErrEmptyRequest = errors.New("empty request")
)

var (
	// ErrAlreadyConnected is returned by connect when the session is already in
	// the connected state.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrNotConnected is returned when a read or write is attempted while the
	// session is not connected.
	ErrNotConnected = errors.New("not connected")

	// ErrInvalidTransition is returned when an attempt is made to transition the
	// connection state to an invalid state.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// ConnectError reports a failed connection handshake.
type ConnectError struct {
	// Reason is the underlying handshake or resolution failure.
	Reason error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect failed: %v", e.Reason)
}

func (e *ConnectError) Unwrap() error { return e.Reason }

// TransportError reports a failed single-operation transport call, such as a
// contiguous range read.
type TransportError struct {
	// Code is the transport-level error code, when the transport surfaced one.
	Code int
	// Err is the underlying transport error, when the transport surfaced one.
	Err error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: %v", e.Err)
	}

	return fmt.Sprintf("transport error: code 0x%04x", e.Code)
}

func (e *TransportError) Unwrap() error { return e.Err }

// BatchError reports one or more failed items within a multi-item transaction.
//
// The call fails as a whole: items that succeeded at the transport level are not
// partially returned to the caller.
type BatchError struct {
	// Codes holds the non-zero item result codes, in batch order.
	Codes []int
	// Texts holds the transport-rendered text for each code, same order as Codes.
	Texts []string
}

func (e *BatchError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("batch failed, %d item(s) reported errors:", len(e.Codes)))
	for i, code := range e.Codes {
		text := ""
		if i < len(e.Texts) {
			text = e.Texts[i]
		}
		sb.WriteString(fmt.Sprintf(" [0x%04x %s]", code, text))
	}

	return sb.String()
}
