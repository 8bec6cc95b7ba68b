// Package s7 provides the protocol-neutral core for talking to Siemens S7 family
// controllers: the variable descriptor model, the primitive-type codec registry,
// the address planner that turns descriptors into wire transactions, the connection
// state machine, and the notification hub.
//
// The package does not perform any socket I/O itself. The Transport interface
// describes the wire-protocol collaborator (see the s7client package for a
// production implementation backed by robinson/gos7); everything in this package
// works against that contract, which keeps the core testable without a controller.
//
// Key Components:
//   - Variable: one addressable process value (area, byte offset, bit offset, type).
//   - Decode/Encode: fixed big-endian codecs for the eight supported primitives.
//   - RangeSpan/BatchItems: the two planning modes for contiguous and multi-item reads.
//   - ConnStateMgr: the disconnected/connecting/connected lifecycle state machine.
//   - Hub: fire-and-forget fan-out of client notifications to subscribers.
package s7
