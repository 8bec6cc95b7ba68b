// Package s7client provides a high-level client for Siemens S7 family
// controllers, built on the core types of the s7 package.
//
// Key Features:
//   - Connection Management: connect/disconnect lifecycle with a supervised
//     state machine, periodic liveness checks and keep-alive probes.
//   - Auto-Reconnect: randomized exponential backoff after unexpected
//     disconnects, reset on the next successful connect.
//   - Typed Reads/Writes: contiguous data-block range reads and cross-area
//     multi-item batches, decoded through the fixed big-endian codec registry.
//   - Notifications: connected/disconnected/connect-error/value-observed events
//     delivered through a non-blocking subscriber hub.
//   - Customization: functional configuration options, a pluggable transport for
//     testing, and a YAML deployment configuration with a named variable table.
//
// Connection Establishment:
//   - Create a ConnectionConfig with NewConnectionConfig().
//   - Create a Client with NewClient() and call Connect(), or AutoConnect() to
//     keep retrying in the background.
//
// Reading and Writing:
//   - Describe each value as an s7.Variable and pass it to ReadBatch, WriteBatch,
//     ReadRange, ReadOne or WriteOne. Results come back on the same descriptors.
//
// Usage Example:
//
//	cfg, err := s7client.NewConnectionConfig("192.168.0.10", 102,
//	    s7client.WithRack(0),
//	    s7client.WithSlot(2),
//	    s7client.WithLivenessInterval(5*time.Second),
//	)
//	// ... handle error ...
//
//	client, err := s7client.NewClient(ctx, cfg)
//	// ... handle error ...
//	defer client.Close()
//
//	if err := client.Connect(); err != nil {
//	    // ... handle error ...
//	}
//
//	vars := []*s7.Variable{
//	    {Type: s7.TypeReal, Area: s7.AreaDataBlock, DBNumber: 1, Start: 4},
//	    {Type: s7.TypeBool, Area: s7.AreaMerker, Start: 10, Bit: 3},
//	}
//	results, err := client.ReadBatch(vars)
package s7client
