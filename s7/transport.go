package s7

// BatchItem is one addressed read/write unit within a single multi-item
// transport transaction.
//
// The planner fills the address fields; the transport fills Data (reads) and the
// per-item result fields. The order of items always matches the order of the
// variables they were planned from, because results are demultiplexed
// positionally.
type BatchItem struct {
	// Area is the transport-level area code.
	Area int
	// WordLen is the transport word-length code of the item.
	WordLen int
	// DBNumber is the data block number, 0 outside the data-block area.
	DBNumber int
	// Start is the item start position: byte-granular for most types,
	// bit-granular (byte*8+bit) for bool items.
	Start int
	// Amount is the number of addressed units, always 1 in this client.
	Amount int
	// Data is the raw payload: filled by the transport on reads, by the caller
	// on writes.
	Data []byte
	// Code is the per-item result code; 0 means success.
	Code int
	// Err is an optional transport-rendered error text for transports that
	// report item failures as text rather than numeric codes.
	Err string
}

// Failed returns if the item reported an error.
func (it *BatchItem) Failed() bool { return it.Code != 0 || it.Err != "" }

// Transport is the wire-protocol collaborator that actually opens the socket,
// performs the controller handshake, and moves bytes. Implementations own all
// socket I/O and timeout handling.
//
// A Transport handle is not safe for concurrent use; its owning supervisor
// serializes every call against it.
type Transport interface {
	// Connect performs the controller handshake against the resolved host.
	Connect(host string, rack int, slot int) error

	// Close tears the session down. It must be idempotent.
	Close() error

	// Connected reports the transport-level session liveness.
	Connected() bool

	// ReadRange reads length bytes starting at offset from one data block.
	ReadRange(dbNumber int, offset int, length int) ([]byte, error)

	// ReadBatch executes all items in one round trip, filling each item's Data
	// and result fields in place. The returned error covers transaction-level
	// failures only; per-item failures land in the items.
	ReadBatch(items []BatchItem) error

	// WriteBatch writes all items in one round trip, filling each item's result
	// fields in place.
	WriteBatch(items []BatchItem) error

	// StatusProbe issues a lightweight controller status request, used purely to
	// keep the session alive. Its result is advisory.
	StatusProbe() error

	// ErrorText renders a transport error code as human-readable text.
	ErrorText(code int) string
}
