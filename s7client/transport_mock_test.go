package s7client

import (
	"sync"
	"time"

	"github.com/plctalk/go-s7/s7"
)

// mockTransport is a scriptable in-memory Transport for client tests.
type mockTransport struct {
	mu sync.Mutex

	connected bool

	connectCalls int
	connectTimes []time.Time
	connectErr   error

	closeCalls int

	probeCalls int
	probeErr   error

	readRangeCalls int
	readRangeFn    func(dbNumber, offset, length int) ([]byte, error)

	readBatchCalls int
	readBatchFn    func(items []s7.BatchItem) error

	writeBatchCalls int
	writeBatchItems [][]s7.BatchItem
	writeBatchFn    func(items []s7.BatchItem) error
}

var _ s7.Transport = (*mockTransport)(nil)

func (m *mockTransport) Connect(host string, rack int, slot int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connectCalls++
	m.connectTimes = append(m.connectTimes, time.Now())
	if m.connectErr != nil {
		return m.connectErr
	}
	m.connected = true

	return nil
}

func (m *mockTransport) attemptTimes() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]time.Time, len(m.connectTimes))
	copy(out, m.connectTimes)

	return out
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeCalls++
	m.connected = false

	return nil
}

func (m *mockTransport) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.connected
}

func (m *mockTransport) ReadRange(dbNumber, offset, length int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.readRangeCalls++
	if m.readRangeFn != nil {
		return m.readRangeFn(dbNumber, offset, length)
	}

	return make([]byte, length), nil
}

func (m *mockTransport) ReadBatch(items []s7.BatchItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.readBatchCalls++
	if m.readBatchFn != nil {
		return m.readBatchFn(items)
	}

	return nil
}

func (m *mockTransport) WriteBatch(items []s7.BatchItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeBatchCalls++
	snapshot := make([]s7.BatchItem, len(items))
	copy(snapshot, items)
	m.writeBatchItems = append(m.writeBatchItems, snapshot)
	if m.writeBatchFn != nil {
		return m.writeBatchFn(items)
	}

	return nil
}

func (m *mockTransport) StatusProbe() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.probeCalls++

	return m.probeErr
}

func (m *mockTransport) ErrorText(code int) string {
	return "mock error"
}

func (m *mockTransport) setConnectErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectErr = err
}

func (m *mockTransport) dropConnection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
}

func (m *mockTransport) counts() (connect, closed, probe int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.connectCalls, m.closeCalls, m.probeCalls
}
