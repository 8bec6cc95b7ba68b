package s7client

import (
	"sync/atomic"
)

// ClientMetrics contains atomic metrics for one client.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type ClientMetrics struct {
	// ProbeSendCount indicates the number of keep-alive probes sent.
	ProbeSendCount atomic.Uint64
	// ProbeErrCount indicates the number of failed keep-alive probes.
	ProbeErrCount atomic.Uint64

	// RangeReadCount indicates the number of contiguous range read transactions.
	RangeReadCount atomic.Uint64
	// BatchReadCount indicates the number of multi-item read transactions.
	BatchReadCount atomic.Uint64
	// BatchWriteCount indicates the number of multi-item write transactions.
	BatchWriteCount atomic.Uint64
	// BatchErrCount indicates the number of transactions failed by item errors.
	BatchErrCount atomic.Uint64
	// TransportErrCount indicates the number of transaction-level transport errors.
	TransportErrCount atomic.Uint64

	// ConnErrCount indicates the number of failed connection handshakes.
	ConnErrCount atomic.Uint64
	// ConnRetryGauge indicates the number of reconnect attempts since the last
	// successful connect.
	ConnRetryGauge atomic.Uint32
}

func (m *ClientMetrics) incProbeSendCount() {
	m.ProbeSendCount.Add(1)
}

func (m *ClientMetrics) incProbeErrCount() {
	m.ProbeErrCount.Add(1)
}

func (m *ClientMetrics) incRangeReadCount() {
	m.RangeReadCount.Add(1)
}

func (m *ClientMetrics) incBatchReadCount() {
	m.BatchReadCount.Add(1)
}

func (m *ClientMetrics) incBatchWriteCount() {
	m.BatchWriteCount.Add(1)
}

func (m *ClientMetrics) incBatchErrCount() {
	m.BatchErrCount.Add(1)
}

func (m *ClientMetrics) incTransportErrCount() {
	m.TransportErrCount.Add(1)
}

func (m *ClientMetrics) incConnErrCount() {
	m.ConnErrCount.Add(1)
}

func (m *ClientMetrics) incConnRetryGauge() {
	m.ConnRetryGauge.Add(1)
}

func (m *ClientMetrics) resetConnRetryGauge() {
	m.ConnRetryGauge.Store(0)
}
