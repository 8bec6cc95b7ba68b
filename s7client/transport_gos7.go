package s7client

import (
	"errors"
	"io"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/robinson/gos7"

	"github.com/plctalk/go-s7/s7"
)

// gos7Transport adapts the robinson/gos7 ISO-on-TCP client to the s7.Transport
// interface. It is glue only; the wire protocol, handshake and timeouts all
// live in gos7.
//
// gos7 does not expose session liveness, so the adapter derives it from call
// outcomes: a network-level failure on any operation marks the session dead
// until the next successful Connect.
type gos7Transport struct {
	port           int
	connectTimeout time.Duration
	requestTimeout time.Duration

	handler *gos7.TCPClientHandler
	client  gos7.Client
	alive   atomic.Bool
}

var _ s7.Transport = (*gos7Transport)(nil)

// newGos7Transport is the default TransportDialer.
func newGos7Transport(cfg *ConnectionConfig) s7.Transport {
	return &gos7Transport{
		port:           cfg.port,
		connectTimeout: cfg.connectTimeout,
		requestTimeout: cfg.requestTimeout,
	}
}

func (t *gos7Transport) Connect(host string, rack int, slot int) error {
	addr := net.JoinHostPort(host, strconv.Itoa(t.port))

	handler := gos7.NewTCPClientHandler(addr, rack, slot)
	handler.Timeout = t.requestTimeout
	handler.IdleTimeout = 0 // the client's keep-alive probes own session idleness

	if err := connectWithTimeout(handler, t.connectTimeout); err != nil {
		return err
	}

	t.handler = handler
	t.client = gos7.NewClient(handler)
	t.alive.Store(true)

	return nil
}

// connectWithTimeout bounds the gos7 handshake, which otherwise uses the
// handler's request timeout per network operation.
func connectWithTimeout(handler *gos7.TCPClientHandler, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- handler.Connect()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		_ = handler.Close()
		return errors.New("connect timeout")
	}
}

func (t *gos7Transport) Close() error {
	t.alive.Store(false)
	if t.handler == nil {
		return nil
	}

	return t.handler.Close()
}

func (t *gos7Transport) Connected() bool {
	return t.alive.Load()
}

func (t *gos7Transport) ReadRange(dbNumber int, offset int, length int) ([]byte, error) {
	if t.client == nil {
		return nil, s7.ErrNotConnected
	}

	buf := make([]byte, length)
	if err := t.client.AGReadDB(dbNumber, offset, length, buf); err != nil {
		t.track(err)
		return nil, err
	}

	return buf, nil
}

func (t *gos7Transport) ReadBatch(items []s7.BatchItem) error {
	if t.client == nil {
		return s7.ErrNotConnected
	}

	gItems := toGos7Items(items)
	err := t.client.AGReadMulti(gItems, len(gItems))
	t.track(err)
	fromGos7Items(items, gItems)

	return err
}

func (t *gos7Transport) WriteBatch(items []s7.BatchItem) error {
	if t.client == nil {
		return s7.ErrNotConnected
	}

	gItems := toGos7Items(items)
	err := t.client.AGWriteMulti(gItems, len(gItems))
	t.track(err)
	fromGos7Items(items, gItems)

	return err
}

func (t *gos7Transport) StatusProbe() error {
	if t.client == nil {
		return s7.ErrNotConnected
	}

	_, err := t.client.PLCGetStatus()
	t.track(err)

	return err
}

func (t *gos7Transport) ErrorText(code int) string {
	return gos7.ErrorText(code)
}

// track marks the session dead on network-level failures. Controller-side
// errors (such as an out-of-range address) keep the session alive.
func (t *gos7Transport) track(err error) {
	if err == nil {
		return
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		t.alive.Store(false)
	}
}

func toGos7Items(items []s7.BatchItem) []gos7.S7DataItem {
	gItems := make([]gos7.S7DataItem, len(items))
	for i := range items {
		gItems[i] = gos7.S7DataItem{
			Area:     items[i].Area,
			WordLen:  items[i].WordLen,
			DBNumber: items[i].DBNumber,
			Start:    items[i].Start,
			Amount:   items[i].Amount,
			Data:     items[i].Data,
		}
	}

	return gItems
}

// fromGos7Items copies per-item results back. gos7 reports item failures as
// rendered text, which the executor surfaces through BatchError.
func fromGos7Items(items []s7.BatchItem, gItems []gos7.S7DataItem) {
	for i := range items {
		items[i].Data = gItems[i].Data
		items[i].Err = gItems[i].Error
		if gItems[i].Error != "" && items[i].Code == 0 {
			items[i].Code = itemErrorCode
		}
	}
}

// itemErrorCode is the generic result code attached to batch items whose
// failure the transport reported as text only.
const itemErrorCode = 0x8000
