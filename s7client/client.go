package s7client

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/plctalk/go-s7/logger"
	"github.com/plctalk/go-s7/s7"
)

// Client is a high-level session to one controller. It owns the transport
// handle exclusively, supervises the connection lifecycle, and executes typed
// read/write transactions while connected.
//
// All transport calls are serialized through an internal mutex; the Client
// itself is safe for concurrent use.
type Client struct {
	pctx      context.Context
	ctx       context.Context
	ctxCancel context.CancelFunc
	cfg       *ConnectionConfig
	logger    logger.Logger

	transport s7.Transport
	opMutex   sync.Mutex // serializes all calls against the transport handle

	stateMgr *s7.ConnStateMgr
	taskMgr  *s7.TaskManager
	hub      *s7.Hub

	probeCycle atomic.Uint32 // liveness ticks since connect, private per client

	autoConnect atomic.Bool  // auto-reconnect mode entered
	reconnect   reconnectCtl // backoff state, private per client

	varMutex sync.RWMutex
	vars     map[string]*s7.Variable

	metrics ClientMetrics
}

const livenessTaskName = "liveness"

// NewClient creates a new Client with the given context and configuration.
// It initializes the connection state machine, the event hub and the transport
// handle, but does not connect. Returns an error if the configuration is nil.
func NewClient(ctx context.Context, cfg *ConnectionConfig) (*Client, error) {
	if cfg == nil {
		return nil, ErrConnConfigNil
	}

	c := &Client{
		pctx:   ctx,
		cfg:    cfg,
		logger: cfg.logger,
		vars:   make(map[string]*s7.Variable),
	}

	if c.logger == nil {
		c.logger = logger.GetLogger()
	}
	if cfg.name != "" {
		c.logger = c.logger.With("plc", cfg.name)
	}

	c.ctx, c.ctxCancel = context.WithCancel(ctx)
	c.transport = cfg.dial(cfg)
	c.stateMgr = s7.NewConnStateMgr(c.ctx, c.logger)
	c.taskMgr = s7.NewTaskManager(c.ctx, c.logger)
	c.hub = s7.NewHub(c.ctx, c.logger, cfg.eventQueueSize)

	return c, nil
}

// State returns the current connection state.
func (c *Client) State() s7.ConnState { return c.stateMgr.State() }

// IsConnected returns if the session is in the connected state.
func (c *Client) IsConnected() bool { return c.stateMgr.IsConnected() }

// WaitState blocks until the session reaches the given state or ctx is done.
func (c *Client) WaitState(ctx context.Context, state s7.ConnState) error {
	return c.stateMgr.WaitState(ctx, state)
}

// Metrics returns the metrics associated with the client.
func (c *Client) Metrics() *ClientMetrics { return &c.metrics }

// Subscribe registers a handler for all client notifications and returns a
// subscription id for Unsubscribe.
func (c *Client) Subscribe(handler s7.EventHandler) uint64 {
	return c.hub.Subscribe(handler)
}

// Unsubscribe removes a notification subscription.
func (c *Client) Unsubscribe(id uint64) {
	c.hub.Unsubscribe(id)
}

// Connect establishes the controller session.
//
// It fails with s7.ErrAlreadyConnected if the session is already connected, and
// with *s7.ConnectError if host resolution or the transport handshake fails. On
// success the liveness check timer is started and an EventConnected notification
// is emitted.
func (c *Client) Connect() error {
	if c.stateMgr.IsConnected() {
		return s7.ErrAlreadyConnected
	}

	host, err := c.resolveHost()
	if err != nil {
		connErr := &s7.ConnectError{Reason: err}
		c.hub.Publish(s7.Event{Kind: s7.EventConnectError, Err: connErr})

		return connErr
	}

	if err := c.stateMgr.ToConnecting(); err != nil {
		// a concurrent Connect() holds the connecting state
		return err
	}

	c.logger.Debug("connecting", "host", host, "port", c.cfg.port, "rack", c.cfg.rack, "slot", c.cfg.slot)

	c.opMutex.Lock()
	err = c.transport.Connect(host, c.cfg.rack, c.cfg.slot)
	c.opMutex.Unlock()

	if err != nil {
		c.stateMgr.ToDisconnected()
		c.metrics.incConnErrCount()

		connErr := &s7.ConnectError{Reason: err}
		c.logger.Warn("connect failed", "host", host, "error", err)
		c.hub.Publish(s7.Event{Kind: s7.EventConnectError, Err: connErr})

		return connErr
	}

	_ = c.stateMgr.ToConnected()
	c.probeCycle.Store(0)

	if err := c.taskMgr.StartInterval(livenessTaskName, c.livenessTask, c.cfg.livenessInterval, false); err != nil {
		c.logger.Error("failed to start liveness task", "error", err)
	}

	c.resetBackoff()
	c.metrics.resetConnRetryGauge()
	c.logger.Info("connected", "host", host)
	c.hub.Publish(s7.Event{Kind: s7.EventConnected})

	return nil
}

// Disconnect tears the session down.
//
// It cancels the liveness timer and any pending reconnect, instructs the
// transport to close, and emits an EventDisconnected notification with the
// manual flag set. Disconnect always succeeds and is idempotent.
func (c *Client) Disconnect() {
	c.cancelReconnect()
	_ = c.taskMgr.StopInterval(livenessTaskName)

	c.opMutex.Lock()
	if err := c.transport.Close(); err != nil {
		c.logger.Debug("transport close reported error", "error", err)
	}
	c.opMutex.Unlock()

	if c.stateMgr.ToDisconnected() {
		c.logger.Info("disconnected manually")
		c.hub.Publish(s7.Event{Kind: s7.EventDisconnected, Manual: true})
	}
}

// Close disconnects and releases all client resources. The client cannot be
// reused afterwards.
func (c *Client) Close() error {
	c.Disconnect()

	c.taskMgr.Stop()
	c.taskMgr.Wait()
	c.ctxCancel()

	return nil
}

// livenessTask runs on every liveness timer tick while connected.
//
// Every keepAliveCycle-th tick it sends an idle status probe whose result is
// ignored; a failed probe is logged, never propagated. On every tick it checks
// transport-level connectedness and, when the transport reports disconnected,
// transitions to the disconnected state, emits exactly one EventDisconnected
// with the manual flag cleared, and stops its own timer by returning false.
func (c *Client) livenessTask() bool {
	if !c.stateMgr.IsConnected() {
		return false
	}

	tick := c.probeCycle.Add(1)
	if cycle := c.cfg.keepAliveCycle; cycle > 0 && tick%uint32(cycle) == 0 { //nolint:gosec
		c.opMutex.Lock()
		err := c.transport.StatusProbe()
		c.opMutex.Unlock()

		c.metrics.incProbeSendCount()
		if err != nil {
			c.metrics.incProbeErrCount()
			c.logger.Warn("keep-alive probe failed", "method", "livenessTask", "error", err)
		}
	}

	c.opMutex.Lock()
	alive := c.transport.Connected()
	c.opMutex.Unlock()

	if alive {
		return true
	}

	c.logger.Warn("transport reports disconnected", "method", "livenessTask")
	if c.stateMgr.ToDisconnected() {
		c.hub.Publish(s7.Event{Kind: s7.EventDisconnected, Manual: false})
	}

	return false
}

// resolveHost resolves the configured host to a numeric address. It is a no-op
// when the host already is one.
func (c *Client) resolveHost() (string, error) {
	host := c.cfg.host
	if ip := net.ParseIP(host); ip != nil {
		return host, nil
	}

	addrs, err := net.LookupHost(host)
	if err != nil {
		return "", fmt.Errorf("resolve host %q: %w", host, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("resolve host %q: no addresses", host)
	}

	return addrs[0], nil
}

// AddVariables registers named variables in the client's variable table.
// Variables without a name or failing validation are rejected.
func (c *Client) AddVariables(vars ...*s7.Variable) error {
	for _, v := range vars {
		if err := v.Validate(); err != nil {
			return err
		}
		if v.Name == "" {
			return fmt.Errorf("%w: variable has no name", s7.ErrInvalidVariable)
		}
	}

	c.varMutex.Lock()
	defer c.varMutex.Unlock()
	for _, v := range vars {
		c.vars[v.Name] = v
	}

	return nil
}

// Variable looks a registered variable up by name and returns a copy of its
// descriptor, so callers can set Value without racing each other.
func (c *Client) Variable(name string) (*s7.Variable, error) {
	c.varMutex.RLock()
	defer c.varMutex.RUnlock()

	v, ok := c.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown variable %q", s7.ErrInvalidVariable, name)
	}

	clone := *v

	return &clone, nil
}
