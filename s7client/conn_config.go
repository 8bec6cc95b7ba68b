package s7client

import (
	"errors"
	"sync"
	"time"

	"github.com/plctalk/go-s7/logger"
	"github.com/plctalk/go-s7/s7"
)

// ErrConnConfigNil indicates that a nil ConnectionConfig was provided.
var ErrConnConfigNil = errors.New("connection config is nil")

// TransportDialer creates the transport handle a Client owns for its lifetime.
// The default dialer builds a gos7-backed transport; tests inject their own.
type TransportDialer func(cfg *ConnectionConfig) s7.Transport

// ConnectionConfig represents the configuration parameters for one controller
// session. It is an immutable snapshot of the target identity plus policy knobs:
// copied at client construction and never mutated afterwards.
type ConnectionConfig struct {
	mu sync.RWMutex

	// name is an optional symbolic name of the target controller, used in logs.
	name string

	// host specifies the host of the controller. A hostname is resolved to a
	// numeric address when connecting.
	host string

	// port specifies the TCP port number, usually 102 (ISO-on-TCP).
	port int

	// rack and slot identify the CPU position in the controller chassis.
	rack int
	slot int

	// livenessInterval defines the period of the recurring liveness check while
	// connected. It is also the base delay of the reconnect backoff.
	// Defaults to 10 seconds.
	livenessInterval time.Duration

	// maxBackoffDelay clamps the reconnect backoff.
	// Defaults to 5 minutes.
	maxBackoffDelay time.Duration

	// keepAliveCycle defines every how many liveness ticks an idle status probe
	// is sent to keep the session alive. 0 disables the probes.
	// Defaults to 6.
	keepAliveCycle int

	// connectTimeout is passed through to the transport for the handshake.
	// Defaults to 5 seconds.
	connectTimeout time.Duration

	// requestTimeout is passed through to the transport for send/receive
	// operations. The client does not implement its own timeout logic.
	// Defaults to 2 seconds.
	requestTimeout time.Duration

	// eventQueueSize defines the size of the notification queue drained by the
	// event dispatch goroutine.
	// Defaults to 32.
	eventQueueSize int

	// logger provides a logger instance for client events and errors.
	logger logger.Logger

	// dial creates the transport handle. Defaults to the gos7 transport.
	dial TransportDialer
}

// NewConnectionConfig creates a new connection configuration with the given
// host, port number, and optional functional options.
//
// It initializes a ConnectionConfig with default values and then applies the
// provided options. Returns a pointer to the initialized ConnectionConfig and an
// error if any option fails to apply.
func NewConnectionConfig(host string, port int, opts ...ConnOption) (*ConnectionConfig, error) {
	cfg := &ConnectionConfig{
		livenessInterval: 10 * time.Second,
		maxBackoffDelay:  5 * time.Minute,
		keepAliveCycle:   6,
		connectTimeout:   5 * time.Second,
		requestTimeout:   2 * time.Second,
		eventQueueSize:   32,
		logger:           logger.GetLogger(),
		dial:             newGos7Transport,
	}

	if err := withHost(host).apply(cfg); err != nil {
		return cfg, err
	}

	if err := withPort(port).apply(cfg); err != nil {
		return cfg, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// Name returns the symbolic name of the target controller.
func (cfg *ConnectionConfig) Name() string {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.name
}

// Host returns the configured controller host.
func (cfg *ConnectionConfig) Host() string {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.host
}

// Port returns the configured TCP port.
func (cfg *ConnectionConfig) Port() int {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.port
}

// LivenessInterval returns the liveness check period.
func (cfg *ConnectionConfig) LivenessInterval() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.livenessInterval
}

// MaxBackoffDelay returns the reconnect backoff clamp.
func (cfg *ConnectionConfig) MaxBackoffDelay() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.maxBackoffDelay
}

// KeepAliveCycle returns the keep-alive probe cycle count; 0 means disabled.
func (cfg *ConnectionConfig) KeepAliveCycle() int {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.keepAliveCycle
}

// ConnOption represents a functional option for configuring a ConnectionConfig.
type ConnOption interface {
	apply(*ConnectionConfig) error
}

type connOptFunc struct {
	name      string
	applyFunc func(*ConnectionConfig) error
}

func (c *connOptFunc) apply(cfg *ConnectionConfig) error { return c.applyFunc(cfg) }

func newConnOptFunc(name string, f func(*ConnectionConfig) error) *connOptFunc {
	return &connOptFunc{
		name:      name,
		applyFunc: f,
	}
}

// withHost sets the controller host. The host is kept verbatim; hostname
// resolution happens when connecting.
func withHost(host string) ConnOption {
	return newConnOptFunc("withHost", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if host == "" {
			return errors.New("host is empty")
		}
		cfg.host = host

		return nil
	})
}

// withPort sets the TCP port number for the connection.
func withPort(port int) ConnOption {
	return newConnOptFunc("withPort", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if port < 1 || port > 65535 {
			return errors.New("port is out of range [1, 65535]")
		}
		cfg.port = port

		return nil
	})
}

// WithName sets a symbolic name for the target controller, used in logs and
// metrics labels.
func WithName(name string) ConnOption {
	return newConnOptFunc("WithName", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		cfg.name = name

		return nil
	})
}

// WithRack sets the CPU rack number.
// An error is returned if the rack is outside the valid range (0-7).
//
// The default value is 0.
func WithRack(rack int) ConnOption {
	return newConnOptFunc("WithRack", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if rack < 0 || rack > 7 {
			return errors.New("rack is out of range [0, 7]")
		}
		cfg.rack = rack

		return nil
	})
}

// WithSlot sets the CPU slot number.
// An error is returned if the slot is outside the valid range (0-31).
//
// The default value is 0.
func WithSlot(slot int) ConnOption {
	return newConnOptFunc("WithSlot", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if slot < 0 || slot > 31 {
			return errors.New("slot is out of range [0, 31]")
		}
		cfg.slot = slot

		return nil
	})
}

// WithLivenessInterval sets the period of the recurring liveness check that
// verifies the transport-level session while connected. The interval is also
// the base delay of the reconnect backoff.
//
// The default value is 10 seconds.
func WithLivenessInterval(interval time.Duration) ConnOption {
	return newConnOptFunc("WithLivenessInterval", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if interval <= 0 {
			return errors.New("liveness interval must be positive")
		}
		cfg.livenessInterval = interval

		return nil
	})
}

// WithMaxBackoffDelay sets the upper clamp of the reconnect backoff delay.
// An error is returned if the delay is shorter than the liveness interval.
//
// The default value is 5 minutes.
func WithMaxBackoffDelay(delay time.Duration) ConnOption {
	return newConnOptFunc("WithMaxBackoffDelay", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if delay < cfg.livenessInterval {
			return errors.New("max backoff delay must not be shorter than the liveness interval")
		}
		cfg.maxBackoffDelay = delay

		return nil
	})
}

// WithKeepAliveCycle sets every how many liveness ticks an idle status probe is
// sent to the controller to prevent session timeout. A value of 0 disables the
// probes; the liveness check itself keeps running.
//
// The default value is 6.
func WithKeepAliveCycle(cycle int) ConnOption {
	return newConnOptFunc("WithKeepAliveCycle", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if cycle < 0 {
			return errors.New("keep-alive cycle must not be negative")
		}
		cfg.keepAliveCycle = cycle

		return nil
	})
}

// WithConnectTimeout sets the handshake timeout passed through to the transport.
// An error is returned if the timeout is outside the valid range (0.1-30 seconds).
//
// The default value is 5 seconds.
func WithConnectTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithConnectTimeout", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if val < 100*time.Millisecond || val > 30*time.Second {
			return errors.New("connect timeout out of range [0.1, 30]")
		}
		cfg.connectTimeout = val

		return nil
	})
}

// WithRequestTimeout sets the send/receive timeout passed through to the
// transport. The client never re-implements timeout logic; it only reacts to the
// resulting transport errors.
// An error is returned if the timeout is outside the valid range (0.1-60 seconds).
//
// The default value is 2 seconds.
func WithRequestTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithRequestTimeout", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if val < 100*time.Millisecond || val > 60*time.Second {
			return errors.New("request timeout out of range [0.1, 60]")
		}
		cfg.requestTimeout = val

		return nil
	})
}

// WithEventQueueSize sets the size of the notification queue drained by the
// event dispatch goroutine. A larger queue accommodates bursts of value
// observations at the cost of memory.
//
// The queue size must be within the range of 1 to 1000.
//
// The default value is 32.
func WithEventQueueSize(size int) ConnOption {
	return newConnOptFunc("WithEventQueueSize", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if size < 1 || size > 1000 {
			return errors.New("event queue size out of range [1, 1000]")
		}
		cfg.eventQueueSize = size

		return nil
	})
}

// WithLogger sets the logger for the client.
//
// The default logger is the global logger instance.
func WithLogger(l logger.Logger) ConnOption {
	return newConnOptFunc("WithLogger", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		cfg.logger = l

		return nil
	})
}

// WithTransportDialer sets the factory that creates the transport handle the
// client owns. Intended for tests and for alternative transport backends.
//
// The default dialer creates a gos7-backed ISO-on-TCP transport.
func WithTransportDialer(dial TransportDialer) ConnOption {
	return newConnOptFunc("WithTransportDialer", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if dial == nil {
			return errors.New("transport dialer is nil")
		}
		cfg.dial = dial

		return nil
	})
}
