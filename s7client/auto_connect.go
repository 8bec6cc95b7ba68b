package s7client

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/plctalk/go-s7/internal/pool"
	"github.com/plctalk/go-s7/s7"
)

// Reconnect backoff grows by a random factor drawn from [1.3, 1.7) after each
// failed retry, and is clamped at the configured maximum delay.
const (
	backoffFactorMin = 1.3
	backoffFactorMax = 1.7
)

// reconnectCtl owns the auto-reconnect bookkeeping of one client: the current
// backoff delay and the pending retry timer. Each client carries its own
// independent instance; the state is never shared across clients.
type reconnectCtl struct {
	mu    sync.Mutex
	delay time.Duration
	stop  chan struct{} // non-nil while a retry is pending
}

// AutoConnect enters auto-reconnect mode and attempts to connect.
//
// In auto-reconnect mode the client subscribes to its own disconnect
// notifications: whenever the session drops without a manual disconnect, a retry
// is scheduled after the current backoff delay. The backoff starts at the
// liveness interval, grows by a random factor in [1.3, 1.7) after each failed
// retry, is clamped at the configured maximum, and resets on a successful
// connect.
//
// Only the very first connect attempt surfaces its error to the caller; all
// subsequent retries are silent and observable only through the
// EventDisconnected and EventConnectError notifications. If the session is
// already connected, AutoConnect returns nil immediately without scheduling
// anything.
func (c *Client) AutoConnect() error {
	if c.autoConnect.CompareAndSwap(false, true) {
		c.hub.Subscribe(func(ev s7.Event) {
			if ev.Kind == s7.EventDisconnected && !ev.Manual && c.autoConnect.Load() {
				c.scheduleReconnect()
			}
		})
	}

	if c.stateMgr.IsConnected() {
		return nil
	}

	// The first retry waits the base liveness interval; the backoff grows only
	// after a failed retry.
	err := c.Connect()
	if err != nil {
		c.scheduleReconnect()
	}

	return err
}

// scheduleReconnect arms a single retry timer with the current backoff delay.
// It is a no-op when a retry is already pending.
func (c *Client) scheduleReconnect() {
	c.reconnect.mu.Lock()
	if c.reconnect.stop != nil {
		c.reconnect.mu.Unlock()
		return
	}

	delay := c.reconnect.delay
	if delay <= 0 {
		delay = c.cfg.livenessInterval
	}

	stop := make(chan struct{})
	c.reconnect.stop = stop
	c.reconnect.mu.Unlock()

	c.logger.Debug("schedule reconnect", "method", "scheduleReconnect", "delay", delay)

	// Never block the caller; the timer fires on its own goroutine.
	go func() {
		timer := pool.GetTimer(delay)
		defer pool.PutTimer(timer)

		select {
		case <-c.ctx.Done():
			c.clearReconnect(stop)
		case <-stop:
			c.clearReconnect(stop)
		case <-timer.C:
			c.clearReconnect(stop)
			c.reconnectAttempt()
		}
	}()
}

// reconnectAttempt performs one silent connect retry.
func (c *Client) reconnectAttempt() {
	if !c.autoConnect.Load() || c.stateMgr.IsConnected() {
		return
	}

	c.metrics.incConnRetryGauge()

	if err := c.Connect(); err != nil {
		c.bumpBackoff()
		c.scheduleReconnect()
	}
	// a successful Connect resets the backoff and the retry gauge
}

// bumpBackoff multiplies the current backoff delay by a random factor in
// [1.3, 1.7) and clamps it at the configured maximum.
func (c *Client) bumpBackoff() {
	c.reconnect.mu.Lock()
	defer c.reconnect.mu.Unlock()

	cur := c.reconnect.delay
	if cur <= 0 {
		cur = c.cfg.livenessInterval
	}
	c.reconnect.delay = nextBackoffDelay(cur, c.cfg.maxBackoffDelay)
}

// resetBackoff restores the backoff delay to the base liveness interval.
func (c *Client) resetBackoff() {
	c.reconnect.mu.Lock()
	defer c.reconnect.mu.Unlock()

	c.reconnect.delay = c.cfg.livenessInterval
}

// cancelReconnect stops a pending retry timer, if any.
func (c *Client) cancelReconnect() {
	c.reconnect.mu.Lock()
	defer c.reconnect.mu.Unlock()

	if c.reconnect.stop != nil {
		close(c.reconnect.stop)
		c.reconnect.stop = nil
	}
}

// clearReconnect resets the pending-retry marker when it still belongs to this
// schedule.
func (c *Client) clearReconnect(stop chan struct{}) {
	c.reconnect.mu.Lock()
	defer c.reconnect.mu.Unlock()

	if c.reconnect.stop == stop {
		c.reconnect.stop = nil
	}
}

// nextBackoffDelay grows cur by a random factor drawn from
// [backoffFactorMin, backoffFactorMax) and clamps the result at max.
func nextBackoffDelay(cur, max time.Duration) time.Duration {
	factor := backoffFactorMin + rand.Float64()*(backoffFactorMax-backoffFactorMin)
	next := time.Duration(float64(cur) * factor)
	if next > max {
		next = max
	}

	return next
}
