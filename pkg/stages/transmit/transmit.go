// Package transmit implements the stream transmitter stage: it owns the
// persistent connection to the display endpoint and delivers wire frames
// in order, dropping frames while the endpoint is unreachable.
package transmit

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/user/ftcast/pkg/pipeline"
	"github.com/user/ftcast/pkg/ports"
)

// State is the connection state of the transmitter.
type State int

const (
	// StateIdle means no connection attempt has been made yet.
	StateIdle State = iota
	// StateConnecting means a dial is in progress.
	StateConnecting
	// StateConnected means the connection is established and idle.
	StateConnected
	// StateSending means a frame write is in progress.
	StateSending
	// StateDisconnected means the last attempt or write failed and a
	// reconnect is pending per the backoff schedule.
	StateDisconnected
	// StateShuttingDown means Close was called; all sends are refused.
	StateShuttingDown
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateSending:
		return "sending"
	case StateDisconnected:
		return "disconnected"
	case StateShuttingDown:
		return "shutting-down"
	default:
		return "unknown"
	}
}

// SendResult reports the outcome of a Send call.
type SendResult int

const (
	// Sent means the frame was written to the connection in full.
	Sent SendResult = iota
	// Dropped means the frame was discarded, either because the endpoint
	// is unreachable or because the write failed partway.
	Dropped
)

// Options configures a transmitter.
type Options struct {
	Endpoint       string        // Display endpoint address (host:port)
	DialTimeout    time.Duration // Bound on each connection attempt (default: 5s)
	WriteTimeout   time.Duration // Bound on each frame write (default: 10s)
	InitialBackoff time.Duration // First reconnect delay (default: 1s)
	MaxBackoff     time.Duration // Reconnect delay cap (default: 30s)
}

// withDefaults fills in zero-valued fields.
func (o Options) withDefaults() Options {
	if o.DialTimeout <= 0 {
		o.DialTimeout = 5 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = time.Second
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 30 * time.Second
	}
	return o
}

// Transmitter owns a single logical connection to the display endpoint.
// It is safe for use by one sender goroutine plus a closer.
type Transmitter struct {
	opts   Options
	logger ports.Logger

	// dial is swappable for tests.
	dial func(ctx context.Context, network, address string) (net.Conn, error)

	mu          sync.Mutex
	state       State
	conn        net.Conn
	lastErr     error
	backoff     time.Duration
	nextAttempt time.Time
	attempts    int
}

// New creates a transmitter for the given endpoint. No connection is
// made until the first Send.
func New(logger ports.Logger, opts Options) *Transmitter {
	opts = opts.withDefaults()
	dialer := &net.Dialer{Timeout: opts.DialTimeout}
	return &Transmitter{
		opts:    opts,
		logger:  logger.WithComponent("transmit"),
		dial:    dialer.DialContext,
		state:   StateIdle,
		backoff: opts.InitialBackoff,
	}
}

// Send delivers one wire frame. It never blocks while disconnected: if
// the endpoint is unreachable, or a reconnect is not yet due, the frame
// is dropped immediately. A frame is either written in full over a
// single connection or discarded; a failed write is never resumed.
func (t *Transmitter) Send(ctx context.Context, frame pipeline.WireFrame) SendResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateShuttingDown {
		return Dropped
	}

	if t.conn == nil && !t.connectLocked(ctx) {
		t.logger.Debug("Frame dropped while disconnected from %s", t.opts.Endpoint)
		return Dropped
	}

	t.state = StateSending
	t.conn.SetWriteDeadline(time.Now().Add(t.opts.WriteTimeout))
	if err := writeFull(t.conn, frame.Data); err != nil {
		t.disconnectLocked(err)
		t.logger.Warn("Frame dropped, connection to %s lost: %s", t.opts.Endpoint, err)
		return Dropped
	}
	t.state = StateConnected

	return Sent
}

// connectLocked attempts to establish the connection if a reconnect is
// due. It returns true when connected. Callers hold t.mu.
func (t *Transmitter) connectLocked(ctx context.Context) bool {
	if t.state == StateDisconnected && time.Now().Before(t.nextAttempt) {
		return false
	}

	t.state = StateConnecting
	t.attempts++
	t.logger.Debug("Connecting to %s (attempt %d)", t.opts.Endpoint, t.attempts)

	dialCtx, cancel := context.WithTimeout(ctx, t.opts.DialTimeout)
	defer cancel()

	conn, err := t.dial(dialCtx, "tcp", t.opts.Endpoint)
	if err != nil {
		t.scheduleRetryLocked(err)
		t.logger.Warn("Connection to %s failed, retrying in %s: %s",
			t.opts.Endpoint, t.backoff, err)
		return false
	}

	t.conn = conn
	t.state = StateConnected
	t.lastErr = nil
	t.backoff = t.opts.InitialBackoff
	t.nextAttempt = time.Time{}
	t.logger.Info("Connected to display at %s", t.opts.Endpoint)

	return true
}

// disconnectLocked records err, releases the connection and schedules a
// reconnect. Callers hold t.mu.
func (t *Transmitter) disconnectLocked(err error) {
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}
	t.scheduleRetryLocked(err)
}

// scheduleRetryLocked records err and advances the backoff schedule:
// the next attempt is due after the current delay, and the delay doubles
// up to the configured cap. Callers hold t.mu.
func (t *Transmitter) scheduleRetryLocked(err error) {
	t.state = StateDisconnected
	t.lastErr = err
	t.nextAttempt = time.Now().Add(t.backoff)
	if next := t.backoff * 2; next <= t.opts.MaxBackoff {
		t.backoff = next
	} else {
		t.backoff = t.opts.MaxBackoff
	}
}

// Close transitions to ShuttingDown and releases the connection. Any
// buffered bytes of a completed write are flushed by the OS on close;
// the handle is released unconditionally.
func (t *Transmitter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = StateShuttingDown
	if t.conn == nil {
		return nil
	}

	err := t.conn.Close()
	t.conn = nil
	return err
}

// State returns the current connection state.
func (t *Transmitter) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// LastError returns the error recorded on the most recent failure.
func (t *Transmitter) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// writeFull writes all of data, retrying short writes until the full
// byte count is on the wire or the connection errors.
func writeFull(conn net.Conn, data []byte) error {
	for len(data) > 0 {
		n, err := conn.Write(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
