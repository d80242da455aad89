package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultReconnectInterval is the delay between an error-induced closure and
// the next connection attempt.
const DefaultReconnectInterval = 3000 * time.Millisecond

// ConnState represents the connection lifecycle of a client.
//
// State transitions:
//
//	idle ────────────────────┐
//	    │ (Connect)          │
//	    v                    │
//	connecting ──────────────┤
//	    │ (open signal)      │
//	    v                    │
//	open ────────────────────┤
//	    │ (transport error)  │
//	    ├──> connecting      │ (reconnect enabled, after the interval)
//	    └──> closed          │ (reconnect disabled)
//
// Disconnect moves any state to closed. A closed client may Connect again.
type ConnState string

const (
	StateIdle       ConnState = "idle"
	StateConnecting ConnState = "connecting"
	StateOpen       ConnState = "open"
	StateClosed     ConnState = "closed"
)

// String returns the string representation of the connection state.
func (s ConnState) String() string {
	return string(s)
}

// Logger interface for structured logging.
// Compatible with agentlens.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// nopLogger discards all log output.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Config holds configuration for a stream client.
type Config struct {
	// OnMessage is called for every frame, in arrival order, with the
	// normalized event. It runs on the connection's read loop and must not
	// block.
	OnMessage func(event Event)

	// OnError is called when a transport error occurs. Transport errors are
	// non-fatal; they feed the reconnection policy.
	OnError func(err error)

	// OnOpen is called when the connection is established.
	OnOpen func()

	// OnClose is called exactly once per Connect, when the connection loop
	// exits.
	OnClose func()

	// Reconnect controls automatic reconnection after an error-induced
	// closure. Defaults to true when nil.
	Reconnect *bool

	// ReconnectInterval is how long to wait before reconnecting.
	// Default: 3000ms
	ReconnectInterval time.Duration

	// Headers are added to the stream request, e.g. Authorization.
	Headers map[string]string

	// HTTPClient is used for the stream request. A client without an
	// overall timeout is required; the connection is long-lived.
	// Defaults to a plain http.Client.
	HTTPClient *http.Client

	// Logger for structured logging.
	// If nil, logging is disabled.
	Logger Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	reconnect := true
	return Config{
		Reconnect:         &reconnect,
		ReconnectInterval: DefaultReconnectInterval,
	}
}

// Client consumes a task event stream.
//
// A client holds at most one underlying connection. Connection lifecycle
// callbacks and event dispatch run on a single loop goroutine, so a
// subscriber observes events in arrival order.
type Client struct {
	config     Config
	reconnect  bool
	interval   time.Duration
	httpClient *http.Client
	logger     Logger

	mu      sync.Mutex
	target  string
	state   ConnState
	lastErr string
	cancel  context.CancelFunc
	done    chan struct{}

	started   atomic.Bool
	connected atomic.Bool
}

// NewClient creates a stream client. Zero-valued config fields are replaced
// with defaults.
func NewClient(config Config) *Client {
	reconnect := true
	if config.Reconnect != nil {
		reconnect = *config.Reconnect
	}
	if config.ReconnectInterval <= 0 {
		config.ReconnectInterval = DefaultReconnectInterval
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := config.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	return &Client{
		config:     config,
		reconnect:  reconnect,
		interval:   config.ReconnectInterval,
		httpClient: httpClient,
		logger:     logger,
		state:      StateIdle,
	}
}

// Connect opens a connection to the target and begins dispatching events.
//
// The dial happens on the connection loop; OnOpen is invoked when the
// transport reports the stream open. Connect returns ErrAlreadyConnected if
// a connection is already held and ErrNoTarget for an empty target.
func (c *Client) Connect(ctx context.Context, target string) error {
	if target == "" {
		return ErrNoTarget
	}

	// The started flip and the handle assignment happen under one lock so a
	// concurrent Disconnect can never observe one without the other.
	c.mu.Lock()
	if !c.started.CompareAndSwap(false, true) {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.target = target
	c.state = StateConnecting
	c.lastErr = ""
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go c.run(ctx, target, done)

	return nil
}

// Disconnect tears the connection down: it cancels any pending reconnect
// wait, closes the transport handle, and waits for the connection loop to
// exit, which invokes OnClose. Safe to call when already disconnected.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if !c.started.CompareAndSwap(true, false) {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()

	cancel()
	<-done
}

// SetTarget switches the client to a new target: the old connection, if any,
// is closed before the new one opens, so the client never holds two
// connections. An empty target disconnects without reconnecting.
func (c *Client) SetTarget(ctx context.Context, target string) error {
	c.Disconnect()
	if target == "" {
		c.mu.Lock()
		c.target = ""
		c.mu.Unlock()
		return nil
	}
	return c.Connect(ctx, target)
}

// Connected reports whether the stream is currently open.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// LastError returns a description of the most recent connection error,
// empty while the stream is healthy.
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// State returns the connection lifecycle state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Target returns the most recent connection target.
func (c *Client) Target() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// run is the connection loop: dial, read until error, wait, redial.
func (c *Client) run(ctx context.Context, target string, done chan struct{}) {
	defer close(done)
	defer func() {
		c.connected.Store(false)
		c.setState(StateClosed)
		if c.config.OnClose != nil {
			c.config.OnClose()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			err := c.stream(ctx, target)
			if ctx.Err() != nil {
				return
			}

			c.connected.Store(false)
			c.setLastError(err.Error())
			if c.config.OnError != nil {
				c.config.OnError(err)
			}

			if !c.reconnect {
				return
			}
			c.setState(StateConnecting)
			c.logger.Debug("stream reconnecting", "target", target, "interval", c.interval)

			// Wait before reconnecting
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.interval):
			}
			if ctx.Err() != nil {
				return
			}
		}
	}
}

// stream dials the target and reads frames until the connection fails or
// the context is cancelled. It always returns a non-nil error.
func (c *Client) stream(ctx context.Context, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("stream: create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stream: connect: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream: %w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		return fmt.Errorf("stream: %w: content type %q", ErrUnexpectedStatus, ct)
	}

	// Transport open signal.
	c.connected.Store(true)
	c.setState(StateOpen)
	c.setLastError("")
	if c.config.OnOpen != nil {
		c.config.OnOpen()
	}
	c.logger.Debug("stream open", "target", target)

	decoder := NewDecoder(resp.Body)
	for {
		frame, err := decoder.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("stream: %w", ErrStreamClosed)
			}
			return fmt.Errorf("stream: read: %w", err)
		}
		c.dispatch(frame)
	}
}

// dispatch normalizes a frame and delivers it to the subscriber.
func (c *Client) dispatch(frame *Frame) {
	if c.config.OnMessage == nil {
		return
	}

	// Called synchronously to maintain ordering.
	c.config.OnMessage(Event{
		Type:       Classify(frame.Name),
		Data:       c.parsePayload(frame),
		ReceivedAt: time.Now(),
	})
}

// parsePayload parses the frame payload as JSON, degrading to the raw
// string so the subscriber is never skipped over a malformed payload.
func (c *Client) parsePayload(frame *Frame) any {
	var data any
	if err := json.Unmarshal([]byte(frame.Data), &data); err != nil {
		c.logger.Warn("stream payload is not valid JSON, delivering raw",
			"event", frame.Name, "error", err)
		return frame.Data
	}
	return data
}

func (c *Client) setState(state ConnState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

func (c *Client) setLastError(msg string) {
	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()
}
