// Package recorder persists task event streams for audit and replay.
//
// A Recorder owns a stream client and writes every delivered event to a
// Sink. Sinks exist for SQLite (local, single file) and PostgreSQL
// (shared deployments). A Cleaner sweeps recorded events past a retention
// period.
package recorder

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/agentlens/agentlens/stream"
)

// Recorded is one persisted stream event.
type Recorded struct {
	// ID is the row identity assigned at write time.
	ID uuid.UUID

	// Target is the stream URL the event arrived on.
	Target string

	// Type is the classified event type.
	Type string

	// Data is the event payload as JSON.
	Data []byte

	// ReceivedAt is when the frame was received.
	ReceivedAt time.Time
}

// Sink persists recorded events.
type Sink interface {
	// Record persists one event delivered for target.
	Record(ctx context.Context, target string, ev stream.Event) error

	// Events returns recorded events for target in arrival order. A
	// non-positive limit returns all of them.
	Events(ctx context.Context, target string, limit int) ([]Recorded, error)

	// DeleteBefore removes events received before cutoff and reports how
	// many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases the sink's resources.
	Close() error
}

// Config holds configuration for a Recorder.
type Config struct {
	// Stream configures the underlying connection: auth headers,
	// reconnect policy, logger. The recorder chains its own handler in
	// front of any configured OnMessage, so a caller can still observe
	// events as they are recorded.
	Stream stream.Config

	// OnRecordError is called when a sink write fails. Write failures
	// never interrupt the stream.
	OnRecordError func(err error)
}

// Recorder consumes a task event stream and writes every event to a Sink.
//
// Events are written synchronously on the stream's dispatch loop, so the
// sink sees them in arrival order.
type Recorder struct {
	target  string
	sink    Sink
	client  *stream.Client
	logger  stream.Logger
	forward func(ev stream.Event)
	onError func(err error)

	started atomic.Bool
	ctx     context.Context

	recorded atomic.Int64
	failed   atomic.Int64
}

// NewRecorder creates a recorder that streams from target and writes to
// sink. A nil config uses defaults.
func NewRecorder(target string, sink Sink, config *Config) *Recorder {
	if config == nil {
		config = &Config{}
	}

	r := &Recorder{
		target:  target,
		sink:    sink,
		logger:  config.Stream.Logger,
		forward: config.Stream.OnMessage,
		onError: config.OnRecordError,
	}
	if r.logger == nil {
		r.logger = nopLogger{}
	}

	streamConfig := config.Stream
	streamConfig.OnMessage = r.handle
	r.client = stream.NewClient(streamConfig)

	return r
}

// Start connects the stream and begins recording. It returns
// ErrAlreadyStarted if the recorder is already running.
func (r *Recorder) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	r.ctx = ctx
	if err := r.client.Connect(ctx, r.target); err != nil {
		r.started.Store(false)
		return err
	}

	return nil
}

// Stop disconnects the stream and waits for the dispatch loop to exit, so
// no writes are in flight when it returns.
func (r *Recorder) Stop(ctx context.Context) error {
	if !r.started.Load() {
		return ErrNotStarted
	}

	r.client.Disconnect()

	r.started.Store(false)
	return nil
}

// IsRunning reports whether the recorder is running.
func (r *Recorder) IsRunning() bool {
	return r.started.Load()
}

// Counts returns how many events were recorded and how many sink writes
// failed since the recorder was created.
func (r *Recorder) Counts() (recorded, failed int64) {
	return r.recorded.Load(), r.failed.Load()
}

// handle runs on the stream dispatch loop for every delivered event.
func (r *Recorder) handle(ev stream.Event) {
	if err := r.sink.Record(r.ctx, r.target, ev); err != nil {
		r.failed.Add(1)
		r.logger.Error("record event", "target", r.target, "type", ev.Type, "error", err)
		if r.onError != nil {
			r.onError(err)
		}
	} else {
		r.recorded.Add(1)
	}

	if r.forward != nil {
		r.forward(ev)
	}
}

// nopLogger discards all log output.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// encodeData renders an event payload back to JSON for storage. Raw string
// payloads marshal as JSON strings, so nothing the stream delivered is
// dropped.
func encodeData(ev stream.Event) ([]byte, error) {
	return json.Marshal(ev.Data)
}
