package stream

import (
	"context"
)

// watchBufferSize is the capacity of a watch channel. Bursts beyond it apply
// backpressure to the read loop.
const watchBufferSize = 64

// Watch opens a connection to the target and delivers events on a channel
// instead of a callback. The channel closes when ctx is cancelled or the
// connection loop ends; transport errors are reported through cfg.Logger and
// the reconnection policy, not the channel.
//
// The OnMessage and OnClose callbacks in cfg are owned by the watch and must
// be nil. The same invariants as Client apply: at most one underlying
// connection, deterministic teardown via ctx.
func Watch(ctx context.Context, target string, cfg Config) (<-chan Event, error) {
	events := make(chan Event, watchBufferSize)
	loopDone := make(chan struct{})

	cfg.OnMessage = func(event Event) {
		select {
		case events <- event:
		case <-ctx.Done():
		}
	}
	cfg.OnClose = func() {
		close(events)
		close(loopDone)
	}

	client := NewClient(cfg)
	if err := client.Connect(ctx, target); err != nil {
		return nil, err
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-loopDone:
			// The loop ended on its own; release the client either way.
		}
		client.Disconnect()
	}()

	return events, nil
}
