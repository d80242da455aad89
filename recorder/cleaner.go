package recorder

import (
	"context"
	"sync/atomic"
	"time"
)

// Default cleaner configuration values
const (
	DefaultSweepInterval = 1 * time.Hour
	DefaultRetention     = 7 * 24 * time.Hour
)

// CleanerConfig holds configuration for the retention cleaner.
type CleanerConfig struct {
	// Interval is how often to sweep.
	// Default: 1 hour
	Interval time.Duration

	// Retention is how long recorded events are kept.
	// Default: 7 days
	Retention time.Duration

	// OnSweep is called after a sweep that removed events, with the
	// number removed.
	OnSweep func(removed int64)

	// OnError is called when a sweep fails.
	OnError func(err error)
}

// DefaultCleanerConfig returns the default cleaner configuration.
func DefaultCleanerConfig() *CleanerConfig {
	return &CleanerConfig{
		Interval:  DefaultSweepInterval,
		Retention: DefaultRetention,
	}
}

// Cleaner periodically removes recorded events older than the retention
// period.
type Cleaner struct {
	sink   Sink
	config *CleanerConfig

	started atomic.Bool
	done    chan struct{}
	cancel  context.CancelFunc
}

// NewCleaner creates a retention cleaner over sink. A nil config uses
// defaults; zero-valued fields are replaced with defaults.
func NewCleaner(sink Sink, config *CleanerConfig) *Cleaner {
	if config == nil {
		config = DefaultCleanerConfig()
	}
	if config.Interval <= 0 {
		config.Interval = DefaultSweepInterval
	}
	if config.Retention <= 0 {
		config.Retention = DefaultRetention
	}

	return &Cleaner{
		sink:   sink,
		config: config,
	}
}

// Start begins the sweep loop. It returns immediately; sweeps run in a
// goroutine, the first one right away.
func (c *Cleaner) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.run(ctx)

	return nil
}

// Stop stops the sweep loop and waits for it to exit.
func (c *Cleaner) Stop(ctx context.Context) error {
	if !c.started.Load() {
		return ErrNotStarted
	}

	c.cancel()
	<-c.done

	c.started.Store(false)
	return nil
}

// IsRunning reports whether the sweep loop is running.
func (c *Cleaner) IsRunning() bool {
	return c.started.Load()
}

func (c *Cleaner) run(ctx context.Context) {
	defer close(c.done)

	c.sweep(ctx)

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) {
	removed, err := c.RunOnce(ctx)
	if err != nil {
		if c.config.OnError != nil {
			c.config.OnError(err)
		}
		return
	}

	if removed > 0 && c.config.OnSweep != nil {
		c.config.OnSweep(removed)
	}
}

// RunOnce performs one retention sweep and returns how many events were
// removed. It can be called without starting the loop.
func (c *Cleaner) RunOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-c.config.Retention)
	return c.sink.DeleteBefore(ctx, cutoff)
}
