// Package testutil provides test utilities for agentlens
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SSEConn is one live event-stream connection accepted by an SSEServer.
type SSEConn struct {
	// Index is the 0-based ordinal of this connection, counting reconnects.
	Index int

	w       http.ResponseWriter
	flusher http.Flusher
	ctx     context.Context
}

// Send writes one frame. An empty name produces an untagged frame.
func (c *SSEConn) Send(name, data string) {
	if name != "" {
		fmt.Fprintf(c.w, "event: %s\n", name)
	}
	fmt.Fprintf(c.w, "data: %s\n\n", data)
	c.flusher.Flush()
}

// Comment writes a comment line, commonly used as a keepalive.
func (c *SSEConn) Comment(text string) {
	fmt.Fprintf(c.w, ": %s\n\n", text)
	c.flusher.Flush()
}

// Raw writes bytes verbatim for malformed-input tests.
func (c *SSEConn) Raw(s string) {
	fmt.Fprint(c.w, s)
	c.flusher.Flush()
}

// Done is closed when the client goes away.
func (c *SSEConn) Done() <-chan struct{} {
	return c.ctx.Done()
}

// SSEServer is an httptest server speaking text/event-stream. The handler
// runs once per accepted connection; the connection closes when it returns.
type SSEServer struct {
	*httptest.Server

	mu      sync.Mutex
	total   int
	live    int
	maxLive int
}

// NewSSEServer starts a server that invokes handler for every stream
// connection. The server is shut down when the test ends.
func NewSSEServer(t *testing.T, handler func(conn *SSEConn)) *SSEServer {
	t.Helper()

	s := &SSEServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Errorf("response writer does not support flushing")
			return
		}

		s.mu.Lock()
		index := s.total
		s.total++
		s.live++
		if s.live > s.maxLive {
			s.maxLive = s.live
		}
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			s.live--
			s.mu.Unlock()
		}()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		handler(&SSEConn{Index: index, w: w, flusher: flusher, ctx: r.Context()})
	}))
	t.Cleanup(s.Close)

	return s
}

// Connections returns how many stream connections were accepted in total.
func (s *SSEServer) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// MaxLive returns the highest number of simultaneously open connections.
func (s *SSEServer) MaxLive() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxLive
}

// WaitConnections blocks until at least n connections were accepted or the
// timeout elapses.
func (s *SSEServer) WaitConnections(t *testing.T, n int, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.Connections() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("saw %d connections, want at least %d within %v", s.Connections(), n, timeout)
}

// TestDB wraps a PostgreSQL connection pool for testing
type TestDB struct {
	Pool *pgxpool.Pool
}

// NewTestDB creates a test database connection from DATABASE_URL env var
// Returns nil if DATABASE_URL is not set (for unit tests)
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("Failed to ping database: %v", err)
	}

	return &TestDB{Pool: pool}
}

// Close closes the database connection
func (db *TestDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// CleanTables truncates all tables for test isolation
func (db *TestDB) CleanTables(ctx context.Context) error {
	tables := []string{
		"agentlens_events",
	}

	for _, table := range tables {
		_, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}

	return nil
}

// RequireIntegration skips the test if not running integration tests
func RequireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}
}
