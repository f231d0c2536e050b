// Package metrics provides per-session metrics collection.
//
// The Collector accumulates counters across the stream sessions of one
// conversation. It is a leaf package with no internal dependencies, and
// every increment method is nil-receiver safe so wiring a collector is
// always optional.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Turn lifecycle
	TurnsStarted   int64
	TurnsCompleted int64
	TurnsFailed    int64
	TurnsCanceled  int64

	// Stream ingestion
	FramesRead     int64
	DecodeErrors   int64
	StreamErrors   int64
	ProtocolErrors int64
	EventsByKind   map[string]int64

	// Dimensions (informational, set at construction)
	SessionID string
}

// Collector accumulates metrics for one conversation session.
// Thread-safe via sync.Mutex.
type Collector struct {
	mu sync.Mutex

	turnsStarted   int64
	turnsCompleted int64
	turnsFailed    int64
	turnsCanceled  int64

	framesRead     int64
	decodeErrors   int64
	streamErrors   int64
	protocolErrors int64
	eventsByKind   map[string]int64

	sessionID string
}

// NewCollector creates a Collector labeled with the session identity.
func NewCollector(sessionID string) *Collector {
	return &Collector{
		eventsByKind: make(map[string]int64),
		sessionID:    sessionID,
	}
}

// --- Turn lifecycle ---

// IncTurnStarted records a submitted question.
func (c *Collector) IncTurnStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.turnsStarted++
	c.mu.Unlock()
}

// IncTurnCompleted records a finalized turn.
func (c *Collector) IncTurnCompleted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.turnsCompleted++
	c.mu.Unlock()
}

// IncTurnFailed records a turn that ended on a non-recoverable error.
func (c *Collector) IncTurnFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.turnsFailed++
	c.mu.Unlock()
}

// IncTurnCanceled records an explicitly canceled turn.
func (c *Collector) IncTurnCanceled() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.turnsCanceled++
	c.mu.Unlock()
}

// --- Stream ingestion ---

// IncFramesRead records one raw frame read off the wire.
func (c *Collector) IncFramesRead() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.framesRead++
	c.mu.Unlock()
}

// IncDecodeErrors records a malformed frame that was dropped.
func (c *Collector) IncDecodeErrors() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.decodeErrors++
	c.mu.Unlock()
}

// IncStreamErrors records a transport-level stream failure.
func (c *Collector) IncStreamErrors() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.streamErrors++
	c.mu.Unlock()
}

// IncProtocolErrors records an ERROR event from the server.
func (c *Collector) IncProtocolErrors() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.protocolErrors++
	c.mu.Unlock()
}

// IncEventKind records one decoded content event by kind.
func (c *Collector) IncEventKind(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.eventsByKind[kind]++
	c.mu.Unlock()
}

// Snapshot returns a point-in-time copy of all counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{EventsByKind: map[string]int64{}}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	byKind := make(map[string]int64, len(c.eventsByKind))
	for k, v := range c.eventsByKind {
		byKind[k] = v
	}

	return Snapshot{
		TurnsStarted:   c.turnsStarted,
		TurnsCompleted: c.turnsCompleted,
		TurnsFailed:    c.turnsFailed,
		TurnsCanceled:  c.turnsCanceled,
		FramesRead:     c.framesRead,
		DecodeErrors:   c.decodeErrors,
		StreamErrors:   c.streamErrors,
		ProtocolErrors: c.protocolErrors,
		EventsByKind:   byKind,
		SessionID:      c.sessionID,
	}
}
