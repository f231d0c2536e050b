// Package adapter defines the notification boundary for finalized turns.
//
// Adapters publish turn completion events to downstream systems so other
// tooling (dashboards, audit trails, follow-up automation) can react
// without polling the transcript. The host application owns adapter
// lifecycle; the session only hands over finalized turns.
package adapter

import (
	"context"
	"time"

	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

// EventType is the fixed event_type value carried by every event.
const EventType = "turn_completed"

// TurnCompletedEvent is the payload published when a turn finalizes.
type TurnCompletedEvent struct {
	EventType    string `json:"event_type"` // always "turn_completed"
	SessionID    string `json:"session_id"`
	JobID        string `json:"job_id"`
	Question     string `json:"question"`
	SectionCount int    `json:"section_count"`
	BlockCount   int    `json:"block_count"`
	HasArtifacts bool   `json:"has_artifacts"`
	Timestamp    string `json:"timestamp"` // ISO 8601
}

// NewTurnCompletedEvent builds the event payload for one finalized turn.
func NewTurnCompletedEvent(sessionID string, turn types.Turn) *TurnCompletedEvent {
	ev := &TurnCompletedEvent{
		EventType: EventType,
		SessionID: sessionID,
		JobID:     turn.JobID,
		Question:  turn.QuestionText(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for _, sec := range turn.Answer {
		ev.SectionCount++
		for _, b := range sec.Blocks {
			ev.BlockCount++
			if b.Kind.IsArtifact() {
				ev.HasArtifacts = true
			}
		}
	}
	return ev
}

// Adapter publishes turn completion events to a downstream system.
// Implementations must be safe for repeated use across turns.
type Adapter interface {
	// Publish sends a turn completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *TurnCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
