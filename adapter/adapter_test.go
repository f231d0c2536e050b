package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

func TestNewTurnCompletedEvent(t *testing.T) {
	turn := types.NewTurn("job-1", "top customers by revenue")
	turn.Answer = []types.Section{
		{
			GroupID: "g1",
			Blocks: []types.Block{
				{Kind: types.BlockMessage, Text: "Here are the results."},
				{Kind: types.BlockTable, Ref: &types.ArtifactRef{Name: "result.csv"}},
			},
		},
		{
			GroupID: "g2",
			Blocks: []types.Block{
				{Kind: types.BlockCode, Text: "SELECT ..."},
			},
		},
	}

	ev := NewTurnCompletedEvent("sess-1", turn)

	if ev.EventType != EventType {
		t.Errorf("event type = %q", ev.EventType)
	}
	if ev.SessionID != "sess-1" || ev.JobID != "job-1" {
		t.Errorf("ids = %q/%q", ev.SessionID, ev.JobID)
	}
	if ev.Question != "top customers by revenue" {
		t.Errorf("question = %q", ev.Question)
	}
	if ev.SectionCount != 2 || ev.BlockCount != 3 {
		t.Errorf("counts = %d sections, %d blocks", ev.SectionCount, ev.BlockCount)
	}
	if !ev.HasArtifacts {
		t.Error("table reference not counted as artifact")
	}
	if ev.Timestamp == "" {
		t.Error("timestamp is empty")
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, nil, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, nil, func(ctx context.Context) error {
		calls++
		return errors.New("always")
	})
	if err == nil {
		t.Fatal("exhausted retry returned nil")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_NonRetriableStopsImmediately(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := Retry(context.Background(), 5, func(err error) bool { return !errors.Is(err, permanent) }, func(ctx context.Context) error {
		calls++
		return permanent
	})
	if err == nil {
		t.Fatal("non-retriable error returned nil")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, nil, func(ctx context.Context) error {
		t.Fatal("attempt ran with canceled context")
		return nil
	})
	if err == nil {
		t.Fatal("canceled context returned nil")
	}
}
