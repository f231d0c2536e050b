package metrics_test

import (
	"sync"
	"testing"

	"github.com/powerdrillai/powerdrill-flow-sub000/metrics"
)

func TestCollector_Counters(t *testing.T) {
	c := metrics.NewCollector("s1")
	c.IncTurnStarted()
	c.IncTurnStarted()
	c.IncTurnCompleted()
	c.IncTurnCanceled()
	c.IncFramesRead()
	c.IncDecodeErrors()
	c.IncEventKind("MESSAGE")
	c.IncEventKind("MESSAGE")
	c.IncEventKind("TASK")

	snap := c.Snapshot()
	if snap.TurnsStarted != 2 || snap.TurnsCompleted != 1 || snap.TurnsCanceled != 1 {
		t.Errorf("unexpected turn counters: %+v", snap)
	}
	if snap.FramesRead != 1 || snap.DecodeErrors != 1 {
		t.Errorf("unexpected ingestion counters: %+v", snap)
	}
	if snap.EventsByKind["MESSAGE"] != 2 || snap.EventsByKind["TASK"] != 1 {
		t.Errorf("unexpected kind counters: %v", snap.EventsByKind)
	}
	if snap.SessionID != "s1" {
		t.Errorf("expected session dimension, got %q", snap.SessionID)
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *metrics.Collector
	c.IncTurnStarted()
	c.IncFramesRead()
	c.IncEventKind("MESSAGE")

	snap := c.Snapshot()
	if snap.TurnsStarted != 0 || snap.EventsByKind == nil {
		t.Errorf("unexpected nil snapshot: %+v", snap)
	}
}

func TestCollector_SnapshotIsACopy(t *testing.T) {
	c := metrics.NewCollector("s1")
	c.IncEventKind("CODE")

	snap := c.Snapshot()
	snap.EventsByKind["CODE"] = 99

	if c.Snapshot().EventsByKind["CODE"] != 1 {
		t.Error("snapshot mutation leaked into collector")
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := metrics.NewCollector("s1")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.IncFramesRead()
			}
		}()
	}
	wg.Wait()

	if got := c.Snapshot().FramesRead; got != 1000 {
		t.Errorf("expected 1000 frames, got %d", got)
	}
}
