package stream_test

import (
	"testing"

	"github.com/powerdrillai/powerdrill-flow-sub000/stream"
	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

// decodeBlock decodes a frame and asserts the result is a content block.
func decodeBlock(t *testing.T, f stream.Frame) *types.Block {
	t.Helper()
	ev, err := stream.Decode(f)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	block, ok := ev.(*types.Block)
	if !ok {
		t.Fatalf("expected *types.Block, got %T", ev)
	}
	return block
}

func TestDecode_DoneSentinel(t *testing.T) {
	ev, err := stream.Decode(stream.Frame{Event: stream.EventEndMark, Data: stream.DoneSentinel})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	term, ok := ev.(*stream.Terminal)
	if !ok {
		t.Fatalf("expected *stream.Terminal, got %T", ev)
	}
	if !term.OK {
		t.Error("expected OK terminal for done sentinel")
	}
}

func TestDecode_ErrorSentinel(t *testing.T) {
	// The sentinel check runs before any event-name routing.
	ev, err := stream.Decode(stream.Frame{Event: stream.EventMessage, Data: stream.ErrorSentinel})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	term, ok := ev.(*stream.Terminal)
	if !ok {
		t.Fatalf("expected *stream.Terminal, got %T", ev)
	}
	if term.OK {
		t.Error("expected not-OK terminal for error sentinel")
	}
}

func TestDecode_JobIDIgnored(t *testing.T) {
	ev, err := stream.Decode(stream.Frame{Event: stream.EventJobID, Data: `{"job_id":"j1"}`})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if ev != nil {
		t.Errorf("expected JOB_ID to be dropped, got %T", ev)
	}
}

func TestDecode_MessageBlock(t *testing.T) {
	data := `{"choices":[{"delta":{"content":"Hello"}}],"group_id":"g1","group_name":"Overview","stage":"Analyze"}`
	block := decodeBlock(t, stream.Frame{Event: stream.EventMessage, Data: data})

	if block.Kind != types.BlockMessage {
		t.Errorf("expected kind MESSAGE, got %s", block.Kind)
	}
	if block.Text != "Hello" {
		t.Errorf("expected text Hello, got %q", block.Text)
	}
	if block.GroupID != "g1" || block.GroupName != "Overview" || block.Stage != "Analyze" {
		t.Errorf("unexpected metadata: %+v", block)
	}
}

func TestDecode_TableBlock(t *testing.T) {
	data := `{"choices":[{"delta":{"content":{"name":"result.csv","url":"https://x/y","expired_at":"2026-01-01T00:00:00Z"}}}],"group_id":"g1"}`
	block := decodeBlock(t, stream.Frame{Event: stream.EventTable, Data: data})

	if block.Kind != types.BlockTable {
		t.Errorf("expected kind TABLE, got %s", block.Kind)
	}
	if block.Ref == nil || block.Ref.Name != "result.csv" || block.Ref.URL != "https://x/y" {
		t.Errorf("unexpected ref: %+v", block.Ref)
	}
}

func TestDecode_QuestionsBlock(t *testing.T) {
	data := `{"choices":[{"delta":{"content":["q1","q2"]}}]}`
	block := decodeBlock(t, stream.Frame{Event: stream.EventQuestions, Data: data})

	if block.Kind != types.BlockQuestions {
		t.Errorf("expected kind QUESTIONS, got %s", block.Kind)
	}
	if len(block.Questions) != 2 || block.Questions[0] != "q1" {
		t.Errorf("unexpected questions: %v", block.Questions)
	}
}

func TestDecode_TaskBlockDefaultsToRunning(t *testing.T) {
	// Sparse metadata: no group fields, no status. TASK is still processed.
	data := `{"choices":[{"delta":{"content":{"id":"t1","name":"Collect data"}}}]}`
	block := decodeBlock(t, stream.Frame{Event: stream.EventTask, Data: data})

	if block.Kind != types.BlockTask {
		t.Errorf("expected kind TASK, got %s", block.Kind)
	}
	if block.Task == nil || block.Task.ID != "t1" {
		t.Fatalf("unexpected task: %+v", block.Task)
	}
	if block.Task.Status != types.StatusRunning {
		t.Errorf("expected default status running, got %s", block.Task.Status)
	}
}

func TestDecode_SourcesBlockKeepsOnlyKind(t *testing.T) {
	data := `{"choices":[{"delta":{"content":[{"id":"c1"}]}}],"group_id":"g1"}`
	block := decodeBlock(t, stream.Frame{Event: stream.EventSources, Data: data})

	if block.Kind != types.BlockSources {
		t.Errorf("expected kind SOURCES, got %s", block.Kind)
	}
	if block.GroupID != "g1" {
		t.Errorf("expected group metadata preserved, got %+v", block)
	}
}

func TestDecode_AbsentContentDropped(t *testing.T) {
	for _, data := range []string{
		`{"group_id":"g1"}`,
		`{"choices":[],"group_id":"g1"}`,
		`{"choices":[{"delta":{}}]}`,
		`{"choices":[{"delta":{"content":null}}]}`,
	} {
		ev, err := stream.Decode(stream.Frame{Event: stream.EventMessage, Data: data})
		if err != nil {
			t.Fatalf("Decode(%s) failed: %v", data, err)
		}
		if ev != nil {
			t.Errorf("expected drop for %s, got %T", data, ev)
		}
	}
}

func TestDecode_AbsentContentTaskStillProcessed(t *testing.T) {
	// TASK is exempt from the absent-content drop: the group must
	// materialize as a running section even with an empty payload slot.
	data := `{"group_id":"g1","group_name":"Analyze"}`
	block := decodeBlock(t, stream.Frame{Event: stream.EventTask, Data: data})

	if block.Kind != types.BlockTask {
		t.Errorf("expected kind TASK, got %s", block.Kind)
	}
	if block.GroupID != "g1" || block.GroupName != "Analyze" {
		t.Errorf("expected group metadata preserved, got %+v", block)
	}
	if block.Task == nil {
		t.Fatal("expected an empty task state, got nil")
	}
	if block.Task.Status != types.StatusRunning {
		t.Errorf("expected default status running, got %s", block.Task.Status)
	}
}

func TestDecode_MalformedJSONIsError(t *testing.T) {
	_, err := stream.Decode(stream.Frame{Event: stream.EventMessage, Data: "{not json"})
	if err == nil {
		t.Fatal("expected decode error for malformed JSON")
	}
}

func TestDecode_UnknownEventDropped(t *testing.T) {
	ev, err := stream.Decode(stream.Frame{Event: "TRACE", Data: `{"choices":[{"delta":{"content":"x"}}]}`})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if ev != nil {
		t.Errorf("expected unknown event to be dropped, got %T", ev)
	}
}

func TestDecode_ServerErrorStructured(t *testing.T) {
	data := `{"choices":[{"delta":{"content":{"code":300001,"message":"quota exhausted"}}}]}`
	ev, err := stream.Decode(stream.Frame{Event: stream.EventError, Data: data})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	apiErr, ok := ev.(*types.APIError)
	if !ok {
		t.Fatalf("expected *types.APIError, got %T", ev)
	}
	if apiErr.Code != types.CodeQuotaExceeded {
		t.Errorf("expected code %d, got %d", types.CodeQuotaExceeded, apiErr.Code)
	}
	if !apiErr.IsQuotaExceeded() {
		t.Error("expected quota classification")
	}
}

func TestDecode_ServerErrorFallback(t *testing.T) {
	ev, err := stream.Decode(stream.Frame{Event: stream.EventError, Data: "something went sideways"})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	apiErr, ok := ev.(*types.APIError)
	if !ok {
		t.Fatalf("expected *types.APIError, got %T", ev)
	}
	if apiErr.Code != 0 || apiErr.Message != "something went sideways" {
		t.Errorf("unexpected fallback error: %+v", apiErr)
	}
}
