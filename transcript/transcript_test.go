package transcript_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/powerdrillai/powerdrill-flow-sub000/transcript"
	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

func jobIDs(turns []types.Turn) []string {
	ids := make([]string, len(turns))
	for i, t := range turns {
		ids[i] = t.JobID
	}
	return ids
}

func TestUpsert_ReplacesInsteadOfDuplicating(t *testing.T) {
	var tr transcript.Transcript
	tr.Upsert(types.NewTurn("j1", "first"))
	tr.Upsert(types.NewTurn("j1", "updated"))

	if tr.Len() != 1 {
		t.Fatalf("expected 1 turn, got %d", tr.Len())
	}
	last, _ := tr.Last()
	if last.QuestionText() != "updated" {
		t.Errorf("expected latest upsert to win, got %q", last.QuestionText())
	}
}

func TestUpsert_StreamingTurnStaysAfterSettledTurns(t *testing.T) {
	var tr transcript.Transcript
	tr.Upsert(types.NewTurn("j1", "old"))
	tr.Upsert(types.NewTurn("j2", "streaming"))
	tr.Upsert(types.NewTurn("j2", "streaming more"))

	if got := jobIDs(tr.Turns()); !reflect.DeepEqual(got, []string{"j1", "j2"}) {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestDedupTurns_LastOccurrenceWins(t *testing.T) {
	in := []types.Turn{
		types.NewTurn("j1", "v1"),
		types.NewTurn("j2", "x"),
		types.NewTurn("j1", "v2"),
	}

	out := transcript.DedupTurns(in)
	if got := jobIDs(out); !reflect.DeepEqual(got, []string{"j2", "j1"}) {
		t.Errorf("unexpected order: %v", got)
	}
	if out[1].QuestionText() != "v2" {
		t.Errorf("expected last occurrence kept, got %q", out[1].QuestionText())
	}
}

func TestDedupTurns_Idempotent(t *testing.T) {
	in := []types.Turn{
		types.NewTurn("j1", "a"),
		types.NewTurn("j2", "b"),
		types.NewTurn("j1", "c"),
		types.NewTurn("j3", "d"),
	}

	once := transcript.DedupTurns(in)
	twice := transcript.DedupTurns(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("dedup not idempotent: %v vs %v", jobIDs(once), jobIDs(twice))
	}
}

func TestReplace_DeduplicatesBatch(t *testing.T) {
	var tr transcript.Transcript
	tr.Replace([]types.Turn{
		types.NewTurn("j1", "a"),
		types.NewTurn("j1", "b"),
	})

	if tr.Len() != 1 {
		t.Fatalf("expected 1 turn, got %d", tr.Len())
	}
	last, _ := tr.Last()
	if last.QuestionText() != "b" {
		t.Errorf("expected last record kept, got %q", last.QuestionText())
	}
}

func mustRaw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestTurnsFromHistory_ReversesAndDedups(t *testing.T) {
	// Wire order is newest-first; j1 appears twice, the newer record first.
	records := []types.JobRecord{
		{JobID: "j1", Question: "v2", Answer: types.AnswerRecord{Blocks: []types.BlockRecord{
			{Type: "MESSAGE", Content: mustRaw(t, "new answer"), GroupID: "g"},
		}}},
		{JobID: "j2", Question: "other"},
		{JobID: "j1", Question: "v1", Answer: types.AnswerRecord{Blocks: []types.BlockRecord{
			{Type: "MESSAGE", Content: mustRaw(t, "old answer"), GroupID: "g"},
		}}},
	}

	turns := transcript.TurnsFromHistory(records)
	if got := jobIDs(turns); !reflect.DeepEqual(got, []string{"j2", "j1"}) {
		t.Fatalf("unexpected order: %v", got)
	}
	j1 := turns[1]
	if j1.QuestionText() != "v2" {
		t.Errorf("expected most recent record for j1, got %q", j1.QuestionText())
	}
	if len(j1.Answer) != 1 || j1.Answer[0].Blocks[0].Text != "new answer" {
		t.Errorf("unexpected answer: %+v", j1.Answer)
	}
}

func TestTurnsFromHistory_MaterializedStatusDefaultsToDone(t *testing.T) {
	records := []types.JobRecord{
		{JobID: "j1", Question: "q", Answer: types.AnswerRecord{Blocks: []types.BlockRecord{
			{Type: "MESSAGE", Content: mustRaw(t, "text"), GroupID: "g"},
		}}},
	}

	turns := transcript.TurnsFromHistory(records)
	if turns[0].Answer[0].Status != types.StatusDone {
		t.Errorf("expected history sections to settle as done, got %s", turns[0].Answer[0].Status)
	}
}

func TestTurnsFromHistory_TaskAndSourcesBlocks(t *testing.T) {
	records := []types.JobRecord{
		{JobID: "j1", Question: "q", Answer: types.AnswerRecord{Blocks: []types.BlockRecord{
			{Type: "TASK", Content: mustRaw(t, types.TaskState{ID: "t1", Status: types.StatusFailed}), GroupID: "g1"},
			{Type: "MESSAGE", Content: mustRaw(t, "visible"), GroupID: "g1"},
			{Type: "SOURCES", Content: mustRaw(t, []any{}), GroupID: "cite"},
			{Type: "MESSAGE", Content: mustRaw(t, "hidden"), GroupID: "cite"},
		}}},
	}

	turns := transcript.TurnsFromHistory(records)
	answer := turns[0].Answer
	if len(answer) != 1 {
		t.Fatalf("expected sources partition excluded, got %d sections", len(answer))
	}
	if answer[0].Status != types.StatusFailed {
		t.Errorf("expected task status mirrored, got %s", answer[0].Status)
	}
}

func TestTurnsFromHistory_SkipsUndecodableBlocks(t *testing.T) {
	records := []types.JobRecord{
		{JobID: "j1", Question: "q", Answer: types.AnswerRecord{Blocks: []types.BlockRecord{
			{Type: "TABLE", Content: json.RawMessage(`"not an object"`)},
			{Type: "MESSAGE", Content: mustRaw(t, "ok")},
		}}},
	}

	turns := transcript.TurnsFromHistory(records)
	if len(turns[0].Answer) != 1 || len(turns[0].Answer[0].Blocks) != 1 {
		t.Fatalf("expected only the decodable block, got %+v", turns[0].Answer)
	}
}
