package transcript_test

import (
	"testing"

	"github.com/powerdrillai/powerdrill-flow-sub000/transcript"
	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

func textEvent(text, groupID, stage string) *types.Block {
	return &types.Block{Kind: types.BlockMessage, Text: text, GroupID: groupID, Stage: stage}
}

func taskEvent(id string, status types.TaskStatus, groupID, stage string) *types.Block {
	return &types.Block{
		Kind:    types.BlockTask,
		Task:    &types.TaskState{ID: id, Status: status},
		GroupID: groupID,
		Stage:   stage,
	}
}

func TestFold_TextConcatenatesWithinGroup(t *testing.T) {
	acc := transcript.NewAccumulator("j1", "q")
	acc.Fold(textEvent("Hello", "a", ""))
	acc.Fold(textEvent(" world", "a", ""))

	blocks := acc.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Text != "Hello world" {
		t.Errorf("expected concatenated text, got %q", blocks[0].Text)
	}
}

func TestFold_TextDifferentGroupsStaySeparate(t *testing.T) {
	acc := transcript.NewAccumulator("j1", "q")
	acc.Fold(textEvent("one", "a", ""))
	acc.Fold(textEvent("two", "b", ""))
	acc.Fold(textEvent(" more", "a", ""))

	blocks := acc.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Text != "one more" || blocks[1].Text != "two" {
		t.Errorf("unexpected blocks: %+v", blocks)
	}
}

func TestFold_TextRefreshesStage(t *testing.T) {
	acc := transcript.NewAccumulator("j1", "q")
	acc.Fold(textEvent("a", "g", "Collect"))
	acc.Fold(textEvent("b", "g", "Analyze"))
	acc.Fold(textEvent("c", "g", ""))

	blocks := acc.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Stage != "Analyze" {
		t.Errorf("expected stage Analyze kept when update omits one, got %q", blocks[0].Stage)
	}
}

func TestFold_CodeAndMessageDoNotMerge(t *testing.T) {
	acc := transcript.NewAccumulator("j1", "q")
	acc.Fold(textEvent("prose", "g", ""))
	acc.Fold(&types.Block{Kind: types.BlockCode, Text: "SELECT 1", GroupID: "g"})

	if len(acc.Blocks()) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(acc.Blocks()))
	}
}

func TestFold_ArtifactsAlwaysAppend(t *testing.T) {
	acc := transcript.NewAccumulator("j1", "q")
	acc.Fold(&types.Block{Kind: types.BlockTable, Ref: &types.ArtifactRef{Name: "a.csv"}, GroupID: "g"})
	acc.Fold(&types.Block{Kind: types.BlockTable, Ref: &types.ArtifactRef{Name: "b.csv"}, GroupID: "g"})

	blocks := acc.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("expected 2 table blocks, got %d", len(blocks))
	}
	if blocks[0].Ref.Name != "a.csv" || blocks[1].Ref.Name != "b.csv" {
		t.Errorf("unexpected refs: %+v", blocks)
	}
}

func TestFold_TaskReplacesNotAccumulates(t *testing.T) {
	acc := transcript.NewAccumulator("j1", "q")
	acc.Fold(taskEvent("t1", types.StatusRunning, "a", "Collect"))
	acc.Fold(taskEvent("t1", types.StatusDone, "a", ""))

	blocks := acc.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("expected 1 task block, got %d", len(blocks))
	}
	if blocks[0].Task.Status != types.StatusDone {
		t.Errorf("expected second payload to win, got %+v", blocks[0].Task)
	}
	if blocks[0].Stage != "Collect" {
		t.Errorf("expected stage carried over when update omits one, got %q", blocks[0].Stage)
	}
}

func TestFold_QuestionsBypassBlockStream(t *testing.T) {
	acc := transcript.NewAccumulator("j1", "q")
	acc.Fold(&types.Block{Kind: types.BlockQuestions, Questions: []string{"q1"}})
	acc.Fold(&types.Block{Kind: types.BlockQuestions, Questions: []string{"q2", "q3"}})

	if len(acc.Blocks()) != 0 {
		t.Errorf("expected no blocks from QUESTIONS, got %d", len(acc.Blocks()))
	}
	fu := acc.FollowUps()
	if len(fu) != 2 || fu[0] != "q2" {
		t.Errorf("expected latest follow-ups to win, got %v", fu)
	}
}

func TestAccumulator_TurnCarriesQuestionAndSections(t *testing.T) {
	acc := transcript.NewAccumulator("j1", "what changed?")
	acc.Fold(textEvent("Hello", "a", ""))
	acc.Fold(textEvent(" world", "a", ""))

	turn := acc.Turn()
	if turn.JobID != "j1" {
		t.Errorf("expected job id j1, got %q", turn.JobID)
	}
	if turn.QuestionText() != "what changed?" {
		t.Errorf("unexpected question: %q", turn.QuestionText())
	}
	if len(turn.Answer) != 1 || len(turn.Answer[0].Blocks) != 1 {
		t.Fatalf("unexpected answer shape: %+v", turn.Answer)
	}
	if turn.Answer[0].Blocks[0].Text != "Hello world" {
		t.Errorf("unexpected text: %q", turn.Answer[0].Blocks[0].Text)
	}
}
