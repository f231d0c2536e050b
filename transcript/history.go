package transcript

import (
	"encoding/json"

	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

// TurnsFromHistory converts a batch of persisted job records into turns in
// the same shape the live stream path produces.
//
// The wire delivers history newest-first; the result is oldest-first.
// Duplicate job ids keep the last record after reversal (the most recent
// state of that job). Sections are reduced in Materialized mode, so groups
// without a terminal task block settle as done rather than running.
func TurnsFromHistory(records []types.JobRecord) []types.Turn {
	turns := make([]types.Turn, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		turns = append(turns, turnFromRecord(records[i]))
	}
	return DedupTurns(turns)
}

// turnFromRecord converts one persisted job into a turn. Undecodable
// blocks are skipped rather than rejecting the whole record.
func turnFromRecord(rec types.JobRecord) types.Turn {
	blocks := make([]types.Block, 0, len(rec.Answer.Blocks))
	for _, br := range rec.Answer.Blocks {
		if b, ok := blockFromRecord(br); ok {
			blocks = append(blocks, b)
		}
	}

	t := types.NewTurn(rec.JobID, rec.Question)
	t.Answer = Reduce(blocks, Materialized)
	return t
}

// blockFromRecord decodes one persisted block. Returns false for unknown
// kinds, undecodable content, and QUESTIONS blocks (follow-up suggestions
// are ephemeral and not replayed from history).
func blockFromRecord(rec types.BlockRecord) (types.Block, bool) {
	b := types.Block{
		Kind:      types.BlockKind(rec.Type),
		GroupID:   rec.GroupID,
		GroupName: rec.GroupName,
		Stage:     rec.Stage,
	}

	switch b.Kind {
	case types.BlockMessage, types.BlockCode:
		if err := json.Unmarshal(rec.Content, &b.Text); err != nil {
			// Older records store text unquoted.
			b.Text = string(rec.Content)
		}
	case types.BlockTable, types.BlockImage:
		ref := &types.ArtifactRef{}
		if err := json.Unmarshal(rec.Content, ref); err != nil {
			return types.Block{}, false
		}
		b.Ref = ref
	case types.BlockTask:
		task := &types.TaskState{}
		if err := json.Unmarshal(rec.Content, task); err != nil {
			return types.Block{}, false
		}
		if task.Status == "" {
			task.Status = types.StatusDone
		}
		b.Task = task
	case types.BlockSources:
		// Presence is all the reducer needs.
	default:
		return types.Block{}, false
	}

	return b, true
}
