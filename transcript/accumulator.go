// Package transcript implements the streaming-answer accumulation and
// reconciliation engine: folding decoded stream events into blocks,
// grouping blocks into sections, and maintaining the deduplicated,
// ordered list of conversation turns.
//
// All types here are plain state with no locking. Ownership rules:
// an Accumulator belongs to exactly one in-flight stream session, and a
// Transcript is mutated only through its Upsert/Replace operations, under
// whatever synchronization the owner provides.
package transcript

import "github.com/powerdrillai/powerdrill-flow-sub000/types"

// Accumulator folds decoded stream events into the raw block list for one
// in-flight turn. It is created when a question is submitted and discarded
// when the stream closes; a fold is an in-place mutation and the state
// after each fold is the authoritative one.
type Accumulator struct {
	jobID    string
	question string
	blocks   []types.Block

	// followUps is kept out of the block stream: suggested questions
	// apply to the whole turn, not to a section.
	followUps []string
}

// NewAccumulator creates an accumulator for one submitted question.
func NewAccumulator(jobID, question string) *Accumulator {
	return &Accumulator{jobID: jobID, question: question}
}

// JobID returns the job this accumulator belongs to.
func (a *Accumulator) JobID() string { return a.jobID }

// Question returns the original question text.
func (a *Accumulator) Question() string { return a.question }

// Blocks returns the accumulated blocks. The returned slice is the live
// backing store; callers must not retain it across folds.
func (a *Accumulator) Blocks() []types.Block { return a.blocks }

// FollowUps returns the latest follow-up question suggestions, or nil if
// none have arrived yet.
func (a *Accumulator) FollowUps() []string { return a.followUps }

// Fold merges one content block into the accumulated state.
//
// Merge rules by kind:
//   - textual kinds (MESSAGE, CODE) concatenate onto the most recent block
//     of the same kind and group, refreshing the stage when supplied
//   - artifact kinds (TABLE, IMAGE) always append; each is a distinct output
//   - QUESTIONS replaces the pending follow-up list and adds no block
//   - TASK replaces the payload of the group's existing task block, keeping
//     the previous stage when the new event omits one
//   - everything else (SOURCES) appends as-is
func (a *Accumulator) Fold(b *types.Block) {
	switch {
	case b.Kind == types.BlockQuestions:
		a.followUps = b.Questions

	case b.Kind.IsTextual():
		if prev := a.lastOf(b.Kind, b.GroupID); prev != nil {
			prev.Text += b.Text
			if b.Stage != "" {
				prev.Stage = b.Stage
			}
			return
		}
		a.blocks = append(a.blocks, *b)

	case b.Kind == types.BlockTask:
		if prev := a.lastOf(types.BlockTask, b.GroupID); prev != nil {
			stage := b.Stage
			if stage == "" {
				stage = prev.Stage
			}
			prev.Task = b.Task
			prev.Stage = stage
			if b.GroupName != "" {
				prev.GroupName = b.GroupName
			}
			return
		}
		a.blocks = append(a.blocks, *b)

	default:
		a.blocks = append(a.blocks, *b)
	}
}

// lastOf returns the most recent accumulated block of the given kind and
// group, or nil.
func (a *Accumulator) lastOf(kind types.BlockKind, groupID string) *types.Block {
	for i := len(a.blocks) - 1; i >= 0; i-- {
		if a.blocks[i].Kind == kind && a.blocks[i].GroupID == groupID {
			return &a.blocks[i]
		}
	}
	return nil
}

// Turn materializes the current accumulated state as a streaming turn:
// the original question plus the reduced sections so far.
func (a *Accumulator) Turn() types.Turn {
	t := types.NewTurn(a.jobID, a.question)
	t.Answer = Reduce(a.blocks, Streaming)
	return t
}
