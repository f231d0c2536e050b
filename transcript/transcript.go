package transcript

import "github.com/powerdrillai/powerdrill-flow-sub000/types"

// Transcript is the ordered, deduplicated list of conversation turns.
// It is append-only except for in-place replacement of the streaming turn.
// All mutation goes through Upsert/Replace; no caller may splice the turn
// list directly. The zero value is an empty transcript.
type Transcript struct {
	turns []types.Turn
}

// Len returns the number of turns.
func (tr *Transcript) Len() int { return len(tr.turns) }

// Turns returns a copy of the turn list, safe to hand to renderers while
// the owner keeps folding.
func (tr *Transcript) Turns() []types.Turn {
	out := make([]types.Turn, len(tr.turns))
	copy(out, tr.turns)
	return out
}

// Last returns the most recent turn, or false when the transcript is empty.
func (tr *Transcript) Last() (types.Turn, bool) {
	if len(tr.turns) == 0 {
		return types.Turn{}, false
	}
	return tr.turns[len(tr.turns)-1], true
}

// Upsert removes any existing turn with the same job id, then appends the
// new turn. Net effect: at most one turn per job id, positioned at the
// latest upsert. Only one turn streams at a time, so repeated upserts for
// the streaming turn keep it at the tail and never reorder settled turns.
func (tr *Transcript) Upsert(turn types.Turn) {
	kept := tr.turns[:0]
	for _, t := range tr.turns {
		if t.JobID != turn.JobID {
			kept = append(kept, t)
		}
	}
	tr.turns = append(kept, turn)
}

// Replace swaps the entire turn list, deduplicating by job id first.
// Used for initial population from history.
func (tr *Transcript) Replace(turns []types.Turn) {
	tr.turns = DedupTurns(turns)
}

// DedupTurns returns turns with at most one entry per job id, keeping the
// last occurrence of each and preserving the relative order of survivors.
// Idempotent: applying it twice equals applying it once.
func DedupTurns(turns []types.Turn) []types.Turn {
	last := make(map[string]int, len(turns))
	for i, t := range turns {
		last[t.JobID] = i
	}
	out := make([]types.Turn, 0, len(last))
	for i, t := range turns {
		if last[t.JobID] == i {
			out = append(out, t)
		}
	}
	return out
}
