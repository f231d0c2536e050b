package types

// BlockKind discriminates the content carried by a Block.
// Kind names match the upstream stream event names so history records
// and live events share one vocabulary.
type BlockKind string

// Block kind constants.
const (
	BlockMessage   BlockKind = "MESSAGE"
	BlockCode      BlockKind = "CODE"
	BlockTable     BlockKind = "TABLE"
	BlockImage     BlockKind = "IMAGE"
	BlockQuestions BlockKind = "QUESTIONS"
	BlockTask      BlockKind = "TASK"
	BlockSources   BlockKind = "SOURCES"
)

// IsTextual returns true for kinds whose payload is a growing string.
// Textual blocks merge by concatenation during accumulation.
func (k BlockKind) IsTextual() bool {
	return k == BlockMessage || k == BlockCode
}

// IsArtifact returns true for kinds that reference a generated artifact.
// Artifact blocks never merge; each one is a distinct output.
func (k BlockKind) IsArtifact() bool {
	return k == BlockTable || k == BlockImage
}

// TaskStatus is the lifecycle state reported by a task block.
type TaskStatus string

// Task status constants. StatusRunning is the optimistic default while a
// stream is open; StatusDone is the default for fully materialized history.
const (
	StatusRunning TaskStatus = "running"
	StatusDone    TaskStatus = "done"
	StatusFailed  TaskStatus = "failed"
)

// ArtifactRef points at a server-generated table or image artifact.
// The URL is presigned and expires; consumers must treat ExpiresAt as
// advisory and refetch through the API when it has passed.
type ArtifactRef struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expired_at,omitempty"`
}

// TaskState is the single evolving status value for one answer group.
// A later task event for the same group replaces the previous state
// rather than accumulating.
type TaskState struct {
	ID       string     `json:"id"`
	ParentID string     `json:"parent_id,omitempty"`
	Status   TaskStatus `json:"status"`
	Stage    string     `json:"stage,omitempty"`
	Name     string     `json:"name,omitempty"`
}

// Block is one typed unit of answer content. Exactly one payload field is
// populated, selected by Kind; the decoder validates this once at the
// stream boundary so downstream code can switch on Kind without re-checking
// shape. A block's Kind never changes after creation, but textual payloads
// grow and task payloads are replaced wholesale.
type Block struct {
	Kind BlockKind

	// Payload, by Kind:
	Text      string       // BlockMessage, BlockCode
	Ref       *ArtifactRef // BlockTable, BlockImage
	Questions []string     // BlockQuestions
	Task      *TaskState   // BlockTask

	// Grouping metadata. Empty values fall into the default group.
	GroupID   string
	GroupName string
	Stage     string
}

// TextBlock builds a plain-text message block. Used for question fragments
// and by tests.
func TextBlock(text string) Block {
	return Block{Kind: BlockMessage, Text: text}
}

// Section is the unit a user sees as one collapsible region of an answer:
// all blocks sharing a (GroupID, GroupName) pair, in arrival order, with a
// status derived from the group's task block.
type Section struct {
	GroupID   string
	GroupName string
	Stage     string
	Status    TaskStatus
	Blocks    []Block
}

// Turn is one question/answer exchange, keyed by JobID. At most one Turn
// per JobID exists within a Transcript.
type Turn struct {
	JobID    string
	Question []Block
	Answer   []Section
}

// NewTurn builds a Turn whose question is a single text block.
func NewTurn(jobID, question string) Turn {
	return Turn{
		JobID:    jobID,
		Question: []Block{TextBlock(question)},
	}
}

// QuestionText returns the concatenated text of the turn's question blocks.
func (t Turn) QuestionText() string {
	var s string
	for _, b := range t.Question {
		if b.Kind.IsTextual() {
			s += b.Text
		}
	}
	return s
}
