package types

import "encoding/json"

// History wire shapes. Persisted jobs come back from the API in a flat
// form: one record per job with inline-grouped blocks, newest first. The
// transcript package converts these into the same Turn/Section/Block shape
// the live stream path produces.

// JobRecord is one persisted question/answer exchange on the wire.
type JobRecord struct {
	JobID    string       `json:"job_id"`
	Question string       `json:"question"`
	Answer   AnswerRecord `json:"answer"`
}

// AnswerRecord holds the persisted answer blocks for a job.
type AnswerRecord struct {
	Blocks []BlockRecord `json:"blocks"`
}

// BlockRecord is one persisted content block. Content is raw because its
// shape depends on Type; decoding is deferred to conversion so one bad
// block does not reject the whole batch.
type BlockRecord struct {
	Type      string          `json:"type"`
	Content   json.RawMessage `json:"content"`
	GroupID   string          `json:"group_id,omitempty"`
	GroupName string          `json:"group_name,omitempty"`
	Stage     string          `json:"stage,omitempty"`
}
