package stream

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

// Terminal data sentinels. Checked before any JSON parsing: the server
// closes every stream with exactly one of these as a bare data value.
const (
	DoneSentinel  = "[DONE]"
	ErrorSentinel = "[ERROR]"
)

// Recognized event names.
const (
	EventJobID     = "JOB_ID"
	EventTask      = "TASK"
	EventCode      = "CODE"
	EventTable     = "TABLE"
	EventImage     = "IMAGE"
	EventMessage   = "MESSAGE"
	EventQuestions = "QUESTIONS"
	EventSources   = "SOURCES"
	EventEndMark   = "END_MARK"
	EventError     = "ERROR"
)

// Terminal signals the end of a stream. OK is true when the server used
// the completion sentinel rather than the error sentinel.
type Terminal struct {
	OK bool
}

// envelope is the wire shape shared by all content events. Content is
// kept raw because its type depends on the event name.
type envelope struct {
	Choices []struct {
		Delta struct {
			Content json.RawMessage `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	Stage     string `json:"stage"`
}

// content returns the delta content payload, or nil when absent.
func (e *envelope) content() json.RawMessage {
	if len(e.Choices) == 0 {
		return nil
	}
	c := e.Choices[0].Delta.Content
	if len(c) == 0 || string(c) == "null" {
		return nil
	}
	return c
}

// eventKinds maps wire event names to block kinds.
var eventKinds = map[string]types.BlockKind{
	EventTask:      types.BlockTask,
	EventCode:      types.BlockCode,
	EventTable:     types.BlockTable,
	EventImage:     types.BlockImage,
	EventMessage:   types.BlockMessage,
	EventQuestions: types.BlockQuestions,
	EventSources:   types.BlockSources,
}

// Decode turns one frame into a typed event. The result is one of:
//
//   - *Terminal: the stream is over; OK distinguishes completion from the
//     error sentinel
//   - *types.APIError: a protocol error event from the server; the stream
//     itself continues until a sentinel arrives
//   - *types.Block: one content fragment
//   - nil: the frame carried nothing actionable (informational events,
//     non-TASK events without delta content, unrecognized names)
//
// A non-nil error means the frame was malformed. Decode errors never
// abort a stream: callers log them and drop the frame.
func Decode(f Frame) (any, error) {
	switch f.Data {
	case DoneSentinel:
		return &Terminal{OK: true}, nil
	case ErrorSentinel:
		return &Terminal{OK: false}, nil
	}

	switch f.Event {
	case EventJobID:
		// Informational: the job id is assigned at submission time and
		// the client already knows it.
		return nil, nil
	case EventError:
		return decodeServerError(f.Data), nil
	case EventEndMark:
		// END_MARK carries only the sentinel data handled above; anything
		// else on it is noise.
		return nil, nil
	}

	kind, ok := eventKinds[f.Event]
	if !ok {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(f.Data), &env); err != nil {
		return nil, fmt.Errorf("decode %s envelope: %w", f.Event, err)
	}

	content := env.content()
	if content == nil && kind != types.BlockTask {
		return nil, nil
	}

	block := &types.Block{
		Kind:      kind,
		GroupID:   env.GroupID,
		GroupName: env.GroupName,
		Stage:     env.Stage,
	}

	switch kind {
	case types.BlockMessage, types.BlockCode:
		if err := json.Unmarshal(content, &block.Text); err != nil {
			return nil, fmt.Errorf("decode %s content: %w", f.Event, err)
		}
	case types.BlockTable, types.BlockImage:
		ref := &types.ArtifactRef{}
		if err := json.Unmarshal(content, ref); err != nil {
			return nil, fmt.Errorf("decode %s content: %w", f.Event, err)
		}
		block.Ref = ref
	case types.BlockQuestions:
		if err := json.Unmarshal(content, &block.Questions); err != nil {
			return nil, fmt.Errorf("decode %s content: %w", f.Event, err)
		}
	case types.BlockTask:
		// TASK events materialize their group even when the payload slot
		// is sparse, so an empty task still yields a running section.
		task := &types.TaskState{}
		if content != nil {
			if err := json.Unmarshal(content, task); err != nil {
				return nil, fmt.Errorf("decode %s content: %w", f.Event, err)
			}
		}
		if task.Status == "" {
			task.Status = types.StatusRunning
		}
		block.Task = task
	case types.BlockSources:
		// Citation payloads are consumed by a separate affordance; only
		// the block's presence matters for grouping.
	}

	return block, nil
}

// errorContent is the nested shape the server embeds in ERROR events.
type errorContent struct {
	Choices []struct {
		Delta struct {
			Content struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Message string `json:"message"`
}

// decodeServerError extracts a structured API error from an ERROR event.
// Malformed payloads are reported as a generic API error carrying the raw
// data rather than surfacing a decode failure.
func decodeServerError(data string) *types.APIError {
	var ec errorContent
	if err := json.Unmarshal([]byte(data), &ec); err == nil {
		if len(ec.Choices) > 0 && (ec.Choices[0].Delta.Content.Code != 0 || ec.Choices[0].Delta.Content.Message != "") {
			return &types.APIError{
				Code:    ec.Choices[0].Delta.Content.Code,
				Message: ec.Choices[0].Delta.Content.Message,
			}
		}
		if ec.Message != "" {
			return &types.APIError{Message: ec.Message}
		}
	}
	return &types.APIError{Message: strings.TrimSpace(data)}
}
