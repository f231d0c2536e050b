package stream_test

import (
	"io"
	"strings"
	"testing"

	"github.com/powerdrillai/powerdrill-flow-sub000/stream"
)

// readAll drains the reader and fails the test on unexpected errors.
func readAll(t *testing.T, r *stream.Reader) []stream.Frame {
	t.Helper()
	var frames []stream.Frame
	for {
		f, err := r.Next()
		if err == io.EOF {
			return frames
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		frames = append(frames, f)
	}
}

func TestReader_SingleFrame(t *testing.T) {
	r := stream.NewReader(strings.NewReader("event: MESSAGE\ndata: {\"a\":1}\n\n"))
	frames := readAll(t, r)

	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if frames[0].Event != "MESSAGE" {
		t.Errorf("expected event MESSAGE, got %q", frames[0].Event)
	}
	if frames[0].Data != `{"a":1}` {
		t.Errorf("unexpected data: %q", frames[0].Data)
	}
}

func TestReader_MultipleFrames(t *testing.T) {
	input := "event: TASK\ndata: one\n\nevent: MESSAGE\ndata: two\n\n"
	frames := readAll(t, stream.NewReader(strings.NewReader(input)))

	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].Event != "TASK" || frames[0].Data != "one" {
		t.Errorf("unexpected first frame: %+v", frames[0])
	}
	if frames[1].Event != "MESSAGE" || frames[1].Data != "two" {
		t.Errorf("unexpected second frame: %+v", frames[1])
	}
}

func TestReader_CRLFAndCR(t *testing.T) {
	input := "event: MESSAGE\r\ndata: hello\r\n\r\nevent: CODE\rdata: world\r\r"
	frames := readAll(t, stream.NewReader(strings.NewReader(input)))

	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].Data != "hello" || frames[1].Data != "world" {
		t.Errorf("unexpected frames: %+v", frames)
	}
}

func TestReader_MultiLineDataJoined(t *testing.T) {
	input := "data: line1\ndata: line2\n\n"
	frames := readAll(t, stream.NewReader(strings.NewReader(input)))

	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if frames[0].Data != "line1\nline2" {
		t.Errorf("expected joined data, got %q", frames[0].Data)
	}
}

func TestReader_DefaultEventName(t *testing.T) {
	frames := readAll(t, stream.NewReader(strings.NewReader("data: x\n\n")))

	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if frames[0].Event != stream.EventMessage {
		t.Errorf("expected default event %q, got %q", stream.EventMessage, frames[0].Event)
	}
}

func TestReader_CommentAndBlankLinesSkipped(t *testing.T) {
	input := ": keepalive\n\n\nevent: MESSAGE\ndata: hi\n\n"
	frames := readAll(t, stream.NewReader(strings.NewReader(input)))

	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if frames[0].Data != "hi" {
		t.Errorf("unexpected data: %q", frames[0].Data)
	}
}

func TestReader_PendingFrameFlushedAtEOF(t *testing.T) {
	// No trailing blank line: the final frame must still be delivered.
	frames := readAll(t, stream.NewReader(strings.NewReader("event: MESSAGE\ndata: tail")))

	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if frames[0].Data != "tail" {
		t.Errorf("unexpected data: %q", frames[0].Data)
	}
}

func TestReader_OversizeFrameFails(t *testing.T) {
	big := strings.Repeat("x", stream.MaxDataSize+1)
	r := stream.NewReader(strings.NewReader("data: " + big + "\n\n"))

	_, err := r.Next()
	if err == nil {
		t.Fatal("expected error for oversize frame")
	}
}

func TestReader_OversizeUnterminatedLineFails(t *testing.T) {
	// The cap must hold even when the server never sends a line ending,
	// so a single runaway line cannot buffer without bound.
	big := strings.Repeat("x", stream.MaxDataSize+2)
	r := stream.NewReader(strings.NewReader("data: " + big))

	_, err := r.Next()
	if err == nil || err == io.EOF {
		t.Fatalf("expected size error for unterminated oversize line, got %v", err)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected EOF after abort, got %v", err)
	}
}
