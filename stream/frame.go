// Package stream implements server-sent-event framing and decoding for the
// answer stream.
//
// The transport delivers text/event-stream frames; each frame carries an
// event name and a data payload. Reader performs the framing, Decode turns
// one frame into a typed event. Framing is tolerant of CR, LF and CRLF
// line endings and of comment lines, per the EventSource wire format.
package stream

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// MaxDataSize is the maximum accepted data payload per frame (1 MiB).
// Larger frames indicate a misbehaving server and abort the stream.
const MaxDataSize = 1 << 20

// DefaultEvent is the event name assumed when the server omits the
// "event:" field.
const DefaultEvent = EventMessage

// Frame is one raw server-sent event: an event name plus the joined data
// payload. Multi-line data fields are joined with newlines before dispatch.
type Frame struct {
	Event string
	Data  string
}

// Reader incrementally parses SSE frames from an io.Reader.
// Not safe for concurrent use; one Reader serves one stream.
type Reader struct {
	r    *bufio.Reader
	done bool

	// accumulation state for the frame being built
	event     string
	dataLines []string
	hasData   bool
}

// NewReader creates a Reader over the given stream body.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 4096)}
}

// Next returns the next complete frame from the stream.
// Returns io.EOF when the stream ends; a pending unterminated frame is
// dispatched before EOF is reported.
func (r *Reader) Next() (Frame, error) {
	if r.done {
		return Frame{}, io.EOF
	}

	for {
		line, err := r.readLine()
		if err != nil {
			if err == io.EOF {
				r.done = true
				if r.hasData {
					return r.dispatch(), nil
				}
				return Frame{}, io.EOF
			}
			r.done = true
			return Frame{}, err
		}

		// Blank line dispatches the accumulated frame.
		if line == "" {
			if !r.hasData {
				r.event = ""
				continue
			}
			return r.dispatch(), nil
		}

		// Comment line.
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := splitField(line)
		switch field {
		case "event":
			r.event = value
		case "data":
			r.dataLines = append(r.dataLines, value)
			r.hasData = true
		default:
			// id, retry and unknown fields are ignored; redelivery and
			// retry pacing are the transport's concern.
		}

		if size := r.pendingSize(); size > MaxDataSize {
			r.done = true
			return Frame{}, fmt.Errorf("frame data exceeds max size: %d > %d", size, MaxDataSize)
		}
	}
}

func (r *Reader) pendingSize() int {
	n := 0
	for _, l := range r.dataLines {
		n += len(l) + 1
	}
	return n
}

func (r *Reader) dispatch() Frame {
	f := Frame{
		Event: r.event,
		Data:  strings.Join(r.dataLines, "\n"),
	}
	if f.Event == "" {
		f.Event = DefaultEvent
	}
	r.event = ""
	r.dataLines = nil
	r.hasData = false
	return f
}

// readLine reads one line, treating CR, LF and CRLF as terminators.
// bufio.Scanner only handles LF and CRLF, so we scan bytes ourselves.
// The size cap applies per line as well as per frame: an unterminated
// line must not buffer without bound.
func (r *Reader) readLine() (string, error) {
	var line strings.Builder
	for {
		if line.Len() > MaxDataSize {
			return "", fmt.Errorf("frame line exceeds max size: %d > %d", line.Len(), MaxDataSize)
		}
		b, err := r.r.ReadByte()
		if err != nil {
			if err == io.EOF && line.Len() > 0 {
				return line.String(), nil
			}
			return "", err
		}

		switch b {
		case '\n':
			return line.String(), nil
		case '\r':
			// Consume a following LF if present (CRLF).
			next, err := r.r.ReadByte()
			if err == nil && next != '\n' {
				_ = r.r.UnreadByte()
			}
			return line.String(), nil
		default:
			line.WriteByte(b)
		}
	}
}

// splitField splits an SSE line into field name and value, stripping the
// single optional leading space after the colon.
func splitField(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx == -1 {
		return line, ""
	}
	field = line[:idx]
	value = line[idx+1:]
	if len(value) > 0 && value[0] == ' ' {
		value = value[1:]
	}
	return field, value
}
