// Package runtime owns the lifecycle of streaming question/answer
// exchanges: one Session per conversation, one stream per submitted
// question.
//
// A Session drives the whole pipeline for each question: open the
// stream, frame it, decode each frame, fold it into the accumulator,
// re-group, and upsert the in-progress turn into the transcript. All of
// that happens synchronously in arrival order inside the Submit call, so
// the visible transcript is always a left-fold over the frames seen so
// far. Hosts that need a responsive UI call Submit from their own
// goroutine and read state through the accessor methods.
package runtime

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/powerdrillai/powerdrill-flow-sub000/iox"
	"github.com/powerdrillai/powerdrill-flow-sub000/log"
	"github.com/powerdrillai/powerdrill-flow-sub000/metrics"
	"github.com/powerdrillai/powerdrill-flow-sub000/stream"
	"github.com/powerdrillai/powerdrill-flow-sub000/transcript"
	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

// State is the session's position in the submit/stream lifecycle.
type State string

// Session states. Done means the last stream finalized and the session
// is ready for the next question; Idle additionally covers the
// never-submitted and canceled cases.
const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateStreaming  State = "streaming"
	StateDone       State = "done"
)

// SessionContext carries the selection a question is asked against.
// It is explicit construction-time state, not ambient globals; the host
// application owns persisting it between runs.
type SessionContext struct {
	SessionID     string
	DatasetID     string
	DatasourceIDs []string
}

// SubmitRequest is the submission payload handed to the transport.
type SubmitRequest struct {
	JobID        string
	Question     string
	Context      SessionContext
	WithCitation bool
}

// Transport opens the answer stream for one submitted question.
// A nil error means the HTTP exchange succeeded and the body carries
// text/event-stream frames until the server's terminal sentinel.
type Transport interface {
	OpenStream(ctx context.Context, req SubmitRequest) (io.ReadCloser, error)
}

// Config configures a Session. Transport is required; everything else is
// optional. Callbacks are invoked from the goroutine running Submit, with
// no session lock held, so they may call back into the session.
type Config struct {
	Transport    Transport
	Context      SessionContext
	WithCitation bool

	Logger    *log.Logger
	Collector *metrics.Collector
	Notifier  Notifier

	// OnTurnCompleted fires exactly once per finalized turn.
	// It does not fire for canceled streams.
	OnTurnCompleted func(turn types.Turn)
	// OnQuestions fires whenever a fresh follow-up suggestion list arrives.
	OnQuestions func(questions []string)
	// OnUpdate fires after every transcript change, for re-rendering.
	OnUpdate func()
}

// Session is the stream session controller for one conversation.
// Only one stream is active at a time; submitting while a stream is open
// cancels it first. All exported methods are safe for concurrent use.
type Session struct {
	cfg    Config
	logger *log.Logger

	mu        sync.Mutex
	state     State
	tr        transcript.Transcript
	acc       *transcript.Accumulator
	cancel    context.CancelFunc
	done      chan struct{}
	err       error
	questions []string
}

// NewSession creates a session over the given transport and context.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Transport == nil {
		return nil, errors.New("runtime: transport is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Nop()
	}
	return &Session{
		cfg:    cfg,
		logger: logger,
		state:  StateIdle,
	}, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Streaming reports whether a question is currently in flight.
func (s *Session) Streaming() bool {
	st := s.State()
	return st == StateSubmitting || st == StateStreaming
}

// Turns returns a copy of the transcript's turn list.
func (s *Session) Turns() []types.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tr.Turns()
}

// Questions returns the latest follow-up suggestions, or nil.
func (s *Session) Questions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions
}

// Err returns the error recorded by the most recent submission, or nil.
// Errors are exposed here rather than returned from Submit; cancellation
// never records an error.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// LoadHistory replaces the transcript with converted persisted records.
// Meant for initial population before the first question.
func (s *Session) LoadHistory(records []types.JobRecord) {
	turns := transcript.TurnsFromHistory(records)
	s.mu.Lock()
	s.tr.Replace(turns)
	s.mu.Unlock()
	s.update()
}

// Submit asks one question and blocks until its stream finishes, fails,
// or is canceled. Blank questions and re-entrant calls during submission
// are silently rejected; a running stream is canceled first and then
// superseded. Outcome is observable via State, Err and the transcript.
func (s *Session) Submit(ctx context.Context, question string) {
	question = strings.TrimSpace(question)
	if question == "" {
		return
	}

	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return
	}
	if s.state == StateStreaming {
		cancel, done := s.cancel, s.done
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		if done != nil {
			<-done
		}
		s.mu.Lock()
		if s.state == StateSubmitting || s.state == StateStreaming {
			// Lost a race against another submitter.
			s.mu.Unlock()
			return
		}
	}

	streamCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.state = StateSubmitting
	s.cancel = cancel
	s.done = done
	s.err = nil
	s.questions = nil
	s.mu.Unlock()

	defer close(done)
	defer cancel()
	s.run(streamCtx, question)
}

// Cancel aborts the active stream, if any, and waits for its goroutine to
// settle. The partial turn accumulated so far stays in the transcript; no
// completion notification fires.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// run executes one full stream lifecycle.
func (s *Session) run(ctx context.Context, question string) {
	jobID := uuid.NewString()
	logger := s.logger.WithJob(jobID)
	s.cfg.Collector.IncTurnStarted()

	logger.Info("submitting question", map[string]any{
		"dataset_id":  s.cfg.Context.DatasetID,
		"datasources": len(s.cfg.Context.DatasourceIDs),
	})

	body, err := s.cfg.Transport.OpenStream(ctx, SubmitRequest{
		JobID:        jobID,
		Question:     question,
		Context:      s.cfg.Context,
		WithCitation: s.cfg.WithCitation,
	})
	if err != nil {
		s.failSubmit(err, logger)
		return
	}
	defer iox.DiscardClose(body)

	acc := transcript.NewAccumulator(jobID, question)
	s.mu.Lock()
	s.state = StateStreaming
	s.acc = acc
	// Placeholder turn so the question appears instantly.
	s.tr.Upsert(acc.Turn())
	s.mu.Unlock()
	s.update()

	r := stream.NewReader(body)
	for {
		frame, err := r.Next()
		if err != nil {
			if err == io.EOF {
				// The server closed without a sentinel.
				err = io.ErrUnexpectedEOF
			}
			if ctx.Err() != nil || IsCancellation(err) {
				s.abandon(logger)
				return
			}
			s.cfg.Collector.IncStreamErrors()
			notice, res := Classify(err)
			s.notify(notice)
			logger.Error("stream error", map[string]any{
				"error":  err.Error(),
				"action": string(res.Action),
			})
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			// Partial answers are preserved, never rolled back.
			s.finalize(acc, logger, false)
			return
		}
		s.cfg.Collector.IncFramesRead()

		if ctx.Err() != nil {
			s.abandon(logger)
			return
		}

		ev, err := stream.Decode(frame)
		if err != nil {
			s.cfg.Collector.IncDecodeErrors()
			logger.Warn("dropping malformed frame", map[string]any{
				"event": frame.Event,
				"error": err.Error(),
			})
			continue
		}

		switch ev := ev.(type) {
		case nil:
			// Informational or contentless frame.

		case *stream.Terminal:
			if !ev.OK {
				logger.Warn("stream ended with error sentinel", nil)
			}
			s.finalize(acc, logger, ev.OK)
			return

		case *types.APIError:
			// Protocol error: surfaced once, but the stream's own
			// sentinel governs termination.
			s.cfg.Collector.IncProtocolErrors()
			s.mu.Lock()
			s.err = ev
			s.mu.Unlock()
			notice, _ := Classify(ev)
			s.notify(notice)
			logger.Error("server reported error", map[string]any{
				"code":    ev.Code,
				"message": ev.Message,
			})

		case *types.Block:
			s.cfg.Collector.IncEventKind(string(ev.Kind))
			s.mu.Lock()
			acc.Fold(ev)
			if ev.Kind == types.BlockQuestions {
				s.questions = acc.FollowUps()
			}
			s.tr.Upsert(acc.Turn())
			s.mu.Unlock()
			if ev.Kind == types.BlockQuestions && s.cfg.OnQuestions != nil {
				s.cfg.OnQuestions(acc.FollowUps())
			}
			s.update()
		}
	}
}

// finalize runs the final reconcile, fires the completion notification
// and releases the accumulator. Called exactly once per stream that was
// not canceled.
func (s *Session) finalize(acc *transcript.Accumulator, logger *log.Logger, ok bool) {
	s.mu.Lock()
	turn := acc.Turn()
	s.tr.Upsert(turn)
	s.acc = nil
	s.state = StateDone
	s.mu.Unlock()
	s.update()

	if ok {
		s.cfg.Collector.IncTurnCompleted()
	} else {
		s.cfg.Collector.IncTurnFailed()
	}
	if s.cfg.OnTurnCompleted != nil {
		s.cfg.OnTurnCompleted(turn)
	}
	logger.Info("turn finalized", map[string]any{
		"ok":       ok,
		"sections": len(turn.Answer),
	})
}

// abandon discards the accumulator without finalizing. The partial turn
// already upserted stays in the transcript.
func (s *Session) abandon(logger *log.Logger) {
	s.mu.Lock()
	s.acc = nil
	s.state = StateIdle
	s.mu.Unlock()
	s.update()

	s.cfg.Collector.IncTurnCanceled()
	logger.Info("stream canceled", nil)
}

// failSubmit handles submission failures before any stream opened.
func (s *Session) failSubmit(err error, logger *log.Logger) {
	if IsCancellation(err) {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		s.cfg.Collector.IncTurnCanceled()
		return
	}

	s.mu.Lock()
	s.err = err
	s.state = StateIdle
	s.mu.Unlock()

	s.cfg.Collector.IncTurnFailed()
	notice, _ := Classify(err)
	s.notify(notice)
	logger.Error("job submission failed", map[string]any{"error": err.Error()})
}

func (s *Session) notify(n Notice) {
	if s.cfg.Notifier != nil {
		s.cfg.Notifier.Notify(n)
	}
}

func (s *Session) update() {
	if s.cfg.OnUpdate != nil {
		s.cfg.OnUpdate()
	}
}
