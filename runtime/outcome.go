package runtime

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

// Action tells the transport layer what to do after a stream error.
// This is an explicit result value rather than a numeric return
// convention, so transports can implement retry without coupling to any
// particular HTTP library.
type Action string

const (
	// ActionRetry means the error is transient and the transport may
	// reopen the stream after Delay.
	ActionRetry Action = "retry"
	// ActionStop means the error is not recoverable; the session ends
	// with whatever was accumulated.
	ActionStop Action = "stop"
)

// DefaultRetryDelay is the pause suggested before a transient reconnect.
const DefaultRetryDelay = 2 * time.Second

// Result is the classifier's verdict on a stream error.
type Result struct {
	Action Action
	Delay  time.Duration
}

// Notice is a user-facing alert. The session's responsibility ends at
// producing the classified pair; presentation belongs to the host.
type Notice struct {
	Title       string
	Description string
}

// Notifier receives user-facing alerts. Implementations must not block.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

// IsCancellation reports whether err stems from an explicit cancellation.
// Cancellation errors are swallowed, never surfaced to the user.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Classify maps a stream or submission error to a user notice and a
// transport verdict.
//
// Taxonomy:
//   - API errors with the quota or storage code get a dedicated notice and
//     never retry: the condition will not clear on its own
//   - other API errors are generic processing errors, no retry
//   - connection drops and timeouts are transient: notice plus retry verdict
//   - anything else is a failed request, no retry
//
// Cancellation errors must be filtered with IsCancellation before calling.
func Classify(err error) (Notice, Result) {
	stop := Result{Action: ActionStop}

	var apiErr *types.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsQuotaExceeded():
			return Notice{
				Title:       "Quota exceeded",
				Description: "Your team has used up its question quota. " + apiErr.Message,
			}, stop
		case apiErr.IsStorageExceeded():
			return Notice{
				Title:       "Storage exceeded",
				Description: "Your team has used up its dataset storage. " + apiErr.Message,
			}, stop
		default:
			return Notice{
				Title:       "Processing error",
				Description: apiErr.Message,
			}, stop
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Notice{
			Title:       "Connection timed out",
			Description: err.Error(),
		}, Result{Action: ActionRetry, Delay: DefaultRetryDelay}
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return Notice{
			Title:       "Connection lost",
			Description: "The answer stream was interrupted.",
		}, Result{Action: ActionRetry, Delay: DefaultRetryDelay}
	}

	return Notice{
		Title:       "Request failed",
		Description: err.Error(),
	}, stop
}
