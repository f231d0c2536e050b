package types

import "fmt"

// Well-known API error codes surfaced by the analytics service, both in
// REST response envelopes and in stream ERROR events.
const (
	// CodeQuotaExceeded means the team ran out of question quota.
	CodeQuotaExceeded = 300001
	// CodeStorageExceeded means the team ran out of dataset storage.
	CodeStorageExceeded = 300002
)

// APIError is a structured error reported by the analytics API.
// Use errors.As to recover it from wrapped chains, then classify by Code.
type APIError struct {
	// Code is the service error code, 0 when the server supplied none.
	Code int
	// Message is the human-readable description.
	Message string
	// Status is the HTTP status of the response, when applicable.
	Status int
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("api error: %s", e.Message)
	}
	return fmt.Sprintf("api error: http status %d", e.Status)
}

// IsQuotaExceeded returns true when the error carries the quota code.
func (e *APIError) IsQuotaExceeded() bool { return e.Code == CodeQuotaExceeded }

// IsStorageExceeded returns true when the error carries the storage code.
func (e *APIError) IsStorageExceeded() bool { return e.Code == CodeStorageExceeded }
