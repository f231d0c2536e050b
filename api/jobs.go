package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/powerdrillai/powerdrill-flow-sub000/iox"
	"github.com/powerdrillai/powerdrill-flow-sub000/runtime"
)

// jobRequest is the job-creation payload.
type jobRequest struct {
	Question      string        `json:"question"`
	SessionID     string        `json:"session_id"`
	DatasetID     string        `json:"dataset_id,omitempty"`
	DatasourceIDs []string      `json:"datasource_ids,omitempty"`
	CustomOptions customOptions `json:"custom_options"`
	Stream        bool          `json:"stream"`
	JobID         string        `json:"job_id,omitempty"`
}

type customOptions struct {
	WithCitation bool `json:"with_citation"`
}

// OpenStream submits a question and returns the answer event stream.
// The caller owns closing the returned body. Implements runtime.Transport.
func (c *Client) OpenStream(ctx context.Context, req runtime.SubmitRequest) (io.ReadCloser, error) {
	payload, err := json.Marshal(jobRequest{
		Question:      req.Question,
		SessionID:     req.Context.SessionID,
		DatasetID:     req.Context.DatasetID,
		DatasourceIDs: req.Context.DatasourceIDs,
		CustomOptions: customOptions{WithCitation: req.WithCitation},
		Stream:        true,
		JobID:         req.JobID,
	})
	if err != nil {
		return nil, fmt.Errorf("api: marshal job request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/jobs", nil, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.streaming.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("api: create job: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer iox.DiscardClose(resp.Body)
		return nil, decodeError(resp.StatusCode, resp.Body)
	}

	c.logger.Debug("job stream opened", map[string]any{
		"job_id":     req.JobID,
		"session_id": req.Context.SessionID,
	})
	return resp.Body, nil
}

var _ runtime.Transport = (*Client)(nil)
