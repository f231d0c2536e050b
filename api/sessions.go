package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

// Session is one persisted conversation on the server.
type Session struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	OutputLanguage string `json:"output_language,omitempty"`
	JobMode        string `json:"job_mode,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// CreateSessionRequest names a new conversation.
type CreateSessionRequest struct {
	Name           string `json:"name"`
	OutputLanguage string `json:"output_language,omitempty"`
	JobMode        string `json:"job_mode,omitempty"`
}

// CreateSession creates a conversation and returns its id.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (string, error) {
	if req.Name == "" {
		req.Name = "untitled session"
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/sessions", nil, req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// ListSessions returns every conversation visible to the user.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	return collectPages[Session](ctx, c, "/sessions", nil)
}

// GetSession fetches one conversation by id.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodGet, "/sessions/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSession deletes a conversation and its job history.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(id), nil, nil, nil)
}

// JobHistory fetches the persisted answer records for a conversation.
// The wire delivers records newest-first; they are returned untouched, in
// the shape transcript.TurnsFromHistory expects.
func (c *Client) JobHistory(ctx context.Context, sessionID string) ([]types.JobRecord, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("api: session id is required")
	}
	return collectPages[types.JobRecord](ctx, c, "/sessions/"+url.PathEscape(sessionID)+"/jobs", nil)
}
