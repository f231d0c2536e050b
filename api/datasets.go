package api

import (
	"context"
	"net/http"
	"net/url"
)

// Dataset is a named collection of datasources.
type Dataset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DatasetOverview is the exploration summary the service generates after
// a dataset finishes synchronizing.
type DatasetOverview struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	Summary              string   `json:"summary"`
	ExplorationQuestions []string `json:"exploration_questions"`
	Keywords             []string `json:"keywords"`
}

// DatasetStatus reports the synchronization state of a dataset's
// datasources.
type DatasetStatus struct {
	InvalidCount  int `json:"invalid_count"`
	SynchingCount int `json:"synching_count"`
	SynchedCount  int `json:"synched_count"`
}

// Ready reports whether every datasource finished synchronizing.
func (s DatasetStatus) Ready() bool {
	return s.SynchingCount == 0
}

// CreateDatasetRequest names a new dataset.
type CreateDatasetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateDataset creates a dataset and returns its id.
func (c *Client) CreateDataset(ctx context.Context, req CreateDatasetRequest) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/datasets", nil, req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// ListDatasets returns every dataset visible to the user.
func (c *Client) ListDatasets(ctx context.Context) ([]Dataset, error) {
	return collectPages[Dataset](ctx, c, "/datasets", nil)
}

// DatasetOverview fetches the generated summary for a dataset.
func (c *Client) DatasetOverview(ctx context.Context, id string) (*DatasetOverview, error) {
	var out DatasetOverview
	if err := c.do(ctx, http.MethodGet, "/datasets/"+url.PathEscape(id)+"/overview", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDatasetStatus reports how many of the dataset's datasources are
// still synchronizing.
func (c *Client) GetDatasetStatus(ctx context.Context, id string) (*DatasetStatus, error) {
	var out DatasetStatus
	if err := c.do(ctx, http.MethodGet, "/datasets/"+url.PathEscape(id)+"/status", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDataset deletes a dataset and its datasources.
func (c *Client) DeleteDataset(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/datasets/"+url.PathEscape(id), nil, nil, nil)
}
