package api

import (
	"context"
	"net/http"
	"net/url"
)

// Datasource is one file or connection inside a dataset.
type Datasource struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
	Size   int64  `json:"size,omitempty"`
}

// CreateDatasourceRequest registers an uploaded file as a datasource.
// FileObjectKey comes from a prior UploadFile call.
type CreateDatasourceRequest struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	FileObjectKey string `json:"file_object_key"`
}

// CreateDatasource registers a datasource inside a dataset and returns
// its id. Synchronization starts server-side; poll GetDatasetStatus to
// learn when it becomes queryable.
func (c *Client) CreateDatasource(ctx context.Context, datasetID string, req CreateDatasourceRequest) (string, error) {
	if req.Type == "" {
		req.Type = "FILE"
	}
	var out struct {
		ID string `json:"id"`
	}
	path := "/datasets/" + url.PathEscape(datasetID) + "/datasources"
	if err := c.do(ctx, http.MethodPost, path, nil, req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// ListDatasources returns the datasources inside a dataset.
func (c *Client) ListDatasources(ctx context.Context, datasetID string) ([]Datasource, error) {
	return collectPages[Datasource](ctx, c, "/datasets/"+url.PathEscape(datasetID)+"/datasources", nil)
}

// GetDatasource fetches one datasource by id.
func (c *Client) GetDatasource(ctx context.Context, datasetID, id string) (*Datasource, error) {
	var out Datasource
	path := "/datasets/" + url.PathEscape(datasetID) + "/datasources/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDatasource removes a datasource from its dataset.
func (c *Client) DeleteDatasource(ctx context.Context, datasetID, id string) error {
	path := "/datasets/" + url.PathEscape(datasetID) + "/datasources/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
