package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/powerdrillai/powerdrill-flow-sub000/iox"
	"github.com/powerdrillai/powerdrill-flow-sub000/types"
)

// UploadFile streams a local file to the service's upload endpoint and
// returns the file object key used to register it as a datasource.
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("api: open upload file: %w", err)
	}
	defer iox.DiscardClose(f)

	return c.Upload(ctx, filepath.Base(path), f)
}

// Upload sends one named file body as a multipart form. The body is
// streamed through a pipe rather than buffered in memory.
func (c *Client) Upload(ctx context.Context, name string, body io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, body); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.CloseWithError(mw.Close())
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/file/upload-datasource", nil, pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.streaming.Do(req)
	if err != nil {
		return "", fmt.Errorf("api: upload %s: %w", name, err)
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeError(resp.StatusCode, resp.Body)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("api: decode upload response: %w", err)
	}
	if env.Code != 0 {
		return "", &types.APIError{Code: env.Code, Message: env.Message, Status: resp.StatusCode}
	}

	var out struct {
		FileObjectKey string `json:"file_object_key"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return "", fmt.Errorf("api: decode upload data: %w", err)
	}
	if out.FileObjectKey == "" {
		return "", fmt.Errorf("api: upload response missing file object key")
	}

	c.logger.Info("file uploaded", map[string]any{
		"name": name,
		"key":  out.FileObjectKey,
	})
	return out.FileObjectKey, nil
}
