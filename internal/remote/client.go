// Package remote provides the HTTP client for the authoritative resource API.
//
// Every resource is exposed as a REST collection: GET /<resource>,
// GET /<resource>/<id>, POST /<resource> and PATCH /<resource>/<id>.
// Transport and server failures surface as REMOTE_* errors; the orchestrator
// absorbs them per record and never aborts a batch on one.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/rentnest/rentnest/backend/internal/errors"
	"github.com/rentnest/rentnest/backend/internal/models"
)

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 30 * time.Second

// Client talks to the remote resource API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a Client for the given API base URL. token may be empty
// for unauthenticated deployments.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// SetHTTPClient overrides the underlying HTTP client. Used by tests.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// List fetches the full remote collection for a resource.
func (c *Client) List(ctx context.Context, resource string) ([]models.Record, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/"+resource, nil)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRemote, "failed to decode "+resource+" list", err)
	}
	return records, nil
}

// Get fetches one remote record by id. A missing record returns a
// REMOTE_NOT_FOUND error.
func (c *Client) Get(ctx context.Context, resource, id string) (models.Record, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/"+resource+"/"+id, nil)
	if err != nil {
		return nil, err
	}

	var record models.Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRemote, "failed to decode "+resource+" record", err)
	}
	return record, nil
}

// Create pushes a locally created record and returns the stored copy,
// including its newly assigned id.
func (c *Client) Create(ctx context.Context, resource string, record models.Record) (models.Record, error) {
	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/"+resource, record)
	if err != nil {
		return nil, err
	}

	var created models.Record
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRemote, "failed to decode created "+resource+" record", err)
	}
	return created, nil
}

// Patch applies a partial update to one remote record.
func (c *Client) Patch(ctx context.Context, resource, id string, partial models.Record) (models.Record, error) {
	body, err := c.do(ctx, http.MethodPatch, c.baseURL+"/"+resource+"/"+id, partial)
	if err != nil {
		return nil, err
	}

	var updated models.Record
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRemote, "failed to decode patched "+resource+" record", err)
	}
	return updated, nil
}

// do executes one request and returns the response body.
func (c *Client) do(ctx context.Context, method, url string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalid, "failed to encode request body", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalid, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.Wrap(apperrors.ErrRemoteTimeout, "request cancelled or timed out", err)
		}
		return nil, apperrors.Wrap(apperrors.ErrRemote, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRemote, "failed to read response body", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.New(apperrors.ErrRemoteNotFound, fmt.Sprintf("%s %s: not found", method, url))
	case resp.StatusCode >= 400:
		return nil, apperrors.Newf(apperrors.ErrRemote, "%s %s: status %d", method, url, resp.StatusCode)
	}

	return body, nil
}

// IsNotFound reports whether err is a missing-record response.
func IsNotFound(err error) bool {
	return apperrors.Is(err, apperrors.ErrRemoteNotFound)
}
