// Package controllerapi is the posture core's one window onto the
// controller: the two HTTP operations spec.md §1 calls out as an external
// collaborator ("the SDK's controller HTTP client"). It is intentionally
// thin — no TLS/auth framing beyond what net/http and the caller's
// *http.Client already provide — mirroring the source's ziti_pr_post /
// ziti_pr_post_bulk in original_source/library/ziti_ctrl.c.
package controllerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sethgrid/pester"
	"github.com/sirupsen/logrus"

	"github.com/meshzero/posture-agent/pkg/posture/wire"
)

const (
	postureResponsePath     = "/posture-response"
	postureResponseBulkPath = "/posture-response-bulk"
)

// Client submits posture responses to the controller, spec.md §6.
type Client interface {
	// PostResponse submits a single response object.
	PostResponse(ctx context.Context, body []byte) (*wire.ControllerResponse, error)

	// PostResponseBulk submits a JSON array of response objects. A 404
	// here is the sentinel that disables bulk mode permanently; callers
	// should test the returned error with IsNotFound.
	PostResponseBulk(ctx context.Context, body []byte) (*wire.ControllerResponse, error)
}

// HTTPError is returned for any non-2xx controller response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("controller returned %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is an HTTPError with status 404, the
// bulk-not-implemented sentinel of spec.md §4.5/§6.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// HTTPClient is the production Client, backed by a retrying HTTP client,
// grounded on the teacher's pkg/worker/request.go DoRequest (pester with
// error-body fallback on the caller side).
type HTTPClient struct {
	baseURL string
	http    *pester.Client
}

// NewHTTPClient builds a Client against baseURL. httpClient, if non-nil,
// is used as pester's backing transport (useful for httptest servers and
// for callers that need custom TLS configuration).
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	p := pester.New()
	p.Backoff = pester.ExponentialBackoff
	p.MaxRetries = 3
	if httpClient != nil {
		p.Client = *httpClient
	}
	return &HTTPClient{baseURL: baseURL, http: p}
}

func (c *HTTPClient) PostResponse(ctx context.Context, body []byte) (*wire.ControllerResponse, error) {
	return c.post(ctx, postureResponsePath, body)
}

func (c *HTTPClient) PostResponseBulk(ctx context.Context, body []byte) (*wire.ControllerResponse, error) {
	return c.post(ctx, postureResponseBulkPath, body)
}

func (c *HTTPClient) post(ctx context.Context, path string, body []byte) (*wire.ControllerResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "building request to %s", path)
	}
	req.Header.Set("Content-Type", "application/json")

	logrus.WithField("path", path).Debug("submitting posture response to controller")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing controller at %s", path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading controller response from %s", path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if len(respBody) == 0 {
		return &wire.ControllerResponse{}, nil
	}

	var out wire.ControllerResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, errors.Wrapf(err, "decoding controller response from %s", path)
	}
	return &out, nil
}
