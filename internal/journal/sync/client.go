package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/distincto/journal/internal/common"
)

// Client is the transport-agnostic contract for talking to the remote sync
// endpoint.
type Client interface {
	// Ping probes reachability of the remote endpoint.
	Ping(ctx context.Context) error

	// PushBatch uploads a batch of pending records.
	PushBatch(ctx context.Context, batch Batch) error
}

// httpDoer is the subset of *http.Client the HTTP client needs. A seam for
// tests.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient pushes batches as JSON over HTTP. The zero endpoint is a valid
// configuration meaning "no remote": every call then fails with
// common.ErrNotConfigured and the coordinator keeps records pending.
type HTTPClient struct {
	endpoint string
	apiKey   string
	http     httpDoer
}

func NewHTTPClient(endpoint, apiKey string) *HTTPClient {
	return &HTTPClient{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// SetHTTPClient overrides the underlying transport. Passing nil restores the
// default.
func (c *HTTPClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
		return
	}
	c.http = client
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	if c.endpoint == "" {
		return common.ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/ping", nil)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("ping failed: %s", resp.Status)
	}
	return nil
}

func (c *HTTPClient) PushBatch(ctx context.Context, batch Batch) error {
	if c.endpoint == "" {
		return common.ErrNotConfigured
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode sync batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/sync", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create sync request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sync push failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= http.StatusBadRequest {
		excerpt := strings.TrimSpace(string(respBody))
		if excerpt == "" {
			excerpt = resp.Status
		}
		return fmt.Errorf("sync push rejected: %s", excerpt)
	}
	return nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
}
