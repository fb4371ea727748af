// Package trackerclient is the peer-side HTTP client for the tracker's RPC
// surface: it posts a JSON request body to /rpc/<operation> and decodes the
// bare JSON array response the tracker's wire contract specifies.
package trackerclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to one tracker's RPC surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client bound to baseURL (e.g. "http://127.0.0.1:8080"),
// applying timeout to every RPC round trip.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// call posts body to /rpc/<operation> and decodes the bare JSON array
// response into its constituent strings, tag first.
func (c *Client) call(operation string, body any) ([]string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/rpc/"+operation, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc %s: %w", operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rpc %s: read response: %w", operation, err)
	}

	var fields []string
	if err := json.Unmarshal(respBody, &fields); err != nil {
		return nil, fmt.Errorf("rpc %s: response not a JSON array: %s", operation, string(respBody))
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("rpc %s: empty response", operation)
	}
	return fields, nil
}

// Healthy reports whether the tracker's /health/ready endpoint returns 200.
func (c *Client) Healthy() bool {
	resp, err := c.httpClient.Get(c.baseURL + "/health/ready")
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}
