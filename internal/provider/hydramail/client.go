package hydramail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a thin HTTP client for hydra-flavored REST mail services
// (Mail.gw, Mail.tm). It handles JSON marshaling and optional Bearer
// token authentication.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given API root URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Get performs an authenticated GET request. token may be empty for
// public endpoints such as /domains.
func (c *Client) Get(ctx context.Context, path, token string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, token, nil, result)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, "", body, result)
}

func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	token string,
	body interface{},
	result interface{},
) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf(
			"unexpected status %d on %s %s: %s",
			resp.StatusCode, method, path, string(respBody),
		)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling %s %s response: %w", method, path, err)
	}

	return nil
}
