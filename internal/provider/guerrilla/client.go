package guerrilla

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is a thin HTTP client for the Guerrilla Mail ajax API. Every
// operation is a GET against a single endpoint, selected by the "f"
// query parameter.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Guerrilla Mail client for the given endpoint URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Get performs a GET with the given query parameters and unmarshals the
// JSON response into result.
func (c *Client) Get(ctx context.Context, params url.Values, result interface{}) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil,
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	// The service rejects clients without a browser-ish referer.
	req.Header.Set("User-Agent", "tempmail/1.0")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", "https://guerrillamail.com/")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request f=%s: %w", params.Get("f"), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf(
			"unexpected status %d on f=%s: %s",
			resp.StatusCode, params.Get("f"), string(body),
		)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshaling f=%s response: %w", params.Get("f"), err)
	}

	return nil
}
