// Package djdash is a Go client for the djdash-server JSON API.
package djdash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client provides a Go SDK for interacting with the djdash-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new djdash API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Tab is one entry of the dashboard tab bar.
type Tab struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Option is one ticker selector entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Payload is a rendered tab. Figures are Plotly figure objects.
type Payload struct {
	Tab      string            `json:"tab"`
	Title    string            `json:"title"`
	Figures  []json.RawMessage `json:"figures"`
	Options  []Option          `json:"options,omitempty"`
	Ticker   string            `json:"ticker,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Health is the server's liveness report.
type Health struct {
	Status       string   `json:"status"`
	Constituents int      `json:"constituents"`
	Series       int      `json:"series"`
	Skipped      []string `json:"skipped,omitempty"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("djdash: HTTP %d: %s", e.StatusCode, e.Message)
}

// Tabs retrieves the tab bar and the default tab.
func (c *Client) Tabs(ctx context.Context) ([]Tab, string, error) {
	var resp struct {
		Tabs    []Tab  `json:"tabs"`
		Default string `json:"default"`
	}
	if err := c.get(ctx, "/api/tabs", &resp); err != nil {
		return nil, "", err
	}
	return resp.Tabs, resp.Default, nil
}

// Options retrieves the ticker selector entries and the default ticker.
func (c *Client) Options(ctx context.Context) ([]Option, string, error) {
	var resp struct {
		Options []Option `json:"options"`
		Default string   `json:"default"`
	}
	if err := c.get(ctx, "/api/options", &resp); err != nil {
		return nil, "", err
	}
	return resp.Options, resp.Default, nil
}

// Tab renders a tab. ticker is only used by the per-stock tab and may be
// empty.
func (c *Client) Tab(ctx context.Context, tab, ticker string) (*Payload, error) {
	path := "/api/tab/" + url.PathEscape(tab)
	if ticker != "" {
		path += "?ticker=" + url.QueryEscape(ticker)
	}
	var p Payload
	if err := c.get(ctx, path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Health retrieves the server's liveness report.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/api/healthz", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
