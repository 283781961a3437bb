package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "wikx/dev (https://github.com/open-cli-collective/wiki-extractor)"
)

// Client is a MediaWiki Action API client.
type Client struct {
	apiURL     string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a client for the api.php endpoint at apiURL, e.g.
// https://en.wikipedia.org/w/api.php.
func NewClient(apiURL string) *Client {
	return &Client{
		apiURL:    strings.TrimSuffix(apiURL, "/"),
		userAgent: defaultUserAgent,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// SetUserAgent overrides the User-Agent header sent with every request.
func (c *Client) SetUserAgent(ua string) {
	c.userAgent = ua
}

// do executes a GET request with the given query parameters and returns the
// response body. API errors reported with a 200 status are returned as
// *ErrorResponse, like HTTP errors.
func (c *Client) do(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		info := strings.TrimSpace(string(respBody))
		if info == "" {
			info = http.StatusText(resp.StatusCode)
		}
		return nil, &ErrorResponse{StatusCode: resp.StatusCode, Code: "http", Info: info}
	}

	var envelope struct {
		Error *ErrorResponse `json:"error"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if envelope.Error != nil {
		envelope.Error.StatusCode = resp.StatusCode
		return nil, envelope.Error
	}

	return respBody, nil
}

// Query performs an action=query request.
func (c *Client) Query(ctx context.Context, params url.Values) (*Query, error) {
	params.Set("action", "query")
	body, err := c.do(ctx, params)
	if err != nil {
		return nil, err
	}

	var result QueryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse query response: %w", err)
	}
	return &result.Query, nil
}
