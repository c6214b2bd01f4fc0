package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Filter narrows a view fetch to an optional calendar date and/or hour.
// The current hour is always passed in explicitly; the derivation layer
// never reads it from the wall clock.
type Filter struct {
	Date string // "2006-01-02", optional
	Hour *int   // [0,23], optional
}

// HourFilter returns a Filter for a single hour.
func HourFilter(hour int) Filter {
	return Filter{Hour: &hour}
}

// Values encodes the filter as URL query parameters.
func (f Filter) Values() url.Values {
	params := url.Values{}
	if f.Date != "" {
		params.Set("date", f.Date)
	}
	if f.Hour != nil {
		params.Set("hour", strconv.Itoa(*f.Hour))
	}
	return params
}

// Client fetches raw view rows from the primary traffic API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a primary API client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Get requests the raw JSON row array for a view. Any transport failure or
// non-2xx status is returned as an error for the caller to absorb.
func (c *Client) Get(ctx context.Context, view View, filter Filter) ([]byte, error) {
	u := fmt.Sprintf("%s/%s", c.baseURL, view)
	if params := filter.Values(); len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", view, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", view, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("traffic API error: status %d: %s", resp.StatusCode, body)
	}

	return body, nil
}
