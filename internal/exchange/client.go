// Package exchange resolves currency conversion rates against the
// exchangerate-api.com v6 pair endpoint.
package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"context"
)

// DefaultBaseURL is the public v6 endpoint of exchangerate-api.com.
const DefaultBaseURL = "https://v6.exchangerate-api.com/v6"

// ErrUnresolved signals that a rate lookup failed: transport error, non-2xx
// status, or a service-reported error payload. It is an expected, recoverable
// outcome; callers fall back to asking the user for a manual rate.
var ErrUnresolved = errors.New("exchange rate unresolved")

// Client fetches conversion rates over HTTP. A lookup is a single attempt
// with no retry; a failed attempt is terminal for that request.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// pairResponse covers both the success and the error shape of the v6 API.
type pairResponse struct {
	Result         string  `json:"result"`
	BaseCode       string  `json:"base_code"`
	TargetCode     string  `json:"target_code"`
	ConversionRate float64 `json:"conversion_rate"`
	ErrorType      string  `json:"error-type"`
}

// Resolve returns the conversion rate for from->to. Same currency resolves to
// 1 with no I/O; a manual rate greater than zero is returned as-is with no
// I/O; otherwise the remote service is queried once.
func (c *Client) Resolve(ctx context.Context, from, to string, manual float64) (float64, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == to {
		return 1, nil
	}
	if manual > 0 {
		return manual, nil
	}
	return c.fetch(ctx, from, to)
}

func (c *Client) fetch(ctx context.Context, from, to string) (float64, error) {
	url := fmt.Sprintf("%s/%s/pair/%s/%s", c.baseURL, c.apiKey, from, to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build rate request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "Exchange rate request failed",
			"from", from, "to", to, "error", err)
		return 0, fmt.Errorf("pair %s/%s: %w", from, to, ErrUnresolved)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.WarnContext(ctx, "Exchange rate request returned non-success status",
			"from", from, "to", to, "status", resp.Status)
		return 0, fmt.Errorf("pair %s/%s: status %s: %w", from, to, resp.Status, ErrUnresolved)
	}

	var body pairResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.WarnContext(ctx, "Exchange rate response malformed",
			"from", from, "to", to, "error", err)
		return 0, fmt.Errorf("pair %s/%s: decode: %w", from, to, ErrUnresolved)
	}

	if body.Result != "success" {
		slog.WarnContext(ctx, "Exchange rate service reported error",
			"from", from, "to", to, "error_type", body.ErrorType)
		return 0, fmt.Errorf("pair %s/%s: %s: %w", from, to, body.ErrorType, ErrUnresolved)
	}

	return body.ConversionRate, nil
}
