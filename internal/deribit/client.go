// Package deribit provides the Deribit public REST API client and the
// cached market-data service built on top of it.
package deribit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	apperrors "deribit-dashboard/internal/errors"
	"deribit-dashboard/internal/metrics"
)

// DefaultBaseURL is the production Deribit API base.
const DefaultBaseURL = "https://www.deribit.com/api/v2"

// Client is a thin error-returning client for the four public
// endpoints the dashboard uses. The absent-value failure policy lives
// one level up, in MarketData.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(base string) ClientOption {
	return func(c *Client) { c.baseURL = base }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Deribit API client.
func NewClient(logger zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a GET against a public endpoint and decodes the
// JSON-RPC result payload into out.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	fullURL := c.baseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	start := time.Now()
	outcome := "ok"
	defer func() {
		metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
		metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		outcome = "network_error"
		return apperrors.NewAPIError(endpoint, 0, "create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = "network_error"
		return apperrors.NewAPIError(endpoint, 0, "do request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		outcome = "http_error"
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.NewAPIError(endpoint, resp.StatusCode, string(body), nil)
	}

	var envelope rpcEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		outcome = "parse_error"
		return apperrors.NewAPIError(endpoint, resp.StatusCode, "decode envelope", err)
	}
	if len(envelope.Result) == 0 {
		outcome = "parse_error"
		return apperrors.NewAPIError(endpoint, resp.StatusCode, "empty result", nil)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		outcome = "parse_error"
		return apperrors.NewAPIError(endpoint, resp.StatusCode, "decode result", err)
	}
	return nil
}

// Ticker fetches /public/ticker for an instrument.
func (c *Client) Ticker(ctx context.Context, instrument string) (*TickerResult, error) {
	query := url.Values{"instrument_name": {instrument}}
	var result TickerResult
	if err := c.get(ctx, "/public/ticker", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Instruments fetches all non-expired option instruments for a currency.
func (c *Client) Instruments(ctx context.Context, currency string) ([]InstrumentResult, error) {
	query := url.Values{
		"currency": {currency},
		"kind":     {"option"},
		"expired":  {"false"},
	}
	var result []InstrumentResult
	if err := c.get(ctx, "/public/get_instruments", query, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// BookSummary fetches the book summary (bid, ask, mark IV) for one
// instrument. The endpoint returns a one-element array.
func (c *Client) BookSummary(ctx context.Context, instrument string) (*BookSummaryResult, error) {
	query := url.Values{"instrument_name": {instrument}}
	var result []BookSummaryResult
	if err := c.get(ctx, "/public/get_book_summary_by_instrument", query, &result); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, apperrors.NewDataError("book_summary", instrument, "empty summary array", nil)
	}
	return &result[0], nil
}

// OptionGreeks fetches /public/get_greeks for one instrument.
func (c *Client) OptionGreeks(ctx context.Context, instrument string) (*GreeksResult, error) {
	query := url.Values{"instrument_name": {instrument}}
	var result GreeksResult
	if err := c.get(ctx, "/public/get_greeks", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// String implements fmt.Stringer for debug logs.
func (c *Client) String() string {
	return fmt.Sprintf("deribit.Client(%s)", c.baseURL)
}
