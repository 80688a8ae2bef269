// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry implements the remote backend client. The rest of
// Vigil only sees the [Client] interface: hand it a canonical query
// string and get rows back (or an error, which the acquisition
// pipeline absorbs as an empty result).
package telemetry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valyala/fastjson"
)

// Row is one data point from the backend: which facet group it
// belongs to, when, and what value.
type Row struct {
	// Facet is the group key. Empty when the query had no grouping;
	// the pipeline maps that to a single implicit group.
	Facet string

	// Timestamp is the point's position on the time axis, in seconds.
	Timestamp float64

	// Value is the projected value bound by the query's result
	// binding annotation.
	Value float64
}

// LogRow is one log entry from a log query: a timestamp key and the
// lines recorded under it.
type LogRow struct {
	Timestamp string
	Lines     []string
}

// Client is the surface the acquisition pipeline depends on. Tests
// substitute a fake; production uses [HTTPClient].
type Client interface {
	// Query sends the canonical query text and returns the matching
	// rows. An empty result is a valid response, not an error.
	Query(ctx context.Context, queryText string) ([]Row, error)

	// QueryLogs sends a log query and returns timestamped line
	// groups for the logs tab.
	QueryLogs(ctx context.Context, queryText string) ([]LogRow, error)
}

// requestTimeout bounds a single backend round trip. The pipeline's
// cadence is 5 seconds; a request that cannot finish inside one
// cadence window is abandoned so refreshes do not pile up.
const requestTimeout = 4 * time.Second

// HTTPClient talks to the telemetry backend over its JSON HTTP API.
// Responses are scanned with fastjson rather than unmarshalled into
// structs: the response envelope is large and we only read a few
// fields per row.
type HTTPClient struct {
	endpoint string
	account  string
	apiKey   string
	client   *http.Client
	parsers  fastjson.ParserPool
}

// NewHTTPClient creates a client for the given API endpoint, account
// identifier, and API key.
func NewHTTPClient(endpoint, account, apiKey string) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		account:  account,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: requestTimeout},
	}
}

// Query implements Client. It POSTs the query envelope and reduces
// the response's results array to rows. Rows without a facet field
// map to the implicit "" group.
func (httpClient *HTTPClient) Query(ctx context.Context, queryText string) ([]Row, error) {
	body, err := httpClient.post(ctx, queryText)
	if err != nil {
		return nil, err
	}

	// The pooled parser owns the parsed tree; extract everything
	// before returning it to the pool.
	parser := httpClient.parsers.Get()
	defer httpClient.parsers.Put(parser)

	root, err := parser.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("decoding telemetry response: %w", err)
	}

	results := root.GetArray("results")
	rows := make([]Row, 0, len(results))
	for _, result := range results {
		rows = append(rows, Row{
			Facet:     string(result.GetStringBytes("facet")),
			Timestamp: result.GetFloat64("timestamp"),
			Value:     result.GetFloat64("value"),
		})
	}
	return rows, nil
}

// QueryLogs implements Client. Each result carries a timestamp key
// and an array of message lines.
func (httpClient *HTTPClient) QueryLogs(ctx context.Context, queryText string) ([]LogRow, error) {
	body, err := httpClient.post(ctx, queryText)
	if err != nil {
		return nil, err
	}

	parser := httpClient.parsers.Get()
	defer httpClient.parsers.Put(parser)

	root, err := parser.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("decoding telemetry response: %w", err)
	}

	results := root.GetArray("results")
	rows := make([]LogRow, 0, len(results))
	for _, result := range results {
		row := LogRow{
			Timestamp: string(result.GetStringBytes("timestamp")),
		}
		for _, line := range result.GetArray("lines") {
			row.Lines = append(row.Lines, string(line.GetStringBytes()))
		}
		if row.Timestamp == "" && len(row.Lines) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// post sends one query request and returns the raw response body.
func (httpClient *HTTPClient) post(ctx context.Context, queryText string) ([]byte, error) {
	envelope := fmt.Sprintf(`{"account":%q,"query":%q}`, httpClient.account, queryText)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, httpClient.endpoint, bytes.NewBufferString(envelope))
	if err != nil {
		return nil, fmt.Errorf("building telemetry request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("API-Key", httpClient.apiKey)

	response, err := httpClient.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("telemetry request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telemetry backend returned %s", response.Status)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("reading telemetry response: %w", err)
	}
	return body, nil
}
