// Package sdk is a minimal typed client for the WeatherWatch HTTP API.
package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// SourceStatus mirrors one source's entry in the status response
type SourceStatus struct {
	SourceID    string    `json:"source_id"`
	DisplayName string    `json:"display_name"`
	Alerts      []Alert   `json:"alerts"`
	LastChecked time.Time `json:"last_checked"`
	LastError   string    `json:"last_error,omitempty"`
}

// Alert mirrors one classified alert
type Alert struct {
	SourceID   string    `json:"source_id"`
	Severity   string    `json:"severity"`
	Title      string    `json:"title"`
	Detail     string    `json:"detail"`
	ObservedAt time.Time `json:"observed_at"`
	Ongoing    bool      `json:"ongoing,omitempty"`
}

// StatusResponse mirrors GET /api/alerts/status
type StatusResponse struct {
	PerSource []SourceStatus `json:"per_source"`
	Timestamp time.Time      `json:"timestamp"`
}

// ForecastRecord mirrors GET /api/forecast/{location}
type ForecastRecord struct {
	Location     string    `json:"location"`
	TemperatureC float64   `json:"temperature_c"`
	Condition    string    `json:"condition"`
	WindKPH      float64   `json:"wind_kph"`
	RetrievedAt  time.Time `json:"retrieved_at"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{BaseURL: baseURL, HTTP: http.DefaultClient}
}

// Status fetches the latest per-source alert status
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.getJSON(ctx, "/api/alerts/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Forecast fetches the forecast record for a location
func (c *Client) Forecast(ctx context.Context, location string) (*ForecastRecord, error) {
	var out ForecastRecord
	if err := c.getJSON(ctx, "/api/forecast/"+url.PathEscape(location), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
