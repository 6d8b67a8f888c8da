// Package openaq implements the secondary measurement provider using the
// free OpenAQ latest-measurements endpoint. No credential is required; the
// response carries raw pollutant concentrations for the monitoring location
// nearest the requested coordinate.
package openaq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/citybreath/mumbai-aqi-pipeline/internal/domain"
	"github.com/citybreath/mumbai-aqi-pipeline/internal/observability"
)

// searchRadiusMeters bounds the nearest-station lookup. 10km covers every
// monitored zone without pulling readings from a different part of the city.
const searchRadiusMeters = 10000

// Client implements domain.SecondaryProvider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an OpenAQ client.
func NewClient(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.openaq.org/v2/latest",
		logger:  logger,
		metrics: metrics,
	}
}

// LatestMeasurements fetches raw concentrations near a coordinate. The bool
// is false when no monitoring location was found within the search radius.
func (c *Client) LatestMeasurements(ctx context.Context, lat, lon float64) (domain.Pollutants, bool, error) {
	params := url.Values{
		"coordinates": {fmt.Sprintf("%v,%v", lat, lon)},
		"radius":      {fmt.Sprintf("%d", searchRadiusMeters)},
		"limit":       {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Pollutants{}, false, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchDuration.WithLabelValues(domain.SourceSecondary).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(domain.SourceSecondary, "error").Inc()
		return domain.Pollutants{}, false, fmt.Errorf("latest measurements request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.ProviderRequests.WithLabelValues(domain.SourceSecondary, "error").Inc()
		return domain.Pollutants{}, false, fmt.Errorf("openaq error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.metrics.ProviderRequests.WithLabelValues(domain.SourceSecondary, "error").Inc()
		return domain.Pollutants{}, false, fmt.Errorf("decode response: %w", err)
	}

	if len(payload.Results) == 0 {
		c.metrics.ProviderRequests.WithLabelValues(domain.SourceSecondary, "empty").Inc()
		return domain.Pollutants{}, false, nil
	}

	c.metrics.ProviderRequests.WithLabelValues(domain.SourceSecondary, "success").Inc()
	return collectPollutants(payload.Results[0].Measurements), true, nil
}

// collectPollutants maps parameter-keyed measurement entries onto the five
// tracked pollutants. Unrecognized parameters are ignored.
func collectPollutants(entries []measurementEntry) domain.Pollutants {
	var p domain.Pollutants
	for _, e := range entries {
		v := e.Value
		switch e.Parameter {
		case "pm25":
			p.PM25 = &v
		case "pm10":
			p.PM10 = &v
		case "no2":
			p.NO2 = &v
		case "o3":
			p.O3 = &v
		case "co":
			p.CO = &v
		}
	}
	return p
}

// OpenAQ response types.

type response struct {
	Results []result `json:"results"`
}

type result struct {
	Location     string             `json:"location"`
	Measurements []measurementEntry `json:"measurements"`
}

type measurementEntry struct {
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
}
