// Package apininjas implements the primary measurement provider using the
// API Ninjas air quality endpoint. Requests carry the account key in an
// X-Api-Key header; a well-formed response includes a precomputed overall
// AQI plus per-pollutant concentrations.
package apininjas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/citybreath/mumbai-aqi-pipeline/internal/domain"
	"github.com/citybreath/mumbai-aqi-pipeline/internal/observability"
)

// Client implements domain.PrimaryProvider.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an API Ninjas air quality client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.api-ninjas.com/v1/airquality",
		logger:  logger,
		metrics: metrics,
	}
}

// CurrentAirQuality fetches the precomputed index for a coordinate. The bool
// is false when the response carried no overall AQI; the caller treats that
// the same as a transport error and moves to the secondary provider.
func (c *Client) CurrentAirQuality(ctx context.Context, lat, lon float64) (domain.Reading, bool, error) {
	params := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Reading{}, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchDuration.WithLabelValues(domain.SourcePrimary).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(domain.SourcePrimary, "error").Inc()
		return domain.Reading{}, false, fmt.Errorf("air quality request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.ProviderRequests.WithLabelValues(domain.SourcePrimary, "error").Inc()
		return domain.Reading{}, false, fmt.Errorf("api-ninjas error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.metrics.ProviderRequests.WithLabelValues(domain.SourcePrimary, "error").Inc()
		return domain.Reading{}, false, fmt.Errorf("decode response: %w", err)
	}

	if payload.OverallAQI == nil {
		c.metrics.ProviderRequests.WithLabelValues(domain.SourcePrimary, "empty").Inc()
		return domain.Reading{}, false, nil
	}

	c.metrics.ProviderRequests.WithLabelValues(domain.SourcePrimary, "success").Inc()
	return domain.Reading{
		AQI: *payload.OverallAQI,
		Pollutants: domain.Pollutants{
			PM25: payload.PM25.Concentration,
			PM10: payload.PM10.Concentration,
			NO2:  payload.NO2.Concentration,
			O3:   payload.O3.Concentration,
			CO:   payload.CO.Concentration,
		},
		Source: domain.SourcePrimary,
	}, true, nil
}

// API Ninjas response types.

type response struct {
	OverallAQI *int      `json:"overall_aqi"`
	PM25       pollutant `json:"PM2.5"`
	PM10       pollutant `json:"PM10"`
	NO2        pollutant `json:"NO2"`
	O3         pollutant `json:"O3"`
	CO         pollutant `json:"CO"`
}

type pollutant struct {
	Concentration *float64 `json:"concentration"`
}
