package openaq

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/citybreath/mumbai-aqi-pipeline/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:    observability.NewMetricsForTesting(),
	}
}

func TestClient_LatestMeasurements_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "19.076,72.8777", r.URL.Query().Get("coordinates"))
		assert.Equal(t, "10000", r.URL.Query().Get("radius"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		resp := response{
			Results: []result{
				{
					Location: "Bandra, Mumbai - MPCB",
					Measurements: []measurementEntry{
						{Parameter: "pm25", Value: 48.2},
						{Parameter: "pm10", Value: 91.7},
						{Parameter: "no2", Value: 22.4},
						{Parameter: "so2", Value: 8.1},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	pollutants, ok, err := c.LatestMeasurements(context.Background(), 19.076, 72.8777)
	require.NoError(t, err)
	require.True(t, ok)

	require.NotNil(t, pollutants.PM25)
	assert.Equal(t, 48.2, *pollutants.PM25)
	require.NotNil(t, pollutants.PM10)
	assert.Equal(t, 91.7, *pollutants.PM10)
	require.NotNil(t, pollutants.NO2)
	assert.Equal(t, 22.4, *pollutants.NO2)
	// so2 is not tracked; o3 and co were not reported.
	assert.Nil(t, pollutants.O3)
	assert.Nil(t, pollutants.CO)
}

func TestClient_LatestMeasurements_NoNearbyStation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(response{Results: []result{}}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, ok, err := c.LatestMeasurements(context.Background(), 19.076, 72.8777)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_LatestMeasurements_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message": "rate limited"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, _, err := c.LatestMeasurements(context.Background(), 19.076, 72.8777)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCollectPollutants_LastValueWins(t *testing.T) {
	p := collectPollutants([]measurementEntry{
		{Parameter: "pm25", Value: 10},
		{Parameter: "pm25", Value: 20},
	})
	require.NotNil(t, p.PM25)
	assert.Equal(t, float64(20), *p.PM25)
}
