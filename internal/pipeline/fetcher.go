// Package pipeline orchestrates the two batch jobs: the AQI updater and the
// recommendation generator. Per-zone failures are absorbed and logged; only
// failing to read the zones document or to write the final snapshot aborts a
// job.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/citybreath/mumbai-aqi-pipeline/internal/domain"
)

// MultiSourceFetcher resolves one coordinate's current air quality: primary
// provider first (when a credential is configured), secondary as fallback.
// Any transport or decoding error counts as that provider's failure and is
// never propagated; a false result means both sources came up empty, which
// the caller handles with its own fallback chain.
type MultiSourceFetcher struct {
	primary   domain.PrimaryProvider // nil when no credential is configured
	secondary domain.SecondaryProvider
	logger    *slog.Logger
}

// NewFetcher creates a fetcher. Pass a nil primary to skip straight to the
// secondary provider.
func NewFetcher(primary domain.PrimaryProvider, secondary domain.SecondaryProvider, logger *slog.Logger) *MultiSourceFetcher {
	return &MultiSourceFetcher{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Fetch returns a normalized reading for the coordinate and whether any
// provider produced usable data. A primary response with a precomputed index
// is returned as-is; secondary concentrations are converted locally.
func (f *MultiSourceFetcher) Fetch(ctx context.Context, lat, lon float64) (domain.Reading, bool) {
	if f.primary != nil {
		reading, ok, err := f.primary.CurrentAirQuality(ctx, lat, lon)
		if err != nil {
			f.logger.Warn("primary provider failed", "lat", lat, "lon", lon, "error", err)
		} else if ok {
			return reading, true
		}
	}

	if f.secondary != nil {
		pollutants, ok, err := f.secondary.LatestMeasurements(ctx, lat, lon)
		if err != nil {
			f.logger.Warn("secondary provider failed", "lat", lat, "lon", lon, "error", err)
		} else if ok {
			return domain.Reading{
				AQI:        domain.ComputeIndex(pollutants.PM25, pollutants.PM10),
				Pollutants: pollutants,
				Source:     domain.SourceSecondary,
			}, true
		}
	}

	return domain.Reading{}, false
}
