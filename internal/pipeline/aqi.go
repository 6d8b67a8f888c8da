package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/citybreath/mumbai-aqi-pipeline/internal/domain"
	"github.com/citybreath/mumbai-aqi-pipeline/internal/observability"
)

// nextUpdateInterval is the hint stamped on the AQI envelope telling readers
// when to expect fresh data. The job is scheduled daily.
const nextUpdateInterval = 24 * time.Hour

// Fetcher resolves the current air quality reading for one coordinate.
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (domain.Reading, bool)
}

// AQIStore is the persistence surface the updater needs.
type AQIStore interface {
	ReadZones() (domain.ZonesDocument, error)
	ReadAQISnapshot() (domain.AQISnapshot, bool, error)
	WriteAQISnapshot(domain.AQISnapshot) error
}

// Notifier announces a published snapshot to downstream consumers.
type Notifier interface {
	SnapshotPublished(ctx context.Context, notice domain.SnapshotNotice) error
}

// AQIUpdater is the batch job refreshing every zone's measurement.
type AQIUpdater struct {
	store    AQIStore
	fetcher  Fetcher
	notifier Notifier // optional
	logger   *slog.Logger
	metrics  *observability.Metrics

	batchSize  int
	batchPause time.Duration
}

// NewAQIUpdater creates the updater. Pass a nil notifier to skip
// notifications.
func NewAQIUpdater(store AQIStore, fetcher Fetcher, notifier Notifier, logger *slog.Logger, metrics *observability.Metrics, batchSize int, batchPause time.Duration) *AQIUpdater {
	return &AQIUpdater{
		store:      store,
		fetcher:    fetcher,
		notifier:   notifier,
		logger:     logger,
		metrics:    metrics,
		batchSize:  batchSize,
		batchPause: batchPause,
	}
}

// UpdateStats summarizes one run.
type UpdateStats struct {
	Updated int
	Failed  int
}

// Run fetches all zones in fixed-size concurrent batches, pausing between
// batches to respect upstream rate limits, and publishes one new snapshot.
// Zone-level failures fall back to the previous snapshot entry (or the
// zone's baseline when none exists) and never abort the run.
func (u *AQIUpdater) Run(ctx context.Context) (UpdateStats, error) {
	u.metrics.JobRunning.Set(1)
	defer u.metrics.JobRunning.Set(0)

	doc, err := u.store.ReadZones()
	if err != nil {
		return UpdateStats{}, err
	}
	zones := doc.Zones
	u.logger.Info("updating aqi", "zones", len(zones), "batch_size", u.batchSize)

	prev, hadPrev, err := u.store.ReadAQISnapshot()
	if err != nil {
		// A corrupt previous snapshot only degrades fallback quality;
		// the run proceeds with baselines.
		u.logger.Warn("previous snapshot unreadable, falling back to baselines", "error", err)
	}
	prevByZone := prev.ByZone()
	if hadPrev {
		u.logger.Info("previous snapshot loaded", "entries", len(prevByZone))
	}

	results := make([]domain.Measurement, len(zones))
	var updated, failed atomic.Int64

	completed := len(zones)
	for start := 0; start < len(zones); start += u.batchSize {
		end := min(start+u.batchSize, len(zones))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int, zone domain.Zone) {
				defer wg.Done()
				results[i] = u.updateZone(ctx, zone, prevByZone, &updated, &failed)
			}(i, zones[i])
		}
		wg.Wait()

		if end < len(zones) {
			if !sleepWithContext(ctx, u.batchPause) {
				completed = end
				u.logger.Info("update interrupted", "completed", end, "total", len(zones))
				break
			}
		}
	}

	// An interrupted run still publishes a complete snapshot: every zone the
	// loop never reached gets the same previous-entry or baseline fallback a
	// failed fetch would, so no zone is ever dropped or left zero-valued.
	for i := completed; i < len(zones); i++ {
		zone := zones[i]
		failed.Add(1)
		u.metrics.ZonesFailed.Inc()
		if existing, found := prevByZone[zone.ID]; found {
			results[i] = existing
			continue
		}
		results[i] = domain.BaselineMeasurement(zone, domain.Now())
	}

	now := domain.Now()
	snap := domain.AQISnapshot{
		Zones:       results,
		LastUpdated: now,
		NextUpdate:  now.Add(nextUpdateInterval),
		Version:     domain.SnapshotVersion,
	}
	if err := u.store.WriteAQISnapshot(snap); err != nil {
		return UpdateStats{}, fmt.Errorf("publish aqi snapshot: %w", err)
	}

	stats := UpdateStats{Updated: int(updated.Load()), Failed: int(failed.Load())}
	u.notify(ctx, domain.SnapshotNotice{
		Artifact:    "aqi",
		Zones:       len(snap.Zones),
		Updated:     stats.Updated,
		Failed:      stats.Failed,
		LastUpdated: now,
	})
	u.logger.Info("aqi update complete", "updated", stats.Updated, "failed", stats.Failed)
	return stats, nil
}

// updateZone fetches one zone's measurement, carrying the previous entry
// forward on failure, or synthesizing from the baseline when no previous
// entry exists.
func (u *AQIUpdater) updateZone(ctx context.Context, zone domain.Zone, prev map[int]domain.Measurement, updated, failed *atomic.Int64) domain.Measurement {
	reading, ok := u.fetcher.Fetch(ctx, zone.Latitude, zone.Longitude)
	if ok {
		updated.Add(1)
		u.metrics.ZonesUpdated.Inc()
		u.logger.Info("zone updated", "zone", zone.Name, "aqi", reading.AQI, "source", reading.Source)
		return domain.NewMeasurement(zone.ID, reading, domain.Now())
	}

	failed.Add(1)
	u.metrics.ZonesFailed.Inc()

	if existing, found := prev[zone.ID]; found {
		u.logger.Warn("no data for zone, keeping previous measurement", "zone", zone.Name, "aqi", existing.CurrentAQI)
		return existing
	}

	u.logger.Warn("no data for zone, synthesizing from baseline", "zone", zone.Name, "baseline_aqi", zone.BaselineAQI)
	return domain.BaselineMeasurement(zone, domain.Now())
}

func (u *AQIUpdater) notify(ctx context.Context, notice domain.SnapshotNotice) {
	if u.notifier == nil {
		return
	}
	if err := u.notifier.SnapshotPublished(ctx, notice); err != nil {
		u.logger.Warn("snapshot notification failed", "artifact", notice.Artifact, "error", err)
	}
}

// sleepWithContext pauses for d, returning false if the context was
// cancelled first.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
