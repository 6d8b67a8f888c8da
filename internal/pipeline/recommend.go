package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/citybreath/mumbai-aqi-pipeline/internal/domain"
	"github.com/citybreath/mumbai-aqi-pipeline/internal/observability"
)

// RecommendationStore is the persistence surface the generator needs.
type RecommendationStore interface {
	ReadZones() (domain.ZonesDocument, error)
	ReadAQISnapshot() (domain.AQISnapshot, bool, error)
	WriteRecommendationSnapshot(domain.RecommendationSnapshot) error
}

// RecommendationGenerator is the batch job producing mitigation
// recommendations for every zone.
type RecommendationGenerator struct {
	store     RecommendationStore
	generator domain.Generator
	notifier  Notifier // optional
	catalogue []string
	logger    *slog.Logger
	metrics   *observability.Metrics

	zonePause time.Duration
}

// NewRecommendationGenerator creates the generator job. The catalogue is the
// fixed list of well-known landmarks feeding each zone's block-list;
// DefaultLandmarkCatalogue is the production value.
func NewRecommendationGenerator(store RecommendationStore, generator domain.Generator, notifier Notifier, catalogue []string, logger *slog.Logger, metrics *observability.Metrics, zonePause time.Duration) *RecommendationGenerator {
	return &RecommendationGenerator{
		store:     store,
		generator: generator,
		notifier:  notifier,
		catalogue: catalogue,
		logger:    logger,
		metrics:   metrics,
		zonePause: zonePause,
	}
}

// GenerationStats summarizes one run.
type GenerationStats struct {
	Zones           int // zones with at least one published recommendation
	Recommendations int
	Skipped         int
}

// Run generates recommendations zone by zone and publishes one snapshot at
// the end, even when some zones were skipped. Partial success is the
// expected steady state: any per-zone failure (service unavailable,
// malformed output, fully rejected batch) is logged and that zone is
// omitted from the snapshot.
func (g *RecommendationGenerator) Run(ctx context.Context) (GenerationStats, error) {
	g.metrics.JobRunning.Set(1)
	defer g.metrics.JobRunning.Set(0)

	doc, err := g.store.ReadZones()
	if err != nil {
		return GenerationStats{}, err
	}
	zones := doc.Zones

	aqiSnap, hadSnap, err := g.store.ReadAQISnapshot()
	if err != nil {
		g.logger.Warn("aqi snapshot unreadable, using baselines", "error", err)
	} else if !hadSnap {
		g.logger.Info("no aqi snapshot, using baselines")
	}
	aqiByZone := aqiSnap.ByZone()

	g.logger.Info("generating recommendations", "zones", len(zones))

	var stats GenerationStats
	var published []domain.ZoneRecommendations

	for i, zone := range zones {
		currentAQI := zone.BaselineAQI
		if m, found := aqiByZone[zone.ID]; found {
			currentAQI = m.CurrentAQI
		}

		recs, err := g.generateForZone(ctx, zone, currentAQI)
		if err != nil {
			stats.Skipped++
			g.metrics.ZonesSkipped.Inc()
			g.logger.Warn("zone skipped", "zone", zone.Name, "error", err)
		} else {
			published = append(published, domain.ZoneRecommendations{
				ZoneID:          zone.ID,
				Recommendations: recs,
			})
			stats.Zones++
			stats.Recommendations += len(recs)
			g.logger.Info("zone complete", "zone", zone.Name, "recommendations", len(recs))
		}

		if i < len(zones)-1 {
			if !sleepWithContext(ctx, g.zonePause) {
				g.logger.Info("generation interrupted", "completed", i+1, "total", len(zones))
				break
			}
		}
	}

	now := domain.Now()
	snap := domain.RecommendationSnapshot{
		Zones:       published,
		LastUpdated: now,
		Version:     domain.SnapshotVersion,
	}
	if err := g.store.WriteRecommendationSnapshot(snap); err != nil {
		return GenerationStats{}, fmt.Errorf("publish recommendations snapshot: %w", err)
	}

	g.notify(ctx, domain.SnapshotNotice{
		Artifact:    "recommendations",
		Zones:       len(snap.Zones),
		Failed:      stats.Skipped,
		LastUpdated: now,
	})
	g.logger.Info("generation complete",
		"zones", stats.Zones, "recommendations", stats.Recommendations, "skipped", stats.Skipped)
	return stats, nil
}

// generateForZone runs the full constrained-generation path for one zone:
// build constraints and prompt, submit, sanitize and validate, promote to
// records.
func (g *RecommendationGenerator) generateForZone(ctx context.Context, zone domain.Zone, currentAQI int) ([]domain.Recommendation, error) {
	constraints := domain.BuildConstraints(zone, g.catalogue)
	prompt := domain.BuildPrompt(zone, currentAQI, constraints)

	g.logger.Info("generating for zone", "zone", zone.Name, "current_aqi", currentAQI,
		"allowed_roads", len(constraints.Roads), "blocked", len(constraints.Blocked))

	raw, err := g.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cleaned, err := domain.SanitizeResponse(raw)
	if err != nil {
		return nil, err
	}
	parsed, err := domain.ParseCandidates(cleaned)
	if err != nil {
		return nil, err
	}

	valid := domain.FilterCandidates(parsed, constraints.Blocked)
	g.metrics.CandidatesAccepted.Add(float64(len(valid)))
	g.metrics.CandidatesRejected.Add(float64(len(parsed) - len(valid)))
	if len(valid) == 0 {
		return nil, domain.ErrNoValidRecommendations
	}

	return domain.BuildRecommendations(zone.ID, valid, domain.Now()), nil
}

func (g *RecommendationGenerator) notify(ctx context.Context, notice domain.SnapshotNotice) {
	if g.notifier == nil {
		return
	}
	if err := g.notifier.SnapshotPublished(ctx, notice); err != nil {
		g.logger.Warn("snapshot notification failed", "artifact", notice.Artifact, "error", err)
	}
}
