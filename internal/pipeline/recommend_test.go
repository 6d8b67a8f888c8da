package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citybreath/mumbai-aqi-pipeline/internal/domain"
	"github.com/citybreath/mumbai-aqi-pipeline/internal/observability"
)

// scriptedGenerator answers by matching a zone name inside the prompt.
type scriptedGenerator struct {
	responses map[string]string // zone name -> raw response
	errs      map[string]error  // zone name -> failure
	prompts   []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	for zone, err := range g.errs {
		if strings.Contains(prompt, "TARGET LOCATION: "+zone) {
			return "", err
		}
	}
	for zone, resp := range g.responses {
		if strings.Contains(prompt, "TARGET LOCATION: "+zone) {
			return resp, nil
		}
	}
	return "", errors.New("no script for prompt")
}

const validResponse = `[
  {"title": "Roadside Greening", "description": "Plant native trees.", "aqi_reduction": 12, "impact_level": "Medium Impact", "timeframe": "Medium term", "cost": "Low", "stakeholders": "BMC"},
  {"title": "Dust Control", "description": "Mist cannons at construction sites.", "aqi_reduction": 20, "impact_level": "High Impact", "timeframe": "Short term", "cost": "Medium", "stakeholders": "Builders"}
]`

func newTestGenerator(store *fakeStore, gen domain.Generator, notifier Notifier) *RecommendationGenerator {
	return NewRecommendationGenerator(store, gen, notifier,
		domain.DefaultLandmarkCatalogue, testLogger(),
		observability.NewMetricsForTesting(), 0)
}

func TestRecommendationGenerator_Run_HappyPath(t *testing.T) {
	frozenClock(t)
	store := &fakeStore{zones: threeZones()}
	gen := &scriptedGenerator{responses: map[string]string{
		"Colaba": validResponse,
		"Worli":  validResponse,
		"Juhu":   validResponse,
	}}
	notifier := &fakeNotifier{}

	stats, err := newTestGenerator(store, gen, notifier).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, GenerationStats{Zones: 3, Recommendations: 6}, stats)

	require.NotNil(t, store.writtenRecs)
	snap := *store.writtenRecs
	require.Len(t, snap.Zones, 3)
	assert.Equal(t, domain.SnapshotVersion, snap.Version)

	first := snap.Zones[0]
	assert.Equal(t, 1, first.ZoneID)
	require.Len(t, first.Recommendations, 2)
	assert.Equal(t, "rec-1-1", first.Recommendations[0].ID)
	assert.Equal(t, "rec-1-2", first.Recommendations[1].ID)
	assert.Equal(t, domain.CreatedBySystem, first.Recommendations[0].CreatedBy)

	require.Len(t, notifier.notices, 1)
	assert.Equal(t, "recommendations", notifier.notices[0].Artifact)
}

func TestRecommendationGenerator_Run_UsesSnapshotAQIOverBaseline(t *testing.T) {
	frozenClock(t)
	store := &fakeStore{
		zones:   domain.ZonesDocument{Zones: []domain.Zone{{ID: 1, Name: "Colaba", BaselineAQI: 140}}},
		hadPrev: true,
		prev: domain.AQISnapshot{
			Zones: []domain.Measurement{{ZoneID: 1, CurrentAQI: 210, DataSource: domain.SourcePrimary}},
		},
	}
	gen := &scriptedGenerator{responses: map[string]string{"Colaba": validResponse}}

	_, err := newTestGenerator(store, gen, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Current AQI: 210")
}

func TestRecommendationGenerator_Run_SkipsFailingZone(t *testing.T) {
	frozenClock(t)
	store := &fakeStore{zones: threeZones()}
	gen := &scriptedGenerator{
		responses: map[string]string{
			"Colaba": validResponse,
			"Juhu":   validResponse,
		},
		errs: map[string]error{
			"Worli": domain.ErrServiceUnavailable,
		},
	}

	stats, err := newTestGenerator(store, gen, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, GenerationStats{Zones: 2, Recommendations: 4, Skipped: 1}, stats)

	// The skipped zone is absent from the snapshot, not published empty.
	require.Len(t, store.writtenRecs.Zones, 2)
	assert.Equal(t, 1, store.writtenRecs.Zones[0].ZoneID)
	assert.Equal(t, 3, store.writtenRecs.Zones[1].ZoneID)
}

func TestRecommendationGenerator_Run_MalformedOutputSkipsZone(t *testing.T) {
	frozenClock(t)
	store := &fakeStore{zones: domain.ZonesDocument{Zones: threeZones().Zones[:1]}}
	gen := &scriptedGenerator{responses: map[string]string{
		"Colaba": "I cannot produce recommendations right now.",
	}}

	stats, err := newTestGenerator(store, gen, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, GenerationStats{Skipped: 1}, stats)
	assert.Empty(t, store.writtenRecs.Zones)
}

func TestRecommendationGenerator_Run_BlockListedBatchSkipsZone(t *testing.T) {
	frozenClock(t)
	// Colaba's block-list includes Bandra; every candidate mentions it.
	store := &fakeStore{zones: domain.ZonesDocument{Zones: threeZones().Zones[:1]}}
	gen := &scriptedGenerator{responses: map[string]string{
		"Colaba": `[{"title": "Copy Bandra", "description": "Do what Bandra does.", "aqi_reduction": 10}]`,
	}}

	stats, err := newTestGenerator(store, gen, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, GenerationStats{Skipped: 1}, stats)
	assert.Empty(t, store.writtenRecs.Zones)
}

func TestRecommendationGenerator_Run_WriteErrorAborts(t *testing.T) {
	frozenClock(t)
	store := &fakeStore{zones: threeZones(), writeErr: errors.New("disk full")}
	gen := &scriptedGenerator{responses: map[string]string{
		"Colaba": validResponse, "Worli": validResponse, "Juhu": validResponse,
	}}

	_, err := newTestGenerator(store, gen, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish recommendations snapshot")
}

func TestRecommendationGenerator_Run_CancelStopsBetweenZones(t *testing.T) {
	frozenClock(t)
	store := &fakeStore{zones: threeZones()}
	gen := &scriptedGenerator{responses: map[string]string{
		"Colaba": validResponse, "Worli": validResponse, "Juhu": validResponse,
	}}
	job := NewRecommendationGenerator(store, gen, nil,
		domain.DefaultLandmarkCatalogue, testLogger(),
		observability.NewMetricsForTesting(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := job.Run(ctx)
	require.NoError(t, err)
	// The first zone completes; the pause observes cancellation and the rest
	// are never attempted.
	assert.Equal(t, GenerationStats{Zones: 1, Recommendations: 2}, stats)
	require.NotNil(t, store.writtenRecs)
	assert.Len(t, store.writtenRecs.Zones, 1)
}
