package domain

import (
	"fmt"
	"time"
)

// CreatedBySystem marks machine-generated recommendations, as opposed to
// manual edits applied to the published snapshot afterwards.
const CreatedBySystem = "system"

// Candidate is a parsed-but-not-yet-validated recommendation entry as it
// appears in the generated JSON array. AQIReduction is a float because
// generated output occasionally emits fractional numbers; it is rounded when
// the candidate is promoted to a Recommendation.
type Candidate struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	AQIReduction float64 `json:"aqi_reduction"`
	ImpactLevel  string  `json:"impact_level"`
	Timeframe    string  `json:"timeframe"`
	Cost         string  `json:"cost"`
	Stakeholders string  `json:"stakeholders"`
}

// Recommendation is a validated mitigation action as published in the
// recommendations snapshot.
type Recommendation struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	AQIReduction int       `json:"aqi_reduction"`
	ImpactLevel  string    `json:"impact_level"`
	Timeframe    string    `json:"timeframe"`
	Cost         string    `json:"cost"`
	Stakeholders string    `json:"stakeholders"`
	CreatedAt    time.Time `json:"created_at"`
	CreatedBy    string    `json:"created_by"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ZoneRecommendations groups one zone's recommendations in the snapshot.
type ZoneRecommendations struct {
	ZoneID          int              `json:"zone_id"`
	Recommendations []Recommendation `json:"recommendations"`
}

// RecommendationSnapshot is the published recommendations artifact.
type RecommendationSnapshot struct {
	Zones       []ZoneRecommendations `json:"zones"`
	LastUpdated time.Time             `json:"lastUpdated"`
	Version     string                `json:"version"`
}

// BuildRecommendations promotes validated candidates to recommendation
// records. IDs are rec-{zoneID}-{ordinal}, 1-based in response order, stable
// only within one generation run. Sparse fields get conservative defaults so
// the published record is always complete.
func BuildRecommendations(zoneID int, candidates []Candidate, now time.Time) []Recommendation {
	recs := make([]Recommendation, 0, len(candidates))
	for i, c := range candidates {
		rec := Recommendation{
			ID:           fmt.Sprintf("rec-%d-%d", zoneID, i+1),
			Title:        c.Title,
			Description:  c.Description,
			AQIReduction: int(c.AQIReduction + 0.5),
			ImpactLevel:  c.ImpactLevel,
			Timeframe:    c.Timeframe,
			Cost:         c.Cost,
			Stakeholders: c.Stakeholders,
			CreatedAt:    now,
			CreatedBy:    CreatedBySystem,
			UpdatedAt:    now,
		}
		if rec.ImpactLevel == "" {
			rec.ImpactLevel = "Medium Impact"
		}
		if rec.Timeframe == "" {
			rec.Timeframe = "Medium term"
		}
		if rec.Cost == "" {
			rec.Cost = "Medium"
		}
		recs = append(recs, rec)
	}
	return recs
}
