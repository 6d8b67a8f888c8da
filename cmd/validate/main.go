// Command validate performs integrity checks across the pipeline's data
// files: the zones reference document, the AQI snapshot, and the
// recommendations snapshot. It verifies per-zone coverage, index ranges,
// provenance tags, identifier shape, and block-list compliance of the
// published recommendations.
//
// Usage:
//
//	go run ./cmd/validate -zones data/zones.json -aqi data/aqi-data.json -recs data/recommendations.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/citybreath/mumbai-aqi-pipeline/internal/domain"
)

var recIDRe = regexp.MustCompile(`^rec-(\d+)-(\d+)$`)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	zonesPath := flag.String("zones", "data/zones.json", "path to the zones reference document")
	aqiPath := flag.String("aqi", "data/aqi-data.json", "path to the AQI snapshot")
	recsPath := flag.String("recs", "data/recommendations.json", "path to the recommendations snapshot")
	flag.Parse()

	if code := run(*zonesPath, *aqiPath, *recsPath); code != 0 {
		os.Exit(code)
	}
}

func run(zonesPath, aqiPath, recsPath string) int {
	fmt.Println("=== AQI Pipeline Data Integrity Validation ===")
	fmt.Println()

	var zonesDoc domain.ZonesDocument
	if err := loadJSON(zonesPath, &zonesDoc); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load zones: %v\n", err)
		return 1
	}
	var aqiSnap domain.AQISnapshot
	if err := loadJSON(aqiPath, &aqiSnap); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load aqi snapshot: %v\n", err)
		return 1
	}
	var recSnap domain.RecommendationSnapshot
	if err := loadJSON(recsPath, &recSnap); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load recommendations snapshot: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateAQICoverage(zonesDoc, aqiSnap),
		validateMeasurements(aqiSnap),
		validateRecommendations(zonesDoc, recSnap),
	}

	allPassed := true
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS  %s\n", p.name)
			continue
		}
		allPassed = false
		fmt.Printf("FAIL  %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("      - %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	fmt.Println()
	fmt.Println("All checks passed.")
	return 0
}

// validateAQICoverage checks exactly one measurement per zone.
func validateAQICoverage(zones domain.ZonesDocument, snap domain.AQISnapshot) *phase {
	p := &phase{name: "aqi coverage"}

	seen := map[int]int{}
	for _, m := range snap.Zones {
		seen[m.ZoneID]++
	}
	for _, z := range zones.Zones {
		switch seen[z.ID] {
		case 0:
			p.errorf("zone %d (%s) has no measurement", z.ID, z.Name)
		case 1:
		default:
			p.errorf("zone %d (%s) has %d measurements", z.ID, z.Name, seen[z.ID])
		}
		delete(seen, z.ID)
	}
	for id := range seen {
		p.errorf("measurement for unknown zone %d", id)
	}
	return p
}

// validateMeasurements checks index range, provenance tags, and envelope
// metadata.
func validateMeasurements(snap domain.AQISnapshot) *phase {
	p := &phase{name: "measurement integrity"}

	if snap.Version == "" {
		p.errorf("envelope missing version")
	}
	if snap.LastUpdated.IsZero() {
		p.errorf("envelope missing lastUpdated")
	}
	if !snap.NextUpdate.After(snap.LastUpdated) {
		p.errorf("nextUpdate %v not after lastUpdated %v", snap.NextUpdate, snap.LastUpdated)
	}

	for _, m := range snap.Zones {
		if m.CurrentAQI < 0 || m.CurrentAQI > domain.MaxIndex {
			p.errorf("zone %d index %d outside [0,%d]", m.ZoneID, m.CurrentAQI, domain.MaxIndex)
		}
		switch m.DataSource {
		case domain.SourcePrimary, domain.SourceSecondary, domain.SourceUnknown:
		default:
			p.errorf("zone %d has unknown provenance %q", m.ZoneID, m.DataSource)
		}
		if m.LastUpdated.IsZero() {
			p.errorf("zone %d missing last_updated", m.ZoneID)
		}
	}
	return p
}

// validateRecommendations checks identifier shape, field completeness,
// reduction range, and that no record mentions a location block-listed for
// its zone.
func validateRecommendations(zones domain.ZonesDocument, snap domain.RecommendationSnapshot) *phase {
	p := &phase{name: "recommendation integrity"}

	zoneByID := map[int]domain.Zone{}
	for _, z := range zones.Zones {
		zoneByID[z.ID] = z
	}

	for _, zr := range snap.Zones {
		zone, known := zoneByID[zr.ZoneID]
		if !known {
			p.errorf("recommendations for unknown zone %d", zr.ZoneID)
			continue
		}
		blocked := domain.BuildConstraints(zone, domain.DefaultLandmarkCatalogue).Blocked

		for i, rec := range zr.Recommendations {
			want := fmt.Sprintf("rec-%d-%d", zr.ZoneID, i+1)
			if !recIDRe.MatchString(rec.ID) {
				p.errorf("zone %d entry %d: malformed id %q", zr.ZoneID, i, rec.ID)
			} else if rec.ID != want {
				p.errorf("zone %d entry %d: id %q, want %q", zr.ZoneID, i, rec.ID, want)
			}
			if strings.TrimSpace(rec.Title) == "" || strings.TrimSpace(rec.Description) == "" {
				p.errorf("%s: missing title or description", rec.ID)
			}
			if rec.AQIReduction < 1 || rec.AQIReduction > 50 {
				p.errorf("%s: aqi_reduction %d outside [1,50]", rec.ID, rec.AQIReduction)
			}
			if rec.CreatedBy == "" {
				p.errorf("%s: missing created_by", rec.ID)
			}
			for _, b := range blocked {
				l := strings.ToLower(b)
				if strings.Contains(strings.ToLower(rec.Title), l) || strings.Contains(strings.ToLower(rec.Description), l) {
					p.errorf("%s: mentions block-listed location %q", rec.ID, b)
				}
			}
		}
	}
	return p
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
