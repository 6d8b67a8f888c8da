package domain

import "time"

// Provenance tags recorded on each measurement.
const (
	SourcePrimary   = "primary"
	SourceSecondary = "secondary"
	SourceUnknown   = "unknown"
)

// SnapshotVersion is the schema version stamped on every published envelope.
const SnapshotVersion = "1.0.0"

// Pollutants holds raw concentrations in µg/m³ (CO in mg/m³). A nil field
// means the provider did not report that pollutant; it serializes as null so
// the published file distinguishes "not measured" from zero.
type Pollutants struct {
	PM25 *float64 `json:"pm25"`
	PM10 *float64 `json:"pm10"`
	NO2  *float64 `json:"no2"`
	O3   *float64 `json:"o3"`
	CO   *float64 `json:"co"`
}

// Reading is a provider-normalized observation for one coordinate, before it
// is bound to a zone.
type Reading struct {
	AQI        int
	Pollutants Pollutants
	Source     string
}

// Measurement is one zone's current air-quality record as published in the
// AQI snapshot.
type Measurement struct {
	ZoneID      int       `json:"zone_id"`
	CurrentAQI  int       `json:"current_aqi"`
	PM25        *float64  `json:"pm25"`
	PM10        *float64  `json:"pm10"`
	NO2         *float64  `json:"no2"`
	O3          *float64  `json:"o3"`
	CO          *float64  `json:"co"`
	DataSource  string    `json:"data_source"`
	LastUpdated time.Time `json:"last_updated"`
}

// NewMeasurement binds a reading to a zone at the given time.
func NewMeasurement(zoneID int, r Reading, now time.Time) Measurement {
	return Measurement{
		ZoneID:      zoneID,
		CurrentAQI:  r.AQI,
		PM25:        r.Pollutants.PM25,
		PM10:        r.Pollutants.PM10,
		NO2:         r.Pollutants.NO2,
		O3:          r.Pollutants.O3,
		CO:          r.Pollutants.CO,
		DataSource:  r.Source,
		LastUpdated: now,
	}
}

// BaselineMeasurement synthesizes a measurement from the zone's baseline
// index. Used when both providers failed and no prior snapshot entry exists.
func BaselineMeasurement(zone Zone, now time.Time) Measurement {
	return Measurement{
		ZoneID:      zone.ID,
		CurrentAQI:  zone.BaselineAQI,
		DataSource:  SourceUnknown,
		LastUpdated: now,
	}
}

// AQISnapshot is the published AQI artifact: one measurement per zone plus
// envelope metadata.
type AQISnapshot struct {
	Zones       []Measurement `json:"zones"`
	LastUpdated time.Time     `json:"lastUpdated"`
	NextUpdate  time.Time     `json:"nextUpdate"`
	Version     string        `json:"version"`
}

// ByZone indexes the snapshot's measurements by zone ID for fallback lookups.
func (s AQISnapshot) ByZone() map[int]Measurement {
	m := make(map[int]Measurement, len(s.Zones))
	for _, z := range s.Zones {
		m[z.ZoneID] = z
	}
	return m
}

// SnapshotNotice describes one published artifact for downstream consumers.
type SnapshotNotice struct {
	Artifact    string    `json:"artifact"` // "aqi" or "recommendations"
	Zones       int       `json:"zones"`
	Updated     int       `json:"updated,omitempty"`
	Failed      int       `json:"failed,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}
