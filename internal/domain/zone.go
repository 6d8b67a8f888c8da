package domain

// Zone is a fixed geographic unit of the monitored area. Zones are loaded
// from the curated reference document and are read-only to the pipeline.
type Zone struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	BaselineAQI int     `json:"baseline_aqi"`

	// Descriptive attributes feeding the recommendation prompt.
	ProximityToSea     string  `json:"proximity_to_sea,omitempty"`
	GreenSpacePct      float64 `json:"green_space_percentage,omitempty"`
	MajorRoads         string  `json:"major_roads,omitempty"`          // comma-separated
	ParksAndOpenSpaces string  `json:"parks_and_open_spaces,omitempty"` // comma-separated
	IndustrialAreas    string  `json:"industrial_areas,omitempty"`
	LandUseType        string  `json:"land_use_type,omitempty"`
	PopulationDensity  string  `json:"population_density,omitempty"`
}

// ZonesDocument is the top-level shape of the zones.json reference file.
type ZonesDocument struct {
	Zones []Zone `json:"zones"`
}
