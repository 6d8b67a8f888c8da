package domain

import "context"

// PrimaryProvider is the keyed upstream returning a precomputed overall AQI.
// The bool reports whether the response carried usable data.
type PrimaryProvider interface {
	CurrentAirQuality(ctx context.Context, lat, lon float64) (Reading, bool, error)
}

// SecondaryProvider is the keyless upstream returning raw pollutant
// concentrations for the nearest monitoring location.
type SecondaryProvider interface {
	LatestMeasurements(ctx context.Context, lat, lon float64) (Pollutants, bool, error)
}

// Generator submits a prompt to the generative text service and returns the
// raw text payload. Implementations report ErrServiceUnavailable when no
// payload could be obtained.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
