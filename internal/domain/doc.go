// Package domain models the Mumbai air-quality pipeline's core entities and
// the pure logic shared by both batch jobs.
//
// # Data Sources
//
// Zone records come from a hand-curated zones.json reference document and are
// never mutated by the pipeline. Live measurements come from two upstream
// providers: API Ninjas (primary, keyed, returns a precomputed overall AQI)
// and OpenAQ (secondary, keyless, returns raw pollutant concentrations that
// are converted locally via [ComputeIndex]).
//
// # AQI Conventions
//
// The index is the US EPA 0-500 scale; higher is worse. Conversion from a
// PM2.5 or PM10 concentration uses the published six-segment piecewise-linear
// breakpoint tables. PM2.5 is preferred when both pollutants are reported.
// When neither is available the pipeline falls back to a neutral index of 150
// rather than failing: every zone must always carry some index.
//
// Concentrations above the top breakpoint are extrapolated along the last
// segment and clamped to 500.
//
// # Provenance Tags
//
// Each measurement records which source produced it:
//
//	"primary"   - precomputed index from the keyed provider
//	"secondary" - index computed locally from raw concentrations
//	"unknown"   - synthesized from the zone's baseline after both providers failed
//
// Recommendations are stamped created_by "system" to distinguish generated
// records from manual edits to the published snapshot.
//
// # Snapshot Envelopes
//
// Both published artifacts wrap their per-zone records in an envelope with a
// lastUpdated stamp and a schema version string. An envelope is the unit of
// atomic replacement: a run either publishes a complete new document or
// leaves the previous one untouched.
package domain
