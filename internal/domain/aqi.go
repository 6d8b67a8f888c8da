package domain

import "math"

// DefaultIndex is the neutral fallback returned when no usable pollutant
// concentration is available. The pipeline must always produce some index,
// so conversion never fails.
const DefaultIndex = 150

// MaxIndex caps the scale; concentrations beyond the top breakpoint clamp here.
const MaxIndex = 500

// breakpoint maps one concentration sub-range linearly onto an index sub-range.
type breakpoint struct {
	cLow, cHigh float64
	iLow, iHigh float64
}

// US EPA breakpoint tables. The last segment also serves as the
// extrapolation slope for off-table concentrations.
var (
	pm25Breakpoints = []breakpoint{
		{0, 12, 0, 50},
		{12, 35.4, 50, 100},
		{35.4, 55.4, 100, 150},
		{55.4, 150.4, 150, 200},
		{150.4, 250.4, 200, 300},
		{250.4, 350.4, 300, 400},
	}
	pm10Breakpoints = []breakpoint{
		{0, 54, 0, 50},
		{54, 154, 50, 100},
		{154, 254, 100, 150},
		{254, 354, 150, 200},
		{354, 424, 200, 300},
		{424, 504, 300, 400},
	}
)

// ComputeIndex converts pollutant concentrations to a 0-500 AQI value.
// PM2.5 is preferred when present; PM10 is the fallback. Absent or
// non-positive concentrations route to DefaultIndex, never to an error:
// this is a total function over its numeric domain.
func ComputeIndex(pm25, pm10 *float64) int {
	if pm25 != nil && *pm25 > 0 {
		return clampIndex(interpolate(*pm25, pm25Breakpoints))
	}
	if pm10 != nil && *pm10 > 0 {
		return clampIndex(interpolate(*pm10, pm10Breakpoints))
	}
	return DefaultIndex
}

func interpolate(c float64, table []breakpoint) float64 {
	for _, bp := range table {
		if c <= bp.cHigh {
			return bp.iLow + (c-bp.cLow)/(bp.cHigh-bp.cLow)*(bp.iHigh-bp.iLow)
		}
	}
	last := table[len(table)-1]
	return last.iLow + (c-last.cLow)/(last.cHigh-last.cLow)*(last.iHigh-last.iLow)
}

func clampIndex(v float64) int {
	i := int(math.Round(v))
	if i < 0 {
		return 0
	}
	if i > MaxIndex {
		return MaxIndex
	}
	return i
}
