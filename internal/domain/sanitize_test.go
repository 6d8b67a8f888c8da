package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoEntryResponse = "Here are the recommendations for the zone:\n" +
	"```json\n" +
	`[
  {"title": "Roadside Greening - Medium Impact", "description": "Plant native trees along the arterial roads.", "aqi_reduction": 12, "impact_level": "Medium Impact", "timeframe": "Medium term", "cost": "Low", "stakeholders": "Municipal Corporation"},
  {"title": "Dust Control at Construction Sites - High Impact", "description": "Mandate mist cannons and barriers.", "aqi_reduction": 20, "impact_level": "High Impact", "timeframe": "Short term", "cost": "Medium", "stakeholders": "Builders Association"},
]` + "\n```\nLet me know if you need more detail."

func TestSanitizeAndValidate_RoundTrip(t *testing.T) {
	candidates, err := SanitizeAndValidate(twoEntryResponse, nil)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "Roadside Greening - Medium Impact", candidates[0].Title)
	assert.Equal(t, float64(20), candidates[1].AQIReduction)
}

func TestSanitizeResponse_TruncatedArrayRepaired(t *testing.T) {
	raw := `[{"title": "A", "description": "B", "aqi_reduction": 10}`
	cleaned, err := SanitizeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, `[{"title": "A", "description": "B", "aqi_reduction": 10}]`, cleaned)

	candidates, err := SanitizeAndValidate(raw, nil)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestSanitizeResponse_TruncatesAtMatchingBracket(t *testing.T) {
	cleaned, err := SanitizeResponse(`prose [1, [2], 3] trailing [4]`)
	require.NoError(t, err)
	assert.Equal(t, `[1, [2], 3]`, cleaned)
}

func TestSanitizeResponse_NoArray(t *testing.T) {
	_, err := SanitizeResponse("I could not produce recommendations for this zone.")
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestSanitizeAndValidate_UnparsableIsFatal(t *testing.T) {
	_, err := SanitizeAndValidate(`[{"title": "A", "description": }]`, nil)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestFilterCandidates(t *testing.T) {
	good := Candidate{Title: "T", Description: "D", AQIReduction: 10}
	tests := []struct {
		name      string
		candidate Candidate
		blockList []string
		kept      bool
	}{
		{"valid", good, nil, true},
		{"missing title", Candidate{Description: "D", AQIReduction: 10}, nil, false},
		{"blank description", Candidate{Title: "T", Description: "  ", AQIReduction: 10}, nil, false},
		{"reduction too low", Candidate{Title: "T", Description: "D", AQIReduction: 0}, nil, false},
		{"reduction too high", Candidate{Title: "T", Description: "D", AQIReduction: 51}, nil, false},
		{"blocked in description", Candidate{Title: "T", Description: "Extend the metro to BANDRA station.", AQIReduction: 10}, []string{"Bandra"}, false},
		{"blocked in title", Candidate{Title: "Learn from Colaba", Description: "D", AQIReduction: 10}, []string{"Colaba"}, false},
		{"block-list miss", good, []string{"Bandra"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept := FilterCandidates([]Candidate{tt.candidate}, tt.blockList)
			if tt.kept {
				assert.Len(t, kept, 1)
			} else {
				assert.Empty(t, kept)
			}
		})
	}
}

func TestFilterCandidates_KeepsOrder(t *testing.T) {
	a := Candidate{Title: "first", Description: "D", AQIReduction: 5}
	bad := Candidate{Title: "", Description: "D", AQIReduction: 5}
	b := Candidate{Title: "second", Description: "D", AQIReduction: 5}

	kept := FilterCandidates([]Candidate{a, bad, b}, nil)
	require.Len(t, kept, 2)
	assert.Equal(t, "first", kept[0].Title)
	assert.Equal(t, "second", kept[1].Title)
}

func TestSanitizeAndValidate_AllRejected(t *testing.T) {
	raw := `[{"title": "Visit Bandra", "description": "All about Bandra.", "aqi_reduction": 10}]`
	_, err := SanitizeAndValidate(raw, []string{"Bandra"})
	assert.ErrorIs(t, err, ErrNoValidRecommendations)
}

func TestSanitizeAndValidate_EmptyArray(t *testing.T) {
	_, err := SanitizeAndValidate("[]", nil)
	assert.ErrorIs(t, err, ErrNoValidRecommendations)
}
