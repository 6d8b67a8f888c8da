package domain

import (
	"fmt"
	"strings"
)

// TargetAQI is the index every zone is asked to plan down to.
const TargetAQI = 30

// DefaultLandmarkCatalogue lists well-known Mumbai locations that generated
// text habitually borrows from unrelated neighbourhoods. Entries matching the
// zone's own name, roads, or parks are removed before the rest become the
// zone's block-list.
var DefaultLandmarkCatalogue = []string{
	"Juhu", "Bandra", "Colaba", "Andheri", "Dadar", "Worli",
	"Marine Lines", "SV Road", "Linking Road", "Hill Road",
	"Juhu Beach Road", "ISKCON Temple", "Carter Road",
}

// PromptConstraints carries a zone's allow-lists and block-list. The
// block-list is also applied to the generated output by FilterCandidates.
type PromptConstraints struct {
	Roads   []string
	Parks   []string
	Blocked []string
}

// BuildConstraints derives a zone's place-name constraints: roads and parks
// split from the zone's comma-separated fields, and the catalogue filtered
// down to landmarks that do not appear (case-insensitive substring) in the
// zone's name, road list, or park list.
func BuildConstraints(zone Zone, catalogue []string) PromptConstraints {
	roads := splitList(zone.MajorRoads)
	parks := splitList(zone.ParksAndOpenSpaces)
	name := strings.ToLower(zone.Name)

	var blocked []string
	for _, landmark := range catalogue {
		l := strings.ToLower(landmark)
		if strings.Contains(name, l) || anyContains(roads, l) || anyContains(parks, l) {
			continue
		}
		blocked = append(blocked, landmark)
	}

	return PromptConstraints{Roads: roads, Parks: parks, Blocked: blocked}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func anyContains(items []string, lowered string) bool {
	for _, item := range items {
		if strings.Contains(strings.ToLower(item), lowered) {
			return true
		}
	}
	return false
}

// BuildPrompt renders the generation prompt for one zone: target reduction,
// every populated descriptive attribute, the allow-lists and block-list,
// strict formatting rules, and one worked example object. Deterministic for
// the same zone and catalogue.
func BuildPrompt(zone Zone, currentAQI int, c PromptConstraints) string {
	var context []string
	if zone.ProximityToSea != "" {
		context = append(context, "Proximity to sea: "+zone.ProximityToSea)
	}
	if zone.GreenSpacePct > 0 {
		context = append(context, fmt.Sprintf("Current green space coverage: %g%%", zone.GreenSpacePct))
	}
	if zone.MajorRoads != "" {
		context = append(context, "Major roads in area: "+zone.MajorRoads)
	}
	if zone.ParksAndOpenSpaces != "" {
		context = append(context, "Existing parks and open spaces: "+zone.ParksAndOpenSpaces)
	}
	if zone.IndustrialAreas != "" {
		context = append(context, "Industrial areas: "+zone.IndustrialAreas)
	}
	if zone.LandUseType != "" {
		context = append(context, "Land use type: "+zone.LandUseType)
	}
	if zone.PopulationDensity != "" {
		context = append(context, "Population density: "+zone.PopulationDensity)
	}

	roads := `None specified - use generic area references like "main roads" or "residential streets"`
	if len(c.Roads) > 0 {
		roads = strings.Join(c.Roads, ", ")
	}
	parks := `None specified - use generic references like "local parks" or "open spaces"`
	if len(c.Parks) > 0 {
		parks = strings.Join(c.Parks, ", ")
	}
	blocked := "None"
	if len(c.Blocked) > 0 {
		blocked = strings.Join(c.Blocked, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are a senior environmental consultant and air quality expert with 20+ years of experience in urban pollution mitigation. You specialize in Mumbai's unique challenges. Create COMPREHENSIVE, TECHNICALLY DETAILED, and HIGHLY LOCALIZED recommendations for THIS SPECIFIC LOCATION ONLY.

TARGET LOCATION: %s
Current AQI: %d
Target AQI: %d
AQI Reduction Needed: %d points

CRITICAL LOCATION-SPECIFIC DATA (USE ONLY THESE EXACT DETAILS - DO NOT ADD ANYTHING ELSE):
%s

ONLY ALLOWED ROADS IN THIS AREA (USE THESE AND ONLY THESE): %s
ONLY ALLOWED PARKS/OPEN SPACES (USE THESE AND ONLY THESE): %s
CRITICAL PROHIBITIONS - DO NOT MENTION THESE LOCATIONS (they are NOT in %s):
%s

ABSOLUTE REQUIREMENTS FOR RECOMMENDATIONS:
1. Each recommendation MUST be unique to %s ONLY - do NOT mention any other Mumbai locations
2. You MUST use ONLY the road names from the "ONLY ALLOWED ROADS" list above. If a road is NOT in that list, DO NOT mention it.
3. You MUST use ONLY the parks/spaces from the "ONLY ALLOWED PARKS" list above. If a park is NOT in that list, DO NOT mention it.
4. NEVER mention locations from the "CRITICAL PROHIBITIONS" list - they are in different areas of Mumbai
5. If no specific roads are provided, use generic terms like "main arterial roads in %s" or "residential streets in %s"
6. If no specific parks are provided, use generic terms like "local parks in %s" or "open spaces in %s"

Provide 7-10 COMPREHENSIVE, TECHNICALLY DETAILED, and UNIQUE recommendations for %s ONLY. Each recommendation must be:

1. Title (15-20 words) - Descriptive, specific, include impact level (High/Medium/Low Impact)
2. Description (5-8 sentences) - MUST include specific technical implementation details, exact locations from allowed lists, why this is critical for %s, how it addresses pollution sources
3. Expected AQI Reduction (number between 5-40)
4. Impact Level (High Impact / Medium Impact / Low Impact)
5. Implementation Timeframe (Short term: 0-6 months / Medium term: 6-18 months / Long term: 18+ months)
6. Estimated Cost (Low: <10L / Medium: 10L-50L / High: >50L)
7. Key Stakeholders (who needs to be involved)

CRITICAL JSON FORMAT REQUIREMENTS:
- Return ONLY valid JSON array format
- Use double quotes for ALL strings
- NO markdown code blocks
- NO additional text before or after the JSON
- Each object MUST have exactly these fields: title, description, aqi_reduction, impact_level, timeframe, cost, stakeholders

Required JSON format (create 7-10 objects):
[
  {
    "title": "Implement Comprehensive Traffic Management - High Impact",
    "description": "Establish congestion pricing zones in [specific road from allowed list] during peak hours and restrict entry of older diesel vehicles. Create dedicated bus rapid transit corridors along [specific road from allowed list] and incentivize electric vehicle adoption through charging infrastructure at [specific locations in %s]. Traffic contributes significantly to Mumbai's air pollution, and %s's traffic patterns make this intervention critical.",
    "aqi_reduction": 35,
    "impact_level": "High Impact",
    "timeframe": "Medium term",
    "cost": "High",
    "stakeholders": "Municipal Corporation, Traffic Police, Transport Department"
  }
]

Return the JSON array now:`,
		zone.Name, currentAQI, TargetAQI, currentAQI-TargetAQI,
		strings.Join(context, "\n"),
		roads, parks, zone.Name, blocked,
		zone.Name, zone.Name, zone.Name, zone.Name, zone.Name,
		zone.Name, zone.Name, zone.Name, zone.Name,
	)
	return b.String()
}
