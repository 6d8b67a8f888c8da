package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fenceJSONRe = regexp.MustCompile("(?i)```json\n?")
	fenceRe     = regexp.MustCompile("```\n?")

	// Introductory phrases the generator prepends despite instructions.
	// Each pattern consumes the prose up to (but not into) the first bracket.
	introPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^[^\[]*here are[^\[]*`),
		regexp.MustCompile(`(?i)^[^\[]*here is[^\[]*`),
		regexp.MustCompile(`(?i)^[^\[]*the recommendations[^\[]*`),
		regexp.MustCompile(`(?i)^[^\[]*below are[^\[]*`),
		regexp.MustCompile(`(?i)^[^\[]*following are[^\[]*`),
		regexp.MustCompile(`(?i)^[^\[]*these are[^\[]*`),
	}

	leadingPunctRe  = regexp.MustCompile(`^[:\-\s]+`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// SanitizeResponse recovers the JSON array embedded in a raw generation
// response. Order matters: code fences first, then introductory prose, then
// the balanced-bracket extraction, then trailing-comma repair. A truncated
// array (no matching close before end of input) gets a closing bracket
// appended as a best-effort repair.
func SanitizeResponse(raw string) (string, error) {
	cleaned := fenceJSONRe.ReplaceAllString(raw, "")
	cleaned = fenceRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	for _, re := range introPatterns {
		if m := re.FindString(cleaned); m != "" {
			cleaned = strings.TrimSpace(cleaned[len(m):])
			cleaned = leadingPunctRe.ReplaceAllString(cleaned, "")
		}
	}

	first := strings.IndexByte(cleaned, '[')
	if first == -1 {
		return "", fmt.Errorf("no JSON array in response: %w", ErrMalformedOutput)
	}
	cleaned = cleaned[first:]

	// Explicit depth counter over the bytes, independent of any JSON
	// parser's leniency. Truncate at the bracket matching the first '['.
	depth := 0
	last := -1
scan:
	for i := 0; i < len(cleaned); i++ {
		switch cleaned[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				last = i
				break scan
			}
		}
	}
	if last == -1 {
		cleaned += "]"
	} else {
		cleaned = cleaned[:last+1]
	}

	return trailingCommaRe.ReplaceAllString(cleaned, "$1"), nil
}

// ParseCandidates decodes a sanitized response into candidate entries. A
// parse failure is ErrMalformedOutput: nothing is salvaged from an
// unparsable array.
func ParseCandidates(cleaned string) ([]Candidate, error) {
	var candidates []Candidate
	if err := json.Unmarshal([]byte(cleaned), &candidates); err != nil {
		return nil, fmt.Errorf("parse candidates: %v: %w", err, ErrMalformedOutput)
	}
	return candidates, nil
}

// FilterCandidates drops entries that are unusable or violate the zone's
// block-list: missing title or description, aqi_reduction outside [1, 50],
// or a block-listed location appearing (case-insensitive) in the title or
// description. Dropping is per-entry; survivors are returned in order.
func FilterCandidates(candidates []Candidate, blockList []string) []Candidate {
	valid := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.Description) == "" {
			continue
		}
		if c.AQIReduction < 1 || c.AQIReduction > 50 {
			continue
		}
		if mentionsBlocked(c, blockList) {
			continue
		}
		valid = append(valid, c)
	}
	return valid
}

func mentionsBlocked(c Candidate, blockList []string) bool {
	title := strings.ToLower(c.Title)
	desc := strings.ToLower(c.Description)
	for _, blocked := range blockList {
		b := strings.ToLower(blocked)
		if strings.Contains(title, b) || strings.Contains(desc, b) {
			return true
		}
	}
	return false
}

// SanitizeAndValidate runs the full untrusted-output path: sanitize, parse,
// filter. An unparsable response is fatal for the zone (ErrMalformedOutput);
// no partial candidates are salvaged. A fully rejected batch is reported as
// ErrNoValidRecommendations rather than an empty success.
func SanitizeAndValidate(raw string, blockList []string) ([]Candidate, error) {
	cleaned, err := SanitizeResponse(raw)
	if err != nil {
		return nil, err
	}

	candidates, err := ParseCandidates(cleaned)
	if err != nil {
		return nil, err
	}

	valid := FilterCandidates(candidates, blockList)
	if len(valid) == 0 {
		return nil, ErrNoValidRecommendations
	}
	return valid, nil
}
