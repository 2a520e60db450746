package validation

import (
	"sort"
	"strings"
)

// injectionKeywords suggest an attempt to steer the model from inside user text.
// The list is a heuristic for logging only; prompts already quote user content.
var injectionKeywords = []string{
	"ignore previous",
	"ignore all",
	"ignore the above",
	"disregard above",
	"disregard previous",
	"forget everything",
	"system prompt",
	"new instructions",
	"you are now",
	"act as",
	"pretend to be",
}

// InjectionFinding is one request field containing suspicious phrases.
type InjectionFinding struct {
	Field    string
	Keywords []string
}

// ScanForInjection checks each field value for injection keywords. Findings are
// ordered by field name. It never rejects a request.
func ScanForInjection(fields map[string]string) []InjectionFinding {
	var findings []InjectionFinding
	for field, value := range fields {
		lower := strings.ToLower(value)
		var hits []string
		for _, kw := range injectionKeywords {
			if strings.Contains(lower, kw) {
				hits = append(hits, kw)
			}
		}
		if len(hits) > 0 {
			findings = append(findings, InjectionFinding{Field: field, Keywords: hits})
		}
	}
	sort.Slice(findings, func(i, j int) bool { return findings[i].Field < findings[j].Field })
	return findings
}
