package models

import "strings"

// Severity covers both scales stored on events: the current four-level
// scale and the legacy three-level one written by older clients.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"

	SeverityLegacyLow    Severity = "low"
	SeverityLegacyMedium Severity = "medium"
	SeverityLegacyHigh   Severity = "high"
)

var CurrentSeverities = []Severity{SeverityMild, SeverityModerate, SeveritySevere, SeverityCritical}

var legacyToCurrent = map[Severity]Severity{
	SeverityLegacyLow:    SeverityMild,
	SeverityLegacyMedium: SeverityModerate,
	SeverityLegacyHigh:   SeveritySevere,
}

var currentToLegacy = map[Severity]Severity{
	SeverityMild:     SeverityLegacyLow,
	SeverityModerate: SeverityLegacyMedium,
	SeveritySevere:   SeverityLegacyHigh,
	SeverityCritical: SeverityLegacyHigh,
}

func ParseSeverity(raw string) (Severity, bool) {
	value := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if value.IsCurrent() || value.IsLegacy() {
		return value, true
	}
	return "", false
}

func (s Severity) IsCurrent() bool {
	_, ok := currentToLegacy[s]
	return ok
}

func (s Severity) IsLegacy() bool {
	_, ok := legacyToCurrent[s]
	return ok
}

// Current maps s onto the four-level scale. Unknown values map to "".
func (s Severity) Current() Severity {
	if s.IsCurrent() {
		return s
	}
	return legacyToCurrent[s]
}

// Legacy maps s onto the three-level scale; critical folds into high.
func (s Severity) Legacy() Severity {
	if s.IsLegacy() {
		return s
	}
	return currentToLegacy[s]
}
