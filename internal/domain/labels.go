package domain

import "strings"

const (
	RiskConservative = "conservative"
	RiskModerate     = "moderate"
	RiskAggressive   = "aggressive"

	ModeFast     = "fast"
	ModeAccurate = "accurate"
)

var riskSynonyms = map[string]string{
	"conservative": RiskConservative,
	"moderate":     RiskModerate,
	"aggressive":   RiskAggressive,
	"low":          RiskConservative,
	"medium":       RiskModerate,
	"high":         RiskAggressive,
}

// CanonicalRisk maps a caller-supplied risk label onto the canonical set,
// defaulting to moderate.
func CanonicalRisk(risk string) string {
	if canonical, ok := riskSynonyms[strings.ToLower(strings.TrimSpace(risk))]; ok {
		return canonical
	}
	return RiskModerate
}

// CanonicalMode maps a caller-supplied mode onto {fast, accurate}; "full"
// and "deep" are accepted aliases for accurate.
func CanonicalMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "accurate", "full", "deep":
		return ModeAccurate
	default:
		return ModeFast
	}
}
