package scoring

import (
	"fmt"
	"strings"
	"unicode"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/rules"
)

// TemperatureScorer measures how "hot" or "cold" copy reads. Cold copy is
// generic boilerplate; hot copy is hype. Both extremes are defects: the
// composite score penalizes distance from neutral in either direction.
type TemperatureScorer struct {
	rules *rules.Ruleset
}

// NewTemperatureScorer constructs a TemperatureScorer.
func NewTemperatureScorer(rs *rules.Ruleset) *TemperatureScorer {
	return &TemperatureScorer{rules: rs}
}

const temperatureNeutral = 50

// Score evaluates the copy's temperature. The returned Score is the raw
// temperature on a 0-100 axis, not a quality score; use SymmetricScore for
// composite folding.
func (s *TemperatureScorer) Score(text string, bctx content.BusinessContext) DimensionScore {
	out := DimensionScore{Name: DimTemperature}
	if strings.TrimSpace(text) == "" {
		out.Score = 0
		out.Issues = append(out.Issues, Issue{Kind: KindEmptyContent, Severity: SeverityCritical})
		return out
	}

	temp := temperatureNeutral
	lower := strings.ToLower(text)

	for _, indicator := range s.rules.ColdIndicators {
		if strings.Contains(lower, strings.ToLower(indicator)) {
			temp -= 10
			out.Issues = append(out.Issues, Issue{
				Kind:       KindTemperatureSkew,
				Text:       indicator,
				Severity:   SeverityMedium,
				Suggestion: "Boilerplate phrasing reads cold; replace it with copy about this business.",
			})
		}
	}
	missingAnchors := 0
	if city := strings.ToLower(strings.TrimSpace(bctx.City)); city == "" || !strings.Contains(lower, city) {
		missingAnchors++
	}
	if name := strings.ToLower(strings.TrimSpace(bctx.BusinessName)); name == "" || !strings.Contains(lower, name) {
		missingAnchors++
	}
	if strings.IndexFunc(text, unicode.IsDigit) < 0 {
		missingAnchors++
	}
	temp -= missingAnchors * 5

	if strings.Contains(text, "!!") {
		temp += 15
		out.Issues = append(out.Issues, Issue{
			Kind:       KindTemperatureSkew,
			Text:       "!!",
			Severity:   SeverityMedium,
			Suggestion: "Stacked exclamation marks read as hype; one is plenty.",
		})
	}
	for _, phrase := range s.rules.FalseUrgency {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			temp += 10
			out.Issues = append(out.Issues, Issue{
				Kind:       KindTemperatureSkew,
				Text:       phrase,
				Severity:   SeverityMedium,
				Suggestion: "Manufactured urgency erodes trust; give a real reason to act now.",
			})
		}
	}
	if n := countSuperlatives(lower, s.rules.Superlatives); n >= 3 {
		temp += 5 * (n - 2)
		out.Issues = append(out.Issues, Issue{
			Kind:       KindTemperatureSkew,
			Text:       fmt.Sprintf("%d superlatives", n),
			Severity:   SeverityMedium,
			Suggestion: "Dense superlatives overheat the copy; keep one and prove it.",
		})
	}

	out.Score = clampScore(temp)
	band := TemperatureBand(out.Score)
	if band == "neutral" || band == "warm" {
		out.Strengths = append(out.Strengths, fmt.Sprintf("temperature reads %s", band))
	}
	return out
}

// TemperatureBand classifies a temperature into one of five ordered bands.
func TemperatureBand(temp int) string {
	switch {
	case temp < 25:
		return "cold"
	case temp < 45:
		return "cool"
	case temp <= 55:
		return "neutral"
	case temp <= 75:
		return "warm"
	default:
		return "hot"
	}
}

// SymmetricScore folds a raw temperature into a 0-100 quality score by
// penalizing distance from the neutral midpoint in both directions, so
// neither extreme is better.
func SymmetricScore(temp int) int {
	dist := temp - temperatureNeutral
	if dist < 0 {
		dist = -dist
	}
	return clampScore(100 - 2*dist)
}

func countSuperlatives(lower string, superlatives []string) int {
	n := 0
	for _, sup := range superlatives {
		n += strings.Count(lower, strings.ToLower(sup))
	}
	return n
}
