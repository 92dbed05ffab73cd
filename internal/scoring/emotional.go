package scoring

import (
	"fmt"
	"regexp"

	"sitecopy-backend/internal/rules"
)

// EmotionalScorer measures how many emotional-trigger categories the copy
// hits, weighted per category. Missing categories come back with
// industry-keyed remediation advice.
type EmotionalScorer struct {
	rules *rules.Ruleset
}

// NewEmotionalScorer constructs an EmotionalScorer.
func NewEmotionalScorer(rs *rules.Ruleset) *EmotionalScorer {
	return &EmotionalScorer{rules: rs}
}

// Score evaluates the concatenated core copy for an industry.
func (s *EmotionalScorer) Score(text, industry string) DimensionScore {
	out := DimensionScore{Name: DimEmotional}
	if text == "" {
		out.Issues = append(out.Issues, Issue{
			Kind:     KindEmptyContent,
			Severity: SeverityCritical,
		})
		return out
	}

	total := 0
	hit := 0
	for _, category := range s.rules.Categories() {
		family, ok := s.rules.TriggerRes[category]
		if !ok {
			continue
		}
		total += family.Weight
		if matchesAny(text, family.Patterns) {
			hit += family.Weight
			out.Strengths = append(out.Strengths, fmt.Sprintf("hits %s trigger", category))
			continue
		}
		out.Issues = append(out.Issues, Issue{
			Kind:       KindMissingTrigger,
			Text:       category,
			Severity:   SeverityLow,
			Suggestion: s.rules.RemedyFor(industry, category),
		})
	}
	if total == 0 {
		return out
	}
	out.Score = clampScore(hit * 100 / total)
	return out
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
