package scoring

import (
	"fmt"
	"strings"
	"unicode"

	"sitecopy-backend/internal/rules"
)

// CTAScorer scores call-to-action effectiveness from a base of 40, with
// per-phrase weak-CTA penalties and additive strong-pattern bonuses.
type CTAScorer struct {
	rules *rules.Ruleset
}

// NewCTAScorer constructs a CTAScorer.
func NewCTAScorer(rs *rules.Ruleset) *CTAScorer {
	return &CTAScorer{rules: rs}
}

const ctaBaseScore = 40

// Score evaluates a single call to action.
func (s *CTAScorer) Score(cta string) DimensionScore {
	out := DimensionScore{Name: DimCTA}
	trimmed := strings.TrimSpace(cta)
	if trimmed == "" {
		out.Grade = "F"
		out.Issues = append(out.Issues, Issue{
			Kind:       KindEmptyContent,
			Severity:   SeverityCritical,
			Suggestion: "Add a call to action; pages without one convert poorly.",
		})
		return out
	}

	score := ctaBaseScore
	lower := strings.ToLower(trimmed)
	normalized := strings.Trim(lower, ".!?")

	for _, weak := range s.rules.WeakCTAs {
		if normalized == strings.ToLower(weak.Phrase) {
			score -= weak.Penalty
			out.Issues = append(out.Issues, Issue{
				Kind:       KindWeakCTA,
				Text:       trimmed,
				Severity:   SeverityMedium,
				Suggestion: fmt.Sprintf("%q gives no reason to click; lead with a verb and a benefit.", trimmed),
			})
			break
		}
	}

	words := strings.Fields(lower)
	if len(words) > 0 && isWord(words[0], s.rules.ActionVerbs) {
		score += 15
		out.Strengths = append(out.Strengths, fmt.Sprintf("leads with action verb %q", words[0]))
	}
	if word, ok := containsAnyWord(lower, s.rules.UrgencyWords); ok {
		score += 10
		out.Strengths = append(out.Strengths, fmt.Sprintf("carries urgency (%q)", word))
	}
	if word, ok := containsAnyWord(lower, s.rules.BenefitWords); ok {
		score += 15
		out.Strengths = append(out.Strengths, fmt.Sprintf("promises a benefit (%q)", word))
	}
	if hasNumericSpecificity(trimmed) {
		score += 10
		out.Strengths = append(out.Strengths, "includes a specific number or amount")
	}
	if strings.Contains(lower, "your") || strings.Contains(lower, " you") {
		score += 5
		out.Strengths = append(out.Strengths, "personalized wording")
	}
	if len(words) >= 2 && len(words) <= 4 {
		score += 10
		out.Strengths = append(out.Strengths, "ideal length (2-4 words)")
	}
	for _, excellent := range s.rules.ExcellentCTAs {
		if fuzzyEqual(normalized, strings.ToLower(excellent)) {
			score += 20
			out.Strengths = append(out.Strengths, "matches a proven high-converting CTA")
			break
		}
	}

	out.Score = clampScore(score)
	out.Grade = ctaGrade(out.Score)
	return out
}

// ctaGrade uses the CTA-specific bands, which are looser than the composite
// grade bands.
func ctaGrade(score int) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 60:
		return "B"
	case score >= 40:
		return "C"
	case score >= 20:
		return "D"
	default:
		return "F"
	}
}

func isWord(w string, list []string) bool {
	w = strings.Trim(w, ".!?,")
	for _, item := range list {
		if w == strings.ToLower(item) {
			return true
		}
	}
	return false
}

func hasNumericSpecificity(s string) bool {
	if strings.ContainsAny(s, "$%") {
		return true
	}
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// fuzzyEqual tolerates filler-word differences between a CTA and a curated
// phrase ("get a free quote" matches "get free quote").
func fuzzyEqual(a, b string) bool {
	if a == b {
		return true
	}
	return stripFiller(a) == stripFiller(b)
}

func stripFiller(s string) string {
	words := strings.Fields(s)
	out := words[:0]
	for _, w := range words {
		switch w {
		case "a", "an", "the", "your", "my", "our":
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}
