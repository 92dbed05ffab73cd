package scoring

import (
	"fmt"
	"strings"
	"unicode"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/rules"
)

// HeadlineScorer scores headline structure: word-count band, opener
// strength, specificity bonuses, and vague-marketing penalties.
type HeadlineScorer struct {
	rules *rules.Ruleset
}

// NewHeadlineScorer constructs a HeadlineScorer.
func NewHeadlineScorer(rs *rules.Ruleset) *HeadlineScorer {
	return &HeadlineScorer{rules: rs}
}

const (
	headlineIdealMinWords = 5
	headlineIdealMaxWords = 12
)

// Score evaluates a headline against the business context.
func (s *HeadlineScorer) Score(headline string, bctx content.BusinessContext) DimensionScore {
	out := DimensionScore{Name: DimHeadline}
	if strings.TrimSpace(headline) == "" {
		out.Issues = append(out.Issues, Issue{
			Kind:       KindEmptyContent,
			Severity:   SeverityCritical,
			Suggestion: "Write a headline; it is the highest-weighted element on the page.",
		})
		return out
	}

	score := 70
	lower := strings.ToLower(headline)
	words := len(strings.Fields(headline))

	switch {
	case words >= headlineIdealMinWords && words <= headlineIdealMaxWords:
		out.Strengths = append(out.Strengths, fmt.Sprintf("headline length is in the ideal band (%d words)", words))
	case words < 3 || words > 16:
		score -= 20
		out.Issues = append(out.Issues, Issue{
			Kind:       KindLengthViolation,
			Text:       headline,
			Severity:   SeverityMedium,
			Suggestion: fmt.Sprintf("Headline has %d words; aim for %d-%d.", words, headlineIdealMinWords, headlineIdealMaxWords),
		})
	default:
		score -= 10
		out.Issues = append(out.Issues, Issue{
			Kind:       KindLengthViolation,
			Text:       headline,
			Severity:   SeverityLow,
			Suggestion: fmt.Sprintf("Headline has %d words; the ideal band is %d-%d.", words, headlineIdealMinWords, headlineIdealMaxWords),
		})
	}

	for _, re := range s.rules.WeakOpenerRes {
		if match := re.FindString(headline); match != "" {
			score -= 20
			out.Issues = append(out.Issues, Issue{
				Kind:       KindWeakOpener,
				Text:       strings.TrimSpace(match),
				Severity:   SeverityHigh,
				Suggestion: "Open with the offer or outcome, not a greeting or self-introduction.",
			})
			break
		}
	}

	for _, re := range s.rules.VagueMarketingRes {
		if match := re.FindString(headline); match != "" {
			score -= 15
			out.Issues = append(out.Issues, Issue{
				Kind:       KindVagueLanguage,
				Text:       strings.TrimSpace(match),
				Severity:   SeverityMedium,
				Suggestion: "Swap vague marketing language for something a customer could verify.",
			})
			break
		}
	}

	// Bonus signals are additive and independent.
	if strings.IndexFunc(headline, unicode.IsDigit) >= 0 {
		score += 5
		out.Strengths = append(out.Strengths, "contains a concrete number")
	}
	if city := strings.ToLower(strings.TrimSpace(bctx.City)); city != "" && strings.Contains(lower, city) {
		score += 5
		out.Strengths = append(out.Strengths, "names the city")
	}
	if word, ok := containsAnyWord(lower, s.rules.PowerWords); ok {
		score += 5
		out.Strengths = append(out.Strengths, fmt.Sprintf("uses power word %q", word))
	}
	if word, ok := containsAnyWord(lower, s.rules.TrustKeywords); ok {
		score += 3
		out.Strengths = append(out.Strengths, fmt.Sprintf("carries trust keyword %q", word))
	}

	out.Score = clampScore(score)
	return out
}

func containsAnyWord(lower string, words []string) (string, bool) {
	for _, w := range words {
		if strings.Contains(lower, strings.ToLower(w)) {
			return w, true
		}
	}
	return "", false
}
