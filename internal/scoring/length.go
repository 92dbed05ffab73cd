package scoring

import (
	"fmt"
	"strings"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/rules"
)

// LengthScorer checks every candidate field against its configured character
// band and reports the specific deficit or excess.
type LengthScorer struct {
	rules *rules.Ruleset
}

// NewLengthScorer constructs a LengthScorer.
func NewLengthScorer(rs *rules.Ruleset) *LengthScorer {
	return &LengthScorer{rules: rs}
}

// Score evaluates field-length fit across the whole candidate.
func (s *LengthScorer) Score(c content.Candidate) DimensionScore {
	out := DimensionScore{Name: DimLength}
	score := 100

	score -= s.checkField(&out, "headline", c.Headline)
	score -= s.checkField(&out, "subheadline", c.Subheadline)
	score -= s.checkField(&out, "about", c.AboutSnippet)
	score -= s.checkField(&out, "metaDescription", c.MetaDescription)
	score -= s.checkField(&out, "cta", c.CTAPrimary)
	for i, svc := range c.Services {
		if strings.TrimSpace(svc.Description) == "" {
			continue
		}
		score -= s.checkField(&out, fmt.Sprintf("services[%d] (serviceDescription)", i), svc.Description)
	}
	for i, item := range c.WhyUs {
		if strings.TrimSpace(item.Description) == "" {
			continue
		}
		score -= s.checkField(&out, fmt.Sprintf("whyUs[%d]", i), item.Description)
	}

	out.Score = clampScore(score)
	if len(out.Issues) == 0 {
		out.Strengths = append(out.Strengths, "all fields within their length bands")
	}
	return out
}

// checkField returns the penalty for one field and records its issue.
func (s *LengthScorer) checkField(out *DimensionScore, field, value string) int {
	band, ok := s.rules.LengthBands[bandKey(field)]
	if !ok {
		return 0
	}
	value = strings.TrimSpace(value)
	if value == "" {
		// Missing fields are scored by their own dimensions, not here.
		return 0
	}
	n := len([]rune(value))

	switch {
	case n < band.Min:
		out.Issues = append(out.Issues, Issue{
			Kind:       KindLengthViolation,
			Text:       field,
			Severity:   SeverityMedium,
			Suggestion: fmt.Sprintf("%s is %d characters, %d short of the %d minimum.", field, n, band.Min-n, band.Min),
		})
		return 15
	case n > band.Max:
		out.Issues = append(out.Issues, Issue{
			Kind:       KindLengthViolation,
			Text:       field,
			Severity:   SeverityMedium,
			Suggestion: fmt.Sprintf("%s is %d characters, %d over the %d maximum.", field, n, n-band.Max, band.Max),
		})
		return 15
	case band.IdealMin > 0 && n < band.IdealMin:
		out.Issues = append(out.Issues, Issue{
			Kind:       KindLengthViolation,
			Text:       field,
			Severity:   SeverityLow,
			Suggestion: fmt.Sprintf("%s is acceptable at %d characters but %d short of the ideal %d-%d.", field, n, band.IdealMin-n, band.IdealMin, band.IdealMax),
		})
		return 5
	case band.IdealMax > 0 && n > band.IdealMax:
		out.Issues = append(out.Issues, Issue{
			Kind:       KindLengthViolation,
			Text:       field,
			Severity:   SeverityLow,
			Suggestion: fmt.Sprintf("%s is acceptable at %d characters but %d over the ideal %d-%d.", field, n, n-band.IdealMax, band.IdealMin, band.IdealMax),
		})
		return 5
	}
	return 0
}

func bandKey(field string) string {
	if idx := strings.Index(field, "("); idx >= 0 {
		return strings.Trim(field[idx+1:len(field)-1], "() ")
	}
	if idx := strings.Index(field, "["); idx >= 0 {
		return field[:idx]
	}
	return field
}
