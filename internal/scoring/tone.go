package scoring

import (
	"fmt"
	"strings"

	"sitecopy-backend/internal/rules"
)

// ToneScorer matches copy against an industry voice profile: preferred
// vocabulary earns a capped bonus, avoided vocabulary a penalty, and
// emotional-hook phrases a bonus.
type ToneScorer struct {
	rules *rules.Ruleset
}

// NewToneScorer constructs a ToneScorer.
func NewToneScorer(rs *rules.Ruleset) *ToneScorer {
	return &ToneScorer{rules: rs}
}

const (
	tonePreferredBonus = 6
	tonePreferredCap   = 30
	toneAvoidedPenalty = 10
	toneHookBonus      = 10
)

// Score evaluates voice fit for an industry. Unknown industries score a
// neutral 70 with no feedback.
func (s *ToneScorer) Score(text, industry string) DimensionScore {
	out := DimensionScore{Name: DimTone}
	profile := s.rules.Industry(industry).Voice
	if strings.TrimSpace(text) == "" {
		out.Grade = "F"
		out.Issues = append(out.Issues, Issue{Kind: KindEmptyContent, Severity: SeverityCritical})
		return out
	}
	if len(profile.Preferred) == 0 && len(profile.Avoided) == 0 && len(profile.Hooks) == 0 {
		out.Score = 70
		out.Grade = GradeFor(out.Score)
		return out
	}

	score := 60
	lower := strings.ToLower(text)

	bonus := 0
	for _, word := range profile.Preferred {
		if strings.Contains(lower, strings.ToLower(word)) {
			bonus += tonePreferredBonus
			out.Strengths = append(out.Strengths, fmt.Sprintf("uses industry vocabulary %q", word))
		}
	}
	if bonus > tonePreferredCap {
		bonus = tonePreferredCap
	}
	score += bonus

	for _, word := range profile.Avoided {
		if strings.Contains(lower, strings.ToLower(word)) {
			score -= toneAvoidedPenalty
			out.Issues = append(out.Issues, Issue{
				Kind:       KindToneMismatch,
				Text:       word,
				Severity:   SeverityMedium,
				Suggestion: fmt.Sprintf("%q is off-voice for %s copy; cut or replace it.", word, industry),
			})
		}
	}

	for _, hook := range profile.Hooks {
		if strings.Contains(lower, strings.ToLower(hook)) {
			score += toneHookBonus
			out.Strengths = append(out.Strengths, fmt.Sprintf("uses emotional hook %q", hook))
			break
		}
	}

	out.Score = clampScore(score)
	out.Grade = GradeFor(out.Score)
	return out
}
