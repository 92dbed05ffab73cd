package scoring

import (
	"fmt"
	"strings"

	"sitecopy-backend/internal/rules"
)

// ReadabilityScorer scores Flesch Reading Ease against an industry-keyed
// ideal band.
type ReadabilityScorer struct {
	rules *rules.Ruleset
}

// NewReadabilityScorer constructs a ReadabilityScorer.
func NewReadabilityScorer(rs *rules.Ruleset) *ReadabilityScorer {
	return &ReadabilityScorer{rules: rs}
}

// Score evaluates the core copy's reading ease for an industry.
func (s *ReadabilityScorer) Score(text, industry string) DimensionScore {
	out := DimensionScore{Name: DimReadability}
	if strings.TrimSpace(text) == "" {
		out.Issues = append(out.Issues, Issue{Kind: KindEmptyContent, Severity: SeverityCritical})
		return out
	}

	flesch := FleschReadingEase(text)
	band := s.rules.ReadabilityBandFor(industry)

	switch {
	case flesch >= float64(band.Min) && flesch <= float64(band.Max):
		out.Score = 100
		out.Strengths = append(out.Strengths, fmt.Sprintf("reading ease %.0f sits in the %d-%d target band", flesch, band.Min, band.Max))
	case flesch < float64(band.Min):
		out.Score = clampScore(100 - 2*int(float64(band.Min)-flesch))
		out.Issues = append(out.Issues, Issue{
			Kind:       KindReadabilityDrift,
			Text:       fmt.Sprintf("reading ease %.0f", flesch),
			Severity:   SeverityLow,
			Suggestion: "Copy reads too dense; shorten sentences and prefer plain words.",
		})
	default:
		out.Score = clampScore(100 - 2*int(flesch-float64(band.Max)))
		out.Issues = append(out.Issues, Issue{
			Kind:       KindReadabilityDrift,
			Text:       fmt.Sprintf("reading ease %.0f", flesch),
			Severity:   SeverityLow,
			Suggestion: "Copy reads choppy or oversimplified; vary sentence length.",
		})
	}
	return out
}

// FleschReadingEase computes 206.835 - 1.015*(words/sentences) -
// 84.6*(syllables/words), clamped to [0,100].
func FleschReadingEase(text string) float64 {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !isLetter(r) && r != '\'' && r != '-'
	})
	wordCount := 0
	syllables := 0
	for _, w := range words {
		if !hasLetter(w) {
			continue
		}
		wordCount++
		syllables += countSyllables(w)
	}
	if wordCount == 0 {
		return 0
	}
	sentences := countSentences(text)
	score := 206.835 - 1.015*(float64(wordCount)/float64(sentences)) - 84.6*(float64(syllables)/float64(wordCount))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// countSyllables approximates syllables as vowel groups, with a silent
// trailing-e correction. Every word counts at least one.
func countSyllables(word string) int {
	w := strings.ToLower(strings.Trim(word, "'-"))
	if w == "" {
		return 1
	}
	count := 0
	prevVowel := false
	for _, r := range w {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	if strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}

func countSentences(text string) int {
	n := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func hasLetter(s string) bool {
	for _, r := range s {
		if isLetter(r) {
			return true
		}
	}
	return false
}
