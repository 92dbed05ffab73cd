package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

//go:embed data/rules.json
var defaultPack []byte

// CompiledPattern is a ready-to-match pattern with its suggestion.
type CompiledPattern struct {
	Re         *regexp.Regexp
	Suggestion string
}

// CompiledTrigger is an emotional-trigger family with compiled patterns.
type CompiledTrigger struct {
	Patterns []*regexp.Regexp
	Weight   int
}

// Ruleset is the immutable, compiled form of a Pack.
type Ruleset struct {
	Pack

	GenericPatternRes []CompiledPattern
	WeakOpenerRes     []*regexp.Regexp
	VagueMarketingRes []*regexp.Regexp
	TriggerRes        map[string]CompiledTrigger
	SelfRefRe         *regexp.Regexp
	EvidenceRe        *regexp.Regexp
}

// Load parses and compiles the embedded default rule pack.
func Load() (*Ruleset, error) {
	return parse(defaultPack)
}

// LoadFile parses and compiles a rule pack from an override file.
func LoadFile(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	rs, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules: %s: %w", path, err)
	}
	return rs, nil
}

// LoadFromEnv loads the pack at path when non-empty, otherwise the embedded
// defaults.
func LoadFromEnv(path string) (*Ruleset, error) {
	if strings.TrimSpace(path) != "" {
		return LoadFile(path)
	}
	return Load()
}

func parse(data []byte) (*Ruleset, error) {
	var pack Pack
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("decode rule pack: %w", err)
	}
	if pack.SelfRefLimit <= 0 {
		pack.SelfRefLimit = 3
	}
	if pack.EvidenceWindow <= 0 {
		pack.EvidenceWindow = 30
	}
	if pack.QualityThreshold <= 0 {
		pack.QualityThreshold = 78
	}
	if pack.Readability.Min == 0 && pack.Readability.Max == 0 {
		pack.Readability = Band{Min: 55, Max: 75}
	}
	if pack.Weights == (Weights{}) {
		pack.Weights = Weights{Headline: 0.25, Cliche: 0.25, CTA: 0.15, Emotional: 0.15, Temperature: 0.10, Readability: 0.10}
	}

	rs := &Ruleset{
		Pack:       pack,
		TriggerRes: make(map[string]CompiledTrigger, len(pack.Triggers)),
		SelfRefRe:  regexp.MustCompile(`(?i)\b(we|our|us|ourselves)\b`),
		EvidenceRe: compileEvidence(pack.EvidenceTokens),
	}

	for _, p := range pack.GenericPatterns {
		re, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile generic pattern %q: %w", p.Pattern, err)
		}
		rs.GenericPatternRes = append(rs.GenericPatternRes, CompiledPattern{Re: re, Suggestion: p.Suggestion})
	}
	var err error
	if rs.WeakOpenerRes, err = compileAll(pack.WeakOpeners); err != nil {
		return nil, fmt.Errorf("weak openers: %w", err)
	}
	if rs.VagueMarketingRes, err = compileAll(pack.VagueMarketing); err != nil {
		return nil, fmt.Errorf("vague marketing: %w", err)
	}
	for name, family := range pack.Triggers {
		patterns, err := compileAll(family.Patterns)
		if err != nil {
			return nil, fmt.Errorf("trigger family %s: %w", name, err)
		}
		rs.TriggerRes[name] = CompiledTrigger{Patterns: patterns, Weight: family.Weight}
	}
	return rs, nil
}

var defaultEvidenceTokens = []string{"star", "rated", "review", "certified", "licensed", "award", "guarantee"}

// compileEvidence builds the superlative evidence detector from the pack's
// token list. Digits and the star glyph always count as evidence; tokens
// match as whole words.
func compileEvidence(tokens []string) *regexp.Regexp {
	cleaned := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, regexp.QuoteMeta(strings.ToLower(t)))
		}
	}
	if len(cleaned) == 0 {
		cleaned = defaultEvidenceTokens
	}
	return regexp.MustCompile(`(?i)\d|★|\b(?:` + strings.Join(cleaned, "|") + `)\b`)
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Industry returns the profile for an industry key, or a zero profile when
// the industry is unknown.
func (r *Ruleset) Industry(name string) IndustryProfile {
	if r.Industries == nil {
		return IndustryProfile{}
	}
	return r.Industries[normalizeIndustry(name)]
}

// ThresholdFor returns the quality threshold for an industry, falling back to
// the global default.
func (r *Ruleset) ThresholdFor(industry string) int {
	if p := r.Industry(industry); p.QualityThreshold > 0 {
		return p.QualityThreshold
	}
	return r.QualityThreshold
}

// ReadabilityBandFor returns the ideal Flesch band for an industry.
func (r *Ruleset) ReadabilityBandFor(industry string) Band {
	if p := r.Industry(industry); p.Readability.Min != 0 || p.Readability.Max != 0 {
		return p.Readability
	}
	return r.Readability
}

// ToneGuideFor returns the prompt tone guide for an industry, empty when
// none is configured.
func (r *Ruleset) ToneGuideFor(industry string) string {
	return r.Industry(industry).ToneGuide
}

// RemedyFor returns the industry-keyed remediation advice for a missing
// emotional-trigger category.
func (r *Ruleset) RemedyFor(industry, category string) string {
	if p := r.Industry(industry); p.TriggerRemedies != nil {
		if remedy, ok := p.TriggerRemedies[category]; ok {
			return remedy
		}
	}
	return genericRemedies[category]
}

var genericRemedies = map[string]string{
	"pain":         "Name the specific problem customers call about and what it costs them to ignore it.",
	"gain":         "Describe the concrete outcome a customer walks away with.",
	"social_proof": "Reference review counts, ratings, or how many customers were served.",
	"authority":    "Mention licenses, certifications, or years in business.",
	"urgency":      "Give a real reason to act now, such as availability or seasonal demand.",
	"local":        "Name the city or neighborhoods actually served.",
}

// Categories returns the trigger category names in stable order.
func (r *Ruleset) Categories() []string {
	return triggerOrder
}

var triggerOrder = []string{"pain", "gain", "social_proof", "authority", "urgency", "local"}

func normalizeIndustry(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
