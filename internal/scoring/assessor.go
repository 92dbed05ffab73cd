package scoring

import (
	"math"
	"sort"
	"strings"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/rules"
)

// Assessor combines the phrase matcher and every dimension scorer into one
// composite assessment. It is pure: identical candidate and context always
// produce an identical Assessment, so it is safe to call concurrently.
type Assessor struct {
	rules       *rules.Ruleset
	matcher     *PhraseMatcher
	headline    *HeadlineScorer
	cta         *CTAScorer
	emotional   *EmotionalScorer
	temperature *TemperatureScorer
	readability *ReadabilityScorer
	length      *LengthScorer
	tone        *ToneScorer
}

// NewAssessor constructs an Assessor over an immutable rule set.
func NewAssessor(rs *rules.Ruleset) *Assessor {
	return &Assessor{
		rules:       rs,
		matcher:     NewPhraseMatcher(rs),
		headline:    NewHeadlineScorer(rs),
		cta:         NewCTAScorer(rs),
		emotional:   NewEmotionalScorer(rs),
		temperature: NewTemperatureScorer(rs),
		readability: NewReadabilityScorer(rs),
		length:      NewLengthScorer(rs),
		tone:        NewToneScorer(rs),
	}
}

// Matcher exposes the phrase matcher for callers that need raw issue scans.
func (a *Assessor) Matcher() *PhraseMatcher {
	return a.matcher
}

// Threshold returns the publish quality threshold for an industry.
func (a *Assessor) Threshold(industry string) int {
	return a.rules.ThresholdFor(industry)
}

const (
	publishMinOverall  = 65
	publishMinHeadline = 60
)

// Assess scores a candidate against its business context for an industry.
// Missing fields degrade their dimension to zero rather than failing.
func (a *Assessor) Assess(c content.Candidate, bctx content.BusinessContext, industry string) Assessment {
	if industry == "" {
		industry = bctx.Industry
	}

	if c.IsEmpty() {
		return Assessment{
			OverallScore: 0,
			Grade:        GradeFor(0),
			PublishReady: false,
			Dimensions: map[string]DimensionScore{
				DimCliche: {Name: DimCliche, Issues: []Issue{{
					Kind:       KindEmptyContent,
					Severity:   SeverityCritical,
					Suggestion: "Candidate has no content.",
				}}},
			},
			Recommendations: []string{"Candidate has no content."},
		}
	}

	core := c.CoreText()
	phraseIssues := a.matcher.Check(core, bctx)
	clicheCount := ClicheCount(phraseIssues)
	clicheScore := 100 - 25*clicheCount
	if clicheScore < 0 {
		clicheScore = 0
	}

	dims := map[string]DimensionScore{
		DimCliche: {
			Name:   DimCliche,
			Score:  clicheScore,
			Issues: phraseIssues,
		},
		DimHeadline:    a.headline.Score(c.Headline, bctx),
		DimCTA:         a.cta.Score(c.CTAPrimary),
		DimEmotional:   a.emotional.Score(core, industry),
		DimTemperature: a.temperature.Score(core, bctx),
		DimReadability: a.readability.Score(core, industry),
		DimLength:      a.length.Score(c),
		DimTone:        a.tone.Score(core, industry),
	}

	w := a.rules.Weights
	overall := float64(dims[DimHeadline].Score)*w.Headline +
		float64(clicheScore)*w.Cliche +
		float64(dims[DimCTA].Score)*w.CTA +
		float64(dims[DimEmotional].Score)*w.Emotional +
		float64(SymmetricScore(dims[DimTemperature].Score))*w.Temperature +
		float64(dims[DimReadability].Score)*w.Readability
	overallScore := clampScore(int(math.Round(overall)))

	return Assessment{
		OverallScore: overallScore,
		Grade:        GradeFor(overallScore),
		PublishReady: overallScore >= publishMinOverall &&
			clicheCount == 0 &&
			dims[DimHeadline].Score >= publishMinHeadline,
		ClicheCount:     clicheCount,
		Dimensions:      dims,
		Recommendations: buildRecommendations(dims),
	}
}

// buildRecommendations flattens dimension issues into a deduped,
// severity-ranked, capped advice list.
func buildRecommendations(dims map[string]DimensionScore) []string {
	type ranked struct {
		severity Severity
		dim      string
		text     string
	}

	dimNames := make([]string, 0, len(dims))
	for name := range dims {
		dimNames = append(dimNames, name)
	}
	sort.Strings(dimNames)

	seen := make(map[string]bool)
	var candidates []ranked
	for _, name := range dimNames {
		for _, issue := range dims[name].Issues {
			suggestion := strings.TrimSpace(issue.Suggestion)
			if suggestion == "" || seen[suggestion] {
				continue
			}
			seen[suggestion] = true
			candidates = append(candidates, ranked{severity: issue.Severity, dim: name, text: suggestion})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].severity.Penalty() > candidates[j].severity.Penalty()
	})
	if len(candidates) > 7 {
		candidates = candidates[:7]
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.text)
	}
	return out
}
