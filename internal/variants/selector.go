package variants

import (
	"context"
	"sort"
	"time"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/generate"
	"sitecopy-backend/internal/rules"
	"sitecopy-backend/internal/scoring"
	"sitecopy-backend/internal/shared/telemetry"
)

// DefaultVariantCount caps how many angles one selection run attempts.
const DefaultVariantCount = 3

// Ranked is one scored variant in a selection result.
type Ranked struct {
	Angle      string             `json:"angle"`
	Candidate  content.Candidate  `json:"candidate"`
	Assessment scoring.Assessment `json:"assessment"`
}

// Selection is the outcome of a variant-selection run.
type Selection struct {
	Winner       Ranked   `json:"winner"`
	Ranking      []Ranked `json:"ranking"`
	FailedAngles []string `json:"failedAngles,omitempty"`
	UsedFallback bool     `json:"usedFallback,omitempty"`
	Duration     time.Duration
}

// Selector generates candidates under several angles concurrently, scores
// the survivors, and returns the best. It never returns an error: if every
// generation call fails, a deterministic template fallback wins.
type Selector struct {
	gen          generate.Generator
	assessor     *scoring.Assessor
	rules        *rules.Ruleset
	fallback     *content.FallbackGenerator
	variantCount int
}

// NewSelector constructs a Selector. variantCount <= 0 uses the default cap.
func NewSelector(gen generate.Generator, assessor *scoring.Assessor, rs *rules.Ruleset, fallback *content.FallbackGenerator, variantCount int) *Selector {
	if variantCount <= 0 {
		variantCount = DefaultVariantCount
	}
	return &Selector{gen: gen, assessor: assessor, rules: rs, fallback: fallback, variantCount: variantCount}
}

type angleResult struct {
	angle     Angle
	candidate content.Candidate
	err       error
}

// SelectBest runs the eligible angles concurrently and returns the
// highest-scoring survivor, ties broken by angle priority. On cancellation
// it ranks whatever has arrived so far.
func (s *Selector) SelectBest(ctx context.Context, bctx content.BusinessContext, industry string, angles []Angle) Selection {
	start := time.Now()
	if industry == "" {
		industry = bctx.Industry
	}
	if len(angles) == 0 {
		angles = DefaultAngles()
	}
	eligible := Eligible(angles, bctx)
	if len(eligible) > s.variantCount {
		eligible = eligible[:s.variantCount]
	}

	// Each generation call is independently awaited: a slow or failing call
	// never blocks collection of the others.
	results := make(chan angleResult, len(eligible))
	for _, angle := range eligible {
		go func(a Angle) {
			candidate, err := s.gen.Generate(ctx, generate.PromptSpec{
				Context:   bctx,
				Industry:  industry,
				ToneGuide: s.rules.ToneGuideFor(industry),
				Angle:     a.Instruction,
			})
			results <- angleResult{angle: a, candidate: candidate, err: err}
		}(angle)
	}

	collected := make([]angleResult, 0, len(eligible))
collect:
	for range eligible {
		select {
		case r := <-results:
			collected = append(collected, r)
		case <-ctx.Done():
			// Abandon in-flight calls; rank what we have.
			break collect
		}
	}

	var ranking []Ranked
	var failed []string
	for _, r := range collected {
		if r.err != nil {
			telemetry.Info("variants.angle_failed", map[string]any{
				"angle": r.angle.Name,
				"error": r.err.Error(),
			})
			failed = append(failed, r.angle.Name)
			continue
		}
		ranking = append(ranking, Ranked{
			Angle:      r.angle.Name,
			Candidate:  r.candidate,
			Assessment: s.assessor.Assess(r.candidate, bctx, industry),
		})
	}

	if len(ranking) == 0 {
		fallbackCandidate := s.fallback.Candidate(bctx)
		winner := Ranked{
			Angle:      "fallback",
			Candidate:  fallbackCandidate,
			Assessment: s.assessor.Assess(fallbackCandidate, bctx, industry),
		}
		return Selection{
			Winner:       winner,
			Ranking:      []Ranked{winner},
			FailedAngles: failed,
			UsedFallback: true,
			Duration:     time.Since(start),
		}
	}

	priority := make(map[string]int, len(eligible))
	for _, a := range eligible {
		priority[a.Name] = a.Priority
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].Assessment.OverallScore != ranking[j].Assessment.OverallScore {
			return ranking[i].Assessment.OverallScore > ranking[j].Assessment.OverallScore
		}
		return priority[ranking[i].Angle] < priority[ranking[j].Angle]
	})

	return Selection{
		Winner:       ranking[0],
		Ranking:      ranking,
		FailedAngles: failed,
		Duration:     time.Since(start),
	}
}
