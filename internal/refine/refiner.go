package refine

import (
	"context"
	"strings"
	"time"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/generate"
	"sitecopy-backend/internal/rules"
	"sitecopy-backend/internal/scoring"
	"sitecopy-backend/internal/shared/telemetry"
)

// Params bounds one refinement run. Zero values take the configured
// defaults; the quality threshold additionally honors per-industry
// overrides from the rule pack.
type Params struct {
	QualityThreshold  int `json:"qualityThreshold,omitempty"`
	MaxPasses         int `json:"maxPasses,omitempty"`
	MaxRetriesPerPass int `json:"maxRetriesPerPass,omitempty"`
}

const (
	DefaultMaxPasses         = 3
	DefaultMaxRetriesPerPass = 2
)

// Outcome labels why a run stopped. Budget exhaustion is an expected
// terminal state, not an error.
type Outcome string

const (
	OutcomeThresholdMet    Outcome = "threshold_met"
	OutcomeBudgetExhausted Outcome = "budget_exhausted"
	OutcomeCancelled       Outcome = "cancelled"
)

// Result is the terminal state of a refinement run. AfterScore is never
// below BeforeScore: the do-no-harm gate discards regressions.
type Result struct {
	Improved    bool               `json:"improved"`
	Best        content.Candidate  `json:"bestCandidate"`
	BeforeScore int                `json:"beforeScore"`
	AfterScore  int                `json:"afterScore"`
	PassScores  []int              `json:"passScores"`
	Attempts    int                `json:"attempts"`
	Duration    time.Duration      `json:"duration"`
	Outcome     Outcome            `json:"outcome"`
	Final       scoring.Assessment `json:"finalAssessment"`
	Unresolved  []scoring.Issue    `json:"unresolvedIssues,omitempty"`
}

// Refiner drives the bounded hill-climbing loop: regenerate, re-score,
// keep only strict improvements, stop at the threshold or the call budget.
type Refiner struct {
	gen      generate.Generator
	assessor *scoring.Assessor
	rules    *rules.Ruleset
}

// NewRefiner constructs a Refiner.
func NewRefiner(gen generate.Generator, assessor *scoring.Assessor, rs *rules.Ruleset) *Refiner {
	return &Refiner{gen: gen, assessor: assessor, rules: rs}
}

// passState is the loop's fold accumulator. Each pass returns a new value
// instead of mutating shared variables.
type passState struct {
	best          content.Candidate
	bestAssess    scoring.Assessment
	working       content.Candidate
	workingAssess scoring.Assessment
	attempts      int
	passScores    []int
}

// Refine improves a baseline candidate within a hard call budget of
// maxPasses*(maxRetriesPerPass+1) generator calls. It never returns an
// error: every failure mode still yields a usable candidate, and on
// cancellation the best candidate found so far comes back.
func (r *Refiner) Refine(ctx context.Context, baseline content.Candidate, bctx content.BusinessContext, industry string, params Params) Result {
	start := time.Now()
	if industry == "" {
		industry = bctx.Industry
	}
	params = r.withDefaults(params, industry)

	baselineAssess := r.assessor.Assess(baseline, bctx, industry)
	state := passState{
		best:          baseline,
		bestAssess:    baselineAssess,
		working:       baseline,
		workingAssess: baselineAssess,
	}
	beforeScore := baselineAssess.OverallScore
	outcome := OutcomeBudgetExhausted

	for pass := 1; pass <= params.MaxPasses; pass++ {
		// The first pass always attempts one improvement, even above the
		// threshold: regeneration is cheap relative to a better page, and
		// the do-no-harm gate discards anything worse.
		if pass > 1 && state.bestAssess.OverallScore >= params.QualityThreshold {
			outcome = OutcomeThresholdMet
			break
		}
		if ctx.Err() != nil {
			outcome = OutcomeCancelled
			break
		}

		state = r.runPass(ctx, state, baseline, bctx, industry, params, pass)
	}
	if outcome == OutcomeBudgetExhausted && state.bestAssess.OverallScore >= params.QualityThreshold {
		outcome = OutcomeThresholdMet
	}
	if ctx.Err() != nil {
		outcome = OutcomeCancelled
	}

	result := Result{
		Improved:    state.bestAssess.OverallScore > beforeScore,
		Best:        state.best,
		BeforeScore: beforeScore,
		AfterScore:  state.bestAssess.OverallScore,
		PassScores:  state.passScores,
		Attempts:    state.attempts,
		Duration:    time.Since(start),
		Outcome:     outcome,
		Final:       state.bestAssess,
	}
	if !state.bestAssess.PublishReady {
		result.Unresolved = collectIssues(state.bestAssess)
	}
	return result
}

// runPass executes one pass: derive feedback from the working candidate's
// assessment, spend up to maxRetriesPerPass+1 generator calls to obtain a
// scoreable candidate, then apply the do-no-harm gate.
func (r *Refiner) runPass(ctx context.Context, state passState, baseline content.Candidate, bctx content.BusinessContext, industry string, params Params, pass int) passState {
	feedback := BuildFeedback(state.workingAssess)

	var scored *scoring.Assessment
	var candidate content.Candidate

	for attempt := 0; attempt <= params.MaxRetriesPerPass; attempt++ {
		if ctx.Err() != nil {
			break
		}
		state.attempts++
		generated, err := r.gen.Generate(ctx, generate.PromptSpec{
			Context:   bctx,
			Industry:  industry,
			ToneGuide: r.rules.ToneGuideFor(industry),
			Working:   &state.working,
			Feedback:  feedback,
		})
		if err != nil {
			// Generation and parse failures are recovered locally: they
			// consume one attempt and never abort the pass.
			telemetry.Info("refine.attempt_failed", map[string]any{
				"pass":    pass,
				"attempt": attempt + 1,
				"error":   err.Error(),
			})
			continue
		}
		generated = generated.WithProtectedFrom(baseline)

		phraseIssues := r.assessor.Matcher().Check(generated.CoreText(), bctx)
		if scoring.HasBlockingCliche(phraseIssues) && attempt < params.MaxRetriesPerPass {
			// Still carrying a high-severity cliche: refresh the feedback
			// with the newly named phrases and retry within this pass.
			feedback = mergeFeedback(feedback, phraseIssues)
			continue
		}

		assess := r.assessor.Assess(generated, bctx, industry)
		scored = &assess
		candidate = generated
		break
	}

	if scored == nil {
		// Every attempt in this pass failed; carry state forward untouched.
		state.passScores = append(state.passScores, state.bestAssess.OverallScore)
		return state
	}

	state.passScores = append(state.passScores, scored.OverallScore)
	telemetry.Info("refine.pass", map[string]any{
		"pass":       pass,
		"score":      scored.OverallScore,
		"best_score": state.bestAssess.OverallScore,
		"accepted":   scored.OverallScore > state.bestAssess.OverallScore,
	})

	// Do-no-harm gate: only a strictly better score replaces best, and only
	// then does the working candidate advance.
	if scored.OverallScore > state.bestAssess.OverallScore {
		state.best = candidate
		state.bestAssess = *scored
		state.working = candidate
		state.workingAssess = *scored
	}
	return state
}

func (r *Refiner) withDefaults(p Params, industry string) Params {
	if p.QualityThreshold <= 0 {
		p.QualityThreshold = r.rules.ThresholdFor(industry)
	}
	if p.MaxPasses <= 0 {
		p.MaxPasses = DefaultMaxPasses
	}
	if p.MaxRetriesPerPass < 0 {
		p.MaxRetriesPerPass = 0
	} else if p.MaxRetriesPerPass == 0 {
		p.MaxRetriesPerPass = DefaultMaxRetriesPerPass
	}
	return p
}

// mergeFeedback prepends the freshly named cliches to the existing feedback
// so the retry prompt leads with them.
func mergeFeedback(feedback []string, issues []scoring.Issue) []string {
	var names []string
	for _, issue := range issues {
		if issue.Kind == scoring.KindCliche {
			names = append(names, "\""+issue.Text+"\"")
		}
	}
	if len(names) == 0 {
		return feedback
	}
	head := "Your last draft still used banned phrases: " + strings.Join(names, ", ") + ". Remove them completely."
	out := make([]string, 0, len(feedback)+1)
	out = append(out, head)
	out = append(out, feedback...)
	return out
}

func collectIssues(assess scoring.Assessment) []scoring.Issue {
	var out []scoring.Issue
	for _, name := range []string{
		scoring.DimCliche, scoring.DimHeadline, scoring.DimCTA,
		scoring.DimEmotional, scoring.DimTemperature, scoring.DimReadability,
		scoring.DimLength, scoring.DimTone,
	} {
		if dim, ok := assess.Dimensions[name]; ok {
			out = append(out, dim.Issues...)
		}
	}
	return out
}
