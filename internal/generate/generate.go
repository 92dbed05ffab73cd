package generate

import (
	"context"
	"errors"

	"sitecopy-backend/internal/content"
)

// Generator abstracts the external text oracle. Implementations are assumed
// to be slow, non-deterministic, and fallible; callers own retry budgets and
// must never let a Generator error escape their boundary.
type Generator interface {
	Generate(ctx context.Context, spec PromptSpec) (content.Candidate, error)
}

// PromptSpec bundles everything one generation call needs: the business
// context, the industry tone guide, and optional structured feedback from a
// prior failed assessment.
type PromptSpec struct {
	Context   content.BusinessContext
	Industry  string
	ToneGuide string

	// Working is the candidate being improved; nil for first drafts.
	Working *content.Candidate

	// Feedback lists named defects to fix (specific cliches, weak fields),
	// never vague prose.
	Feedback []string

	// Angle is the generation strategy instruction for variant drafts.
	Angle string
}

// ErrParse marks a response whose structured payload could not be extracted.
// Callers substitute content.Empty() and count the call as a failed attempt.
var ErrParse = errors.New("candidate payload could not be parsed")

// ErrNotConfigured is returned by the placeholder generator.
var ErrNotConfigured = errors.New("content generator not configured")

// PlaceholderGenerator is a stub implementation used until a provider is
// wired, and in tests that only need the failure path.
type PlaceholderGenerator struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderGenerator) Generate(ctx context.Context, spec PromptSpec) (content.Candidate, error) {
	_ = ctx
	_ = spec
	return content.Candidate{}, ErrNotConfigured
}
