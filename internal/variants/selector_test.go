package variants

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/generate"
	"sitecopy-backend/internal/rules"
	"sitecopy-backend/internal/scoring"
)

// scriptedGenerator answers each angle instruction with a fixed candidate or
// error, recording how many calls were made.
type scriptedGenerator struct {
	mu      sync.Mutex
	calls   int
	results map[string]content.Candidate
	errs    map[string]error
}

func (g *scriptedGenerator) Generate(ctx context.Context, spec generate.PromptSpec) (content.Candidate, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if err, ok := g.errs[spec.Angle]; ok {
		return content.Candidate{}, err
	}
	if c, ok := g.results[spec.Angle]; ok {
		return c, nil
	}
	return content.Candidate{}, errors.New("unexpected angle " + spec.Angle)
}

func (g *scriptedGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func testAssessor(t *testing.T) (*scoring.Assessor, *rules.Ruleset) {
	t.Helper()
	rs, err := rules.Load()
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	return scoring.NewAssessor(rs), rs
}

func testAngles() []Angle {
	return []Angle{
		{Name: "first", Priority: 1, Instruction: "first"},
		{Name: "second", Priority: 2, Instruction: "second"},
		{Name: "third", Priority: 3, Instruction: "third"},
	}
}

func strongCandidate() content.Candidate {
	return content.Candidate{
		Headline:     "Same-Day Drain Cleaning in Mesa From $99",
		Subheadline:  "Licensed plumbers rated 4.9 by 300 Mesa homeowners.",
		CTAPrimary:   "Get Free Quote",
		AboutSnippet: "Stop leaks and save on repairs. Call Smith Plumbing today for local service in Mesa.",
	}
}

func weakCandidate() content.Candidate {
	return content.Candidate{
		Headline:   "Welcome to our website",
		CTAPrimary: "Click here",
	}
}

func mesaContext() content.BusinessContext {
	return content.BusinessContext{BusinessName: "Smith Plumbing", City: "Mesa", Industry: "plumbing"}
}

func newTestSelector(gen generate.Generator, count int, t *testing.T) *Selector {
	t.Helper()
	assessor, rs := testAssessor(t)
	return NewSelector(gen, assessor, rs, content.NewFallbackGenerator(1), count)
}

func TestSelectBestRanksSurvivorsAndReportsFailures(t *testing.T) {
	gen := &scriptedGenerator{
		results: map[string]content.Candidate{
			"second": weakCandidate(),
			"third":  strongCandidate(),
		},
		errs: map[string]error{"first": errors.New("provider unavailable")},
	}
	s := newTestSelector(gen, 3, t)

	sel := s.SelectBest(context.Background(), mesaContext(), "plumbing", testAngles())

	if sel.UsedFallback {
		t.Fatal("fallback used despite surviving angles")
	}
	if sel.Winner.Angle != "third" {
		t.Fatalf("winner = %q, want the higher-scoring angle", sel.Winner.Angle)
	}
	if len(sel.Ranking) != 2 {
		t.Fatalf("ranking = %d entries, want 2", len(sel.Ranking))
	}
	if sel.Ranking[0].Assessment.OverallScore < sel.Ranking[1].Assessment.OverallScore {
		t.Error("ranking not in descending score order")
	}
	if len(sel.FailedAngles) != 1 || sel.FailedAngles[0] != "first" {
		t.Errorf("failedAngles = %v, want [first]", sel.FailedAngles)
	}
}

func TestSelectBestTieBrokenByPriority(t *testing.T) {
	same := strongCandidate()
	gen := &scriptedGenerator{
		results: map[string]content.Candidate{
			"first": same, "second": same, "third": same,
		},
	}
	s := newTestSelector(gen, 3, t)

	sel := s.SelectBest(context.Background(), mesaContext(), "plumbing", testAngles())
	if sel.Winner.Angle != "first" {
		t.Fatalf("winner = %q, want the lowest-priority-number angle on a tie", sel.Winner.Angle)
	}
}

func TestSelectBestAllFailedUsesFallback(t *testing.T) {
	boom := errors.New("provider unavailable")
	gen := &scriptedGenerator{
		errs: map[string]error{"first": boom, "second": boom, "third": boom},
	}
	s := newTestSelector(gen, 3, t)

	sel := s.SelectBest(context.Background(), mesaContext(), "plumbing", testAngles())

	if !sel.UsedFallback {
		t.Fatal("expected fallback selection")
	}
	if sel.Winner.Angle != "fallback" {
		t.Errorf("winner angle = %q, want fallback", sel.Winner.Angle)
	}
	if sel.Winner.Candidate.IsEmpty() {
		t.Error("fallback winner has no copy")
	}
	if len(sel.FailedAngles) != 3 {
		t.Errorf("failedAngles = %v, want all three", sel.FailedAngles)
	}
}

func TestSelectBestHonorsVariantCap(t *testing.T) {
	gen := &scriptedGenerator{
		results: map[string]content.Candidate{
			"first": strongCandidate(), "second": weakCandidate(), "third": weakCandidate(),
		},
	}
	s := newTestSelector(gen, 2, t)

	sel := s.SelectBest(context.Background(), mesaContext(), "plumbing", testAngles())

	if got := gen.callCount(); got != 2 {
		t.Fatalf("generation calls = %d, want 2", got)
	}
	if len(sel.Ranking) != 2 {
		t.Fatalf("ranking = %d entries, want 2", len(sel.Ranking))
	}
}

func TestSelectBestCancelledFallsBackToTemplates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &scriptedGenerator{
		errs: map[string]error{"first": context.Canceled, "second": context.Canceled, "third": context.Canceled},
	}
	s := newTestSelector(gen, 3, t)

	sel := s.SelectBest(ctx, mesaContext(), "plumbing", testAngles())
	if !sel.UsedFallback {
		t.Fatal("cancelled run with no survivors should fall back")
	}
}

func TestEligibleFiltersByContext(t *testing.T) {
	angles := DefaultAngles()

	bare := Eligible(angles, content.BusinessContext{})
	if len(bare) != 3 {
		t.Fatalf("bare context eligible = %d, want 3", len(bare))
	}
	for _, a := range bare {
		if a.NeedsRating || a.NeedsTrustSignal {
			t.Errorf("angle %q should have been filtered", a.Name)
		}
	}

	rated := Eligible(angles, content.BusinessContext{Rating: 4.8, ReviewCount: 120})
	if len(rated) != 5 {
		t.Fatalf("rated context eligible = %d, want 5", len(rated))
	}

	trusted := Eligible(angles, content.BusinessContext{TrustSignals: []string{"Licensed"}})
	if len(trusted) != 4 {
		t.Fatalf("trusted context eligible = %d, want 4", len(trusted))
	}
}
