package content

import (
	"reflect"
	"strings"
	"testing"
)

func TestFallbackDeterministicPerSeed(t *testing.T) {
	bctx := BusinessContext{BusinessName: "Smith Plumbing", City: "Mesa", Industry: "plumbing"}

	a := NewFallbackGenerator(42).Candidate(bctx)
	b := NewFallbackGenerator(42).Candidate(bctx)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed diverged:\n%+v\n%+v", a, b)
	}
}

func TestFallbackFillsRequiredCopy(t *testing.T) {
	bctx := BusinessContext{
		BusinessName: "Smith Plumbing",
		City:         "Mesa",
		Industry:     "plumbing",
		TrustSignals: []string{"Licensed & insured."},
		Rating:       4.8,
		ReviewCount:  213,
	}
	c := NewFallbackGenerator(7).Candidate(bctx)

	if c.IsEmpty() {
		t.Fatal("fallback candidate is empty")
	}
	for name, field := range map[string]string{
		"headline":        c.Headline,
		"subheadline":     c.Subheadline,
		"ctaPrimary":      c.CTAPrimary,
		"ctaSecondary":    c.CTASecondary,
		"aboutSnippet":    c.AboutSnippet,
		"metaDescription": c.MetaDescription,
	} {
		if strings.TrimSpace(field) == "" {
			t.Errorf("%s is empty", name)
		}
	}
	if !strings.Contains(c.AboutSnippet, "4.8") || !strings.Contains(c.AboutSnippet, "213") {
		t.Errorf("about does not cite the rating evidence: %q", c.AboutSnippet)
	}
	if !strings.Contains(c.Subheadline, "Licensed & insured") {
		t.Errorf("subheadline drops the trust signal: %q", c.Subheadline)
	}
}

func TestFallbackDefaultsForSparseContext(t *testing.T) {
	c := NewFallbackGenerator(1).Candidate(BusinessContext{})

	if c.IsEmpty() {
		t.Fatal("fallback candidate is empty")
	}
	if !strings.Contains(c.Headline, "Local Services") && !strings.Contains(c.Headline, "Your Area") {
		t.Errorf("headline missing placeholders for sparse context: %q", c.Headline)
	}
}

func TestFallbackAvoidsBannedPhrasing(t *testing.T) {
	bctx := BusinessContext{BusinessName: "Smith Plumbing", City: "Mesa", Industry: "plumbing"}
	for seed := int64(0); seed < 10; seed++ {
		c := NewFallbackGenerator(seed).Candidate(bctx)
		core := strings.ToLower(c.CoreText())
		for _, banned := range []string{"quality service", "welcome to", "best in town", "one-stop shop"} {
			if strings.Contains(core, banned) {
				t.Errorf("seed %d produced banned phrase %q: %q", seed, banned, core)
			}
		}
	}
}
