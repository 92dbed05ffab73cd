package scoring

import (
	"testing"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/rules"
)

func testRules(t *testing.T) *rules.Ruleset {
	t.Helper()
	rs, err := rules.Load()
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	return rs
}

func hasKind(issues []Issue, kind IssueKind) bool {
	for _, issue := range issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}

func TestCheckEmptyTextIsCritical(t *testing.T) {
	m := NewPhraseMatcher(testRules(t))

	issues := m.Check("   ", content.BusinessContext{})
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}
	if issues[0].Kind != KindEmptyContent || issues[0].Severity != SeverityCritical {
		t.Fatalf("issue = %+v, want critical empty_content", issues[0])
	}
}

func TestCheckFlagsClicheAndEmptyValueProp(t *testing.T) {
	m := NewPhraseMatcher(testRules(t))

	issues := m.Check("We provide quality service to the community.", content.BusinessContext{})
	if len(issues) != 2 {
		t.Fatalf("issues = %d, want 2: %+v", len(issues), issues)
	}
	if !hasKind(issues, KindCliche) || !hasKind(issues, KindEmptyValueProp) {
		t.Fatalf("issues = %+v, want cliche and empty_value_prop", issues)
	}
	if got := ClicheCount(issues); got != 1 {
		t.Errorf("ClicheCount = %d, want 1", got)
	}
	if !HasBlockingCliche(issues) {
		t.Error("HasBlockingCliche = false, want true")
	}
}

func TestCheckSuperlativeNeedsEvidence(t *testing.T) {
	m := NewPhraseMatcher(testRules(t))

	unbacked := m.Check("The best plumbers on this side of town.", content.BusinessContext{})
	if len(unbacked) != 1 || unbacked[0].Kind != KindSuperlative {
		t.Fatalf("unbacked issues = %+v, want one generic_superlative", unbacked)
	}

	backed := m.Check("The best plumbers, rated 4.9 by 300 reviews.", content.BusinessContext{})
	if hasKind(backed, KindSuperlative) {
		t.Fatalf("evidenced superlative still flagged: %+v", backed)
	}

	// Word tokens from the pack count on their own, without a digit nearby.
	insured := m.Check("The best plumbers, fully insured and bonded.", content.BusinessContext{})
	if hasKind(insured, KindSuperlative) {
		t.Fatalf("token-evidenced superlative still flagged: %+v", insured)
	}
}

func TestCheckExcessiveSelfReference(t *testing.T) {
	m := NewPhraseMatcher(testRules(t))

	text := "We fix leaks. Our crew arrives on time. We quote the price before we start, and our trucks carry every part."
	issues := m.Check(text, content.BusinessContext{})
	if len(issues) != 1 || issues[0].Kind != KindSelfReference {
		t.Fatalf("issues = %+v, want one excessive_self_reference", issues)
	}
}

func TestCheckMissingSpecificity(t *testing.T) {
	m := NewPhraseMatcher(testRules(t))
	bctx := content.BusinessContext{BusinessName: "Smith Plumbing", City: "Mesa"}

	anonymous := m.Check("Drain cleaning for every home on the east side.", bctx)
	if !hasKind(anonymous, KindMissingSpecifics) {
		t.Fatalf("issues = %+v, want missing_specificity", anonymous)
	}

	anchored := m.Check("Smith Plumbing clears drains across the east side.", bctx)
	if hasKind(anchored, KindMissingSpecifics) {
		t.Fatalf("anchored copy still flagged: %+v", anchored)
	}

	// With neither a name nor a city to anchor on, the check is skipped.
	unanchorable := m.Check("Drain cleaning for every home on the east side.", content.BusinessContext{})
	if hasKind(unanchorable, KindMissingSpecifics) {
		t.Fatalf("contextless copy flagged: %+v", unanchorable)
	}
}

func TestHasBlockingClicheIgnoresOtherKinds(t *testing.T) {
	issues := []Issue{
		{Kind: KindSuperlative, Severity: SeverityHigh},
		{Kind: KindSelfReference, Severity: SeverityCritical},
	}
	if HasBlockingCliche(issues) {
		t.Error("HasBlockingCliche = true for non-cliche issues")
	}
	issues = append(issues, Issue{Kind: KindCliche, Severity: SeverityHigh})
	if !HasBlockingCliche(issues) {
		t.Error("HasBlockingCliche = false with a high-severity cliche present")
	}
}
