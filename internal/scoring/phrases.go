package scoring

import (
	"fmt"
	"strings"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/rules"
)

// PhraseMatcher detects banned and generic phrasing. It is pure and
// deterministic: the same text and context always yield the same issues.
type PhraseMatcher struct {
	rules *rules.Ruleset
}

// NewPhraseMatcher constructs a matcher over an immutable rule set.
func NewPhraseMatcher(rs *rules.Ruleset) *PhraseMatcher {
	return &PhraseMatcher{rules: rs}
}

// Check scans text for blocklisted phrases, paraphrased cliches, excessive
// self-reference, unevidenced superlatives, empty value propositions, and
// missing business specificity. Empty input yields a single critical issue.
func (m *PhraseMatcher) Check(text string, bctx content.BusinessContext) []Issue {
	if strings.TrimSpace(text) == "" {
		return []Issue{{
			Kind:       KindEmptyContent,
			Text:       "",
			Severity:   SeverityCritical,
			Suggestion: "Content is empty; nothing to publish.",
		}}
	}

	lower := strings.ToLower(text)
	issues := make([]Issue, 0, 4)

	for _, phrase := range m.rules.Cliches {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			issues = append(issues, Issue{
				Kind:       KindCliche,
				Text:       phrase,
				Severity:   SeverityHigh,
				Suggestion: fmt.Sprintf("Remove %q and replace it with a specific, verifiable claim.", phrase),
			})
		}
	}

	for _, p := range m.rules.GenericPatternRes {
		if loc := p.Re.FindString(text); loc != "" {
			suggestion := p.Suggestion
			if suggestion == "" {
				suggestion = "Rewrite with a concrete detail instead of generic phrasing."
			}
			issues = append(issues, Issue{
				Kind:       KindGenericPattern,
				Text:       loc,
				Severity:   SeverityMedium,
				Suggestion: suggestion,
			})
		}
	}

	if n := len(m.rules.SelfRefRe.FindAllStringIndex(text, -1)); n > m.rules.SelfRefLimit {
		issues = append(issues, Issue{
			Kind:       KindSelfReference,
			Text:       fmt.Sprintf("%d self-references", n),
			Severity:   SeverityMedium,
			Suggestion: "Rewrite around the customer: more \"you\", less \"we\".",
		})
	}

	issues = append(issues, m.checkSuperlatives(text, lower)...)

	for _, phrase := range m.rules.EmptyValueProps {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			issues = append(issues, Issue{
				Kind:       KindEmptyValueProp,
				Text:       phrase,
				Severity:   SeverityMedium,
				Suggestion: fmt.Sprintf("%q carries no information; name what the customer actually gets.", phrase),
			})
			break
		}
	}

	if issue, ok := m.checkSpecificity(lower, bctx); ok {
		issues = append(issues, issue)
	}

	return issues
}

// checkSuperlatives flags superlatives not backed by a digit, rating, or
// credential token within the evidence window.
func (m *PhraseMatcher) checkSuperlatives(text, lower string) []Issue {
	var issues []Issue
	for _, sup := range m.rules.Superlatives {
		idx := strings.Index(lower, strings.ToLower(sup))
		if idx < 0 {
			continue
		}
		end := idx + len(sup)
		windowEnd := end + m.rules.EvidenceWindow
		if windowEnd > len(text) {
			windowEnd = len(text)
		}
		if m.rules.EvidenceRe.MatchString(text[end:windowEnd]) {
			continue
		}
		issues = append(issues, Issue{
			Kind:       KindSuperlative,
			Text:       sup,
			Severity:   SeverityMedium,
			Suggestion: fmt.Sprintf("Back %q with a number, rating, or credential, or drop it.", sup),
		})
	}
	return issues
}

// checkSpecificity flags copy that never mentions the business name, city,
// or neighborhood.
func (m *PhraseMatcher) checkSpecificity(lower string, bctx content.BusinessContext) (Issue, bool) {
	anchors := []string{bctx.BusinessName, bctx.City, bctx.Neighborhood}
	for _, anchor := range anchors {
		anchor = strings.ToLower(strings.TrimSpace(anchor))
		if anchor != "" && strings.Contains(lower, anchor) {
			return Issue{}, false
		}
	}
	if strings.TrimSpace(bctx.BusinessName) == "" && strings.TrimSpace(bctx.City) == "" {
		return Issue{}, false
	}
	return Issue{
		Kind:       KindMissingSpecifics,
		Text:       "no business name, city, or neighborhood",
		Severity:   SeverityLow,
		Suggestion: "Mention the business name or service area so the copy could not belong to a competitor.",
	}, true
}

// ClicheCount returns how many cliche-kind issues are present.
func ClicheCount(issues []Issue) int {
	n := 0
	for _, issue := range issues {
		if issue.Kind == KindCliche {
			n++
		}
	}
	return n
}

// HasBlockingCliche reports whether any cliche issue is high or critical
// severity. The refiner's retry gate keys off this.
func HasBlockingCliche(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Kind != KindCliche && issue.Kind != KindEmptyContent {
			continue
		}
		if issue.Severity == SeverityHigh || issue.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
