package refine

import (
	"fmt"
	"strings"

	"sitecopy-backend/internal/scoring"
)

// BuildFeedback turns an assessment into the concrete, itemized instructions
// the next generation call receives: named cliches, specific weak fields,
// missing trigger categories. Never vague prose; a generator can only fix
// what it can name.
func BuildFeedback(assess scoring.Assessment) []string {
	var items []string

	if dim, ok := assess.Dimensions[scoring.DimCliche]; ok {
		var cliches []string
		for _, issue := range dim.Issues {
			switch issue.Kind {
			case scoring.KindCliche:
				cliches = append(cliches, fmt.Sprintf("%q", issue.Text))
			case scoring.KindGenericPattern, scoring.KindEmptyValueProp:
				items = append(items, fmt.Sprintf("Rewrite the generic phrase %q: %s", issue.Text, issue.Suggestion))
			case scoring.KindSuperlative:
				items = append(items, issue.Suggestion)
			case scoring.KindSelfReference:
				items = append(items, "Too much self-reference: rewrite around the customer with \"you\" instead of \"we\".")
			case scoring.KindMissingSpecifics:
				items = append(items, issue.Suggestion)
			}
		}
		if len(cliches) > 0 {
			items = append([]string{
				"Remove these banned phrases entirely (do not paraphrase them): " + strings.Join(cliches, ", ") + ".",
			}, items...)
		}
	}

	if dim, ok := assess.Dimensions[scoring.DimHeadline]; ok && dim.Score < 70 {
		for _, issue := range dim.Issues {
			if issue.Suggestion != "" {
				items = append(items, "Headline: "+issue.Suggestion)
			}
		}
	}

	if dim, ok := assess.Dimensions[scoring.DimCTA]; ok && dim.Score < 60 {
		for _, issue := range dim.Issues {
			if issue.Suggestion != "" {
				items = append(items, "Call to action: "+issue.Suggestion)
			}
		}
		if len(dim.Issues) == 0 {
			items = append(items, "Call to action is weak: lead with an action verb and a concrete benefit.")
		}
	}

	if dim, ok := assess.Dimensions[scoring.DimEmotional]; ok {
		for _, issue := range dim.Issues {
			if issue.Kind == scoring.KindMissingTrigger {
				items = append(items, fmt.Sprintf("Missing %s trigger: %s", issue.Text, issue.Suggestion))
			}
		}
	}

	if dim, ok := assess.Dimensions[scoring.DimTemperature]; ok {
		band := scoring.TemperatureBand(dim.Score)
		switch band {
		case "cold":
			items = append(items, "Copy reads cold and generic; anchor it to this business with names, places, and numbers.")
		case "hot":
			items = append(items, "Copy reads overheated; cut hype, stacked exclamation marks, and manufactured urgency.")
		}
	}

	if dim, ok := assess.Dimensions[scoring.DimLength]; ok {
		for _, issue := range dim.Issues {
			if issue.Severity == scoring.SeverityMedium && issue.Suggestion != "" {
				items = append(items, issue.Suggestion)
			}
		}
	}

	if dim, ok := assess.Dimensions[scoring.DimTone]; ok {
		for _, issue := range dim.Issues {
			if issue.Kind == scoring.KindToneMismatch {
				items = append(items, issue.Suggestion)
			}
		}
	}

	return items
}
