package variants

import (
	"sitecopy-backend/internal/content"
)

// Angle is a named generation strategy used to diversify candidates before
// selection. Priority breaks score ties; lower wins.
type Angle struct {
	Name             string `json:"name"`
	Priority         int    `json:"priority"`
	Instruction      string `json:"instruction"`
	NeedsTrustSignal bool   `json:"needsTrustSignal,omitempty"`
	NeedsRating      bool   `json:"needsRating,omitempty"`
}

// DefaultAngles is the built-in catalog. pain_point and local_specialist
// require nothing from the context, so at least two angles are always
// available as fallback.
func DefaultAngles() []Angle {
	return []Angle{
		{
			Name:        "pain_point",
			Priority:    1,
			Instruction: "Lead with the most expensive or stressful problem this industry's customers face, then position the business as the fastest way out of it.",
		},
		{
			Name:        "local_specialist",
			Priority:    2,
			Instruction: "Lead with deep local roots: the city, the neighborhoods served, and why a local operator beats a national chain.",
		},
		{
			Name:        "social_proof",
			Priority:    3,
			Instruction: "Lead with the rating and review volume; let customers' collective judgment carry the headline.",
			NeedsRating: true,
		},
		{
			Name:             "guarantee",
			Priority:         4,
			Instruction:      "Lead with the strongest verifiable trust signal (guarantee, certification, years in business) and build every section around risk removal.",
			NeedsTrustSignal: true,
		},
		{
			Name:        "speed",
			Priority:    5,
			Instruction: "Lead with response time: same-day service, fast quotes, quick turnaround. Every section should answer 'how fast'.",
		},
	}
}

// Eligible filters angles whose preconditions the context satisfies, keeping
// catalog order.
func Eligible(angles []Angle, bctx content.BusinessContext) []Angle {
	out := make([]Angle, 0, len(angles))
	for _, a := range angles {
		if a.NeedsTrustSignal && !bctx.HasTrustSignal() {
			continue
		}
		if a.NeedsRating && (bctx.Rating <= 0 || bctx.ReviewCount <= 0) {
			continue
		}
		out = append(out, a)
	}
	return out
}
