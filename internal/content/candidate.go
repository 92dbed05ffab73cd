package content

import (
	"encoding/json"
	"strings"
)

// ServiceItem is one entry in a candidate's service list.
type ServiceItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// UnmarshalJSON accepts either a bare string ("Plumbing") or a full object.
// Upstream generators are inconsistent about this, so the two shapes are
// normalized here at the ingestion boundary rather than inside the scorers.
func (s *ServiceItem) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*s = ServiceItem{Name: strings.TrimSpace(name)}
		return nil
	}
	type plain ServiceItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = ServiceItem(p)
	return nil
}

// WhyUsItem is one differentiator blurb.
type WhyUsItem struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON accepts either a bare string or a full object.
func (w *WhyUsItem) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var title string
		if err := json.Unmarshal(data, &title); err != nil {
			return err
		}
		*w = WhyUsItem{Title: strings.TrimSpace(title)}
		return nil
	}
	type plain WhyUsItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*w = WhyUsItem(p)
	return nil
}

// ProtectedFields carries verbatim business facts that optimization must never
// rewrite. They are copied from the baseline into every accepted candidate.
type ProtectedFields struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Hours   string `json:"hours,omitempty"`
}

// Candidate is an immutable block of landing-page copy. Improvement always
// produces a new value; nothing mutates a candidate in place.
type Candidate struct {
	Headline         string          `json:"headline"`
	Subheadline      string          `json:"subheadline"`
	Services         []ServiceItem   `json:"services,omitempty"`
	WhyUs            []WhyUsItem     `json:"whyUs,omitempty"`
	TestimonialIntro string          `json:"testimonialIntro,omitempty"`
	CTAPrimary       string          `json:"ctaPrimary"`
	CTASecondary     string          `json:"ctaSecondary,omitempty"`
	AboutSnippet     string          `json:"aboutSnippet,omitempty"`
	MetaDescription  string          `json:"metaDescription,omitempty"`
	Protected        ProtectedFields `json:"protected,omitempty"`
}

// Empty returns the documented all-defaults candidate substituted when a
// generator response cannot be decoded. It scores 0 across the board and is
// never publish-ready, so the optimization loop treats it as a failed attempt.
func Empty() Candidate {
	return Candidate{}
}

// IsEmpty reports whether the candidate carries no copy at all.
func (c Candidate) IsEmpty() bool {
	return strings.TrimSpace(c.Headline) == "" &&
		strings.TrimSpace(c.Subheadline) == "" &&
		len(c.Services) == 0 &&
		len(c.WhyUs) == 0 &&
		strings.TrimSpace(c.CTAPrimary) == "" &&
		strings.TrimSpace(c.CTASecondary) == "" &&
		strings.TrimSpace(c.AboutSnippet) == "" &&
		strings.TrimSpace(c.MetaDescription) == ""
}

// WithProtectedFrom returns a copy of c carrying baseline's protected fields
// and service imagery verbatim, regardless of what a generator returned.
func (c Candidate) WithProtectedFrom(baseline Candidate) Candidate {
	out := c
	out.Protected = baseline.Protected
	if len(out.Services) > 0 && len(baseline.Services) > 0 {
		services := make([]ServiceItem, len(out.Services))
		copy(services, out.Services)
		for i := range services {
			if i < len(baseline.Services) && baseline.Services[i].Icon != "" {
				services[i].Icon = baseline.Services[i].Icon
			}
		}
		out.Services = services
	}
	return out
}

// CoreText concatenates the copy the phrase matcher and most scorers read:
// headline, subheadline, and about snippet.
func (c Candidate) CoreText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.Headline, c.Subheadline, c.AboutSnippet} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, " ")
}

// BusinessContext is the read-only input the scorers use to test specificity
// and personalization. It is supplied once per run and never modified.
type BusinessContext struct {
	BusinessName string   `json:"businessName"`
	City         string   `json:"city"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	Industry     string   `json:"industry"`
	TrustSignals []string `json:"trustSignals,omitempty"`
	Rating       float64  `json:"rating,omitempty"`
	ReviewCount  int      `json:"reviewCount,omitempty"`
	Language     string   `json:"language,omitempty"`
}

// HasTrustSignal reports whether the context supplies at least one verifiable
// trust signal (years in business, certification, review volume).
func (b BusinessContext) HasTrustSignal() bool {
	for _, s := range b.TrustSignals {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return b.ReviewCount > 0 && b.Rating > 0
}
