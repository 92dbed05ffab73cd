package content

import (
	"fmt"
	"math/rand"
	"strings"
)

// FallbackGenerator builds deterministic template-based candidates used when
// every generation call fails. The RNG is injected so fallback output is
// reproducible in tests.
type FallbackGenerator struct {
	rng *rand.Rand
}

// NewFallbackGenerator constructs a FallbackGenerator seeded for reproducible
// template selection.
func NewFallbackGenerator(seed int64) *FallbackGenerator {
	return &FallbackGenerator{rng: rand.New(rand.NewSource(seed))}
}

var fallbackHeadlines = []string{
	"%s: %s in %s",
	"%s Serving %s",
	"%s - %s for %s Homes and Businesses",
}

var fallbackCTAs = [][2]string{
	{"Get a Free Quote", "Call Now"},
	{"Book Your Visit", "See Our Work"},
	{"Request an Estimate", "Read Reviews"},
}

// Candidate builds a plain, cliche-free candidate from the business context.
// It is intentionally modest copy: specific, short, and safe to publish as a
// last resort.
func (g *FallbackGenerator) Candidate(bctx BusinessContext) Candidate {
	industry := strings.TrimSpace(bctx.Industry)
	if industry == "" {
		industry = "Local Services"
	}
	industryTitle := titleCase(industry)
	city := strings.TrimSpace(bctx.City)
	if city == "" {
		city = "Your Area"
	}
	name := strings.TrimSpace(bctx.BusinessName)
	if name == "" {
		name = industryTitle
	}

	headlineTmpl := fallbackHeadlines[g.rng.Intn(len(fallbackHeadlines))]
	ctas := fallbackCTAs[g.rng.Intn(len(fallbackCTAs))]

	var headline string
	switch strings.Count(headlineTmpl, "%s") {
	case 2:
		headline = fmt.Sprintf(headlineTmpl, name, city)
	default:
		headline = fmt.Sprintf(headlineTmpl, name, industryTitle, city)
	}

	sub := fmt.Sprintf("%s based in %s.", industryTitle, city)
	if len(bctx.TrustSignals) > 0 {
		sub = fmt.Sprintf("%s based in %s. %s.", industryTitle, city, strings.TrimSuffix(bctx.TrustSignals[0], "."))
	}

	about := fmt.Sprintf("%s serves %s and nearby neighborhoods.", name, city)
	if bctx.ReviewCount > 0 && bctx.Rating > 0 {
		about = fmt.Sprintf("%s serves %s and nearby neighborhoods, rated %.1f by %d customers.", name, city, bctx.Rating, bctx.ReviewCount)
	}

	return Candidate{
		Headline:        headline,
		Subheadline:     sub,
		CTAPrimary:      ctas[0],
		CTASecondary:    ctas[1],
		AboutSnippet:    about,
		MetaDescription: fmt.Sprintf("%s - %s in %s. %s.", name, industryTitle, city, ctas[0]),
	}
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
