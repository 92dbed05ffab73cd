package ingest

import (
	"regexp"
	"strings"

	"sitecopy-backend/internal/content"
)

var (
	phoneRe = regexp.MustCompile(`(?:\(\d{3}\)\s?|\d{3}[-.\s])\d{3}[-.\s]\d{4}`)
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	ctaRe   = regexp.MustCompile(`(?i)\b(call|contact|book|schedule|request|get a quote|free estimate)\b`)
)

const (
	maxSeedServices = 6
	minAboutLen     = 80
)

// SeedCandidate builds a baseline page candidate from extracted brochure
// text. It is a heuristic starting point for refinement, not finished copy:
// the first prominent line becomes the headline, bulleted lines become
// services, and contact details land in the protected fields.
func SeedCandidate(text string, bctx content.BusinessContext) content.Candidate {
	var c content.Candidate

	lines := splitLines(text)
	if len(lines) == 0 {
		return c
	}

	c.Headline = lines[0]
	if len(lines) > 1 && !isBullet(lines[1]) {
		c.Subheadline = lines[1]
	}

	for _, line := range lines {
		if len(c.Services) >= maxSeedServices {
			break
		}
		if name, ok := bulletText(line); ok {
			c.Services = append(c.Services, content.ServiceItem{Name: name})
		}
	}

	for _, line := range lines[1:] {
		if isBullet(line) {
			continue
		}
		if len(line) >= minAboutLen {
			c.AboutSnippet = line
			break
		}
	}

	for _, line := range lines {
		if ctaRe.MatchString(line) && len(line) <= 60 {
			c.CTAPrimary = line
			break
		}
	}

	c.Protected = content.ProtectedFields{
		Phone: phoneRe.FindString(text),
		Email: emailRe.FindString(text),
	}

	if c.Headline == "" && bctx.BusinessName != "" {
		c.Headline = bctx.BusinessName
	}

	return c
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func isBullet(line string) bool {
	_, ok := bulletText(line)
	return ok
}

func bulletText(line string) (string, bool) {
	for _, prefix := range []string{"- ", "* ", "• ", "· "} {
		if strings.HasPrefix(line, prefix) {
			text := strings.TrimSpace(strings.TrimPrefix(line, prefix))
			if text != "" {
				return text, true
			}
			return "", false
		}
	}
	return "", false
}
