package generate

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

var (
	//go:embed prompts/draft.txt
	promptDraft string
	//go:embed prompts/refine.txt
	promptRefine string
)

// Message is one chat message sent to a provider.
type Message struct {
	Role    string
	Content string
}

// BuildMessages renders the prompt for a spec: the draft template for first
// drafts and variant angles, the refine template when a working candidate
// and feedback are present.
func BuildMessages(spec PromptSpec) []Message {
	template := promptDraft
	if spec.Working != nil {
		template = promptRefine
	}

	system := fillTemplate(template, spec)

	user := describeContext(spec)
	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

func fillTemplate(template string, spec PromptSpec) string {
	tone := strings.TrimSpace(spec.ToneGuide)
	if tone == "" {
		tone = "Plain, specific, local. No corporate language."
	}
	out := strings.ReplaceAll(template, "{{TONE_GUIDE}}", tone)
	out = strings.ReplaceAll(out, "{{INDUSTRY}}", orDefault(spec.Industry, "local services"))
	out = strings.ReplaceAll(out, "{{ANGLE}}", orDefault(spec.Angle, "lead with the single strongest verifiable fact about the business"))
	return out
}

func describeContext(spec PromptSpec) string {
	var b strings.Builder

	ctxJSON, _ := json.MarshalIndent(spec.Context, "", "  ")
	b.WriteString("Business context:\n")
	b.Write(ctxJSON)
	b.WriteString("\n")

	if spec.Working != nil {
		workingJSON, _ := json.MarshalIndent(spec.Working, "", "  ")
		b.WriteString("\nCurrent copy to improve:\n")
		b.Write(workingJSON)
		b.WriteString("\n")
	}

	if len(spec.Feedback) > 0 {
		b.WriteString("\nFix these specific problems:\n")
		for i, item := range spec.Feedback {
			fmt.Fprintf(&b, "%d. %s\n", i+1, item)
		}
	}
	return b.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
