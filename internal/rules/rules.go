package rules

// The rule pack is the externalized, versioned configuration behind the
// scoring engine: phrase blocklists, pattern libraries, vocabulary tables,
// per-industry voice profiles, and tuning knobs. It is loaded once at startup
// and treated as immutable; components receive it through their constructors
// so tests can inject alternates and no global state is shared across
// concurrent runs.

// Band is a numeric window with an inner ideal range.
type Band struct {
	Min      int `json:"min"`
	Max      int `json:"max"`
	IdealMin int `json:"idealMin,omitempty"`
	IdealMax int `json:"idealMax,omitempty"`
}

// PatternRule pairs a regex with the suggestion reported when it matches.
type PatternRule struct {
	Pattern    string `json:"pattern"`
	Suggestion string `json:"suggestion,omitempty"`
}

// TriggerFamily is one emotional-trigger category: its match patterns and the
// weight it contributes to the resonance score.
type TriggerFamily struct {
	Patterns []string `json:"patterns"`
	Weight   int      `json:"weight"`
}

// WeakCTA is a known-weak call to action with its specific penalty.
type WeakCTA struct {
	Phrase  string `json:"phrase"`
	Penalty int    `json:"penalty"`
}

// VoiceProfile is an industry voice: vocabulary to favor, vocabulary to
// avoid, and emotional-hook phrases that earn a bonus.
type VoiceProfile struct {
	Preferred []string `json:"preferred,omitempty"`
	Avoided   []string `json:"avoided,omitempty"`
	Hooks     []string `json:"hooks,omitempty"`
}

// IndustryProfile overrides per-industry tuning.
type IndustryProfile struct {
	QualityThreshold int               `json:"qualityThreshold,omitempty"`
	Voice            VoiceProfile      `json:"voice,omitempty"`
	Readability      Band              `json:"readability,omitempty"`
	TriggerRemedies  map[string]string `json:"triggerRemedies,omitempty"`
	ToneGuide        string            `json:"toneGuide,omitempty"`
}

// Weights is the dimension-weight table behind the composite score. Values
// are fractions summing to 1.
type Weights struct {
	Headline    float64 `json:"headline"`
	Cliche      float64 `json:"cliche"`
	CTA         float64 `json:"cta"`
	Emotional   float64 `json:"emotional"`
	Temperature float64 `json:"temperature"`
	Readability float64 `json:"readability"`
}

// Pack is the raw decoded rule pack.
type Pack struct {
	Version string `json:"version"`

	Cliches         []string      `json:"cliches"`
	GenericPatterns []PatternRule `json:"genericPatterns"`
	EmptyValueProps []string      `json:"emptyValueProps"`
	Superlatives    []string      `json:"superlatives"`
	EvidenceTokens  []string      `json:"evidenceTokens"`
	EvidenceWindow  int           `json:"evidenceWindow"`
	SelfRefLimit    int           `json:"selfRefLimit"`

	WeakOpeners    []string `json:"weakOpeners"`
	VagueMarketing []string `json:"vagueMarketing"`
	PowerWords     []string `json:"powerWords"`
	TrustKeywords  []string `json:"trustKeywords"`

	WeakCTAs      []WeakCTA `json:"weakCTAs"`
	ExcellentCTAs []string  `json:"excellentCTAs"`
	ActionVerbs   []string  `json:"actionVerbs"`
	UrgencyWords  []string  `json:"urgencyWords"`
	BenefitWords  []string  `json:"benefitWords"`

	Triggers       map[string]TriggerFamily `json:"triggers"`
	ColdIndicators []string                 `json:"coldIndicators"`
	FalseUrgency   []string                 `json:"falseUrgency"`

	LengthBands map[string]Band `json:"lengthBands"`

	Weights          Weights `json:"weights"`
	QualityThreshold int     `json:"qualityThreshold"`
	Readability      Band    `json:"readability"`

	Industries map[string]IndustryProfile `json:"industries"`
}
