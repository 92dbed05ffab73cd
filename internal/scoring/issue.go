package scoring

// IssueKind classifies a detected quality defect.
type IssueKind string

const (
	KindCliche            IssueKind = "cliche"
	KindGenericPattern    IssueKind = "generic_pattern"
	KindSelfReference     IssueKind = "excessive_self_reference"
	KindSuperlative       IssueKind = "generic_superlative"
	KindEmptyValueProp    IssueKind = "empty_value_prop"
	KindMissingSpecifics  IssueKind = "missing_specificity"
	KindWeakOpener        IssueKind = "weak_opener"
	KindLengthViolation   IssueKind = "length_violation"
	KindEmptyContent      IssueKind = "empty_content"
	KindMissingTrigger    IssueKind = "missing_trigger"
	KindTemperatureSkew   IssueKind = "temperature_skew"
	KindWeakCTA           IssueKind = "weak_cta"
	KindVagueLanguage     IssueKind = "vague_language"
	KindReadabilityDrift  IssueKind = "readability_drift"
	KindToneMismatch      IssueKind = "tone_mismatch"
)

// Severity orders how damaging an issue is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityPenalties is the fixed severity-to-penalty table.
var severityPenalties = map[Severity]int{
	SeverityCritical: 50,
	SeverityHigh:     20,
	SeverityMedium:   10,
	SeverityLow:      5,
}

// Penalty returns the fixed score penalty for a severity.
func (s Severity) Penalty() int {
	return severityPenalties[s]
}

// Issue is one detected quality defect with remediation advice.
type Issue struct {
	Kind       IssueKind `json:"kind"`
	Text       string    `json:"text"`
	Severity   Severity  `json:"severity"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// DimensionScore is the outcome of a single independent scorer.
type DimensionScore struct {
	Name      string   `json:"name"`
	Score     int      `json:"score"`
	Grade     string   `json:"grade,omitempty"`
	Issues    []Issue  `json:"issues,omitempty"`
	Strengths []string `json:"strengths,omitempty"`
}

// Assessment is the composite quality verdict for one candidate. It is
// derived from the candidate and context, never stored apart from them.
type Assessment struct {
	OverallScore    int                       `json:"overallScore"`
	Grade           string                    `json:"grade"`
	PublishReady    bool                      `json:"isPublishReady"`
	ClicheCount     int                       `json:"clicheCount"`
	Dimensions      map[string]DimensionScore `json:"dimensions"`
	Recommendations []string                  `json:"recommendations,omitempty"`
}

// Dimension names used as keys in Assessment.Dimensions.
const (
	DimHeadline    = "headline"
	DimCliche      = "cliche"
	DimCTA         = "cta"
	DimEmotional   = "emotional"
	DimTemperature = "temperature"
	DimReadability = "readability"
	DimLength      = "length"
	DimTone        = "tone"
)

// GradeFor maps a 0-100 score to a letter grade. The mapping is monotonic:
// a higher score never earns a lower grade.
func GradeFor(score int) string {
	switch {
	case score >= 85:
		return "A"
	case score >= 70:
		return "B"
	case score >= 55:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
