package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedPack(t *testing.T) {
	rs, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rs.Cliches) == 0 {
		t.Error("embedded pack has no cliches")
	}
	if len(rs.GenericPatternRes) != len(rs.GenericPatterns) {
		t.Errorf("compiled %d generic patterns, want %d", len(rs.GenericPatternRes), len(rs.GenericPatterns))
	}
	if len(rs.TriggerRes) == 0 {
		t.Error("no trigger families compiled")
	}
	if sum := rs.Weights.Headline + rs.Weights.Cliche + rs.Weights.CTA + rs.Weights.Emotional + rs.Weights.Temperature + rs.Weights.Readability; sum < 0.999 || sum > 1.001 {
		t.Errorf("dimension weights sum to %f, want 1", sum)
	}
}

func TestThresholdForIndustryOverride(t *testing.T) {
	rs, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := rs.ThresholdFor("legal"); got != 82 {
		t.Errorf("legal threshold = %d, want 82", got)
	}
	if got, def := rs.ThresholdFor("hvac"), rs.QualityThreshold; got != def {
		t.Errorf("hvac threshold = %d, want global default %d", got, def)
	}
	if got := rs.ThresholdFor("  Legal "); got != 82 {
		t.Errorf("industry lookup should normalize case and spacing, got %d", got)
	}
	if got, def := rs.ThresholdFor("unknown"), rs.QualityThreshold; got != def {
		t.Errorf("unknown industry threshold = %d, want default %d", got, def)
	}
}

func TestReadabilityBandFallback(t *testing.T) {
	rs, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	plumbing := rs.ReadabilityBandFor("plumbing")
	if plumbing.Min != 60 || plumbing.Max != 80 {
		t.Errorf("plumbing band = %+v, want 60-80", plumbing)
	}
	if got := rs.ReadabilityBandFor("unknown"); got != rs.Readability {
		t.Errorf("unknown band = %+v, want global %+v", got, rs.Readability)
	}
}

func TestRemedyForFallsBackToGeneric(t *testing.T) {
	rs, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := rs.RemedyFor("plumbing", "pain"); got == "" || got == genericRemedies["pain"] {
		t.Errorf("plumbing pain remedy should be industry-specific, got %q", got)
	}
	if got := rs.RemedyFor("plumbing", "gain"); got != genericRemedies["gain"] {
		t.Errorf("unlisted category should fall back, got %q", got)
	}
	if got := rs.RemedyFor("unknown", "local"); got != genericRemedies["local"] {
		t.Errorf("unknown industry should fall back, got %q", got)
	}
}

func TestLoadFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.json")
	pack := `{"version": "test", "cliches": ["magic phrase"], "qualityThreshold": 90}`
	if err := os.WriteFile(path, []byte(pack), 0o600); err != nil {
		t.Fatalf("write pack: %v", err)
	}

	rs, err := LoadFromEnv(path)
	if err != nil {
		t.Fatalf("load override: %v", err)
	}
	if len(rs.Cliches) != 1 || rs.Cliches[0] != "magic phrase" {
		t.Errorf("cliches = %v", rs.Cliches)
	}
	if rs.QualityThreshold != 90 {
		t.Errorf("threshold = %d, want 90", rs.QualityThreshold)
	}
	// Omitted knobs pick up compiled-in defaults.
	if rs.SelfRefLimit != 3 || rs.EvidenceWindow != 30 {
		t.Errorf("defaults not applied: limit=%d window=%d", rs.SelfRefLimit, rs.EvidenceWindow)
	}
	if rs.Weights.Headline != 0.25 {
		t.Errorf("default weights not applied: %+v", rs.Weights)
	}
}

func TestEvidenceTokensDriveEvidenceRe(t *testing.T) {
	rs, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, s := range []string{"fully insured", "on google", "rated highly", "4.9"} {
		if !rs.EvidenceRe.MatchString(s) {
			t.Errorf("embedded pack should treat %q as evidence", s)
		}
	}

	path := filepath.Join(t.TempDir(), "pack.json")
	pack := `{"superlatives": ["the best"], "evidenceTokens": ["mastercraft-accredited"], "evidenceWindow": 40}`
	if err := os.WriteFile(path, []byte(pack), 0o600); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	rs, err = LoadFile(path)
	if err != nil {
		t.Fatalf("load override: %v", err)
	}
	if !rs.EvidenceRe.MatchString("a Mastercraft-Accredited crew") {
		t.Error("configured token should count as evidence")
	}
	if rs.EvidenceRe.MatchString("certified work") {
		t.Error("replaced token list should not keep compiled-in words")
	}
	if !rs.EvidenceRe.MatchString("since 1998") {
		t.Error("digits always count as evidence")
	}

	// Omitted token list picks up the compiled-in set.
	empty := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(empty, []byte(`{}`), 0o600); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	rs, err = LoadFile(empty)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if !rs.EvidenceRe.MatchString("licensed and certified") {
		t.Error("default evidence tokens not applied")
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should error")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("malformed pack should error")
	}
}

func TestLoadRejectsBadPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad-pattern.json")
	pack := `{"genericPatterns": [{"pattern": "("}]}`
	if err := os.WriteFile(path, []byte(pack), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("uncompilable pattern should error")
	}
}
