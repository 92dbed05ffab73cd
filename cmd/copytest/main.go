package main

// Exercise the scoring and refinement engine from the command line:
//   go run ./cmd/copytest -context business.json -baseline page.json
//   go run ./cmd/copytest -context business.json -mode variants

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/generate"
	openai "sitecopy-backend/internal/generate/openai"
	"sitecopy-backend/internal/refine"
	"sitecopy-backend/internal/rules"
	"sitecopy-backend/internal/scoring"
	"sitecopy-backend/internal/shared/config"
	"sitecopy-backend/internal/variants"
)

func main() {
	cfg := config.Load()

	contextPath := flag.String("context", "", "Path to business context JSON")
	baselinePath := flag.String("baseline", "", "Path to baseline candidate JSON")
	mode := flag.String("mode", "assess", "assess, refine or variants")
	industry := flag.String("industry", "", "Industry override")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	if strings.TrimSpace(*contextPath) == "" {
		exitErr("context path is required")
	}

	var bctx content.BusinessContext
	if err := readJSON(*contextPath, &bctx); err != nil {
		exitErr(fmt.Sprintf("read context: %v", err))
	}
	if *industry == "" {
		*industry = bctx.Industry
	}

	var baseline content.Candidate
	if *baselinePath != "" {
		if err := readJSON(*baselinePath, &baseline); err != nil {
			exitErr(fmt.Sprintf("read baseline: %v", err))
		}
	}

	rs, err := rules.LoadFromEnv(cfg.RulesPath)
	if err != nil {
		exitErr(fmt.Sprintf("load rules: %v", err))
	}
	assessor := scoring.NewAssessor(rs)

	var out any
	switch strings.TrimSpace(*mode) {
	case "assess":
		if baseline.IsEmpty() {
			exitErr("baseline is required for assess mode")
		}
		out = assessor.Assess(baseline, bctx, *industry)
	case "refine":
		if baseline.IsEmpty() {
			exitErr("baseline is required for refine mode")
		}
		refiner := refine.NewRefiner(buildGenerator(*model), assessor, rs)
		out = refiner.Refine(context.Background(), baseline, bctx, *industry, refine.Params{
			QualityThreshold:  cfg.QualityThreshold,
			MaxPasses:         cfg.MaxPasses,
			MaxRetriesPerPass: cfg.MaxRetriesPerPass,
		})
	case "variants":
		fallback := content.NewFallbackGenerator(time.Now().UnixNano())
		selector := variants.NewSelector(buildGenerator(*model), assessor, rs, fallback, cfg.VariantCount)
		out = selector.SelectBest(context.Background(), bctx, *industry, variants.DefaultAngles())
	default:
		exitErr(fmt.Sprintf("unsupported mode: %s", *mode))
	}

	pretty, err := prettyJSON(out)
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}

	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	if len(pretty) == 0 || pretty[len(pretty)-1] != '\n' {
		_, _ = os.Stdout.Write([]byte("\n"))
	}
}

func buildGenerator(model string) generate.Generator {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "OPENAI_API_KEY not set; generation calls will fail and fallbacks apply")
		return generate.PlaceholderGenerator{}
	}
	client, err := openai.NewClient(apiKey, model)
	if err != nil {
		exitErr(fmt.Sprintf("openai client: %v", err))
	}
	return client
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func prettyJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
