package checkengine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/verustcode/verustcode/pkg/logger"
)

// Registry holds the set of checks to run for a review.
type Registry struct {
	checks []CheckDefinition
}

// NewRegistry builds a Registry from an explicit check list, for tests or
// custom assemblies.
func NewRegistry(checks []CheckDefinition) *Registry {
	return &Registry{checks: checks}
}

// DefaultRegistry returns the built-in check list covering all seven
// categories.
func DefaultRegistry() *Registry {
	return NewRegistry(builtinChecks())
}

// Checks returns the registry's check definitions, in registration order.
func (r *Registry) Checks() []CheckDefinition {
	return r.checks
}

// Run executes every enabled check in the registry against rc, skipping checks
// the tenant/repository overlay disables and applying the overlay's severity
// override (if any) in place of the severity the check or its status gave, and
// returns the raw results plus the aggregate score. A check that panics is
// converted into a FAIL result rather than propagating — the engine itself
// never blocks on I/O and must not crash the caller over one bad check.
func Run(ctx context.Context, registry *Registry, rc *RunContext, overlay map[string]Overlay) ([]Result, int) {
	results := make([]Result, 0, len(registry.checks))

	for _, def := range registry.checks {
		ov, hasOverlay := overlay[def.Key]
		if hasOverlay && !ov.Enabled {
			continue
		}

		result := runOneCheck(ctx, def, rc, ov)

		if hasOverlay && ov.SeverityOverride != "" {
			result.Severity = Severity(ov.SeverityOverride)
		}

		results = append(results, result)
	}

	return results, Score(results)
}

func runOneCheck(ctx context.Context, def CheckDefinition, rc *RunContext, ov Overlay) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("check raised",
				zap.String("check_key", def.Key),
				zap.Any("panic", r),
			)
			result = Result{
				CheckKey: def.Key,
				Category: def.Category,
				Status:   StatusFail,
				Severity: SeverityBlocker,
				Message:  "check raised",
			}
		}
	}()

	result = def.Run(ctx, rc, ov.Thresholds)
	result.CheckKey = def.Key
	result.Category = def.Category
	if result.Severity == "" {
		result.Severity = SeverityForStatus(result.Status)
	}
	return result
}

// Score computes the weighted aggregate score described in spec §4.1:
// per-category subscore = (PASS*100 + WARN*50 + FAIL*0) / count, weighted by
// the fixed category weights, averaged over categories that have at least
// one result, and rounded to an integer in [0,100].
func Score(results []Result) int {
	type tally struct {
		pass, warn, fail int
	}
	byCategory := map[Category]*tally{}

	for _, r := range results {
		t, ok := byCategory[r.Category]
		if !ok {
			t = &tally{}
			byCategory[r.Category] = t
		}
		switch r.Status {
		case StatusPass:
			t.pass++
		case StatusWarn:
			t.warn++
		case StatusFail:
			t.fail++
		}
	}

	var weightedSum, totalWeight float64
	for category, t := range byCategory {
		count := t.pass + t.warn + t.fail
		if count == 0 {
			continue
		}
		weight, ok := categoryWeights[category]
		if !ok {
			continue
		}
		subscore := float64(t.pass*100+t.warn*50) / float64(count)
		weightedSum += float64(weight) * subscore
		totalWeight += float64(weight)
	}

	if totalWeight == 0 {
		return 0
	}

	score := int(weightedSum/totalWeight + 0.5)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// FormatSummary renders the worker's finalization summary line, spec
// §4.8 step 12: "${n} checks: ${pass} PASS / ${warn} WARN / ${fail} FAIL".
func FormatSummary(results []Result) string {
	var pass, warn, fail int
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}
	return fmt.Sprintf("%d checks: %d PASS / %d WARN / %d FAIL", len(results), pass, warn, fail)
}
