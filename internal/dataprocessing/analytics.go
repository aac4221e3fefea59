package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"raisetl/pkg/contracts/domain"
)

// Employability returns employed / (employed + estimated unemployed) for an
// employment count and an unemployment rate given in percent. Rates of 100 or
// more, and an empty total, yield 0.
func Employability(employed, ratePct float64) float64 {
	if ratePct >= 100 {
		return 0
	}
	denom := 100 - ratePct
	if denom == 0 {
		return 0
	}
	unemployed := employed * (ratePct / denom)
	total := employed + unemployed
	if total == 0 {
		return 0
	}
	return employed / total
}

// EmployabilityResult is the output of EmployabilityCalculator.Calculate.
type EmployabilityResult struct {
	Values []domain.GroupValue
	// MissingYears lists, sorted and without repeats, the years absent from the rate table.
	MissingYears []string
	// Excluded counts groups dropped because their year had no rate.
	Excluded int
}

// EmployabilityCalculator derives employability per group from summed
// employment counts and a RateTable.
type EmployabilityCalculator struct {
	logger *slog.Logger
}

// NewEmployabilityCalculator creates a calculator; a nil logger uses slog.Default().
func NewEmployabilityCalculator(logger *slog.Logger) *EmployabilityCalculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmployabilityCalculator{logger: logger.With(slog.String("component", "employability"))}
}

// Calculate keeps the input order. Groups whose year has no rate are left out
// and their years are reported in a single warning.
func (c *EmployabilityCalculator) Calculate(ctx context.Context, counts []domain.GroupValue, rates RateTable) EmployabilityResult {
	var res EmployabilityResult
	res.Values = make([]domain.GroupValue, 0, len(counts))
	missing := make(map[string]struct{})
	saturated := make(map[string]struct{})

	for _, gv := range counts {
		r, ok := rates[gv.Key.Year]
		if !ok {
			missing[gv.Key.Year] = struct{}{}
			res.Excluded++
			continue
		}
		if r >= 100 {
			if _, seen := saturated[gv.Key.Year]; !seen {
				saturated[gv.Key.Year] = struct{}{}
				c.logger.WarnContext(ctx, "Unemployment rate is 100% or more, employability set to 0",
					slog.String("year", gv.Key.Year),
					slog.Float64("rate", r))
			}
		}
		res.Values = append(res.Values, domain.GroupValue{Key: gv.Key, Value: Employability(gv.Value, r)})
	}

	if len(missing) > 0 {
		res.MissingYears = make([]string, 0, len(missing))
		for y := range missing {
			res.MissingYears = append(res.MissingYears, y)
		}
		sort.Strings(res.MissingYears)
		c.logger.WarnContext(ctx, "Years missing from the unemployment rate table, groups excluded",
			slog.Any("years", res.MissingYears),
			slog.Int("groups_excluded", res.Excluded))
	}

	c.logger.InfoContext(ctx, "Employability computed",
		slog.Int("groups", len(res.Values)),
		slog.Int("rate_years", len(rates)))
	return res
}
