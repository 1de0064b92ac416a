package calculator

import (
	"finflow/internal/domain"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
)

const maxExplainRows = 40

const (
	featureAverageWeight    = "average weight"
	featureWeightVolatility = "weight volatility"
)

// BuildFeatureImportance scores each symbol by its mean weight and its
// weight volatility over the holding history. Rows with a zero score are
// dropped; the remainder is sorted descending and capped.
func BuildFeatureImportance(history [][]float64, universe []string) []domain.FeatureImportance {
	if len(history) == 0 {
		return []domain.FeatureImportance{}
	}

	rows := []domain.FeatureImportance{}
	for idx, symbol := range universe {
		trajectory := columnOf(history, idx)
		if trajectory == nil {
			break
		}

		mean, err := stats.Mean(trajectory)
		if err == nil && mean > 0 {
			rows = append(rows, domain.FeatureImportance{
				FeatureName:     featureAverageWeight,
				AssetName:       symbol,
				ImportanceScore: mean,
			})
		}
		stdev, err := stats.StandardDeviationPopulation(trajectory)
		if err == nil && stdev > 0 {
			rows = append(rows, domain.FeatureImportance{
				FeatureName:     featureWeightVolatility,
				AssetName:       symbol,
				ImportanceScore: stdev,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ImportanceScore > rows[j].ImportanceScore
	})
	if len(rows) > maxExplainRows {
		rows = rows[:maxExplainRows]
	}
	return rows
}

// BuildAttentionWeights computes the pairwise correlation of per-symbol
// weight trajectories. Pairs with an undefined correlation (constant
// trajectory) are dropped. Requires at least two steps of history.
func BuildAttentionWeights(history [][]float64, universe []string) []domain.AttentionWeight {
	if len(history) < 2 {
		return []domain.AttentionWeight{}
	}

	trajectories := map[int][]float64{}
	constant := map[int]bool{}
	for idx := range universe {
		trajectory := columnOf(history, idx)
		if trajectory == nil {
			break
		}
		trajectories[idx] = trajectory
		stdev, err := stats.StandardDeviationPopulation(trajectory)
		constant[idx] = err != nil || stdev == 0
	}

	attention := []domain.AttentionWeight{}
	for i := 0; i < len(universe); i++ {
		for j := i + 1; j < len(universe); j++ {
			x, okX := trajectories[i]
			y, okY := trajectories[j]
			if !okX || !okY || constant[i] || constant[j] {
				continue
			}
			correlation, err := stats.Correlation(x, y)
			if err != nil || math.IsNaN(correlation) {
				continue
			}
			attention = append(attention, domain.AttentionWeight{
				FromAsset: universe[i],
				ToAsset:   universe[j],
				Weight:    correlation,
			})
		}
	}

	sort.SliceStable(attention, func(i, j int) bool {
		return math.Abs(attention[i].Weight) > math.Abs(attention[j].Weight)
	})
	if len(attention) > maxExplainRows {
		attention = attention[:maxExplainRows]
	}
	return attention
}

// BuildExplanationText renders the deterministic natural-language summary
// for an analysis bundle. Fixed sentence order, templated values only.
func BuildExplanationText(analysis *domain.AnalysisResult) string {
	metrics := analysis.Metrics

	modeLabel := "fast"
	if analysis.AnalysisMode == domain.ModeAccurate {
		modeLabel = "in-depth"
	}

	lines := []string{
		fmt.Sprintf(
			"Analysis mode: %s, risk profile: %s, target horizon: %d months.",
			modeLabel, analysis.Params.RiskTolerance, analysis.Params.InvestmentHorizon,
		),
		fmt.Sprintf(
			"Cumulative return %.2f%%, annualized %.2f%% (Sharpe %.2f, volatility %.2f%%).",
			metrics.TotalReturn, metrics.AnnualReturn, metrics.SharpeRatio, metrics.Volatility,
		),
	}

	if analysis.AvgCrisisLevel != nil {
		level := *analysis.AvgCrisisLevel
		state := "crisis-sensitive"
		if level < 0.4 {
			state = "stable"
		} else if level < 0.6 {
			state = "neutral"
		}
		lines = append(lines, fmt.Sprintf(
			"Average crisis level %.2f points to a %s market regime.", level, state,
		))
	}

	topAssets := []string{}
	for _, item := range analysis.Allocation {
		if item.Symbol == domain.CashSymbol {
			continue
		}
		topAssets = append(topAssets, fmt.Sprintf("%s %.1f%%", item.Symbol, item.Weight*100))
		if len(topAssets) == 3 {
			break
		}
	}
	if len(topAssets) > 0 {
		lines = append(lines, fmt.Sprintf("Top holdings: %s.", strings.Join(topAssets, ", ")))
	}

	for _, item := range analysis.Allocation {
		if item.Symbol == domain.CashSymbol {
			lines = append(lines, fmt.Sprintf(
				"A cash buffer of %.1f%% cushions volatility and preserves re-entry capacity.",
				item.Weight*100,
			))
			break
		}
	}

	lines = append(lines, "The IRT actor rebalanced daily using crisis-detection signals and prototype mixing.")
	return strings.Join(lines, "\n")
}

// columnOf extracts one symbol's weight trajectory; nil when the column
// index exceeds the matrix width.
func columnOf(history [][]float64, idx int) []float64 {
	column := make([]float64, 0, len(history))
	for _, row := range history {
		if idx >= len(row) {
			return nil
		}
		column = append(column, row[idx])
	}
	return column
}
