package calculator

import (
	"finflow/internal/domain"
	"math"

	"github.com/montanaflynn/stats"
)

// returnEpsilon separates genuine gains/losses from numeric noise when
// partitioning per-step returns.
const returnEpsilon = 1e-8

// WinRateAndProfitLoss derives the win rate (% of per-step returns above
// epsilon) and the profit/loss ratio (mean gain over mean loss) from the
// realized per-step returns. Both are 0 when the series is empty; the ratio
// is 0 when either side of the partition is empty.
func WinRateAndProfitLoss(execReturns []float64) (float64, float64) {
	if len(execReturns) == 0 {
		return 0, 0
	}

	wins := 0
	gains := []float64{}
	losses := []float64{}
	for _, r := range execReturns {
		if r > returnEpsilon {
			wins++
			gains = append(gains, r)
		} else if r < -returnEpsilon {
			losses = append(losses, -r)
		}
	}

	winRate := float64(wins) / float64(len(execReturns)) * 100.0

	profitLossRatio := 0.0
	if len(gains) > 0 && len(losses) > 0 {
		meanGain, err1 := stats.Mean(gains)
		meanLoss, err2 := stats.Mean(losses)
		if err1 == nil && err2 == nil && meanLoss > 0 {
			profitLossRatio = meanGain / meanLoss
		}
	}

	return winRate, profitLossRatio
}

// FormatMetrics converts the artifact's raw evaluation metrics into the
// externally visible set: fractional statistics scaled to percentages,
// ratios passed through unscaled, win rate and profit/loss ratio derived
// from the per-step returns.
func FormatMetrics(raw map[string]float64, execReturns []float64) domain.FormattedMetrics {
	winRate, profitLossRatio := WinRateAndProfitLoss(execReturns)
	return domain.FormattedMetrics{
		TotalReturn:     raw["total_return"] * 100,
		AnnualReturn:    raw["annualized_return"] * 100,
		SharpeRatio:     raw["sharpe_ratio"],
		SortinoRatio:    raw["sortino_ratio"],
		MaxDrawdown:     math.Abs(raw["max_drawdown"]) * 100,
		Volatility:      raw["volatility"] * 100,
		WinRate:         winRate,
		ProfitLossRatio: profitLossRatio,
	}
}
