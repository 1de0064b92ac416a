package calculator

import "finflow/internal/domain"

// Symbols nudged by the overlay when they are part of the universe.
var (
	growthTickers    = []string{"AMZN", "GOOGL", "NVDA", "TSLA", "MSFT"}
	defensiveTickers = []string{"JNJ", "PG", "KO", "WMT", "MRK"}
)

const (
	conservativeCashShift = 0.18
	aggressiveCashShift   = 0.15
	liquidityBufferShift  = 0.10
	defensiveBoost        = 1.05
	growthBoost           = 1.08
	growthCashScale       = 0.92
)

// AdjustWeights applies the risk and horizon overlays to a raw weight vector
// and cash fraction, returning a renormalized pair whose total is 1. Overlay
// effects are fractional mass transfers between cash and the weight vector,
// each followed by renormalization, so the output honors the sum-to-1 and
// non-negativity invariants for any input.
func AdjustWeights(weights []float64, cashWeight float64, risk string, horizonMonths int, universe []string) ([]float64, float64) {
	adjusted := make([]float64, len(weights))
	for i, w := range weights {
		if w > 0 {
			adjusted[i] = w
		}
	}
	if cashWeight < 0 {
		cashWeight = 0
	}

	total := sum(adjusted) + cashWeight
	if total > 0 {
		scale(adjusted, 1/total)
		cashWeight /= total
	} else {
		// degenerate input: fall back to equal weighting with no cash
		if len(adjusted) > 0 {
			uniform := 1.0 / float64(len(adjusted))
			for i := range adjusted {
				adjusted[i] = uniform
			}
		}
		cashWeight = 0
	}

	switch risk {
	case domain.RiskConservative:
		boost := min(conservativeCashShift, 1.0-cashWeight)
		if boost > 0 {
			cashWeight += boost
			scale(adjusted, 1.0-boost)
		}
		if sum(adjusted) > 0 {
			for _, idx := range universeIndices(defensiveTickers, universe) {
				if idx < len(adjusted) {
					adjusted[idx] *= defensiveBoost
				}
			}
		}
	case domain.RiskAggressive:
		reduction := min(aggressiveCashShift, cashWeight)
		if reduction > 0 && sum(adjusted) > 0 {
			cashWeight -= reduction
			weightTotal := sum(adjusted)
			for i := range adjusted {
				adjusted[i] += (adjusted[i] / weightTotal) * reduction
			}
		}
	}

	months := horizonMonths
	if months < 1 {
		months = 1
	}
	if months <= 6 {
		buffer := min(liquidityBufferShift, 1.0-cashWeight)
		if buffer > 0 {
			cashWeight += buffer
			scale(adjusted, 1.0-buffer)
		}
	} else if months >= 60 {
		indices := universeIndices(growthTickers, universe)
		if len(indices) > 0 {
			for _, idx := range indices {
				if idx < len(adjusted) {
					adjusted[idx] *= growthBoost
				}
			}
			cashWeight *= growthCashScale
		}
	}

	total = sum(adjusted) + cashWeight
	if total > 0 {
		scale(adjusted, 1/total)
		cashWeight /= total
	}

	for i, w := range adjusted {
		if w < 0 {
			adjusted[i] = 0
		}
	}
	if weightTotal := sum(adjusted); weightTotal > 0 {
		scale(adjusted, 1/(weightTotal+cashWeight))
	}

	return adjusted, cashWeight
}

func universeIndices(tickers, universe []string) []int {
	position := map[string]int{}
	for i, symbol := range universe {
		position[symbol] = i
	}
	indices := []int{}
	for _, ticker := range tickers {
		if idx, ok := position[ticker]; ok {
			indices = append(indices, idx)
		}
	}
	return indices
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func scale(values []float64, factor float64) {
	for i := range values {
		values[i] *= factor
	}
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
