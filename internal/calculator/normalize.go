package calculator

import (
	"finflow/internal/domain"
	"finflow/internal/util"
	"time"
)

// denominatorFloor guards step-return derivation against zero portfolio
// values.
const denominatorFloor = 1e-8

// NormalizeArtifact turns the raw evaluation payload into a reconciled
// artifact: missing series are derived from primitives and every per-step
// series is forced onto the canonical step count (the length of the
// cumulative-return series).
func NormalizeArtifact(raw *domain.RawEvaluation) *domain.PrecomputedArtifact {
	symbols := raw.Symbols
	if len(symbols) == 0 {
		symbols = domain.DefaultDow30Tickers
	}
	testStart := raw.TestStart
	if testStart == "" {
		testStart = domain.DefaultTestStart
	}
	testEnd := raw.TestEnd
	if testEnd == "" {
		testEnd = domain.DefaultTestEnd
	}

	valueReturns := append([]float64{}, raw.ValueReturns...)
	if len(valueReturns) == 0 && len(raw.PortfolioValues) > 1 {
		valueReturns = deriveStepReturns(raw.PortfolioValues)
	}

	cumulativeReturns := cumulateReturns(valueReturns)
	steps := len(cumulativeReturns)

	weightsHistory := copyMatrix(raw.WeightsHistory)
	cashSeries := append([]float64{}, raw.CashRatio...)
	dates := append([]string{}, raw.Dates...)

	if steps > 0 {
		weightsHistory = ReconcileWeightsHistory(weightsHistory, steps, len(symbols))
		cashSeries = ReconcileSeries(cashSeries, steps)
		if len(cashSeries) == 0 {
			cashSeries = deriveCashSeries(weightsHistory)
		}
		if len(dates) != steps {
			dates = reconcileDates(dates, steps, testStart)
		}
	}

	var avgCrisis *float64
	if len(raw.CrisisLevels) > 0 {
		mean := 0.0
		for _, level := range raw.CrisisLevels {
			mean += level
		}
		mean /= float64(len(raw.CrisisLevels))
		clamped := clamp01(mean)
		avgCrisis = &clamped
	}

	metrics := map[string]float64{}
	for name, value := range raw.Metrics {
		metrics[name] = value
	}

	return &domain.PrecomputedArtifact{
		Metrics:          metrics,
		PortfolioValues:  append([]float64{}, raw.PortfolioValues...),
		PortfolioReturns: cumulativeReturns,
		ExecReturns:      append([]float64{}, raw.PerStepReturns...),
		WeightsHistory:   weightsHistory,
		CashSeries:       cashSeries,
		Dates:            dates,
		AvgCrisisLevel:   avgCrisis,
		Symbols:          symbols,
		TestStart:        testStart,
		TestEnd:          testEnd,
	}
}

func deriveStepReturns(values []float64) []float64 {
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev < denominatorFloor {
			prev = denominatorFloor
		}
		returns = append(returns, (values[i]-values[i-1])/prev)
	}
	return returns
}

func cumulateReturns(stepReturns []float64) []float64 {
	cumulative := make([]float64, 0, len(stepReturns))
	acc := 1.0
	for _, r := range stepReturns {
		acc *= 1.0 + r
		cumulative = append(cumulative, acc-1.0)
	}
	return cumulative
}

// ReconcileWeightsHistory forces the weight history to exactly `steps` rows:
// excess rows are dropped from the back, shortfalls repeat the last row, and
// an absent history synthesizes a uniform equal-weight matrix.
func ReconcileWeightsHistory(history [][]float64, steps, numSymbols int) [][]float64 {
	if len(history) == 0 {
		if numSymbols == 0 {
			return history
		}
		uniform := 1.0 / float64(numSymbols)
		history = make([][]float64, steps)
		for i := range history {
			row := make([]float64, numSymbols)
			for j := range row {
				row[j] = uniform
			}
			history[i] = row
		}
		return history
	}

	if len(history) > steps {
		return history[:steps]
	}
	for len(history) < steps {
		last := history[len(history)-1]
		history = append(history, append([]float64{}, last...))
	}
	return history
}

// ReconcileSeries forces a per-step series to exactly `steps` entries,
// repeating the last value for shortfalls. Empty series stay empty so the
// caller can decide how to derive them.
func ReconcileSeries(series []float64, steps int) []float64 {
	if len(series) == 0 {
		return series
	}
	if len(series) > steps {
		return series[:steps]
	}
	for len(series) < steps {
		series = append(series, series[len(series)-1])
	}
	return series
}

func deriveCashSeries(weightsHistory [][]float64) []float64 {
	cash := make([]float64, 0, len(weightsHistory))
	for _, row := range weightsHistory {
		sum := 0.0
		for _, w := range row {
			sum += w
		}
		cash = append(cash, 1.0-sum)
	}
	return cash
}

// reconcileDates keeps the known prefix of the date list and continues it by
// one calendar day per missing step. Best-effort continuation, not a
// trading-calendar simulation.
func reconcileDates(dates []string, steps int, testStart string) []string {
	var cursor time.Time
	if len(dates) > 0 {
		if parsed, ok := util.ParseDate(dates[0]); ok {
			cursor = parsed
		}
	}
	if cursor.IsZero() {
		if parsed, ok := util.ParseDate(testStart); ok {
			cursor = parsed
		} else {
			cursor, _ = util.ParseDate(domain.DefaultTestStart)
		}
	}

	normalized := make([]string, 0, steps)
	for idx := 0; idx < steps; idx++ {
		if idx < len(dates) {
			normalized = append(normalized, dates[idx])
			if parsed, ok := util.ParseDate(dates[idx]); ok {
				cursor = parsed
			}
			continue
		}
		cursor = cursor.AddDate(0, 0, 1)
		normalized = append(normalized, cursor.Format(time.DateOnly))
	}
	return normalized
}

func copyMatrix(matrix [][]float64) [][]float64 {
	out := make([][]float64, 0, len(matrix))
	for _, row := range matrix {
		out = append(out, append([]float64{}, row...))
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
