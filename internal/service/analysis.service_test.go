package service

import (
	"context"
	"finflow/internal/domain"
	mock_repository "finflow/internal/repository/mocks"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestArtifact() *domain.PrecomputedArtifact {
	crisis := 0.3
	return &domain.PrecomputedArtifact{
		Metrics: map[string]float64{
			"total_return":      0.25,
			"annualized_return": 0.08,
			"sharpe_ratio":      1.1,
			"sortino_ratio":     1.4,
			"max_drawdown":      -0.12,
			"volatility":        0.15,
		},
		PortfolioValues:  []float64{100, 101, 103, 102},
		PortfolioReturns: []float64{0.01, 0.03, 0.02},
		ExecReturns:      []float64{0.02, -0.01, 0.03, 0.0, -0.02},
		WeightsHistory: [][]float64{
			{0.5, 0.4},
			{0.6, 0.3},
			{0.55, 0.35},
		},
		CashSeries:     []float64{0.1, 0.1, 0.1},
		Dates:          []string{"2024-01-02", "2024-01-03", "2024-01-04"},
		AvgCrisisLevel: &crisis,
		Symbols:        []string{"AAPL", "MSFT"},
		TestStart:      "2024-01-02",
		TestEnd:        "2024-01-04",
	}
}

func newTestAnalysisService(t *testing.T) AnalysisService {
	t.Helper()
	ctrl := gomock.NewController(t)
	marketData := mock_repository.NewMockMarketDataRepository(ctrl)
	marketData.EXPECT().
		GetDailyCloses(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrDataUnavailable).
		AnyTimes()

	benchmarkService := NewBenchmarkService(marketData, nil)
	return NewAnalysisService(newTestArtifact(), "irt_assets/test", benchmarkService, nil)
}

func Test_GetAnalysis(t *testing.T) {
	ctx := context.Background()

	t.Run("repeated parameters return the cached result", func(t *testing.T) {
		analysisService := newTestAnalysisService(t)

		first, err := analysisService.GetAnalysis(ctx, 1000000, domain.RiskModerate, 12, domain.ModeFast)
		require.NoError(t, err)
		second, err := analysisService.GetAnalysis(ctx, 1000000, domain.RiskModerate, 12, domain.ModeFast)
		require.NoError(t, err)
		require.Same(t, first, second)
	})

	t.Run("risk and mode synonyms share a cache entry", func(t *testing.T) {
		analysisService := newTestAnalysisService(t)

		first, err := analysisService.GetAnalysis(ctx, 1000, "high", 12, "full")
		require.NoError(t, err)
		second, err := analysisService.GetAnalysis(ctx, 1000, domain.RiskAggressive, 12, domain.ModeAccurate)
		require.NoError(t, err)
		require.Same(t, first, second)

		require.Equal(t, domain.RiskAggressive, first.Params.RiskTolerance)
		require.Equal(t, domain.ModeAccurate, first.AnalysisMode)
	})

	t.Run("amounts differing below a cent share a cache entry", func(t *testing.T) {
		analysisService := newTestAnalysisService(t)

		first, err := analysisService.GetAnalysis(ctx, 1000.004, domain.RiskModerate, 12, domain.ModeFast)
		require.NoError(t, err)
		second, err := analysisService.GetAnalysis(ctx, 1000.001, domain.RiskModerate, 12, domain.ModeFast)
		require.NoError(t, err)
		require.Same(t, first, second)
		require.InDelta(t, 1000.0, first.Params.InvestmentAmount, 1e-9)
	})

	t.Run("allocation honors the structural invariants", func(t *testing.T) {
		analysisService := newTestAnalysisService(t)

		analysis, err := analysisService.GetAnalysis(ctx, 1000000, domain.RiskConservative, 12, domain.ModeFast)
		require.NoError(t, err)

		total := 0.0
		cashItems := 0
		for _, item := range analysis.Allocation {
			require.GreaterOrEqual(t, item.Weight, 0.0)
			total += item.Weight
			if item.Symbol == domain.CashSymbol {
				cashItems++
			}
		}
		require.InDelta(t, 1.0, total, 1e-9)
		require.Equal(t, 1, cashItems)
		require.NotEmpty(t, analysis.ExplanationText)
	})

	t.Run("derived metrics come from the frozen evaluation", func(t *testing.T) {
		analysisService := newTestAnalysisService(t)

		analysis, err := analysisService.GetAnalysis(ctx, 1000000, domain.RiskModerate, 12, domain.ModeFast)
		require.NoError(t, err)

		require.InDelta(t, 25.0, analysis.Metrics.TotalReturn, 1e-9)
		require.InDelta(t, 12.0, analysis.Metrics.MaxDrawdown, 1e-9)
		require.InDelta(t, 40.0, analysis.Metrics.WinRate, 1e-9)
		require.NotEmpty(t, analysis.FeatureImportance)
		require.NotEmpty(t, analysis.AttentionWeights)
		// benchmark provider is down, the series degrade to zeros
		require.Len(t, analysis.Benchmarks.Spy, 3)
	})
}

func Test_GetAnalysisByAllocation(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips through the signature cache", func(t *testing.T) {
		analysisService := newTestAnalysisService(t)

		analysis, err := analysisService.GetAnalysis(ctx, 1000000, domain.RiskModerate, 12, domain.ModeFast)
		require.NoError(t, err)

		// a reordered copy of the allocation resolves to the same analysis
		reordered := make([]domain.AllocationItem, len(analysis.Allocation))
		copy(reordered, analysis.Allocation)
		for i, j := 0, len(reordered)-1; i < j; i, j = i+1, j-1 {
			reordered[i], reordered[j] = reordered[j], reordered[i]
		}
		require.Same(t, analysis, analysisService.GetAnalysisByAllocation(reordered))
	})

	t.Run("unknown allocation yields nil", func(t *testing.T) {
		analysisService := newTestAnalysisService(t)
		require.Nil(t, analysisService.GetAnalysisByAllocation([]domain.AllocationItem{
			{Symbol: "AAPL", Weight: 1.0},
		}))
	})
}

func Test_LastAnalysis(t *testing.T) {
	ctx := context.Background()
	analysisService := newTestAnalysisService(t)

	require.Nil(t, analysisService.LastAnalysis())

	analysis, err := analysisService.GetAnalysis(ctx, 1000, domain.RiskModerate, 12, domain.ModeFast)
	require.NoError(t, err)
	require.Same(t, analysis, analysisService.LastAnalysis())

	other, err := analysisService.GetAnalysis(ctx, 2000, domain.RiskAggressive, 24, domain.ModeFast)
	require.NoError(t, err)
	require.Same(t, other, analysisService.LastAnalysis())
}

func Test_PerformanceHistory(t *testing.T) {
	ctx := context.Background()
	analysisService := newTestAnalysisService(t)

	analysis, err := analysisService.GetAnalysis(ctx, 1000, domain.RiskModerate, 12, domain.ModeFast)
	require.NoError(t, err)

	t.Run("unbounded request returns every step", func(t *testing.T) {
		history := analysisService.PerformanceHistory(analysis, "", "")
		require.Len(t, history, 3)
		require.Equal(t, "2024-01-02", history[0].Date)
		require.InDelta(t, 0.01, history[0].Portfolio, 1e-9)
	})

	t.Run("date window filters rows", func(t *testing.T) {
		history := analysisService.PerformanceHistory(analysis, "2024-01-03", "2024-01-03")
		require.Len(t, history, 1)
		require.Equal(t, "2024-01-03", history[0].Date)
		require.InDelta(t, 0.03, history[0].Portfolio, 1e-9)
	})
}

func Test_HealthStatus(t *testing.T) {
	ctx := context.Background()
	analysisService := newTestAnalysisService(t)

	status := analysisService.HealthStatus()
	require.Equal(t, "irt_assets/test", status.BundlePath)
	require.Equal(t, 0, status.CachedRuns)
	require.Nil(t, status.LastParams)
	require.Equal(t, 3, status.PrecomputedSteps)

	_, err := analysisService.GetAnalysis(ctx, 1000, "low", 12, domain.ModeFast)
	require.NoError(t, err)

	status = analysisService.HealthStatus()
	require.Equal(t, 1, status.CachedRuns)
	require.NotNil(t, status.LastParams)
	require.Equal(t, domain.RiskConservative, status.LastParams.RiskTolerance)
}

func Test_GetAnalysis_EmptyArtifact(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	marketData := mock_repository.NewMockMarketDataRepository(ctrl)

	artifact := &domain.PrecomputedArtifact{
		Metrics: map[string]float64{},
		Symbols: []string{"AAPL", "MSFT"},
	}
	analysisService := NewAnalysisService(artifact, "irt_assets/test", NewBenchmarkService(marketData, nil), nil)

	analysis, err := analysisService.GetAnalysis(ctx, 1000, domain.RiskModerate, 12, domain.ModeFast)
	require.NoError(t, err)

	// no precomputed steps: equal weighting with no overlay
	require.Len(t, analysis.Allocation, 2)
	require.InDelta(t, 0.5, analysis.Allocation[0].Weight, 1e-9)
	require.InDelta(t, 0.5, analysis.Allocation[1].Weight, 1e-9)
	require.Equal(t, 0.0, analysis.CashAmount)
}
