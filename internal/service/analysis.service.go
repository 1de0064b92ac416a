package service

import (
	"context"
	"finflow/internal/calculator"
	"finflow/internal/domain"
	"finflow/internal/metrics"
	"finflow/internal/util"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// tradingDaysPerMonth converts the requested horizon into an index on the
// artifact's step axis.
const tradingDaysPerMonth = 21

// AnalysisService is the core derivation engine: it owns the frozen
// artifact, the two analysis caches and the last-analysis pointer.
type AnalysisService interface {
	GetAnalysis(ctx context.Context, amount float64, risk string, horizon int, mode string) (*domain.AnalysisResult, error)
	GetAnalysisByAllocation(allocation []domain.AllocationItem) *domain.AnalysisResult
	LastAnalysis() *domain.AnalysisResult
	PerformanceHistory(analysis *domain.AnalysisResult, startDate, endDate string) []domain.PerformanceHistoryRow
	HealthStatus() domain.HealthStatus
}

type analysisKey struct {
	amount  float64
	risk    string
	horizon int
	mode    string
}

func (k analysisKey) String() string {
	return fmt.Sprintf("%.2f|%s|%d|%s", k.amount, k.risk, k.horizon, k.mode)
}

type analysisServiceHandler struct {
	artifact         *domain.PrecomputedArtifact
	bundlePath       string
	benchmarkService BenchmarkService
	collector        *metrics.Collector

	group singleflight.Group

	mu           sync.RWMutex
	byParams     map[analysisKey]*domain.AnalysisResult
	bySignature  map[string]*domain.AnalysisResult
	lastAnalysis *domain.AnalysisResult
}

func NewAnalysisService(
	artifact *domain.PrecomputedArtifact,
	bundlePath string,
	benchmarkService BenchmarkService,
	collector *metrics.Collector,
) AnalysisService {
	return &analysisServiceHandler{
		artifact:         artifact,
		bundlePath:       bundlePath,
		benchmarkService: benchmarkService,
		collector:        collector,
		byParams:         map[analysisKey]*domain.AnalysisResult{},
		bySignature:      map[string]*domain.AnalysisResult{},
	}
}

func normalizedKey(amount float64, risk string, horizon int, mode string) analysisKey {
	return analysisKey{
		amount:  math.Round(amount*100) / 100,
		risk:    domain.CanonicalRisk(risk),
		horizon: horizon,
		mode:    domain.CanonicalMode(mode),
	}
}

// GetAnalysis returns the cached result for the normalized parameters or
// derives it once. Concurrent misses on the same key collapse into a single
// derivation, so the caches never hold two results for one key.
func (h *analysisServiceHandler) GetAnalysis(ctx context.Context, amount float64, risk string, horizon int, mode string) (*domain.AnalysisResult, error) {
	key := normalizedKey(amount, risk, horizon, mode)

	h.mu.RLock()
	analysis, ok := h.byParams[key]
	h.mu.RUnlock()

	if ok {
		h.collector.CacheHit()
	} else {
		value, err, _ := h.group.Do(key.String(), func() (interface{}, error) {
			h.mu.RLock()
			existing, exists := h.byParams[key]
			h.mu.RUnlock()
			if exists {
				return existing, nil
			}

			h.collector.CacheMiss()
			created, err := h.createAnalysis(ctx, key)
			if err != nil {
				return nil, err
			}

			h.mu.Lock()
			h.byParams[key] = created
			h.bySignature[created.AllocationSignature] = created
			h.mu.Unlock()
			return created, nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInternalDerivation, err.Error())
		}
		analysis = value.(*domain.AnalysisResult)
	}

	h.mu.Lock()
	h.lastAnalysis = analysis
	h.mu.Unlock()
	return analysis, nil
}

func (h *analysisServiceHandler) createAnalysis(ctx context.Context, key analysisKey) (*domain.AnalysisResult, error) {
	artifact := h.artifact
	steps := artifact.Steps()

	var (
		baseWeights []float64
		cashWeight  float64
	)
	if steps == 0 {
		baseWeights = make([]float64, len(artifact.Symbols))
		if len(baseWeights) > 0 {
			uniform := 1.0 / float64(len(baseWeights))
			for i := range baseWeights {
				baseWeights[i] = uniform
			}
		}
	} else {
		targetIdx := key.horizon * tradingDaysPerMonth
		if targetIdx < 0 {
			targetIdx = 0
		}
		if targetIdx > steps-1 {
			targetIdx = steps - 1
		}

		weightsVec := make([]float64, len(artifact.Symbols))
		if targetIdx < len(artifact.WeightsHistory) {
			weightsVec = artifact.WeightsHistory[targetIdx]
		}
		if targetIdx < len(artifact.CashSeries) {
			cashWeight = artifact.CashSeries[targetIdx]
		}
		baseWeights, cashWeight = calculator.AdjustWeights(
			weightsVec, cashWeight, key.risk, key.horizon, artifact.Symbols,
		)
	}

	allocation, cashAmount := calculator.FormatAllocation(baseWeights, cashWeight, key.amount, artifact.Symbols)
	formattedMetrics := calculator.FormatMetrics(artifact.Metrics, artifact.ExecReturns)
	featureImportance := calculator.BuildFeatureImportance(artifact.WeightsHistory, artifact.Symbols)
	attentionWeights := calculator.BuildAttentionWeights(artifact.WeightsHistory, artifact.Symbols)
	benchmarks := h.benchmarkService.Align(ctx, artifact.Dates)

	analysis := &domain.AnalysisResult{
		ID: uuid.New(),
		Params: domain.AnalysisParams{
			InvestmentAmount:  key.amount,
			RiskTolerance:     key.risk,
			InvestmentHorizon: key.horizon,
		},
		AnalysisMode:        key.mode,
		Allocation:          allocation,
		AllocationSignature: domain.AllocationSignature(allocation),
		Metrics:             formattedMetrics,
		CashAmount:          cashAmount,
		PortfolioReturns:    artifact.PortfolioReturns,
		PortfolioValues:     artifact.PortfolioValues,
		Dates:               artifact.Dates,
		Benchmarks:          *benchmarks,
		CashSeries:          artifact.CashSeries,
		ExecReturns:         artifact.ExecReturns,
		FeatureImportance:   featureImportance,
		AttentionWeights:    attentionWeights,
		AvgCrisisLevel:      artifact.AvgCrisisLevel,
	}
	analysis.ExplanationText = calculator.BuildExplanationText(analysis)
	return analysis, nil
}

// GetAnalysisByAllocation retrieves a previously derived analysis given only
// its allocation, via the signature cache. Falls back to the last analysis
// when its signature matches; nil otherwise.
func (h *analysisServiceHandler) GetAnalysisByAllocation(allocation []domain.AllocationItem) *domain.AnalysisResult {
	signature := domain.AllocationSignature(allocation)

	h.mu.RLock()
	defer h.mu.RUnlock()
	if analysis, ok := h.bySignature[signature]; ok {
		return analysis
	}
	if h.lastAnalysis != nil && h.lastAnalysis.AllocationSignature == signature {
		return h.lastAnalysis
	}
	return nil
}

func (h *analysisServiceHandler) LastAnalysis() *domain.AnalysisResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastAnalysis
}

// PerformanceHistory projects an analysis onto date-filtered rows of
// portfolio and benchmark cumulative returns.
func (h *analysisServiceHandler) PerformanceHistory(analysis *domain.AnalysisResult, startDate, endDate string) []domain.PerformanceHistoryRow {
	start, hasStart := util.ParseDate(startDate)
	end, hasEnd := util.ParseDate(endDate)

	history := []domain.PerformanceHistoryRow{}
	for idx, dateStr := range analysis.Dates {
		date, parsed := util.ParseDate(dateStr)
		if parsed && hasStart && date.Before(start) {
			continue
		}
		if parsed && hasEnd && date.After(end) {
			continue
		}

		row := domain.PerformanceHistoryRow{Date: dateStr}
		if idx < len(analysis.PortfolioReturns) {
			row.Portfolio = analysis.PortfolioReturns[idx]
		}
		if idx < len(analysis.Benchmarks.Spy) {
			row.Spy = analysis.Benchmarks.Spy[idx]
		}
		if idx < len(analysis.Benchmarks.Qqq) {
			row.Qqq = analysis.Benchmarks.Qqq[idx]
		}
		history = append(history, row)
	}
	return history
}

func (h *analysisServiceHandler) HealthStatus() domain.HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := domain.HealthStatus{
		BundlePath:       h.bundlePath,
		CachedRuns:       len(h.byParams),
		PrecomputedSteps: h.artifact.Steps(),
	}
	if h.lastAnalysis != nil {
		params := h.lastAnalysis.Params
		status.LastParams = &params
	}
	return status
}
