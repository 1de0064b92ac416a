package domain

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// CashSymbol is the sentinel symbol for the cash line item in an allocation.
// At most one item per allocation carries it.
const CashSymbol = "cash"

// DefaultDow30Tickers is the fallback symbol universe, used when the
// evaluation artifact does not declare its own.
var DefaultDow30Tickers = []string{
	"AAPL", "MSFT", "JPM", "GS", "BA", "CAT", "MMM", "HON", "IBM", "NVDA",
	"KO", "MCD", "MRK", "MS", "NKE", "PG", "TRV", "UNH", "V", "VZ",
	"WMT", "CVX", "XOM", "AMGN", "AXP", "CRM", "CSCO", "DIS", "HD", "JNJ",
}

const (
	DefaultTestStart = "2021-01-01"
	DefaultTestEnd   = "2024-12-31"
)

// RawEvaluation is the typed form of the evaluation-results payload, decoded
// once at startup. Optional sections decode to empty slices.
type RawEvaluation struct {
	Metrics         map[string]float64
	PortfolioValues []float64
	ValueReturns    []float64
	PerStepReturns  []float64
	CashRatio       []float64
	Dates           []string
	Symbols         []string
	WeightsHistory  [][]float64
	CrisisLevels    []float64
	TestStart       string
	TestEnd         string
}

// PrecomputedArtifact is the normalized evaluation artifact. All per-step
// series share the same length (Steps) after reconciliation. It is loaded
// once at process start and never mutated.
type PrecomputedArtifact struct {
	Metrics          map[string]float64
	PortfolioValues  []float64
	PortfolioReturns []float64 // cumulative return per step
	ExecReturns      []float64 // per-step realized returns
	WeightsHistory   [][]float64
	CashSeries       []float64
	Dates            []string
	AvgCrisisLevel   *float64
	Symbols          []string
	TestStart        string
	TestEnd          string
}

// Steps returns the canonical step count of the artifact.
func (a PrecomputedArtifact) Steps() int {
	return len(a.PortfolioReturns)
}

type AllocationItem struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
}

// AllocationSignature builds a canonical string encoding of an allocation:
// symbols sorted lexicographically, weights rounded to 6 decimals. Two
// allocations that differ only in ordering or sub-1e-6 noise share a
// signature.
func AllocationSignature(allocation []AllocationItem) string {
	normalized := make([]AllocationItem, 0, len(allocation))
	for _, item := range allocation {
		if item.Symbol == "" {
			continue
		}
		normalized = append(normalized, item)
	}
	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].Symbol < normalized[j].Symbol
	})

	signature := ""
	for i, item := range normalized {
		if i > 0 {
			signature += "|"
		}
		signature += fmt.Sprintf("%s:%.6f", item.Symbol, item.Weight)
	}
	return signature
}

type AnalysisParams struct {
	InvestmentAmount  float64 `json:"investment_amount"`
	RiskTolerance     string  `json:"risk_tolerance"`
	InvestmentHorizon int     `json:"investment_horizon"`
}

type FormattedMetrics struct {
	TotalReturn     float64 `json:"total_return"`
	AnnualReturn    float64 `json:"annual_return"`
	SharpeRatio     float64 `json:"sharpe_ratio"`
	SortinoRatio    float64 `json:"sortino_ratio"`
	MaxDrawdown     float64 `json:"max_drawdown"`
	Volatility      float64 `json:"volatility"`
	WinRate         float64 `json:"win_rate"`
	ProfitLossRatio float64 `json:"profit_loss_ratio"`
}

type FeatureImportance struct {
	FeatureName     string  `json:"feature_name"`
	ImportanceScore float64 `json:"importance_score"`
	AssetName       string  `json:"asset_name"`
}

type AttentionWeight struct {
	FromAsset string  `json:"from_asset"`
	ToAsset   string  `json:"to_asset"`
	Weight    float64 `json:"weight"`
}

// BenchmarkSeries holds reference-index cumulative returns aligned to an
// artifact date axis.
type BenchmarkSeries struct {
	Dates []string  `json:"dates"`
	Spy   []float64 `json:"spy"`
	Qqq   []float64 `json:"qqq"`
}

// AnalysisResult is the full derived bundle for one normalized parameter set.
// Immutable once stored in the caches.
type AnalysisResult struct {
	ID                  uuid.UUID           `json:"id"`
	Params              AnalysisParams      `json:"params"`
	AnalysisMode        string              `json:"analysis_mode"`
	Allocation          []AllocationItem    `json:"allocation"`
	AllocationSignature string              `json:"allocation_signature"`
	Metrics             FormattedMetrics    `json:"metrics"`
	CashAmount          float64             `json:"cash_amount"`
	PortfolioReturns    []float64           `json:"portfolio_returns"`
	PortfolioValues     []float64           `json:"portfolio_values"`
	Dates               []string            `json:"dates"`
	Benchmarks          BenchmarkSeries     `json:"benchmarks"`
	CashSeries          []float64           `json:"cash_series"`
	ExecReturns         []float64           `json:"exec_returns"`
	FeatureImportance   []FeatureImportance `json:"feature_importance"`
	AttentionWeights    []AttentionWeight   `json:"attention_weights"`
	ExplanationText     string              `json:"explanation_text"`
	AvgCrisisLevel      *float64            `json:"avg_crisis_level,omitempty"`
}

type PerformanceHistoryRow struct {
	Date      string  `json:"date"`
	Portfolio float64 `json:"portfolio"`
	Spy       float64 `json:"spy"`
	Qqq       float64 `json:"qqq"`
}

type CorrelationPair struct {
	Stock1      string  `json:"stock1"`
	Stock2      string  `json:"stock2"`
	Correlation float64 `json:"correlation"`
}

type RiskReturnPoint struct {
	Symbol     string  `json:"symbol"`
	Risk       float64 `json:"risk"`
	ReturnRate float64 `json:"return_rate"`
	Allocation float64 `json:"allocation"`
}

type MarketQuote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	LastUpdated   string  `json:"last_updated"`
}

type HealthStatus struct {
	BundlePath       string          `json:"bundle_path"`
	CachedRuns       int             `json:"cached_runs"`
	LastParams       *AnalysisParams `json:"last_params"`
	PrecomputedSteps int             `json:"precomputed_steps"`
}
