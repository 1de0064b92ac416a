package service

import (
	"context"
	"finflow/internal/domain"
	"finflow/internal/logger"
	"finflow/internal/metrics"
	"finflow/internal/repository"
	"finflow/internal/util"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

const annualTradingDays = 252

// MarketService serves the analytics that depend on live market data:
// correlation, risk/return scatter and the market-status board. Provider
// failures degrade to empty results.
type MarketService interface {
	CalculateCorrelation(ctx context.Context, tickers []string, period string) []domain.CorrelationPair
	CalculateRiskReturn(ctx context.Context, allocation []domain.AllocationItem, period string) []domain.RiskReturnPoint
	GetMarketStatus(ctx context.Context) ([]domain.MarketQuote, string)
}

type marketServiceHandler struct {
	marketData repository.MarketDataRepository
	collector  *metrics.Collector
	now        func() time.Time
}

func NewMarketService(marketData repository.MarketDataRepository, collector *metrics.Collector) MarketService {
	return &marketServiceHandler{
		marketData: marketData,
		collector:  collector,
		now:        time.Now,
	}
}

// marketBoard lists the reference quotes shown on the status board, in
// display order.
var marketBoard = []struct {
	symbol string
	name   string
}{
	{"^GSPC", "S&P 500"},
	{"^IXIC", "NASDAQ"},
	{"^VIX", "VIX Volatility Index"},
	{"KRW=X", "USD/KRW"},
}

// CalculateCorrelation fetches close prices for the given symbols over the
// period and emits upper-triangle correlation pairs of their daily returns,
// sorted by descending absolute correlation. Fewer than two valid symbols,
// or a total fetch failure, yields an empty result.
func (h *marketServiceHandler) CalculateCorrelation(ctx context.Context, tickers []string, period string) []domain.CorrelationPair {
	log := logger.FromContext(ctx)

	symbols := []string{}
	for _, ticker := range tickers {
		if ticker != "" && ticker != domain.CashSymbol {
			symbols = append(symbols, ticker)
		}
	}
	if len(symbols) < 2 {
		return []domain.CorrelationPair{}
	}

	start, end := util.PeriodRange(period, h.now())
	frame, err := h.marketData.GetDailyCloses(ctx, symbols, start, end)
	if err != nil || frame.Empty() {
		h.collector.ProviderFailure()
		if err != nil {
			log.Warnf("correlation fetch failed: %s", err.Error())
		}
		return []domain.CorrelationPair{}
	}

	constant := map[string]bool{}
	for _, symbol := range symbols {
		returns := frame.DailyReturns(symbol)
		stdev, err := stats.StandardDeviationPopulation(returns)
		constant[symbol] = err != nil || stdev == 0
	}

	pairs := []domain.CorrelationPair{}
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			// constant trajectories have no defined correlation
			if constant[symbols[i]] || constant[symbols[j]] {
				continue
			}
			correlation, err := stats.Correlation(frame.DailyReturns(symbols[i]), frame.DailyReturns(symbols[j]))
			if err != nil || math.IsNaN(correlation) {
				continue
			}
			pairs = append(pairs, domain.CorrelationPair{
				Stock1:      symbols[i],
				Stock2:      symbols[j],
				Correlation: correlation,
			})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].Correlation) > math.Abs(pairs[j].Correlation)
	})
	return pairs
}

// CalculateRiskReturn annualizes each non-cash symbol's mean daily return
// and volatility over the period, paired with its allocation percentage.
func (h *marketServiceHandler) CalculateRiskReturn(ctx context.Context, allocation []domain.AllocationItem, period string) []domain.RiskReturnPoint {
	log := logger.FromContext(ctx)

	symbols := []string{}
	weightBySymbol := map[string]float64{}
	for _, item := range allocation {
		if item.Symbol == "" {
			continue
		}
		weightBySymbol[item.Symbol] = item.Weight
		if item.Symbol != domain.CashSymbol {
			symbols = append(symbols, item.Symbol)
		}
	}
	if len(symbols) == 0 {
		return []domain.RiskReturnPoint{}
	}

	start, end := util.PeriodRange(period, h.now())
	frame, err := h.marketData.GetDailyCloses(ctx, symbols, start, end)
	if err != nil || frame.Empty() {
		h.collector.ProviderFailure()
		if err != nil {
			log.Warnf("risk-return fetch failed: %s", err.Error())
		}
		return []domain.RiskReturnPoint{}
	}

	points := []domain.RiskReturnPoint{}
	for _, symbol := range symbols {
		returns := frame.DailyReturns(symbol)
		if len(returns) < 2 {
			continue
		}
		meanReturn, err := stats.Mean(returns)
		if err != nil {
			continue
		}
		stdev, err := stats.StandardDeviationSample(returns)
		if err != nil {
			continue
		}
		points = append(points, domain.RiskReturnPoint{
			Symbol:     symbol,
			Risk:       stdev * math.Sqrt(annualTradingDays) * 100,
			ReturnRate: meanReturn * annualTradingDays * 100,
			Allocation: weightBySymbol[symbol] * 100,
		})
	}
	return points
}

// GetMarketStatus fetches live quotes for the status board. Symbols that
// fail to quote are skipped.
func (h *marketServiceHandler) GetMarketStatus(ctx context.Context) ([]domain.MarketQuote, string) {
	log := logger.FromContext(ctx)
	lastUpdated := h.now().Format(time.DateTime)

	quotes := []domain.MarketQuote{}
	for _, entry := range marketBoard {
		q, err := h.marketData.GetQuote(ctx, entry.symbol)
		if err != nil {
			h.collector.ProviderFailure()
			log.Warnf("quote fetch failed for %s: %s", entry.symbol, err.Error())
			continue
		}
		q.Name = entry.name
		q.LastUpdated = lastUpdated
		quotes = append(quotes, *q)
	}
	return quotes, lastUpdated
}
