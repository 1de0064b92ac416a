package service

import (
	"context"
	"finflow/internal/domain"
	"finflow/internal/logger"
	"finflow/internal/metrics"
	"finflow/internal/repository"
	"finflow/internal/util"
	"hash/fnv"
	"sync"
)

const (
	spySymbol = "SPY"
	qqqSymbol = "QQQ"
)

// BenchmarkService aligns reference-index cumulative returns onto an
// artifact date axis. Provider failures degrade to zero series; Align never
// returns an error for a fetch problem.
type BenchmarkService interface {
	Align(ctx context.Context, dates []string) *domain.BenchmarkSeries
}

type benchmarkKey struct {
	start    string
	end      string
	length   int
	axisHash uint64
}

type benchmarkServiceHandler struct {
	marketData repository.MarketDataRepository
	collector  *metrics.Collector

	mu    sync.Mutex
	cache map[benchmarkKey]*domain.BenchmarkSeries
}

func NewBenchmarkService(marketData repository.MarketDataRepository, collector *metrics.Collector) BenchmarkService {
	return &benchmarkServiceHandler{
		marketData: marketData,
		collector:  collector,
		cache:      map[benchmarkKey]*domain.BenchmarkSeries{},
	}
}

// keyFor includes a hash of the full date axis: two axes with the same range
// and length but different interior dates must not share a cache entry.
func keyFor(dates []string) benchmarkKey {
	hasher := fnv.New64a()
	for _, date := range dates {
		hasher.Write([]byte(date))
		hasher.Write([]byte{'|'})
	}
	return benchmarkKey{
		start:    dates[0],
		end:      dates[len(dates)-1],
		length:   len(dates),
		axisHash: hasher.Sum64(),
	}
}

func (h *benchmarkServiceHandler) Align(ctx context.Context, dates []string) *domain.BenchmarkSeries {
	if len(dates) == 0 {
		return &domain.BenchmarkSeries{Dates: []string{}, Spy: []float64{}, Qqq: []float64{}}
	}

	key := keyFor(dates)
	h.mu.Lock()
	cached, ok := h.cache[key]
	h.mu.Unlock()
	if ok {
		return cached
	}

	series := h.fetchAligned(ctx, dates)

	h.mu.Lock()
	h.cache[key] = series
	h.mu.Unlock()
	return series
}

func (h *benchmarkServiceHandler) fetchAligned(ctx context.Context, dates []string) *domain.BenchmarkSeries {
	log := logger.FromContext(ctx)

	zeros := func() *domain.BenchmarkSeries {
		return &domain.BenchmarkSeries{
			Dates: dates,
			Spy:   make([]float64, len(dates)),
			Qqq:   make([]float64, len(dates)),
		}
	}

	start, okStart := util.ParseDate(dates[0])
	end, okEnd := util.ParseDate(dates[len(dates)-1])
	if !okStart || !okEnd {
		log.Warnf("unparseable benchmark range %s..%s - returning zero series", dates[0], dates[len(dates)-1])
		return zeros()
	}

	frame, err := h.marketData.GetDailyCloses(ctx, []string{spySymbol, qqqSymbol}, start, end)
	if err != nil || frame.Empty() {
		h.collector.ProviderFailure()
		if err != nil {
			log.Warnf("benchmark fetch failed: %s - returning zero series", err.Error())
		}
		return zeros()
	}

	return &domain.BenchmarkSeries{
		Dates: dates,
		Spy:   alignCumulativeReturns(frame, spySymbol, dates),
		Qqq:   alignCumulativeReturns(frame, qqqSymbol, dates),
	}
}

// alignCumulativeReturns cumulates the symbol's daily returns and reindexes
// them onto the requested axis: forward-fill from the most recent trading
// day, backward-fill for any leading gap, zeros when the symbol is missing.
func alignCumulativeReturns(frame *domain.CloseFrame, symbol string, dates []string) []float64 {
	closes, ok := frame.Closes[symbol]
	if !ok || len(closes) == 0 {
		return make([]float64, len(dates))
	}

	cumulative := make([]float64, len(closes))
	acc := 1.0
	for i := range closes {
		if i > 0 && closes[i-1] != 0 {
			acc *= 1.0 + (closes[i]-closes[i-1])/closes[i-1]
		}
		cumulative[i] = acc - 1.0
	}

	aligned := make([]float64, len(dates))
	cursor := -1
	firstFilled := -1
	for i, dateStr := range dates {
		target, okDate := util.ParseDate(dateStr)
		if okDate {
			for cursor+1 < len(frame.Dates) && !frame.Dates[cursor+1].After(target) {
				cursor++
			}
		}
		if cursor >= 0 {
			if firstFilled < 0 {
				firstFilled = i
			}
			aligned[i] = cumulative[cursor]
		}
	}
	// leading gap: backfill with the first aligned value, not the raw series
	for i := 0; i < firstFilled; i++ {
		aligned[i] = aligned[firstFilled]
	}
	return aligned
}
