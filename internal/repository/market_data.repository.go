package repository

import (
	"context"
	"finflow/internal/domain"
	"finflow/internal/logger"
	"fmt"
	"sort"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

// MarketDataRepository is the boundary to the external market-data provider.
// It is best-effort: a total fetch failure surfaces as ErrDataUnavailable and
// callers choose how to degrade.
type MarketDataRepository interface {
	GetDailyCloses(ctx context.Context, symbols []string, start, end time.Time) (*domain.CloseFrame, error)
	GetQuote(ctx context.Context, symbol string) (*domain.MarketQuote, error)
}

type marketDataRepositoryHandler struct {
	timeout time.Duration
}

func NewMarketDataRepository(timeout time.Duration) MarketDataRepository {
	return marketDataRepositoryHandler{timeout: timeout}
}

func (h marketDataRepositoryHandler) GetDailyCloses(ctx context.Context, symbols []string, start, end time.Time) (*domain.CloseFrame, error) {
	log := logger.FromContext(ctx)

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	cleaned := []string{}
	for _, s := range symbols {
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return &domain.CloseFrame{Closes: map[string][]float64{}}, nil
	}

	// chart.Get treats end as exclusive, so push it one day out to keep the
	// final session in range.
	fetchEnd := end.AddDate(0, 0, 1)

	perSymbol := map[string]map[string]float64{}
	for _, symbol := range cleaned {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		closes, err := fetchDailyCloses(symbol, start, fetchEnd)
		if err != nil {
			log.Warnf("failed to fetch prices for %s: %s", symbol, err.Error())
			continue
		}
		if len(closes) > 0 {
			perSymbol[symbol] = closes
		}
	}

	if len(perSymbol) == 0 {
		return nil, fmt.Errorf("%w: no close prices for %v", domain.ErrDataUnavailable, cleaned)
	}

	return buildCloseFrame(perSymbol), nil
}

func fetchDailyCloses(symbol string, start, end time.Time) (map[string]float64, error) {
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	closes := map[string]float64{}
	for iter.Next() {
		bar := iter.Bar()
		price := bar.AdjClose
		if price.Equal(decimal.Zero) {
			price = bar.Close
		}
		day := time.Unix(int64(bar.Timestamp), 0).UTC().Format(time.DateOnly)
		closes[day] = price.InexactFloat64()
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get prices for %s: %w", symbol, err)
	}

	return closes, nil
}

// buildCloseFrame intersects the per-symbol series onto the dates every
// symbol has data for, mirroring a dropna over the joined frame.
func buildCloseFrame(perSymbol map[string]map[string]float64) *domain.CloseFrame {
	var shared map[string]bool
	for _, closes := range perSymbol {
		if shared == nil {
			shared = map[string]bool{}
			for day := range closes {
				shared[day] = true
			}
			continue
		}
		for day := range shared {
			if _, ok := closes[day]; !ok {
				delete(shared, day)
			}
		}
	}

	days := make([]string, 0, len(shared))
	for day := range shared {
		days = append(days, day)
	}
	sort.Strings(days)

	frame := &domain.CloseFrame{
		Dates:  make([]time.Time, 0, len(days)),
		Closes: map[string][]float64{},
	}
	for _, day := range days {
		t, _ := time.Parse(time.DateOnly, day)
		frame.Dates = append(frame.Dates, t)
	}
	for symbol, closes := range perSymbol {
		series := make([]float64, 0, len(days))
		for _, day := range days {
			series = append(series, closes[day])
		}
		frame.Closes[symbol] = series
	}
	return frame
}

func (h marketDataRepositoryHandler) GetQuote(ctx context.Context, symbol string) (*domain.MarketQuote, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	type quoteResult struct {
		quote *domain.MarketQuote
		err   error
	}
	results := make(chan quoteResult, 1)
	go func() {
		q, err := quote.Get(symbol)
		if err != nil {
			results <- quoteResult{nil, fmt.Errorf("%w: quote for %s: %s", domain.ErrDataUnavailable, symbol, err.Error())}
			return
		}
		if q == nil {
			results <- quoteResult{nil, fmt.Errorf("%w: empty quote for %s", domain.ErrDataUnavailable, symbol)}
			return
		}
		results <- quoteResult{&domain.MarketQuote{
			Symbol:        symbol,
			Name:          q.ShortName,
			Price:         q.RegularMarketPrice,
			Change:        q.RegularMarketChange,
			ChangePercent: q.RegularMarketChangePercent,
		}, nil}
	}()

	select {
	case <-ctx.Done():
		// abandon the stalled fetch, the buffered channel lets it finish
		return nil, fmt.Errorf("%w: quote for %s: %s", domain.ErrDataUnavailable, symbol, ctx.Err().Error())
	case res := <-results:
		return res.quote, res.err
	}
}
