package domain

import "time"

// CloseFrame holds daily close prices for a set of symbols on a shared date
// axis. Rows where any symbol is missing a price are dropped, so every
// symbol's series has exactly len(Dates) entries.
type CloseFrame struct {
	Dates  []time.Time
	Closes map[string][]float64
}

func (f CloseFrame) Empty() bool {
	return len(f.Dates) == 0 || len(f.Closes) == 0
}

// DailyReturns computes simple day-over-day returns for one symbol. The
// result has len(Dates)-1 entries; the first observation is consumed as the
// base.
func (f CloseFrame) DailyReturns(symbol string) []float64 {
	closes, ok := f.Closes[symbol]
	if !ok || len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (closes[i]-prev)/prev)
	}
	return returns
}
