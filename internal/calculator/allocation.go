package calculator

import (
	"finflow/internal/domain"
	"sort"
)

// FormatAllocation zips adjusted weights with the symbol universe, appends a
// cash line item when cash weight is positive, renormalizes the list to sum
// to 1 and sorts it descending by weight. The second return value is the
// cash amount in currency units.
func FormatAllocation(weights []float64, cashWeight, amount float64, universe []string) ([]domain.AllocationItem, float64) {
	allocation := []domain.AllocationItem{}
	for idx, weight := range weights {
		if idx >= len(universe) {
			break
		}
		allocation = append(allocation, domain.AllocationItem{
			Symbol: universe[idx],
			Weight: weight,
		})
	}

	if cashWeight > 0 {
		allocation = append(allocation, domain.AllocationItem{
			Symbol: domain.CashSymbol,
			Weight: cashWeight,
		})
	}

	total := 0.0
	for _, item := range allocation {
		total += item.Weight
	}
	if total > 0 {
		for i := range allocation {
			allocation[i].Weight /= total
		}
	}

	sort.SliceStable(allocation, func(i, j int) bool {
		return allocation[i].Weight > allocation[j].Weight
	})

	cashAmount := 0.0
	for _, item := range allocation {
		if item.Symbol == domain.CashSymbol {
			cashAmount = amount * item.Weight
			break
		}
	}
	return allocation, cashAmount
}
