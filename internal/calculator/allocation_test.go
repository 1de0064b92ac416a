package calculator

import (
	"finflow/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_FormatAllocation(t *testing.T) {
	universe := []string{"AAPL", "MSFT", "JNJ"}

	t.Run("appends cash and sorts descending", func(t *testing.T) {
		allocation, cashAmount := FormatAllocation([]float64{0.3, 0.5, 0}, 0.2, 1000, universe)

		require.Len(t, allocation, 4)
		require.Equal(t, "MSFT", allocation[0].Symbol)
		require.Equal(t, "AAPL", allocation[1].Symbol)
		require.Equal(t, domain.CashSymbol, allocation[2].Symbol)
		require.Equal(t, "JNJ", allocation[3].Symbol)
		require.InDelta(t, 200.0, cashAmount, 1e-9)

		total := 0.0
		for _, item := range allocation {
			require.GreaterOrEqual(t, item.Weight, 0.0)
			total += item.Weight
		}
		require.InDelta(t, 1.0, total, 1e-9)
	})

	t.Run("weights beyond the universe are dropped and the rest renormalized", func(t *testing.T) {
		allocation, cashAmount := FormatAllocation([]float64{0.4, 0.4, 0.1, 0.1}, 0, 1000, []string{"AAPL", "MSFT"})

		require.Len(t, allocation, 2)
		require.InDelta(t, 0.5, allocation[0].Weight, 1e-9)
		require.InDelta(t, 0.5, allocation[1].Weight, 1e-9)
		require.Equal(t, 0.0, cashAmount)
	})

	t.Run("zero cash weight omits the cash item", func(t *testing.T) {
		allocation, cashAmount := FormatAllocation([]float64{0.6, 0.4, 0}, 0, 500, universe)
		for _, item := range allocation {
			require.NotEqual(t, domain.CashSymbol, item.Symbol)
		}
		require.Equal(t, 0.0, cashAmount)
	})
}
