package repository

import (
	"context"
	"errors"
	"finflow/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_GetQuote_CancelledContext(t *testing.T) {
	repo := NewMarketDataRepository(15 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetQuote(ctx, "^GSPC")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrDataUnavailable))
}

func Test_GetDailyCloses_CancelledContext(t *testing.T) {
	repo := NewMarketDataRepository(15 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetDailyCloses(ctx, []string{"SPY"}, time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
}
