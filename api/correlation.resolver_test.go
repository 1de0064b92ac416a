package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_correlationAnalysis(t *testing.T) {
	t.Run("empty tickers are a 400", func(t *testing.T) {
		handler := ApiHandler{}
		recorder := postJSON(t, handler.correlationAnalysis, `{"tickers": []}`)
		require.Equal(t, 400, recorder.Code)
	})
}
