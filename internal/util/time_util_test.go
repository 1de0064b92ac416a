package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_ParseDate(t *testing.T) {
	t.Run("plain date", func(t *testing.T) {
		parsed, ok := ParseDate("2024-01-02")
		require.True(t, ok)
		require.Equal(t, NewDate(2024, 1, 2), parsed)
	})

	t.Run("rfc3339 timestamp truncates to the day", func(t *testing.T) {
		parsed, ok := ParseDate("2024-01-02T15:04:05Z")
		require.True(t, ok)
		require.Equal(t, NewDate(2024, 1, 2), parsed)
	})

	t.Run("date prefix of a longer string", func(t *testing.T) {
		parsed, ok := ParseDate("2024-01-02 00:00:00")
		require.True(t, ok)
		require.Equal(t, NewDate(2024, 1, 2), parsed)
	})

	t.Run("blank and junk values", func(t *testing.T) {
		_, ok := ParseDate("")
		require.False(t, ok)
		_, ok = ParseDate("not-a-date")
		require.False(t, ok)
	})
}

func Test_PeriodRange(t *testing.T) {
	now := time.Date(2024, 6, 14, 13, 30, 0, 0, time.UTC)

	t.Run("known labels", func(t *testing.T) {
		start, end := PeriodRange("1mo", now)
		require.Equal(t, NewDate(2024, 6, 14), end)
		require.Equal(t, NewDate(2024, 5, 14), start)

		start, _ = PeriodRange("5y", now)
		require.Equal(t, NewDate(2019, 6, 14), start)

		start, _ = PeriodRange("ytd", now)
		require.Equal(t, NewDate(2024, 1, 1), start)
	})

	t.Run("unknown labels default to one year", func(t *testing.T) {
		start, end := PeriodRange("1y", now)
		defaultStart, defaultEnd := PeriodRange("whatever", now)
		require.Equal(t, start, defaultStart)
		require.Equal(t, end, defaultEnd)
		require.Equal(t, NewDate(2023, 6, 14), start)
	})
}
