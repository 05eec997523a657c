package signal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/cbtrade/coinbase"
)

func candlesFromCloses(startTime, step int64, closes ...float64) []coinbase.Candle {
	out := make([]coinbase.Candle, len(closes))
	for i, c := range closes {
		out[i] = coinbase.Candle{
			Time:  startTime + int64(i)*step,
			Close: decimal.NewFromFloat(c),
		}
	}
	return out
}

func TestComputeEmptyHistory(t *testing.T) {
	_, err := Compute(nil, DefaultFastPeriod, DefaultSlowPeriod)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestComputeInvalidPeriods(t *testing.T) {
	candles := candlesFromCloses(100, 60, 1, 2, 3)

	_, err := Compute(candles, 0, DefaultSlowPeriod)
	require.Error(t, err)

	_, err = Compute(candles, DefaultFastPeriod, -1)
	require.Error(t, err)
}

func TestComputeSingleCandleSeedsBothEMAs(t *testing.T) {
	state, err := Compute(candlesFromCloses(100, 60, 42), DefaultFastPeriod, DefaultSlowPeriod)
	require.NoError(t, err)

	assert.Equal(t, int64(100), state.Time)
	assert.True(t, state.Fast.Equal(decimal.NewFromInt(42)), "fast EMA should equal the only close")
	assert.True(t, state.Slow.Equal(decimal.NewFromInt(42)), "slow EMA should equal the only close")
}

func TestComputeMatchesHandRolledRecurrence(t *testing.T) {
	// period 3 gives k = 1/2, so the recurrence is easy to follow by hand:
	// ema = 1, then 2*0.5 + 1*0.5 = 1.5, then 3*0.5 + 1.5*0.5 = 2.25.
	state, err := Compute(candlesFromCloses(0, 60, 1, 2, 3), 3, 3)
	require.NoError(t, err)

	want := decimal.RequireFromString("2.25")
	assert.True(t, state.Fast.Equal(want), "got %s", state.Fast)
	assert.True(t, state.Slow.Equal(want), "got %s", state.Slow)
	assert.Equal(t, int64(120), state.Time)
}

func TestComputeRisingClosesPutFastAboveSlow(t *testing.T) {
	closes := make([]float64, 0, 10)
	for i := 0; i < 10; i++ {
		closes = append(closes, float64(101+i))
	}
	state, err := Compute(candlesFromCloses(100, 1, closes...), DefaultFastPeriod, DefaultSlowPeriod)
	require.NoError(t, err)

	assert.Equal(t, int64(109), state.Time)
	assert.True(t, state.Fast.GreaterThan(state.Slow),
		"fast EMA %s should track rising prices above slow EMA %s", state.Fast, state.Slow)
}

func TestComputeDeterministic(t *testing.T) {
	candles := candlesFromCloses(500, 360, 9.5, 9.7, 9.4, 10.2, 10.9, 10.1)

	a, err := Compute(candles, DefaultFastPeriod, DefaultSlowPeriod)
	require.NoError(t, err)
	b, err := Compute(candles, DefaultFastPeriod, DefaultSlowPeriod)
	require.NoError(t, err)

	assert.Equal(t, a.Time, b.Time)
	assert.True(t, a.Fast.Equal(b.Fast))
	assert.True(t, a.Slow.Equal(b.Slow))
}
