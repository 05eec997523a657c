// Package signal turns candle history into the EMA pair the trading loop
// trades on. Compute and Decide are pure; the loop owns the State value that
// carries between cycles.
package signal

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/betbot/cbtrade/coinbase"
)

// Default EMA periods of the crossover pair.
const (
	DefaultFastPeriod = 12
	DefaultSlowPeriod = 26
)

// ErrInsufficientData is returned when there is no candle history to seed
// the EMAs from.
var ErrInsufficientData = errors.New("signal: empty candle history")

// State is the signal snapshot carried between loop cycles: the timestamp of
// the newest candle and the two EMA values computed over the window ending
// there.
type State struct {
	Time int64
	Fast decimal.Decimal
	Slow decimal.Decimal
}

// Compute derives both EMAs over the closing prices of candles, which must be
// ordered ascending by time. Each EMA runs the classic recurrence
//
//	k      = 2 / (period + 1)
//	ema[0] = close[0]
//	ema[i] = close[i]*k + ema[i-1]*(1-k)
//
// seeded with the first close, both over the same full window. The result is
// deterministic for identical input.
func Compute(candles []coinbase.Candle, fastPeriod, slowPeriod int) (State, error) {
	if len(candles) == 0 {
		return State{}, ErrInsufficientData
	}
	if fastPeriod <= 0 || slowPeriod <= 0 {
		return State{}, errors.Errorf("signal: invalid EMA periods %d/%d", fastPeriod, slowPeriod)
	}

	return State{
		Time: candles[len(candles)-1].Time,
		Fast: ema(candles, fastPeriod),
		Slow: ema(candles, slowPeriod),
	}, nil
}

func ema(candles []coinbase.Candle, period int) decimal.Decimal {
	k := decimal.NewFromInt(2).Div(decimal.NewFromInt(int64(period) + 1))
	decay := decimal.NewFromInt(1).Sub(k)

	value := candles[0].Close
	for _, c := range candles[1:] {
		value = c.Close.Mul(k).Add(value.Mul(decay))
	}
	return value
}
