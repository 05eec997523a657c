// Package trader contains the decision loop: the order executor, the
// content-block reporter and the state machine that samples candles, detects
// EMA crossovers and dispatches at most one market action per sampling
// interval, forever.
package trader

import (
	"context"

	"github.com/betbot/cbtrade/coinbase"
)

// Gateway is the slice of the exchange API the loop consumes. It is satisfied
// by *coinbase.Client; tests substitute a scripted fake.
type Gateway interface {
	// GetBalances fetches a fresh account snapshot.
	GetBalances(ctx context.Context) (coinbase.AccountSnapshot, error)
	// GetCandles fetches recent candles, newest first.
	GetCandles(ctx context.Context, product string, granularity int) ([]coinbase.Candle, error)
	// SubmitMarketOrder submits an order; business rejections come back as
	// OrderResult{Accepted: false}, not as errors.
	SubmitMarketOrder(ctx context.Context, req coinbase.OrderRequest) (coinbase.OrderResult, error)
	// GetFills fetches execution records, possibly empty while settling.
	GetFills(ctx context.Context, orderID string) ([]coinbase.Fill, error)
}

// reverseCandles flips an exchange-ordered (newest first) slice into the
// ascending order the signal engine expects. In place.
func reverseCandles(candles []coinbase.Candle) {
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}
}
