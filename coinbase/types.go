package coinbase

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Candle is one OHLCV bucket from the exchange history endpoint.
//
// The REST API encodes candles as flat arrays of the form
// [ time, low, high, open, close, volume ] and returns them newest first;
// callers that need chronological order must reverse the slice themselves.
type Candle struct {
	Time   int64
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

func (c *Candle) UnmarshalJSON(data []byte) error {
	var raw []json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "decode candle array")
	}
	if len(raw) < 6 {
		return errors.Errorf("candle array has %d fields, want 6", len(raw))
	}

	ts, err := raw[0].Int64()
	if err != nil {
		return errors.Wrap(err, "candle timestamp")
	}

	fields := [5]*decimal.Decimal{&c.Low, &c.High, &c.Open, &c.Close, &c.Volume}
	for i, dst := range fields {
		v, err := decimal.NewFromString(raw[i+1].String())
		if err != nil {
			return errors.Wrapf(err, "candle field %d", i+1)
		}
		*dst = v
	}
	c.Time = ts
	return nil
}

// Account is one entry of the /accounts response.
type Account struct {
	ID       string          `json:"id"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// AccountSnapshot holds the USD and BTC balances at one point in time.
// It is always fetched fresh and never cached beyond a single report.
type AccountSnapshot struct {
	USD decimal.Decimal
	BTC decimal.Decimal
}

// Side of a market order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderRequest describes a market order. A sell specifies Size (BTC), a buy
// specifies Funds (USD); the unused field stays zero and is omitted from the
// request body.
type OrderRequest struct {
	Side    Side
	Product string
	Size    decimal.Decimal
	Funds   decimal.Decimal
}

// OrderResult is the outcome of an order submission. A business rejection by
// the exchange (4xx) is reported here with Accepted=false rather than as an
// error, so callers can treat it as a recoverable event.
type OrderResult struct {
	Accepted      bool
	OrderID       string
	Status        string
	StatusCode    int
	FailureReason string
}

// Fill is one execution record of a submitted order. TradeID is numeric on
// the wire, so it is kept as json.Number and rendered with String.
type Fill struct {
	TradeID json.Number     `json:"trade_id"`
	Price   decimal.Decimal `json:"price"`
	Fee     decimal.Decimal `json:"fee"`
}
