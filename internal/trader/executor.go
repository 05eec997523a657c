package trader

import (
	"context"
	"fmt"
	"time"

	"github.com/betbot/cbtrade/coinbase"
)

// Precision the exchange expects on order amounts.
const (
	usdPrecision = 2
	btcPrecision = 8
)

const defaultSettlementDelay = 2 * time.Second

// ExecutorConfig tunes the order executor.
type ExecutorConfig struct {
	Product string
	// SettlementDelay is how long to wait after an accepted order before
	// fetching fills.
	SettlementDelay time.Duration
	// DryRun logs the intended order instead of submitting it.
	DryRun bool
}

// Executor turns a BUY or SELL decision into a full-balance market order and
// reconciles the outcome into a report.
//
// The order amount is always the entire available balance of the relevant
// currency, truncated to exchange precision, with no minimum-size or
// fee-reserve check: the exchange is authoritative on rejections, and a
// rejected order is reported and absorbed rather than propagated, so it can
// never abort the loop.
type Executor struct {
	gateway  Gateway
	reporter *Reporter
	cfg      ExecutorConfig

	sleep func(ctx context.Context, d time.Duration) error
}

func NewExecutor(gateway Gateway, reporter *Reporter, cfg ExecutorConfig) *Executor {
	if cfg.SettlementDelay == 0 {
		cfg.SettlementDelay = defaultSettlementDelay
	}
	return &Executor{
		gateway:  gateway,
		reporter: reporter,
		cfg:      cfg,
		sleep:    sleepCtx,
	}
}

// Buy spends the entire USD balance on BTC at market.
func (e *Executor) Buy(ctx context.Context) error {
	snap, err := e.gateway.GetBalances(ctx)
	if err != nil {
		return err
	}
	funds := snap.USD.Truncate(usdPrecision)
	req := coinbase.OrderRequest{
		Side:    coinbase.SideBuy,
		Product: e.cfg.Product,
		Funds:   funds,
	}
	headline := fmt.Sprintf("Buy BTC with $%s", funds.StringFixed(usdPrecision))
	return e.execute(ctx, "BUY", headline, req)
}

// Sell liquidates the entire BTC balance at market.
func (e *Executor) Sell(ctx context.Context) error {
	snap, err := e.gateway.GetBalances(ctx)
	if err != nil {
		return err
	}
	size := snap.BTC.Truncate(btcPrecision)
	req := coinbase.OrderRequest{
		Side:    coinbase.SideSell,
		Product: e.cfg.Product,
		Size:    size,
	}
	headline := fmt.Sprintf("Sell BTC of %s", size.StringFixed(btcPrecision))
	return e.execute(ctx, "SELL", headline, req)
}

func (e *Executor) execute(ctx context.Context, title, headline string, req coinbase.OrderRequest) error {
	if e.cfg.DryRun {
		e.reporter.Block(title+" (DRY RUN)", headline)
		return nil
	}

	result, err := e.gateway.SubmitMarketOrder(ctx, req)
	if err != nil {
		return err
	}
	if !result.Accepted {
		e.reporter.ErrorBlock(title+" REJECTED",
			headline,
			fmt.Sprintf("%s (status %d)", result.FailureReason, result.StatusCode))
		return nil
	}

	// Give the order a moment to settle before asking for fills.
	if err := e.sleep(ctx, e.cfg.SettlementDelay); err != nil {
		return err
	}
	fills, err := e.gateway.GetFills(ctx, result.OrderID)
	if err != nil {
		return err
	}
	snap, err := e.gateway.GetBalances(ctx)
	if err != nil {
		return err
	}

	lines := []string{headline}
	for _, fill := range fills {
		lines = append(lines, fmt.Sprintf("Fill %s: price %s, fee %s",
			fill.TradeID.String(), fill.Price.String(), fill.Fee.String()))
	}
	lines = append(lines, balanceLines(snap)...)
	e.reporter.Block(title, lines...)
	return nil
}

// sleepCtx sleeps for d or until the context is canceled, whichever comes
// first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
