package trader

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/betbot/cbtrade/internal/signal"
)

const (
	defaultGranularity  = 360 * time.Second
	defaultDataDelay    = 300 * time.Second
	defaultErrorBackoff = 60 * time.Second

	// safetyMargin pads the waiting sleep so the next candle is published
	// before we sample again.
	safetyMargin = time.Second
	// sampleRetryDelay is the tight-loop pause while the exchange has not
	// yet published a new candle.
	sampleRetryDelay = time.Second
)

// LoopConfig tunes the trading loop timing and signal periods.
type LoopConfig struct {
	Product string
	// Granularity is the candle bucket width; one decision per bucket.
	Granularity time.Duration
	// DataDelay is the exchange-side lag before a candle becomes queryable.
	DataDelay time.Duration
	// ErrorBackoff is the fixed sleep after a failed cycle.
	ErrorBackoff time.Duration

	FastPeriod int
	SlowPeriod int
}

func (c *LoopConfig) applyDefaults() {
	if c.Granularity == 0 {
		c.Granularity = defaultGranularity
	}
	if c.DataDelay == 0 {
		c.DataDelay = defaultDataDelay
	}
	if c.ErrorBackoff == 0 {
		c.ErrorBackoff = defaultErrorBackoff
	}
	if c.FastPeriod == 0 {
		c.FastPeriod = signal.DefaultFastPeriod
	}
	if c.SlowPeriod == 0 {
		c.SlowPeriod = signal.DefaultSlowPeriod
	}
}

// Loop drives the cycle INIT -> WAITING -> SAMPLING -> DECIDING ->
// (EXECUTING | IDLE) -> WAITING, forever. Any failure inside a cycle moves
// the loop to ERROR_BACKOFF: the error is logged in full, the loop sleeps a
// fixed period, and the previous signal state is kept so the failed cycle's
// partial progress is discarded rather than committed.
//
// The loop is the single owner of the carried signal.State; Compute and
// Decide receive it by value and never mutate it.
type Loop struct {
	gateway  Gateway
	executor *Executor
	reporter *Reporter
	cfg      LoopConfig
	log      *logrus.Entry

	state signal.State

	cycles   int
	backoffs int

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewLoop(gateway Gateway, executor *Executor, reporter *Reporter, cfg LoopConfig) *Loop {
	cfg.applyDefaults()
	return &Loop{
		gateway:  gateway,
		executor: executor,
		reporter: reporter,
		cfg:      cfg,
		log:      logrus.WithField("component", "loop"),
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// State returns the carried signal state, for observation.
func (l *Loop) State() signal.State { return l.state }

// Cycles returns the number of completed (committed) cycles.
func (l *Loop) Cycles() int { return l.cycles }

// Backoffs returns the number of ERROR_BACKOFF transitions taken.
func (l *Loop) Backoffs() int { return l.backoffs }

// Run blocks until ctx is canceled. It never returns on exchange or data
// failures; those are absorbed by the backoff state.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := l.init(ctx)
		if err == nil {
			break
		}
		l.enterBackoff(ctx, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.cycle(ctx); err != nil {
			l.enterBackoff(ctx, err)
		}
	}
}

// init derives the starting signal state from a fresh candle fetch and
// reports the account balances.
func (l *Loop) init(ctx context.Context) error {
	snap, err := l.gateway.GetBalances(ctx)
	if err != nil {
		return err
	}
	l.reporter.Block("ACCOUNT INFO", balanceLines(snap)...)

	state, err := l.fetchState(ctx)
	if err != nil {
		return err
	}

	// If the newest candle is younger than the data delay it may still be a
	// partial bucket. Back last_time off one granularity so the first real
	// comparison is against a settled candle.
	if l.now().Unix()-state.Time < int64(l.cfg.DataDelay/time.Second) {
		state.Time -= int64(l.cfg.Granularity / time.Second)
	}

	l.state = state
	l.logEMAs(state)
	return nil
}

// cycle runs WAITING through EXECUTING/IDLE once. The carried state is
// replaced by the new sample only when the whole cycle succeeds; a rejected
// order counts as success (the executor absorbs it), so the same crossover is
// never re-attempted forever.
func (l *Loop) cycle(ctx context.Context) error {
	if err := l.waitForNextCandle(ctx); err != nil {
		return err
	}

	curr, err := l.sample(ctx)
	if err != nil {
		return err
	}
	l.logEMAs(curr)

	decision := signal.Decide(l.state, curr)

	switch decision {
	case signal.Buy:
		err = l.executor.Buy(ctx)
	case signal.Sell:
		err = l.executor.Sell(ctx)
	default:
		err = l.hold(ctx)
	}
	if err != nil {
		return err
	}

	l.state = curr
	l.cycles++
	return nil
}

// waitForNextCandle sleeps until the next distinct candle should be
// queryable: last sample time plus one granularity, plus the exchange data
// delay, plus a one second safety margin.
func (l *Loop) waitForNextCandle(ctx context.Context) error {
	next := time.Unix(l.state.Time, 0).Add(l.cfg.Granularity + l.cfg.DataDelay + safetyMargin)
	remain := next.Sub(l.now())
	if remain <= 0 {
		return ctx.Err()
	}
	return l.sleep(ctx, remain)
}

// sample recomputes the signal state from a fresh candle fetch, retrying in a
// tight one-second loop while the exchange still reports the previous candle
// as the newest (data-delay jitter).
func (l *Loop) sample(ctx context.Context) (signal.State, error) {
	for {
		state, err := l.fetchState(ctx)
		if err != nil {
			return signal.State{}, err
		}
		if state.Time != l.state.Time {
			return state, nil
		}
		if err := l.sleep(ctx, sampleRetryDelay); err != nil {
			return signal.State{}, err
		}
	}
}

func (l *Loop) fetchState(ctx context.Context) (signal.State, error) {
	candles, err := l.gateway.GetCandles(ctx, l.cfg.Product, int(l.cfg.Granularity/time.Second))
	if err != nil {
		return signal.State{}, err
	}
	reverseCandles(candles)
	return signal.Compute(candles, l.cfg.FastPeriod, l.cfg.SlowPeriod)
}

func (l *Loop) hold(ctx context.Context) error {
	snap, err := l.gateway.GetBalances(ctx)
	if err != nil {
		return err
	}
	l.reporter.Block("HOLD", append([]string{"Hold current balance"}, balanceLines(snap)...)...)
	return nil
}

// enterBackoff logs the failed cycle in full and sleeps the fixed backoff
// period. The carried state is untouched.
func (l *Loop) enterBackoff(ctx context.Context, err error) {
	l.backoffs++
	l.log.Errorf("cycle failed, backing off %s: %+v", l.cfg.ErrorBackoff, err)
	_ = l.sleep(ctx, l.cfg.ErrorBackoff)
}

func (l *Loop) logEMAs(state signal.State) {
	l.log.Infof("Current EMAs: EMA-%d %s, EMA-%d %s",
		l.cfg.FastPeriod, state.Fast.StringFixed(2),
		l.cfg.SlowPeriod, state.Slow.StringFixed(2))
}
