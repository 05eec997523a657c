package signal

// Decision is the per-sample trading action.
type Decision int

const (
	Hold Decision = iota
	Buy
	Sell
)

func (d Decision) String() string {
	switch d {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Decide compares the previous and current EMA pairs and declares a crossover
// when the slow-fast difference changes sign between the two samples. Touching
// zero on either side counts as a crossover. On a crossover the direction
// follows the current pair: slow above fast means downward momentum has taken
// over (SELL), otherwise BUY.
//
// The caller must only invoke this once per distinct sample, i.e. with
// curr.Time != prev.Time.
func Decide(prev, curr State) Decision {
	dPrev := prev.Slow.Sub(prev.Fast)
	dCurr := curr.Slow.Sub(curr.Fast)

	if dPrev.Mul(dCurr).Sign() > 0 {
		return Hold
	}
	if curr.Slow.GreaterThan(curr.Fast) {
		return Sell
	}
	return Buy
}
