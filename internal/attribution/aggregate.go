package attribution

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/gabapcia/bridgewatch/internal/pkg/types"
)

// Key identifies one aggregation bucket: a derived group identity (integrator,
// wallet label, or partner) and the asset being accumulated.
type Key struct {
	Group string // integrator, wallet label, or partner display name
	Asset string // asset symbol (e.g. "ETH", "USDC", "BTC")
}

// Entry accumulates the per-bucket amount and USD value. Entries only ever
// grow within a run: folds are additive, there is no retraction or re-keying.
type Entry struct {
	Amount float64 // total asset amount
	USD    float64 // total USD value (0 when pricing was unavailable)
}

// Aggregator owns the aggregation mapping for one run. It is the only
// component that reads or writes the mapping; concurrent workers funnel their
// contributions through Accumulate, which serializes writes internally.
//
// Accumulation is idempotent in the algebraic sense (commutative and
// associative folds), not in the per-transaction sense: feeding the same
// transaction twice double-counts, which the classification cache prevents
// upstream.
type Aggregator struct {
	mu       sync.Mutex
	entries  types.DefaultMap[Key, *Entry]
	totalUSD float64
}

// NewAggregator creates an empty aggregator. The mapping lives for the run
// and is discarded at process exit; nothing is persisted.
func NewAggregator() *Aggregator {
	return &Aggregator{
		entries: types.NewDefaultMap[Key](func() *Entry { return new(Entry) }),
	}
}

// Accumulate folds an amount and its USD value into the bucket for key,
// creating the bucket on first contribution.
func (a *Aggregator) Accumulate(key Key, amount, usd float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry := a.entries.Get(key)
	entry.Amount += amount
	entry.USD += usd
	a.totalUSD += usd
}

// Entries returns a copy of the aggregation mapping. The copy is safe to hand
// to report emitters while workers are still accumulating.
func (a *Aggregator) Entries() map[Key]Entry {
	a.mu.Lock()
	defer a.mu.Unlock()

	snapshot := make(map[Key]Entry, a.entries.Len())
	for key, entry := range a.entries.ToMap() {
		snapshot[key] = *entry
	}
	return snapshot
}

// TotalUSD returns the running USD total across all buckets.
func (a *Aggregator) TotalUSD() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalUSD
}

// ScaleAmount converts a raw integer amount string into a float amount using
// the asset's decimal precision (raw / 10^decimals). Token amounts routinely
// exceed float64's integer range before scaling, so the division happens in
// decimal space.
func ScaleAmount(raw string, decimals int32) (float64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}

	return d.Shift(-decimals).InexactFloat64(), nil
}

// SatsToBTC converts a satoshi value to BTC.
func SatsToBTC(sats int64) float64 {
	return decimal.New(sats, -8).InexactFloat64()
}
