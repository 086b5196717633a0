package bridgescan

import (
	"context"
	"strings"
	"sync"

	"github.com/gabapcia/bridgewatch/internal/pkg/logger"
)

// PriceSource resolves an asset to its current USD unit price. Implementations
// return an error when the price cannot be resolved; degradation policy lives
// in the oracle, not the source.
type PriceSource interface {
	// SpotPrice returns the current USD price for the asset. Native assets
	// are resolved by symbol alone; tokens require the contract address.
	SpotPrice(ctx context.Context, symbol, contractAddress string) (float64, error)
}

// priceOracle memoizes spot prices for the duration of one run. The cache is
// keyed by uppercased symbol, not by contract address: two contracts sharing
// a symbol collide and return the first-seen price. That is acceptable only
// because the asset set per run is small and symbol collisions are rare; it
// is a known sharp edge, kept deliberately.
//
// A resolution failure degrades to a zero price instead of failing the run,
// so a price-API outage still yields a volume-only report. Failures are not
// cached, letting later lookups in the same run recover.
type priceOracle struct {
	source PriceSource

	mu    sync.Mutex
	cache map[string]float64
}

// newPriceOracle creates a price oracle with an empty run-scoped cache.
func newPriceOracle(source PriceSource) *priceOracle {
	return &priceOracle{
		source: source,
		cache:  make(map[string]float64),
	}
}

// price returns the memoized USD price for the asset, or 0 when the source
// cannot resolve it.
func (o *priceOracle) price(ctx context.Context, symbol, contractAddress string) float64 {
	key := strings.ToUpper(symbol)

	o.mu.Lock()
	cached, ok := o.cache[key]
	o.mu.Unlock()
	if ok {
		return cached
	}

	price, err := o.source.SpotPrice(ctx, symbol, contractAddress)
	if err != nil {
		logger.Warn(ctx, "price unavailable, pricing at zero",
			"asset.symbol", symbol,
			"asset.contract", contractAddress,
			"error", err,
		)
		return 0
	}

	o.mu.Lock()
	o.cache[key] = price
	o.mu.Unlock()

	return price
}
