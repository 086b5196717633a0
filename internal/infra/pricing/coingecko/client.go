// Package coingecko implements the bridgescan.PriceSource interface against
// the CoinGecko simple-price API.
package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/gabapcia/bridgewatch/internal/bridgescan"
	"github.com/gabapcia/bridgewatch/internal/pkg/resilience/ratelimit"
	transport "github.com/gabapcia/bridgewatch/internal/pkg/transport/http"
)

// ErrPriceNotFound is returned when the API response carries no USD quote for
// the requested asset.
var ErrPriceNotFound = errors.New("no usd price in response")

// tokenPlatform is the asset platform used for contract-address lookups.
const tokenPlatform = "ethereum"

// nativeIDs maps native asset symbols to their CoinGecko coin ids. Native
// assets are quoted by id; everything else needs a contract address.
var nativeIDs = map[string]string{
	"eth": "ethereum",
	"btc": "bitcoin",
}

// client implements bridgescan.PriceSource against the CoinGecko API.
type client struct {
	httpClient *retryablehttp.Client
	limiter    ratelimit.Limiter
	baseURL    string
}

// Compile-time assertion that client implements bridgescan.PriceSource.
var _ bridgescan.PriceSource = (*client)(nil)

// config holds the optional client settings.
type config struct {
	limiter ratelimit.Limiter
}

// Option configures the client.
type Option func(*config)

// WithRateLimiter spaces requests toward the price API.
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(c *config) {
		c.limiter = l
	}
}

// NewClient creates a price client for the given base URL.
func NewClient(httpClient *retryablehttp.Client, baseURL string, opts ...Option) *client {
	cfg := config{limiter: ratelimit.New(0)}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &client{
		httpClient: httpClient,
		limiter:    cfg.limiter,
		baseURL:    baseURL,
	}
}

// SpotPrice implements the bridgescan.PriceSource interface. Known native
// symbols are quoted by coin id; token symbols are quoted by contract address
// on the ethereum platform.
func (c *client) SpotPrice(ctx context.Context, symbol, contractAddress string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	if id, ok := nativeIDs[strings.ToLower(symbol)]; ok {
		return c.nativePrice(ctx, id)
	}

	return c.tokenPrice(ctx, contractAddress)
}

// nativePrice quotes a native asset by its coin id.
func (c *client) nativePrice(ctx context.Context, id string) (float64, error) {
	params := url.Values{}
	params.Set("ids", id)
	params.Set("vs_currencies", "usd")

	var res map[string]map[string]float64
	if err := transport.GetJSON(ctx, c.httpClient, c.baseURL+"/api/v3/simple/price", params, &res); err != nil {
		return 0, err
	}

	price, ok := res[id]["usd"]
	if !ok {
		return 0, fmt.Errorf("%w: coin id %s", ErrPriceNotFound, id)
	}

	return price, nil
}

// tokenPrice quotes a token by its contract address.
func (c *client) tokenPrice(ctx context.Context, contractAddress string) (float64, error) {
	if contractAddress == "" {
		return 0, fmt.Errorf("%w: no contract address for token lookup", ErrPriceNotFound)
	}

	params := url.Values{}
	params.Set("contract_addresses", contractAddress)
	params.Set("vs_currencies", "usd")

	endpoint := fmt.Sprintf("%s/api/v3/simple/token_price/%s", c.baseURL, tokenPlatform)

	var res map[string]map[string]float64
	if err := transport.GetJSON(ctx, c.httpClient, endpoint, params, &res); err != nil {
		return 0, err
	}

	price, ok := res[strings.ToLower(contractAddress)]["usd"]
	if !ok {
		return 0, fmt.Errorf("%w: contract %s", ErrPriceNotFound, contractAddress)
	}

	return price, nil
}
