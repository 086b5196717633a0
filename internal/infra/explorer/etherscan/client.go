// Package etherscan implements the bridgescan.AccountExplorer interface on
// top of an etherscan-style query-parameter HTTP API.
package etherscan

import (
	"context"
	"net/url"
	"strconv"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/gabapcia/bridgewatch/internal/bridgescan"
	"github.com/gabapcia/bridgewatch/internal/pkg/resilience/ratelimit"
	transport "github.com/gabapcia/bridgewatch/internal/pkg/transport/http"
)

// client implements bridgescan.AccountExplorer against an etherscan-style API.
type client struct {
	httpClient *retryablehttp.Client
	limiter    ratelimit.Limiter
	baseURL    string
	apiKey     string
	chainID    int64
}

// Compile-time assertion that client implements bridgescan.AccountExplorer.
var _ bridgescan.AccountExplorer = (*client)(nil)

// config holds the optional client settings.
type config struct {
	limiter ratelimit.Limiter
}

// Option configures the client.
type Option func(*config)

// WithRateLimiter spaces requests toward the explorer API. The limiter is
// shared across all operations of this client, including parallel workers.
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(c *config) {
		c.limiter = l
	}
}

// NewClient creates an explorer client for the given endpoint, API key, and
// chain id.
func NewClient(httpClient *retryablehttp.Client, baseURL, apiKey string, chainID int64, opts ...Option) *client {
	cfg := config{limiter: ratelimit.New(0)}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &client{
		httpClient: httpClient,
		limiter:    cfg.limiter,
		baseURL:    baseURL,
		apiKey:     apiKey,
		chainID:    chainID,
	}
}

// query performs one rate-limited GET against the API with the base
// parameters (chainid, apikey) merged in, decoding the response into out.
func (c *client) query(ctx context.Context, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("chainid", strconv.FormatInt(c.chainID, 10))
	params.Set("apikey", c.apiKey)

	return transport.GetJSON(ctx, c.httpClient, c.baseURL, params, out)
}
