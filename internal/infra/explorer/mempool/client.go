// Package mempool implements the bridgescan.UtxoExplorer interface on top of
// a mempool.space-style REST API.
package mempool

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/gabapcia/bridgewatch/internal/attribution"
	"github.com/gabapcia/bridgewatch/internal/bridgescan"
	"github.com/gabapcia/bridgewatch/internal/pkg/resilience/ratelimit"
	transport "github.com/gabapcia/bridgewatch/internal/pkg/transport/http"
)

// client implements bridgescan.UtxoExplorer against a mempool.space-style API.
type client struct {
	httpClient *retryablehttp.Client
	limiter    ratelimit.Limiter
	baseURL    string
}

// Compile-time assertion that client implements bridgescan.UtxoExplorer.
var _ bridgescan.UtxoExplorer = (*client)(nil)

// config holds the optional client settings.
type config struct {
	limiter ratelimit.Limiter
}

// Option configures the client.
type Option func(*config)

// WithRateLimiter spaces requests toward the explorer API, shared across all
// operations of this client.
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(c *config) {
		c.limiter = l
	}
}

// NewClient creates a UTXO explorer client for the given base URL.
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

// get performs one rate-limited GET against the given API path.
func (c *client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	return transport.GetJSON(ctx, c.httpClient, c.baseURL+path, nil, out)
}

type (
	// txInput is a single transaction input referencing its parent tx.
	txInput struct {
		TxID string `json:"txid"`
	}

	// txOutput is a single transaction output.
	txOutput struct {
		ScriptPubKey string `json:"scriptpubkey"`
		Address      string `json:"scriptpubkey_address"`
		Value        int64  `json:"value"`
	}

	// txStatus carries the confirmation state of a transaction.
	txStatus struct {
		Confirmed   bool  `json:"confirmed"`
		BlockHeight int64 `json:"block_height"`
	}

	// txResponse is a full transaction as returned by the API.
	txResponse struct {
		TxID   string     `json:"txid"`
		Vin    []txInput  `json:"vin"`
		Vout   []txOutput `json:"vout"`
		Status txStatus   `json:"status"`
	}
)

// toUtxoTransaction converts a txResponse into the explorer-neutral shape.
func (t txResponse) toUtxoTransaction() bridgescan.UtxoTransaction {
	inputs := make([]string, 0, len(t.Vin))
	for _, in := range t.Vin {
		if in.TxID != "" {
			inputs = append(inputs, in.TxID)
		}
	}

	outputs := make([]attribution.Output, len(t.Vout))
	for i, out := range t.Vout {
		outputs[i] = attribution.Output{
			Address: out.Address,
			Value:   out.Value,
			Script:  out.ScriptPubKey,
		}
	}

	return bridgescan.UtxoTransaction{
		ID:          t.TxID,
		BlockHeight: t.Status.BlockHeight,
		InputTxIDs:  inputs,
		Outputs:     outputs,
	}
}

// Transaction implements the bridgescan.UtxoExplorer interface.
func (c *client) Transaction(ctx context.Context, txid string) (bridgescan.UtxoTransaction, error) {
	var res txResponse
	if err := c.get(ctx, fmt.Sprintf("/tx/%s", url.PathEscape(txid)), &res); err != nil {
		return bridgescan.UtxoTransaction{}, err
	}

	return res.toUtxoTransaction(), nil
}

// AddressTransactions implements the bridgescan.UtxoExplorer interface.
func (c *client) AddressTransactions(ctx context.Context, address string) ([]bridgescan.UtxoTransaction, error) {
	var res []txResponse
	if err := c.get(ctx, fmt.Sprintf("/address/%s/txs", url.PathEscape(address)), &res); err != nil {
		return nil, err
	}

	txs := make([]bridgescan.UtxoTransaction, len(res))
	for i, tx := range res {
		txs[i] = tx.toUtxoTransaction()
	}

	return txs, nil
}

// TipHeight implements the bridgescan.UtxoExplorer interface.
func (c *client) TipHeight(ctx context.Context) (int64, error) {
	var height int64
	if err := c.get(ctx, "/blocks/tip/height", &height); err != nil {
		return 0, err
	}

	return height, nil
}
