package etherscan

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gabapcia/bridgewatch/internal/bridgescan"
)

// statusOK is the API envelope status flag for a successful query with
// results. Any other status on a list endpoint means "no results", not a hard
// error; the envelope carries the explanation in its message field.
const statusOK = "1"

// ErrUnexpectedStatus is returned when an endpoint that must produce a result
// (block resolution) reports a non-OK envelope status.
var ErrUnexpectedStatus = errors.New("explorer returned unexpected status")

type (
	// envelope is the standard etherscan-style response wrapper.
	envelope struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}

	// tokenTransferRow is a single tokentx result entry. All numeric fields
	// arrive as decimal strings.
	tokenTransferRow struct {
		BlockNumber     string `json:"blockNumber"`
		Hash            string `json:"hash"`
		From            string `json:"from"`
		ContractAddress string `json:"contractAddress"`
		To              string `json:"to"`
		Value           string `json:"value"`
		TokenSymbol     string `json:"tokenSymbol"`
		TokenDecimal    string `json:"tokenDecimal"`
	}

	// internalTxRow is a single txlistinternal result entry.
	internalTxRow struct {
		BlockNumber string `json:"blockNumber"`
		Hash        string `json:"hash"`
		From        string `json:"from"`
		To          string `json:"to"`
		Value       string `json:"value"`
	}

	// proxyTransaction is the eth_getTransactionByHash result object. Unlike
	// the list endpoints it is returned directly, without a status envelope.
	proxyTransaction struct {
		Result struct {
			Input string `json:"input"`
		} `json:"result"`
	}
)

// BlockNumberByTime implements the bridgescan.AccountExplorer interface,
// resolving the closest block at or before the given timestamp.
func (c *client) BlockNumberByTime(ctx context.Context, ts time.Time) (int64, error) {
	params := url.Values{}
	params.Set("module", "block")
	params.Set("action", "getblocknobytime")
	params.Set("timestamp", strconv.FormatInt(ts.Unix(), 10))
	params.Set("closest", "before")

	var env envelope
	if err := c.query(ctx, params, &env); err != nil {
		return 0, err
	}

	if env.Status != statusOK {
		return 0, fmt.Errorf("%w: %s - %s", ErrUnexpectedStatus, env.Status, env.Message)
	}

	var blockStr string
	if err := json.Unmarshal(env.Result, &blockStr); err != nil {
		return 0, err
	}

	return strconv.ParseInt(blockStr, 10, 64)
}

// TokenTransfers implements the bridgescan.AccountExplorer interface. A
// non-OK envelope status yields an empty slice, never an error.
func (c *client) TokenTransfers(ctx context.Context, address string, blockRange bridgescan.BlockRange) ([]bridgescan.TokenTransfer, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "tokentx")
	params.Set("address", address)
	params.Set("startblock", strconv.FormatInt(blockRange.StartBlock, 10))
	params.Set("endblock", strconv.FormatInt(blockRange.EndBlock, 10))
	params.Set("sort", "desc")

	var env envelope
	if err := c.query(ctx, params, &env); err != nil {
		return nil, err
	}

	if env.Status != statusOK {
		return []bridgescan.TokenTransfer{}, nil
	}

	var rows []tokenTransferRow
	if err := json.Unmarshal(env.Result, &rows); err != nil {
		return nil, err
	}

	transfers := make([]bridgescan.TokenTransfer, 0, len(rows))
	for _, row := range rows {
		decimals, err := strconv.ParseInt(row.TokenDecimal, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("transfer %s: invalid token decimal %q: %w", row.Hash, row.TokenDecimal, err)
		}

		height, err := strconv.ParseInt(row.BlockNumber, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("transfer %s: invalid block number %q: %w", row.Hash, row.BlockNumber, err)
		}

		transfers = append(transfers, bridgescan.TokenTransfer{
			Hash:            row.Hash,
			From:            row.From,
			To:              row.To,
			ContractAddress: row.ContractAddress,
			Symbol:          row.TokenSymbol,
			Decimals:        int32(decimals),
			RawAmount:       row.Value,
			BlockHeight:     height,
		})
	}

	return transfers, nil
}

// InternalTransactions implements the bridgescan.AccountExplorer interface.
// Zero-value entries are excluded; a non-OK envelope status yields an empty
// slice.
func (c *client) InternalTransactions(ctx context.Context, address string, blockRange bridgescan.BlockRange) ([]bridgescan.InternalTransaction, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "txlistinternal")
	params.Set("address", address)
	params.Set("startblock", strconv.FormatInt(blockRange.StartBlock, 10))
	params.Set("endblock", strconv.FormatInt(blockRange.EndBlock, 10))
	params.Set("sort", "desc")

	var env envelope
	if err := c.query(ctx, params, &env); err != nil {
		return nil, err
	}

	if env.Status != statusOK {
		return []bridgescan.InternalTransaction{}, nil
	}

	var rows []internalTxRow
	if err := json.Unmarshal(env.Result, &rows); err != nil {
		return nil, err
	}

	transactions := make([]bridgescan.InternalTransaction, 0, len(rows))
	for _, row := range rows {
		if row.Value == "" || row.Value == "0" {
			continue
		}

		height, err := strconv.ParseInt(row.BlockNumber, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("internal tx %s: invalid block number %q: %w", row.Hash, row.BlockNumber, err)
		}

		transactions = append(transactions, bridgescan.InternalTransaction{
			Hash:        row.Hash,
			From:        row.From,
			To:          row.To,
			RawAmount:   row.Value,
			BlockHeight: height,
		})
	}

	return transactions, nil
}

// TransactionInput implements the bridgescan.AccountExplorer interface,
// fetching and decoding the raw calldata payload of a transaction. A missing
// transaction or empty input yields an empty payload.
func (c *client) TransactionInput(ctx context.Context, hash string) ([]byte, error) {
	params := url.Values{}
	params.Set("module", "proxy")
	params.Set("action", "eth_getTransactionByHash")
	params.Set("txhash", hash)

	var res proxyTransaction
	if err := c.query(ctx, params, &res); err != nil {
		return nil, err
	}

	input := strings.TrimPrefix(res.Result.Input, "0x")
	if input == "" {
		return nil, nil
	}

	payload, err := hex.DecodeString(input)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: invalid input hex: %w", hash, err)
	}

	return payload, nil
}
