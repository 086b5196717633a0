package bridgescan

import (
	"context"
	"time"

	"github.com/gabapcia/bridgewatch/internal/attribution"
)

// BlockRange is a resolved scan window on a chain. It is immutable once
// computed and recomputed on every run. StartBlock is never greater than
// EndBlock for a range produced by resolveWindow.
type BlockRange struct {
	ChainID    int64 // chain identifier the range was resolved on
	StartBlock int64 // first block of the window, inclusive
	EndBlock   int64 // last block of the window, inclusive
}

// TokenTransfer is a raw ERC-20-style transfer log row as returned by the
// account-chain explorer. Rows are never mutated after fetch; filtering out
// rows whose To does not match the address of interest is the caller's job.
type TokenTransfer struct {
	Hash            string // transaction hash (may repeat across rows)
	From            string // sender address
	To              string // recipient address
	ContractAddress string // token contract address
	Symbol          string // token symbol
	Decimals        int32  // token decimal precision
	RawAmount       string // unscaled integer amount
	BlockHeight     int64  // block the transfer was mined in
}

// InternalTransaction is a raw native-asset transfer row. Zero-value entries
// are excluded by the fetcher.
type InternalTransaction struct {
	Hash        string // parent transaction hash
	From        string // sender address
	To          string // recipient address
	RawAmount   string // unscaled wei amount
	BlockHeight int64  // block the transfer was mined in
}

// UtxoTransaction is a raw UTXO-chain transaction with its inputs' parent
// transaction ids and its full output list.
type UtxoTransaction struct {
	ID          string               // transaction id
	BlockHeight int64                // confirmed height (0 while unconfirmed)
	InputTxIDs  []string             // parent transaction ids referenced by the inputs
	Outputs     []attribution.Output // all outputs, including data outputs
}

// AccountExplorer is the block-explorer surface for the account-based chain.
//
// The list operations return an empty slice, never an error, when the source
// reports no matches; transport and response errors are returned as-is and
// wrapped into the service's error taxonomy by the caller. Results are sorted
// by recency (descending) as returned by the source.
type AccountExplorer interface {
	// BlockNumberByTime resolves the block whose timestamp is the greatest
	// timestamp at or before ts.
	BlockNumberByTime(ctx context.Context, ts time.Time) (int64, error)

	// TokenTransfers lists ERC-20-style transfer rows touching address within
	// the block range. Rows where To differs from address are included and
	// must be discarded by the caller.
	TokenTransfers(ctx context.Context, address string, blockRange BlockRange) ([]TokenTransfer, error)

	// InternalTransactions lists native-asset transfers to or from address
	// within the block range, zero-value entries excluded.
	InternalTransactions(ctx context.Context, address string, blockRange BlockRange) ([]InternalTransaction, error)

	// TransactionInput fetches the raw calldata payload of a transaction.
	// A transaction with no payload yields an empty slice.
	TransactionInput(ctx context.Context, hash string) ([]byte, error)
}

// UtxoExplorer is the explorer surface for the UTXO-based chain.
type UtxoExplorer interface {
	// Transaction fetches a single transaction by id, including its outputs.
	Transaction(ctx context.Context, txid string) (UtxoTransaction, error)

	// AddressTransactions lists all transactions touching the address.
	AddressTransactions(ctx context.Context, address string) ([]UtxoTransaction, error)

	// TipHeight returns the current chain tip height.
	TipHeight(ctx context.Context) (int64, error)
}
