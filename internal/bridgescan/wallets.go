package bridgescan

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gabapcia/bridgewatch/internal/attribution"
	"github.com/gabapcia/bridgewatch/internal/pkg/logger"
	"github.com/gabapcia/bridgewatch/internal/pkg/types"
)

// nativeDecimals is the decimal precision of the account chain's native asset.
const nativeDecimals = 18

// nativeSymbol is the aggregation symbol for the account chain's native asset.
const nativeSymbol = "ETH"

// ScanWallets implements the Service interface.
func (s *service) ScanWallets(ctx context.Context) (Report, error) {
	return s.run(ctx, ScanKindWallets, "WALLET", s.scanWallets)
}

// scanWallets aggregates bridge volume by originating wallet software. Both
// native transfers (internal transactions) and ERC-20 transfers into the
// bridge are attributed through the method-selector table, priced in USD.
//
// The method-selector classification is independent of the integrator
// calldata scan; both may classify the same transaction for their respective
// reports.
func (s *service) scanWallets(ctx context.Context, agg *attribution.Aggregator, report *Report) error {
	end := s.now()
	blockRange, err := s.resolveWindow(ctx, end.Add(-s.cfg.TimeWindow), end)
	if err != nil {
		return err
	}
	report.Window = fmt.Sprintf("blocks %d-%d", blockRange.StartBlock, blockRange.EndBlock)

	var (
		internals []InternalTransaction
		transfers []TokenTransfer
	)
	err = s.execute(ctx, func() error {
		rows, err := s.account.InternalTransactions(ctx, s.cfg.BridgeAddress, blockRange)
		if err != nil {
			return err
		}
		internals = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: internal transactions: %w", ErrFetchFailed, err)
	}

	err = s.execute(ctx, func() error {
		rows, err := s.account.TokenTransfers(ctx, s.cfg.BridgeAddress, blockRange)
		if err != nil {
			return err
		}
		transfers = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: token transfers: %w", ErrFetchFailed, err)
	}

	report.Scanned = len(internals) + len(transfers)

	var (
		cache   = attribution.NewCache()
		matched atomic.Int64
	)

	// Native volume: every internal transaction row is a candidate; the
	// payload inspected is that of the parent transaction hash.
	internalsByHash := types.NewDefaultMap[string](func() []InternalTransaction { return nil })
	for _, tx := range internals {
		internalsByHash.Set(tx.Hash, append(internalsByHash.Get(tx.Hash), tx))
	}

	err = s.forEachHash(ctx, hashKeys(internalsByHash.ToMap()), func(ctx context.Context, hash string) error {
		classification, ok := s.classifyPayload(ctx, cache, hash, s.methods.Classify)
		if !ok {
			return ctx.Err()
		}
		if !classification.Recognized {
			return nil
		}

		for _, tx := range internalsByHash.Get(hash) {
			amount, err := attribution.ScaleAmount(tx.RawAmount, nativeDecimals)
			if err != nil {
				logger.Warn(ctx, "internal transaction skipped: unparsable amount",
					"tx.hash", tx.Hash,
					"error", err,
				)
				continue
			}

			usd := s.oracle.price(ctx, nativeSymbol, "") * amount
			agg.Accumulate(attribution.Key{Group: classification.Group, Asset: nativeSymbol}, amount, usd)
			matched.Add(1)
		}

		return nil
	})
	if err != nil {
		return err
	}

	// Token volume: same classification table, applied to transfers whose
	// recipient is the bridge address.
	transfersByHash := types.NewDefaultMap[string](func() []TokenTransfer { return nil })
	for _, transfer := range transfers {
		if !sameAddress(transfer.To, s.cfg.BridgeAddress) {
			continue
		}
		transfersByHash.Set(transfer.Hash, append(transfersByHash.Get(transfer.Hash), transfer))
	}

	err = s.forEachHash(ctx, hashKeys(transfersByHash.ToMap()), func(ctx context.Context, hash string) error {
		classification, ok := s.classifyPayload(ctx, cache, hash, s.methods.Classify)
		if !ok {
			return ctx.Err()
		}
		if !classification.Recognized {
			return nil
		}

		for _, transfer := range transfersByHash.Get(hash) {
			amount, err := attribution.ScaleAmount(transfer.RawAmount, transfer.Decimals)
			if err != nil {
				logger.Warn(ctx, "transfer skipped: unparsable amount",
					"tx.hash", transfer.Hash,
					"asset.symbol", transfer.Symbol,
					"error", err,
				)
				continue
			}

			usd := s.oracle.price(ctx, transfer.Symbol, transfer.ContractAddress) * amount
			agg.Accumulate(attribution.Key{Group: classification.Group, Asset: transfer.Symbol}, amount, usd)
			matched.Add(1)
		}

		return nil
	})

	report.Matched = int(matched.Load())
	return err
}
