package bridgescan

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gabapcia/bridgewatch/internal/attribution"
	"github.com/gabapcia/bridgewatch/internal/pkg/logger"
	"github.com/gabapcia/bridgewatch/internal/pkg/types"
)

// ScanIntegrators implements the Service interface.
func (s *service) ScanIntegrators(ctx context.Context) (Report, error) {
	return s.run(ctx, ScanKindIntegrators, "INTEGRATOR", s.scanIntegrators)
}

// scanIntegrators fetches the window's token transfers into the bridge,
// classifies each unique transaction's calldata for a bridge marker and
// integrator label, and folds matching amounts per (integrator, token).
//
// Transfers whose recipient is not the bridge address are noise from the
// shared query and are discarded before classification. Only transactions
// strictly recognized as the configured bridge contribute.
func (s *service) scanIntegrators(ctx context.Context, agg *attribution.Aggregator, report *Report) error {
	end := s.now()
	blockRange, err := s.resolveWindow(ctx, end.Add(-s.cfg.TimeWindow), end)
	if err != nil {
		return err
	}
	report.Window = fmt.Sprintf("blocks %d-%d", blockRange.StartBlock, blockRange.EndBlock)

	var transfers []TokenTransfer
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

	report.Scanned = len(transfers)

	// One transaction may carry several transfer rows; classify per unique
	// hash and fold all of a hash's rows as soon as its classification lands.
	rowsByHash := types.NewDefaultMap[string](func() []TokenTransfer { return nil })
	for _, transfer := range transfers {
		if !sameAddress(transfer.To, s.cfg.BridgeAddress) {
			continue
		}
		rowsByHash.Set(transfer.Hash, append(rowsByHash.Get(transfer.Hash), transfer))
	}

	var (
		cache   = attribution.NewCache()
		matched atomic.Int64
	)

	err = s.forEachHash(ctx, hashKeys(rowsByHash.ToMap()), func(ctx context.Context, hash string) error {
		classification, ok := s.classifyPayload(ctx, cache, hash, s.calldata.Classify)
		if !ok {
			return ctx.Err()
		}

		if !classification.Recognized || classification.Bridge != s.cfg.BridgeMarker {
			return nil
		}

		for _, transfer := range rowsByHash.Get(hash) {
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

// hashKeys collects the keys of a rows-by-hash index.
func hashKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	return keys
}
