package bridgescan

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gabapcia/bridgewatch/internal/attribution"
	"github.com/gabapcia/bridgewatch/internal/pkg/logger"
	"github.com/gabapcia/bridgewatch/internal/pkg/types"
)

// depositAssetSymbol is the aggregation symbol for UTXO deposits.
const depositAssetSymbol = "BTC"

// ScanDeposits implements the Service interface.
func (s *service) ScanDeposits(ctx context.Context) (Report, error) {
	return s.run(ctx, ScanKindDeposits, "PARTNER", s.scanDeposits)
}

// scanDeposits attributes UTXO bridge deposits to partners via the fee-split
// heuristic.
//
// The fetch is two-hop: the deposit address's own transactions are enumerated
// first to collect the parent transaction ids referenced by their inputs,
// then each parent is fetched independently for output classification. Parent
// ids are deduplicated before the second hop, so each parent is classified
// exactly once per run.
//
// When a partner filter or fee-fraction band is configured, deposits outside
// them are skipped after classification.
func (s *service) scanDeposits(ctx context.Context, agg *attribution.Aggregator, report *Report) error {
	var tip int64
	err := s.execute(ctx, func() error {
		height, err := s.utxo.TipHeight(ctx)
		if err != nil {
			return err
		}
		tip = height
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: chain tip: %w", ErrResolutionFailed, err)
	}

	minHeight := tip - s.cfg.BlockWindow
	report.Window = fmt.Sprintf("blocks %d-%d", minHeight, tip)

	var addressTxs []UtxoTransaction
	err = s.execute(ctx, func() error {
		txs, err := s.utxo.AddressTransactions(ctx, s.cfg.DepositAddress)
		if err != nil {
			return err
		}
		addressTxs = txs
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: address transactions: %w", ErrFetchFailed, err)
	}

	// First hop: collect unique parent ids from confirmed transactions
	// inside the block window. Unconfirmed transactions report height 0.
	parents := types.NewSet[string]()
	for _, tx := range addressTxs {
		if tx.BlockHeight < minHeight || tx.BlockHeight == 0 {
			continue
		}
		parents.Add(tx.InputTxIDs...)
	}

	report.Scanned = len(parents)

	var matched atomic.Int64
	err = s.forEachHash(ctx, parents.ToSlice(), func(ctx context.Context, txid string) error {
		parent, err := s.utxo.Transaction(ctx, txid)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn(ctx, "parent transaction skipped: fetch failed",
				"tx.id", txid,
				"error", err,
			)
			return nil
		}

		split := attribution.ClassifyOutputs(parent.Outputs, s.cfg.FeeCollectors)
		if split.Ambiguous {
			logger.Warn(ctx, "multiple fee-collector outputs, first match honored", "tx.id", txid)
		}

		if s.cfg.PartnerFilter != "" && split.Group != s.cfg.PartnerFilter {
			return nil
		}
		if s.cfg.MaxFeeFraction > 0 &&
			(split.FeeFraction < s.cfg.MinFeeFraction || split.FeeFraction > s.cfg.MaxFeeFraction) {
			return nil
		}

		// Aggregate the total amount the user paid: deposit plus partner fee.
		amount := attribution.SatsToBTC(split.BridgeValue + split.FeeValue)
		usd := s.oracle.price(ctx, depositAssetSymbol, "") * amount
		agg.Accumulate(attribution.Key{Group: split.Group, Asset: depositAssetSymbol}, amount, usd)
		matched.Add(1)

		return nil
	})

	report.Matched = int(matched.Load())
	return err
}
