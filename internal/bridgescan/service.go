// Package bridgescan orchestrates attribution runs: it resolves a wall-clock
// window to a block range, fetches candidate transactions from the chain
// explorers, classifies them through the attribution package, prices the
// amounts, and folds everything into a per-run aggregation that is handed to
// a report sink.
package bridgescan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gabapcia/bridgewatch/internal/attribution"
	"github.com/gabapcia/bridgewatch/internal/pkg/logger"
	"github.com/gabapcia/bridgewatch/internal/pkg/resilience/retry"
)

var (
	// ErrResolutionFailed indicates the time window could not be resolved to
	// a block range. The run aborts: a wrong window silently under- or
	// over-counts volume, which is worse than stopping.
	ErrResolutionFailed = errors.New("block window resolution failed")

	// ErrFutureTimestamp indicates a window bound lies in the future, for
	// which block resolution is undefined.
	ErrFutureTimestamp = errors.New("window timestamp is in the future")

	// ErrFetchFailed indicates a top-level transaction fetch failed after
	// retries. The run aborts rather than reporting from a partial dataset.
	ErrFetchFailed = errors.New("transaction fetch failed")
)

const defaultWorkers = 4

// Service exposes the three attribution scans. Each returns the emitted
// report; per-transaction classification or pricing failures are logged and
// skipped, while window-resolution and top-level fetch failures abort.
type Service interface {
	// ScanIntegrators aggregates ERC-20 bridge deposits over the configured
	// time window, grouped by the integrator extracted from calldata.
	ScanIntegrators(ctx context.Context) (Report, error)

	// ScanWallets aggregates native and ERC-20 bridge deposits over the
	// configured time window, grouped by originating wallet software derived
	// from the transaction's method selector, priced in USD.
	ScanWallets(ctx context.Context) (Report, error)

	// ScanDeposits aggregates UTXO bridge deposits over the configured block
	// window, grouped by fee-split partner.
	ScanDeposits(ctx context.Context) (Report, error)
}

// Config carries the scan parameters owned by the configuration surface.
type Config struct {
	ChainID         int64             // account-chain id for the explorer API
	BridgeAddress   string            // bridge contract address on the account chain
	BridgeMarker    string            // bridge-name byte marker expected in calldata
	ReservedNames   []string          // platform names never taken as an integrator
	MethodSelectors map[string]string // method selector (hex) -> wallet label
	DepositAddress  string            // bridge deposit address on the UTXO chain
	FeeCollectors   map[string]string // fee-collector address -> partner display name

	TimeWindow  time.Duration // wall-clock window for account-chain scans
	BlockWindow int64         // recent-block window for UTXO scans

	PartnerFilter  string  // when set, only deposits attributed to this partner are kept
	MinFeeFraction float64 // lower fee-fraction bound for deposit filtering
	MaxFeeFraction float64 // upper fee-fraction bound (0 disables the band filter)
}

type service struct {
	account AccountExplorer
	utxo    UtxoExplorer
	oracle  *priceOracle
	sink    ReportSink

	calldata *attribution.CalldataClassifier
	methods  *attribution.MethodClassifier

	cfg Config

	retry      retry.Retry
	workers    int
	runTimeout time.Duration
	now        func() time.Time
}

var _ Service = (*service)(nil)

// config holds the optional service settings.
type config struct {
	retry      retry.Retry
	workers    int
	runTimeout time.Duration
}

// Option configures optional service behavior.
type Option func(*config)

// WithRetry wraps window resolution and top-level fetches in the given retry
// policy. Without it, each call gets a single attempt.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// WithWorkers bounds the parallel fan-out used for per-transaction payload
// fetches and classification. Default: 4.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithRunTimeout sets a deadline for an entire scan run. When the budget is
// exhausted the run stops and the report collected so far is emitted with
// Partial set, rather than being discarded.
func WithRunTimeout(d time.Duration) Option {
	return func(c *config) {
		c.runTimeout = d
	}
}

// New assembles the scan service from its collaborators and scan parameters.
func New(account AccountExplorer, utxo UtxoExplorer, prices PriceSource, sink ReportSink, cfg Config, opts ...Option) *service {
	optCfg := config{workers: defaultWorkers}
	for _, opt := range opts {
		opt(&optCfg)
	}

	return &service{
		account:    account,
		utxo:       utxo,
		oracle:     newPriceOracle(prices),
		sink:       sink,
		calldata:   attribution.NewCalldataClassifier(cfg.BridgeMarker, cfg.ReservedNames),
		methods:    attribution.NewMethodClassifier(cfg.MethodSelectors),
		cfg:        cfg,
		retry:      optCfg.retry,
		workers:    optCfg.workers,
		runTimeout: optCfg.runTimeout,
		now:        time.Now,
	}
}

// execute runs op under the configured retry policy, or once when none is set.
func (s *service) execute(ctx context.Context, op func() error) error {
	if s.retry == nil {
		return op()
	}
	return s.retry.Execute(ctx, op)
}

// resolveWindow maps a wall-clock window to a BlockRange by resolving each
// bound to the closest block at or before it. Future timestamps are rejected
// with ErrFutureTimestamp; any resolution error aborts the run wrapped in
// ErrResolutionFailed.
func (s *service) resolveWindow(ctx context.Context, start, end time.Time) (BlockRange, error) {
	now := s.now()
	if start.After(now) || end.After(now) {
		return BlockRange{}, fmt.Errorf("%w: window [%s, %s] resolved at %s",
			ErrFutureTimestamp, start.Format(time.RFC3339), end.Format(time.RFC3339), now.Format(time.RFC3339))
	}
	if !start.Before(end) {
		return BlockRange{}, fmt.Errorf("%w: window start %s is not before end %s",
			ErrResolutionFailed, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	resolve := func(ts time.Time) (int64, error) {
		var block int64
		err := s.execute(ctx, func() error {
			b, err := s.account.BlockNumberByTime(ctx, ts)
			if err != nil {
				return err
			}
			block = b
			return nil
		})
		return block, err
	}

	startBlock, err := resolve(start)
	if err != nil {
		return BlockRange{}, fmt.Errorf("%w: start bound: %w", ErrResolutionFailed, err)
	}

	endBlock, err := resolve(end)
	if err != nil {
		return BlockRange{}, fmt.Errorf("%w: end bound: %w", ErrResolutionFailed, err)
	}

	if startBlock > endBlock {
		return BlockRange{}, fmt.Errorf("%w: resolved start block %d above end block %d",
			ErrResolutionFailed, startBlock, endBlock)
	}

	return BlockRange{
		ChainID:    s.cfg.ChainID,
		StartBlock: startBlock,
		EndBlock:   endBlock,
	}, nil
}

// scanFunc performs one scan's fetch/classify/fold flow into the aggregator,
// filling in the report's window and counters as it goes.
type scanFunc func(ctx context.Context, agg *attribution.Aggregator, report *Report) error

// run wraps a scan with the shared lifecycle: run id, optional run deadline,
// partial-report handling, and emission through the sink.
//
// A deadline hit inside the scan does not discard the aggregation; the report
// is emitted with Partial set since all folds are commutative and associative,
// so partial results remain valid partial results. Cancellation of the parent
// context, by contrast, aborts without emitting.
func (s *service) run(ctx context.Context, kind ScanKind, groupLabel string, scan scanFunc) (Report, error) {
	runCtx := ctx
	cancel := func() {}
	if s.runTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.runTimeout)
	}
	defer cancel()

	report := Report{
		RunID:      uuid.NewString(),
		Kind:       kind,
		GroupLabel: groupLabel,
		StartedAt:  s.now(),
	}

	logger.Info(runCtx, "scan started", "run.id", report.RunID, "scan.kind", kind)

	agg := attribution.NewAggregator()
	if err := scan(runCtx, agg, &report); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			report.Partial = true
			logger.Warn(ctx, "run budget exhausted, emitting partial report",
				"run.id", report.RunID,
				"scan.kind", kind,
			)
		} else {
			return Report{}, err
		}
	}

	report.Entries = agg.Entries()
	report.TotalUSD = agg.TotalUSD()
	report.FinishedAt = s.now()

	logger.Info(ctx, "scan finished",
		"run.id", report.RunID,
		"scan.kind", kind,
		"report.scanned", report.Scanned,
		"report.matched", report.Matched,
		"report.partial", report.Partial,
	)

	if s.sink != nil {
		if err := s.sink.Emit(context.WithoutCancel(ctx), report); err != nil {
			return report, err
		}
	}

	return report, nil
}

// forEachHash fans out over the given transaction hashes with the configured
// worker bound and invokes process for each. Per-hash failures are the
// process function's concern; only context errors stop the group.
func (s *service) forEachHash(ctx context.Context, hashes []string, process func(ctx context.Context, hash string) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, hash := range hashes {
		g.Go(func() error {
			return process(gctx, hash)
		})
	}

	return g.Wait()
}

// classifyPayload memoizes the classification of one transaction's calldata,
// fetching the payload at most once per hash even under concurrent sightings.
// A fetch failure is logged and reported as (zero, false): the transaction is
// skipped, never fatal to the run.
func (s *service) classifyPayload(ctx context.Context, cache *attribution.Cache, hash string, classify func([]byte) attribution.Classification) (attribution.Classification, bool) {
	classification, err := cache.GetOrCompute(hash, func() (attribution.Classification, error) {
		payload, err := s.account.TransactionInput(ctx, hash)
		if err != nil {
			return attribution.Classification{}, err
		}
		return classify(payload), nil
	})
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn(ctx, "transaction skipped: payload classification failed",
				"tx.hash", hash,
				"error", err,
			)
		}
		return attribution.Classification{}, false
	}

	if classification.Ambiguous {
		logger.Warn(ctx, "ambiguous classification, first candidate kept", "tx.hash", hash)
	}

	return classification, true
}

// sameAddress compares chain addresses case-insensitively.
func sameAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}
