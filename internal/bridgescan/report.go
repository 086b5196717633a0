package bridgescan

import (
	"context"
	"time"

	"github.com/gabapcia/bridgewatch/internal/attribution"
)

// ScanKind identifies which attribution scan produced a report.
type ScanKind string

const (
	ScanKindIntegrators ScanKind = "integrators" // volume by integrator extracted from calldata
	ScanKindWallets     ScanKind = "wallets"     // volume by originating wallet via method selector
	ScanKindDeposits    ScanKind = "deposits"    // UTXO deposit volume by fee-split partner
)

// Report is the full outcome of one scan run: the aggregation mapping, the
// running USD total, and enough run metadata to render or ship it. A run
// always terminates with either a full report, a report marked partial, or a
// hard error; it never emits an aggregation with an unexplained gap.
type Report struct {
	RunID      string   // unique id of this run, also used for log correlation
	Kind       ScanKind // which scan produced the report
	GroupLabel string   // display label for the group column (e.g. "INTEGRATOR")
	Window     string   // human-readable description of the scanned range

	StartedAt  time.Time // when the run began
	FinishedAt time.Time // when aggregation stopped

	// Scanned counts every record the fetch returned, including noise rows
	// discarded before classification (e.g. transfers to other recipients).
	Scanned int
	// Matched counts records attributed and folded into the aggregation.
	Matched int

	Entries  map[attribution.Key]attribution.Entry // the aggregation mapping
	TotalUSD float64                               // running USD total across all buckets

	// Partial marks a report whose run budget expired before every candidate
	// was processed. The folds already applied remain valid partial results.
	Partial bool
}

// ReportSink renders or forwards a finished report. Rendering details are out
// of the core's scope; the sink receives the full aggregation mapping.
type ReportSink interface {
	Emit(ctx context.Context, report Report) error
}
