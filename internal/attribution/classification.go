// Package attribution contains the core transaction attribution logic:
// pure classifiers that derive an integrator, wallet, or partner identity
// from a transaction's opaque payload or output structure, plus the
// run-scoped aggregation of classified amounts.
//
// Every classifier in this package is a pure function of its input. Network
// access, retries, and pricing live with the callers; this keeps the
// heuristics exhaustively unit-testable with synthetic payloads.
package attribution

const (
	// UnknownIntegrator is the sentinel group used when a recognized bridge
	// payload carries no extractable integrator identifier.
	UnknownIntegrator = "unknown"

	// UnattributedPartner is the generic group used for UTXO deposits with no
	// matching fee-collector output.
	UnattributedPartner = "unattributed"
)

// Classification is the derived identity for a single transaction. It is a
// deterministic function of the transaction payload, so it is safe to cache
// by transaction hash across duplicate sightings.
type Classification struct {
	Recognized  bool    // whether the payload matched a known pattern
	Bridge      string  // bridge name or method selector that matched ("" when unrecognized)
	Group       string  // integrator, wallet label, or partner display name
	FeeFraction float64 // fee share of the total paid amount (UTXO only)
	Ambiguous   bool    // more than one plausible identity was present; first match won
}

// DepositSplit is the result of classifying a UTXO transaction's outputs.
// Alongside the derived identity it carries the value split the fee fraction
// was computed from, which callers need to aggregate total paid amounts.
type DepositSplit struct {
	Classification

	BridgeValue int64 // base-unit value of the chosen bridge-deposit output
	FeeValue    int64 // base-unit value of the matched fee-collector output (0 if none)
}
