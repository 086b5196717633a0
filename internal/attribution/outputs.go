package attribution

import "strings"

// dataScriptPrefix marks non-spendable data-carrier outputs (OP_RETURN),
// which are never deposit or fee outputs.
const dataScriptPrefix = "6a"

// Output is a single spendable or data output of a UTXO-chain transaction.
type Output struct {
	Address string // destination address ("" for data outputs)
	Value   int64  // value in the chain's base unit
	Script  string // raw script hex
}

// ClassifyOutputs attributes a UTXO transaction to a partner by inspecting
// its output structure.
//
// Data-only outputs are discarded. The remaining outputs are partitioned into
// fee outputs, whose address appears in the collectors table (address ->
// partner display name), and candidate bridge-deposit outputs. The bridge
// amount is the maximum-value candidate; ties go to the first encountered,
// which is a documented heuristic ambiguity, not a guarantee. The fee amount
// is the value of the first matched fee output.
//
// Only the first fee-collector match in iteration order is honored. Multiple
// simultaneous fee outputs are not summed; the condition is reported through
// the Ambiguous flag as a known limitation.
//
// The fee fraction is fee / (bridge + fee), or 0 when both values are zero.
func ClassifyOutputs(outputs []Output, collectors map[string]string) DepositSplit {
	var (
		partner     = UnattributedPartner
		bridgeValue int64
		feeValue    int64
		feeMatched  bool
		ambiguous   bool
	)

	for _, out := range outputs {
		if strings.HasPrefix(out.Script, dataScriptPrefix) {
			continue
		}

		if name, ok := collectors[out.Address]; ok {
			if feeMatched {
				ambiguous = true
				continue
			}

			partner = name
			feeValue = out.Value
			feeMatched = true
			continue
		}

		if out.Value > bridgeValue {
			bridgeValue = out.Value
		}
	}

	var feeFraction float64
	if total := bridgeValue + feeValue; total > 0 {
		feeFraction = float64(feeValue) / float64(total)
	}

	return DepositSplit{
		Classification: Classification{
			Recognized:  feeMatched,
			Group:       partner,
			FeeFraction: feeFraction,
			Ambiguous:   ambiguous,
		},
		BridgeValue: bridgeValue,
		FeeValue:    feeValue,
	}
}
