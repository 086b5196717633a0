package attribution

import (
	"bytes"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/gabapcia/bridgewatch/internal/pkg/types"
)

const (
	// minCalldataLen is the minimum decoded payload size that can carry the
	// structured bridge data. Anything shorter is a plain call with no
	// embedded identifiers.
	minCalldataLen = 49

	// markerSlotSize is the number of bytes occupied by the bridge-name
	// marker and the length/offset metadata encoded immediately after it.
	// The integrator identifier, when present, starts after this slot.
	markerSlotSize = 32

	// methodSelectorSize is the number of leading calldata bytes that
	// identify the invoked contract function.
	methodSelectorSize = 4
)

// identifierRunPattern matches runs of 3-30 printable identifier characters
// inside raw calldata. The calldata is not a versioned schema but an ad-hoc
// string embedding chosen by the calling contract, so byte-pattern scanning
// is the only feasible extraction without the contract's ABI.
var identifierRunPattern = regexp.MustCompile(`[a-zA-Z0-9._\-]{3,30}`)

// CalldataClassifier extracts a bridge name and integrator label from
// account-chain call data by scanning for a known bridge-name byte marker.
type CalldataClassifier struct {
	marker   []byte            // bridge-name marker bytes, matched exactly
	reserved types.Set[string] // lowercased platform names never used as an integrator
}

// NewCalldataClassifier builds a classifier for the given bridge-name marker.
// Reserved names (compared case-insensitively) are platform identifiers that
// must never be mistaken for an integrator, including the bridge name itself.
func NewCalldataClassifier(marker string, reservedNames []string) *CalldataClassifier {
	reserved := types.NewSet(strings.ToLower(marker))
	for _, name := range reservedNames {
		reserved.Add(strings.ToLower(name))
	}

	return &CalldataClassifier{
		marker:   []byte(marker),
		reserved: reserved,
	}
}

// Classify derives the bridge and integrator identity from raw calldata.
//
// The payload is scanned for the bridge-name marker; if found, the bytes
// following the marker slot are searched for identifier runs, and the first
// run that is not a reserved platform name becomes the integrator. A
// recognized payload with no such run yields UnknownIntegrator.
//
// Classify is a pure function and never fails: undecodable or short payloads
// simply come back unrecognized. False negatives are expected and non-fatal;
// a wrong run selected as integrator is a known risk surfaced through the
// Ambiguous flag rather than corrected silently.
func (c *CalldataClassifier) Classify(payload []byte) Classification {
	if len(payload) < minCalldataLen {
		return Classification{}
	}

	idx := bytes.Index(payload, c.marker)
	if idx < 0 {
		return Classification{}
	}

	var rest []byte
	if start := idx + markerSlotSize; start < len(payload) {
		rest = payload[start:]
	}

	var (
		integrator = UnknownIntegrator
		candidates = types.NewSet[string]()
	)
	for _, run := range identifierRunPattern.FindAll(rest, -1) {
		name := string(run)
		if c.reserved.Contains(strings.ToLower(name)) {
			continue
		}

		candidates.Add(name)
		if integrator == UnknownIntegrator {
			integrator = name
		}
	}

	return Classification{
		Recognized: true,
		Bridge:     string(c.marker),
		Group:      integrator,
		Ambiguous:  len(candidates) > 1,
	}
}

// MethodClassifier maps known method selectors (the leading 4 bytes of
// calldata) to originating-wallet labels. Unlike CalldataClassifier it does
// no scanning: only an exact selector match classifies.
//
// Both classifiers may run on the same transaction for different reporting
// purposes; they are independent classifications, not alternatives.
type MethodClassifier struct {
	selectors map[string]string // lowercased hex selector -> wallet label
}

// NewMethodClassifier builds a classifier from a selector table. Keys are
// 8-character hex method selectors without the 0x prefix; matching is
// case-insensitive on the selector.
func NewMethodClassifier(selectors map[string]string) *MethodClassifier {
	table := make(map[string]string, len(selectors))
	for selector, label := range selectors {
		table[strings.ToLower(selector)] = label
	}

	return &MethodClassifier{selectors: table}
}

// Classify resolves the payload's method selector against the known table.
// Payloads shorter than a selector come back unrecognized.
func (c *MethodClassifier) Classify(payload []byte) Classification {
	if len(payload) < methodSelectorSize {
		return Classification{}
	}

	selector := hex.EncodeToString(payload[:methodSelectorSize])
	label, ok := c.selectors[selector]
	if !ok {
		return Classification{}
	}

	return Classification{
		Recognized: true,
		Bridge:     selector,
		Group:      label,
	}
}
