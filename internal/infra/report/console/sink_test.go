package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabapcia/bridgewatch/internal/attribution"
	"github.com/gabapcia/bridgewatch/internal/bridgescan"
)

func TestEmit(t *testing.T) {
	t.Run("renders header, sorted rows and total", func(t *testing.T) {
		var buf bytes.Buffer

		report := bridgescan.Report{
			RunID:      "run-1",
			Kind:       bridgescan.ScanKindIntegrators,
			GroupLabel: "INTEGRATOR",
			Window:     "blocks 100-200",
			Scanned:    10,
			Matched:    3,
			Entries: map[attribution.Key]attribution.Entry{
				{Group: "zaprouter", Asset: "USDC"}:       {Amount: 100, USD: 100},
				{Group: "jumper.exchange", Asset: "USDT"}: {Amount: 5, USD: 5},
				{Group: "jumper.exchange", Asset: "ETH"}:  {Amount: 2, USD: 4000},
			},
			TotalUSD: 4105,
		}

		require.NoError(t, New(&buf).Emit(t.Context(), report))

		out := buf.String()
		assert.Contains(t, out, "integrators report run-1 (blocks 100-200)")
		assert.Contains(t, out, "scanned=10 matched=3")
		assert.NotContains(t, out, "[PARTIAL]")
		assert.Contains(t, out, "INTEGRATOR")
		assert.Contains(t, out, "$4105.00")

		// Rows sort by group then asset.
		ethRow := strings.Index(out, "jumper.exchange  ETH")
		usdtRow := strings.Index(out, "jumper.exchange  USDT")
		zapRow := strings.Index(out, "zaprouter")
		assert.Greater(t, ethRow, -1)
		assert.Greater(t, usdtRow, ethRow)
		assert.Greater(t, zapRow, usdtRow)
	})

	t.Run("marks partial reports", func(t *testing.T) {
		var buf bytes.Buffer

		require.NoError(t, New(&buf).Emit(t.Context(), bridgescan.Report{
			RunID:   "run-2",
			Kind:    bridgescan.ScanKindDeposits,
			Partial: true,
		}))

		assert.Contains(t, buf.String(), "[PARTIAL]")
	})

	t.Run("amounts render with fixed precision", func(t *testing.T) {
		var buf bytes.Buffer

		require.NoError(t, New(&buf).Emit(t.Context(), bridgescan.Report{
			GroupLabel: "PARTNER",
			Entries: map[attribution.Key]attribution.Entry{
				{Group: "Phantom Wallet", Asset: "BTC"}: {Amount: 0.1, USD: 5000},
			},
			TotalUSD: 5000,
		}))

		out := buf.String()
		assert.Contains(t, out, "0.10000000")
		assert.Contains(t, out, "$5000.00")
	})
}
