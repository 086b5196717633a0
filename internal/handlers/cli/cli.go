// Package cli wires the attribution scans into a command-line interface.
package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/gabapcia/bridgewatch/internal/bridgescan"
)

// Run initializes and executes the bridgewatch CLI application.
//
// It registers one command per attribution scan:
//
//   - `integrators`: ERC-20 bridge volume grouped by integrator.
//   - `wallets`: native + ERC-20 bridge volume grouped by originating wallet.
//   - `deposits`: UTXO deposit volume grouped by fee-split partner.
//
// Each command performs a single scan run and exits; the report is emitted
// through the configured sink before the command returns. Cancelling ctx
// (the entry point wires SIGINT/SIGTERM into it) aborts the running scan at
// its next suspend point.
func Run(ctx context.Context, bs bridgescan.Service) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "bridgewatch",
		Description:           "Command-line interface for running bridge transaction attribution scans.",
		Usage:                 "bridgewatch [command] [flags]",
		Commands: []*cli.Command{
			scanIntegratorsCommand(bs),
			scanWalletsCommand(bs),
			scanDepositsCommand(bs),
		},
	}

	return app.Run(ctx, os.Args)
}
