package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/gabapcia/bridgewatch/internal/bridgescan"
)

// scanIntegratorsCommand returns the CLI command running a single integrator
// attribution scan over the configured time window.
//
// Usage example:
//
//	bridgewatch integrators
func scanIntegratorsCommand(bs bridgescan.Service) *cli.Command {
	return &cli.Command{
		Name:        "integrators",
		Description: "Scan the time window for bridge deposits and aggregate token volume by integrator.",
		Usage:       "Runs one integrator attribution scan and prints the report.",
		Action: func(ctx context.Context, c *cli.Command) error {
			_, err := bs.ScanIntegrators(ctx)
			return err
		},
	}
}

// scanWalletsCommand returns the CLI command running a single
// originating-wallet attribution scan over the configured time window.
//
// Usage example:
//
//	bridgewatch wallets
func scanWalletsCommand(bs bridgescan.Service) *cli.Command {
	return &cli.Command{
		Name:        "wallets",
		Description: "Scan the time window for bridge deposits and aggregate USD volume by originating wallet.",
		Usage:       "Runs one wallet attribution scan and prints the report.",
		Action: func(ctx context.Context, c *cli.Command) error {
			_, err := bs.ScanWallets(ctx)
			return err
		},
	}
}

// scanDepositsCommand returns the CLI command running a single UTXO deposit
// attribution scan over the configured block window.
//
// Usage example:
//
//	bridgewatch deposits
func scanDepositsCommand(bs bridgescan.Service) *cli.Command {
	return &cli.Command{
		Name:        "deposits",
		Description: "Scan recent blocks for UTXO bridge deposits and aggregate volume by fee-split partner.",
		Usage:       "Runs one deposit attribution scan and prints the report.",
		Action: func(ctx context.Context, c *cli.Command) error {
			_, err := bs.ScanDeposits(ctx)
			return err
		},
	}
}
