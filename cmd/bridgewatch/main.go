package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabapcia/bridgewatch/internal/bridgescan"
	"github.com/gabapcia/bridgewatch/internal/config"
	"github.com/gabapcia/bridgewatch/internal/handlers/cli"
	"github.com/gabapcia/bridgewatch/internal/infra/explorer/etherscan"
	"github.com/gabapcia/bridgewatch/internal/infra/explorer/mempool"
	"github.com/gabapcia/bridgewatch/internal/infra/pricing/coingecko"
	"github.com/gabapcia/bridgewatch/internal/infra/report/console"
	"github.com/gabapcia/bridgewatch/internal/pkg/logger"
	"github.com/gabapcia/bridgewatch/internal/pkg/resilience/ratelimit"
	"github.com/gabapcia/bridgewatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/bridgewatch/internal/pkg/telemetry"
	transport "github.com/gabapcia/bridgewatch/internal/pkg/transport/http"
)

func main() {
	// SIGINT/SIGTERM cancel the run context instead of killing the process
	// mid-scan; an interrupted run aborts at the next suspend point with its
	// aggregation state intact.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, "bridgewatch")
		if err != nil {
			os.Stderr.WriteString("telemetry init error: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	httpClient := transport.NewClient(
		transport.WithTimeout(10*time.Second),
		transport.WithRetryMax(5),
	)

	account := etherscan.NewClient(httpClient, cfg.EtherscanBaseURL, cfg.EtherscanAPIKey, cfg.ChainID,
		etherscan.WithRateLimiter(ratelimit.New(cfg.EtherscanMinInterval)),
	)
	utxo := mempool.NewClient(httpClient, cfg.MempoolBaseURL,
		mempool.WithRateLimiter(ratelimit.New(cfg.MempoolMinInterval)),
	)
	prices := coingecko.NewClient(httpClient, cfg.CoingeckoBaseURL,
		coingecko.WithRateLimiter(ratelimit.New(cfg.CoingeckoMinInterval)),
	)

	service := bridgescan.New(account, utxo, prices, console.New(os.Stdout),
		bridgescan.Config{
			ChainID:         cfg.ChainID,
			BridgeAddress:   cfg.BridgeAddress,
			BridgeMarker:    cfg.BridgeMarker,
			ReservedNames:   cfg.ReservedNames,
			MethodSelectors: cfg.MethodSelectors,
			DepositAddress:  cfg.DepositAddress,
			FeeCollectors:   cfg.FeeCollectors,
			TimeWindow:      cfg.TimeWindow,
			BlockWindow:     cfg.BlockWindow,
			PartnerFilter:   cfg.PartnerFilter,
			MinFeeFraction:  cfg.MinFeeFraction,
			MaxFeeFraction:  cfg.MaxFeeFraction,
		},
		bridgescan.WithRetry(retry.New()),
		bridgescan.WithWorkers(cfg.Workers),
		bridgescan.WithRunTimeout(cfg.RunTimeout),
	)

	if err := cli.Run(ctx, service); err != nil {
		logger.Fatal(ctx, "run failed", "error", err)
	}
}
