// Package config loads the process configuration from the environment and
// validates it. All knobs carry defaults mirroring the monitored bridge, so a
// deployment only needs to set its API key.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/gabapcia/bridgewatch/internal/pkg/validator"
)

// envPrefix namespaces every environment variable (e.g. BRIDGEWATCH_LOG_LEVEL).
const envPrefix = "bridgewatch"

// Config is the full configuration surface consumed by the wiring layer.
type Config struct {
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED" default:"false"`

	// Account-chain explorer.
	EtherscanBaseURL string `envconfig:"ETHERSCAN_BASE_URL" default:"https://api.etherscan.io/v2/api"`
	EtherscanAPIKey  string `envconfig:"ETHERSCAN_API_KEY" validate:"required"`
	ChainID          int64  `envconfig:"CHAIN_ID" default:"1"`

	// UTXO-chain explorer.
	MempoolBaseURL string `envconfig:"MEMPOOL_BASE_URL" default:"https://mempool.space/api"`

	// Price API.
	CoingeckoBaseURL string `envconfig:"COINGECKO_BASE_URL" default:"https://api.coingecko.com"`

	// Attribution targets.
	BridgeAddress   string            `envconfig:"BRIDGE_ADDRESS" default:"0xf5e10380213880111522dd0efd3dbb45b9f62bcc" validate:"required"`
	BridgeMarker    string            `envconfig:"BRIDGE_MARKER" default:"chainflip" validate:"required"`
	ReservedNames   []string          `envconfig:"RESERVED_NAMES" default:"chainflip,lifi"`
	MethodSelectors map[string]string `envconfig:"METHOD_SELECTORS" default:"9fe99b64:TRUST,57e780ad:TRUST,3ce33bff:METAMASK,810c705b:BINANCEWEB3"`
	DepositAddress  string            `envconfig:"DEPOSIT_ADDRESS" default:"bc1p5x9r9rm8xmsldk046ewu4qf80z5yugwh5ntgz6n25nft88gxxtwsfezq3z" validate:"required"`
	FeeCollectors   map[string]string `envconfig:"FEE_COLLECTORS" default:"bc1pt5zrlm55lmfwq7sjsuzgpgkmm7fymkna375l8kyuu5p6cq77545q554mgr:Phantom Wallet"`

	// Scan windows.
	TimeWindow  time.Duration `envconfig:"TIME_WINDOW" default:"1h"`
	BlockWindow int64         `envconfig:"BLOCK_WINDOW" default:"6" validate:"min=1"`

	// Deposit filters. Fractions, not percentages: 0.0075 means 0.75%.
	PartnerFilter  string  `envconfig:"PARTNER_FILTER" default:""`
	MinFeeFraction float64 `envconfig:"MIN_FEE_FRACTION" default:"0"`
	MaxFeeFraction float64 `envconfig:"MAX_FEE_FRACTION" default:"0"`

	// Run behavior.
	RunTimeout time.Duration `envconfig:"RUN_TIMEOUT" default:"10m"`
	Workers    int           `envconfig:"WORKERS" default:"4" validate:"min=1"`

	// Minimum spacing between requests per external API.
	EtherscanMinInterval time.Duration `envconfig:"ETHERSCAN_MIN_INTERVAL" default:"150ms"`
	MempoolMinInterval   time.Duration `envconfig:"MEMPOOL_MIN_INTERVAL" default:"1s"`
	CoingeckoMinInterval time.Duration `envconfig:"COINGECKO_MIN_INTERVAL" default:"500ms"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, err
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
