package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// EVMNetwork holds the connection settings for one account-chain network.
type EVMNetwork struct {
	ChainID  int64   `mapstructure:"chain_id"`
	RPCUrl   string  `mapstructure:"rpc_url"`
	GasLimit *uint64 `mapstructure:"gas_limit"`
}

// EVMConfig holds the account-chain wallet configuration. A single private
// key is shared across networks; the network map decides which chains the
// wallet can switch to.
type EVMConfig struct {
	PrivateKey string                `mapstructure:"private_key"`
	Networks   map[string]EVMNetwork `mapstructure:"networks"`
}

// SolanaConfig holds the Solana wallet configuration.
type SolanaConfig struct {
	RPCUrl        string `mapstructure:"rpc_url"`
	PrivateKey    string `mapstructure:"private_key"`
	Commitment    string `mapstructure:"commitment"`
	SkipPreflight bool   `mapstructure:"skip_preflight"`
}

// ZcashConfig holds the optional external Zcash signer. When CLIPath is
// empty the send path is unsupported and trades fall back to manual deposit.
type ZcashConfig struct {
	CLIPath string   `mapstructure:"cli_path"`
	CLIArgs []string `mapstructure:"cli_args"`
}

// Config holds the application configuration
type Config struct {
	RelayBaseURL string
	ExchangeJWT  string
	PriceAPIKey  string
	AutoConfirm  bool
	EVM          EVMConfig
	Solana       SolanaConfig
	Zcash        ZcashConfig
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".zecbridge")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("relay_base_url", "https://api.relay.link")
	viper.SetDefault("solana.rpc_url", "https://api.mainnet-beta.solana.com")
	viper.SetDefault("solana.commitment", "confirmed")

	// Read from environment variables
	viper.SetEnvPrefix("ZECBRIDGE")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		RelayBaseURL: viper.GetString("relay_base_url"),
		ExchangeJWT:  viper.GetString("exchange_jwt"),
		PriceAPIKey:  viper.GetString("price_api_key"),
		AutoConfirm:  viper.GetBool("auto_confirm"),
	}

	if err := viper.UnmarshalKey("evm", &cfg.EVM); err != nil {
		return nil, fmt.Errorf("invalid evm config: %w", err)
	}
	if err := viper.UnmarshalKey("solana", &cfg.Solana); err != nil {
		return nil, fmt.Errorf("invalid solana config: %w", err)
	}
	if err := viper.UnmarshalKey("zcash", &cfg.Zcash); err != nil {
		return nil, fmt.Errorf("invalid zcash config: %w", err)
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}

// NetworkForChain looks up the configured EVM network for a chain id.
func (c *Config) NetworkForChain(chainID int64) (EVMNetwork, bool) {
	for _, network := range c.EVM.Networks {
		if network.ChainID == chainID {
			return network, true
		}
	}
	return EVMNetwork{}, false
}
