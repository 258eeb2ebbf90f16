package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zecbridge/config"
	"zecbridge/pkg/relay"
)

var rootCmd = &cobra.Command{
	Use:   "zecbridge",
	Short: "A CLI for cross-chain bridge swaps between Zcash, Solana and EVM chains",
	Long: `zecbridge is a command-line tool for moving value across chains. It quotes
and executes multi-step swaps through the Relay routing aggregator, and falls
back to fixed-rate deposit-address trades for chains without route support
(such as Zcash).

Examples:
  zecbridge chains
  zecbridge tokens 1 --search PEPE
  zecbridge quote 1.5 ETH to SOL --from-chain 1 --to-chain 792703809
  zecbridge swap 1.5 ETH to SOL --from-chain 1 --to-chain 792703809
  zecbridge trade 2 ZEC to SOL --from-chain zec --to-chain sol --recipient <solana-addr>
  zecbridge status <deposit-address> --watch
  zecbridge history`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

// buildLogger returns a development logger in verbose mode and a silent one
// otherwise; library packages log through it, user output stays on stdout.
func buildLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func newRelayClient(cfg *config.Config, verbose bool) *relay.Client {
	return relay.New(cfg.RelayBaseURL, relay.WithLogger(buildLogger(verbose)))
}
