package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zecbridge/config"
	"zecbridge/pkg/balance"
	"zecbridge/pkg/catalog"
)

var balanceAddress string

var balanceCmd = &cobra.Command{
	Use:   "balance <chain-id> <token>",
	Short: "Show a token balance",
	Long: `Resolve the balance of a token for your configured wallet, or for an
explicit address passed with --address. The aggregator is asked first; a
zero answer falls back to one direct chain query.

Examples:
  zecbridge balance 1 ETH
  zecbridge balance 792703809 USDC --address <solana-addr>`,
	Args: cobra.ExactArgs(2),
	Run:  runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)

	balanceCmd.Flags().StringVar(&balanceAddress, "address", "", "Address to query (defaults to your configured wallet)")
}

func runBalance(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := buildLogger(verbose)

	chainID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printError(fmt.Errorf("invalid chain id: %s", args[0]))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	client := newRelayClient(cfg, verbose)
	cat := catalog.New(client, logger)
	ctx := context.Background()

	address := balanceAddress
	if address == "" {
		address = walletAddress(cfg, chainID, logger)
	}
	if address == "" {
		printError(fmt.Errorf("no wallet configured for chain %d; pass --address", chainID))
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Resolving balance..."
		s.Start()
	}

	token, ok, err := cat.TokenBySymbol(ctx, chainID, args[1])
	if err != nil {
		if !jsonOutput {
			s.Stop()
		}
		printError(err)
		os.Exit(1)
	}
	if !ok {
		if !jsonOutput {
			s.Stop()
		}
		printError(fmt.Errorf("token '%s' not found on chain %d (try: zecbridge tokens %d --search %s)",
			args[1], chainID, chainID, args[1]))
		os.Exit(1)
	}

	resolver := balance.NewResolver(client,
		balance.WithAccountReaders(accountReaderFor(cfg, logger)),
		balance.WithSolanaReader(balance.DialSolana(cfg.Solana.RPCUrl, rpc.CommitmentType(cfg.Solana.Commitment))),
		balance.WithLogger(logger),
	)

	amount := resolver.Resolve(ctx, token, address)
	if !jsonOutput {
		s.Stop()
	}

	if jsonOutput {
		output := map[string]interface{}{
			"chain_id": chainID,
			"token":    token.Symbol,
			"address":  address,
			"balance":  amount,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Printf("\n  %s %s\n", amount, color.YellowString(token.Symbol))
	fmt.Printf("  %s on chain %d\n\n", color.HiBlackString(address), chainID)
}

// accountReaderFor dials a direct reader per chain, using the configured
// network endpoints. Chains without an endpoint get a nil reader.
func accountReaderFor(cfg *config.Config, logger *zap.Logger) func(chainID int64) balance.AccountReader {
	return func(chainID int64) balance.AccountReader {
		network, ok := cfg.NetworkForChain(chainID)
		if !ok {
			return nil
		}
		reader, err := balance.DialEVM(network.RPCUrl)
		if err != nil {
			logger.Debug("rpc dial failed", zap.Int64("chainId", chainID), zap.Error(err))
			return nil
		}
		return reader
	}
}

// walletAddress derives the query address from the configured wallet for
// the chain's family.
func walletAddress(cfg *config.Config, chainID int64, logger *zap.Logger) string {
	evmWallet, solWallet := buildWallets(cfg, chainID, chainID, logger)
	return originAddress(chainID, evmWallet, solWallet)
}
