package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zecbridge/config"
	"zecbridge/pkg/catalog"
	"zecbridge/pkg/chains"
	"zecbridge/pkg/history"
	"zecbridge/pkg/quote"
	"zecbridge/pkg/swap"
	"zecbridge/pkg/wallet"
)

var (
	swapFromChain int64
	swapToChain   int64
	swapRecipient string
	swapNoConfirm bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <source-token> to <dest-token>",
	Short: "Execute a cross-chain swap through the routing aggregator",
	Long: `Quote and execute a swap. The quote's steps are signed with your configured
wallets and executed strictly in order, waiting for each transaction to
confirm before the next one.

Examples:
  zecbridge swap 1.5 ETH to SOL --from-chain 1 --to-chain 792703809 --recipient <solana-addr>
  zecbridge swap 100 USDC to ETH --from-chain 8453 --to-chain 1 --yes`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().Int64Var(&swapFromChain, "from-chain", 0, "Origin chain id (REQUIRED)")
	swapCmd.Flags().Int64Var(&swapToChain, "to-chain", 0, "Destination chain id (REQUIRED)")
	swapCmd.Flags().StringVar(&swapRecipient, "recipient", "", "Recipient address (defaults to your destination-chain wallet)")
	swapCmd.Flags().BoolVarP(&swapNoConfirm, "yes", "y", false, "Skip confirmation prompt")
	swapCmd.MarkFlagRequired("from-chain")
	swapCmd.MarkFlagRequired("to-chain")
}

func runSwap(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := buildLogger(verbose)

	parsed, err := parseSwapArgs(args)
	if err != nil {
		printError(err)
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

	// The composition root: pick concrete signers per family once, up front.
	// Everything downstream works against the wallet interfaces.
	evmWallet, solWallet := buildWallets(cfg, swapFromChain, swapToChain, logger)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	input, err := resolveQuoteInput(ctx, cat, parsed, swapFromChain, swapToChain)
	if err != nil {
		if !jsonOutput {
			s.Stop()
		}
		printError(err)
		os.Exit(1)
	}
	input.Recipient = swapRecipient
	input.User = originAddress(swapFromChain, evmWallet, solWallet)
	input.DestinationWallet = originAddress(swapToChain, evmWallet, solWallet)

	if input.User == "" {
		if !jsonOutput {
			s.Stop()
		}
		printError(fmt.Errorf("no wallet configured for the origin chain family: %w", wallet.ErrNotConnected))
		os.Exit(1)
	}

	result := quote.Fetch(ctx, client, *input)
	if !jsonOutput {
		s.Stop()
	}
	if result.Err != "" {
		printError(fmt.Errorf("%s", result.Err))
		os.Exit(1)
	}

	if !jsonOutput {
		displayQuote(result.Quote, cfg)
		if !swapNoConfirm && !cfg.AutoConfirm {
			if !confirmPrompt("Proceed with swap?") {
				fmt.Println("\nSwap cancelled.")
				os.Exit(0)
			}
		}
	}

	orch := swap.New(
		swap.WithEVM(evmWallet),
		swap.WithSolana(solWallet),
		swap.WithLogger(logger),
		swap.WithUpdateFunc(func(status swap.Status) {
			if jsonOutput {
				return
			}
			switch status.State {
			case swap.StateSigning:
				fmt.Printf("  Step %d/%d: signing...\n", status.Step, status.TotalSteps)
			case swap.StateConfirming:
				fmt.Printf("  Step %d/%d: confirming %s\n", status.Step, status.TotalSteps, status.TxHash)
			}
		}),
	)

	execErr := orch.Execute(ctx, result.Quote)
	status := orch.Status()

	recordSwap(status, logger)

	if jsonOutput {
		output := map[string]interface{}{
			"state":   string(status.State),
			"tx_hash": status.TxHash,
			"error":   status.Err,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		if execErr != nil {
			os.Exit(1)
		}
		return
	}

	if execErr != nil {
		printError(execErr)
		os.Exit(1)
	}

	color.Green("\n✓ Swap complete!")
	fmt.Printf("  Sent:     %s %s\n", status.SentAmount, status.SentSymbol)
	fmt.Printf("  Received: ~%s %s\n", status.ReceivedAmount, status.ReceivedSymbol)
	if status.TxHash != "" {
		fmt.Printf("  Last tx:  %s\n", color.CyanString(chains.ExplorerTxURL(swapFromChain, status.TxHash)))
	}
	fmt.Println()
}

// buildWallets constructs whichever signers the configuration supports. A
// family with no configuration yields a nil wallet; the orchestrator
// reports it only when a quote actually needs that family.
func buildWallets(cfg *config.Config, fromChain, toChain int64, logger *zap.Logger) (wallet.EVM, wallet.Solana) {
	var evmWallet wallet.EVM
	var solWallet wallet.Solana

	needsEVM := chains.FamilyOf(fromChain) == chains.FamilyAccount || chains.FamilyOf(toChain) == chains.FamilyAccount
	if needsEVM && cfg.EVM.PrivateKey != "" {
		initialChain := fromChain
		if chains.FamilyOf(initialChain) != chains.FamilyAccount {
			initialChain = toChain
		}
		w, err := wallet.NewEVMWallet(cfg.EVM, initialChain, logger)
		if err != nil {
			logger.Warn("EVM wallet unavailable", zap.Error(err))
		} else {
			evmWallet = w
		}
	}

	needsSolana := chains.FamilyOf(fromChain) == chains.FamilySolana || chains.FamilyOf(toChain) == chains.FamilySolana
	if needsSolana && cfg.Solana.PrivateKey != "" {
		w, err := wallet.NewSolanaWallet(cfg.Solana, logger)
		if err != nil {
			logger.Warn("Solana wallet unavailable", zap.Error(err))
		} else {
			solWallet = w
		}
	}

	return evmWallet, solWallet
}

// originAddress returns the connected wallet address for a chain's family,
// or empty when that family has no wallet.
func originAddress(chainID int64, evmWallet wallet.EVM, solWallet wallet.Solana) string {
	if chains.FamilyOf(chainID) == chains.FamilySolana {
		if solWallet != nil {
			return solWallet.PublicKey()
		}
		return ""
	}
	if evmWallet != nil {
		return evmWallet.Address()
	}
	return ""
}

func recordSwap(status swap.Status, logger *zap.Logger) {
	store, err := history.NewStore("")
	if err != nil {
		logger.Warn("history unavailable", zap.Error(err))
		return
	}

	record := &history.Record{
		Kind:           history.KindSwap,
		OriginChain:    swapFromChain,
		DestChain:      swapToChain,
		SentAmount:     status.SentAmount,
		SentSymbol:     status.SentSymbol,
		ReceivedAmount: status.ReceivedAmount,
		ReceivedSymbol: status.ReceivedSymbol,
		TxHash:         status.TxHash,
		Status:         string(status.State),
		Error:          status.Err,
	}
	if err := store.Add(record); err != nil {
		logger.Warn("failed to record swap", zap.Error(err))
	}
}

func confirmPrompt(question string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n%s (y/N): ", question)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
