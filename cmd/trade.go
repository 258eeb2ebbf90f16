package cmd

import (
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
	"zecbridge/pkg/exchange"
	"zecbridge/pkg/history"
	"zecbridge/pkg/wallet"
)

var (
	tradeFromChain string
	tradeToChain   string
	tradeRecipient string
	tradeRefundTo  string
	tradeWatch     bool
	tradeNoConfirm bool
)

var tradeCmd = &cobra.Command{
	Use:   "trade <amount> <from-token> to <to-token>",
	Short: "Trade at a fixed rate through a deposit address",
	Long: `Create a fixed-rate trade with the deposit-address exchange. You fund the
deposit address; the exchange delivers to the recipient. With a configured
zcash-cli signer, ZEC deposits are sent automatically.

Examples:
  zecbridge trade 1.5 ZEC to ETH --from-chain zec --to-chain eth --recipient 0x...
  zecbridge trade 100 USDC to ZEC --from-chain base --to-chain zec --recipient u1... --watch`,
	Args: cobra.MinimumNArgs(1),
	Run:  runTrade,
}

func init() {
	rootCmd.AddCommand(tradeCmd)

	tradeCmd.Flags().StringVar(&tradeFromChain, "from-chain", "", "Origin chain name, e.g. zec, eth, sol (REQUIRED)")
	tradeCmd.Flags().StringVar(&tradeToChain, "to-chain", "", "Destination chain name (REQUIRED)")
	tradeCmd.Flags().StringVar(&tradeRecipient, "recipient", "", "Recipient address on the destination chain (REQUIRED)")
	tradeCmd.Flags().StringVar(&tradeRefundTo, "refund-to", "", "Refund address on the origin chain (defaults to recipient)")
	tradeCmd.Flags().BoolVar(&tradeWatch, "watch", false, "Watch the trade until it finishes")
	tradeCmd.Flags().BoolVarP(&tradeNoConfirm, "yes", "y", false, "Skip confirmation prompt")
	tradeCmd.MarkFlagRequired("from-chain")
	tradeCmd.MarkFlagRequired("to-chain")
	tradeCmd.MarkFlagRequired("recipient")
}

func runTrade(cmd *cobra.Command, args []string) {
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
	if cfg.ExchangeJWT == "" {
		printError(fmt.Errorf("exchange_jwt is not configured; set ZECBRIDGE_EXCHANGE_JWT or add it to .zecbridge.yaml"))
		os.Exit(1)
	}

	client := exchange.NewClient(cfg.ExchangeJWT)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Creating trade..."
		s.Start()
	}

	trade, err := client.CreateTrade(exchange.TradeRequest{
		FromToken: parsed.SourceToken,
		FromChain: tradeFromChain,
		ToToken:   parsed.DestToken,
		ToChain:   tradeToChain,
		Amount:    parsed.Amount,
		Recipient: tradeRecipient,
		RefundTo:  tradeRefundTo,
	})
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(trade, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayDepositInstructions(trade, parsed.SourceToken, parsed.DestToken)
	}

	recordTrade(trade, parsed, logger)

	maybeSendDeposit(cfg, client, trade, logger, jsonOutput)

	if tradeWatch {
		watchTrade(client, trade.DepositAddress, jsonOutput)
	} else if !jsonOutput {
		fmt.Printf("Track progress with: zecbridge status %s --watch\n\n", trade.DepositAddress)
	}
}

// maybeSendDeposit funds the deposit address automatically when the origin
// is ZEC and a zcash-cli signer is configured. Every other origin is a
// manual transfer by the user.
func maybeSendDeposit(cfg *config.Config, client *exchange.Client, trade *exchange.Trade, logger *zap.Logger, jsonOutput bool) {
	if !strings.EqualFold(tradeFromChain, "zec") {
		return
	}

	zec := wallet.NewZcashWallet(cfg.Zcash)
	if !zec.CanSend() {
		if !jsonOutput {
			fmt.Println("No zcash-cli signer configured; send the deposit manually from your ZEC wallet.")
			fmt.Println()
		}
		return
	}

	if !jsonOutput && !tradeNoConfirm && !cfg.AutoConfirm {
		if !confirmPrompt(fmt.Sprintf("Send %s ZEC to the deposit address now?", trade.AmountIn)) {
			fmt.Println("\nDeposit not sent; fund the address manually before the deadline.")
			return
		}
	}

	txid, err := zec.Send(trade.DepositAddress, trade.AmountIn)
	if err != nil {
		printError(fmt.Errorf("automatic deposit failed, send manually: %w", err))
		return
	}

	if !jsonOutput {
		color.Green("✓ Deposit sent: %s", txid)
		fmt.Println()
	}
	if err := client.SubmitDepositTx(trade.DepositAddress, txid); err != nil {
		logger.Warn("failed to notify exchange of deposit", zap.Error(err))
	}
}

func watchTrade(client *exchange.Client, depositAddress string, jsonOutput bool) {
	projection := exchange.NewProjection()
	fetch := func(ctx context.Context) (string, error) {
		return client.Status(depositAddress)
	}

	stage, err := projection.Watch(context.Background(), fetch, func(stage exchange.Stage) {
		if !jsonOutput {
			fmt.Printf("  Stage: %s\n", stageColor(stage))
		}
	})
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(map[string]string{"stage": string(stage)}, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if stage == exchange.StageFinished {
		color.Green("\n✓ Trade finished!")
	} else {
		color.Red("\n✗ Trade failed; unspent deposits are refunded to the refund address.")
	}
	fmt.Println()
}

func displayDepositInstructions(trade *exchange.Trade, fromToken, toToken string) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                 DEPOSIT INSTRUCTIONS")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Send:     %s %s\n", trade.AmountIn, color.YellowString(strings.ToUpper(fromToken)))
	fmt.Printf("  To:       %s\n", color.CyanString(trade.DepositAddress))
	fmt.Printf("  Receive:  ~%s %s\n", trade.AmountOut, color.YellowString(strings.ToUpper(toToken)))
	fmt.Printf("  Deadline: %s\n", trade.Deadline.Local().Format(time.RFC1123))

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func recordTrade(trade *exchange.Trade, parsed *swapArgs, logger *zap.Logger) {
	store, err := history.NewStore("")
	if err != nil {
		logger.Warn("history unavailable", zap.Error(err))
		return
	}

	record := &history.Record{
		Kind:           history.KindTrade,
		SentAmount:     trade.AmountIn,
		SentSymbol:     strings.ToUpper(parsed.SourceToken),
		ReceivedAmount: trade.AmountOut,
		ReceivedSymbol: strings.ToUpper(parsed.DestToken),
		DepositAddress: trade.DepositAddress,
		Status:         string(exchange.StageWaiting),
	}
	if err := store.Add(record); err != nil {
		logger.Warn("failed to record trade", zap.Error(err))
	}
}

func stageColor(stage exchange.Stage) string {
	switch stage {
	case exchange.StageFinished:
		return color.GreenString(string(stage))
	case exchange.StageFailed:
		return color.RedString(string(stage))
	default:
		return color.YellowString(string(stage))
	}
}
