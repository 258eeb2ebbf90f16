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

	"zecbridge/config"
	"zecbridge/pkg/catalog"
	"zecbridge/pkg/prices"
	"zecbridge/pkg/quote"
	"zecbridge/pkg/relay"
)

var (
	quoteFromChain int64
	quoteToChain   int64
	quoteRecipient string
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <source-token> to <dest-token>",
	Short: "Get a cross-chain swap quote",
	Long: `Ask the routing aggregator what a swap would yield, without executing
anything. No wallet is needed; a placeholder recipient is used unless you
pass --recipient.

Examples:
  zecbridge quote 1.5 ETH to SOL --from-chain 1 --to-chain 792703809
  zecbridge quote 100 USDC to ETH --from-chain 8453 --to-chain 1`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().Int64Var(&quoteFromChain, "from-chain", 0, "Origin chain id (REQUIRED)")
	quoteCmd.Flags().Int64Var(&quoteToChain, "to-chain", 0, "Destination chain id (REQUIRED)")
	quoteCmd.Flags().StringVar(&quoteRecipient, "recipient", "", "Recipient address (optional for quoting)")
	quoteCmd.MarkFlagRequired("from-chain")
	quoteCmd.MarkFlagRequired("to-chain")
}

func runQuote(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

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
	cat := catalog.New(client, buildLogger(verbose))
	ctx := context.Background()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	input, err := resolveQuoteInput(ctx, cat, parsed, quoteFromChain, quoteToChain)
	if err != nil {
		if !jsonOutput {
			s.Stop()
		}
		printError(err)
		os.Exit(1)
	}
	input.Recipient = quoteRecipient

	result := quote.Fetch(ctx, client, *input)
	if !jsonOutput {
		s.Stop()
	}
	if result.Err != "" {
		printError(fmt.Errorf("%s", result.Err))
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(result.Quote, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayQuote(result.Quote, cfg)
}

// resolveQuoteInput turns symbols into concrete tokens on the given chains.
func resolveQuoteInput(ctx context.Context, cat *catalog.Catalog, parsed *swapArgs, fromChain, toChain int64) (*quote.Input, error) {
	source, ok, err := cat.TokenBySymbol(ctx, fromChain, parsed.SourceToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("token '%s' not found on chain %d (try: zecbridge tokens %d --search %s)",
			parsed.SourceToken, fromChain, fromChain, parsed.SourceToken)
	}

	dest, ok, err := cat.TokenBySymbol(ctx, toChain, parsed.DestToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("token '%s' not found on chain %d (try: zecbridge tokens %d --search %s)",
			parsed.DestToken, toChain, toChain, parsed.DestToken)
	}

	return &quote.Input{
		OriginToken:      source,
		DestinationToken: dest,
		Amount:           parsed.Amount,
	}, nil
}

func displayQuote(q *relay.Quote, cfg *config.Config) {
	in := q.Details.CurrencyIn
	out := q.Details.CurrencyOut

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  From:  %s %s\n", in.AmountFormatted, color.YellowString(in.Currency.Symbol))
	fmt.Printf("  To:    ~%s %s\n", out.AmountFormatted, color.YellowString(out.Currency.Symbol))
	if q.Details.Rate != "" {
		fmt.Printf("  Rate:  %s\n", q.Details.Rate)
	}
	if out.AmountUsd != "" {
		fmt.Printf("  Value: $%s\n", out.AmountUsd)
	} else if cfg.PriceAPIKey != "" {
		svc := prices.New(cfg.PriceAPIKey)
		usd := svc.USD(context.Background(), out.Currency.Symbol)
		if price := usd[strings.ToUpper(out.Currency.Symbol)]; price > 0 {
			fmt.Printf("  Value: ~$%.2f\n", price*parseFloatOrZero(out.AmountFormatted))
		}
	}
	fmt.Printf("  Steps: %d\n", len(q.Steps))

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func parseFloatOrZero(s string) float64 {
	var f float64
	fmt.Sscanf(s, "%f", &f)
	return f
}
