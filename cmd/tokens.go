package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"zecbridge/config"
	"zecbridge/pkg/catalog"
	"zecbridge/pkg/relay"
)

var searchTerm string

var tokensCmd = &cobra.Command{
	Use:     "tokens <chain-id>",
	Aliases: []string{"list-tokens"},
	Short:   "List or search tokens on a chain",
	Long: `List the verified tokens on a chain, or search by name, symbol or address.
Search results may include unverified tokens.

Examples:
  zecbridge tokens 1
  zecbridge tokens 8453 --search PEPE`,
	Args: cobra.ExactArgs(1),
	Run:  runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&searchTerm, "search", "", "Search term (name, symbol or address)")
}

func runTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

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

	cat := catalog.New(newRelayClient(cfg, verbose), buildLogger(verbose))

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching tokens..."
		s.Start()
	}

	var tokens []relay.Currency
	if searchTerm != "" {
		tokens, err = cat.Search(context.Background(), chainID, searchTerm)
	} else {
		tokens, err = cat.Tokens(context.Background(), chainID)
	}
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(tokens, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(tokens) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                                   TOKENS")
	fmt.Println(strings.Repeat("=", 90))

	for _, token := range tokens {
		address := token.Address
		if len(address) > 44 {
			address = address[:41] + "..."
		}
		marker := " "
		if !token.Verified {
			marker = color.RedString("?")
		}
		fmt.Printf("  %s %-10s  %2d decimals  %s\n",
			marker,
			color.YellowString(token.Symbol),
			token.Decimals,
			color.HiBlackString(address))
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d tokens (? = unverified)\n\n", len(tokens))
}
