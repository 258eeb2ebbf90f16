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
	"zecbridge/pkg/chains"
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List chains the aggregator can route through",
	Run:   runChains,
}

func init() {
	rootCmd.AddCommand(chainsCmd)
}

func runChains(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	client := newRelayClient(cfg, verbose)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching supported chains..."
		s.Start()
	}

	list, err := client.Chains(context.Background())
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(list, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                  SUPPORTED CHAINS")
	fmt.Println(strings.Repeat("=", 60))

	for _, chain := range list {
		family := chains.FamilyOf(chain.ID)
		fmt.Printf("  %-12d %-24s %s\n",
			chain.ID,
			color.YellowString(chain.DisplayName),
			color.HiBlackString(family.String()))
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("\nTotal: %d chains\n\n", len(list))
}
