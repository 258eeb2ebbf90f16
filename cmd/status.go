package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"zecbridge/config"
	"zecbridge/pkg/exchange"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status <deposit-address>",
	Short: "Check the status of a deposit-address trade",
	Long: `Show where a trade is in its lifecycle: waiting, confirming, exchanging,
sending, finished or failed. With --watch, poll until it reaches a
terminal stage.`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "Poll until the trade finishes or fails")
}

func runStatus(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	depositAddress := args[0]

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

	if statusWatch {
		watchTrade(client, depositAddress, jsonOutput)
		return
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking status..."
		s.Start()
	}

	raw, err := client.Status(depositAddress)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	stage := exchange.StageFromStatus(raw)

	if jsonOutput {
		output := map[string]string{
			"deposit_address": depositAddress,
			"status":          raw,
			"stage":           string(stage),
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Printf("\n  Stage:  %s\n", stageColor(stage))
	fmt.Printf("  Status: %s\n\n", raw)
}
