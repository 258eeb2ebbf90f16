package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"zecbridge/pkg/history"
)

var historyKind string

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"activity"},
	Short:   "Show past swaps and trades",
	Run:     runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyKind, "kind", "", "Filter by kind: swap or trade")
}

func runHistory(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := history.NewStore("")
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	var records []*history.Record
	if historyKind != "" {
		records = store.ListByKind(history.Kind(strings.ToLower(historyKind)))
	} else {
		records = store.List()
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(records) == 0 {
		fmt.Println("\nNo activity yet.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                                   ACTIVITY")
	fmt.Println(strings.Repeat("=", 90))

	for _, record := range records {
		fmt.Printf("  %s  %-5s  %s %s -> %s %s  %s\n",
			color.HiBlackString(record.CreatedAt.Local().Format("2006-01-02 15:04")),
			record.Kind,
			record.SentAmount,
			color.YellowString(record.SentSymbol),
			record.ReceivedAmount,
			color.YellowString(record.ReceivedSymbol),
			statusColor(record.Status))
		if record.Error != "" {
			fmt.Printf("      %s\n", color.RedString(record.Error))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d records (%s)\n\n", len(records), store.FilePath())
}

func statusColor(status string) string {
	switch status {
	case "success", "finished":
		return color.GreenString(status)
	case "error", "failed":
		return color.RedString(status)
	default:
		return color.YellowString(status)
	}
}
