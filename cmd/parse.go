package cmd

import (
	"fmt"
	"regexp"
	"strings"
)

// swapArgs is the parsed "<amount> <token> to <token>" argument grammar.
type swapArgs struct {
	Amount      string
	SourceToken string
	DestToken   string
}

var swapPattern = regexp.MustCompile(`^(\d+\.?\d*)\s+([A-Z0-9]+)\s+TO\s+([A-Z0-9]+)$`)

// parseSwapArgs parses arguments like "1.5 ETH to SOL".
func parseSwapArgs(args []string) (*swapArgs, error) {
	command := strings.TrimSpace(strings.ToUpper(strings.Join(args, " ")))
	command = strings.TrimPrefix(command, "SWAP ")

	matches := swapPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid command format. Expected: '<amount> <token> to <token>' (e.g., '1.5 ETH to SOL')")
	}

	return &swapArgs{
		Amount:      matches[1],
		SourceToken: matches[2],
		DestToken:   matches[3],
	}, nil
}
