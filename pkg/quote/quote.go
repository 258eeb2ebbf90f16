package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"zecbridge/pkg/chains"
	"zecbridge/pkg/relay"
)

// Quoter is the slice of the aggregator the quote engine needs.
type Quoter interface {
	Quote(ctx context.Context, req relay.QuoteRequest) (*relay.Quote, error)
}

// Input describes the trade the user is composing. Chain ids come from the
// tokens themselves. User is the signing wallet's address; empty means no
// wallet is connected and the quote is simulated. Recipient is the manual
// override; DestinationWallet is the connected wallet on the destination
// family, used when no manual recipient is set.
type Input struct {
	OriginToken       relay.Currency
	DestinationToken  relay.Currency
	Amount            string
	User              string
	Recipient         string
	DestinationWallet string
}

// Result is the outcome of one quote fetch. Err is a user-facing message;
// it is empty exactly when Quote is set.
type Result struct {
	Quote *relay.Quote
	Err   string
}

// Fetch converts the human amount to atomic units, resolves user and
// recipient, and asks the aggregator for a route. Failures come back as a
// message in Result, never as a panic or raw transport error.
func Fetch(ctx context.Context, quoter Quoter, input Input) Result {
	atomic, err := atomicAmount(input.Amount, input.OriginToken.Decimals)
	if err != nil {
		return Result{Err: fmt.Sprintf("invalid amount %q", input.Amount)}
	}

	// Without a connected wallet the family sentinel stands in, which lets
	// the aggregator price the route without a real signer.
	user := input.User
	if user == "" {
		user = chains.NativeAddress(chains.FamilyOf(input.OriginToken.ChainID))
	}

	// Manual recipient wins, then the connected destination wallet, then the
	// destination family's sentinel for a simulated quote.
	recipient := input.Recipient
	if recipient == "" {
		recipient = input.DestinationWallet
	}
	if recipient == "" {
		recipient = chains.NativeAddress(chains.FamilyOf(input.DestinationToken.ChainID))
	}

	q, err := quoter.Quote(ctx, relay.QuoteRequest{
		User:                user,
		OriginChainID:       input.OriginToken.ChainID,
		DestinationChainID:  input.DestinationToken.ChainID,
		OriginCurrency:      input.OriginToken.Address,
		DestinationCurrency: input.DestinationToken.Address,
		Amount:              atomic,
		TradeType:           "EXACT_INPUT",
		Recipient:           recipient,
	})
	if err != nil {
		var apiErr *relay.APIError
		if errors.As(err, &apiErr) {
			return Result{Err: apiErr.Message}
		}
		return Result{Err: err.Error()}
	}
	return Result{Quote: q}
}

// atomicAmount shifts a human-entered amount into atomic units, truncating
// precision beyond the token's decimals.
func atomicAmount(amount string, decimals int) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", err
	}
	if d.IsNegative() {
		return "", fmt.Errorf("negative amount")
	}
	return d.Shift(int32(decimals)).Truncate(0).String(), nil
}
