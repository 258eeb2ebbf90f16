package quote

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zecbridge/pkg/chains"
	"zecbridge/pkg/relay"
)

type fakeQuoter struct {
	mu       sync.Mutex
	requests []relay.QuoteRequest
	quote    *relay.Quote
	err      error
}

func (f *fakeQuoter) Quote(ctx context.Context, req relay.QuoteRequest) (*relay.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.quote, nil
}

func (f *fakeQuoter) captured() []relay.QuoteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]relay.QuoteRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

var (
	ethToken = relay.Currency{
		Address:  "0x0000000000000000000000000000000000000000",
		Symbol:   "ETH",
		Decimals: 18,
		ChainID:  1,
	}
	usdcSolToken = relay.Currency{
		Address:  "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Symbol:   "USDC",
		Decimals: 6,
		ChainID:  792703809,
	}
)

func TestFetchConvertsAmountToAtomic(t *testing.T) {
	quoter := &fakeQuoter{quote: &relay.Quote{}}

	result := Fetch(context.Background(), quoter, Input{
		OriginToken:      ethToken,
		DestinationToken: usdcSolToken,
		Amount:           "1.5",
		User:             "0xuser",
		Recipient:        "recipientpubkey",
	})

	require.Empty(t, result.Err)
	reqs := quoter.captured()
	require.Len(t, reqs, 1)
	assert.Equal(t, "1500000000000000000", reqs[0].Amount)
	assert.Equal(t, "EXACT_INPUT", reqs[0].TradeType)
	assert.Equal(t, "recipientpubkey", reqs[0].Recipient)
}

func TestFetchFillsSentinelRecipient(t *testing.T) {
	// Account origin to a Solana destination with neither a manual recipient
	// nor a destination wallet: the system-program sentinel stands in so the
	// quote can still be priced.
	quoter := &fakeQuoter{quote: &relay.Quote{
		Details: relay.Details{
			CurrencyOut: relay.QuoteSide{Amount: "2500000"},
		},
	}}

	result := Fetch(context.Background(), quoter, Input{
		OriginToken:      ethToken,
		DestinationToken: usdcSolToken,
		Amount:           "1",
		User:             "0xuser",
	})

	require.Empty(t, result.Err)
	require.NotNil(t, result.Quote)
	assert.Equal(t, "2500000", result.Quote.Details.CurrencyOut.Amount)

	reqs := quoter.captured()
	require.Len(t, reqs, 1)
	assert.Equal(t, chains.NativeSolanaAddress, reqs[0].Recipient)
	assert.Equal(t, int64(1), reqs[0].OriginChainID)
	assert.Equal(t, int64(792703809), reqs[0].DestinationChainID)
}

func TestFetchRecipientPrecedence(t *testing.T) {
	quoter := &fakeQuoter{quote: &relay.Quote{}}

	Fetch(context.Background(), quoter, Input{
		OriginToken:       ethToken,
		DestinationToken:  usdcSolToken,
		Amount:            "1",
		Recipient:         "manual",
		DestinationWallet: "wallet",
	})
	Fetch(context.Background(), quoter, Input{
		OriginToken:       ethToken,
		DestinationToken:  usdcSolToken,
		Amount:            "1",
		DestinationWallet: "wallet",
	})

	reqs := quoter.captured()
	require.Len(t, reqs, 2)
	assert.Equal(t, "manual", reqs[0].Recipient)
	assert.Equal(t, "wallet", reqs[1].Recipient)
}

func TestFetchAPIErrorBecomesMessage(t *testing.T) {
	quoter := &fakeQuoter{err: &relay.APIError{Status: 400, Message: "amount too low"}}

	result := Fetch(context.Background(), quoter, Input{
		OriginToken:      ethToken,
		DestinationToken: usdcSolToken,
		Amount:           "0.000001",
	})

	assert.Nil(t, result.Quote)
	assert.Equal(t, "amount too low", result.Err)
}

func TestFetchInvalidAmount(t *testing.T) {
	quoter := &fakeQuoter{}

	result := Fetch(context.Background(), quoter, Input{
		OriginToken:      ethToken,
		DestinationToken: usdcSolToken,
		Amount:           "abc",
	})

	assert.Contains(t, result.Err, "invalid amount")
	assert.Empty(t, quoter.captured())
}

func TestEngineDebouncesRapidInput(t *testing.T) {
	quoter := &fakeQuoter{quote: &relay.Quote{}}
	results := make(chan Result, 10)
	engine := NewEngine(quoter, func(r Result) { results <- r }, WithDebounce(30*time.Millisecond))
	defer engine.Close()

	// Five keystrokes in quick succession; only the final amount may reach
	// the network.
	for _, amount := range []string{"1", "1.", "1.2", "1.23", "1.234"} {
		engine.Request(Input{
			OriginToken:      ethToken,
			DestinationToken: usdcSolToken,
			Amount:           amount,
			User:             "0xuser",
		})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case result := <-results:
		require.Empty(t, result.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("no quote result delivered")
	}

	reqs := quoter.captured()
	require.Len(t, reqs, 1)
	assert.Equal(t, "1234000000000000000", reqs[0].Amount)

	select {
	case <-results:
		t.Fatal("unexpected second result")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEngineCloseDropsPendingFetch(t *testing.T) {
	quoter := &fakeQuoter{quote: &relay.Quote{}}
	results := make(chan Result, 1)
	engine := NewEngine(quoter, func(r Result) { results <- r }, WithDebounce(20*time.Millisecond))

	engine.Request(Input{
		OriginToken:      ethToken,
		DestinationToken: usdcSolToken,
		Amount:           "1",
	})
	engine.Close()

	select {
	case <-results:
		t.Fatal("result delivered after Close")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Empty(t, quoter.captured())
}
