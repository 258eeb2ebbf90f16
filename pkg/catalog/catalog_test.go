package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zecbridge/pkg/relay"
)

type fakeSource struct {
	chains        []relay.Chain
	chainCalls    int
	currencies    map[string][]relay.Currency // keyed by term
	currencyCalls int
}

func (f *fakeSource) Chains(ctx context.Context) ([]relay.Chain, error) {
	f.chainCalls++
	return f.chains, nil
}

func (f *fakeSource) Currencies(ctx context.Context, chainID int64, term string) ([]relay.Currency, error) {
	f.currencyCalls++
	return f.currencies[term], nil
}

func TestChainsCachedForSession(t *testing.T) {
	src := &fakeSource{chains: []relay.Chain{{ID: 1, Name: "ethereum"}}}
	cat := New(src, nil)

	_, err := cat.Chains(context.Background())
	require.NoError(t, err)
	_, err = cat.Chains(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, src.chainCalls)

	chain, ok, err := cat.ChainByID(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ethereum", chain.Name)
	assert.Equal(t, 1, src.chainCalls)
}

func TestSearchMergesAdditively(t *testing.T) {
	src := &fakeSource{currencies: map[string][]relay.Currency{
		"": {
			{Address: "0xAAAA", Symbol: "USDC", ChainID: 1, Verified: true},
			{Address: "0xBBBB", Symbol: "WETH", ChainID: 1, Verified: true},
		},
		"pepe": {
			{Address: "0xCCCC", Symbol: "PEPE", ChainID: 1},
		},
	}}
	cat := New(src, nil)

	initial, err := cat.Tokens(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, initial, 2)

	found, err := cat.Search(context.Background(), 1, "pepe")
	require.NoError(t, err)
	require.Len(t, found, 1)

	// The cache is now the union of both fetches, keyed by address.
	all, err := cat.Tokens(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, all, 3)

	symbols := make([]string, 0, len(all))
	for _, token := range all {
		symbols = append(symbols, token.Symbol)
	}
	assert.Equal(t, []string{"PEPE", "USDC", "WETH"}, symbols)

	// One list fetch plus one search; the second Tokens call hits the cache.
	assert.Equal(t, 2, src.currencyCalls)
}

func TestSearchDeduplicatesByAddress(t *testing.T) {
	src := &fakeSource{currencies: map[string][]relay.Currency{
		"":     {{Address: "0xAAAA", Symbol: "USDC", ChainID: 1, Verified: true}},
		"usdc": {{Address: "0xaaaa", Symbol: "USDC", ChainID: 1}},
	}}
	cat := New(src, nil)

	_, err := cat.Tokens(context.Background(), 1)
	require.NoError(t, err)
	_, err = cat.Search(context.Background(), 1, "usdc")
	require.NoError(t, err)

	// Same token with different hex casing must not duplicate the entry.
	all, err := cat.Tokens(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTokenBySymbol(t *testing.T) {
	src := &fakeSource{currencies: map[string][]relay.Currency{
		"": {{Address: "0xAAAA", Symbol: "USDC", ChainID: 1, Decimals: 6}},
	}}
	cat := New(src, nil)

	token, ok, err := cat.TokenBySymbol(context.Background(), 1, "usdc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 6, token.Decimals)

	_, ok, err = cat.TokenBySymbol(context.Background(), 1, "DOGE")
	require.NoError(t, err)
	assert.False(t, ok)
}
