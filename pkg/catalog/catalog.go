package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"zecbridge/pkg/chains"
	"zecbridge/pkg/relay"
)

// Source is the slice of the aggregator the catalog needs.
type Source interface {
	Chains(ctx context.Context) ([]relay.Chain, error)
	Currencies(ctx context.Context, chainID int64, term string) ([]relay.Currency, error)
}

// Catalog caches the chain list for the session and tokens per chain. Token
// entries only ever accumulate: search results merge into the cache by
// address and never replace or evict what an earlier fetch brought in.
type Catalog struct {
	source Source
	log    *zap.Logger

	mu        sync.RWMutex
	chainList []relay.Chain
	tokens    map[int64]map[string]relay.Currency
}

// New creates a catalog over the given source.
func New(source Source, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{
		source: source,
		log:    log,
		tokens: make(map[int64]map[string]relay.Currency),
	}
}

// Chains returns the supported chains, fetching them once per session.
func (c *Catalog) Chains(ctx context.Context) ([]relay.Chain, error) {
	c.mu.RLock()
	cached := c.chainList
	c.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	list, err := c.source.Chains(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.chainList = list
	c.mu.Unlock()
	return list, nil
}

// ChainByID finds a chain in the cached list.
func (c *Catalog) ChainByID(ctx context.Context, chainID int64) (relay.Chain, bool, error) {
	list, err := c.Chains(ctx)
	if err != nil {
		return relay.Chain{}, false, err
	}
	for _, chain := range list {
		if chain.ID == chainID {
			return chain, true, nil
		}
	}
	return relay.Chain{}, false, nil
}

// Tokens returns the cached tokens for a chain, fetching the verified list
// on first use. The result is sorted by symbol for stable output.
func (c *Catalog) Tokens(ctx context.Context, chainID int64) ([]relay.Currency, error) {
	c.mu.RLock()
	_, loaded := c.tokens[chainID]
	c.mu.RUnlock()

	if !loaded {
		fetched, err := c.source.Currencies(ctx, chainID, "")
		if err != nil {
			return nil, err
		}
		c.merge(chainID, fetched)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]relay.Currency, 0, len(c.tokens[chainID]))
	for _, token := range c.tokens[chainID] {
		out = append(out, token)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// Search fetches tokens matching the term (unverified allowed) and merges
// them into the chain's cache. It returns only the newly fetched matches.
func (c *Catalog) Search(ctx context.Context, chainID int64, term string) ([]relay.Currency, error) {
	found, err := c.source.Currencies(ctx, chainID, term)
	if err != nil {
		return nil, err
	}
	c.merge(chainID, found)
	c.log.Debug("token search merged",
		zap.Int64("chainId", chainID),
		zap.String("term", term),
		zap.Int("results", len(found)))
	return found, nil
}

// TokenBySymbol looks up a cached token by symbol, case-insensitively. It
// loads the chain's token list first if needed.
func (c *Catalog) TokenBySymbol(ctx context.Context, chainID int64, symbol string) (relay.Currency, bool, error) {
	tokens, err := c.Tokens(ctx, chainID)
	if err != nil {
		return relay.Currency{}, false, err
	}
	for _, token := range tokens {
		if strings.EqualFold(token.Symbol, symbol) {
			return token, true, nil
		}
	}
	return relay.Currency{}, false, nil
}

// TokenByAddress looks up a cached token by address.
func (c *Catalog) TokenByAddress(chainID int64, address string) (relay.Currency, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	token, ok := c.tokens[chainID][tokenKey(chainID, address)]
	return token, ok
}

func (c *Catalog) merge(chainID int64, list []relay.Currency) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byAddr, ok := c.tokens[chainID]
	if !ok {
		byAddr = make(map[string]relay.Currency)
		c.tokens[chainID] = byAddr
	}
	for _, token := range list {
		byAddr[tokenKey(chainID, token.Address)] = token
	}
}

// tokenKey normalizes addresses on account chains, where hex casing varies.
// Solana addresses are case-sensitive base58 and stay as-is.
func tokenKey(chainID int64, address string) string {
	if chains.FamilyOf(chainID) == chains.FamilyAccount {
		return strings.ToLower(address)
	}
	return address
}
