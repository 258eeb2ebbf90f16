package balance

import (
	"context"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"zecbridge/pkg/chains"
	"zecbridge/pkg/relay"
)

// Prober answers balance questions through the aggregator's quote endpoint.
type Prober interface {
	UserBalance(ctx context.Context, chainID int64, currency, user string) string
}

// AccountReader reads balances directly from an account chain.
type AccountReader interface {
	NativeBalance(ctx context.Context, address string) (*big.Int, error)
	TokenBalance(ctx context.Context, token, owner string) (*big.Int, error)
}

// SolanaReader reads balances directly from a Solana-family chain.
type SolanaReader interface {
	Lamports(ctx context.Context, owner string) (uint64, error)
	TokenBalance(ctx context.Context, mint, owner string) (string, error)
}

// Resolver resolves a display balance for a token. It asks the aggregator
// first; a zero answer is ambiguous (genuinely empty or a probe miss), so it
// falls back to one direct chain query. It never errors: every failure path
// degrades to "0". No retries, no caching.
type Resolver struct {
	prober     Prober
	accountFor func(chainID int64) AccountReader
	solana     SolanaReader
	log        *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAccountReaders supplies direct readers for account chains. The
// function returns nil for chains without a configured endpoint.
func WithAccountReaders(fn func(chainID int64) AccountReader) Option {
	return func(r *Resolver) { r.accountFor = fn }
}

// WithSolanaReader supplies a direct reader for Solana-family chains.
func WithSolanaReader(reader SolanaReader) Option {
	return func(r *Resolver) { r.solana = reader }
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// NewResolver creates a Resolver. Without reader options the aggregator
// probe is the only source.
func NewResolver(prober Prober, opts ...Option) *Resolver {
	r := &Resolver{prober: prober, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the human-readable balance of token held by address.
func (r *Resolver) Resolve(ctx context.Context, token relay.Currency, address string) string {
	atomic := r.prober.UserBalance(ctx, token.ChainID, token.Address, address)
	if atomic != "" && atomic != "0" {
		return formatAtomic(atomic, token.Decimals)
	}
	return formatAtomic(r.direct(ctx, token, address), token.Decimals)
}

func (r *Resolver) direct(ctx context.Context, token relay.Currency, address string) string {
	switch chains.FamilyOf(token.ChainID) {
	case chains.FamilySolana:
		if r.solana == nil {
			return "0"
		}
		if chains.IsNative(token.ChainID, token.Address) {
			lamports, err := r.solana.Lamports(ctx, address)
			if err != nil {
				r.log.Debug("lamports read failed", zap.String("owner", address), zap.Error(err))
				return "0"
			}
			return strconv.FormatUint(lamports, 10)
		}
		amount, err := r.solana.TokenBalance(ctx, token.Address, address)
		if err != nil {
			r.log.Debug("token account read failed", zap.String("mint", token.Address), zap.Error(err))
			return "0"
		}
		return amount

	default:
		if r.accountFor == nil {
			return "0"
		}
		reader := r.accountFor(token.ChainID)
		if reader == nil {
			return "0"
		}
		var (
			amount *big.Int
			err    error
		)
		if chains.IsNative(token.ChainID, token.Address) {
			amount, err = reader.NativeBalance(ctx, address)
		} else {
			amount, err = reader.TokenBalance(ctx, token.Address, address)
		}
		if err != nil {
			r.log.Debug("chain balance read failed",
				zap.Int64("chainId", token.ChainID),
				zap.String("token", token.Address),
				zap.Error(err))
			return "0"
		}
		return amount.String()
	}
}

// formatAtomic shifts an atomic amount by the token's decimals. Anything
// unparseable comes back as "0".
func formatAtomic(atomic string, decimals int) string {
	d, err := decimal.NewFromString(atomic)
	if err != nil {
		return "0"
	}
	return d.Shift(int32(-decimals)).String()
}
