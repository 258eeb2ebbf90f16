package balance

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"zecbridge/pkg/relay"
)

type fakeProber struct {
	answer string
	calls  int
}

func (f *fakeProber) UserBalance(ctx context.Context, chainID int64, currency, user string) string {
	f.calls++
	return f.answer
}

type fakeAccountReader struct {
	native      *big.Int
	token       *big.Int
	err         error
	nativeCalls int
	tokenCalls  int
}

func (f *fakeAccountReader) NativeBalance(ctx context.Context, address string) (*big.Int, error) {
	f.nativeCalls++
	return f.native, f.err
}

func (f *fakeAccountReader) TokenBalance(ctx context.Context, token, owner string) (*big.Int, error) {
	f.tokenCalls++
	return f.token, f.err
}

type fakeSolanaReader struct {
	lamports      uint64
	tokenAmount   string
	err           error
	lamportsCalls int
	tokenCalls    int
}

func (f *fakeSolanaReader) Lamports(ctx context.Context, owner string) (uint64, error) {
	f.lamportsCalls++
	return f.lamports, f.err
}

func (f *fakeSolanaReader) TokenBalance(ctx context.Context, mint, owner string) (string, error) {
	f.tokenCalls++
	return f.tokenAmount, f.err
}

var usdcOnEthereum = relay.Currency{
	Address:  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
	Symbol:   "USDC",
	Decimals: 6,
	ChainID:  1,
}

var ethNative = relay.Currency{
	Address:  "0x0000000000000000000000000000000000000000",
	Symbol:   "ETH",
	Decimals: 18,
	ChainID:  1,
}

var solNative = relay.Currency{
	Address:  "11111111111111111111111111111111",
	Symbol:   "SOL",
	Decimals: 9,
	ChainID:  792703809,
}

func TestResolveNonZeroProbeSkipsFallback(t *testing.T) {
	prober := &fakeProber{answer: "2500000"}
	reader := &fakeAccountReader{}
	resolver := NewResolver(prober, WithAccountReaders(func(int64) AccountReader { return reader }))

	got := resolver.Resolve(context.Background(), usdcOnEthereum, "0xuser")

	assert.Equal(t, "2.5", got)
	assert.Equal(t, 1, prober.calls)
	assert.Zero(t, reader.nativeCalls)
	assert.Zero(t, reader.tokenCalls)
}

func TestResolveZeroProbeFallsBackOnce(t *testing.T) {
	prober := &fakeProber{answer: "0"}
	reader := &fakeAccountReader{token: big.NewInt(7000000)}
	resolver := NewResolver(prober, WithAccountReaders(func(int64) AccountReader { return reader }))

	got := resolver.Resolve(context.Background(), usdcOnEthereum, "0xuser")

	assert.Equal(t, "7", got)
	assert.Equal(t, 1, prober.calls)
	assert.Equal(t, 1, reader.tokenCalls)
	assert.Zero(t, reader.nativeCalls)
}

func TestResolveNativeUsesNativeRead(t *testing.T) {
	prober := &fakeProber{answer: "0"}
	reader := &fakeAccountReader{native: big.NewInt(1500000000000000000)}
	resolver := NewResolver(prober, WithAccountReaders(func(int64) AccountReader { return reader }))

	got := resolver.Resolve(context.Background(), ethNative, "0xuser")

	assert.Equal(t, "1.5", got)
	assert.Equal(t, 1, reader.nativeCalls)
	assert.Zero(t, reader.tokenCalls)
}

func TestResolveSolanaNative(t *testing.T) {
	prober := &fakeProber{answer: "0"}
	reader := &fakeSolanaReader{lamports: 2000000000}
	resolver := NewResolver(prober, WithSolanaReader(reader))

	got := resolver.Resolve(context.Background(), solNative, "ownerpubkey")

	assert.Equal(t, "2", got)
	assert.Equal(t, 1, reader.lamportsCalls)
	assert.Zero(t, reader.tokenCalls)
}

func TestResolveDegradesToZero(t *testing.T) {
	t.Run("reader error", func(t *testing.T) {
		prober := &fakeProber{answer: "0"}
		reader := &fakeAccountReader{err: errors.New("rpc down")}
		resolver := NewResolver(prober, WithAccountReaders(func(int64) AccountReader { return reader }))

		assert.Equal(t, "0", resolver.Resolve(context.Background(), usdcOnEthereum, "0xuser"))
	})

	t.Run("no reader configured", func(t *testing.T) {
		prober := &fakeProber{answer: "0"}
		resolver := NewResolver(prober)

		assert.Equal(t, "0", resolver.Resolve(context.Background(), usdcOnEthereum, "0xuser"))
		assert.Equal(t, 1, prober.calls)
	})

	t.Run("unparseable probe answer", func(t *testing.T) {
		prober := &fakeProber{answer: "not-a-number"}
		resolver := NewResolver(prober)

		assert.Equal(t, "0", resolver.Resolve(context.Background(), usdcOnEthereum, "0xuser"))
	})
}
