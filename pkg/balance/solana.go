package balance

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SolanaRPCReader reads balances from a Solana-family chain.
type SolanaRPCReader struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
}

// DialSolana creates a reader over the given RPC endpoint.
func DialSolana(rpcURL string, commitment rpc.CommitmentType) *SolanaRPCReader {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &SolanaRPCReader{
		client:     rpc.New(rpcURL),
		commitment: commitment,
	}
}

// Lamports returns the native balance of an owner account.
func (r *SolanaRPCReader) Lamports(ctx context.Context, owner string) (uint64, error) {
	pubkey, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return 0, fmt.Errorf("invalid owner address: %w", err)
	}

	result, err := r.client.GetBalance(ctx, pubkey, r.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return result.Value, nil
}

// TokenBalance returns the owner's balance of a mint in atomic units, read
// from the associated token account. A missing account means a zero balance.
func (r *SolanaRPCReader) TokenBalance(ctx context.Context, mint, owner string) (string, error) {
	ownerKey, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return "", fmt.Errorf("invalid owner address: %w", err)
	}
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return "", fmt.Errorf("invalid mint address: %w", err)
	}

	ata, _, err := solana.FindAssociatedTokenAddress(ownerKey, mintKey)
	if err != nil {
		return "", fmt.Errorf("failed to derive associated token account: %w", err)
	}

	result, err := r.client.GetTokenAccountBalance(ctx, ata, r.commitment)
	if err != nil {
		// The account does not exist until the owner first receives the token.
		return "0", nil
	}
	if result.Value == nil {
		return "0", nil
	}
	return result.Value.Amount, nil
}
