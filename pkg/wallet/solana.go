package wallet

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"zecbridge/config"
	"zecbridge/pkg/relay"
)

// SolanaWallet signs and submits instruction-list transactions. It remembers
// the last valid block height of each submission so confirmation can be
// bounded by blockhash expiry.
type SolanaWallet struct {
	cfg        config.SolanaConfig
	client     *rpc.Client
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
	log        *zap.Logger

	mu        sync.Mutex
	lastValid map[string]uint64
}

// NewSolanaWallet creates a wallet over the configured RPC endpoint.
func NewSolanaWallet(cfg config.SolanaConfig, log *zap.Logger) (*SolanaWallet, error) {
	if cfg.RPCUrl == "" {
		return nil, fmt.Errorf("RPC URL not configured for Solana")
	}
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("private key not configured: %w", ErrNotConnected)
	}
	if log == nil {
		log = zap.NewNop()
	}

	privateKey, err := solana.PrivateKeyFromBase58(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &SolanaWallet{
		cfg:        cfg,
		client:     rpc.New(cfg.RPCUrl),
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
		log:        log,
		lastValid:  make(map[string]uint64),
	}, nil
}

// PublicKey returns the signer's base58 public key.
func (s *SolanaWallet) PublicKey() string {
	return s.publicKey.String()
}

// SubmitInstructions builds, signs and submits a transaction from the
// aggregator's instruction list.
func (s *SolanaWallet) SubmitInstructions(ctx context.Context, instructions []relay.SolanaInstruction) (string, error) {
	built := make([]solana.Instruction, 0, len(instructions))
	for i, instr := range instructions {
		ix, err := buildInstruction(instr)
		if err != nil {
			return "", fmt.Errorf("invalid instruction %d: %w", i, err)
		}
		built = append(built, ix)
	}

	recent, err := s.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		built,
		recent.Value.Blockhash,
		solana.TransactionPayer(s.publicKey),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.publicKey) {
			return &s.privateKey
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	opts := rpc.TransactionOpts{
		SkipPreflight:       s.cfg.SkipPreflight,
		PreflightCommitment: s.commitment(),
	}
	sig, err := s.client.SendTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	signature := sig.String()
	s.mu.Lock()
	s.lastValid[signature] = recent.Value.LastValidBlockHeight
	s.mu.Unlock()

	s.log.Info("transaction submitted", zap.String("signature", signature))
	return signature, nil
}

// ConfirmTransaction confirms a signature against the blockhash it was sent
// with. It keeps checking until the signature confirms, the chain rejects
// it, or the blockhash expires.
func (s *SolanaWallet) ConfirmTransaction(ctx context.Context, signature string) error {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return fmt.Errorf("invalid transaction signature: %w", err)
	}

	s.mu.Lock()
	lastValid, tracked := s.lastValid[signature]
	s.mu.Unlock()

	for {
		confirmed, err := s.checkStatus(ctx, sig)
		if err != nil {
			if errors.Is(err, ErrTransactionFailed) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrConfirmationUnavailable, err)
		}
		if confirmed {
			return nil
		}

		if tracked {
			height, err := s.client.GetBlockHeight(ctx, rpc.CommitmentFinalized)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrConfirmationUnavailable, err)
			}
			if height > lastValid {
				return fmt.Errorf("%w: blockhash expired before confirmation", ErrConfirmationUnavailable)
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrConfirmationUnavailable, ctx.Err())
		case <-time.After(time.Second):
		}
	}
}

// SignatureStatus performs a single status check for the fallback poll.
func (s *SolanaWallet) SignatureStatus(ctx context.Context, signature string) (bool, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return false, fmt.Errorf("invalid transaction signature: %w", err)
	}
	return s.checkStatus(ctx, sig)
}

func (s *SolanaWallet) checkStatus(ctx context.Context, sig solana.Signature) (bool, error) {
	statuses, err := s.client.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return false, fmt.Errorf("failed to get signature status: %w", err)
	}
	if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
		return false, nil
	}

	status := statuses.Value[0]
	if status.Err != nil {
		return false, fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err)
	}
	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return true, nil
	}
	return false, nil
}

func (s *SolanaWallet) commitment() rpc.CommitmentType {
	switch strings.ToLower(s.cfg.Commitment) {
	case "finalized":
		return rpc.CommitmentFinalized
	case "confirmed":
		return rpc.CommitmentConfirmed
	case "processed":
		return rpc.CommitmentProcessed
	default:
		return rpc.CommitmentConfirmed
	}
}

// buildInstruction converts one wire instruction into an executable one.
// Instruction data arrives hex encoded.
func buildInstruction(instr relay.SolanaInstruction) (solana.Instruction, error) {
	programID, err := solana.PublicKeyFromBase58(instr.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id: %w", err)
	}

	accounts := make(solana.AccountMetaSlice, 0, len(instr.Keys))
	for _, key := range instr.Keys {
		pubkey, err := solana.PublicKeyFromBase58(key.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("invalid account key %s: %w", key.Pubkey, err)
		}
		accounts = append(accounts, &solana.AccountMeta{
			PublicKey:  pubkey,
			IsSigner:   key.IsSigner,
			IsWritable: key.IsWritable,
		})
	}

	data, err := hex.DecodeString(strings.TrimPrefix(instr.Data, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid instruction data: %w", err)
	}

	return solana.NewInstruction(programID, accounts, data), nil
}
