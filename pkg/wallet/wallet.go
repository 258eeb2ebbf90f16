package wallet

import (
	"context"
	"errors"

	"zecbridge/pkg/relay"
)

// Sentinel errors shared by the wallet implementations. Callers branch on
// these with errors.Is.
var (
	// ErrNotConnected means no wallet is available for the required family.
	ErrNotConnected = errors.New("wallet not connected")
	// ErrSendUnsupported means the wallet can report an address but has no
	// signing capability; callers fall back to a manual transfer.
	ErrSendUnsupported = errors.New("wallet cannot send transactions")
	// ErrTransactionFailed means the chain executed and rejected the
	// transaction. Retrying the same payload will not help.
	ErrTransactionFailed = errors.New("transaction failed on chain")
	// ErrConfirmationUnavailable means the primary confirmation mechanism
	// could not produce a definitive answer. The transaction may still land;
	// callers should fall back to polling the status.
	ErrConfirmationUnavailable = errors.New("confirmation unavailable")
)

// EVM is the capability set an account-chain signer exposes. One instance
// serves all configured networks; SwitchChain repoints it.
type EVM interface {
	// Address returns the signer's hex address.
	Address() string
	// ChainID returns the chain the wallet is currently connected to.
	ChainID() int64
	// SwitchChain reconnects the wallet to another configured network.
	SwitchChain(ctx context.Context, chainID int64) error
	// SendTransaction signs and submits a transaction and returns its hash.
	// Value is the native amount in wei (decimal or 0x-prefixed hex); data is
	// 0x-prefixed call data.
	SendTransaction(ctx context.Context, to, data, value string) (string, error)
	// WaitMined blocks until the transaction is mined. A reverted
	// transaction comes back as ErrTransactionFailed.
	WaitMined(ctx context.Context, hash string) error
}

// Solana is the capability set an instruction-chain signer exposes.
type Solana interface {
	// PublicKey returns the signer's base58 public key.
	PublicKey() string
	// SubmitInstructions builds a transaction from aggregator-supplied
	// instructions, attaches a fresh blockhash and the wallet as fee payer,
	// signs it and submits it. It returns the signature.
	SubmitInstructions(ctx context.Context, instructions []relay.SolanaInstruction) (string, error)
	// ConfirmTransaction confirms a submitted signature against the
	// blockhash it was sent with. nil means confirmed;
	// ErrTransactionFailed means the chain rejected it;
	// ErrConfirmationUnavailable means the mechanism itself failed.
	ConfirmTransaction(ctx context.Context, signature string) error
	// SignatureStatus is a single cheap status check used by the fallback
	// poll. It reports whether the signature has reached confirmation.
	SignatureStatus(ctx context.Context, signature string) (bool, error)
}
