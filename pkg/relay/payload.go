package relay

import "encoding/json"

// PayloadKind identifies which transaction model a step item's data encodes.
type PayloadKind int

const (
	// KindUnknown marks payloads whose shape matches neither model. Callers
	// skip these rather than fail the whole swap.
	KindUnknown PayloadKind = iota
	// KindAccount is an account-chain transaction: to, data, value.
	KindAccount
	// KindSolana is an instruction-list transaction.
	KindSolana
)

// AccountTx is an account-chain (EVM-style) transaction payload.
type AccountTx struct {
	ChainID int64  `json:"chainId"`
	To      string `json:"to"`
	Data    string `json:"data"`
	Value   string `json:"value"`
}

// InstructionKey is one account an instruction touches.
type InstructionKey struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

// SolanaInstruction is one program invocation. Data is hex encoded on the
// wire and must be byte-decoded before building the transaction.
type SolanaInstruction struct {
	ProgramID string           `json:"programId"`
	Keys      []InstructionKey `json:"keys"`
	Data      string           `json:"data"`
}

// SolanaTx is an instruction-list transaction payload.
type SolanaTx struct {
	Instructions []SolanaInstruction `json:"instructions"`
}

// TxPayload is the explicit form of a step item's data. Exactly one of
// Account and Solana is set when Kind is not KindUnknown.
type TxPayload struct {
	Kind    PayloadKind
	Account *AccountTx
	Solana  *SolanaTx
}

// Payload classifies the item's data by structural shape. The wire format
// carries no type tag: to+data fields mean an account transaction, an
// instructions list means a Solana transaction. Anything else, including
// malformed JSON, comes back as KindUnknown.
func (it StepItem) Payload() TxPayload {
	var probe struct {
		ChainID      int64               `json:"chainId"`
		To           *string             `json:"to"`
		Data         *string             `json:"data"`
		Value        string              `json:"value"`
		Instructions []SolanaInstruction `json:"instructions"`
	}
	if err := json.Unmarshal(it.Data, &probe); err != nil {
		return TxPayload{Kind: KindUnknown}
	}

	if len(probe.Instructions) > 0 {
		return TxPayload{
			Kind:   KindSolana,
			Solana: &SolanaTx{Instructions: probe.Instructions},
		}
	}

	if probe.To != nil && probe.Data != nil {
		return TxPayload{
			Kind: KindAccount,
			Account: &AccountTx{
				ChainID: probe.ChainID,
				To:      *probe.To,
				Data:    *probe.Data,
				Value:   probe.Value,
			},
		}
	}

	return TxPayload{Kind: KindUnknown}
}
