package chains

import "fmt"

// Family represents the two transaction models the bridge understands.
type Family string

const (
	// FamilyAccount covers account-based chains (Ethereum, Base, Optimism,
	// and every other EVM network the aggregator routes through). Their
	// transactions are a destination address, call data, and a value.
	FamilyAccount Family = "ACCOUNT"
	// FamilySolana covers instruction-based chains where a transaction is a
	// list of program invocations over explicit account sets.
	FamilySolana Family = "SOLANA"
)

// Aggregator chain identifiers for the Solana-family networks. Every other
// identifier, known or not, is treated as an account chain.
const (
	SolanaChainID  int64 = 792703809
	EclipseChainID int64 = 9286185
)

// Native asset sentinel addresses. A token whose address equals the sentinel
// for its family is the chain's native asset, not a contract or mint.
const (
	NativeAccountAddress = "0x0000000000000000000000000000000000000000"
	NativeSolanaAddress  = "11111111111111111111111111111111"
)

// FamilyOf classifies a chain identifier. It is total: identifiers outside
// the known Solana-family set, including zero and negative values, map to
// FamilyAccount.
func FamilyOf(chainID int64) Family {
	if chainID == SolanaChainID || chainID == EclipseChainID {
		return FamilySolana
	}
	return FamilyAccount
}

// NativeAddress returns the native asset sentinel for a family.
func NativeAddress(family Family) string {
	if family == FamilySolana {
		return NativeSolanaAddress
	}
	return NativeAccountAddress
}

// IsNative reports whether the address is the native sentinel on the given
// chain.
func IsNative(chainID int64, address string) bool {
	return address == NativeAddress(FamilyOf(chainID))
}

// String converts Family to its string representation.
func (f Family) String() string {
	return string(f)
}

// ExplorerTxURL returns a block-explorer link for a transaction, used when
// pointing the user at a submission the client can no longer track.
func ExplorerTxURL(chainID int64, hash string) string {
	if FamilyOf(chainID) == FamilySolana {
		return fmt.Sprintf("https://solscan.io/tx/%s", hash)
	}
	switch chainID {
	case 1:
		return fmt.Sprintf("https://etherscan.io/tx/%s", hash)
	case 10:
		return fmt.Sprintf("https://optimistic.etherscan.io/tx/%s", hash)
	case 8453:
		return fmt.Sprintf("https://basescan.org/tx/%s", hash)
	case 42161:
		return fmt.Sprintf("https://arbiscan.io/tx/%s", hash)
	default:
		return fmt.Sprintf("https://blockscan.com/tx/%s", hash)
	}
}
