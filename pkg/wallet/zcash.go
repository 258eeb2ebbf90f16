package wallet

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"zecbridge/config"
)

// ZcashWallet wraps an optional external zcash-cli signer. Without one the
// wallet can still participate in trades through manual transfers: Send
// reports ErrSendUnsupported and callers show the deposit address instead.
type ZcashWallet struct {
	cfg config.ZcashConfig
}

// NewZcashWallet creates the wallet. It does not probe the signer; call
// Connect for that.
func NewZcashWallet(cfg config.ZcashConfig) *ZcashWallet {
	return &ZcashWallet{cfg: cfg}
}

// CanSend reports whether a signer command is configured at all.
func (z *ZcashWallet) CanSend() bool {
	return z.cfg.CLIPath != ""
}

// Connect probes the external signer and verifies it answers RPC calls.
func (z *ZcashWallet) Connect() error {
	if !z.CanSend() {
		return ErrSendUnsupported
	}

	args := append(z.baseArgs(), "getblockchaininfo")
	output, err := exec.Command(z.cfg.CLIPath, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("zcash-cli not accessible: %w\nOutput: %s", err, string(output))
	}

	var info map[string]interface{}
	if err := json.Unmarshal(output, &info); err != nil {
		return fmt.Errorf("invalid zcash-cli response: %w", err)
	}
	return nil
}

// Address returns the wallet's first address.
func (z *ZcashWallet) Address() (string, error) {
	if !z.CanSend() {
		return "", ErrSendUnsupported
	}

	args := append(z.baseArgs(), "listaddresses")
	output, err := exec.Command(z.cfg.CLIPath, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("zcash-cli listaddresses failed: %w\nOutput: %s", err, string(output))
	}

	var addresses []string
	if err := json.Unmarshal(output, &addresses); err != nil {
		return "", fmt.Errorf("failed to parse addresses: %w", err)
	}
	if len(addresses) == 0 {
		return "", fmt.Errorf("wallet has no addresses")
	}
	return addresses[0], nil
}

// Send transfers ZEC to an address and returns the transaction id. Without a
// configured signer it returns ErrSendUnsupported.
func (z *ZcashWallet) Send(address, amount string) (string, error) {
	if !z.CanSend() {
		return "", ErrSendUnsupported
	}

	args := append(z.baseArgs(), "sendtoaddress", address, amount)
	output, err := exec.Command(z.cfg.CLIPath, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("zcash-cli sendtoaddress failed: %w\nOutput: %s", err, string(output))
	}

	txid := strings.TrimSpace(string(output))
	if txid == "" {
		return "", fmt.Errorf("empty transaction ID returned")
	}
	return txid, nil
}

func (z *ZcashWallet) baseArgs() []string {
	args := make([]string, 0, len(z.cfg.CLIArgs))
	return append(args, z.cfg.CLIArgs...)
}
