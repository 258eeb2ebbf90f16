package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"zecbridge/config"
)

// EVMWallet signs and submits transactions on account chains. A single
// private key serves every configured network; SwitchChain redials the
// matching RPC endpoint.
type EVMWallet struct {
	cfg        config.EVMConfig
	privateKey *ecdsa.PrivateKey
	address    common.Address
	log        *zap.Logger

	mu      sync.Mutex
	chainID int64
	network config.EVMNetwork
	client  *ethclient.Client
}

// NewEVMWallet creates a wallet connected to the network configured for
// chainID.
func NewEVMWallet(cfg config.EVMConfig, chainID int64, log *zap.Logger) (*EVMWallet, error) {
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("private key not configured: %w", ErrNotConnected)
	}
	if log == nil {
		log = zap.NewNop()
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to get public key")
	}

	w := &EVMWallet{
		cfg:        cfg,
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(*publicKey),
		log:        log,
	}
	if err := w.SwitchChain(context.Background(), chainID); err != nil {
		return nil, err
	}
	return w, nil
}

// Address returns the signer's hex address.
func (w *EVMWallet) Address() string {
	return w.address.Hex()
}

// ChainID returns the currently connected chain.
func (w *EVMWallet) ChainID() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chainID
}

// SwitchChain reconnects the wallet to the network configured for chainID.
func (w *EVMWallet) SwitchChain(ctx context.Context, chainID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.client != nil && w.chainID == chainID {
		return nil
	}

	var network config.EVMNetwork
	found := false
	for _, n := range w.cfg.Networks {
		if n.ChainID == chainID {
			network = n
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("chain %d not configured", chainID)
	}
	if network.RPCUrl == "" {
		return fmt.Errorf("RPC URL not configured for chain %d", chainID)
	}

	client, err := ethclient.Dial(network.RPCUrl)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	if w.client != nil {
		w.client.Close()
	}
	w.client = client
	w.network = network
	w.chainID = chainID
	w.log.Debug("switched chain", zap.Int64("chainId", chainID))
	return nil
}

// SendTransaction signs and submits a transaction, returning its hash.
func (w *EVMWallet) SendTransaction(ctx context.Context, to, data, value string) (string, error) {
	w.mu.Lock()
	client := w.client
	network := w.network
	chainID := w.chainID
	w.mu.Unlock()

	if client == nil {
		return "", ErrNotConnected
	}
	if !common.IsHexAddress(to) {
		return "", fmt.Errorf("invalid recipient address: %s", to)
	}
	toAddress := common.HexToAddress(to)

	amount, err := parseWei(value)
	if err != nil {
		return "", fmt.Errorf("invalid value: %w", err)
	}
	callData := common.FromHex(data)

	nonce, err := client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get gas price: %w", err)
	}

	gasLimit := uint64(21000)
	if network.GasLimit != nil {
		gasLimit = *network.GasLimit
	} else if len(callData) > 0 {
		msg := ethereum.CallMsg{
			From:  w.address,
			To:    &toAddress,
			Value: amount,
			Data:  callData,
		}
		estimated, err := client.EstimateGas(ctx, msg)
		if err != nil {
			return "", fmt.Errorf("failed to estimate gas: %w", err)
		}
		gasLimit = estimated * 120 / 100 // Add 20% buffer
	}

	tx := types.NewTransaction(nonce, toAddress, amount, gasLimit, gasPrice, callData)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(big.NewInt(chainID)), w.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	hash := signedTx.Hash().Hex()
	w.log.Info("transaction submitted",
		zap.Int64("chainId", chainID),
		zap.String("hash", hash))
	return hash, nil
}

// WaitMined blocks until the transaction is mined, polling for the receipt.
func (w *EVMWallet) WaitMined(ctx context.Context, hash string) error {
	w.mu.Lock()
	client := w.client
	w.mu.Unlock()
	if client == nil {
		return ErrNotConnected
	}

	txHash := common.HexToHash(hash)
	for {
		receipt, err := client.TransactionReceipt(ctx, txHash)
		if err == nil {
			if receipt.Status == types.ReceiptStatusFailed {
				return fmt.Errorf("%w: %s reverted", ErrTransactionFailed, hash)
			}
			return nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return fmt.Errorf("failed to get receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

// parseWei accepts a decimal or 0x-prefixed hex wei amount. Empty means
// zero.
func parseWei(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	base := 10
	digits := value
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		base = 16
		digits = value[2:]
	}
	amount, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid amount format: %s", value)
	}
	return amount, nil
}
