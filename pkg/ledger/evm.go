package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// defaultReceiptPoll is the interval between receipt lookups while waiting
// for confirmation.
const defaultReceiptPoll = 2 * time.Second

// EVM implements Ledger over a connected Ethereum-compatible node. Transfers
// are plain native-value transactions signed with the configured key.
type EVM struct {
	client      *ethclient.Client
	chainID     *big.Int
	key         *ecdsa.PrivateKey
	address     common.Address
	receiptPoll time.Duration
}

// Dial connects to an EVM RPC endpoint and prepares a signer from the given
// hex-encoded ECDSA private key. The chain ID is discovered from the node.
func Dial(ctx context.Context, rpcAddr, privateKeyHex string) (*EVM, error) {
	client, err := ethclient.DialContext(ctx, rpcAddr)
	if err != nil {
		zap.L().Error("failed to dial ledger RPC", zap.String("addr", rpcAddr), zap.Error(err))
		return nil, err
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	address, key, err := ParsePrivateKey(privateKeyHex)
	if err != nil {
		client.Close()
		return nil, err
	}

	return &EVM{
		client:      client,
		chainID:     chainID,
		key:         key,
		address:     address,
		receiptPoll: defaultReceiptPoll,
	}, nil
}

// ParsePrivateKey parses a hex-encoded ECDSA private key and returns the
// corresponding address together with the key object.
func ParsePrivateKey(privateKeyHex string) (common.Address, *ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKey, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return common.Address{}, nil, errors.New("failed to derive public key")
	}
	return crypto.PubkeyToAddress(*publicKey), key, nil
}

// Address returns the signer's wallet address.
func (e *EVM) Address() string {
	return e.address.Hex()
}

// Close releases the underlying RPC connection.
func (e *EVM) Close() {
	e.client.Close()
}

// BalanceOf returns the latest confirmed native balance of address in display
// units.
func (e *EVM) BalanceOf(ctx context.Context, address string) (decimal.Decimal, error) {
	wei, err := e.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read balance: %w", err)
	}
	return FromBaseUnits(wei, NativeDecimals), nil
}

// SubmitTransfer signs and broadcasts a native-value transfer from the
// configured wallet and returns the transaction hash. from must match the
// signer's address; the ledger cannot move other wallets' funds.
func (e *EVM) SubmitTransfer(ctx context.Context, from, to string, amount decimal.Decimal) (string, error) {
	if common.HexToAddress(from) != e.address {
		return "", fmt.Errorf("transfer sender %s does not match signer %s", from, e.address.Hex())
	}

	value, err := ToBaseUnits(amount, NativeDecimals)
	if err != nil {
		return "", err
	}

	nonce, err := e.client.PendingNonceAt(ctx, e.address)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := e.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get gas price: %w", err)
	}

	recipient := common.HexToAddress(to)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &recipient,
		Value:    value,
		Gas:      21000, // standard native transfer
		GasPrice: gasPrice,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(e.chainID), e.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign transfer: %w", err)
	}

	if err := e.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("failed to broadcast transfer: %w", err)
	}

	hash := signed.Hash().Hex()
	zap.L().Debug("transfer broadcast",
		zap.String("hash", hash),
		zap.String("to", recipient.Hex()),
		zap.String("amount", amount.String()))
	return hash, nil
}

// ConfirmTransfer polls for the transaction receipt until the transfer is
// mined or ctx expires. A mined-but-reverted transfer returns an error; a
// context error means the outcome is unknown.
func (e *EVM) ConfirmTransfer(ctx context.Context, settlementID string) error {
	hash := common.HexToHash(settlementID)
	ticker := time.NewTicker(e.receiptPoll)
	defer ticker.Stop()

	for {
		receipt, err := e.client.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return fmt.Errorf("transfer %s reverted on chain", settlementID)
			}
			return nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return fmt.Errorf("failed to query receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
