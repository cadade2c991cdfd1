// Package evm verifies USDC payments on an EVM chain by inspecting
// transaction receipts.
package evm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/couchcryptid/conference-travel-agent/internal/domain"
)

const usdcDecimals = 6

// Transfer(address indexed from, address indexed to, uint256 value)
var sigTransfer = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// ReceiptFetcher is the part of an EVM RPC client the verifier needs.
type ReceiptFetcher interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Verifier implements domain.PaymentVerifier for ERC-20 USDC transfers.
type Verifier struct {
	client    ReceiptFetcher
	token     common.Address
	recipient common.Address
	logger    *slog.Logger
}

// NewVerifier dials the RPC endpoint and returns a verifier for transfers of
// the given token contract to the recipient address.
func NewVerifier(ctx context.Context, rpcURL, tokenContract, recipient string, logger *slog.Logger) (*Verifier, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial evm rpc: %w", err)
	}

	return &Verifier{
		client:    client,
		token:     common.HexToAddress(tokenContract),
		recipient: common.HexToAddress(recipient),
		logger:    logger,
	}, nil
}

// VerifyPayment checks that txID is a confirmed transaction carrying at least
// one USDC Transfer to the agent's address and sums those transfers. A
// transaction that is missing, reverted, or pays someone else is invalid, not
// an error; errors are reserved for RPC failures.
func (v *Verifier) VerifyPayment(ctx context.Context, txID string) (domain.PaymentVerification, error) {
	receipt, err := v.client.TransactionReceipt(ctx, common.HexToHash(txID))
	if errors.Is(err, ethereum.NotFound) {
		return domain.PaymentVerification{Reason: "transaction not found"}, nil
	}
	if err != nil {
		return domain.PaymentVerification{}, fmt.Errorf("fetch receipt: %w", err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return domain.PaymentVerification{Reason: "transaction reverted"}, nil
	}

	total := new(big.Int)
	for _, l := range receipt.Logs {
		if l.Address != v.token {
			continue
		}
		// Transfer carries two indexed addresses plus the signature topic.
		if len(l.Topics) != 3 || l.Topics[0] != sigTransfer {
			continue
		}
		if common.BytesToAddress(l.Topics[2].Bytes()) != v.recipient {
			continue
		}
		if len(l.Data) < 32 {
			continue
		}
		total.Add(total, new(big.Int).SetBytes(l.Data[:32]))
	}

	if total.Sign() == 0 {
		return domain.PaymentVerification{Reason: "no transfer to agent address"}, nil
	}

	amount := amountToFloat(total, usdcDecimals)
	v.logger.Debug("evm payment verified", "tx", txID, "amount_usd", amount)
	return domain.PaymentVerification{Valid: true, AmountUSD: amount}, nil
}

func amountToFloat(b *big.Int, decimals int) float64 {
	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	var f, divF big.Float
	f.SetInt(b)
	divF.SetInt(div)
	f.Quo(&f, &divF)
	q, _ := f.Float64()
	return q
}
