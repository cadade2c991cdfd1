// Package solana verifies USDC payments on Solana through the JSON-RPC API.
package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/conference-travel-agent/internal/adapter/httpclient"
	"github.com/couchcryptid/conference-travel-agent/internal/domain"
)

// Verifier implements domain.PaymentVerifier for SPL token transfers. It
// reads the finalized transaction and credits the balance gained by the
// recipient's token accounts for the configured mint.
type Verifier struct {
	rpcURL     string
	mint       string
	recipient  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewVerifier creates a Solana payment verifier against the given RPC
// endpoint.
func NewVerifier(rpcURL, mint, recipient string, timeout time.Duration, logger *slog.Logger) *Verifier {
	return &Verifier{
		rpcURL:     rpcURL,
		mint:       mint,
		recipient:  recipient,
		httpClient: httpclient.New(timeout, httpclient.DefaultRetryPolicy(), logger),
		logger:     logger,
	}
}

// VerifyPayment fetches txID with getTransaction and checks how much of the
// configured mint the recipient gained. A signature that is unknown, failed,
// or paying someone else is invalid, not an error; errors are reserved for
// RPC failures.
func (v *Verifier) VerifyPayment(ctx context.Context, txID string) (domain.PaymentVerification, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "getTransaction",
		Params: []any{txID, map[string]any{
			"encoding":                       "jsonParsed",
			"commitment":                     "finalized",
			"maxSupportedTransactionVersion": 0,
		}},
	})
	if err != nil {
		return domain.PaymentVerification{}, fmt.Errorf("marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return domain.PaymentVerification{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return domain.PaymentVerification{}, fmt.Errorf("rpc request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.PaymentVerification{}, fmt.Errorf("solana rpc error: status %d: %s", resp.StatusCode, body)
	}

	var rpcResp txResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return domain.PaymentVerification{}, fmt.Errorf("decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return domain.PaymentVerification{}, fmt.Errorf("solana rpc error: %d %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if rpcResp.Result == nil {
		return domain.PaymentVerification{Reason: "transaction not found"}, nil
	}
	if rpcResp.Result.Meta.Err != nil {
		return domain.PaymentVerification{Reason: "transaction failed"}, nil
	}

	received := v.balanceFor(rpcResp.Result.Meta.PostTokenBalances) -
		v.balanceFor(rpcResp.Result.Meta.PreTokenBalances)
	if received <= 0 {
		return domain.PaymentVerification{Reason: "no transfer to agent address"}, nil
	}

	v.logger.Debug("solana payment verified", "tx", txID, "amount_usd", received)
	return domain.PaymentVerification{Valid: true, AmountUSD: received}, nil
}

func (v *Verifier) balanceFor(balances []tokenBalance) float64 {
	total := 0.0
	for _, b := range balances {
		if b.Owner == v.recipient && b.Mint == v.mint {
			total += b.UITokenAmount.UIAmount
		}
	}
	return total
}

// Solana JSON-RPC request and response types.

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type txResponse struct {
	Result *txResult `json:"result"`
	Error  *rpcError `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type txResult struct {
	Meta txMeta `json:"meta"`
}

type txMeta struct {
	Err               any            `json:"err"`
	PreTokenBalances  []tokenBalance `json:"preTokenBalances"`
	PostTokenBalances []tokenBalance `json:"postTokenBalances"`
}

type tokenBalance struct {
	Mint          string        `json:"mint"`
	Owner         string        `json:"owner"`
	UITokenAmount uiTokenAmount `json:"uiTokenAmount"`
}

type uiTokenAmount struct {
	UIAmount float64 `json:"uiAmount"`
}
