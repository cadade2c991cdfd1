package domain

import "context"

// PaymentVerification is the outcome of checking one claimed payment.
// Invalid payments (unknown transaction, reverted, wrong recipient) are
// reported through Valid and Reason, not through an error; errors are
// reserved for transport failures where validity is unknown.
type PaymentVerification struct {
	Valid     bool
	AmountUSD float64
	Reason    string
}

// PaymentVerifier checks a claimed payment transaction on one rail.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, txID string) (PaymentVerification, error)
}
