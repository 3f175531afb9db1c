// Package payment talks to the 3-D-Secure card payment gateway: starting a
// payment, verifying the bank callback, refunds and installment lookups.
package payment

import (
	"context"

	"hirdavat/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gateway is the payment provider contract used by the checkout and
// cancellation workflows.
type Gateway interface {
	// StartPayment registers a 3-D-Secure payment and returns the HTML form
	// the browser must auto-submit to reach the issuing bank. Errors wrap
	// model.ErrGatewayUnavailable or model.ErrGatewayRejected.
	StartPayment(ctx context.Context, req StartRequest) (StartResult, error)

	// VerifyCallback authenticates the bank callback and captures the
	// payment. Any doubt about the payload resolves to a failed Outcome.
	VerifyCallback(ctx context.Context, payload CallbackPayload) Outcome

	// Refund cancels a captured payment. It is best effort.
	Refund(ctx context.Context, correlationID, reason string) (RefundOutcome, error)

	// GetInstallmentOptions lists installment plans for a card BIN.
	GetInstallmentOptions(ctx context.Context, bin string, amount decimal.Decimal) (model.InstallmentResponse, error)
}

// Buyer is the identity the gateway needs for fraud screening.
type Buyer struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	IdentityNumber string
	Address        string
	City           string
	ZipCode        string
	IP             string
}

// Card is raw card data. It is forwarded once and never stored.
type Card struct {
	HolderName  string
	Number      string
	ExpireMonth string
	ExpireYear  string
	CVC         string
}

// BasketItem is one priced entry of the gateway basket. Item prices must
// add up to the payment amount.
type BasketItem struct {
	ID       string
	Name     string
	Category string
	Price    decimal.Decimal
}

// StartRequest is everything needed to start a payment for one order.
type StartRequest struct {
	OrderID     uuid.UUID
	OrderNumber string
	Amount      decimal.Decimal
	Buyer       Buyer
	Card        Card
	Items       []BasketItem
}

// StartResult carries the bank redirect form and the gateway payment id.
type StartResult struct {
	HTML          string
	CorrelationID string
}

// Outcome is the verdict on a gateway callback. Err classifies failures
// (model.ErrCallbackVerificationFailed, ErrGatewayRejected, ErrGatewayUnavailable).
type Outcome struct {
	Success       bool
	OrderNumber   string
	CorrelationID string
	Reason        string
	Err           error
}

// RefundOutcome reports what the gateway said about a refund.
type RefundOutcome struct {
	Succeeded bool
	Message   string
}
