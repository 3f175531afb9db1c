package service

import (
	"context"

	"hirdavat/internal/model"
	"hirdavat/internal/notify"
	"hirdavat/internal/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLedger owns order persistence and the status machine.
type OrderLedger interface {
	// Create stores a new PENDING order with a fresh order number and
	// tracking token, retrying on identifier collisions.
	Create(ctx context.Context, draft OrderDraft) (*model.Order, error)

	// AttachPaymentToken associates the gateway correlation id. Attaching
	// the same token again is a no-op.
	AttachPaymentToken(ctx context.Context, id uuid.UUID, token string) error

	// Finalize marks a PENDING order as paid. For any other status it
	// returns the current order with transitioned=false.
	Finalize(ctx context.Context, id uuid.UUID) (order *model.Order, transitioned bool, err error)

	// Cancel moves a PENDING or PREPARING order to CANCELLED.
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.Order, error)

	// RecordRefund stores the outcome of a refund attempt.
	RecordRefund(ctx context.Context, id uuid.UUID, status model.RefundStatus) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	GetByPaymentToken(ctx context.Context, token string) (*model.Order, error)
	GetByTrackingToken(ctx context.Context, token string) (*model.Order, error)
}

// CheckoutService runs the cart, payment and callback phases of checkout.
type CheckoutService interface {
	// SubmitCart validates and prices a cart and creates a pending order.
	SubmitCart(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error)

	// SubmitPayment starts the 3-D-Secure flow for a pending order.
	SubmitPayment(ctx context.Context, req *model.PaymentRequest) (*model.PaymentResponse, error)

	// CompletePayment settles a gateway callback. It never returns an
	// error; failures are reported in the result.
	CompletePayment(ctx context.Context, payload payment.CallbackPayload) CompletionResult

	// GetInstallments lists installment plans, or none when the gateway
	// cannot answer.
	GetInstallments(ctx context.Context, bin string, amount decimal.Decimal) model.InstallmentResponse
}

// CancellationService handles customer self-service cancellation.
type CancellationService interface {
	Cancel(ctx context.Context, req *model.CancelRequest) (*model.CancelResponse, error)
}

// TrackingService renders the token-authenticated order view.
type TrackingService interface {
	GetByToken(ctx context.Context, token string) (*model.TrackingResponse, error)
}

// Notifier sends customer emails.
type Notifier interface {
	OrderConfirmed(ctx context.Context, order *model.Order) error
	OrderCancelled(ctx context.Context, order *model.Order, c notify.Cancellation) error
}

// Dispatcher runs fire-and-forget tasks.
type Dispatcher interface {
	Dispatch(name string, fn func(ctx context.Context) error)
}
