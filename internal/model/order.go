package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusPreparing       OrderStatus = "PREPARING"
	OrderStatusShipped         OrderStatus = "SHIPPED"
	OrderStatusDelivered       OrderStatus = "DELIVERED"
	OrderStatusCompleted       OrderStatus = "COMPLETED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
	OrderStatusReturnRequested OrderStatus = "RETURN_REQUESTED"
	OrderStatusReturned        OrderStatus = "RETURNED"
)

// PaymentStatus is the settlement state of the order's card payment.
type PaymentStatus string

const (
	PaymentStatusInit    PaymentStatus = "INIT"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailure PaymentStatus = "FAILURE"
)

// InvoiceStatus tracks the e-invoice lifecycle handled by the back office.
type InvoiceStatus string

const (
	InvoiceStatusNone      InvoiceStatus = "NONE"
	InvoiceStatusNotIssued InvoiceStatus = "NOT_ISSUED"
	InvoiceStatusIssued    InvoiceStatus = "ISSUED"
)

// RefundStatus records the outcome of the refund attempted on cancellation.
// It is kept apart from PaymentStatus, which never reverts from SUCCESS.
type RefundStatus string

const (
	RefundStatusNone      RefundStatus = "NONE"
	RefundStatusRequested RefundStatus = "REQUESTED"
	RefundStatusFailed    RefundStatus = "FAILED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:         {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:       {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:         {OrderStatusDelivered},
	OrderStatusDelivered:       {OrderStatusCompleted, OrderStatusReturnRequested},
	OrderStatusReturnRequested: {OrderStatusReturned},
}

// CanTransitionTo reports whether the state machine allows moving from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// Cancellable reports whether a customer may still cancel the order.
func (s OrderStatus) Cancellable() bool {
	return s.CanTransitionTo(OrderStatusCancelled)
}

// Customer is the contact and address snapshot captured at checkout.
type Customer struct {
	FullName  string `json:"fullName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	District  string `json:"district"`
	ZipCode   string `json:"zipCode"`
}

// Invoice holds the corporate billing fields. They are either all set or
// IsCorporate is false.
type Invoice struct {
	IsCorporate bool   `json:"isCorporate"`
	CompanyName string `json:"companyName,omitempty"`
	TaxOffice   string `json:"taxOffice,omitempty"`
	TaxNumber   string `json:"taxNumber,omitempty"`
}

// Order represents a customer order.
type Order struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	OrderNumber   string           `json:"orderNumber" db:"order_number"`
	TrackingToken string           `json:"-" db:"tracking_token"`
	PaymentToken  *string          `json:"-" db:"payment_token"`
	Customer      Customer         `json:"customer"`
	Invoice       Invoice          `json:"invoice"`
	Items         []LineItem       `json:"items"`
	Subtotal      decimal.Decimal  `json:"subtotal" db:"subtotal"`
	ShippingFee   *decimal.Decimal `json:"shippingFee" db:"shipping_fee"`
	TotalAmount   decimal.Decimal  `json:"totalAmount" db:"total_amount"`
	Status        OrderStatus      `json:"status" db:"status"`
	PaymentStatus PaymentStatus    `json:"paymentStatus" db:"payment_status"`
	InvoiceStatus InvoiceStatus    `json:"invoiceStatus" db:"invoice_status"`
	RefundStatus  RefundStatus     `json:"refundStatus" db:"refund_status"`
	CancelReason  *string          `json:"cancelReason,omitempty" db:"cancel_reason"`
	DeliveredAt   *time.Time       `json:"deliveredAt,omitempty" db:"delivered_at"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time        `json:"updatedAt" db:"updated_at"`
}

// LineItem is an immutable snapshot of a product at order-creation time.
type LineItem struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID string          `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Quantity  int             `json:"quantity" db:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal" db:"line_total"`
}

// HasPaymentToken reports whether a gateway correlation id is attached.
func (o *Order) HasPaymentToken() bool {
	return o.PaymentToken != nil && *o.PaymentToken != ""
}
