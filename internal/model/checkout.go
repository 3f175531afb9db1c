package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutRequest represents the request payload for submitting a cart.
type CheckoutRequest struct {
	Items       []CartItemRequest   `json:"items" validate:"required,min=1,dive"`
	GuestInfo   GuestInfo           `json:"guestInfo"`
	InvoiceInfo *InvoiceInfoRequest `json:"invoiceInfo,omitempty" validate:"omitempty"`
}

// CartItemRequest represents a single item in a checkout request.
type CartItemRequest struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// GuestInfo is the customer contact and delivery address.
type GuestInfo struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,trmobile"`
	Address  string `json:"address" validate:"required,min=10"`
	City     string `json:"city" validate:"required,min=2"`
	District string `json:"district" validate:"required,min=2"`
	ZipCode  string `json:"zipCode" validate:"required,min=3"`
}

// InvoiceInfoRequest carries optional corporate billing details; when
// IsCorporate is set the remaining fields are all required.
type InvoiceInfoRequest struct {
	IsCorporate bool   `json:"isCorporate"`
	CompanyName string `json:"companyName,omitempty"`
	TaxOffice   string `json:"taxOffice,omitempty"`
	TaxNumber   string `json:"taxNumber,omitempty"`
}

// CheckoutResponse is returned once a pending order exists.
type CheckoutResponse struct {
	Status      string          `json:"status"`
	OrderID     uuid.UUID       `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	Total       decimal.Decimal `json:"total"`
}

// CheckoutStatusPendingPayment is the checkout result status.
const CheckoutStatusPendingPayment = "pending_payment"

// PaymentRequest represents the card submission for a pending order.
type PaymentRequest struct {
	OrderID   string    `json:"orderId" validate:"required,uuid"`
	CardInfo  CardInfo  `json:"cardInfo"`
	BuyerInfo BuyerInfo `json:"buyerInfo"`
}

// CardInfo is the raw card data. It is forwarded to the gateway and never stored.
type CardInfo struct {
	CardHolderName string `json:"cardHolderName,omitempty" validate:"omitempty,min=2"`
	CardNumber     string `json:"cardNumber" validate:"required,numeric,min=12,max=19"`
	CardExpMonth   string `json:"cardExpMonth" validate:"required,numeric,len=2"`
	CardExpYear    string `json:"cardExpYear" validate:"required,numeric,min=2,max=4"`
	CardCvc        string `json:"cardCvc" validate:"required,numeric,min=3,max=4"`
}

// BuyerInfo is the buyer identity the gateway needs for fraud checks.
type BuyerInfo struct {
	IdentityNumber string `json:"identityNumber,omitempty" validate:"omitempty,numeric,len=11"`
	IP             string `json:"-"`
}

// PaymentResponse is the payment initiation result.
type PaymentResponse struct {
	Status       string    `json:"status"`
	UcdHTML      string    `json:"ucdHtml,omitempty"`
	OrderID      uuid.UUID `json:"orderId"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// CancelRequest is the customer self-service cancellation payload.
type CancelRequest struct {
	Token  string `json:"token" validate:"required,min=16"`
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// CancelResponse reports a completed cancellation.
type CancelResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Response status values shared by the customer-facing endpoints.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// TrackingResponse is the token-authenticated order view. The street
// address is withheld; only district and city are shown.
type TrackingResponse struct {
	OrderNumber    string           `json:"orderNumber"`
	Status         OrderStatus      `json:"status"`
	PaymentStatus  PaymentStatus    `json:"paymentStatus"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
	DeliveredAt    *time.Time       `json:"deliveredAt,omitempty"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	ShippingFee    *decimal.Decimal `json:"shippingFee"`
	Total          decimal.Decimal  `json:"total"`
	Items          []TrackingItem   `json:"items"`
	Address        TrackingAddress  `json:"address"`
	Cancellable    bool             `json:"cancellable"`
	ReturnEligible bool             `json:"returnEligible"`
}

// TrackingItem is a line of the tracking view.
type TrackingItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// TrackingAddress is the redacted delivery address.
type TrackingAddress struct {
	District string `json:"district"`
	City     string `json:"city"`
}

// Installment is one installment plan offered for a card.
type Installment struct {
	Count        int             `json:"installmentCount"`
	InstallPrice decimal.Decimal `json:"installmentPrice"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}

// InstallmentResponse lists the plans available for a card BIN.
type InstallmentResponse struct {
	BankName     string        `json:"bankName,omitempty"`
	Installments []Installment `json:"installments"`
}
