package model

import (
	"time"

	"github.com/google/uuid"
)

// ReturnWindow is how long after delivery a return may be requested.
const ReturnWindow = 14 * 24 * time.Hour

// ReturnStatus is the state of a return request.
type ReturnStatus string

const (
	ReturnStatusAwaitingApproval         ReturnStatus = "AWAITING_APPROVAL"
	ReturnStatusAwaitingCustomerShipment ReturnStatus = "AWAITING_CUSTOMER_SHIPMENT"
	ReturnStatusCompleted                ReturnStatus = "COMPLETED"
	ReturnStatusRejected                 ReturnStatus = "REJECTED"
)

// ReturnRequest is a customer's request to send back a delivered order.
// It references its order by id only.
type ReturnRequest struct {
	ID        uuid.UUID    `json:"id"`
	OrderID   uuid.UUID    `json:"orderId"`
	Reason    string       `json:"reason"`
	Status    ReturnStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
}

// CheckReturnEligibility returns nil when the order is delivered and still
// inside the return window at now.
func CheckReturnEligibility(order *Order, now time.Time) error {
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Status != OrderStatusDelivered || order.DeliveredAt == nil {
		return ErrReturnNotEligible.WithMessage("Only delivered orders can be returned")
	}
	if now.Sub(*order.DeliveredAt) > ReturnWindow {
		return ErrReturnNotEligible.WithMessage("The 14 day return period has ended")
	}
	return nil
}
