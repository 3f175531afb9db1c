package service

import (
	"context"
	"fmt"
	"time"

	"hirdavat/internal/model"

	"github.com/rs/zerolog"
)

type trackingService struct {
	ledger OrderLedger
	now    func() time.Time
	logger zerolog.Logger
}

// NewTrackingService creates the tracking view service.
func NewTrackingService(ledger OrderLedger, logger zerolog.Logger) TrackingService {
	return &trackingService{
		ledger: ledger,
		now:    time.Now,
		logger: logger.With().Str("service", "tracking").Logger(),
	}
}

// GetByToken returns the order view for a tracking token. The street
// address is never included.
func (s *trackingService) GetByToken(ctx context.Context, token string) (*model.TrackingResponse, error) {
	if len(token) < 16 {
		return nil, model.ErrOrderNotFound
	}

	order, err := s.ledger.GetByTrackingToken(ctx, token)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load order by tracking token")
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	items := make([]model.TrackingItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = model.TrackingItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
	}

	return &model.TrackingResponse{
		OrderNumber:    order.OrderNumber,
		Status:         order.Status,
		PaymentStatus:  order.PaymentStatus,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
		DeliveredAt:    order.DeliveredAt,
		Subtotal:       order.Subtotal,
		ShippingFee:    order.ShippingFee,
		Total:          order.TotalAmount,
		Items:          items,
		Address:        model.TrackingAddress{District: order.Customer.District, City: order.Customer.City},
		Cancellable:    order.Status.Cancellable(),
		ReturnEligible: model.CheckReturnEligibility(order, s.now()) == nil,
	}, nil
}
