package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"hirdavat/internal/model"
	"hirdavat/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// maxCreateAttempts bounds identifier regeneration on collisions.
const maxCreateAttempts = 10

// ErrIdentifierSpaceExhausted is returned when every attempt collided.
var ErrIdentifierSpaceExhausted = errors.New("could not allocate a unique order number")

// OrderDraft is a priced order ready to be stored.
type OrderDraft struct {
	Customer    model.Customer
	Invoice     model.Invoice
	Items       []model.LineItem
	Subtotal    decimal.Decimal
	ShippingFee *decimal.Decimal
	Total       decimal.Decimal
}

type ledger struct {
	orders         repository.OrderRepository
	newOrderNumber func() (string, error)
	newToken       func() (string, error)
	now            func() time.Time
	logger         zerolog.Logger
}

// LedgerOption customises a ledger.
type LedgerOption func(*ledger)

// WithOrderNumberGenerator replaces the random order number source.
func WithOrderNumberGenerator(fn func() (string, error)) LedgerOption {
	return func(l *ledger) { l.newOrderNumber = fn }
}

// WithTokenGenerator replaces the random tracking token source.
func WithTokenGenerator(fn func() (string, error)) LedgerOption {
	return func(l *ledger) { l.newToken = fn }
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) LedgerOption {
	return func(l *ledger) { l.now = fn }
}

// NewOrderLedger creates the order ledger.
func NewOrderLedger(orders repository.OrderRepository, logger zerolog.Logger, opts ...LedgerOption) OrderLedger {
	l := &ledger{
		orders:         orders,
		newOrderNumber: RandomOrderNumber,
		newToken:       RandomTrackingToken,
		now:            time.Now,
		logger:         logger.With().Str("service", "ledger").Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var (
	orderNumberMin   = big.NewInt(100000)
	orderNumberRange = big.NewInt(900000)
)

// RandomOrderNumber returns a uniformly random number in 100000-999999.
func RandomOrderNumber() (string, error) {
	n, err := rand.Int(rand.Reader, orderNumberRange)
	if err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}
	return strconv.FormatInt(n.Add(n, orderNumberMin).Int64(), 10), nil
}

// RandomTrackingToken returns 32 random bytes, base64url encoded without padding.
func RandomTrackingToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate tracking token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (l *ledger) Create(ctx context.Context, draft OrderDraft) (*model.Order, error) {
	now := l.now().UTC()
	order := &model.Order{
		ID:            uuid.New(),
		Customer:      draft.Customer,
		Invoice:       draft.Invoice,
		Subtotal:      draft.Subtotal,
		ShippingFee:   draft.ShippingFee,
		TotalAmount:   draft.Total,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusInit,
		InvoiceStatus: model.InvoiceStatusNone,
		RefundStatus:  model.RefundStatusNone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	order.Items = make([]model.LineItem, len(draft.Items))
	for i, item := range draft.Items {
		item.ID = uuid.New()
		item.OrderID = order.ID
		order.Items[i] = item
	}

	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		number, err := l.newOrderNumber()
		if err != nil {
			return nil, err
		}
		token, err := l.newToken()
		if err != nil {
			return nil, err
		}
		order.OrderNumber = number
		order.TrackingToken = token

		err = l.insert(ctx, order)
		if err == nil {
			l.logger.Info().
				Str("order_id", order.ID.String()).
				Str("order_number", order.OrderNumber).
				Int("item_count", len(order.Items)).
				Int("attempt", attempt).
				Msg("order created")
			return order, nil
		}

		if !errors.Is(err, repository.ErrUniqueViolation) {
			return nil, err
		}

		constraint, _ := repository.UniqueConstraint(err)
		l.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("constraint", constraint).
			Int("attempt", attempt).
			Msg("order identifier collision, regenerating")
	}

	l.logger.Error().
		Str("order_id", order.ID.String()).
		Int("attempts", maxCreateAttempts).
		Msg("order identifier space exhausted")
	return nil, fmt.Errorf("failed to create order: %w", ErrIdentifierSpaceExhausted)
}

// insert writes the order and its items in one transaction.
func (l *ledger) insert(ctx context.Context, order *model.Order) (err error) {
	tx, err := l.orders.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				l.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = l.orders.CreateOrder(ctx, tx, order); err != nil {
		return err
	}
	if err = l.orders.CreateOrderItems(ctx, tx, order.Items); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

func (l *ledger) AttachPaymentToken(ctx context.Context, id uuid.UUID, token string) error {
	found, err := l.orders.AttachPaymentToken(ctx, id, token)
	if err != nil {
		return fmt.Errorf("failed to attach payment token: %w", err)
	}
	if !found {
		return model.ErrOrderNotFound
	}
	return nil
}

func (l *ledger) Finalize(ctx context.Context, id uuid.UUID) (*model.Order, bool, error) {
	transitioned, err := l.orders.FinalizeOrder(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to finalize order: %w", err)
	}

	order, err := l.orders.GetByID(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, false, model.ErrOrderNotFound
	}

	if transitioned {
		l.logger.Info().Str("order_number", order.OrderNumber).Msg("order finalized")
	} else {
		l.logger.Info().
			Str("order_number", order.OrderNumber).
			Str("status", string(order.Status)).
			Msg("finalize skipped, order not pending")
	}
	return order, transitioned, nil
}

func (l *ledger) Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.Order, error) {
	transitioned, err := l.orders.CancelOrder(ctx, id, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	order, err := l.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !transitioned {
		if err := cancellationError(order.Status); err != nil {
			return nil, err
		}
	}

	l.logger.Info().Str("order_number", order.OrderNumber).Msg("order cancelled")
	return order, nil
}

// cancellationError explains why an order in status cannot be cancelled.
func cancellationError(status model.OrderStatus) error {
	switch {
	case status == model.OrderStatusCancelled:
		return model.ErrAlreadyCancelled
	case !status.Cancellable():
		return model.ErrNotCancellable
	default:
		return nil
	}
}

func (l *ledger) RecordRefund(ctx context.Context, id uuid.UUID, status model.RefundStatus) error {
	if err := l.orders.SetRefundStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to record refund: %w", err)
	}
	return nil
}

func (l *ledger) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return l.orders.GetByID(ctx, id)
}

func (l *ledger) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	return l.orders.GetByOrderNumber(ctx, orderNumber)
}

func (l *ledger) GetByPaymentToken(ctx context.Context, token string) (*model.Order, error) {
	return l.orders.GetByPaymentToken(ctx, token)
}

func (l *ledger) GetByTrackingToken(ctx context.Context, token string) (*model.Order, error) {
	return l.orders.GetByTrackingToken(ctx, token)
}
