package repository

import (
	"context"
	"errors"

	"hirdavat/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// ErrUniqueViolation is wrapped by write errors caused by a unique index.
// Use UniqueConstraint to learn which one.
var ErrUniqueViolation = errors.New("unique constraint violation")

// Unique index names from the schema.
const (
	ConstraintOrderNumber   = "uq_orders_order_number"
	ConstraintTrackingToken = "uq_orders_tracking_token"
	ConstraintPaymentToken  = "uq_orders_payment_token"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetByIDs retrieves multiple products by their IDs. Unknown ids are
	// omitted from the result.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// Upsert inserts or replaces catalogue rows.
	Upsert(ctx context.Context, products []model.Product) error
}

// OrderRepository defines the interface for order data access operations.
// Single-order lookups return (nil, nil) when nothing matches.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the line item snapshots within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.LineItem) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	GetByPaymentToken(ctx context.Context, token string) (*model.Order, error)
	GetByTrackingToken(ctx context.Context, token string) (*model.Order, error)

	// AttachPaymentToken stores the gateway correlation id. It reports
	// false when the order does not exist.
	AttachPaymentToken(ctx context.Context, id uuid.UUID, token string) (bool, error)

	// FinalizeOrder moves a PENDING order to PREPARING with payment SUCCESS
	// and invoice NOT_ISSUED in one conditional statement. It reports
	// whether this call performed the transition.
	FinalizeOrder(ctx context.Context, id uuid.UUID) (bool, error)

	// CancelOrder moves a PENDING or PREPARING order to CANCELLED and
	// reports whether this call performed the transition.
	CancelOrder(ctx context.Context, id uuid.UUID, reason string) (bool, error)

	// SetRefundStatus records the refund outcome of a cancelled order.
	SetRefundStatus(ctx context.Context, id uuid.UUID, status model.RefundStatus) error
}

// SettingsRepository reads and writes the admin-editable shipping settings.
type SettingsRepository interface {
	GetShippingTiers(ctx context.Context) ([]model.PriceTier, error)
	GetFreeShippingThreshold(ctx context.Context) (decimal.Decimal, error)
	ReplaceShippingTiers(ctx context.Context, tiers []model.PriceTier) error
	SetFreeShippingThreshold(ctx context.Context, threshold decimal.Decimal) error
}

// findOne runs a single-row query and scans it with scan. A missing row
// yields (nil, nil).
func findOne[T any](ctx context.Context, q Querier, scan func(pgx.Row) (T, error), sql string, args ...any) (*T, error) {
	v, err := scan(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// findMany runs a query and scans every row with scan.
func findMany[T any](ctx context.Context, q Querier, scan func(pgx.Row) (T, error), sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UniqueConstraint returns the name of the violated unique index, if err
// was caused by one.
func UniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	return "", false
}

type uniqueViolationError struct {
	constraint string
	err        error
}

func (e *uniqueViolationError) Error() string {
	return "unique constraint violation on " + e.constraint + ": " + e.err.Error()
}

func (e *uniqueViolationError) Is(target error) bool { return target == ErrUniqueViolation }

func (e *uniqueViolationError) Unwrap() error { return e.err }
