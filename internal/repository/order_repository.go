package repository

import (
	"context"
	"fmt"

	"hirdavat/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `
	id, order_number, tracking_token, payment_token,
	full_name, first_name, last_name, email, phone, address, city, district, zip_code,
	is_corporate, COALESCE(company_name, ''), COALESCE(tax_office, ''), COALESCE(tax_number, ''),
	subtotal, shipping_fee, total_amount,
	status, payment_status, invoice_status, refund_status,
	cancel_reason, delivered_at, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction. A clash
// on order number or tracking token is returned wrapping ErrUniqueViolation.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, order_number, tracking_token, payment_token,
			full_name, first_name, last_name, email, phone, address, city, district, zip_code,
			is_corporate, company_name, tax_office, tax_number,
			subtotal, shipping_fee, total_amount,
			status, payment_status, invoice_status, refund_status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17,
			$18, $19, $20,
			$21, $22, $23, $24,
			$25, $26
		)
	`

	c := order.Customer
	inv := order.Invoice
	_, err := tx.Exec(ctx, query,
		order.ID, order.OrderNumber, order.TrackingToken, order.PaymentToken,
		c.FullName, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.City, c.District, c.ZipCode,
		inv.IsCorporate, nullIfEmpty(inv.CompanyName), nullIfEmpty(inv.TaxOffice), nullIfEmpty(inv.TaxNumber),
		order.Subtotal, order.ShippingFee, order.TotalAmount,
		order.Status, order.PaymentStatus, order.InvoiceStatus, order.RefundStatus,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := UniqueConstraint(err); ok {
			r.logger.Debug().
				Str("order_id", order.ID.String()).
				Str("constraint", constraint).
				Msg("order identifier collision")
			return &uniqueViolationError{constraint: constraint, err: err}
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts the line item snapshots within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, name, unit_price, quantity, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.Name, item.UnitPrice, item.Quantity, item.LineTotal)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.getBy(ctx, "id", id)
}

// GetByOrderNumber retrieves an order by its human-facing number.
func (r *orderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	return r.getBy(ctx, "order_number", orderNumber)
}

// GetByPaymentToken retrieves an order by its gateway correlation id.
func (r *orderRepository) GetByPaymentToken(ctx context.Context, token string) (*model.Order, error) {
	return r.getBy(ctx, "payment_token", token)
}

// GetByTrackingToken retrieves an order by its customer tracking token.
func (r *orderRepository) GetByTrackingToken(ctx context.Context, token string) (*model.Order, error) {
	return r.getBy(ctx, "tracking_token", token)
}

// getBy looks an order up on one of its uniquely indexed columns. column is
// always a literal from this file.
func (r *orderRepository) getBy(ctx context.Context, column string, key any) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + column + ` = $1`

	order, err := findOne(ctx, r.pool, scanOrder, query, key)
	if err != nil {
		r.logger.Error().Err(err).Str("lookup", column).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	if order == nil {
		r.logger.Debug().Str("lookup", column).Msg("order not found")
		return nil, nil
	}

	items, err := r.getItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) getItems(ctx context.Context, orderID uuid.UUID) ([]model.LineItem, error) {
	query := `
		SELECT id, order_id, product_id, name, unit_price, quantity, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY name, id
	`

	items, err := findMany(ctx, r.pool, scanLineItem, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	if items == nil {
		items = []model.LineItem{}
	}
	return items, nil
}

// AttachPaymentToken stores the gateway correlation id. Writing the same
// token again leaves the row untouched.
func (r *orderRepository) AttachPaymentToken(ctx context.Context, id uuid.UUID, token string) (bool, error) {
	query := `
		UPDATE orders
		SET payment_token = $2,
			updated_at = CASE WHEN payment_token IS DISTINCT FROM $2 THEN NOW() ELSE updated_at END
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, token)
	if err != nil {
		if constraint, ok := UniqueConstraint(err); ok {
			r.logger.Error().
				Str("order_id", id.String()).
				Str("constraint", constraint).
				Msg("payment token already attached to another order")
			return false, &uniqueViolationError{constraint: constraint, err: err}
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to attach payment token")
		return false, fmt.Errorf("failed to attach payment token: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// FinalizeOrder performs the PENDING -> PREPARING transition as a single
// guarded UPDATE, so concurrent callbacks for one order transition it once.
func (r *orderRepository) FinalizeOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE orders
		SET status = $2, payment_status = $3, invoice_status = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5
	`

	tag, err := r.pool.Exec(ctx, query, id,
		model.OrderStatusPreparing, model.PaymentStatusSuccess, model.InvoiceStatusNotIssued,
		model.OrderStatusPending,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to finalize order")
		return false, fmt.Errorf("failed to finalize order: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// CancelOrder moves a still-cancellable order to CANCELLED.
func (r *orderRepository) CancelOrder(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	query := `
		UPDATE orders
		SET status = $2, cancel_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status IN ($4, $5)
	`

	tag, err := r.pool.Exec(ctx, query, id,
		model.OrderStatusCancelled, reason,
		model.OrderStatusPending, model.OrderStatusPreparing,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to cancel order")
		return false, fmt.Errorf("failed to cancel order: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// SetRefundStatus records the refund outcome of a cancelled order.
func (r *orderRepository) SetRefundStatus(ctx context.Context, id uuid.UUID, status model.RefundStatus) error {
	query := `UPDATE orders SET refund_status = $2, updated_at = NOW() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, status); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to set refund status")
		return fmt.Errorf("failed to set refund status: %w", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var o model.Order
	c := &o.Customer
	inv := &o.Invoice
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.TrackingToken, &o.PaymentToken,
		&c.FullName, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.City, &c.District, &c.ZipCode,
		&inv.IsCorporate, &inv.CompanyName, &inv.TaxOffice, &inv.TaxNumber,
		&o.Subtotal, &o.ShippingFee, &o.TotalAmount,
		&o.Status, &o.PaymentStatus, &o.InvoiceStatus, &o.RefundStatus,
		&o.CancelReason, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func scanLineItem(row pgx.Row) (model.LineItem, error) {
	var item model.LineItem
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.UnitPrice, &item.Quantity, &item.LineTotal)
	return item, err
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
