package service

import (
	"context"
	"sync"

	"hirdavat/internal/model"
	"hirdavat/internal/notify"
	"hirdavat/internal/payment"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.LineItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) order(args mock.Arguments) (*model.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *MockOrderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	return m.order(m.Called(ctx, orderNumber))
}

func (m *MockOrderRepository) GetByPaymentToken(ctx context.Context, token string) (*model.Order, error) {
	return m.order(m.Called(ctx, token))
}

func (m *MockOrderRepository) GetByTrackingToken(ctx context.Context, token string) (*model.Order, error) {
	return m.order(m.Called(ctx, token))
}

func (m *MockOrderRepository) AttachPaymentToken(ctx context.Context, id uuid.UUID, token string) (bool, error) {
	args := m.Called(ctx, id, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) FinalizeOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) CancelOrder(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	args := m.Called(ctx, id, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) SetRefundStatus(ctx context.Context, id uuid.UUID, status model.RefundStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// MockProductRepository is a mock implementation of repository.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) Upsert(ctx context.Context, products []model.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

// MockLedger is a mock implementation of OrderLedger.
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) order(args mock.Arguments) (*model.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockLedger) Create(ctx context.Context, draft OrderDraft) (*model.Order, error) {
	return m.order(m.Called(ctx, draft))
}

func (m *MockLedger) AttachPaymentToken(ctx context.Context, id uuid.UUID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockLedger) Finalize(ctx context.Context, id uuid.UUID) (*model.Order, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Bool(1), args.Error(2)
}

func (m *MockLedger) Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.Order, error) {
	return m.order(m.Called(ctx, id, reason))
}

func (m *MockLedger) RecordRefund(ctx context.Context, id uuid.UUID, status model.RefundStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLedger) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *MockLedger) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	return m.order(m.Called(ctx, orderNumber))
}

func (m *MockLedger) GetByPaymentToken(ctx context.Context, token string) (*model.Order, error) {
	return m.order(m.Called(ctx, token))
}

func (m *MockLedger) GetByTrackingToken(ctx context.Context, token string) (*model.Order, error) {
	return m.order(m.Called(ctx, token))
}

// MockGateway is a mock implementation of payment.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) StartPayment(ctx context.Context, req payment.StartRequest) (payment.StartResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(payment.StartResult), args.Error(1)
}

func (m *MockGateway) VerifyCallback(ctx context.Context, payload payment.CallbackPayload) payment.Outcome {
	args := m.Called(ctx, payload)
	return args.Get(0).(payment.Outcome)
}

func (m *MockGateway) Refund(ctx context.Context, correlationID, reason string) (payment.RefundOutcome, error) {
	args := m.Called(ctx, correlationID, reason)
	return args.Get(0).(payment.RefundOutcome), args.Error(1)
}

func (m *MockGateway) GetInstallmentOptions(ctx context.Context, bin string, amount decimal.Decimal) (model.InstallmentResponse, error) {
	args := m.Called(ctx, bin, amount)
	return args.Get(0).(model.InstallmentResponse), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) OrderConfirmed(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockNotifier) OrderCancelled(ctx context.Context, order *model.Order, c notify.Cancellation) error {
	args := m.Called(ctx, order, c)
	return args.Error(0)
}

// inlineDispatcher runs tasks synchronously and counts them by name.
type inlineDispatcher struct {
	mu    sync.Mutex
	calls map[string]int
	errs  []error
}

func newInlineDispatcher() *inlineDispatcher {
	return &inlineDispatcher{calls: map[string]int{}}
}

func (d *inlineDispatcher) Dispatch(name string, fn func(ctx context.Context) error) {
	d.mu.Lock()
	d.calls[name]++
	d.mu.Unlock()
	if err := fn(context.Background()); err != nil {
		d.mu.Lock()
		d.errs = append(d.errs, err)
		d.mu.Unlock()
	}
}

func (d *inlineDispatcher) count(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[name]
}
