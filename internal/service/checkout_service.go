package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"hirdavat/internal/model"
	"hirdavat/internal/payment"
	"hirdavat/internal/pricing"
	"hirdavat/internal/repository"
	"hirdavat/internal/settings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// shippingBasketID identifies the shipping fee line in the gateway basket.
const shippingBasketID = "SHIPPING"

var cardBIN = regexp.MustCompile(`^\d{6,8}$`)

// CompletionResult is the settled outcome of a gateway callback.
type CompletionResult struct {
	Success     bool
	OrderNumber string
	Reason      string
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	ledger     OrderLedger
	products   repository.ProductRepository
	settings   settings.Loader
	gateway    payment.Gateway
	notifier   Notifier
	dispatcher Dispatcher
	validator  *RequestValidator
	logger     zerolog.Logger
}

// NewCheckoutService creates the checkout orchestrator.
func NewCheckoutService(
	ledger OrderLedger,
	products repository.ProductRepository,
	settingsLoader settings.Loader,
	gateway payment.Gateway,
	notifier Notifier,
	dispatcher Dispatcher,
	validator *RequestValidator,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		ledger:     ledger,
		products:   products,
		settings:   settingsLoader,
		gateway:    gateway,
		notifier:   notifier,
		dispatcher: dispatcher,
		validator:  validator,
		logger:     logger.With().Str("service", "checkout").Logger(),
	}
}

// SubmitCart prices the cart against a fresh settings snapshot and stores a
// pending order. Nothing is written when pricing rejects the cart.
func (s *checkoutService) SubmitCart(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if req == nil {
		return nil, &model.ValidationError{Fields: []model.FieldError{{Field: "items", Message: "is required"}}}
	}
	if err := s.validator.Validate(req); err != nil {
		s.logger.Warn().Err(err).Msg("checkout request rejected")
		return nil, err
	}

	snapshot, err := s.settings.Load(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load shipping settings")
		return nil, fmt.Errorf("failed to load shipping settings: %w", err)
	}

	ids := make([]string, 0, len(req.Items))
	seen := make(map[string]struct{}, len(req.Items))
	items := make([]pricing.CartItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = pricing.CartItem{ProductID: item.ID, Quantity: item.Quantity}
		if _, ok := seen[item.ID]; !ok {
			seen[item.ID] = struct{}{}
			ids = append(ids, item.ID)
		}
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("product_count", len(ids)).Msg("failed to load products")
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	totals, err := pricing.ComputeCheckoutTotals(items, pricing.NewCatalog(products), snapshot)
	if err != nil {
		s.logger.Warn().Err(err).Int("item_count", len(items)).Msg("cart pricing rejected")
		return nil, err
	}
	if !totals.Shippable() {
		s.logger.Warn().
			Str("total_weight", totals.TotalWeight.String()).
			Msg("no shipping tier covers cart weight")
		return nil, model.ErrUnshippableWeight
	}

	lines := make([]model.LineItem, len(totals.Lines))
	for i, line := range totals.Lines {
		lines[i] = model.LineItem{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		}
	}

	order, err := s.ledger.Create(ctx, OrderDraft{
		Customer:    customerFromGuest(req.GuestInfo),
		Invoice:     invoiceFromRequest(req.InvoiceInfo),
		Items:       lines,
		Subtotal:    totals.Subtotal,
		ShippingFee: totals.ShippingFee,
		Total:       totals.GrandTotal,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create order")
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("total", order.TotalAmount.StringFixed(2)).
		Msg("cart submitted, awaiting payment")

	return &model.CheckoutResponse{
		Status:      model.CheckoutStatusPendingPayment,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Total:       order.TotalAmount,
	}, nil
}

// SubmitPayment starts the bank redirect for a pending order.
func (s *checkoutService) SubmitPayment(ctx context.Context, req *model.PaymentRequest) (*model.PaymentResponse, error) {
	if req == nil {
		return nil, &model.ValidationError{Fields: []model.FieldError{{Field: "orderId", Message: "is required"}}}
	}
	if err := s.validator.Validate(req); err != nil {
		s.logger.Warn().Err(err).Msg("payment request rejected")
		return nil, err
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, &model.ValidationError{Fields: []model.FieldError{{Field: "orderId", Message: "must be a valid UUID"}}}
	}

	order, err := s.ledger.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to load order")
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if order.Status != model.OrderStatusPending || order.PaymentStatus == model.PaymentStatusSuccess {
		s.logger.Warn().
			Str("order_number", order.OrderNumber).
			Str("status", string(order.Status)).
			Msg("payment attempted for non-pending order")
		return nil, model.ErrOrderNotPending
	}

	result, err := s.gateway.StartPayment(ctx, startRequest(order, req))
	if err != nil {
		s.logger.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("payment could not be started")
		return nil, err
	}

	if result.CorrelationID != "" {
		// The callback resolves the order by number, so a failure here
		// does not block the customer.
		if err := s.ledger.AttachPaymentToken(ctx, order.ID, result.CorrelationID); err != nil {
			s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to attach payment token")
		}
	}

	return &model.PaymentResponse{
		Status:  model.StatusSuccess,
		UcdHTML: result.HTML,
		OrderID: order.ID,
	}, nil
}

func startRequest(order *model.Order, req *model.PaymentRequest) payment.StartRequest {
	c := order.Customer

	items := make([]payment.BasketItem, 0, len(order.Items)+1)
	for _, item := range order.Items {
		items = append(items, payment.BasketItem{
			ID:    item.ProductID,
			Name:  item.Name,
			Price: item.LineTotal,
		})
	}
	if order.ShippingFee != nil && order.ShippingFee.IsPositive() {
		items = append(items, payment.BasketItem{
			ID:       shippingBasketID,
			Name:     "Kargo",
			Category: "Kargo",
			Price:    *order.ShippingFee,
		})
	}

	return payment.StartRequest{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Amount:      order.TotalAmount,
		Buyer: payment.Buyer{
			ID:             order.ID.String(),
			FirstName:      c.FirstName,
			LastName:       c.LastName,
			Email:          c.Email,
			Phone:          c.Phone,
			IdentityNumber: req.BuyerInfo.IdentityNumber,
			Address:        c.Address + " " + c.District,
			City:           c.City,
			ZipCode:        c.ZipCode,
			IP:             req.BuyerInfo.IP,
		},
		Card: payment.Card{
			HolderName:  req.CardInfo.CardHolderName,
			Number:      req.CardInfo.CardNumber,
			ExpireMonth: req.CardInfo.CardExpMonth,
			ExpireYear:  req.CardInfo.CardExpYear,
			CVC:         req.CardInfo.CardCvc,
		},
		Items: items,
	}
}

// CompletePayment verifies the callback and finalizes the order exactly once.
// A failed verification leaves the order untouched so the customer can retry.
func (s *checkoutService) CompletePayment(ctx context.Context, payload payment.CallbackPayload) CompletionResult {
	outcome := s.gateway.VerifyCallback(ctx, payload)
	if !outcome.Success {
		result := CompletionResult{OrderNumber: outcome.OrderNumber, Reason: outcome.Reason}
		if errors.Is(outcome.Err, model.ErrCallbackVerificationFailed) {
			// nothing in an unverified payload is trustworthy
			result.OrderNumber = ""
		}
		if result.Reason == "" {
			result.Reason = model.ErrGatewayRejected.Message
		}
		s.logger.Warn().
			Err(outcome.Err).
			Str("order_number", outcome.OrderNumber).
			Str("reason", result.Reason).
			Msg("payment not completed")
		return result
	}

	logger := s.logger.With().Str("order_number", outcome.OrderNumber).Logger()
	failed := func(reason string) CompletionResult {
		return CompletionResult{OrderNumber: outcome.OrderNumber, Reason: reason}
	}

	order, err := s.ledger.GetByOrderNumber(ctx, outcome.OrderNumber)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load order for captured payment")
		return failed("Sipariş bilgisi alınamadı, lütfen bizimle iletişime geçin")
	}
	if order == nil {
		logger.Error().Str("payment_id", outcome.CorrelationID).Msg("captured payment references an unknown order")
		return failed(model.ErrOrderNotFound.Message)
	}

	if outcome.CorrelationID != "" {
		if err := s.ledger.AttachPaymentToken(ctx, order.ID, outcome.CorrelationID); err != nil {
			logger.Error().Err(err).Msg("failed to attach final payment token")
		}
	}

	finalized, transitioned, err := s.ledger.Finalize(ctx, order.ID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to finalize paid order")
		return failed("Ödemeniz alındı ancak sipariş onaylanamadı, lütfen bizimle iletişime geçin")
	}

	if !transitioned && finalized.PaymentStatus != model.PaymentStatusSuccess {
		logger.Error().
			Str("status", string(finalized.Status)).
			Str("payment_id", outcome.CorrelationID).
			Msg("payment captured for an order that can no longer be finalized")
		return failed(model.ErrOrderNotPending.Message)
	}

	if transitioned {
		s.dispatcher.Dispatch("order-confirmation", func(ctx context.Context) error {
			return s.notifier.OrderConfirmed(ctx, finalized)
		})
	}

	return CompletionResult{Success: true, OrderNumber: finalized.OrderNumber}
}

// GetInstallments never fails; upstream problems yield an empty list.
func (s *checkoutService) GetInstallments(ctx context.Context, bin string, amount decimal.Decimal) model.InstallmentResponse {
	empty := model.InstallmentResponse{Installments: []model.Installment{}}
	if !cardBIN.MatchString(bin) || !amount.IsPositive() {
		return empty
	}

	resp, err := s.gateway.GetInstallmentOptions(ctx, bin, amount)
	if err != nil {
		s.logger.Warn().Err(err).Msg("installment lookup failed")
		return empty
	}
	if resp.Installments == nil {
		resp.Installments = []model.Installment{}
	}
	return resp
}
