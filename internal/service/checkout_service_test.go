package service

import (
	"context"
	"errors"
	"testing"

	"hirdavat/internal/model"
	"hirdavat/internal/payment"
	"hirdavat/internal/settings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	ledger     *MockLedger
	products   *MockProductRepository
	gateway    *MockGateway
	notifier   *MockNotifier
	dispatcher *inlineDispatcher
	service    CheckoutService
}

func threeTierSnapshot() model.ShippingSettings {
	return model.ShippingSettings{Tiers: []model.PriceTier{
		{MaxWeight: decimal.NewFromInt(1), Price: decimal.NewFromInt(65)},
		{MaxWeight: decimal.NewFromInt(5), Price: decimal.NewFromInt(145)},
		{MaxWeight: decimal.NewFromInt(100), Price: decimal.NewFromInt(1600)},
	}}
}

func newCheckoutFixture(loader settings.Loader) *checkoutFixture {
	f := &checkoutFixture{
		ledger:     new(MockLedger),
		products:   new(MockProductRepository),
		gateway:    new(MockGateway),
		notifier:   new(MockNotifier),
		dispatcher: newInlineDispatcher(),
	}
	if loader == nil {
		loader = settings.Static(threeTierSnapshot())
	}
	f.service = NewCheckoutService(f.ledger, f.products, loader, f.gateway, f.notifier, f.dispatcher, NewRequestValidator(), zerolog.Nop())
	return f
}

func weight(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func catalogProducts() []model.Product {
	return []model.Product{
		{ID: "P001", Name: "Çekiç", Price: decimal.RequireFromString("100.00"), Weight: weight("0.3")},
		{ID: "P002", Name: "Tornavida", Price: decimal.RequireFromString("49.99"), Weight: weight("0.2")},
		{ID: "P100", Name: "Beton mikseri", Price: decimal.RequireFromString("8999.00"), Weight: weight("60")},
		{ID: "P010", Name: "Kompresör", Price: decimal.RequireFromString("4500.00"), Weight: weight("10")},
	}
}

func validGuest() model.GuestInfo {
	return model.GuestInfo{
		Name:     "Ayşe Nur Yılmaz",
		Email:    "Ayse@Example.com",
		Phone:    "05321234567",
		Address:  "Atatürk Cad. No: 12 Daire 3",
		City:     "İstanbul",
		District: "Kadıköy",
		ZipCode:  "34710",
	}
}

func validCheckout(items ...model.CartItemRequest) *model.CheckoutRequest {
	if len(items) == 0 {
		items = []model.CartItemRequest{{ID: "P001", Quantity: 2}, {ID: "P002", Quantity: 1}}
	}
	return &model.CheckoutRequest{Items: items, GuestInfo: validGuest()}
}

func TestCheckoutService_SubmitCart_Success(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(nil)

	orderID := uuid.New()
	f.products.On("GetByIDs", ctx, []string{"P001", "P002"}).Return(catalogProducts(), nil).Once()
	f.ledger.On("Create", ctx, mock.MatchedBy(func(d OrderDraft) bool {
		return d.Total.Equal(decimal.RequireFromString("314.99")) &&
			d.Subtotal.Equal(decimal.RequireFromString("249.99")) &&
			d.ShippingFee != nil && d.ShippingFee.Equal(decimal.NewFromInt(65)) &&
			d.Customer.Phone == "+905321234567" &&
			d.Customer.FirstName == "Ayşe Nur" &&
			d.Customer.LastName == "Yılmaz" &&
			d.Customer.Email == "ayse@example.com" &&
			len(d.Items) == 2 && d.Items[0].Name == "Çekiç" && d.Items[0].LineTotal.Equal(decimal.NewFromInt(200)) &&
			!d.Invoice.IsCorporate
	})).Return(&model.Order{ID: orderID, OrderNumber: "482913", TotalAmount: decimal.RequireFromString("314.99")}, nil).Once()

	resp, err := f.service.SubmitCart(ctx, validCheckout())

	require.NoError(t, err)
	assert.Equal(t, model.CheckoutStatusPendingPayment, resp.Status)
	assert.Equal(t, orderID, resp.OrderID)
	assert.Equal(t, "482913", resp.OrderNumber)
	assert.Equal(t, "314.99", resp.Total.StringFixed(2))
	f.ledger.AssertExpectations(t)
	f.products.AssertExpectations(t)
}

func TestCheckoutService_SubmitCart_DeduplicatesProductLookup(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(nil)

	f.products.On("GetByIDs", ctx, []string{"P001"}).Return(catalogProducts()[:1], nil).Once()
	f.ledger.On("Create", ctx, mock.MatchedBy(func(d OrderDraft) bool { return len(d.Items) == 2 })).
		Return(&model.Order{ID: uuid.New(), OrderNumber: "100001"}, nil).Once()

	_, err := f.service.SubmitCart(ctx, validCheckout(
		model.CartItemRequest{ID: "P001", Quantity: 1},
		model.CartItemRequest{ID: "P001", Quantity: 1},
	))
	require.NoError(t, err)
	f.products.AssertExpectations(t)
}

func TestCheckoutService_SubmitCart_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		loader      settings.Loader
		items       []model.CartItemRequest
		expectedErr error
	}{
		{
			name:        "Over 100 kg",
			items:       []model.CartItemRequest{{ID: "P100", Quantity: 2}},
			expectedErr: model.ErrWeightLimitExceeded,
		},
		{
			name: "Over 100 kg with a generous tier table",
			loader: settings.Static(model.ShippingSettings{Tiers: []model.PriceTier{
				{MaxWeight: decimal.NewFromInt(1000), Price: decimal.NewFromInt(5000)},
			}}),
			items:       []model.CartItemRequest{{ID: "P100", Quantity: 1}, {ID: "P010", Quantity: 5}},
			expectedErr: model.ErrWeightLimitExceeded,
		},
		{
			name: "No tier covers the weight",
			loader: settings.Static(model.ShippingSettings{Tiers: []model.PriceTier{
				{MaxWeight: decimal.NewFromInt(5), Price: decimal.NewFromInt(145)},
			}}),
			items:       []model.CartItemRequest{{ID: "P010", Quantity: 1}},
			expectedErr: model.ErrUnshippableWeight,
		},
		{
			name:        "Unknown product",
			items:       []model.CartItemRequest{{ID: "P999", Quantity: 1}},
			expectedErr: model.ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(tt.loader)
			f.products.On("GetByIDs", ctx, mock.Anything).Return(catalogProducts(), nil).Once()

			resp, err := f.service.SubmitCart(ctx, validCheckout(tt.items...))

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.expectedErr)
			f.ledger.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckoutService_SubmitCart_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		mutate      func(r *model.CheckoutRequest)
		expectField string
	}{
		{"No items", func(r *model.CheckoutRequest) { r.Items = nil }, "items"},
		{"Zero quantity", func(r *model.CheckoutRequest) { r.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"Short name", func(r *model.CheckoutRequest) { r.GuestInfo.Name = "A" }, "guestInfo.name"},
		{"Bad email", func(r *model.CheckoutRequest) { r.GuestInfo.Email = "not-an-email" }, "guestInfo.email"},
		{"Phone without leading zero", func(r *model.CheckoutRequest) { r.GuestInfo.Phone = "5321234567" }, "guestInfo.phone"},
		{"Phone too long", func(r *model.CheckoutRequest) { r.GuestInfo.Phone = "053212345678" }, "guestInfo.phone"},
		{"Short address", func(r *model.CheckoutRequest) { r.GuestInfo.Address = "Kısa" }, "guestInfo.address"},
		{"Short zip", func(r *model.CheckoutRequest) { r.GuestInfo.ZipCode = "34" }, "guestInfo.zipCode"},
		{
			"Corporate invoice without tax number",
			func(r *model.CheckoutRequest) {
				r.InvoiceInfo = &model.InvoiceInfoRequest{IsCorporate: true, CompanyName: "Yılmaz Yapı A.Ş.", TaxOffice: "Kadıköy"}
			},
			"invoiceInfo.companyName",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(nil)
			req := validCheckout()
			tt.mutate(req)

			_, err := f.service.SubmitCart(ctx, req)

			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrValidation)
			var verr *model.ValidationError
			require.True(t, errors.As(err, &verr))
			fields := make([]string, 0, len(verr.Fields))
			for _, fe := range verr.Fields {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.expectField)
			f.products.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
			f.ledger.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckoutService_SubmitCart_CorporateInvoice(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(nil)

	req := validCheckout()
	req.InvoiceInfo = &model.InvoiceInfoRequest{IsCorporate: true, CompanyName: " Yılmaz Yapı A.Ş. ", TaxOffice: "Kadıköy", TaxNumber: "1234567890"}

	f.products.On("GetByIDs", ctx, mock.Anything).Return(catalogProducts(), nil).Once()
	f.ledger.On("Create", ctx, mock.MatchedBy(func(d OrderDraft) bool {
		return d.Invoice.IsCorporate && d.Invoice.CompanyName == "Yılmaz Yapı A.Ş." && d.Invoice.TaxNumber == "1234567890"
	})).Return(&model.Order{ID: uuid.New(), OrderNumber: "100002"}, nil).Once()

	_, err := f.service.SubmitCart(ctx, req)
	require.NoError(t, err)
	f.ledger.AssertExpectations(t)
}

func TestCheckoutService_SubmitCart_SettingsUnavailable(t *testing.T) {
	ctx := context.Background()
	loadErr := errors.New("bucket unreachable")
	f := newCheckoutFixture(settings.LoaderFunc(func(context.Context) (model.ShippingSettings, error) {
		return model.ShippingSettings{}, loadErr
	}))

	_, err := f.service.SubmitCart(ctx, validCheckout())

	assert.ErrorIs(t, err, loadErr)
	f.products.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
}

func pendingOrder() *model.Order {
	fee := decimal.NewFromInt(65)
	return &model.Order{
		ID:          uuid.New(),
		OrderNumber: "482913",
		Customer: model.Customer{
			FirstName: "Ayşe", LastName: "Yılmaz", Email: "ayse@example.com", Phone: "+905321234567",
			Address: "Atatürk Cad. No: 12", City: "İstanbul", District: "Kadıköy", ZipCode: "34710",
		},
		Items: []model.LineItem{
			{ProductID: "P001", Name: "Çekiç", UnitPrice: decimal.NewFromInt(100), Quantity: 2, LineTotal: decimal.NewFromInt(200)},
			{ProductID: "P002", Name: "Tornavida", UnitPrice: decimal.RequireFromString("49.99"), Quantity: 1, LineTotal: decimal.RequireFromString("49.99")},
		},
		Subtotal:      decimal.RequireFromString("249.99"),
		ShippingFee:   &fee,
		TotalAmount:   decimal.RequireFromString("314.99"),
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusInit,
	}
}

func validPayment(orderID uuid.UUID) *model.PaymentRequest {
	return &model.PaymentRequest{
		OrderID: orderID.String(),
		CardInfo: model.CardInfo{
			CardHolderName: "AYSE YILMAZ",
			CardNumber:     "5528790000000008",
			CardExpMonth:   "12",
			CardExpYear:    "2030",
			CardCvc:        "123",
		},
		BuyerInfo: model.BuyerInfo{IP: "85.105.1.1"},
	}
}

func TestCheckoutService_SubmitPayment(t *testing.T) {
	ctx := context.Background()
	order := pendingOrder()

	f := newCheckoutFixture(nil)
	f.ledger.On("GetByID", ctx, order.ID).Return(order, nil).Once()
	f.gateway.On("StartPayment", ctx, mock.MatchedBy(func(r payment.StartRequest) bool {
		sum := decimal.Zero
		for _, item := range r.Items {
			sum = sum.Add(item.Price)
		}
		return r.OrderNumber == "482913" &&
			r.Amount.Equal(order.TotalAmount) &&
			sum.Equal(order.TotalAmount) &&
			len(r.Items) == 3 &&
			r.Card.Number == "5528790000000008" &&
			r.Buyer.IP == "85.105.1.1"
	})).Return(payment.StartResult{HTML: "<form></form>", CorrelationID: "pay-123"}, nil).Once()
	f.ledger.On("AttachPaymentToken", ctx, order.ID, "pay-123").Return(nil).Once()

	resp, err := f.service.SubmitPayment(ctx, validPayment(order.ID))

	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, resp.Status)
	assert.Equal(t, "<form></form>", resp.UcdHTML)
	assert.Equal(t, order.ID, resp.OrderID)
	f.ledger.AssertExpectations(t)
	f.gateway.AssertExpectations(t)
}

func TestCheckoutService_SubmitPayment_Failures(t *testing.T) {
	ctx := context.Background()

	preparing := pendingOrder()
	preparing.Status = model.OrderStatusPreparing
	preparing.PaymentStatus = model.PaymentStatusSuccess

	tests := []struct {
		name         string
		order        *model.Order
		mutate       func(r *model.PaymentRequest)
		gatewayErr   error
		expectedErr  error
		expectLookup bool
		expectStart  bool
	}{
		{name: "Unknown order", order: nil, expectedErr: model.ErrOrderNotFound, expectLookup: true},
		{name: "Already paid", order: preparing, expectedErr: model.ErrOrderNotPending, expectLookup: true},
		{name: "Gateway unavailable", order: pendingOrder(), gatewayErr: model.ErrGatewayUnavailable, expectedErr: model.ErrGatewayUnavailable, expectLookup: true, expectStart: true},
		{name: "Gateway rejected", order: pendingOrder(), gatewayErr: model.ErrGatewayRejected.WithMessage("Kart limiti yetersiz"), expectedErr: model.ErrGatewayRejected, expectLookup: true, expectStart: true},
		{name: "Card number not numeric", order: pendingOrder(), mutate: func(r *model.PaymentRequest) { r.CardInfo.CardNumber = "5528-7900-0000" }, expectedErr: model.ErrValidation},
		{name: "Missing CVC", order: pendingOrder(), mutate: func(r *model.PaymentRequest) { r.CardInfo.CardCvc = "" }, expectedErr: model.ErrValidation},
		{name: "Bad order id", order: pendingOrder(), mutate: func(r *model.PaymentRequest) { r.OrderID = "42" }, expectedErr: model.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(nil)
			id := uuid.New()
			if tt.order != nil {
				id = tt.order.ID
			}
			req := validPayment(id)
			if tt.mutate != nil {
				tt.mutate(req)
			}

			if tt.expectLookup {
				f.ledger.On("GetByID", ctx, id).Return(tt.order, nil).Once()
			}
			if tt.expectStart {
				f.gateway.On("StartPayment", ctx, mock.Anything).Return(payment.StartResult{}, tt.gatewayErr).Once()
			}

			resp, err := f.service.SubmitPayment(ctx, req)

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.expectedErr)
			f.ledger.AssertNotCalled(t, "AttachPaymentToken", mock.Anything, mock.Anything, mock.Anything)
			if !tt.expectStart {
				f.gateway.AssertNotCalled(t, "StartPayment", mock.Anything, mock.Anything)
			}
			f.ledger.AssertExpectations(t)
		})
	}
}

func TestCheckoutService_CompletePayment_DuplicateCallbacks(t *testing.T) {
	ctx := context.Background()
	order := pendingOrder()
	finalized := *order
	finalized.Status = model.OrderStatusPreparing
	finalized.PaymentStatus = model.PaymentStatusSuccess

	f := newCheckoutFixture(nil)
	payload := payment.CallbackPayload{Status: "success", PaymentID: "pay-123", ConversationID: "482913", MDStatus: "1", Signature: "sig"}

	f.gateway.On("VerifyCallback", ctx, payload).
		Return(payment.Outcome{Success: true, OrderNumber: "482913", CorrelationID: "pay-123"}).Twice()
	f.ledger.On("GetByOrderNumber", ctx, "482913").Return(order, nil).Twice()
	f.ledger.On("AttachPaymentToken", ctx, order.ID, "pay-123").Return(nil).Twice()
	f.ledger.On("Finalize", ctx, order.ID).Return(&finalized, true, nil).Once()
	f.ledger.On("Finalize", ctx, order.ID).Return(&finalized, false, nil).Once()
	f.notifier.On("OrderConfirmed", mock.Anything, &finalized).Return(nil).Once()

	first := f.service.CompletePayment(ctx, payload)
	second := f.service.CompletePayment(ctx, payload)

	assert.True(t, first.Success)
	assert.True(t, second.Success)
	assert.Equal(t, "482913", first.OrderNumber)
	assert.Equal(t, 1, f.dispatcher.count("order-confirmation"))
	f.notifier.AssertNumberOfCalls(t, "OrderConfirmed", 1)
	f.ledger.AssertExpectations(t)
}

func TestCheckoutService_CompletePayment_NotificationFailureKeepsSuccess(t *testing.T) {
	ctx := context.Background()
	order := pendingOrder()
	finalized := *order
	finalized.Status = model.OrderStatusPreparing
	finalized.PaymentStatus = model.PaymentStatusSuccess

	f := newCheckoutFixture(nil)
	payload := payment.CallbackPayload{Status: "success", PaymentID: "pay-123", ConversationID: "482913", MDStatus: "1"}
	f.gateway.On("VerifyCallback", ctx, payload).Return(payment.Outcome{Success: true, OrderNumber: "482913", CorrelationID: "pay-123"}).Once()
	f.ledger.On("GetByOrderNumber", ctx, "482913").Return(order, nil).Once()
	f.ledger.On("AttachPaymentToken", ctx, order.ID, "pay-123").Return(nil).Once()
	f.ledger.On("Finalize", ctx, order.ID).Return(&finalized, true, nil).Once()
	f.notifier.On("OrderConfirmed", mock.Anything, &finalized).Return(errors.New("smtp down")).Once()

	result := f.service.CompletePayment(ctx, payload)

	assert.True(t, result.Success)
	require.Len(t, f.dispatcher.errs, 1)
}

func TestCheckoutService_CompletePayment_Failures(t *testing.T) {
	ctx := context.Background()
	payload := payment.CallbackPayload{Status: "success", PaymentID: "pay-123", ConversationID: "482913", MDStatus: "1", Signature: "forged"}

	tests := []struct {
		name              string
		outcome           payment.Outcome
		expectOrderNumber string
	}{
		{
			name: "Signature rejected",
			outcome: payment.Outcome{
				OrderNumber: "482913",
				Reason:      model.ErrCallbackVerificationFailed.Message,
				Err:         model.ErrCallbackVerificationFailed,
			},
			expectOrderNumber: "",
		},
		{
			name: "Bank declined",
			outcome: payment.Outcome{
				OrderNumber: "482913",
				Reason:      "Yetersiz bakiye",
				Err:         model.ErrGatewayRejected,
			},
			expectOrderNumber: "482913",
		},
		{
			name:              "Capture unavailable without reason",
			outcome:           payment.Outcome{OrderNumber: "482913", Err: model.ErrGatewayUnavailable},
			expectOrderNumber: "482913",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(nil)
			f.gateway.On("VerifyCallback", ctx, payload).Return(tt.outcome).Once()

			result := f.service.CompletePayment(ctx, payload)

			assert.False(t, result.Success)
			assert.Equal(t, tt.expectOrderNumber, result.OrderNumber)
			assert.NotEmpty(t, result.Reason)
			f.ledger.AssertNotCalled(t, "GetByOrderNumber", mock.Anything, mock.Anything)
			f.ledger.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
			f.ledger.AssertNotCalled(t, "AttachPaymentToken", mock.Anything, mock.Anything, mock.Anything)
			assert.Zero(t, f.dispatcher.count("order-confirmation"))
		})
	}
}

func TestCheckoutService_CompletePayment_OrderProblems(t *testing.T) {
	ctx := context.Background()
	payload := payment.CallbackPayload{Status: "success", PaymentID: "pay-123", ConversationID: "482913", MDStatus: "1"}
	success := payment.Outcome{Success: true, OrderNumber: "482913", CorrelationID: "pay-123"}

	t.Run("Unknown order", func(t *testing.T) {
		f := newCheckoutFixture(nil)
		f.gateway.On("VerifyCallback", ctx, payload).Return(success).Once()
		f.ledger.On("GetByOrderNumber", ctx, "482913").Return(nil, nil).Once()

		result := f.service.CompletePayment(ctx, payload)
		assert.False(t, result.Success)
		f.ledger.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
	})

	t.Run("Order cancelled before capture", func(t *testing.T) {
		order := pendingOrder()
		cancelled := *order
		cancelled.Status = model.OrderStatusCancelled

		f := newCheckoutFixture(nil)
		f.gateway.On("VerifyCallback", ctx, payload).Return(success).Once()
		f.ledger.On("GetByOrderNumber", ctx, "482913").Return(order, nil).Once()
		f.ledger.On("AttachPaymentToken", ctx, order.ID, "pay-123").Return(nil).Once()
		f.ledger.On("Finalize", ctx, order.ID).Return(&cancelled, false, nil).Once()

		result := f.service.CompletePayment(ctx, payload)
		assert.False(t, result.Success)
		assert.Zero(t, f.dispatcher.count("order-confirmation"))
	})

	t.Run("Finalize fails", func(t *testing.T) {
		order := pendingOrder()
		f := newCheckoutFixture(nil)
		f.gateway.On("VerifyCallback", ctx, payload).Return(success).Once()
		f.ledger.On("GetByOrderNumber", ctx, "482913").Return(order, nil).Once()
		f.ledger.On("AttachPaymentToken", ctx, order.ID, "pay-123").Return(nil).Once()
		f.ledger.On("Finalize", ctx, order.ID).Return(nil, false, errors.New("db down")).Once()

		result := f.service.CompletePayment(ctx, payload)
		assert.False(t, result.Success)
		assert.Equal(t, "482913", result.OrderNumber)
	})
}

func TestCheckoutService_GetInstallments(t *testing.T) {
	ctx := context.Background()
	amount := decimal.RequireFromString("314.99")

	t.Run("Passes gateway plans through", func(t *testing.T) {
		f := newCheckoutFixture(nil)
		plans := model.InstallmentResponse{BankName: "Garanti", Installments: []model.Installment{{Count: 1, TotalPrice: amount}}}
		f.gateway.On("GetInstallmentOptions", ctx, "552879", amount).Return(plans, nil).Once()

		assert.Equal(t, plans, f.service.GetInstallments(ctx, "552879", amount))
	})

	t.Run("Upstream error yields empty list", func(t *testing.T) {
		f := newCheckoutFixture(nil)
		f.gateway.On("GetInstallmentOptions", ctx, "552879", amount).Return(model.InstallmentResponse{}, model.ErrGatewayUnavailable).Once()

		resp := f.service.GetInstallments(ctx, "552879", amount)
		assert.NotNil(t, resp.Installments)
		assert.Empty(t, resp.Installments)
	})

	t.Run("Invalid BIN skips the gateway", func(t *testing.T) {
		f := newCheckoutFixture(nil)
		resp := f.service.GetInstallments(ctx, "55", amount)
		assert.Empty(t, resp.Installments)
		f.gateway.AssertNotCalled(t, "GetInstallmentOptions", mock.Anything, mock.Anything, mock.Anything)
	})
}
