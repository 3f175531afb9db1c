package integration

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"hirdavat/internal/config"
	"hirdavat/internal/database/dbtest"
	"hirdavat/internal/handler"
	"hirdavat/internal/model"
	"hirdavat/internal/notify"
	"hirdavat/internal/payment"
	"hirdavat/internal/repository"
	"hirdavat/internal/router"
	"hirdavat/internal/service"
	"hirdavat/internal/settings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey        = "test-api-key"
	testStorefront    = "https://hirdavat.example"
	testGatewaySecret = "gateway-secret"
	testPaymentID     = "pay-24680"
)

// SeedCatalog inserts the products and shipping ladder the flows price against.
func SeedCatalog(t *testing.T, db *dbtest.TestDB) {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.Nop()

	w := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	products := []model.Product{
		{ID: "P001", Name: "Çekiç", Price: decimal.RequireFromString("100.00"), Weight: w("0.3"), Category: "El Aletleri"},
		{ID: "P002", Name: "Tornavida Seti", Price: decimal.RequireFromString("49.99"), Weight: w("0.2"), Category: "El Aletleri"},
		{ID: "P100", Name: "Beton Mikseri", Price: decimal.RequireFromString("8999.00"), Weight: w("60"), Category: "İnşaat"},
	}
	require.NoError(t, repository.NewProductRepository(db.Pool, logger).Upsert(ctx, products))

	settingsRepo := repository.NewSettingsRepository(db.Pool, logger)
	require.NoError(t, settingsRepo.ReplaceShippingTiers(ctx, []model.PriceTier{
		{MaxWeight: decimal.NewFromInt(5), Price: decimal.NewFromInt(65)},
		{MaxWeight: decimal.NewFromInt(30), Price: decimal.NewFromInt(150)},
		{MaxWeight: decimal.NewFromInt(100), Price: decimal.NewFromInt(400)},
	}))
	require.NoError(t, settingsRepo.SetFreeShippingThreshold(ctx, decimal.NewFromInt(2000)))
}

// fakeGateway answers the gateway endpoints the client calls.
type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int
}

func (g *fakeGateway) count(path string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[path]
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req struct {
		ConversationID string `json:"conversationId"`
	}
	_ = json.Unmarshal(body, &req)

	g.mu.Lock()
	g.calls[r.URL.Path]++
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/payment/3dsecure/initialize":
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":             "success",
			"conversationId":     req.ConversationID,
			"paymentId":          testPaymentID,
			"threeDSHtmlContent": base64.StdEncoding.EncodeToString([]byte("<form id=\"3ds\"></form>")),
		})
	case "/payment/3dsecure/auth":
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":         "success",
			"conversationId": req.ConversationID,
			"paymentId":      testPaymentID,
			"paidPrice":      "314.99",
		})
	case "/payment/cancel":
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "success"})
	default:
		http.NotFound(w, r)
	}
}

// sentMail records delivered notifications.
type sentMail struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (s *sentMail) Send(_ context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *sentMail) all() []notify.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Message(nil), s.msgs...)
}

// testStack is the full HTTP application against a real database and a
// fake gateway.
type testStack struct {
	Handler    http.Handler
	Gateway    *fakeGateway
	Mail       *sentMail
	Dispatcher *notify.Dispatcher
}

func newTestStack(t *testing.T, db *dbtest.TestDB) *testStack {
	t.Helper()
	logger := zerolog.Nop()

	gw := &fakeGateway{calls: map[string]int{}}
	gwServer := httptest.NewServer(gw)
	t.Cleanup(gwServer.Close)

	client := payment.NewClient(config.GatewayConfig{
		BaseURL:     gwServer.URL,
		APIKey:      "gateway-key",
		SecretKey:   testGatewaySecret,
		CallbackURL: "https://api.hirdavat.example/api/payments/callback",
		Timeout:     5 * time.Second,
	}, logger)

	mail := &sentMail{}
	notifier := notify.NewNotifier(mail, testStorefront, logger)
	dispatcher := notify.NewDispatcher(5*time.Second, logger)

	validator := service.NewRequestValidator()
	ledger := service.NewOrderLedger(repository.NewOrderRepository(db.Pool, logger), logger)
	loader := settings.NewDatabaseLoader(repository.NewSettingsRepository(db.Pool, logger), logger)

	checkout := service.NewCheckoutService(ledger, repository.NewProductRepository(db.Pool, logger), loader, client, notifier, dispatcher, validator, logger)
	cancellation := service.NewCancellationService(ledger, client, notifier, dispatcher, validator, logger)
	tracking := service.NewTrackingService(ledger, logger)

	h := router.New(router.Handlers{
		Checkout: handler.NewCheckoutHandler(checkout, testStorefront, false, logger),
		Orders:   handler.NewOrderHandler(tracking, cancellation, false, logger),
		Health:   handler.NewHealthHandler(db.Pool, logger),
	}, router.Options{APIKey: testAPIKey, AllowedOrigin: testStorefront}, logger)

	return &testStack{Handler: h, Gateway: gw, Mail: mail, Dispatcher: dispatcher}
}
