package handler

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"hirdavat/internal/model"
	"hirdavat/internal/payment"
	"hirdavat/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Storefront result pages the gateway callback redirects to.
const (
	successPath = "/odeme/basarili"
	failurePath = "/odeme/basarisiz"
)

// CheckoutHandler handles the cart, payment and gateway callback requests.
type CheckoutHandler struct {
	service    service.CheckoutService
	storefront string
	errors     errorWriter
	logger     zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler. storefrontURL is the
// base the callback redirects the customer's browser to.
func NewCheckoutHandler(svc service.CheckoutService, storefrontURL string, debug bool, logger zerolog.Logger) *CheckoutHandler {
	l := logger.With().Str("handler", "checkout").Logger()
	return &CheckoutHandler{
		service:    svc,
		storefront: strings.TrimRight(storefrontURL, "/"),
		errors:     errorWriter{debug: debug, logger: l},
		logger:     l,
	}
}

// SubmitCart handles POST /api/checkout requests.
func (h *CheckoutHandler) SubmitCart(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(r, w, &req); err != nil {
		h.errors.badRequest(w, r, err)
		return
	}

	resp, err := h.service.SubmitCart(r.Context(), &req)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// SubmitPayment handles POST /api/payments requests.
func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentRequest
	if err := decodeJSON(r, w, &req); err != nil {
		h.errors.badRequest(w, r, err)
		return
	}
	req.BuyerInfo.IP = clientIP(r)

	resp, err := h.service.SubmitPayment(r.Context(), &req)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Callback handles POST /api/payments/callback. The gateway posts a form
// from the customer's browser, so the answer is always a redirect.
func (h *CheckoutHandler) Callback(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.logger.Warn().Err(err).Msg("unreadable payment callback")
		h.redirectFailure(w, r, model.ErrCallbackVerificationFailed.Message)
		return
	}

	result := h.service.CompletePayment(r.Context(), payment.ParseCallbackForm(r.PostForm))
	if !result.Success {
		h.redirectFailure(w, r, result.Reason)
		return
	}

	target := h.storefront + successPath + "?" + url.Values{"orderNumber": {result.OrderNumber}}.Encode()
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *CheckoutHandler) redirectFailure(w http.ResponseWriter, r *http.Request, reason string) {
	target := h.storefront + failurePath + "?" + url.Values{"errorMessage": {reason}}.Encode()
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Installments handles GET /api/payments/installments?bin=&amount= requests.
// An unusable query yields an empty plan list rather than an error.
func (h *CheckoutHandler) Installments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amount, err := decimal.NewFromString(strings.TrimSpace(q.Get("amount")))
	if err != nil {
		amount = decimal.Zero
	}

	resp := h.service.GetInstallments(r.Context(), strings.TrimSpace(q.Get("bin")), amount)
	writeJSON(w, http.StatusOK, resp)
}

// clientIP returns the caller address without its port. RealIP middleware
// has already replaced RemoteAddr when a proxy header was present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
