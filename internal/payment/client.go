package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"hirdavat/internal/config"
	"hirdavat/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	pathInitialize   = "/payment/3dsecure/initialize"
	pathAuth         = "/payment/3dsecure/auth"
	pathCancel       = "/payment/cancel"
	pathInstallments = "/payment/iyzipos/installment"

	// placeholderIdentityNumber is accepted by the gateway for guest buyers
	// who did not enter a national id.
	placeholderIdentityNumber = "11111111111"

	maxResponseBytes = 1 << 20
)

// Client is the HTTP implementation of Gateway.
type Client struct {
	baseURL     string
	apiKey      string
	secretKey   string
	callbackURL string
	httpClient  *http.Client
	randomKey   func() string
	logger      zerolog.Logger
}

// Option customises the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithRandomKey overrides the per-request random key generator.
func WithRandomKey(fn func() string) Option {
	return func(cl *Client) { cl.randomKey = fn }
}

// NewClient creates a gateway client.
func NewClient(cfg config.GatewayConfig, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		secretKey:   cfg.SecretKey,
		callbackURL: cfg.CallbackURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		randomKey:   newRandomKey,
		logger:      logger.With().Str("component", "payment-gateway").Logger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// baseResponse is embedded in every gateway reply.
type baseResponse struct {
	Status         string `json:"status"`
	ErrorCode      string `json:"errorCode,omitempty"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
}

func (r baseResponse) failed() bool { return r.Status != statusSuccess }

type address struct {
	ContactName string `json:"contactName"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Address     string `json:"address"`
	ZipCode     string `json:"zipCode,omitempty"`
}

type initializeRequest struct {
	Locale          string          `json:"locale"`
	ConversationID  string          `json:"conversationId"`
	Price           string          `json:"price"`
	PaidPrice       string          `json:"paidPrice"`
	Currency        string          `json:"currency"`
	Installment     int             `json:"installment"`
	BasketID        string          `json:"basketId"`
	PaymentChannel  string          `json:"paymentChannel"`
	PaymentGroup    string          `json:"paymentGroup"`
	CallbackURL     string          `json:"callbackUrl"`
	PaymentCard     paymentCard     `json:"paymentCard"`
	Buyer           buyer           `json:"buyer"`
	ShippingAddress address         `json:"shippingAddress"`
	BillingAddress  address         `json:"billingAddress"`
	BasketItems     []basketItemDTO `json:"basketItems"`
}

type paymentCard struct {
	CardHolderName string `json:"cardHolderName"`
	CardNumber     string `json:"cardNumber"`
	ExpireMonth    string `json:"expireMonth"`
	ExpireYear     string `json:"expireYear"`
	CVC            string `json:"cvc"`
	RegisterCard   int    `json:"registerCard"`
}

type buyer struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Surname             string `json:"surname"`
	GSMNumber           string `json:"gsmNumber"`
	Email               string `json:"email"`
	IdentityNumber      string `json:"identityNumber"`
	RegistrationAddress string `json:"registrationAddress"`
	IP                  string `json:"ip"`
	City                string `json:"city"`
	Country             string `json:"country"`
	ZipCode             string `json:"zipCode,omitempty"`
}

type basketItemDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category1 string `json:"category1"`
	ItemType  string `json:"itemType"`
	Price     string `json:"price"`
}

type initializeResponse struct {
	baseResponse
	ThreeDSHTMLContent string `json:"threeDSHtmlContent"`
	PaymentID          string `json:"paymentId"`
}

// StartPayment calls the 3-D-Secure initialize endpoint.
func (c *Client) StartPayment(ctx context.Context, req StartRequest) (StartResult, error) {
	logger := c.logger.With().
		Str("order_number", req.OrderNumber).
		Str("card", MaskCardNumber(req.Card.Number)).
		Logger()

	body := c.initializeBody(req)

	var resp initializeResponse
	if err := c.post(ctx, pathInitialize, body, &resp); err != nil {
		logger.Error().Err(err).Msg("payment initialize call failed")
		return StartResult{}, err
	}

	if resp.failed() {
		logger.Warn().
			Str("error_code", resp.ErrorCode).
			Str("error_message", resp.ErrorMessage).
			Msg("payment initialize rejected")
		return StartResult{}, rejected(resp.ErrorMessage)
	}

	html, err := base64.StdEncoding.DecodeString(resp.ThreeDSHTMLContent)
	if err != nil || len(html) == 0 {
		logger.Error().Err(err).Msg("gateway returned an unusable 3-D Secure form")
		return StartResult{}, fmt.Errorf("%w: invalid 3-D Secure form", model.ErrGatewayUnavailable)
	}

	logger.Info().Str("payment_id", resp.PaymentID).Msg("3-D Secure payment initialised")

	return StartResult{HTML: string(html), CorrelationID: resp.PaymentID}, nil
}

func (c *Client) initializeBody(req StartRequest) initializeRequest {
	b := req.Buyer
	identity := b.IdentityNumber
	if identity == "" {
		identity = placeholderIdentityNumber
	}
	contact := strings.TrimSpace(b.FirstName + " " + b.LastName)
	addr := address{ContactName: contact, City: b.City, Country: "Turkey", Address: b.Address, ZipCode: b.ZipCode}

	holder := req.Card.HolderName
	if holder == "" {
		holder = contact
	}

	items := make([]basketItemDTO, 0, len(req.Items))
	for _, item := range req.Items {
		category := item.Category
		if category == "" {
			category = "Genel"
		}
		items = append(items, basketItemDTO{
			ID:        item.ID,
			Name:      item.Name,
			Category1: category,
			ItemType:  "PHYSICAL",
			Price:     formatAmount(item.Price),
		})
	}

	amount := formatAmount(req.Amount)
	return initializeRequest{
		Locale:         "tr",
		ConversationID: req.OrderNumber,
		Price:          amount,
		PaidPrice:      amount,
		Currency:       "TRY",
		Installment:    1,
		BasketID:       req.OrderID.String(),
		PaymentChannel: "WEB",
		PaymentGroup:   "PRODUCT",
		CallbackURL:    c.callbackURL,
		PaymentCard: paymentCard{
			CardHolderName: holder,
			CardNumber:     req.Card.Number,
			ExpireMonth:    req.Card.ExpireMonth,
			ExpireYear:     req.Card.ExpireYear,
			CVC:            req.Card.CVC,
		},
		Buyer: buyer{
			ID:                  b.ID,
			Name:                b.FirstName,
			Surname:             b.LastName,
			GSMNumber:           b.Phone,
			Email:               b.Email,
			IdentityNumber:      identity,
			RegistrationAddress: b.Address,
			IP:                  b.IP,
			City:                b.City,
			Country:             "Turkey",
			ZipCode:             b.ZipCode,
		},
		ShippingAddress: addr,
		BillingAddress:  addr,
		BasketItems:     items,
	}
}

type authRequest struct {
	Locale           string `json:"locale"`
	ConversationID   string `json:"conversationId"`
	PaymentID        string `json:"paymentId"`
	ConversationData string `json:"conversationData,omitempty"`
}

type authResponse struct {
	baseResponse
	PaymentID string `json:"paymentId"`
	PaidPrice string `json:"paidPrice"`
}

// VerifyCallback checks the callback signature before trusting any field,
// then captures the payment.
func (c *Client) VerifyCallback(ctx context.Context, p CallbackPayload) Outcome {
	logger := c.logger.With().
		Str("conversation_id", p.ConversationID).
		Str("payment_id", p.PaymentID).
		Logger()

	fail := func(reason string, err error) Outcome {
		return Outcome{
			OrderNumber:   p.ConversationID,
			CorrelationID: p.PaymentID,
			Reason:        reason,
			Err:           err,
		}
	}

	if !validCallbackSignature(c.secretKey, p) {
		logger.Error().
			Bool("security", true).
			Bool("signature_present", p.Signature != "").
			Str("claimed_status", p.Status).
			Msg("callback signature verification failed")
		return fail(model.ErrCallbackVerificationFailed.Message, model.ErrCallbackVerificationFailed)
	}

	if p.Status != statusSuccess {
		reason := p.ErrorMessage
		if reason == "" {
			reason = "Ödeme işlemi başarısız oldu"
		}
		logger.Warn().Str("status", p.Status).Str("reason", reason).Msg("gateway reported payment failure")
		return fail(reason, model.ErrGatewayRejected)
	}

	if p.MDStatus != mdStatusAuthenticated {
		reason := mdStatusReason(p.MDStatus)
		logger.Warn().Str("md_status", p.MDStatus).Msg("3-D Secure authentication not completed")
		return fail(reason, model.ErrGatewayRejected)
	}

	var resp authResponse
	err := c.post(ctx, pathAuth, authRequest{
		Locale:           "tr",
		ConversationID:   p.ConversationID,
		PaymentID:        p.PaymentID,
		ConversationData: p.ConversationData,
	}, &resp)
	if err != nil {
		logger.Error().Err(err).Msg("payment capture call failed")
		return fail(model.ErrGatewayUnavailable.Message, err)
	}

	if resp.failed() {
		logger.Warn().
			Str("error_code", resp.ErrorCode).
			Str("error_message", resp.ErrorMessage).
			Msg("payment capture rejected")
		return fail(resp.ErrorMessage, rejected(resp.ErrorMessage))
	}

	if resp.ConversationID != "" && resp.ConversationID != p.ConversationID {
		logger.Error().
			Bool("security", true).
			Str("auth_conversation_id", resp.ConversationID).
			Msg("capture response belongs to a different conversation")
		return fail(model.ErrCallbackVerificationFailed.Message, model.ErrCallbackVerificationFailed)
	}

	correlationID := resp.PaymentID
	if correlationID == "" {
		correlationID = p.PaymentID
	}

	logger.Info().Str("paid_price", resp.PaidPrice).Msg("payment captured")

	return Outcome{
		Success:       true,
		OrderNumber:   p.ConversationID,
		CorrelationID: correlationID,
	}
}

type cancelRequest struct {
	Locale         string `json:"locale"`
	ConversationID string `json:"conversationId"`
	PaymentID      string `json:"paymentId"`
	Reason         string `json:"reason"`
	Description    string `json:"description,omitempty"`
}

// Refund cancels the captured payment identified by correlationID.
func (c *Client) Refund(ctx context.Context, correlationID, reason string) (RefundOutcome, error) {
	logger := c.logger.With().Str("payment_id", correlationID).Logger()

	var resp baseResponse
	err := c.post(ctx, pathCancel, cancelRequest{
		Locale:         "tr",
		ConversationID: correlationID,
		PaymentID:      correlationID,
		Reason:         "buyer_request",
		Description:    reason,
	}, &resp)
	if err != nil {
		logger.Error().Err(err).Msg("refund call failed")
		return RefundOutcome{Message: model.ErrGatewayUnavailable.Message}, err
	}

	if resp.failed() {
		logger.Warn().
			Str("error_code", resp.ErrorCode).
			Str("error_message", resp.ErrorMessage).
			Msg("refund rejected")
		return RefundOutcome{Message: resp.ErrorMessage}, rejected(resp.ErrorMessage)
	}

	logger.Info().Msg("refund accepted")
	return RefundOutcome{Succeeded: true, Message: "İade talebiniz bankanıza iletildi"}, nil
}

type installmentRequest struct {
	Locale         string `json:"locale"`
	ConversationID string `json:"conversationId"`
	BinNumber      string `json:"binNumber"`
	Price          string `json:"price"`
}

type installmentResponse struct {
	baseResponse
	InstallmentDetails []struct {
		BankName          string `json:"bankName"`
		InstallmentPrices []struct {
			InstallmentNumber int             `json:"installmentNumber"`
			InstallmentPrice  decimal.Decimal `json:"installmentPrice"`
			TotalPrice        decimal.Decimal `json:"totalPrice"`
		} `json:"installmentPrices"`
	} `json:"installmentDetails"`
}

// GetInstallmentOptions asks the gateway which installment plans the card
// BIN supports for amount.
func (c *Client) GetInstallmentOptions(ctx context.Context, bin string, amount decimal.Decimal) (model.InstallmentResponse, error) {
	var resp installmentResponse
	err := c.post(ctx, pathInstallments, installmentRequest{
		Locale:         "tr",
		ConversationID: "installment-" + bin,
		BinNumber:      bin,
		Price:          formatAmount(amount),
	}, &resp)
	if err != nil {
		return model.InstallmentResponse{}, err
	}
	if resp.failed() {
		return model.InstallmentResponse{}, rejected(resp.ErrorMessage)
	}

	out := model.InstallmentResponse{Installments: []model.Installment{}}
	if len(resp.InstallmentDetails) == 0 {
		return out, nil
	}

	detail := resp.InstallmentDetails[0]
	out.BankName = detail.BankName
	for _, p := range detail.InstallmentPrices {
		out.Installments = append(out.Installments, model.Installment{
			Count:        p.InstallmentNumber,
			InstallPrice: p.InstallmentPrice,
			TotalPrice:   p.TotalPrice,
		})
	}
	return out, nil
}

// post sends a signed JSON request and decodes the reply into out. Transport
// problems, 5xx replies and undecodable bodies wrap model.ErrGatewayUnavailable.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create gateway request: %w", err)
	}

	randomKey := c.randomKey()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-random-key", randomKey)
	req.Header.Set("Authorization", "HMAC "+c.apiKey+":"+requestSignature(c.secretKey, randomKey, path, body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", model.ErrGatewayUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: gateway status %d: %s", model.ErrGatewayUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode gateway response (status %d): %v", model.ErrGatewayUnavailable, resp.StatusCode, err)
	}

	return nil
}

func rejected(message string) error {
	if message == "" {
		return model.ErrGatewayRejected
	}
	return model.ErrGatewayRejected.WithMessage("%s", message)
}

// formatAmount renders a currency value the way the gateway expects ("314.99").
func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

var _ Gateway = (*Client)(nil)
