package service

import (
	"context"
	"html"
	"strings"

	"hirdavat/internal/model"
	"hirdavat/internal/notify"
	"hirdavat/internal/payment"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// maxReasonRunes caps the stored and emailed cancellation reason.
const maxReasonRunes = 500

const (
	msgCancelled         = "Siparişiniz iptal edildi."
	msgCancelledRefunded = "Siparişiniz iptal edildi. İade işleminiz başlatıldı; tutarın kartınıza yansıması bankanıza bağlı olarak birkaç iş günü sürebilir."
)

// cancellationService implements CancellationService.
type cancellationService struct {
	ledger     OrderLedger
	gateway    payment.Gateway
	notifier   Notifier
	dispatcher Dispatcher
	validator  *RequestValidator
	policy     *bluemonday.Policy
	logger     zerolog.Logger
}

// NewCancellationService creates the cancellation workflow.
func NewCancellationService(
	ledger OrderLedger,
	gateway payment.Gateway,
	notifier Notifier,
	dispatcher Dispatcher,
	validator *RequestValidator,
	logger zerolog.Logger,
) CancellationService {
	return &cancellationService{
		ledger:     ledger,
		gateway:    gateway,
		notifier:   notifier,
		dispatcher: dispatcher,
		validator:  validator,
		policy:     bluemonday.StrictPolicy(),
		logger:     logger.With().Str("service", "cancellation").Logger(),
	}
}

// Cancel cancels the order behind a tracking token. A paid order gets a
// best-effort refund; refund failure is logged and recorded, never returned.
func (s *cancellationService) Cancel(ctx context.Context, req *model.CancelRequest) (*model.CancelResponse, error) {
	if req == nil {
		return nil, &model.ValidationError{Fields: []model.FieldError{{Field: "token", Message: "is required"}}}
	}
	if err := s.validator.Validate(req); err != nil {
		s.logger.Warn().Err(err).Msg("cancel request rejected")
		return nil, err
	}

	order, err := s.ledger.GetByTrackingToken(ctx, req.Token)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load order by tracking token")
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	logger := s.logger.With().Str("order_number", order.OrderNumber).Logger()

	if err := cancellationError(order.Status); err != nil {
		logger.Warn().Str("status", string(order.Status)).Msg("cancellation refused")
		return nil, err
	}

	reason := s.sanitizeReason(req.Reason)

	refund := notify.Cancellation{Reason: reason}
	if order.PaymentStatus == model.PaymentStatusSuccess && order.HasPaymentToken() {
		refund.RefundAttempted = true
		outcome, err := s.gateway.Refund(ctx, *order.PaymentToken, reason)
		refund.RefundSucceeded = err == nil && outcome.Succeeded
		if !refund.RefundSucceeded {
			logger.Error().
				Err(err).
				Str("payment_id", *order.PaymentToken).
				Str("gateway_message", outcome.Message).
				Msg("refund failed, manual reconciliation required")
		}
	}

	cancelled, err := s.ledger.Cancel(ctx, order.ID, reason)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to cancel order")
		return nil, err
	}

	if refund.RefundAttempted {
		status := model.RefundStatusFailed
		if refund.RefundSucceeded {
			status = model.RefundStatusRequested
		}
		if err := s.ledger.RecordRefund(ctx, order.ID, status); err != nil {
			logger.Error().Err(err).Str("refund_status", string(status)).Msg("failed to record refund outcome")
		}
	}

	s.dispatcher.Dispatch("order-cancellation", func(ctx context.Context) error {
		return s.notifier.OrderCancelled(ctx, cancelled, refund)
	})

	message := msgCancelled
	if refund.RefundAttempted {
		message = msgCancelledRefunded
	}

	logger.Info().
		Bool("refund_attempted", refund.RefundAttempted).
		Bool("refund_succeeded", refund.RefundSucceeded).
		Msg("order cancelled by customer")

	return &model.CancelResponse{Status: model.StatusSuccess, Message: message}, nil
}

// sanitizeReason strips markup and returns plain text; the email template
// escapes it again on output.
func (s *cancellationService) sanitizeReason(reason string) string {
	plain := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(reason)))
	plain = strings.Join(strings.Fields(plain), " ")
	if r := []rune(plain); len(r) > maxReasonRunes {
		plain = string(r[:maxReasonRunes])
	}
	return plain
}
