package model

import (
	"fmt"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Status        string       `json:"status"`
	Code          string       `json:"code"`
	ErrorMessage  string       `json:"errorMessage"`
	Fields        []FieldError `json:"fields,omitempty"`
	Details       string       `json:"details,omitempty"`
	CorrelationID string       `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON                = "INVALID_JSON"
	ErrCodeValidation                 = "VALIDATION_ERROR"
	ErrCodeProductNotFound            = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidQuantity            = "INVALID_QUANTITY"
	ErrCodeWeightLimitExceeded        = "WEIGHT_LIMIT_EXCEEDED"
	ErrCodeUnshippableWeight          = "UNSHIPPABLE_WEIGHT"
	ErrCodeOrderNotFound              = "ORDER_NOT_FOUND"
	ErrCodeOrderNotPending            = "ORDER_NOT_PENDING"
	ErrCodeAlreadyCancelled           = "ALREADY_CANCELLED"
	ErrCodeNotCancellable             = "NOT_CANCELLABLE"
	ErrCodeReturnNotEligible          = "RETURN_NOT_ELIGIBLE"
	ErrCodeGatewayUnavailable         = "GATEWAY_UNAVAILABLE"
	ErrCodeGatewayRejected            = "GATEWAY_REJECTED"
	ErrCodeCallbackVerificationFailed = "CALLBACK_VERIFICATION_FAILED"
	ErrCodeUnauthorised               = "UNAUTHORIZED"
	ErrCodeInternalError              = "INTERNAL_ERROR"
)

// ErrorKind groups domain errors by how a caller should react to them.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindBusiness     ErrorKind = "business"
	KindPrecondition ErrorKind = "precondition"
	KindGateway      ErrorKind = "gateway"
	KindSystem       ErrorKind = "system"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
	Kind    ErrorKind
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors carrying a more specific message still match their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of the error with a more specific message.
func (e *DomainError) WithMessage(format string, args ...any) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
		Kind:    e.Kind,
	}
}

// Retriable reports whether the caller may retry the same request.
func (e *DomainError) Retriable() bool {
	return e.Kind == KindGateway || e.Kind == KindSystem
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, kind ErrorKind) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// Common domain errors
var (
	ErrValidation                 = NewDomainError(ErrCodeValidation, "Request validation failed", KindValidation)
	ErrProductNotFound            = NewDomainError(ErrCodeProductNotFound, "One or more products not found", KindValidation)
	ErrInvalidQuantity            = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero", KindValidation)
	ErrWeightLimitExceeded        = NewDomainError(ErrCodeWeightLimitExceeded, "Orders heavier than 100 kg cannot be shipped; please contact support for a quote", KindBusiness)
	ErrUnshippableWeight          = NewDomainError(ErrCodeUnshippableWeight, "No shipping rate is available for this cart weight; please contact support", KindBusiness)
	ErrOrderNotFound              = NewDomainError(ErrCodeOrderNotFound, "Order not found", KindPrecondition)
	ErrOrderNotPending            = NewDomainError(ErrCodeOrderNotPending, "Order is not awaiting payment", KindPrecondition)
	ErrAlreadyCancelled           = NewDomainError(ErrCodeAlreadyCancelled, "Order is already cancelled", KindPrecondition)
	ErrNotCancellable             = NewDomainError(ErrCodeNotCancellable, "Order can no longer be cancelled; please start a return instead", KindPrecondition)
	ErrReturnNotEligible          = NewDomainError(ErrCodeReturnNotEligible, "Order is not eligible for return", KindPrecondition)
	ErrGatewayUnavailable         = NewDomainError(ErrCodeGatewayUnavailable, "Payment provider is unavailable, please try again", KindGateway)
	ErrGatewayRejected            = NewDomainError(ErrCodeGatewayRejected, "Payment was rejected by the provider", KindGateway)
	ErrCallbackVerificationFailed = NewDomainError(ErrCodeCallbackVerificationFailed, "Payment confirmation could not be verified", KindGateway)
)

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level detail for a malformed request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
