package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"hirdavat/internal/model"

	"github.com/go-playground/validator/v10"
)

// trMobile is an 11-digit Turkish mobile number as typed by customers.
var trMobile = regexp.MustCompile(`^0\d{10}$`)

// RequestValidator checks request payloads against their struct tags and
// reports failures with JSON field paths.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator registers the custom rules used by the API payloads.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("trmobile", func(fl validator.FieldLevel) bool {
		return trMobile.MatchString(strings.TrimSpace(fl.Field().String()))
	}); err != nil {
		panic(fmt.Sprintf("register trmobile validation: %v", err))
	}

	v.RegisterStructValidation(corporateInvoiceRule, model.InvoiceInfoRequest{})

	return &RequestValidator{v: v}
}

// corporateInvoiceRule requires every billing field once isCorporate is set.
// The failure is reported on companyName.
func corporateInvoiceRule(sl validator.StructLevel) {
	inv := sl.Current().Interface().(model.InvoiceInfoRequest)
	if !inv.IsCorporate {
		return
	}
	if strings.TrimSpace(inv.CompanyName) == "" ||
		strings.TrimSpace(inv.TaxOffice) == "" ||
		strings.TrimSpace(inv.TaxNumber) == "" {
		sl.ReportError(inv.CompanyName, "companyName", "CompanyName", "corporate", "")
	}
}

// Validate returns nil or a *model.ValidationError.
func (rv *RequestValidator) Validate(s any) error {
	err := rv.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &model.ValidationError{Fields: []model.FieldError{{Field: "", Message: err.Error()}}}
	}

	fields := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, model.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: fieldMessage(fe),
		})
	}
	return &model.ValidationError{Fields: fields}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "trmobile":
		return "must be an 11-digit mobile number starting with 0"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "numeric":
		return "must contain digits only"
	case "uuid":
		return "must be a valid UUID"
	case "corporate":
		return "company name, tax office and tax number are required for corporate invoices"
	default:
		return "is invalid"
	}
}
