package service

import (
	"strings"
	"unicode"

	"hirdavat/internal/model"
)

// NormalizePhone converts a Turkish mobile number to +90XXXXXXXXXX. Input
// that does not look like one is returned trimmed but otherwise unchanged.
func NormalizePhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "90"):
		return "+" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return "+90" + digits[1:]
	case len(digits) == 10 && strings.HasPrefix(digits, "5"):
		return "+90" + digits
	default:
		return strings.TrimSpace(phone)
	}
}

// SplitName treats the last whitespace-delimited token as the surname.
// Multi-word surnames end up partly in the first name; this is a known
// limitation of taking a single name field. A single token fills both.
func SplitName(full string) (first, last string) {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], fields[0]
	default:
		return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
	}
}

// customerFromGuest builds the stored customer snapshot.
func customerFromGuest(g model.GuestInfo) model.Customer {
	full := strings.Join(strings.Fields(g.Name), " ")
	first, last := SplitName(full)
	return model.Customer{
		FullName:  full,
		FirstName: first,
		LastName:  last,
		Email:     strings.ToLower(strings.TrimSpace(g.Email)),
		Phone:     NormalizePhone(g.Phone),
		Address:   strings.TrimSpace(g.Address),
		City:      strings.TrimSpace(g.City),
		District:  strings.TrimSpace(g.District),
		ZipCode:   strings.TrimSpace(g.ZipCode),
	}
}

func invoiceFromRequest(req *model.InvoiceInfoRequest) model.Invoice {
	if req == nil || !req.IsCorporate {
		return model.Invoice{}
	}
	return model.Invoice{
		IsCorporate: true,
		CompanyName: strings.TrimSpace(req.CompanyName),
		TaxOffice:   strings.TrimSpace(req.TaxOffice),
		TaxNumber:   strings.TrimSpace(req.TaxNumber),
	}
}
