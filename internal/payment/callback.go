package payment

import (
	"net/url"
	"strings"
)

// Gateway callback status values.
const (
	statusSuccess = "success"
	statusFailure = "failure"

	// mdStatusAuthenticated is the only 3-D-Secure result that allows capture.
	mdStatusAuthenticated = "1"
)

// CallbackPayload is the form the gateway posts after the cardholder
// finishes (or abandons) bank verification.
type CallbackPayload struct {
	Status           string
	PaymentID        string
	ConversationID   string
	ConversationData string
	MDStatus         string
	Signature        string
	ErrorMessage     string
}

// ParseCallbackForm reads a callback from the posted form values.
func ParseCallbackForm(form url.Values) CallbackPayload {
	get := func(key string) string { return strings.TrimSpace(form.Get(key)) }
	return CallbackPayload{
		Status:           get("status"),
		PaymentID:        get("paymentId"),
		ConversationID:   get("conversationId"),
		ConversationData: get("conversationData"),
		MDStatus:         get("mdStatus"),
		Signature:        get("signature"),
		ErrorMessage:     get("errorMessage"),
	}
}

// Values encodes the payload back into form values.
func (p CallbackPayload) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("status", p.Status)
	set("paymentId", p.PaymentID)
	set("conversationId", p.ConversationID)
	set("conversationData", p.ConversationData)
	set("mdStatus", p.MDStatus)
	set("signature", p.Signature)
	set("errorMessage", p.ErrorMessage)
	return v
}

// mdStatusReason turns a failed 3-D-Secure result into a customer message.
func mdStatusReason(mdStatus string) string {
	switch mdStatus {
	case "0":
		return "3-D Secure doğrulaması başarısız"
	case "2", "3", "4":
		return "Kartınız 3-D Secure işlemine kayıtlı değil"
	case "5", "6", "7":
		return "Bankanız 3-D Secure doğrulamasını tamamlayamadı"
	case "8":
		return "Geçersiz kart bilgisi"
	default:
		return "3-D Secure doğrulaması tamamlanmadı"
	}
}
