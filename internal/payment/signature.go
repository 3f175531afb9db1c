package payment

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// sign returns hex(hmac-sha256(secret, message)).
func sign(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// requestSignature signs an outbound request.
func requestSignature(secret, randomKey, path string, body []byte) string {
	return sign(secret, randomKey+path+string(body))
}

// CallbackSignature is the signature the gateway attaches to a callback.
func CallbackSignature(secret string, p CallbackPayload) string {
	return sign(secret, strings.Join([]string{
		p.ConversationData,
		p.ConversationID,
		p.MDStatus,
		p.PaymentID,
		p.Status,
	}, ":"))
}

// validCallbackSignature compares in constant time. Upper-case hex is accepted.
func validCallbackSignature(secret string, p CallbackPayload) bool {
	if p.Signature == "" {
		return false
	}
	expected := CallbackSignature(secret, p)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(p.Signature)))
}

func newRandomKey() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		panic("payment: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// MaskCardNumber keeps the BIN and the last four digits.
func MaskCardNumber(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) < 10 {
		return strings.Repeat("*", len(digits))
	}
	return digits[:6] + strings.Repeat("*", len(digits)-10) + digits[len(digits)-4:]
}
