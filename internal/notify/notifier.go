package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"hirdavat/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Cancellation describes a completed cancellation for the customer email.
type Cancellation struct {
	Reason          string
	RefundAttempted bool
	RefundSucceeded bool
}

var funcMap = template.FuncMap{
	"money": func(d decimal.Decimal) string {
		return strings.Replace(d.StringFixed(2), ".", ",", 1) + " TL"
	},
	"shipping": func(d *decimal.Decimal) string {
		if d == nil {
			return "Ayrıca bildirilecek"
		}
		if d.IsZero() {
			return "Ücretsiz"
		}
		return strings.Replace(d.StringFixed(2), ".", ",", 1) + " TL"
	},
}

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html lang="tr">
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="font-family:Arial,sans-serif;color:#222">
{{template "body" .}}
<p style="color:#777;font-size:12px">Bu e-posta sipariş işleminiz nedeniyle otomatik olarak gönderilmiştir.</p>
</body>
</html>{{end}}`

const confirmationTemplate = `{{define "body"}}
<h2>Siparişiniz alındı</h2>
<p>Merhaba {{.Order.Customer.FirstName}},</p>
<p><strong>{{.Order.OrderNumber}}</strong> numaralı siparişinizin ödemesi onaylandı ve hazırlanmaya başlandı.</p>
<table cellpadding="6" style="border-collapse:collapse">
<tr><th align="left">Ürün</th><th>Adet</th><th align="right">Birim</th><th align="right">Tutar</th></tr>
{{range .Order.Items}}<tr><td>{{.Name}}</td><td align="center">{{.Quantity}}</td><td align="right">{{money .UnitPrice}}</td><td align="right">{{money .LineTotal}}</td></tr>
{{end}}</table>
<p>Ara toplam: {{money .Order.Subtotal}}<br>
Kargo: {{shipping .Order.ShippingFee}}<br>
<strong>Toplam: {{money .Order.TotalAmount}}</strong></p>
<p>Teslimat adresi: {{.Order.Customer.District}} / {{.Order.Customer.City}}</p>
<p><a href="{{.TrackingURL}}">Siparişinizi takip edin</a></p>
{{end}}`

const cancellationTemplate = `{{define "body"}}
<h2>Siparişiniz iptal edildi</h2>
<p>Merhaba {{.Order.Customer.FirstName}},</p>
<p><strong>{{.Order.OrderNumber}}</strong> numaralı siparişiniz talebiniz üzerine iptal edildi.</p>
{{if .Cancellation.Reason}}<p>İptal nedeni: {{.Cancellation.Reason}}</p>{{end}}
{{if .Cancellation.RefundAttempted}}<p>{{money .Order.TotalAmount}} tutarındaki iade işleminiz başlatıldı. Tutarın kartınıza yansıması bankanıza bağlı olarak birkaç iş günü sürebilir.</p>{{end}}
<p><a href="{{.TrackingURL}}">Sipariş detayları</a></p>
{{end}}`

type emailData struct {
	Subject      string
	Order        *model.Order
	Cancellation Cancellation
	TrackingURL  string
}

// Notifier renders customer emails and hands them to a Sender.
type Notifier struct {
	sender        Sender
	storefrontURL string
	confirmation  *template.Template
	cancellation  *template.Template
	logger        zerolog.Logger
}

// NewNotifier creates a notifier. storefrontURL is used to build tracking links.
func NewNotifier(sender Sender, storefrontURL string, logger zerolog.Logger) *Notifier {
	return &Notifier{
		sender:        sender,
		storefrontURL: strings.TrimRight(storefrontURL, "/"),
		confirmation:  mustParse("confirmation", confirmationTemplate),
		cancellation:  mustParse("cancellation", cancellationTemplate),
		logger:        logger.With().Str("component", "notifier").Logger(),
	}
}

func mustParse(name, body string) *template.Template {
	t := template.Must(template.New(name).Funcs(funcMap).Parse(layoutTemplate))
	return template.Must(t.Parse(body))
}

// OrderConfirmed sends the order confirmation with the line item snapshot.
func (n *Notifier) OrderConfirmed(ctx context.Context, order *model.Order) error {
	data := emailData{
		Subject: fmt.Sprintf("Siparişiniz onaylandı (#%s)", order.OrderNumber),
		Order:   order,
	}
	return n.send(ctx, n.confirmation, data)
}

// OrderCancelled sends the cancellation notice. The reason is escaped by the
// template; callers are expected to have stripped markup already.
func (n *Notifier) OrderCancelled(ctx context.Context, order *model.Order, c Cancellation) error {
	data := emailData{
		Subject:      fmt.Sprintf("Siparişiniz iptal edildi (#%s)", order.OrderNumber),
		Order:        order,
		Cancellation: c,
	}
	return n.send(ctx, n.cancellation, data)
}

func (n *Notifier) send(ctx context.Context, t *template.Template, data emailData) error {
	if data.Order.Customer.Email == "" {
		return fmt.Errorf("order %s has no email address", data.Order.OrderNumber)
	}
	data.TrackingURL = n.trackingURL(data.Order.TrackingToken)

	var body bytes.Buffer
	if err := t.ExecuteTemplate(&body, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s email: %w", t.Name(), err)
	}

	msg := Message{To: data.Order.Customer.Email, Subject: data.Subject, HTML: body.String()}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %s email: %w", t.Name(), err)
	}

	n.logger.Debug().
		Str("order_number", data.Order.OrderNumber).
		Str("template", t.Name()).
		Msg("notification delivered")
	return nil
}

func (n *Notifier) trackingURL(token string) string {
	return n.storefrontURL + "/siparis-takip/" + url.PathEscape(token)
}
