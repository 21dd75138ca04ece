package notifier

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var subjects = map[Kind]string{
	KindSubscriptionExpiring: "Pengingat: Subscription Anda Akan Kedaluwarsa Besok",
	KindSubscriptionExpired:  "Pemberitahuan: Subscription Anda Telah Kedaluwarsa",
}

const layout = `<!DOCTYPE html>
<html lang="id">
<head><meta charset="UTF-8"><title>{{.Subject}}</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 8px; overflow: hidden;">
    <div style="background-color: #1e3a8a; color: #ffffff; padding: 20px; text-align: center;">
      <h1 style="margin: 0;">KU MONEY</h1>
    </div>
    <div style="padding: 24px; color: #333333; line-height: 1.6;">
      {{template "content" .}}
      <p style="text-align: center; margin: 32px 0;">
        <a href="{{.SubscriptionURL}}" style="background-color: #1e3a8a; color: #ffffff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Kelola Subscription</a>
      </p>
      <p>Terima kasih telah menggunakan KU MONEY.</p>
    </div>
  </div>
</body>
</html>`

var contents = map[Kind]string{
	KindSubscriptionExpiring: `{{define "content"}}
      <p>Halo {{.Name}},</p>
      <p>Subscription KU MONEY Anda akan kedaluwarsa besok, <strong>{{.ExpiresAt}}</strong>.</p>
      <p>Perpanjang sekarang agar Anda tetap dapat menikmati semua fitur tanpa gangguan.</p>
{{end}}`,
	KindSubscriptionExpired: `{{define "content"}}
      <p>Halo {{.Name}},</p>
      <p>Subscription KU MONEY Anda telah kedaluwarsa pada <strong>{{.ExpiresAt}}</strong>.</p>
      <p>Perbarui subscription Anda untuk kembali menggunakan semua fitur premium.</p>
{{end}}`,
}

type templateData struct {
	Subject         string
	Name            string
	ExpiresAt       string
	SubscriptionURL string
}

// Renderer turns a Message into a subject and HTML body.
type Renderer struct {
	subscriptionURL string
	templates       map[Kind]*template.Template
}

// NewRenderer parses every template. clientURL is the web client base URL.
func NewRenderer(clientURL string) (*Renderer, error) {
	r := &Renderer{
		subscriptionURL: clientURL + "/app/subscription",
		templates:       make(map[Kind]*template.Template, len(contents)),
	}
	for kind, content := range contents {
		tmpl, err := template.New(string(kind)).Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
		if _, err := tmpl.Parse(content); err != nil {
			return nil, fmt.Errorf("parse %s template: %w", kind, err)
		}
		r.templates[kind] = tmpl
	}
	return r, nil
}

// Render returns the subject and HTML body for msg.
func (r *Renderer) Render(msg Message) (string, string, error) {
	tmpl, ok := r.templates[msg.Kind]
	if !ok {
		return "", "", fmt.Errorf("unknown email kind %q", msg.Kind)
	}

	data := templateData{
		Subject:         subjects[msg.Kind],
		Name:            msg.Data[DataName],
		ExpiresAt:       msg.Data[DataExpiresAt],
		SubscriptionURL: r.subscriptionURL,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", msg.Kind, err)
	}
	return data.Subject, buf.String(), nil
}

var monthsID = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatDate renders t in loc as an Indonesian long date, e.g. "2 Mei 2025".
func FormatDate(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return fmt.Sprintf("%d %s %d", t.Day(), monthsID[t.Month()-1], t.Year())
}
