// Package mailer delivers outbound email, either directly over SMTP or by
// handing it to a NATS relay.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"
)

type Message struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var resetTemplate = template.Must(template.New("reset").Parse(`<h1>Password Reset Request</h1>
<p>You requested a password reset. Click the link below to reset your password:</p>
<a href="{{.URL}}">Reset Password</a>
<p>If you didn't request this, please ignore this email.</p>
<p>This link will expire in {{.Expiry}}.</p>
`))

// ResetPasswordMessage renders the reset email pointing at resetURL.
func ResetPasswordMessage(to, resetURL string, ttl time.Duration) (Message, error) {
	var body bytes.Buffer
	err := resetTemplate.Execute(&body, struct {
		URL    string
		Expiry string
	}{URL: resetURL, Expiry: humanDuration(ttl)})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render reset email: %w", err)
	}

	return Message{
		To:      to,
		Subject: "Password Reset Request",
		HTML:    body.String(),
	}, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
