// Package notify delivers password reset codes by email.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"net/url"
	"strconv"

	"github.com/dajohi/goemail"
	"github.com/samber/oops"
)

const (
	resetSubject  = "Password Reset Code"
	resetTemplate = "Your password reset code is: %s\nThis code is valid for 15 minutes."
)

// Transport hands a composed message to a mail relay.
type Transport interface {
	Send(from, to, subject, body string) error
}

// smtpTransport relays through an authenticated SMTP server. The tls://
// scheme refuses relays that do not offer STARTTLS.
type smtpTransport struct {
	client *goemail.SMTP
}

func (t *smtpTransport) Send(from, to, subject, body string) error {
	msg := goemail.NewMessage(from, subject, body)
	msg.AddTo(to)
	return t.client.Send(msg)
}

// NewSMTPTransport builds a goemail client for host:port authenticated with
// user/password.
func NewSMTPTransport(host string, port int, user, password string) (Transport, error) {
	client, err := goemail.NewSMTP(relayURL(host, port, user, password), &tls.Config{ServerName: host})
	if err != nil {
		return nil, oops.Code("NOTIFY_SETUP_FAILED").With("host", host).Wrap(err)
	}
	return &smtpTransport{client: client}, nil
}

func relayURL(host string, port int, user, password string) string {
	u := url.URL{
		Scheme: "tls",
		User:   url.UserPassword(user, password),
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
	}
	return u.String()
}

// Mailer sends reset codes from a fixed address.
type Mailer struct {
	transport Transport
	from      string
}

// NewMailer validates the sender address.
func NewMailer(t Transport, from string) (*Mailer, error) {
	a, err := mail.ParseAddress(from)
	if err != nil {
		return nil, oops.Code("NOTIFY_SETUP_FAILED").With("from", from).Wrap(err)
	}
	return &Mailer{transport: t, from: a.Address}, nil
}

// SendResetCode mails code to the given address. It does not retry.
// The transport has no deadline of its own, so the call returns ctx.Err()
// once ctx ends and the send finishes in the background.
func (m *Mailer) SendResetCode(ctx context.Context, to, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("recipient %q: %w", to, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.transport.Send(m.from, to, resetSubject, ResetCodeBody(code))
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ResetCodeBody renders the message text. The validity window is only
// stated, nothing enforces it.
func ResetCodeBody(code string) string {
	return fmt.Sprintf(resetTemplate, code)
}
