// Package mail delivers alert e-mail over SMTP, or only logs it when SMTP is not configured.
package mail

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/ports"
)

type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// RequireTLS fails the send when STARTTLS is unavailable; otherwise TLS is opportunistic.
	RequireTLS bool
	Timeout    time.Duration
}

// New returns an SMTP mailer when credentials are set, else a LogMailer.
func New(ctx context.Context, opts Options) ports.Mailer {
	if strings.TrimSpace(opts.Username) == "" || strings.TrimSpace(opts.Password) == "" {
		logging.Warn(logging.With(ctx, "mail"), "smtp credentials not set, alert e-mail will only be logged")
		return LogMailer{}
	}
	return &SMTPMailer{opts: opts}
}

type SMTPMailer struct {
	opts Options
}

var _ ports.Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(opts Options) *SMTPMailer {
	return &SMTPMailer{opts: opts}
}

func (m *SMTPMailer) Send(ctx context.Context, msg ports.MailMessage) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	message, err := m.buildMessage(msg)
	if err != nil {
		return err
	}

	tlsPolicy := gomail.TLSOpportunistic
	if m.opts.RequireTLS {
		tlsPolicy = gomail.TLSMandatory
	}
	clientOpts := []gomail.Option{
		gomail.WithPort(m.opts.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.opts.Username),
		gomail.WithPassword(m.opts.Password),
		gomail.WithTLSPolicy(tlsPolicy),
	}
	if m.opts.Timeout > 0 {
		clientOpts = append(clientOpts, gomail.WithTimeout(m.opts.Timeout))
	}

	client, err := gomail.NewClient(m.opts.Host, clientOpts...)
	if err != nil {
		return errs.Transport(err, "create smtp client")
	}
	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return errs.Transport(err, "send smtp message")
	}

	logging.Info(logging.With(ctx, "mail"), "alert e-mail sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}

func (m *SMTPMailer) buildMessage(msg ports.MailMessage) (*gomail.Msg, error) {
	from := m.opts.From
	if strings.TrimSpace(from) == "" {
		from = m.opts.Username
	}

	message := gomail.NewMsg()
	if err := message.From(from); err != nil {
		return nil, errs.Invalid("invalid sender address %q: %v", from, err)
	}
	if err := message.To(msg.To); err != nil {
		return nil, errs.Invalid("invalid recipient address %q: %v", msg.To, err)
	}
	message.Subject(msg.Subject)

	if msg.TextBody != "" {
		message.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
		message.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)
	} else {
		message.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody)
	}
	return message, nil
}

// LogMailer records what would have been sent.
type LogMailer struct{}

var _ ports.Mailer = LogMailer{}

func (LogMailer) Send(ctx context.Context, msg ports.MailMessage) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	logging.Info(logging.With(ctx, "mail"), "smtp not configured, would have sent alert e-mail",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("body_bytes", len(msg.HTMLBody)),
	)
	return nil
}
