package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/ports"
)

const DefaultSendTimeout = 30 * time.Second

// Notifier delivers reports best effort: delivery failures are logged and reported to
// the caller as false, never as an error.
type Notifier struct {
	mailer  ports.Mailer
	timeout time.Duration
}

func NewNotifier(mailer ports.Mailer, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Notifier{mailer: mailer, timeout: timeout}
}

// Send reports whether the mailer accepted the message within the send timeout.
func (n *Notifier) Send(ctx context.Context, recipient string, report Report) bool {
	if ctx == nil {
		return false
	}
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.notify"),
		slog.String("to", recipient),
		slog.String("subject", report.Subject),
	)
	if n.mailer == nil {
		logging.Error(logCtx, "no mailer configured, alert e-mail dropped")
		return false
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	err := n.mailer.Send(sendCtx, ports.MailMessage{
		To:       recipient,
		Subject:  report.Subject,
		HTMLBody: report.HTMLBody,
		TextBody: report.TextBody,
	})
	if err == nil {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
		logging.Warn(logCtx, "alert e-mail timed out", slog.Duration("timeout", n.timeout), slog.Any("err", errs.Loggable(err)))
		return false
	}
	logging.Warn(logCtx, "alert e-mail failed", slog.Any("err", errs.Loggable(err)))
	return false
}
