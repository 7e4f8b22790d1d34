package ports

import (
	"context"
	"time"
)

// Clock resolves the current instant and the civil date in the configured timezone.
type Clock interface {
	// Now is the current instant in UTC.
	Now() time.Time
	// Today is the current civil date, as midnight UTC.
	Today() time.Time
}

type MailMessage struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer delivers one message. Implementations must honour ctx cancellation.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// EventPublisher broadcasts operational events on a subject. Callers treat failures as
// non-fatal.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
}
