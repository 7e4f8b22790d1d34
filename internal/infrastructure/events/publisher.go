// Package events publishes operational events to NATS.
package events

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/ports"
)

type Options struct {
	URL string
	// Prefix is prepended to every subject, separated by a dot.
	Prefix  string
	Name    string
	Timeout time.Duration
}

type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

var _ ports.EventPublisher = (*NATSPublisher)(nil)

// Connect dials the broker. An empty URL yields a publisher that drops every event.
func Connect(ctx context.Context, opts Options) (ports.EventPublisher, func(), error) {
	if ctx == nil {
		return nil, nil, errors.New("context is required")
	}

	url := strings.TrimSpace(opts.URL)
	if url == "" {
		logging.Debug(logging.With(ctx, "infrastructure.events"), "nats url not set, events are dropped")
		return NopPublisher{}, func() {}, nil
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	name := opts.Name
	if name == "" {
		name = "poolkeeper"
	}

	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(timeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.Warn(logging.With(ctx, "infrastructure.events"), "nats disconnected", slog.Any("err", errs.Loggable(err)))
			}
		}),
	)
	if err != nil {
		return nil, nil, errs.Transport(err, "connect nats")
	}

	p := &NATSPublisher{conn: conn, prefix: strings.Trim(opts.Prefix, ".")}
	return p, conn.Close, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload []byte) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	full := p.Subject(subject)
	if err := p.conn.Publish(full, payload); err != nil {
		return errs.Transport(err, "publish "+full)
	}
	return nil
}

func (p *NATSPublisher) Subject(subject string) string {
	return joinSubject(p.prefix, subject)
}

func joinSubject(prefix, subject string) string {
	subject = strings.Trim(subject, ".")
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte) error { return nil }
