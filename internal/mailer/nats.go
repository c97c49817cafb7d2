package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vishwas132/university-admin-panel/internal/metrics"

	"github.com/nats-io/nats.go"
)

// NATSSender publishes messages to a subject consumed by a mail relay.
type NATSSender struct {
	conn    *nats.Conn
	subject string
	from    string
	logger  *slog.Logger
	metrics *metrics.MessagingMetrics
}

func NewNATSSender(url, subject, from string, logger *slog.Logger) (*NATSSender, error) {
	nc, err := nats.Connect(url, nats.Name("college-admin-mailer"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	logger.Info("NATS mail sender initialized", "url", url, "subject", subject)

	return &NATSSender{
		conn:    nc,
		subject: subject,
		from:    from,
		logger:  logger,
	}, nil
}

// WithMetrics records publish counts and latency into m.
func (s *NATSSender) WithMetrics(m *metrics.MessagingMetrics) *NATSSender {
	s.metrics = m
	return s
}

func (s *NATSSender) Send(ctx context.Context, msg Message) error {
	if msg.From == "" {
		msg.From = s.from
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal mail message: %w", err)
	}

	start := time.Now()
	err = s.publish(ctx, payload)
	s.metrics.RecordPublish(ctx, "nats", s.subject, time.Since(start), err)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "email queued", "transport", "nats", "subject", s.subject)
	return nil
}

func (s *NATSSender) publish(ctx context.Context, payload []byte) error {
	if err := s.conn.Publish(s.subject, payload); err != nil {
		return fmt.Errorf("failed to publish mail message: %w", err)
	}
	// Flush so a dead connection surfaces here instead of silently dropping mail.
	if err := s.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush mail message: %w", err)
	}
	return nil
}

func (s *NATSSender) Close() error {
	s.conn.Close()
	return nil
}
