// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify publishes admin alerts to NATS. Publishing is best effort:
// callers log failures and never let them change an analysis result.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/pdiddy/safescan/pkg/types"
)

const publishOperation = "nats.publish"

// Notifier delivers admin alerts.
type Notifier interface {
	PublishAlert(ctx context.Context, a types.AdminAlert) error
}

// Discard drops every alert. It stands in when no NATS URL is configured.
type Discard struct{}

// PublishAlert implements Notifier.
func (Discard) PublishAlert(context.Context, types.AdminAlert) error { return nil }

// Conn is the subset of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// Publisher sends alerts to one NATS subject.
type Publisher struct {
	conn    Conn
	subject string
	exec    *Executor
}

// alertPayload is the wire shape of a published alert.
type alertPayload struct {
	SessionID  string   `json:"sessionId"`
	Summary    string   `json:"summary"`
	Allergens  []string `json:"allergens"`
	ProfileIDs []string `json:"profileIds"`
	IsRead     bool     `json:"isRead"`
}

// Connect dials NATS and returns a publisher for cfg.Subject.
func Connect(cfg types.NotifyConfig, log *zap.Logger) (*Publisher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("safescan"),
		nats.Timeout(2*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(60),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	exec := NewExecutor(RetryConfig{MaxAttempts: cfg.MaxAttempts}, log)
	return NewPublisher(conn, cfg.Subject, exec), nil
}

// NewPublisher wraps an existing connection.
func NewPublisher(conn Conn, subject string, exec *Executor) *Publisher {
	if exec == nil {
		exec = NewExecutor(RetryConfig{}, nil)
	}
	return &Publisher{conn: conn, subject: subject, exec: exec}
}

// PublishAlert implements Notifier.
func (p *Publisher) PublishAlert(ctx context.Context, a types.AdminAlert) error {
	data, err := json.Marshal(alertPayload{
		SessionID:  a.SessionID,
		Summary:    a.Summary,
		Allergens:  nonNil(a.Allergens),
		ProfileIDs: nonNil(a.ProfileIDs),
		IsRead:     a.IsRead,
	})
	if err != nil {
		return fmt.Errorf("encoding alert: %w", err)
	}
	err = p.exec.Execute(ctx, publishOperation, func(context.Context) error {
		return p.conn.Publish(p.subject, data)
	}, retryableNATS)
	if err != nil {
		return fmt.Errorf("publishing alert for session %s: %w", a.SessionID, err)
	}
	return nil
}

// Close closes the underlying connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

func retryableNATS(err error) bool {
	return errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrConnectionReconnecting) ||
		errors.Is(err, nats.ErrDisconnected)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
