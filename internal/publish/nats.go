package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aevon-lab/servicestate/internal/core/update"
	"github.com/nats-io/nats.go"
)

// KindHeader carries the notification variant so subscribers can filter without decoding.
const KindHeader = "Servicestate-Kind"

// msgPublisher is the subset of *nats.Conn used for publishing.
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSPublisher publishes notifications as JSON v1.ServiceUpdate payloads on
// <prefix>.<cluster>.<service>.
type NATSPublisher struct {
	conn   msgPublisher
	prefix string
}

func NewNATSPublisher(conn msgPublisher, subjectPrefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: strings.TrimSuffix(subjectPrefix, ".")}
}

func (p *NATSPublisher) Publish(ctx context.Context, n update.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(n.Wire())
	if err != nil {
		return fmt.Errorf("failed to marshal service update: %w", err)
	}

	msg := nats.NewMsg(p.Subject(n))
	msg.Data = data
	msg.Header.Set(KindHeader, string(n.Kind()))

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish service update: %w", err)
	}

	slog.Debug("[NATSPublisher] Published service update",
		"subject", msg.Subject,
		"kind", n.Kind(),
		"cluster", n.Cluster(),
		"service", n.Service())
	return nil
}

// Subject returns the subject a notification is published on.
func (p *NATSPublisher) Subject(n update.Notification) string {
	return p.prefix + "." + subjectToken(n.Cluster()) + "." + subjectToken(n.Service())
}

// subjectToken makes s safe as a single NATS subject token.
func subjectToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, s)
}
