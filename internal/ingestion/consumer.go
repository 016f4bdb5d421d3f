package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/aevon-lab/servicestate/internal/api/v1"
	"github.com/aevon-lab/servicestate/internal/core/storage"
	"github.com/nats-io/nats.go"
)

// queueSubscriber is the part of *nats.Conn the consumer needs.
type queueSubscriber interface {
	QueueSubscribe(subject, queue string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// ConsumerConfig names the inbound subjects.
type ConsumerConfig struct {
	ComponentUpdatesSubject string
	MaintenanceSubject      string
	QueueGroup              string
	HandlerTimeout          time.Duration
}

// Consumer feeds bus messages into the same path as the HTTP handlers. A bad or
// failing message is logged and dropped; the subscription keeps running.
type Consumer struct {
	svc  *Service
	cfg  ConsumerConfig
	subs []*nats.Subscription
}

func NewConsumer(svc *Service, cfg ConsumerConfig) *Consumer {
	if svc == nil {
		panic("ingestion: service must not be nil")
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = 30 * time.Second
	}
	return &Consumer{svc: svc, cfg: cfg}
}

// Start subscribes both subjects within the configured queue group.
func (c *Consumer) Start(conn queueSubscriber) error {
	sub, err := conn.QueueSubscribe(c.cfg.ComponentUpdatesSubject, c.cfg.QueueGroup, c.HandleComponentUpdates)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", c.cfg.ComponentUpdatesSubject, err)
	}
	c.subs = append(c.subs, sub)

	sub, err = conn.QueueSubscribe(c.cfg.MaintenanceSubject, c.cfg.QueueGroup, c.HandleMaintenance)
	if err != nil {
		c.Stop()
		return fmt.Errorf("subscribe %s: %w", c.cfg.MaintenanceSubject, err)
	}
	c.subs = append(c.subs, sub)

	slog.Info("[Consumer] Subscribed",
		"component_updates_subject", c.cfg.ComponentUpdatesSubject,
		"maintenance_subject", c.cfg.MaintenanceSubject,
		"queue_group", c.cfg.QueueGroup)
	return nil
}

// Stop drains the subscriptions so in-flight messages finish.
func (c *Consumer) Stop() {
	for _, sub := range c.subs {
		if sub == nil {
			continue
		}
		if err := sub.Drain(); err != nil {
			slog.Warn("[Consumer] Failed to drain subscription", "subject", sub.Subject, "error", err)
		}
	}
	c.subs = nil
}

// HandleComponentUpdates processes one ComponentUpdateBatch message.
func (c *Consumer) HandleComponentUpdates(msg *nats.Msg) {
	var batch v1.ComponentUpdateBatch
	if err := json.Unmarshal(msg.Data, &batch); err != nil {
		slog.Warn("[Consumer] Dropping undecodable component update batch", "subject", msg.Subject, "error", err)
		return
	}
	if err := batch.Validate(); err != nil {
		slog.Warn("[Consumer] Dropping invalid component update batch", "subject", msg.Subject, "error", err)
		return
	}
	if len(batch.Updates) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HandlerTimeout)
	defer cancel()

	saved, _, ierr := c.svc.persistComponentStates(ctx, batch.Updates)
	if ierr != nil {
		slog.Error("[Consumer] Dropping batch, component states not persisted", "notices", len(batch.Updates))
		return
	}

	res, err := c.svc.engine.ProcessComponentUpdates(ctx, saved)
	if err != nil {
		batchID := ""
		if res != nil {
			batchID = res.BatchID
		}
		slog.Error("[Consumer] Batch evaluated with failures", "batch_id", batchID, "error", err)
	}
}

// HandleMaintenance processes one MaintenanceEvent message.
func (c *Consumer) HandleMaintenance(msg *nats.Msg) {
	var evt v1.MaintenanceEvent
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		slog.Warn("[Consumer] Dropping undecodable maintenance event", "subject", msg.Subject, "error", err)
		return
	}
	if err := evt.Validate(); err != nil {
		slog.Warn("[Consumer] Dropping invalid maintenance event", "subject", msg.Subject, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HandlerTimeout)
	defer cancel()

	if _, err := c.svc.maintenance.ProcessMaintenanceEvent(ctx, evt); err != nil {
		if errors.Is(err, storage.ErrClusterNotFound) {
			slog.Warn("[Consumer] Maintenance event for unknown cluster dropped", "cluster_id", evt.ClusterID)
			return
		}
		slog.Error("[Consumer] Maintenance event failed", "cluster_id", evt.ClusterID, "error", err)
	}
}
