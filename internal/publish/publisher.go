// Package publish delivers service update notifications to downstream subscribers.
package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/aevon-lab/servicestate/internal/core/update"
)

// Publisher emits one notification. A nil error means the notification was
// handed to every downstream sink; the caller treats it as published.
type Publisher interface {
	Publish(ctx context.Context, n update.Notification) error
}

// Multi fans a notification out to several publishers. Every publisher is
// attempted; failures are joined.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, n update.Notification) error {
	var errs []error
	for i, p := range m {
		if err := p.Publish(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("publisher %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
