// Package events fans domain events out to several sinks.
package events

import (
	"context"
	"errors"

	"github.com/SscSPs/finance_dashboard_app/internal/core/ports/sinks"
)

// Fanout publishes every event to each of its publishers.
type Fanout []sinks.EventPublisher

var _ sinks.EventPublisher = Fanout(nil)

// Publish tries every publisher and joins their errors.
func (f Fanout) Publish(ctx context.Context, topic string, event any) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, topic, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
