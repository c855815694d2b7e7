package service

import (
	"context"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/pkg/pubsub"
)

// eventEmitter publishes change events. Failures are logged and never
// fail the operation that caused them.
type eventEmitter struct {
	publisher pubsub.Publisher
}

func newEventEmitter(p pubsub.Publisher) eventEmitter {
	if p == nil {
		p = pubsub.NopPublisher{}
	}
	return eventEmitter{publisher: p}
}

func (e eventEmitter) emit(ctx context.Context, orgID, entity, action string, payload interface{}) {
	l := log.Ctx(ctx)
	eventType := pubsub.EventType(entity, action)

	evt, err := pubsub.NewEvent(eventType, orgID, payload)
	if err != nil {
		l.Error().Err(err).Str("event_type", eventType).Msg("failed to build event")
		return
	}
	if err := e.publisher.Publish(ctx, pubsub.OrgChannel(orgID, entity), evt); err != nil {
		l.Warn().Err(err).Str("event_type", eventType).Str("event_id", evt.ID).Msg("failed to publish event")
		return
	}
	l.Debug().Str("event_type", eventType).Str("event_id", evt.ID).Msg("event published")
}
