package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"showroom/internal/domain"
	"showroom/internal/logging"
	"showroom/internal/metrics"

	"github.com/rs/zerolog"
)

const auditTimeout = 5 * time.Second

// SubscribeAudit stores every booking event, JSON encoded, in the audit log.
func SubscribeAudit(bus *EventBus, audit domain.AuditLog, logger *zerolog.Logger) {
	if bus == nil || audit == nil {
		return
	}
	log := logging.Component(logger, "events")

	bus.Subscribe(func(ev *Event) error {
		raw, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", ev.Type, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		if err := audit.Append(ctx, raw); err != nil {
			log.Error().Err(err).Str("event", ev.Type).Str("event_id", ev.ID).Msg("event bus: audit append")
			return err
		}
		return nil
	}, BookingEvents...)
}

// SubscribeMetrics counts booking events by type.
func SubscribeMetrics(bus *EventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(func(ev *Event) error {
		metrics.IncBookingEvent(ev.Type)
		return nil
	}, BookingEvents...)
}
