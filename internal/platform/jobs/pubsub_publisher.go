package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/movewidget/api/internal/services"
)

// PubSubBookingPublisher publishes booking confirmation events to a Pub/Sub
// topic so downstream workers (CRM sync, analytics) can consume them.
type PubSubBookingPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubBookingPublisher constructs a Pub/Sub backed booking publisher.
func NewPubSubBookingPublisher(topic *pubsub.Topic) (*PubSubBookingPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub booking publisher: topic is required")
	}
	return &PubSubBookingPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// NotifyBookingSubmitted enqueues the booking event on the configured topic.
func (p *PubSubBookingPublisher) NotifyBookingSubmitted(ctx context.Context, notification services.BookingNotification) error {
	if p == nil || p.topic == nil {
		return errors.New("pubsub booking publisher: not initialised")
	}

	data, err := p.marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "bookingId", notification.Booking.ID)
	setAttr(attrs, "widgetId", notification.Booking.WidgetID)
	setAttr(attrs, "contactId", notification.Booking.ContactID)
	setAttr(attrs, "promoCode", notification.Booking.Selection.PromoCode)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish booking event: %w", err)
	}
	return nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
