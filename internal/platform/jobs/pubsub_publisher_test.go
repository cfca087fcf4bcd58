package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	domain "github.com/movewidget/api/internal/domain"
	"github.com/movewidget/api/internal/services"
)

func TestPubSubBookingPublisherPublishesEvent(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	topic, err := client.CreateTopic(ctx, "booking-events")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	publisher, err := NewPubSubBookingPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubBookingPublisher: %v", err)
	}

	notification := services.BookingNotification{
		Summary: services.BookingSummary{
			ContactName:   "Dana Reyes",
			RouteSummary:  "12 Oak St to 99 Pine Ave",
			EstimateLabel: "$455.00 - $575.00",
		},
		Booking: domain.Booking{
			ID:        "booking-1",
			WidgetID:  "widget-1",
			ContactID: "contact-1",
			MoveDate:  time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
			Selection: domain.Selection{PromoCode: "MOVE10"},
		},
	}

	if err := publisher.NotifyBookingSubmitted(ctx, notification); err != nil {
		t.Fatalf("NotifyBookingSubmitted: %v", err)
	}

	msgs := srv.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(msgs))
	}

	var decoded services.BookingNotification
	if err := json.Unmarshal(msgs[0].Data, &decoded); err != nil {
		t.Fatalf("unmarshal published payload: %v", err)
	}
	if decoded.Booking.ID != "booking-1" {
		t.Fatalf("expected booking id booking-1, got %q", decoded.Booking.ID)
	}
	if decoded.Summary.ContactName != "Dana Reyes" {
		t.Fatalf("expected summary contact name, got %q", decoded.Summary.ContactName)
	}

	attrs := msgs[0].Attributes
	if attrs["bookingId"] != "booking-1" || attrs["widgetId"] != "widget-1" {
		t.Fatalf("expected booking attributes, got %v", attrs)
	}
	if attrs["promoCode"] != "MOVE10" {
		t.Fatalf("expected promo attribute, got %v", attrs)
	}
}

func TestPubSubBookingPublisherRequiresTopic(t *testing.T) {
	if _, err := NewPubSubBookingPublisher(nil); err == nil {
		t.Fatal("expected error for nil topic")
	}
}
