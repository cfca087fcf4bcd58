package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/movewidget/api/internal/services"
)

const defaultResendEndpoint = "https://api.resend.com/emails"

// Logger defines the logging contract for notification delivery.
type Logger func(ctx context.Context, event string, fields map[string]any)

// ResendNotifierConfig configures the ResendNotifier.
type ResendNotifierConfig struct {
	APIKey     string
	From       string
	To         []string
	ReplyTo    string
	Endpoint   string
	HTTPClient *http.Client
	Logger     Logger
}

// ResendNotifier emails the operator a confirmation for every submitted
// booking through the Resend API.
type ResendNotifier struct {
	apiKey   string
	from     string
	to       []string
	replyTo  string
	endpoint string
	http     *http.Client
	logger   Logger
}

// NewResendNotifier constructs a ResendNotifier using the given configuration.
func NewResendNotifier(cfg ResendNotifierConfig) (*ResendNotifier, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("resend: api key is required")
	}
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		return nil, errors.New("resend: from address is required")
	}
	to := make([]string, 0, len(cfg.To))
	for _, address := range cfg.To {
		if trimmed := strings.TrimSpace(address); trimmed != "" {
			to = append(to, trimmed)
		}
	}
	if len(to) == 0 {
		return nil, errors.New("resend: at least one recipient is required")
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultResendEndpoint
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &ResendNotifier{
		apiKey:   apiKey,
		from:     from,
		to:       to,
		replyTo:  strings.TrimSpace(cfg.ReplyTo),
		endpoint: endpoint,
		http:     httpClient,
		logger:   logger,
	}, nil
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// NotifyBookingSubmitted sends the confirmation email. Errors are returned to
// the caller for logging; the booking flow treats them as non-fatal.
func (n *ResendNotifier) NotifyBookingSubmitted(ctx context.Context, notification services.BookingNotification) error {
	email := resendEmail{
		From:    n.from,
		To:      n.to,
		Subject: "New reservation confirmation",
		Text:    renderBookingEmail(notification),
		ReplyTo: n.replyTo,
	}

	payload, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("resend: marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("resend: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("resend: send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resend: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	n.logger(ctx, "booking_email_sent", map[string]any{
		"bookingId": notification.Booking.ID,
		"widgetId":  notification.Booking.WidgetID,
	})
	return nil
}

// renderBookingEmail builds the plain-text body: a human-readable summary
// block followed by the raw payload for downstream tooling.
func renderBookingEmail(notification services.BookingNotification) string {
	summary := notification.Summary
	booking := notification.Booking

	var b strings.Builder
	b.WriteString("New reservation confirmation\n\n")
	writeLine(&b, "Contact", summary.ContactName)
	writeLine(&b, "Reach", summary.ContactSummaryLine)
	writeLine(&b, "Route", summary.RouteSummary)
	writeLine(&b, "When", summary.MoveDateSummary)
	writeLine(&b, "Team", summary.Team)
	writeLine(&b, "Estimate", summary.EstimateLabel)

	if len(booking.CustomFields) > 0 {
		b.WriteString("\nForm details:\n")
		for key, value := range booking.CustomFields {
			fmt.Fprintf(&b, "  %s: %s\n", key, value)
		}
	}

	if raw, err := json.MarshalIndent(notification, "", "  "); err == nil {
		b.WriteString("\nFull payload:\n")
		b.Write(raw)
		b.WriteString("\n")
	}
	return b.String()
}

func writeLine(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}
