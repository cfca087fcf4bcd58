package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	env := map[string]string{
		"API_FIRESTORE_PROJECT_ID": "movewidget-dev",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Environment != "local" {
		t.Errorf("expected default environment local, got %s", cfg.Environment)
	}
	if cfg.PubSub.ProjectID != "movewidget-dev" {
		t.Errorf("expected pubsub project to default to firestore project, got %s", cfg.PubSub.ProjectID)
	}
	if cfg.Wizard.SuggestionDebounce != 250*time.Millisecond {
		t.Errorf("unexpected suggestion debounce: %s", cfg.Wizard.SuggestionDebounce)
	}
	if cfg.Wizard.DistanceDebounce != 500*time.Millisecond {
		t.Errorf("unexpected distance debounce: %s", cfg.Wizard.DistanceDebounce)
	}
	if !cfg.Features.EnablePromotions || !cfg.Features.EnableNotifications {
		t.Errorf("expected feature defaults on, got %+v", cfg.Features)
	}
	if cfg.Idempotency.Header != defaultIdempotencyHeader {
		t.Errorf("expected default idempotency header, got %s", cfg.Idempotency.Header)
	}
	if cfg.Idempotency.TTL != defaultIdempotencyTTL {
		t.Errorf("unexpected default idempotency ttl: %s", cfg.Idempotency.TTL)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"API_ENVIRONMENT":                  "Prod",
		"API_SERVER_PORT":                  "9090",
		"API_SERVER_READ_TIMEOUT":          "20s",
		"API_SERVER_WRITE_TIMEOUT":         "25s",
		"API_SERVER_IDLE_TIMEOUT":          "2m",
		"API_FIRESTORE_PROJECT_ID":         "movewidget-prod",
		"API_FIRESTORE_EMULATOR_HOST":      "localhost:8089",
		"API_MAPS_API_KEY":                 "maps-key",
		"API_EMAIL_RESEND_API_KEY":         "re_prod",
		"API_EMAIL_FROM":                   "bookings@movers.example",
		"API_EMAIL_TO":                     "office@movers.example, ops@movers.example",
		"API_EMAIL_REPLY_TO":               "support@movers.example",
		"API_PUBSUB_PROJECT_ID":            "movewidget-events",
		"API_PUBSUB_BOOKING_TOPIC":         "booking-events",
		"API_WIZARD_SUGGESTION_DEBOUNCE":   "100ms",
		"API_WIZARD_DISTANCE_DEBOUNCE":     "1s",
		"API_FEATURE_PROMOTIONS":           "false",
		"API_FEATURE_NOTIFICATIONS":        "off",
		"API_IDEMPOTENCY_HEADER":           "X-Idem-Key",
		"API_IDEMPOTENCY_TTL":              "48h",
		"API_IDEMPOTENCY_CLEANUP_INTERVAL": "30m",
		"API_IDEMPOTENCY_CLEANUP_BATCH":    "500",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Environment != "prod" {
		t.Errorf("expected lowercased environment, got %s", cfg.Environment)
	}
	if cfg.Server.Port != "9090" || cfg.Server.WriteTimeout != 25*time.Second {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Firestore.EmulatorHost != "localhost:8089" {
		t.Errorf("unexpected emulator host: %s", cfg.Firestore.EmulatorHost)
	}
	if cfg.Maps.APIKey != "maps-key" {
		t.Errorf("unexpected maps key: %s", cfg.Maps.APIKey)
	}
	if len(cfg.Email.To) != 2 || cfg.Email.To[1] != "ops@movers.example" {
		t.Errorf("unexpected email recipients: %v", cfg.Email.To)
	}
	if cfg.PubSub.ProjectID != "movewidget-events" || cfg.PubSub.Topic != "booking-events" {
		t.Errorf("unexpected pubsub config: %+v", cfg.PubSub)
	}
	if cfg.Wizard.SuggestionDebounce != 100*time.Millisecond || cfg.Wizard.DistanceDebounce != time.Second {
		t.Errorf("unexpected wizard config: %+v", cfg.Wizard)
	}
	if cfg.Features.EnablePromotions || cfg.Features.EnableNotifications {
		t.Errorf("expected features disabled, got %+v", cfg.Features)
	}
	if cfg.Idempotency.Header != "X-Idem-Key" || cfg.Idempotency.TTL != 48*time.Hour {
		t.Errorf("unexpected idempotency config: %+v", cfg.Idempotency)
	}
	if cfg.Idempotency.CleanupBatchSize != 500 {
		t.Errorf("unexpected cleanup batch size: %d", cfg.Idempotency.CleanupBatchSize)
	}
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "API_FIRESTORE_PROJECT_ID=movewidget-local\nAPI_SERVER_PORT=7070\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(WithEnvFile(envFile), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Firestore.ProjectID != "movewidget-local" {
		t.Errorf("expected project from dotenv, got %s", cfg.Firestore.ProjectID)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("expected port from dotenv, got %s", cfg.Server.Port)
	}
}

func TestLoadEnvMapOverridesDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("API_SERVER_PORT=7070\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(
		WithEnvFile(envFile),
		WithEnvMap(map[string]string{
			"API_FIRESTORE_PROJECT_ID": "movewidget-dev",
			"API_SERVER_PORT":          "9999",
		}),
		WithoutSystemEnv(),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9999" {
		t.Errorf("explicit env map must win over dotenv, got %s", cfg.Server.Port)
	}
}

func TestLoadMissingRequiredFields(t *testing.T) {
	_, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	fields := validation.Fields()
	found := false
	for _, field := range fields {
		if field == "Firestore.ProjectID" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Firestore.ProjectID in %v", fields)
	}
}

func TestLoadInvalidIdempotencyValues(t *testing.T) {
	_, err := Load(WithEnvMap(map[string]string{
		"API_FIRESTORE_PROJECT_ID": "movewidget-dev",
		"API_IDEMPOTENCY_HEADER":   "  ",
	}), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error for blank idempotency header")
	}
}
