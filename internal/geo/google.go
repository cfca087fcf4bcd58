package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/movewidget/api/internal/domain"
	"github.com/movewidget/api/internal/wizard"
)

const (
	defaultBaseURL = "https://maps.googleapis.com"

	autocompletePath   = "/maps/api/place/autocomplete/json"
	distanceMatrixPath = "/maps/api/distancematrix/json"

	minAutocompleteInput = 3
	maxSuggestions       = 5

	metersPerMile = 1609.34
)

// ErrRouteNotFound is returned when the matrix cannot price the route.
var ErrRouteNotFound = errors.New("geo: no route between addresses")

// Logger defines the logging contract for geo lookups.
type Logger func(ctx context.Context, event string, fields map[string]any)

// GoogleClientConfig configures the GoogleClient.
type GoogleClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     Logger
}

// GoogleClient resolves address suggestions and route distances through the
// Google Maps web APIs. The widget never talks to Google directly; the key
// stays server-side behind this client.
type GoogleClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  Logger
}

// NewGoogleClient constructs a GoogleClient using the given configuration.
func NewGoogleClient(cfg GoogleClientConfig) (*GoogleClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("geo: api key is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &GoogleClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger,
	}, nil
}

type autocompleteResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Predictions  []struct {
		Description string `json:"description"`
		PlaceID     string `json:"place_id"`
	} `json:"predictions"`
}

// Suggest returns up to five address predictions for the partial input.
// Inputs shorter than three characters return nothing without a lookup.
func (c *GoogleClient) Suggest(ctx context.Context, input string) ([]wizard.Suggestion, error) {
	input = strings.TrimSpace(input)
	if len(input) < minAutocompleteInput {
		return nil, nil
	}

	query := url.Values{}
	query.Set("input", input)
	query.Set("types", "address")
	query.Set("key", c.apiKey)

	var payload autocompleteResponse
	if err := c.getJSON(ctx, autocompletePath, query, &payload); err != nil {
		return nil, err
	}

	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	default:
		c.logger(ctx, "geo_autocomplete_rejected", map[string]any{
			"status":  payload.Status,
			"message": payload.ErrorMessage,
		})
		return nil, fmt.Errorf("geo: autocomplete status %s", payload.Status)
	}

	suggestions := make([]wizard.Suggestion, 0, maxSuggestions)
	for _, prediction := range payload.Predictions {
		suggestions = append(suggestions, wizard.Suggestion{
			Description: prediction.Description,
			PlaceID:     prediction.PlaceID,
		})
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions, nil
}

type distanceMatrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Meters int64 `json:"value"`
			} `json:"distance"`
			Duration struct {
				Seconds int64 `json:"value"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// Distance resolves the driving route between two address strings. Miles are
// rounded to a tenth, travel hours to a hundredth.
func (c *GoogleClient) Distance(ctx context.Context, origin, destination string) (domain.Distance, error) {
	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return domain.Distance{}, errors.New("geo: origin and destination are required")
	}

	query := url.Values{}
	query.Set("origins", origin)
	query.Set("destinations", destination)
	query.Set("units", "imperial")
	query.Set("key", c.apiKey)

	var payload distanceMatrixResponse
	if err := c.getJSON(ctx, distanceMatrixPath, query, &payload); err != nil {
		return domain.Distance{}, err
	}

	if payload.Status != "OK" {
		c.logger(ctx, "geo_distance_rejected", map[string]any{
			"status":  payload.Status,
			"message": payload.ErrorMessage,
		})
		return domain.Distance{}, fmt.Errorf("geo: distance matrix status %s", payload.Status)
	}
	if len(payload.Rows) == 0 || len(payload.Rows[0].Elements) == 0 {
		return domain.Distance{}, ErrRouteNotFound
	}

	element := payload.Rows[0].Elements[0]
	if element.Status != "OK" {
		return domain.Distance{}, fmt.Errorf("%w: %s", ErrRouteNotFound, element.Status)
	}

	return domain.Distance{
		Miles:       roundTo(float64(element.Distance.Meters)/metersPerMile, 1),
		TravelHours: roundTo(float64(element.Duration.Seconds)/3600, 2),
	}, nil
}

func (c *GoogleClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("geo: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("geo: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("geo: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("geo: decode response: %w", err)
	}
	return nil
}

func roundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}
