package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/movewidget/api/internal/geo"
	"github.com/movewidget/api/internal/platform/httpx"
	"github.com/movewidget/api/internal/wizard"
)

// GeoHandlers proxies address autocomplete and route distance lookups so the
// Maps API key never reaches the browser. Both endpoints hit a metered
// upstream, so requests are rate limited per client IP.
type GeoHandlers struct {
	suggestions wizard.SuggestionClient
	distances   wizard.DistanceClient
	limiter     rateLimiter
}

// GeoOption customises the geo proxy handler set.
type GeoOption func(*GeoHandlers)

// WithGeoRateLimit caps lookups per client IP within the given window.
func WithGeoRateLimit(limit int, window time.Duration) GeoOption {
	return func(h *GeoHandlers) {
		h.limiter = newSimpleRateLimiter(limit, window, nil)
	}
}

// NewGeoHandlers constructs the geo proxy handler set.
func NewGeoHandlers(suggestions wizard.SuggestionClient, distances wizard.DistanceClient, opts ...GeoOption) *GeoHandlers {
	h := &GeoHandlers{suggestions: suggestions, distances: distances}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers the proxy endpoints at the API root.
func (h *GeoHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/places", h.suggest)
	r.Get("/distance", h.distance)
}

func (h *GeoHandlers) allow(w http.ResponseWriter, r *http.Request) bool {
	if h.limiter == nil {
		return true
	}
	if h.limiter.Allow(r.RemoteAddr) {
		return true
	}
	httpx.WriteError(r.Context(), w, httpx.NewError("rate_limited", "too many lookup requests", http.StatusTooManyRequests))
	return false
}

func (h *GeoHandlers) suggest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.suggestions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "places lookup not available", http.StatusServiceUnavailable))
		return
	}
	if !h.allow(w, r) {
		return
	}

	input := strings.TrimSpace(r.URL.Query().Get("input"))
	suggestions, err := h.suggestions.Suggest(ctx, input)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("upstream_error", "places lookup failed", http.StatusBadGateway))
		return
	}
	if suggestions == nil {
		suggestions = []wizard.Suggestion{}
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (h *GeoHandlers) distance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.distances == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "distance lookup not available", http.StatusServiceUnavailable))
		return
	}
	if !h.allow(w, r) {
		return
	}

	origin := strings.TrimSpace(r.URL.Query().Get("origin"))
	destination := strings.TrimSpace(r.URL.Query().Get("destination"))
	if origin == "" || destination == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "origin and destination are required", http.StatusBadRequest))
		return
	}

	distance, err := h.distances.Distance(ctx, origin, destination)
	if err != nil {
		if errors.Is(err, geo.ErrRouteNotFound) {
			httpx.WriteError(ctx, w, httpx.NewError("distance_not_found", "no route between the given addresses", http.StatusNotFound))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("upstream_error", "distance lookup failed", http.StatusBadGateway))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"distance": distance})
}
