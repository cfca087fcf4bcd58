package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *GoogleClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewGoogleClient(GoogleClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)
	return client
}

func TestSuggestReturnsTopFive(t *testing.T) {
	var gotInput, gotKey string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, autocompletePath, r.URL.Path)
		gotInput = r.URL.Query().Get("input")
		gotKey = r.URL.Query().Get("key")
		w.Write([]byte(`{"status":"OK","predictions":[
			{"description":"12 Oak St, Springfield","place_id":"p1"},
			{"description":"12 Oak Ave, Shelbyville","place_id":"p2"},
			{"description":"12 Oakwood Dr","place_id":"p3"},
			{"description":"12 Oakhill Rd","place_id":"p4"},
			{"description":"12 Oakmont Ct","place_id":"p5"},
			{"description":"12 Oakridge Ln","place_id":"p6"}]}`))
	}))

	suggestions, err := client.Suggest(context.Background(), "12 Oak")
	require.NoError(t, err)
	assert.Equal(t, "12 Oak", gotInput)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, suggestions, 5, "results are capped at five")
	assert.Equal(t, "12 Oak St, Springfield", suggestions[0].Description)
	assert.Equal(t, "p1", suggestions[0].PlaceID)
}

func TestSuggestShortInputSkipsLookup(t *testing.T) {
	called := false
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	suggestions, err := client.Suggest(context.Background(), "12")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
	assert.False(t, called)
}

func TestSuggestZeroResults(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","predictions":[]}`))
	}))

	suggestions, err := client.Suggest(context.Background(), "xyzzy street")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestSuggestUpstreamDenied(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
	}))

	_, err := client.Suggest(context.Background(), "12 Oak")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestDistanceConvertsAndRounds(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, distanceMatrixPath, r.URL.Path)
		assert.Equal(t, "12 Oak St", r.URL.Query().Get("origins"))
		assert.Equal(t, "99 Pine Ave", r.URL.Query().Get("destinations"))
		// 32187 m is 20.0 miles; 1800 s is 0.5 h
		w.Write([]byte(`{"status":"OK","rows":[{"elements":[
			{"status":"OK","distance":{"value":32187},"duration":{"value":1800}}]}]}`))
	}))

	distance, err := client.Distance(context.Background(), "12 Oak St", "99 Pine Ave")
	require.NoError(t, err)
	assert.Equal(t, 20.0, distance.Miles)
	assert.Equal(t, 0.5, distance.TravelHours)
}

func TestDistanceRoundsFractions(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 20250 m is 12.583 miles; 2712 s is 0.7533 h
		w.Write([]byte(`{"status":"OK","rows":[{"elements":[
			{"status":"OK","distance":{"value":20250},"duration":{"value":2712}}]}]}`))
	}))

	distance, err := client.Distance(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 12.6, distance.Miles)
	assert.Equal(t, 0.75, distance.TravelHours)
}

func TestDistanceRouteNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"NOT_FOUND"}]}]}`))
	}))

	_, err := client.Distance(context.Background(), "nowhere", "elsewhere")
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestDistanceHTTPFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))

	_, err := client.Distance(context.Background(), "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNewGoogleClientRequiresKey(t *testing.T) {
	_, err := NewGoogleClient(GoogleClientConfig{})
	assert.Error(t, err)
}
