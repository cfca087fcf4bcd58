package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/movewidget/api/internal/services"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("wizard: session not found")

// ManagerDeps bundles the collaborators shared by all sessions.
type ManagerDeps struct {
	Widgets            services.WidgetService
	Suggestions        SuggestionClient
	Distances          DistanceClient
	Promotions         services.PromotionService
	Contacts           services.ContactService
	Bookings           services.BookingService
	SuggestionDebounce time.Duration
	DistanceDebounce   time.Duration
	IDGen              func() string
	Clock              func() time.Time
	Logger             func(context.Context, string, map[string]any)
}

// Manager creates and tracks in-flight wizard sessions. The widget's rate
// table is resolved once when the session is created, so every estimate in
// that run prices against the same configuration.
type Manager struct {
	deps ManagerDeps

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager validates the dependency set and returns a ready manager.
func NewManager(deps ManagerDeps) (*Manager, error) {
	if deps.Widgets == nil {
		return nil, errors.New("wizard: widget service is required")
	}
	if deps.IDGen == nil {
		return nil, errors.New("wizard: id generator is required")
	}
	return &Manager{
		deps:     deps,
		sessions: make(map[string]*Session),
	}, nil
}

// Create loads the widget configuration and opens a fresh session at the
// wizard's starting screen.
func (m *Manager) Create(ctx context.Context, widgetID string) (*Session, error) {
	config, err := m.deps.Widgets.Get(ctx, widgetID)
	if err != nil {
		return nil, err
	}

	session, err := NewSession(m.deps.IDGen(), SessionDeps{
		WidgetID:           config.Widget.ID,
		Pricing:            config.Pricing,
		Suggestions:        m.deps.Suggestions,
		Distances:          m.deps.Distances,
		Promotions:         m.deps.Promotions,
		Contacts:           m.deps.Contacts,
		Bookings:           m.deps.Bookings,
		SuggestionDebounce: m.deps.SuggestionDebounce,
		DistanceDebounce:   m.deps.DistanceDebounce,
		Clock:              m.deps.Clock,
		Logger:             m.deps.Logger,
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()
	return session, nil
}

// Get looks up an open session by id.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Remove closes a session and drops it from tracking.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	if ok {
		session.Close()
	}
}
