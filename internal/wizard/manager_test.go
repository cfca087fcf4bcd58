package wizard

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/movewidget/api/internal/domain"
	"github.com/movewidget/api/internal/services"
)

type stubWidgetService struct {
	config services.WidgetConfig
	err    error
	gets   []string
}

func (s *stubWidgetService) Get(_ context.Context, widgetID string) (services.WidgetConfig, error) {
	s.gets = append(s.gets, widgetID)
	return s.config, s.err
}

func (s *stubWidgetService) Create(context.Context, services.UpsertWidgetCommand) (domain.Widget, error) {
	return domain.Widget{}, nil
}

func (s *stubWidgetService) Update(context.Context, services.UpsertWidgetCommand) (domain.Widget, error) {
	return domain.Widget{}, nil
}

func (s *stubWidgetService) List(context.Context, int) ([]domain.Widget, error) {
	return nil, nil
}

func newTestManager(t *testing.T, widgets services.WidgetService) *Manager {
	t.Helper()

	var counter int
	manager, err := NewManager(ManagerDeps{
		Widgets: widgets,
		IDGen: func() string {
			counter++
			return fmt.Sprintf("sess-%d", counter)
		},
	})
	require.NoError(t, err)
	return manager
}

func TestNewManagerRequiresWidgetService(t *testing.T) {
	_, err := NewManager(ManagerDeps{IDGen: func() string { return "x" }})
	require.Error(t, err)
}

func TestManagerCreateResolvesPricingOnce(t *testing.T) {
	widgets := &stubWidgetService{config: services.WidgetConfig{
		Widget:  domain.Widget{ID: "widget-1"},
		Pricing: domain.DefaultRateConfig(),
	}}
	manager := newTestManager(t, widgets)

	session, err := manager.Create(context.Background(), "widget-1")
	require.NoError(t, err)
	t.Cleanup(func() { manager.Remove(session.ID) })

	require.Equal(t, "sess-1", session.ID)
	require.Equal(t, []string{"widget-1"}, widgets.gets)
	require.Equal(t, ScreenServiceSelect, session.State().Screen)
}

func TestManagerCreatePropagatesWidgetLookupFailure(t *testing.T) {
	widgets := &stubWidgetService{err: services.ErrWidgetNotFound}
	manager := newTestManager(t, widgets)

	_, err := manager.Create(context.Background(), "missing")
	require.ErrorIs(t, err, services.ErrWidgetNotFound)
}

func TestManagerGetAndRemove(t *testing.T) {
	widgets := &stubWidgetService{config: services.WidgetConfig{
		Widget:  domain.Widget{ID: "widget-1"},
		Pricing: domain.DefaultRateConfig(),
	}}
	manager := newTestManager(t, widgets)

	session, err := manager.Create(context.Background(), "widget-1")
	require.NoError(t, err)

	found, err := manager.Get(session.ID)
	require.NoError(t, err)
	require.Same(t, session, found)

	manager.Remove(session.ID)
	_, err = manager.Get(session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerTracksSessionsIndependently(t *testing.T) {
	widgets := &stubWidgetService{config: services.WidgetConfig{
		Widget:  domain.Widget{ID: "widget-1"},
		Pricing: domain.DefaultRateConfig(),
	}}
	manager := newTestManager(t, widgets)

	first, err := manager.Create(context.Background(), "widget-1")
	require.NoError(t, err)
	second, err := manager.Create(context.Background(), "widget-1")
	require.NoError(t, err)
	t.Cleanup(func() {
		manager.Remove(first.ID)
		manager.Remove(second.ID)
	})

	require.NotEqual(t, first.ID, second.ID)

	_, err = first.Apply(context.Background(), ChooseService{Type: domain.ServiceTypeFullService})
	require.NoError(t, err)

	require.Equal(t, ScreenMoveTypeSelect, first.State().Screen)
	require.Equal(t, ScreenServiceSelect, second.State().Screen)
}
