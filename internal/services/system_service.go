package services

import (
	"context"
	"errors"
	"time"

	"github.com/movewidget/api/internal/repositories"
)

// SystemServiceDeps bundles collaborators required to construct a system service.
type SystemServiceDeps struct {
	Health repositories.HealthRepository
	Clock  func() time.Time
}

type systemService struct {
	health repositories.HealthRepository
	clock  func() time.Time
}

var _ SystemService = (*systemService)(nil)

// NewSystemService assembles the health and readiness probe service.
func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.Health == nil {
		return nil, errors.New("system service: health repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &systemService{
		health: deps.Health,
		clock:  func() time.Time { return clock().UTC() },
	}, nil
}

// Liveness always succeeds while the process can serve requests.
func (s *systemService) Liveness(ctx context.Context) error {
	if ctx == nil {
		return errors.New("system service: context is required")
	}
	return nil
}

// Readiness verifies the persistence layer is reachable.
func (s *systemService) Readiness(ctx context.Context) error {
	if ctx == nil {
		return errors.New("system service: context is required")
	}
	return s.health.CheckReadiness(ctx)
}
