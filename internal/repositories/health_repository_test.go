package repositories

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDependencyHealthRepositoryAllHealthy(t *testing.T) {
	repo, err := NewDependencyHealthRepository([]DependencyCheck{
		{Name: "firestore", Check: func(context.Context) error { return nil }},
		{Name: "pubsub", Check: func(context.Context) error { return nil }},
	})
	if err != nil {
		t.Fatalf("NewDependencyHealthRepository: %v", err)
	}

	if err := repo.CheckReadiness(context.Background()); err != nil {
		t.Fatalf("expected healthy readiness, got %v", err)
	}
}

func TestDependencyHealthRepositoryReportsFailure(t *testing.T) {
	backendDown := errors.New("backend down")
	repo, err := NewDependencyHealthRepository([]DependencyCheck{
		{Name: "firestore", Check: func(context.Context) error { return nil }},
		{Name: "pubsub", Check: func(context.Context) error { return backendDown }},
	})
	if err != nil {
		t.Fatalf("NewDependencyHealthRepository: %v", err)
	}

	err = repo.CheckReadiness(context.Background())
	if !errors.Is(err, backendDown) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
	if !strings.Contains(err.Error(), "pubsub") {
		t.Fatalf("expected failing dependency name, got %v", err)
	}
}

func TestDependencyHealthRepositoryTimesOutSlowChecks(t *testing.T) {
	repo, err := NewDependencyHealthRepository([]DependencyCheck{
		{Name: "firestore", Check: func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
				return nil
			}
		}},
	}, WithDependencyTimeout(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewDependencyHealthRepository: %v", err)
	}

	err = repo.CheckReadiness(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestDependencyHealthRepositoryValidatesChecks(t *testing.T) {
	if _, err := NewDependencyHealthRepository(nil); err == nil {
		t.Fatal("expected error for empty check set")
	}
	if _, err := NewDependencyHealthRepository([]DependencyCheck{{Name: " "}}); err == nil {
		t.Fatal("expected error for unnamed check")
	}
	if _, err := NewDependencyHealthRepository([]DependencyCheck{{Name: "firestore"}}); err == nil {
		t.Fatal("expected error for missing check function")
	}
}
