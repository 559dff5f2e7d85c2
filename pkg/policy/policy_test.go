package policy

import (
	"context"
	"errors"
	"testing"

	"railway/pkg/apperr"
	"railway/pkg/models"
)

var (
	anonymous = models.Identity{}
	user      = models.Identity{UserID: 2, Email: "user@example.com"}
	admin     = models.Identity{UserID: 1, Email: "admin@example.com", Staff: true}
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestDecisionMatrix(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		entity Entity
		action Action
		id     models.Identity
		want   Decision
	}{
		{"anon lists stations", Stations, List, anonymous, Allow},
		{"anon retrieves route", Routes, Retrieve, anonymous, Allow},
		{"anon lists journeys", Journeys, List, anonymous, Allow},
		{"anon creates station", Stations, Create, anonymous, DenyUnauthenticated},
		{"anon lists workers", Crew, List, anonymous, DenyUnauthenticated},
		{"anon lists trains", Trains, List, anonymous, DenyUnauthenticated},
		{"anon lists orders", Orders, List, anonymous, DenyUnauthenticated},

		{"user lists stations", Stations, List, user, Allow},
		{"user creates station", Stations, Create, user, DenyForbidden},
		{"user deletes journey", Journeys, Delete, user, DenyForbidden},
		{"user lists workers", Crew, List, user, DenyForbidden},
		{"user lists train types", TrainTypes, List, user, DenyForbidden},
		{"user lists trains", Trains, List, user, DenyForbidden},
		{"user creates order", Orders, Create, user, Allow},
		{"user lists orders", Orders, List, user, Allow},
		{"user deletes order", Orders, Delete, user, DenyForbidden},
		{"user reads self", Users, Retrieve, user, Allow},

		{"admin creates journey", Journeys, Create, admin, Allow},
		{"admin lists workers", Crew, List, admin, Allow},
		{"admin uploads image", Trains, UploadImage, admin, Allow},
		{"admin deletes order", Orders, Delete, admin, Allow},

		{"anon reads self", Users, Retrieve, anonymous, DenyUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Decide(ctx, tt.entity, tt.action, tt.id)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStaffFlagWithoutUserIsAnonymous(t *testing.T) {
	e := newEngine(t)
	got, err := e.Decide(context.Background(), Crew, List, models.Identity{Staff: true})
	if err != nil {
		t.Fatal(err)
	}
	if got != DenyUnauthenticated {
		t.Fatalf("got %v", got)
	}
}

func TestCheckErrors(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	if err := e.Check(ctx, Crew, List, anonymous); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("anonymous: %v", err)
	}
	if err := e.Check(ctx, Crew, List, user); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("user: %v", err)
	}
	if err := e.Check(ctx, Crew, List, admin); err != nil {
		t.Fatalf("admin: %v", err)
	}
}
