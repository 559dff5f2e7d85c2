package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"railway/pkg/apperr"
	"railway/pkg/database"
	"railway/pkg/models"
	"railway/pkg/query"
)

// openTestDB connects to DATABASE_URL, migrates and empties every table.
// Tests using it are skipped when no database is configured.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres tests")
	}
	db, err := database.Connect(url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	_, err = db.Exec(`TRUNCATE tickets, orders, journey_crew, journeys, trains, train_types,
		crew, routes, stations, sessions, users RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

type pgFixture struct {
	db       *sql.DB
	orders   OrderRepository
	journeys JourneyRepository
	stations StationRepository
	routes   RouteRepository
	auth     AuthRepository
	alice    models.User
	bob      models.User
	journey  models.Journey
	route    models.Route
}

// seedPostgres creates Lviv -> Kyiv served by a 2x3 train departing on
// 2024-05-01 and two customers.
func seedPostgres(t *testing.T) *pgFixture {
	t.Helper()
	ctx := context.Background()
	db := openTestDB(t)
	f := &pgFixture{
		db:       db,
		orders:   NewOrderRepository(db),
		journeys: NewJourneyRepository(db),
		stations: NewStationRepository(db),
		routes:   NewRouteRepository(db),
		auth:     NewAuthRepository(db),
	}

	var err error
	if f.alice, err = f.auth.CreateUser(ctx, "alice@example.com", "x", false); err != nil {
		t.Fatal(err)
	}
	if f.bob, err = f.auth.CreateUser(ctx, "bob@example.com", "x", false); err != nil {
		t.Fatal(err)
	}

	lviv, err := f.stations.Create(ctx, models.Station{Name: "Lviv", Latitude: 49.8397, Longitude: 24.0297})
	if err != nil {
		t.Fatal(err)
	}
	kyiv, err := f.stations.Create(ctx, models.Station{Name: "Kyiv", Latitude: 50.4501, Longitude: 30.5234})
	if err != nil {
		t.Fatal(err)
	}
	if f.route, err = f.routes.Create(ctx, models.Route{Source: lviv.ID, Destination: kyiv.ID, Distance: 468.4}); err != nil {
		t.Fatal(err)
	}
	tt, err := NewTrainTypeRepository(db).Create(ctx, models.TrainType{Name: "Intercity"})
	if err != nil {
		t.Fatal(err)
	}
	train, err := NewTrainRepository(db).Create(ctx, models.Train{Name: "743", CargoNum: 2, PlacesInCargo: 3, TrainType: tt.ID})
	if err != nil {
		t.Fatal(err)
	}

	dep := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	f.journey, err = f.journeys.Create(ctx, models.Journey{
		Route: f.route.ID, Train: train.ID, DepartureTime: dep, ArrivalTime: dep.Add(5 * time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *pgFixture) countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := f.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestPostgresBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("double booking is a conflict and leaves no order", func(t *testing.T) {
		f := seedPostgres(t)
		j := f.journey.ID
		if _, err := f.orders.Create(ctx, f.alice.ID, []models.Ticket{{Cargo: 1, Seat: 1, Journey: j}}); err != nil {
			t.Fatal(err)
		}

		_, err := f.orders.Create(ctx, f.bob.ID, []models.Ticket{
			{Cargo: 2, Seat: 2, Journey: j},
			{Cargo: 1, Seat: 1, Journey: j},
		})
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Fatalf("got %v, want conflict", err)
		}
		if n := f.countRows(t, "orders"); n != 1 {
			t.Fatalf("orders = %d, want 1", n)
		}
		if n := f.countRows(t, "tickets"); n != 1 {
			t.Fatalf("tickets = %d, want only the first booking", n)
		}
	})

	t.Run("cargo out of range is invalid", func(t *testing.T) {
		f := seedPostgres(t)
		_, err := f.orders.Create(ctx, f.alice.ID, []models.Ticket{{Cargo: 3, Seat: 1, Journey: f.journey.ID}})
		var e *apperr.Error
		if !errors.As(err, &e) || e.Kind != apperr.KindValidation || e.Fields["tickets[0].cargo"] == "" {
			t.Fatalf("got %v, want a cargo validation error", err)
		}
		if n := f.countRows(t, "orders"); n != 0 {
			t.Fatalf("orders = %d, want 0", n)
		}
	})

	t.Run("unknown journey is invalid", func(t *testing.T) {
		f := seedPostgres(t)
		_, err := f.orders.Create(ctx, f.alice.ID, []models.Ticket{{Cargo: 1, Seat: 1, Journey: f.journey.ID + 100}})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("got %v, want validation", err)
		}
	})

	t.Run("availability follows bookings", func(t *testing.T) {
		f := seedPostgres(t)
		j := f.journey.ID
		if n, err := f.journeys.Availability(ctx, j); err != nil || n != 6 {
			t.Fatalf("initial availability = %d, %v", n, err)
		}
		o, err := f.orders.Create(ctx, f.alice.ID, []models.Ticket{
			{Cargo: 1, Seat: 1, Journey: j},
			{Cargo: 2, Seat: 3, Journey: j},
		})
		if err != nil {
			t.Fatal(err)
		}
		if n, _ := f.journeys.Availability(ctx, j); n != 4 {
			t.Fatalf("availability after booking = %d, want 4", n)
		}

		if err := f.orders.Delete(ctx, o.ID); err != nil {
			t.Fatal(err)
		}
		if n, _ := f.journeys.Availability(ctx, j); n != 6 {
			t.Fatalf("availability after cancel = %d, want 6", n)
		}
	})
}

func TestPostgresJourneyDateFilter(t *testing.T) {
	ctx := context.Background()
	f := seedPostgres(t)

	next := f.journey
	next.ID = 0
	next.DepartureTime = f.journey.DepartureTime.Add(24 * time.Hour)
	next.ArrivalTime = next.DepartureTime.Add(5 * time.Hour)
	if _, err := f.journeys.Create(ctx, next); err != nil {
		t.Fatal(err)
	}

	tests := map[string]int{"2024-05-01": 1, "2024-05-02": 1, "2024-05-03": 0}
	for day, want := range tests {
		t.Run(day, func(t *testing.T) {
			spec, err := query.Bind(query.JourneyParams, func(key string) string {
				if key == "departure_date" {
					return day
				}
				return ""
			})
			if err != nil {
				t.Fatal(err)
			}
			items, total, err := f.journeys.List(ctx, spec)
			if err != nil {
				t.Fatal(err)
			}
			if total != want || len(items) != want {
				t.Fatalf("got %d items (total %d), want %d", len(items), total, want)
			}
			if want == 1 && items[0].DepartureTime.Format(query.DateLayout) != day {
				t.Fatalf("wrong journey %+v", items[0])
			}
		})
	}
}

func TestPostgresStationUpdate(t *testing.T) {
	ctx := context.Background()
	f := seedPostgres(t)
	kyiv, err := f.stations.Get(ctx, f.route.Destination)
	if err != nil {
		t.Fatal(err)
	}

	moved := kyiv
	moved.Longitude = 31.0
	boom := errors.New("boom")
	if _, err := f.stations.Update(ctx, moved, func(src, dst models.Station) (float64, error) {
		return 0, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("got %v, want the distance error", err)
	}
	if got, _ := f.stations.Get(ctx, kyiv.ID); got.Longitude != kyiv.Longitude {
		t.Fatalf("station written despite failure: %+v", got)
	}

	if _, err := f.stations.Update(ctx, moved, func(src, dst models.Station) (float64, error) {
		if dst.Longitude != 31.0 {
			t.Errorf("distance computed from stale coordinates %+v", dst)
		}
		return 500.5, nil
	}); err != nil {
		t.Fatal(err)
	}
	d, err := f.routes.Get(ctx, f.route.ID)
	if err != nil {
		t.Fatal(err)
	}
	if d.Distance != 500.5 || d.Destination.Longitude != 31.0 {
		t.Fatalf("route after move %+v", d)
	}

	missing := models.Station{ID: kyiv.ID + 100, Name: "Nowhere"}
	if _, err := f.stations.Update(ctx, missing, func(src, dst models.Station) (float64, error) { return 0, nil }); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing station: %v", err)
	}
}

func TestPostgresSessions(t *testing.T) {
	ctx := context.Background()
	f := seedPostgres(t)
	exp := time.Now().Add(time.Hour)

	if err := f.auth.CreateSession(ctx, f.alice.ID, "first", "", "", exp); err != nil {
		t.Fatal(err)
	}
	s, _, err := f.auth.GetSessionByToken(ctx, "first")
	if err != nil {
		t.Fatal(err)
	}

	if err := f.auth.UpdateSession(ctx, s.ID, "first", "second", exp); err != nil {
		t.Fatal(err)
	}
	if err := f.auth.UpdateSession(ctx, s.ID, "first", "third", exp); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("rotating a stale token: %v", err)
	}

	if err := f.auth.DeleteSessionByToken(ctx, f.bob.ID, "second"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.auth.GetSessionByToken(ctx, "second"); err != nil {
		t.Fatalf("session removed by another user: %v", err)
	}
	if err := f.auth.DeleteSessionByToken(ctx, f.alice.ID, "second"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.auth.GetSessionByToken(ctx, "second"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("session survived logout: %v", err)
	}
}
