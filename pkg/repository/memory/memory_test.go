package memory

import (
	"context"
	"errors"
	"testing"

	"railway/pkg/models"
)

func TestStationUpdateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, _ := s.Stations().Create(ctx, models.Station{Name: "A", Latitude: 0, Longitude: 0})
	b, _ := s.Stations().Create(ctx, models.Station{Name: "B", Latitude: 0, Longitude: 1})
	rt, err := s.Routes().Create(ctx, models.Route{Source: a.ID, Destination: b.ID, Distance: 111.3})
	if err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	moved := models.Station{ID: b.ID, Name: "B", Latitude: 0, Longitude: 2}
	if _, err := s.Stations().Update(ctx, moved, func(src, dst models.Station) (float64, error) {
		return 0, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("got %v, want the distance error", err)
	}
	if got, _ := s.Stations().Get(ctx, b.ID); got.Longitude != 1 {
		t.Fatalf("station written despite failure: %+v", got)
	}

	var seen models.Station
	if _, err := s.Stations().Update(ctx, moved, func(src, dst models.Station) (float64, error) {
		seen = dst
		return 222.6, nil
	}); err != nil {
		t.Fatal(err)
	}
	if seen.Longitude != 2 {
		t.Fatalf("distance computed from stale coordinates %+v", seen)
	}
	if d, _ := s.Routes().Get(ctx, rt.ID); d.Distance != 222.6 {
		t.Fatalf("route distance = %v, want 222.6", d.Distance)
	}
}
