package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"railway/pkg/apperr"
	"railway/pkg/geo"
	"railway/pkg/models"
	"railway/pkg/query"
	"railway/pkg/repository"
)

type StationService interface {
	List(ctx context.Context, spec query.Spec) ([]models.Station, int, error)
	Get(ctx context.Context, id int) (models.Station, error)
	Create(ctx context.Context, s models.Station) (models.Station, error)
	Update(ctx context.Context, id int, s models.Station) (models.Station, error)
	Patch(ctx context.Context, id int, p models.StationPatch) (models.Station, error)
	Delete(ctx context.Context, id int) error
}

type RouteService interface {
	List(ctx context.Context, spec query.Spec) ([]models.RouteList, int, error)
	Get(ctx context.Context, id int) (models.RouteDetail, error)
	Create(ctx context.Context, r models.Route) (models.Route, error)
	Update(ctx context.Context, id int, r models.Route) (models.Route, error)
	Patch(ctx context.Context, id int, p models.RoutePatch) (models.Route, error)
	Delete(ctx context.Context, id int) error
}

type stationService struct {
	stations repository.StationRepository
	cache    Cache
	ttl      time.Duration
}

func NewStationService(stations repository.StationRepository, cache Cache, ttl time.Duration) StationService {
	return &stationService{stations: stations, cache: cache, ttl: ttl}
}

func (s *stationService) List(ctx context.Context, spec query.Spec) ([]models.Station, int, error) {
	key := "stations:list:" + spec.Key()
	var cached cachedPage[models.Station]
	if s.cache.Get(ctx, key, &cached) {
		return cached.Items, cached.Total, nil
	}

	items, total, err := s.stations.List(ctx, spec)
	if err != nil {
		return nil, 0, err
	}

	s.cache.Set(ctx, key, cachedPage[models.Station]{Items: items, Total: total}, s.ttl)
	return items, total, nil
}

func (s *stationService) Get(ctx context.Context, id int) (models.Station, error) {
	key := fmt.Sprintf("stations:%d", id)
	var cached models.Station
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	st, err := s.stations.Get(ctx, id)
	if err != nil {
		return st, err
	}

	s.cache.Set(ctx, key, st, s.ttl)
	return st, nil
}

func (s *stationService) Create(ctx context.Context, st models.Station) (models.Station, error) {
	if err := validateStation(st); err != nil {
		return st, err
	}

	st, err := s.stations.Create(ctx, st)
	if err != nil {
		return st, err
	}
	s.invalidate(ctx)
	return st, nil
}

func (s *stationService) Update(ctx context.Context, id int, st models.Station) (models.Station, error) {
	st.ID = id
	if err := validateStation(st); err != nil {
		return st, err
	}

	st, err := s.stations.Update(ctx, st, routeDistance)
	if err != nil {
		return st, err
	}
	s.invalidate(ctx)
	return st, nil
}

func (s *stationService) Patch(ctx context.Context, id int, p models.StationPatch) (models.Station, error) {
	if err := Validate(p); err != nil {
		return models.Station{}, err
	}

	st, err := s.stations.Get(ctx, id)
	if err != nil {
		return st, err
	}
	p.Apply(&st)
	return s.Update(ctx, id, st)
}

func (s *stationService) Delete(ctx context.Context, id int) error {
	if err := s.stations.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *stationService) invalidate(ctx context.Context) {
	s.cache.DelPattern(ctx, "stations:*")
	s.cache.DelPattern(ctx, "routes:*")
}

func validateStation(st models.Station) error {
	if err := Validate(st); err != nil {
		return err
	}
	return geo.Point{Latitude: st.Latitude, Longitude: st.Longitude}.Validate()
}

func routeDistance(src, dst models.Station) (float64, error) {
	km, err := geo.Distance(
		geo.Point{Latitude: src.Latitude, Longitude: src.Longitude},
		geo.Point{Latitude: dst.Latitude, Longitude: dst.Longitude},
	)
	if err != nil {
		return 0, err
	}
	return geo.RoundKm(km), nil
}

type routeService struct {
	routes   repository.RouteRepository
	stations repository.StationRepository
	cache    Cache
	ttl      time.Duration
}

func NewRouteService(routes repository.RouteRepository, stations repository.StationRepository, cache Cache, ttl time.Duration) RouteService {
	return &routeService{routes: routes, stations: stations, cache: cache, ttl: ttl}
}

func (s *routeService) List(ctx context.Context, spec query.Spec) ([]models.RouteList, int, error) {
	key := "routes:list:" + spec.Key()
	var cached cachedPage[models.RouteList]
	if s.cache.Get(ctx, key, &cached) {
		return cached.Items, cached.Total, nil
	}

	items, total, err := s.routes.List(ctx, spec)
	if err != nil {
		return nil, 0, err
	}

	s.cache.Set(ctx, key, cachedPage[models.RouteList]{Items: items, Total: total}, s.ttl)
	return items, total, nil
}

func (s *routeService) Get(ctx context.Context, id int) (models.RouteDetail, error) {
	key := fmt.Sprintf("routes:%d", id)
	var cached models.RouteDetail
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	d, err := s.routes.Get(ctx, id)
	if err != nil {
		return d, err
	}

	s.cache.Set(ctx, key, d, s.ttl)
	return d, nil
}

// prepare validates r and fills in its distance. Any distance the client
// sent is overwritten.
func (s *routeService) prepare(ctx context.Context, r *models.Route) error {
	if err := Validate(*r); err != nil {
		return err
	}

	src, err := s.station(ctx, "source", r.Source)
	if err != nil {
		return err
	}
	dst, err := s.station(ctx, "destination", r.Destination)
	if err != nil {
		return err
	}

	r.Distance, err = routeDistance(src, dst)
	return err
}

func (s *routeService) station(ctx context.Context, field string, id int) (models.Station, error) {
	st, err := s.stations.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return st, doesNotExist(field, id)
	}
	return st, err
}

func (s *routeService) Create(ctx context.Context, r models.Route) (models.Route, error) {
	if err := s.prepare(ctx, &r); err != nil {
		return r, err
	}

	r, err := s.routes.Create(ctx, r)
	if err != nil {
		return r, err
	}
	log.Printf("[ROUTES] created route %d (%d -> %d, %.1f km)", r.ID, r.Source, r.Destination, r.Distance)
	s.invalidate(ctx)
	return r, nil
}

func (s *routeService) Update(ctx context.Context, id int, r models.Route) (models.Route, error) {
	r.ID = id
	if err := s.prepare(ctx, &r); err != nil {
		return r, err
	}

	r, err := s.routes.Update(ctx, r)
	if err != nil {
		return r, err
	}
	s.invalidate(ctx)
	return r, nil
}

func (s *routeService) Patch(ctx context.Context, id int, p models.RoutePatch) (models.Route, error) {
	if err := Validate(p); err != nil {
		return models.Route{}, err
	}

	d, err := s.routes.Get(ctx, id)
	if err != nil {
		return models.Route{}, err
	}
	r := d.Write()
	p.Apply(&r)
	return s.Update(ctx, id, r)
}

func (s *routeService) Delete(ctx context.Context, id int) error {
	if err := s.routes.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *routeService) invalidate(ctx context.Context) {
	s.cache.DelPattern(ctx, "routes:*")
}
