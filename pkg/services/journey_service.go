package services

import (
	"context"
	"errors"

	"railway/pkg/apperr"
	"railway/pkg/models"
	"railway/pkg/query"
	"railway/pkg/repository"
)

type JourneyService interface {
	List(ctx context.Context, spec query.Spec) ([]models.JourneyList, int, error)
	Get(ctx context.Context, id int) (models.JourneyDetail, error)
	Create(ctx context.Context, j models.Journey) (models.Journey, error)
	Update(ctx context.Context, id int, j models.Journey) (models.Journey, error)
	Patch(ctx context.Context, id int, p models.JourneyPatch) (models.Journey, error)
	Delete(ctx context.Context, id int) error
	Availability(ctx context.Context, id int) (models.AvailabilityUpdate, error)
}

type journeyService struct {
	journeys repository.JourneyRepository
	routes   repository.RouteRepository
	trains   repository.TrainRepository
}

func NewJourneyService(journeys repository.JourneyRepository, routes repository.RouteRepository, trains repository.TrainRepository) JourneyService {
	return &journeyService{journeys: journeys, routes: routes, trains: trains}
}

func (s *journeyService) List(ctx context.Context, spec query.Spec) ([]models.JourneyList, int, error) {
	return s.journeys.List(ctx, spec)
}

func (s *journeyService) Get(ctx context.Context, id int) (models.JourneyDetail, error) {
	return s.journeys.Get(ctx, id)
}

// check validates j and its references. Times are normalised to UTC.
func (s *journeyService) check(ctx context.Context, j *models.Journey) error {
	if err := Validate(*j); err != nil {
		return err
	}

	j.DepartureTime = j.DepartureTime.UTC()
	j.ArrivalTime = j.ArrivalTime.UTC()
	if j.ArrivalTime.Before(j.DepartureTime) {
		return apperr.Invalid("arrival_time", "arrival time must not be earlier than departure time")
	}

	if _, err := s.routes.Get(ctx, j.Route); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return doesNotExist("route", j.Route)
		}
		return err
	}
	if _, err := s.trains.Get(ctx, j.Train); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return doesNotExist("train", j.Train)
		}
		return err
	}
	if j.Crew == nil {
		j.Crew = []int{}
	}
	return nil
}

func (s *journeyService) Create(ctx context.Context, j models.Journey) (models.Journey, error) {
	if err := s.check(ctx, &j); err != nil {
		return j, err
	}
	return s.journeys.Create(ctx, j)
}

func (s *journeyService) Update(ctx context.Context, id int, j models.Journey) (models.Journey, error) {
	j.ID = id
	if err := s.check(ctx, &j); err != nil {
		return j, err
	}
	return s.journeys.Update(ctx, j)
}

func (s *journeyService) Patch(ctx context.Context, id int, p models.JourneyPatch) (models.Journey, error) {
	if err := Validate(p); err != nil {
		return models.Journey{}, err
	}
	j, err := s.journeys.Find(ctx, id)
	if err != nil {
		return j, err
	}
	p.Apply(&j)
	return s.Update(ctx, id, j)
}

func (s *journeyService) Delete(ctx context.Context, id int) error {
	return s.journeys.Delete(ctx, id)
}

func (s *journeyService) Availability(ctx context.Context, id int) (models.AvailabilityUpdate, error) {
	n, err := s.journeys.Availability(ctx, id)
	if err != nil {
		return models.AvailabilityUpdate{}, err
	}
	return models.AvailabilityUpdate{JourneyID: id, TicketsAvailable: n}, nil
}
