package services

import (
	"context"
	"fmt"
	"log"

	"railway/pkg/apperr"
	"railway/pkg/hub"
	"railway/pkg/models"
	"railway/pkg/query"
	"railway/pkg/repository"
)

type OrderService interface {
	List(ctx context.Context, spec query.Spec, caller models.Identity) ([]models.OrderList, int, error)
	Get(ctx context.Context, id int, caller models.Identity) (models.Order, error)
	Create(ctx context.Context, caller models.Identity, req models.OrderRequest) (models.Order, error)
	Delete(ctx context.Context, id int) error
}

type orderService struct {
	orders   repository.OrderRepository
	journeys repository.JourneyRepository
	events   Publisher
}

func NewOrderService(orders repository.OrderRepository, journeys repository.JourneyRepository, events Publisher) OrderService {
	return &orderService{orders: orders, journeys: journeys, events: events}
}

// scope restricts non-staff callers to their own orders.
func scope(spec query.Spec, caller models.Identity) query.Spec {
	if caller.Staff {
		return spec
	}
	return spec.OwnedBy(caller.UserID)
}

func (s *orderService) List(ctx context.Context, spec query.Spec, caller models.Identity) ([]models.OrderList, int, error) {
	if !caller.Authenticated() {
		return nil, 0, apperr.ErrUnauthenticated
	}
	return s.orders.List(ctx, scope(spec, caller))
}

// Get hides orders of other users as not found.
func (s *orderService) Get(ctx context.Context, id int, caller models.Identity) (models.Order, error) {
	if !caller.Authenticated() {
		return models.Order{}, apperr.ErrUnauthenticated
	}
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return o, err
	}
	if !caller.Staff && o.UserID != caller.UserID {
		return models.Order{}, apperr.NotFound("order")
	}
	return o, nil
}

func (s *orderService) Create(ctx context.Context, caller models.Identity, req models.OrderRequest) (models.Order, error) {
	if !caller.Authenticated() {
		return models.Order{}, apperr.ErrUnauthenticated
	}
	if err := Validate(req); err != nil {
		return models.Order{}, err
	}
	if err := uniquePlaces(req.Tickets); err != nil {
		return models.Order{}, err
	}

	o, err := s.orders.Create(ctx, caller.UserID, req.Tickets)
	if err != nil {
		return models.Order{}, err
	}
	log.Printf("[BOOKING] order %d: %d tickets for user %d", o.ID, len(o.Tickets), caller.UserID)

	s.publish(ctx, o.Tickets)
	return o, nil
}

func (s *orderService) Delete(ctx context.Context, id int) error {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, o.Tickets)
	return nil
}

// publish pushes fresh availability for every journey in tickets. It is
// best effort and never fails the caller.
func (s *orderService) publish(ctx context.Context, tickets []models.Ticket) {
	if s.events == nil {
		return
	}
	seen := map[int]bool{}
	for _, t := range tickets {
		if seen[t.Journey] {
			continue
		}
		seen[t.Journey] = true

		n, err := s.journeys.Availability(ctx, t.Journey)
		if err != nil {
			log.Printf("[BOOKING] availability for journey %d: %v", t.Journey, err)
			continue
		}
		update := models.AvailabilityUpdate{JourneyID: t.Journey, TicketsAvailable: n}
		if err := s.events.Broadcast(hub.Channel, hub.ActionAvailability, "journeys", update); err != nil {
			log.Printf("[BOOKING] publish journey %d: %v", t.Journey, err)
		}
	}
}

// uniquePlaces rejects a request that books the same seat twice.
func uniquePlaces(tickets []models.Ticket) error {
	type key struct{ journey, cargo, seat int }
	seen := make(map[key]int, len(tickets))
	for i, t := range tickets {
		k := key{t.Journey, t.Cargo, t.Seat}
		if j, ok := seen[k]; ok {
			return apperr.Invalid(fmt.Sprintf("tickets[%d]", i),
				fmt.Sprintf("duplicates tickets[%d]: seat %d in cargo %d of journey %d", j, t.Seat, t.Cargo, t.Journey))
		}
		seen[k] = i
	}
	return nil
}
