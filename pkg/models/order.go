package models

import (
	"strconv"
	"time"
)

type Ticket struct {
	ID      int `json:"id"`
	Cargo   int `json:"cargo" validate:"required,gte=1"`
	Seat    int `json:"seat" validate:"required,gte=1"`
	Journey int `json:"journey" validate:"required,gt=0"`
}

func (t Ticket) Place() Place {
	return Place{Cargo: t.Cargo, Seat: t.Seat}
}

// Order is the write and detail shape. The owner never comes from the client.
type Order struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    int       `json:"-"`
	Tickets   []Ticket  `json:"tickets"`
}

type OrderRequest struct {
	Tickets []Ticket `json:"tickets" validate:"required,min=1,dive"`
}

type JourneySummary struct {
	ID            int       `json:"id"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
}

type TicketList struct {
	ID      int            `json:"id"`
	Cargo   int            `json:"cargo"`
	Seat    int            `json:"seat"`
	Journey JourneySummary `json:"journey"`
}

type OrderList struct {
	ID        int          `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Tickets   []TicketList `json:"tickets"`
}

func (o OrderList) Write() Order {
	out := Order{ID: o.ID, CreatedAt: o.CreatedAt, Tickets: make([]Ticket, 0, len(o.Tickets))}
	for _, t := range o.Tickets {
		out.Tickets = append(out.Tickets, Ticket{ID: t.ID, Cargo: t.Cargo, Seat: t.Seat, Journey: t.Journey.ID})
	}
	return out
}

// Fits reports field errors for a ticket outside the train's geometry.
func (t Ticket) Fits(cargoNum, placesInCargo int) map[string]string {
	errs := map[string]string{}
	if t.Cargo < 1 || t.Cargo > cargoNum {
		errs["cargo"] = "cargo must be in range [1, " + strconv.Itoa(cargoNum) + "]"
	}
	if t.Seat < 1 || t.Seat > placesInCargo {
		errs["seat"] = "seat must be in range [1, " + strconv.Itoa(placesInCargo) + "]"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
