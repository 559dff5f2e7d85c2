package models

import "time"

// Journey is the write shape: relations as ids.
type Journey struct {
	ID            int       `json:"id"`
	Route         int       `json:"route" validate:"required,gt=0"`
	Train         int       `json:"train" validate:"required,gt=0"`
	Crew          []int     `json:"crew" validate:"dive,gt=0"`
	DepartureTime time.Time `json:"departure_time" validate:"required"`
	ArrivalTime   time.Time `json:"arrival_time" validate:"required"`
}

type JourneyPatch struct {
	Route         *int       `json:"route" validate:"omitempty,gt=0"`
	Train         *int       `json:"train" validate:"omitempty,gt=0"`
	Crew          *[]int     `json:"crew" validate:"omitempty,dive,gt=0"`
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
}

func (p JourneyPatch) Apply(j *Journey) {
	if p.Route != nil {
		j.Route = *p.Route
	}
	if p.Train != nil {
		j.Train = *p.Train
	}
	if p.Crew != nil {
		j.Crew = *p.Crew
	}
	if p.DepartureTime != nil {
		j.DepartureTime = *p.DepartureTime
	}
	if p.ArrivalTime != nil {
		j.ArrivalTime = *p.ArrivalTime
	}
}

type JourneyList struct {
	ID               int       `json:"id"`
	RouteSource      string    `json:"route_source"`
	RouteDestination string    `json:"route_destination"`
	TrainName        string    `json:"train_name"`
	TrainCapacity    int       `json:"train_capacity"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	TicketsAvailable int       `json:"tickets_available"`
	Crew             []string  `json:"crew"`
}

type Place struct {
	Cargo int `json:"cargo"`
	Seat  int `json:"seat"`
}

type JourneyDetail struct {
	ID               int       `json:"id"`
	Route            RouteList `json:"route"`
	Train            TrainList `json:"train"`
	Crew             []Crew    `json:"crew"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	TicketsAvailable int       `json:"tickets_available"`
	TakenPlaces      []Place   `json:"taken_places"`
}

func (d JourneyDetail) List() JourneyList {
	names := make([]string, 0, len(d.Crew))
	for _, c := range d.Crew {
		names = append(names, c.FullName())
	}
	return JourneyList{
		ID:               d.ID,
		RouteSource:      d.Route.Source,
		RouteDestination: d.Route.Destination,
		TrainName:        d.Train.Name,
		TrainCapacity:    d.Train.Capacity,
		DepartureTime:    d.DepartureTime,
		ArrivalTime:      d.ArrivalTime,
		TicketsAvailable: d.TicketsAvailable,
		Crew:             names,
	}
}

// Availability is capacity minus sold tickets, floored at zero.
func Availability(capacity, taken int) int {
	if taken >= capacity {
		return 0
	}
	return capacity - taken
}

// AvailabilityUpdate is pushed to live subscribers of a journey.
type AvailabilityUpdate struct {
	JourneyID        int `json:"journey_id"`
	TicketsAvailable int `json:"tickets_available"`
}
