package models

type Station struct {
	ID        int     `json:"id"`
	Name      string  `json:"name" validate:"required,max=63"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

type StationPatch struct {
	Name      *string  `json:"name" validate:"omitempty,min=1,max=63"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

func (p StationPatch) Apply(s *Station) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Latitude != nil {
		s.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		s.Longitude = *p.Longitude
	}
}

// Route is the write shape. Distance is computed server-side and any
// client-supplied value is discarded.
type Route struct {
	ID          int     `json:"id"`
	Source      int     `json:"source" validate:"required,gt=0"`
	Destination int     `json:"destination" validate:"required,gt=0,nefield=Source"`
	Distance    float64 `json:"distance"`
}

type RoutePatch struct {
	Source      *int `json:"source" validate:"omitempty,gt=0"`
	Destination *int `json:"destination" validate:"omitempty,gt=0"`
}

func (p RoutePatch) Apply(r *Route) {
	if p.Source != nil {
		r.Source = *p.Source
	}
	if p.Destination != nil {
		r.Destination = *p.Destination
	}
}

type RouteList struct {
	ID          int     `json:"id"`
	Source      string  `json:"source"`
	Destination string  `json:"destination"`
	Distance    float64 `json:"distance"`
}

type RouteDetail struct {
	ID          int     `json:"id"`
	Source      Station `json:"source"`
	Destination Station `json:"destination"`
	Distance    float64 `json:"distance"`
}

func (d RouteDetail) List() RouteList {
	return RouteList{ID: d.ID, Source: d.Source.Name, Destination: d.Destination.Name, Distance: d.Distance}
}

func (d RouteDetail) Write() Route {
	return Route{ID: d.ID, Source: d.Source.ID, Destination: d.Destination.ID, Distance: d.Distance}
}
