package models

type Crew struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name" validate:"required,max=63"`
	LastName  string `json:"last_name" validate:"required,max=63"`
}

func (c Crew) FullName() string {
	return c.FirstName + " " + c.LastName
}

type CrewList struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

func (c Crew) List() CrewList {
	return CrewList{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName, FullName: c.FullName()}
}

type CrewPatch struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=63"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=63"`
}

func (p CrewPatch) Apply(c *Crew) {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
}

type TrainType struct {
	ID   int    `json:"id"`
	Name string `json:"name" validate:"required,max=63"`
}

type TrainTypePatch struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=63"`
}

func (p TrainTypePatch) Apply(t *TrainType) {
	if p.Name != nil {
		t.Name = *p.Name
	}
}

// Train is the write shape; TrainType carries the id.
type Train struct {
	ID            int     `json:"id"`
	Name          string  `json:"name" validate:"required,max=63"`
	CargoNum      int     `json:"cargo_num" validate:"required,gte=1"`
	PlacesInCargo int     `json:"places_in_cargo" validate:"required,gte=1"`
	TrainType     int     `json:"train_type" validate:"required,gt=0"`
	Image         *string `json:"image"`
}

type TrainPatch struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=63"`
	CargoNum      *int    `json:"cargo_num" validate:"omitempty,gte=1"`
	PlacesInCargo *int    `json:"places_in_cargo" validate:"omitempty,gte=1"`
	TrainType     *int    `json:"train_type" validate:"omitempty,gt=0"`
}

func (p TrainPatch) Apply(t *Train) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.CargoNum != nil {
		t.CargoNum = *p.CargoNum
	}
	if p.PlacesInCargo != nil {
		t.PlacesInCargo = *p.PlacesInCargo
	}
	if p.TrainType != nil {
		t.TrainType = *p.TrainType
	}
}

func Capacity(cargoNum, placesInCargo int) int {
	return cargoNum * placesInCargo
}

type TrainList struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	CargoNum      int     `json:"cargo_num"`
	PlacesInCargo int     `json:"places_in_cargo"`
	Capacity      int     `json:"capacity"`
	TrainType     string  `json:"train_type"`
	Image         *string `json:"image"`
}

type TrainDetail struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	CargoNum      int       `json:"cargo_num"`
	PlacesInCargo int       `json:"places_in_cargo"`
	Capacity      int       `json:"capacity"`
	TrainType     TrainType `json:"train_type"`
	Image         *string   `json:"image"`
}

func (d TrainDetail) List() TrainList {
	return TrainList{
		ID:            d.ID,
		Name:          d.Name,
		CargoNum:      d.CargoNum,
		PlacesInCargo: d.PlacesInCargo,
		Capacity:      d.Capacity,
		TrainType:     d.TrainType.Name,
		Image:         d.Image,
	}
}

func (d TrainDetail) Write() Train {
	return Train{
		ID:            d.ID,
		Name:          d.Name,
		CargoNum:      d.CargoNum,
		PlacesInCargo: d.PlacesInCargo,
		TrainType:     d.TrainType.ID,
		Image:         d.Image,
	}
}
