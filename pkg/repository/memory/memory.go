// Package memory implements the repository interfaces over in-process maps.
// It honours the same filter, pagination and booking semantics as the
// Postgres repositories and backs the service and handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"railway/pkg/apperr"
	"railway/pkg/models"
	"railway/pkg/query"
	"railway/pkg/repository"
)

type userRow struct {
	user     models.User
	password string
}

type orderRow struct {
	id        int
	userID    int
	createdAt time.Time
	tickets   []models.Ticket
}

// Store holds every table. Deletes do not cascade except order tickets.
type Store struct {
	mu sync.Mutex

	seq map[string]int

	users      map[int]*userRow
	sessions   map[int]*models.Session
	stations   map[int]models.Station
	routes     map[int]models.Route
	crew       map[int]models.Crew
	trainTypes map[int]models.TrainType
	trains     map[int]models.Train
	journeys   map[int]models.Journey
	orders     map[int]*orderRow

	// Now stamps created_at on new orders; tests may override it.
	Now func() time.Time
}

func New() *Store {
	return &Store{
		seq:        map[string]int{},
		users:      map[int]*userRow{},
		sessions:   map[int]*models.Session{},
		stations:   map[int]models.Station{},
		routes:     map[int]models.Route{},
		crew:       map[int]models.Crew{},
		trainTypes: map[int]models.TrainType{},
		trains:     map[int]models.Train{},
		journeys:   map[int]models.Journey{},
		orders:     map[int]*orderRow{},
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) next(table string) int {
	s.seq[table]++
	return s.seq[table]
}

func page[T any](items []T, spec query.Spec) ([]T, int) {
	total := len(items)
	start := spec.Page.Offset()
	if start > total {
		start = total
	}
	end := start + spec.Page.Limit()
	if end > total || spec.Page.Limit() <= 0 {
		end = total
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, total
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Stations.

type stations struct{ *Store }

func (s *Store) Stations() repository.StationRepository { return stations{s} }

func (r stations) List(_ context.Context, spec query.Spec) ([]models.Station, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Station
	for _, id := range sortedKeys(r.stations) {
		st := r.stations[id]
		if spec.Matches(map[string]any{"name": st.Name}) {
			out = append(out, st)
		}
	}
	items, total := page(out, spec)
	return items, total, nil
}

func (r stations) Get(_ context.Context, id int) (models.Station, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.stations[id]
	if !ok {
		return st, apperr.NotFound("station")
	}
	return st, nil
}

func (r stations) Create(_ context.Context, st models.Station) (models.Station, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st.ID = r.next("stations")
	r.stations[st.ID] = st
	return st, nil
}

func (r stations) Update(_ context.Context, st models.Station, distance repository.DistanceFunc) (models.Station, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stations[st.ID]; !ok {
		return st, apperr.NotFound("station")
	}

	at := func(id int) models.Station {
		if id == st.ID {
			return st
		}
		return r.stations[id]
	}
	km := map[int]float64{}
	for id, rt := range r.routes {
		if rt.Source != st.ID && rt.Destination != st.ID {
			continue
		}
		d, err := distance(at(rt.Source), at(rt.Destination))
		if err != nil {
			return st, err
		}
		km[id] = d
	}

	r.stations[st.ID] = st
	for id, d := range km {
		rt := r.routes[id]
		rt.Distance = d
		r.routes[id] = rt
	}
	return st, nil
}

func (r stations) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stations[id]; !ok {
		return apperr.NotFound("station")
	}
	delete(r.stations, id)
	return nil
}

// Routes.

type routes struct{ *Store }

func (s *Store) Routes() repository.RouteRepository { return routes{s} }

func (r routes) detail(rt models.Route) models.RouteDetail {
	return models.RouteDetail{
		ID:          rt.ID,
		Source:      r.stations[rt.Source],
		Destination: r.stations[rt.Destination],
		Distance:    rt.Distance,
	}
}

func (r routes) List(_ context.Context, spec query.Spec) ([]models.RouteList, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.RouteList
	for _, id := range sortedKeys(r.routes) {
		l := r.detail(r.routes[id]).List()
		if spec.Matches(map[string]any{"source": l.Source, "destination": l.Destination}) {
			out = append(out, l)
		}
	}
	items, total := page(out, spec)
	return items, total, nil
}

func (r routes) Get(_ context.Context, id int) (models.RouteDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.routes[id]
	if !ok {
		return models.RouteDetail{}, apperr.NotFound("route")
	}
	return r.detail(rt), nil
}

func (r routes) checkRefs(rt models.Route) error {
	if _, ok := r.stations[rt.Source]; !ok {
		return apperr.Invalid("source", "object does not exist")
	}
	if _, ok := r.stations[rt.Destination]; !ok {
		return apperr.Invalid("destination", "object does not exist")
	}
	return nil
}

func (r routes) Create(_ context.Context, rt models.Route) (models.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkRefs(rt); err != nil {
		return rt, err
	}
	rt.ID = r.next("routes")
	r.routes[rt.ID] = rt
	return rt, nil
}

func (r routes) Update(_ context.Context, rt models.Route) (models.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routes[rt.ID]; !ok {
		return rt, apperr.NotFound("route")
	}
	if err := r.checkRefs(rt); err != nil {
		return rt, err
	}
	r.routes[rt.ID] = rt
	return rt, nil
}

func (r routes) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routes[id]; !ok {
		return apperr.NotFound("route")
	}
	delete(r.routes, id)
	return nil
}

// Crew.

type crew struct{ *Store }

func (s *Store) Crew() repository.CrewRepository { return crew{s} }

func (r crew) List(_ context.Context, spec query.Spec) ([]models.Crew, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Crew
	for _, id := range sortedKeys(r.crew) {
		out = append(out, r.crew[id])
	}
	items, total := page(out, spec)
	return items, total, nil
}

func (r crew) Get(_ context.Context, id int) (models.Crew, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.crew[id]
	if !ok {
		return c, apperr.NotFound("crew member")
	}
	return c, nil
}

func (r crew) Create(_ context.Context, c models.Crew) (models.Crew, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.next("crew")
	r.crew[c.ID] = c
	return c, nil
}

func (r crew) Update(_ context.Context, c models.Crew) (models.Crew, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.crew[c.ID]; !ok {
		return c, apperr.NotFound("crew member")
	}
	r.crew[c.ID] = c
	return c, nil
}

func (r crew) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.crew[id]; !ok {
		return apperr.NotFound("crew member")
	}
	delete(r.crew, id)
	return nil
}

// Train types.

type trainTypes struct{ *Store }

func (s *Store) TrainTypes() repository.TrainTypeRepository { return trainTypes{s} }

func (r trainTypes) List(_ context.Context, spec query.Spec) ([]models.TrainType, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TrainType
	for _, id := range sortedKeys(r.trainTypes) {
		out = append(out, r.trainTypes[id])
	}
	items, total := page(out, spec)
	return items, total, nil
}

func (r trainTypes) Get(_ context.Context, id int) (models.TrainType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tt, ok := r.trainTypes[id]
	if !ok {
		return tt, apperr.NotFound("train type")
	}
	return tt, nil
}

func (r trainTypes) Create(_ context.Context, tt models.TrainType) (models.TrainType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tt.ID = r.next("train_types")
	r.trainTypes[tt.ID] = tt
	return tt, nil
}

func (r trainTypes) Update(_ context.Context, tt models.TrainType) (models.TrainType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trainTypes[tt.ID]; !ok {
		return tt, apperr.NotFound("train type")
	}
	r.trainTypes[tt.ID] = tt
	return tt, nil
}

func (r trainTypes) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trainTypes[id]; !ok {
		return apperr.NotFound("train type")
	}
	delete(r.trainTypes, id)
	return nil
}

// Trains.

type trains struct{ *Store }

func (s *Store) Trains() repository.TrainRepository { return trains{s} }

func (s *Store) trainDetail(t models.Train) models.TrainDetail {
	return models.TrainDetail{
		ID:            t.ID,
		Name:          t.Name,
		CargoNum:      t.CargoNum,
		PlacesInCargo: t.PlacesInCargo,
		Capacity:      models.Capacity(t.CargoNum, t.PlacesInCargo),
		TrainType:     s.trainTypes[t.TrainType],
		Image:         t.Image,
	}
}

func (r trains) List(_ context.Context, spec query.Spec) ([]models.TrainList, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TrainList
	for _, id := range sortedKeys(r.trains) {
		l := r.trainDetail(r.trains[id]).List()
		if spec.Matches(map[string]any{"name": l.Name, "train_type": l.TrainType}) {
			out = append(out, l)
		}
	}
	items, total := page(out, spec)
	return items, total, nil
}

func (r trains) Get(_ context.Context, id int) (models.TrainDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trains[id]
	if !ok {
		return models.TrainDetail{}, apperr.NotFound("train")
	}
	return r.trainDetail(t), nil
}

func (r trains) Create(_ context.Context, t models.Train) (models.Train, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trainTypes[t.TrainType]; !ok {
		return t, apperr.Invalid("train_type", "object does not exist")
	}
	t.ID = r.next("trains")
	r.trains[t.ID] = t
	return t, nil
}

func (r trains) Update(_ context.Context, t models.Train) (models.Train, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.trains[t.ID]
	if !ok {
		return t, apperr.NotFound("train")
	}
	if _, ok := r.trainTypes[t.TrainType]; !ok {
		return t, apperr.Invalid("train_type", "object does not exist")
	}
	t.Image = old.Image
	r.trains[t.ID] = t
	return t, nil
}

func (r trains) SetImage(_ context.Context, id int, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trains[id]
	if !ok {
		return apperr.NotFound("train")
	}
	t.Image = &path
	r.trains[id] = t
	return nil
}

func (r trains) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trains[id]; !ok {
		return apperr.NotFound("train")
	}
	delete(r.trains, id)
	return nil
}

// Journeys.

type journeys struct{ *Store }

func (s *Store) Journeys() repository.JourneyRepository { return journeys{s} }

func (s *Store) takenPlaces(journeyID int) []models.Place {
	places := []models.Place{}
	for _, o := range s.orders {
		for _, t := range o.tickets {
			if t.Journey == journeyID {
				places = append(places, t.Place())
			}
		}
	}
	sort.Slice(places, func(i, j int) bool {
		if places[i].Cargo != places[j].Cargo {
			return places[i].Cargo < places[j].Cargo
		}
		return places[i].Seat < places[j].Seat
	})
	return places
}

func (s *Store) journeyDetail(j models.Journey) models.JourneyDetail {
	rt := s.routes[j.Route]
	route := models.RouteDetail{
		ID:          rt.ID,
		Source:      s.stations[rt.Source],
		Destination: s.stations[rt.Destination],
		Distance:    rt.Distance,
	}.List()
	train := s.trainDetail(s.trains[j.Train]).List()

	crew := []models.Crew{}
	ids := append([]int(nil), j.Crew...)
	sort.Ints(ids)
	for _, id := range ids {
		crew = append(crew, s.crew[id])
	}

	taken := s.takenPlaces(j.ID)
	return models.JourneyDetail{
		ID:               j.ID,
		Route:            route,
		Train:            train,
		Crew:             crew,
		DepartureTime:    j.DepartureTime,
		ArrivalTime:      j.ArrivalTime,
		TicketsAvailable: models.Availability(train.Capacity, len(taken)),
		TakenPlaces:      taken,
	}
}

func (r journeys) List(_ context.Context, spec query.Spec) ([]models.JourneyList, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]models.Journey, 0, len(r.journeys))
	for _, id := range sortedKeys(r.journeys) {
		all = append(all, r.journeys[id])
	}
	sort.SliceStable(all, func(i, k int) bool { return all[i].DepartureTime.Before(all[k].DepartureTime) })

	var out []models.JourneyList
	for _, j := range all {
		l := r.journeyDetail(j).List()
		if spec.Matches(map[string]any{
			"source":         l.RouteSource,
			"destination":    l.RouteDestination,
			"train":          l.TrainName,
			"departure_time": l.DepartureTime,
			"arrival_time":   l.ArrivalTime,
		}) {
			out = append(out, l)
		}
	}
	items, total := page(out, spec)
	return items, total, nil
}

func (r journeys) Get(_ context.Context, id int) (models.JourneyDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.journeys[id]
	if !ok {
		return models.JourneyDetail{}, apperr.NotFound("journey")
	}
	return r.journeyDetail(j), nil
}

func (r journeys) Find(_ context.Context, id int) (models.Journey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.journeys[id]
	if !ok {
		return j, apperr.NotFound("journey")
	}
	j.Crew = append([]int{}, j.Crew...)
	return j, nil
}

func (r journeys) checkRefs(j models.Journey) error {
	if _, ok := r.routes[j.Route]; !ok {
		return apperr.Invalid("route", "object does not exist")
	}
	if _, ok := r.trains[j.Train]; !ok {
		return apperr.Invalid("train", "object does not exist")
	}
	for _, c := range j.Crew {
		if _, ok := r.crew[c]; !ok {
			return apperr.Invalid("crew", "object does not exist")
		}
	}
	return nil
}

func dedupe(ids []int) []int {
	seen := map[int]bool{}
	out := []int{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (r journeys) Create(_ context.Context, j models.Journey) (models.Journey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkRefs(j); err != nil {
		return j, err
	}
	j.ID = r.next("journeys")
	j.Crew = dedupe(j.Crew)
	r.journeys[j.ID] = j
	return j, nil
}

func (r journeys) Update(_ context.Context, j models.Journey) (models.Journey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.journeys[j.ID]; !ok {
		return j, apperr.NotFound("journey")
	}
	if err := r.checkRefs(j); err != nil {
		return j, err
	}
	j.Crew = dedupe(j.Crew)
	r.journeys[j.ID] = j
	return j, nil
}

func (r journeys) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.journeys[id]; !ok {
		return apperr.NotFound("journey")
	}
	delete(r.journeys, id)
	return nil
}

func (r journeys) Availability(_ context.Context, id int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.journeys[id]
	if !ok {
		return 0, apperr.NotFound("journey")
	}
	t := r.trains[j.Train]
	return models.Availability(models.Capacity(t.CargoNum, t.PlacesInCargo), len(r.takenPlaces(id))), nil
}

// Orders.

type orders struct{ *Store }

func (s *Store) Orders() repository.OrderRepository { return orders{s} }

func (r orders) List(_ context.Context, spec query.Spec) ([]models.OrderList, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*orderRow, 0, len(r.orders))
	for _, o := range r.orders {
		all = append(all, o)
	}
	sort.Slice(all, func(i, k int) bool {
		if !all[i].createdAt.Equal(all[k].createdAt) {
			return all[i].createdAt.After(all[k].createdAt)
		}
		return all[i].id > all[k].id
	})

	var out []models.OrderList
	for _, o := range all {
		if !spec.Matches(map[string]any{"created_at": o.createdAt, "owner": o.userID}) {
			continue
		}
		l := models.OrderList{ID: o.id, CreatedAt: o.createdAt, Tickets: []models.TicketList{}}
		for _, t := range o.tickets {
			j := r.journeyDetail(r.journeys[t.Journey])
			l.Tickets = append(l.Tickets, models.TicketList{
				ID:    t.ID,
				Cargo: t.Cargo,
				Seat:  t.Seat,
				Journey: models.JourneySummary{
					ID:            t.Journey,
					Source:        j.Route.Source,
					Destination:   j.Route.Destination,
					DepartureTime: j.DepartureTime,
				},
			})
		}
		out = append(out, l)
	}
	items, total := page(out, spec)
	return items, total, nil
}

func (r orders) Get(_ context.Context, id int) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return models.Order{}, apperr.NotFound("order")
	}
	return models.Order{
		ID:        o.id,
		CreatedAt: o.createdAt,
		UserID:    o.userID,
		Tickets:   append([]models.Ticket{}, o.tickets...),
	}, nil
}

// Create checks every ticket before storing any, so a failure leaves no
// trace.
func (r orders) Create(_ context.Context, userID int, tickets []models.Ticket) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	taken := map[[3]int]bool{}
	for _, o := range r.orders {
		for _, t := range o.tickets {
			taken[[3]int{t.Journey, t.Cargo, t.Seat}] = true
		}
	}

	for i, t := range tickets {
		j, ok := r.journeys[t.Journey]
		if !ok {
			return models.Order{}, apperr.Invalid(fmt.Sprintf("tickets[%d].journey", i), "journey does not exist")
		}
		train := r.trains[j.Train]
		if errs := t.Fits(train.CargoNum, train.PlacesInCargo); errs != nil {
			fields := map[string]string{}
			for k, v := range errs {
				fields[fmt.Sprintf("tickets[%d].%s", i, k)] = v
			}
			return models.Order{}, apperr.InvalidFields(fields)
		}
		k := [3]int{t.Journey, t.Cargo, t.Seat}
		if taken[k] {
			return models.Order{}, apperr.Conflict(fmt.Sprintf("seat %d in cargo %d is already taken for journey %d", t.Seat, t.Cargo, t.Journey))
		}
		taken[k] = true
	}

	o := &orderRow{id: r.next("orders"), userID: userID, createdAt: r.Now()}
	for _, t := range tickets {
		t.ID = r.next("tickets")
		o.tickets = append(o.tickets, t)
	}
	r.orders[o.id] = o

	return models.Order{ID: o.id, CreatedAt: o.createdAt, UserID: userID, Tickets: append([]models.Ticket{}, o.tickets...)}, nil
}

func (r orders) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return apperr.NotFound("order")
	}
	delete(r.orders, id)
	return nil
}

// Auth.

type auth struct{ *Store }

func (s *Store) Auth() repository.AuthRepository { return auth{s} }

func (r auth) CreateUser(_ context.Context, email, hashedPassword string, staff bool) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.user.Email == email {
			return models.User{}, apperr.Invalid("email", "user with this email already exists")
		}
	}
	u := models.User{ID: r.next("users"), Email: email, IsStaff: staff, CreatedAt: time.Now().UTC()}
	r.users[u.ID] = &userRow{user: u, password: hashedPassword}
	return u, nil
}

func (r auth) GetUserByEmail(_ context.Context, email string) (models.User, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.user.Email == email {
			return u.user, u.password, nil
		}
	}
	return models.User{}, "", apperr.NotFound("user")
}

func (r auth) GetUserByID(_ context.Context, id int) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, apperr.NotFound("user")
	}
	return u.user, nil
}

func (r auth) UpdateUser(_ context.Context, id int, email *string, hashedPassword *string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, apperr.NotFound("user")
	}
	if email != nil {
		e := strings.ToLower(*email)
		for other, row := range r.users {
			if other != id && row.user.Email == e {
				return models.User{}, apperr.Invalid("email", "user with this email already exists")
			}
		}
		u.user.Email = e
	}
	if hashedPassword != nil {
		u.password = *hashedPassword
	}
	return u.user, nil
}

func (r auth) CreateSession(_ context.Context, userID int, refreshToken, userAgent, ip string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next("sessions")
	r.sessions[id] = &models.Session{
		ID: id, UserID: userID, RefreshToken: refreshToken,
		UserAgent: userAgent, IP: ip, ExpiresAt: expiresAt, CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (r auth) GetSessionByToken(_ context.Context, token string) (models.Session, models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.RefreshToken == token {
			return *s, r.users[s.UserID].user, nil
		}
	}
	return models.Session{}, models.User{}, apperr.NotFound("session")
}

func (r auth) UpdateSession(_ context.Context, sessionID int, oldRefresh, newRefresh string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.RefreshToken != oldRefresh {
		return apperr.NotFound("session")
	}
	s.RefreshToken = newRefresh
	s.ExpiresAt = expiresAt
	return nil
}

func (r auth) DeleteSessionByToken(_ context.Context, userID int, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.RefreshToken == token && s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r auth) DeleteAllSessionsByUserID(_ context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}
