package repository

import (
	"context"
	"database/sql"

	"railway/pkg/models"
	"railway/pkg/query"

	"github.com/lib/pq"
)

var journeyColumns = query.Columns{
	"source":         "src.name",
	"destination":    "dst.name",
	"train":          "t.name",
	"departure_time": "j.departure_time",
	"arrival_time":   "j.arrival_time",
}

const journeyFrom = `FROM journeys j
	JOIN routes r ON r.id = j.route_id
	JOIN stations src ON src.id = r.source_id
	JOIN stations dst ON dst.id = r.destination_id
	JOIN trains t ON t.id = j.train_id
	JOIN train_types tt ON tt.id = t.train_type_id`

// Sold tickets and crew names come from correlated subqueries so the joins
// above never fan out.
const journeyListCols = `j.id, src.name, dst.name, t.name, t.cargo_num, t.places_in_cargo,
	j.departure_time, j.arrival_time,
	(SELECT COUNT(*) FROM tickets tk WHERE tk.journey_id = j.id),
	COALESCE((SELECT array_agg(c.first_name || ' ' || c.last_name ORDER BY c.id)
		FROM journey_crew jc JOIN crew c ON c.id = jc.crew_id
		WHERE jc.journey_id = j.id), '{}')`

type JourneyRepository interface {
	List(ctx context.Context, spec query.Spec) ([]models.JourneyList, int, error)
	Get(ctx context.Context, id int) (models.JourneyDetail, error)
	// Find returns the write shape, relations as ids.
	Find(ctx context.Context, id int) (models.Journey, error)
	Create(ctx context.Context, j models.Journey) (models.Journey, error)
	Update(ctx context.Context, j models.Journey) (models.Journey, error)
	Delete(ctx context.Context, id int) error
	Availability(ctx context.Context, id int) (int, error)
}

type journeyRepository struct {
	db *sql.DB
}

func NewJourneyRepository(db *sql.DB) JourneyRepository {
	return &journeyRepository{db: db}
}

func (r *journeyRepository) List(ctx context.Context, spec query.Spec) ([]models.JourneyList, int, error) {
	countSQL, pageSQL, args, err := listQuery(journeyListCols, journeyFrom, spec, journeyColumns, "j.departure_time, j.id")
	if err != nil {
		return nil, 0, err
	}

	total, err := count(ctx, r.db, countSQL, args)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, pageSQL, pageArgs(args, spec)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	journeys := []models.JourneyList{}
	for rows.Next() {
		var j models.JourneyList
		var cargoNum, places, taken int
		var crew pq.StringArray
		if err := rows.Scan(
			&j.ID, &j.RouteSource, &j.RouteDestination, &j.TrainName, &cargoNum, &places,
			&j.DepartureTime, &j.ArrivalTime, &taken, &crew,
		); err != nil {
			return nil, 0, err
		}
		j.TrainCapacity = models.Capacity(cargoNum, places)
		j.TicketsAvailable = models.Availability(j.TrainCapacity, taken)
		j.DepartureTime = j.DepartureTime.UTC()
		j.ArrivalTime = j.ArrivalTime.UTC()
		j.Crew = []string(crew)
		journeys = append(journeys, j)
	}
	return journeys, total, rows.Err()
}

func (r *journeyRepository) Get(ctx context.Context, id int) (models.JourneyDetail, error) {
	var d models.JourneyDetail
	var image sql.NullString
	var taken int
	err := r.db.QueryRowContext(ctx,
		`SELECT j.id, j.departure_time, j.arrival_time,
			r.id, src.name, dst.name, r.distance,
			t.id, t.name, t.cargo_num, t.places_in_cargo, tt.name, t.image,
			(SELECT COUNT(*) FROM tickets tk WHERE tk.journey_id = j.id)
		`+journeyFrom+` WHERE j.id = $1`, id,
	).Scan(
		&d.ID, &d.DepartureTime, &d.ArrivalTime,
		&d.Route.ID, &d.Route.Source, &d.Route.Destination, &d.Route.Distance,
		&d.Train.ID, &d.Train.Name, &d.Train.CargoNum, &d.Train.PlacesInCargo, &d.Train.TrainType, &image,
		&taken,
	)
	if err != nil {
		return d, translate(err, "journey")
	}
	if image.Valid {
		d.Train.Image = &image.String
	}
	d.DepartureTime = d.DepartureTime.UTC()
	d.ArrivalTime = d.ArrivalTime.UTC()
	d.Train.Capacity = models.Capacity(d.Train.CargoNum, d.Train.PlacesInCargo)
	d.TicketsAvailable = models.Availability(d.Train.Capacity, taken)

	if d.Crew, err = r.crew(ctx, id); err != nil {
		return d, err
	}
	if d.TakenPlaces, err = r.takenPlaces(ctx, id); err != nil {
		return d, err
	}
	return d, nil
}

func (r *journeyRepository) crew(ctx context.Context, journeyID int) ([]models.Crew, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.first_name, c.last_name
		 FROM journey_crew jc JOIN crew c ON c.id = jc.crew_id
		 WHERE jc.journey_id = $1 ORDER BY c.id`, journeyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	crew := []models.Crew{}
	for rows.Next() {
		var c models.Crew
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName); err != nil {
			return nil, err
		}
		crew = append(crew, c)
	}
	return crew, rows.Err()
}

func (r *journeyRepository) takenPlaces(ctx context.Context, journeyID int) ([]models.Place, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cargo, seat FROM tickets WHERE journey_id = $1 ORDER BY cargo, seat`, journeyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	places := []models.Place{}
	for rows.Next() {
		var p models.Place
		if err := rows.Scan(&p.Cargo, &p.Seat); err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

func (r *journeyRepository) Find(ctx context.Context, id int) (models.Journey, error) {
	var j models.Journey
	var crew pq.Int64Array
	err := r.db.QueryRowContext(ctx,
		`SELECT j.id, j.route_id, j.train_id, j.departure_time, j.arrival_time,
			COALESCE((SELECT array_agg(crew_id ORDER BY crew_id) FROM journey_crew WHERE journey_id = j.id), '{}')
		 FROM journeys j WHERE j.id = $1`, id,
	).Scan(&j.ID, &j.Route, &j.Train, &j.DepartureTime, &j.ArrivalTime, &crew)
	if err != nil {
		return j, translate(err, "journey")
	}
	j.DepartureTime = j.DepartureTime.UTC()
	j.ArrivalTime = j.ArrivalTime.UTC()
	j.Crew = make([]int, 0, len(crew))
	for _, c := range crew {
		j.Crew = append(j.Crew, int(c))
	}
	return j, nil
}

func (r *journeyRepository) Create(ctx context.Context, j models.Journey) (models.Journey, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return j, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO journeys (route_id, train_id, departure_time, arrival_time)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		j.Route, j.Train, j.DepartureTime.UTC(), j.ArrivalTime.UTC(),
	).Scan(&j.ID)
	if err != nil {
		return j, translate(err, "journey")
	}

	if err := setCrew(ctx, tx, j.ID, j.Crew); err != nil {
		return j, err
	}
	return j, tx.Commit()
}

func (r *journeyRepository) Update(ctx context.Context, j models.Journey) (models.Journey, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return j, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE journeys SET route_id = $1, train_id = $2, departure_time = $3, arrival_time = $4
		 WHERE id = $5`,
		j.Route, j.Train, j.DepartureTime.UTC(), j.ArrivalTime.UTC(), j.ID,
	)
	if err != nil {
		return j, translate(err, "journey")
	}
	if err := rowsAffected(res, "journey"); err != nil {
		return j, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM journey_crew WHERE journey_id = $1`, j.ID); err != nil {
		return j, err
	}
	if err := setCrew(ctx, tx, j.ID, j.Crew); err != nil {
		return j, err
	}
	return j, tx.Commit()
}

func setCrew(ctx context.Context, q querier, journeyID int, crew []int) error {
	if len(crew) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(crew))
	for _, c := range crew {
		ids = append(ids, int64(c))
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO journey_crew (journey_id, crew_id)
		 SELECT DISTINCT $1::int, unnest($2::int[])`,
		journeyID, pq.Array(ids),
	)
	return translate(err, "journey crew")
}

func (r *journeyRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM journeys WHERE id = $1`, id)
	if err != nil {
		return translate(err, "journey")
	}
	return rowsAffected(res, "journey")
}

func (r *journeyRepository) Availability(ctx context.Context, id int) (int, error) {
	var cargoNum, places, taken int
	err := r.db.QueryRowContext(ctx,
		`SELECT t.cargo_num, t.places_in_cargo,
			(SELECT COUNT(*) FROM tickets tk WHERE tk.journey_id = j.id)
		 FROM journeys j JOIN trains t ON t.id = j.train_id
		 WHERE j.id = $1`, id,
	).Scan(&cargoNum, &places, &taken)
	if err != nil {
		return 0, translate(err, "journey")
	}
	return models.Availability(models.Capacity(cargoNum, places), taken), nil
}
