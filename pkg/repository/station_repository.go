package repository

import (
	"context"
	"database/sql"

	"railway/pkg/models"
	"railway/pkg/query"
)

var stationColumns = query.Columns{
	"name": "name",
}

// DistanceFunc gives the stored length in km of a route between two stations.
type DistanceFunc func(src, dst models.Station) (float64, error)

type StationRepository interface {
	List(ctx context.Context, spec query.Spec) ([]models.Station, int, error)
	Get(ctx context.Context, id int) (models.Station, error)
	Create(ctx context.Context, s models.Station) (models.Station, error)
	// Update rewrites the station and recomputes the distance of every route
	// touching it. Nothing is written unless both succeed.
	Update(ctx context.Context, s models.Station, distance DistanceFunc) (models.Station, error)
	Delete(ctx context.Context, id int) error
}

type stationRepository struct {
	db *sql.DB
}

func NewStationRepository(db *sql.DB) StationRepository {
	return &stationRepository{db: db}
}

func (r *stationRepository) List(ctx context.Context, spec query.Spec) ([]models.Station, int, error) {
	countSQL, pageSQL, args, err := listQuery(
		"id, name, latitude, longitude", "FROM stations",
		spec, stationColumns, "id",
	)
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

	stations := []models.Station{}
	for rows.Next() {
		var s models.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Latitude, &s.Longitude); err != nil {
			return nil, 0, err
		}
		stations = append(stations, s)
	}
	return stations, total, rows.Err()
}

func (r *stationRepository) Get(ctx context.Context, id int) (models.Station, error) {
	var s models.Station
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, latitude, longitude FROM stations WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Latitude, &s.Longitude)
	return s, translate(err, "station")
}

func (r *stationRepository) Create(ctx context.Context, s models.Station) (models.Station, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO stations (name, latitude, longitude) VALUES ($1, $2, $3) RETURNING id`,
		s.Name, s.Latitude, s.Longitude,
	).Scan(&s.ID)
	return s, translate(err, "station")
}

func (r *stationRepository) Update(ctx context.Context, s models.Station, distance DistanceFunc) (models.Station, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return s, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE stations SET name = $1, latitude = $2, longitude = $3 WHERE id = $4`,
		s.Name, s.Latitude, s.Longitude, s.ID,
	)
	if err != nil {
		return s, translate(err, "station")
	}
	if err := rowsAffected(res, "station"); err != nil {
		return s, err
	}

	routes, err := touchingRoutes(ctx, tx, s.ID)
	if err != nil {
		return s, err
	}
	for _, rt := range routes {
		km, err := distance(rt.Source, rt.Destination)
		if err != nil {
			return s, err
		}
		if km == rt.Distance {
			continue
		}
		if _, err := tx.ExecContext(ctx, `UPDATE routes SET distance = $1 WHERE id = $2`, km, rt.ID); err != nil {
			return s, translate(err, "route")
		}
	}
	return s, tx.Commit()
}

func (r *stationRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stations WHERE id = $1`, id)
	if err != nil {
		return translate(err, "station")
	}
	return rowsAffected(res, "station")
}
