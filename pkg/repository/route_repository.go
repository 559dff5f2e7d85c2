package repository

import (
	"context"
	"database/sql"

	"railway/pkg/models"
	"railway/pkg/query"
)

var routeColumns = query.Columns{
	"source":      "src.name",
	"destination": "dst.name",
}

const routeFrom = `FROM routes r
	JOIN stations src ON src.id = r.source_id
	JOIN stations dst ON dst.id = r.destination_id`

const routeDetailCols = `r.id, r.distance,
	src.id, src.name, src.latitude, src.longitude,
	dst.id, dst.name, dst.latitude, dst.longitude`

type RouteRepository interface {
	List(ctx context.Context, spec query.Spec) ([]models.RouteList, int, error)
	Get(ctx context.Context, id int) (models.RouteDetail, error)
	Create(ctx context.Context, rt models.Route) (models.Route, error)
	Update(ctx context.Context, rt models.Route) (models.Route, error)
	Delete(ctx context.Context, id int) error
}

type routeRepository struct {
	db *sql.DB
}

func NewRouteRepository(db *sql.DB) RouteRepository {
	return &routeRepository{db: db}
}

func (r *routeRepository) List(ctx context.Context, spec query.Spec) ([]models.RouteList, int, error) {
	countSQL, pageSQL, args, err := listQuery(
		"r.id, src.name, dst.name, r.distance", routeFrom,
		spec, routeColumns, "r.id",
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

	routes := []models.RouteList{}
	for rows.Next() {
		var rt models.RouteList
		if err := rows.Scan(&rt.ID, &rt.Source, &rt.Destination, &rt.Distance); err != nil {
			return nil, 0, err
		}
		routes = append(routes, rt)
	}
	return routes, total, rows.Err()
}

func scanRouteDetail(sc interface{ Scan(...any) error }) (models.RouteDetail, error) {
	var d models.RouteDetail
	err := sc.Scan(&d.ID, &d.Distance,
		&d.Source.ID, &d.Source.Name, &d.Source.Latitude, &d.Source.Longitude,
		&d.Destination.ID, &d.Destination.Name, &d.Destination.Latitude, &d.Destination.Longitude,
	)
	return d, err
}

func (r *routeRepository) Get(ctx context.Context, id int) (models.RouteDetail, error) {
	d, err := scanRouteDetail(r.db.QueryRowContext(ctx,
		"SELECT "+routeDetailCols+" "+routeFrom+" WHERE r.id = $1", id,
	))
	return d, translate(err, "route")
}

func (r *routeRepository) Create(ctx context.Context, rt models.Route) (models.Route, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO routes (source_id, destination_id, distance) VALUES ($1, $2, $3) RETURNING id`,
		rt.Source, rt.Destination, rt.Distance,
	).Scan(&rt.ID)
	return rt, translate(err, "route")
}

func (r *routeRepository) Update(ctx context.Context, rt models.Route) (models.Route, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE routes SET source_id = $1, destination_id = $2, distance = $3 WHERE id = $4`,
		rt.Source, rt.Destination, rt.Distance, rt.ID,
	)
	if err != nil {
		return rt, translate(err, "route")
	}
	return rt, rowsAffected(res, "route")
}

func (r *routeRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		return translate(err, "route")
	}
	return rowsAffected(res, "route")
}

// touchingRoutes returns every route with stationID at either end, with the
// stations as q currently sees them.
func touchingRoutes(ctx context.Context, q querier, stationID int) ([]models.RouteDetail, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+routeDetailCols+" "+routeFrom+
			" WHERE r.source_id = $1 OR r.destination_id = $1 ORDER BY r.id FOR UPDATE OF r", stationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []models.RouteDetail
	for rows.Next() {
		d, err := scanRouteDetail(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, d)
	}
	return routes, rows.Err()
}
