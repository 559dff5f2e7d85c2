package repository

import (
	"context"
	"database/sql"

	"railway/pkg/models"
	"railway/pkg/query"
)

type CrewRepository interface {
	List(ctx context.Context, spec query.Spec) ([]models.Crew, int, error)
	Get(ctx context.Context, id int) (models.Crew, error)
	Create(ctx context.Context, c models.Crew) (models.Crew, error)
	Update(ctx context.Context, c models.Crew) (models.Crew, error)
	Delete(ctx context.Context, id int) error
}

type crewRepository struct {
	db *sql.DB
}

func NewCrewRepository(db *sql.DB) CrewRepository {
	return &crewRepository{db: db}
}

func (r *crewRepository) List(ctx context.Context, spec query.Spec) ([]models.Crew, int, error) {
	countSQL, pageSQL, args, err := listQuery(
		"id, first_name, last_name", "FROM crew",
		spec, query.Columns{}, "id",
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

	crew := []models.Crew{}
	for rows.Next() {
		var c models.Crew
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName); err != nil {
			return nil, 0, err
		}
		crew = append(crew, c)
	}
	return crew, total, rows.Err()
}

func (r *crewRepository) Get(ctx context.Context, id int) (models.Crew, error) {
	var c models.Crew
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name FROM crew WHERE id = $1`, id,
	).Scan(&c.ID, &c.FirstName, &c.LastName)
	return c, translate(err, "crew member")
}

func (r *crewRepository) Create(ctx context.Context, c models.Crew) (models.Crew, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO crew (first_name, last_name) VALUES ($1, $2) RETURNING id`,
		c.FirstName, c.LastName,
	).Scan(&c.ID)
	return c, translate(err, "crew member")
}

func (r *crewRepository) Update(ctx context.Context, c models.Crew) (models.Crew, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE crew SET first_name = $1, last_name = $2 WHERE id = $3`,
		c.FirstName, c.LastName, c.ID,
	)
	if err != nil {
		return c, translate(err, "crew member")
	}
	return c, rowsAffected(res, "crew member")
}

func (r *crewRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM crew WHERE id = $1`, id)
	if err != nil {
		return translate(err, "crew member")
	}
	return rowsAffected(res, "crew member")
}
