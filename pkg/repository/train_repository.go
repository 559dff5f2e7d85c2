package repository

import (
	"context"
	"database/sql"

	"railway/pkg/models"
	"railway/pkg/query"
)

var trainColumns = query.Columns{
	"name":       "t.name",
	"train_type": "tt.name",
}

const trainFrom = `FROM trains t JOIN train_types tt ON tt.id = t.train_type_id`

type TrainTypeRepository interface {
	List(ctx context.Context, spec query.Spec) ([]models.TrainType, int, error)
	Get(ctx context.Context, id int) (models.TrainType, error)
	Create(ctx context.Context, tt models.TrainType) (models.TrainType, error)
	Update(ctx context.Context, tt models.TrainType) (models.TrainType, error)
	Delete(ctx context.Context, id int) error
}

type TrainRepository interface {
	List(ctx context.Context, spec query.Spec) ([]models.TrainList, int, error)
	Get(ctx context.Context, id int) (models.TrainDetail, error)
	Create(ctx context.Context, t models.Train) (models.Train, error)
	Update(ctx context.Context, t models.Train) (models.Train, error)
	SetImage(ctx context.Context, id int, path string) error
	Delete(ctx context.Context, id int) error
}

type trainTypeRepository struct {
	db *sql.DB
}

func NewTrainTypeRepository(db *sql.DB) TrainTypeRepository {
	return &trainTypeRepository{db: db}
}

func (r *trainTypeRepository) List(ctx context.Context, spec query.Spec) ([]models.TrainType, int, error) {
	countSQL, pageSQL, args, err := listQuery("id, name", "FROM train_types", spec, query.Columns{}, "id")
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

	types := []models.TrainType{}
	for rows.Next() {
		var tt models.TrainType
		if err := rows.Scan(&tt.ID, &tt.Name); err != nil {
			return nil, 0, err
		}
		types = append(types, tt)
	}
	return types, total, rows.Err()
}

func (r *trainTypeRepository) Get(ctx context.Context, id int) (models.TrainType, error) {
	var tt models.TrainType
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM train_types WHERE id = $1`, id).Scan(&tt.ID, &tt.Name)
	return tt, translate(err, "train type")
}

func (r *trainTypeRepository) Create(ctx context.Context, tt models.TrainType) (models.TrainType, error) {
	err := r.db.QueryRowContext(ctx, `INSERT INTO train_types (name) VALUES ($1) RETURNING id`, tt.Name).Scan(&tt.ID)
	return tt, translate(err, "train type")
}

func (r *trainTypeRepository) Update(ctx context.Context, tt models.TrainType) (models.TrainType, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE train_types SET name = $1 WHERE id = $2`, tt.Name, tt.ID)
	if err != nil {
		return tt, translate(err, "train type")
	}
	return tt, rowsAffected(res, "train type")
}

func (r *trainTypeRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM train_types WHERE id = $1`, id)
	if err != nil {
		return translate(err, "train type")
	}
	return rowsAffected(res, "train type")
}

type trainRepository struct {
	db *sql.DB
}

func NewTrainRepository(db *sql.DB) TrainRepository {
	return &trainRepository{db: db}
}

func (r *trainRepository) List(ctx context.Context, spec query.Spec) ([]models.TrainList, int, error) {
	countSQL, pageSQL, args, err := listQuery(
		"t.id, t.name, t.cargo_num, t.places_in_cargo, tt.name, t.image", trainFrom,
		spec, trainColumns, "t.id",
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

	trains := []models.TrainList{}
	for rows.Next() {
		var t models.TrainList
		var image sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.CargoNum, &t.PlacesInCargo, &t.TrainType, &image); err != nil {
			return nil, 0, err
		}
		if image.Valid {
			t.Image = &image.String
		}
		t.Capacity = models.Capacity(t.CargoNum, t.PlacesInCargo)
		trains = append(trains, t)
	}
	return trains, total, rows.Err()
}

func (r *trainRepository) Get(ctx context.Context, id int) (models.TrainDetail, error) {
	var t models.TrainDetail
	var image sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT t.id, t.name, t.cargo_num, t.places_in_cargo, tt.id, tt.name, t.image `+trainFrom+` WHERE t.id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.CargoNum, &t.PlacesInCargo, &t.TrainType.ID, &t.TrainType.Name, &image)
	if err != nil {
		return t, translate(err, "train")
	}
	if image.Valid {
		t.Image = &image.String
	}
	t.Capacity = models.Capacity(t.CargoNum, t.PlacesInCargo)
	return t, nil
}

func (r *trainRepository) Create(ctx context.Context, t models.Train) (models.Train, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO trains (name, cargo_num, places_in_cargo, train_type_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		t.Name, t.CargoNum, t.PlacesInCargo, t.TrainType,
	).Scan(&t.ID)
	return t, translate(err, "train")
}

// Update leaves the image alone; it only changes through SetImage.
func (r *trainRepository) Update(ctx context.Context, t models.Train) (models.Train, error) {
	var image sql.NullString
	err := r.db.QueryRowContext(ctx,
		`UPDATE trains SET name = $1, cargo_num = $2, places_in_cargo = $3, train_type_id = $4
		 WHERE id = $5 RETURNING image`,
		t.Name, t.CargoNum, t.PlacesInCargo, t.TrainType, t.ID,
	).Scan(&image)
	if err != nil {
		return t, translate(err, "train")
	}
	t.Image = nil
	if image.Valid {
		t.Image = &image.String
	}
	return t, nil
}

func (r *trainRepository) SetImage(ctx context.Context, id int, path string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE trains SET image = $1 WHERE id = $2`, path, id)
	if err != nil {
		return err
	}
	return rowsAffected(res, "train")
}

func (r *trainRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trains WHERE id = $1`, id)
	if err != nil {
		return translate(err, "train")
	}
	return rowsAffected(res, "train")
}
