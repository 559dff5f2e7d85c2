package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"railway/pkg/apperr"
	"railway/pkg/models"
	"railway/pkg/query"

	"github.com/lib/pq"
)

var orderColumns = query.Columns{
	"created_at": "o.created_at",
	"owner":      "o.user_id",
}

type OrderRepository interface {
	List(ctx context.Context, spec query.Spec) ([]models.OrderList, int, error)
	// Get returns the order in its write shape, owner included.
	Get(ctx context.Context, id int) (models.Order, error)
	// Create books every ticket in one transaction; either all are sold or
	// none are.
	Create(ctx context.Context, userID int, tickets []models.Ticket) (models.Order, error)
	Delete(ctx context.Context, id int) error
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) List(ctx context.Context, spec query.Spec) ([]models.OrderList, int, error) {
	countSQL, pageSQL, args, err := listQuery("o.id, o.created_at", "FROM orders o", spec, orderColumns, "o.created_at DESC, o.id DESC")
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

	orders := []models.OrderList{}
	index := map[int]int{}
	ids := []int64{}
	for rows.Next() {
		o := models.OrderList{Tickets: []models.TicketList{}}
		if err := rows.Scan(&o.ID, &o.CreatedAt); err != nil {
			return nil, 0, err
		}
		o.CreatedAt = o.CreatedAt.UTC()
		index[o.ID] = len(orders)
		ids = append(ids, int64(o.ID))
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return orders, total, nil
	}

	tickets, err := r.db.QueryContext(ctx,
		`SELECT tk.order_id, tk.id, tk.cargo, tk.seat, j.id, src.name, dst.name, j.departure_time
		 FROM tickets tk
		 JOIN journeys j ON j.id = tk.journey_id
		 JOIN routes r ON r.id = j.route_id
		 JOIN stations src ON src.id = r.source_id
		 JOIN stations dst ON dst.id = r.destination_id
		 WHERE tk.order_id = ANY($1)
		 ORDER BY tk.id`, pq.Array(ids),
	)
	if err != nil {
		return nil, 0, err
	}
	defer tickets.Close()

	for tickets.Next() {
		var orderID int
		var t models.TicketList
		if err := tickets.Scan(&orderID, &t.ID, &t.Cargo, &t.Seat,
			&t.Journey.ID, &t.Journey.Source, &t.Journey.Destination, &t.Journey.DepartureTime); err != nil {
			return nil, 0, err
		}
		t.Journey.DepartureTime = t.Journey.DepartureTime.UTC()
		o := &orders[index[orderID]]
		o.Tickets = append(o.Tickets, t)
	}
	return orders, total, tickets.Err()
}

func (r *orderRepository) Get(ctx context.Context, id int) (models.Order, error) {
	o := models.Order{Tickets: []models.Ticket{}}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.UserID, &o.CreatedAt)
	if err != nil {
		return o, translate(err, "order")
	}
	o.CreatedAt = o.CreatedAt.UTC()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, cargo, seat, journey_id FROM tickets WHERE order_id = $1 ORDER BY id`, id,
	)
	if err != nil {
		return o, err
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Ticket
		if err := rows.Scan(&t.ID, &t.Cargo, &t.Seat, &t.Journey); err != nil {
			return o, err
		}
		o.Tickets = append(o.Tickets, t)
	}
	return o, rows.Err()
}

func (r *orderRepository) Create(ctx context.Context, userID int, tickets []models.Ticket) (models.Order, error) {
	o := models.Order{UserID: userID, Tickets: make([]models.Ticket, 0, len(tickets))}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return o, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id) VALUES ($1) RETURNING id, created_at`, userID,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return o, translate(err, "order")
	}
	o.CreatedAt = o.CreatedAt.UTC()

	for i, t := range tickets {
		// The share lock keeps the train geometry fixed until commit.
		var cargoNum, places int
		err := tx.QueryRowContext(ctx,
			`SELECT t.cargo_num, t.places_in_cargo
			 FROM journeys j JOIN trains t ON t.id = j.train_id
			 WHERE j.id = $1
			 FOR SHARE`, t.Journey,
		).Scan(&cargoNum, &places)
		if err == sql.ErrNoRows {
			return o, apperr.Invalid(fmt.Sprintf("tickets[%d].journey", i), "journey does not exist")
		}
		if err != nil {
			return o, err
		}

		if errs := t.Fits(cargoNum, places); errs != nil {
			fields := make(map[string]string, len(errs))
			for k, v := range errs {
				fields[fmt.Sprintf("tickets[%d].%s", i, k)] = v
			}
			return o, apperr.InvalidFields(fields)
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO tickets (cargo, seat, journey_id, order_id) VALUES ($1, $2, $3, $4) RETURNING id`,
			t.Cargo, t.Seat, t.Journey, o.ID,
		).Scan(&t.ID)
		if isUniqueViolation(err) {
			log.Printf("[BOOKING] seat taken: journey=%d cargo=%d seat=%d user=%d", t.Journey, t.Cargo, t.Seat, userID)
			return o, apperr.Conflict(fmt.Sprintf("seat %d in cargo %d is already taken for journey %d", t.Seat, t.Cargo, t.Journey))
		}
		if err != nil {
			return o, translate(err, "ticket")
		}
		o.Tickets = append(o.Tickets, t)
	}

	if err := tx.Commit(); err != nil {
		return o, err
	}
	return o, nil
}

func (r *orderRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return translate(err, "order")
	}
	return rowsAffected(res, "order")
}
