package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"railway/pkg/apperr"
	"railway/pkg/query"

	"github.com/lib/pq"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// translate maps driver errors onto the apperr taxonomy. what names the
// entity for not-found messages.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(what)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return apperr.Conflict(what + " already exists")
		case pqForeignKeyViolation:
			return apperr.Invalid(fkField(pqErr.Constraint, pqErr.Table), "object does not exist")
		case pqCheckViolation:
			return apperr.Invalid(what, "violates constraint "+pqErr.Constraint)
		}
	}
	return err
}

// fkField turns "routes_source_id_fkey" on table "routes" into "source".
func fkField(constraint, table string) string {
	f := strings.TrimPrefix(constraint, table+"_")
	f = strings.TrimSuffix(f, "_fkey")
	f = strings.TrimSuffix(f, "_id")
	if f == "" {
		return "non_field_errors"
	}
	return f
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// listQuery renders count and page statements for a base FROM/JOIN clause.
func listQuery(selectCols, from string, spec query.Spec, cols query.Columns, orderBy string) (countSQL, pageSQL string, args []any, err error) {
	where, args, err := spec.Where(cols, 1)
	if err != nil {
		return "", "", nil, err
	}

	countSQL = "SELECT COUNT(*) " + from + " " + where

	n := len(args) + 1
	pageSQL = "SELECT " + selectCols + " " + from + " " + where +
		" ORDER BY " + orderBy +
		" LIMIT $" + strconv.Itoa(n) + " OFFSET $" + strconv.Itoa(n+1)
	return countSQL, pageSQL, args, nil
}

func count(ctx context.Context, q querier, countSQL string, args []any) (int, error) {
	var total int
	err := q.QueryRowContext(ctx, countSQL, args...).Scan(&total)
	return total, err
}

func pageArgs(args []any, spec query.Spec) []any {
	out := make([]any, 0, len(args)+2)
	out = append(out, args...)
	return append(out, spec.Page.Limit(), spec.Page.Offset())
}

func rowsAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(what)
	}
	return nil
}
