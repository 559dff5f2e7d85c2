// Package query models list requests as a value built once per request:
// an ordered set of filter predicates plus pagination. Repositories render
// it to SQL and execute it in one pass.
package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Op int

const (
	// Contains is a case-insensitive substring match.
	Contains Op = iota
	// OnDate matches the calendar day of a timestamp column.
	OnDate
	// Equals is an exact match, used for ownership scoping.
	Equals
)

const DateLayout = "2006-01-02"

type Filter struct {
	Field string
	Op    Op
	Value any
}

type Spec struct {
	Filters []Filter
	Page    Page
}

// With returns a copy of s with f appended; s is left untouched.
func (s Spec) With(f Filter) Spec {
	filters := make([]Filter, 0, len(s.Filters)+1)
	filters = append(filters, s.Filters...)
	filters = append(filters, f)
	return Spec{Filters: filters, Page: s.Page}
}

// OwnedBy scopes s to rows owned by userID.
func (s Spec) OwnedBy(userID int) Spec {
	return s.With(Filter{Field: "owner", Op: Equals, Value: userID})
}

// Columns maps the logical filter fields of an entity to SQL expressions.
type Columns map[string]string

// Where renders the filters as "WHERE a AND b ..." using placeholders from
// $start on. It returns an empty clause when there are no filters.
func (s Spec) Where(cols Columns, start int) (string, []any, error) {
	if len(s.Filters) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(s.Filters))
	args := make([]any, 0, len(s.Filters))
	n := start

	for _, f := range s.Filters {
		col, ok := cols[f.Field]
		if !ok {
			return "", nil, fmt.Errorf("query: no column for field %q", f.Field)
		}
		ph := "$" + strconv.Itoa(n)

		switch f.Op {
		case Contains:
			conds = append(conds, col+" ILIKE "+ph)
			args = append(args, Like(fmt.Sprint(f.Value)))
		case OnDate:
			day, ok := f.Value.(time.Time)
			if !ok {
				return "", nil, fmt.Errorf("query: field %q needs a date", f.Field)
			}
			conds = append(conds, "("+col+")::date = "+ph+"::date")
			args = append(args, day.Format(DateLayout))
		case Equals:
			conds = append(conds, col+" = "+ph)
			args = append(args, f.Value)
		default:
			return "", nil, fmt.Errorf("query: unknown op %d", f.Op)
		}
		n++
	}

	return "WHERE " + strings.Join(conds, " AND "), args, nil
}

// Like escapes LIKE wildcards in s and wraps it for a substring match.
func Like(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// Matches evaluates the filters against already-loaded field values. It
// mirrors the SQL semantics of Where.
func (s Spec) Matches(fields map[string]any) bool {
	for _, f := range s.Filters {
		v, ok := fields[f.Field]
		if !ok {
			return false
		}
		switch f.Op {
		case Contains:
			str, _ := v.(string)
			if !strings.Contains(strings.ToLower(str), strings.ToLower(fmt.Sprint(f.Value))) {
				return false
			}
		case OnDate:
			ts, _ := v.(time.Time)
			day, _ := f.Value.(time.Time)
			if ts.Format(DateLayout) != day.Format(DateLayout) {
				return false
			}
		case Equals:
			if v != f.Value {
				return false
			}
		}
	}
	return true
}

// Key is a stable string form of s, used for cache keys.
func (s Spec) Key() string {
	var b strings.Builder
	for _, f := range s.Filters {
		b.WriteString(f.Field)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(f.Op)))
		b.WriteByte(':')
		if day, ok := f.Value.(time.Time); ok {
			b.WriteString(day.Format(DateLayout))
		} else {
			b.WriteString(strings.ToLower(fmt.Sprint(f.Value)))
		}
		b.WriteByte('|')
	}
	b.WriteString("p=" + strconv.Itoa(s.Page.Number) + ",s=" + strconv.Itoa(s.Page.Size))
	return b.String()
}
