package query

import (
	"math"
	"strconv"
	"time"

	"railway/pkg/apperr"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// maxPage keeps Offset from overflowing at any page size.
	maxPage = math.MaxInt / MaxPageSize
)

type Page struct {
	Number int
	Size   int
}

func (p Page) Limit() int  { return p.Size }
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// Param binds a query-string parameter to a filter on Field.
type Param struct {
	Name  string
	Field string
	Op    Op
}

var (
	StationParams = []Param{
		{Name: "name", Field: "name", Op: Contains},
	}
	RouteParams = []Param{
		{Name: "source", Field: "source", Op: Contains},
		{Name: "destination", Field: "destination", Op: Contains},
	}
	TrainParams = []Param{
		{Name: "name", Field: "name", Op: Contains},
		{Name: "train_type", Field: "train_type", Op: Contains},
	}
	JourneyParams = []Param{
		{Name: "source", Field: "source", Op: Contains},
		{Name: "destination", Field: "destination", Op: Contains},
		{Name: "train", Field: "train", Op: Contains},
		{Name: "departure_date", Field: "departure_time", Op: OnDate},
		{Name: "arrival_date", Field: "arrival_time", Op: OnDate},
	}
	OrderParams = []Param{
		{Name: "creation_date", Field: "created_at", Op: OnDate},
	}
)

// Bind builds a Spec from query-string values. Absent or empty parameters
// are skipped; malformed dates are a validation error and a malformed page
// number is not-found.
func Bind(params []Param, get func(key string) string) (Spec, error) {
	page, err := ParsePage(get("page"), get("page_size"))
	if err != nil {
		return Spec{}, err
	}

	spec := Spec{Page: page}
	for _, p := range params {
		raw := get(p.Name)
		if raw == "" {
			continue
		}

		switch p.Op {
		case OnDate:
			day, err := time.Parse(DateLayout, raw)
			if err != nil {
				return Spec{}, apperr.Invalid(p.Name, "must be a date in YYYY-MM-DD format")
			}
			spec.Filters = append(spec.Filters, Filter{Field: p.Field, Op: OnDate, Value: day})
		default:
			spec.Filters = append(spec.Filters, Filter{Field: p.Field, Op: p.Op, Value: raw})
		}
	}
	return spec, nil
}

func ParsePage(number, size string) (Page, error) {
	p := Page{Number: 1, Size: DefaultPageSize}

	if number != "" {
		n, err := strconv.Atoi(number)
		if err != nil || n < 1 || n > maxPage {
			return p, apperr.NotFound("page")
		}
		p.Number = n
	}

	if size != "" {
		n, err := strconv.Atoi(size)
		if err == nil && n > 0 {
			p.Size = n
		}
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p, nil
}

// LastPage is the number of the final page for total rows, at least 1.
func (p Page) LastPage(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + p.Size - 1) / p.Size
}
