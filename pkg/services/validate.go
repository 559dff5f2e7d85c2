package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"railway/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct tags on v and reports every failing field.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = message(fe)
	}
	return apperr.InvalidFields(fields)
}

// fieldPath drops the root struct name: "OrderRequest.tickets[0].seat"
// becomes "tickets[0].seat".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "max":
		return fmt.Sprintf("ensure this value has at most %s characters", fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("ensure this list has at least %s items", fe.Param())
		}
		return fmt.Sprintf("ensure this value has at least %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("ensure this value is greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param())
	case "nefield":
		return "must differ from " + strings.ToLower(fe.Param())
	default:
		return "invalid value (" + fe.Tag() + ")"
	}
}

// Cache is the read-through cache the catalogue services use.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	DelPattern(ctx context.Context, pattern string)
}

// NopCache never hits.
type NopCache struct{}

func (NopCache) Get(context.Context, string, interface{}) bool         { return false }
func (NopCache) Set(context.Context, string, interface{}, time.Duration) {}
func (NopCache) DelPattern(context.Context, string)                      {}

// Publisher carries events to other instances.
type Publisher interface {
	Broadcast(channel string, action, service string, data interface{}) error
}

type cachedPage[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func doesNotExist(field string, id int) error {
	return apperr.Invalid(field, fmt.Sprintf("invalid pk %q - object does not exist", fmt.Sprint(id)))
}
