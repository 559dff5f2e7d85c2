package handlers

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strconv"

	"railway/pkg/apperr"
	"railway/pkg/middleware"
	"railway/pkg/models"
	"railway/pkg/policy"
	"railway/pkg/query"

	"github.com/gofiber/fiber/v2"
)

// Authorizer decides access per entity and action.
type Authorizer interface {
	Check(ctx context.Context, entity policy.Entity, action policy.Action, id models.Identity) error
}

// ErrorHandler renders every error as JSON. It doubles as the fiber
// ErrorHandler so errors escaping middleware look the same.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case apperr.KindValidation:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": e.Fields})
		case apperr.KindNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": e.Message})
		case apperr.KindConflict:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": e.Message})
		case apperr.KindUnauthenticated:
			c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="api"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": e.Message})
		case apperr.KindForbidden:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": e.Message})
		}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"detail": fe.Message})
	}

	log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "internal server error"})
}

func fail(c *fiber.Ctx, err error) error {
	return ErrorHandler(c, err)
}

func parseID(c *fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return 0, apperr.ErrNotFound
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.Invalid("non_field_errors", "malformed request body")
	}
	return nil
}

func gate(c *fiber.Ctx, authz Authorizer, entity policy.Entity, action policy.Action) error {
	return authz.Check(c.UserContext(), entity, action, middleware.IdentityOf(c))
}

func bindSpec(c *fiber.Ctx, params []query.Param) (query.Spec, error) {
	return query.Bind(params, func(key string) string { return c.Query(key) })
}

// paginate writes the list envelope. A page past the last one is 404,
// except page 1 of an empty result.
func paginate[T any](c *fiber.Ctx, items []T, total int, p query.Page) error {
	if p.Number > p.LastPage(total) {
		return fail(c, apperr.NotFound("page"))
	}
	if items == nil {
		items = []T{}
	}

	out := models.Page[T]{Count: total, Results: items}
	if p.Number < p.LastPage(total) {
		next := pageURL(c, p.Number+1)
		out.Next = &next
	}
	if p.Number > 1 {
		prev := pageURL(c, p.Number-1)
		out.Previous = &prev
	}
	return c.JSON(out)
}

// pageURL is the absolute URL of the current request with page set to n.
// Page 1 drops the parameter.
func pageURL(c *fiber.Ctx, n int) string {
	values, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	if values == nil {
		values = url.Values{}
	}
	if n <= 1 {
		values.Del("page")
	} else {
		values.Set("page", strconv.Itoa(n))
	}

	u := c.BaseURL() + c.Path()
	if q := values.Encode(); q != "" {
		u += "?" + q
	}
	return u
}

func list[T any](c *fiber.Ctx, params []query.Param, fetch func(context.Context, query.Spec) ([]T, int, error)) error {
	spec, err := bindSpec(c, params)
	if err != nil {
		return fail(c, err)
	}
	items, total, err := fetch(c.UserContext(), spec)
	if err != nil {
		return fail(c, err)
	}
	return paginate(c, items, total, spec.Page)
}
