package handlers

import (
	"context"

	"railway/pkg/middleware"
	"railway/pkg/models"
	"railway/pkg/policy"
	"railway/pkg/query"
	"railway/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type JourneyHandler struct {
	svc   services.JourneyService
	authz Authorizer
}

func NewJourney(svc services.JourneyService, authz Authorizer) *JourneyHandler {
	return &JourneyHandler{svc: svc, authz: authz}
}

func (h *JourneyHandler) List(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Journeys, policy.List); err != nil {
		return fail(c, err)
	}
	return list(c, query.JourneyParams, h.svc.List)
}

func (h *JourneyHandler) Retrieve(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Journeys, policy.Retrieve); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	j, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(j)
}

func (h *JourneyHandler) Create(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Journeys, policy.Create); err != nil {
		return fail(c, err)
	}
	var req models.Journey
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	j, err := h.svc.Create(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(j)
}

func (h *JourneyHandler) Update(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Journeys, policy.Update); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req models.Journey
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	j, err := h.svc.Update(c.UserContext(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(j)
}

func (h *JourneyHandler) PartialUpdate(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Journeys, policy.PartialUpdate); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req models.JourneyPatch
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	j, err := h.svc.Patch(c.UserContext(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(j)
}

func (h *JourneyHandler) Delete(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Journeys, policy.Delete); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type OrderHandler struct {
	svc   services.OrderService
	authz Authorizer
}

func NewOrder(svc services.OrderService, authz Authorizer) *OrderHandler {
	return &OrderHandler{svc: svc, authz: authz}
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Orders, policy.List); err != nil {
		return fail(c, err)
	}
	caller := middleware.IdentityOf(c)
	return list(c, query.OrderParams, func(ctx context.Context, spec query.Spec) ([]models.OrderList, int, error) {
		return h.svc.List(ctx, spec, caller)
	})
}

func (h *OrderHandler) Retrieve(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Orders, policy.Retrieve); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	o, err := h.svc.Get(c.UserContext(), id, middleware.IdentityOf(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(o)
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Orders, policy.Create); err != nil {
		return fail(c, err)
	}
	var req models.OrderRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	o, err := h.svc.Create(c.UserContext(), middleware.IdentityOf(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Orders, policy.Delete); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
