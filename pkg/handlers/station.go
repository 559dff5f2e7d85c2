package handlers

import (
	"railway/pkg/models"
	"railway/pkg/policy"
	"railway/pkg/query"
	"railway/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type StationHandler struct {
	svc   services.StationService
	authz Authorizer
}

func NewStation(svc services.StationService, authz Authorizer) *StationHandler {
	return &StationHandler{svc: svc, authz: authz}
}

func (h *StationHandler) List(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Stations, policy.List); err != nil {
		return fail(c, err)
	}
	return list(c, query.StationParams, h.svc.List)
}

func (h *StationHandler) Retrieve(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Stations, policy.Retrieve); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	st, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(st)
}

func (h *StationHandler) Create(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Stations, policy.Create); err != nil {
		return fail(c, err)
	}
	var req models.Station
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	st, err := h.svc.Create(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(st)
}

func (h *StationHandler) Update(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Stations, policy.Update); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req models.Station
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	st, err := h.svc.Update(c.UserContext(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(st)
}

func (h *StationHandler) PartialUpdate(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Stations, policy.PartialUpdate); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req models.StationPatch
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	st, err := h.svc.Patch(c.UserContext(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(st)
}

func (h *StationHandler) Delete(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Stations, policy.Delete); err != nil {
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

type RouteHandler struct {
	svc   services.RouteService
	authz Authorizer
}

func NewRoute(svc services.RouteService, authz Authorizer) *RouteHandler {
	return &RouteHandler{svc: svc, authz: authz}
}

func (h *RouteHandler) List(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Routes, policy.List); err != nil {
		return fail(c, err)
	}
	return list(c, query.RouteParams, h.svc.List)
}

func (h *RouteHandler) Retrieve(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Routes, policy.Retrieve); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	r, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(r)
}

func (h *RouteHandler) Create(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Routes, policy.Create); err != nil {
		return fail(c, err)
	}
	var req models.Route
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	r, err := h.svc.Create(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (h *RouteHandler) Update(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Routes, policy.Update); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req models.Route
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	r, err := h.svc.Update(c.UserContext(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(r)
}

func (h *RouteHandler) PartialUpdate(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Routes, policy.PartialUpdate); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req models.RoutePatch
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	r, err := h.svc.Patch(c.UserContext(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(r)
}

func (h *RouteHandler) Delete(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Routes, policy.Delete); err != nil {
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
