package handlers

import (
	"context"

	"railway/pkg/apperr"
	"railway/pkg/models"
	"railway/pkg/policy"
	"railway/pkg/query"
	"railway/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type CrewHandler struct {
	svc   services.CrewService
	authz Authorizer
}

func NewCrew(svc services.CrewService, authz Authorizer) *CrewHandler {
	return &CrewHandler{svc: svc, authz: authz}
}

func (h *CrewHandler) List(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Crew, policy.List); err != nil {
		return fail(c, err)
	}
	return list(c, nil, func(ctx context.Context, spec query.Spec) ([]models.CrewList, int, error) {
		crew, total, err := h.svc.List(ctx, spec)
		if err != nil {
			return nil, 0, err
		}
		out := make([]models.CrewList, 0, len(crew))
		for _, m := range crew {
			out = append(out, m.List())
		}
		return out, total, nil
	})
}

func (h *CrewHandler) Retrieve(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Crew, policy.Retrieve); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	m, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(m)
}

func (h *CrewHandler) Create(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Crew, policy.Create); err != nil {
		return fail(c, err)
	}
	var req models.Crew
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	m, err := h.svc.Create(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *CrewHandler) Update(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Crew, policy.Update); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req models.Crew
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	m, err := h.svc.Update(c.UserContext(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(m)
}

func (h *CrewHandler) PartialUpdate(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Crew, policy.PartialUpdate); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req models.CrewPatch
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	m, err := h.svc.Patch(c.UserContext(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(m)
}

func (h *CrewHandler) Delete(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Crew, policy.Delete); err != nil {
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

type TrainTypeHandler struct {
	svc   services.TrainTypeService
	authz Authorizer
}

func NewTrainType(svc services.TrainTypeService, authz Authorizer) *TrainTypeHandler {
	return &TrainTypeHandler{svc: svc, authz: authz}
}

func (h *TrainTypeHandler) List(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.TrainTypes, policy.List); err != nil {
		return fail(c, err)
	}
	return list(c, nil, h.svc.List)
}

func (h *TrainTypeHandler) Retrieve(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.TrainTypes, policy.Retrieve); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	tt, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(tt)
}

func (h *TrainTypeHandler) Create(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.TrainTypes, policy.Create); err != nil {
		return fail(c, err)
	}
	var req models.TrainType
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	tt, err := h.svc.Create(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tt)
}

func (h *TrainTypeHandler) Update(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.TrainTypes, policy.Update); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req models.TrainType
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	tt, err := h.svc.Update(c.UserContext(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(tt)
}

func (h *TrainTypeHandler) PartialUpdate(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.TrainTypes, policy.PartialUpdate); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req models.TrainTypePatch
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	tt, err := h.svc.Patch(c.UserContext(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(tt)
}

func (h *TrainTypeHandler) Delete(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.TrainTypes, policy.Delete); err != nil {
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

type TrainHandler struct {
	svc   services.TrainService
	authz Authorizer
}

func NewTrain(svc services.TrainService, authz Authorizer) *TrainHandler {
	return &TrainHandler{svc: svc, authz: authz}
}

func (h *TrainHandler) List(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Trains, policy.List); err != nil {
		return fail(c, err)
	}
	return list(c, query.TrainParams, h.svc.List)
}

func (h *TrainHandler) Retrieve(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Trains, policy.Retrieve); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	t, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(t)
}

func (h *TrainHandler) Create(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Trains, policy.Create); err != nil {
		return fail(c, err)
	}
	var req models.Train
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	t, err := h.svc.Create(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *TrainHandler) Update(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Trains, policy.Update); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req models.Train
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	t, err := h.svc.Update(c.UserContext(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(t)
}

func (h *TrainHandler) PartialUpdate(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Trains, policy.PartialUpdate); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req models.TrainPatch
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	t, err := h.svc.Patch(c.UserContext(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(t)
}

func (h *TrainHandler) Delete(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Trains, policy.Delete); err != nil {
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

// UploadImage takes a multipart "image" file and replaces the train image.
func (h *TrainHandler) UploadImage(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Trains, policy.UploadImage); err != nil {
		return fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return fail(c, apperr.Invalid("image", "no file was submitted"))
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, err)
	}
	defer f.Close()

	t, err := h.svc.UploadImage(c.UserContext(), id, fh.Filename, f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(t)
}
