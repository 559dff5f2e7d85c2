package handlers

import (
	"time"

	"railway/pkg/apperr"
	"railway/pkg/middleware"
	"railway/pkg/models"
	"railway/pkg/policy"
	"railway/pkg/services"

	"github.com/gofiber/fiber/v2"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	svc        services.AuthService
	authz      Authorizer
	refreshTTL time.Duration
	secure     bool
}

// NewAuth serves /api/user. secure marks the refresh cookie Secure.
func NewAuth(svc services.AuthService, authz Authorizer, refreshTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{svc: svc, authz: authz, refreshTTL: refreshTTL, secure: secure}
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	user, err := h.svc.Register(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Token exchanges email and password for an access and refresh token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	resp, err := h.svc.Login(c.UserContext(), req, c.Get(fiber.HeaderUserAgent), c.IP())
	if err != nil {
		return fail(c, err)
	}
	h.setRefreshCookie(c, resp.Refresh)
	return c.JSON(resp)
}

// Refresh rotates the refresh token. It is read from the body, falling
// back to the cookie.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token := h.refreshToken(c)
	if token == "" {
		return fail(c, apperr.Invalid("refresh", "this field is required"))
	}
	resp, err := h.svc.Refresh(c.UserContext(), token)
	if err != nil {
		h.clearRefreshCookie(c)
		return fail(c, err)
	}
	h.setRefreshCookie(c, resp.Refresh)
	return c.JSON(resp)
}

func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if req.Token == "" {
		return fail(c, apperr.Invalid("token", "this field is required"))
	}
	if _, err := h.svc.Authenticate(req.Token); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Users, policy.Retrieve); err != nil {
		return fail(c, err)
	}
	user, err := h.svc.Me(c.UserContext(), middleware.IdentityOf(c).UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	if err := gate(c, h.authz, policy.Users, policy.PartialUpdate); err != nil {
		return fail(c, err)
	}
	var req models.UpdateMeRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	user, err := h.svc.UpdateMe(c.UserContext(), middleware.IdentityOf(c).UserID, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := h.refreshToken(c); token != "" {
		if err := h.svc.Logout(c.UserContext(), middleware.IdentityOf(c).UserID, token); err != nil {
			return fail(c, err)
		}
	}
	h.clearRefreshCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) refreshToken(c *fiber.Ctx) string {
	var req refreshRequest
	_ = c.BodyParser(&req)
	if req.Refresh == "" {
		req.Refresh = c.Cookies(refreshCookie)
	}
	return req.Refresh
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name: refreshCookie, Value: token, Expires: time.Now().Add(h.refreshTTL),
		HTTPOnly: true, Secure: h.secure, SameSite: "Lax", Path: "/api/user",
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name: refreshCookie, Value: "", Expires: time.Now().Add(-1 * time.Hour),
		HTTPOnly: true, Path: "/api/user",
	})
}
