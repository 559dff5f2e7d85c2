package handlers

import (
	"railway/pkg/hub"
	"railway/pkg/middleware"
	"railway/pkg/models"
	"railway/pkg/services"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type LiveHandler struct {
	hub      *hub.Hub
	journeys services.JourneyService
	auth     middleware.Authenticator
}

func NewLive(h *hub.Hub, journeys services.JourneyService, auth middleware.Authenticator) *LiveHandler {
	return &LiveHandler{hub: h, journeys: journeys, auth: auth}
}

// Upgrade rejects plain HTTP, resolves the journey and takes an optional
// ?token= for browsers that cannot send headers.
func (h *LiveHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	snapshot, err := h.journeys.Availability(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	c.Locals("snapshot", snapshot)

	userID := middleware.IdentityOf(c).UserID
	if tok := c.Query("token"); tok != "" && userID == 0 {
		if ident, err := h.auth.Authenticate(tok); err == nil {
			userID = ident.UserID
		}
	}
	c.Locals("user_id", userID)
	return c.Next()
}

// Journey streams availability of one journey until the client leaves.
func (h *LiveHandler) Journey() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		snapshot, _ := c.Locals("snapshot").(models.AvailabilityUpdate)
		userID, _ := c.Locals("user_id").(int)
		h.hub.HandleJourneyConn(c, snapshot.JourneyID, userID, snapshot)
	})
}
