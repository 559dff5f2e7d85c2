package handlers

import (
	"railway/pkg/middleware"

	"github.com/gofiber/fiber/v2"
)

// Set is every handler the API mounts. Live may be nil.
type Set struct {
	Stations   *StationHandler
	Routes     *RouteHandler
	Crew       *CrewHandler
	TrainTypes *TrainTypeHandler
	Trains     *TrainHandler
	Journeys   *JourneyHandler
	Orders     *OrderHandler
	Auth       *AuthHandler
	Live       *LiveHandler
}

type resource interface {
	List(c *fiber.Ctx) error
	Retrieve(c *fiber.Ctx) error
	Create(c *fiber.Ctx) error
	Update(c *fiber.Ctx) error
	PartialUpdate(c *fiber.Ctx) error
	Delete(c *fiber.Ctx) error
}

func mount(r fiber.Router, path string, h resource) fiber.Router {
	g := r.Group(path)
	g.Get("/", h.List)
	g.Post("/", h.Create)
	g.Get("/:id", h.Retrieve)
	g.Put("/:id", h.Update)
	g.Patch("/:id", h.PartialUpdate)
	g.Delete("/:id", h.Delete)
	return g
}

// Register mounts the API on app. Identity middleware must already be in
// place.
func Register(app *fiber.App, s Set) {
	api := app.Group("/api/train-station")
	mount(api, "/stations", s.Stations)
	mount(api, "/routes", s.Routes)
	mount(api, "/workers", s.Crew)
	mount(api, "/train-types", s.TrainTypes)
	trains := mount(api, "/trains", s.Trains)
	trains.Post("/:id/upload-image", s.Trains.UploadImage)
	mount(api, "/journeys", s.Journeys)

	orders := api.Group("/orders")
	orders.Get("/", s.Orders.List)
	orders.Post("/", s.Orders.Create)
	orders.Get("/:id", s.Orders.Retrieve)
	orders.Delete("/:id", s.Orders.Delete)

	user := app.Group("/api/user")
	user.Post("/register", s.Auth.Register)
	user.Post("/token", s.Auth.Token)
	user.Post("/token/refresh", s.Auth.Refresh)
	user.Post("/token/verify", s.Auth.Verify)
	user.Get("/me", s.Auth.Me)
	user.Patch("/me", s.Auth.UpdateMe)
	user.Post("/logout", middleware.RequireAuth, s.Auth.Logout)

	if s.Live != nil {
		app.Get("/ws/journeys/:id", s.Live.Upgrade, s.Live.Journey())
	}
}
