package middleware

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Throttle limits anonymous callers per IP and authenticated callers per
// user, each over a sliding minute. It must run after Identify.
func Throttle(anonPerMinute, userPerMinute int) fiber.Handler {
	reached := func(c *fiber.Ctx) error {
		log.Printf("[THROTTLE] %s %s from %s", c.Method(), c.Path(), c.IP())
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"detail": "request was throttled"})
	}

	anon := limiter.New(limiter.Config{
		Max:               anonPerMinute,
		Expiration:        time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return "anon:" + c.IP() },
		LimitReached:      reached,
	})
	user := limiter.New(limiter.Config{
		Max:               userPerMinute,
		Expiration:        time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return "user:" + strconv.Itoa(IdentityOf(c).UserID)
		},
		LimitReached: reached,
	})

	return func(c *fiber.Ctx) error {
		if IdentityOf(c).Authenticated() {
			return user(c)
		}
		return anon(c)
	}
}
