package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"railway/pkg/models"

	"github.com/gofiber/fiber/v2"
)

type stubAuth map[string]models.Identity

func (s stubAuth) Authenticate(token string) (models.Identity, error) {
	id, ok := s[token]
	if !ok {
		return models.Identity{}, errors.New("bad token")
	}
	return id, nil
}

func newApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).SendString(err.Error())
		},
	})
	for _, h := range handlers {
		app.Use(h)
	}
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(strconv.Itoa(IdentityOf(c).UserID))
	})
	return app
}

func get(t *testing.T, app *fiber.App, auth string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)
	return resp.StatusCode, string(buf[:n])
}

func TestIdentify(t *testing.T) {
	app := newApp(Identify(stubAuth{"good": {UserID: 7}}))

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"anonymous", "", http.StatusOK, "0"},
		{"valid bearer", "Bearer good", http.StatusOK, "7"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, ""},
		{"basic scheme", "Basic Zm9vOmJhcg==", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, app, tc.header)
			if status != tc.status {
				t.Fatalf("status = %d, want %d", status, tc.status)
			}
			if tc.body != "" && body != tc.body {
				t.Fatalf("body = %q, want %q", body, tc.body)
			}
		})
	}
}

func TestThrottleSeparatesCallers(t *testing.T) {
	app := newApp(Identify(stubAuth{"good": {UserID: 7}}), Throttle(2, 3))

	for i := 0; i < 2; i++ {
		if status, _ := get(t, app, ""); status != http.StatusOK {
			t.Fatalf("anon request %d = %d", i, status)
		}
	}
	if status, _ := get(t, app, ""); status != http.StatusTooManyRequests {
		t.Fatalf("third anon request = %d, want 429", status)
	}

	for i := 0; i < 3; i++ {
		if status, _ := get(t, app, "Bearer good"); status != http.StatusOK {
			t.Fatalf("user request %d = %d", i, status)
		}
	}
	if status, _ := get(t, app, "Bearer good"); status != http.StatusTooManyRequests {
		t.Fatalf("fourth user request = %d, want 429", status)
	}
}

func TestRequireAuth(t *testing.T) {
	app := newApp(Identify(stubAuth{"good": {UserID: 1}}), RequireAuth)

	if status, _ := get(t, app, ""); status != http.StatusUnauthorized {
		t.Fatalf("anonymous = %d, want 401", status)
	}
	if status, _ := get(t, app, "Bearer good"); status != http.StatusOK {
		t.Fatalf("authenticated = %d, want 200", status)
	}
}
