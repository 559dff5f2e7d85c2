package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"railway/pkg/media"
	"railway/pkg/middleware"
	"railway/pkg/models"
	"railway/pkg/policy"
	"railway/pkg/repository/memory"
	"railway/pkg/server"
	"railway/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type testAPI struct {
	app   *fiber.App
	store *memory.Store
	auth  services.AuthService
	user  string
	other string
	admin string
}

func newAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()

	engine, err := policy.New(ctx)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}

	store := memory.New()
	auth := services.NewAuthService(store.Auth(), "test-secret", 30*time.Minute, time.Hour)
	images := media.NewStore(t.TempDir(), "/media/")
	stations := services.NewStationService(store.Stations(), services.NopCache{}, time.Minute)
	routes := services.NewRouteService(store.Routes(), store.Stations(), services.NopCache{}, time.Minute)
	journeys := services.NewJourneyService(store.Journeys(), store.Routes(), store.Trains())

	app := server.NewApp(server.Options{Name: "railway-test", ErrorHandler: ErrorHandler, Quiet: true})
	app.Use(middleware.Identify(auth))
	Register(app, Set{
		Stations:   NewStation(stations, engine),
		Routes:     NewRoute(routes, engine),
		Crew:       NewCrew(services.NewCrewService(store.Crew()), engine),
		TrainTypes: NewTrainType(services.NewTrainTypeService(store.TrainTypes()), engine),
		Trains:     NewTrain(services.NewTrainService(store.Trains(), store.TrainTypes(), images), engine),
		Journeys:   NewJourney(journeys, engine),
		Orders:     NewOrder(services.NewOrderService(store.Orders(), store.Journeys(), nil), engine),
		Auth:       NewAuth(auth, engine, time.Hour, false),
	})

	api := &testAPI{app: app, store: store, auth: auth}
	api.user = api.token(t, "user@example.com", false)
	api.other = api.token(t, "other@example.com", false)
	api.admin = api.token(t, "admin@example.com", true)
	return api
}

func (a *testAPI) token(t *testing.T, email string, staff bool) string {
	t.Helper()
	ctx := context.Background()
	if _, err := a.auth.CreateUser(ctx, email, "password123", staff); err != nil {
		t.Fatalf("create user: %v", err)
	}
	resp, err := a.auth.Login(ctx, models.LoginRequest{Email: email, Password: "password123"}, "test", "127.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return resp.Access
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func (a *testAPI) create(t *testing.T, path string, body interface{}) int {
	t.Helper()
	status, out := a.do(t, http.MethodPost, path, a.admin, body)
	if status != http.StatusCreated {
		t.Fatalf("POST %s = %d %v", path, status, out)
	}
	return int(out["id"].(float64))
}

// seed creates Lviv -> Kyiv served by a 2x3 train and returns the journey id.
func (a *testAPI) seed(t *testing.T) int {
	t.Helper()
	lviv := a.create(t, "/api/train-station/stations/", map[string]interface{}{"name": "Lviv", "latitude": 49.8397, "longitude": 24.0297})
	kyiv := a.create(t, "/api/train-station/stations/", map[string]interface{}{"name": "Kyiv", "latitude": 50.4501, "longitude": 30.5234})
	route := a.create(t, "/api/train-station/routes/", map[string]interface{}{"source": lviv, "destination": kyiv})
	tt := a.create(t, "/api/train-station/train-types/", map[string]interface{}{"name": "Intercity"})
	train := a.create(t, "/api/train-station/trains/", map[string]interface{}{"name": "743", "cargo_num": 2, "places_in_cargo": 3, "train_type": tt})
	return a.create(t, "/api/train-station/journeys/", map[string]interface{}{
		"route":          route,
		"train":          train,
		"departure_time": "2024-05-01T06:00:00Z",
		"arrival_time":   "2024-05-01T11:00:00Z",
	})
}

func TestAccessMatrix(t *testing.T) {
	a := newAPI(t)
	station := map[string]interface{}{"name": "Odesa", "latitude": 46.48, "longitude": 30.72}

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"anon lists stations", http.MethodGet, "/api/train-station/stations/", "", nil, http.StatusOK},
		{"anon lists routes", http.MethodGet, "/api/train-station/routes/", "", nil, http.StatusOK},
		{"anon lists journeys", http.MethodGet, "/api/train-station/journeys/", "", nil, http.StatusOK},
		{"anon lists workers", http.MethodGet, "/api/train-station/workers/", "", nil, http.StatusUnauthorized},
		{"anon lists train types", http.MethodGet, "/api/train-station/train-types/", "", nil, http.StatusUnauthorized},
		{"anon lists trains", http.MethodGet, "/api/train-station/trains/", "", nil, http.StatusUnauthorized},
		{"anon lists orders", http.MethodGet, "/api/train-station/orders/", "", nil, http.StatusUnauthorized},
		{"anon creates station", http.MethodPost, "/api/train-station/stations/", "", station, http.StatusUnauthorized},
		{"anon retrieves missing worker", http.MethodGet, "/api/train-station/workers/99", "", nil, http.StatusUnauthorized},
		{"user lists workers", http.MethodGet, "/api/train-station/workers/", a.user, nil, http.StatusForbidden},
		{"user lists trains", http.MethodGet, "/api/train-station/trains/", a.user, nil, http.StatusForbidden},
		{"user creates station", http.MethodPost, "/api/train-station/stations/", a.user, station, http.StatusForbidden},
		{"user lists orders", http.MethodGet, "/api/train-station/orders/", a.user, nil, http.StatusOK},
		{"admin lists workers", http.MethodGet, "/api/train-station/workers/", a.admin, nil, http.StatusOK},
		{"admin creates station", http.MethodPost, "/api/train-station/stations/", a.admin, station, http.StatusCreated},
		{"bad token", http.MethodGet, "/api/train-station/stations/", "garbage", nil, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := a.do(t, tc.method, tc.path, tc.token, tc.body)
			if status != tc.want {
				t.Fatalf("status = %d, want %d (%v)", status, tc.want, body)
			}
		})
	}
}

func TestStationValidation(t *testing.T) {
	a := newAPI(t)

	status, body := a.do(t, http.MethodPost, "/api/train-station/stations/", a.admin,
		map[string]interface{}{"name": "North", "latitude": 91, "longitude": 0})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	errs, _ := body["errors"].(map[string]interface{})
	if _, ok := errs["latitude"]; !ok {
		t.Fatalf("expected latitude error, got %v", body)
	}
}

func TestMalformedJSON(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/train-station/stations/", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.admin)

	resp, err := a.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRouteDistanceIgnoresClient(t *testing.T) {
	a := newAPI(t)
	src := a.create(t, "/api/train-station/stations/", map[string]interface{}{"name": "A", "latitude": 0, "longitude": 0})
	dst := a.create(t, "/api/train-station/stations/", map[string]interface{}{"name": "B", "latitude": 0, "longitude": 1})

	status, body := a.do(t, http.MethodPost, "/api/train-station/routes/", a.admin,
		map[string]interface{}{"source": src, "destination": dst, "distance": 5})
	if status != http.StatusCreated {
		t.Fatalf("status = %d %v", status, body)
	}
	if body["distance"].(float64) != 111.3 {
		t.Fatalf("distance = %v, want 111.3", body["distance"])
	}

	_, detail := a.do(t, http.MethodGet, "/api/train-station/routes/"+strconv.Itoa(int(body["id"].(float64))), "", nil)
	source, _ := detail["source"].(map[string]interface{})
	if source["name"] != "A" {
		t.Fatalf("detail source = %v", detail["source"])
	}
}

func TestJourneyCreate(t *testing.T) {
	a := newAPI(t)
	id := a.seed(t)

	status, body := a.do(t, http.MethodGet, "/api/train-station/journeys/"+strconv.Itoa(id), "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["tickets_available"].(float64) != 6 {
		t.Fatalf("tickets_available = %v, want 6", body["tickets_available"])
	}

	status, body = a.do(t, http.MethodPost, "/api/train-station/journeys/", a.admin, map[string]interface{}{
		"route":          999,
		"train":          999,
		"departure_time": "2024-05-01T06:00:00Z",
		"arrival_time":   "2024-05-01T11:00:00Z",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("missing refs: status = %d, want 400", status)
	}
	errs, _ := body["errors"].(map[string]interface{})
	if _, ok := errs["route"]; !ok {
		t.Fatalf("expected route error, got %v", body)
	}
}

func TestPagination(t *testing.T) {
	a := newAPI(t)
	for i := 0; i < 12; i++ {
		a.create(t, "/api/train-station/stations/", map[string]interface{}{"name": "S" + strconv.Itoa(i), "latitude": 1, "longitude": 1})
	}

	status, body := a.do(t, http.MethodGet, "/api/train-station/stations/", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["count"].(float64) != 12 || len(body["results"].([]interface{})) != 10 {
		t.Fatalf("first page = %v", body)
	}
	if body["next"] != "http://example.com/api/train-station/stations/?page=2" {
		t.Fatalf("next = %v", body["next"])
	}
	if body["previous"] != nil {
		t.Fatalf("previous = %v", body["previous"])
	}

	_, body = a.do(t, http.MethodGet, "/api/train-station/stations/?page=2", "", nil)
	if len(body["results"].([]interface{})) != 2 || body["next"] != nil {
		t.Fatalf("second page = %v", body)
	}
	if body["previous"] != "http://example.com/api/train-station/stations/" {
		t.Fatalf("previous = %v", body["previous"])
	}

	_, body = a.do(t, http.MethodGet, "/api/train-station/stations/?page_size=200", "", nil)
	if len(body["results"].([]interface{})) != 12 {
		t.Fatalf("page_size 200 = %v", body)
	}

	for _, q := range []string{"?page=abc", "?page=0", "?page=3", "?page=9223372036854775807"} {
		if status, _ := a.do(t, http.MethodGet, "/api/train-station/stations/"+q, "", nil); status != http.StatusNotFound {
			t.Fatalf("%s: status = %d, want 404", q, status)
		}
	}
}

func TestStationFilter(t *testing.T) {
	a := newAPI(t)
	a.create(t, "/api/train-station/stations/", map[string]interface{}{"name": "Lviv", "latitude": 1, "longitude": 1})
	a.create(t, "/api/train-station/stations/", map[string]interface{}{"name": "Kyiv", "latitude": 1, "longitude": 1})

	_, body := a.do(t, http.MethodGet, "/api/train-station/stations/?name=LV", "", nil)
	results := body["results"].([]interface{})
	if len(results) != 1 || results[0].(map[string]interface{})["name"] != "Lviv" {
		t.Fatalf("filtered = %v", results)
	}
}

func TestBooking(t *testing.T) {
	a := newAPI(t)
	journey := a.seed(t)
	order := map[string]interface{}{"tickets": []map[string]interface{}{{"cargo": 1, "seat": 2, "journey": journey}}}

	status, body := a.do(t, http.MethodPost, "/api/train-station/orders/", a.user, order)
	if status != http.StatusCreated {
		t.Fatalf("first booking = %d %v", status, body)
	}
	id := strconv.Itoa(int(body["id"].(float64)))

	if status, _ := a.do(t, http.MethodPost, "/api/train-station/orders/", a.other, order); status != http.StatusConflict {
		t.Fatalf("double booking = %d, want 409", status)
	}

	bad := map[string]interface{}{"tickets": []map[string]interface{}{{"cargo": 3, "seat": 1, "journey": journey}}}
	if status, _ := a.do(t, http.MethodPost, "/api/train-station/orders/", a.user, bad); status != http.StatusBadRequest {
		t.Fatalf("cargo out of range = %d, want 400", status)
	}

	_, detail := a.do(t, http.MethodGet, "/api/train-station/journeys/"+strconv.Itoa(journey), "", nil)
	if detail["tickets_available"].(float64) != 5 {
		t.Fatalf("tickets_available = %v, want 5", detail["tickets_available"])
	}

	if status, _ := a.do(t, http.MethodGet, "/api/train-station/orders/"+id, a.user, nil); status != http.StatusOK {
		t.Fatalf("owner retrieve = %d", status)
	}
	if status, _ := a.do(t, http.MethodGet, "/api/train-station/orders/"+id, a.other, nil); status != http.StatusNotFound {
		t.Fatalf("foreign retrieve = %d, want 404", status)
	}
	_, list := a.do(t, http.MethodGet, "/api/train-station/orders/", a.other, nil)
	if list["count"].(float64) != 0 {
		t.Fatalf("foreign list = %v", list)
	}

	if status, _ := a.do(t, http.MethodDelete, "/api/train-station/orders/"+id, a.user, nil); status != http.StatusForbidden {
		t.Fatalf("user delete = %d, want 403", status)
	}
	if status, _ := a.do(t, http.MethodDelete, "/api/train-station/orders/"+id, a.admin, nil); status != http.StatusNoContent {
		t.Fatalf("admin delete = %d, want 204", status)
	}
}

func TestUserEndpoints(t *testing.T) {
	a := newAPI(t)

	status, body := a.do(t, http.MethodPost, "/api/user/register", "", map[string]interface{}{"email": "new@example.com", "password": "password123"})
	if status != http.StatusCreated || body["email"] != "new@example.com" {
		t.Fatalf("register = %d %v", status, body)
	}

	status, body = a.do(t, http.MethodPost, "/api/user/token", "", map[string]interface{}{"email": "new@example.com", "password": "password123"})
	if status != http.StatusOK {
		t.Fatalf("token = %d %v", status, body)
	}
	access := body["access"].(string)
	refresh := body["refresh"].(string)

	if status, _ := a.do(t, http.MethodPost, "/api/user/token/verify", "", map[string]interface{}{"token": access}); status != http.StatusOK {
		t.Fatalf("verify = %d", status)
	}

	status, me := a.do(t, http.MethodGet, "/api/user/me", access, nil)
	if status != http.StatusOK || me["email"] != "new@example.com" {
		t.Fatalf("me = %d %v", status, me)
	}
	if status, _ := a.do(t, http.MethodGet, "/api/user/me", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("anon me = %d, want 401", status)
	}

	if status, _ := a.do(t, http.MethodPost, "/api/user/token/refresh", "", map[string]interface{}{"refresh": refresh}); status != http.StatusOK {
		t.Fatalf("refresh = %d", status)
	}
	if status, _ := a.do(t, http.MethodPost, "/api/user/token/refresh", "", map[string]interface{}{"refresh": refresh}); status != http.StatusUnauthorized {
		t.Fatalf("reused refresh = %d, want 401", status)
	}

	if status, _ := a.do(t, http.MethodPost, "/api/user/token", "", map[string]interface{}{"email": "new@example.com", "password": "wrong"}); status != http.StatusUnauthorized {
		t.Fatalf("bad password = %d, want 401", status)
	}
}

func TestUploadImage(t *testing.T) {
	a := newAPI(t)
	tt := a.create(t, "/api/train-station/train-types/", map[string]interface{}{"name": "Regional"})
	train := a.create(t, "/api/train-station/trains/", map[string]interface{}{"name": "Hyundai 1", "cargo_num": 1, "places_in_cargo": 10, "train_type": tt})

	png := "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89"
	upload := func(filename, content string) (int, map[string]interface{}) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("image", filename)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte(content))
		w.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/train-station/trains/"+strconv.Itoa(train)+"/upload-image", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+a.admin)
		resp, err := a.app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		out := map[string]interface{}{}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return resp.StatusCode, out
	}

	status, body := upload("photo.png", png)
	if status != http.StatusOK {
		t.Fatalf("upload = %d %v", status, body)
	}
	img, _ := body["image"].(string)
	if img == "" {
		t.Fatalf("image not set: %v", body)
	}

	if status, _ := upload("photo.exe", png); status != http.StatusBadRequest {
		t.Fatalf("bad extension = %d, want 400", status)
	}
	status, body = upload("photo.png", "not really a png")
	if status != http.StatusBadRequest {
		t.Fatalf("text named .png = %d, want 400", status)
	}
	if errs, _ := body["errors"].(map[string]interface{}); errs["image"] == nil {
		t.Fatalf("expected an image error, got %v", body)
	}
}
