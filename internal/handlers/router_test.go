package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/car-showroom/internal/auth"
	"github.com/ukydev/car-showroom/internal/catalog"
	"github.com/ukydev/car-showroom/internal/db/dbtest"
	"github.com/ukydev/car-showroom/internal/models"
	"github.com/ukydev/car-showroom/internal/storage"
)

type testAPI struct {
	t          *testing.T
	handler    http.Handler
	store      *dbtest.Store
	files      *storage.DiskStorage
	adminToken string
	userToken  string
}

func newTestAPI(t *testing.T, ping func(context.Context) error, opts ...func(*Dependencies)) *testAPI {
	t.Helper()
	store := dbtest.NewStore()
	authService := newAuthService()
	files := storage.NewDiskStorage(t.TempDir())
	require.NoError(t, files.EnsureBucket(context.Background()))

	api := &testAPI{t: t, store: store, files: files}
	api.adminToken = api.addUser(authService, "admin@example.com", models.RoleAdmin)
	api.userToken = api.addUser(authService, "user@example.com", models.RoleUser)

	deps := Dependencies{
		Users:          store.Users,
		Brands:         store.Brands,
		Cars:           store.Cars,
		Banners:        store.Banners,
		Rentals:        store.Rentals,
		Auth:           authService,
		Catalog:        catalog.NewService(store.Brands, store.Cars, store, nil),
		Storage:        files,
		Ping:           ping,
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	for _, opt := range opts {
		opt(&deps)
	}
	api.handler = NewRouter(deps)
	return api
}

func (a *testAPI) addUser(authService *auth.Service, email string, role models.Role) string {
	a.t.Helper()
	hash, err := authService.HashPassword("password123")
	require.NoError(a.t, err)
	user := &models.User{Name: "Test", Email: email, PasswordHash: hash, Role: role, IsActive: true}
	require.NoError(a.t, a.store.Users.InsertUser(context.Background(), user))
	token, err := authService.GenerateToken(user)
	require.NoError(a.t, err)
	return token
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		r = jsonBody(a.t, body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testAPI) admin(method, path string, body interface{}) *httptest.ResponseRecorder {
	return a.do(method, path, a.adminToken, body)
}

// data decodes the envelope's data field into v.
func data(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func brandBody(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"logo":        "https://example.com/" + name + ".png",
		"description": name + " cars",
		"country":     "Japan",
	}
}

func carBody(brand string) map[string]interface{} {
	return map[string]interface{}{
		"name":        "Camry Hybrid",
		"brand":       brand,
		"model":       "Camry",
		"year":        2023,
		"price":       32000,
		"description": "Comfortable midsize sedan",
		"category":    "Sedan",
		"specifications": map[string]interface{}{
			"engine":       "2.5L Hybrid",
			"fuelType":     "Hybrid",
			"transmission": "CVT",
			"seating":      5,
			"fuelEconomy":  "52 mpg",
			"color":        "Silver",
		},
	}
}

func (a *testAPI) createBrand(name string) models.Brand {
	a.t.Helper()
	w := a.admin("POST", "/api/brands", brandBody(name))
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var brand models.Brand
	data(a.t, w, &brand)
	return brand
}

func (a *testAPI) createCar(brand string) models.Car {
	a.t.Helper()
	w := a.admin("POST", "/api/cars", carBody(brand))
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var car models.Car
	data(a.t, w, &car)
	return car
}

func TestRouter_Service(t *testing.T) {
	t.Run("welcome", func(t *testing.T) {
		api := newTestAPI(t, nil)
		w := api.do("GET", "/", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeEnvelope(t, w)
		assert.Equal(t, "Welcome to Car Showroom API", resp["message"])
		assert.Equal(t, "1.0.0", resp["version"])
	})

	t.Run("health", func(t *testing.T) {
		api := newTestAPI(t, func(context.Context) error { return nil })
		w := api.do("GET", "/api/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeEnvelope(t, w)
		assert.Equal(t, "OK", resp["status"])
		assert.Equal(t, "Car Showroom API is running", resp["message"])
		assert.NotEmpty(t, resp["timestamp"])
	})

	t.Run("health with database down", func(t *testing.T) {
		api := newTestAPI(t, func(context.Context) error { return errors.New("no server") })
		w := api.do("GET", "/api/health", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "down", decodeEnvelope(t, w)["database"])
	})

	t.Run("unknown route", func(t *testing.T) {
		api := newTestAPI(t, nil)
		w := api.do("GET", "/api/nothing-here", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeEnvelope(t, w)
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, "Route not found", resp["message"])
	})

	t.Run("method not allowed", func(t *testing.T) {
		api := newTestAPI(t, nil)
		w := api.do("PATCH", "/api/health", "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("cors preflight", func(t *testing.T) {
		api := newTestAPI(t, nil)
		req := httptest.NewRequest("OPTIONS", "/api/cars", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "PATCH")
		w := httptest.NewRecorder()
		api.handler.ServeHTTP(w, req)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestRouter_Access(t *testing.T) {
	api := newTestAPI(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"public brand list", "GET", "/api/brands", "", http.StatusOK},
		{"public car list", "GET", "/api/cars", "", http.StatusOK},
		{"public banner list", "GET", "/api/banners", "", http.StatusOK},
		{"public rental list", "GET", "/api/rentals", "", http.StatusOK},
		{"public upload index", "GET", "/api/upload", "", http.StatusOK},
		{"create without token", "POST", "/api/brands", "", http.StatusUnauthorized},
		{"create as non admin", "POST", "/api/brands", api.userToken, http.StatusForbidden},
		{"stats without token", "GET", "/api/cars/stats/overview", "", http.StatusUnauthorized},
		{"stats as admin", "GET", "/api/cars/stats/overview", api.adminToken, http.StatusOK},
		{"rental stats as admin", "GET", "/api/rentals/stats/overview", api.adminToken, http.StatusOK},
		{"me without token", "GET", "/api/auth/me", "", http.StatusUnauthorized},
		{"me with token", "GET", "/api/auth/me", api.userToken, http.StatusOK},
		{"bad token", "GET", "/api/auth/me", "garbage", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body interface{}
			if tt.method == "POST" {
				body = brandBody("Mazda")
			}
			w := api.do(tt.method, tt.path, tt.token, body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRouter_Login(t *testing.T) {
	api := newTestAPI(t, nil)

	w := api.do("POST", "/api/auth/admin/login", "", models.LoginRequest{Email: "admin@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	me := api.do("GET", "/api/auth/me", resp.Token, nil)
	assert.Equal(t, http.StatusOK, me.Code)

	w = api.do("POST", "/api/auth/admin/login", "", models.LoginRequest{Email: "user@example.com", Password: "password123"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_LoginRateLimit(t *testing.T) {
	login := func(api *testAPI, forwardedFor string) int {
		req := httptest.NewRequest("POST", "/api/auth/admin/login",
			jsonBody(t, models.LoginRequest{Email: "nobody@example.com", Password: "password123"}))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.9:40000"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		w := httptest.NewRecorder()
		api.handler.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("forwarded headers ignored by default", func(t *testing.T) {
		api := newTestAPI(t, nil)
		for i := 0; i < loginRateLimit; i++ {
			require.Equal(t, http.StatusUnauthorized, login(api, fmt.Sprintf("198.51.100.%d", i)))
		}
		assert.Equal(t, http.StatusTooManyRequests, login(api, "198.51.100.250"))
	})

	t.Run("forwarded headers trusted behind proxy", func(t *testing.T) {
		api := newTestAPI(t, nil, func(d *Dependencies) { d.TrustProxy = true })
		for i := 0; i < loginRateLimit; i++ {
			require.Equal(t, http.StatusUnauthorized, login(api, "198.51.100.1"))
		}
		assert.Equal(t, http.StatusTooManyRequests, login(api, "198.51.100.1"))
		assert.Equal(t, http.StatusUnauthorized, login(api, "198.51.100.2"))
	})
}

func TestRouter_BrandCarCounts(t *testing.T) {
	api := newTestAPI(t, nil)
	toyota := api.createBrand("Toyota")
	honda := api.createBrand("Honda")
	assert.Equal(t, int64(0), toyota.CarCount)

	// Brand names resolve ignoring case and are stored canonically.
	car := api.createCar("toyota")
	assert.Equal(t, "Toyota", car.Brand)
	assert.Equal(t, int64(1), api.store.Brands.Count("Toyota"))

	w := api.do("GET", "/api/brands/"+toyota.ID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Brand
	data(t, w, &got)
	assert.Equal(t, int64(1), got.CarCount)

	w = api.do("GET", "/api/brands/name/TOYOTA", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var withCars models.BrandWithCars
	data(t, w, &withCars)
	assert.Len(t, withCars.Cars, 1)

	w = api.admin("POST", "/api/cars", carBody("Lada"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Brand not found. Please create the brand first.")

	w = api.admin("DELETE", "/api/brands/"+toyota.ID.Hex(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Cannot delete brand. 1 cars are associated with this brand.", decodeEnvelope(t, w)["message"])

	w = api.admin("PUT", "/api/cars/"+car.ID.Hex(), map[string]string{"brand": "Honda"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(0), api.store.Brands.Count("Toyota"))
	assert.Equal(t, int64(1), api.store.Brands.Count("Honda"))

	// Partial update keeps untouched fields.
	var updated models.Car
	data(t, w, &updated)
	assert.Equal(t, "Camry Hybrid", updated.Name)
	assert.Equal(t, "CVT", updated.Specifications.Transmission)

	w = api.admin("DELETE", "/api/cars/"+car.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), api.store.Brands.Count("Honda"))

	w = api.admin("DELETE", "/api/brands/"+honda.ID.Hex(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(-1), api.store.Brands.Count("Honda"))
}

func TestRouter_Brands(t *testing.T) {
	api := newTestAPI(t, nil)
	brand := api.createBrand("Toyota")

	w := api.admin("POST", "/api/brands", brandBody("toyota"))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.admin("POST", "/api/brands", map[string]string{"name": "NoLogo"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "logo")

	w = api.admin("PATCH", "/api/brands/"+brand.ID.Hex()+"/status", map[string]bool{"isActive": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Brand deactivated successfully", decodeEnvelope(t, w)["message"])

	w = api.do("GET", "/api/brands?active=true", "", nil)
	assert.Equal(t, float64(0), decodeEnvelope(t, w)["count"])

	w = api.admin("PATCH", "/api/brands/"+brand.ID.Hex()+"/status", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A drifted count is repaired on demand.
	require.NoError(t, api.store.Brands.SetCarCount(context.Background(), brand.ID, 7))
	w = api.admin("PATCH", "/api/brands/"+brand.ID.Hex()+"/update-car-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), api.store.Brands.Count("Toyota"))

	for _, id := range []string{"not-an-id", "507f1f77bcf86cd799439011"} {
		w = api.do("GET", "/api/brands/"+id, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Brand not found", decodeEnvelope(t, w)["message"])
	}
}

func TestRouter_Cars(t *testing.T) {
	api := newTestAPI(t, nil)
	api.createBrand("Toyota")
	car := api.createCar("Toyota")

	for i := 0; i < 2; i++ {
		w := api.do("GET", "/api/cars/"+car.ID.Hex(), "", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	stored, err := api.store.Cars.FindCarByID(context.Background(), car.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Views)

	w := api.admin("PATCH", "/api/cars/"+car.ID.Hex()+"/status", map[string]string{"status": "scrapped"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid status. Must be available, sold, or reserved", decodeEnvelope(t, w)["message"])

	w = api.admin("PATCH", "/api/cars/"+car.ID.Hex()+"/featured", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Car added to featured list", decodeEnvelope(t, w)["message"])

	w = api.do("GET", "/api/cars/featured/list", "", nil)
	assert.Equal(t, float64(1), decodeEnvelope(t, w)["count"])

	w = api.admin("PATCH", "/api/cars/"+car.ID.Hex()+"/status", map[string]string{"status": "sold"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Car status updated to sold", decodeEnvelope(t, w)["message"])

	// Sold cars drop off the featured list.
	w = api.do("GET", "/api/cars/featured/list", "", nil)
	assert.Equal(t, float64(0), decodeEnvelope(t, w)["count"])

	w = api.do("GET", "/api/cars?limit=1&page=1&brand=toy", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, float64(1), resp["total"])
	assert.Equal(t, float64(1), resp["totalPages"])
	assert.Equal(t, float64(1), resp["currentPage"])

	w = api.do("GET", "/api/cars?minPrice=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.admin("POST", "/api/cars", map[string]interface{}{"brand": "Toyota", "category": "Spaceship"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int64(1), api.store.Brands.Count("Toyota"))
}

func TestRouter_Banners(t *testing.T) {
	api := newTestAPI(t, nil)

	ids := make([]string, 3)
	for i := range ids {
		w := api.admin("POST", "/api/banners", map[string]interface{}{
			"title": fmt.Sprintf("Banner %d", i),
			"image": "https://example.com/banner.jpg",
			"order": i,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var banner models.Banner
		data(t, w, &banner)
		assert.Equal(t, "Learn More", banner.ButtonText)
		ids[i] = banner.ID.Hex()
	}

	w := api.admin("PATCH", "/api/banners/reorder", map[string][]string{"orderedIds": {ids[2], ids[0], ids[1]}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Banners reordered successfully", decodeEnvelope(t, w)["message"])

	w = api.do("GET", "/api/banners", "", nil)
	var banners []models.Banner
	data(t, w, &banners)
	require.Len(t, banners, 3)
	assert.Equal(t, ids[2], banners[0].ID.Hex())
	assert.Equal(t, ids[1], banners[2].ID.Hex())

	w = api.admin("PATCH", "/api/banners/reorder", map[string][]string{"orderedIds": {}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.admin("PATCH", "/api/banners/"+ids[0]+"/status", map[string]bool{"isActive": false})
	require.Equal(t, http.StatusOK, w.Code)
	w = api.do("GET", "/api/banners?active=true", "", nil)
	assert.Equal(t, float64(2), decodeEnvelope(t, w)["count"])

	w = api.admin("PUT", "/api/banners/"+ids[1], map[string]string{"subtitle": "New subtitle"})
	require.Equal(t, http.StatusOK, w.Code)
	var banner models.Banner
	data(t, w, &banner)
	assert.Equal(t, "Banner 1", banner.Title)
	assert.Equal(t, "New subtitle", banner.Subtitle)

	w = api.admin("DELETE", "/api/banners/"+ids[1], nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do("GET", "/api/banners/"+ids[1], "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Rentals(t *testing.T) {
	api := newTestAPI(t, nil)

	w := api.admin("POST", "/api/rentals", map[string]interface{}{
		"name":          "Weekend Cruiser",
		"brand":         "BMW",
		"model":         "4 Series",
		"engine":        "2.0L Turbo",
		"fuel":          "Petrol",
		"topSpeed":      "250 km/h",
		"color":         "Blue",
		"availableDate": "2026-11-01",
		"dailyRate":     120,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rental models.Rental
	data(t, w, &rental)
	assert.Equal(t, 120.0, rental.PricePerDay)
	assert.Equal(t, 2026, rental.AvailableDate.Year())

	w = api.admin("POST", "/api/rentals", map[string]string{"name": "Incomplete"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do("GET", "/api/rentals?minPrice=100&maxPrice=150", "", nil)
	assert.Equal(t, float64(1), decodeEnvelope(t, w)["count"])
	w = api.do("GET", "/api/rentals?maxPrice=100", "", nil)
	assert.Equal(t, float64(0), decodeEnvelope(t, w)["count"])

	w = api.admin("PUT", "/api/rentals/"+rental.ID.Hex(), map[string]float64{"pricePerDay": 99})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data(t, w, &rental)
	assert.Equal(t, 99.0, rental.PricePerDay)
	assert.Equal(t, "Weekend Cruiser", rental.Name)

	w = api.admin("GET", "/api/rentals/stats/overview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.RentalStats
	data(t, w, &stats)
	assert.Equal(t, int64(1), stats.Overview.TotalRentals)

	w = api.admin("DELETE", "/api/rentals/"+rental.ID.Hex(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.admin("DELETE", "/api/rentals/"+rental.ID.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func multipartImages(t *testing.T, field string, contentType string, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG\r\n\x1a\n" + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (a *testAPI) upload(path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+a.adminToken)
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func TestRouter_Uploads(t *testing.T) {
	api := newTestAPI(t, nil)

	body, ct := multipartImages(t, "image", "image/png", "Logo.PNG")
	w := api.upload("/api/upload/single?type=brands", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var file UploadedFile
	data(t, w, &file)
	assert.Regexp(t, `^brand-\d+-[0-9a-f-]{36}\.png$`, file.Filename)
	assert.Equal(t, "/uploads/brands/"+file.Filename, file.URL)
	assert.Equal(t, "Logo.PNG", file.OriginalName)

	w = api.do("GET", file.URL, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Logo.PNG")

	w = api.do("GET", "/api/upload/info/brands/"+file.Filename, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info FileInfo
	data(t, w, &info)
	assert.Equal(t, "brands", info.Type)
	assert.Equal(t, file.Size, info.Size)

	w = api.admin("DELETE", "/api/upload/brands/"+file.Filename, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "File deleted successfully", decodeEnvelope(t, w)["message"])
	w = api.admin("DELETE", "/api/upload/brands/"+file.Filename, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = api.do("GET", file.URL, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	t.Run("extension comes from the content type", func(t *testing.T) {
		body, ct := multipartImages(t, "image", "image/png", "x.html")
		w := api.upload("/api/upload/single?type=cars", body, ct)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var file UploadedFile
		data(t, w, &file)
		assert.Regexp(t, `\.png$`, file.Filename)
		assert.Equal(t, "x.html", file.OriginalName)

		w = api.do("GET", file.URL, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("unknown type falls back to cars", func(t *testing.T) {
		body, ct := multipartImages(t, "image", "image/jpeg", "a.jpg")
		w := api.upload("/api/upload/single?type=boats", body, ct)
		require.Equal(t, http.StatusOK, w.Code)
		var file UploadedFile
		data(t, w, &file)
		assert.Equal(t, "cars", file.Type)

		// The legacy delete route has no type segment.
		w = api.admin("DELETE", "/api/upload/"+file.Filename, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Image deleted successfully", decodeEnvelope(t, w)["message"])
	})

	t.Run("multiple", func(t *testing.T) {
		body, ct := multipartImages(t, "images", "image/webp", "a.webp", "b.webp", "c.webp")
		w := api.upload("/api/upload/multiple?type=rentals", body, ct)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeEnvelope(t, w)
		assert.Equal(t, "3 images uploaded successfully", resp["message"])
		assert.Equal(t, "rentals", resp["type"])
		assert.Len(t, resp["data"], 3)
	})

	t.Run("too many files", func(t *testing.T) {
		names := make([]string, storage.MaxFiles+1)
		for i := range names {
			names[i] = fmt.Sprintf("%d.png", i)
		}
		body, ct := multipartImages(t, "images", "image/png", names...)
		w := api.upload("/api/upload/multiple", body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non image rejected", func(t *testing.T) {
		body, ct := multipartImages(t, "image", "application/pdf", "doc.pdf")
		w := api.upload("/api/upload/single", body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Only image files are allowed!", decodeEnvelope(t, w)["message"])
	})

	t.Run("missing file", func(t *testing.T) {
		body, ct := multipartImages(t, "other", "image/png", "x.png")
		w := api.upload("/api/upload/single", body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No file uploaded", decodeEnvelope(t, w)["message"])
	})

	t.Run("path traversal", func(t *testing.T) {
		w := api.do("GET", "/uploads/../../etc/passwd", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = api.do("GET", "/api/upload/info/cars/..", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
