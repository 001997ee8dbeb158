package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ukydev/car-showroom/internal/apperr"
	"github.com/ukydev/car-showroom/internal/auth"
	"github.com/ukydev/car-showroom/internal/catalog"
	"github.com/ukydev/car-showroom/internal/db"
	"github.com/ukydev/car-showroom/internal/middleware"
	"github.com/ukydev/car-showroom/internal/response"
	"github.com/ukydev/car-showroom/internal/storage"
)

const (
	loginRateLimit  = 20
	loginRateWindow = 15 * time.Minute
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Users   db.UserCollection
	Brands  db.BrandCollection
	Cars    db.CarCollection
	Banners db.BannerCollection
	Rentals db.RentalCollection

	Auth    *auth.Service
	Catalog *catalog.Service
	Storage storage.ObjectStorage

	// Ping reports database health for /api/health. Optional.
	Ping           func(ctx context.Context) error
	AllowedOrigins []string
	// TrustProxy mounts chi's RealIP so logging and rate limiting see the
	// forwarded client address instead of the proxy's.
	TrustProxy bool
}

// NewRouter builds the full HTTP handler.
func NewRouter(deps Dependencies) http.Handler {
	authMW := middleware.NewAuthMiddleware(deps.Auth, deps.Users)
	limiter := middleware.NewRateLimitMiddleware()

	authHandler := NewAuthHandler(deps.Auth, deps.Users)
	bannerHandler := NewBannerHandler(deps.Banners)
	brandHandler := NewBrandHandler(deps.Brands, deps.Cars, deps.Catalog)
	carHandler := NewCarHandler(deps.Cars, deps.Catalog)
	rentalHandler := NewRentalHandler(deps.Rentals)
	uploadHandler := NewUploadHandler(deps.Storage)

	admin := func(r chi.Router) chi.Router {
		return r.With(authMW.Authenticate, middleware.AdminOnly)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.RequestLogger,
		middleware.Recover,
		cors.Handler(cors.Options{
			AllowedOrigins:   deps.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)
	r.NotFound(Handle(func(w http.ResponseWriter, r *http.Request) error {
		return apperr.NotFound("Route not found")
	}))
	r.MethodNotAllowed(Handle(func(w http.ResponseWriter, r *http.Request) error {
		return &apperr.Error{Kind: apperr.KindValidation, Status: http.StatusMethodNotAllowed, Message: "Method not allowed"}
	}))

	r.Get("/", welcome)
	r.Get("/uploads/*", Handle(uploadHandler.Serve))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health(deps.Ping))

		r.Route("/auth", func(r chi.Router) {
			r.With(limiter.RateLimit(loginRateLimit, loginRateWindow)).Post("/admin/login", Handle(authHandler.Login))
			r.Group(func(r chi.Router) {
				r.Use(authMW.Authenticate)
				r.Get("/me", Handle(authHandler.Me))
				r.Put("/profile", Handle(authHandler.UpdateProfile))
				r.Put("/change-password", Handle(authHandler.ChangePassword))
			})
		})

		r.Route("/banners", func(r chi.Router) {
			r.Get("/", Handle(bannerHandler.List))
			r.Get("/{id}", Handle(bannerHandler.Get))
			admin(r).Post("/", Handle(bannerHandler.Create))
			admin(r).Patch("/reorder", Handle(bannerHandler.Reorder))
			admin(r).Put("/{id}", Handle(bannerHandler.Update))
			admin(r).Delete("/{id}", Handle(bannerHandler.Delete))
			admin(r).Patch("/{id}/status", Handle(bannerHandler.SetStatus))
		})

		r.Route("/brands", func(r chi.Router) {
			r.Get("/", Handle(brandHandler.List))
			r.Get("/name/{name}", Handle(brandHandler.GetByName))
			r.Get("/{id}", Handle(brandHandler.Get))
			admin(r).Post("/", Handle(brandHandler.Create))
			admin(r).Put("/{id}", Handle(brandHandler.Update))
			admin(r).Delete("/{id}", Handle(brandHandler.Delete))
			admin(r).Patch("/{id}/status", Handle(brandHandler.SetStatus))
			admin(r).Patch("/{id}/update-car-count", Handle(brandHandler.UpdateCarCount))
		})

		r.Route("/cars", func(r chi.Router) {
			r.Get("/", Handle(carHandler.List))
			r.Get("/featured/list", Handle(carHandler.Featured))
			admin(r).Get("/stats/overview", Handle(carHandler.Stats))
			r.Get("/{id}", Handle(carHandler.Get))
			admin(r).Post("/", Handle(carHandler.Create))
			admin(r).Put("/{id}", Handle(carHandler.Update))
			admin(r).Delete("/{id}", Handle(carHandler.Delete))
			admin(r).Patch("/{id}/status", Handle(carHandler.SetStatus))
			admin(r).Patch("/{id}/featured", Handle(carHandler.ToggleFeatured))
		})

		r.Route("/rentals", func(r chi.Router) {
			r.Get("/", Handle(rentalHandler.List))
			admin(r).Get("/stats/overview", Handle(rentalHandler.Stats))
			r.Get("/{id}", Handle(rentalHandler.Get))
			admin(r).Post("/", Handle(rentalHandler.Create))
			admin(r).Put("/{id}", Handle(rentalHandler.Update))
			admin(r).Delete("/{id}", Handle(rentalHandler.Delete))
		})

		r.Route("/upload", func(r chi.Router) {
			r.Get("/", Handle(uploadHandler.Index))
			admin(r).Post("/single", Handle(uploadHandler.Single))
			admin(r).Post("/multiple", Handle(uploadHandler.Multiple))
			r.Get("/info/{type}/{filename}", Handle(uploadHandler.Info))
			r.Get("/info/{filename}", Handle(uploadHandler.Info))
			admin(r).Delete("/{type}/{filename}", Handle(uploadHandler.Delete))
			admin(r).Delete("/{filename}", Handle(uploadHandler.Delete))
		})
	})

	return r
}

func welcome(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Welcome to Car Showroom API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":  "/api/health",
			"auth":    "/api/auth",
			"banners": "/api/banners",
			"brands":  "/api/brands",
			"cars":    "/api/cars",
			"rentals": "/api/rentals",
			"upload":  "/api/upload",
		},
	})
}

func health(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code, database := "OK", http.StatusOK, "up"
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				status, code, database = "DEGRADED", http.StatusServiceUnavailable, "down"
			}
		}
		response.JSON(w, code, map[string]string{
			"status":    status,
			"message":   "Car Showroom API is running",
			"database":  database,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
