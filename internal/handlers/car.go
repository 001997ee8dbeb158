package handlers

import (
	"fmt"
	"net/http"

	"github.com/ukydev/car-showroom/internal/apperr"
	"github.com/ukydev/car-showroom/internal/catalog"
	"github.com/ukydev/car-showroom/internal/db"
	"github.com/ukydev/car-showroom/internal/models"
	"github.com/ukydev/car-showroom/internal/response"
)

const (
	msgCarNotFound      = "Car not found"
	defaultFeaturedSize = 6
)

// CarHandler serves /cars.
type CarHandler struct {
	cars    db.CarCollection
	catalog *catalog.Service
}

func NewCarHandler(cars db.CarCollection, catalogService *catalog.Service) *CarHandler {
	return &CarHandler{cars: cars, catalog: catalogService}
}

func carFilter(r *http.Request) (db.CarFilter, error) {
	q := r.URL.Query()
	filter := db.CarFilter{
		Search:       q.Get("search"),
		Brand:        q.Get("brand"),
		Category:     q.Get("category"),
		FuelType:     q.Get("fuelType"),
		Transmission: q.Get("transmission"),
		Status:       models.CarStatus(q.Get("status")),
		Featured:     queryBool(r, "featured"),
	}
	var err error
	if filter.MinPrice, err = queryFloat(r, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = queryFloat(r, "maxPrice"); err != nil {
		return filter, err
	}
	if filter.Year, err = queryInt(r, "year", 0); err != nil {
		return filter, err
	}
	return filter, nil
}

// List returns a filtered, sorted page of cars.
func (h *CarHandler) List(w http.ResponseWriter, r *http.Request) error {
	filter, err := carFilter(r)
	if err != nil {
		return err
	}
	opts, err := listOptions(r)
	if err != nil {
		return err
	}
	cars, total, err := h.cars.FindCars(r.Context(), filter, opts)
	if err != nil {
		return err
	}
	response.List(w, cars, len(cars), pagination(total, opts))
	return nil
}

// Get returns one car and counts the view.
func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) error {
	car, err := h.cars.IncrementViews(r.Context(), idParam(r))
	if err != nil {
		return notFound(err, msgCarNotFound)
	}
	response.OK(w, http.StatusOK, "", car)
	return nil
}

// Featured returns featured cars that are still available.
func (h *CarHandler) Featured(w http.ResponseWriter, r *http.Request) error {
	limit, err := queryInt(r, "limit", defaultFeaturedSize)
	if err != nil {
		return err
	}
	if limit < 1 {
		limit = defaultFeaturedSize
	}
	if limit > db.MaxPageSize {
		limit = db.MaxPageSize
	}
	cars, err := h.cars.FindFeaturedCars(r.Context(), limit)
	if err != nil {
		return err
	}
	response.List(w, cars, len(cars), nil)
	return nil
}

func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) error {
	car := models.NewCar()
	if err := decodeJSON(w, r, &car); err != nil {
		return err
	}
	if err := h.catalog.CreateCar(r.Context(), &car); err != nil {
		return err
	}
	response.OK(w, http.StatusCreated, "Car created successfully", car)
	return nil
}

func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request) error {
	current, err := h.cars.FindCarByID(r.Context(), idParam(r))
	if err != nil {
		return notFound(err, msgCarNotFound)
	}
	// Decode into a deep enough copy that current keeps its own slices.
	updated := *current
	updated.Images = append([]string(nil), current.Images...)
	updated.Features = append([]string(nil), current.Features...)
	if err := decodeJSON(w, r, &updated); err != nil {
		return err
	}
	if err := h.catalog.UpdateCar(r.Context(), current, &updated); err != nil {
		return notFound(err, msgCarNotFound)
	}
	response.OK(w, http.StatusOK, "Car updated successfully", updated)
	return nil
}

func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	car, err := h.cars.FindCarByID(r.Context(), idParam(r))
	if err != nil {
		return notFound(err, msgCarNotFound)
	}
	if err := h.catalog.DeleteCar(r.Context(), car); err != nil {
		return notFound(err, msgCarNotFound)
	}
	response.OK(w, http.StatusOK, "Car deleted successfully", nil)
	return nil
}

func (h *CarHandler) SetStatus(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Status models.CarStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if !models.IsValidCarStatus(req.Status) {
		return apperr.Field("status", "Invalid status. Must be available, sold, or reserved")
	}
	car, err := h.cars.SetCarStatus(r.Context(), idParam(r), req.Status)
	if err != nil {
		return notFound(err, msgCarNotFound)
	}
	response.OK(w, http.StatusOK, fmt.Sprintf("Car status updated to %s", req.Status), car)
	return nil
}

func (h *CarHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) error {
	car, err := h.cars.ToggleCarFeatured(r.Context(), idParam(r))
	if err != nil {
		return notFound(err, msgCarNotFound)
	}
	message := "Car removed from featured list"
	if car.IsFeatured {
		message = "Car added to featured list"
	}
	response.OK(w, http.StatusOK, message, car)
	return nil
}

func (h *CarHandler) Stats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.cars.CarStats(r.Context())
	if err != nil {
		return err
	}
	response.OK(w, http.StatusOK, "", stats)
	return nil
}
