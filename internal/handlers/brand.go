package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ukydev/car-showroom/internal/catalog"
	"github.com/ukydev/car-showroom/internal/db"
	"github.com/ukydev/car-showroom/internal/models"
	"github.com/ukydev/car-showroom/internal/response"
)

const msgBrandNotFound = "Brand not found"

// BrandHandler serves /brands.
type BrandHandler struct {
	brands  db.BrandCollection
	cars    db.CarCollection
	catalog *catalog.Service
}

func NewBrandHandler(brands db.BrandCollection, cars db.CarCollection, catalogService *catalog.Service) *BrandHandler {
	return &BrandHandler{brands: brands, cars: cars, catalog: catalogService}
}

func (h *BrandHandler) List(w http.ResponseWriter, r *http.Request) error {
	brands, err := h.brands.FindBrands(r.Context(), db.BrandFilter{
		Active: queryBool(r, "active"),
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		return err
	}
	response.List(w, brands, len(brands), nil)
	return nil
}

// Get returns one brand with carCount taken from a live count.
func (h *BrandHandler) Get(w http.ResponseWriter, r *http.Request) error {
	brand, err := h.brands.FindBrandByID(r.Context(), idParam(r))
	if err != nil {
		return notFound(err, msgBrandNotFound)
	}
	n, err := h.cars.CountCarsByBrand(r.Context(), brand.Name)
	if err != nil {
		return err
	}
	brand.CarCount = n
	response.OK(w, http.StatusOK, "", brand)
	return nil
}

// GetByName returns the brand matching name, ignoring case, with its cars.
func (h *BrandHandler) GetByName(w http.ResponseWriter, r *http.Request) error {
	brand, err := h.brands.FindBrandByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		return notFound(err, msgBrandNotFound)
	}
	cars, err := h.cars.FindCarsByBrand(r.Context(), brand.Name)
	if err != nil {
		return err
	}
	response.OK(w, http.StatusOK, "", models.BrandWithCars{Brand: *brand, Cars: cars})
	return nil
}

func (h *BrandHandler) Create(w http.ResponseWriter, r *http.Request) error {
	brand := models.NewBrand()
	if err := decodeJSON(w, r, &brand); err != nil {
		return err
	}
	if err := h.catalog.CreateBrand(r.Context(), &brand); err != nil {
		return err
	}
	response.OK(w, http.StatusCreated, "Brand created successfully", brand)
	return nil
}

func (h *BrandHandler) Update(w http.ResponseWriter, r *http.Request) error {
	current, err := h.brands.FindBrandByID(r.Context(), idParam(r))
	if err != nil {
		return notFound(err, msgBrandNotFound)
	}
	updated := *current
	if err := decodeJSON(w, r, &updated); err != nil {
		return err
	}
	if err := h.catalog.UpdateBrand(r.Context(), current, &updated); err != nil {
		return notFound(err, msgBrandNotFound)
	}
	response.OK(w, http.StatusOK, "Brand updated successfully", updated)
	return nil
}

func (h *BrandHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	brand, err := h.brands.FindBrandByID(r.Context(), idParam(r))
	if err != nil {
		return notFound(err, msgBrandNotFound)
	}
	if err := h.catalog.DeleteBrand(r.Context(), brand); err != nil {
		return notFound(err, msgBrandNotFound)
	}
	response.OK(w, http.StatusOK, "Brand deleted successfully", nil)
	return nil
}

func (h *BrandHandler) SetStatus(w http.ResponseWriter, r *http.Request) error {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	active, err := req.value()
	if err != nil {
		return err
	}
	brand, err := h.brands.SetBrandStatus(r.Context(), idParam(r), active)
	if err != nil {
		return notFound(err, msgBrandNotFound)
	}
	response.OK(w, http.StatusOK, fmt.Sprintf("Brand %s successfully", activatedWord(active)), brand)
	return nil
}

// UpdateCarCount overwrites the stored carCount with a live count.
func (h *BrandHandler) UpdateCarCount(w http.ResponseWriter, r *http.Request) error {
	brand, err := h.brands.FindBrandByID(r.Context(), idParam(r))
	if err != nil {
		return notFound(err, msgBrandNotFound)
	}
	if _, err := h.catalog.RecomputeBrand(r.Context(), brand); err != nil {
		return notFound(err, msgBrandNotFound)
	}
	response.OK(w, http.StatusOK, "Car count updated successfully", brand)
	return nil
}
