package handlers

import (
	"net/http"

	"github.com/ukydev/car-showroom/internal/db"
	"github.com/ukydev/car-showroom/internal/models"
	"github.com/ukydev/car-showroom/internal/response"
)

const msgRentalNotFound = "Rental not found"

// RentalHandler serves /rentals.
type RentalHandler struct {
	rentals db.RentalCollection
}

func NewRentalHandler(rentals db.RentalCollection) *RentalHandler {
	return &RentalHandler{rentals: rentals}
}

func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) error {
	filter := db.RentalFilter{
		Search: r.URL.Query().Get("search"),
		Brand:  r.URL.Query().Get("brand"),
	}
	var err error
	if filter.MinPrice, err = queryFloat(r, "minPrice"); err != nil {
		return err
	}
	if filter.MaxPrice, err = queryFloat(r, "maxPrice"); err != nil {
		return err
	}
	opts, err := listOptions(r)
	if err != nil {
		return err
	}
	rentals, total, err := h.rentals.FindRentals(r.Context(), filter, opts)
	if err != nil {
		return err
	}
	response.List(w, rentals, len(rentals), pagination(total, opts))
	return nil
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) error {
	rental, err := h.rentals.FindRentalByID(r.Context(), idParam(r))
	if err != nil {
		return notFound(err, msgRentalNotFound)
	}
	response.OK(w, http.StatusOK, "", rental)
	return nil
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var rental models.Rental
	if err := decodeJSON(w, r, &rental); err != nil {
		return err
	}
	if err := rental.Validate(); err != nil {
		return err
	}
	if err := h.rentals.InsertRental(r.Context(), &rental); err != nil {
		return err
	}
	response.OK(w, http.StatusCreated, "Rental created successfully", rental)
	return nil
}

func (h *RentalHandler) Update(w http.ResponseWriter, r *http.Request) error {
	rental, err := h.rentals.FindRentalByID(r.Context(), idParam(r))
	if err != nil {
		return notFound(err, msgRentalNotFound)
	}
	id, createdAt := rental.ID, rental.CreatedAt
	if err := decodeJSON(w, r, rental); err != nil {
		return err
	}
	rental.ID, rental.CreatedAt = id, createdAt
	if err := rental.Validate(); err != nil {
		return err
	}
	if err := h.rentals.UpdateRental(r.Context(), rental); err != nil {
		return notFound(err, msgRentalNotFound)
	}
	response.OK(w, http.StatusOK, "Rental updated successfully", rental)
	return nil
}

func (h *RentalHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.rentals.DeleteRental(r.Context(), idParam(r)); err != nil {
		return notFound(err, msgRentalNotFound)
	}
	response.OK(w, http.StatusOK, "Rental deleted successfully", nil)
	return nil
}

// Stats reports price statistics, the top brands and monthly additions.
func (h *RentalHandler) Stats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.rentals.RentalStats(r.Context())
	if err != nil {
		return err
	}
	response.OK(w, http.StatusOK, "", stats)
	return nil
}
