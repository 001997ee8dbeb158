package handlers

import (
	"fmt"
	"net/http"

	"github.com/ukydev/car-showroom/internal/apperr"
	"github.com/ukydev/car-showroom/internal/db"
	"github.com/ukydev/car-showroom/internal/models"
	"github.com/ukydev/car-showroom/internal/response"
)

const msgBannerNotFound = "Banner not found"

// BannerHandler serves /banners.
type BannerHandler struct {
	banners db.BannerCollection
}

func NewBannerHandler(banners db.BannerCollection) *BannerHandler {
	return &BannerHandler{banners: banners}
}

func (h *BannerHandler) List(w http.ResponseWriter, r *http.Request) error {
	banners, err := h.banners.FindBanners(r.Context(), queryBool(r, "active"))
	if err != nil {
		return err
	}
	response.List(w, banners, len(banners), nil)
	return nil
}

func (h *BannerHandler) Get(w http.ResponseWriter, r *http.Request) error {
	banner, err := h.banners.FindBannerByID(r.Context(), idParam(r))
	if err != nil {
		return notFound(err, msgBannerNotFound)
	}
	response.OK(w, http.StatusOK, "", banner)
	return nil
}

func (h *BannerHandler) Create(w http.ResponseWriter, r *http.Request) error {
	banner := models.NewBanner()
	if err := decodeJSON(w, r, &banner); err != nil {
		return err
	}
	if err := banner.Validate(); err != nil {
		return err
	}
	if err := h.banners.InsertBanner(r.Context(), &banner); err != nil {
		return err
	}
	response.OK(w, http.StatusCreated, "Banner created successfully", banner)
	return nil
}

func (h *BannerHandler) Update(w http.ResponseWriter, r *http.Request) error {
	banner, err := h.banners.FindBannerByID(r.Context(), idParam(r))
	if err != nil {
		return notFound(err, msgBannerNotFound)
	}
	id, createdAt := banner.ID, banner.CreatedAt
	if err := decodeJSON(w, r, banner); err != nil {
		return err
	}
	banner.ID, banner.CreatedAt = id, createdAt
	if err := banner.Validate(); err != nil {
		return err
	}
	if err := h.banners.UpdateBanner(r.Context(), banner); err != nil {
		return notFound(err, msgBannerNotFound)
	}
	response.OK(w, http.StatusOK, "Banner updated successfully", banner)
	return nil
}

func (h *BannerHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.banners.DeleteBanner(r.Context(), idParam(r)); err != nil {
		return notFound(err, msgBannerNotFound)
	}
	response.OK(w, http.StatusOK, "Banner deleted successfully", nil)
	return nil
}

func (h *BannerHandler) SetStatus(w http.ResponseWriter, r *http.Request) error {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	active, err := req.value()
	if err != nil {
		return err
	}
	banner, err := h.banners.SetBannerStatus(r.Context(), idParam(r), active)
	if err != nil {
		return notFound(err, msgBannerNotFound)
	}
	response.OK(w, http.StatusOK, fmt.Sprintf("Banner %s successfully", activatedWord(active)), banner)
	return nil
}

// Reorder sets each banner's order to its position in the request.
func (h *BannerHandler) Reorder(w http.ResponseWriter, r *http.Request) error {
	var req models.ReorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	positions := req.Positions()
	if len(positions) == 0 {
		return apperr.Field("orderedIds", "Banners array is required")
	}
	if err := h.banners.ReorderBanners(r.Context(), positions); err != nil {
		return notFound(err, msgBannerNotFound)
	}
	response.OK(w, http.StatusOK, "Banners reordered successfully", nil)
	return nil
}
