// Package handlers exposes the showroom HTTP API.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
	"github.com/ukydev/car-showroom/internal/apperr"
	"github.com/ukydev/car-showroom/internal/db"
	"github.com/ukydev/car-showroom/internal/response"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 10 << 20

// HandlerFunc is an http.HandlerFunc that reports failures as errors.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts h to net/http, writing any returned error as a failure
// envelope.
func Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			response.Error(w, r, err)
		}
	}
}

// decodeJSON reads the body into v. Fields absent from the body keep the
// values v already holds, which is how partial updates work.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Validation("Request body too large")
		}
		return apperr.Validation("Invalid JSON")
	}
	return nil
}

// notFound turns a db miss into a 404 with message and passes other errors
// through.
func notFound(err error, message string) error {
	if db.IsNotFound(err) {
		return apperr.NotFound(message)
	}
	return err
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// queryBool returns nil when key is absent; any value other than "true" is
// false.
func queryBool(r *http.Request, key string) *bool {
	values := r.URL.Query()
	if !values.Has(key) {
		return nil
	}
	b := values.Get(key) == "true"
	return &b
}

func queryFloat(r *http.Request, key string) (*float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, apperr.Field(key, key+" must be a number")
	}
	return &f, nil
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, apperr.Field(key, key+" must be an integer")
	}
	return n, nil
}

// listOptions reads page, limit, sort and order from the query string.
func listOptions(r *http.Request) (db.ListOptions, error) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		return db.ListOptions{}, err
	}
	limit, err := queryInt(r, "limit", db.DefaultPageSize)
	if err != nil {
		return db.ListOptions{}, err
	}
	q := r.URL.Query()
	return db.ListOptions{Page: page, Limit: limit, Sort: q.Get("sort"), Order: q.Get("order")}.Normalize(), nil
}

func pagination(total int64, opts db.ListOptions) *response.Pagination {
	return &response.Pagination{
		Total:       total,
		TotalPages:  db.TotalPages(total, opts.Limit),
		CurrentPage: opts.Page,
	}
}

// statusRequest is the body of the activate/deactivate routes.
type statusRequest struct {
	IsActive *bool `json:"isActive"`
}

func (s statusRequest) value() (bool, error) {
	if s.IsActive == nil {
		return false, apperr.Field("isActive", "isActive is required")
	}
	return *s.IsActive, nil
}

func activatedWord(active bool) string {
	if active {
		return "activated"
	}
	return "deactivated"
}
