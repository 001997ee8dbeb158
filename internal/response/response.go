// Package response writes the JSON envelope shared by every API route:
// {success, data?, message?, errors?}, with count and pagination on lists.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-showroom/internal/apperr"
)

type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

// Pagination is added to paged list responses.
type Pagination struct {
	Total       int64 `json:"total"`
	TotalPages  int64 `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
}

type ListEnvelope struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	*Pagination
	Data interface{} `json:"data"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

// OK writes a successful envelope.
func OK(w http.ResponseWriter, status int, message string, data interface{}) {
	JSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// List writes a list envelope. page may be nil for unpaged lists.
func List(w http.ResponseWriter, data interface{}, count int, page *Pagination) {
	JSON(w, http.StatusOK, ListEnvelope{Success: true, Count: count, Pagination: page, Data: data})
}

// Error writes err as a failure envelope. Errors that are not *apperr.Error
// are logged and reported with a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)

	entry := log.WithFields(log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": appErr.Status,
	})
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		entry = entry.WithField("request_id", reqID)
	}
	if appErr.Status >= http.StatusInternalServerError {
		entry.WithError(err).Error(appErr.Message)
	} else {
		entry.Debug(appErr.Message)
	}

	JSON(w, appErr.Status, Envelope{Success: false, Message: appErr.Message, Errors: appErr.Fields})
}
