package handler

import (
	"encoding/json"
	"net/http"

	"github.com/SantaVM/bank-rest/internal/apperrors"
	"github.com/SantaVM/bank-rest/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// problem is the JSON error body, shaped after RFC 7807.
type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// pageMeta describes the returned slice of a paginated listing.
type pageMeta struct {
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int64 `json:"totalPages"`
}

type pageResponse struct {
	Content any      `json:"content"`
	Page    pageMeta `json:"page"`
}

func newPageResponse(content any, number, size int, total int64) pageResponse {
	totalPages := int64(0)
	if size > 0 {
		totalPages = (total + int64(size) - 1) / int64(size)
	}
	return pageResponse{
		Content: content,
		Page: pageMeta{
			Number:        number,
			Size:          size,
			TotalElements: total,
			TotalPages:    totalPages,
		},
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			h.log.Errorf("Failed to encode response: %v", err)
		}
	}
}

// respondError maps the error taxonomy to HTTP statuses. Clients can tell
// "fix your input" (400) from "try again" (422) from "not allowed" (409/404)
// by the reported type.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)

	var status int
	switch kind {
	case apperrors.KindInvalidAmount, apperrors.KindInvalidCardNumber,
		apperrors.KindValidation, apperrors.KindBusinessRule:
		status = http.StatusBadRequest
	case apperrors.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.KindForbidden:
		status = http.StatusForbidden
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict:
		status = http.StatusConflict
	case apperrors.KindOperationRejected:
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
	}

	detail := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Errorf("Internal error: %v", err)
		detail = "internal server error"
	}

	h.respondJSON(w, status, problem{
		Type:   string(kind),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(dst); err != nil {
		h.respondError(w, apperrors.Wrap(apperrors.KindValidation, "malformed request body", err))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		h.respondError(w, apperrors.Wrap(apperrors.KindValidation, "request validation failed", err))
		return false
	}
	return true
}
