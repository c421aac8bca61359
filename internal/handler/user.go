package handler

import (
	"net/http"
	"strconv"

	"github.com/SantaVM/bank-rest/internal/apperrors"
	"github.com/SantaVM/bank-rest/internal/middleware"
	"github.com/SantaVM/bank-rest/internal/models"
	"github.com/SantaVM/bank-rest/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func parsePage(r *http.Request) (repository.Page, error) {
	page := repository.Page{Number: 0, Size: defaultPageSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil || number < 0 {
			return page, apperrors.Newf(apperrors.KindValidation, "invalid page: %q", raw)
		}
		page.Number = number
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > maxPageSize {
			return page, apperrors.Newf(apperrors.KindValidation, "invalid size: %q", raw)
		}
		page.Size = size
	}
	return page, nil
}

// Me returns the authenticated user's own profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.respondError(w, apperrors.New(apperrors.KindUnauthorized, "authentication is required"))
		return
	}

	user, err := h.svc.FindUser(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toUserResponse(user))
}

// ListUsers returns a filtered, paginated list of users. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	query := r.URL.Query()
	filter := repository.UserFilter{
		FirstName: query.Get("firstName"),
		LastName:  query.Get("lastName"),
		Email:     query.Get("email"),
	}
	if raw := query.Get("role"); raw != "" {
		role, err := models.ParseRole(raw)
		if err != nil {
			h.respondError(w, err)
			return
		}
		filter.Role = &role
	}

	users, total, err := h.svc.ListUsers(r.Context(), filter, page)
	if err != nil {
		h.respondError(w, err)
		return
	}

	responses := make([]userResponse, 0, len(users))
	for i := range users {
		responses = append(responses, toUserResponse(&users[i]))
	}
	h.respondJSON(w, http.StatusOK, newPageResponse(responses, page.Number, page.Size, total))
}
