package handler

import (
	"net/http"
	"strconv"

	"github.com/SantaVM/bank-rest/internal/apperrors"
	"github.com/SantaVM/bank-rest/internal/middleware"
	"github.com/SantaVM/bank-rest/internal/models"
	"github.com/SantaVM/bank-rest/internal/repository"
	"github.com/SantaVM/bank-rest/internal/utils"
	"github.com/gorilla/mux"
)

func parseCardFilter(r *http.Request) (repository.CardFilter, error) {
	query := r.URL.Query()
	filter := repository.CardFilter{CardHolder: query.Get("cardHolder")}

	if raw := query.Get("userId"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, apperrors.Newf(apperrors.KindValidation, "invalid userId: %q", raw)
		}
		filter.UserID = &userID
	}
	if raw := query.Get("expiryDate"); raw != "" {
		expiry, err := utils.ParseExpiryDate(raw)
		if err != nil {
			return filter, err
		}
		filter.ExpiryDate = &expiry
	}
	if raw := query.Get("status"); raw != "" {
		status, err := models.ParseCardStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	if raw := query.Get("toBlock"); raw != "" {
		toBlock, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, apperrors.Newf(apperrors.KindValidation, "invalid toBlock: %q", raw)
		}
		filter.ToBlock = &toBlock
	}
	return filter, nil
}

func cardIDFromPath(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["cardId"]
	cardID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || cardID < 1 {
		return 0, apperrors.Newf(apperrors.KindValidation, "invalid card id: %q", raw)
	}
	return cardID, nil
}

func (h *Handler) callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.respondError(w, apperrors.New(apperrors.KindUnauthorized, "authentication is required"))
		return 0, false
	}
	return userID, true
}

// GenerateCardNumber returns a Luhn-valid card number for test data. Admin
// only; production issuance does not go through this endpoint.
func (h *Handler) GenerateCardNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.svc.GenerateCardNumber()
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(number))
}

// CreateCard registers a card for a user. Admin only.
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardCreateRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	card, err := h.svc.CreateCard(r.Context(), req.UserID, req.CardNumber, req.ExpiryDate, req.Balance.String())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, card)
}

// ListCards returns a filtered, paginated list over all cards. Admin only.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	filter, err := parseCardFilter(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	cards, total, err := h.svc.GetCardsList(r.Context(), filter, page)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, newPageResponse(cards, page.Number, page.Size, total))
}

// MyCards returns the caller's own cards, filtered and paginated.
func (h *Handler) MyCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	page, err := parsePage(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	filter, err := parseCardFilter(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	cards, total, err := h.svc.GetUserCards(r.Context(), userID, filter, page)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, newPageResponse(cards, page.Number, page.Size, total))
}

// TotalBalance returns the sum over all the caller's cards as a decimal
// string.
func (h *Handler) TotalBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	total, err := h.svc.TotalBalance(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"totalBalance": total})
}

// BlockRequest lets a cardholder flag their own card for blocking.
func (h *Handler) BlockRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	cardID, err := cardIDFromPath(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	card, err := h.svc.BlockRequest(r.Context(), cardID, userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, card)
}

// Transfer moves money between two of the caller's cards.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	var req cardTransferRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.svc.Transfer(r.Context(), userID, req.FromID, req.ToID, req.Amount.String()); err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("Success"))
}

// ChangeStatus applies a status transition to a card. Admin only.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	cardID, err := cardIDFromPath(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req cardStatusRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	status, err := models.ParseCardStatus(req.NewStatus)
	if err != nil {
		h.respondError(w, err)
		return
	}

	card, err := h.svc.ChangeCardStatus(r.Context(), cardID, status)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, card)
}

// DeleteCard removes a BLOCKED or EXPIRED card. Admin only.
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := cardIDFromPath(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.svc.DeleteCard(r.Context(), cardID); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
