package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soundrift/soundrift/internal/gateway/middleware"
	"github.com/soundrift/soundrift/internal/modules/billing/application"
	"github.com/soundrift/soundrift/internal/modules/billing/domain"
	identity "github.com/soundrift/soundrift/internal/modules/identity/domain"
	"github.com/soundrift/soundrift/internal/shared/utils"
)

type BillingHandler struct {
	service *application.BillingService
}

func NewBillingHandler(service *application.BillingService) *BillingHandler {
	return &BillingHandler{service: service}
}

func (h *BillingHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		writeBillingError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, plans)
}

type subscribeRequest struct {
	Plan string `json:"plan"`
}

func (h *BillingHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CallerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Plan == "" {
		utils.WriteError(w, http.StatusBadRequest, "plan is required", nil)
		return
	}

	subscription, err := h.service.Subscribe(r.Context(), userID, req.Plan)
	if err != nil {
		writeBillingError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, subscription)
}

func (h *BillingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CallerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	if err := h.service.Cancel(r.Context(), userID); err != nil {
		writeBillingError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *BillingHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CallerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	subscription, err := h.service.GetSubscription(r.Context(), userID)
	if err != nil {
		writeBillingError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, subscription)
}

func writeBillingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPlanNotFound):
		utils.WriteError(w, http.StatusNotFound, "plan not found", nil)
	case errors.Is(err, identity.ErrUserNotFound):
		utils.WriteError(w, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, domain.ErrNoSubscription):
		utils.WriteError(w, http.StatusBadRequest, "no active subscription", nil)
	case errors.Is(err, domain.ErrAlreadySubscribed):
		utils.WriteError(w, http.StatusConflict, "already subscribed to this plan", nil)
	case errors.Is(err, domain.ErrBillingProvider):
		utils.WriteError(w, http.StatusBadGateway, "billing provider unavailable", nil)
	default:
		utils.WriteError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
