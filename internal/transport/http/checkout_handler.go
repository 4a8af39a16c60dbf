package http

import (
	"encoding/json"
	"net/http"
	"time"

	"lunchbox-be/internal/cart"
	"lunchbox-be/internal/checkout"
	"lunchbox-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type checkoutDayRequest struct {
	ChildID uint        `json:"childId"`
	Date    string      `json:"date"`
	Items   []cart.Line `json:"items"`
	Total   float64     `json:"total"`
}

type createCheckoutRequest struct {
	OrdersData []checkoutDayRequest `json:"ordersData"`
}

type createCheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	IntentID  string `json:"intentId"`
}

func (h *Handler) handleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	userEmail := utils.GetUserEmailFromContext(r.Context())

	var req createCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	days := make([]checkout.OrderDay, 0, len(req.OrdersData))
	for _, d := range req.OrdersData {
		days = append(days, checkout.OrderDay{
			ChildID:       d.ChildID,
			Date:          d.Date,
			Lines:         d.Items,
			ComputedTotal: d.Total,
		})
	}

	result, err := h.checkoutSvc.CreateCheckoutSession(r.Context(), userID, userEmail, days)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, createCheckoutResponse{
		SessionID: result.SessionID,
		URL:       result.RedirectURL,
		IntentID:  result.IntentID.String(),
	})
}

type intentStatusResponse struct {
	IntentID    string    `json:"intentId"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"totalAmount"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// handleGetCheckoutIntent lets the client poll whether the webhook has
// materialized its orders after the payment redirect.
func (h *Handler) handleGetCheckoutIntent(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	intent, err := h.checkoutSvc.GetIntent(r.Context(), chi.URLParam(r, "intentID"))
	if err != nil {
		writeError(w, err)
		return
	}

	// Another user's intent is indistinguishable from a missing one.
	if intent.UserID != userID {
		utils.WriteJSONError(w, checkout.ErrIntentNotFound.Error(), http.StatusNotFound)
		return
	}

	utils.WriteJSON(w, http.StatusOK, intentStatusResponse{
		IntentID:    intent.ID.String(),
		Status:      string(intent.Status),
		TotalAmount: intent.TotalAmount,
		ExpiresAt:   intent.ExpiresAt,
	})
}
