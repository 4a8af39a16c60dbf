package http

import (
	"encoding/json"
	"net/http"

	"lunchbox-be/internal/order"
	"lunchbox-be/internal/utils"
)

type updateOrderStatusRequest struct {
	OrderID           uint    `json:"orderId"`
	Status            *string `json:"status"`
	FulfillmentStatus *string `json:"fulfillmentStatus"`
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	var status *order.OrderStatus
	if req.Status != nil {
		s := order.OrderStatus(*req.Status)
		status = &s
	}

	var fulfillment *order.FulfillmentStatus
	if req.FulfillmentStatus != nil {
		f := order.FulfillmentStatus(*req.FulfillmentStatus)
		fulfillment = &f
	}

	if err := h.orderSvc.UpdateOrderStatus(r.Context(), req.OrderID, status, fulfillment); err != nil {
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
