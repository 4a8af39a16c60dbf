package http

import (
	"encoding/json"
	"net/http"

	"lunchbox-be/internal/order"
	"lunchbox-be/internal/utils"

	"github.com/google/uuid"
)

type orderLineResponse struct {
	MenuItemID   string  `json:"menuItemId"`
	MenuItemName string  `json:"menuItemName"`
	Quantity     int     `json:"quantity"`
	PortionType  string  `json:"portionType"`
	UnitPrice    float64 `json:"unitPrice"`
}

type orderResponse struct {
	ID                uint                `json:"id"`
	ExternalID        uuid.UUID           `json:"externalId"`
	ChildID           uint                `json:"childId"`
	ChildName         string              `json:"childName"`
	OrderDate         string              `json:"orderDate"`
	TotalAmount       float64             `json:"totalAmount"`
	Status            string              `json:"status"`
	FulfillmentStatus string              `json:"fulfillmentStatus"`
	SpecialRequests   *string             `json:"specialRequests,omitempty"`
	Items             []orderLineResponse `json:"items"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, orderLineResponse{
			MenuItemID:   l.MenuItemID,
			MenuItemName: l.MenuItemName,
			Quantity:     l.Quantity,
			PortionType:  string(l.Portion),
			UnitPrice:    l.UnitPrice,
		})
	}

	return orderResponse{
		ID:                o.ID,
		ExternalID:        o.ExternalID,
		ChildID:           o.ChildID,
		ChildName:         o.ChildName,
		OrderDate:         utils.FormatDate(o.OrderDate),
		TotalAmount:       o.TotalAmount,
		Status:            string(o.Status),
		FulfillmentStatus: string(o.FulfillmentStatus),
		SpecialRequests:   o.SpecialRequests,
		Items:             items,
	}
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var input order.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	o, err := h.orderSvc.CreateOrder(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var f order.Filter
	if s := r.URL.Query().Get("status"); s != "" {
		status := order.OrderStatus(s)
		f.Status = &status
	}

	orders, err := h.orderSvc.ListOrders(r.Context(), userID, f)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"orders": out})
}

func (h *Handler) handleGroupedOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	weeks, err := h.orderSvc.GroupedOrders(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"weeks": weeks})
}

type checkMissingRequest struct {
	ChildID   uint     `json:"childId"`
	WeekDates []string `json:"weekDates"`
}

func (h *Handler) handleCheckMissingOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req checkMissingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := h.orderSvc.CheckMissingOrders(r.Context(), userID, req.ChildID, req.WeekDates)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}

type confirmPaymentRequest struct {
	SessionID string `json:"sessionId"`
}

func (h *Handler) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req confirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	n, err := h.orderSvc.ConfirmPaymentSync(r.Context(), userID, req.SessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"promotedOrders": n})
}
