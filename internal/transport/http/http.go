package http

import (
	"errors"
	"net/http"

	"lunchbox-be/internal/checkout"
	"lunchbox-be/internal/children"
	"lunchbox-be/internal/menu"
	"lunchbox-be/internal/middleware"
	"lunchbox-be/internal/order"
	"lunchbox-be/internal/payment"
	"lunchbox-be/internal/payment/webhook"
	"lunchbox-be/internal/utils"

	"lunchbox-be/internal/logger"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	checkoutSvc checkout.Service
	orderSvc    order.Service
	webhook     *webhook.Handler
}

func NewHandler(checkoutSvc checkout.Service, orderSvc order.Service, wh *webhook.Handler) *Handler {
	return &Handler{
		checkoutSvc: checkoutSvc,
		orderSvc:    orderSvc,
		webhook:     wh,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.AuthMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	// The webhook authenticates by signature, not by user token.
	r.Post("/payment/webhook", h.webhook.HandleWebhook)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Post("/checkout/session", h.handleCreateCheckoutSession)
		r.Get("/checkout/session/{intentID}", h.handleGetCheckoutIntent)

		r.Post("/orders", h.handleCreateOrder)
		r.Get("/orders", h.handleListOrders)
		r.Get("/orders/grouped", h.handleGroupedOrders)
		r.Post("/orders/check-missing", h.handleCheckMissingOrders)
		r.Post("/orders/confirm", h.handleConfirmPayment)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireStaff)

		r.Patch("/admin/orders/status", h.handleUpdateOrderStatus)
	})

	return r
}

// writeError maps domain sentinels onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrTotalMismatch),
		errors.Is(err, checkout.ErrBelowMinimum),
		errors.Is(err, checkout.ErrInvalidDate),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidDate),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidPortion),
		errors.Is(err, order.ErrPaidWithoutPaymentRef):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)

	case errors.Is(err, children.ErrNotOwned),
		errors.Is(err, order.ErrUnauthorized):
		utils.WriteJSONError(w, err.Error(), http.StatusForbidden)

	case errors.Is(err, children.ErrChildNotFound),
		errors.Is(err, menu.ErrItemNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, checkout.ErrIntentNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, order.ErrPaymentNotCompleted):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)

	case payment.IsRetryable(err):
		utils.WriteJSONError(w, "payment processor unavailable, try again", http.StatusBadGateway)

	default:
		utils.WriteJSONError(w, "internal error", http.StatusInternalServerError)
	}
}
